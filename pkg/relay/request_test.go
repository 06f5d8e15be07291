package relay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abedul59/shjhs-class-system/pkg/config"
	"github.com/abedul59/shjhs-class-system/pkg/mail"
)

var testDefaults = Defaults{
	SenderAddress: "sender@x.com",
	SenderName:    "Class Teacher",
	Subject:       "Important class notice",
}

func TestBuildSubmission(t *testing.T) {
	tests := []struct {
		name string
		req  SendRequest
		want mail.Submission
	}{
		{
			name: "all fields given",
			req:  SendRequest{To: "a@x.com", Bcc: []string{"b@x.com", "c@x.com"}, Subject: "Test", Content: "Hello"},
			want: mail.Submission{From: `"Class Teacher" <sender@x.com>`, To: "a@x.com", Bcc: "b@x.com,c@x.com", Subject: "Test", Text: "Hello"},
		},
		{
			name: "empty request falls back to defaults",
			req:  SendRequest{},
			want: mail.Submission{From: `"Class Teacher" <sender@x.com>`, To: "sender@x.com", Bcc: "", Subject: "Important class notice", Text: ""},
		},
		{
			name: "bcc only goes to the sender",
			req:  SendRequest{Bcc: []string{"parent1@x.com", "parent2@x.com"}, Content: "Trip tomorrow"},
			want: mail.Submission{From: `"Class Teacher" <sender@x.com>`, To: "sender@x.com", Bcc: "parent1@x.com,parent2@x.com", Subject: "Important class notice", Text: "Trip tomorrow"},
		},
		{
			name: "whitespace recipient counts as absent",
			req:  SendRequest{To: "   "},
			want: mail.Submission{From: `"Class Teacher" <sender@x.com>`, To: "sender@x.com", Subject: "Important class notice"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildSubmission(tt.req, testDefaults))
		})
	}
}

func TestBuildSubmissionPassesTextVerbatim(t *testing.T) {
	content := "  Line one\n\n<b>not html</b>\t\r\n 家長您好 "
	subject := "  週五 校外教學  "
	sub := BuildSubmission(SendRequest{Subject: subject, Content: content}, testDefaults)
	assert.Equal(t, content, sub.Text)
	assert.Equal(t, subject, sub.Subject)
}

func TestJoinBcc(t *testing.T) {
	tests := []struct {
		name  string
		addrs []string
		want  string
	}{
		{name: "nil", addrs: nil, want: ""},
		{name: "empty", addrs: []string{}, want: ""},
		{name: "single", addrs: []string{"b@x.com"}, want: "b@x.com"},
		{name: "several", addrs: []string{"b@x.com", "c@x.com", "d@x.com"}, want: "b@x.com,c@x.com,d@x.com"},
		{name: "blank entries dropped", addrs: []string{"", "b@x.com", " ", "c@x.com", ""}, want: "b@x.com,c@x.com"},
		{name: "only blanks", addrs: []string{"", " "}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JoinBcc(tt.addrs)
			assert.Equal(t, tt.want, got)
			assert.False(t, strings.HasPrefix(got, ","))
			assert.False(t, strings.HasSuffix(got, ","))
			assert.NotContains(t, got, ",,")
		})
	}
}

func TestJoinBccRoundTrip(t *testing.T) {
	addrs := []string{"a@x.com", "b@y.org", "c.d@z.net"}
	sub := mail.Submission{Bcc: JoinBcc(addrs)}
	assert.Equal(t, addrs, sub.BccList())
}

func TestDefaultsFrom(t *testing.T) {
	assert.Equal(t, `"Class Teacher" <sender@x.com>`, testDefaults.From())

	d := DefaultsFromConfig(config.Mail{SenderAddress: "teacher@gmail.com", SenderName: config.DefaultSenderName, DefaultSubject: config.DefaultSubject})
	assert.Equal(t, config.DefaultSubject, d.Subject)
	from := d.From()
	assert.True(t, strings.HasSuffix(from, " <teacher@gmail.com>"), "got %q", from)
	assert.True(t, strings.HasPrefix(from, "=?utf-8?"), "non-ASCII display names are RFC 2047 encoded, got %q", from)
}
