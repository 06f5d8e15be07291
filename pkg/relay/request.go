package relay

import (
	stdmail "net/mail"
	"strings"

	"github.com/abedul59/shjhs-class-system/pkg/config"
	"github.com/abedul59/shjhs-class-system/pkg/mail"
)

// SendRequest is the JSON body accepted by the send-email endpoint. No field is required.
type SendRequest struct {
	To      string   `json:"to"`
	Bcc     []string `json:"bcc"`
	Subject string   `json:"subject"`
	Content string   `json:"content"`
}

// SendResult is returned when the transport accepted the mail.
type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
}

// Defaults holds the values substituted for missing request fields.
type Defaults struct {
	SenderAddress string
	SenderName    string
	Subject       string
}

func DefaultsFromConfig(cfg config.Mail) Defaults {
	return Defaults{
		SenderAddress: cfg.SenderAddress,
		SenderName:    cfg.SenderName,
		Subject:       cfg.DefaultSubject,
	}
}

// From renders the sender as `"Name" <address>`.
func (d Defaults) From() string {
	return (&stdmail.Address{Name: d.SenderName, Address: d.SenderAddress}).String()
}

// BuildSubmission applies default substitution to req.
// Without an explicit recipient the mail goes to the sender, keeping the Bcc list hidden.
func BuildSubmission(req SendRequest, d Defaults) mail.Submission {
	to := strings.TrimSpace(req.To)
	if to == "" {
		to = d.SenderAddress
	}
	subject := req.Subject
	if subject == "" {
		subject = d.Subject
	}
	return mail.Submission{
		From:    d.From(),
		To:      to,
		Bcc:     JoinBcc(req.Bcc),
		Subject: subject,
		Text:    req.Content,
	}
}

// JoinBcc joins addresses with a single comma. Blank entries are dropped so the
// result never contains a stray or doubled comma.
func JoinBcc(addrs []string) string {
	kept := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a = strings.TrimSpace(a); a != "" {
			kept = append(kept, a)
		}
	}
	return strings.Join(kept, ",")
}
