package mail_test

import (
	"context"
	"mime"
	stdmail "net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abedul59/shjhs-class-system/pkg/config"
	"github.com/abedul59/shjhs-class-system/pkg/mail"
	"github.com/abedul59/shjhs-class-system/pkg/relay"
	"github.com/abedul59/shjhs-class-system/pkg/system"
)

func TestRelayOverSMTPUsesDefaultSenderName(t *testing.T) {
	port, delivered := mail.StartAcceptingSMTPServer(t)

	cfg := config.DefaultConfig().Mail
	cfg.Host = "127.0.0.1"
	cfg.Port = port
	cfg.SenderAddress = "teacher@example.com"
	cfg.Password = "app-password"

	log := system.NewTestLogger(t)
	r := relay.New(mail.NewSMTPTransport(cfg, log), relay.DefaultsFromConfig(cfg), log)

	res, err := r.Send(context.Background(), relay.SendRequest{Bcc: []string{"parent@example.com"}, Content: "明天校外教學"})
	require.NoError(t, err)
	require.True(t, res.Success)

	data := delivered()
	require.Len(t, data, 1)
	msg, err := stdmail.ReadMessage(strings.NewReader(data[0] + "\n"))
	require.NoError(t, err)

	from, err := msg.Header.AddressList("From")
	require.NoError(t, err)
	require.Len(t, from, 1)
	assert.Equal(t, config.DefaultSenderName, from[0].Name)
	assert.Equal(t, "teacher@example.com", from[0].Address)

	to, err := msg.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 1)
	assert.Equal(t, "teacher@example.com", to[0].Address)

	subject, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSubject, subject)
	assert.Equal(t, res.MessageID, msg.Header.Get("Message-ID"))
	assert.Empty(t, msg.Header.Get("Bcc"))
}
