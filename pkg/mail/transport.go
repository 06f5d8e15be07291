package mail

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abedul59/shjhs-class-system/pkg/config"
)

const (
	ProviderSMTP   = "smtp"
	ProviderResend = "resend"
	ProviderLog    = "log"
)

// Submission is a single outbound email as handed to a Transport.
// Bcc is a comma separated address list, empty when there are no blind copies.
type Submission struct {
	From    string
	To      string
	Bcc     string
	Subject string
	Text    string
}

// BccList splits Bcc back into individual addresses.
func (s Submission) BccList() []string {
	if s.Bcc == "" {
		return nil
	}
	parts := strings.Split(s.Bcc, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Transport delivers one submission and returns the provider assigned message identifier.
type Transport interface {
	Name() string
	Submit(ctx context.Context, sub Submission) (string, error)
}

// NewTransport builds the transport selected by cfg.Provider.
func NewTransport(cfg config.Mail, log *zap.SugaredLogger) (Transport, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderSMTP:
		return NewSMTPTransport(cfg, log), nil
	case ProviderResend:
		return NewResendTransport(cfg.ResendAPIKey, log), nil
	case ProviderLog:
		return NewLogTransport(log), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}
