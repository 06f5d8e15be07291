package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	stdmail "net/mail"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/abedul59/shjhs-class-system/pkg/config"
	"github.com/abedul59/shjhs-class-system/pkg/metrics"
)

// SMTPTransport submits mail over SMTP. Every Submit dials a fresh connection.
type SMTPTransport struct {
	dialer        *gomail.Dialer
	senderAddress string
	log           *zap.SugaredLogger
}

func NewSMTPTransport(cfg config.Mail, log *zap.SugaredLogger) *SMTPTransport {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log = log.Named("smtp")

	// Gmail style accounts log in with the sender address itself.
	username := cfg.Username
	if username == "" {
		username = cfg.SenderAddress
	}
	d := gomail.NewDialer(cfg.Host, cfg.Port, username, cfg.Password)
	if cfg.InsecureSkipVerify {
		log.Warnw("InsecureSkipVerify is enabled for mail TLS connection", "host", cfg.Host)
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true, ServerName: cfg.Host} // #nosec G402 -- opt-in via config
	}

	log.Infow("Initialized SMTP transport", "host", cfg.Host, "port", cfg.Port, "user", username)
	return &SMTPTransport{
		dialer:        d,
		senderAddress: cfg.SenderAddress,
		log:           log,
	}
}

func (s *SMTPTransport) Name() string { return ProviderSMTP }

func (s *SMTPTransport) configured() bool {
	return s.senderAddress != "" && s.dialer.Password != ""
}

// Submit sends sub and returns the Message-ID it was sent with.
// If ctx ends first the caller gets ctx.Err(); the submission already in flight is not aborted.
func (s *SMTPTransport) Submit(ctx context.Context, sub Submission) (string, error) {
	if !s.configured() {
		return "", s.fail(&ConfigurationError{Err: ErrNotConfigured})
	}

	msg, id, err := s.buildMessage(sub)
	if err != nil {
		return "", s.fail(&TransportError{Err: err})
	}

	// gomail stores the negotiated auth mechanism on the dialer, so each call works on its own copy.
	d := *s.dialer
	done := make(chan error, 1)
	go func() {
		// Metrics record the delivery outcome, not whether the caller waited for it.
		if err := d.DialAndSend(msg); err != nil {
			done <- s.fail(Classify(err))
			return
		}
		s.log.Debugw("Mail accepted by SMTP server", "messageID", id, "bccCount", len(sub.BccList()))
		metrics.MailSendSuccess.WithLabelValues(s.Name()).Inc()
		done <- nil
	}()

	select {
	case err := <-done:
		if err != nil {
			return "", err
		}
		return id, nil
	case <-ctx.Done():
		s.log.Warnw("Caller gave up before SMTP submission finished", "messageID", id)
		return "", &TransportError{Err: ctx.Err()}
	}
}

// Check dials and authenticates against the server without sending anything.
func (s *SMTPTransport) Check(ctx context.Context) error {
	if !s.configured() {
		return &ConfigurationError{Err: ErrNotConfigured}
	}

	d := *s.dialer
	done := make(chan error, 1)
	go func() {
		sc, err := d.Dial()
		if err != nil {
			done <- err
			return
		}
		done <- sc.Close()
	}()

	select {
	case err := <-done:
		return Classify(err)
	case <-ctx.Done():
		return &TransportError{Err: ctx.Err()}
	}
}

func (s *SMTPTransport) buildMessage(sub Submission) (*gomail.Message, string, error) {
	from, err := stdmail.ParseAddress(sub.From)
	if err != nil {
		return nil, "", fmt.Errorf("invalid from address %q: %w", sub.From, err)
	}

	id := newMessageID(from.Address)
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", from.Address, from.Name)
	msg.SetHeader("To", sub.To)
	if bcc := sub.BccList(); len(bcc) > 0 {
		msg.SetHeader("Bcc", bcc...)
	}
	msg.SetHeader("Subject", sub.Subject)
	msg.SetHeader("Message-ID", id)
	msg.SetBody("text/plain", sub.Text)
	return msg, id, nil
}

func (s *SMTPTransport) fail(err error) error {
	metrics.MailSendFailure.WithLabelValues(s.Name(), KindOf(err)).Inc()
	return err
}

// newMessageID returns an RFC 5322 msg-id scoped to the sender's domain.
func newMessageID(senderAddress string) string {
	domain := "localhost"
	if at := strings.LastIndex(senderAddress, "@"); at >= 0 && at < len(senderAddress)-1 {
		domain = senderAddress[at+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}
