package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"github.com/abedul59/shjhs-class-system/pkg/metrics"
)

// resendTimeout bounds an API call that no longer has a caller waiting on it.
const resendTimeout = 30 * time.Second

// ResendTransport sends mail through the Resend HTTP API.
type ResendTransport struct {
	client *resend.Client
	apiKey string
	log    *zap.SugaredLogger
}

func NewResendTransport(apiKey string, log *zap.SugaredLogger) *ResendTransport {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ResendTransport{
		client: resend.NewClient(apiKey),
		apiKey: apiKey,
		log:    log.Named("resend"),
	}
}

func (r *ResendTransport) Name() string { return ProviderResend }

// Submit sends sub through the API. Like SMTPTransport.Submit, a cancelled ctx releases the
// caller but does not abort the request already sent.
func (r *ResendTransport) Submit(ctx context.Context, sub Submission) (string, error) {
	if r.apiKey == "" {
		return "", r.fail(&ConfigurationError{Err: ErrNotConfigured})
	}

	params := &resend.SendEmailRequest{
		From:    sub.From,
		To:      []string{sub.To},
		Subject: sub.Subject,
		Text:    sub.Text,
	}
	if bcc := sub.BccList(); len(bcc) > 0 {
		params.Bcc = bcc
	}

	type result struct {
		id  string
		err error
	}
	done := make(chan result, 1)
	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), resendTimeout)
		defer cancel()
		sent, err := r.client.Emails.SendWithContext(sendCtx, params)
		if err != nil {
			done <- result{err: r.fail(&TransportError{Err: fmt.Errorf("resend send failed: %w", err)})}
			return
		}
		r.log.Debugw("Mail accepted by Resend", "messageID", sent.Id)
		metrics.MailSendSuccess.WithLabelValues(r.Name()).Inc()
		done <- result{id: sent.Id}
	}()

	select {
	case res := <-done:
		return res.id, res.err
	case <-ctx.Done():
		r.log.Warnw("Caller gave up before Resend accepted the mail")
		return "", &TransportError{Err: ctx.Err()}
	}
}

func (r *ResendTransport) fail(err error) error {
	metrics.MailSendFailure.WithLabelValues(r.Name(), KindOf(err)).Inc()
	return err
}
