package relay

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abedul59/shjhs-class-system/pkg/mail"
)

// Relay submits send requests through a mail transport. It holds no mutable state
// and is safe for concurrent use.
type Relay struct {
	transport mail.Transport
	defaults  Defaults
	log       *zap.SugaredLogger
}

func New(transport mail.Transport, defaults Defaults, log *zap.SugaredLogger) *Relay {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Relay{
		transport: transport,
		defaults:  defaults,
		log:       log.Named("relay"),
	}
}

// Send makes exactly one submission attempt. There is no retry and no deduplication.
// The returned error is always a *mail.ConfigurationError or *mail.TransportError.
func (r *Relay) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	return r.send(ctx, req, r.log)
}

func (r *Relay) send(ctx context.Context, req SendRequest, log *zap.SugaredLogger) (SendResult, error) {
	sub := BuildSubmission(req, r.defaults)

	id, err := r.transport.Submit(ctx, sub)
	if err != nil {
		err = mail.Classify(err)
		log.Errorw("Failed to send mail",
			"provider", r.transport.Name(),
			"kind", mail.KindOf(err),
			"to", sub.To,
			"bccCount", len(sub.BccList()),
			"error", err)
		return SendResult{}, fmt.Errorf("send mail via %s: %w", r.transport.Name(), err)
	}

	log.Infow("Mail sent",
		"provider", r.transport.Name(),
		"messageID", id,
		"to", sub.To,
		"bccCount", len(sub.BccList()))
	return SendResult{Success: true, MessageID: id}, nil
}
