package mail

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abedul59/shjhs-class-system/pkg/metrics"
)

// LogTransport logs submissions instead of sending them. Useful for local development.
type LogTransport struct {
	log *zap.SugaredLogger
}

func NewLogTransport(log *zap.SugaredLogger) *LogTransport {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &LogTransport{log: log.Named("log-transport")}
}

func (l *LogTransport) Name() string { return ProviderLog }

// Submit logs the submission and returns a fake message ID.
func (l *LogTransport) Submit(_ context.Context, sub Submission) (string, error) {
	id := "log-" + uuid.NewString()
	l.log.Infow("Mail logged (not sent)",
		"from", sub.From,
		"to", sub.To,
		"bcc", sub.BccList(),
		"subject", sub.Subject,
		"textLength", len(sub.Text),
		"messageID", id)
	metrics.MailSendSuccess.WithLabelValues(l.Name()).Inc()
	return id, nil
}
