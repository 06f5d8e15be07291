package relay

import (
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abedul59/shjhs-class-system/pkg/apiresponses"
	"github.com/abedul59/shjhs-class-system/pkg/config"
	"github.com/abedul59/shjhs-class-system/pkg/metrics"
	"github.com/abedul59/shjhs-class-system/pkg/system"
)

const (
	outcomeSucceeded = "succeeded"
	outcomeFailed    = "failed"
	outcomeRejected  = "rejected"
)

// Controller exposes the relay as POST /api/send-email.
type Controller struct {
	log            *zap.SugaredLogger
	relay          *Relay
	failureMessage string
	middlewares    []gin.HandlerFunc
}

func NewController(log *zap.SugaredLogger, relay *Relay, failureMessage string, middlewares ...gin.HandlerFunc) *Controller {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if failureMessage == "" {
		failureMessage = config.DefaultFailureMessage
	}
	return &Controller{
		log:            log,
		relay:          relay,
		failureMessage: failureMessage,
		middlewares:    middlewares,
	}
}

func (Controller) BasePath() string {
	return "send-email"
}

func (sc *Controller) Register(rg *gin.RouterGroup) error {
	rg.POST("", sc.handleSend)
	return nil
}

func (sc *Controller) Handlers() []gin.HandlerFunc {
	return sc.middlewares
}

func (sc *Controller) handleSend(c *gin.Context) {
	start := time.Now()
	reqLog := system.GetReqLogger(c, sc.log)

	var req SendRequest
	// An empty body is an empty request: every field has a default.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		reqLog.Debugw("Rejected malformed send-email body", "error", err)
		observe(outcomeRejected, start)
		apiresponses.RespondBadRequest(c, "invalid request body")
		return
	}

	// The submission runs to completion even if the client goes away; its result is then discarded.
	result, err := sc.relay.send(c.Request.Context(), req, reqLog)
	if err != nil {
		observe(outcomeFailed, start)
		apiresponses.RespondInternalErrorSimple(c, sc.failureMessage)
		return
	}

	observe(outcomeSucceeded, start)
	apiresponses.RespondOK(c, result)
}

func observe(outcome string, start time.Time) {
	metrics.RelayRequests.WithLabelValues(outcome).Inc()
	metrics.RelayRequestDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}
