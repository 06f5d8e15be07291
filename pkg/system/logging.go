package system

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReqLoggerKey is the context key used to store request-scoped logger in gin context.
const ReqLoggerKey = "reqLogger"

// CorrelationIDKey is the gin context key holding the request correlation ID.
const CorrelationIDKey = "cid"

// RequestIDHeader carries the correlation ID in and out of the service.
const RequestIDHeader = "X-Request-ID"

// GetReqLogger returns the request-scoped sugared logger from gin.Context if present,
// otherwise returns the provided fallback.
func GetReqLogger(c *gin.Context, fallback *zap.SugaredLogger) *zap.SugaredLogger {
	if c == nil {
		return fallback
	}
	if v, ok := c.Get(ReqLoggerKey); ok {
		if l, ok2 := v.(*zap.SugaredLogger); ok2 {
			return l
		}
	}
	return fallback
}

// RequestLogger attaches a correlation ID and a request-scoped logger to every request.
// An incoming X-Request-ID is reused, otherwise a new one is generated. The ID is echoed
// back in the response header.
func RequestLogger(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.GetHeader(RequestIDHeader)
		if cid == "" || len(cid) > 128 {
			cid = uuid.NewString()
		}
		c.Set(CorrelationIDKey, cid)
		c.Set(ReqLoggerKey, log.With("cid", cid, "path", c.FullPath()))
		c.Writer.Header().Set(RequestIDHeader, cid)
		c.Next()
	}
}
