package mail

import (
	"errors"
	"net/textproto"
)

// ErrNotConfigured is returned when the sender address or credential is missing.
var ErrNotConfigured = errors.New("mail transport is not configured: sender address and credential are required")

const (
	KindConfiguration = "configuration"
	KindTransport     = "transport"
	KindUnknown       = "unknown"
)

// ConfigurationError means the transport credentials or sender address are missing
// or were rejected by the provider.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return "mail configuration error: " + e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// TransportError covers network and provider failures during submission.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "mail transport error: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// SMTP reply codes that point at credentials rather than at the message.
var authReplyCodes = map[int]bool{
	530: true, // authentication required
	534: true, // authentication mechanism too weak / app password required
	535: true, // credentials invalid
}

// Classify wraps err into a ConfigurationError or TransportError.
// Errors that already carry a kind are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var ce *ConfigurationError
	var te *TransportError
	if errors.As(err, &ce) || errors.As(err, &te) {
		return err
	}
	if errors.Is(err, ErrNotConfigured) {
		return &ConfigurationError{Err: err}
	}
	var reply *textproto.Error
	if errors.As(err, &reply) && authReplyCodes[reply.Code] {
		return &ConfigurationError{Err: err}
	}
	return &TransportError{Err: err}
}

// KindOf reports the taxonomy kind of err for logs and metric labels.
func KindOf(err error) string {
	var ce *ConfigurationError
	var te *TransportError
	switch {
	case errors.As(err, &ce):
		return KindConfiguration
	case errors.As(err, &te):
		return KindTransport
	default:
		return KindUnknown
	}
}
