// Package mail provides the outbound mail transports used by the relay:
// SMTP submission via gomail, the Resend HTTP API and a log-only transport
// for local development, plus the error taxonomy shared by all of them.
package mail
