// Package api implements the Gin-based HTTP server of the mail relay: request
// logging and recovery, CORS, per-IP rate limiting, health, metrics and version
// endpoints, and registration of API controllers under /api.
package api
