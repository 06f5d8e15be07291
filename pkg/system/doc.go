// Package system holds request-scoped logging helpers shared by the HTTP layer
// and the test loggers used across packages.
package system
