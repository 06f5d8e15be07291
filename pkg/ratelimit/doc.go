// Package ratelimit provides per-IP rate limiting middleware for the relay API.
package ratelimit
