// Package relay turns a send-email request into exactly one mail submission
// and exactly one HTTP response. Missing fields are replaced by defaults, the
// transport is called once and any failure is collapsed into a single uniform
// error response.
package relay
