package mail

import "testing"

// StartAcceptingSMTPServer runs the fake SMTP server for external tests. It returns the
// port and a func listing the DATA section of every delivered message.
func StartAcceptingSMTPServer(t *testing.T) (int, func() []string) {
	t.Helper()
	srv := startFakeSMTPServer(t, authOK, false)
	return srv.port(), func() []string {
		var out []string
		for _, s := range srv.delivered() {
			out = append(out, s.data)
		}
		return out
	}
}
