// Package cli defines the mailrelay command line: the serve command that runs the
// HTTP relay, the check command that verifies the mail transport credentials, and
// the version command. Flags fall back to environment variables.
package cli
