package cli

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abedul59/shjhs-class-system/pkg/config"
	"github.com/abedul59/shjhs-class-system/pkg/relay"
	"github.com/abedul59/shjhs-class-system/pkg/system"
	"github.com/abedul59/shjhs-class-system/pkg/version"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("MAILRELAY_TEST_ENV", "custom-value")

	if got := getEnvString("MAILRELAY_TEST_ENV", "default"); got != "custom-value" {
		t.Fatalf("expected env override, got %s", got)
	}

	if got := getEnvString("MAILRELAY_UNKNOWN_ENV", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %s", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{value: "true", def: false, want: true},
		{value: "TRUE", def: false, want: true},
		{value: "1", def: false, want: true},
		{value: "yes", def: false, want: true},
		{value: "false", def: true, want: false},
		{value: "0", def: true, want: false},
		{value: "no", def: true, want: false},
		{value: "sometimes", def: true, want: true},
		{value: "sometimes", def: false, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("MAILRELAY_BOOL_TEST", tt.value)
			assert.Equal(t, tt.want, getEnvBool("MAILRELAY_BOOL_TEST", tt.def))
		})
	}

	if getEnvBool("MAILRELAY_BOOL_MISSING", false) {
		t.Fatal("expected default false when env missing")
	}
}

func TestRootCommandTree(t *testing.T) {
	root := NewRootCommand(&bytes.Buffer{})
	for _, name := range []string{"serve", "check", "version"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("debug"))
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.NotNil(t, serve.Flags().Lookup("listen-address"))
	assert.NotNil(t, serve.Flags().Lookup("fail-fast"))
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	root := NewRootCommand(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "mailrelay "+version.Version)
}

// writeMailConfig writes a config file and blanks the environment overrides so the file wins.
func writeMailConfig(t *testing.T, body string) string {
	t.Helper()
	for _, key := range []string{"MAIL_PROVIDER", "MAIL_HOST", "MAIL_PORT", "MAIL_USERNAME", "SENDER_EMAIL", "SENDER_PASSWORD", "RESEND_API_KEY"} {
		t.Setenv(key, "")
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestCheckCommand(t *testing.T) {
	t.Run("provider without check", func(t *testing.T) {
		path := writeMailConfig(t, "mail:\n  provider: log\n")
		var out bytes.Buffer
		root := NewRootCommand(&out)
		root.SetArgs([]string{"check", "--config", path})
		require.NoError(t, root.Execute())
		assert.Contains(t, out.String(), "provider log has no connectivity check")
	})

	t.Run("unreachable smtp server", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		port := ln.Addr().(*net.TCPAddr).Port
		require.NoError(t, ln.Close())

		path := writeMailConfig(t, "mail:\n  provider: smtp\n  host: 127.0.0.1\n  port: "+strconv.Itoa(port)+
			"\n  senderAddress: teacher@example.com\n  password: app-password\n")
		root := NewRootCommand(&bytes.Buffer{})
		root.SetArgs([]string{"check", "--config", path})
		err = root.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "smtp check failed (transport)")
	})

	t.Run("incomplete configuration", func(t *testing.T) {
		path := writeMailConfig(t, "mail:\n  provider: smtp\n")
		root := NewRootCommand(&bytes.Buffer{})
		root.SetArgs([]string{"check", "--config", path})
		err := root.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})
}

func TestServeFailFast(t *testing.T) {
	path := writeMailConfig(t, "mail:\n  provider: smtp\n")
	root := NewRootCommand(&bytes.Buffer{})
	root.SetArgs([]string{"serve", "--config", path, "--fail-fast"})
	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestNewRelay(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Mail.Provider = "log"
	rel, err := NewRelay(cfg, system.NewTestLogger(t))
	require.NoError(t, err)

	res, err := rel.Send(context.Background(), relay.SendRequest{To: "a@example.com"})
	require.NoError(t, err)
	assert.True(t, res.Success)

	cfg.Mail.Provider = "fax"
	_, err = NewRelay(cfg, system.NewTestLogger(t))
	assert.Error(t, err)
}

func TestSetupLogger(t *testing.T) {
	assert.NotNil(t, setupLogger(true))
	assert.NotNil(t, setupLogger(false))
}
