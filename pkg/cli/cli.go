package cli

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/abedul59/shjhs-class-system/pkg/api"
	"github.com/abedul59/shjhs-class-system/pkg/config"
	"github.com/abedul59/shjhs-class-system/pkg/mail"
	"github.com/abedul59/shjhs-class-system/pkg/relay"
	"github.com/abedul59/shjhs-class-system/pkg/version"
)

const checkTimeout = 30 * time.Second

type Config struct {
	Debug         bool
	ConfigPath    string
	ListenAddress string
	// FailFast refuses to start when the mail transport is not fully configured.
	// Otherwise the server starts and every send fails with the uniform error.
	FailFast bool
}

// transportChecker is implemented by transports that can verify connectivity without sending.
type transportChecker interface {
	Check(ctx context.Context) error
}

// NewRootCommand builds the mailrelay command tree. Output of check and version goes to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	if out == nil {
		out = os.Stdout
	}
	cfg := &Config{}

	root := &cobra.Command{
		Use:           "mailrelay",
		Short:         "Relay class notices as email through an SMTP provider",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}
	root.PersistentFlags().BoolVar(&cfg.Debug, "debug", getEnvBool("MAILRELAY_DEBUG", false), "Enable debug level logging")
	root.PersistentFlags().StringVar(&cfg.ConfigPath, "config", getEnvString("MAILRELAY_CONFIG_PATH", ""),
		"Path to the mail relay configuration file (default ./config.yaml if present)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP mail relay",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}
	for _, c := range []*cobra.Command{root, serve} {
		c.Flags().StringVar(&cfg.ListenAddress, "listen-address", getEnvString("LISTEN_ADDRESS", ""),
			"Address the HTTP server binds to (overrides server.listenAddress)")
		c.Flags().BoolVar(&cfg.FailFast, "fail-fast", getEnvBool("MAILRELAY_FAIL_FAST", false),
			"Exit at startup when the mail transport is not fully configured")
	}

	check := &cobra.Command{
		Use:   "check",
		Short: "Verify that the mail transport accepts the configured credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd.Context(), cfg, out)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(_ *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(out, version.GetBuildInfo().String())
		},
	}

	root.AddCommand(serve, check, versionCmd)
	return root
}

func runServe(ctx context.Context, cli *Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	zl := setupLogger(cli.Debug)
	defer func() { _ = zl.Sync() }()
	log := zl.Sugar()
	log.With("version", version.Version).Info("Starting mail relay")

	cfg, err := config.Load(cli.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cli.ListenAddress != "" {
		cfg.Server.ListenAddress = cli.ListenAddress
	}
	if err := cfg.Validate(); err != nil {
		if cli.FailFast {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		log.Warnw("Mail transport is not fully configured; every send will fail until it is fixed", "error", err)
	}
	cli.Print(log, cfg)

	rel, err := NewRelay(cfg, log)
	if err != nil {
		return err
	}

	server := api.NewServer(zl, cfg, cli.Debug)
	err = server.RegisterAll([]api.APIController{
		relay.NewController(log, rel, cfg.Mail.FailureMessage),
	})
	if err != nil {
		return fmt.Errorf("registering controllers: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.Run(ctx)
}

// NewRelay wires the configured transport into a relay.
func NewRelay(cfg config.Config, log *zap.SugaredLogger) (*relay.Relay, error) {
	transport, err := mail.NewTransport(cfg.Mail, log)
	if err != nil {
		return nil, err
	}
	return relay.New(transport, relay.DefaultsFromConfig(cfg.Mail), log), nil
}

func runCheck(ctx context.Context, cli *Config, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	zl := setupLogger(cli.Debug)
	defer func() { _ = zl.Sync() }()

	cfg, err := config.Load(cli.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	transport, err := mail.NewTransport(cfg.Mail, zl.Sugar())
	if err != nil {
		return err
	}
	checker, ok := transport.(transportChecker)
	if !ok {
		_, _ = fmt.Fprintf(out, "provider %s has no connectivity check\n", transport.Name())
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	if err := checker.Check(ctx); err != nil {
		return fmt.Errorf("%s check failed (%s): %w", transport.Name(), mail.KindOf(err), err)
	}
	_, _ = fmt.Fprintf(out, "%s transport OK\n", transport.Name())
	return nil
}

// Print logs the effective configuration without secrets.
func (c *Config) Print(log *zap.SugaredLogger, cfg config.Config) {
	log.Infow("Configuration",
		"debug", c.Debug,
		"config_path", c.ConfigPath,
		"listen_address", cfg.Server.ListenAddress,
		"tls", cfg.Server.TLSCertFile != "",
		"mail_provider", cfg.Mail.Provider,
		"mail_host", cfg.Mail.Host,
		"mail_port", cfg.Mail.Port,
		"sender_address", cfg.Mail.SenderAddress,
		"password_set", cfg.Mail.Password != "",
		"rate_limit_disabled", cfg.RateLimit.Disabled,
	)
}

func setupLogger(debug bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	// Disable automatic stacktraces for non-fatal levels to avoid noisy traces in WARN/INFO logs
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format(time.RFC3339))
	}
	cfg.EncoderConfig.TimeKey = "ts"
	logger, err := cfg.Build()
	if err != nil {
		stdlog.Fatalf("failed to set up logger: %v", err)
	}
	return logger
}

// getEnvString returns the value of an environment variable, or the provided default if not set.
func getEnvString(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvBool returns the value of an environment variable as a bool, or the provided default if not set.
// Valid true values are "true", "1", "yes" (case-insensitive).
func getEnvBool(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}
