package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v2"
)

const (
	// DefaultConfigPath is used when no path is passed to Load. A missing file there is not an error.
	DefaultConfigPath = "./config.yaml"

	DefaultListenAddress  = ":8080"
	DefaultMailProvider   = "smtp"
	DefaultMailHost       = "smtp.gmail.com"
	DefaultMailPort       = 587
	DefaultSenderName     = "班級導師系統"
	DefaultSubject        = "班級重要通知"
	DefaultFailureMessage = "寄信失敗，請檢查 SMTP 設定"
)

type Server struct {
	ListenAddress  string   `yaml:"listenAddress"`
	TLSCertFile    string   `yaml:"tlsCertFile"`
	TLSKeyFile     string   `yaml:"tlsKeyFile"`
	TrustedProxies []string `yaml:"trustedProxies"` // IPs/CIDRS to trust for X-Forwarded-For headers
	// AllowedOrigins enables CORS for the listed browser origins (e.g. the class page).
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// KeyringRef points at a secret stored in the OS keyring.
type KeyringRef struct {
	Service string `yaml:"service"`
	User    string `yaml:"user"`
}

type Mail struct {
	// Provider selects the transport: smtp, resend or log.
	Provider string `yaml:"provider"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	// Username defaults to SenderAddress when empty.
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// PasswordKeyring is consulted only when Password is empty.
	PasswordKeyring    KeyringRef `yaml:"passwordKeyring"`
	InsecureSkipVerify bool       `yaml:"insecureSkipVerify"`
	SenderAddress      string     `yaml:"senderAddress"`
	SenderName         string     `yaml:"senderName"`
	DefaultSubject     string     `yaml:"defaultSubject"`
	// FailureMessage is returned to callers on every failed send.
	FailureMessage string `yaml:"failureMessage"`
	ResendAPIKey   string `yaml:"resendAPIKey"`
}

type RateLimit struct {
	Disabled bool    `yaml:"disabled"`
	Rate     float64 `yaml:"rate"`
	Burst    int     `yaml:"burst"`
}

type Config struct {
	Server    Server    `yaml:"server"`
	Mail      Mail      `yaml:"mail"`
	RateLimit RateLimit `yaml:"rateLimit"`
}

// DefaultConfig returns the values used for every field left empty by file and environment.
func DefaultConfig() Config {
	return Config{
		Server: Server{
			ListenAddress: DefaultListenAddress,
		},
		Mail: Mail{
			Provider:       DefaultMailProvider,
			Host:           DefaultMailHost,
			Port:           DefaultMailPort,
			SenderName:     DefaultSenderName,
			DefaultSubject: DefaultSubject,
			FailureMessage: DefaultFailureMessage,
		},
		RateLimit: RateLimit{
			Rate:  5,
			Burst: 10,
		},
	}
}

// Load loads the relay configuration.
// Precedence: environment (including a .env file) over the YAML file over defaults.
// If configPath is empty, ./config.yaml is used when it exists.
func Load(configPath ...string) (Config, error) {
	var config Config

	if err := LoadDotEnv(); err != nil {
		return config, err
	}

	path := DefaultConfigPath
	explicit := len(configPath) > 0 && configPath[0] != ""
	if explicit {
		path = configPath[0]
	}

	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(content, &config); err != nil {
			return config, fmt.Errorf("error unmarshaling YAML %s: %w", path, err)
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return config, fmt.Errorf("trying to open mail relay config file %s: %w", path, err)
	}

	config.ApplyEnv()
	if err := config.ResolveSecrets(); err != nil {
		return config, err
	}
	if err := config.Defaults(); err != nil {
		return config, err
	}
	return config, nil
}

// LoadDotEnv loads .env files into the process environment without overriding
// variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading env file %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from environment variables.
// SENDER_EMAIL and SENDER_PASSWORD keep the names used by existing deployments.
func (c *Config) ApplyEnv() {
	setString(&c.Server.ListenAddress, "LISTEN_ADDRESS")
	setString(&c.Mail.Provider, "MAIL_PROVIDER")
	setString(&c.Mail.Host, "MAIL_HOST")
	if v, ok := os.LookupEnv("MAIL_PORT"); ok {
		if port, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.Mail.Port = port
		}
	}
	setString(&c.Mail.Username, "MAIL_USERNAME")
	setString(&c.Mail.SenderAddress, "SENDER_EMAIL")
	setString(&c.Mail.Password, "SENDER_PASSWORD")
	setString(&c.Mail.SenderName, "MAIL_SENDER_NAME")
	setString(&c.Mail.DefaultSubject, "MAIL_DEFAULT_SUBJECT")
	setString(&c.Mail.FailureMessage, "MAIL_FAILURE_MESSAGE")
	setString(&c.Mail.ResendAPIKey, "RESEND_API_KEY")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// ResolveSecrets fills Mail.Password from the OS keyring when it is empty and a keyring entry is configured.
func (c *Config) ResolveSecrets() error {
	ref := c.Mail.PasswordKeyring
	if c.Mail.Password != "" || ref.Service == "" {
		return nil
	}
	user := ref.User
	if user == "" {
		user = c.Mail.SenderAddress
	}
	secret, err := keyring.Get(ref.Service, user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("reading mail password from keyring service %q: %w", ref.Service, err)
	}
	c.Mail.Password = secret
	return nil
}

// Defaults fills every empty field from DefaultConfig.
func (c *Config) Defaults() error {
	if err := mergo.Merge(c, DefaultConfig()); err != nil {
		return fmt.Errorf("applying config defaults: %w", err)
	}
	return nil
}

// Validate reports settings that will make every send fail.
func (c Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Mail.Provider) {
	case "", DefaultMailProvider:
		if c.Mail.SenderAddress == "" {
			errs = append(errs, errors.New("mail.senderAddress (SENDER_EMAIL) is not set"))
		}
		if c.Mail.Password == "" {
			errs = append(errs, errors.New("mail.password (SENDER_PASSWORD) is not set"))
		}
		if c.Mail.Host == "" {
			errs = append(errs, errors.New("mail.host is not set"))
		}
		if c.Mail.Port <= 0 || c.Mail.Port > 65535 {
			errs = append(errs, fmt.Errorf("mail.port %d is out of range", c.Mail.Port))
		}
	case "resend":
		if c.Mail.SenderAddress == "" {
			errs = append(errs, errors.New("mail.senderAddress (SENDER_EMAIL) is not set"))
		}
		if c.Mail.ResendAPIKey == "" {
			errs = append(errs, errors.New("mail.resendAPIKey (RESEND_API_KEY) is not set"))
		}
	case "log":
	default:
		errs = append(errs, fmt.Errorf("unknown mail.provider %q", c.Mail.Provider))
	}
	if (c.Server.TLSCertFile == "") != (c.Server.TLSKeyFile == "") {
		errs = append(errs, errors.New("server.tlsCertFile and server.tlsKeyFile must be set together"))
	}
	return errors.Join(errs...)
}
