package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/neuralart/internal/client/credentials"
	"github.com/dmitrijs2005/neuralart/internal/logging"
)

// Config holds runtime settings for the neuralart CLI.
//
// Fields:
//   - ServerURL: base URL of the style transfer API.
//   - PollInterval: pause between two job status queries.
//   - RequestTimeout: bound on every HTTP request; a request that hits it
//     fails the operation as a transport error.
//   - NoticeTTL: how long transient notices stay visible.
//   - CredentialMode: "cookie" or "token" (see package credentials).
//   - DatabasePath: local SQLite file holding the client-held token.
//   - DownloadDir: where results are saved.
//   - PreviewDir: where file previews are written; empty keeps them in memory.
//   - LogLevel, LogFormat: see logging.New.
//   - S3: optional object storage holding results.
type Config struct {
	ServerURL      string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	NoticeTTL      time.Duration
	CredentialMode string
	DatabasePath   string
	DownloadDir    string
	PreviewDir     string
	LogLevel       string
	LogFormat      string
	S3             S3Config
}

// S3Config locates an S3-compatible bucket (e.g. DigitalOcean Spaces).
// An empty Bucket disables it.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.PollInterval = 3 * time.Second
	c.RequestTimeout = 30 * time.Second
	c.NoticeTTL = 3 * time.Second
	c.CredentialMode = string(credentials.ModeToken)
	c.DatabasePath = "neuralart.db"
	c.DownloadDir = "."
	c.PreviewDir = ""
	c.LogLevel = "info"
	c.LogFormat = logging.FormatText
	c.S3 = S3Config{Region: "us-east-1"}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server url %q must be an absolute URL", c.ServerURL)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.NoticeTTL <= 0 {
		return fmt.Errorf("notice ttl must be positive, got %s", c.NoticeTTL)
	}
	if _, err := credentials.ParseMode(c.CredentialMode); err != nil {
		return err
	}
	switch c.LogFormat {
	case logging.FormatText, logging.FormatJSON, logging.FormatZerolog:
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if c.S3.Bucket != "" && c.S3.Region == "" {
		return fmt.Errorf("s3 bucket %q needs a region", c.S3.Bucket)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the environment, a config file (if given) and command-line flags.
// Later sources take precedence over earlier ones. Invalid input panics.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFile(cfg)
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}
