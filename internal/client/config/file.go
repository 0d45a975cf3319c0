package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/neuralart/internal/flagx"
	"github.com/dmitrijs2005/neuralart/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for decoding the config file.
// Durations use timex.Duration so they can be written as "3s" or as
// integer nanoseconds. Zero values mean "not set".
type FileConfig struct {
	ServerURL      string         `json:"server_url" yaml:"server_url"`
	PollInterval   timex.Duration `json:"poll_interval" yaml:"poll_interval"`
	RequestTimeout timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	NoticeTTL      timex.Duration `json:"notice_ttl" yaml:"notice_ttl"`
	CredentialMode string         `json:"credential_mode" yaml:"credential_mode"`
	DatabasePath   string         `json:"database_path" yaml:"database_path"`
	DownloadDir    string         `json:"download_dir" yaml:"download_dir"`
	PreviewDir     string         `json:"preview_dir" yaml:"preview_dir"`
	LogLevel       string         `json:"log_level" yaml:"log_level"`
	LogFormat      string         `json:"log_format" yaml:"log_format"`
	S3             struct {
		Endpoint  string `json:"endpoint" yaml:"endpoint"`
		Region    string `json:"region" yaml:"region"`
		Bucket    string `json:"bucket" yaml:"bucket"`
		AccessKey string `json:"access_key" yaml:"access_key"`
		SecretKey string `json:"secret_key" yaml:"secret_key"`
	} `json:"s3" yaml:"s3"`
}

// decodeFile picks the decoder from the extension: .yaml and .yml are
// YAML, anything else JSON.
func decodeFile(path string) (FileConfig, error) {
	var fc FileConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fc, fmt.Errorf("decode %s: %w", path, err)
	}
	return fc, nil
}

func (fc FileConfig) apply(cfg *Config) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setString(&cfg.ServerURL, fc.ServerURL)
	setString(&cfg.CredentialMode, fc.CredentialMode)
	setString(&cfg.DatabasePath, fc.DatabasePath)
	setString(&cfg.DownloadDir, fc.DownloadDir)
	setString(&cfg.PreviewDir, fc.PreviewDir)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
	setString(&cfg.S3.Endpoint, fc.S3.Endpoint)
	setString(&cfg.S3.Region, fc.S3.Region)
	setString(&cfg.S3.Bucket, fc.S3.Bucket)
	setString(&cfg.S3.AccessKey, fc.S3.AccessKey)
	setString(&cfg.S3.SecretKey, fc.S3.SecretKey)

	if fc.PollInterval.Duration != 0 {
		cfg.PollInterval = fc.PollInterval.Duration
	}
	if fc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.NoticeTTL.Duration != 0 {
		cfg.NoticeTTL = fc.NoticeTTL.Duration
	}
}

// parseFile overlays Config with the file named by -c or -config.
// Without the flag nothing happens; read or decode errors panic.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	fc, err := decodeFile(path)
	if err != nil {
		panic(err)
	}
	fc.apply(cfg)
}
