package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "NEURALART_"

// loadDotEnv fills the environment from ./.env without overriding
// variables that are already set. A missing file is not an error.
var loadDotEnv = func() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// parseEnv overlays Config with NEURALART_* environment variables:
//
//	NEURALART_SERVER_URL       NEURALART_POLL_INTERVAL (e.g. "3s")
//	NEURALART_REQUEST_TIMEOUT  NEURALART_NOTICE_TTL
//	NEURALART_CREDENTIAL_MODE  NEURALART_DATABASE_PATH
//	NEURALART_DOWNLOAD_DIR     NEURALART_PREVIEW_DIR
//	NEURALART_LOG_LEVEL        NEURALART_LOG_FORMAT
//	NEURALART_S3_ENDPOINT      NEURALART_S3_REGION     NEURALART_S3_BUCKET
//	NEURALART_S3_ACCESS_KEY    NEURALART_S3_SECRET_KEY
//
// Unset or empty variables leave the field alone. A malformed duration panics.
func parseEnv(cfg *Config) {
	if err := loadDotEnv(); err != nil {
		panic(err)
	}

	str := map[string]*string{
		"SERVER_URL":      &cfg.ServerURL,
		"CREDENTIAL_MODE": &cfg.CredentialMode,
		"DATABASE_PATH":   &cfg.DatabasePath,
		"DOWNLOAD_DIR":    &cfg.DownloadDir,
		"PREVIEW_DIR":     &cfg.PreviewDir,
		"LOG_LEVEL":       &cfg.LogLevel,
		"LOG_FORMAT":      &cfg.LogFormat,
		"S3_ENDPOINT":     &cfg.S3.Endpoint,
		"S3_REGION":       &cfg.S3.Region,
		"S3_BUCKET":       &cfg.S3.Bucket,
		"S3_ACCESS_KEY":   &cfg.S3.AccessKey,
		"S3_SECRET_KEY":   &cfg.S3.SecretKey,
	}
	for name, dst := range str {
		if v := os.Getenv(envPrefix + name); v != "" {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"POLL_INTERVAL":   &cfg.PollInterval,
		"REQUEST_TIMEOUT": &cfg.RequestTimeout,
		"NOTICE_TTL":      &cfg.NoticeTTL,
	}
	for name, dst := range durations {
		v := os.Getenv(envPrefix + name)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		*dst = d
	}
}
