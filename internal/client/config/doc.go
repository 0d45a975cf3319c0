// Package config loads runtime configuration for the neuralart CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables prefixed NEURALART_ (see parseEnv); a .env file
//     in the working directory is loaded first and never overrides variables
//     that are already set.
//  3. Optional config file selected with -c or -config (see parseFile);
//     .yaml/.yml files are YAML, everything else JSON.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the API server
//	-i int      job status poll interval (seconds)
//	-m string   credential mode: cookie or token
//
// # File schema
//
// Durations use timex.Duration, so they can be strings like "3s" or integer
// nanoseconds:
//
//	server_url: http://127.0.0.1:8000
//	poll_interval: 3s
//	credential_mode: cookie
//	s3:
//	  endpoint: https://fra1.digitaloceanspaces.com
//	  region: fra1
//	  bucket: nst-art
//
// LoadConfig validates the result and panics on invalid input, like the
// individual loaders do.
package config
