package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	base := func() *Config {
		return &Config{ServerURL: "http://127.0.0.1:8000", PollInterval: 1500 * time.Millisecond, CredentialMode: "token"}
	}

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd", "-a", "http://10.0.0.1:9090", "-i", "10", "-m", "cookie"},
			expected: &Config{ServerURL: "http://10.0.0.1:9090", PollInterval: 10 * time.Second, CredentialMode: "cookie"}},
		{name: "unset flags keep values", args: []string{"cmd", "-c", "x.json", "-a", "http://h:1"},
			expected: &Config{ServerURL: "http://h:1", PollInterval: 1500 * time.Millisecond, CredentialMode: "token"}},
		{name: "no flags", args: []string{"cmd"}, expected: base()},
		{name: "incorrect poll interval", args: []string{"cmd", "-i", "abc"}, expectPanic: true},
	}

	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := base()

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
