package config

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/neuralart/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   base URL of the API server
//	-i int      job status poll interval (seconds)
//	-m string   credential mode: cookie or token
//
// Only flags present on the command line change the Config. os.Args is
// filtered with flagx.FilterArgs first so flags owned by other layers
// (-c) do not break parsing.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], "a", "i", "m")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	serverURL := fs.String("a", cfg.ServerURL, "base URL of the API server")
	pollSeconds := fs.Int("i", int(cfg.PollInterval.Seconds()), "job status poll interval (in seconds)")
	mode := fs.String("m", cfg.CredentialMode, "credential mode: cookie or token")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "a":
			cfg.ServerURL = *serverURL
		case "i":
			cfg.PollInterval = time.Duration(*pollSeconds) * time.Second
		case "m":
			cfg.CredentialMode = *mode
		}
	})
}
