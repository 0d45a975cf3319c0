// Package flagx lets several configuration layers share os.Args: each layer
// keeps only the flags it owns and parses them with its own FlagSet.
package flagx

import (
	"flag"
	"io"
	"os"
	"strings"
)

// FilterArgs returns the subset of args that belong to the named flags.
//
// Names are given without dashes ("c", "config"); both "-name" and "--name"
// spellings match. Two forms are understood:
//
//	-c conf.json      flag and value as separate arguments
//	--config=x.json   flag and value joined with '='
//
// A separate value is only taken when it does not itself start with '-'.
// The result is never nil.
func FilterArgs(args []string, names ...string) []string {
	owned := make(map[string]bool, len(names))
	for _, n := range names {
		owned[strings.TrimLeft(n, "-")] = true
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !owned[name] {
			continue
		}
		out = append(out, arg)

		if !hasValue && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

// ConfigFile extracts the path given with -c or -config from args.
// It returns "" when neither flag is present.
func ConfigFile(args []string) string {
	var path string

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, "c", "config"))

	return path
}

// ConfigFileFlag is ConfigFile applied to the process arguments.
func ConfigFileFlag() string {
	return ConfigFile(os.Args[1:])
}
