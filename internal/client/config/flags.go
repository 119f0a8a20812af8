package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/pakegate/internal/flagx"
)

// parseFlags overlays cfg with the connection flags found in args:
//
//	-a string     server base URL
//	-t duration   per-request timeout
//
// Other arguments (subcommands and their flags) are filtered out first.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-t"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "server base URL")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
