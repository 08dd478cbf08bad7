package main

import (
	"context"
	"os"

	"github.com/paularlott/cli"
	"github.com/paularlott/cli/env"

	"github.com/martinsuchenak/ipamd/cmd/prefix"
	"github.com/martinsuchenak/ipamd/cmd/seed"
	"github.com/martinsuchenak/ipamd/cmd/server"
	"github.com/martinsuchenak/ipamd/cmd/token"
	"github.com/martinsuchenak/ipamd/cmd/vrf"
	"github.com/martinsuchenak/ipamd/internal/log"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Load .env file if it exists
	env.Load()

	// Initialize structured logging
	log.Configure("info", "console")

	rootCmd := &cli.Command{
		Name:        "ipamd",
		Version:     version,
		Usage:       "IP address management server with MCP support",
		Description: "Track VRFs, prefixes, IP addresses, VLANs and services, with a web UI, REST API, MCP server and CLI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:         "log-level",
				Usage:        "Log level (trace, debug, info, warn, error)",
				DefaultValue: "info",
				EnvVars:      []string{"IPAMD_LOG_LEVEL"},
				Global:       true,
			},
			&cli.StringFlag{
				Name:         "log-format",
				Usage:        "Log format (console, json)",
				DefaultValue: "console",
				EnvVars:      []string{"IPAMD_LOG_FORMAT"},
				Global:       true,
			},
		},
		PreRun: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logLevel := cmd.GetString("log-level")
			logFormat := cmd.GetString("log-format")
			log.Configure(logLevel, logFormat)
			return ctx, nil
		},
		Commands: []*cli.Command{
			server.Command(),
			seed.Command(),
			token.Command(),
			{
				Name:        "prefix",
				Usage:       "Prefix management commands",
				Description: "Manage prefixes on a running server",
				Commands:    prefix.Commands(),
			},
			{
				Name:        "vrf",
				Usage:       "VRF management commands",
				Description: "Manage VRFs on a running server",
				Commands:    vrf.Commands(),
			},
		},
	}

	if err := rootCmd.Execute(context.Background()); err != nil {
		log.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}
