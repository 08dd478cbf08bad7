package config

import (
	"github.com/paularlott/cli"
)

// Config holds the application configuration
type Config struct {
	DataDir          string
	ListenAddr       string
	APIAuthToken     string
	MCPAuthToken     string
	DNSCheckEnabled  bool
	DNSCheckSchedule string
	DNSResolver      string
	Workers          int
}

var current Config

// GetFlags returns the server flags. Values resolve with the usual cli
// precedence: command line, then environment, then default.
func GetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:         "data-dir",
			Usage:        "Directory holding the SQLite database",
			DefaultValue: "./data",
			EnvVars:      []string{"IPAMD_DATA_DIR"},
			AssignTo:     &current.DataDir,
		},
		&cli.StringFlag{
			Name:         "listen",
			Usage:        "HTTP listen address",
			DefaultValue: ":8080",
			EnvVars:      []string{"IPAMD_LISTEN_ADDR"},
			AssignTo:     &current.ListenAddr,
		},
		&cli.StringFlag{
			Name:     "api-token",
			Usage:    "API bearer token, plaintext or bcrypt hash (empty disables auth)",
			EnvVars:  []string{"IPAMD_API_TOKEN"},
			AssignTo: &current.APIAuthToken,
		},
		&cli.StringFlag{
			Name:     "mcp-token",
			Usage:    "MCP bearer token (empty disables auth)",
			EnvVars:  []string{"IPAMD_MCP_TOKEN"},
			AssignTo: &current.MCPAuthToken,
		},
		&cli.BoolFlag{
			Name:     "dns-check",
			Usage:    "Periodically verify that recorded DNS names resolve to their addresses",
			EnvVars:  []string{"IPAMD_DNS_CHECK"},
			AssignTo: &current.DNSCheckEnabled,
		},
		&cli.StringFlag{
			Name:         "dns-check-schedule",
			Usage:        "Cron schedule for DNS verification",
			DefaultValue: "0 * * * *",
			EnvVars:      []string{"IPAMD_DNS_CHECK_SCHEDULE"},
			AssignTo:     &current.DNSCheckSchedule,
		},
		&cli.StringFlag{
			Name:         "dns-resolver",
			Usage:        "Resolver used for DNS verification (host:port)",
			DefaultValue: "9.9.9.9:53",
			EnvVars:      []string{"IPAMD_DNS_RESOLVER"},
			AssignTo:     &current.DNSResolver,
		},
		&cli.IntFlag{
			Name:         "workers",
			Usage:        "Background worker count",
			DefaultValue: 2,
			EnvVars:      []string{"IPAMD_WORKERS"},
			AssignTo:     &current.Workers,
		},
	}
}

// Load returns the configuration assembled by flag parsing
func Load() *Config {
	cfg := current
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &cfg
}

// IsAPIAuthEnabled checks if API authentication is configured
func (c *Config) IsAPIAuthEnabled() bool {
	return c.APIAuthToken != ""
}

// IsMCPEnabled checks if MCP authentication is configured
func (c *Config) IsMCPEnabled() bool {
	return c.MCPAuthToken != ""
}
