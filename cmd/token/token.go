package token

import (
	"context"
	"fmt"
	"os"

	"github.com/paularlott/cli"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

// Command generates a bcrypt hash of an API token. The hash can be used in
// place of the plaintext token in IPAMD_API_TOKEN so the secret never sits
// in the environment or a unit file in clear text.
func Command() *cli.Command {
	return &cli.Command{
		Name:        "token",
		Usage:       "Hash an API token",
		Description: "Read a token from stdin and print its bcrypt hash for use as the server API token",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:         "cost",
				Usage:        "bcrypt cost factor",
				DefaultValue: bcrypt.DefaultCost,
			},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cost := cmd.GetInt("cost")
			if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
				return fmt.Errorf("cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
			}

			var secret []byte
			if term.IsTerminal(int(os.Stdin.Fd())) {
				fmt.Fprint(os.Stderr, "Token: ")
				line, err := term.ReadPassword(int(os.Stdin.Fd()))
				fmt.Fprintln(os.Stderr)
				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}
				secret = line
			} else {
				var line string
				if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}
				secret = []byte(line)
			}

			if len(secret) == 0 {
				return fmt.Errorf("token must not be empty")
			}

			hash, err := bcrypt.GenerateFromPassword(secret, cost)
			if err != nil {
				return fmt.Errorf("failed to hash token: %w", err)
			}

			fmt.Println(string(hash))
			return nil
		},
	}
}
