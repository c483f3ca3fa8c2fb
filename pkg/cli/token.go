package cli

import (
	"flag"
	"fmt"

	"github.com/platinummonkey/visionrecords/pkg/auth"
	"github.com/platinummonkey/visionrecords/pkg/ledger"
)

func newTokenCommand(env *Env) *Command {
	cmd := &Command{
		Name:        "token",
		Description: "Mint a caller token for an address",
		Flags:       flag.NewFlagSet("token", flag.ContinueOnError),
	}

	address := cmd.Flags.String("address", "", "Caller address")
	ttl := cmd.Flags.Duration("ttl", 0, "Token lifetime (default: configured token TTL)")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		if *address == "" {
			return fmt.Errorf("address is required")
		}

		lifetime := *ttl
		if lifetime == 0 {
			lifetime = env.Config.Auth.TokenTTL
		}
		if lifetime <= 0 {
			return fmt.Errorf("ttl must be positive")
		}

		authn, err := auth.NewAuthenticator(env.Config.Auth.Secret, env.Config.Auth.Issuer)
		if err != nil {
			return err
		}
		token, err := authn.Sign(ledger.Address(*address), lifetime)
		if err != nil {
			return fmt.Errorf("failed to sign token: %w", err)
		}

		fmt.Fprintln(env.out(), token)
		return nil
	}

	return cmd
}
