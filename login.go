package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Verify credentials against the server",
		Long: `Authenticate with the configured credentials and confirm the session
works by asking the server who it thinks we are. With a static token
configured, no login request is sent — the token itself is verified.

Tokens are never written to disk; every invocation authenticates
afresh.`,
		Args: cobra.NoArgs,
		RunE: runLogin,
	}

	cmd.Flags().Bool("show-token", false, "print the issued token to stdout")

	return cmd
}

func runLogin(cmd *cobra.Command, _ []string) error {
	showToken, _ := cmd.Flags().GetBool("show-token")
	ctx := cmd.Context()

	client, _, err := newClient(ctx)
	if err != nil {
		return err
	}

	user, err := client.Me(ctx)
	if err != nil {
		return fmt.Errorf("verifying session: %w", err)
	}

	statusf("Logged in to %s as %s\n", resolvedCfg.ServerURL, user.Username)

	if showToken {
		fmt.Println(client.Session().Token)
	}

	return nil
}
