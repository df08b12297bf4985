package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/openlist-contrib/openlist-go/internal/config"
	"github.com/openlist-contrib/openlist-go/internal/openlist"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagServer     string
	flagToken      string
	flagJSON       bool
	flagVerbose    bool
	flagQuiet      bool
)

// resolvedCfg holds the effective configuration loaded by
// PersistentPreRunE. It is available to all subcommands after the root
// pre-run phase completes.
var resolvedCfg *config.Config

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "openlist-go",
		Short:   "OpenList CLI client",
		Long:    "A command-line client for OpenList file servers: browse, transfer, and manage offline downloads.",
		Version: version,
		// Silence Cobra's default error/usage printing — we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&flagServer, "server", "", "server base URL (overrides config)")
	cmd.PersistentFlags().StringVar(&flagToken, "token", "", "static API token (overrides config)")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	// Register subcommands.
	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLsCmd())
	cmd.AddCommand(newStatCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newMkdirCmd())
	cmd.AddCommand(newRenameCmd())
	cmd.AddCommand(newRmCmd())
	cmd.AddCommand(newMvCmd())
	cmd.AddCommand(newCpCmd())
	cmd.AddCommand(newPutCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newOfflineCmd())
	cmd.AddCommand(newStoragesCmd())

	return cmd
}

// loadConfig resolves the effective configuration from the override chain
// and stores the result in resolvedCfg for use by subcommands.
func loadConfig() error {
	cli := config.CLIOverrides{
		ConfigPath: flagConfigPath,
		Server:     flagServer,
		Token:      flagToken,
	}

	env := config.ReadEnvOverrides()

	cfg, err := config.Resolve(env, cli)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	resolvedCfg = cfg

	return nil
}

// buildLogger creates an slog.Logger configured by the resolved config
// and CLI flags. Config-file log level provides the baseline; --verbose
// and --quiet override it because CLI flags always win.
func buildLogger() *slog.Logger {
	level := slog.LevelInfo

	if resolvedCfg != nil {
		switch resolvedCfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newClient authenticates per the resolved config and returns a ready
// client. A configured static token is used directly with no network
// call; otherwise one login request runs here, and the credentials stay
// on the client for the single re-login-on-401 path.
func newClient(ctx context.Context) (*openlist.Client, *slog.Logger, error) {
	logger := buildLogger()

	httpClient := &http.Client{Timeout: resolvedCfg.RequestTimeout()}

	var (
		sess  openlist.Session
		creds *openlist.Credentials
	)

	if resolvedCfg.Token != "" {
		sess = openlist.StaticSession(resolvedCfg.ServerURL, resolvedCfg.Token)
	} else {
		creds = &openlist.Credentials{
			Username: resolvedCfg.Username,
			Password: resolvedCfg.Password,
		}

		var err error

		sess, err = openlist.Login(ctx, httpClient, resolvedCfg.ServerURL, *creds, logger)
		if err != nil {
			return nil, nil, err
		}
	}

	client := openlist.NewClient(sess, openlist.Options{
		HTTPClient:   httpClient,
		Credentials:  creds,
		PathEncoding: openlist.PathEncoding(resolvedCfg.PathEncoding),
	}, logger)

	return client, logger, nil
}

// exitOnError prints a user-friendly error message to stderr and exits.
// Any failed operation — including a non-200 envelope from the server —
// ends with a non-zero status so scripts can rely on the exit code.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
