// Package cli exposes the poster as cobra commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"NewsPoster/internal/app"
	"NewsPoster/internal/config"
	"NewsPoster/internal/logging"
)

// Exit codes returned by Execute.
const (
	ExitOK          = 0
	ExitConfigError = 1
	ExitUsageError  = 2
)

type rootFlags struct {
	cfgFile string
	offline bool

	// started is set once cobra has parsed flags and arguments for a subcommand.
	started bool
}

// Execute runs the CLI and maps the result to a process exit code. Invocation
// errors (unknown command, flag or argument) and configuration errors are
// non-zero; a run that posted nothing for any other reason exits 0.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := &rootFlags{}
	root := newRootCmd(flags)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	fmt.Fprintln(stderr, "newsposter:", err)
	switch {
	case !flags.started:
		return ExitUsageError
	case errors.Is(err, config.ErrInvalidConfig):
		return ExitConfigError
	default:
		return ExitOK
	}
}

// NewRootCmd returns the root command with run, serve, preview and history attached.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootFlags{})
}

func newRootCmd(flags *rootFlags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "newsposter",
		Short:         "Pick a fresh news article and publish it as a short post",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			flags.started = true
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.cfgFile, "config", "", "config file (default $NEWSPOSTER_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&flags.offline, "offline", false, "use fixture articles instead of live feeds")

	rootCmd.AddCommand(newRunCmd(flags))
	rootCmd.AddCommand(newServeCmd(flags))
	rootCmd.AddCommand(newPreviewCmd(flags))
	rootCmd.AddCommand(newHistoryCmd(flags))

	return rootCmd
}

// session bundles everything a command needs and how to tear it down.
type session struct {
	cfg    config.Config
	logger *slog.Logger
	app    *app.Application
	close  func()
}

func openSession(ctx context.Context, cmd *cobra.Command, flags *rootFlags, opts app.Options) (*session, error) {
	// Flags win over the config file, so they go in through the env override layer.
	if flags.offline {
		if err := os.Setenv("NEWSPOSTER_MODE", config.ModeOfflineFixture); err != nil {
			return nil, fmt.Errorf("set offline mode: %w", err)
		}
	}
	if opts.DryRun {
		if err := os.Setenv("PUBLISHER_KIND", "stdout"); err != nil {
			return nil, fmt.Errorf("set dry run: %w", err)
		}
	}

	cfg, err := config.Load(flags.cfgFile)
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("%w: log file: %v", config.ErrInvalidConfig, err)
	}

	if opts.Out == nil {
		opts.Out = cmd.OutOrStdout()
	}
	application, err := app.New(ctx, cfg, logger, opts)
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	return &session{
		cfg:    cfg,
		logger: logger,
		app:    application,
		close: func() {
			if err := application.Close(); err != nil {
				logger.Warn("close application", "error", err)
			}
			_ = closeLog()
		},
	}, nil
}
