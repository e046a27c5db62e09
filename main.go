package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"smart-library/internal/config"
	"smart-library/internal/logging"
	"smart-library/library"
	"smart-library/workspace"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "smart-library",
		Short:         "Library management workstation",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), envFile, false)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	root.AddCommand(&cobra.Command{
		Use:           "bootstrap",
		Short:         "Create missing tables and the administrator account, then exit",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), envFile, true)
		},
	})
	return root
}

func run(ctx context.Context, envFile string, bootstrapOnly bool) error {
	// Missing .env is fine: the environment alone may carry the settings.
	_ = godotenv.Load(envFile)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	logger := logging.New(cfg.LogLevel, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := library.Open(ctx, cfg.Driver(), cfg.DSN(), cfg.DBMaxOpenConns)
	if err != nil {
		logger.Error("cannot open database", "driver", cfg.DBDriver, "error", err)
		return err
	}
	defer db.Close()

	if err := db.Bootstrap(ctx, cfg.Admin()); err != nil {
		logger.Error("bootstrap failed", "error", err)
		return err
	}
	if bootstrapOnly {
		logger.Info("bootstrap complete", "driver", db.Driver())
		return nil
	}

	manager := library.NewLibraryManager(db,
		library.WithLoanDeleteMode(cfg.DeleteMode()),
		library.WithLogger(logger),
	)

	opts := workspace.Options{LoanDays: cfg.LoanDays, Logger: logger}
	if term.IsTerminal(int(syscall.Stdin)) {
		opts.ReadPassword = readPassword
	}
	return workspace.New(manager, os.Stdin, os.Stdout, opts).Run(ctx)
}

// readPassword securely reads a password with masking
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println() // Add newline after password input
	return string(bytePassword), nil
}
