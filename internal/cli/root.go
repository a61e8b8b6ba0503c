// Package cli implements the showup command-line interface.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/showup-club/showup/internal/daemon"
	"github.com/showup-club/showup/internal/domain"
	"github.com/showup-club/showup/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "showup",
	Short: "Showup: pledge, show up, settle",
	Long: `Showup runs accountability journeys. A creator locks a deposit behind a
daily goal; progress is recorded while the window is open; afterwards the
deposit settles to the creator on success or to the chosen sink on failure.

Commands operate on the local store under $SHOWUP_HOME (default ~/.showup).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("home", "", "Showup home directory (default $SHOWUP_HOME or ~/.showup)")
	rootCmd.PersistentFlags().String("as", "", "Caller identity (0x-prefixed address)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func homeDir(cmd *cobra.Command) string {
	if h, _ := cmd.Flags().GetString("home"); h != "" {
		return h
	}
	return daemon.Home()
}

func loadConfig(cmd *cobra.Command) (daemon.Config, error) {
	cfg, err := daemon.LoadConfig(homeDir(cmd))
	if err != nil {
		return daemon.Config{}, err
	}
	if _, err := logger.Init(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
		return daemon.Config{}, err
	}
	return cfg, nil
}

// withDaemon opens the local store, runs fn and closes it.
func withDaemon(cmd *cobra.Command, fn func(ctx context.Context, d *daemon.Daemon) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	d, err := daemon.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close()
	return fn(ctx, d)
}

// caller returns the --as identity.
func caller(cmd *cobra.Command) (domain.Identity, error) {
	raw, _ := cmd.Flags().GetString("as")
	if raw == "" {
		return "", fmt.Errorf("--as is required for this command")
	}
	who, err := domain.ParseIdentity(raw)
	if err != nil {
		return "", fmt.Errorf("--as %q: %w", raw, err)
	}
	return who, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func stdout(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
