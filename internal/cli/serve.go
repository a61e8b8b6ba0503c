package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/showup-club/showup/internal/daemon"
	"github.com/showup-club/showup/internal/logger"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tokenCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides [api] host/port)")
}

// ─── serve ──────────────────────────────────────────────────────────────────

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the showup HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig(homeDir(cmd))
	if err != nil {
		return err
	}
	closer, err := logger.Init(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		return err
	}
	defer closer.Close()

	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		host, port, err := splitHostPort(addr)
		if err != nil {
			return fmt.Errorf("--addr: %w", err)
		}
		cfg.API.Host, cfg.API.Port = host, port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := daemon.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Serve(ctx)
}

// ─── token ──────────────────────────────────────────────────────────────────

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API bearer token for --as",
	Long: `Issue a signed bearer token whose subject is the --as identity.
Requires [api].jwt_secret (or SHOWUP_JWT_SECRET).`,
	RunE: runToken,
}

func runToken(cmd *cobra.Command, args []string) error {
	who, err := caller(cmd)
	if err != nil {
		return err
	}
	return withDaemon(cmd, func(ctx context.Context, d *daemon.Daemon) error {
		auth, err := d.Authenticator()
		if err != nil {
			return err
		}
		token, err := auth.Issue(who)
		if err != nil {
			return err
		}
		ttl, _ := d.Config.TokenTTL()
		fmt.Fprintln(stdout(cmd), token)
		fmt.Fprintf(cmd.ErrOrStderr(), "token for %s expires %s\n", who, time.Now().Add(ttl).Format(time.RFC3339))
		return nil
	})
}

func splitHostPort(addr string) (string, int, error) {
	host, p, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(p)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port in %q", addr)
	}
	return host, port, nil
}
