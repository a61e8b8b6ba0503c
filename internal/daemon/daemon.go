package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/showup-club/showup/internal/api"
	"github.com/showup-club/showup/internal/app/access"
	"github.com/showup-club/showup/internal/app/journey"
	"github.com/showup-club/showup/internal/app/ledger"
	"github.com/showup-club/showup/internal/domain"
	"github.com/showup-club/showup/internal/infra/clock"
	"github.com/showup-club/showup/internal/infra/custody"
	"github.com/showup-club/showup/internal/infra/memstore"
	"github.com/showup-club/showup/internal/infra/observability"
	"github.com/showup-club/showup/internal/infra/sqlite"
)

// Daemon holds the wired showup services.
type Daemon struct {
	Config Config
	Store  domain.Store
	Clock  domain.Clock
	Vault  *custody.Vault
	Tracer *observability.Tracer
	Hub    *api.EventHub
	Engine *journey.Engine
	Access *access.Controller
	Ledger *ledger.Service
	log    *slog.Logger
}

// Open opens the configured store and wires every service on top of it.
func Open(ctx context.Context, cfg Config) (*Daemon, error) {
	return OpenWithClock(ctx, cfg, clock.NewSystem())
}

// OpenWithClock is Open with an explicit clock.
func OpenWithClock(ctx context.Context, cfg Config, clk domain.Clock) (*Daemon, error) {
	engineCfg, err := cfg.JourneyEngineConfig()
	if err != nil {
		return nil, err
	}
	genesis, err := cfg.GenesisBeneficiary()
	if err != nil {
		return nil, err
	}

	store, err := openStore(cfg.Storage)
	if err != nil {
		return nil, err
	}

	d := &Daemon{
		Config: cfg,
		Store:  store,
		Clock:  clk,
		Vault:  custody.NewVault(),
		Tracer: observability.NewTracer(observability.DefaultTracerConfig()),
		Hub:    api.NewEventHub(),
		log:    slog.Default().With("component", "daemon"),
	}
	d.Engine = journey.New(engineCfg, store, clk, d.Vault)
	d.Engine.SetNotifier(d.Hub)
	d.Engine.SetTracer(d.Tracer)
	d.Access = access.New(store)
	d.Access.SetTracer(d.Tracer)
	d.Ledger = ledger.New(store, clk, d.Vault)
	d.Ledger.SetTracer(d.Tracer)

	if err := d.restore(ctx, genesis); err != nil {
		store.Close()
		return nil, err
	}
	return d, nil
}

func openStore(cfg StorageConfig) (domain.Store, error) {
	switch cfg.Driver {
	case "memory":
		return memstore.New(), nil
	case "sqlite", "":
		db, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("storage.driver: unknown driver %q", cfg.Driver)
	}
}

// restore installs the genesis beneficiary and re-derives process state
// from the store: vault holdings and the locked-deposit gauge.
func (d *Daemon) restore(ctx context.Context, genesis domain.Identity) error {
	if genesis != "" {
		if err := d.Access.Bootstrap(ctx, genesis); err != nil {
			return fmt.Errorf("bootstrap fee beneficiary: %w", err)
		}
	} else if _, err := d.Access.CurrentFeeBeneficiary(ctx); errors.Is(err, domain.ErrNoFeeBeneficiary) {
		d.log.Warn("no fee beneficiary configured, journeys with a fee will be rejected",
			"hint", "set [fees].genesis_beneficiary")
	}

	locked, err := d.Engine.LockedDeposits(ctx)
	if err != nil {
		return fmt.Errorf("sum locked deposits: %w", err)
	}
	owed, err := d.Ledger.TotalBalance(ctx)
	if err != nil {
		return fmt.Errorf("sum ledger balances: %w", err)
	}
	if locked > domain.MaxAmount-owed {
		return domain.ErrOverflow
	}
	if err := d.Vault.Seed(locked + owed); err != nil {
		return err
	}
	observability.DepositsLocked.Set(float64(locked))
	d.log.Debug("state restored", "locked_deposits", locked, "accrued_balances", owed)
	return nil
}

// Close releases the store.
func (d *Daemon) Close() error { return d.Store.Close() }

// Authenticator builds the JWT authenticator from [api]. A missing secret
// returns api.ErrNoSecret.
func (d *Daemon) Authenticator() (*api.Authenticator, error) {
	ttl, err := d.Config.TokenTTL()
	if err != nil {
		return nil, err
	}
	return api.NewAuthenticator(d.Config.API.JWTSecret, ttl)
}

// Handler builds the HTTP handler. Without a JWT secret the API is
// read-only: every route that needs a caller answers 401.
func (d *Daemon) Handler() http.Handler {
	auth, err := d.Authenticator()
	if err != nil {
		d.log.Warn("authentication disabled", "error", err)
		auth = nil
	}
	srv := api.NewServer(d.Engine, d.Access, d.Ledger, auth)
	srv.SetEventHub(d.Hub)
	srv.SetTracer(d.Tracer)
	if d.Config.API.Metrics {
		srv.EnableMetrics()
	}
	return srv.Handler()
}

// Serve runs the HTTP server until ctx is canceled, then shuts it down.
func (d *Daemon) Serve(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:              d.Config.Addr(),
		Handler:           d.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Request contexts end with ctx so SSE streams close on shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		d.log.Info("api listening", "addr", httpSrv.Addr, "storage", d.Config.Storage.Driver)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	d.log.Info("shutting down")
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
