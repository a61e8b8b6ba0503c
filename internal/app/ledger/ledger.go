// Package ledger exposes the pull-payment balances: reads, statements and
// withdrawals. Credits happen only inside journey operations.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/showup-club/showup/internal/domain"
	"github.com/showup-club/showup/internal/infra/observability"
)

// ErrNoCustody means withdrawals are disabled because no custody provider
// was configured.
var ErrNoCustody = errors.New("ledger: no custody provider configured")

// Service reads and withdraws ledger balances.
type Service struct {
	store   domain.Store
	clock   domain.Clock
	custody domain.Custody
	tracer  *observability.Tracer
	log     *slog.Logger
}

// New creates a ledger service.
func New(store domain.Store, clock domain.Clock, custody domain.Custody) *Service {
	return &Service{
		store:   store,
		clock:   clock,
		custody: custody,
		log:     slog.Default().With("component", "ledger"),
	}
}

// SetTracer sets the operation tracer.
func (s *Service) SetTracer(t *observability.Tracer) { s.tracer = t }

// BalanceOf returns the accrued balance for who, zero if unknown.
func (s *Service) BalanceOf(ctx context.Context, who domain.Identity) (domain.Amount, error) {
	var bal domain.Amount
	err := s.store.View(ctx, func(tx domain.Tx) error {
		var err error
		bal, err = tx.Ledger().BalanceOf(ctx, who)
		return err
	})
	return bal, err
}

// Statement returns who's ledger entries, oldest first.
func (s *Service) Statement(ctx context.Context, who domain.Identity) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	err := s.store.View(ctx, func(tx domain.Tx) error {
		var err error
		entries, err = tx.Ledger().Statement(ctx, who)
		return err
	})
	return entries, err
}

// TotalBalance sums all accrued balances.
func (s *Service) TotalBalance(ctx context.Context) (domain.Amount, error) {
	var total domain.Amount
	err := s.store.View(ctx, func(tx domain.Tx) error {
		var err error
		total, err = tx.Ledger().TotalBalance(ctx)
		return err
	})
	return total, err
}

// Withdraw debits caller's balance and releases the value from custody in
// one transaction. If the release fails the debit is rolled back.
func (s *Service) Withdraw(ctx context.Context, caller domain.Identity, amount domain.Amount) (domain.Payout, error) {
	span := s.tracer.StartSpan(ctx, "ledger.withdraw", map[string]string{"caller": caller.String()})
	payout, err := s.withdraw(ctx, caller, amount)
	s.tracer.EndSpan(span, err)
	if err != nil {
		observability.OperationErrors.WithLabelValues("ledger.withdraw", domain.ErrorKind(err)).Inc()
		s.log.Debug("operation rejected", "op", "ledger.withdraw", "error", err)
		return domain.Payout{}, err
	}

	observability.ValueWithdrawn.Add(float64(amount))
	s.log.Info("withdrawal released", "account", caller.Short(), "amount", amount, "payout_id", payout.ID)
	return payout, nil
}

func (s *Service) withdraw(ctx context.Context, caller domain.Identity, amount domain.Amount) (domain.Payout, error) {
	if s.custody == nil {
		return domain.Payout{}, ErrNoCustody
	}
	if !caller.Valid() {
		return domain.Payout{}, domain.ErrNotAuthorized
	}
	if amount <= 0 {
		return domain.Payout{}, domain.Invalid("amount")
	}

	var payout domain.Payout
	err := s.store.Update(ctx, func(tx domain.Tx) error {
		if _, err := tx.Ledger().Debit(ctx, domain.Posting{
			Account:     caller,
			Type:        domain.TxWithdraw,
			Amount:      amount,
			Description: "withdrawal",
			At:          s.clock.Now(),
		}); err != nil {
			return err
		}
		var err error
		payout, err = s.custody.Release(ctx, caller, amount)
		if err != nil {
			return fmt.Errorf("custody release: %w", err)
		}
		return nil
	})
	return payout, err
}
