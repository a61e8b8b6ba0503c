// Package custody holds the value the ledger accounts for.
//
// Vault is a process-local custody provider: it tracks the total value
// received from journey creations and records every payout it releases.
// A production deployment swaps it for a provider that moves real funds.
package custody

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/showup-club/showup/internal/domain"
)

// ErrInsufficientHoldings means the vault holds less than a release needs.
var ErrInsufficientHoldings = errors.New("custody: insufficient holdings")

// Vault is an in-process custody provider.
type Vault struct {
	mu       sync.Mutex
	holdings domain.Amount
	payouts  []domain.Payout
	now      func() time.Time
	log      *slog.Logger
}

// NewVault creates an empty vault.
func NewVault() *Vault {
	return &Vault{
		now: func() time.Time { return time.Now().UTC() },
		log: slog.Default().With("component", "custody"),
	}
}

// Seed sets the opening holdings, typically on restart from the value the
// durable ledger still owes (locked deposits plus accrued balances).
func (v *Vault) Seed(amount domain.Amount) error {
	if amount < 0 {
		return domain.Invalid("holdings")
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.holdings = amount
	return nil
}

// Deposit accepts attached value.
func (v *Vault) Deposit(_ context.Context, from domain.Identity, amount domain.Amount) error {
	if amount < 0 {
		return domain.Invalid("attached")
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.holdings > domain.MaxAmount-amount {
		return domain.ErrOverflow
	}
	v.holdings += amount
	if amount > 0 {
		v.log.Debug("deposit accepted", "from", from.Short(), "amount", amount)
	}
	return nil
}

// Release pays amount out of the vault to the given identity.
func (v *Vault) Release(ctx context.Context, to domain.Identity, amount domain.Amount) (domain.Payout, error) {
	if err := ctx.Err(); err != nil {
		return domain.Payout{}, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if amount > v.holdings {
		return domain.Payout{}, fmt.Errorf("release %d to %s: %w", amount, to.Short(), ErrInsufficientHoldings)
	}
	v.holdings -= amount
	p := domain.Payout{
		ID:       uuid.NewString(),
		To:       to,
		Amount:   amount,
		Released: v.now(),
	}
	v.payouts = append(v.payouts, p)
	return p, nil
}

// Holdings returns the value currently held.
func (v *Vault) Holdings() domain.Amount {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.holdings
}

// Payouts returns a copy of released payouts, oldest first.
func (v *Vault) Payouts() []domain.Payout {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]domain.Payout, len(v.payouts))
	copy(out, v.payouts)
	return out
}
