package domain

import (
	"context"
	"time"
)

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// Clock supplies the logical time. Readings never decrease.
type Clock interface {
	Now() time.Time
}

// Notifier delivers committed events to observers. Delivery is best-effort
// and must not block the caller.
type Notifier interface {
	Publish(ev Event)
}

// Custody physically holds the value the ledger accounts for.
type Custody interface {
	// Deposit accepts value attached to a journey creation.
	Deposit(ctx context.Context, from Identity, amount Amount) error
	// Release transfers a withdrawn balance out of custody.
	Release(ctx context.Context, to Identity, amount Amount) (Payout, error)
}

// JourneyStore owns journey records, id allocation and the per-creator index.
type JourneyStore interface {
	// NextJourneyID returns the id the next inserted journey will receive.
	NextJourneyID(ctx context.Context) (JourneyID, error)
	InsertJourney(ctx context.Context, j Journey) error
	GetJourney(ctx context.Context, id JourneyID) (*Journey, error)
	// UpdateProgress persists CurrentValue and Completed.
	UpdateProgress(ctx context.Context, j Journey) error
	JourneyIDsByCreator(ctx context.Context, creator Identity) ([]JourneyID, error)
	AllJourneyIDs(ctx context.Context) ([]JourneyID, error)
}

// LedgerStore holds accrued, withdrawable balances.
type LedgerStore interface {
	Credit(ctx context.Context, p Posting) (LedgerEntry, error)
	Debit(ctx context.Context, p Posting) (LedgerEntry, error)
	BalanceOf(ctx context.Context, who Identity) (Amount, error)
	Statement(ctx context.Context, who Identity) ([]LedgerEntry, error)
	// TotalBalance sums every account's balance.
	TotalBalance(ctx context.Context) (Amount, error)
}

// AccessStore holds the fee beneficiary.
type AccessStore interface {
	// FeeBeneficiary returns ErrNoFeeBeneficiary before genesis.
	FeeBeneficiary(ctx context.Context) (Identity, error)
	SetFeeBeneficiary(ctx context.Context, who Identity) error
}

// EventLog is the durable notification outbox.
type EventLog interface {
	AppendEvent(ctx context.Context, ev Event) error
	EventsForJourney(ctx context.Context, id JourneyID) ([]Event, error)
}

// Tx is one atomic unit of work across all stores.
type Tx interface {
	Journeys() JourneyStore
	Ledger() LedgerStore
	Access() AccessStore
	Events() EventLog
}

// Store runs transactions. Update commits only if fn returns nil; any error
// discards every write fn made. View is read-only.
type Store interface {
	Update(ctx context.Context, fn func(tx Tx) error) error
	View(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}
