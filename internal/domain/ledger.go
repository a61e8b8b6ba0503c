package domain

import "time"

// ─── Ledger Types ───────────────────────────────────────────────────────────
// The ledger is a pull-payment accumulator: settlement and fee collection
// credit balances, and beneficiaries withdraw them independently.

// EntryType represents the accounting side of a ledger entry.
type EntryType string

const (
	EntryDebit  EntryType = "DEBIT"
	EntryCredit EntryType = "CREDIT"
)

// TransactionType represents the business reason for a ledger movement.
type TransactionType string

const (
	TxFee           TransactionType = "FEE"
	TxSettleSuccess TransactionType = "SETTLE_SUCCESS"
	TxSettleFailure TransactionType = "SETTLE_FAILURE"
	TxWithdraw      TransactionType = "WITHDRAW"
)

// LedgerEntry is a single row in an account's statement.
type LedgerEntry struct {
	ID          int64           `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	Type        TransactionType `json:"type"`
	EntryType   EntryType       `json:"entry_type"`
	Account     Identity        `json:"account"`
	Amount      Amount          `json:"amount"`
	JourneyID   *JourneyID      `json:"journey_id,omitempty"`
	Description string          `json:"description,omitempty"`
	Balance     Amount          `json:"balance"`
}

// Posting is a requested ledger movement, before it is numbered and
// balanced by the store.
type Posting struct {
	Account     Identity
	Type        TransactionType
	Amount      Amount
	JourneyID   *JourneyID
	Description string
	At          time.Time
}

// Payout is a value release performed by the custody provider.
type Payout struct {
	ID       string    `json:"id"`
	To       Identity  `json:"to"`
	Amount   Amount    `json:"amount"`
	Released time.Time `json:"released_at"`
}
