package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/showup-club/showup/internal/domain"
)

// ─── Ledger Operations ──────────────────────────────────────────────────────

type ledgerStore struct{ t *tx }

// BalanceOf returns an account's accrued balance (zero if unknown).
func (s ledgerStore) BalanceOf(ctx context.Context, who domain.Identity) (domain.Amount, error) {
	var bal int64
	err := s.t.tx.QueryRowContext(ctx, `SELECT balance FROM balances WHERE account = ?`, string(who)).Scan(&bal)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return domain.Amount(bal), err
}

// Credit increases an account balance and appends a statement row.
func (s ledgerStore) Credit(ctx context.Context, p domain.Posting) (domain.LedgerEntry, error) {
	if p.Amount < 0 {
		return domain.LedgerEntry{}, domain.Invalid("amount")
	}
	bal, err := s.BalanceOf(ctx, p.Account)
	if err != nil {
		return domain.LedgerEntry{}, err
	}
	if bal > domain.MaxAmount-p.Amount {
		return domain.LedgerEntry{}, domain.ErrOverflow
	}
	return s.post(ctx, p, domain.EntryCredit, bal+p.Amount)
}

// Debit decreases an account balance; it never goes below zero.
func (s ledgerStore) Debit(ctx context.Context, p domain.Posting) (domain.LedgerEntry, error) {
	if p.Amount < 0 {
		return domain.LedgerEntry{}, domain.Invalid("amount")
	}
	bal, err := s.BalanceOf(ctx, p.Account)
	if err != nil {
		return domain.LedgerEntry{}, err
	}
	if p.Amount > bal {
		return domain.LedgerEntry{}, domain.ErrInsufficientBalance
	}
	return s.post(ctx, p, domain.EntryDebit, bal-p.Amount)
}

func (s ledgerStore) post(ctx context.Context, p domain.Posting, side domain.EntryType, balance domain.Amount) (domain.LedgerEntry, error) {
	if _, err := s.t.exec(ctx, `
		INSERT INTO balances (account, balance) VALUES (?, ?)
		ON CONFLICT(account) DO UPDATE SET balance = excluded.balance
	`, string(p.Account), int64(balance)); err != nil {
		return domain.LedgerEntry{}, err
	}

	var journeyID sql.NullInt64
	if p.JourneyID != nil {
		journeyID = sql.NullInt64{Int64: int64(*p.JourneyID), Valid: true}
	}
	res, err := s.t.exec(ctx, `
		INSERT INTO ledger_entries (timestamp, type, entry_type, account, amount, journey_id, description, balance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.At.UnixNano(), string(p.Type), string(side), string(p.Account), int64(p.Amount),
		journeyID, p.Description, int64(balance))
	if err != nil {
		return domain.LedgerEntry{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.LedgerEntry{}, err
	}

	return domain.LedgerEntry{
		ID:          id,
		Timestamp:   p.At,
		Type:        p.Type,
		EntryType:   side,
		Account:     p.Account,
		Amount:      p.Amount,
		JourneyID:   p.JourneyID,
		Description: p.Description,
		Balance:     balance,
	}, nil
}

// TotalBalance sums every account's balance.
func (s ledgerStore) TotalBalance(ctx context.Context) (domain.Amount, error) {
	var total int64
	err := s.t.tx.QueryRowContext(ctx, `SELECT COALESCE(SUM(balance), 0) FROM balances`).Scan(&total)
	return domain.Amount(total), err
}

// Statement returns an account's ledger entries, oldest first.
func (s ledgerStore) Statement(ctx context.Context, who domain.Identity) ([]domain.LedgerEntry, error) {
	rows, err := s.t.tx.QueryContext(ctx, `
		SELECT id, timestamp, type, entry_type, account, amount, journey_id, description, balance
		FROM ledger_entries WHERE account = ? ORDER BY id
	`, string(who))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LedgerEntry
	for rows.Next() {
		var (
			e         domain.LedgerEntry
			ts        int64
			txType    string
			side      string
			account   string
			amount    int64
			journeyID sql.NullInt64
			balance   int64
		)
		if err := rows.Scan(&e.ID, &ts, &txType, &side, &account, &amount, &journeyID, &e.Description, &balance); err != nil {
			return nil, err
		}
		e.Timestamp = time.Unix(0, ts).UTC()
		e.Type = domain.TransactionType(txType)
		e.EntryType = domain.EntryType(side)
		e.Account = domain.Identity(account)
		e.Amount = domain.Amount(amount)
		e.Balance = domain.Amount(balance)
		if journeyID.Valid {
			id := domain.JourneyID(journeyID.Int64)
			e.JourneyID = &id
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
