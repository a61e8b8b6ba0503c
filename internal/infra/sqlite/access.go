package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/showup-club/showup/internal/domain"
)

const feeBeneficiaryKey = "fee_beneficiary"

// ─── Access Operations ──────────────────────────────────────────────────────

type accessStore struct{ t *tx }

// FeeBeneficiary returns the current fee beneficiary.
func (s accessStore) FeeBeneficiary(ctx context.Context) (domain.Identity, error) {
	var v string
	err := s.t.tx.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, feeBeneficiaryKey).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNoFeeBeneficiary
	}
	if err != nil {
		return "", err
	}
	return domain.Identity(v), nil
}

// SetFeeBeneficiary replaces the fee beneficiary.
func (s accessStore) SetFeeBeneficiary(ctx context.Context, who domain.Identity) error {
	_, err := s.t.exec(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, feeBeneficiaryKey, string(who))
	return err
}

// ─── Event Outbox ───────────────────────────────────────────────────────────

type eventLog struct{ t *tx }

// AppendEvent records an event; an empty ID is filled with a new UUID.
func (l eventLog) AppendEvent(ctx context.Context, ev domain.Event) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	_, err := l.t.exec(ctx, `
		INSERT INTO journey_events (id, kind, journey_id, creator, amount, note, at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, ev.ID, string(ev.Kind), int64(ev.JourneyID), string(ev.Creator), ev.Amount, ev.Note, ev.At.UnixNano())
	return err
}

// EventsForJourney returns a journey's events in emission order.
func (l eventLog) EventsForJourney(ctx context.Context, id domain.JourneyID) ([]domain.Event, error) {
	rows, err := l.t.tx.QueryContext(ctx, `
		SELECT id, kind, journey_id, creator, amount, note, at
		FROM journey_events WHERE journey_id = ? ORDER BY seq
	`, int64(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		var (
			ev      domain.Event
			kind    string
			creator string
			at      int64
		)
		if err := rows.Scan(&ev.ID, &kind, &ev.JourneyID, &creator, &ev.Amount, &ev.Note, &at); err != nil {
			return nil, err
		}
		ev.Kind = domain.EventKind(kind)
		ev.Creator = domain.Identity(creator)
		ev.At = time.Unix(0, at).UTC()
		out = append(out, ev)
	}
	return out, rows.Err()
}
