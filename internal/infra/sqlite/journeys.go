package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/showup-club/showup/internal/domain"
)

// ─── Journey Operations ─────────────────────────────────────────────────────

type journeyStore struct{ t *tx }

// NextJourneyID returns the count of stored journeys; ids are dense from 0.
func (s journeyStore) NextJourneyID(ctx context.Context) (domain.JourneyID, error) {
	var n int64
	err := s.t.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM journeys`).Scan(&n)
	return domain.JourneyID(n), err
}

// InsertJourney stores a new journey record.
func (s journeyStore) InsertJourney(ctx context.Context, j domain.Journey) error {
	_, err := s.t.exec(ctx, `
		INSERT INTO journeys (id, creator, action, format, duration, daily_value,
			description, sink, start_date, current_value, deposit, completed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, int64(j.ID), string(j.Creator), j.Action, j.Format, j.Duration, j.DailyValue,
		j.Description, string(j.Sink), j.StartDate.UnixNano(), j.CurrentValue,
		int64(j.Deposit), boolInt(j.Completed))
	return err
}

// GetJourney retrieves a journey by id.
func (s journeyStore) GetJourney(ctx context.Context, id domain.JourneyID) (*domain.Journey, error) {
	var (
		j         domain.Journey
		creator   string
		sink      string
		start     int64
		deposit   int64
		completed int
	)
	err := s.t.tx.QueryRowContext(ctx, `
		SELECT id, creator, action, format, duration, daily_value, description,
			sink, start_date, current_value, deposit, completed
		FROM journeys WHERE id = ?
	`, int64(id)).Scan(&j.ID, &creator, &j.Action, &j.Format, &j.Duration, &j.DailyValue,
		&j.Description, &sink, &start, &j.CurrentValue, &deposit, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrJourneyNotFound
	}
	if err != nil {
		return nil, err
	}
	j.Creator = domain.Identity(creator)
	j.Sink = domain.Identity(sink)
	j.StartDate = time.Unix(0, start).UTC()
	j.Deposit = domain.Amount(deposit)
	j.Completed = completed == 1
	return &j, nil
}

// UpdateProgress persists the mutable journey fields.
func (s journeyStore) UpdateProgress(ctx context.Context, j domain.Journey) error {
	res, err := s.t.exec(ctx, `
		UPDATE journeys SET current_value = ?, completed = ? WHERE id = ?
	`, j.CurrentValue, boolInt(j.Completed), int64(j.ID))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrJourneyNotFound
	}
	return nil
}

// JourneyIDsByCreator returns a creator's journey ids in creation order.
func (s journeyStore) JourneyIDsByCreator(ctx context.Context, creator domain.Identity) ([]domain.JourneyID, error) {
	return s.ids(ctx, `SELECT id FROM journeys WHERE creator = ? ORDER BY id`, string(creator))
}

// AllJourneyIDs returns every journey id in creation order.
func (s journeyStore) AllJourneyIDs(ctx context.Context) ([]domain.JourneyID, error) {
	return s.ids(ctx, `SELECT id FROM journeys ORDER BY id`)
}

func (s journeyStore) ids(ctx context.Context, query string, args ...any) ([]domain.JourneyID, error) {
	rows, err := s.t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []domain.JourneyID{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, domain.JourneyID(id))
	}
	return ids, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
