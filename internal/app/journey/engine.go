// Package journey implements the journey state machine.
//
// Lifecycle: create (deposit locked, fee credited) → zero or more show-ups by
// the creator while the window is open → exactly one settlement after the
// window closes → terminal, read-only.
//
// Every operation is a single store transaction: validation, record
// mutation, ledger credit and the outbox event commit together or not at
// all. The clock is read once per operation, inside that transaction.
package journey

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/showup-club/showup/internal/domain"
	"github.com/showup-club/showup/internal/infra/observability"
)

// Config controls journey validation and timing.
type Config struct {
	// DayLength is the unit of Journey.Duration. Window checks and the
	// dailyValue*duration target both use it.
	DayLength time.Duration
	// MaxDurationDays bounds Duration so the window end stays representable.
	MaxDurationDays int64
	// AllowedActions and AllowedFormats enable strict categorical validation
	// when non-empty.
	AllowedActions []string
	AllowedFormats []string
}

// DefaultConfig returns free-form categories and 24h days.
func DefaultConfig() Config {
	return Config{
		DayLength:       domain.DefaultDayLength,
		MaxDurationDays: 3650,
	}
}

// Engine runs journey operations against a domain.Store.
type Engine struct {
	config   Config
	store    domain.Store
	clock    domain.Clock
	custody  domain.Custody
	notifier domain.Notifier
	tracer   *observability.Tracer
	log      *slog.Logger
}

// New creates a journey engine. custody may be nil when attached value is
// tracked by the ledger alone.
func New(cfg Config, store domain.Store, clock domain.Clock, custody domain.Custody) *Engine {
	if cfg.DayLength <= 0 {
		cfg.DayLength = domain.DefaultDayLength
	}
	if cfg.MaxDurationDays <= 0 {
		cfg.MaxDurationDays = DefaultConfig().MaxDurationDays
	}
	return &Engine{
		config:  cfg,
		store:   store,
		clock:   clock,
		custody: custody,
		log:     slog.Default().With("component", "engine"),
	}
}

// SetNotifier sets the live event sink (nil disables delivery).
func (e *Engine) SetNotifier(n domain.Notifier) { e.notifier = n }

// SetTracer sets the operation tracer.
func (e *Engine) SetTracer(t *observability.Tracer) { e.tracer = t }

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.config }

// ─── Create ─────────────────────────────────────────────────────────────────

// Create validates params and stores a new journey owned by caller.
func (e *Engine) Create(ctx context.Context, caller domain.Identity, p domain.JourneyParams) (domain.JourneyID, error) {
	var (
		id domain.JourneyID
		ev domain.Event
	)
	err := e.observe(ctx, "journey.create", map[string]string{"caller": caller.String()}, func() error {
		if !caller.Valid() {
			return domain.ErrNotAuthorized
		}
		if err := e.validate(p); err != nil {
			return err
		}

		return e.store.Update(ctx, func(tx domain.Tx) error {
			now := e.clock.Now()

			next, err := tx.Journeys().NextJourneyID(ctx)
			if err != nil {
				return fmt.Errorf("allocate journey id: %w", err)
			}
			j := domain.Journey{
				ID:          next,
				Creator:     caller,
				Action:      p.Action,
				Format:      p.Format,
				Duration:    p.Duration,
				DailyValue:  p.DailyValue,
				Description: p.Description,
				Sink:        p.Sink,
				StartDate:   now,
				Deposit:     p.Attached - p.Fee,
			}
			if err := tx.Journeys().InsertJourney(ctx, j); err != nil {
				return fmt.Errorf("insert journey: %w", err)
			}

			if p.Fee > 0 {
				owner, err := tx.Access().FeeBeneficiary(ctx)
				if err != nil {
					return err
				}
				if _, err := tx.Ledger().Credit(ctx, domain.Posting{
					Account:     owner,
					Type:        domain.TxFee,
					Amount:      p.Fee,
					JourneyID:   &next,
					Description: "journey creation fee",
					At:          now,
				}); err != nil {
					return err
				}
			}

			ev = domain.Event{
				ID:        uuid.NewString(),
				Kind:      domain.EventJourneyCreated,
				JourneyID: next,
				Creator:   caller,
				At:        now,
			}
			if err := tx.Events().AppendEvent(ctx, ev); err != nil {
				return fmt.Errorf("append event: %w", err)
			}

			if e.custody != nil {
				if err := e.custody.Deposit(ctx, caller, p.Attached); err != nil {
					return fmt.Errorf("custody deposit: %w", err)
				}
			}
			id = next
			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	observability.JourneysCreated.Inc()
	observability.DepositsLocked.Add(float64(p.Attached - p.Fee))
	observability.FeesCollected.Add(float64(p.Fee))
	e.log.Info("journey created", "journey_id", id, "creator", caller.Short(),
		"duration", p.Duration, "daily_value", p.DailyValue, "deposit", p.Attached-p.Fee, "fee", p.Fee)
	e.publish(ev)
	return id, nil
}

// validate checks creation parameters in error-precedence order:
// recipient, then parameters, then fee, then arithmetic range.
func (e *Engine) validate(p domain.JourneyParams) error {
	if !p.Sink.Valid() {
		return &domain.ValidationError{Field: "sink", Err: domain.ErrInvalidRecipient}
	}
	if p.Duration <= 0 || p.Duration > e.config.MaxDurationDays {
		return domain.Invalid("duration")
	}
	if p.DailyValue <= 0 {
		return domain.Invalid("daily_value")
	}
	if len(e.config.AllowedActions) > 0 && !slices.Contains(e.config.AllowedActions, p.Action) {
		return domain.Invalid("action")
	}
	if len(e.config.AllowedFormats) > 0 && !slices.Contains(e.config.AllowedFormats, p.Format) {
		return domain.Invalid("format")
	}
	if p.Fee < 0 {
		return domain.Invalid("fee")
	}
	if p.Attached < 0 {
		return domain.Invalid("attached")
	}
	if p.Fee > p.Attached {
		return domain.ErrFeeExceedsDeposit
	}
	// Target and window end must be computable at settlement time.
	if p.DailyValue > math.MaxInt64/p.Duration {
		return domain.ErrOverflow
	}
	if p.Duration > int64(math.MaxInt64/e.config.DayLength) {
		return domain.ErrOverflow
	}
	return nil
}

// ─── Show Up ────────────────────────────────────────────────────────────────

// ShowUp adds amount to the journey's progress. Only the creator may record
// progress, and only while the window is open. The note is carried on the
// event and not stored on the journey.
func (e *Engine) ShowUp(ctx context.Context, caller domain.Identity, id domain.JourneyID, amount int64, note string) error {
	var ev domain.Event
	attrs := map[string]string{"caller": caller.String(), "journey_id": strconv.FormatInt(int64(id), 10)}
	err := e.observe(ctx, "journey.show_up", attrs, func() error {
		if amount < 0 {
			return domain.Invalid("amount")
		}
		return e.store.Update(ctx, func(tx domain.Tx) error {
			now := e.clock.Now()

			j, err := tx.Journeys().GetJourney(ctx, id)
			if err != nil {
				return err
			}
			if caller != j.Creator {
				return domain.ErrNotAuthorized
			}
			if !j.IsOpen(now, e.config.DayLength) {
				return domain.ErrWindowClosed
			}
			if j.CurrentValue > math.MaxInt64-amount {
				return domain.ErrOverflow
			}

			j.CurrentValue += amount
			if err := tx.Journeys().UpdateProgress(ctx, *j); err != nil {
				return fmt.Errorf("update progress: %w", err)
			}

			ev = domain.Event{
				ID:        uuid.NewString(),
				Kind:      domain.EventShowUp,
				JourneyID: id,
				Amount:    amount,
				Note:      note,
				At:        now,
			}
			return tx.Events().AppendEvent(ctx, ev)
		})
	})
	if err != nil {
		return err
	}

	observability.ShowUps.Inc()
	e.log.Info("show up recorded", "journey_id", id, "amount", amount)
	e.publish(ev)
	return nil
}

// ─── Complete ───────────────────────────────────────────────────────────────

// Complete settles a journey whose window has closed. Any caller may
// trigger it; it succeeds exactly once. The deposit is credited to the
// creator if the target was met, otherwise to the sink.
func (e *Engine) Complete(ctx context.Context, caller domain.Identity, id domain.JourneyID) (domain.Settlement, error) {
	var (
		s  domain.Settlement
		ev domain.Event
	)
	attrs := map[string]string{"caller": caller.String(), "journey_id": strconv.FormatInt(int64(id), 10)}
	err := e.observe(ctx, "journey.complete", attrs, func() error {
		return e.store.Update(ctx, func(tx domain.Tx) error {
			now := e.clock.Now()

			j, err := tx.Journeys().GetJourney(ctx, id)
			if err != nil {
				return err
			}
			if now.Before(j.EndsAt(e.config.DayLength)) {
				return domain.ErrTooEarly
			}
			if j.Completed {
				return domain.ErrAlreadyCompleted
			}

			j.Completed = true
			if err := tx.Journeys().UpdateProgress(ctx, *j); err != nil {
				return fmt.Errorf("mark completed: %w", err)
			}

			s = domain.Settlement{
				JourneyID: id,
				Outcome:   domain.OutcomeFailure,
				Payee:     j.Payee(),
				Amount:    j.Deposit,
				SettledAt: now,
			}
			txType := domain.TxSettleFailure
			if j.Succeeded() {
				s.Outcome = domain.OutcomeSuccess
				txType = domain.TxSettleSuccess
			}
			if j.Deposit > 0 {
				if _, err := tx.Ledger().Credit(ctx, domain.Posting{
					Account:     s.Payee,
					Type:        txType,
					Amount:      j.Deposit,
					JourneyID:   &id,
					Description: "journey settlement (" + string(s.Outcome) + ")",
					At:          now,
				}); err != nil {
					return err
				}
			}

			ev = domain.Event{
				ID:        uuid.NewString(),
				Kind:      domain.EventJourneyCompleted,
				JourneyID: id,
				At:        now,
			}
			return tx.Events().AppendEvent(ctx, ev)
		})
	})
	if err != nil {
		return domain.Settlement{}, err
	}

	observability.JourneysSettled.WithLabelValues(string(s.Outcome)).Inc()
	observability.DepositsLocked.Sub(float64(s.Amount))
	e.log.Info("journey settled", "journey_id", id, "outcome", s.Outcome,
		"payee", s.Payee.Short(), "amount", s.Amount)
	e.publish(ev)
	return s, nil
}

// ─── Queries ────────────────────────────────────────────────────────────────

// Journey returns the full journey record.
func (e *Engine) Journey(ctx context.Context, id domain.JourneyID) (*domain.Journey, error) {
	var j *domain.Journey
	err := e.store.View(ctx, func(tx domain.Tx) error {
		var err error
		j, err = tx.Journeys().GetJourney(ctx, id)
		return err
	})
	return j, err
}

// JourneyIDs returns the ids created by the caller, in creation order.
func (e *Engine) JourneyIDs(ctx context.Context, caller domain.Identity) ([]domain.JourneyID, error) {
	return e.JourneyIDsForUser(ctx, caller)
}

// JourneyIDsForUser returns the ids created by who, in creation order.
// An identity with no journeys gets an empty slice.
func (e *Engine) JourneyIDsForUser(ctx context.Context, who domain.Identity) ([]domain.JourneyID, error) {
	ids := []domain.JourneyID{}
	err := e.store.View(ctx, func(tx domain.Tx) error {
		found, err := tx.Journeys().JourneyIDsByCreator(ctx, who)
		if err != nil {
			return err
		}
		ids = append(ids, found...)
		return nil
	})
	return ids, err
}

// Events returns the notifications recorded for a journey.
func (e *Engine) Events(ctx context.Context, id domain.JourneyID) ([]domain.Event, error) {
	var events []domain.Event
	err := e.store.View(ctx, func(tx domain.Tx) error {
		if _, err := tx.Journeys().GetJourney(ctx, id); err != nil {
			return err
		}
		var err error
		events, err = tx.Events().EventsForJourney(ctx, id)
		return err
	})
	return events, err
}

// LockedDeposits sums the deposits of journeys not yet settled.
func (e *Engine) LockedDeposits(ctx context.Context) (domain.Amount, error) {
	var total domain.Amount
	err := e.store.View(ctx, func(tx domain.Tx) error {
		ids, err := tx.Journeys().AllJourneyIDs(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			j, err := tx.Journeys().GetJourney(ctx, id)
			if err != nil {
				return err
			}
			if !j.Completed {
				total += j.Deposit
			}
		}
		return nil
	})
	return total, err
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func (e *Engine) observe(ctx context.Context, op string, attrs map[string]string, fn func() error) error {
	span := e.tracer.StartSpan(ctx, op, attrs)
	start := time.Now()

	err := fn()

	observability.OperationLatency.WithLabelValues(op).Observe(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		observability.OperationErrors.WithLabelValues(op, domain.ErrorKind(err)).Inc()
		e.log.Debug("operation rejected", "op", op, "error", err)
	}
	e.tracer.EndSpan(span, err)
	return err
}

func (e *Engine) publish(ev domain.Event) {
	if e.notifier != nil {
		e.notifier.Publish(ev)
	}
}
