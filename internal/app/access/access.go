// Package access tracks the single transferable fee beneficiary.
//
// Journey operations are gated by journey ownership, not here; this package
// only decides who receives creation fees.
package access

import (
	"context"
	"errors"
	"log/slog"

	"github.com/showup-club/showup/internal/domain"
	"github.com/showup-club/showup/internal/infra/observability"
)

// Controller reads and transfers the fee beneficiary.
type Controller struct {
	store  domain.Store
	tracer *observability.Tracer
	log    *slog.Logger
}

// New creates an access controller.
func New(store domain.Store) *Controller {
	return &Controller{
		store: store,
		log:   slog.Default().With("component", "access"),
	}
}

// SetTracer sets the operation tracer.
func (c *Controller) SetTracer(t *observability.Tracer) { c.tracer = t }

// Bootstrap installs genesis as the fee beneficiary if none is set yet.
// An existing beneficiary is left untouched.
func (c *Controller) Bootstrap(ctx context.Context, genesis domain.Identity) error {
	if !genesis.Valid() {
		return &domain.ValidationError{Field: "genesis_beneficiary", Err: domain.ErrInvalidRecipient}
	}
	return c.store.Update(ctx, func(tx domain.Tx) error {
		_, err := tx.Access().FeeBeneficiary(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrNoFeeBeneficiary) {
			return err
		}
		c.log.Info("fee beneficiary initialized", "beneficiary", genesis.Short())
		return tx.Access().SetFeeBeneficiary(ctx, genesis)
	})
}

// CurrentFeeBeneficiary returns the active fee beneficiary.
func (c *Controller) CurrentFeeBeneficiary(ctx context.Context) (domain.Identity, error) {
	var who domain.Identity
	err := c.store.View(ctx, func(tx domain.Tx) error {
		var err error
		who, err = tx.Access().FeeBeneficiary(ctx)
		return err
	})
	return who, err
}

// TransferFeeBeneficiary hands the role to next. Only the current
// beneficiary may call it. Balances already credited stay with the previous
// beneficiary; only later fees go to next.
func (c *Controller) TransferFeeBeneficiary(ctx context.Context, caller, next domain.Identity) error {
	span := c.tracer.StartSpan(ctx, "access.transfer", map[string]string{"caller": caller.String()})
	var prev domain.Identity
	err := c.store.Update(ctx, func(tx domain.Tx) error {
		cur, err := tx.Access().FeeBeneficiary(ctx)
		if err != nil {
			return err
		}
		if caller != cur {
			return domain.ErrNotAuthorized
		}
		if !next.Valid() {
			return &domain.ValidationError{Field: "beneficiary", Err: domain.ErrInvalidRecipient}
		}
		prev = cur
		return tx.Access().SetFeeBeneficiary(ctx, next)
	})
	c.tracer.EndSpan(span, err)
	if err != nil {
		observability.OperationErrors.WithLabelValues("access.transfer", domain.ErrorKind(err)).Inc()
		c.log.Debug("operation rejected", "op", "access.transfer", "error", err)
		return err
	}

	c.log.Info("fee beneficiary transferred", "from", prev.Short(), "to", next.Short())
	return nil
}
