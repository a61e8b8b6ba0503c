package custody

import (
	"context"
	"errors"
	"testing"

	"github.com/showup-club/showup/internal/domain"
)

var alice = domain.MustIdentity("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")

func TestVault_DepositAndRelease(t *testing.T) {
	ctx := context.Background()
	v := NewVault()

	if err := v.Deposit(ctx, alice, 420); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if err := v.Deposit(ctx, alice, 0); err != nil {
		t.Fatalf("zero Deposit: %v", err)
	}
	if v.Holdings() != 420 {
		t.Fatalf("Holdings = %d, want 420", v.Holdings())
	}

	p, err := v.Release(ctx, alice, 100)
	if err != nil {
		t.Fatalf("Release: %v", err)
	}
	if p.ID == "" || p.To != alice || p.Amount != 100 {
		t.Errorf("payout = %+v", p)
	}
	if v.Holdings() != 320 {
		t.Errorf("Holdings after release = %d, want 320", v.Holdings())
	}
	if got := v.Payouts(); len(got) != 1 || got[0].ID != p.ID {
		t.Errorf("Payouts = %+v", got)
	}
}

func TestVault_ReleaseMoreThanHeld(t *testing.T) {
	v := NewVault()
	_, err := v.Release(context.Background(), alice, 1)
	if !errors.Is(err, ErrInsufficientHoldings) {
		t.Fatalf("Release error = %v, want ErrInsufficientHoldings", err)
	}
	if len(v.Payouts()) != 0 {
		t.Error("failed release must not record a payout")
	}
}

func TestVault_RejectsNegativeDeposit(t *testing.T) {
	v := NewVault()
	if err := v.Deposit(context.Background(), alice, -1); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Fatalf("Deposit(-1) error = %v", err)
	}
}

func TestVault_DepositOverflow(t *testing.T) {
	v := NewVault()
	if err := v.Seed(domain.MaxAmount); err != nil {
		t.Fatal(err)
	}
	if err := v.Deposit(context.Background(), alice, 1); !errors.Is(err, domain.ErrOverflow) {
		t.Fatalf("Deposit past max error = %v, want ErrOverflow", err)
	}
	if v.Holdings() != domain.MaxAmount {
		t.Error("holdings changed after rejected deposit")
	}
}

func TestVault_ReleaseCanceledContext(t *testing.T) {
	v := NewVault()
	v.Seed(10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := v.Release(ctx, alice, 5); !errors.Is(err, context.Canceled) {
		t.Fatalf("Release error = %v, want context.Canceled", err)
	}
	if v.Holdings() != 10 {
		t.Errorf("Holdings = %d, want 10", v.Holdings())
	}
}
