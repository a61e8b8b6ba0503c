package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/showup-club/showup/internal/domain"
	"github.com/showup-club/showup/internal/infra/clock"
	"github.com/showup-club/showup/internal/infra/custody"
	"github.com/showup-club/showup/internal/infra/memstore"
	"github.com/showup-club/showup/internal/infra/sqlite"
)

var alice = domain.MustIdentity("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// fund credits who directly, as a settlement would.
func fund(t *testing.T, store domain.Store, who domain.Identity, amount domain.Amount) {
	t.Helper()
	ctx := context.Background()
	err := store.Update(ctx, func(tx domain.Tx) error {
		_, err := tx.Ledger().Credit(ctx, domain.Posting{
			Account: who, Type: domain.TxSettleSuccess, Amount: amount, At: time.Now(),
		})
		return err
	})
	if err != nil {
		t.Fatalf("fund: %v", err)
	}
}

func TestWithdraw(t *testing.T) {
	for name, store := range map[string]domain.Store{"memstore": memstore.New(), "sqlite": newTestDB(t)} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			vault := custody.NewVault()
			vault.Seed(500)
			svc := New(store, clock.NewSystem(), vault)
			fund(t, store, alice, 320)

			p, err := svc.Withdraw(ctx, alice, 120)
			if err != nil {
				t.Fatalf("Withdraw() error: %v", err)
			}
			if p.To != alice || p.Amount != 120 {
				t.Errorf("payout = %+v", p)
			}
			if bal, _ := svc.BalanceOf(ctx, alice); bal != 200 {
				t.Errorf("balance = %d, want 200", bal)
			}
			if vault.Holdings() != 380 {
				t.Errorf("holdings = %d, want 380", vault.Holdings())
			}

			st, _ := svc.Statement(ctx, alice)
			if len(st) != 2 || st[1].Type != domain.TxWithdraw || st[1].EntryType != domain.EntryDebit {
				t.Errorf("statement = %+v", st)
			}
			if total, _ := svc.TotalBalance(ctx); total != 200 {
				t.Errorf("TotalBalance = %d, want 200", total)
			}
		})
	}
}

func TestWithdraw_Rejections(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	vault := custody.NewVault()
	vault.Seed(100)
	svc := New(store, clock.NewSystem(), vault)
	fund(t, store, alice, 50)

	tests := []struct {
		name   string
		caller domain.Identity
		amount domain.Amount
		want   error
	}{
		{"overdraw", alice, 51, domain.ErrInsufficientBalance},
		{"zero", alice, 0, domain.ErrInvalidParameter},
		{"negative", alice, -5, domain.ErrInvalidParameter},
		{"invalid caller", "bogus", 1, domain.ErrNotAuthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Withdraw(ctx, tt.caller, tt.amount); !errors.Is(err, tt.want) {
				t.Fatalf("Withdraw() error = %v, want %v", err, tt.want)
			}
		})
	}
	if bal, _ := svc.BalanceOf(ctx, alice); bal != 50 {
		t.Errorf("balance = %d after rejections, want 50", bal)
	}
	if vault.Holdings() != 100 {
		t.Errorf("holdings = %d after rejections, want 100", vault.Holdings())
	}
}

func TestWithdraw_CustodyFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	store := newTestDB(t)
	vault := custody.NewVault() // holds nothing, so every release fails
	svc := New(store, clock.NewSystem(), vault)
	fund(t, store, alice, 50)

	_, err := svc.Withdraw(ctx, alice, 20)
	if !errors.Is(err, custody.ErrInsufficientHoldings) {
		t.Fatalf("Withdraw() error = %v, want ErrInsufficientHoldings", err)
	}
	if bal, _ := svc.BalanceOf(ctx, alice); bal != 50 {
		t.Errorf("balance = %d, want 50 (debit rolled back)", bal)
	}
}

func TestWithdraw_NoCustody(t *testing.T) {
	svc := New(memstore.New(), clock.NewSystem(), nil)
	if _, err := svc.Withdraw(context.Background(), alice, 1); !errors.Is(err, ErrNoCustody) {
		t.Fatalf("error = %v, want ErrNoCustody", err)
	}
}

func TestBalanceOf_Unknown(t *testing.T) {
	svc := New(memstore.New(), clock.NewSystem(), nil)
	bal, err := svc.BalanceOf(context.Background(), alice)
	if err != nil || bal != 0 {
		t.Fatalf("BalanceOf unknown = %d, %v; want 0, nil", bal, err)
	}
}
