package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

// ─── Identity Tests ─────────────────────────────────────────────────────────

func TestParseIdentity(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Identity
		wantErr bool
	}{
		{
			name:  "checksummed address is lower-cased",
			input: "0x2Fa4C9EA2c8E7778bEF5dE33b0E5838f12606A02",
			want:  "0x2fa4c9ea2c8e7778bef5de33b0e5838f12606a02",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266 ",
			want:  "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266",
		},
		{name: "free text", input: "abcde", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "missing prefix", input: "2fa4c9ea2c8e7778bef5de33b0e5838f12606a0211", wantErr: true},
		{name: "too short", input: "0x2fa4c9ea", wantErr: true},
		{name: "non-hex digit", input: "0x2fa4c9ea2c8e7778bef5de33b0e5838f12606azz", wantErr: true},
		{name: "zero address", input: string(ZeroIdentity), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIdentity(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRecipient) {
					t.Fatalf("ParseIdentity(%q) error = %v, want ErrInvalidRecipient", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseIdentity(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseIdentity(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIdentity_Valid(t *testing.T) {
	if !MustIdentity("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266").Valid() {
		t.Error("canonical identity should be valid")
	}
	if Identity("0xF39FD6E51AAD88F6F4CE6AB8827279CFFFB92266").Valid() {
		t.Error("non-canonical (upper-case) identity should not be valid")
	}
	if ZeroIdentity.Valid() {
		t.Error("zero identity must not be valid")
	}
	if Identity("").Valid() {
		t.Error("empty identity must not be valid")
	}
}

func TestIdentity_Short(t *testing.T) {
	id := MustIdentity("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	if got := id.Short(); got != "0xf39f…2266" {
		t.Errorf("Short() = %q, want %q", got, "0xf39f…2266")
	}
}

// ─── Journey Tests ──────────────────────────────────────────────────────────

func TestJourney_Window(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	j := Journey{Duration: 3, DailyValue: 4, StartDate: start}

	end := j.EndsAt(DefaultDayLength)
	if want := start.Add(72 * time.Hour); !end.Equal(want) {
		t.Fatalf("EndsAt() = %v, want %v", end, want)
	}
	if !j.IsOpen(end.Add(-time.Nanosecond), DefaultDayLength) {
		t.Error("window should be open one tick before its end")
	}
	if j.IsOpen(end, DefaultDayLength) {
		t.Error("window should be closed exactly at its end")
	}
}

func TestJourney_Payee(t *testing.T) {
	creator := MustIdentity("0x1111111111111111111111111111111111111111")
	sink := MustIdentity("0x2222222222222222222222222222222222222222")

	tests := []struct {
		current int64
		want    Identity
	}{
		{current: 0, want: sink},
		{current: 11, want: sink},
		{current: 12, want: creator},
		{current: 100, want: creator},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.current), func(t *testing.T) {
			j := Journey{Creator: creator, Sink: sink, Duration: 3, DailyValue: 4, CurrentValue: tt.current}
			if j.Target() != 12 {
				t.Fatalf("Target() = %d, want 12", j.Target())
			}
			if got := j.Payee(); got != tt.want {
				t.Errorf("Payee() with current=%d = %s, want %s", tt.current, got, tt.want)
			}
		})
	}
}

// ─── Error Tests ────────────────────────────────────────────────────────────

func TestValidationError_Unwraps(t *testing.T) {
	err := Invalid("duration")
	if !errors.Is(err, ErrInvalidParameter) {
		t.Error("Invalid() should unwrap to ErrInvalidParameter")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "duration" {
		t.Errorf("errors.As ValidationError field = %v", ve)
	}

	err = &ValidationError{Field: "sink", Err: ErrInvalidRecipient}
	if !errors.Is(err, ErrInvalidRecipient) {
		t.Error("sink ValidationError should unwrap to ErrInvalidRecipient")
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrJourneyNotFound, "not_found"},
		{fmt.Errorf("wrapped: %w", ErrNotAuthorized), "not_authorized"},
		{Invalid("fee"), "invalid_parameter"},
		{&ValidationError{Field: "sink", Err: ErrInvalidRecipient}, "invalid_recipient"},
		{ErrFeeExceedsDeposit, "fee_exceeds_deposit"},
		{ErrWindowClosed, "window_closed"},
		{ErrTooEarly, "too_early"},
		{ErrAlreadyCompleted, "already_completed"},
		{ErrOverflow, "overflow"},
		{ErrInsufficientBalance, "insufficient_balance"},
		{ErrNoFeeBeneficiary, "no_fee_beneficiary"},
		{errors.New("disk on fire"), "internal"},
	}
	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

// ─── Ledger Type Tests ──────────────────────────────────────────────────────

func TestEntryTypes(t *testing.T) {
	if EntryDebit == EntryCredit {
		t.Error("EntryDebit and EntryCredit must be distinct")
	}
}

func TestTransactionTypes_Distinct(t *testing.T) {
	types := []TransactionType{TxFee, TxSettleSuccess, TxSettleFailure, TxWithdraw}
	seen := make(map[TransactionType]bool)
	for _, tt := range types {
		if seen[tt] {
			t.Errorf("duplicate TransactionType: %s", tt)
		}
		seen[tt] = true
	}
}
