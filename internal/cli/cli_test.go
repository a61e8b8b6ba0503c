package cli

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/showup-club/showup/internal/domain"
)

const (
	genesis = "0x0e0e0e0e0e0e0e0e0e0e0e0e0e0e0e0e0e0e0e0e"
	alice   = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	charity = "0xc0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0"
)

// run executes the root command against home and returns stdout.
func run(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--home", home}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI_JourneyLifecycle(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SHOWUP_GENESIS_BENEFICIARY", genesis)

	out, err := run(t, home, "journey", "create", "--as", alice,
		"--action", "run", "--format", "km", "--days", "7", "--daily", "5",
		"--sink", charity, "--fee", "10", "--deposit", "110")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.Contains(out, "Journey 0 created (locked 100, fee 10)") {
		t.Errorf("create output = %q", out)
	}

	if _, err := run(t, home, "journey", "show-up", "0", "--as", alice, "--amount", "4", "--note", "first"); err != nil {
		t.Fatalf("show-up: %v", err)
	}

	out, err = run(t, home, "journey", "get", "0")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	for _, want := range []string{`"current_value": 4`, `"target": 35`, `"deposit": 100`} {
		if !strings.Contains(out, want) {
			t.Errorf("get output missing %s:\n%s", want, out)
		}
	}

	out, err = run(t, home, "journey", "list", "--user", alice)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "4/35") || !strings.Contains(out, "open") {
		t.Errorf("list output = %q", out)
	}

	out, err = run(t, home, "balance", genesis)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if strings.TrimSpace(out) != genesis+": 10" {
		t.Errorf("balance output = %q", out)
	}

	_, err = run(t, home, "journey", "complete", "0", "--as", alice)
	if !errors.Is(err, domain.ErrTooEarly) {
		t.Errorf("early complete: got %v, want ErrTooEarly", err)
	}
}

func TestCLI_FeeBeneficiary(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SHOWUP_GENESIS_BENEFICIARY", genesis)

	out, err := run(t, home, "fee", "show")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != genesis {
		t.Errorf("fee show = %q", out)
	}

	_, err = run(t, home, "fee", "transfer", charity, "--as", alice)
	if !errors.Is(err, domain.ErrNotAuthorized) {
		t.Errorf("transfer by non-beneficiary: got %v", err)
	}

	if _, err := run(t, home, "fee", "transfer", charity, "--as", genesis); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	out, _ = run(t, home, "fee", "show")
	if strings.TrimSpace(out) != charity {
		t.Errorf("after transfer = %q", out)
	}
}

func TestCLI_RequiresCaller(t *testing.T) {
	home := t.TempDir()
	// Clear any --as left on the shared flag set by earlier tests.
	rootCmd.PersistentFlags().Set("as", "")
	if _, err := run(t, home, "withdraw", "5"); err == nil || !strings.Contains(err.Error(), "--as") {
		t.Errorf("withdraw without --as: %v", err)
	}
}

func TestSplitHostPort(t *testing.T) {
	host, port, err := splitHostPort("0.0.0.0:9000")
	if err != nil || host != "0.0.0.0" || port != 9000 {
		t.Errorf("got %q %d %v", host, port, err)
	}
	if _, _, err := splitHostPort("localhost"); err == nil {
		t.Error("missing port accepted")
	}
	if _, _, err := splitHostPort("localhost:99999"); err == nil {
		t.Error("out-of-range port accepted")
	}
}
