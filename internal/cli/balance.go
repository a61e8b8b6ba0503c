package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/showup-club/showup/internal/daemon"
	"github.com/showup-club/showup/internal/domain"
)

func init() {
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(withdrawCmd)
	balanceCmd.Flags().Bool("statement", false, "Also print ledger entries")
}

// ─── balance ────────────────────────────────────────────────────────────────

var balanceCmd = &cobra.Command{
	Use:   "balance [identity]",
	Short: "Show the accrued balance of an identity (default --as)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBalance,
}

func runBalance(cmd *cobra.Command, args []string) error {
	var who domain.Identity
	if len(args) == 1 {
		who = identityArg(args[0])
	} else {
		var err error
		if who, err = caller(cmd); err != nil {
			return err
		}
	}
	withStatement, _ := cmd.Flags().GetBool("statement")

	return withDaemon(cmd, func(ctx context.Context, d *daemon.Daemon) error {
		bal, err := d.Ledger.BalanceOf(ctx, who)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout(cmd), "%s: %d\n", who, bal)
		if !withStatement {
			return nil
		}

		entries, err := d.Ledger.Statement(ctx, who)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(stdout(cmd), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tTYPE\tAMOUNT\tBALANCE\tJOURNEY")
		for _, e := range entries {
			amount := fmt.Sprintf("+%d", e.Amount)
			if e.EntryType == domain.EntryDebit {
				amount = fmt.Sprintf("-%d", e.Amount)
			}
			journey := "-"
			if e.JourneyID != nil {
				journey = strconv.FormatInt(int64(*e.JourneyID), 10)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
				e.Timestamp.Format("2006-01-02 15:04"), e.Type, amount, e.Balance, journey)
		}
		return tw.Flush()
	})
}

// ─── withdraw ───────────────────────────────────────────────────────────────

var withdrawCmd = &cobra.Command{
	Use:   "withdraw <amount>",
	Short: "Withdraw accrued balance for --as out of custody",
	Args:  cobra.ExactArgs(1),
	RunE:  runWithdraw,
}

func runWithdraw(cmd *cobra.Command, args []string) error {
	who, err := caller(cmd)
	if err != nil {
		return err
	}
	n, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q", args[0])
	}
	return withDaemon(cmd, func(ctx context.Context, d *daemon.Daemon) error {
		p, err := d.Ledger.Withdraw(ctx, who, domain.Amount(n))
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout(cmd), "✅ Released %d to %s (payout %s)\n", p.Amount, p.To, p.ID)
		return nil
	})
}
