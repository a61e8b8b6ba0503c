package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/showup-club/showup/internal/daemon"
)

func init() {
	rootCmd.AddCommand(feeCmd)
	feeCmd.AddCommand(feeShowCmd)
	feeCmd.AddCommand(feeTransferCmd)
}

var feeCmd = &cobra.Command{
	Use:   "fee",
	Short: "Inspect or hand over the fee beneficiary role",
}

var feeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current fee beneficiary",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(cmd, func(ctx context.Context, d *daemon.Daemon) error {
			who, err := d.Access.CurrentFeeBeneficiary(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout(cmd), who)
			return nil
		})
	},
}

var feeTransferCmd = &cobra.Command{
	Use:   "transfer <identity>",
	Short: "Hand the fee beneficiary role to another identity (current beneficiary only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		who, err := caller(cmd)
		if err != nil {
			return err
		}
		next := identityArg(args[0])
		return withDaemon(cmd, func(ctx context.Context, d *daemon.Daemon) error {
			if err := d.Access.TransferFeeBeneficiary(ctx, who, next); err != nil {
				return err
			}
			fmt.Fprintf(stdout(cmd), "✅ Fee beneficiary is now %s\n", next)
			return nil
		})
	},
}
