package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/showup-club/showup/internal/daemon"
	"github.com/showup-club/showup/internal/domain"
)

func init() {
	rootCmd.AddCommand(journeyCmd)
	journeyCmd.AddCommand(journeyCreateCmd)
	journeyCmd.AddCommand(journeyShowUpCmd)
	journeyCmd.AddCommand(journeyCompleteCmd)
	journeyCmd.AddCommand(journeyGetCmd)
	journeyCmd.AddCommand(journeyListCmd)

	f := journeyCreateCmd.Flags()
	f.String("action", "", "What the creator commits to doing (e.g. run)")
	f.String("format", "", "Unit progress is measured in (e.g. km)")
	f.Int64("days", 0, "Duration in whole days")
	f.Int64("daily", 0, "Progress target per day")
	f.String("description", "", "Free-text description")
	f.String("sink", "", "Identity that receives the deposit on failure")
	f.Int64("fee", 0, "Fee paid to the fee beneficiary")
	f.Int64("deposit", 0, "Total value attached, fee included")

	journeyShowUpCmd.Flags().Int64("amount", 0, "Progress to record")
	journeyShowUpCmd.Flags().String("note", "", "Optional note")

	journeyListCmd.Flags().String("user", "", "List journeys created by this identity instead of --as")
}

var journeyCmd = &cobra.Command{
	Use:   "journey",
	Short: "Create, progress and settle journeys",
}

// ─── create ─────────────────────────────────────────────────────────────────

var journeyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a journey and lock its deposit",
	Example: `  showup journey create --as 0xabc... --action run --format km \
    --days 7 --daily 5 --sink 0xc0c... --fee 10 --deposit 110`,
	RunE: runJourneyCreate,
}

func runJourneyCreate(cmd *cobra.Command, args []string) error {
	who, err := caller(cmd)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	p := domain.JourneyParams{}
	p.Action, _ = f.GetString("action")
	p.Format, _ = f.GetString("format")
	p.Duration, _ = f.GetInt64("days")
	p.DailyValue, _ = f.GetInt64("daily")
	p.Description, _ = f.GetString("description")
	sink, _ := f.GetString("sink")
	p.Sink = identityArg(sink)
	fee, _ := f.GetInt64("fee")
	deposit, _ := f.GetInt64("deposit")
	p.Fee, p.Attached = domain.Amount(fee), domain.Amount(deposit)

	return withDaemon(cmd, func(ctx context.Context, d *daemon.Daemon) error {
		id, err := d.Engine.Create(ctx, who, p)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout(cmd), "✅ Journey %d created (locked %d, fee %d)\n", id, p.Attached-p.Fee, p.Fee)
		return nil
	})
}

// ─── show-up ────────────────────────────────────────────────────────────────

var journeyShowUpCmd = &cobra.Command{
	Use:   "show-up <id>",
	Short: "Record progress on an open journey",
	Args:  cobra.ExactArgs(1),
	RunE:  runJourneyShowUp,
}

func runJourneyShowUp(cmd *cobra.Command, args []string) error {
	who, err := caller(cmd)
	if err != nil {
		return err
	}
	id, err := journeyIDArg(args[0])
	if err != nil {
		return err
	}
	amount, _ := cmd.Flags().GetInt64("amount")
	note, _ := cmd.Flags().GetString("note")

	return withDaemon(cmd, func(ctx context.Context, d *daemon.Daemon) error {
		if err := d.Engine.ShowUp(ctx, who, id, amount, note); err != nil {
			return err
		}
		j, err := d.Engine.Journey(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout(cmd), "✅ Journey %d: %d/%d\n", id, j.CurrentValue, j.Target())
		return nil
	})
}

// ─── complete ───────────────────────────────────────────────────────────────

var journeyCompleteCmd = &cobra.Command{
	Use:   "complete <id>",
	Short: "Settle a journey whose window has closed",
	Args:  cobra.ExactArgs(1),
	RunE:  runJourneyComplete,
}

func runJourneyComplete(cmd *cobra.Command, args []string) error {
	who, err := caller(cmd)
	if err != nil {
		return err
	}
	id, err := journeyIDArg(args[0])
	if err != nil {
		return err
	}
	return withDaemon(cmd, func(ctx context.Context, d *daemon.Daemon) error {
		s, err := d.Engine.Complete(ctx, who, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout(cmd), "Journey %d settled: %s, %d credited to %s\n", id, s.Outcome, s.Amount, s.Payee)
		return nil
	})
}

// ─── get / list ─────────────────────────────────────────────────────────────

var journeyGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a journey",
	Args:  cobra.ExactArgs(1),
	RunE:  runJourneyGet,
}

func runJourneyGet(cmd *cobra.Command, args []string) error {
	id, err := journeyIDArg(args[0])
	if err != nil {
		return err
	}
	return withDaemon(cmd, func(ctx context.Context, d *daemon.Daemon) error {
		j, err := d.Engine.Journey(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(stdout(cmd), struct {
			*domain.Journey
			Target int64     `json:"target"`
			EndsAt time.Time `json:"ends_at"`
		}{j, j.Target(), j.EndsAt(d.Engine.Config().DayLength)})
	})
}

var journeyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List journey ids for --as (or --user)",
	RunE:  runJourneyList,
}

func runJourneyList(cmd *cobra.Command, args []string) error {
	var who domain.Identity
	if raw, _ := cmd.Flags().GetString("user"); raw != "" {
		who = identityArg(raw)
	} else {
		var err error
		if who, err = caller(cmd); err != nil {
			return err
		}
	}
	return withDaemon(cmd, func(ctx context.Context, d *daemon.Daemon) error {
		ids, err := d.Engine.JourneyIDsForUser(ctx, who)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Fprintln(stdout(cmd), "No journeys.")
			return nil
		}
		dayLength := d.Engine.Config().DayLength
		tw := tabwriter.NewWriter(stdout(cmd), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tACTION\tPROGRESS\tDEPOSIT\tSTATUS")
		for _, id := range ids {
			j, err := d.Engine.Journey(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "%d\t%s %s\t%d/%d\t%d\t%s\n",
				j.ID, j.Action, j.Format, j.CurrentValue, j.Target(), j.Deposit, status(j, d.Clock.Now(), dayLength))
		}
		return tw.Flush()
	})
}

func status(j *domain.Journey, now time.Time, dayLength time.Duration) string {
	switch {
	case j.Completed:
		return "settled"
	case j.IsOpen(now, dayLength):
		return "open"
	default:
		return "awaiting settlement"
	}
}

func journeyIDArg(s string) (domain.JourneyID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid journey id %q", s)
	}
	return domain.JourneyID(n), nil
}

// identityArg canonicalises well-formed input and passes anything else
// through so the engine reports it with the right error kind.
func identityArg(s string) domain.Identity {
	if id, err := domain.ParseIdentity(s); err == nil {
		return id
	}
	return domain.Identity(s)
}
