package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/models"
)

func (c *cli) balancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balances <group>",
		Short: "Show each member's net balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			group, balances, err := c.ledger.Balances(ctx, args[0])
			if err != nil {
				return err
			}
			names, err := c.ledger.DisplayNames(ctx, group.Members)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Balances for %s\n", group.Name)
			printBalances(out, group, balances, names)
			return nil
		},
	}
}

func (c *cli) suggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <group>",
		Short: "Show the transfers that would settle the group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			plan, err := c.ledger.Plan(ctx, args[0])
			if err != nil {
				return err
			}
			names, err := c.ledger.DisplayNames(ctx, plan.Group.Members)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Settlement suggestions for %s\n", plan.Group.Name)
			if len(plan.Suggestions) == 0 {
				fmt.Fprintln(out, "Everyone is settled up.")
				return nil
			}
			printTransfers(out, plan.Suggestions, names)
			fmt.Fprintln(out, "Balances after settlement:")
			printBalances(out, plan.Group, plan.After, names)
			return nil
		},
	}
}

// settle <group> --from <user> --to <user> --amount <amount>, or settle <group> --accept
func (c *cli) settleCmd() *cobra.Command {
	var (
		from, to, amount, note string
		accept                 bool
	)
	cmd := &cobra.Command{
		Use:   "settle <group>",
		Short: "Record a payment between members, or accept every suggested transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			if accept {
				recorded, err := c.ledger.AcceptSuggestions(ctx, args[0], "")
				if err != nil {
					return err
				}
				if len(recorded) == 0 {
					fmt.Fprintln(out, "Everyone is settled up.")
					return nil
				}
				fmt.Fprintf(out, "Recorded %d settlements\n", len(recorded))
				return c.printSettlements(ctx, out, recorded)
			}

			if from == "" || to == "" || amount == "" {
				return fmt.Errorf("--from, --to and --amount are required unless --accept is set")
			}
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			fromID, err := c.resolveUser(ctx, from)
			if err != nil {
				return err
			}
			toID, err := c.resolveUser(ctx, to)
			if err != nil {
				return err
			}
			settlement, err := c.ledger.RecordSettlement(ctx, ledger.SettlementInput{
				GroupID:    args[0],
				FromUserID: fromID,
				ToUserID:   toID,
				Amount:     value,
				Note:       note,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "Settlement recorded")
			return c.printSettlements(ctx, out, []*models.Settlement{settlement})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "user ID or email of the member who paid")
	cmd.Flags().StringVar(&to, "to", "", "user ID or email of the member who was paid")
	cmd.Flags().StringVar(&amount, "amount", "", "amount paid")
	cmd.Flags().StringVar(&note, "note", "", "optional note")
	cmd.Flags().BoolVar(&accept, "accept", false, "record every currently suggested transfer")
	cmd.MarkFlagsMutuallyExclusive("accept", "from")
	cmd.MarkFlagsMutuallyExclusive("accept", "to")
	cmd.MarkFlagsMutuallyExclusive("accept", "amount")
	return cmd
}

func (c *cli) settlementsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settlements <group>",
		Short: "Show a group's settlement history, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			settlements, err := c.ledger.ListSettlements(ctx, args[0])
			if err != nil {
				return err
			}
			if len(settlements) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No settlements recorded for this group.")
				return nil
			}
			return c.printSettlements(ctx, cmd.OutOrStdout(), settlements)
		},
	}
}

func (c *cli) printSettlements(ctx context.Context, out io.Writer, settlements []*models.Settlement) error {
	ids := make([]string, 0, 2*len(settlements))
	for _, s := range settlements {
		ids = append(ids, s.FromUserID, s.ToUserID)
	}
	names, err := c.ledger.DisplayNames(ctx, ids)
	if err != nil {
		return err
	}
	for _, s := range settlements {
		fmt.Fprintf(out, "%s  %s paid %s %s", s.ID, names[s.FromUserID], names[s.ToUserID], s.Amount.StringFixed(2))
		if s.Note != "" {
			fmt.Fprintf(out, " (%s)", s.Note)
		}
		fmt.Fprintln(out)
	}
	return nil
}

func printBalances(out io.Writer, group *models.Group, balances calculator.Balances[string], names map[string]string) {
	for _, id := range group.Members {
		b := balances[id]
		switch {
		case b.IsPositive():
			fmt.Fprintf(out, "  %s: %s is owed\n", names[id], b.StringFixed(2))
		case b.IsNegative():
			fmt.Fprintf(out, "  %s: %s owes\n", names[id], b.Abs().StringFixed(2))
		default:
			fmt.Fprintf(out, "  %s: settled\n", names[id])
		}
	}
}

func printTransfers(out io.Writer, transfers []calculator.Transfer[string], names map[string]string) {
	for i, t := range transfers {
		fmt.Fprintf(out, "  %d. %s pays %s %s\n", i+1, names[t.From], names[t.To], t.Amount.StringFixed(2))
	}
}
