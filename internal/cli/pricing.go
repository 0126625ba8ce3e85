package cli

import (
	"fmt"
	"time"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	"github.com/spf13/cobra"
)

func newFeeCmd() *cobra.Command {
	var amount int64

	cmd := &cobra.Command{
		Use:   "fee",
		Short: "Compute the settlement fee (" + domain.SettlementFeeLabel + ")",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if amount <= 0 {
				return fmt.Errorf("amount must be a positive whole number of rupees, got %d", amount)
			}
			fee := domain.ComputeSettlementFee(amount)
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "settled: ₹%s\nfee: ₹%s\n",
				domain.GroupThousands(amount), domain.GroupThousands(fee))
			return err
		},
	}

	cmd.Flags().Int64Var(&amount, "amount", 0, "settled amount in rupees")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newPlansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "Show the plan price table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, tier := range []domain.Tier{domain.TierLite, domain.TierShield} {
				p := domain.Plans[tier]
				fmt.Fprintf(out, "%-7s monthly ₹%s  annual ₹%s  (save %d%%)\n",
					tier.DisplayName(), domain.GroupThousands(p.Monthly), domain.GroupThousands(p.Annual), p.AnnualSavingsPct)
			}
			_, err := fmt.Fprintf(out, "Settlement %s, minimum debt ₹%s\n",
				domain.SettlementFeeLabel, domain.GroupThousands(domain.MinSettlementDebt))
			return err
		},
	}
}

func newProrateCmd(a *app) *cobra.Command {
	var (
		fromTier   string
		fromPeriod string
		daysLeft   int
		toTier     string
		toPeriod   string
	)

	cmd := &cobra.Command{
		Use:   "prorate",
		Short: "Quote a plan change for an active subscription",
		RunE: func(cmd *cobra.Command, _ []string) error {
			current := domain.Tier(fromTier)
			target := domain.Tier(toTier)
			if !current.IsValid() || !target.IsValid() {
				return fmt.Errorf("tiers must be one of: lite, shield")
			}
			curPeriod := domain.BillingPeriod(fromPeriod)
			newPeriod := domain.BillingPeriod(toPeriod)
			if !curPeriod.IsValid() || !newPeriod.IsValid() {
				return fmt.Errorf("billing periods must be one of: monthly, annual")
			}
			if daysLeft < 0 {
				return fmt.Errorf("days-left cannot be negative")
			}

			now := a.now()
			expires := now.Add(time.Duration(daysLeft) * 24 * time.Hour)
			sub := domain.Subscription{
				Tier:          current,
				BillingPeriod: curPeriod,
				Status:        domain.SubscriptionActive,
				ExpiresAt:     &expires,
			}
			q := sub.QuoteUpgrade(target, newPeriod, now)

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "price: ₹%s\ncredit: ₹%s\ncharge: ₹%s\n",
				domain.GroupThousands(q.Price), domain.GroupThousands(q.ProrateCredit), domain.GroupThousands(q.Charge))
			return err
		},
	}

	cmd.Flags().StringVar(&fromTier, "from", string(domain.TierLite), "current tier")
	cmd.Flags().StringVar(&fromPeriod, "from-period", string(domain.Monthly), "current billing period")
	cmd.Flags().IntVar(&daysLeft, "days-left", 0, "days left on the current period")
	cmd.Flags().StringVar(&toTier, "to", "", "target tier")
	cmd.Flags().StringVar(&toPeriod, "to-period", string(domain.Monthly), "target billing period")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
