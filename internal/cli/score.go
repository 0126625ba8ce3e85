package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	"github.com/exitdebt/exitdebt_backend/internal/core/scoring"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// portfolioFile is the TOML input of the score command.
type portfolioFile struct {
	MonthlyIncome *float64           `toml:"monthly_income"`
	Accounts      []portfolioAccount `toml:"accounts"`
}

type portfolioAccount struct {
	LenderName     string   `toml:"lender_name"`
	AccountType    string   `toml:"account_type"`
	Outstanding    *float64 `toml:"outstanding"`
	InterestRate   *float64 `toml:"interest_rate"`
	EMIAmount      *float64 `toml:"emi_amount"`
	Status         string   `toml:"status"`
	Utilization    *float64 `toml:"utilization"`
	PaymentHistory *float64 `toml:"payment_history"`
}

func lenient(f *float64) domain.LenientDecimal {
	if f == nil {
		return domain.LenientDecimal{}
	}
	return domain.LenientDecimal{Decimal: decimal.NewFromFloat(*f), Valid: true}
}

func (p portfolioFile) bureauAccounts() []domain.BureauAccount {
	out := make([]domain.BureauAccount, len(p.Accounts))
	for i, a := range p.Accounts {
		out[i] = domain.BureauAccount{
			LenderName:     a.LenderName,
			AccountType:    a.AccountType,
			Outstanding:    lenient(a.Outstanding),
			InterestRate:   lenient(a.InterestRate),
			EMIAmount:      lenient(a.EMIAmount),
			Status:         a.Status,
			Utilization:    lenient(a.Utilization),
			PaymentHistory: lenient(a.PaymentHistory),
		}
	}
	return out
}

// jsonPortfolio is the JSON input of the score command. Numbers may be
// strings, as bureaus send them.
type jsonPortfolio struct {
	MonthlyIncome *decimal.Decimal       `json:"monthly_income"`
	Accounts      []domain.BureauAccount `json:"accounts"`
}

// loadAccounts reads a portfolio and returns the normalized accounts plus the
// income found in the file, if any. With aggregator the file must be a JSON
// FI data document.
func loadAccounts(path string, aggregator bool) ([]domain.DebtAccount, *decimal.Decimal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read portfolio: %w", err)
	}

	isJSON := strings.EqualFold(filepath.Ext(path), ".json")
	switch {
	case aggregator && !isJSON:
		return nil, nil, errors.New("aggregator data must be a .json file")
	case aggregator:
		var fi domain.FIData
		if err := json.Unmarshal(data, &fi); err != nil {
			return nil, nil, fmt.Errorf("parse fi data %s: %w", path, err)
		}
		return scoring.NormalizeAggregatorData(fi), nil, nil
	case isJSON:
		var p jsonPortfolio
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, nil, fmt.Errorf("parse portfolio %s: %w", path, err)
		}
		return scoring.NormalizeBureauAccounts(p.Accounts), p.MonthlyIncome, nil
	default:
		var p portfolioFile
		if err := toml.Unmarshal(data, &p); err != nil {
			return nil, nil, fmt.Errorf("parse portfolio %s: %w", path, err)
		}
		var income *decimal.Decimal
		if p.MonthlyIncome != nil {
			v := decimal.NewFromFloat(*p.MonthlyIncome)
			income = &v
		}
		return scoring.NormalizeBureauAccounts(p.bureauAccounts()), income, nil
	}
}

func newScoreCmd(_ *app) *cobra.Command {
	var (
		file       string
		income     float64
		aggregator bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a debt portfolio described in a TOML or JSON file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			accounts, monthlyIncome, err := loadAccounts(file, aggregator)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("income") {
				v := decimal.NewFromFloat(income)
				monthlyIncome = &v
			}

			result := scoring.Calculate(accounts, monthlyIncome)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			return writeScore(cmd, result)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "portfolio file (.toml or .json)")
	cmd.Flags().Float64Var(&income, "income", 0, "monthly income, overrides the file")
	cmd.Flags().BoolVar(&aggregator, "aggregator", false, "file is account aggregator FI data")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func writeScore(cmd *cobra.Command, r domain.HealthScoreResult) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "score: %d (%s)\n", r.Score, r.Category)
	fmt.Fprintf(out, "total outstanding: ₹%s\n", r.TotalOutstanding.StringFixed(2))
	fmt.Fprintf(out, "total emi: ₹%s\n", r.TotalEMI.StringFixed(2))
	fmt.Fprintf(out, "avg rate: %s%%\n", r.AvgRate.StringFixed(2))
	fmt.Fprintf(out, "dti: %s\n", r.DTIRatio.StringFixed(4))
	fmt.Fprintf(out, "estimated savings: ₹%s\n", r.SavingsEst.StringFixed(2))
	for _, f := range r.FlaggedAccounts {
		fmt.Fprintf(out, "flagged: %s (%s): %s\n", f.LenderName, f.AccountType, f.Reason)
	}
	return nil
}
