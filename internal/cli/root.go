package cli

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Execute runs the exitdebt CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

type app struct {
	cfg *viper.Viper
	now func() time.Time
}

// NewRootCmd builds the command tree. Settings come from flags first and the
// environment second.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{cfg: newViper(), now: time.Now})
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "exitdebt",
		Short:         "ExitDebt operator tools",
		Long:          "exitdebt scores debt portfolios offline, prices settlements and plan changes, and issues tokens for the internal API.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newScoreCmd(a),
		newFeeCmd(),
		newPlansCmd(),
		newProrateCmd(a),
		newTokenCmd(a),
	)

	return rootCmd
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("JWT_ISSUER", "exitdebt-backend")
	v.AutomaticEnv()
	return v
}
