package cli

import (
	"github.com/FranksOps/rankrocket/internal/config"
	"github.com/spf13/cobra"
)

func (a *app) allCommand() *cobra.Command {
	var (
		bf           backgroundFlags
		maxQuestions int
	)
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Run background, gmb and faq in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.loadClient(config.RequiredFields...)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max") {
				c.MaxQuestions = maxQuestions
			}
			if err := a.runBackground(cmd.Context(), c, bf); err != nil {
				return err
			}
			if err := a.runGMB(c); err != nil {
				return err
			}
			return a.runFAQ(cmd.Context(), c, faqFlags{concurrency: 1, estimate: bf.estimate})
		},
	}
	addBackgroundFlags(cmd, &bf)
	cmd.Flags().IntVar(&maxQuestions, "max", config.DefaultMaxQuestions, "maximum questions (overrides max_questions)")
	return cmd
}
