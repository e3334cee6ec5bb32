package cli

import (
	"fmt"
	"time"

	"github.com/FranksOps/rankrocket/internal/report"
	"github.com/FranksOps/rankrocket/internal/storage"
	"github.com/spf13/cobra"
)

func (a *app) historyCommand() *cobra.Command {
	var (
		filter  storage.Filter
		since   time.Duration
		summary string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List FAQ entries recorded in the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.opts.LedgerPath == "" {
				return fmt.Errorf("history needs a --ledger file")
			}
			ledger, err := a.openLedger()
			if err != nil {
				return err
			}
			defer ledger.Close()

			if since > 0 {
				t := time.Now().Add(-since)
				filter.Since = &t
			}
			records, err := ledger.Query(cmd.Context(), filter)
			if err != nil {
				return err
			}

			switch summary {
			case "text":
				return report.WriteText(a.out, report.GenerateSummary(records))
			case "json":
				return report.WriteJSON(a.out, report.GenerateSummary(records))
			case "":
			default:
				return fmt.Errorf("unknown summary format %q", summary)
			}

			for _, r := range records {
				fmt.Fprintf(a.out, "%s  %-30s  #%d  %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Client, r.Position, r.Question)
			}
			if len(records) == 0 {
				fmt.Fprintln(a.out, "No entries.")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.Client, "client", "", "only this client")
	cmd.Flags().StringVar(&filter.RunID, "run", "", "only this run id")
	cmd.Flags().DurationVar(&since, "since", 0, "only entries newer than this, e.g. 72h")
	cmd.Flags().IntVar(&filter.Limit, "limit", 50, "maximum entries")
	cmd.Flags().IntVar(&filter.Offset, "offset", 0, "skip this many entries")
	cmd.Flags().StringVar(&summary, "summary", "", "print a summary instead: text or json")
	return cmd
}
