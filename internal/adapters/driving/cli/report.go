package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/repovet-cli/internal/core/services"
)

var reportList bool

var reportCmd = &cobra.Command{
	Use:   "report [evaluation-id]",
	Short: "Show a stored evaluation report",
	Long: `Prints the report for a finalized evaluation. With --list, shows all
stored evaluations instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportList, "list", false, "list stored evaluations")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	if reportList || len(args) == 0 {
		evals, err := evalStore.ListEvaluations(cmd.Context())
		if err != nil {
			return fmt.Errorf("list evaluations: %w", err)
		}
		if len(evals) == 0 {
			cmd.Println("No evaluations stored.")
			return nil
		}
		for _, e := range evals {
			cmd.Printf("%s  %-40s %-12s %s\n",
				e.ID, e.Repo, e.Status, e.CreatedAt.UTC().Format("2006-01-02 15:04"))
		}
		return nil
	}

	report, err := evalStore.GetReport(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get report %s: %w", args[0], err)
	}
	cmd.Println(services.ReportText(report))
	cmd.Println(renderScorecard(report.Scorecard))
	return nil
}
