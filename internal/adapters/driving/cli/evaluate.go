package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/repovet-cli/internal/core/domain"
	"github.com/custodia-labs/repovet-cli/internal/core/services"
)

var evaluateOutputMarkdown bool

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <owner/name | url>",
	Short: "Run the full evaluation pipeline against a repository",
	Long: `Runs the seven-stage evaluation pipeline against a repository and prints
the scorecard. The finalized evaluation and its report are persisted and can
be fetched later with "repovet report".`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().BoolVar(&evaluateOutputMarkdown, "markdown", false, "print the full report as markdown")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	repo, err := domain.ParseRepoRef(args[0])
	if err != nil {
		return err
	}

	cmd.Printf("Evaluating %s...\n", repo)

	eval, report, err := evaluator.Evaluate(cmd.Context(), repo)
	if err != nil {
		if eval != nil && eval.Status == domain.EvaluationAborted {
			return fmt.Errorf("evaluation %s aborted: %w", eval.ID, err)
		}
		return fmt.Errorf("evaluate: %w", err)
	}

	if evaluateOutputMarkdown {
		cmd.Println(services.ReportText(report))
		return nil
	}

	cmd.Printf("Evaluation %s finalized.\n\n", eval.ID)
	cmd.Println(renderScorecard(report.Scorecard))

	if failed := eval.FailedStages(); len(failed) > 0 {
		names := make([]string, 0, len(failed))
		for _, s := range failed {
			names = append(names, string(s.Name))
		}
		cmd.Printf("\nDegraded stages: %v (see report limitations)\n", names)
	}

	cmd.Printf("\nFull report: repovet report %s\n", eval.ID)
	return nil
}
