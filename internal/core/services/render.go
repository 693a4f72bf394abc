package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/repovet-cli/internal/core/domain"
)

// Renderer serialises a finalized evaluation into a fixed-structure report.
// Rendering is pure: the generation timestamp is an argument, so re-rendering
// the same evaluation with the same timestamp produces an identical report.
type Renderer struct{}

// NewRenderer creates a report renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// stageSections maps pipeline stages to their report section titles, in the
// fixed rendering order after the Overview.
var stageSections = []struct {
	title string
	stage domain.StageName
}{
	{domain.SectionRepositoryAssessment, domain.StageMetadata},
	{domain.SectionPurpose, domain.StagePurpose},
	{domain.SectionExpectedFunction, domain.StagePurpose},
	{domain.SectionAlternatives, domain.StageAlternatives},
	{domain.SectionCodeAnalysis, domain.StageCodeReview},
	{domain.SectionCommunityFeedback, domain.StageCommunity},
	{domain.SectionRiskAssessment, domain.StageRisk},
	{domain.SectionUsability, domain.StageUsability},
}

// Render produces the report for a finalized evaluation. It refuses
// evaluations in any other status: aborted runs have no report and
// in-progress runs are not yet evidence-complete.
func (r *Renderer) Render(eval *domain.Evaluation, card domain.Scorecard, generatedAt time.Time) (*domain.Report, error) {
	if eval == nil {
		return nil, fmt.Errorf("render: %w: nil evaluation", domain.ErrInvalidInput)
	}
	if eval.Status != domain.EvaluationFinalized {
		return nil, fmt.Errorf("render: evaluation %s is %s, want %s", eval.ID, eval.Status, domain.EvaluationFinalized)
	}

	report := &domain.Report{
		EvaluationID: eval.ID,
		Repo:         eval.Repo,
		GeneratedAt:  generatedAt,
		Scorecard:    card,
	}

	report.Sections = append(report.Sections, domain.ReportSection{
		Title: domain.SectionOverview,
		Body: fmt.Sprintf("Evaluation of %s, created %s. Overall score %d/100: %s.",
			eval.Repo, eval.CreatedAt.UTC().Format(time.RFC3339), card.Overall, card.Verdict),
	})

	for _, s := range stageSections {
		report.Sections = append(report.Sections, domain.ReportSection{
			Title: s.title,
			Body:  r.stageBody(eval, s.title, s.stage),
		})
	}

	report.Sections = append(report.Sections, domain.ReportSection{
		Title: domain.SectionScoringTable,
		Body:  r.scoringTable(card),
	})

	if failed := eval.FailedStages(); len(failed) > 0 {
		report.Sections = append(report.Sections, domain.ReportSection{
			Title: domain.SectionLimitations,
			Body:  r.limitations(failed),
		})
	}

	report.Sections = append(report.Sections, domain.ReportSection{
		Title: domain.SectionVerdict,
		Body:  fmt.Sprintf("%s (overall %d/100)", card.Verdict, card.Overall),
	})

	report.Recommendations = r.recommendations(eval)
	report.Sections = append(report.Sections, domain.ReportSection{
		Title: domain.SectionRecommendations,
		Body:  bulleted(report.Recommendations),
	})

	return report, nil
}

// stageBody renders one stage's findings as a bulleted list. The two
// purpose-backed sections split the stage's findings: Purpose carries the
// declared-purpose findings, Expected Functionality the rest.
func (r *Renderer) stageBody(eval *domain.Evaluation, title string, name domain.StageName) string {
	stage := eval.StageByName(name)
	if stage == nil {
		return "No data."
	}
	switch stage.Status {
	case domain.StageSkipped:
		return "Stage skipped: prerequisite stage did not complete."
	case domain.StageFailed:
		return "Stage failed; see Evaluation Limitations."
	}

	var lines []string
	for _, f := range stage.Findings {
		if name == domain.StagePurpose {
			isPurpose := f.Category == domain.CategoryDeclaredPurpose
			if isPurpose != (title == domain.SectionPurpose) {
				continue
			}
		}
		loc := ""
		if len(f.Citations) > 0 {
			loc = " [" + f.Citations[0].Location + "]"
		}
		lines = append(lines, fmt.Sprintf("- (%s) %s%s", f.Severity, f.Description, loc))
	}
	if len(lines) == 0 {
		return "No findings."
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) scoringTable(card domain.Scorecard) string {
	var b strings.Builder
	for _, s := range card.Scores {
		fmt.Fprintf(&b, "%-13s %3d  %s\n", s.Dimension, s.Value, s.Justification)
	}
	fmt.Fprintf(&b, "%-13s %3d", "overall", card.Overall)
	return b.String()
}

func (r *Renderer) limitations(failed []domain.Stage) string {
	var lines []string
	for _, stage := range failed {
		if len(stage.Errors) == 0 {
			lines = append(lines, fmt.Sprintf("- stage %s failed", stage.Name))
			continue
		}
		for _, e := range stage.Errors {
			lines = append(lines, fmt.Sprintf("- stage %s failed: %s", stage.Name, e.Message))
		}
	}
	return strings.Join(lines, "\n")
}

// recommendations derives the bounded action list from negative findings,
// most severe first. Ordering is stable so re-rendering is idempotent.
func (r *Renderer) recommendations(eval *domain.Evaluation) []string {
	rank := map[domain.Severity]int{
		domain.SeverityCritical: 0,
		domain.SeverityHigh:     1,
		domain.SeverityMedium:   2,
		domain.SeverityLow:      3,
	}

	var negatives []domain.Finding
	for _, f := range eval.Findings() {
		if f.Negative() {
			negatives = append(negatives, f)
		}
	}
	sort.SliceStable(negatives, func(i, j int) bool {
		if rank[negatives[i].Severity] != rank[negatives[j].Severity] {
			return rank[negatives[i].Severity] < rank[negatives[j].Severity]
		}
		return negatives[i].Category < negatives[j].Category
	})

	var recs []string
	seen := make(map[string]bool)
	for _, f := range negatives {
		if seen[f.Category] {
			continue
		}
		seen[f.Category] = true
		recs = append(recs, fmt.Sprintf("Address %s %s issue: %s", f.Severity, f.Category, f.Description))
		if len(recs) == domain.MaxRecommendations {
			break
		}
	}
	if len(recs) == 0 {
		recs = append(recs, "No remedial actions identified.")
	}
	return recs
}

func bulleted(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "- " + it
	}
	return strings.Join(lines, "\n")
}

// ReportText renders a report as plain markdown for files or stdout.
func ReportText(report *domain.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Repository Evaluation: %s\n\n", report.Repo)
	fmt.Fprintf(&b, "Generated: %s\n\n", report.GeneratedAt.UTC().Format(time.RFC3339))
	for _, s := range report.Sections {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", s.Title, s.Body)
	}
	return b.String()
}
