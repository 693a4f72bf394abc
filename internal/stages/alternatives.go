package stages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/repovet-cli/internal/core/domain"
)

// AlternativesStage searches for comparable projects. It requires the
// purpose stage: without a declared purpose there is nothing to search for.
type AlternativesStage struct{}

func (s *AlternativesStage) Name() domain.StageName { return domain.StageAlternatives }

func (s *AlternativesStage) Requires() []domain.StageName {
	return []domain.StageName{domain.StagePurpose}
}

func (s *AlternativesStage) Run(ctx context.Context, eval *domain.Evaluation, a Adapters) ([]domain.Finding, error) {
	if a.Search == nil {
		return nil, domain.Permanent(fmt.Errorf("web search not configured"))
	}

	queries := []subQuery{
		{Label: "alternatives", Query: fmt.Sprintf("alternatives to %s %s", eval.Repo.Name, purposeTerms(eval))},
		{Label: "comparison", Query: fmt.Sprintf("%q vs", eval.Repo.String())},
	}

	outcomes := runSearches(ctx, a.Search, queries)
	if failed, err := allFailed(outcomes); failed {
		return nil, domain.Permanent(fmt.Errorf("all alternative searches failed: %w", err))
	}

	now := time.Now().UTC()
	var findings []domain.Finding
	for _, o := range outcomes {
		if o.Err != nil {
			findings = append(findings, unavailableFinding(domain.DimensionUsability, o, now))
			continue
		}
		if len(o.Results) == 0 {
			continue
		}
		citations := make([]domain.Citation, 0, len(o.Results))
		urls := make([]string, 0, len(o.Results))
		for _, r := range o.Results {
			citations = append(citations, domain.Citation{
				Source:      domain.SourceWebSearchResult,
				Location:    r.URL,
				RetrievedAt: r.RetrievedAt,
				Snippet:     r.Snippet,
			})
			urls = append(urls, r.URL)
		}
		findings = append(findings, domain.Finding{
			Category:    domain.CategoryAlternatives,
			Severity:    domain.SeverityInformational,
			Dimension:   domain.DimensionUsability,
			Description: fmt.Sprintf("%s search surfaced %d comparable project reference(s): %s", o.Label, len(urls), strings.Join(urls, ", ")),
			Citations:   citations,
		})
	}
	return findings, nil
}

// purposeTerms pulls a few keywords from the purpose stage's declared
// purpose to sharpen the search.
func purposeTerms(eval *domain.Evaluation) string {
	stage := eval.StageByName(domain.StagePurpose)
	if stage == nil {
		return ""
	}
	for _, f := range stage.Findings {
		if f.Category != domain.CategoryDeclaredPurpose {
			continue
		}
		words := strings.Fields(f.Description)
		if len(words) > 6 {
			words = words[:6]
		}
		return strings.Join(words, " ")
	}
	return ""
}
