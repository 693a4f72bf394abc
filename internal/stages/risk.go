package stages

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/repovet-cli/internal/core/domain"
	"github.com/custodia-labs/repovet-cli/internal/core/ports/driven"
)

const (
	// commitLookback is how far back the history analysis reaches.
	commitLookback = 365 * 24 * time.Hour

	// commitLimit caps the commits fetched.
	commitLimit = 100

	// busFactorCommits is the minimum commit count where single-author
	// concentration becomes a reliability concern.
	busFactorCommits = 10

	// cadenceWindow is the recency window for an active-cadence signal.
	cadenceWindow = 180 * 24 * time.Hour

	// cadenceCommits is the commit count within cadenceWindow that counts
	// as healthy cadence.
	cadenceCommits = 10
)

// RiskStage analyses commit history for continuity risk: abandonment and
// single-maintainer concentration.
type RiskStage struct{}

func (s *RiskStage) Name() domain.StageName { return domain.StageRisk }

func (s *RiskStage) Requires() []domain.StageName {
	return []domain.StageName{domain.StageMetadata}
}

func (s *RiskStage) Run(ctx context.Context, eval *domain.Evaluation, a Adapters) ([]domain.Finding, error) {
	since := time.Now().UTC().Add(-commitLookback)
	commits, err := a.Repo.ListCommits(ctx, driven.CommitRange{Since: since, Limit: commitLimit})
	if err != nil {
		return nil, fmt.Errorf("list commits: %w", err)
	}

	now := time.Now().UTC()
	location := fmt.Sprintf("commits since %s", since.Format("2006-01-02"))
	cite := func(snippet string) []domain.Citation {
		return []domain.Citation{{
			Source:      domain.SourceRepositoryMetadata,
			Location:    location,
			RetrievedAt: now,
			Snippet:     snippet,
		}}
	}

	authors := make(map[string]int)
	recent := 0
	for _, c := range commits {
		authors[c.Author]++
		if now.Sub(c.Timestamp) <= cadenceWindow {
			recent++
		}
	}

	var findings []domain.Finding
	summary := fmt.Sprintf("%d commit(s) by %d author(s) in the past year", len(commits), len(authors))

	switch {
	case len(commits) == 0:
		findings = append(findings, domain.Finding{
			Category:    domain.CategoryMaintenanceActivity,
			Severity:    domain.SeverityHigh,
			Dimension:   domain.DimensionReliability,
			Description: "no commits in the past year",
			Citations:   cite(summary),
		})
	case recent >= cadenceCommits:
		findings = append(findings, domain.Finding{
			Category:    domain.CategoryMaintenanceActivity,
			Severity:    domain.SeverityInformational,
			Dimension:   domain.DimensionReliability,
			Positive:    true,
			Description: fmt.Sprintf("healthy commit cadence: %d commit(s) in the past six months", recent),
			Citations:   cite(summary),
		})
	default:
		findings = append(findings, domain.Finding{
			Category:    domain.CategoryMaintenanceActivity,
			Severity:    domain.SeverityInformational,
			Dimension:   domain.DimensionReliability,
			Description: summary,
			Citations:   cite(summary),
		})
	}

	if len(authors) == 1 && len(commits) >= busFactorCommits {
		findings = append(findings, domain.Finding{
			Category:    domain.CategoryBusFactor,
			Severity:    domain.SeverityMedium,
			Dimension:   domain.DimensionReliability,
			Description: "all recent commits come from a single author",
			Citations:   cite(summary),
		})
	}

	return findings, nil
}
