package stages

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/repovet-cli/internal/core/domain"
)

const (
	// activeWindow is how recent the last push must be to count as active
	// maintenance.
	activeWindow = 180 * 24 * time.Hour

	// staleWindow is how old the last push must be to count as abandoned.
	staleWindow = 2 * 365 * 24 * time.Hour

	// popularityThreshold is the star count treated as meaningful adoption.
	popularityThreshold = 100

	// backlogThreshold is the open-issue count flagged as an unmanaged
	// backlog on an inactive repository.
	backlogThreshold = 200
)

// MetadataStage resolves the repository and records the platform's view of
// it. This is the only fatal stage: if the repository cannot be resolved
// the whole evaluation aborts.
type MetadataStage struct{}

func (s *MetadataStage) Name() domain.StageName        { return domain.StageMetadata }
func (s *MetadataStage) Requires() []domain.StageName  { return nil }

func (s *MetadataStage) Run(ctx context.Context, eval *domain.Evaluation, a Adapters) ([]domain.Finding, error) {
	md, err := a.Repo.GetMetadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", eval.Repo, err)
	}

	now := time.Now().UTC()
	cite := func(snippet string) []domain.Citation {
		return []domain.Citation{{
			Source:      domain.SourceRepositoryMetadata,
			Location:    eval.Repo.String(),
			RetrievedAt: now,
			Snippet:     snippet,
		}}
	}

	var findings []domain.Finding

	age := now.Sub(md.LastUpdatedAt)
	switch {
	case age <= activeWindow:
		findings = append(findings, domain.Finding{
			Category:    domain.CategoryMaintenanceActivity,
			Severity:    domain.SeverityInformational,
			Dimension:   domain.DimensionReliability,
			Positive:    true,
			Description: fmt.Sprintf("actively maintained: last push %s", md.LastUpdatedAt.Format("2006-01-02")),
			Citations:   cite(fmt.Sprintf("last push %s", md.LastUpdatedAt.Format(time.RFC3339))),
		})
	case age >= staleWindow:
		findings = append(findings, domain.Finding{
			Category:    domain.CategoryMaintenanceActivity,
			Severity:    domain.SeverityHigh,
			Dimension:   domain.DimensionReliability,
			Description: fmt.Sprintf("no activity since %s; repository appears abandoned", md.LastUpdatedAt.Format("2006-01-02")),
			Citations:   cite(fmt.Sprintf("last push %s", md.LastUpdatedAt.Format(time.RFC3339))),
		})
	default:
		findings = append(findings, domain.Finding{
			Category:    domain.CategoryMaintenanceActivity,
			Severity:    domain.SeverityInformational,
			Dimension:   domain.DimensionReliability,
			Description: fmt.Sprintf("last push %s", md.LastUpdatedAt.Format("2006-01-02")),
			Citations:   cite(fmt.Sprintf("last push %s", md.LastUpdatedAt.Format(time.RFC3339))),
		})
	}

	popularity := domain.Finding{
		Category:    domain.CategoryPopularity,
		Severity:    domain.SeverityInformational,
		Dimension:   domain.DimensionReliability,
		Description: fmt.Sprintf("%d stars, %d forks", md.Stars, md.Forks),
		Citations:   cite(fmt.Sprintf("stars=%d forks=%d", md.Stars, md.Forks)),
	}
	if md.Stars >= popularityThreshold {
		popularity.Positive = true
		popularity.Description += "; meaningful adoption"
	}
	findings = append(findings, popularity)

	if md.OpenIssues >= backlogThreshold && age > activeWindow {
		findings = append(findings, domain.Finding{
			Category:    domain.CategoryIssueBacklog,
			Severity:    domain.SeverityMedium,
			Dimension:   domain.DimensionReliability,
			Description: fmt.Sprintf("%d open issues on an inactive repository", md.OpenIssues),
			Citations:   cite(fmt.Sprintf("open issues=%d", md.OpenIssues)),
		})
	}

	return findings, nil
}
