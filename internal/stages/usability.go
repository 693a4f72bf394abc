package stages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/repovet-cli/internal/core/domain"
)

var licenseCandidates = []string{"LICENSE", "LICENSE.md", "LICENSE.txt", "COPYING"}

var changelogCandidates = []string{"CHANGELOG.md", "CHANGELOG", "HISTORY.md"}

// UsabilityStage checks the material a consumer needs to adopt the
// repository: license, changelog, examples and docs.
type UsabilityStage struct{}

func (s *UsabilityStage) Name() domain.StageName { return domain.StageUsability }

func (s *UsabilityStage) Requires() []domain.StageName {
	return []domain.StageName{domain.StagePurpose}
}

func (s *UsabilityStage) Run(ctx context.Context, eval *domain.Evaluation, a Adapters) ([]domain.Finding, error) {
	now := time.Now().UTC()
	var findings []domain.Finding

	licensePath, license, err := firstFile(ctx, a, licenseCandidates)
	if err != nil {
		return nil, fmt.Errorf("read license: %w", err)
	}
	if licensePath == "" {
		findings = append(findings, domain.Finding{
			Category:    domain.CategoryLicense,
			Severity:    domain.SeverityMedium,
			Dimension:   domain.DimensionTransparency,
			Description: "no license file; usage terms are undefined",
			Citations: []domain.Citation{{
				Source:      domain.SourceRepositoryFile,
				Location:    "LICENSE",
				RetrievedAt: now,
				Snippet:     "not found",
			}},
		})
	} else {
		findings = append(findings, domain.Finding{
			Category:    domain.CategoryLicense,
			Severity:    domain.SeverityInformational,
			Dimension:   domain.DimensionTransparency,
			Positive:    true,
			Description: licensePath + " present",
			Citations: []domain.Citation{{
				Source:      domain.SourceRepositoryFile,
				Location:    licensePath,
				RetrievedAt: now,
				Snippet:     firstLines(license, 2),
			}},
		})
	}

	changelogPath, changelog, err := firstFile(ctx, a, changelogCandidates)
	if err != nil {
		return nil, fmt.Errorf("read changelog: %w", err)
	}
	if changelogPath != "" {
		findings = append(findings, domain.Finding{
			Category:    domain.CategoryChangelog,
			Severity:    domain.SeverityInformational,
			Dimension:   domain.DimensionUsability,
			Positive:    true,
			Description: changelogPath + " tracks releases",
			Citations: []domain.Citation{{
				Source:      domain.SourceRepositoryFile,
				Location:    changelogPath,
				RetrievedAt: now,
				Snippet:     firstLines(changelog, 3),
			}},
		})
	}

	paths, err := a.Repo.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	for _, dir := range []string{"examples/", "docs/"} {
		if p := firstWithPrefix(paths, dir); p != "" {
			findings = append(findings, domain.Finding{
				Category:    domain.CategoryExamples,
				Severity:    domain.SeverityInformational,
				Dimension:   domain.DimensionUsability,
				Positive:    true,
				Description: strings.TrimSuffix(dir, "/") + " directory present",
				Citations: []domain.Citation{{
					Source:      domain.SourceRepositoryFile,
					Location:    p,
					RetrievedAt: now,
					Snippet:     p,
				}},
			})
		}
	}

	// A README already corroborated transparency in the purpose stage;
	// here it corroborates usability.
	if purpose := eval.StageByName(domain.StagePurpose); purpose != nil {
		for _, f := range purpose.Findings {
			if f.Category == domain.CategoryDocumentation && f.Positive {
				findings = append(findings, domain.Finding{
					Category:    domain.CategoryDocumentation,
					Severity:    domain.SeverityInformational,
					Dimension:   domain.DimensionUsability,
					Positive:    true,
					Description: "usage documentation available in the README",
					Citations:   f.Citations,
				})
				break
			}
		}
	}

	return findings, nil
}

func firstWithPrefix(paths []string, prefix string) string {
	for _, p := range paths {
		if strings.HasPrefix(p, prefix) {
			return p
		}
	}
	return ""
}
