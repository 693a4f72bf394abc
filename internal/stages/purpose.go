package stages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/repovet-cli/internal/core/domain"
)

// readmeCandidates are tried in order; the first hit wins.
var readmeCandidates = []string{"README.md", "README", "readme.md", "README.rst"}

// manifestCandidates are the package manifests the stage looks for.
var manifestCandidates = []string{"package.json", "go.mod", "pyproject.toml", "Cargo.toml", "setup.py"}

// purposeSnippetWords bounds the README excerpt recorded as the declared
// purpose.
const purposeSnippetWords = 40

// PurposeStage establishes what the repository claims to do, from its
// README and package manifest. Later stages search the web based on this
// stage's output.
type PurposeStage struct{}

func (s *PurposeStage) Name() domain.StageName       { return domain.StagePurpose }
func (s *PurposeStage) Requires() []domain.StageName { return nil }

func (s *PurposeStage) Run(ctx context.Context, eval *domain.Evaluation, a Adapters) ([]domain.Finding, error) {
	now := time.Now().UTC()
	var findings []domain.Finding

	readmePath, readme, err := firstFile(ctx, a, readmeCandidates)
	if err != nil {
		return nil, fmt.Errorf("read readme: %w", err)
	}

	if readmePath == "" {
		findings = append(findings, domain.Finding{
			Category:    domain.CategoryDocumentation,
			Severity:    domain.SeverityMedium,
			Dimension:   domain.DimensionTransparency,
			Description: "no README found; the repository does not state its purpose",
			Citations: []domain.Citation{{
				Source:      domain.SourceRepositoryFile,
				Location:    "README.md",
				RetrievedAt: now,
				Snippet:     "not found",
			}},
		})
	} else {
		lead := readmeLead(readme)
		findings = append(findings,
			domain.Finding{
				Category:    domain.CategoryDeclaredPurpose,
				Severity:    domain.SeverityInformational,
				Dimension:   domain.DimensionTransparency,
				Description: lead,
				Citations: []domain.Citation{{
					Source:      domain.SourceRepositoryFile,
					Location:    readmePath,
					RetrievedAt: now,
					Snippet:     lead,
				}},
			},
			domain.Finding{
				Category:    domain.CategoryDocumentation,
				Severity:    domain.SeverityInformational,
				Dimension:   domain.DimensionTransparency,
				Positive:    true,
				Description: fmt.Sprintf("%s present (%d bytes)", readmePath, len(readme)),
				Citations: []domain.Citation{{
					Source:      domain.SourceRepositoryFile,
					Location:    readmePath,
					RetrievedAt: now,
					Snippet:     lead,
				}},
			},
		)
	}

	manifestPath, manifest, err := firstFile(ctx, a, manifestCandidates)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	if manifestPath != "" {
		snippet := firstLines(manifest, 10)
		findings = append(findings, domain.Finding{
			Category:    domain.CategoryDeclaredPurpose,
			Severity:    domain.SeverityInformational,
			Dimension:   domain.DimensionTransparency,
			Description: fmt.Sprintf("package manifest %s declares the component's build and dependencies", manifestPath),
			Citations: []domain.Citation{{
				Source:      domain.SourceRepositoryFile,
				Location:    manifestPath,
				RetrievedAt: now,
				Snippet:     snippet,
			}},
		})
	}

	return findings, nil
}

// firstFile fetches the first existing candidate. Missing files are
// tolerated; any other error propagates so the orchestrator can retry.
func firstFile(ctx context.Context, a Adapters, candidates []string) (string, string, error) {
	for _, path := range candidates {
		content, err := a.Repo.GetFile(ctx, path)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return "", "", fmt.Errorf("get %s: %w", path, err)
		}
		return path, content, nil
	}
	return "", "", nil
}

// readmeLead extracts the first prose words of a README, skipping headings
// and badges.
func readmeLead(readme string) string {
	var words []string
	for _, line := range strings.Split(readme, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "[!") || strings.HasPrefix(line, "<") {
			continue
		}
		words = append(words, strings.Fields(line)...)
		if len(words) >= purposeSnippetWords {
			break
		}
	}
	if len(words) > purposeSnippetWords {
		words = words[:purposeSnippetWords]
	}
	if len(words) == 0 {
		return "README contains no prose description"
	}
	return strings.Join(words, " ")
}

func firstLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
