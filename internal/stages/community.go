package stages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/repovet-cli/internal/core/domain"
)

// communityPlatforms are the sources consulted for community feedback.
// Query construction per platform is this handler's concern; the adapter
// only sees the final query string.
var communityPlatforms = []struct {
	label string
	site  string
}{
	{"reddit", "reddit.com"},
	{"hacker-news", "news.ycombinator.com"},
	{"stack-overflow", "stackoverflow.com"},
	{"lobsters", "lobste.rs"},
}

// negativeSignals in a result snippet raise a concern finding.
var negativeSignals = []string{"malware", "malicious", "vulnerability", "backdoor", "scam", "data leak", "compromised"}

// positiveSignals in a result snippet corroborate usability.
var positiveSignals = []string{"recommend", "great", "works well", "solid", "reliable", "easy to use"}

// CommunityStage searches community platforms for mentions of the
// repository. Individual dead sources degrade to soft findings; the stage
// fails only when every platform is unreachable.
type CommunityStage struct{}

func (s *CommunityStage) Name() domain.StageName { return domain.StageCommunity }

func (s *CommunityStage) Requires() []domain.StageName {
	return []domain.StageName{domain.StageMetadata}
}

func (s *CommunityStage) Run(ctx context.Context, eval *domain.Evaluation, a Adapters) ([]domain.Finding, error) {
	if a.Search == nil {
		return nil, domain.Permanent(fmt.Errorf("web search not configured"))
	}

	queries := make([]subQuery, 0, len(communityPlatforms))
	for _, p := range communityPlatforms {
		queries = append(queries, subQuery{
			Label: p.label,
			Query: fmt.Sprintf("site:%s %q", p.site, eval.Repo.String()),
		})
	}

	outcomes := runSearches(ctx, a.Search, queries)
	if failed, err := allFailed(outcomes); failed {
		return nil, domain.Permanent(fmt.Errorf("all community sources failed: %w", err))
	}

	now := time.Now().UTC()
	var findings []domain.Finding
	for _, o := range outcomes {
		if o.Err != nil {
			findings = append(findings, unavailableFinding(domain.DimensionUsability, o, now))
			continue
		}
		findings = append(findings, classifyMentions(o, now)...)
	}
	return findings, nil
}

// classifyMentions turns one platform's results into sentiment findings.
func classifyMentions(o subQueryOutcome, now time.Time) []domain.Finding {
	var findings []domain.Finding
	positive := 0
	for _, r := range o.Results {
		lower := strings.ToLower(r.Snippet)
		citation := domain.Citation{
			Source:      domain.SourceWebSearchResult,
			Location:    r.URL,
			RetrievedAt: r.RetrievedAt,
			Snippet:     truncate(r.Snippet, 200),
		}

		if signal := firstSignal(lower, negativeSignals); signal != "" {
			findings = append(findings, domain.Finding{
				Category:    domain.CategoryCommunitySentiment,
				Severity:    domain.SeverityMedium,
				Dimension:   domain.DimensionSecurity,
				Description: fmt.Sprintf("%s discussion mentions %q", o.Label, signal),
				Citations:   []domain.Citation{citation},
			})
			continue
		}
		if firstSignal(lower, positiveSignals) != "" {
			positive++
			if positive == 1 {
				findings = append(findings, domain.Finding{
					Category:    domain.CategoryCommunitySentiment,
					Severity:    domain.SeverityInformational,
					Dimension:   domain.DimensionUsability,
					Positive:    true,
					Description: fmt.Sprintf("positive mentions on %s", o.Label),
					Citations:   []domain.Citation{citation},
				})
			}
		}
	}

	if len(findings) == 0 && len(o.Results) > 0 {
		r := o.Results[0]
		findings = append(findings, domain.Finding{
			Category:    domain.CategoryCommunitySentiment,
			Severity:    domain.SeverityInformational,
			Dimension:   domain.DimensionUsability,
			Description: fmt.Sprintf("%d neutral mention(s) on %s", len(o.Results), o.Label),
			Citations: []domain.Citation{{
				Source:      domain.SourceWebSearchResult,
				Location:    r.URL,
				RetrievedAt: r.RetrievedAt,
				Snippet:     truncate(r.Snippet, 200),
			}},
		})
	}
	return findings
}

func firstSignal(snippet string, signals []string) string {
	for _, s := range signals {
		if strings.Contains(snippet, s) {
			return s
		}
	}
	return ""
}
