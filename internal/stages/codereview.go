package stages

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/repovet-cli/internal/core/domain"
)

// maxSweepFiles bounds how many source files the review sweeps. The sweep
// prefers shallow paths, where entry points and configuration live.
const maxSweepFiles = 25

// codePattern is one static signature the sweep looks for.
type codePattern struct {
	re          *regexp.Regexp
	category    string
	severity    domain.Severity
	dimension   domain.Dimension
	description string
}

var codePatterns = []codePattern{
	{
		re:          regexp.MustCompile(`(?i)(api[_-]?key|secret|passwd|password|auth[_-]?token)\s*[:=]\s*["'][A-Za-z0-9_\-/+]{8,}["']`),
		category:    domain.CategoryCredentialHandling,
		severity:    domain.SeverityCritical,
		dimension:   domain.DimensionSecurity,
		description: "hardcoded credential",
	},
	{
		re:          regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
		category:    domain.CategoryCredentialHandling,
		severity:    domain.SeverityCritical,
		dimension:   domain.DimensionSecurity,
		description: "AWS access key ID embedded in source",
	},
	{
		re:          regexp.MustCompile(`\beval\s*\(|\bnew Function\s*\(|\bexec\s*\(\s*["']|subprocess\.(Popen|call|run)\([^)]*shell\s*=\s*True`),
		category:    domain.CategoryDynamicExecution,
		severity:    domain.SeverityCritical,
		dimension:   domain.DimensionSecurity,
		description: "unsandboxed dynamic code execution",
	},
	{
		re:          regexp.MustCompile(`child_process|os\.system\(`),
		category:    domain.CategoryDynamicExecution,
		severity:    domain.SeverityHigh,
		dimension:   domain.DimensionSecurity,
		description: "shell command execution",
	},
	{
		re:          regexp.MustCompile(`(?i)(telemetry|analytics\.track|segment\.com|mixpanel|google-analytics)`),
		category:    domain.CategoryDataCollection,
		severity:    domain.SeverityMedium,
		dimension:   domain.DimensionPrivacy,
		description: "telemetry or analytics data collection",
	},
}

// installHookRe matches npm lifecycle hooks that run arbitrary code at
// install time.
var installHookRe = regexp.MustCompile(`"(pre|post)install"\s*:`)

// sweepExtensions are the source file types included in the sweep.
var sweepExtensions = map[string]bool{
	".js": true, ".mjs": true, ".cjs": true, ".ts": true, ".tsx": true,
	".py": true, ".go": true, ".rb": true, ".sh": true, ".php": true,
}

// skipPrefixes are vendored or generated trees excluded from the sweep.
var skipPrefixes = []string{"node_modules/", "vendor/", "dist/", "build/", ".git/"}

// testPathRe recognises test files and directories.
var testPathRe = regexp.MustCompile(`(^|/)(tests?|spec|__tests__)(/|$)|_test\.go$|\.test\.[jt]s$|test_.*\.py$`)

// CodeReviewStage sweeps the repository source for security and privacy
// signatures: hardcoded credentials, dynamic execution, install-time hooks,
// and data collection.
type CodeReviewStage struct{}

func (s *CodeReviewStage) Name() domain.StageName       { return domain.StageCodeReview }
func (s *CodeReviewStage) Requires() []domain.StageName { return nil }

func (s *CodeReviewStage) Run(ctx context.Context, eval *domain.Evaluation, a Adapters) ([]domain.Finding, error) {
	paths, err := a.Repo.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	now := time.Now().UTC()
	var findings []domain.Finding
	seen := make(map[string]bool) // category+path dedupe

	// Install hooks live in the manifest, not the sweep set.
	if manifest, err := a.Repo.GetFile(ctx, "package.json"); err == nil {
		if loc := installHookRe.FindString(manifest); loc != "" {
			findings = append(findings, domain.Finding{
				Category:    domain.CategoryInstallHook,
				Severity:    domain.SeverityHigh,
				Dimension:   domain.DimensionSecurity,
				Description: "package manifest declares an install-time script hook",
				Citations: []domain.Citation{{
					Source:      domain.SourceRepositoryFile,
					Location:    "package.json",
					RetrievedAt: now,
					Snippet:     strings.TrimSpace(loc),
				}},
			})
		}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get package.json: %w", err)
	}

	hasTests := false
	swept := 0
	for _, path := range paths {
		if testPathRe.MatchString(path) {
			hasTests = true
		}
		if swept >= maxSweepFiles || !sweepable(path) {
			continue
		}
		swept++

		content, err := a.Repo.GetFile(ctx, path)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", path, err)
		}

		for _, p := range codePatterns {
			match := p.re.FindString(content)
			if match == "" || seen[p.category+path] {
				continue
			}
			seen[p.category+path] = true
			findings = append(findings, domain.Finding{
				Category:    p.category,
				Severity:    p.severity,
				Dimension:   p.dimension,
				Description: fmt.Sprintf("%s in %s", p.description, path),
				Citations: []domain.Citation{{
					Source:      domain.SourceRepositoryFile,
					Location:    path,
					RetrievedAt: now,
					Snippet:     truncate(strings.TrimSpace(match), 120),
				}},
			})
		}
	}

	if hasTests {
		findings = append(findings, domain.Finding{
			Category:    domain.CategoryTestCoverage,
			Severity:    domain.SeverityInformational,
			Dimension:   domain.DimensionReliability,
			Positive:    true,
			Description: "repository contains a test suite",
			Citations: []domain.Citation{{
				Source:      domain.SourceRepositoryFile,
				Location:    firstTestPath(paths),
				RetrievedAt: now,
				Snippet:     "test files present",
			}},
		})
	}

	return findings, nil
}

func sweepable(path string) bool {
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	dot := strings.LastIndex(path, ".")
	if dot < 0 {
		return false
	}
	return sweepExtensions[path[dot:]]
}

func firstTestPath(paths []string) string {
	for _, p := range paths {
		if testPathRe.MatchString(p) {
			return p
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
