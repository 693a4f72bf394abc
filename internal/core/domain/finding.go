package domain

import "time"

// Severity ranks how strongly a finding reduces a dimension score.
type Severity string

// Finding severities, most severe first.
const (
	SeverityCritical      Severity = "critical"
	SeverityHigh          Severity = "high"
	SeverityMedium        Severity = "medium"
	SeverityLow           Severity = "low"
	SeverityInformational Severity = "informational"
)

// SourceType identifies where a citation's evidence came from.
type SourceType string

// Citation source types.
const (
	SourceRepositoryFile     SourceType = "repository-file"
	SourceRepositoryMetadata SourceType = "repository-metadata"
	SourceWebSearchResult    SourceType = "web-search-result"
)

// Finding categories. Handlers may introduce further categories; these are
// the ones the built-in stages produce.
const (
	CategoryCredentialHandling   = "credential-handling"
	CategoryDynamicExecution     = "dynamic-execution"
	CategoryInstallHook          = "install-hook"
	CategoryDataCollection       = "data-collection"
	CategoryMaintenanceActivity  = "maintenance-activity"
	CategoryPopularity           = "popularity"
	CategoryIssueBacklog         = "issue-backlog"
	CategoryDocumentation        = "documentation"
	CategoryDeclaredPurpose      = "declared-purpose"
	CategoryAlternatives         = "ecosystem-alternatives"
	CategoryTestCoverage         = "test-coverage"
	CategoryCommunitySentiment   = "community-sentiment"
	CategoryBusFactor            = "bus-factor"
	CategoryLicense              = "license"
	CategoryChangelog            = "changelog"
	CategoryExamples             = "examples"
	CategorySourceUnavailable    = "source-unavailable"
	CategoryEvaluationLimitation = "evaluation-limitation"
)

// Citation is a provenance record backing a Finding.
type Citation struct {
	// Source is where the evidence came from.
	Source SourceType

	// Location is a file path (repository sources) or URL (web sources).
	Location string

	// RetrievedAt is when the evidence was fetched. Must not be later than
	// the report's generation time.
	RetrievedAt time.Time

	// Snippet is a short excerpt of the cited material.
	Snippet string
}

// Finding is a discrete, evidenced observation contributing to a dimension
// score. Every finding carries at least one citation; the evidence store
// rejects findings without one.
type Finding struct {
	// Category classifies the observation, e.g. "credential-handling".
	Category string

	// Severity ranks the observation's impact on its dimension.
	Severity Severity

	// Dimension is the scored axis this finding counts against. Set by the
	// producing stage handler so scoring stays a pure function of stored
	// findings.
	Dimension Dimension

	// Positive marks corroborating evidence (active maintenance, tests
	// present). Only meaningful with SeverityInformational.
	Positive bool

	// Description is the human-readable observation.
	Description string

	// Citations is the non-empty provenance list.
	Citations []Citation
}

// Negative reports whether the finding reduces its dimension's score.
func (f *Finding) Negative() bool {
	return f.Severity != SeverityInformational
}
