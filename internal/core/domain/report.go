package domain

import "time"

// Report section titles, in the fixed rendering order.
const (
	SectionOverview             = "Overview"
	SectionRepositoryAssessment = "Repository Assessment"
	SectionPurpose              = "Purpose"
	SectionExpectedFunction     = "Expected Functionality"
	SectionAlternatives         = "Alternatives"
	SectionCodeAnalysis         = "Code Analysis"
	SectionCommunityFeedback    = "Community Feedback"
	SectionRiskAssessment       = "Risk Assessment"
	SectionUsability            = "Usability"
	SectionScoringTable         = "Scoring Table"
	SectionLimitations          = "Evaluation Limitations"
	SectionVerdict              = "Verdict"
	SectionRecommendations      = "Recommendations"
)

// MaxRecommendations bounds the recommendation list in a report.
const MaxRecommendations = 5

// ReportSection is one titled block of a rendered report.
type ReportSection struct {
	// Title is the section heading.
	Title string

	// Body is the section text. Markdown-ish plain text; the CLI applies
	// terminal styling separately.
	Body string
}

// Report is the rendered output for a finalized evaluation.
type Report struct {
	// EvaluationID references the finalized evaluation.
	EvaluationID string

	// Repo is the evaluated repository.
	Repo RepoRef

	// GeneratedAt is the report generation timestamp. Every citation in the
	// evaluation was retrieved at or before this time.
	GeneratedAt time.Time

	// Sections holds the report body in the fixed section order.
	Sections []ReportSection

	// Scorecard holds the five dimension scores and the overall.
	Scorecard Scorecard

	// Recommendations is the bounded action list, at most MaxRecommendations.
	Recommendations []string
}
