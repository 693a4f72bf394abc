package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/custodia-labs/repovet-cli/internal/core/domain"
)

// Rubric holds the scoring coefficients. The defaults match the documented
// banding; every value is overridable through configuration since the exact
// coefficients are a policy choice, not canon.
type Rubric struct {
	// CriticalCap caps a dimension containing any critical finding.
	CriticalCap int

	// HighDeduction is subtracted per high finding.
	HighDeduction int

	// HighFloor is the lowest the high-deduction sequence can push a
	// dimension without a critical finding.
	HighFloor int

	// MediumDeduction is subtracted per medium finding.
	MediumDeduction int

	// LowDeduction is subtracted per low finding.
	LowDeduction int

	// CorroboratedDefault is the score for a dimension with no negative
	// findings and at least one positive corroborating finding.
	CorroboratedDefault int

	// InsufficientDefault is the score for a dimension with no evidence
	// either way.
	InsufficientDefault int

	// Weights maps each dimension to its share of the overall score.
	Weights map[domain.Dimension]float64
}

// DefaultRubric returns the standard coefficients.
func DefaultRubric() Rubric {
	return Rubric{
		CriticalCap:         49,
		HighDeduction:       15,
		HighFloor:           50,
		MediumDeduction:     7,
		LowDeduction:        3,
		CorroboratedDefault: 95,
		InsufficientDefault: 70,
		Weights: map[domain.Dimension]float64{
			domain.DimensionSecurity:     0.30,
			domain.DimensionPrivacy:      0.20,
			domain.DimensionReliability:  0.20,
			domain.DimensionTransparency: 0.15,
			domain.DimensionUsability:    0.15,
		},
	}
}

// ScoringEngine derives the five dimension scores and the overall from an
// evaluation's accumulated findings. Scoring is deterministic: identical
// evidence always yields identical scores.
type ScoringEngine struct {
	rubric Rubric
}

// NewScoringEngine creates a scoring engine with the given rubric.
func NewScoringEngine(rubric Rubric) *ScoringEngine {
	return &ScoringEngine{rubric: rubric}
}

// Score computes the scorecard for an evaluation. The evaluation must hold
// at least the stage structure; it does not need to be finalized, which
// lets tests score synthetic evidence directly.
func (e *ScoringEngine) Score(eval *domain.Evaluation) (domain.Scorecard, error) {
	if eval == nil {
		return domain.Scorecard{}, fmt.Errorf("score: %w: nil evaluation", domain.ErrInvalidInput)
	}

	byDimension := make(map[domain.Dimension][]scoredFinding)
	for i := range eval.Stages {
		stage := &eval.Stages[i]
		for j := range stage.Findings {
			f := &stage.Findings[j]
			byDimension[f.Dimension] = append(byDimension[f.Dimension], scoredFinding{
				stage:   stage.Name,
				finding: f,
			})
		}
	}

	card := domain.Scorecard{Scores: make([]domain.Score, 0, len(domain.Dimensions))}
	var weighted float64
	for _, dim := range domain.Dimensions {
		score := e.scoreDimension(dim, byDimension[dim])
		card.Scores = append(card.Scores, score)
		weighted += e.rubric.Weights[dim] * float64(score.Value)
	}

	card.Overall = clampScore(int(math.Round(weighted)))
	card.Verdict = domain.VerdictFor(card.Overall)
	return card, nil
}

type scoredFinding struct {
	stage   domain.StageName
	finding *domain.Finding
}

// scoreDimension applies the rubric to one dimension's findings. Findings
// are sorted into a stable order first so slice ordering can never leak
// into the result.
func (e *ScoringEngine) scoreDimension(dim domain.Dimension, findings []scoredFinding) domain.Score {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.stage != b.stage {
			return a.stage < b.stage
		}
		if a.finding.Category != b.finding.Category {
			return a.finding.Category < b.finding.Category
		}
		return a.finding.Description < b.finding.Description
	})

	var criticals, highs, mediums, lows, positives int
	refs := make([]string, 0, len(findings))
	for _, sf := range findings {
		refs = append(refs, fmt.Sprintf("%s/%s", sf.stage, sf.finding.Category))
		switch sf.finding.Severity {
		case domain.SeverityCritical:
			criticals++
		case domain.SeverityHigh:
			highs++
		case domain.SeverityMedium:
			mediums++
		case domain.SeverityLow:
			lows++
		case domain.SeverityInformational:
			if sf.finding.Positive {
				positives++
			}
		}
	}

	negatives := criticals + highs + mediums + lows
	if negatives == 0 {
		if positives > 0 {
			return domain.Score{
				Dimension:     dim,
				Value:         e.rubric.CorroboratedDefault,
				Justification: fmt.Sprintf("no negative findings; %d corroborating finding(s)", positives),
				FindingRefs:   refs,
			}
		}
		return domain.Score{
			Dimension:     dim,
			Value:         e.rubric.InsufficientDefault,
			Justification: "insufficient evidence",
			FindingRefs:   refs,
		}
	}

	value := 100 - highs*e.rubric.HighDeduction
	if criticals == 0 && highs > 0 && value < e.rubric.HighFloor {
		value = e.rubric.HighFloor
	}
	value -= mediums*e.rubric.MediumDeduction + lows*e.rubric.LowDeduction
	if criticals > 0 && value > e.rubric.CriticalCap {
		value = e.rubric.CriticalCap
	}
	value = clampScore(value)

	var parts []string
	if criticals > 0 {
		parts = append(parts, fmt.Sprintf("%d critical (capped at %d)", criticals, e.rubric.CriticalCap))
	}
	if highs > 0 {
		parts = append(parts, fmt.Sprintf("%d high", highs))
	}
	if mediums > 0 {
		parts = append(parts, fmt.Sprintf("%d medium", mediums))
	}
	if lows > 0 {
		parts = append(parts, fmt.Sprintf("%d low", lows))
	}
	return domain.Score{
		Dimension:     dim,
		Value:         value,
		Justification: "negative findings: " + strings.Join(parts, ", "),
		FindingRefs:   refs,
	}
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
