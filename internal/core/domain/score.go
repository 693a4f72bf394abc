package domain

// Dimension is one of the five scored axes.
type Dimension string

// The five scored dimensions.
const (
	DimensionSecurity     Dimension = "security"
	DimensionPrivacy      Dimension = "privacy"
	DimensionReliability  Dimension = "reliability"
	DimensionTransparency Dimension = "transparency"
	DimensionUsability    Dimension = "usability"
)

// Dimensions lists the five axes in scoring-table order.
var Dimensions = []Dimension{
	DimensionSecurity,
	DimensionPrivacy,
	DimensionReliability,
	DimensionTransparency,
	DimensionUsability,
}

// Score is the result for a single dimension.
type Score struct {
	// Dimension is the scored axis.
	Dimension Dimension

	// Value is the dimension score in [0,100].
	Value int

	// Justification explains how the value was reached.
	Justification string

	// FindingRefs describes the findings that contributed, as
	// "stage/category" keys.
	FindingRefs []string
}

// Verdict is the bottom-line recommendation derived from the overall score.
type Verdict string

// Verdicts, worst first. Thresholds: <50, 50-69, 70-84, 85-100.
const (
	VerdictDoNotUse       Verdict = "do not use"
	VerdictUseWithCaution Verdict = "use with caution"
	VerdictAcceptable     Verdict = "acceptable"
	VerdictRecommended    Verdict = "recommended"
)

// VerdictFor maps an overall score to its verdict band.
func VerdictFor(overall int) Verdict {
	switch {
	case overall < 50:
		return VerdictDoNotUse
	case overall < 70:
		return VerdictUseWithCaution
	case overall < 85:
		return VerdictAcceptable
	default:
		return VerdictRecommended
	}
}

// Scorecard holds the five dimension scores plus the weighted overall.
type Scorecard struct {
	// Scores holds one entry per dimension, in Dimensions order.
	Scores []Score

	// Overall is the weighted, rounded overall score in [0,100].
	Overall int

	// Verdict is the band the overall score falls in.
	Verdict Verdict
}

// ByDimension returns the score for a dimension, or nil.
func (c *Scorecard) ByDimension(d Dimension) *Score {
	for i := range c.Scores {
		if c.Scores[i].Dimension == d {
			return &c.Scores[i]
		}
	}
	return nil
}
