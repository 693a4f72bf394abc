package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/repovet-cli/internal/core/domain"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)

	goodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	badStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

	dimStyle = lipgloss.NewStyle().Faint(true)
)

// renderScorecard formats the scorecard as a styled terminal table.
func renderScorecard(card domain.Scorecard) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-13s %5s", "DIMENSION", "SCORE")))
	b.WriteString("\n")
	for _, s := range card.Scores {
		b.WriteString(fmt.Sprintf("%-13s %s  %s\n",
			s.Dimension,
			scoreStyle(s.Value).Render(fmt.Sprintf("%5d", s.Value)),
			dimStyle.Render(s.Justification)))
	}
	b.WriteString(fmt.Sprintf("%-13s %s\n",
		"overall",
		scoreStyle(card.Overall).Render(fmt.Sprintf("%5d", card.Overall))))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Verdict: ") + verdictStyle(card.Verdict).Render(string(card.Verdict)))
	return b.String()
}

func scoreStyle(value int) lipgloss.Style {
	switch {
	case value < 50:
		return badStyle
	case value < 70:
		return warnStyle
	default:
		return goodStyle
	}
}

func verdictStyle(v domain.Verdict) lipgloss.Style {
	switch v {
	case domain.VerdictDoNotUse:
		return badStyle
	case domain.VerdictUseWithCaution:
		return warnStyle
	default:
		return goodStyle
	}
}
