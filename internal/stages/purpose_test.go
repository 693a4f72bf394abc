package stages

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repovet-cli/internal/core/domain"
)

func TestPurposeStage_Name(t *testing.T) {
	s := &PurposeStage{}
	assert.Equal(t, domain.StagePurpose, s.Name())
	assert.Empty(t, s.Requires())
}

func TestPurposeStage_ReadmeAndManifest(t *testing.T) {
	repo := &fakeRepo{files: map[string]string{
		"README.md": "# widget\n\n[![build](badge.svg)](ci)\n\nA command line tool that flattens widgets into portable archives.",
		"go.mod":    "module example.com/widget\n\ngo 1.24\n",
	}}

	findings, err := (&PurposeStage{}).Run(context.Background(), testEval(), Adapters{Repo: repo})
	require.NoError(t, err)

	purpose := findByCategory(findings, domain.CategoryDeclaredPurpose)
	require.NotNil(t, purpose)
	assert.Equal(t, domain.DimensionTransparency, purpose.Dimension)
	// Headings and badges are skipped; the prose lead is the purpose.
	assert.Contains(t, purpose.Description, "flattens widgets")
	assert.NotContains(t, purpose.Description, "badge")
	require.NotEmpty(t, purpose.Citations)
	assert.Equal(t, "README.md", purpose.Citations[0].Location)

	docs := findByCategory(findings, domain.CategoryDocumentation)
	require.NotNil(t, docs)
	assert.True(t, docs.Positive)

	// Both README and manifest yield declared-purpose findings.
	count := 0
	for _, f := range findings {
		if f.Category == domain.CategoryDeclaredPurpose {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestPurposeStage_NoReadme(t *testing.T) {
	repo := &fakeRepo{files: map[string]string{}}

	findings, err := (&PurposeStage{}).Run(context.Background(), testEval(), Adapters{Repo: repo})
	require.NoError(t, err)

	docs := findByCategory(findings, domain.CategoryDocumentation)
	require.NotNil(t, docs)
	assert.Equal(t, domain.SeverityMedium, docs.Severity)
	assert.False(t, docs.Positive)
	assert.Nil(t, findByCategory(findings, domain.CategoryDeclaredPurpose))
}

func TestPurposeStage_ReadmeFallbackNames(t *testing.T) {
	repo := &fakeRepo{files: map[string]string{
		"README": "Plain readme with a description of the widget flattener.",
	}}

	findings, err := (&PurposeStage{}).Run(context.Background(), testEval(), Adapters{Repo: repo})
	require.NoError(t, err)

	purpose := findByCategory(findings, domain.CategoryDeclaredPurpose)
	require.NotNil(t, purpose)
	assert.Equal(t, "README", purpose.Citations[0].Location)
}

func TestPurposeStage_ReaderErrorPropagates(t *testing.T) {
	repo := &fakeRepo{fileErr: domain.Transient(errors.New("rate limited"))}

	_, err := (&PurposeStage{}).Run(context.Background(), testEval(), Adapters{Repo: repo})
	require.Error(t, err)
	assert.True(t, domain.IsTransient(err))
}

func TestReadmeLead(t *testing.T) {
	tests := []struct {
		name     string
		readme   string
		expected string
	}{
		{"prose only", "short description here", "short description here"},
		{"skips headings", "# Title\n\nactual prose", "actual prose"},
		{"skips badges", "[![ci](x)](y)\nprose after badge", "prose after badge"},
		{"skips html", "<p align=center>logo</p>\nreal text", "real text"},
		{"empty", "", "README contains no prose description"},
		{"headings only", "# a\n## b", "README contains no prose description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, readmeLead(tt.readme))
		})
	}
}

func TestReadmeLead_Bounded(t *testing.T) {
	long := ""
	for i := 0; i < 200; i++ {
		long += "word "
	}
	words := len(strings.Fields(readmeLead(long)))
	assert.LessOrEqual(t, words, purposeSnippetWords)
}
