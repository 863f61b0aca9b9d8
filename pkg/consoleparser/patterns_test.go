package consoleparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternsForLocale(t *testing.T) {
	tests := []struct {
		locale string
		want   SummaryPatterns
	}{
		{"", JapanesePatterns},
		{"ja", JapanesePatterns},
		{"ja-JP", JapanesePatterns},
		{"en", EnglishPatterns},
		{"EN-us", EnglishPatterns},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			got, err := PatternsForLocale(tt.locale)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := PatternsForLocale("de")
	assert.ErrorContains(t, err, "unsupported summary locale")
}

func TestCompilePatterns(t *testing.T) {
	p, err := CompilePatterns(`(\d+) avertissement\(s\)`, `(\d+) erreur\(s\)`)
	require.NoError(t, err)
	assert.Equal(t, []string{"3 avertissement(s)", "3"}, p.Warnings.FindStringSubmatch("    3 avertissement(s)"))

	_, err = CompilePatterns(`\d+ warnings`, `(\d+) errors`)
	assert.ErrorContains(t, err, "needs a capture group")

	_, err = CompilePatterns(`(\d+) warnings`, `(\d+ errors`)
	assert.ErrorContains(t, err, "invalid errors pattern")
}
