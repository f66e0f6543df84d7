package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", CollapseWhitespace("  a\n b \t c  "))
	assert.Equal(t, "", CollapseWhitespace("   \n  "))
}

func TestSplitValues(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a, b, c", []string{"a", "b", "c"}},
		{"one", []string{"one"}},
		{"", nil},
		{", ,", nil},
		{`Smith\, John, Doe\, Jane`, []string{"Smith, John", "Doe, Jane"}},
		{`trailing escape\`, []string{`trailing escape\`}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitValues(tt.in), "input %q", tt.in)
	}
}

func TestDedup(t *testing.T) {
	in := []string{"Pittsburgh", "pittsburgh", "", "Steel", "PITTSBURGH"}
	assert.Equal(t, []string{"Pittsburgh", "Steel"}, Dedup(in))
}
