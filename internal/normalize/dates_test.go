package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uls-digital/migrate-cli/internal/model"
)

func TestBuildEDTF(t *testing.T) {
	tests := []struct {
		name string
		frag DateFragment
		want string
	}{
		{"year only", DateFragment{StartYear: "1918"}, "1918"},
		{"year month", DateFragment{StartYear: "1918", StartMonth: "3"}, "1918-03"},
		{"full date", DateFragment{StartYear: "1918", StartMonth: "3", StartDay: "7"}, "1918-03-07"},
		{"approximate", DateFragment{StartYear: "1918", Approximate: true}, "1918~"},
		{"questionable", DateFragment{StartYear: "1918", Questionable: true}, "1918?"},
		{"both qualifiers", DateFragment{StartYear: "1918", Approximate: true, Questionable: true}, "1918%"},
		{"interval", DateFragment{StartYear: "1914", EndYear: "1918"}, "1914/1918"},
		{"unspecified digits", DateFragment{StartYear: "191X"}, "191X"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildEDTF(tt.frag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildEDTF_MalformedYear(t *testing.T) {
	_, err := BuildEDTF(DateFragment{StartYear: "19", ObjectID: "obj1"})
	assert.Error(t, err)

	_, err = BuildEDTF(DateFragment{StartYear: "abcd", ObjectID: "obj1"})
	assert.Error(t, err)

	_, err = BuildEDTF(DateFragment{StartYear: "1918", EndYear: "19"})
	assert.Error(t, err)
}

func TestValidEDTF(t *testing.T) {
	valid := []string{
		"1918", "1918-03", "1918-03-07", "191X", "19XX", "XXXX",
		"1918-XX", "1918-03-XX", "1918?", "1918~", "1918-03%",
		"1914/1918", "1914/..", "../1918", "1914/",
		"-0044",
	}
	for _, v := range valid {
		assert.True(t, ValidEDTF(v), "expected valid: %q", v)
	}

	invalid := []string{
		"", "19", "1918-13", "1918-00", "1918-03-32", "circa 1918",
		"03-1918", "1918--03", "../..", "/",
	}
	for _, v := range invalid {
		assert.False(t, ValidEDTF(v), "expected invalid: %q", v)
	}
}

func TestNormalizeDates_GroupsByField(t *testing.T) {
	frags := []DateFragment{
		{ObjectID: "obj1", Field: "date_issued", Encoding: "marc", StartYear: "1918"},
		{ObjectID: "obj1", Field: "date_created", Encoding: "marc", StartYear: "1920", StartMonth: "5"},
	}

	res := NormalizeDates("input.csv", frags)
	assert.Empty(t, res.Issues)
	assert.Equal(t, []string{"1918"}, res.Values["date_issued"])
	assert.Equal(t, []string{"1920-05"}, res.Values["date_created"])
}

func TestNormalizeDates_MalformedFragmentIsFatal(t *testing.T) {
	frags := []DateFragment{
		{ObjectID: "obj1", Field: "date_issued", StartYear: "19", Raw: "19??"},
	}

	res := NormalizeDates("input.csv", frags)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, model.RuleDateFormat, res.Issues[0].Rule)
	assert.Equal(t, model.SeverityFatal, res.Issues[0].Severity)
	assert.Empty(t, res.Values["date_issued"])
}

func TestNormalizeDates_CompetingEncodingsSurfaced(t *testing.T) {
	frags := []DateFragment{
		{ObjectID: "obj1", Field: "date_issued", Encoding: "marc", StartYear: "1918"},
		{ObjectID: "obj1", Field: "date_issued", Encoding: "iso8601", StartYear: "1919"},
	}

	res := NormalizeDates("input.csv", frags)

	// Both values kept; one advisory warning, no guessed precedence.
	assert.Equal(t, []string{"1918", "1919"}, res.Values["date_issued"])
	require.Len(t, res.Issues, 1)
	assert.Equal(t, model.RuleCompetingDates, res.Issues[0].Rule)
	assert.Equal(t, model.SeverityAdvisory, res.Issues[0].Severity)
}

func TestNormalizeDates_SameEncodingNoWarning(t *testing.T) {
	frags := []DateFragment{
		{ObjectID: "obj1", Field: "date_issued", Encoding: "marc", StartYear: "1918"},
		{ObjectID: "obj1", Field: "date_issued", Encoding: "marc", StartYear: "1918"},
	}

	res := NormalizeDates("input.csv", frags)
	assert.Equal(t, []string{"1918"}, res.Values["date_issued"])
	assert.Empty(t, res.Issues)
}
