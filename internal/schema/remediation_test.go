package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemediationTable_Lookup(t *testing.T) {
	table := NewRemediationTable([]Remediation{
		{Name: "Smith, J.", Action: ActionReplace, Replacement: "Smith, John"},
		{Name: "unknown", Action: ActionRemove},
	})

	r, ok := table.Lookup("smith, j.")
	require.True(t, ok)
	assert.Equal(t, ActionReplace, r.Action)
	assert.Equal(t, "Smith, John", r.Replacement)

	_, ok = table.Lookup("Doe, Jane")
	assert.False(t, ok)
}

func TestRemediationTable_DropsInvalidRows(t *testing.T) {
	table := NewRemediationTable([]Remediation{
		{Name: "", Action: ActionRemove},
		{Name: "Smith", Action: "obliterate"},
	})

	_, ok := table.Lookup("Smith")
	assert.False(t, ok)
}

func TestRemediationTable_NilLookup(t *testing.T) {
	var table *RemediationTable
	_, ok := table.Lookup("anyone")
	assert.False(t, ok)
}

func TestLoadRemediations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "remediations.csv")
	data := "name,action,replacement,target_field\n" +
		"\"Smith, J.\",replace,\"Smith, John\",\n" +
		"Gazette Building,divert,,subject_geographic\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	table, err := LoadRemediations(path)
	require.NoError(t, err)

	r, ok := table.Lookup("Smith, J.")
	require.True(t, ok)
	assert.Equal(t, "Smith, John", r.Replacement)

	r, ok = table.Lookup("gazette building")
	require.True(t, ok)
	assert.Equal(t, ActionDivert, r.Action)
	assert.Equal(t, "subject_geographic", r.TargetField)
}
