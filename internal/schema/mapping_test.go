package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_ExactBeforePattern(t *testing.T) {
	r := NewResolver(NewTable("t1", []Mapping{
		{SourceField: "mods_title_*", TargetField: "title"},
		{SourceField: "mods_title_main", TargetField: "full_title"},
	}))

	ms, ok := r.Resolve("mods_title_main")
	require.True(t, ok)
	require.Len(t, ms, 1)
	assert.Equal(t, "full_title", ms[0].TargetField)

	ms, ok = r.Resolve("mods_title_sub")
	require.True(t, ok)
	assert.Equal(t, "title", ms[0].TargetField)
}

func TestResolver_FirstLoadedTableWins(t *testing.T) {
	r := NewResolver(
		NewTable("first", []Mapping{{SourceField: "dc_creator", TargetField: "creator"}}),
		NewTable("second", []Mapping{{SourceField: "dc_creator", TargetField: "contributor"}}),
	)

	ms, ok := r.Resolve("dc_creator")
	require.True(t, ok)
	require.Len(t, ms, 1)
	assert.Equal(t, "creator", ms[0].TargetField)
}

func TestResolver_FanOut(t *testing.T) {
	r := NewResolver(NewTable("t1", []Mapping{
		{SourceField: "mods_titleInfo_title", TargetField: "title"},
		{SourceField: "mods_titleInfo_title", TargetField: "full_title"},
	}))

	ms, ok := r.Resolve("mods_titleInfo_title")
	require.True(t, ok)
	require.Len(t, ms, 2)
	assert.Equal(t, "title", ms[0].TargetField)
	assert.Equal(t, "full_title", ms[1].TargetField)
}

func TestResolver_NotMapped(t *testing.T) {
	r := NewResolver(NewTable("t1", nil))

	_, ok := r.Resolve("unknown_field")
	assert.False(t, ok)
}

func TestMatchPattern(t *testing.T) {
	assert.True(t, matchPattern("mods_*_date", "mods_origin_date"))
	assert.True(t, matchPattern("mods_*", "mods_anything"))
	assert.False(t, matchPattern("mods_*_date", "mods_date"))
	assert.False(t, matchPattern("exact", "other"))
	assert.True(t, matchPattern("exact", "exact"))
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.csv")
	data := "source_field,target_field,prefix,required,role,note\n" +
		"dc_title,title,,true,,\n" +
		"mods_photographer,linked_agent,relators:pht,,person,\n" +
		"rels_*,unused,,,,skip me\n" +
		",no_source,,,,\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	table, err := LoadTable(path)
	require.NoError(t, err)

	r := NewResolver(table)
	ms, ok := r.Resolve("dc_title")
	require.True(t, ok)
	assert.True(t, ms[0].Required)

	ms, ok = r.Resolve("mods_photographer")
	require.True(t, ok)
	assert.Equal(t, "relators:pht", ms[0].Prefix)
	assert.Equal(t, "person", ms[0].Role)

	ms, ok = r.Resolve("rels_ext_isMemberOf")
	require.True(t, ok)
	assert.Equal(t, "unused", ms[0].TargetField)

	_, ok = r.Resolve("no_source")
	assert.False(t, ok)
}
