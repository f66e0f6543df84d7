package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProfileYAML = `
required_fields:
  default: [id, title]
  Page: [id]
inherited_fields: [domain_access]
strict_vocabularies: [copyright_status]
title_fields: [title, full_title]
date_fields: [date_issued]
hold_collections: [serials.csv]
ignore_collections: [scratch.csv]
namespace_prefixes: ["info:fedora/"]
root_objects: [islandora:root]
`

func loadTestProfile(t *testing.T) *Profile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testProfileYAML), 0o644))
	p, err := LoadProfile(path)
	require.NoError(t, err)
	return p
}

func TestProfile_RequiredForFallsBackToDefault(t *testing.T) {
	p := loadTestProfile(t)

	assert.Equal(t, []string{"id"}, p.RequiredFor("Page"))
	assert.Equal(t, []string{"id", "title"}, p.RequiredFor("Image"))
}

func TestProfile_Lookups(t *testing.T) {
	p := loadTestProfile(t)

	assert.True(t, p.Strict("copyright_status"))
	assert.False(t, p.Strict("subject"))
	assert.True(t, p.Inherited("domain_access"))
	assert.True(t, p.IsTitleField("full_title"))
	assert.False(t, p.IsTitleField("subject"))
	assert.True(t, p.IsDateField("date_issued"))
	assert.True(t, p.IsRootObject("islandora:root"))
	assert.False(t, p.IsRootObject("islandora:other"))
}

func TestLoadProfile_Missing(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
