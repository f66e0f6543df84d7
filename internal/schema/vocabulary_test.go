package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVocabulary() *Vocabulary {
	return NewVocabulary("language", []Term{
		{Label: "English", Code: "eng", Authority: "iso639-2b"},
		{Label: "German", Code: "ger", Authority: "iso639-2b"},
		{Label: "French", Code: "fre", Authority: "iso639-2b"},
	})
}

func TestVocabulary_ContainsCaseFolded(t *testing.T) {
	v := testVocabulary()

	assert.True(t, v.Contains("English"))
	assert.True(t, v.Contains("english"))
	assert.True(t, v.Contains("  ENGLISH  "))
	assert.False(t, v.Contains("Klingon"))
}

func TestVocabulary_CodeLabelRoundTrip(t *testing.T) {
	v := testVocabulary()

	term, ok := v.LookupLabel("German")
	require.True(t, ok)

	byCode, ok := v.LookupCode(term.Code)
	require.True(t, ok)
	assert.Equal(t, term.Authority, byCode.Authority)
	assert.Equal(t, "German", byCode.Label)
}

func TestVocabulary_FirstDuplicateWins(t *testing.T) {
	v := NewVocabulary("status", []Term{
		{Label: "Public Domain", Code: "pd", Authority: "local"},
		{Label: "public domain", Code: "pd2", Authority: "other"},
	})

	term, ok := v.LookupLabel("Public Domain")
	require.True(t, ok)
	assert.Equal(t, "local", term.Authority)
}

func TestLoadVocabularyDir(t *testing.T) {
	dir := t.TempDir()
	data := "label,code,authority\nEnglish,eng,iso639-2b\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "language.csv"), []byte(data), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	vocabs, err := LoadVocabularyDir(dir)
	require.NoError(t, err)
	require.Len(t, vocabs, 1)
	assert.True(t, vocabs["language"].Contains("English"))
}
