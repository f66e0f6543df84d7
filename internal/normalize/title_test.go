package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTitlePart(t *testing.T) {
	assert.Equal(t, "nonSort", ClassifyTitlePart("mods_titleInfo_nonSort"))
	assert.Equal(t, "subTitle", ClassifyTitlePart("mods_titleInfo_subTitle"))
	assert.Equal(t, "partNumber", ClassifyTitlePart("mods_titleInfo_partNumber"))
	assert.Equal(t, "partName", ClassifyTitlePart("mods_titleInfo_partName"))
	assert.Equal(t, "title", ClassifyTitlePart("mods_titleInfo_title"))
}

func TestTitleParts_Assemble(t *testing.T) {
	var p TitleParts
	p.Set("nonSort", "The")
	p.Set("title", "Pittsburgh Gazette")
	p.Set("subTitle", "a morning paper")
	p.Set("partNumber", "vol. 3")
	p.Set("partName", "City Edition")

	assert.Equal(t, "The Pittsburgh Gazette: a morning paper, vol. 3, City Edition", p.Assemble())
}

func TestTitleParts_AssembleTitleOnly(t *testing.T) {
	var p TitleParts
	p.Set("title", "Annual Report")
	assert.Equal(t, "Annual Report", p.Assemble())
}

func TestTitleParts_Empty(t *testing.T) {
	var p TitleParts
	assert.True(t, p.Empty())
	p.Set("title", "x")
	assert.False(t, p.Empty())
}
