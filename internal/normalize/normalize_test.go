package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uls-digital/migrate-cli/internal/schema"
)

func testSchema() *schema.Store {
	return &schema.Store{
		Resolver: schema.NewResolver(),
		Fields: map[string]schema.Field{
			"language": {Name: "language", Type: schema.TypeString, Repeatable: true, Vocabulary: "language"},
			"title":    {Name: "title", Type: schema.TypeText},
		},
		Vocabularies: map[string]*schema.Vocabulary{
			"language": schema.NewVocabulary("language", []schema.Term{
				{Label: "English", Code: "eng", Authority: "iso639-2b"},
				{Label: "German", Code: "ger", Authority: "iso639-2b"},
			}),
		},
		Profile: &schema.Profile{},
	}
}

func TestNormalize_CodeTranslatedToLabel(t *testing.T) {
	n := New(testSchema())

	res := n.Normalize("language", "eng", Context{SourceFile: "in.csv", ObjectID: "obj1"})
	assert.Equal(t, "English", res.Value)
	require.Len(t, res.Transformations, 1)
	assert.Equal(t, "eng", res.Transformations[0].OldValue)
	assert.Equal(t, "English", res.Transformations[0].NewValue)
}

func TestNormalize_LabelPassesThrough(t *testing.T) {
	n := New(testSchema())

	res := n.Normalize("language", "German", Context{})
	assert.Equal(t, "German", res.Value)
	assert.Empty(t, res.Transformations)
}

func TestNormalize_VocabularyMissIsNotFatal(t *testing.T) {
	n := New(testSchema())

	res := n.Normalize("language", "Klingon", Context{SourceFile: "in.csv", ObjectID: "obj1"})
	assert.Equal(t, "Klingon", res.Value)
	assert.Empty(t, res.Issues)
	require.Len(t, res.Transformations, 1)
	assert.Contains(t, res.Transformations[0].Note, "not in language vocabulary")
}

func TestNormalize_CollapsesWhitespace(t *testing.T) {
	n := New(testSchema())

	res := n.Normalize("title", "  The  \n Gazette ", Context{})
	assert.Equal(t, "The Gazette", res.Value)
}

func TestNormalize_PlainPrefix(t *testing.T) {
	n := New(testSchema())

	res := n.Normalize("subject_geographic", "Pittsburgh", Context{
		Mapping: schema.Mapping{Prefix: "geographic"},
	})
	assert.Equal(t, "geographic:Pittsburgh", res.Value)
}

func TestNormalize_RelatorConstruction(t *testing.T) {
	n := New(testSchema())

	res := n.Normalize("linked_agent", "Smith, John", Context{
		Mapping: schema.Mapping{Prefix: "relators:pht", Role: "personal"},
	})
	assert.Equal(t, "relators:pht:person:Smith, John", res.Value)
}

func remediatedSchema() *schema.Store {
	s := testSchema()
	s.Remediations = schema.NewRemediationTable([]schema.Remediation{
		{Name: "smith, j.", Action: schema.ActionReplace, Replacement: "Smith, John"},
		{Name: "unknown", Action: schema.ActionRemove},
		{Name: "Gazette Building", Action: schema.ActionDivert, TargetField: "subject_geographic"},
	})
	return s
}

func TestNormalize_RemediationReplace(t *testing.T) {
	n := New(remediatedSchema())

	res := n.Normalize("linked_agent", "Smith, J.", Context{
		Mapping: schema.Mapping{Prefix: "relators:pht", Role: "personal"},
	})
	assert.Equal(t, "relators:pht:person:Smith, John", res.Value)
	require.Len(t, res.Transformations, 1)
	assert.Equal(t, "Smith, J.", res.Transformations[0].OldValue)
}

func TestNormalize_RemediationRemove(t *testing.T) {
	n := New(remediatedSchema())

	res := n.Normalize("linked_agent", "unknown", Context{
		Mapping: schema.Mapping{Prefix: "relators:pht", Role: "personal"},
	})
	assert.Empty(t, res.Value)
	require.Len(t, res.Transformations, 1)
	assert.Contains(t, res.Transformations[0].Note, "removed")
}

func TestNormalize_RemediationDivert(t *testing.T) {
	n := New(remediatedSchema())

	res := n.Normalize("linked_agent", "Gazette Building", Context{
		Mapping: schema.Mapping{Prefix: "relators:pht", Role: "personal"},
	})
	assert.Equal(t, "Gazette Building", res.Value)
	assert.Equal(t, "subject_geographic", res.TargetField)
}

func TestNormalize_RemediationOnlyAppliesToAgents(t *testing.T) {
	n := New(remediatedSchema())

	// No role on the mapping: the value is not an agent name.
	res := n.Normalize("title", "unknown", Context{Mapping: schema.Mapping{}})
	assert.Equal(t, "unknown", res.Value)
	assert.Empty(t, res.Transformations)
}

func TestAgentType(t *testing.T) {
	assert.Equal(t, AgentCorporate, AgentType("corporate"))
	assert.Equal(t, AgentCorporate, AgentType("Corporate_Body"))
	assert.Equal(t, AgentConference, AgentType("conference"))
	assert.Equal(t, AgentPerson, AgentType("personal"))
	assert.Equal(t, AgentPerson, AgentType(""))
}

func TestRelator(t *testing.T) {
	assert.Equal(t, "relators:edt:person:Doe, Jane", Relator("relators:edt", "personal", "Doe, Jane"))
	assert.Equal(t, "relators:pht:corporate_body:Acme Studio", Relator("relators:pht", "corporate", "Acme Studio"))
	assert.Equal(t, "person:Doe, Jane", Relator("", "", "Doe, Jane"))
}
