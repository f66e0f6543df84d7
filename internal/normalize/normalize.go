package normalize

import (
	"fmt"
	"strings"

	"github.com/uls-digital/migrate-cli/internal/model"
	"github.com/uls-digital/migrate-cli/internal/schema"
)

// Normalizer converts raw field values into canonical form using the
// immutable schema store. It never fails a record outright; vocabulary
// misses and similar conditions surface as transformation or advisory
// exception records alongside the value.
type Normalizer struct {
	Schema *schema.Store
}

// New returns a Normalizer over the given schema store.
func New(s *schema.Store) *Normalizer {
	return &Normalizer{Schema: s}
}

// Context identifies where a value came from, for audit records.
type Context struct {
	SourceFile  string
	ObjectID    string
	SourceField string
	Mapping     schema.Mapping
}

// Result is the outcome of normalizing one raw value.
type Result struct {
	Value           string
	Transformations []model.TransformationRecord
	Issues          []model.ExceptionRecord

	// TargetField overrides the mapping's target when a remediation
	// diverted the value. Empty otherwise. An empty Value means the value
	// was removed.
	TargetField string
}

// Normalize converts one raw value for a target field: whitespace cleanup,
// vocabulary-code translation, name remediation, and relator or prefix
// construction.
func (n *Normalizer) Normalize(targetField, raw string, ctx Context) Result {
	value := CollapseWhitespace(raw)
	res := Result{Value: value}
	if value == "" {
		return res
	}

	if vocab := n.Schema.VocabularyFor(targetField); vocab != nil {
		res = n.translate(vocab, targetField, value, ctx)
		value = res.Value
	}

	m := ctx.Mapping
	if m.Role != "" {
		if rem, ok := n.Schema.Remediations.Lookup(value); ok {
			return n.remediate(rem, targetField, value, ctx, res)
		}
	}
	switch {
	case m.Role != "":
		res.Value = Relator(m.Prefix, m.Role, value)
	case m.Prefix != "":
		res.Value = m.Prefix + ":" + value
	}
	return res
}

// remediate applies a curated name correction: replacement continues into
// relator construction under the canonical name, removal clears the value,
// and diversion reroutes the raw value to the remediation's target field
// without agent markup.
func (n *Normalizer) remediate(rem schema.Remediation, targetField, value string, ctx Context, res Result) Result {
	audit := model.TransformationRecord{
		SourceFile: ctx.SourceFile,
		ObjectID:   ctx.ObjectID,
		Field:      targetField,
		OldValue:   value,
	}

	switch rem.Action {
	case schema.ActionReplace:
		res.Value = Relator(ctx.Mapping.Prefix, ctx.Mapping.Role, rem.Replacement)
		audit.NewValue = rem.Replacement
		audit.Note = "replaced name with canonical form"
	case schema.ActionRemove:
		res.Value = ""
		audit.Note = "removed name per remediation table"
	case schema.ActionDivert:
		res.Value = value
		res.TargetField = rem.TargetField
		audit.NewValue = value
		audit.Note = fmt.Sprintf("diverted misfiled name to %s", rem.TargetField)
	}
	res.Transformations = append(res.Transformations, audit)
	return res
}

// translate maps a vocabulary code to its term label. A raw value already
// present as a label passes through; a value that is neither code nor label
// passes through unchanged with a "term not in vocabulary" signal for
// downstream taxonomy-extension tooling. Misses are never fatal here.
func (n *Normalizer) translate(vocab *schema.Vocabulary, targetField, value string, ctx Context) Result {
	res := Result{Value: value}

	if term, ok := vocab.LookupCode(value); ok && term.Label != value {
		res.Value = term.Label
		res.Transformations = append(res.Transformations, model.TransformationRecord{
			SourceFile: ctx.SourceFile,
			ObjectID:   ctx.ObjectID,
			Field:      targetField,
			OldValue:   value,
			NewValue:   term.Label,
			Note:       fmt.Sprintf("translated %s code to term label", vocab.Name),
		})
		return res
	}

	if !vocab.Contains(value) {
		res.Transformations = append(res.Transformations, model.TransformationRecord{
			SourceFile: ctx.SourceFile,
			ObjectID:   ctx.ObjectID,
			Field:      targetField,
			OldValue:   value,
			NewValue:   value,
			Note:       fmt.Sprintf("term not in %s vocabulary", vocab.Name),
		})
	}
	return res
}

// Agent type classes recognized in relator construction.
const (
	AgentPerson     = "person"
	AgentCorporate  = "corporate_body"
	AgentConference = "conference"
)

// AgentType maps a declared source-field role class to an agent type.
// Anything not explicitly corporate or conference is a person.
func AgentType(roleClass string) string {
	switch strings.ToLower(strings.TrimSpace(roleClass)) {
	case "corporate", "corporate_body":
		return AgentCorporate
	case "conference":
		return AgentConference
	}
	return AgentPerson
}

// Relator builds a compound agent value of the form
// prefix:role_code:agent_type:name. The prefix from the mapping table
// already carries the role code (e.g. "relators:pht").
func Relator(prefix, roleClass, name string) string {
	agent := AgentType(roleClass)
	if prefix == "" {
		return agent + ":" + name
	}
	return prefix + ":" + agent + ":" + name
}
