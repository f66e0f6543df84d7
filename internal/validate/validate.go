// Package validate applies schema checks to assembled records: required
// fields, vocabulary membership, date and coordinate conformance, value
// type compliance, and parent-to-child field inheritance. Checks emit
// structured exception records instead of failing; every check runs even
// when an earlier one has already found a violation, so a record reports
// all of its defects in a single pass.
package validate

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/uls-digital/migrate-cli/internal/model"
	"github.com/uls-digital/migrate-cli/internal/normalize"
	"github.com/uls-digital/migrate-cli/internal/schema"
)

// maxPlainTextLen is the destination schema's cap on plain-text values.
const maxPlainTextLen = 255

// ParentLookup resolves a parent record within the current batch or the
// persisted inventory.
type ParentLookup interface {
	Parent(id string) (*model.Record, bool)
}

// ParentLookupFunc adapts a function to the ParentLookup interface.
type ParentLookupFunc func(id string) (*model.Record, bool)

// Parent calls f.
func (f ParentLookupFunc) Parent(id string) (*model.Record, bool) { return f(id) }

// Validator checks records against the loaded schema.
type Validator struct {
	Schema *schema.Store
}

// New returns a Validator over the given schema store.
func New(s *schema.Store) *Validator {
	return &Validator{Schema: s}
}

// Validate runs inheritance propagation followed by every schema check and
// returns all exceptions found. The record is mutated only by inheritance
// (absent inherited fields filled from the resolved parent); violations
// never mutate it.
func (v *Validator) Validate(rec *model.Record, sourceFile string, parents ParentLookup) []model.ExceptionRecord {
	var excs []model.ExceptionRecord

	// Propagate first so the presence checks see inherited values.
	excs = append(excs, v.propagateInheritance(rec, sourceFile, parents)...)

	excs = append(excs, v.checkRequired(rec, sourceFile)...)
	excs = append(excs, v.checkVocabularies(rec, sourceFile)...)
	excs = append(excs, v.checkDates(rec, sourceFile)...)
	excs = append(excs, v.checkCoordinates(rec, sourceFile)...)
	excs = append(excs, v.checkTypes(rec, sourceFile)...)

	return excs
}

// Outcome classifies a validated record from its exceptions.
func Outcome(excs []model.ExceptionRecord) (fatal, warned bool) {
	for _, e := range excs {
		if e.Fatal() {
			fatal = true
		} else {
			warned = true
		}
	}
	return fatal, warned
}

func (v *Validator) checkRequired(rec *model.Record, sourceFile string) []model.ExceptionRecord {
	var excs []model.ExceptionRecord
	for _, field := range v.Schema.Profile.RequiredFor(rec.Model()) {
		if rec.Has(field) {
			continue
		}
		// A page without its own title is labeled by its identifier
		// rather than excluded.
		if field == "title" && rec.Model() == model.ModelPage && rec.ID() != "" {
			rec.Add("title", rec.ID())
			continue
		}
		excs = append(excs, model.ExceptionRecord{
			SourceFile: sourceFile,
			ObjectID:   rec.ID(),
			Field:      field,
			Rule:       model.RuleRequiredField,
			Severity:   model.SeverityFatal,
			Message:    fmt.Sprintf("record missing required %s", field),
		})
	}
	return excs
}

func (v *Validator) checkVocabularies(rec *model.Record, sourceFile string) []model.ExceptionRecord {
	var excs []model.ExceptionRecord
	for _, field := range rec.Fields() {
		vocab := v.Schema.VocabularyFor(field)
		if vocab == nil {
			continue
		}
		severity := model.SeverityAdvisory
		if v.Schema.Profile.Strict(field) {
			severity = model.SeverityFatal
		}
		for _, value := range rec.Values(field) {
			// Prefixed compound values (relators) carry vetted terms.
			if strings.Contains(value, ":") {
				continue
			}
			if vocab.Contains(value) {
				continue
			}
			excs = append(excs, model.ExceptionRecord{
				SourceFile: sourceFile,
				ObjectID:   rec.ID(),
				Field:      field,
				Value:      value,
				Rule:       model.RuleVocabularyMembership,
				Severity:   severity,
				Message:    fmt.Sprintf("term not found in %s vocabulary", vocab.Name),
			})
		}
	}
	return excs
}

func (v *Validator) checkDates(rec *model.Record, sourceFile string) []model.ExceptionRecord {
	var excs []model.ExceptionRecord
	for _, field := range rec.Fields() {
		if !v.isDateField(field) {
			continue
		}
		for _, value := range rec.Values(field) {
			if normalize.ValidEDTF(value) {
				continue
			}
			excs = append(excs, model.ExceptionRecord{
				SourceFile: sourceFile,
				ObjectID:   rec.ID(),
				Field:      field,
				Value:      value,
				Rule:       model.RuleDateFormat,
				Severity:   model.SeverityFatal,
				Message:    "value is not a valid EDTF expression",
			})
		}
	}
	return excs
}

func (v *Validator) isDateField(field string) bool {
	if v.Schema.Profile.IsDateField(field) {
		return true
	}
	f, ok := v.Schema.Fields[field]
	return ok && f.Type == schema.TypeEDTF
}

func (v *Validator) checkCoordinates(rec *model.Record, sourceFile string) []model.ExceptionRecord {
	var excs []model.ExceptionRecord
	for _, field := range rec.Fields() {
		f, ok := v.Schema.Fields[field]
		if !ok || f.Type != schema.TypeCoordinates {
			continue
		}
		for _, value := range rec.Values(field) {
			if _, err := ParseCoordinates(value); err != nil {
				excs = append(excs, model.ExceptionRecord{
					SourceFile: sourceFile,
					ObjectID:   rec.ID(),
					Field:      field,
					Value:      value,
					Rule:       model.RuleCoordinateFormat,
					Severity:   model.SeverityAdvisory,
					Message:    err.Error(),
				})
			}
		}
	}
	return excs
}

func (v *Validator) checkTypes(rec *model.Record, sourceFile string) []model.ExceptionRecord {
	var excs []model.ExceptionRecord
	for _, field := range rec.Fields() {
		f, ok := v.Schema.Fields[field]
		if !ok {
			continue
		}
		values := rec.Values(field)

		if !f.Repeatable && len(values) > 1 {
			excs = append(excs, model.ExceptionRecord{
				SourceFile: sourceFile,
				ObjectID:   rec.ID(),
				Field:      field,
				Value:      strings.Join(values, "|"),
				Rule:       model.RuleTypeCompliance,
				Severity:   model.SeverityAdvisory,
				Message:    "multiple values in nonrepeatable field",
			})
		}

		for _, value := range values {
			switch f.Type {
			case schema.TypeText:
				if utf8.RuneCountInString(value) > maxPlainTextLen {
					excs = append(excs, model.ExceptionRecord{
						SourceFile: sourceFile,
						ObjectID:   rec.ID(),
						Field:      field,
						Value:      value,
						Rule:       model.RuleTypeCompliance,
						Severity:   model.SeverityAdvisory,
						Message:    fmt.Sprintf("value exceeds %d character limit", maxPlainTextLen),
					})
				}
			case schema.TypeInteger:
				if !f.AllowLetters && containsLetter(value) {
					excs = append(excs, model.ExceptionRecord{
						SourceFile: sourceFile,
						ObjectID:   rec.ID(),
						Field:      field,
						Value:      value,
						Rule:       model.RuleTypeCompliance,
						Severity:   model.SeverityAdvisory,
						Message:    "numeric identifier contains letters",
					})
				}
			}
		}
	}
	return excs
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// propagateInheritance copies each inherited field from the resolved parent
// onto a child record lacking its own value. Explicit child values are never
// overwritten. When the parent cannot be resolved in the batch or the
// inventory, the step is skipped and the record is marked incomplete with an
// advisory unresolved-parent exception; the record is still emitted.
func (v *Validator) propagateInheritance(rec *model.Record, sourceFile string, parents ParentLookup) []model.ExceptionRecord {
	if !model.IsChildModel(rec.Model()) || rec.ParentID() == "" {
		return nil
	}

	missing := false
	for _, field := range v.Schema.Profile.InheritedFields {
		if rec.Has(field) {
			continue
		}
		missing = true
		break
	}
	if !missing {
		return nil
	}

	parent, ok := v.resolveParent(rec.ParentID(), parents)
	if !ok {
		rec.Incomplete = true
		return []model.ExceptionRecord{{
			SourceFile: sourceFile,
			ObjectID:   rec.ID(),
			Field:      "parent_id",
			Value:      rec.ParentID(),
			Rule:       model.RuleUnresolvedParent,
			Severity:   model.SeverityAdvisory,
			Message:    "parent not found in batch or inventory; inherited fields skipped",
		}}
	}

	for _, field := range v.Schema.Profile.InheritedFields {
		if rec.Has(field) || !parent.Has(field) {
			continue
		}
		for _, value := range parent.Values(field) {
			rec.Add(field, value)
		}
	}
	return nil
}

// resolveParent walks ancestors until it finds one carrying values for the
// inherited fields, covering pages whose direct parent is itself a child.
func (v *Validator) resolveParent(id string, parents ParentLookup) (*model.Record, bool) {
	seen := map[string]bool{}
	for id != "" && !seen[id] {
		seen[id] = true
		parent, ok := parents.Parent(id)
		if !ok {
			return nil, false
		}
		for _, field := range v.Schema.Profile.InheritedFields {
			if parent.Has(field) {
				return parent, true
			}
		}
		id = parent.ParentID()
		if id == "" {
			return parent, true
		}
	}
	return nil, false
}
