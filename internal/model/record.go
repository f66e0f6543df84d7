// Package model defines the core types shared across the migration pipeline:
// metadata records, exception and transformation reports, inventory entries,
// and migration run metadata.
package model

import "strings"

// Object models recognized in the target schema.
const (
	ModelCollection       = "Collection"
	ModelCompoundObject   = "Compound Object"
	ModelPagedContent     = "Paged Content"
	ModelNewspaper        = "Newspaper"
	ModelPublicationIssue = "Publication Issue"
	ModelPage             = "Page"
	ModelDigitalDocument  = "Digital Document"
	ModelImage            = "Image"
	ModelVideo            = "Video"
	ModelAudio            = "Audio"
)

// IsChildModel reports whether an object model can appear as a constituent
// of a parent object and therefore participates in field inheritance.
func IsChildModel(m string) bool {
	switch m {
	case ModelPage, ModelPublicationIssue, ModelCompoundObject:
		return true
	}
	return false
}

// Record is a metadata record keyed by canonical target field name. Every
// field holds an ordered list of values; single-valued fields carry one
// element and are enforced by the validator against the field schema.
type Record struct {
	fields map[string][]string
	order  []string

	// Unmapped holds source fields with no mapping, preserved for audit.
	Unmapped map[string][]string

	// Incomplete marks a record whose parent could not be resolved for
	// inheritance. The record is still emitted.
	Incomplete bool
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{
		fields:   make(map[string][]string),
		Unmapped: make(map[string][]string),
	}
}

// ID returns the object identifier, or "" when absent.
func (r *Record) ID() string { return r.First("id") }

// ParentID returns the first parent reference, or "" when absent.
func (r *Record) ParentID() string { return r.First("parent_id") }

// Model returns the object model, or "" when absent.
func (r *Record) Model() string { return r.First("field_model") }

// First returns the first value of a field, or "" when the field is empty.
func (r *Record) First(field string) string {
	if vs := r.fields[field]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Values returns the values of a field in insertion order.
func (r *Record) Values(field string) []string { return r.fields[field] }

// Has reports whether the field carries at least one value.
func (r *Record) Has(field string) bool { return len(r.fields[field]) > 0 }

// Add appends a value to a field, skipping empty strings and values already
// present under case-insensitive comparison. The casing of the first
// occurrence wins.
func (r *Record) Add(field, value string) {
	if field == "" || value == "" {
		return
	}
	existing, ok := r.fields[field]
	if !ok {
		r.order = append(r.order, field)
	}
	for _, v := range existing {
		if strings.EqualFold(v, value) {
			return
		}
	}
	r.fields[field] = append(existing, value)
}

// Set replaces all values of a field.
func (r *Record) Set(field string, values []string) {
	if _, ok := r.fields[field]; !ok {
		r.order = append(r.order, field)
	}
	r.fields[field] = values
}

// AddUnmapped preserves a value from a source field that has no mapping.
func (r *Record) AddUnmapped(sourceField, value string) {
	if value == "" {
		return
	}
	r.Unmapped[sourceField] = append(r.Unmapped[sourceField], value)
}

// Fields returns the canonical field names in first-seen order.
func (r *Record) Fields() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Flatten returns the record as a flat map with multi-valued fields joined by
// the pipe separator, ready for tabular output. Empty fields are omitted.
func (r *Record) Flatten() map[string]string {
	out := make(map[string]string, len(r.fields))
	for field, values := range r.fields {
		if len(values) > 0 {
			out[field] = strings.Join(values, "|")
		}
	}
	return out
}
