// Package schema loads the field mappings, field schema, controlled
// vocabularies, and migration profile that drive the pipeline. All lookup
// structures are built once at startup and are read-only afterwards.
package schema

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/uls-digital/migrate-cli/internal/tabular"
)

// Mapping maps one source field to one target field. A source field mapped
// by several rows fans out to several targets; several source fields mapped
// to one repeatable target fan in.
type Mapping struct {
	SourceField string
	TargetField string
	Prefix      string
	Required    bool
	Role        string
	Note        string
}

// Table is one loaded mapping table. Rows whose source field contains a '*'
// wildcard are pattern rows; the rest are exact rows.
type Table struct {
	Name     string
	exact    map[string][]Mapping
	patterns []Mapping
}

// NewTable builds a mapping table from rows, separating exact rows from
// pattern rows. Rows without a source or target field are dropped.
func NewTable(name string, mappings []Mapping) *Table {
	t := &Table{Name: name, exact: make(map[string][]Mapping)}
	for _, m := range mappings {
		if m.SourceField == "" || m.TargetField == "" {
			continue
		}
		if strings.Contains(m.SourceField, "*") {
			t.patterns = append(t.patterns, m)
		} else {
			t.exact[m.SourceField] = append(t.exact[m.SourceField], m)
		}
	}
	return t
}

// LoadTable reads a mapping table from a CSV or XLSX file. Expected columns:
// source_field, target_field, prefix, required, role, note.
func LoadTable(path string) (*Table, error) {
	rows, err := tabular.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "schema: load mapping table %s", path)
	}

	var mappings []Mapping
	for _, row := range rows.Data {
		mappings = append(mappings, Mapping{
			SourceField: rows.Get(row, "source_field"),
			TargetField: rows.Get(row, "target_field"),
			Prefix:      rows.Get(row, "prefix"),
			Required:    parseBool(rows.Get(row, "required")),
			Role:        rows.Get(row, "role"),
			Note:        rows.Get(row, "note"),
		})
	}
	return NewTable(path, mappings), nil
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		return true
	}
	return false
}

// matchPattern reports whether a source field matches a pattern with a
// single '*' wildcard.
func matchPattern(pattern, field string) bool {
	i := strings.IndexByte(pattern, '*')
	if i < 0 {
		return pattern == field
	}
	prefix, suffix := pattern[:i], pattern[i+1:]
	return len(field) >= len(prefix)+len(suffix) &&
		strings.HasPrefix(field, prefix) &&
		strings.HasSuffix(field, suffix)
}

// Resolver answers source-field lookups over an ordered set of mapping
// tables. Exact rows win over pattern rows; among tables, the first-loaded
// table wins on tie. Resolution is a pure function over immutable tables.
type Resolver struct {
	tables []*Table
}

// NewResolver builds a resolver over tables in load order.
func NewResolver(tables ...*Table) *Resolver {
	return &Resolver{tables: tables}
}

// Resolve returns every mapping for a source field (fan-out preserved), or
// ok=false when no table maps it.
func (r *Resolver) Resolve(sourceField string) ([]Mapping, bool) {
	for _, t := range r.tables {
		if ms, ok := t.exact[sourceField]; ok {
			return ms, true
		}
	}
	for _, t := range r.tables {
		var ms []Mapping
		for _, p := range t.patterns {
			if matchPattern(p.SourceField, sourceField) {
				ms = append(ms, p)
			}
		}
		if len(ms) > 0 {
			return ms, true
		}
	}
	return nil, false
}
