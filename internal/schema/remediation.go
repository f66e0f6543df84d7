package schema

import (
	"github.com/rotisserie/eris"

	"github.com/uls-digital/migrate-cli/internal/tabular"
)

// Remediation actions applied to agent names before relator construction.
const (
	ActionReplace = "replace"
	ActionRemove  = "remove"
	ActionDivert  = "divert"
)

// Remediation is one curated correction for an agent name: replace it with a
// canonical form, remove it, or divert it to a different target field when
// the source misfiled a non-agent value (a title or place) as a name.
type Remediation struct {
	Name        string
	Action      string
	Replacement string
	TargetField string // divert destination
}

// RemediationTable answers case-folded name lookups over the loaded
// corrections.
type RemediationTable struct {
	byName map[string]Remediation
}

// NewRemediationTable builds a table from rows. Rows without a name or with
// an unknown action are dropped; the first occurrence of a duplicated name
// wins.
func NewRemediationTable(rows []Remediation) *RemediationTable {
	t := &RemediationTable{byName: make(map[string]Remediation)}
	for _, r := range rows {
		if r.Name == "" {
			continue
		}
		switch r.Action {
		case ActionReplace, ActionRemove, ActionDivert:
		default:
			continue
		}
		key := foldKey(r.Name)
		if _, dup := t.byName[key]; !dup {
			t.byName[key] = r
		}
	}
	return t
}

// LoadRemediations reads a remediation table from a CSV or XLSX file.
// Expected columns: name, action, replacement, target_field.
func LoadRemediations(path string) (*RemediationTable, error) {
	rows, err := tabular.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "schema: load remediation table %s", path)
	}

	var remediations []Remediation
	for _, row := range rows.Data {
		remediations = append(remediations, Remediation{
			Name:        rows.Get(row, "name"),
			Action:      rows.Get(row, "action"),
			Replacement: rows.Get(row, "replacement"),
			TargetField: rows.Get(row, "target_field"),
		})
	}
	return NewRemediationTable(remediations), nil
}

// Lookup returns the remediation for a name under case-folded comparison.
func (t *RemediationTable) Lookup(name string) (Remediation, bool) {
	if t == nil {
		return Remediation{}, false
	}
	r, ok := t.byName[foldKey(name)]
	return r, ok
}
