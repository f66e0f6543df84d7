package batch

import (
	"fmt"
	"strings"

	"github.com/uls-digital/migrate-cli/internal/model"
	"github.com/uls-digital/migrate-cli/internal/normalize"
	"github.com/uls-digital/migrate-cli/internal/schema"
)

// filePlan is the per-file mapping plan: every header column resolved once
// against the mapping tables instead of per row.
type filePlan struct {
	header []string
	cols   [][]schema.Mapping // nil entry = unmapped column
}

func (o *Orchestrator) planFile(header []string) *filePlan {
	plan := &filePlan{header: header, cols: make([][]schema.Mapping, len(header))}
	for i, col := range header {
		if mappings, ok := o.schema.Resolver.Resolve(col); ok {
			plan.cols[i] = mappings
		}
	}
	return plan
}

// rowResult is one raw row assembled into a record, along with the audit
// records produced while mapping it.
type rowResult struct {
	rec             *model.Record
	transformations []model.TransformationRecord
	issues          []model.ExceptionRecord
}

// buildRecord maps one raw row onto a canonical record: fan-out across every
// mapping of each column, multi-value splitting, title-part assembly, and
// identifier cleanup. Unmapped columns are preserved on the record and
// flagged for audit rather than dropped.
func (o *Orchestrator) buildRecord(plan *filePlan, sourceFile string, row []string) rowResult {
	res := rowResult{rec: model.NewRecord()}
	rec := res.rec

	objectID := ""
	for i, mappings := range plan.cols {
		if i >= len(row) {
			break
		}
		for _, m := range mappings {
			if m.TargetField == "id" {
				objectID = o.ledger.StripNamespace(row[i])
			}
		}
	}

	titles := make(map[string]*normalize.TitleParts)
	flaggedUnmapped := map[string]bool{}
	agentTargets := map[string]bool{}

	for i, cell := range row {
		if i >= len(plan.header) {
			break
		}
		cell = normalize.CollapseWhitespace(cell)
		if cell == "" {
			continue
		}
		sourceField := plan.header[i]

		mappings := plan.cols[i]
		if mappings == nil {
			rec.AddUnmapped(sourceField, cell)
			if !flaggedUnmapped[sourceField] {
				flaggedUnmapped[sourceField] = true
				res.issues = append(res.issues, model.ExceptionRecord{
					SourceFile: sourceFile,
					ObjectID:   objectID,
					Field:      sourceField,
					Value:      cell,
					Rule:       model.RuleUnmappedField,
					Severity:   model.SeverityAdvisory,
					Message:    "source field has no mapping; value preserved in unmapped bucket",
				})
			}
			continue
		}

		for _, m := range mappings {
			switch {
			case m.TargetField == "id":
				rec.Set("id", []string{objectID})

			case m.TargetField == "parent_id":
				for _, ref := range o.ledger.NormalizeParentRef(cell) {
					rec.Add("parent_id", ref)
				}

			case o.schema.Profile.IsTitleField(m.TargetField):
				t, ok := titles[m.TargetField]
				if !ok {
					t = &normalize.TitleParts{}
					titles[m.TargetField] = t
				}
				t.Set(normalize.ClassifyTitlePart(sourceField), cell)

			default:
				if m.Role != "" {
					agentTargets[m.TargetField] = true
				}
				for _, token := range normalize.SplitValues(cell) {
					nres := o.norm.Normalize(m.TargetField, token, normalize.Context{
						SourceFile:  sourceFile,
						ObjectID:    objectID,
						SourceField: sourceField,
						Mapping:     m,
					})
					target := m.TargetField
					if nres.TargetField != "" {
						target = nres.TargetField
					}
					rec.Add(target, nres.Value)
					res.transformations = append(res.transformations, nres.Transformations...)
					res.issues = append(res.issues, nres.Issues...)
				}
			}
		}
	}

	for target, t := range titles {
		if !t.Empty() {
			rec.Add(target, t.Assemble())
		}
	}
	suppressAttributedAgents(rec, agentTargets)

	if rec.ID() == "" {
		res.issues = append(res.issues, model.ExceptionRecord{
			SourceFile: sourceFile,
			ObjectID:   objectID,
			Field:      "id",
			Rule:       model.RuleMalformedRow,
			Severity:   model.SeverityFatal,
			Message:    fmt.Sprintf("row carries no object identifier (%d cells)", len(row)),
		})
	}

	return res
}

// suppressAttributedAgents drops a plain agent value (no relator prefix) when
// the same name also appears under a relator in the same field. A name keeps
// its attributed form only if it was never seen with a declared role.
func suppressAttributedAgents(rec *model.Record, targets map[string]bool) {
	for target := range targets {
		values := rec.Values(target)
		if len(values) < 2 {
			continue
		}
		kept := values[:0]
		for _, v := range values {
			if plainAgentValue(v) && hasRelatorForm(values, v) {
				continue
			}
			kept = append(kept, v)
		}
		rec.Set(target, kept)
	}
}

func plainAgentValue(v string) bool {
	for _, agent := range []string{normalize.AgentPerson, normalize.AgentCorporate, normalize.AgentConference} {
		if strings.HasPrefix(v, agent+":") {
			return true
		}
	}
	return false
}

func hasRelatorForm(values []string, plain string) bool {
	for _, w := range values {
		if w != plain && strings.HasSuffix(w, ":"+plain) {
			return true
		}
	}
	return false
}
