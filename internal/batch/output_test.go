package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/uls-digital/migrate-cli/internal/model"
)

func rec(id, parentID string, fields map[string]string) *model.Record {
	r := model.NewRecord()
	r.Set("id", []string{id})
	if parentID != "" {
		r.Set("parent_id", []string{parentID})
	}
	for f, v := range fields {
		r.Set(f, []string{v})
	}
	return r
}

func ids(records []*model.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID()
	}
	return out
}

func TestSortParentsFirst(t *testing.T) {
	records := []*model.Record{
		rec("page1", "book1", nil),
		rec("book1", "coll1", nil),
		rec("coll1", "", nil),
		rec("page2", "book1", nil),
	}
	sortParentsFirst(records)
	assert.Equal(t, []string{"coll1", "book1", "page1", "page2"}, ids(records))
}

func TestSortParentsFirst_ExternalParent(t *testing.T) {
	// A parent outside the partition does not affect ordering.
	records := []*model.Record{
		rec("obj2", "elsewhere", nil),
		rec("obj1", "", nil),
	}
	sortParentsFirst(records)
	assert.Equal(t, []string{"obj2", "obj1"}, ids(records))
}

func TestSortParentsFirst_CycleTerminates(t *testing.T) {
	records := []*model.Record{
		rec("a", "b", nil),
		rec("b", "a", nil),
	}
	sortParentsFirst(records)
	assert.Len(t, records, 2)
}

func TestPartitionColumnsFirstSeenOrder(t *testing.T) {
	p := newPartition()
	p.add(rec("1", "", map[string]string{"title": "One"}))
	p.add(rec("2", "", map[string]string{"language": "English", "title": "Two"}))

	assert.Equal(t, []string{"id", "parent_id", "field_model", "title", "language"}, p.columns)
	assert.Equal(t, 2, p.len())
}

func TestAdvisoryRules(t *testing.T) {
	excs := []model.ExceptionRecord{
		{Rule: model.RuleUnmappedField, Severity: model.SeverityAdvisory},
		{Rule: model.RuleRequiredField, Severity: model.SeverityFatal},
		{Rule: model.RuleCoordinateFormat, Severity: model.SeverityAdvisory},
		{Rule: model.RuleUnmappedField, Severity: model.SeverityAdvisory},
	}
	assert.Equal(t, []string{model.RuleCoordinateFormat, model.RuleUnmappedField}, advisoryRules(excs))
}
