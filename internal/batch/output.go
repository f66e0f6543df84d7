package batch

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/uls-digital/migrate-cli/internal/model"
	"github.com/uls-digital/migrate-cli/internal/tabular"
)

// exceptionReportName and transformationReportName are the fixed report
// file names; absence of the exception report signals a clean run.
const (
	exceptionReportName      = "exceptions.csv"
	transformationReportName = "transformations.csv"
)

// partition accumulates ready records until the batch-size threshold.
type partition struct {
	records []*model.Record
	columns []string
	seen    map[string]bool
}

func newPartition() *partition {
	p := &partition{seen: map[string]bool{}}
	// Identity columns lead every output sheet.
	for _, col := range []string{"id", "parent_id", "field_model"} {
		p.columns = append(p.columns, col)
		p.seen[col] = true
	}
	return p
}

func (p *partition) add(rec *model.Record) {
	p.records = append(p.records, rec)
	for _, f := range rec.Fields() {
		if !p.seen[f] {
			p.seen[f] = true
			p.columns = append(p.columns, f)
		}
	}
}

func (p *partition) len() int { return len(p.records) }

// flush writes the partition as one output sheet, parents sorted before
// their children so downstream ingest can create objects in linkage order.
func (p *partition) flush(outputDir string, seq int) error {
	if len(p.records) == 0 {
		return nil
	}
	sortParentsFirst(p.records)

	rows := make([]map[string]string, 0, len(p.records))
	for _, rec := range p.records {
		rows = append(rows, rec.Flatten())
	}

	path := filepath.Join(outputDir, fmt.Sprintf("batch_%03d.csv", seq))
	if err := tabular.WriteRecords(path, p.columns, rows); err != nil {
		return eris.Wrapf(err, "batch: write output %s", path)
	}

	p.records = p.records[:0]
	return nil
}

// sortParentsFirst stable-sorts records by linkage depth within the
// partition: a record precedes every descendant reachable through parent_id
// links present in the same partition.
func sortParentsFirst(records []*model.Record) {
	byID := make(map[string]*model.Record, len(records))
	for _, rec := range records {
		byID[rec.ID()] = rec
	}

	depths := make(map[string]int, len(records))
	var depthOf func(id string, trail map[string]bool) int
	depthOf = func(id string, trail map[string]bool) int {
		if d, ok := depths[id]; ok {
			return d
		}
		rec, ok := byID[id]
		if !ok || trail[id] {
			return 0
		}
		trail[id] = true
		d := 0
		if pid := rec.ParentID(); pid != "" && byID[pid] != nil {
			d = depthOf(pid, trail) + 1
		}
		depths[id] = d
		return d
	}
	for _, rec := range records {
		depthOf(rec.ID(), map[string]bool{})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return depths[records[i].ID()] < depths[records[j].ID()]
	})
}

// writeReports writes the exception and transformation reports. Either
// report is written only when it has rows.
func writeReports(outputDir string, excs []model.ExceptionRecord, trans []model.TransformationRecord) error {
	if len(excs) > 0 {
		path := filepath.Join(outputDir, exceptionReportName)
		if err := tabular.WriteStructs(path, excs); err != nil {
			return eris.Wrap(err, "batch: write exception report")
		}
	}
	if len(trans) > 0 {
		path := filepath.Join(outputDir, transformationReportName)
		if err := tabular.WriteStructs(path, trans); err != nil {
			return eris.Wrap(err, "batch: write transformation report")
		}
	}
	return nil
}
