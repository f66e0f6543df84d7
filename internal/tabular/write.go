package tabular

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

// WriteStructs marshals a slice of struct rows to a CSV file using csvutil
// tags, replacing the destination atomically.
func WriteStructs[T any](path string, rows []T) error {
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "tabular: marshal rows")
	}
	return WriteFileAtomic(path, data)
}

// WriteRecords writes flattened records to a CSV file. Columns follow the
// given order; columns empty in every record are dropped. The destination is
// replaced atomically.
func WriteRecords(path string, columns []string, records []map[string]string) error {
	// Drop columns with no values anywhere.
	used := make([]string, 0, len(columns))
	for _, col := range columns {
		for _, rec := range records {
			if rec[col] != "" {
				used = append(used, col)
				break
			}
		}
	}
	// Pick up stray columns not in the declared order.
	seen := make(map[string]bool, len(used))
	for _, c := range used {
		seen[c] = true
	}
	var extra []string
	for _, rec := range records {
		for col, v := range rec {
			if v != "" && !seen[col] {
				seen[col] = true
				extra = append(extra, col)
			}
		}
	}
	sort.Strings(extra)
	used = append(used, extra...)

	tmp, err := tmpFile(path)
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(used); err != nil {
		return eris.Wrap(err, "tabular: write header")
	}
	row := make([]string, len(used))
	for _, rec := range records {
		for i, col := range used {
			row[i] = rec[col]
		}
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "tabular: write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "tabular: flush")
	}
	if err := tmp.Sync(); err != nil {
		return eris.Wrap(err, "tabular: sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "tabular: close temp file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return eris.Wrap(err, "tabular: rename temp file")
	}
	return nil
}

// WriteFileAtomic writes data to path via a temp file and rename, so a
// partial write never clobbers an existing file.
func WriteFileAtomic(path string, data []byte) error {
	tmp, err := tmpFile(path)
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		return eris.Wrap(err, "tabular: write temp file")
	}
	if err := tmp.Sync(); err != nil {
		return eris.Wrap(err, "tabular: sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "tabular: close temp file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return eris.Wrap(err, "tabular: rename temp file")
	}
	return nil
}

func tmpFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrap(err, "tabular: create output dir")
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, eris.Wrap(err, "tabular: create temp file")
	}
	return tmp, nil
}
