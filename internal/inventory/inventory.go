// Package inventory maintains the persisted ledger of objects and
// collections seen across migration runs. The ledger is a tabular file keyed
// by object id, loaded once at start and written back with an atomic
// replace, so an interrupted run never leaves a corrupt ledger behind.
package inventory

import (
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/uls-digital/migrate-cli/internal/model"
	"github.com/uls-digital/migrate-cli/internal/schema"
	"github.com/uls-digital/migrate-cli/internal/tabular"
)

// Manager owns the in-memory ledger for the duration of one run.
type Manager struct {
	path    string
	profile *schema.Profile
	entries map[string]*model.InventoryEntry
	order   []string

	// prior holds the entries as they stood on disk when Load ran.
	// Skip decisions consult only this snapshot, so objects upserted
	// earlier in the current run are never mistaken for prior migrations.
	prior map[string]model.InventoryEntry
}

// NewManager returns a Manager over the ledger at path. Call Load before use.
func NewManager(path string, profile *schema.Profile) *Manager {
	return &Manager{
		path:    path,
		profile: profile,
		entries: make(map[string]*model.InventoryEntry),
		prior:   make(map[string]model.InventoryEntry),
	}
}

// Load reads the persisted ledger, replacing any in-memory state. A missing
// or empty ledger file is not an error; the manager starts empty.
func (m *Manager) Load() error {
	m.entries = make(map[string]*model.InventoryEntry)
	m.order = nil
	m.prior = make(map[string]model.InventoryEntry)

	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return eris.Wrapf(err, "inventory: read ledger %s", m.path)
	}
	if len(data) == 0 {
		return nil
	}

	var rows []model.InventoryEntry
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return eris.Wrapf(err, "inventory: parse ledger %s", m.path)
	}
	for i := range rows {
		e := rows[i]
		if e.ObjectID == "" {
			continue
		}
		m.entries[e.ObjectID] = &e
		m.order = append(m.order, e.ObjectID)
		m.prior[e.ObjectID] = e
	}
	return nil
}

// Save persists the ledger with an atomic replace-on-write. It is safe to
// call after a partial failure: the file reflects whatever was upserted
// before the failure point.
func (m *Manager) Save() error {
	rows := make([]model.InventoryEntry, 0, len(m.order))
	for _, id := range m.order {
		rows = append(rows, *m.entries[id])
	}
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "inventory: marshal ledger")
	}
	if err := tabular.WriteFileAtomic(m.path, data); err != nil {
		return eris.Wrapf(err, "inventory: write ledger %s", m.path)
	}
	return nil
}

// Len returns the number of ledger entries.
func (m *Manager) Len() int { return len(m.entries) }

// Get returns the ledger entry for an object id.
func (m *Manager) Get(objectID string) (model.InventoryEntry, bool) {
	e, ok := m.entries[objectID]
	if !ok {
		return model.InventoryEntry{}, false
	}
	return *e, true
}

// Entries returns all ledger entries in insertion order.
func (m *Manager) Entries() []model.InventoryEntry {
	rows := make([]model.InventoryEntry, 0, len(m.order))
	for _, id := range m.order {
		rows = append(rows, *m.entries[id])
	}
	return rows
}

// Order stable-sorts input files so that files in the configured hold set
// move to the end and files in the ignore set are dropped. Relative order is
// preserved within each partition: dependent collections are processed only
// after their prerequisites.
func (m *Manager) Order(files []string) []string {
	hold := make(map[string]bool, len(m.profile.HoldCollections))
	for _, f := range m.profile.HoldCollections {
		hold[f] = true
	}
	ignore := make(map[string]bool, len(m.profile.IgnoreCollections))
	for _, f := range m.profile.IgnoreCollections {
		ignore[f] = true
	}

	var head, tail []string
	for _, f := range files {
		switch {
		case ignore[f]:
		case hold[f]:
			tail = append(tail, f)
		default:
			head = append(head, f)
		}
	}
	return append(head, tail...)
}

// StripNamespace removes repository-internal namespace prefixes from an
// identifier: configured URI prefixes first, then any remaining short
// namespace up to a colon ("ns:123" becomes "123").
func (m *Manager) StripNamespace(id string) string {
	id = strings.TrimSpace(id)
	for _, prefix := range m.profile.NamespacePrefixes {
		id = strings.TrimPrefix(id, prefix)
	}
	if i := strings.LastIndexByte(id, ':'); i >= 0 {
		id = id[i+1:]
	}
	return id
}

// NormalizeParentRef cleans a raw parent-reference cell: splits it into
// tokens (a field may carry one or several references), strips namespace
// prefixes, deduplicates, and sorts deterministically.
func (m *Manager) NormalizeParentRef(raw string) []string {
	var cleaned []string
	for _, token := range strings.Split(raw, ",") {
		id := m.StripNamespace(token)
		if id == "" || m.profile.IsRootObject(id) {
			continue
		}
		cleaned = append(cleaned, id)
	}
	seen := make(map[string]struct{}, len(cleaned))
	out := cleaned[:0]
	for _, id := range cleaned {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Upsert merges an entry into the ledger, keyed by object id. An existing
// entry keeps every previously known value unless the incoming entry carries
// a non-empty replacement; Processed and BatchTimestamp always move forward.
// A page entry without a collection resolves it from the page's parent entry
// before insertion, so a page is never recorded with an unknown collection
// when its parent is already known.
func (m *Manager) Upsert(e model.InventoryEntry) {
	if e.ObjectID == "" {
		return
	}
	if e.Model == model.ModelPage && e.CollectionID == "" && e.ParentID != "" {
		if parent, ok := m.entries[e.ParentID]; ok {
			e.CollectionID = parent.CollectionID
		}
	}

	cur, ok := m.entries[e.ObjectID]
	if !ok {
		entry := e
		m.entries[e.ObjectID] = &entry
		m.order = append(m.order, e.ObjectID)
		return
	}

	if e.ParentID != "" {
		cur.ParentID = e.ParentID
	}
	if e.CollectionID != "" {
		cur.CollectionID = e.CollectionID
	}
	if e.Model != "" {
		cur.Model = e.Model
	}
	if e.SourceFile != "" {
		cur.SourceFile = e.SourceFile
	}
	if e.Pages > cur.Pages {
		cur.Pages = e.Pages
	}
	if e.Processed {
		cur.Processed = true
	}
	if e.BatchTimestamp.After(cur.BatchTimestamp) {
		cur.BatchTimestamp = e.BatchTimestamp
	}
}

// CountPage increments the page counter on the parent object's entry,
// creating a stub entry when the parent has not been seen yet.
func (m *Manager) CountPage(parentID, sourceFile string, ts time.Time) {
	if parentID == "" {
		return
	}
	cur, ok := m.entries[parentID]
	if !ok {
		m.entries[parentID] = &model.InventoryEntry{
			ObjectID:       parentID,
			SourceFile:     sourceFile,
			Pages:          1,
			BatchTimestamp: ts,
		}
		m.order = append(m.order, parentID)
		return
	}
	cur.Pages++
	if cur.BatchTimestamp.Before(ts) {
		cur.BatchTimestamp = ts
	}
}

// ShouldSkip reports whether a record was already migrated from a different
// source file in an earlier run. Pages are judged by their parent object.
// Only the ledger as loaded from disk counts: objects first seen during the
// current run are never skipped.
func (m *Manager) ShouldSkip(sourceFile, objectID, parentID, objectModel string) bool {
	key := objectID
	if objectModel == model.ModelPage && parentID != "" {
		key = parentID
	}
	e, ok := m.prior[key]
	return ok && e.SourceFile != "" && e.SourceFile != sourceFile
}
