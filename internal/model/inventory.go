package model

import "time"

// InventoryEntry is one row of the persisted object inventory ledger. The
// ledger is append/merge only: re-runs update Processed and BatchTimestamp
// but never erase a previously known value with an empty one.
type InventoryEntry struct {
	ObjectID       string    `csv:"object_id"`
	ParentID       string    `csv:"parent_id"`
	CollectionID   string    `csv:"collection_id"`
	Model          string    `csv:"model"`
	SourceFile     string    `csv:"source_file"`
	Pages          int       `csv:"pages"`
	Processed      bool      `csv:"processed"`
	BatchTimestamp time.Time `csv:"batch_timestamp"`
}
