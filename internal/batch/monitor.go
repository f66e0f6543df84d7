package batch

// Progress is one progress notification emitted while a run is underway.
type Progress struct {
	File      string
	FileIndex int
	FileCount int
	Records   int
	Ready     int
	Excluded  int
	Skipped   int
}

// Monitor receives progress notifications and answers cancellation polls.
// The cancellation flag is checked between records, never mid-record, so a
// positive answer still leaves the current record fully processed.
type Monitor interface {
	Progress(p Progress)
	Cancelled() bool
}

// NopMonitor ignores progress and never cancels.
type NopMonitor struct{}

func (NopMonitor) Progress(Progress) {}
func (NopMonitor) Cancelled() bool   { return false }
