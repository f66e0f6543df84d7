// Package batch sequences the migration pipeline over a directory of input
// files: ordering from the inventory manager, per-row mapping and
// normalization, validation with inheritance, ledger upserts, partitioned
// ready output, and exception/transformation reports. A single worker
// processes records; a companion goroutine relays progress to the monitor.
package batch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/uls-digital/migrate-cli/internal/inventory"
	"github.com/uls-digital/migrate-cli/internal/model"
	"github.com/uls-digital/migrate-cli/internal/normalize"
	"github.com/uls-digital/migrate-cli/internal/schema"
	"github.com/uls-digital/migrate-cli/internal/tabular"
	"github.com/uls-digital/migrate-cli/internal/validate"
)

// ErrCancelled is returned by Run when the monitor requested cancellation.
// Reports and the ledger are flushed before Run returns it.
var ErrCancelled = eris.New("batch: run cancelled")

// Options configures one batch run.
type Options struct {
	InputDir      string
	OutputDir     string
	BatchSize     int // max records per output file
	Operator      string
	FragmentsFile string // optional companion date-fragment file
}

// Orchestrator drives the pipeline for one run.
type Orchestrator struct {
	schema  *schema.Store
	norm    *normalize.Normalizer
	valid   *validate.Validator
	ledger  *inventory.Manager
	monitor Monitor
	opts    Options
	limiter *rate.Limiter
}

// New builds an Orchestrator. A nil monitor runs headless.
func New(s *schema.Store, ledger *inventory.Manager, monitor Monitor, opts Options) *Orchestrator {
	if monitor == nil {
		monitor = NopMonitor{}
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10000
	}
	return &Orchestrator{
		schema:  s,
		norm:    normalize.New(s),
		valid:   validate.New(s),
		ledger:  ledger,
		monitor: monitor,
		opts:    opts,
		limiter: rate.NewLimiter(4, 1), // progress notifications per second
	}
}

// runState is the mutable state of one run, owned by the worker goroutine.
type runState struct {
	runTime time.Time
	records map[string]*model.Record
	lookup  validate.ParentLookup
	part    *partition
	seq     int

	exceptions      []model.ExceptionRecord
	transformations []model.TransformationRecord

	files, ready, excluded, warned, skipped int
}

// Run executes the pipeline over every input file. Cancellation is
// cooperative and durable: on a positive cancellation check the accumulated
// output, reports, and ledger are flushed before ErrCancelled is returned.
func (o *Orchestrator) Run(ctx context.Context) (*model.RunSummary, error) {
	if err := o.ledger.Load(); err != nil {
		return nil, err
	}

	files, err := o.listInputFiles()
	if err != nil {
		return nil, err
	}

	var frags map[string][]normalize.DateFragment
	if o.opts.FragmentsFile != "" {
		if frags, err = normalize.LoadFragments(o.opts.FragmentsFile); err != nil {
			return nil, err
		}
	}

	st := &runState{
		runTime: time.Now().UTC(),
		records: make(map[string]*model.Record),
		part:    newPartition(),
	}
	st.lookup = validate.ParentLookupFunc(func(id string) (*model.Record, bool) {
		if rec, ok := st.records[id]; ok {
			return rec, true
		}
		// A ledger-known parent resolves the linkage even though it
		// carries no metadata to inherit.
		if e, ok := o.ledger.Get(id); ok {
			rec := model.NewRecord()
			rec.Set("id", []string{e.ObjectID})
			if e.ParentID != "" {
				rec.Set("parent_id", []string{e.ParentID})
			}
			if e.Model != "" {
				rec.Set("field_model", []string{e.Model})
			}
			return rec, true
		}
		return nil, false
	})

	progCh := make(chan Progress, 16)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for p := range progCh {
			if o.limiter.Allow() {
				o.monitor.Progress(p)
			}
		}
		return nil
	})

	g.Go(func() error {
		defer close(progCh)
		return o.process(gctx, st, files, frags, progCh)
	})

	err = g.Wait()
	summary := &model.RunSummary{
		Files:    st.files,
		Ready:    st.ready,
		Excluded: st.excluded,
		Warned:   st.warned,
		Skipped:  st.skipped,
	}
	return summary, err
}

func (o *Orchestrator) process(ctx context.Context, st *runState, files []string, frags map[string][]normalize.DateFragment, progCh chan<- Progress) error {
	log := zap.L().With(zap.String("operator", o.opts.Operator))

	for fi, path := range files {
		sourceFile := filepath.Base(path)
		log.Info("processing file",
			zap.String("file", sourceFile),
			zap.Int("index", fi+1),
			zap.Int("total", len(files)),
		)

		cancelled, err := o.processFile(ctx, st, sourceFile, path, frags)
		if err != nil {
			return err
		}
		st.files++

		select {
		case progCh <- Progress{
			File:      sourceFile,
			FileIndex: fi + 1,
			FileCount: len(files),
			Records:   st.ready + st.excluded + st.skipped,
			Ready:     st.ready,
			Excluded:  st.excluded,
			Skipped:   st.skipped,
		}:
		default:
		}

		if cancelled {
			log.Warn("run cancelled; flushing partial results")
			if err := o.finalize(st); err != nil {
				return err
			}
			return ErrCancelled
		}
	}

	return o.finalize(st)
}

// finalize flushes the open output partition, writes the reports, and saves
// the ledger. Called on both normal completion and cancellation.
func (o *Orchestrator) finalize(st *runState) error {
	st.seq++
	if err := st.part.flush(o.opts.OutputDir, st.seq); err != nil {
		return err
	}
	if err := writeReports(o.opts.OutputDir, st.exceptions, st.transformations); err != nil {
		return err
	}
	if err := o.ledger.Save(); err != nil {
		return err
	}
	zap.L().Info("run complete",
		zap.Int("files", st.files),
		zap.Int("ready", st.ready),
		zap.Int("excluded", st.excluded),
		zap.Int("warned", st.warned),
		zap.Int("skipped", st.skipped),
	)
	return nil
}

// processFile runs every row of one input file through the pipeline. The
// returned bool reports a cancellation observed between records.
func (o *Orchestrator) processFile(ctx context.Context, st *runState, sourceFile, path string, frags map[string][]normalize.DateFragment) (bool, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		rows, err := tabular.ReadFile(path)
		if err != nil {
			return false, eris.Wrapf(err, "batch: read %s", sourceFile)
		}
		plan := o.planFile(rows.Header)
		for _, row := range rows.Data {
			if o.cancelled(ctx) {
				return true, nil
			}
			if err := o.processRow(st, plan, sourceFile, row, frags); err != nil {
				return false, err
			}
		}
		return false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return false, eris.Wrapf(err, "batch: open %s", sourceFile)
	}
	defer f.Close()

	headerCh := make(chan []string, 1)
	rowCh, errCh := tabular.StreamCSV(ctx, f, tabular.StreamOptions{HeaderCh: headerCh})

	var plan *filePlan
	for row := range rowCh {
		if plan == nil {
			plan = o.planFile(<-headerCh)
		}
		if o.cancelled(ctx) {
			// Drain so the reader goroutine can exit.
			for range rowCh {
			}
			<-errCh
			return true, nil
		}
		if err := o.processRow(st, plan, sourceFile, row, frags); err != nil {
			return false, err
		}
	}
	if err := <-errCh; err != nil {
		return false, eris.Wrapf(err, "batch: read %s", sourceFile)
	}
	return false, nil
}

func (o *Orchestrator) cancelled(ctx context.Context) bool {
	return ctx.Err() != nil || o.monitor.Cancelled()
}

func (o *Orchestrator) processRow(st *runState, plan *filePlan, sourceFile string, row []string, frags map[string][]normalize.DateFragment) error {
	res := o.buildRecord(plan, sourceFile, row)
	rec := res.rec
	st.transformations = append(st.transformations, res.transformations...)

	id := rec.ID()
	if id == "" {
		st.exceptions = append(st.exceptions, res.issues...)
		st.excluded++
		return nil
	}

	if len(frags) > 0 {
		dres := normalize.NormalizeDates(sourceFile, frags[id])
		for field, values := range dres.Values {
			for _, v := range values {
				rec.Add(field, v)
			}
		}
		res.issues = append(res.issues, dres.Issues...)
	}

	st.records[id] = rec

	if o.ledger.ShouldSkip(sourceFile, id, rec.ParentID(), rec.Model()) {
		// Mapping-stage issues still belong in the audit trail.
		st.exceptions = append(st.exceptions, res.issues...)
		st.skipped++
		return nil
	}

	excs := append(res.issues, o.valid.Validate(rec, sourceFile, st.lookup)...)
	st.exceptions = append(st.exceptions, excs...)
	fatal, warned := validate.Outcome(excs)

	entry := model.InventoryEntry{
		ObjectID:       id,
		ParentID:       rec.ParentID(),
		CollectionID:   rec.First("collection_id"),
		Model:          rec.Model(),
		SourceFile:     sourceFile,
		Processed:      !fatal,
		BatchTimestamp: st.runTime,
	}
	if entry.CollectionID == "" && rec.Model() == model.ModelCollection {
		entry.CollectionID = id
	}
	o.ledger.Upsert(entry)
	if rec.Model() == model.ModelPage {
		o.ledger.CountPage(rec.ParentID(), sourceFile, st.runTime)
	}

	if fatal {
		st.excluded++
		return nil
	}
	if warned {
		rec.Set("warnings", advisoryRules(excs))
		st.warned++
	}
	st.ready++
	st.part.add(rec)

	if st.part.len() >= o.opts.BatchSize {
		st.seq++
		if err := st.part.flush(o.opts.OutputDir, st.seq); err != nil {
			return err
		}
	}
	return nil
}

// advisoryRules returns the distinct advisory rule names attached to a
// record, sorted for stable output.
func advisoryRules(excs []model.ExceptionRecord) []string {
	seen := map[string]bool{}
	var rules []string
	for _, e := range excs {
		if !e.Fatal() && !seen[e.Rule] {
			seen[e.Rule] = true
			rules = append(rules, e.Rule)
		}
	}
	sort.Strings(rules)
	return rules
}

// listInputFiles returns the batch's input files in processing order: hold
// collections last, ignore collections dropped.
func (o *Orchestrator) listInputFiles() ([]string, error) {
	entries, err := os.ReadDir(o.opts.InputDir)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: read input dir %s", o.opts.InputDir)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".csv", ".xlsx":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	ordered := o.ledger.Order(names)
	paths := make([]string, len(ordered))
	for i, name := range ordered {
		paths[i] = filepath.Join(o.opts.InputDir, name)
	}
	return paths, nil
}
