package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/uls-digital/migrate-cli/internal/batch"
	"github.com/uls-digital/migrate-cli/internal/inventory"
	"github.com/uls-digital/migrate-cli/internal/model"
	"github.com/uls-digital/migrate-cli/internal/schema"
)

var (
	runInput     string
	runOutput    string
	runOperator  string
	runBatchSize int
	runFragments string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the migration pipeline over a batch directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		operator := runOperator
		if operator == "" {
			operator = cfg.Batch.Operator
		}
		if operator == "" {
			var err error
			if operator, err = promptOperator(); err != nil {
				return err
			}
		}

		schemaStore, err := schema.Load(cfg.Schema)
		if err != nil {
			return eris.Wrap(err, "load schema")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		run, err := st.CreateRun(ctx, operator, runInput)
		if err != nil {
			return eris.Wrap(err, "create run record")
		}

		ledger := inventory.NewManager(cfg.Inventory.LedgerPath, schemaStore.Profile)

		batchSize := runBatchSize
		if batchSize <= 0 {
			batchSize = cfg.Batch.Size
		}
		fragments := runFragments
		if fragments == "" {
			fragments = cfg.Batch.FragmentsFile
		}

		orch := batch.New(schemaStore, ledger, newMonitor(), batch.Options{
			InputDir:      runInput,
			OutputDir:     runOutput,
			BatchSize:     batchSize,
			Operator:      operator,
			FragmentsFile: fragments,
		})

		summary, runErr := orch.Run(ctx)

		status := model.RunStatusComplete
		errMsg := ""
		switch {
		case eris.Is(runErr, batch.ErrCancelled):
			status = model.RunStatusCancelled
		case runErr != nil:
			status = model.RunStatusFailed
			errMsg = runErr.Error()
		}
		if err := st.CompleteRun(ctx, run.ID, status, summary, errMsg); err != nil {
			zap.L().Warn("record run result", zap.Error(err))
		}

		if runErr != nil && status == model.RunStatusFailed {
			return runErr
		}

		fmt.Printf("run %s %s: %d files, %d ready, %d excluded, %d warned, %d skipped\n",
			run.ID, status, summary.Files, summary.Ready, summary.Excluded, summary.Warned, summary.Skipped)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "", "batch directory of input files (required)")
	runCmd.Flags().StringVar(&runOutput, "output", "output", "directory for ready sheets and reports")
	runCmd.Flags().StringVar(&runOperator, "operator", "", "operator identifier for the audit trail")
	runCmd.Flags().IntVar(&runBatchSize, "batch-size", 0, "max records per output file")
	runCmd.Flags().StringVar(&runFragments, "fragments", "", "companion date-fragment file")
	_ = runCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(runCmd)
}

// promptOperator asks for an operator identifier when attached to a
// terminal; headless invocations must pass --operator instead.
func promptOperator() (string, error) {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return "", eris.New("operator is required in non-interactive mode (--operator)")
	}
	fmt.Fprint(os.Stderr, "Operator identifier: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", eris.Wrap(err, "read operator")
	}
	operator := strings.TrimSpace(line)
	if operator == "" {
		return "", eris.New("operator must not be empty")
	}
	return operator, nil
}

// terminalMonitor prints progress lines to stderr on an attached terminal.
type terminalMonitor struct{}

func (terminalMonitor) Progress(p batch.Progress) {
	fmt.Fprintf(os.Stderr, "[%d/%d] %s: %d records (%d ready, %d excluded, %d skipped)\n",
		p.FileIndex, p.FileCount, p.File, p.Records, p.Ready, p.Excluded, p.Skipped)
}

func (terminalMonitor) Cancelled() bool { return false }

// logMonitor reports progress through the structured logger for headless
// runs.
type logMonitor struct{}

func (logMonitor) Progress(p batch.Progress) {
	zap.L().Info("progress",
		zap.String("file", p.File),
		zap.Int("index", p.FileIndex),
		zap.Int("total", p.FileCount),
		zap.Int("ready", p.Ready),
		zap.Int("excluded", p.Excluded),
		zap.Int("skipped", p.Skipped),
	)
}

func (logMonitor) Cancelled() bool { return false }

func newMonitor() batch.Monitor {
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return terminalMonitor{}
	}
	return logMonitor{}
}
