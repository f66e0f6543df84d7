package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/uls-digital/migrate-cli/internal/inventory"
	"github.com/uls-digital/migrate-cli/internal/model"
	"github.com/uls-digital/migrate-cli/internal/schema"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Inspect the persisted object ledger",
}

var inventoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ledger entries",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ledger, err := loadLedger()
		if err != nil {
			return err
		}

		collection, _ := cmd.Flags().GetString("collection")
		pending, _ := cmd.Flags().GetBool("pending")

		var rows []model.InventoryEntry
		for _, e := range ledger.Entries() {
			if collection != "" && e.CollectionID != collection {
				continue
			}
			if pending && e.Processed {
				continue
			}
			rows = append(rows, e)
		}

		if len(rows) == 0 {
			fmt.Fprintln(os.Stderr, "No ledger entries found.")
			return nil
		}

		formatInventoryList(os.Stdout, rows)
		return nil
	},
}

var inventoryShowCmd = &cobra.Command{
	Use:   "show <object-id>",
	Short: "Show one ledger entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ledger, err := loadLedger()
		if err != nil {
			return err
		}

		entry, ok := ledger.Get(args[0])
		if !ok {
			return eris.Errorf("object %s not in ledger", args[0])
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entry)
	},
}

func init() {
	inventoryListCmd.Flags().String("collection", "", "filter by collection id")
	inventoryListCmd.Flags().Bool("pending", false, "show only entries not yet processed")

	inventoryCmd.AddCommand(inventoryListCmd)
	inventoryCmd.AddCommand(inventoryShowCmd)
	rootCmd.AddCommand(inventoryCmd)
}

func loadLedger() (*inventory.Manager, error) {
	profile, err := schema.LoadProfile(cfg.Schema.Profile)
	if err != nil {
		return nil, eris.Wrap(err, "load profile")
	}
	ledger := inventory.NewManager(cfg.Inventory.LedgerPath, profile)
	if err := ledger.Load(); err != nil {
		return nil, err
	}
	return ledger, nil
}

func formatInventoryList(out io.Writer, rows []model.InventoryEntry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "OBJECT\tPARENT\tCOLLECTION\tMODEL\tPAGES\tPROCESSED\tLAST_BATCH")
	for _, e := range rows {
		ts := ""
		if !e.BatchTimestamp.IsZero() {
			ts = e.BatchTimestamp.Format("2006-01-02 15:04")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%t\t%s\n",
			e.ObjectID, e.ParentID, e.CollectionID, e.Model, e.Pages, e.Processed, ts)
	}
	_ = w.Flush()
}
