package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/uls-digital/migrate-cli/internal/inventory"
	"github.com/uls-digital/migrate-cli/internal/schema"
)

var orderCmd = &cobra.Command{
	Use:   "order <batch-dir>",
	Short: "Preview the processing order for a batch directory",
	Long:  "Lists the batch's input files in the order the pipeline would process them: hold collections moved to the end, ignore collections dropped.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := schema.LoadProfile(cfg.Schema.Profile)
		if err != nil {
			return eris.Wrap(err, "load profile")
		}

		entries, err := os.ReadDir(args[0])
		if err != nil {
			return eris.Wrapf(err, "read batch dir %s", args[0])
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

		ledger := inventory.NewManager(cfg.Inventory.LedgerPath, profile)
		for i, name := range ledger.Order(names) {
			fmt.Printf("%3d  %s\n", i+1, name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(orderCmd)
}
