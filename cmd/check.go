// =============================================================================
// Bill Analyzer - Check Command
// =============================================================================
//
// This file defines the 'check' command, which runs the duplicate check for
// a single bill against the ledger without modifying anything. Useful for
// answering "did I already book this?" before typing a bill in by hand.
//
// COMMAND USAGE:
//   bill-analyzer check --store REWE --date 10.12.25 --total 23.55
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/juliweber/bill-analyzer/internal/bill"
	"github.com/juliweber/bill-analyzer/internal/dupcheck"
	"github.com/juliweber/bill-analyzer/internal/xlsxstore"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// checkStore is the store name to look for.
var checkStore string

// checkDate is the bill date, day-first (e.g. "10.12.25").
var checkDate string

// checkTotal is the bill total, decimal comma or dot.
var checkTotal string

// =============================================================================
// CHECK COMMAND DEFINITION
// =============================================================================

// checkCmd represents the 'check' command.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether a bill already exists in the ledger",
	Long: `The check command looks for an existing ledger entry with the same date,
the same store (case-insensitive) and a total within a cent of the given one.
The ledger is opened read-only; nothing is modified.

With --verbose, every considered row group is reported, including near
misses where only the store or only the total matched.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck()
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the check command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkStore, "store", "", "Store name (required)")
	checkCmd.Flags().StringVar(&checkDate, "date", "", "Bill date, day-first, e.g. 10.12.25 (required)")
	checkCmd.Flags().StringVar(&checkTotal, "total", "", "Bill total, e.g. 23.55 (required)")

	checkCmd.MarkFlagRequired("store")
	checkCmd.MarkFlagRequired("date")
	checkCmd.MarkFlagRequired("total")
}

// =============================================================================
// MAIN CHECK FUNCTION
// =============================================================================

// runCheck opens the ledger and prints the duplicate-check verdict.
func runCheck() error {
	cfg, _, err := loadConfigAndLogger()
	if err != nil {
		return err
	}

	doc, err := xlsxstore.New().Open(cfg.LedgerFile)
	if err != nil {
		return fmt.Errorf("failed to open ledger %s: %w", cfg.LedgerFile, err)
	}

	candidate := &bill.Bill{
		Store: checkStore,
		Date:  checkDate,
		Total: bill.Amount{Raw: checkTotal},
	}

	report, err := dupcheck.Check(doc, candidate, cfg.Columns)
	if err != nil {
		return err
	}

	if verbose {
		for _, msg := range report.Messages() {
			fmt.Println(msg)
		}
	}

	if report.Duplicate {
		fmt.Printf("✗ Duplicate: %s on %s is already in sheet %q (row %d)\n",
			checkStore, checkDate, report.SheetName, report.MatchRow+1)
	} else {
		fmt.Printf("✓ No duplicate found for %s on %s\n", checkStore, checkDate)
	}
	return nil
}
