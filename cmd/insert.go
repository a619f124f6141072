// =============================================================================
// Bill Analyzer - Insert Command
// =============================================================================
//
// This file defines the 'insert' command, which inserts bills from a
// previously exported JSON batch file into the ledger. This is the retry
// path after a failed 'process' run, and the entry point for bills that
// were composed or corrected by hand.
//
// COMMAND USAGE:
//   bill-analyzer insert --file exports/bills_20251210_<id>.json
//
// =============================================================================

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/juliweber/bill-analyzer/internal/bill"
	"github.com/juliweber/bill-analyzer/internal/inserter"
	"github.com/juliweber/bill-analyzer/internal/xlsxstore"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// insertFile is the path to the JSON batch file to insert.
var insertFile string

// =============================================================================
// INSERT COMMAND DEFINITION
// =============================================================================

// insertCmd represents the 'insert' command.
var insertCmd = &cobra.Command{
	Use:   "insert",
	Short: "Insert bills from an exported JSON batch file into the ledger",
	Long: `The insert command reads a JSON batch file (as written by 'process') and
inserts every bill it contains into the ledger workbook as one atomic batch.

The batch is sorted by bill date before insertion. If any step fails, the
ledger file is restored byte-for-byte from the backup and the batch file
remains untouched for another attempt.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runInsert()
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the insert command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(insertCmd)

	// --file flag: Path to the JSON batch file.
	insertCmd.Flags().StringVarP(
		&insertFile,
		"file",
		"f",
		"",
		"Path to the JSON batch file to insert (required)",
	)
	insertCmd.MarkFlagRequired("file")
}

// =============================================================================
// MAIN INSERT FUNCTION
// =============================================================================

// runInsert loads the batch file and hands it to the inserter.
func runInsert() error {
	cfg, log, err := loadConfigAndLogger()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(insertFile)
	if err != nil {
		return fmt.Errorf("failed to read batch file: %w", err)
	}

	var bills []bill.Bill
	if err := json.Unmarshal(data, &bills); err != nil {
		return fmt.Errorf("failed to parse batch file %s: %w", insertFile, err)
	}

	if len(bills) == 0 {
		fmt.Println("Batch file contains no bills.")
		return nil
	}

	fmt.Printf("Inserting %d bill(s) into %s...\n", len(bills), cfg.LedgerFile)

	ins := inserter.New(xlsxstore.New(), cfg.LedgerFile, cfg.BackupSuffix, cfg.Columns, log)
	if err := ins.ProcessBatch(bills); err != nil {
		return fmt.Errorf("batch insertion failed (ledger restored): %w", err)
	}

	fmt.Printf("✓ Inserted %d bill(s)\n", len(bills))
	return nil
}
