// =============================================================================
// Bill Analyzer - Process Command
// =============================================================================
//
// This file defines the 'process' command, which is the main command for
// turning PDF receipts into ledger entries. It orchestrates the entire
// analysis pipeline.
//
// COMMAND USAGE:
//   bill-analyzer process [flags] <pdf> [pdf...]
//
// FLAGS:
//   --dry-run      : Extract and validate only, do not touch the ledger
//   --skip-upload  : Do not archive PDFs to Paperless even if configured
//
// PROCESSING PIPELINE:
//   1. Load configuration
//   2. For each PDF (sequentially, the model API is the bottleneck):
//      a. Extract the bill data via the Gemini API
//      b. Validate the item sum against the declared total (warn only)
//      c. Check the ledger for an existing duplicate entry
//      d. Optionally archive the PDF to Paperless
//   3. Export the accepted bills as JSON for reprocessing
//   4. Insert the whole batch atomically into the ledger workbook
//   5. Generate summary report
//
// =============================================================================

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/juliweber/bill-analyzer/internal/bill"
	"github.com/juliweber/bill-analyzer/internal/dupcheck"
	"github.com/juliweber/bill-analyzer/internal/extract"
	"github.com/juliweber/bill-analyzer/internal/inserter"
	"github.com/juliweber/bill-analyzer/internal/paperless"
	"github.com/juliweber/bill-analyzer/internal/validation"
	"github.com/juliweber/bill-analyzer/internal/xlsxstore"
	"github.com/juliweber/bill-analyzer/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun extracts and validates without mutating the ledger.
var dryRun bool

// skipUpload disables the Paperless archival step.
var skipUpload bool

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process <pdf> [pdf...]",
	Short: "Extract bills from PDF receipts and insert them into the ledger",
	Long: `The process command reads each PDF receipt, extracts the bill data via the
configured generative model, and inserts the resulting bills into the ledger
workbook as one atomic batch.

Before insertion each bill is validated (item sum vs. declared total) and
checked against the ledger for duplicates. Validation failures are warnings;
duplicates are skipped. The accepted batch is exported as JSON so it can be
re-inserted later with 'bill-analyzer insert'.

On error during insertion:
  - The ledger file is restored byte-for-byte from the backup
  - The exported JSON remains available for a retry`,

	Args: cobra.MinimumNArgs(1),

	// RunE is like Run but returns an error. This is preferred for commands
	// that can fail, as it allows Cobra to handle the error gracefully.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(args)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the process command with the root command and sets up flags.
func init() {
	// Add the process command to the root command.
	rootCmd.AddCommand(processCmd)

	// ==========================================================================
	// LOCAL FLAGS
	// ==========================================================================
	// Local flags are only available to this command.

	// --dry-run flag: Extract and validate without touching the ledger.
	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Extract and validate only, do not modify the ledger",
	)

	// --skip-upload flag: Disable the Paperless archival step.
	processCmd.Flags().BoolVar(
		&skipUpload,
		"skip-upload",
		false,
		"Do not archive PDFs to Paperless even if configured",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess is the main function that orchestrates the analysis pipeline.
func runProcess(pdfPaths []string) error {
	startTime := time.Now()
	ctx := context.Background()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	fmt.Println("=== Bill Analyzer ===")
	fmt.Println("Loading configuration...")

	cfg, log, err := loadConfigAndLogger()
	if err != nil {
		return err
	}

	store := xlsxstore.New()
	extractor := extract.New(cfg.Extraction.Model, cfg.Extraction.MaxTokens)

	var archive *paperless.Client
	if cfg.Paperless.Enabled() && !skipUpload {
		archive = paperless.New(cfg.Paperless.URL, cfg.Paperless.Token, cfg.Paperless.TotalFieldID)
	}

	// Load the ledger once up front for duplicate checking. The inserter
	// loads its own copy later, inside the backup window.
	doc, err := store.Open(cfg.LedgerFile)
	if err != nil {
		return fmt.Errorf("failed to open ledger %s: %w", cfg.LedgerFile, err)
	}

	// =========================================================================
	// STEP 2: EXTRACT, VALIDATE, DUPLICATE-CHECK EACH PDF
	// =========================================================================

	fmt.Printf("Processing %d PDF(s)...\n", len(pdfPaths))

	var accepted []bill.Bill
	var skippedCount, errorCount int

	for _, path := range pdfPaths {
		name := filepath.Base(path)

		b, err := extractor.ExtractBill(ctx, path)
		if err != nil {
			errorCount++
			fmt.Printf("  ✗ %s: %v\n", name, err)
			continue
		}

		// Item sum vs. declared total. A mismatch is reported but does not
		// block insertion - price OCR errors are fixed by hand afterwards.
		result, err := validation.ValidateBillTotal(b)
		if err != nil {
			errorCount++
			fmt.Printf("  ✗ %s: %v\n", name, err)
			continue
		}
		if !result.Valid {
			log.Warn().Str("file", name).Msg(result.Message)
			fmt.Printf("  ⚠ %s: %s\n", name, result.Message)
		}

		report, err := dupcheck.Check(doc, b, cfg.Columns)
		if err != nil {
			errorCount++
			fmt.Printf("  ✗ %s: %v\n", name, err)
			continue
		}
		if verbose {
			for _, msg := range report.Messages() {
				log.Debug().Str("file", name).Msg(msg)
			}
		}
		if report.Duplicate {
			skippedCount++
			fmt.Printf("  ⚠ %s: already in ledger (%s row %d), skipped\n",
				name, report.SheetName, report.MatchRow+1)
			continue
		}

		if archive != nil && !dryRun {
			taskID, err := archive.Upload(ctx, path, b)
			if err != nil {
				// Archival failure must not lose the extracted bill.
				log.Warn().Err(err).Str("file", name).Msg("paperless upload failed")
				fmt.Printf("  ⚠ %s: paperless upload failed: %v\n", name, err)
			} else {
				log.Info().Str("file", name).Str("task", taskID).Msg("archived to paperless")
			}
		}

		accepted = append(accepted, *b)
		fmt.Printf("  ✓ %s -> %s, %s, %d item(s)\n", name, b.Store, b.Date, len(b.Items))
	}

	// =========================================================================
	// STEP 3: EXPORT THE BATCH AS JSON
	// =========================================================================
	// The export is written before insertion so a failed batch can be
	// retried with 'bill-analyzer insert' without re-running extraction.

	var exportPath string
	if len(accepted) > 0 {
		exportPath = filepath.Join(cfg.ExportDir, utils.ExportFileName("bills"))
		if err := exportBills(exportPath, accepted); err != nil {
			return fmt.Errorf("failed to export batch: %w", err)
		}
		fmt.Printf("Exported batch to %s\n", exportPath)
	}

	// =========================================================================
	// STEP 4: INSERT THE BATCH ATOMICALLY
	// =========================================================================

	if dryRun {
		fmt.Println("Dry run - ledger not modified.")
	} else if len(accepted) > 0 {
		fmt.Printf("Inserting %d bill(s) into %s...\n", len(accepted), cfg.LedgerFile)

		ins := inserter.New(store, cfg.LedgerFile, cfg.BackupSuffix, cfg.Columns, log)
		if err := ins.ProcessBatch(accepted); err != nil {
			return fmt.Errorf("batch insertion failed (ledger restored, batch saved to %s): %w",
				exportPath, err)
		}
	}

	// =========================================================================
	// STEP 5: PRINT SUMMARY
	// =========================================================================

	elapsed := time.Since(startTime)
	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total PDFs:      %d\n", len(pdfPaths))
	fmt.Printf("Inserted:        %d\n", len(accepted))
	fmt.Printf("Duplicates:      %d\n", skippedCount)
	fmt.Printf("Errors:          %d\n", errorCount)
	fmt.Printf("Time elapsed:    %s\n", elapsed)

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// exportBills writes the accepted batch as indented JSON.
func exportBills(path string, bills []bill.Bill) error {
	data, err := json.MarshalIndent(bills, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
