// =============================================================================
// Bill Analyzer - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands (like 'process', 'check') are
// attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (bill-analyzer)
//   ├── processCmd (bill-analyzer process)
//   ├── insertCmd  (bill-analyzer insert)
//   ├── checkCmd   (bill-analyzer check)
//   └── versionCmd (bill-analyzer version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (e.g., --config, --verbose)
//   2. Loading the configuration file for subcommands
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/juliweber/bill-analyzer/internal/config"
	"github.com/juliweber/bill-analyzer/internal/logger"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables verbose logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
// This is the entry point for the CLI application.
var rootCmd = &cobra.Command{
	// Use is the one-line usage message.
	Use: "bill-analyzer",

	// Short is a short description shown in the 'help' output.
	Short: "Bill Analyzer - Extract bill data from PDF receipts into a ledger workbook",

	// Long is a longer description shown in the 'help <command>' output.
	Long: `Bill Analyzer extracts structured bill data from PDF receipts and inserts
it into a monthly ledger workbook while preserving the sheet's styling.

Each bill becomes a group of rows on its month sheet: a header row carrying
the date and store, one row per item, and the group total on the last item
row. Batches are applied atomically - the ledger file is backed up before
any mutation and restored byte-for-byte if anything fails.

Key Features:
  - PDF data extraction via the Gemini API
  - Duplicate detection against existing ledger entries
  - Item-sum validation against the declared bill total
  - Atomic batch insertion with automatic backup and rollback
  - Optional archival of processed PDFs to a Paperless instance

Example Usage:
  bill-analyzer process receipt1.pdf receipt2.pdf   # Extract and insert bills
  bill-analyzer process --dry-run *.pdf             # Extract and validate only
  bill-analyzer insert --file exports/bills.json    # Insert pre-extracted bills
  bill-analyzer check --store REWE --date 10.12.25 --total 23.55`,

	// Run is the function that will be executed when the root command is called
	// without any subcommands. In this case, we just print the help message.
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print the help message.
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Execute the root command. If there's an error, print it and exit.
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init is called automatically when the package is loaded.
// It sets up the global flags shared by all subcommands.
func init() {
	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================
	// Persistent flags are available to this command and all subcommands.

	// --config flag: Allows the user to specify a custom configuration file.
	// Default is "config.yaml" in the current directory.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file (default is config.yaml)",
	)

	// --verbose flag: Enables verbose/debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// loadConfigAndLogger loads the configuration file and builds the logger
// every subcommand starts from. The --verbose flag overrides the configured
// log level.
func loadConfigAndLogger() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, zerolog.Logger{}, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return cfg, logger.New(level), nil
}
