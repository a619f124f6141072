// =============================================================================
// Bill Analyzer - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Bill Analyzer CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   bill-analyzer process [pdf...]  - Extract bills from PDFs and insert them
//   bill-analyzer insert --file f   - Insert bills from an exported JSON file
//   bill-analyzer check             - Duplicate-check a single bill
//   bill-analyzer version           - Display the application version
//
// ARCHITECTURE:
//   This application follows a modular design where:
//   - cmd/           : Contains all CLI command definitions (Cobra)
//   - internal/      : Contains core business logic (not for external import)
//   - pkg/           : Contains shared utilities
//
// =============================================================================

package main

import (
	"github.com/juliweber/bill-analyzer/cmd"
)

// main is the entry point of the application.
// It simply calls the Execute function from the cmd package, which
// initializes and runs the Cobra CLI.
func main() {
	cmd.Execute()
}
