// =============================================================================
// Bill Analyzer - Configuration Module
// =============================================================================
//
// This module loads and validates the application configuration from a
// single YAML file.
//
// CONFIGURATION FILE (config.yaml):
//
//   ledger_file: /home/juli/Documents/Alltags-Ausgaben.xlsx
//   backup_suffix: .backup
//   export_dir: ./exports
//   log_level: info
//   columns:
//     date: 1
//     store: 2
//     item: 3
//     price: 4
//     total: 5
//   extraction:
//     model: gemini-2.5-flash
//     max_tokens: 2048
//   paperless:
//     url: https://paperless.example.org
//     token: ""
//     total_field_id: 1
//
// The ledger file path is the only required setting; everything else has a
// sensible default. Paperless upload is disabled while url or token is
// empty.
//
// =============================================================================

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/juliweber/bill-analyzer/internal/ledger"
)

// =============================================================================
// CONFIGURATION STRUCTURES
// =============================================================================

// Config holds the global application configuration.
type Config struct {
	// LedgerFile is the path to the ledger workbook. The path is
	// configured, never derived at runtime. Required.
	LedgerFile string `yaml:"ledger_file"`

	// BackupSuffix is appended to the ledger path to derive the backup
	// file path written before each batch mutation.
	// Default: ".backup"
	BackupSuffix string `yaml:"backup_suffix"`

	// ExportDir is the directory where extracted bill batches are saved
	// as JSON for reprocessing via 'insert'.
	// Default: "./exports"
	ExportDir string `yaml:"export_dir"`

	// LogLevel controls logging verbosity: "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// Columns maps the bill roles onto sheet columns (0-based).
	// Default: columns B through F.
	Columns ledger.Columns `yaml:"columns"`

	// Extraction configures the AI text-extraction collaborator.
	Extraction ExtractionConfig `yaml:"extraction"`

	// Paperless configures the archival upload collaborator.
	Paperless PaperlessConfig `yaml:"paperless"`
}

// ExtractionConfig holds settings for the bill extraction model.
type ExtractionConfig struct {
	// Model is the generative model used to read bill PDFs.
	// Default: "gemini-2.5-flash"
	Model string `yaml:"model"`

	// MaxTokens bounds the model response length.
	// Default: 2048
	MaxTokens int `yaml:"max_tokens"`
}

// PaperlessConfig holds settings for the Paperless-ngx document archive.
type PaperlessConfig struct {
	// URL is the base URL of the Paperless-ngx instance.
	// Upload is skipped while empty.
	URL string `yaml:"url"`

	// Token is the API token. Upload is skipped while empty.
	Token string `yaml:"token"`

	// TotalFieldID is the Paperless custom field that receives the bill
	// total.
	// Default: 1
	TotalFieldID int `yaml:"total_field_id"`
}

// Enabled reports whether Paperless upload is configured.
func (p PaperlessConfig) Enabled() bool {
	return p.URL != "" && p.Token != ""
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads, defaults and validates the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.BackupSuffix == "" {
		cfg.BackupSuffix = ".backup"
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = "./exports"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if (cfg.Columns == ledger.Columns{}) {
		cfg.Columns = ledger.DefaultColumns()
	}
	if cfg.Extraction.Model == "" {
		cfg.Extraction.Model = "gemini-2.5-flash"
	}
	if cfg.Extraction.MaxTokens == 0 {
		cfg.Extraction.MaxTokens = 2048
	}
	if cfg.Paperless.TotalFieldID == 0 {
		cfg.Paperless.TotalFieldID = 1
	}
}

// validate checks the configuration for consistency.
func validate(cfg *Config) error {
	if cfg.LedgerFile == "" {
		return fmt.Errorf("ledger_file is required")
	}

	c := cfg.Columns
	if !(c.Date < c.Store && c.Store < c.Item && c.Item < c.Price && c.Price < c.Total) {
		return fmt.Errorf("columns must be in date < store < item < price < total order")
	}
	if c.Date < 0 || c.Total >= ledger.MaxRowWidth {
		return fmt.Errorf("columns must lie between 0 and %d", ledger.MaxRowWidth-1)
	}

	if _, err := os.Stat(cfg.ExportDir); os.IsNotExist(err) {
		if err := os.MkdirAll(cfg.ExportDir, 0755); err != nil {
			return fmt.Errorf("failed to create export directory %s: %w", cfg.ExportDir, err)
		}
	}
	return nil
}
