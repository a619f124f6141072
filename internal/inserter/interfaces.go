// =============================================================================
// Bill Analyzer - Inserter Collaborator Interfaces
// =============================================================================

package inserter

import "github.com/juliweber/bill-analyzer/internal/ledger"

// DocumentStore abstracts ledger document persistence. The production
// implementation is xlsxstore.Store; tests substitute a failing store to
// exercise the rollback path.
type DocumentStore interface {
	// Open reads the document at path.
	Open(path string) (*ledger.Document, error)

	// Save overwrites the file at path with the document's content.
	// Save is not atomic; atomicity is provided by the inserter's
	// backup/rollback wrapper.
	Save(doc *ledger.Document, path string) error
}
