// =============================================================================
// Bill Analyzer - Ledger Document Model
// =============================================================================
//
// The ledger is a single workbook of named sheets, one sheet per calendar
// month. Each sheet holds an ordered sequence of rows; row order is
// semantically meaningful (chronological) but only loosely enforced.
//
// The model is format-agnostic: loading from and saving to the workbook
// file is the xlsxstore package's job. Everything in this package operates
// on plain slices, which keeps the row-search and insertion logic testable
// without touching the filesystem.
//
// =============================================================================

package ledger

import "time"

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is an ordered collection of sheets opened from a single file.
// A document is owned exclusively by one batch operation at a time;
// concurrent use must be serialized by the caller.
type Document struct {
	// Path is the file the document was opened from.
	Path string

	// Sheets are the workbook sheets in file order.
	Sheets []*Sheet
}

// Sheet returns the sheet with the given name, or nil if absent.
// Matching is a linear scan with case-sensitive exact comparison.
func (d *Document) Sheet(name string) *Sheet {
	for _, s := range d.Sheets {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// =============================================================================
// SHEET
// =============================================================================

// Sheet is one named sheet of the ledger.
type Sheet struct {
	// Name is the sheet name ("Jan 25").
	Name string

	// Rows is the ordered row sequence.
	Rows []Row

	// Dirty marks the sheet as mutated. The document store persists only
	// dirty sheets, leaving untouched months byte-compatible.
	Dirty bool
}

// InsertRow inserts a row at the given index, shifting later rows down.
// An index at or beyond the current length appends.
func (s *Sheet) InsertRow(idx int, row Row) {
	s.Dirty = true
	if idx >= len(s.Rows) {
		s.Rows = append(s.Rows, row)
		return
	}
	s.Rows = append(s.Rows, Row{})
	copy(s.Rows[idx+1:], s.Rows[idx:])
	s.Rows[idx] = row
}

// =============================================================================
// ROW
// =============================================================================

// Row is a fixed-width ordered sequence of cells. The leading columns carry
// the bill roles (date, store, item, price, total); trailing columns are
// preserved verbatim but never interpreted.
type Row struct {
	Cells []Cell
}

// Cell returns a pointer to the cell at the given column, or nil when the
// row is too short. Callers treat a missing cell like an empty one.
func (r *Row) Cell(col int) *Cell {
	if col < 0 || col >= len(r.Cells) {
		return nil
	}
	return &r.Cells[col]
}

// =============================================================================
// SHEET RESOLVER
// =============================================================================

// SheetNameForDate derives the sheet name holding bills of the given date:
// abbreviated month plus two-digit year ("Jan 25" for 2025-01-12).
func SheetNameForDate(t time.Time) string {
	return t.Format("Jan 06")
}
