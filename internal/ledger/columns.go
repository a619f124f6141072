// =============================================================================
// Bill Analyzer - Ledger Column Layout
// =============================================================================
//
// The ledger uses fixed-role columns. The layout is configurable so the
// engine can follow a sheet whose roles start at a different column, but
// the relative order DATE < STORE < ITEM < PRICE < TOTAL is assumed
// throughout the row-scanning logic.
//
// Column indices are 0-based (A=0, B=1, C=2, ...).
//
// =============================================================================

package ledger

// Columns defines which column carries which bill role.
type Columns struct {
	// Date is the column holding the purchase date of a bill group's
	// header row.
	Date int `yaml:"date"`

	// Store is the column holding the store name.
	Store int `yaml:"store"`

	// Item is the column holding the item description.
	Item int `yaml:"item"`

	// Price is the column holding the per-item price.
	Price int `yaml:"price"`

	// Total is the column holding the group total. The total appears only
	// in the last row of a bill group.
	Total int `yaml:"total"`
}

// DefaultColumns returns the standard layout: column A is left untouched,
// roles occupy columns B through F.
func DefaultColumns() Columns {
	return Columns{
		Date:  1, // Column B
		Store: 2, // Column C
		Item:  3, // Column D
		Price: 4, // Column E
		Total: 5, // Column F
	}
}

// MaxRowWidth caps the column width used for newly built rows. It guards
// against runaway width from malformed repeated-column encodings in
// historical sheets.
const MaxRowWidth = 10

// hasData reports whether the row carries any non-empty value in the
// STORE..TOTAL range. The DATE column is deliberately excluded: a bare
// date row is an anchor, not data.
func (c Columns) hasData(row *Row) bool {
	for col := c.Store; col <= c.Total; col++ {
		if cell := row.Cell(col); cell != nil && !cell.IsEmpty() {
			return true
		}
	}
	return false
}
