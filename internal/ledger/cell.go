// =============================================================================
// Bill Analyzer - Ledger Cell Model
// =============================================================================
//
// Cells in the ledger are loosely typed: a single column mixes text, numbers
// and dates, and historical rows may carry formulas left behind by manual
// editing. The Cell type is a closed tagged variant with explicit conversion
// helpers; callers never inspect spreadsheet internals directly.
//
// A cell's visual style is an opaque reference (the style ID of the backing
// workbook). The engine copies style references between cells but never
// interprets them.
//
// =============================================================================

package ledger

import (
	"strconv"
	"strings"
	"time"

	"github.com/juliweber/bill-analyzer/internal/bill"
)

// =============================================================================
// CELL KIND
// =============================================================================

// Kind is the type marker of a cell value.
type Kind int

const (
	// KindEmpty marks a cell without a value. The cell may still carry a
	// style reference or a formula.
	KindEmpty Kind = iota

	// KindText marks a free-text cell.
	KindText

	// KindNumber marks a numeric cell.
	KindNumber

	// KindDate marks a typed calendar-date cell.
	KindDate
)

// =============================================================================
// CELL
// =============================================================================

// StyleRef is an opaque visual style token. Zero means "no explicit style".
type StyleRef int

// Cell is one cell of a ledger row.
type Cell struct {
	// Kind is the type marker for the active value field.
	Kind Kind

	// Text holds the value for KindText cells.
	Text string

	// Number holds the value for KindNumber cells.
	Number float64

	// Date holds the value for KindDate cells (midnight UTC).
	Date time.Time

	// Formula is the cell formula without result caching ("=4*0.59").
	// Empty for plain cells.
	Formula string

	// Style is the opaque visual style reference, copied between cells
	// and never interpreted.
	Style StyleRef
}

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// TextCell returns a text cell with the given style.
func TextCell(s string, style StyleRef) Cell {
	if s == "" {
		return Cell{Kind: KindEmpty, Style: style}
	}
	return Cell{Kind: KindText, Text: s, Style: style}
}

// NumberCell returns a numeric cell with the given style.
func NumberCell(v float64, style StyleRef) Cell {
	return Cell{Kind: KindNumber, Number: v, Style: style}
}

// DateCell returns a typed date cell.
func DateCell(t time.Time, style StyleRef) Cell {
	return Cell{Kind: KindDate, Date: t, Style: style}
}

// FormulaCell returns a cell carrying a formula and no cached value.
func FormulaCell(formula string, style StyleRef) Cell {
	return Cell{Kind: KindEmpty, Formula: formula, Style: style}
}

// AmountCell returns the cell representation of an extracted amount:
// formula amounts become formula cells, plain amounts numeric cells.
func AmountCell(a bill.Amount, style StyleRef) (Cell, error) {
	if a.IsFormula() {
		return FormulaCell(a.Formula(), style), nil
	}
	v, err := a.Value()
	if err != nil {
		return Cell{}, err
	}
	return NumberCell(v, style), nil
}

// =============================================================================
// CELL METHODS
// =============================================================================

// IsEmpty reports whether the cell holds neither a value nor a formula.
func (c *Cell) IsEmpty() bool {
	return c.Kind == KindEmpty && c.Formula == ""
}

// Clear wipes the value, the type marker and the formula, preventing a
// spreadsheet formula engine from re-evaluating leftover state against new
// data. The style reference is preserved.
func (c *Cell) Clear() {
	c.Kind = KindEmpty
	c.Text = ""
	c.Number = 0
	c.Date = time.Time{}
	c.Formula = ""
}

// String returns the display text of the cell value, mirroring how the
// value would appear in the sheet. Dates render in canonical ISO form.
func (c *Cell) String() string {
	switch c.Kind {
	case KindText:
		return c.Text
	case KindNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case KindDate:
		return c.Date.Format("2006-01-02")
	default:
		return ""
	}
}

// DateValue extracts a calendar date from the cell. Typed date cells are
// returned directly; text cells are parsed with the day-first convention.
// Cells that do not carry a parsable date report ok=false; this is never
// an error, so malformed historical rows are simply skipped.
func (c *Cell) DateValue() (time.Time, bool) {
	switch c.Kind {
	case KindDate:
		return c.Date, true
	case KindText:
		t, err := bill.ParseDate(c.Text)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	default:
		return time.Time{}, false
	}
}

// AmountValue extracts a numeric value from the cell, stripping a leading
// formula marker and evaluating simple "+"/"*" expressions. ok=false means
// the cell does not carry a usable number.
func (c *Cell) AmountValue() (float64, bool) {
	if c.Formula != "" {
		v, err := bill.EvaluateAmount(c.Formula)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	switch c.Kind {
	case KindNumber:
		return c.Number, true
	case KindText:
		v, err := bill.EvaluateAmount(c.Text)
		if err != nil {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}

// NormalizedText returns the trimmed, case-folded display text, used for
// store name comparison during duplicate detection.
func (c *Cell) NormalizedText() string {
	return strings.ToLower(strings.TrimSpace(c.String()))
}
