// =============================================================================
// Bill Analyzer - Row Locator
// =============================================================================
//
// This file locates the anchor row for a given bill date, and derives the
// insertion point when no such row exists yet.
//
// PLACEMENT MODEL:
//   Newly created date rows are appended after the last row carrying data,
//   not inserted at their sorted position. Chronological order across a
//   sheet is therefore a best-effort property: it holds when the caller
//   feeds bills in non-decreasing date order (the batch coordinator sorts
//   for exactly this reason). Pre-existing rows are never reordered.
//
// =============================================================================

package ledger

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE ROW LOOKUP
// =============================================================================

// FindDateRow scans rows top-to-bottom and returns the index of the first
// row whose DATE cell parses to the target date. Both typed date cells and
// free-text day-first dates are recognized; cells that fail to parse are
// skipped so malformed historical rows never block the search.
//
// The second return value is false when no row matches.
func FindDateRow(sheet *Sheet, target time.Time, cols Columns) (int, bool) {
	for idx := range sheet.Rows {
		cell := sheet.Rows[idx].Cell(cols.Date)
		if cell == nil || cell.IsEmpty() {
			continue
		}
		d, ok := cell.DateValue()
		if !ok {
			continue
		}
		if d.Equal(target) {
			return idx, true
		}
	}
	return 0, false
}

// =============================================================================
// DATE ROW CREATION
// =============================================================================

// CreateDateRow inserts a fresh anchor row for a date that has no row yet,
// and returns its index.
//
// The insertion point is immediately after the last row carrying any data
// in the STORE..TOTAL range (sheet end when the sheet has no data at all).
// A blank separator row is inserted first, then the date row. Both clone
// per-column cell styles from the last data row; the DATE cell itself is
// left unstyled, since its formatting is bound to the date type rather
// than the generic column style.
func CreateDateRow(sheet *Sheet, target time.Time, cols Columns) (int, error) {
	lastData := -1
	width := 0
	for idx := range sheet.Rows {
		if w := len(sheet.Rows[idx].Cells); w > width {
			width = w
		}
		if cols.hasData(&sheet.Rows[idx]) {
			lastData = idx
		}
	}

	// New rows use the widest observed row, capped to guard against
	// malformed repeated-column encodings.
	if width > MaxRowWidth {
		width = MaxRowWidth
	}
	if width < cols.Total+1 {
		width = cols.Total + 1
	}

	var template *Row
	if lastData >= 0 {
		template = &sheet.Rows[lastData]
	}

	separator := buildStyledBlankRow(template, width)
	dateRow := buildStyledBlankRow(template, width)
	dateRow.Cells[cols.Date] = DateCell(target, 0)

	insertAt := len(sheet.Rows)
	if lastData >= 0 {
		insertAt = lastData + 1
	}
	sheet.InsertRow(insertAt, separator)
	sheet.InsertRow(insertAt+1, dateRow)

	// Re-scan instead of trusting arithmetic: the returned index must be
	// the row whose DATE cell actually equals the target date.
	idx, ok := FindDateRow(sheet, target, cols)
	if !ok {
		return 0, fmt.Errorf("date row for %s not found after insertion", target.Format("2006-01-02"))
	}
	return idx, nil
}

// buildStyledBlankRow creates an empty row of the given width, cloning
// per-column cell styles from the template row when one is available.
func buildStyledBlankRow(template *Row, width int) Row {
	row := Row{Cells: make([]Cell, width)}
	if template == nil {
		return row
	}
	for col := 0; col < width; col++ {
		if src := template.Cell(col); src != nil {
			row.Cells[col].Style = src.Style
		}
	}
	return row
}
