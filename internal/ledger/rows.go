// =============================================================================
// Bill Analyzer - Row Builder
// =============================================================================
//
// This file materializes the rows of a bill group: the in-place header
// write, the per-item rows, the blank separator, and the snapshot/restore
// pair used to relocate a row's prior content instead of losing it.
//
// Styling rule: new rows clone the per-column style references of their
// template row, so inserted rows look like their neighbors. Values are set
// only in the role columns; every other cell is emitted with cleared
// content and preserved style.
//
// =============================================================================

package ledger

import (
	"fmt"

	"github.com/juliweber/bill-analyzer/internal/bill"
)

// =============================================================================
// HEADER WRITE
// =============================================================================

// WriteHeader writes a bill's store name and first item into the target row
// in place, making it the header row of the new group.
//
// Every cell from the TOTAL column onward is cleared completely first —
// value, type marker and formula — so stale computed state from prior
// content can never be re-evaluated against the new data. The total itself
// is written only when the bill has exactly one item; otherwise it belongs
// on the terminal item row.
func WriteHeader(row *Row, b *bill.Bill, cols Columns) error {
	if len(b.Items) == 0 {
		return fmt.Errorf("bill for %q has no items", b.Store)
	}
	growRow(row, cols.Total+1)

	first := b.Items[0]
	setText(&row.Cells[cols.Store], b.Store)
	setText(&row.Cells[cols.Item], first.Name)

	priceCell, err := AmountCell(first.Price, row.Cells[cols.Price].Style)
	if err != nil {
		return fmt.Errorf("item %q: %w", first.Name, err)
	}
	row.Cells[cols.Price] = priceCell

	for col := cols.Total; col < len(row.Cells); col++ {
		row.Cells[col].Clear()
	}

	if len(b.Items) == 1 {
		totalCell, err := AmountCell(b.Total, row.Cells[cols.Total].Style)
		if err != nil {
			return fmt.Errorf("total of bill for %q: %w", b.Store, err)
		}
		row.Cells[cols.Total] = totalCell
	}
	return nil
}

// =============================================================================
// ITEM ROWS
// =============================================================================

// BuildItemRow constructs a new row for one bill item. The row has the same
// column count as the template and clones its per-column styles. total is
// non-nil only for the group's terminal row.
func BuildItemRow(template *Row, name string, price bill.Amount, total *bill.Amount, cols Columns) (Row, error) {
	width := len(template.Cells)
	if width < cols.Total+1 {
		width = cols.Total + 1
	}
	row := buildStyledBlankRow(template, width)

	setText(&row.Cells[cols.Item], name)

	priceCell, err := AmountCell(price, row.Cells[cols.Price].Style)
	if err != nil {
		return Row{}, fmt.Errorf("item %q: %w", name, err)
	}
	row.Cells[cols.Price] = priceCell

	if total != nil {
		totalCell, err := AmountCell(*total, row.Cells[cols.Total].Style)
		if err != nil {
			return Row{}, fmt.Errorf("total on item %q: %w", name, err)
		}
		row.Cells[cols.Total] = totalCell
	}
	return row, nil
}

// BuildSeparatorRow constructs a blank row cloning the template's styles.
func BuildSeparatorRow(template *Row) Row {
	return buildStyledBlankRow(template, len(template.Cells))
}

// =============================================================================
// SNAPSHOT / RESTORE
// =============================================================================

// RowSnapshot captures a row's cells — raw values, type markers, formulas
// and styles — for later exact restoration elsewhere in the sheet.
type RowSnapshot struct {
	cells []Cell
}

// SnapshotRow captures the row's content. It returns nil when the row
// carries no data in the STORE..TOTAL range, in which case there is
// nothing worth relocating.
func SnapshotRow(row *Row, cols Columns) *RowSnapshot {
	if !cols.hasData(row) {
		return nil
	}
	snap := &RowSnapshot{cells: make([]Cell, len(row.Cells))}
	copy(snap.cells, row.Cells)
	return snap
}

// RestoreRow reconstructs a new row from a snapshot for re-insertion below
// the data that displaced it.
func (s *RowSnapshot) RestoreRow() Row {
	row := Row{Cells: make([]Cell, len(s.cells))}
	copy(row.Cells, s.cells)
	return row
}

// =============================================================================
// HELPERS
// =============================================================================

// growRow extends a row with empty cells up to the given width. Touched
// rows always cover the full DATE..TOTAL prefix.
func growRow(row *Row, width int) {
	for len(row.Cells) < width {
		row.Cells = append(row.Cells, Cell{})
	}
}

// setText sets a text value while keeping the cell's style and wiping any
// stale formula.
func setText(c *Cell, s string) {
	style := c.Style
	c.Clear()
	*c = TextCell(s, style)
}
