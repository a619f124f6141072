// =============================================================================
// Bill Analyzer - Bill Group Scanning
// =============================================================================
//
// A bill group is never materialized in the data model. It is inferred by
// scanning: one header row carrying date and store, zero or more item rows
// (date/store columns empty), terminated by the row carrying the group
// total. A group ends at the next row whose date or store column is
// non-empty, or at end of sheet.
//
// The boundary-inference routines here are shared by duplicate detection
// and by diagnostics, so the scan rules exist exactly once.
//
// =============================================================================

package ledger

// GroupBounds describes one inferred bill group.
type GroupBounds struct {
	// Header is the index of the row the scan started from (the row
	// carrying the group's date).
	Header int

	// StoreRow is the index of the first row in the group with a
	// non-empty store cell, or -1 when the group has none.
	StoreRow int

	// TotalRow is the index of the first row at or after StoreRow whose
	// total cell parses to a number, or -1 when the group has none.
	TotalRow int
}

// ScanGroupBoundaries infers the bounds of the bill group whose header row
// is at start. It is purely informational: duplicate matching against a
// specific store name goes through FindStoreInGroup/FindTotalInGroup, which
// share the same boundary rules.
func ScanGroupBoundaries(sheet *Sheet, start int, cols Columns) GroupBounds {
	bounds := GroupBounds{Header: start, StoreRow: -1, TotalRow: -1}

	for idx := start; idx < len(sheet.Rows); idx++ {
		if idx != start && !cellEmpty(&sheet.Rows[idx], cols.Date) {
			break
		}
		if !cellEmpty(&sheet.Rows[idx], cols.Store) {
			bounds.StoreRow = idx
			break
		}
	}
	if bounds.StoreRow < 0 {
		return bounds
	}

	if idx, _, ok := FindTotalInGroup(sheet, bounds.StoreRow, cols); ok {
		bounds.TotalRow = idx
	}
	return bounds
}

// FindStoreInGroup scans forward from start for the nearest row whose store
// cell (case-folded, trimmed) equals the given normalized store name.
//
// The attempt aborts — ok=false — when a row after start carries a
// non-empty date cell before a store match is found: the group under start
// ended without a match. Rows with non-matching store names are skipped,
// not treated as boundaries, so a second group on the same date can still
// match a later scan starting at its own header.
func FindStoreInGroup(sheet *Sheet, start int, store string, cols Columns) (int, bool) {
	for idx := start; idx < len(sheet.Rows); idx++ {
		row := &sheet.Rows[idx]

		if idx != start && !cellEmpty(row, cols.Date) {
			return 0, false
		}

		cell := row.Cell(cols.Store)
		if cell == nil || cell.IsEmpty() {
			continue
		}
		if cell.NormalizedText() != store {
			continue
		}
		return idx, true
	}
	return 0, false
}

// FindTotalInGroup scans forward from start for the nearest row whose total
// cell parses to a number, stripping a leading formula marker and
// evaluating simple "+"/"*" expressions.
//
// The attempt aborts when a row after start carries a non-empty date or
// store cell before a total is found: that row opens a different group.
func FindTotalInGroup(sheet *Sheet, start int, cols Columns) (int, float64, bool) {
	for idx := start; idx < len(sheet.Rows); idx++ {
		row := &sheet.Rows[idx]

		if idx != start && (!cellEmpty(row, cols.Date) || !cellEmpty(row, cols.Store)) {
			return 0, 0, false
		}

		cell := row.Cell(cols.Total)
		if cell == nil || cell.IsEmpty() {
			continue
		}
		v, ok := cell.AmountValue()
		if !ok {
			continue
		}
		return idx, v, true
	}
	return 0, 0, false
}

// cellEmpty treats a missing cell like an empty one.
func cellEmpty(row *Row, col int) bool {
	cell := row.Cell(col)
	return cell == nil || cell.IsEmpty()
}
