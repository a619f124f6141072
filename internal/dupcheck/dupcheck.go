// =============================================================================
// Bill Analyzer - Duplicate Bill Detection
// =============================================================================
//
// Detects whether a bill with the same date, store and total already exists
// in the ledger. The check is read-only and runs against a freshly opened
// document; it is unaware of any not-yet-saved in-memory batch, so two
// bills inside the same incoming batch are only ever checked against what
// is already persisted on disk.
//
// MATCHING ALGORITHM (per row carrying the candidate's date):
//   1. Scan forward for the nearest row whose store cell (case-folded,
//      trimmed) equals the candidate's store. The attempt aborts when a
//      later row opens a new group with its own date before a match.
//   2. From the store row, scan forward for the nearest row whose total
//      cell parses to a number (formula marker stripped, "+"/"*"
//      evaluated). Aborts at the next date or store cell.
//   3. Compare totals with an absolute tolerance of 0.01. Within
//      tolerance: duplicate, short-circuit.
//   4. One of store/total matched but not both: a near miss, reported for
//      diagnostics but never treated as a duplicate.
//
// No sheet for the candidate's month means "not a duplicate" by
// definition — there is nothing to compare against.
//
// =============================================================================

package dupcheck

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/juliweber/bill-analyzer/internal/bill"
	"github.com/juliweber/bill-analyzer/internal/ledger"
)

// Epsilon is the absolute tolerance for total comparison. A difference of
// exactly Epsilon is NOT a match.
const Epsilon = 0.01

// =============================================================================
// REPORT
// =============================================================================

// NearMiss records a scanned group that matched one of store/total but not
// both.
type NearMiss struct {
	// Row is the sheet row index the group scan started from.
	Row int

	// StoreMatched is true when the store matched but the total differed.
	StoreMatched bool

	// FoundStore is the store name found in the group.
	FoundStore string

	// FoundTotal is the total found in the group.
	FoundTotal float64

	// Diff is the absolute difference to the candidate's total.
	Diff float64
}

// Report is the result of a duplicate check.
type Report struct {
	// Duplicate is the verdict.
	Duplicate bool

	// SheetName is the resolved month sheet name.
	SheetName string

	// SheetMissing is true when the ledger has no sheet for the
	// candidate's month.
	SheetMissing bool

	// DateRows counts the rows found carrying the candidate's date.
	DateRows int

	// MatchRow is the header row index of the duplicate group, when found.
	MatchRow int

	// NearMisses lists partial matches encountered during the scan.
	NearMisses []NearMiss
}

// Messages renders the diagnostic lines shown in verbose mode.
func (r *Report) Messages() []string {
	if r.SheetMissing {
		return []string{fmt.Sprintf("sheet %q not found - not a duplicate", r.SheetName)}
	}
	if r.Duplicate {
		return []string{fmt.Sprintf("matching bill found at row %d", r.MatchRow+1)}
	}

	var msgs []string
	if r.DateRows == 0 {
		msgs = append(msgs, "no bill on this date")
	}
	for _, nm := range r.NearMisses {
		if nm.StoreMatched {
			msgs = append(msgs, fmt.Sprintf(
				"row %d: same store but different total (%.2f, diff %.2f)",
				nm.Row+1, nm.FoundTotal, nm.Diff))
		} else {
			msgs = append(msgs, fmt.Sprintf(
				"row %d: same total but different store (%q)",
				nm.Row+1, nm.FoundStore))
		}
	}
	msgs = append(msgs, "no match found - not a duplicate")
	return msgs
}

// =============================================================================
// CHECK
// =============================================================================

// Check searches the document for a bill matching the candidate's date,
// store and total. Running it twice on an unmutated document yields the
// same result.
func Check(doc *ledger.Document, candidate *bill.Bill, cols ledger.Columns) (*Report, error) {
	date, err := bill.ParseDate(candidate.Date)
	if err != nil {
		return nil, fmt.Errorf("candidate date: %w", err)
	}
	total, err := candidate.Total.Value()
	if err != nil {
		return nil, fmt.Errorf("candidate total: %w", err)
	}
	store := normalizeStore(candidate.Store)

	report := &Report{SheetName: ledger.SheetNameForDate(date)}

	sheet := doc.Sheet(report.SheetName)
	if sheet == nil {
		report.SheetMissing = true
		return report, nil
	}

	for idx := range sheet.Rows {
		if !rowHasDate(&sheet.Rows[idx], date, cols) {
			continue
		}
		report.DateRows++

		if checkGroup(sheet, idx, store, total, cols, report) {
			report.Duplicate = true
			report.MatchRow = idx
			return report, nil
		}
	}
	return report, nil
}

// checkGroup runs the store/total scan for one date row and records near
// misses on the report. It returns true on a full match.
func checkGroup(sheet *ledger.Sheet, idx int, store string, total float64, cols ledger.Columns, report *Report) bool {
	storeIdx, ok := ledger.FindStoreInGroup(sheet, idx, store, cols)
	if !ok {
		// The group under this date row has no matching store. If its
		// total still matches the candidate, that is worth surfacing.
		bounds := ledger.ScanGroupBoundaries(sheet, idx, cols)
		if bounds.StoreRow >= 0 && bounds.TotalRow >= 0 {
			if _, found, hasTotal := ledger.FindTotalInGroup(sheet, bounds.StoreRow, cols); hasTotal && withinEpsilon(found, total) {
				report.NearMisses = append(report.NearMisses, NearMiss{
					Row:        idx,
					FoundStore: sheet.Rows[bounds.StoreRow].Cell(cols.Store).String(),
					FoundTotal: found,
				})
			}
		}
		return false
	}

	_, found, ok := ledger.FindTotalInGroup(sheet, storeIdx, cols)
	if !ok {
		return false
	}

	if withinEpsilon(found, total) {
		return true
	}

	report.NearMisses = append(report.NearMisses, NearMiss{
		Row:          idx,
		StoreMatched: true,
		FoundStore:   sheet.Rows[storeIdx].Cell(cols.Store).String(),
		FoundTotal:   found,
		Diff:         absDiff(found, total),
	})
	return false
}

// withinEpsilon compares two totals in decimal space, so that a difference
// of exactly one cent never rounds below the tolerance.
func withinEpsilon(a, b float64) bool {
	diff := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs()
	return diff.LessThan(decimal.NewFromFloat(Epsilon))
}

// absDiff returns the absolute difference of two totals in decimal space.
func absDiff(a, b float64) float64 {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs().InexactFloat64()
}

// rowHasDate reports whether the row's date cell parses to the target date.
func rowHasDate(row *ledger.Row, target time.Time, cols ledger.Columns) bool {
	cell := row.Cell(cols.Date)
	if cell == nil || cell.IsEmpty() {
		return false
	}
	d, ok := cell.DateValue()
	return ok && d.Equal(target)
}

// normalizeStore folds a store name for comparison.
func normalizeStore(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
