package dupcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juliweber/bill-analyzer/internal/bill"
	"github.com/juliweber/bill-analyzer/internal/ledger"
)

// testRow builds a six-column row from display texts, matching the default
// column layout.
func testRow(date, store, item, price, total string) ledger.Row {
	return ledger.Row{Cells: []ledger.Cell{
		{},
		ledger.TextCell(date, 0),
		ledger.TextCell(store, 0),
		ledger.TextCell(item, 0),
		ledger.TextCell(price, 0),
		ledger.TextCell(total, 0),
	}}
}

func testDoc(sheetName string, rows ...ledger.Row) *ledger.Document {
	return &ledger.Document{Sheets: []*ledger.Sheet{
		{Name: sheetName, Rows: rows},
	}}
}

func candidate(store, date, total string) *bill.Bill {
	return &bill.Bill{
		Store: store,
		Date:  date,
		Total: bill.Amount{Raw: total},
	}
}

func TestCheck_ExactDuplicate(t *testing.T) {
	doc := testDoc("Dec 25",
		testRow("10.12.25", "REWE", "Milch", "1.19", ""),
		testRow("", "", "Brot", "2.49", "23.55"),
	)

	report, err := Check(doc, candidate("REWE", "10.12.25", "23.55"), ledger.DefaultColumns())
	require.NoError(t, err)
	assert.True(t, report.Duplicate)
	assert.Equal(t, 0, report.MatchRow)
	assert.Equal(t, "Dec 25", report.SheetName)
}

func TestCheck_StoreMatchIsCaseInsensitive(t *testing.T) {
	doc := testDoc("Dec 25",
		testRow("10.12.25", "  rewe ", "Milch", "1.19", "23.55"),
	)

	report, err := Check(doc, candidate("REWE", "10.12.25", "23.55"), ledger.DefaultColumns())
	require.NoError(t, err)
	assert.True(t, report.Duplicate)
}

func TestCheck_TotalTolerance(t *testing.T) {
	cols := ledger.DefaultColumns()

	tests := []struct {
		name       string
		foundTotal string
		wantDup    bool
	}{
		{
			name:       "identical totals",
			foundTotal: "23.55",
			wantDup:    true,
		},
		{
			name:       "just inside the tolerance",
			foundTotal: "23.559",
			wantDup:    true,
		},
		{
			name:       "difference of exactly one cent is not a duplicate",
			foundTotal: "23.56",
			wantDup:    false,
		},
		{
			name:       "clearly different",
			foundTotal: "42.00",
			wantDup:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := testDoc("Dec 25",
				testRow("10.12.25", "REWE", "Milch", "1.19", tt.foundTotal),
			)

			report, err := Check(doc, candidate("REWE", "10.12.25", "23.55"), cols)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDup, report.Duplicate)
		})
	}
}

func TestCheck_MissingSheetIsNotADuplicate(t *testing.T) {
	doc := testDoc("Nov 25",
		testRow("10.11.25", "REWE", "Milch", "1.19", "23.55"),
	)

	report, err := Check(doc, candidate("REWE", "10.12.25", "23.55"), ledger.DefaultColumns())
	require.NoError(t, err)
	assert.False(t, report.Duplicate)
	assert.True(t, report.SheetMissing)
	assert.Equal(t, "Dec 25", report.SheetName)
}

func TestCheck_NoRowOnDate(t *testing.T) {
	doc := testDoc("Dec 25",
		testRow("9.12.25", "REWE", "Milch", "1.19", "23.55"),
	)

	report, err := Check(doc, candidate("REWE", "10.12.25", "23.55"), ledger.DefaultColumns())
	require.NoError(t, err)
	assert.False(t, report.Duplicate)
	assert.Equal(t, 0, report.DateRows)
}

func TestCheck_SameStoreDifferentTotalIsNearMiss(t *testing.T) {
	doc := testDoc("Dec 25",
		testRow("10.12.25", "REWE", "Milch", "1.19", "12.00"),
	)

	report, err := Check(doc, candidate("REWE", "10.12.25", "23.55"), ledger.DefaultColumns())
	require.NoError(t, err)
	assert.False(t, report.Duplicate)

	require.Len(t, report.NearMisses, 1)
	nm := report.NearMisses[0]
	assert.True(t, nm.StoreMatched)
	assert.InDelta(t, 12.00, nm.FoundTotal, 1e-9)
	assert.InDelta(t, 11.55, nm.Diff, 1e-9)
}

func TestCheck_SameTotalDifferentStoreIsNearMiss(t *testing.T) {
	doc := testDoc("Dec 25",
		testRow("10.12.25", "Edeka", "Milch", "1.19", "23.55"),
	)

	report, err := Check(doc, candidate("REWE", "10.12.25", "23.55"), ledger.DefaultColumns())
	require.NoError(t, err)
	assert.False(t, report.Duplicate)

	require.Len(t, report.NearMisses, 1)
	nm := report.NearMisses[0]
	assert.False(t, nm.StoreMatched)
	assert.Equal(t, "Edeka", nm.FoundStore)
}

func TestCheck_SecondGroupOnSameDateStillMatches(t *testing.T) {
	// Two bills on the same date: the first group belongs to a different
	// store; the candidate matches the second group.
	doc := testDoc("Dec 25",
		testRow("10.12.25", "Edeka", "Brot", "2.49", "2.49"),
		testRow("", "", "", "", ""),
		testRow("10.12.25", "REWE", "Milch", "1.19", "23.55"),
	)

	report, err := Check(doc, candidate("REWE", "10.12.25", "23.55"), ledger.DefaultColumns())
	require.NoError(t, err)
	assert.True(t, report.Duplicate)
	assert.Equal(t, 2, report.MatchRow)
	assert.Equal(t, 2, report.DateRows)
}

func TestCheck_FormulaTotalInLedger(t *testing.T) {
	doc := testDoc("Dec 25",
		testRow("10.12.25", "REWE", "Joghurt", "=4*0,59", "=4*0,59"),
	)

	report, err := Check(doc, candidate("REWE", "10.12.25", "2.36"), ledger.DefaultColumns())
	require.NoError(t, err)
	assert.True(t, report.Duplicate)
}

func TestCheck_Idempotent(t *testing.T) {
	doc := testDoc("Dec 25",
		testRow("10.12.25", "REWE", "Milch", "1.19", "23.55"),
	)
	c := candidate("REWE", "10.12.25", "23.55")
	cols := ledger.DefaultColumns()

	first, err := Check(doc, c, cols)
	require.NoError(t, err)
	second, err := Check(doc, c, cols)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCheck_InvalidCandidate(t *testing.T) {
	doc := testDoc("Dec 25")
	cols := ledger.DefaultColumns()

	_, err := Check(doc, candidate("REWE", "not a date", "23.55"), cols)
	assert.Error(t, err)

	_, err = Check(doc, candidate("REWE", "10.12.25", "not a total"), cols)
	assert.Error(t, err)
}

func TestReport_Messages(t *testing.T) {
	t.Run("missing sheet", func(t *testing.T) {
		r := &Report{SheetName: "Dec 25", SheetMissing: true}
		msgs := r.Messages()
		require.Len(t, msgs, 1)
		assert.Contains(t, msgs[0], "not a duplicate")
	})

	t.Run("no date rows", func(t *testing.T) {
		r := &Report{SheetName: "Dec 25"}
		msgs := r.Messages()
		assert.Contains(t, msgs[0], "no bill on this date")
		assert.Contains(t, msgs[len(msgs)-1], "no match found")
	})

	t.Run("duplicate", func(t *testing.T) {
		r := &Report{SheetName: "Dec 25", Duplicate: true, MatchRow: 4}
		msgs := r.Messages()
		require.Len(t, msgs, 1)
		assert.Contains(t, msgs[0], "row 5")
	})
}
