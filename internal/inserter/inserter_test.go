package inserter

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juliweber/bill-analyzer/internal/bill"
	"github.com/juliweber/bill-analyzer/internal/ledger"
	"github.com/juliweber/bill-analyzer/pkg/utils"
)

// =============================================================================
// FAKE DOCUMENT STORE
// =============================================================================

// fakeStore is an in-memory DocumentStore. Save can be rigged to corrupt
// the file before failing, to prove the rollback restores the original.
type fakeStore struct {
	doc *ledger.Document

	openErr       error
	saveErr       error
	corruptOnSave []byte
	savedDoc      *ledger.Document
	savedBytes    []byte
	saveCallCount int
	openCallCount int
}

func (f *fakeStore) Open(path string) (*ledger.Document, error) {
	f.openCallCount++
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.doc.Path = path
	return f.doc, nil
}

func (f *fakeStore) Save(doc *ledger.Document, path string) error {
	f.saveCallCount++
	if f.corruptOnSave != nil {
		if err := os.WriteFile(path, f.corruptOnSave, 0o644); err != nil {
			return err
		}
	}
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedDoc = doc
	f.savedBytes = []byte("saved")
	return os.WriteFile(path, f.savedBytes, 0o644)
}

// =============================================================================
// TEST HELPERS
// =============================================================================

const ledgerContent = "original ledger bytes"

// newLedgerFile writes a ledger file with known content into a temp dir.
func newLedgerFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	require.NoError(t, os.WriteFile(path, []byte(ledgerContent), 0o644))
	return path
}

func dataRow(date, store, item, price, total string) ledger.Row {
	return ledger.Row{Cells: []ledger.Cell{
		{},
		ledger.TextCell(date, 0),
		ledger.TextCell(store, 0),
		ledger.TextCell(item, 0),
		ledger.TextCell(price, 0),
		ledger.TextCell(total, 0),
	}}
}

func singleItemBill(store, date, price string) bill.Bill {
	return bill.Bill{
		Store: store,
		Date:  date,
		Items: []bill.Item{{Name: "Posten", Price: bill.Amount{Raw: price}}},
		Total: bill.Amount{Raw: price},
	}
}

func newInserter(store DocumentStore, path string) *Inserter {
	return New(store, path, ".backup", ledger.DefaultColumns(), zerolog.Nop())
}

// =============================================================================
// BATCH LIFECYCLE
// =============================================================================

func TestProcessBatch_EmptyBatchIsNoOp(t *testing.T) {
	path := newLedgerFile(t)
	store := &fakeStore{doc: &ledger.Document{}}

	ins := newInserter(store, path)
	require.NoError(t, ins.ProcessBatch(nil))

	assert.Equal(t, StateIdle, ins.State())
	assert.Equal(t, 0, store.openCallCount)
	assert.False(t, utils.FileExists(path+".backup"))
}

func TestProcessBatch_SuccessRemovesBackup(t *testing.T) {
	path := newLedgerFile(t)
	store := &fakeStore{doc: &ledger.Document{Sheets: []*ledger.Sheet{
		{Name: "Dec 25"},
	}}}

	ins := newInserter(store, path)
	require.NoError(t, ins.ProcessBatch([]bill.Bill{
		singleItemBill("REWE", "10.12.25", "1.19"),
	}))

	assert.Equal(t, StateSaved, ins.State())
	assert.Equal(t, 1, store.saveCallCount)
	assert.False(t, utils.FileExists(path+".backup"), "backup must be removed after a successful save")
}

func TestProcessBatch_UnparsableDateFailsBeforeBackup(t *testing.T) {
	path := newLedgerFile(t)
	store := &fakeStore{doc: &ledger.Document{}}

	ins := newInserter(store, path)
	err := ins.ProcessBatch([]bill.Bill{
		singleItemBill("REWE", "10.12.25", "1.19"),
		singleItemBill("Edeka", "not a date", "2.49"),
	})
	require.Error(t, err)

	// Nothing was touched: no backup, no load, original bytes intact.
	assert.Equal(t, StateIdle, ins.State())
	assert.Equal(t, 0, store.openCallCount)
	assert.False(t, utils.FileExists(path+".backup"))

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, ledgerContent, string(data))
}

func TestProcessBatch_SaveFailureRestoresOriginalBytes(t *testing.T) {
	path := newLedgerFile(t)
	store := &fakeStore{
		doc: &ledger.Document{Sheets: []*ledger.Sheet{
			{Name: "Dec 25"},
		}},
		corruptOnSave: []byte("half-written garbage"),
		saveErr:       fmt.Errorf("disk full"),
	}

	ins := newInserter(store, path)
	err := ins.ProcessBatch([]bill.Bill{
		singleItemBill("REWE", "10.12.25", "1.19"),
	})
	require.ErrorContains(t, err, "disk full")

	assert.Equal(t, StateRolledBack, ins.State())

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, ledgerContent, string(data), "ledger must be restored byte-for-byte")

	// The backup stays behind as evidence of the aborted run.
	assert.True(t, utils.FileExists(path+".backup"))
}

func TestProcessBatch_OpenFailureRollsBack(t *testing.T) {
	path := newLedgerFile(t)
	store := &fakeStore{
		doc:     &ledger.Document{},
		openErr: fmt.Errorf("workbook corrupt"),
	}

	ins := newInserter(store, path)
	err := ins.ProcessBatch([]bill.Bill{
		singleItemBill("REWE", "10.12.25", "1.19"),
	})
	require.ErrorContains(t, err, "workbook corrupt")

	assert.Equal(t, StateRolledBack, ins.State())
	assert.Equal(t, 0, store.saveCallCount)

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, ledgerContent, string(data))
}

// =============================================================================
// BILL PLACEMENT
// =============================================================================

func TestProcessBatch_SortsBillsByDate(t *testing.T) {
	path := newLedgerFile(t)
	sheet := &ledger.Sheet{Name: "Dec 25"}
	store := &fakeStore{doc: &ledger.Document{Sheets: []*ledger.Sheet{sheet}}}

	ins := newInserter(store, path)
	require.NoError(t, ins.ProcessBatch([]bill.Bill{
		singleItemBill("Spaeter", "11.12.25", "3.29"),
		singleItemBill("Frueher", "9.12.25", "1.19"),
		singleItemBill("Mitte", "10.12.25", "2.49"),
	}))

	cols := ledger.DefaultColumns()
	var order []string
	for idx := range sheet.Rows {
		if cell := sheet.Rows[idx].Cell(cols.Store); cell != nil && !cell.IsEmpty() {
			order = append(order, cell.Text)
		}
	}
	assert.Equal(t, []string{"Frueher", "Mitte", "Spaeter"}, order)
}

func TestProcessBatch_MissingSheetSkipsBillButSaves(t *testing.T) {
	path := newLedgerFile(t)
	decSheet := &ledger.Sheet{Name: "Dec 25"}
	store := &fakeStore{doc: &ledger.Document{Sheets: []*ledger.Sheet{decSheet}}}

	ins := newInserter(store, path)
	require.NoError(t, ins.ProcessBatch([]bill.Bill{
		singleItemBill("REWE", "10.12.25", "1.19"),
		singleItemBill("Edeka", "10.1.26", "2.49"), // no "Jan 26" sheet
	}))

	assert.Equal(t, StateSaved, ins.State())
	assert.Equal(t, 1, store.saveCallCount)

	cols := ledger.DefaultColumns()
	_, found := ledger.FindDateRow(decSheet, mustDate(t, "10.12.25"), cols)
	assert.True(t, found, "the bill with an existing sheet must still land")
}

func TestProcessBatch_MultiItemBillLayout(t *testing.T) {
	path := newLedgerFile(t)
	sheet := &ledger.Sheet{Name: "Dec 25"}
	store := &fakeStore{doc: &ledger.Document{Sheets: []*ledger.Sheet{sheet}}}

	b := bill.Bill{
		Store: "REWE",
		Date:  "10.12.25",
		Items: []bill.Item{
			{Name: "Milch", Price: bill.Amount{Raw: "1.19"}},
			{Name: "Brot", Price: bill.Amount{Raw: "2.49"}},
			{Name: "Joghurt", Price: bill.Amount{Raw: "=4*0,59"}},
		},
		Total: bill.Amount{Raw: "6.04"},
	}

	ins := newInserter(store, path)
	require.NoError(t, ins.InsertSingle(b))

	cols := ledger.DefaultColumns()
	headerIdx, found := ledger.FindDateRow(sheet, mustDate(t, "10.12.25"), cols)
	require.True(t, found)

	header := &sheet.Rows[headerIdx]
	assert.Equal(t, "REWE", header.Cell(cols.Store).Text)
	assert.Equal(t, "Milch", header.Cell(cols.Item).Text)
	assert.True(t, header.Cell(cols.Total).IsEmpty(), "multi-item header carries no total")

	second := &sheet.Rows[headerIdx+1]
	assert.Equal(t, "Brot", second.Cell(cols.Item).Text)
	assert.True(t, second.Cell(cols.Date).IsEmpty())
	assert.True(t, second.Cell(cols.Store).IsEmpty())

	terminal := &sheet.Rows[headerIdx+2]
	assert.Equal(t, "Joghurt", terminal.Cell(cols.Item).Text)
	assert.Equal(t, "=4*0.59", terminal.Cell(cols.Price).Formula)

	total, ok := terminal.Cell(cols.Total).AmountValue()
	require.True(t, ok)
	assert.InDelta(t, 6.04, total, 1e-9)
}

func TestProcessBatch_RelocatesPriorBillOnSameDate(t *testing.T) {
	path := newLedgerFile(t)
	sheet := &ledger.Sheet{Name: "Dec 25", Rows: []ledger.Row{
		dataRow("10.12.25", "Edeka", "Brot", "2.49", "2.49"),
	}}
	store := &fakeStore{doc: &ledger.Document{Sheets: []*ledger.Sheet{sheet}}}

	ins := newInserter(store, path)
	require.NoError(t, ins.InsertSingle(singleItemBill("REWE", "10.12.25", "1.19")))

	cols := ledger.DefaultColumns()

	// The new bill owns the original date row.
	assert.Equal(t, "REWE", sheet.Rows[0].Cell(cols.Store).Text)

	// A separator, then the prior bill's content, relocated unchanged.
	assert.True(t, sheet.Rows[1].Cell(cols.Store) == nil || sheet.Rows[1].Cell(cols.Store).IsEmpty())
	relocated := &sheet.Rows[2]
	assert.Equal(t, "Edeka", relocated.Cell(cols.Store).Text)
	assert.Equal(t, "Brot", relocated.Cell(cols.Item).Text)
	assert.Equal(t, "10.12.25", relocated.Cell(cols.Date).Text)
}

// mustDate parses a day-first date or fails the test.
func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := bill.ParseDate(s)
	require.NoError(t, err)
	return d
}
