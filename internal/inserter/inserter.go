// =============================================================================
// Bill Analyzer - Batch Transaction Coordinator
// =============================================================================
//
// Inserts a batch of bill records into the ledger as one atomic file
// mutation. The batch runs as a state machine over a single document:
//
//   Idle -> BackedUp -> Loaded -> Mutating -> {Saved | RolledBack}
//
// The file is backed up before mutation, loaded once, mutated fully in
// memory, and saved once. Any failure after the backup restores the
// original file byte-for-byte and propagates the original error — the
// batch is all-or-nothing with respect to the persisted file. A missing
// month sheet is the one non-fatal case: that bill is skipped with a
// warning and the batch continues.
//
// ORDERING:
//   Bills are stable-sorted by parsed date before insertion. Row placement
//   itself is append-oriented, so this pre-sort is the only mechanism that
//   approximates chronological order in the sheet. Two separate calls in
//   reverse date order give no ordering guarantee.
//
// =============================================================================

package inserter

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/juliweber/bill-analyzer/internal/bill"
	"github.com/juliweber/bill-analyzer/internal/ledger"
	"github.com/juliweber/bill-analyzer/pkg/utils"
)

// =============================================================================
// STATE MACHINE
// =============================================================================

// State is the batch lifecycle state.
type State int

const (
	// StateIdle means no batch is in progress.
	StateIdle State = iota

	// StateBackedUp means the backup file exists and mutation may begin.
	StateBackedUp

	// StateLoaded means the document is in memory.
	StateLoaded

	// StateMutating means bills are being applied to the in-memory document.
	StateMutating

	// StateSaved means the batch was persisted and the backup removed.
	StateSaved

	// StateRolledBack means a failure occurred and the original file was
	// restored from the backup.
	StateRolledBack
)

// =============================================================================
// INSERTER
// =============================================================================

// Inserter coordinates batch insertion into one ledger file. It assumes
// exclusive access to the file for the duration of a batch; concurrent
// batches against the same path must be serialized by the caller.
type Inserter struct {
	store        DocumentStore
	path         string
	backupSuffix string
	cols         ledger.Columns
	log          zerolog.Logger

	state State
}

// New creates an Inserter for the ledger file at path.
func New(store DocumentStore, path, backupSuffix string, cols ledger.Columns, log zerolog.Logger) *Inserter {
	return &Inserter{
		store:        store,
		path:         path,
		backupSuffix: backupSuffix,
		cols:         cols,
		log:          log,
		state:        StateIdle,
	}
}

// State returns the lifecycle state of the most recent batch.
func (i *Inserter) State() State {
	return i.state
}

// datedBill pairs a bill with its parsed date so the batch is parsed once.
type datedBill struct {
	bill bill.Bill
	date time.Time
}

// =============================================================================
// BATCH PROCESSING
// =============================================================================

// ProcessBatch inserts all bills in one atomic document mutation.
// An empty batch is a no-op.
func (i *Inserter) ProcessBatch(bills []bill.Bill) error {
	i.state = StateIdle
	if len(bills) == 0 {
		i.log.Info().Msg("no bills to process")
		return nil
	}

	// Parse and sort before touching the file, so date errors can never
	// leave a half-mutated batch behind. The sort is stable: bills on the
	// same date keep their input order.
	dated := make([]datedBill, 0, len(bills))
	for _, b := range bills {
		d, err := bill.ParseDate(b.Date)
		if err != nil {
			return fmt.Errorf("bill for %q: %w", b.Store, err)
		}
		dated = append(dated, datedBill{bill: b, date: d})
	}
	sort.SliceStable(dated, func(a, b int) bool {
		return dated[a].date.Before(dated[b].date)
	})

	backupPath, err := utils.CreateBackup(i.path, i.backupSuffix)
	if err != nil {
		// No mutation has been attempted; nothing to roll back.
		return fmt.Errorf("backup before batch: %w", err)
	}
	i.state = StateBackedUp

	if err := i.mutateAndSave(dated); err != nil {
		if restoreErr := utils.RestoreBackup(backupPath, i.path); restoreErr != nil {
			i.log.Error().Err(restoreErr).Str("backup", backupPath).
				Msg("restore after failed batch also failed; backup file kept")
		} else {
			i.log.Warn().Str("backup", backupPath).Msg("batch failed, ledger restored from backup")
		}
		i.state = StateRolledBack
		return err
	}

	i.state = StateSaved
	return nil
}

// InsertSingle inserts one bill with the same atomicity guarantees as a
// batch. It is a convenience wrapper, not a separate code path.
func (i *Inserter) InsertSingle(b bill.Bill) error {
	return i.ProcessBatch([]bill.Bill{b})
}

// mutateAndSave is the guarded section of a batch: everything in here runs
// under the backup's protection.
func (i *Inserter) mutateAndSave(dated []datedBill) error {
	doc, err := i.store.Open(i.path)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	i.state = StateLoaded

	i.state = StateMutating
	for idx := range dated {
		i.log.Info().
			Str("store", dated[idx].bill.Store).
			Str("date", dated[idx].date.Format("2006-01-02")).
			Msgf("processing bill %d/%d", idx+1, len(dated))
		if err := i.insertBill(doc, &dated[idx]); err != nil {
			return err
		}
	}

	if err := i.store.Save(doc, i.path); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}

	backupPath := i.path + i.backupSuffix
	if err := utils.RemoveBackup(backupPath); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// SINGLE BILL INSERTION
// =============================================================================

// insertBill applies one bill to the in-memory document.
func (i *Inserter) insertBill(doc *ledger.Document, db *datedBill) error {
	b := &db.bill

	sheetName := ledger.SheetNameForDate(db.date)
	sheet := doc.Sheet(sheetName)
	if sheet == nil {
		// Non-fatal: the ledger simply has no month sheet for this bill.
		i.log.Warn().Str("sheet", sheetName).Str("store", b.Store).
			Msg("sheet not found - skipping bill")
		return nil
	}

	idx, found := ledger.FindDateRow(sheet, db.date, i.cols)
	if !found {
		i.log.Debug().Str("date", db.date.Format("2006-01-02")).Msg("creating new date row")
		var err error
		idx, err = ledger.CreateDateRow(sheet, db.date, i.cols)
		if err != nil {
			return fmt.Errorf("create date row: %w", err)
		}
	}
	sheet.Dirty = true

	// A second bill may already anchor on this date. Snapshot its row
	// before overwriting so it can be relocated below the new group.
	snapshot := ledger.SnapshotRow(&sheet.Rows[idx], i.cols)

	if err := ledger.WriteHeader(&sheet.Rows[idx], b, i.cols); err != nil {
		return err
	}

	// The row that followed the target before any insertion stays the
	// reference point: every new row goes in front of it, in order.
	template := cloneRow(&sheet.Rows[idx])
	insertAt := idx + 1

	remaining := b.Items[1:]
	for k, item := range remaining {
		var total *bill.Amount
		if k == len(remaining)-1 {
			total = &b.Total
		}
		row, err := ledger.BuildItemRow(&template, item.Name, item.Price, total, i.cols)
		if err != nil {
			return err
		}
		sheet.InsertRow(insertAt, row)
		insertAt++
	}

	if snapshot != nil {
		sheet.InsertRow(insertAt, ledger.BuildSeparatorRow(&template))
		sheet.InsertRow(insertAt+1, snapshot.RestoreRow())
		i.log.Info().Str("store", b.Store).Msg("prior bill on this date relocated below the new one")
	}

	i.log.Info().Str("store", b.Store).Int("items", len(b.Items)).
		Msg("bill inserted")
	return nil
}

// cloneRow deep-copies a row so later slice growth cannot alias it.
func cloneRow(row *ledger.Row) ledger.Row {
	return ledger.Row{Cells: append([]ledger.Cell(nil), row.Cells...)}
}
