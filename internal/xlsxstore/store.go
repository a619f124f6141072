// =============================================================================
// Bill Analyzer - XLSX Document Store
// =============================================================================
//
// This module is the only place that touches the workbook format. It loads
// the ledger file into the in-memory ledger model and writes mutated sheets
// back. Everything row- and group-related operates on the model; excelize
// is an implementation detail of this package.
//
// LOADING RULES:
//   - Every sheet is read to its full rectangular width so that trailing
//     unused columns survive a round trip, values and styles alike.
//   - Cell values are typed into the ledger's closed variant: numeric text
//     becomes a number, canonical ISO dates become typed dates, everything
//     else stays text. Day-first date text ("10.12.25") deliberately stays
//     text; the row locator parses it on demand.
//   - Cell formulas and style IDs are captured verbatim. Style IDs are
//     opaque tokens to the rest of the engine.
//
// SAVING RULES:
//   - Only sheets marked dirty by the mutation phase are rewritten, so
//     untouched months keep their exact original cells.
//   - Save overwrites the target file and is NOT atomic by itself;
//     atomicity comes from the inserter's backup/rollback wrapper.
//
// =============================================================================

package xlsxstore

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/juliweber/bill-analyzer/internal/ledger"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrDocumentNotFound is returned when the ledger file does not exist.
var ErrDocumentNotFound = errors.New("ledger document not found")

// ErrDocumentCorrupt is returned when the ledger file cannot be parsed.
var ErrDocumentCorrupt = errors.New("ledger document corrupt")

// =============================================================================
// STORE
// =============================================================================

// Store loads and persists ledger documents in XLSX format.
type Store struct{}

// New returns a ready Store.
func New() *Store {
	return &Store{}
}

// Open reads the workbook at path into the ledger model.
func (s *Store) Open(path string) (*ledger.Document, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
		}
		return nil, fmt.Errorf("stat ledger file: %w", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDocumentCorrupt, path, err)
	}
	defer f.Close()

	doc := &ledger.Document{Path: path}
	for _, name := range f.GetSheetList() {
		sheet, err := loadSheet(f, name)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		doc.Sheets = append(doc.Sheets, sheet)
	}
	return doc, nil
}

// Save writes the document back to path, overwriting the existing file.
// Sheets that were never marked dirty are left untouched in the workbook.
func (s *Store) Save(doc *ledger.Document, path string) error {
	f, err := excelize.OpenFile(doc.Path)
	if err != nil {
		return fmt.Errorf("reopen ledger file: %w", err)
	}
	defer f.Close()

	for _, sheet := range doc.Sheets {
		if !sheet.Dirty {
			continue
		}
		if err := writeSheet(f, sheet); err != nil {
			return fmt.Errorf("sheet %q: %w", sheet.Name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save ledger file: %w", err)
	}
	return nil
}

// =============================================================================
// SHEET LOADING
// =============================================================================

// loadSheet reads one sheet to its full rectangular width.
func loadSheet(f *excelize.File, name string) (*ledger.Sheet, error) {
	values, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	width := 0
	for _, row := range values {
		if len(row) > width {
			width = len(row)
		}
	}

	sheet := &ledger.Sheet{Name: name}
	for rowIdx, rowValues := range values {
		row := ledger.Row{Cells: make([]ledger.Cell, width)}
		for colIdx := 0; colIdx < width; colIdx++ {
			cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return nil, err
			}

			value := ""
			if colIdx < len(rowValues) {
				value = rowValues[colIdx]
			}
			cell := typeValue(value)

			if styleID, err := f.GetCellStyle(name, cellName); err == nil && styleID != 0 {
				cell.Style = ledger.StyleRef(styleID)
			}
			if formula, err := f.GetCellFormula(name, cellName); err == nil && formula != "" {
				cell.Formula = normalizeFormula(formula)
			}
			row.Cells[colIdx] = cell
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

// typeValue converts a display value into the ledger's tagged cell variant.
func typeValue(value string) ledger.Cell {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ledger.Cell{}
	}
	if t, err := time.Parse("2006-01-02", trimmed); err == nil {
		return ledger.DateCell(t, 0)
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return ledger.NumberCell(n, 0)
	}
	return ledger.TextCell(value, 0)
}

// normalizeFormula stores formulas with a leading "=" marker.
func normalizeFormula(formula string) string {
	if strings.HasPrefix(formula, "=") {
		return formula
	}
	return "=" + formula
}

// =============================================================================
// SHEET WRITING
// =============================================================================

// writeSheet writes every cell of a dirty sheet back into the workbook.
// The model only ever grows a sheet, so writing the full model rectangle
// covers all previously occupied coordinates.
func writeSheet(f *excelize.File, sheet *ledger.Sheet) error {
	for rowIdx := range sheet.Rows {
		row := &sheet.Rows[rowIdx]
		for colIdx := range row.Cells {
			cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return err
			}
			if err := writeCell(f, sheet.Name, cellName, &row.Cells[colIdx]); err != nil {
				return fmt.Errorf("cell %s: %w", cellName, err)
			}
		}
	}
	return nil
}

// writeCell applies one model cell to the workbook.
func writeCell(f *excelize.File, sheetName, cellName string, cell *ledger.Cell) error {
	// Formulas first: a cell either carries a formula or a plain value.
	// An empty formula string deletes any leftover formula at this spot.
	formula := strings.TrimPrefix(cell.Formula, "=")
	if err := f.SetCellFormula(sheetName, cellName, formula); err != nil {
		return err
	}

	if cell.Formula == "" {
		switch cell.Kind {
		case ledger.KindNumber:
			if err := f.SetCellValue(sheetName, cellName, cell.Number); err != nil {
				return err
			}
		case ledger.KindDate:
			// Dates are persisted in canonical ISO text form so that a
			// round trip through the store is deterministic.
			if err := f.SetCellStr(sheetName, cellName, cell.Date.Format("2006-01-02")); err != nil {
				return err
			}
		case ledger.KindText:
			if err := f.SetCellStr(sheetName, cellName, cell.Text); err != nil {
				return err
			}
		default:
			if err := f.SetCellStr(sheetName, cellName, ""); err != nil {
				return err
			}
		}
	}

	if cell.Style != 0 {
		if err := f.SetCellStyle(sheetName, cellName, cellName, int(cell.Style)); err != nil {
			return err
		}
	}
	return nil
}
