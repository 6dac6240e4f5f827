// Package xlsx mirrors recorded expenses into a local Excel workbook.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"ledger/internal/core"
	"ledger/internal/sheets"
)

// DefaultSheetName is the worksheet rows are appended to.
const DefaultSheetName = "Expenses"

var header = []string{"Date", "User", "Category", "Amount"}

var _ sheets.ExpenseMirror = (*Workbook)(nil)

// Workbook appends one row per expense to the file at path, creating the
// file and its header row on first use. The file is reopened on every
// append so an operator can copy it out while the worker runs.
type Workbook struct {
	path  string
	sheet string
	mu    sync.Mutex
}

func New(path, sheet string) (*Workbook, error) {
	if path == "" {
		return nil, errors.New("xlsx mirror path is required")
	}
	if sheet == "" {
		sheet = DefaultSheetName
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create mirror directory: %w", err)
	}
	return &Workbook{path: path, sheet: sheet}, nil
}

// Append writes e below the last used row and returns its cell range.
func (w *Workbook) Append(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	rows, err := f.GetRows(w.sheet)
	if err != nil {
		return "", fmt.Errorf("read rows: %w", err)
	}
	row := len(rows) + 1

	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return "", err
	}
	amount, _ := e.Amount.Decimal().Float64()
	values := []any{e.CreatedAt.UTC().Format(time.DateTime), e.UserID, e.Category, amount}
	if err := f.SetSheetRow(w.sheet, cell, &values); err != nil {
		return "", fmt.Errorf("write row %d: %w", row, err)
	}

	if err := f.SaveAs(w.path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}

	ref := fmt.Sprintf("%s!A%d:D%d", w.sheet, row, row)
	slog.DebugContext(ctx, "Expense appended to workbook", "id", e.ID, "range", ref)
	return ref, nil
}

func (w *Workbook) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(w.path)
	if err == nil {
		if idx, _ := f.GetSheetIndex(w.sheet); idx >= 0 {
			return f, nil
		}
		if err := w.addSheet(f); err != nil {
			f.Close()
			return nil, err
		}
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	f = excelize.NewFile()
	if err := w.addSheet(f); err != nil {
		f.Close()
		return nil, err
	}
	// drop the default sheet a new file starts with
	if w.sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			f.Close()
			return nil, fmt.Errorf("remove default sheet: %w", err)
		}
	}
	return f, nil
}

func (w *Workbook) addSheet(f *excelize.File) error {
	index, err := f.NewSheet(w.sheet)
	if err != nil {
		return fmt.Errorf("create sheet %s: %w", w.sheet, err)
	}
	f.SetActiveSheet(index)

	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(w.sheet, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	f.SetColWidth(w.sheet, "A", "A", 20)
	f.SetColWidth(w.sheet, "C", "C", 15)
	return nil
}
