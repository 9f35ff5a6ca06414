package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mokshchadha/invoice-ocr/internal/domain"
)

const sheetName = "Analyses"

// WriteXLSX writes stored analyses as an Excel workbook.
func WriteXLSX(w io.Writer, analyses []domain.Analysis) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	for col, name := range listColumns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return err
		}
	}

	for i := range analyses {
		a := &analyses[i]
		values := []interface{}{
			a.ID,
			a.FileName,
			string(a.DocumentType),
			a.ModelUsed,
			a.ProcessedAt.Format(time.RFC3339),
			formatBool(a.IsRawFallback()),
			string(a.AnalysisJSON),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
