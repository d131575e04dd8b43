package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/JakeFAU/contract-extractor/internal/contracts"
)

const sheetName = "Contract Metadata"

// WriteXLSX renders the same table as WriteCSV into a workbook and returns
// the file bytes.
func WriteXLSX(results []contracts.ExtractionResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	write := func(col, rowNum int, v string) error {
		cell, err := excelize.CoordinatesToCellName(col, rowNum)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheetName, cell, v)
	}

	for i, h := range Columns() {
		if err := write(i+1, 1, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}
	for i, r := range results {
		for col, v := range row(r) {
			if err := write(col+1, i+2, v); err != nil {
				return nil, fmt.Errorf("write row for %s: %w", r.Item.Name, err)
			}
		}
	}

	// File name, entity and notes columns need room.
	_ = f.SetColWidth(sheetName, "A", "A", 32)
	_ = f.SetColWidth(sheetName, "D", "E", 28)
	_ = f.SetColWidth(sheetName, "Q", "R", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
