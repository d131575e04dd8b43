// Package export renders batch results as CSV and XLSX tables.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/JakeFAU/contract-extractor/internal/contracts"
)

// Columns is the output header row: identity columns, the 12 metadata
// fields, then the quality columns.
func Columns() []string {
	cols := []string{"File Name", "Source Language", "Extraction Timestamp"}
	cols = append(cols, contracts.SirionFields...)
	cols = append(cols, "Confidence", "Extraction Notes", "Error")
	return cols
}

// row flattens one result. Failed items keep their file name and carry the
// failure reason in the Error column so the output accounts for every input.
func row(r contracts.ExtractionResult) []string {
	out := make([]string, 0, len(contracts.SirionFields)+6)
	if r.Failed {
		out = append(out, r.Item.Name, "", "")
		for range contracts.SirionFields {
			out = append(out, "")
		}
		return append(out, "", "", r.FailReason)
	}
	ts := ""
	if !r.Metadata.ExtractedAt.IsZero() {
		ts = r.Metadata.ExtractedAt.Format(time.RFC3339)
	}
	out = append(out, r.Item.Name, r.Metadata.SourceLanguage, ts)
	out = append(out, r.Metadata.FieldValues()...)
	return append(out, string(r.Metadata.Confidence), r.Metadata.Notes, "")
}

// WriteCSV streams the result table, one row per input document, in the
// order the results resolved.
func WriteCSV(w io.Writer, results []contracts.ExtractionResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range results {
		if err := cw.Write(row(r)); err != nil {
			return fmt.Errorf("write row for %s: %w", r.Item.Name, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
