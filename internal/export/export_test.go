package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JakeFAU/contract-extractor/internal/contracts"
)

func sampleResults() []contracts.ExtractionResult {
	ts := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	return []contracts.ExtractionResult{
		{
			Item: contracts.WorkItem{Name: "avtal_2024.docx", Source: contracts.SourceLocal},
			Metadata: contracts.Metadata{
				CustomerEntity:     "Circle K Sverige AB",
				SupplierEntity:     "Scandinavian Food Suppliers AB",
				EffectiveDate:      "2024-04-01",
				TermType:           "Evergreen",
				GoverningLaw:       "Swedish law",
				ContractType:       "Supply Agreement",
				ContractCurrency:   "SEK",
				PaymentTerm:        "Net 60",
				TerminationForConv: "Yes",
				TerminationNotice:  "90 days",
				TerminationParty:   "Both parties",
				SourceLanguage:     "sv",
				Confidence:         contracts.ConfidenceHigh,
				ExtractedAt:        ts,
			},
			AttemptsUsed: 1,
		},
		{
			Item:         contracts.WorkItem{Name: "skan.pdf", Source: contracts.SourceLocal},
			Failed:       true,
			FailReason:   "no OCR engine configured for PDF input",
			AttemptsUsed: 1,
		},
	}
}

func TestWriteCSV_TableShape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResults()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	header := rows[0]
	require.Equal(t, "File Name", header[0])
	require.Equal(t, "Source Language", header[1])
	require.Equal(t, "Extraction Timestamp", header[2])
	require.Equal(t, "Customer (CK) Entity", header[3])
	require.Equal(t, "Error", header[len(header)-1])
	require.Len(t, header, 3+len(contracts.SirionFields)+3)

	ok := rows[1]
	require.Equal(t, "avtal_2024.docx", ok[0])
	require.Equal(t, "sv", ok[1])
	require.Equal(t, "2026-03-15T10:30:00Z", ok[2])
	require.Equal(t, "Circle K Sverige AB", ok[3])
	require.Equal(t, "high", ok[len(ok)-3])
	require.Empty(t, ok[len(ok)-1])

	failed := rows[2]
	require.Equal(t, "skan.pdf", failed[0])
	require.Equal(t, "no OCR engine configured for PDF input", failed[len(failed)-1])
	for _, v := range failed[1 : len(failed)-1] {
		require.Empty(t, v)
	}
}

func TestWriteCSV_EmptyResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestWriteXLSX_RoundTrip(t *testing.T) {
	data, err := WriteXLSX(sampleResults())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "File Name", rows[0][0])
	require.Equal(t, "avtal_2024.docx", rows[1][0])
	require.Equal(t, "Supply Agreement", rows[1][9])
	require.Equal(t, "skan.pdf", rows[2][0])
}

func TestWriteSummary_Histograms(t *testing.T) {
	results := sampleResults()
	results[0].Metadata.SourceLanguage = "sv"
	summary := contracts.Summarize("batch-1", results, 90*time.Second)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, summary))

	out := buf.String()
	require.Contains(t, out, "1 succeeded, 1 failed of 2")
	require.Contains(t, out, "Languages:")
	require.Contains(t, out, "sv")
	require.Contains(t, out, "Confidence:")
	require.True(t, strings.Contains(out, "high"))
	require.Contains(t, out, "Estimated usage: ~2000 tokens")
}
