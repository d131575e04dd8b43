// Package contracts defines core types shared across subsystems.
package contracts

import (
	"path"
	"strings"
	"time"
)

// SourceKind identifies where a batch's documents come from.
type SourceKind string

// Supported document sources.
const (
	SourceLocal  SourceKind = "local"
	SourceCloud  SourceKind = "cloud"
	SourceMemory SourceKind = "memory"
)

// WorkItem identifies one document to be processed. Items are immutable once
// enumerated and consumed exactly once by a worker.
type WorkItem struct {
	// Name is the displayable file name (blob name or base name on disk).
	Name string
	// Location is the retrievable locator: an absolute path or an object key.
	Location string
	// Source tells the pipeline which store the location belongs to.
	Source SourceKind
}

// Extension returns the lower-cased file extension including the dot.
func (w WorkItem) Extension() string {
	return strings.ToLower(path.Ext(w.Name))
}

// Confidence is the model's self-reported extraction confidence.
type Confidence string

// Confidence levels emitted by the model.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ExtractionMethod records which prompting strategy produced the metadata.
type ExtractionMethod string

// Extraction strategies.
const (
	MethodDirect  ExtractionMethod = "direct"
	MethodTwoCall ExtractionMethod = "two_call_translation"
)

// Metadata is the structured payload extracted from one contract. Field
// values are English; company names stay in their original form.
type Metadata struct {
	CustomerEntity     string `json:"Customer (CK) Entity"`
	SupplierEntity     string `json:"Supplier Entity"`
	EffectiveDate      string `json:"Effective Date"`
	ExpirationDate     string `json:"Expiration Date"`
	TermType           string `json:"Term Type"`
	GoverningLaw       string `json:"Governing Law"`
	ContractType       string `json:"Contract Type"`
	ContractCurrency   string `json:"Contract Currency"`
	PaymentTerm        string `json:"Payment Term"`
	TerminationForConv string `json:"Termination for Convenience"`
	TerminationNotice  string `json:"Notice Period for Termination for Convenience"`
	TerminationParty   string `json:"Party with the Right to Terminate for Convenience"`

	SourceLanguage string     `json:"source_language"`
	Confidence     Confidence `json:"confidence"`
	Notes          string     `json:"extraction_notes"`

	Method      ExtractionMethod `json:"extraction_method,omitempty"`
	ExtractedAt time.Time        `json:"extraction_timestamp"`
}

// ExtractionResult is one WorkItem's final resolution after all attempts.
// Exactly one of Metadata/FailReason is meaningful depending on Failed.
type ExtractionResult struct {
	Item         WorkItem
	Metadata     Metadata
	Failed       bool
	FailReason   string
	AttemptsUsed int
	Duration     time.Duration
}

// BatchSummary aggregates a finished batch for reporting.
type BatchSummary struct {
	BatchID    string
	Total      int
	Succeeded  int
	Failed     int
	Languages  map[string]int
	Confidence map[Confidence]int
	Elapsed    time.Duration
}

// Summarize builds a BatchSummary from a result set.
func Summarize(batchID string, results []ExtractionResult, elapsed time.Duration) BatchSummary {
	s := BatchSummary{
		BatchID:    batchID,
		Total:      len(results),
		Languages:  make(map[string]int),
		Confidence: make(map[Confidence]int),
		Elapsed:    elapsed,
	}
	for _, r := range results {
		if r.Failed {
			s.Failed++
			continue
		}
		s.Succeeded++
		lang := r.Metadata.SourceLanguage
		if lang == "" {
			lang = "unknown"
		}
		s.Languages[lang]++
		conf := r.Metadata.Confidence
		if conf == "" {
			conf = ConfidenceMedium
		}
		s.Confidence[conf]++
	}
	return s
}
