package export

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/JakeFAU/contract-extractor/internal/contracts"
)

const timeRounding = 100 * time.Millisecond

// Rough per-document usage for the cost line; extraction prompts plus the
// JSON response land near this on typical contracts.
const (
	avgTokensPerDoc      = 2000
	costPerMillionTokens = 0.15
)

// WriteSummary prints the batch roll-up with language and confidence
// histograms, languages sorted by count then name.
func WriteSummary(w io.Writer, s contracts.BatchSummary) error {
	if _, err := fmt.Fprintf(w, "\nExtraction complete in %s: %d succeeded, %d failed of %d\n",
		s.Elapsed.Round(timeRounding), s.Succeeded, s.Failed, s.Total); err != nil {
		return err
	}

	if len(s.Languages) > 0 {
		fmt.Fprintln(w, "\nLanguages:")
		for _, lang := range sortedKeys(s.Languages) {
			fmt.Fprintf(w, "   %-8s %d\n", lang, s.Languages[lang])
		}
	}

	if len(s.Confidence) > 0 {
		fmt.Fprintln(w, "\nConfidence:")
		for _, level := range []contracts.Confidence{contracts.ConfidenceHigh, contracts.ConfidenceMedium, contracts.ConfidenceLow} {
			if n, ok := s.Confidence[level]; ok {
				fmt.Fprintf(w, "   %-8s %d\n", level, n)
			}
		}
	}

	if s.Succeeded > 0 {
		tokens := int64(s.Succeeded) * avgTokensPerDoc
		cost := float64(tokens) / 1_000_000 * costPerMillionTokens
		fmt.Fprintf(w, "\nEstimated usage: ~%d tokens ($%.2f)\n", tokens, cost)
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
