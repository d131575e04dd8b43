package contracts

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsRetryable(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"typed rate limit", &RateLimitError{StatusCode: 429, Err: errors.New("quota")}, true},
		{"wrapped rate limit", fmt.Errorf("extract: %w", &RateLimitError{Err: errors.New("x")}), true},
		{"textual 429", errors.New("api error 429: too many requests"), true},
		{"textual rate limit", errors.New("Rate limit exceeded for deployment"), true},
		{"textual rate-limit", errors.New("rate-limit hit"), true},
		{"auth failure", errors.New("401 unauthorized"), false},
		{"parse error", errors.New("invalid character 'x' looking for beginning of value"), false},
		{"generic", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestRateLimitError_Message(t *testing.T) {
	t.Parallel()
	err := &RateLimitError{StatusCode: 429, Err: errors.New("quota exceeded")}
	require.Contains(t, err.Error(), "429")
	require.Contains(t, err.Error(), "quota exceeded")
	require.Equal(t, "quota exceeded", errors.Unwrap(err).Error())
}

func TestMetadata_MissingCriticalFields(t *testing.T) {
	t.Parallel()
	m := Metadata{
		CustomerEntity: "Circle K Eesti AS",
		ContractType:   "Supply Agreement",
		EffectiveDate:  "null",
	}
	missing := m.MissingCriticalFields()
	require.Equal(t, []string{"Supplier Entity", "Effective Date"}, missing)

	m.SupplierEntity = "Eesti Toidutarnijad OU"
	m.EffectiveDate = "2024-04-01"
	require.Empty(t, m.MissingCriticalFields())
}

func TestSummarize(t *testing.T) {
	t.Parallel()
	results := []ExtractionResult{
		{Metadata: Metadata{SourceLanguage: "sv", Confidence: ConfidenceHigh}},
		{Metadata: Metadata{SourceLanguage: "sv", Confidence: ConfidenceLow}},
		{Metadata: Metadata{Confidence: ""}},
		{Failed: true, FailReason: "boom"},
	}
	s := Summarize("batch-1", results, 0)
	require.Equal(t, 4, s.Total)
	require.Equal(t, 3, s.Succeeded)
	require.Equal(t, 1, s.Failed)
	require.Equal(t, 2, s.Languages["sv"])
	require.Equal(t, 1, s.Languages["unknown"])
	require.Equal(t, 1, s.Confidence[ConfidenceMedium])
}

func TestWorkItem_Extension(t *testing.T) {
	t.Parallel()
	require.Equal(t, ".pdf", WorkItem{Name: "Contract.PDF"}.Extension())
	require.Equal(t, ".docx", WorkItem{Name: "contracts/avtal.docx"}.Extension())
	require.Equal(t, "", WorkItem{Name: "README"}.Extension())
}
