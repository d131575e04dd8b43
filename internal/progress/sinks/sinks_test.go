package sinks

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/contract-extractor/internal/contracts"
	"github.com/JakeFAU/contract-extractor/internal/progress"
)

func doneEvent(completed, total int, success bool) progress.Event {
	evt := progress.Event{
		BatchID:    "batch-1",
		TS:         time.Now(),
		Kind:       progress.KindItemDone,
		Name:       "avtal_2024.docx",
		Total:      total,
		Completed:  completed,
		Succeeded:  completed,
		Success:    success,
		Language:   "sv",
		Confidence: contracts.ConfidenceHigh,
		Dur:        1200 * time.Millisecond,
	}
	if !success {
		evt.Succeeded = completed - 1
		evt.Failed = 1
		evt.Note = "unreadable document"
	}
	return evt
}

func TestConsoleSink_LineFormat(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf)

	require.NoError(t, sink.Consume(context.Background(), doneEvent(3, 7, true)))
	require.Contains(t, buf.String(), "[3/7] avtal_2024.docx: OK SV, high")

	buf.Reset()
	require.NoError(t, sink.Consume(context.Background(), doneEvent(4, 7, false)))
	require.Contains(t, buf.String(), "[4/7] avtal_2024.docx: FAILED unreadable document")
}

func TestConsoleSink_RetryLine(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf)

	evt := progress.Event{
		BatchID:   "batch-1",
		TS:        time.Now(),
		Kind:      progress.KindRetryWait,
		Name:      "umowa.pdf",
		Total:     7,
		Completed: 2,
		Attempt:   1,
		Wait:      2 * time.Second,
	}
	require.NoError(t, sink.Consume(context.Background(), evt))
	require.Contains(t, buf.String(), "[2/7] umowa.pdf: rate limited, retrying in 2s (attempt 1)")
}

func TestLogSink_Consume(t *testing.T) {
	t.Parallel()
	sink := NewLogSink(zap.NewNop())
	require.NoError(t, sink.Consume(context.Background(), doneEvent(1, 1, true)))
	require.NoError(t, sink.Close(context.Background()))
}

func TestPrometheusSink_Counters(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	sink, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	start := progress.Event{BatchID: "b", TS: time.Now(), Kind: progress.KindBatchStart, Total: 2}
	require.NoError(t, sink.Consume(context.Background(), start))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.batchesRunning))

	require.NoError(t, sink.Consume(context.Background(), doneEvent(1, 2, true)))
	require.NoError(t, sink.Consume(context.Background(), doneEvent(2, 2, false)))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.itemsCompleted.WithLabelValues("success")))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.itemsCompleted.WithLabelValues("failure")))

	retry := progress.Event{BatchID: "b", TS: time.Now(), Kind: progress.KindRetryWait, Name: "x", Attempt: 1}
	require.NoError(t, sink.Consume(context.Background(), retry))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.retryWaits))

	done := progress.Event{BatchID: "b", TS: time.Now(), Kind: progress.KindBatchDone, Dur: time.Second}
	require.NoError(t, sink.Consume(context.Background(), done))
	require.Equal(t, 0.0, testutil.ToFloat64(sink.batchesRunning))
}

func TestPrometheusSink_DoubleRegisterFails(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusSink(reg)
	require.NoError(t, err)
	_, err = NewPrometheusSink(reg)
	require.Error(t, err)
}
