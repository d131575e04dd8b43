package sinks

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/contract-extractor/internal/progress"
)

const timeUnit = 10 * time.Millisecond

// LogSink mirrors progress events into structured logs for debugging and
// audits where console scrollback is unavailable.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs the event using structured fields.
func (s *LogSink) Consume(_ context.Context, evt progress.Event) error {
	fields := []zap.Field{
		zap.String("batch_id", evt.BatchID),
		zap.String("kind", string(evt.Kind)),
		zap.String("name", evt.Name),
		zap.Int("completed", evt.Completed),
		zap.Int("total", evt.Total),
		zap.Int("succeeded", evt.Succeeded),
		zap.Int("failed", evt.Failed),
	}
	switch evt.Kind {
	case progress.KindRetryWait:
		fields = append(fields, zap.Int("attempt", evt.Attempt), zap.Duration("wait", evt.Wait))
	case progress.KindItemDone:
		fields = append(fields,
			zap.Bool("success", evt.Success),
			zap.String("language", evt.Language),
			zap.String("confidence", string(evt.Confidence)),
			zap.Duration("dur", evt.Dur),
		)
		if evt.Note != "" {
			fields = append(fields, zap.String("note", evt.Note))
		}
	}
	s.logger.Info("progress event", fields...)
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}

func upperOrUnknown(lang string) string {
	if lang == "" {
		return "UNKNOWN"
	}
	return strings.ToUpper(lang)
}
