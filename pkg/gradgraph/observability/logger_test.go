package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHandler captures log records for testing.
type testHandler struct {
	buf    *bytes.Buffer
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func newTestHandler() *testHandler {
	return &testHandler{
		buf:   &bytes.Buffer{},
		level: slog.LevelDebug,
	}
}

func (h *testHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *testHandler) Handle(_ context.Context, r slog.Record) error {
	// Build a map from the record
	data := map[string]any{
		"level": r.Level.String(),
		"msg":   r.Message,
	}

	// Add pre-configured attrs
	for _, attr := range h.attrs {
		data[attr.Key] = attr.Value.Any()
	}

	// Add record attrs
	r.Attrs(func(a slog.Attr) bool {
		data[a.Key] = a.Value.Any()
		return true
	})

	// Encode as JSON
	enc := json.NewEncoder(h.buf)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return nil
}

func (h *testHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newH := &testHandler{
		buf:    h.buf,
		level:  h.level,
		attrs:  make([]slog.Attr, len(h.attrs)+len(attrs)),
		groups: h.groups,
	}
	copy(newH.attrs, h.attrs)
	copy(newH.attrs[len(h.attrs):], attrs)
	return newH
}

func (h *testHandler) WithGroup(name string) slog.Handler {
	newH := &testHandler{
		buf:    h.buf,
		level:  h.level,
		attrs:  h.attrs,
		groups: append(h.groups, name),
	}
	return newH
}

func (h *testHandler) getLastRecord() map[string]any {
	lines := bytes.Split(h.buf.Bytes(), []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		if len(lines[i]) > 0 {
			var m map[string]any
			if err := json.Unmarshal(lines[i], &m); err == nil {
				return m
			}
		}
	}
	return nil
}

func (h *testHandler) getAllRecords() []map[string]any {
	var records []map[string]any
	lines := bytes.Split(h.buf.Bytes(), []byte("\n"))
	for _, line := range lines {
		if len(line) > 0 {
			var m map[string]any
			if err := json.Unmarshal(line, &m); err == nil {
				records = append(records, m)
			}
		}
	}
	return records
}

func TestEnrichLogger(t *testing.T) {
	t.Run("adds run_id and pass", func(t *testing.T) {
		h := newTestHandler()
		logger := slog.New(h)

		enriched := EnrichLogger(logger, "run-123", "forward")
		enriched.Info("test message")

		record := h.getLastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "run-123", record["run_id"])
		assert.Equal(t, "forward", record["pass"])
		assert.Equal(t, "test message", record["msg"])
	})

	t.Run("nil logger returns nil", func(t *testing.T) {
		enriched := EnrichLogger(nil, "run-123", "forward")
		assert.Nil(t, enriched)
	})

	t.Run("empty values are included", func(t *testing.T) {
		h := newTestHandler()
		logger := slog.New(h)

		enriched := EnrichLogger(logger, "", "")
		enriched.Info("test")

		record := h.getLastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "", record["run_id"])
		assert.Equal(t, "", record["pass"])
	})
}

func TestLogPassStart(t *testing.T) {
	t.Run("logs run_id and pass at INFO level", func(t *testing.T) {
		h := newTestHandler()
		logger := slog.New(h)

		LogPassStart(logger, "run-456", "forward", 7)

		record := h.getLastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "INFO", record["level"])
		assert.Equal(t, "pass starting", record["msg"])
		assert.Equal(t, "run-456", record["run_id"])
		assert.Equal(t, "forward", record["pass"])
		assert.Equal(t, float64(7), record["nodes"]) // JSON decodes ints as float64
	})

	t.Run("nil logger does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			LogPassStart(nil, "run-123", "forward", 3)
		})
	})
}

func TestLogPassComplete(t *testing.T) {
	t.Run("logs pass completion with result", func(t *testing.T) {
		h := newTestHandler()
		logger := slog.New(h)

		LogPassComplete(logger, "run-789", "forward", 33.0, 7, 125*time.Millisecond)

		record := h.getLastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "INFO", record["level"])
		assert.Equal(t, "pass completed", record["msg"])
		assert.Equal(t, "run-789", record["run_id"])
		assert.Equal(t, "forward", record["pass"])
		assert.Equal(t, 33.0, record["root"])
		assert.Equal(t, float64(7), record["nodes_evaluated"])
		assert.Equal(t, float64(125*time.Millisecond), record["duration"]) // JSON decodes durations as nanoseconds
	})

	t.Run("nil logger does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			LogPassComplete(nil, "run-123", "backward", 1.0, 3, time.Millisecond)
		})
	})
}

func TestLogPassError(t *testing.T) {
	t.Run("logs pass failure at ERROR level", func(t *testing.T) {
		h := newTestHandler()
		logger := slog.New(h)
		testErr := errors.New("division by zero")

		LogPassError(logger, "run-err", "backward", testErr, 50*time.Millisecond)

		record := h.getLastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "ERROR", record["level"])
		assert.Equal(t, "pass failed", record["msg"])
		assert.Equal(t, "run-err", record["run_id"])
		assert.Equal(t, "backward", record["pass"])
		assert.Equal(t, "division by zero", record["error"])
		assert.Equal(t, float64(50*time.Millisecond), record["duration"])
	})

	t.Run("nil logger does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			LogPassError(nil, "run", "forward", errors.New("err"), 0)
		})
	})
}

func TestLogRecordError(t *testing.T) {
	t.Run("logs at ERROR level", func(t *testing.T) {
		h := newTestHandler()
		logger := slog.New(h)
		testErr := errors.New("store closed")

		LogRecordError(logger, "run-rec", "forward", testErr)

		record := h.getLastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "ERROR", record["level"])
		assert.Equal(t, "pass record failed", record["msg"])
		assert.Equal(t, "run-rec", record["run_id"])
		assert.Equal(t, "forward", record["pass"])
		assert.Equal(t, "store closed", record["error"])
	})

	t.Run("nil logger does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			LogRecordError(nil, "run", "forward", errors.New("err"))
		})
	})
}

func TestEnrichedLoggerAccumulatesRecords(t *testing.T) {
	h := newTestHandler()
	logger := slog.New(h)

	enriched := EnrichLogger(logger, "run-1", "forward")
	enriched.Info("first")
	enriched.Info("second")

	records := h.getAllRecords()
	require.Len(t, records, 2)
	assert.Equal(t, "first", records[0]["msg"])
	assert.Equal(t, "second", records[1]["msg"])
	for _, r := range records {
		assert.Equal(t, "run-1", r["run_id"])
		assert.Equal(t, "forward", r["pass"])
	}
}
