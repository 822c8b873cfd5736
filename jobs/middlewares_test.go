package jobs

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/portal-apr/portal-apr-backend/utils"
)

func testJob() *rivertype.JobRow {
	return &rivertype.JobRow{
		ID:          42,
		Kind:        "issue_period",
		Attempt:     1,
		Queue:       "billing",
		EncodedArgs: []byte(`{"periodo":"2025-03"}`),
	}
}

func TestJobArgs(t *testing.T) {
	assert.Equal(t, map[string]any{"periodo": "2025-03"}, jobArgs(testJob()))
	assert.Nil(t, jobArgs(&rivertype.JobRow{EncodedArgs: []byte("not json")}))
}

func TestLoggerMiddleware_storesLoggerInContext(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := NewLoggerMiddleware(logger)

	err := m.Work(context.Background(), testJob(), func(ctx context.Context) error {
		assert.NotSame(t, logger, utils.LoggerFromContext(ctx))
		return nil
	})
	assert.NoError(t, err)
}

func TestLoggerMiddleware_groupsRepeatedErrors(t *testing.T) {
	m := NewLoggerMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)))
	m.groupingTime = 20 * time.Millisecond
	failure := errors.New("no active tarifa")

	for range 3 {
		err := m.Work(context.Background(), testJob(), func(ctx context.Context) error { return failure })
		assert.ErrorIs(t, err, failure)
	}

	m.errorCountLock.Lock()
	assert.Equal(t, 3, m.errorCount["issue_period:no active tarifa"])
	m.errorCountLock.Unlock()

	assert.Eventually(t, func() bool {
		m.errorCountLock.Lock()
		defer m.errorCountLock.Unlock()
		return len(m.errorCount) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestRecovererMiddleware(t *testing.T) {
	err := NewRecoveredMiddleware().Work(context.Background(), testJob(), func(ctx context.Context) error {
		panic("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in issue_period job n°42: boom")
}

func TestTracingMiddleware_returnsInnerError(t *testing.T) {
	m := NewTracingMiddleware(noop.NewTracerProvider().Tracer("test"))
	err := m.Work(context.Background(), testJob(), func(ctx context.Context) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}
