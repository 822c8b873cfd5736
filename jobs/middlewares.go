package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/portal-apr/portal-apr-backend/utils"
)

const (
	// identical job errors within this window are reported to sentry once
	sentryErrorGroupingTime = 30 * time.Second
	sdkIdentifier           = "sentry.go.river.portal"
)

// jobArgs decodes the arguments of a job, for logs and error reports
func jobArgs(job *rivertype.JobRow) map[string]any {
	var args map[string]any
	if err := json.Unmarshal(job.EncodedArgs, &args); err != nil {
		return nil
	}
	return args
}

type LoggerMiddleware struct {
	l              *slog.Logger
	errorCount     map[string]int
	errorCountLock *sync.Mutex
	groupingTime   time.Duration
}

func NewLoggerMiddleware(l *slog.Logger) *LoggerMiddleware {
	return &LoggerMiddleware{
		l:              l,
		errorCount:     make(map[string]int),
		errorCountLock: &sync.Mutex{},
		groupingTime:   sentryErrorGroupingTime,
	}
}

func (m *LoggerMiddleware) Work(ctx context.Context, job *rivertype.JobRow, doInner func(context.Context) error) error {
	attrs := []any{
		"job_id", job.ID,
		"job_kind", job.Kind,
		"job_attempt", job.Attempt,
		"queue", job.Queue,
	}
	if periodo, ok := jobArgs(job)["periodo"].(string); ok && periodo != "" {
		attrs = append(attrs, "periodo", periodo)
	}
	logger := m.l.With(attrs...)

	start := time.Now()
	logger.DebugContext(ctx, fmt.Sprintf("starting %s job n°%d", job.Kind, job.ID))

	ctx = utils.StoreLoggerInContext(ctx, logger)
	err := doInner(ctx)

	var snoozeErr *river.JobSnoozeError
	switch {
	case err == nil:
		logger.InfoContext(ctx, fmt.Sprintf("%s job n°%d succeeded", job.Kind, job.ID),
			"duration", time.Since(start))
	case errors.As(err, &snoozeErr):
		logger.InfoContext(ctx, fmt.Sprintf("%s job n°%d snoozed", job.Kind, job.ID),
			"duration", time.Since(start))
	default:
		logger.ErrorContext(ctx, fmt.Sprintf("%s job n°%d failed", job.Kind, job.ID),
			"duration", time.Since(start), "error", err.Error())
		m.aggregateAndReportError(ctx, job, err)
	}
	return err
}

// aggregateAndReportError reports the first occurrence of an error and swallows the repeats
// of the grouping window. A failing billing job retries often.
func (m *LoggerMiddleware) aggregateAndReportError(ctx context.Context, job *rivertype.JobRow, err error) {
	m.errorCountLock.Lock()
	defer m.errorCountLock.Unlock()

	errorKey := job.Kind + ":" + err.Error()
	m.errorCount[errorKey]++
	if m.errorCount[errorKey] > 1 {
		return
	}

	utils.LogAndReportSentryError(ctx, err)
	time.AfterFunc(m.groupingTime, func() {
		m.errorCountLock.Lock()
		defer m.errorCountLock.Unlock()
		delete(m.errorCount, errorKey)
	})
}

type RecovererMiddleware struct{}

func NewRecoveredMiddleware() RecovererMiddleware {
	return RecovererMiddleware{}
}

// Work turns a panic of the job into an error, so that river retries it like any failure
func (m RecovererMiddleware) Work(ctx context.Context, job *rivertype.JobRow, doInner func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("panic in %s job n°%d: %v", job.Kind, job.ID, r)
			utils.LoggerFromContext(ctx).ErrorContext(ctx, "job panicked",
				"job_kind", job.Kind, "stack", string(debug.Stack()))
		}
	}()
	return doInner(ctx)
}

type TracingMiddleware struct {
	tracer trace.Tracer
}

func NewTracingMiddleware(tracer trace.Tracer) TracingMiddleware {
	return TracingMiddleware{tracer: tracer}
}

func (m TracingMiddleware) Work(ctx context.Context, job *rivertype.JobRow, doInner func(context.Context) error) error {
	ctx, span := m.tracer.Start(
		ctx,
		job.Kind,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.Int64("job_id", job.ID),
			attribute.String("job_kind", job.Kind),
			attribute.Int("job_attempt", job.Attempt),
			attribute.String("queue", job.Queue),
		),
	)
	defer span.End()

	ctx = utils.StoreOpenTelemetryTracerInContext(ctx, m.tracer)
	err := doInner(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

type SentryMiddleware struct{}

func NewSentryMiddleware() SentryMiddleware {
	return SentryMiddleware{}
}

func (m SentryMiddleware) Work(ctx context.Context, job *rivertype.JobRow, doInner func(context.Context) error) error {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
		ctx = sentry.SetHubOnContext(ctx, hub)
	}
	if client := hub.Client(); client != nil {
		client.SetSDKIdentifier(sdkIdentifier)
	}

	scope := hub.PushScope()
	defer hub.PopScope()
	scope.SetTag("job_id", strconv.FormatInt(job.ID, 10))
	scope.SetTag("job_kind", job.Kind)
	scope.SetTag("job_attempt", strconv.Itoa(job.Attempt))
	scope.SetTag("queue", job.Queue)
	if args := jobArgs(job); args != nil {
		scope.SetExtra("payload", args)
	}

	transaction := sentry.StartTransaction(ctx,
		"river task "+job.Kind,
		sentry.WithOpName("river.task"),
		sentry.WithTransactionSource(sentry.SourceTask),
	)
	defer transaction.Finish()

	err := doInner(transaction.Context())
	if err != nil {
		transaction.Status = sentry.SpanStatusInternalError
	} else {
		transaction.Status = sentry.SpanStatusOK
	}
	return err
}
