package tracing

import (
	"context"
	"fmt"
	"testing"

	"github.com/bsv-blockchain/fractionalize/errors"
	"github.com/bsv-blockchain/fractionalize/ulogger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func initTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	setTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))

	t.Cleanup(func() {
		_ = ShutdownTracer(context.Background())
	})

	return recorder
}

func TestStart_WithError(t *testing.T) {
	recorder := initTestTracer(t)
	logger := newLineLogger()

	_, _, endFn := Start(context.Background(), "CountRecords",
		WithLogMessage(logger, "[%s] counting", "last24h"),
		WithTag("window", "last24h"),
	)

	assert.Equal(t, "[last24h] counting", logger.lastLog)

	endFn(errors.NewStorageUnavailableError("count failed"))

	assert.Contains(t, logger.lastLog, "[last24h] counting DONE in")
	assert.Contains(t, logger.lastLog, "with error: STORAGE_UNAVAILABLE (60): count failed")

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "CountRecords", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	require.Len(t, spans[0].Attributes(), 1)
	assert.Equal(t, "last24h", spans[0].Attributes()[0].Value.AsString())
}

func TestStart_ChildSpans(t *testing.T) {
	recorder := initTestTracer(t)

	ctx, parent, endParent := Start(context.Background(), "Aggregate")
	_, child, endChild := Start(ctx, "CountWindow")

	assert.Equal(t, parent.SpanContext().TraceID(), child.SpanContext().TraceID())

	endChild()
	endParent()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "CountWindow", spans[0].Name())
	assert.Equal(t, parent.SpanContext().SpanID(), spans[0].Parent().SpanID())
}

func TestStart_Metrics(t *testing.T) {
	initTestTracer(t)

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_counter"})
	histogram := prometheus.NewHistogram(prometheus.HistogramOpts{Name: "test_histogram"})

	_, _, endFn := Start(context.Background(), "Find", WithCounter(counter), WithHistogram(histogram))
	endFn()

	assert.InDelta(t, 1, testutil.ToFloat64(counter), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(histogram))
}

func TestShutdownTracer_NotInitialised(t *testing.T) {
	require.NoError(t, ShutdownTracer(context.Background()))
}

type lineLogger struct {
	ulogger.TestLogger
	lastLog string
}

func newLineLogger() *lineLogger {
	return &lineLogger{}
}

func (l *lineLogger) Debugf(format string, args ...interface{}) {
	l.lastLog = fmt.Sprintf(format, args...)
}

func (l *lineLogger) Warnf(format string, args ...interface{}) {
	l.lastLog = fmt.Sprintf(format, args...)
}
