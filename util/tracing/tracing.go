package tracing

import (
	"context"
	"fmt"
	"time"

	"github.com/bsv-blockchain/fractionalize/ulogger"
	"github.com/ordishs/gocore"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type statsKey struct{}

var defaultStat = gocore.NewStat("fractionalize", true)

type Options func(s *TraceOptions)

type TraceOptions struct {
	ParentStat *gocore.Stat
	Histogram  prometheus.Observer
	Counter    prometheus.Counter
	Logger     ulogger.Logger
	LogMessage string
	LogArgs    []interface{}
	Tags       []attribute.KeyValue
}

func WithParentStat(stat *gocore.Stat) Options {
	return func(s *TraceOptions) {
		s.ParentStat = stat
	}
}

// WithHistogram sets the prometheus observer fed with the span duration in seconds.
func WithHistogram(histogram prometheus.Observer) Options {
	return func(s *TraceOptions) {
		s.Histogram = histogram
	}
}

// WithCounter sets the prometheus counter to be incremented when the span is finished.
func WithCounter(counter prometheus.Counter) Options {
	return func(s *TraceOptions) {
		s.Counter = counter
	}
}

// WithLogMessage logs format at DEBUG when the span starts and again with the
// elapsed time when it ends.
func WithLogMessage(logger ulogger.Logger, format string, args ...interface{}) Options {
	return func(s *TraceOptions) {
		s.Logger = logger
		s.LogMessage = format
		s.LogArgs = args
	}
}

func WithTag(key, value string) Options {
	return func(s *TraceOptions) {
		s.Tags = append(s.Tags, attribute.String(key, value))
	}
}

// Start opens an otel span and a gocore stat nested under the stat carried in
// ctx (or the parent stat option). The returned func ends both; pass the
// operation error so it is recorded on the span and in the log line.
func Start(ctx context.Context, name string, setOptions ...Options) (context.Context, trace.Span, func(...error)) {
	options := &TraceOptions{}
	for _, opt := range setOptions {
		opt(options)
	}

	parentStat, ok := ctx.Value(statsKey{}).(*gocore.Stat)
	if !ok {
		parentStat = defaultStat
	}

	if options.ParentStat != nil {
		parentStat = options.ParentStat
	}

	stat := parentStat.NewStat(name, true)
	start := gocore.CurrentTime()

	ctx, span := otel.Tracer("fractionalize").Start(context.WithValue(ctx, statsKey{}, stat), name)
	if len(options.Tags) > 0 {
		span.SetAttributes(options.Tags...)
	}

	if options.Logger != nil && options.LogMessage != "" {
		options.Logger.Debugf(options.LogMessage, options.LogArgs...)
	}

	return ctx, span, func(errs ...error) {
		var err error
		if len(errs) > 0 {
			err = errs[0]
		}

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		span.End()
		stat.AddTime(start)

		if options.Histogram != nil {
			options.Histogram.Observe(time.Since(start).Seconds())
		}

		if options.Counter != nil {
			options.Counter.Inc()
		}

		if options.Logger != nil && options.LogMessage != "" {
			done := fmt.Sprintf(" DONE in %s", time.Since(start))
			if err != nil {
				options.Logger.Warnf(options.LogMessage+done+" with error: %v", append(append([]interface{}{}, options.LogArgs...), err)...)
			} else {
				options.Logger.Debugf(options.LogMessage+done, options.LogArgs...)
			}
		}
	}
}
