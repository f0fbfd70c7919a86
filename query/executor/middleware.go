package executor

import (
	"context"
	"log/slog"
	"time"

	"github.com/satishbabariya/pgql/query/bind"
)

// QueryEvent describes one statement passing through the middleware chain.
type QueryEvent struct {
	Operation string
	Table     string
	Query     string
	Args      []any
	Duration  time.Duration
	Error     error
	Start     time.Time
	End       time.Time
}

// Middleware is a function that intercepts statements
type Middleware func(ctx context.Context, event *QueryEvent, next func() error) error

// run executes exec through the middleware chain.
func (e *Executor) run(ctx context.Context, event *QueryEvent, exec func() error) error {
	event.Start = time.Now()

	var next func() error
	index := 0

	next = func() error {
		if index >= len(e.middlewares) {
			err := exec()
			event.End = time.Now()
			event.Duration = event.End.Sub(event.Start)
			event.Error = err
			return err
		}

		m := e.middlewares[index]
		index++
		return m(ctx, event, next)
	}

	return next()
}

// LoggingMiddleware logs every statement at debug level and failures at warn.
// Argument values are never logged, only their bind kinds.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		err := next()
		if err != nil {
			logger.WarnContext(ctx, "query failed",
				"op", event.Operation,
				"table", event.Table,
				"sql", event.Query,
				"error", err,
			)
			return err
		}
		logger.DebugContext(ctx, "query executed",
			"op", event.Operation,
			"table", event.Table,
			"sql", event.Query,
			"kinds", bindKinds(event.Args),
			"duration", event.Duration,
		)
		return nil
	}
}

// TimingMiddleware reports the duration of every statement
func TimingMiddleware(onTiming func(query string, duration time.Duration)) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		err := next()
		if onTiming != nil {
			onTiming(event.Query, event.Duration)
		}
		return err
	}
}

// ErrorMiddleware reports failed statements
func ErrorMiddleware(onError func(query string, err error)) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		err := next()
		if err != nil && onError != nil {
			onError(event.Query, err)
		}
		return err
	}
}

func bindKinds(args []any) []string {
	out := make([]string, len(args))
	for i, k := range bind.Kinds(args) {
		out[i] = k.String()
	}
	return out
}
