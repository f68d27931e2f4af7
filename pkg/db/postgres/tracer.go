//nolint:whitespace // can't make the linters happy
package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/prowheel/wheellab/log"
)

type traceStartKey struct{}

// myQueryTracer logs every query on the configured level.
// Failed queries are always logged on warn level.
type myQueryTracer struct {
	log   *log.Logger
	level log.Level
}

func NewMyTracer(logger *log.Logger, level log.Level) pgx.QueryTracer {
	return &myQueryTracer{log: logger.Named("sql"), level: level}
}

func (tracer *myQueryTracer) TraceQueryStart(
	ctx context.Context,
	_ *pgx.Conn,
	data pgx.TraceQueryStartData,
) context.Context {
	tracer.log.Log(tracer.level, "Executing",
		log.String("sql", data.SQL),
		log.Any("args", data.Args))
	return context.WithValue(ctx, traceStartKey{}, time.Now())
}

func (tracer *myQueryTracer) TraceQueryEnd(
	ctx context.Context,
	conn *pgx.Conn,
	data pgx.TraceQueryEndData,
) {
	var fields []log.Field
	if start, ok := ctx.Value(traceStartKey{}).(time.Time); ok {
		fields = append(fields, log.Duration("duration", time.Since(start)))
	}
	if data.Err != nil {
		tracer.log.Warn("Query failed", append(fields, log.ErrorField(data.Err))...)
		return
	}
	tracer.log.Log(tracer.level, "Done",
		append(fields, log.String("tag", data.CommandTag.String()))...)
}
