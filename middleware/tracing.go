package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gofhir/client/transport"
)

// TracerName is the instrumentation name used when no tracer is given.
const TracerName = "github.com/gofhir/client"

// Tracing starts one client span per call. Errors are recorded on the span
// and set its status. HTTP requests and responses add method, URL and
// status code attributes.
func Tracing[C, Req, Res any](tracer trace.Tracer, name string) Interceptor[C, Req, Res] {
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	return Func[C, Req, Res](func(_ C, next Handler[Req, Res]) Handler[Req, Res] {
		return func(ctx context.Context, req Req) (Res, error) {
			ctx, span := tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient))
			defer span.End()

			if op := Operation(ctx); op != "" {
				span.SetAttributes(attribute.String("fhir.operation", op))
			}
			if id, ok := RequestIDFrom(ctx); ok {
				span.SetAttributes(attribute.String("request.id", id))
			}
			if r, ok := any(req).(*transport.Request); ok && r != nil {
				span.SetAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.url", r.FullURL()),
				)
			}

			res, err := next(ctx, req)

			if r, ok := any(res).(*transport.Response); ok && r != nil {
				span.SetAttributes(attribute.Int("http.status_code", r.StatusCode))
			}
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return res, err
			}
			span.SetStatus(codes.Ok, "")
			return res, nil
		}
	})
}
