package middleware

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/gofhir/client/transport"
)

func attr(kvs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range kvs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracing(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	tr := tp.Tracer("test")

	h := Wrap(0, func(_ context.Context, req *transport.Request) (*transport.Response, error) {
		return &transport.Response{StatusCode: 200, Request: req}, nil
	}, Tracing[int, *transport.Request, *transport.Response](tr, "fhir.http"))

	ctx := WithOperation(context.Background(), "read")
	if _, err := h(ctx, transport.NewRequest("GET", "http://x/Patient/1")); err != nil {
		t.Fatalf("h() error = %v", err)
	}

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("len(spans) = %d; want 1", len(spans))
	}
	s := spans[0]
	if s.Name() != "fhir.http" {
		t.Errorf("Name() = %q; want fhir.http", s.Name())
	}
	if s.Status().Code != codes.Ok {
		t.Errorf("Status().Code = %v; want Ok", s.Status().Code)
	}
	if v, ok := attr(s.Attributes(), "http.status_code"); !ok || v.AsInt64() != 200 {
		t.Errorf("http.status_code = %v, %v; want 200", v.AsInt64(), ok)
	}
	if v, ok := attr(s.Attributes(), "http.url"); !ok || v.AsString() != "http://x/Patient/1" {
		t.Errorf("http.url = %q", v.AsString())
	}
	if v, ok := attr(s.Attributes(), "fhir.operation"); !ok || v.AsString() != "read" {
		t.Errorf("fhir.operation = %q", v.AsString())
	}
}

func TestTracing_Error(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	boom := errors.New("boom")
	h := Wrap("", func(context.Context, string) (string, error) { return "", boom },
		Tracing[string, string, string](tp.Tracer("test"), "fhir.search"))

	if _, err := h(context.Background(), "q"); !errors.Is(err, boom) {
		t.Fatalf("h() error = %v; want boom", err)
	}

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("len(spans) = %d; want 1", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("Status().Code = %v; want Error", spans[0].Status().Code)
	}
	if len(spans[0].Events()) == 0 {
		t.Error("error should be recorded as a span event")
	}
}
