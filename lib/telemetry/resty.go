package telemetry

import (
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentResty attaches a span to every outgoing request on the client.
// Spans are named after the HTTP method and carry url/status attributes.
func InstrumentResty(client *resty.Client, tracerName string) {
	tracer := otel.Tracer(tracerName)

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		ctx, _ := tracer.Start(req.Context(), req.Method)
		req.SetContext(ctx)
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		span := trace.SpanFromContext(res.Request.Context())
		defer span.End()

		span.SetName(fmt.Sprintf("http %s", res.Request.Method))
		span.SetAttributes(
			attribute.String("url", res.Request.URL),
			attribute.Int("status", res.StatusCode()),
			attribute.Int64("elapsed_ms", res.Time().Milliseconds()),
		)
		return nil
	})
	client.OnError(func(req *resty.Request, err error) {
		span := trace.SpanFromContext(req.Context())
		defer span.End()

		span.SetName(fmt.Sprintf("http %s", req.Method))
		span.SetAttributes(attribute.String("url", req.URL))
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
	})
}
