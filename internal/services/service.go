// Package services holds the wedding-scoped use cases behind the HTTP
// handlers: validation, ownership checks, timestamps and change events.
package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"wedplan/internal/amqp"
	applog "wedplan/internal/log"
)

var tracer = otel.GetTracerProvider().Tracer("wedplan/internal/services")

// Publisher emits change events. A nil Publisher disables events.
type Publisher interface {
	Publish(ctx context.Context, e amqp.Event) error
}

// base carries what every service shares.
type base struct {
	events Publisher
	now    func() time.Time
}

func newBase(events Publisher) base {
	return base{events: events, now: func() time.Time { return time.Now().UTC() }}
}

// publish is fire-and-forget: the record is already stored, so a broker
// failure is logged and never returned. The request logger in ctx already
// carries the wedding id.
func (b base) publish(ctx context.Context, t amqp.EventType, weddingID, entityID string) {
	if b.events == nil {
		return
	}
	if err := b.events.Publish(ctx, amqp.NewEvent(t, weddingID, entityID)); err != nil {
		applog.FromContext(ctx).WithComponent(applog.ComponentAMQP).WarnContext(ctx, "Failed to publish event",
			applog.FieldEventType, t,
			applog.FieldEntityID, entityID,
			applog.FieldError, err)
	}
}

func startSpan(ctx context.Context, name, weddingID string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, name)
	span.SetAttributes(attribute.String("wedplan.wedding_id", weddingID))
	return ctx, span
}

// endSpan records err on span and returns it unchanged.
func endSpan(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	return err
}
