package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bizledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func attributeKey(key string) attribute.Key {
	return attribute.Key(key)
}

func spanAttr(t *testing.T, span sdktrace.ReadOnlySpan, key string) attribute.Value {
	t.Helper()
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value
		}
	}
	t.Fatalf("attribute %q not found on span %s", key, span.Name())
	return attribute.Value{}
}

func TestStartServiceSpan(t *testing.T) {
	sr, _ := setupTestTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "grv_intake", "receive",
		telemetry.WithAttribute("items_count", 3),
		telemetry.WithSpanKind(trace.SpanKindServer),
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "grv_intake.receive", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())
	assert.Equal(t, int64(3), spanAttr(t, spans[0], "items_count").AsInt64())
	assert.Equal(t, telemetry.TracerName, spans[0].InstrumentationScope().Name)
}

func TestSetAttributes(t *testing.T) {
	sr, _ := setupTestTracer(t)
	supplierID := uuid.New()

	_, span := telemetry.StartSpan(context.Background(), "statement.generate")
	telemetry.SetAttributes(span,
		telemetry.SpanAttrSupplierID, supplierID,
		telemetry.SpanAttrGrvReference, "DN-2024-0917",
		"degraded", true,
		42, "non-string key is skipped",
		"dangling",
	)
	telemetry.SetAttribute(span, "ratio", 0.5)
	span.End()

	got := sr.Ended()[0]
	assert.Equal(t, supplierID.String(), spanAttr(t, got, "supplier_id").AsString())
	assert.Equal(t, "DN-2024-0917", spanAttr(t, got, "grv_reference").AsString())
	assert.True(t, spanAttr(t, got, "degraded").AsBool())
	assert.Equal(t, 0.5, spanAttr(t, got, "ratio").AsFloat64())
	assert.Len(t, got.Attributes(), 4)
}

func TestRecordError(t *testing.T) {
	sr, _ := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "grv_intake.receive")
	telemetry.RecordError(span, errors.New("supplier balance update failed"))
	span.End()

	got := sr.Ended()[0]
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Equal(t, "supplier balance update failed", got.Status().Description)
	require.Len(t, got.Events(), 1)
	assert.Equal(t, "exception", got.Events()[0].Name)
}

func TestRecordError_NilErrorLeavesStatusUnset(t *testing.T) {
	sr, _ := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "op")
	telemetry.RecordError(span, nil)
	span.End()

	assert.Equal(t, codes.Unset, sr.Ended()[0].Status().Code)
}

func TestAddEvent(t *testing.T) {
	sr, _ := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "op")
	telemetry.AddEvent(span, "stock_item_provisioned", "stock_code", "SKU-9")
	span.End()

	events := sr.Ended()[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "stock_item_provisioned", events[0].Name)
	assert.Equal(t, "SKU-9", events[0].Attributes[0].Value.AsString())
}

func TestGetTraceID(t *testing.T) {
	setupTestTracer(t)

	assert.Empty(t, telemetry.GetTraceID(context.Background()))

	ctx, span := telemetry.StartSpan(context.Background(), "op")
	defer span.End()
	assert.Equal(t, span.SpanContext().TraceID().String(), telemetry.GetTraceID(ctx))
}

func TestHelpers_NilSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.SetAttributes(nil, "k", "v")
		telemetry.SetAttribute(nil, "k", "v")
		telemetry.RecordError(nil, errors.New("boom"))
		telemetry.AddEvent(nil, "e")
	})
}
