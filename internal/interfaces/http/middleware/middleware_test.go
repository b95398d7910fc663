package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bizledger/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	var seenGin, seenCtx string
	r := gin.New()
	r.Use(RequestID(nil))
	r.GET("/ping", func(c *gin.Context) {
		seenGin = GetRequestID(c)
		seenCtx = logger.GetRequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	t.Run("propagates the client header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, "client-42")
		r.ServeHTTP(w, req)

		assert.Equal(t, "client-42", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "client-42", seenGin)
		assert.Equal(t, "client-42", seenCtx)
	})

	t.Run("generates when missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		id := w.Header().Get(RequestIDHeader)
		assert.Len(t, id, 36)
		assert.Equal(t, id, seenCtx)
	})

	t.Run("replaces oversized ids", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("x", MaxRequestIDLength+1))
		r.ServeHTTP(w, req)

		assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	})
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/upload", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), `"REQUEST_TOO_LARGE"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("0123")))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

type sampleLine struct {
	Quantity int `json:"quantity" binding:"gt=0"`
}

type sampleRequest struct {
	Date  string       `json:"date" binding:"required,datetime=2006-01-02"`
	Lines []sampleLine `json:"lines" binding:"required,min=1,dive"`
}

func TestValidationDetails(t *testing.T) {
	SetupValidator()

	err := binding.Validator.ValidateStruct(&sampleRequest{Date: "01/02/2024", Lines: []sampleLine{{Quantity: 0}}})
	require.Error(t, err)

	details := ValidationDetails(err)
	require.Len(t, details, 2)
	assert.Equal(t, "date", details[0].Field)
	assert.Equal(t, "Must be a date formatted as 2006-01-02", details[0].Message)
	assert.Equal(t, "lines[0].quantity", details[1].Field)
	assert.Equal(t, "Must be greater than 0", details[1].Message)

	assert.Nil(t, ValidationDetails(assert.AnError))
}

func TestHTTPMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	r := gin.New()
	r.Use(HTTPMetrics(provider.Meter("test"), nil))
	r.GET("/stock/:code", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	for range 3 {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/stock/BOLT-10", nil))
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "http_server_request_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				route, _ := dp.Attributes.Value(attribute.Key("http.route"))
				status, _ := dp.Attributes.Value(attribute.Key("http.status_code"))
				assert.Equal(t, "/stock/:code", route.AsString())
				assert.Equal(t, int64(http.StatusNotFound), status.AsInt64())
				total += dp.Value
			}
		}
	}
	assert.Equal(t, int64(3), total)
}

func TestHTTPMetrics_NilMeter(t *testing.T) {
	r := gin.New()
	r.Use(HTTPMetrics(nil, nil))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTracingAndSpanErrorMarker(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	r := gin.New()
	r.Use(RequestID(nil))
	r.Use(Tracing(TracingConfig{ServiceName: "ledger-test", Enabled: true, TracerProvider: tp}))
	r.Use(SpanErrorMarker())
	r.GET("/fail", func(c *gin.Context) {
		c.Set(ErrorCodeKey, "GRV_INTAKE_FAILED")
		c.Status(http.StatusInternalServerError)
	})

	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	req.Header.Set(RequestIDHeader, "trace-req")
	r.ServeHTTP(httptest.NewRecorder(), req)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, codes.Error, span.Status().Code)

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "trace-req", attrs["request_id"].AsString())
	assert.Equal(t, "GRV_INTAKE_FAILED", attrs["error.code"].AsString())
}

func TestTracing_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(Tracing(TracingConfig{Enabled: false}))
	r.Use(SpanErrorMarker())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
