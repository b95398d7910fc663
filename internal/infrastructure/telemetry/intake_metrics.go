// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// IntakeMetrics records GRV intake outcomes and periodic stock health gauges.
// A nil *IntakeMetrics is valid and records nothing.
type IntakeMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	grvIntakeTotal       *Counter
	degradedUpdatesTotal *Counter
	provisionedTotal     *Counter
	grvValue             *Histogram
	grvLines             *Histogram

	stockItemCount       *Gauge
	stockOutOfStockCount *Gauge
	supplierBalanceTotal *FloatGauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	stockProvider StockMetricsProvider
}

// StockMetricsProvider provides catalogue and supplier data for periodic collection.
type StockMetricsProvider interface {
	// CountStockItems returns the number of stock items
	CountStockItems(ctx context.Context) (int64, error)

	// CountOutOfStock returns the number of stock items with nothing on hand
	CountOutOfStock(ctx context.Context) (int64, error)

	// TotalSupplierBalance returns the sum of all supplier balances
	TotalSupplierBalance(ctx context.Context) (float64, error)
}

// IntakeMetricsConfig holds configuration for intake metrics.
type IntakeMetricsConfig struct {
	Meter         metric.Meter
	Logger        *zap.Logger
	StockProvider StockMetricsProvider
}

// Metric attribute keys for intake metrics
var (
	AttrIntakePolicy  = attribute.Key("intake_policy")
	AttrIntakeOutcome = attribute.Key("outcome")
	AttrIntakeStage   = attribute.Key("stage")
)

// NewIntakeMetrics creates a new IntakeMetrics instance.
func NewIntakeMetrics(cfg IntakeMetricsConfig) (*IntakeMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &IntakeMetrics{
		meter:         cfg.Meter,
		logger:        logger,
		stopChan:      make(chan struct{}),
		stockProvider: cfg.StockProvider,
	}

	var err error
	m.grvIntakeTotal, err = NewCounter(cfg.Meter,
		"grv_intake_total",
		"Total number of recorded GRVs",
		"{grvs}",
	)
	if err != nil {
		return nil, err
	}

	m.degradedUpdatesTotal, err = NewCounter(cfg.Meter,
		"grv_degraded_updates_total",
		"Stock or supplier updates not applied after a GRV was recorded",
		"{updates}",
	)
	if err != nil {
		return nil, err
	}

	m.provisionedTotal, err = NewCounter(cfg.Meter,
		"stock_items_provisioned_total",
		"Stock items created from unmatched GRV lines",
		"{items}",
	)
	if err != nil {
		return nil, err
	}

	m.grvValue, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "grv_value",
		Description: "Total cost value of recorded GRVs",
		Unit:        "{currency}",
		Boundaries:  GrvValueBuckets,
	})
	if err != nil {
		return nil, err
	}

	m.grvLines, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "grv_lines",
		Description: "Item lines per recorded GRV",
		Unit:        "{lines}",
		Boundaries:  GrvLineBuckets,
	})
	if err != nil {
		return nil, err
	}

	m.stockItemCount, err = NewGauge(cfg.Meter,
		"stock_items_total",
		"Current number of stock items",
		"{items}",
	)
	if err != nil {
		return nil, err
	}

	m.stockOutOfStockCount, err = NewGauge(cfg.Meter,
		"stock_items_out_of_stock",
		"Current number of stock items with no quantity on hand",
		"{items}",
	)
	if err != nil {
		return nil, err
	}

	m.supplierBalanceTotal, err = NewFloatGauge(cfg.Meter,
		"supplier_balance_outstanding",
		"Sum of current supplier balances",
		"{currency}",
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// IntakeSample describes one recorded GRV
type IntakeSample struct {
	Policy      string
	Degraded    bool
	Value       float64
	Lines       int
	Provisioned int
}

// RecordIntake counts a recorded GRV along with its value, line count and provisioned items.
func (m *IntakeMetrics) RecordIntake(ctx context.Context, sample IntakeSample) {
	if m == nil {
		return
	}
	outcome := "complete"
	if sample.Degraded {
		outcome = "degraded"
	}
	policy := AttrIntakePolicy.String(sample.Policy)
	m.grvIntakeTotal.Inc(ctx, policy, AttrIntakeOutcome.String(outcome))
	m.grvValue.Record(ctx, sample.Value, policy)
	m.grvLines.Record(ctx, float64(sample.Lines), policy)
	if sample.Provisioned > 0 {
		m.provisionedTotal.Add(ctx, int64(sample.Provisioned))
	}
}

// RecordDegradedUpdate counts one stock or supplier update that was not applied.
func (m *IntakeMetrics) RecordDegradedUpdate(ctx context.Context, stage string) {
	if m == nil {
		return
	}
	m.degradedUpdatesTotal.Inc(ctx, AttrIntakeStage.String(stage))
}

// StartPeriodicCollection starts periodic collection of the stock gauges.
// It is non-blocking; use Stop to end collection.
func (m *IntakeMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	if m == nil {
		return
	}
	m.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go m.runPeriodicCollection(ctx, interval)
	})
}

func (m *IntakeMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.CollectStockMetrics(ctx)

	for {
		select {
		case <-m.stopChan:
			m.logger.Info("Stopping periodic stock metrics collection")
			return
		case <-ctx.Done():
			m.logger.Info("Context cancelled, stopping periodic stock metrics collection")
			return
		case <-ticker.C:
			m.CollectStockMetrics(ctx)
		}
	}
}

// CollectStockMetrics records the stock gauges once.
func (m *IntakeMetrics) CollectStockMetrics(ctx context.Context) {
	if m == nil || m.stockProvider == nil {
		return
	}

	if count, err := m.stockProvider.CountStockItems(ctx); err != nil {
		m.logger.Warn("Failed to count stock items", zap.Error(err))
	} else {
		m.stockItemCount.Record(ctx, count)
	}

	if count, err := m.stockProvider.CountOutOfStock(ctx); err != nil {
		m.logger.Warn("Failed to count out of stock items", zap.Error(err))
	} else {
		m.stockOutOfStockCount.Record(ctx, count)
	}

	if total, err := m.stockProvider.TotalSupplierBalance(ctx); err != nil {
		m.logger.Warn("Failed to sum supplier balances", zap.Error(err))
	} else {
		m.supplierBalanceTotal.Record(ctx, total)
	}
}

// Stop stops the periodic collection.
func (m *IntakeMetrics) Stop() {
	if m == nil {
		return
	}
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewIntakeMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
