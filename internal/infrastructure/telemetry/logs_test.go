package telemetry_test

import (
	"context"
	"testing"

	"github.com/bizledger/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func TestNewLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{ServiceName: "bizledger-test"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, lp.IsEnabled())
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestLoggerProvider_ZapCoreDisabledIsNop(t *testing.T) {
	lp, err := telemetry.NewLoggerProvider(context.Background(), telemetry.LogsConfig{}, nil)
	require.NoError(t, err)

	core := lp.ZapCore(zapcore.DebugLevel)
	assert.False(t, core.Enabled(zapcore.ErrorLevel))
}

func TestLoggerProvider_NilIsDisabled(t *testing.T) {
	var lp *telemetry.LoggerProvider
	assert.False(t, lp.IsEnabled())
	assert.False(t, lp.ZapCore(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
}

func TestLoggerProvider_ZapCoreFiltersLevel(t *testing.T) {
	if testing.Short() {
		t.Skip("creates an OTLP exporter")
	}
	ctx := context.Background()
	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:4317",
		ServiceName:       "bizledger-test",
		Insecure:          true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_ = lp.Shutdown(cancelled)
	})

	core := lp.ZapCore(zapcore.WarnLevel)
	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.WarnLevel))

	child := core.With([]zapcore.Field{{Key: "grv_id", Type: zapcore.StringType, String: "x"}})
	assert.False(t, child.Enabled(zapcore.DebugLevel))
	assert.True(t, child.Enabled(zapcore.ErrorLevel))
}
