package utils

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestETLMetrics(t *testing.T) {
	m := NewETLMetrics()

	m.RecordsExtracted.WithLabelValues("dim_clientes").Add(10)
	m.ClosuresRepaired.Add(2)
	m.ObservePhase(PhaseLoad, time.Now().Add(-time.Second))
	m.PhaseFailures.WithLabelValues(PhaseExtract).Inc()

	assert.Equal(t, 10.0, testutil.ToFloat64(m.RecordsExtracted.WithLabelValues("dim_clientes")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ClosuresRepaired))
	assert.Equal(t, 1, testutil.CollectAndCount(m.PhaseDuration))

	expected := `
# HELP crm_etl_phase_failures_total Количество ошибок по фазам ETL.
# TYPE crm_etl_phase_failures_total counter
crm_etl_phase_failures_total{phase="extract"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry, strings.NewReader(expected), "crm_etl_phase_failures_total"))
}

func TestETLLoggerWritesDailyFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewETLLogger(false, dir)
	require.NoError(t, err)

	logger.Info("Обработано %d клиентов", 7)
	logger.Debug("не пишется без verbose")
	logger.Sync()

	path := filepath.Join(dir, "etl_log_"+time.Now().Format("2006-01-02")+".log")
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Обработано 7 клиентов")
	assert.NotContains(t, string(content), "verbose")
}

func TestTracingWritesSpansToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spans.json")
	tracing, err := NewTracing(path)
	require.NoError(t, err)

	_, span := tracing.Start(context.Background(), "etl.extract")
	span.End()
	require.NoError(t, tracing.Shutdown(context.Background()))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "etl.extract")
}

func TestTracingDisabled(t *testing.T) {
	tracing, err := NewTracing("")
	require.NoError(t, err)
	_, span := tracing.Start(context.Background(), "etl.run")
	span.End()
	assert.False(t, span.SpanContext().IsValid())
	assert.NoError(t, tracing.Shutdown(context.Background()))
}
