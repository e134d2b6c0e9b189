package utils

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/LilVoxy/crm_warehouse/ETL"

// Tracing владеет провайдером трассировки и файлом, куда пишутся спаны
type Tracing struct {
	provider *sdktrace.TracerProvider
	out      io.Closer
	tracer   trace.Tracer
}

// NewTracing создает провайдер с экспортом спанов в файл.
// Пустой путь отключает трассировку.
func NewTracing(path string) (*Tracing, error) {
	if path == "" {
		return &Tracing{tracer: noop.NewTracerProvider().Tracer(tracerName)}, nil
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть файл трассировки: %w", err)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(file))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("ошибка при создании экспортера трассировки: %w", err)
	}

	provider := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(provider)

	return &Tracing{
		provider: provider,
		out:      file,
		tracer:   provider.Tracer(tracerName),
	}, nil
}

// Start открывает спан фазы ETL
func (t *Tracing) Start(ctx context.Context, name string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name)
}

// Shutdown сбрасывает незаписанные спаны и закрывает файл
func (t *Tracing) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	if err := t.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при остановке трассировки: %w", err)
	}
	return t.out.Close()
}
