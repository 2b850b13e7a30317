package main

import (
	"context"
	"errors"
	"io"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/omeyang/xcoord/pkg/observability/xmetrics"
)

// telemetry 进程内的 OTel provider。
// 指标只用 ManualReader 在命令结束时汇总，trace 可选输出到 stdout。
type telemetry struct {
	observer xmetrics.Observer
	reader   *sdkmetric.ManualReader
	meter    *sdkmetric.MeterProvider
	tracer   *sdktrace.TracerProvider
}

func newTelemetry(stdoutTraces bool, traceOut io.Writer) (*telemetry, error) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	var tpOpts []sdktrace.TracerProviderOption
	if stdoutTraces {
		exp, err := stdouttrace.New(stdouttrace.WithWriter(traceOut), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, errors.Join(err, mp.Shutdown(context.Background()))
		}
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exp))
	} else {
		tpOpts = append(tpOpts, sdktrace.WithSampler(sdktrace.NeverSample()))
	}
	tp := sdktrace.NewTracerProvider(tpOpts...)

	observer, err := xmetrics.NewOTelObserver(
		xmetrics.WithInstrumentationName("github.com/omeyang/xcoord/cmd/xlockctl"),
		xmetrics.WithMeterProvider(mp),
		xmetrics.WithTracerProvider(tp),
	)
	if err != nil {
		return nil, errors.Join(err, tp.Shutdown(context.Background()), mp.Shutdown(context.Background()))
	}
	return &telemetry{observer: observer, reader: reader, meter: mp, tracer: tp}, nil
}

// outcomeCounts 汇总 xcoord.operation.total 中 acquire 操作按 outcome 的计数
func (t *telemetry) outcomeCounts(ctx context.Context) (map[string]int64, error) {
	var rm metricdata.ResourceMetrics
	if err := t.reader.Collect(ctx, &rm); err != nil {
		return nil, err
	}
	counts := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "xcoord.operation.total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				op, _ := dp.Attributes.Value("operation")
				if op.AsString() != "acquire" {
					continue
				}
				outcome, _ := dp.Attributes.Value("outcome")
				counts[outcome.AsString()] += dp.Value
			}
		}
	}
	return counts, nil
}

// shutdown 先刷出 trace 再关闭 meter
func (t *telemetry) shutdown(ctx context.Context) error {
	return errors.Join(t.tracer.Shutdown(ctx), t.meter.Shutdown(ctx))
}
