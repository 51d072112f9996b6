// Package metrics exposes a Prometheus scrape endpoint summarising one
// translation run. The teacher's pkg/metrics instruments a long-running
// daemon's goroutine count, heap usage and GC cycles — there's no
// equivalent runtime to watch in a one-shot batch translator, so this
// adaptation keeps the same otel/Prometheus wiring (SetupInstrumentation,
// an asynchronous callback reading the latest snapshot) but reports the
// pipeline's own summary counts instead: bundle size, executed functions,
// libraries, map-index violations, distinct string codes.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/contract-ace/smartace-sub002/pkg/analysisstack"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
	"go.opentelemetry.io/otel/metric/instrument"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// BaseAttrs are attached to every metric this package exports.
var BaseAttrs []attribute.KeyValue

// Snapshot is the latest translation run's summary counts, read by the
// asynchronous gauge callback registered in SetupInstrumentation.
type Snapshot struct {
	BundleSize        int
	ExecutedFunctions int
	Libraries         int
	MapViolations     int
	StringCodes       int
}

var current Snapshot

// FromStack builds a Snapshot from a fully assembled analysis stack.
func FromStack(stack *analysisstack.Stack) Snapshot {
	return Snapshot{
		BundleSize:        stack.Tree.Size(),
		ExecutedFunctions: len(stack.CallGraph.ExecutedCode()),
		Libraries:         len(stack.Libraries),
		MapViolations:     len(stack.MapIndex.Violations),
		StringCodes:       stack.Strings.Len(),
	}
}

// Record stores snap as the value the next scrape will observe.
func Record(snap Snapshot) { current = snap }

// SetupInstrumentation starts a Prometheus scrape endpoint at addr,
// tagged with serviceName, exporting the most recent Record'd Snapshot.
func SetupInstrumentation(addr, serviceName string) error {
	BaseAttrs = []attribute.KeyValue{attribute.String("service_name", serviceName)}

	exporter, err := otelprom.New()
	if err != nil {
		return fmt.Errorf("creating prometheus exporter: %s", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	global.SetMeterProvider(provider)

	if err := registerPipelineGauges(); err != nil {
		return fmt.Errorf("registering pipeline gauges: %s", err)
	}

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		_ = http.ListenAndServe(addr, nil)
	}()

	return nil
}

func registerPipelineGauges() error {
	meter := global.MeterProvider().Meter("smartace_translate")

	bundleSize, err := meter.Int64ObservableGauge(
		"smartace.translate.bundle_size",
		instrument.WithDescription("Total contracts allocated in the tight bundle"),
	)
	if err != nil {
		return fmt.Errorf("creating bundle_size: %s", err)
	}
	executed, err := meter.Int64ObservableGauge(
		"smartace.translate.executed_functions",
		instrument.WithDescription("Functions reachable from the bundle's entry points"),
	)
	if err != nil {
		return fmt.Errorf("creating executed_functions: %s", err)
	}
	libraries, err := meter.Int64ObservableGauge(
		"smartace.translate.libraries",
		instrument.WithDescription("Libraries with at least one called method"),
	)
	if err != nil {
		return fmt.Errorf("creating libraries: %s", err)
	}
	mapViolations, err := meter.Int64ObservableGauge(
		"smartace.translate.map_index_violations",
		instrument.WithDescription("Address map-key discipline violations found"),
	)
	if err != nil {
		return fmt.Errorf("creating map_index_violations: %s", err)
	}
	stringCodes, err := meter.Int64ObservableGauge(
		"smartace.translate.string_codes",
		instrument.WithDescription("Distinct non-empty string literals assigned a code"),
	)
	if err != nil {
		return fmt.Errorf("creating string_codes: %s", err)
	}

	_, err = meter.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			snap := current
			o.ObserveInt64(bundleSize, int64(snap.BundleSize), BaseAttrs...)
			o.ObserveInt64(executed, int64(snap.ExecutedFunctions), BaseAttrs...)
			o.ObserveInt64(libraries, int64(snap.Libraries), BaseAttrs...)
			o.ObserveInt64(mapViolations, int64(snap.MapViolations), BaseAttrs...)
			o.ObserveInt64(stringCodes, int64(snap.StringCodes), BaseAttrs...)
			return nil
		},
		[]instrument.Asynchronous{bundleSize, executed, libraries, mapViolations, stringCodes}...,
	)
	if err != nil {
		return fmt.Errorf("registering callback: %s", err)
	}
	return nil
}
