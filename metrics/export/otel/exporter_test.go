package otel

import (
	"errors"
	"testing"

	authkit "github.com/stockwise/authkit"
	"go.opentelemetry.io/otel/metric/noop"
)

type fakeSource struct {
	snapshot authkit.MetricsSnapshot
}

func (f *fakeSource) MetricsSnapshot() authkit.MetricsSnapshot { return f.snapshot }
func (f *fakeSource) AuditDropped() uint64                     { return 0 }

func TestNewOTelExporterFromSource(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("authkit-test")
	exporter, err := NewOTelExporterFromSource(meter, &fakeSource{})
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource: %v", err)
	}
	if len(exporter.counters) == 0 || len(exporter.histograms) == 0 {
		t.Fatal("instruments not registered")
	}
	if err := exporter.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestNewOTelExporterNilInputs(t *testing.T) {
	if _, err := NewOTelExporterFromSource(nil, &fakeSource{}); !errors.Is(err, ErrNilMeter) {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
	meter := noop.NewMeterProvider().Meter("authkit-test")
	if _, err := NewOTelExporterFromSource(meter, nil); !errors.Is(err, ErrNilSource) {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
}

func TestCloseNil(t *testing.T) {
	var exporter *OTelExporter
	if err := exporter.Close(); err != nil {
		t.Fatalf("nil Close: %v", err)
	}
}
