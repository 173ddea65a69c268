package caps

import (
	"errors"
	"testing"

	"printerkit/internal/printerr"
)

type fakeSource struct {
	metrics    Metrics
	metricsErr error
	closed     bool
}

func (f *fakeSource) Metrics() (Metrics, error) { return f.metrics, f.metricsErr }
func (f *fakeSource) Close() error              { f.closed = true; return nil }

func TestResolveDerivesMargins(t *testing.T) {
	src := &fakeSource{metrics: Metrics{
		DPIX: 600, DPIY: 600,
		PageWidth: 4960, PageHeight: 7016,
		PrintableWidth: 4760, PrintableHeight: 6816,
		OffsetX: 100, OffsetY: 80,
	}}
	got, err := Resolve(src)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !src.closed {
		t.Error("source not closed")
	}
	if got.MarginLeft != 100 || got.MarginTop != 80 {
		t.Errorf("leading margins = %d/%d, want 100/80", got.MarginLeft, got.MarginTop)
	}
	if got.MarginRight != 4960-4760-100 {
		t.Errorf("MarginRight = %d, want %d", got.MarginRight, 100)
	}
	if got.MarginBottom != 7016-6816-80 {
		t.Errorf("MarginBottom = %d, want %d", got.MarginBottom, 120)
	}
}

func TestResolveNegativeMarginSurfacesError(t *testing.T) {
	src := &fakeSource{metrics: Metrics{
		DPIX: 300, DPIY: 300,
		PageWidth: 1000, PageHeight: 1000,
		PrintableWidth: 1100, PrintableHeight: 900,
		OffsetX: 0, OffsetY: 50,
	}}
	got, err := Resolve(src)
	if err == nil {
		t.Fatal("expected invalid-input error for negative margin")
	}
	if !printerr.IsKind(err, printerr.KindInvalidInput) {
		t.Errorf("error kind: %v", err)
	}
	// the computed caps still come back for inspection
	if got.MarginRight != -100 {
		t.Errorf("MarginRight = %d, want -100", got.MarginRight)
	}
	if !src.closed {
		t.Error("source not closed on anomaly")
	}
}

func TestResolveMetricsFailure(t *testing.T) {
	src := &fakeSource{metricsErr: errors.New("device detached")}
	_, err := Resolve(src)
	if err == nil {
		t.Fatal("expected error")
	}
	if !printerr.IsKind(err, printerr.KindUnderlyingCall) {
		t.Errorf("error kind: %v", err)
	}
	if !src.closed {
		t.Error("source not closed on failure")
	}
}
