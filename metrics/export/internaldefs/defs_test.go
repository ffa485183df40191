package internaldefs

import (
	"testing"

	goPass "github.com/MrEthical07/goPass"
)

func TestHistogramBoundsMatchEngineBuckets(t *testing.T) {
	engine := goPass.LatencyBucketBounds()
	if len(engine) != len(HistogramBounds) {
		t.Fatalf("engine has %d finite bounds, exporters have %d", len(engine), len(HistogramBounds))
	}
	for i, d := range engine {
		if d.Seconds() != HistogramBounds[i] {
			t.Fatalf("bound %d: engine %v, exporter %v", i, d.Seconds(), HistogramBounds[i])
		}
	}
	if len(HistogramBoundSuffix) != BucketCount {
		t.Fatalf("expected %d suffixes, got %d", BucketCount, len(HistogramBoundSuffix))
	}
}

func TestCounterDefsUnique(t *testing.T) {
	ids := make(map[goPass.MetricID]bool, len(CounterDefs))
	names := make(map[string]bool, len(CounterDefs))
	for _, def := range CounterDefs {
		if ids[def.ID] || names[def.Name] {
			t.Fatalf("duplicate counter definition %+v", def)
		}
		ids[def.ID] = true
		names[def.Name] = true
	}
}

func TestCumulativeBuckets(t *testing.T) {
	got := CumulativeBuckets(NormalizeBuckets([]uint64{1, 0, 2, 0, 0, 0, 0, 3}))
	want := [BucketCount]uint64{1, 1, 3, 3, 3, 3, 3, 6}
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}
