package prometheus

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goPass "github.com/MrEthical07/goPass"
	"github.com/MrEthical07/goPass/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeSource struct {
	snapshot goPass.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() goPass.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                    { return f.dropped }

func TestCollectCounters(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: goPass.MetricsSnapshot{
			Counters: map[goPass.MetricID]uint64{
				goPass.MetricGenerateSuccess: 7,
				goPass.MetricVerifyExpired:   2,
			},
		},
		dropped: 3,
	})

	expected := `
# HELP gopass_generate_success_total Tokens issued.
# TYPE gopass_generate_success_total counter
gopass_generate_success_total 7
# HELP gopass_verify_expired_total Verify calls where the current token had expired.
# TYPE gopass_verify_expired_total counter
gopass_verify_expired_total 2
# HELP gopass_audit_dropped_total Dropped audit events due to dispatcher backpressure.
# TYPE gopass_audit_dropped_total counter
gopass_audit_dropped_total 3
`
	err := testutil.CollectAndCompare(exp, strings.NewReader(expected),
		"gopass_generate_success_total",
		"gopass_verify_expired_total",
		"gopass_audit_dropped_total",
	)
	if err != nil {
		t.Fatalf("unexpected collection: %v", err)
	}
}

func TestCollectHistogramIsCumulative(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: goPass.MetricsSnapshot{
			Histograms: map[goPass.MetricID][]uint64{
				goPass.MetricVerifyLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
	})

	expected := `
# HELP gopass_verify_latency_seconds Verify latency histogram.
# TYPE gopass_verify_latency_seconds histogram
gopass_verify_latency_seconds_bucket{le="0.0001"} 1
gopass_verify_latency_seconds_bucket{le="0.0005"} 3
gopass_verify_latency_seconds_bucket{le="0.001"} 6
gopass_verify_latency_seconds_bucket{le="0.005"} 10
gopass_verify_latency_seconds_bucket{le="0.01"} 15
gopass_verify_latency_seconds_bucket{le="0.05"} 21
gopass_verify_latency_seconds_bucket{le="0.25"} 28
gopass_verify_latency_seconds_bucket{le="+Inf"} 36
gopass_verify_latency_seconds_sum 0
gopass_verify_latency_seconds_count 36
`
	if err := testutil.CollectAndCompare(exp, strings.NewReader(expected), "gopass_verify_latency_seconds"); err != nil {
		t.Fatalf("unexpected histogram: %v", err)
	}
}

func TestCollectorRegistersCleanly(t *testing.T) {
	registry := prometheus.NewPedanticRegistry()
	if err := registry.Register(NewExporterFromSource(fakeSource{})); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := registry.Gather(); err != nil {
		t.Fatalf("Gather: %v", err)
	}
}

func TestHandlerServesEngineMetrics(t *testing.T) {
	engine, err := goPass.New().
		WithStore(store.NewMemoryStore()).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer engine.Close()

	ctx := context.Background()
	if err := engine.Register(ctx, "alice"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := engine.Generate(ctx, "alice"); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	rec := httptest.NewRecorder()
	NewExporter(engine).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	out := string(body)
	for _, want := range []string{
		"gopass_generate_success_total 1",
		"gopass_register_success_total 1",
		"gopass_verify_latency_seconds_count 0",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, out)
		}
	}
}
