package internaldefs

import (
	goPass "github.com/MrEthical07/goPass"
)

type CounterDef struct {
	ID   goPass.MetricID
	Name string
	Help string
}

type HistogramDef struct {
	ID   goPass.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: goPass.MetricGenerateSuccess, Name: "gopass_generate_success_total", Help: "Tokens issued."},
	{ID: goPass.MetricGenerateFailure, Name: "gopass_generate_failure_total", Help: "Generate calls that returned an error."},
	{ID: goPass.MetricVerifySuccess, Name: "gopass_verify_success_total", Help: "Verify calls that accepted the token."},
	{ID: goPass.MetricVerifyMismatch, Name: "gopass_verify_mismatch_total", Help: "Verify calls where the token was not the current token."},
	{ID: goPass.MetricVerifyExpired, Name: "gopass_verify_expired_total", Help: "Verify calls where the current token had expired."},
	{ID: goPass.MetricVerifyNoToken, Name: "gopass_verify_no_token_total", Help: "Verify calls for users never issued a token."},
	{ID: goPass.MetricVerifyRejected, Name: "gopass_verify_rejected_total", Help: "Verify calls rejected by input validation or lookup."},
	{ID: goPass.MetricRegisterSuccess, Name: "gopass_register_success_total", Help: "Successful user registrations."},
	{ID: goPass.MetricRegisterFailure, Name: "gopass_register_failure_total", Help: "Register calls that returned an error."},
	{ID: goPass.MetricStoreError, Name: "gopass_store_error_total", Help: "Credential store failures."},
}

var HistogramDefs = []HistogramDef{
	{ID: goPass.MetricVerifyLatency, Name: "gopass_verify_latency_seconds", Help: "Verify latency histogram."},
}

// AuditDroppedName is the counter for audit events dropped by a full dispatcher buffer.
const (
	AuditDroppedName = "gopass_audit_dropped_total"
	AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
)

// HistogramBounds are the finite bucket upper bounds in seconds, matching
// goPass.LatencyBucketBounds. The last engine bucket is +Inf.
var HistogramBounds = []float64{
	0.0001,
	0.0005,
	0.001,
	0.005,
	0.01,
	0.05,
	0.25,
}

// HistogramBoundSuffix names each bucket, +Inf included, for exporters that
// flatten buckets into separate instruments.
var HistogramBoundSuffix = []string{
	"0_0001",
	"0_0005",
	"0_001",
	"0_005",
	"0_01",
	"0_05",
	"0_25",
	"inf",
}

// BucketCount is the number of engine histogram buckets, +Inf included.
const BucketCount = 8

func NormalizeBuckets(raw []uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [BucketCount]uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
