package internaldefs

import (
	goCred "github.com/MrEthical07/goCred"
)

// MetricPrefix is prepended to every exported metric name.
const MetricPrefix = "gocred_"

// CounterDef maps a core counter to its exported name.
type CounterDef struct {
	ID   goCred.MetricID
	Name string
	Help string
}

// HistogramDef maps a core histogram to its exported name.
type HistogramDef struct {
	ID   goCred.MetricID
	Name string
	Help string
}

func counter(id goCred.MetricID, help string) CounterDef {
	return CounterDef{ID: id, Name: MetricPrefix + id.String() + "_total", Help: help}
}

// CounterDefs lists every exported counter in exposition order.
var CounterDefs = []CounterDef{
	counter(goCred.MetricRegisterSuccess, "Credential records created."),
	counter(goCred.MetricRegisterDuplicate, "Registrations rejected because the username exists."),
	counter(goCred.MetricPasswordSetSuccess, "Passwords digested and stored."),
	counter(goCred.MetricPasswordSetRejected, "Passwords rejected by the digest engine."),
	counter(goCred.MetricValidateSuccess, "Candidate passwords that matched."),
	counter(goCred.MetricValidateFailure, "Candidate passwords that did not match."),
	counter(goCred.MetricLoginRateLimited, "Authentications refused by the failed-attempt throttle."),
	counter(goCred.MetricPasswordChangeSuccess, "Completed password changes."),
	counter(goCred.MetricPasswordChangeInvalidOld, "Password changes with a wrong current password."),
	counter(goCred.MetricEngineUpgraded, "Records rehashed under the default engine at login."),
	counter(goCred.MetricRecordDeleted, "Deleted credential records."),
	counter(goCred.MetricStoreFailure, "Credential store errors."),
	counter(goCred.MetricTokenIssued, "Access tokens issued."),
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goCred.MetricDigestLatency, Name: MetricPrefix + "digest_latency_seconds", Help: "Digest computation latency."},
}

// AuditDroppedName is the counter for audit events lost to backpressure.
const AuditDroppedName = MetricPrefix + "audit_dropped_total"

// HistogramBounds are the bucket upper bounds in seconds, as rendered in "le" labels.
var HistogramBounds = []string{
	"5e-05",
	"0.00025",
	"0.001",
	"0.005",
	"0.025",
	"0.1",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix are name-safe forms of HistogramBounds.
var HistogramBoundSuffix = []string{
	"0_00005",
	"0_00025",
	"0_001",
	"0_005",
	"0_025",
	"0_1",
	"0_5",
	"inf",
}

// NormalizeBuckets copies up to eight raw bucket counts into a fixed array.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	copy(out[:], raw)
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i, v := range raw {
		running += v
		out[i] = running
	}
	return out
}
