package metrics

import (
	"strings"
	"testing"
)

func TestRenderIncludesCountersAndHistograms(t *testing.T) {
	IncResumeUploaded()
	IncResumeParsed(true)
	IncResumeParsed(false)
	ObserveParseDurationMs(42)
	IncAnalysisCompleted(66.67)
	IncJobCache(true)

	out := Render()
	for _, want := range []string{
		"# TYPE resumes_uploaded_total counter",
		`resume_parse_total{outcome="parsed"}`,
		`resume_parse_total{outcome="failed"}`,
		`resume_parse_duration_ms_bucket{le="50"}`,
		`analysis_match_percentage_bucket{le="+Inf"}`,
		`job_cache_requests_total{result="hit"}`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{10, 50, 100})
	h.Observe(5)
	h.Observe(40)
	h.Observe(500)

	snap := h.Snapshot()
	if snap.count != 3 || snap.sum != 545 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	var cumulative uint64
	want := []uint64{1, 2, 2}
	for i := range snap.buckets {
		cumulative += snap.counts[i]
		if cumulative != want[i] {
			t.Fatalf("bucket %d: got %d want %d", i, cumulative, want[i])
		}
	}
}
