package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	resumesUploadedTotal   atomic.Uint64
	resumeParseSucceeded   atomic.Uint64
	resumeParseFailed      atomic.Uint64
	analysesCompletedTotal atomic.Uint64
	analysesFailedTotal    atomic.Uint64
	jobCacheHitsTotal      atomic.Uint64
	jobCacheMissesTotal    atomic.Uint64

	parseDuration   = newHistogram([]float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000})
	matchPercentage = newHistogram([]float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100})
)

// IncResumeUploaded counts an accepted upload.
func IncResumeUploaded() {
	resumesUploadedTotal.Add(1)
}

// IncResumeParsed counts a finished parse, split by outcome.
func IncResumeParsed(ok bool) {
	if ok {
		resumeParseSucceeded.Add(1)
		return
	}
	resumeParseFailed.Add(1)
}

// ObserveParseDurationMs records how long text extraction took.
func ObserveParseDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	parseDuration.Observe(value)
}

// IncAnalysisCompleted counts a stored analysis and records its score.
func IncAnalysisCompleted(pct float64) {
	analysesCompletedTotal.Add(1)
	matchPercentage.Observe(pct)
}

// IncAnalysisFailed counts an analysis request that could not be scored.
func IncAnalysisFailed() {
	analysesFailedTotal.Add(1)
}

// IncJobCache counts a job board cache lookup.
func IncJobCache(hit bool) {
	if hit {
		jobCacheHitsTotal.Add(1)
		return
	}
	jobCacheMissesTotal.Add(1)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "resumes_uploaded_total", "Total resumes accepted for upload", resumesUploadedTotal.Load())
	writeLabeledCounter(&buf, "resume_parse_total", "Total resume parse attempts by outcome", "outcome", map[string]uint64{
		"parsed": resumeParseSucceeded.Load(),
		"failed": resumeParseFailed.Load(),
	})
	writeHistogram(&buf, "resume_parse_duration_ms", "Resume text extraction duration in milliseconds", parseDuration.Snapshot())
	writeCounter(&buf, "analyses_completed_total", "Total analyses stored", analysesCompletedTotal.Load())
	writeCounter(&buf, "analyses_failed_total", "Total analyses rejected or failed", analysesFailedTotal.Load())
	writeHistogram(&buf, "analysis_match_percentage", "Distribution of match percentages", matchPercentage.Snapshot())
	writeLabeledCounter(&buf, "job_cache_requests_total", "Job board cache lookups by result", "result", map[string]uint64{
		"hit":  jobCacheHitsTotal.Load(),
		"miss": jobCacheMissesTotal.Load(),
	})
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe adds value to the first bucket whose bound covers it; Render
// accumulates.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeLabeledCounter(buf *bytes.Buffer, name, help, label string, values map[string]uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
