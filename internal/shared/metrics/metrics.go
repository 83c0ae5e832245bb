package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	jobsCreatedTotal    atomic.Uint64
	jobsUpdatedTotal    atomic.Uint64
	jobsDeletedTotal    atomic.Uint64
	jobErrorsTotal      atomic.Uint64
	uploadsStoredTotal  atomic.Uint64
	uploadsRemovedTotal atomic.Uint64

	uploadSizeBytes = newHistogram([]float64{16 << 10, 64 << 10, 256 << 10, 1 << 20, 4 << 20, 10 << 20})
)

// IncJobsCreated increments the created counter.
func IncJobsCreated() {
	jobsCreatedTotal.Add(1)
}

// IncJobsUpdated increments the updated counter.
func IncJobsUpdated() {
	jobsUpdatedTotal.Add(1)
}

// IncJobsDeleted increments the deleted counter.
func IncJobsDeleted() {
	jobsDeletedTotal.Add(1)
}

// IncJobErrors counts failed job operations (persistence or upload).
func IncJobErrors() {
	jobErrorsTotal.Add(1)
}

// IncUploadsRemoved counts attachments released from the content store.
func IncUploadsRemoved() {
	uploadsRemovedTotal.Add(1)
}

// ObserveUpload counts a stored attachment and records its size.
func ObserveUpload(sizeBytes int64) {
	uploadsStoredTotal.Add(1)
	if sizeBytes < 0 {
		sizeBytes = 0
	}
	uploadSizeBytes.Observe(float64(sizeBytes))
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
	writeCounter(&buf, "jobs_created_total", "Total job records created", jobsCreatedTotal.Load())
	writeCounter(&buf, "jobs_updated_total", "Total job records updated", jobsUpdatedTotal.Load())
	writeCounter(&buf, "jobs_deleted_total", "Total job records deleted", jobsDeletedTotal.Load())
	writeCounter(&buf, "job_errors_total", "Total failed job operations", jobErrorsTotal.Load())
	writeCounter(&buf, "uploads_stored_total", "Total attachments stored", uploadsStoredTotal.Load())
	writeCounter(&buf, "uploads_removed_total", "Total attachments removed", uploadsRemovedTotal.Load())
	writeHistogram(&buf, "upload_size_bytes", "Stored attachment size in bytes", uploadSizeBytes.Snapshot())
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

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
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
