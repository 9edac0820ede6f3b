package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests     uint64
	errorRequests     uint64
	rateLimited       uint64
	totalDurationMs   uint64
	recordsImported   uint64
	payslipsPublished uint64
	emailsSent        uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) AddImportedRecords(n int) {
	if n > 0 {
		atomic.AddUint64(&c.recordsImported, uint64(n))
	}
}

func (c *Collector) AddPublishedPayslips(n int) {
	if n > 0 {
		atomic.AddUint64(&c.payslipsPublished, uint64(n))
	}
}

func (c *Collector) AddEmailsSent(n int) {
	if n > 0 {
		atomic.AddUint64(&c.emailsSent, uint64(n))
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":     total,
		"errorsTotal":       atomic.LoadUint64(&c.errorRequests),
		"rateLimitedTotal":  atomic.LoadUint64(&c.rateLimited),
		"avgDurationMs":     avg,
		"recordsImported":   atomic.LoadUint64(&c.recordsImported),
		"payslipsPublished": atomic.LoadUint64(&c.payslipsPublished),
		"emailsSent":        atomic.LoadUint64(&c.emailsSent),
	}
}
