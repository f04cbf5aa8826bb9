package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	mu         sync.Mutex
	operations map[string]*OperationCount
}

type OperationCount struct {
	Total    uint64 `json:"total"`
	Failures uint64 `json:"failures"`
}

func New() *Collector {
	return &Collector{operations: map[string]*OperationCount{}}
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

// RecordOperation counts one repository operation, e.g. "employee.create",
// and whether it failed.
func (c *Collector) RecordOperation(name string, failed bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	count, ok := c.operations[name]
	if !ok {
		count = &OperationCount{}
		c.operations[name] = count
	}
	count.Total++
	if failed {
		count.Failures++
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}

	c.mu.Lock()
	ops := make(map[string]OperationCount, len(c.operations))
	for name, count := range c.operations {
		ops[name] = *count
	}
	c.mu.Unlock()

	return map[string]any{
		"requestsTotal":    total,
		"errorsTotal":      errs,
		"rateLimitedTotal": limited,
		"avgDurationMs":    avg,
		"totalDurationMs":  totalMs,
		"operations":       ops,
	}
}
