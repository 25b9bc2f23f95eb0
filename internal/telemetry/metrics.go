// Package telemetry collects in-process metrics about tool calls and
// graph queries for troubleshooting.
package telemetry

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Metric names recorded by the MCP server.
const (
	MetricToolCalls      = "server.tool_calls"
	MetricToolErrors     = "server.tool_errors"
	MetricResourceReads  = "server.resource_reads"
	MetricResourceErrors = "server.resource_errors"
	MetricPromptFetches  = "server.prompt_fetches"
	MetricQueryDuration  = "graph.query_duration"
)

// maxTimerSamples bounds per-timer memory.
const maxTimerSamples = 100

// Collector is a thread-safe sink for counters and timers.
type Collector struct {
	mu       sync.RWMutex
	counters map[string]int64
	timers   map[string][]time.Duration
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		counters: make(map[string]int64),
		timers:   make(map[string][]time.Duration),
	}
}

// Increment adds one to a named counter. Per-tool counts use the
// "<metric>.<tool>" convention.
func (c *Collector) Increment(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[name]++
}

// RecordDuration records one sample for the named timer, keeping the most
// recent maxTimerSamples.
func (c *Collector) RecordDuration(name string, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	samples := append(c.timers[name], d)
	if len(samples) > maxTimerSamples {
		samples = samples[1:]
	}
	c.timers[name] = samples
}

// Counter returns the current value of a counter.
func (c *Collector) Counter(name string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.counters[name]
}

// AverageDuration returns the mean of the recorded samples, or zero when
// none were recorded.
func (c *Collector) AverageDuration(name string) time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	samples := c.timers[name]
	if len(samples) == 0 {
		return 0
	}

	var total time.Duration
	for _, d := range samples {
		total += d
	}
	return total / time.Duration(len(samples))
}

// Report renders all collected metrics as a plain-text summary.
func (c *Collector) Report() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var b strings.Builder
	b.WriteString("Metrics Report:\n")

	names := make([]string, 0, len(c.counters))
	for name := range c.counters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "  %s: %d\n", name, c.counters[name])
	}

	timerNames := make([]string, 0, len(c.timers))
	for name := range c.timers {
		timerNames = append(timerNames, name)
	}
	sort.Strings(timerNames)
	for _, name := range timerNames {
		samples := c.timers[name]
		var total time.Duration
		for _, d := range samples {
			total += d
		}
		fmt.Fprintf(&b, "  %s: avg=%v count=%d\n", name, total/time.Duration(len(samples)), len(samples))
	}

	return b.String()
}
