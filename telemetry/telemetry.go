// Package telemetry aggregates per-statement query statistics in process.
package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/satishbabariya/pgql/query/executor"
)

// OperationStats aggregates the statements of one operation on one table.
type OperationStats struct {
	Operation string        `json:"operation"`
	Table     string        `json:"table"`
	Count     int64         `json:"count"`
	Errors    int64         `json:"errors"`
	Total     time.Duration `json:"total_ns"`
	Max       time.Duration `json:"max_ns"`
	LastError string        `json:"last_error,omitempty"`
}

// Mean returns the average statement duration.
func (s OperationStats) Mean() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// Snapshot is a point-in-time copy of the collected statistics.
type Snapshot struct {
	Since      time.Time        `json:"since"`
	Operations []OperationStats `json:"operations"`
}

type statsKey struct {
	operation string
	table     string
}

// Collector records executor statements. It is safe for concurrent use.
type Collector struct {
	mu    sync.Mutex
	since time.Time
	stats map[statsKey]*OperationStats
	now   func() time.Time
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	c := &Collector{now: time.Now}
	c.Reset()
	return c
}

// Middleware returns an executor middleware feeding the collector.
func (c *Collector) Middleware() executor.Middleware {
	return func(ctx context.Context, event *executor.QueryEvent, next func() error) error {
		err := next()
		c.Record(event.Operation, event.Table, event.Duration, err)
		return err
	}
}

// Record adds one statement.
func (c *Collector) Record(operation, table string, d time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := statsKey{operation: operation, table: table}
	s, ok := c.stats[key]
	if !ok {
		s = &OperationStats{Operation: operation, Table: table}
		c.stats[key] = s
	}

	s.Count++
	s.Total += d
	if d > s.Max {
		s.Max = d
	}
	if err != nil {
		s.Errors++
		s.LastError = err.Error()
	}
}

// Snapshot copies the current statistics, ordered by table then operation.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	ops := make([]OperationStats, 0, len(c.stats))
	for _, s := range c.stats {
		ops = append(ops, *s)
	}
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Table != ops[j].Table {
			return ops[i].Table < ops[j].Table
		}
		return ops[i].Operation < ops[j].Operation
	})
	return Snapshot{Since: c.since, Operations: ops}
}

// Reset clears every counter.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.since = c.now()
	c.stats = make(map[statsKey]*OperationStats)
}

// ServeHTTP writes the snapshot as JSON.
func (c *Collector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(c.Snapshot())
}
