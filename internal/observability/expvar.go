package observability

import (
	"context"
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var expvarSeq uint64

// durationKey holds the summed milliseconds inside an operation's map.
const durationKey = "duration_ms_total"

// ExpvarRecorder publishes one expvar.Map keyed by operation. Each operation
// maps to counters under the same outcome labels the Prometheus recorder
// uses, plus the summed duration in milliseconds:
//
//	{"gene": {"success": 2, "error": 1, "duration_ms_total": 6.5}}
type ExpvarRecorder struct {
	name string
	ops  *expvar.Map

	mu sync.Mutex // serializes creation of per-operation maps
}

// OperationStats is the aggregate for one operation.
type OperationStats struct {
	Success    int64
	Error      int64
	DurationMS float64
}

// NewExpvarRecorder publishes a recorder under name. When name is empty or
// already published, a unique name is generated.
func NewExpvarRecorder(name string) *ExpvarRecorder {
	if name == "" || expvar.Get(name) != nil {
		id := atomic.AddUint64(&expvarSeq, 1)
		name = fmt.Sprintf("expdb_query_metrics_%d", id)
	}
	return &ExpvarRecorder{name: name, ops: expvar.NewMap(name)}
}

// Name returns the expvar export name.
func (r *ExpvarRecorder) Name() string {
	return r.name
}

// Observe implements Recorder.
func (r *ExpvarRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	m := r.operation(operation)
	m.Add(Outcome(success), 1)
	m.AddFloat(durationKey, float64(duration)/float64(time.Millisecond))
}

func (r *ExpvarRecorder) operation(name string) *expvar.Map {
	if m, ok := r.ops.Get(name).(*expvar.Map); ok {
		return m
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.ops.Get(name).(*expvar.Map); ok {
		return m
	}
	m := new(expvar.Map).Init()
	r.ops.Set(name, m)
	return m
}

// Snapshot copies the current aggregates.
func (r *ExpvarRecorder) Snapshot() map[string]OperationStats {
	out := make(map[string]OperationStats)
	r.ops.Do(func(kv expvar.KeyValue) {
		m, ok := kv.Value.(*expvar.Map)
		if !ok {
			return
		}
		var stats OperationStats
		if v, ok := m.Get(OutcomeSuccess).(*expvar.Int); ok {
			stats.Success = v.Value()
		}
		if v, ok := m.Get(OutcomeError).(*expvar.Int); ok {
			stats.Error = v.Value()
		}
		if v, ok := m.Get(durationKey).(*expvar.Float); ok {
			stats.DurationMS = v.Value()
		}
		out[kv.Key] = stats
	})
	return out
}
