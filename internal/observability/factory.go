package observability

import (
	"expvar"
	"fmt"
	"net/http"
)

// Open builds the recorder for backend and, when the backend exposes an
// endpoint, the handler serving it. An empty backend means none.
func Open(backend Backend) (Recorder, http.Handler, error) {
	switch backend {
	case BackendPrometheus:
		rec := NewPrometheusRecorder()
		return rec, rec.Handler(), nil
	case BackendExpvar:
		return NewExpvarRecorder("expdb_queries"), expvar.Handler(), nil
	case BackendNone, "":
		return Noop{}, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown metrics backend %q", backend)
	}
}
