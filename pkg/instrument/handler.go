package instrument

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/bymeisam/use"
)

// StatsSource reports event loop statistics. *use.Loop implements it.
type StatsSource interface {
	Stats() use.LoopStats
}

// Handler returns the operational HTTP surface:
//
//	GET /healthz  liveness probe
//	GET /statsz   event loop statistics as JSON, keyed by loop name
//	GET /metrics  Prometheus scrape endpoint
//
// loops may be nil; /statsz then reports an empty object.
func Handler(m *Metrics, loops map[string]StatsSource) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})

	r.Get("/statsz", func(w http.ResponseWriter, req *http.Request) {
		stats := make(map[string]use.LoopStats, len(loops))
		for name, src := range loops {
			stats[name] = src.Stats()
		}
		writeJSON(w, stats)
	})

	r.Handle("/metrics", m.HTTPHandler())

	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
