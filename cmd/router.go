package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/angeloszaimis/origin-proxy/config"
	"github.com/angeloszaimis/origin-proxy/internal/handler"
	"github.com/angeloszaimis/origin-proxy/internal/metrics"
)

const originsPath = "/-/origins"

// setupRouter mounts the metrics and status endpoints and one proxy handler
// per route. Longer prefixes are registered first so they win. Requests
// matching no route are dispatched without a routing target.
func setupRouter(
	log *slog.Logger,
	cfg *config.Config,
	dispatcher handler.Dispatcher,
	origins *originSet,
	collector *metrics.Collector,
) *mux.Router {
	r := mux.NewRouter()

	r.Handle(cfg.Metrics.Path, collector.Handler()).Methods(http.MethodGet)
	r.HandleFunc(originsPath, originsHandler(origins)).Methods(http.MethodGet)

	routes := append([]config.RouteConfig(nil), cfg.Routes...)
	sort.SliceStable(routes, func(i, j int) bool {
		return len(routes[i].Prefix) > len(routes[j].Prefix)
	})

	for _, rt := range routes {
		r.PathPrefix(rt.Prefix).Handler(newProxyHandler(log, cfg, dispatcher, collector, rt.Origin))
	}

	r.NotFoundHandler = newProxyHandler(log, cfg, dispatcher, collector, "")

	return r
}

func newProxyHandler(log *slog.Logger, cfg *config.Config, dispatcher handler.Dispatcher, collector *metrics.Collector, target string) http.Handler {
	return handler.NewProxyHandler(log, dispatcher, collector, handler.Options{
		Target:       target,
		DebugHeader:  cfg.Debug.Header,
		HeadersOnly:  cfg.Debug.HeadersOnly,
		MaxBodyBytes: cfg.Debug.MaxBodyBytes,
	})
}

func originsHandler(origins *originSet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{"origins": origins.status()}); err != nil {
			http.Error(w, "Failed to encode origins", http.StatusInternalServerError)
		}
	}
}
