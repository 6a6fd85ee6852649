// Origin is a small demo upstream for trying the proxy locally.
//
// Usage:
//
//	go run ./scripts/origin -port 8081 -name catalog
//
// Every request is answered with a JSON document describing what arrived.
// GET /status/{code} answers with that status code, which makes it easy to
// trip circuit breakers. GET /health is used by the health checker.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/angeloszaimis/origin-proxy/pkg/logger"
)

type echo struct {
	ID        string              `json:"id"`
	Origin    string              `json:"origin"`
	RequestID string              `json:"request_id,omitempty"`
	Method    string              `json:"method"`
	Path      string              `json:"path"`
	Query     string              `json:"query,omitempty"`
	Headers   map[string][]string `json:"headers"`
	BodyBytes int                 `json:"body_bytes"`
}

func main() {
	port := flag.Int("port", 8081, "port to listen on")
	name := flag.String("name", "origin", "name reported in responses")
	flag.Parse()

	log := logger.New("info", false, "dev").With(slog.String("origin", *name))

	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/status/{code:[1-5][0-9][0-9]}", func(w http.ResponseWriter, r *http.Request) {
		code, _ := strconv.Atoi(mux.Vars(r)["code"])
		w.WriteHeader(code)
	})

	r.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n, err := io.Copy(io.Discard, r.Body)
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		resp := echo{
			ID:        uuid.NewString(),
			Origin:    *name,
			RequestID: r.Header.Get("X-Request-Id"),
			Method:    r.Method,
			Path:      r.URL.Path,
			Query:     r.URL.RawQuery,
			Headers:   r.Header,
			BodyBytes: int(n),
		}

		log.Info("request",
			slog.String("request_id", resp.RequestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("from", r.RemoteAddr))

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Warn("encode response", slog.Any("err", err))
		}
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Info("starting origin", slog.String("addr", addr))
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Error("server failed", slog.Any("err", err))
		os.Exit(1)
	}
}
