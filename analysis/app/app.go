// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package app implements the HTTP front end of the benchmark
// comparison dashboard.
package app

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nosqlbench/perf/dashboard"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/xid"
)

// App serves dashboard views.
type App struct {
	Adapter     *dashboard.Adapter
	Comparisons []dashboard.Comparison
	Logger      *log.Logger

	registry *prometheus.Registry
	requests *prometheus.HistogramVec
	failures *prometheus.CounterVec
	router   chi.Router
}

// New returns an App serving the views of adapter and the default
// comparisons. A nil logger logs to standard error.
func New(adapter *dashboard.Adapter, logger *log.Logger) *App {
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	a := &App{
		Adapter:     adapter,
		Comparisons: dashboard.DefaultComparisons(),
		Logger:      logger,
		registry:    prometheus.NewRegistry(),
	}
	a.requests = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "benchdash_http_request_duration_seconds",
		Help:    "Latency of dashboard HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "code"})
	a.failures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "benchdash_failures_total",
		Help: "Failed dashboard requests by failure kind.",
	}, []string{"kind"})
	a.registry.MustRegister(a.requests, a.failures)
	a.router = a.routes()
	return a
}

func (a *App) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.CleanPath)
	r.Use(requestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  a.Logger,
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(a.instrument)

	r.Get("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}).ServeHTTP)
	r.Get("/", a.index)
	r.Get("/views", a.listViews)
	r.Get("/views/{name}", a.runView)
	r.Get("/views/{name}/chart.{format}", a.chart)
	r.Get("/summary", a.summary)
	r.Get("/compare", a.listComparisons)
	r.Get("/compare/{name}", a.compare)
	return r
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// RegisterOnMux registers the app's handlers on mux.
func (a *App) RegisterOnMux(mux *http.ServeMux) {
	mux.Handle("/", a)
}

// requestID tags every request with an id, reusing the one the client
// sent in X-Request-Id if any.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" {
			id = xid.New().String()
		}
		w.Header().Set(middleware.RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *App) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		a.requests.WithLabelValues(route, strconv.Itoa(code)).Observe(time.Since(start).Seconds())
	})
}

// logf logs a line tagged with r's request id.
func (a *App) logf(r *http.Request, format string, args ...interface{}) {
	if id := middleware.GetReqID(r.Context()); id != "" {
		format = "[" + id + "] " + format
	}
	a.Logger.Printf(format, args...)
}

func (a *App) writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	enc, err := json.Marshal(v)
	if err != nil {
		a.writeFailure(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(enc)
}

// writeFailure reports err as a JSON dashboard.Failure.
func (a *App) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	f := dashboard.Describe(err)
	a.failures.WithLabelValues(f.Kind).Inc()
	a.logf(r, "%s %s: %v", r.Method, r.URL.Path, err)

	enc, _ := json.Marshal(f)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.StatusCode())
	w.Write(enc)
}
