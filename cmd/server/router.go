package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/sharely/internal/auth"
	"github.com/mmynk/sharely/internal/metrics"
	"github.com/mmynk/sharely/internal/middleware"
	"github.com/mmynk/sharely/internal/service"
	"github.com/mmynk/sharely/internal/storage"
	"github.com/mmynk/sharely/pkg/billrpc"
)

// routerDeps is everything the HTTP router needs.
type routerDeps struct {
	store       storage.Store
	tokens      *auth.TokenManager
	metrics     *metrics.Metrics
	gatherer    prometheus.Gatherer
	staticDir   string
	corsOrigins []string
}

func newRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Connect-Protocol-Version", "Connect-Timeout-Ms"},
		ExposedHeaders: []string{"Connect-Protocol-Version", "Connect-Timeout-Ms"},
		MaxAge:         300,
	}))

	// Interceptors run in the order listed: the token is resolved first so
	// the logger can report which bill an edit was for.
	interceptors := connect.WithInterceptors(
		middleware.BillToken(deps.tokens),
		middleware.LoggingInterceptor(),
		middleware.MetricsInterceptor(deps.metrics),
	)
	billPath, billHandler := billrpc.NewBillServiceHandler(
		service.NewBillService(deps.store, deps.tokens, deps.metrics),
		interceptors,
	)
	r.Handle(billPath+"*", billHandler)

	r.Handle("/metrics", promhttp.HandlerFor(deps.gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})

	r.NotFound(staticHandler(deps.staticDir))

	return r
}

// staticHandler serves the frontend. Unknown paths get index.html.
func staticHandler(staticDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Unknown RPCs should not fall through to the frontend
		if strings.HasPrefix(r.URL.Path, "/"+billrpc.BillServiceName) {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(staticDir, filepath.Clean("/"+urlPath))
		if info, err := os.Stat(filePath); err != nil || info.IsDir() {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}

		http.ServeFile(w, r, filePath)
	}
}

// requestLogger logs all incoming requests
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", chimw.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
