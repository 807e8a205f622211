// Package server exposes the recommendation pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/recommend"
	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/session"
)

// Recommender is the pipeline behind the recommendation endpoint.
type Recommender interface {
	Recommend(ctx context.Context, profile session.Profile, input recommend.ShoppingInput) recommend.Response
}

// Options configures the HTTP server.
type Options struct {
	Addr           string
	RequestTimeout time.Duration
	Gatherer       prometheus.Gatherer
	Logger         *zap.Logger
}

// Server routes the API endpoints and tracks in-flight recommendation runs
// so they can be cancelled.
type Server struct {
	store *session.Store
	svc   Recommender
	log   *zap.Logger
	opts  Options
	http  *http.Server

	mu     sync.Mutex
	active map[string]context.CancelFunc
}

func New(store *session.Store, svc Recommender, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = ":5000"
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 90 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := &Server{
		store:  store,
		svc:    svc,
		log:    opts.Logger,
		opts:   opts,
		active: map[string]context.CancelFunc{},
	}

	r := mux.NewRouter()
	r.Use(s.recoverMiddleware, s.corsMiddleware, s.loggingMiddleware)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/init-session", s.handleInitSession).Methods(http.MethodPost)
	api.HandleFunc("/user-info", s.handleUserInfo).Methods(http.MethodPost)
	api.HandleFunc("/shopping-recommendations", s.handleRecommendations).Methods(http.MethodPost)
	api.HandleFunc("/request-status/{id}", s.handleRequestStatus).Methods(http.MethodGet)
	api.HandleFunc("/cancel-request/{id}", s.handleCancelRequest).Methods(http.MethodPost)
	api.HandleFunc("/cleanup-session", s.handleCleanupSession).Methods(http.MethodPost)
	api.HandleFunc("/export-data/{id}", s.handleExportData).Methods(http.MethodGet)
	api.HandleFunc("/worker-stats", s.handleWorkerStats).Methods(http.MethodGet)
	r.PathPrefix("/api").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      2 * opts.RequestTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler exposes the routed handler, for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("http server listening", zap.String("addr", s.opts.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and cancels active aggregations.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for _, cancel := range s.active {
		cancel()
	}
	s.mu.Unlock()
	return s.http.Shutdown(ctx)
}

// trackRun registers a cancellable context for one session's aggregation.
func (s *Server) trackRun(sessionID string, parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithTimeout(parent, s.opts.RequestTimeout)
	s.mu.Lock()
	s.active[sessionID] = cancel
	s.mu.Unlock()
	return ctx, func() {
		s.mu.Lock()
		delete(s.active, sessionID)
		s.mu.Unlock()
		cancel()
	}
}

// cancelRun cancels the session's in-flight aggregation, if any.
func (s *Server) cancelRun(sessionID string) bool {
	s.mu.Lock()
	cancel, ok := s.active[sessionID]
	delete(s.active, sessionID)
	s.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}
