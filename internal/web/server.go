package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vadiminshakov/invoiceview/internal/domain"
)

const heartbeatInterval = 30 * time.Second

type invoiceView interface {
	Snapshot() domain.Snapshot
	SetFilter(text string) domain.Snapshot
	SortBy(field domain.SortField) domain.Snapshot
}

type snapshotSubscriber interface {
	Subscribe() chan domain.Snapshot
	Unsubscribe(ch chan domain.Snapshot)
}

// Server exposes the HTML table, a JSON API over the view and an SSE stream of snapshots.
type Server struct {
	Addr        string
	View        invoiceView
	Broadcaster snapshotSubscriber
	Metrics     http.Handler
	logger      *zap.Logger
}

// NewServer creates a new web server instance. metrics may be nil.
func NewServer(addr string, view invoiceView, broadcaster snapshotSubscriber, metrics http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Addr: addr, View: view, Broadcaster: broadcaster, Metrics: metrics, logger: logger}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/view", s.handleView).Methods(http.MethodGet)
	r.HandleFunc("/api/view/stream", s.handleViewStream).Methods(http.MethodGet)
	r.HandleFunc("/api/filter", s.handleFilter).Methods(http.MethodPost)
	r.HandleFunc("/api/sort/{field}", s.handleSort).Methods(http.MethodPost)
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics).Methods(http.MethodGet)
	}

	return r
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("web server listening", zap.String("addr", s.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.View.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"loading": snap.Loading,
		"total":   snap.Total,
	})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.View.Snapshot())
}

type filterRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid filter request", http.StatusBadRequest)
			return
		}
	} else {
		req.Text = r.FormValue("text")
	}

	writeJSON(w, http.StatusOK, s.View.SetFilter(req.Text))
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	field, err := domain.ParseSortField(mux.Vars(r)["field"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, s.View.SortBy(field))
}

func (s *Server) handleViewStream(w http.ResponseWriter, r *http.Request) {
	if s.Broadcaster == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "snapshot stream not available")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// subscribe before reading the current state so no update falls in between
	updates := s.Broadcaster.Subscribe()
	defer s.Broadcaster.Unsubscribe(updates)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// send a comment heartbeat every 30s so proxies keep connection
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	send := func(snap domain.Snapshot) error {
		payload, err := json.Marshal(snap)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "event: view\n")
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
		return nil
	}

	if err := send(s.View.Snapshot()); err != nil {
		s.logger.Error("view stream initial snapshot", zap.Error(err))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if err := send(snap); err != nil {
				s.logger.Error("view stream send", zap.Error(err))
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		started := time.Now()
		next.ServeHTTP(rec, r)

		s.logger.Debug("http request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(started)))
	})
}
