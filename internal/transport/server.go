// Package transport carries the player protocol over HTTP so another
// process can drive a running session.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/mgpai22/subplay/internal/logging"
	"github.com/mgpai22/subplay/internal/player"
)

const (
	MessagePath = "/api/message"
	StatusPath  = "/api/status"

	RequestIDHeader = "X-Request-ID"

	// subtitle files are text; anything larger is not one
	maxBodyBytes = 32 << 20
)

type Server struct {
	handler *player.Handler
	logger  *logging.Logger
	router  *mux.Router
}

func NewServer(handler *player.Handler, logger *logging.Logger) *Server {
	s := &Server{
		handler: handler,
		logger:  logging.OrNop(logger).Named("http"),
		router:  mux.NewRouter(),
	}

	s.router.Use(s.requestLogging)
	s.router.HandleFunc(MessagePath, s.handleMessage).Methods(http.MethodPost)
	s.router.HandleFunc(StatusPath, s.handleStatus).Methods(http.MethodGet)
	return s
}

// Handler returns the router wrapped with CORS, so a page script can post
// messages too.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{RequestIDHeader},
	})
	return c.Handler(s.router)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req player.Request
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.logger.Debugw("invalid message body", "error", err)
		writeJSON(w, http.StatusBadRequest, player.Response{Error: "Invalid JSON"})
		return
	}

	resp := s.handler.Handle(r.Context(), req)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := s.handler.Handle(r.Context(), player.Request{Action: player.ActionGetSubtitleStatus})
	writeJSON(w, http.StatusOK, resp)
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

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Debugw("request",
			"id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
