package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Igoorx/godfield-flash/internal/engine"
	"github.com/Igoorx/godfield-flash/internal/infrastructure/results"
	"github.com/Igoorx/godfield-flash/internal/version"
	"github.com/Igoorx/godfield-flash/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var errHandshake = errors.New("first message must be JOIN")

// ResultReader - чтение сохраненных итогов (results.CachedReader).
type ResultReader interface {
	Result(ctx context.Context, roomID string) (*results.MatchRecord, error)
	Recent(ctx context.Context, limit int) ([]results.MatchRecord, error)
}

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

type Server struct {
	Engine  *engine.Service
	Results ResultReader

	httpServer *http.Server
}

func New(svc *engine.Service, res ResultReader, addr string) *Server {
	s := &Server{
		Engine:  svc,
		Results: res,
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Router собирает все маршруты сервера.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/ws", s.handleWS)
	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/rooms", func(r chi.Router) {
		r.Get("/", s.handleListRooms)
		r.Get("/{id}/result", s.handleRoomResult)
	})
	r.Get("/results", s.handleRecentResults)

	NewDebugHandler(s.Engine).RegisterRoutes(r)
	return r
}

// Run запускает HTTP сервер и блокируется до Shutdown.
func (s *Server) Run() error {
	logger.Log.Infof("GodField server running on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Разрешаем запросы с фронтенда
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, r)
	})
}

// handleWS обрабатывает подключение по WebSocket
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Warn("Upgrade error")
		return
	}

	client := NewClient(s.Engine, conn)

	// Запускаем пампы
	go client.writePump()
	go client.readPump()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, version.Info())
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Engine.ListRooms(r.Context()))
}

func (s *Server) handleRoomResult(w http.ResponseWriter, r *http.Request) {
	if s.Results == nil {
		http.Error(w, "results are not configured", http.StatusServiceUnavailable)
		return
	}
	rec, err := s.Results.Result(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, results.ErrNotFound):
		http.Error(w, "result not found", http.StatusNotFound)
	case err != nil:
		logger.Log.WithError(err).Error("Failed to read match result")
		http.Error(w, "internal error", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, rec)
	}
}

// handleRecentResults: /results?limit=N, последние партии по времени окончания.
func (s *Server) handleRecentResults(w http.ResponseWriter, r *http.Request) {
	if s.Results == nil {
		http.Error(w, "results are not configured", http.StatusServiceUnavailable)
		return
	}
	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive number", http.StatusBadRequest)
			return
		}
		limit = min(n, maxRecentLimit)
	}
	recs, err := s.Results.Recent(r.Context(), limit)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to list match results")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Log.WithError(err).Debug("write json response failed")
	}
}
