package server

import (
	"errors"
	"net/http"

	"github.com/Igoorx/godfield-flash/internal/engine"

	"github.com/go-chi/chi/v5"
)

// DebugHandler предоставляет доступ к внутреннему состоянию комнат
type DebugHandler struct {
	Service *engine.Service
}

func NewDebugHandler(s *engine.Service) *DebugHandler {
	return &DebugHandler{Service: s}
}

// RegisterRoutes регистрирует debug-эндпоинты
func (h *DebugHandler) RegisterRoutes(r chi.Router) {
	r.Get("/debug/rooms/{id}", h.handleRoom)
}

// /debug/rooms/{id} - игроки, порядок атак и очередь атак комнаты
func (h *DebugHandler) handleRoom(w http.ResponseWriter, r *http.Request) {
	dump, err := h.Service.Debug(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, engine.ErrRoomNotFound):
		http.Error(w, "room not found", http.StatusNotFound)
	case err != nil:
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		writeJSON(w, http.StatusOK, dump)
	}
}
