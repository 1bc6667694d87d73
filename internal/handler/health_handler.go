package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Items   *int   `json:"items,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthHandler reports whether the session storage answers. Drivers that
// can count their records also report how many they hold.
func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Storage: h.Driver}
	if h.Health != nil {
		if err := h.Health.Ping(ctx); err != nil {
			resp.Status, resp.Error = "unavailable", "storage unavailable: "+err.Error()
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}

	if counter, ok := h.Health.(ItemCounter); ok {
		count, err := counter.CountItems(ctx)
		if err != nil {
			resp.Status, resp.Error = "degraded", err.Error()
			writeJSON(w, http.StatusInternalServerError, resp)
			return
		}
		resp.Items = &count
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
