package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
)

// ErrorResponse — единый формат ошибок API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: msg})
}

// writeTargetError превращает ошибку сервиса в ответ: неизвестная цель — 404.
func writeTargetError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrUnknownTarget) {
		writeError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "internal", err.Error())
}

// NotFound — запасной вид для неизвестных путей.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not_found", "no dashboard at "+r.URL.Path)
}

func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
