package handler

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
)

type ControlService interface {
	Trigger(ctx context.Context, raw string) (domain.Target, error)
}

// ControlHandler — удаленный пульт взлома. Запись флага ограничена по частоте.
type ControlHandler struct {
	service ControlService
	limiter *rate.Limiter
}

func NewControlHandler(s ControlService, limiter *rate.Limiter) *ControlHandler {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	return &ControlHandler{service: s, limiter: limiter}
}

// NewSignalLimiter — лимит записи флагов через пульт. rps <= 0 — без ограничений.
func NewSignalLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

type TriggerResponse struct {
	Status string        `json:"status"`
	Target domain.Target `json:"target"`
}

// Trigger POST /breach-control?target=<target>
func (h *ControlHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("target")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "target is required")
		return
	}

	if !h.limiter.Allow() {
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusTooManyRequests, "rate_limited", "too many breach signals")
		return
	}

	target, err := h.service.Trigger(r.Context(), raw)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownTarget) {
			writeTargetError(w, err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, TriggerResponse{Status: "signalled", Target: target})
}
