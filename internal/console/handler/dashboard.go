package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
)

// DashboardService Описываем, что нам нужно от сервиса
type DashboardService interface {
	List(ctx context.Context) []domain.DashboardState
	Get(ctx context.Context, target domain.Target) (domain.DashboardState, error)
	Breach(ctx context.Context, target domain.Target) (domain.DashboardState, bool, error)
	Restore(ctx context.Context, target domain.Target) (domain.DashboardState, bool, error)
	Notifications(ctx context.Context, target domain.Target, limit int) []domain.Notification
}

type DashboardHandler struct {
	service DashboardService
}

func NewDashboardHandler(s DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// ActionResponse — ответ на breach/restore. Accepted=false — переход запрещен в текущей фазе.
type ActionResponse struct {
	Accepted bool                  `json:"accepted"`
	State    domain.DashboardState `json:"state"`
}

func (h *DashboardHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.List(r.Context()))
}

func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	target, err := domain.ParseTarget(chi.URLParam(r, "target"))
	if err != nil {
		writeTargetError(w, err)
		return
	}

	state, err := h.service.Get(r.Context(), target)
	if err != nil {
		writeTargetError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *DashboardHandler) Breach(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.service.Breach)
}

func (h *DashboardHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.service.Restore)
}

func (h *DashboardHandler) act(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, target domain.Target) (domain.DashboardState, bool, error),
) {
	target, err := domain.ParseTarget(chi.URLParam(r, "target"))
	if err != nil {
		writeTargetError(w, err)
		return
	}

	state, accepted, err := op(r.Context(), target)
	if err != nil {
		writeTargetError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ActionResponse{Accepted: accepted, State: state})
}

// Notifications GET /api/v1/notifications?target=&limit=
func (h *DashboardHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var target domain.Target
	if raw := q.Get("target"); raw != "" {
		t, err := domain.ParseTarget(raw)
		if err != nil {
			writeTargetError(w, err)
			return
		}
		target = t
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	writeJSON(w, http.StatusOK, h.service.Notifications(r.Context(), target, limit))
}
