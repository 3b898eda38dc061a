package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/xela07ax/ics-breach-sim/internal/console/handler"
)

// Handlers — обработчики, которые поднимает конкретный бинарь.
// simd отдает все, console — только пульт.
type Handlers struct {
	Dashboards *handler.DashboardHandler // /api/v1/dashboards, /api/v1/notifications
	Control    *handler.ControlHandler   // /breach-control
	Stream     http.HandlerFunc          // /ws
}

type Server struct {
	router *chi.Mux
	logger *zap.Logger
	h      Handlers
}

func New(logger *zap.Logger, h Handlers) *Server {
	s := &Server{
		router: chi.NewRouter(),
		logger: logger.Named("http"),
		h:      h,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TracingMiddleware)
	r.Use(AccessLog(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", handler.Health)

	// --- 2. Дашборды ---
	if d := s.h.Dashboards; d != nil {
		r.Route("/api/v1", func(r chi.Router) {
			r.Route("/dashboards", func(r chi.Router) {
				r.Get("/", d.List)
				r.Route("/{target}", func(r chi.Router) {
					r.Get("/", d.Get)
					r.Post("/breach", d.Breach)   // Локальная кнопка
					r.Post("/restore", d.Restore) // Возврат к базовому снимку
				})
			})
			r.Get("/notifications", d.Notifications)
		})
	}

	// --- 3. Удаленный пульт ---
	if c := s.h.Control; c != nil {
		r.Post("/breach-control", c.Trigger)
	}

	if s.h.Stream != nil {
		r.Get("/ws", s.h.Stream)
	}

	// Неизвестный путь — запасной вид
	r.NotFound(handler.NotFound)
}

// ServeHTTP позволяет использовать Server как стандартный http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
