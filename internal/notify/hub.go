package notify

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
)

const (
	EventNotification = "notification"
	EventState        = "state"
)

// Envelope — формат сообщения в websocket.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type message struct {
	target  domain.Target
	payload []byte
}

// Hub держит активных websocket клиентов и рассылает им тосты и смены состояния.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	upgrader   websocket.Upgrader
	metrics    *Metrics
	logger     *zap.Logger
}

func NewHub(metrics *Metrics, logger *zap.Logger) *Hub {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // Дашборды открываются с любого хоста стенда
		},
		metrics: metrics,
		logger:  logger.With(zap.String("mod", "ws-hub")),
	}
}

// Run обслуживает регистрацию и рассылку до отмены ctx, затем закрывает всех клиентов.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.metrics.Clients.Set(0)
			h.logger.Info("websocket hub stopped")
			return

		case client := <-h.register:
			h.clients[client] = true
			h.metrics.Clients.Set(float64(len(h.clients)))
			h.logger.Debug("websocket client registered", zap.String("remote", client.conn.RemoteAddr().String()))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.metrics.Clients.Set(float64(len(h.clients)))
				h.logger.Debug("websocket client unregistered", zap.String("remote", client.conn.RemoteAddr().String()))
			}

		case msg := <-h.broadcast:
			for client := range h.clients {
				if client.target != "" && client.target != msg.target {
					continue
				}
				select {
				case client.send <- msg.payload:
				default:
					// Клиент не успевает читать, отключаем
					h.logger.Warn("websocket client send buffer full, removing",
						zap.String("remote", client.conn.RemoteAddr().String()))
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.metrics.Clients.Set(float64(len(h.clients)))
		}
	}
}

// Deliver реализует Sink для ленты тостов.
func (h *Hub) Deliver(batch []domain.Notification) {
	for _, n := range batch {
		h.publish(n.Target, Envelope{Type: EventNotification, Data: n})
	}
}

// PublishState — наблюдатель за дашбордами. Не блокирует.
func (h *Hub) PublishState(state domain.DashboardState) {
	h.publish(state.Target, Envelope{Type: EventState, Data: state})
}

func (h *Hub) publish(target domain.Target, env Envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("marshal websocket envelope", zap.String("type", env.Type), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- message{target: target, payload: payload}:
	default:
		h.logger.Warn("websocket broadcast queue full, message dropped", zap.String("type", env.Type))
	}
}

// ServeWS поднимает websocket. ?target= ограничивает поток одним дашбордом.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	var target domain.Target
	if raw := r.URL.Query().Get("target"); raw != "" {
		t, err := domain.ParseTarget(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		target = t
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{hub: h, conn: conn, send: make(chan []byte, 64), target: target}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
