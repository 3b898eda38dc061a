// Package client — HTTP/websocket клиент API simd для breachctl.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/xela07ax/ics-breach-sim/internal/console/handler"
	"github.com/xela07ax/ics-breach-sim/internal/domain"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// APIError — ответ API с кодом ошибки.
type APIError struct {
	Status int
	Body   handler.ErrorResponse
}

func (e *APIError) Error() string {
	if e.Body.Message != "" {
		return fmt.Sprintf("api %d %s: %s", e.Status, e.Body.Error, e.Body.Message)
	}
	return fmt.Sprintf("api %d %s", e.Status, e.Body.Error)
}

func (c *Client) Dashboards(ctx context.Context) ([]domain.DashboardState, error) {
	var out []domain.DashboardState
	err := c.do(ctx, http.MethodGet, "/api/v1/dashboards", &out)
	return out, err
}

func (c *Client) Dashboard(ctx context.Context, target domain.Target) (domain.DashboardState, error) {
	var out domain.DashboardState
	err := c.do(ctx, http.MethodGet, "/api/v1/dashboards/"+url.PathEscape(string(target)), &out)
	return out, err
}

func (c *Client) Breach(ctx context.Context, target domain.Target) (handler.ActionResponse, error) {
	var out handler.ActionResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/dashboards/"+url.PathEscape(string(target))+"/breach", &out)
	return out, err
}

func (c *Client) Restore(ctx context.Context, target domain.Target) (handler.ActionResponse, error) {
	var out handler.ActionResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/dashboards/"+url.PathEscape(string(target))+"/restore", &out)
	return out, err
}

// Signal — запись флага через удаленный пульт (тот же путь, что у внешней страницы).
func (c *Client) Signal(ctx context.Context, target domain.Target) (handler.TriggerResponse, error) {
	var out handler.TriggerResponse
	err := c.do(ctx, http.MethodPost, "/breach-control?target="+url.QueryEscape(string(target)), &out)
	return out, err
}

func (c *Client) Notifications(ctx context.Context, target domain.Target, limit int) ([]domain.Notification, error) {
	q := url.Values{}
	if target != "" {
		q.Set("target", string(target))
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	var out []domain.Notification
	err := c.do(ctx, http.MethodGet, "/api/v1/notifications?"+q.Encode(), &out)
	return out, err
}

// Watch читает websocket поток до отмены ctx или разрыва. onEvent получает сырые envelope.
func (c *Client) Watch(ctx context.Context, target domain.Target, onEvent func(eventType string, data json.RawMessage)) error {
	u, err := url.Parse(c.baseURL + "/ws")
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	if target != "" {
		u.RawQuery = url.Values{"target": {string(target)}}.Encode()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("watch dial: %w", err)
	}
	defer conn.Close()

	// Закрываем соединение по отмене контекста, чтобы разблокировать ReadMessage
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("watch read: %w", err)
		}
		var env struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}
		onEvent(env.Type, env.Data)
	}
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		json.Unmarshal(body, &apiErr.Body)
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
