// Package signal реализует канал сигналов взлома: почтовый ящик на одного
// писателя (внешний пульт) и одного читателя (пуллер дашборда) с доставкой
// не более одного раза на запись.
package signal

import (
	"context"
	"errors"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
)

// ErrUnavailable — хранилище флагов недоступно (Redis лежит, breaker открыт).
var ErrUnavailable = errors.New("signal channel unavailable")

// Channel — контракт канала.
type Channel interface {
	// Signal записывает флаг для цели. Повторные записи до опроса схлопываются.
	Signal(ctx context.Context, target domain.Target) error
	// PollAndConsume читает и удаляет флаг. true возвращается ровно один раз на запись.
	PollAndConsume(ctx context.Context, target domain.Target) (bool, error)
}
