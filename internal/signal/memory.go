package signal

import (
	"context"
	"sync"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
)

// MemoryChannel — in-process реализация для одного процесса и тестов.
type MemoryChannel struct {
	mu    sync.Mutex
	flags map[domain.Target]string
}

func NewMemoryChannel() *MemoryChannel {
	return &MemoryChannel{flags: make(map[domain.Target]string)}
}

func (c *MemoryChannel) Signal(_ context.Context, target domain.Target) error {
	c.Set(target, target.TriggerLiteral())
	return nil
}

// Set пишет произвольное значение. Нужен, чтобы эмулировать битый флаг.
func (c *MemoryChannel) Set(target domain.Target, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flags[target] = value
}

func (c *MemoryChannel) PollAndConsume(_ context.Context, target domain.Target) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	value, ok := c.flags[target]
	if !ok {
		return false, nil
	}
	delete(c.flags, target)
	return domain.IsTrigger(value), nil
}

// Pending сообщает, лежит ли флаг (для отладки и тестов).
func (c *MemoryChannel) Pending(target domain.Target) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.flags[target]
	return ok
}
