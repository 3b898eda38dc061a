package infra

import "github.com/xela07ax/ics-breach-sim/internal/domain"

const (
	// RedisNamespace Базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "ics"
)

// Каналы Pub/Sub (события)
const (
	// RedisChanBreachSignal — пробуждение пуллеров после записи флага. Payload: target.
	RedisChanBreachSignal = RedisNamespace + ":breach:signal"
)

// BreachFlagKey ключ флага для цели: ics:breach:gridBreach, ics:breach:trainBreach ...
func BreachFlagKey(t domain.Target) string {
	return RedisNamespace + ":breach:" + t.FlagName()
}
