package infra

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
)

// Config — корневая структура конфигурации симулятора.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	GRPC    GRPCConfig    `mapstructure:"grpc"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Signal  SignalConfig  `mapstructure:"signal"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Console ConsoleConfig `mapstructure:"console"`
	Logger  LoggerConfig  `mapstructure:"logger"`
}

// ServerConfig описывает HTTP-сервер дашбордов.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type MetricsConfig struct {
	Port int `mapstructure:"port"` // 0 — отдельный сервер метрик не поднимается
}

type GRPCConfig struct {
	Port int `mapstructure:"port"` // 0 — health-сервис выключен
}

// RedisConfig описывает подключение к Redis (флаги взлома и Pub/Sub пробуждения).
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SignalConfig — канал сигналов взлома.
type SignalConfig struct {
	Backend         string        `mapstructure:"backend"` // memory, redis
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	ConnectAttempts uint          `mapstructure:"connect_attempts"`

	// Настройки Circuit Breaker для хранилища флагов
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"`
}

// EngineConfig — таймеры и поведение машины состояний.
type EngineConfig struct {
	ClockInterval       time.Duration  `mapstructure:"clock_interval"`
	CountdownInterval   time.Duration  `mapstructure:"countdown_interval"`
	Countdown           map[string]int `mapstructure:"countdown"` // target -> секунды, 0 — сразу в Compromised
	Seed                int64          `mapstructure:"seed"`      // 0 — от времени
	NotificationBuffer  int            `mapstructure:"notification_buffer"`
	NotificationHistory int            `mapstructure:"notification_history"`
}

// CountdownFor возвращает длительность отсчета для цели.
func (c EngineConfig) CountdownFor(t domain.Target) int {
	if n, ok := c.Countdown[string(t)]; ok {
		return n
	}
	return defaultCountdown[t]
}

// Грид идет через отсчет, остальные дашборды при удаленном сигнале падают сразу.
var defaultCountdown = map[domain.Target]int{
	domain.TargetGrid:    DefaultCountdown,
	domain.TargetAirport: 0,
	domain.TargetTrain:   0,
	domain.TargetOilRig:  0,
}

// ConsoleConfig — внешний пульт (remote breach control).
type ConsoleConfig struct {
	Port        int     `mapstructure:"port"`
	SignalRPS   float64 `mapstructure:"signal_rps"`
	SignalBurst int     `mapstructure:"signal_burst"`
}

// LoggerConfig настраивает поведение zap логгера.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

const (
	DefaultCountdown = 10

	BackendMemory = "memory"
	BackendRedis  = "redis"

	minPollInterval = 500 * time.Millisecond
	maxPollInterval = time.Second
)

// LoadConfig объединяет значения из файла, ENV и дефолтов.
// path пустой — ищем config.yaml в . и ./configs.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	// SIGNAL_BACKEND=redis перекроет signal.backend
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Файла нет — работаем на ENV и дефолтах
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("grpc.port", 50052)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("signal.backend", BackendMemory)
	v.SetDefault("signal.poll_interval", time.Second)
	v.SetDefault("signal.connect_attempts", 5)
	v.SetDefault("signal.breaker_failures", 5)
	v.SetDefault("signal.breaker_timeout", 30*time.Second)
	v.SetDefault("engine.clock_interval", time.Second)
	v.SetDefault("engine.countdown_interval", time.Second)
	v.SetDefault("engine.notification_buffer", 256)
	v.SetDefault("engine.notification_history", 100)
	v.SetDefault("console.port", 8000)
	v.SetDefault("console.signal_rps", 5)
	v.SetDefault("console.signal_burst", 2)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
}

// Validate проверяет то, что не выражается дефолтами.
func (c *Config) Validate() error {
	switch c.Signal.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("signal.backend: unsupported value %q", c.Signal.Backend)
	}
	if c.Signal.PollInterval < minPollInterval || c.Signal.PollInterval > maxPollInterval {
		return fmt.Errorf("signal.poll_interval must be within %s..%s, got %s",
			minPollInterval, maxPollInterval, c.Signal.PollInterval)
	}
	if c.Engine.ClockInterval <= 0 || c.Engine.CountdownInterval <= 0 {
		return errors.New("engine: clock_interval and countdown_interval must be positive")
	}
	for name, n := range c.Engine.Countdown {
		if _, err := domain.ParseTarget(name); err != nil {
			return fmt.Errorf("engine.countdown: %w", err)
		}
		if n < 0 {
			return fmt.Errorf("engine.countdown.%s: negative value %d", name, n)
		}
	}
	return nil
}
