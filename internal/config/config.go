package config

import (
	"io/ioutil"
	"os"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения: по секции на шину
// событий, синхронизацию, порты сервера, физику, генератор, стриминг,
// keepalive и кеш чанков.

type Config struct {
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Sync      SyncConfig      `yaml:"sync"`
	Server    ServerConfig    `yaml:"server"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Generator GeneratorConfig `yaml:"generator"`
	Streaming StreamingConfig `yaml:"streaming"`
	Keepalive KeepaliveConfig `yaml:"keepalive"`
	ChunkCache ChunkCacheConfig `yaml:"chunk_cache"`
}

// ChunkCacheConfig настраивает опциональный Redis-кеш горячих чанков
// (internal/world.ChunkCache). Пустой URL отключает кеш — мир работает
// напрямую через генератор, как если бы кеша не существовало.
type ChunkCacheConfig struct {
	RedisURL string `yaml:"redis_url"`
}

func (c *ChunkCacheConfig) GetRedisURL() string {
	if c.RedisURL != "" {
		return c.RedisURL
	}
	return os.Getenv("GAME_REDIS_URL")
}

// PhysicsConfig управляет планировщиком тика (internal/physics.Scheduler).
// TickPeriodMs и UpdatesPerTick зафиксированы конструкцией планировщика
// (physics.TickPeriod, physics.UpdatesPerTick) — здесь они только
// объявлены для полноты наблюдаемой конфигурации, реально настраивается
// только WorkerCount.
type PhysicsConfig struct {
	WorkerCount    int `yaml:"worker_count"`
	TickPeriodMs   int `yaml:"tick_period_ms"`
	UpdatesPerTick int `yaml:"updates_per_tick"`
}

// GetWorkerCount возвращает число воркеров планировщика с fallback на
// число ядер хоста. Значение не зажимается: верхнюю границу
// physics.MaxWorkers применяет Scheduler.SetWorkerCount.
func (p *PhysicsConfig) GetWorkerCount() int {
	if p.WorkerCount > 0 {
		return p.WorkerCount
	}
	if envVal := os.Getenv("PHYSICS_WORKER_COUNT"); envVal != "" {
		if n, err := strconv.Atoi(envVal); err == nil && n > 0 {
			return n
		}
	}
	return runtime.NumCPU()
}

// GeneratorConfig настраивает интервалы простоя фонового воркера генерации
// чанков (internal/world.ChunkGenerator).
type GeneratorConfig struct {
	IdleRestMs int `yaml:"idle_rest_ms"`
	DeepRestMs int `yaml:"deep_rest_ms"`
}

func (g *GeneratorConfig) GetIdleRest() time.Duration {
	if g.IdleRestMs > 0 {
		return time.Duration(g.IdleRestMs) * time.Millisecond
	}
	return 4 * time.Millisecond
}

func (g *GeneratorConfig) GetDeepRest() time.Duration {
	if g.DeepRestMs > 0 {
		return time.Duration(g.DeepRestMs) * time.Millisecond
	}
	return 20 * time.Millisecond
}

// StreamingConfig настраивает радиус стриминга чанков вокруг игрока.
type StreamingConfig struct {
	RadiusChunks int `yaml:"radius_chunks"`
}

func (s *StreamingConfig) GetRadiusChunks() int {
	if s.RadiusChunks > 0 {
		return s.RadiusChunks
	}
	return 10
}

// KeepaliveConfig настраивает каденцию пинга сессии игрока.
type KeepaliveConfig struct {
	IntervalMs int `yaml:"interval_ms"`
	TimeoutMs  int `yaml:"timeout_ms"`
}

func (k *KeepaliveConfig) GetInterval() time.Duration {
	if k.IntervalMs > 0 {
		return time.Duration(k.IntervalMs) * time.Millisecond
	}
	return 5 * time.Second
}

func (k *KeepaliveConfig) GetTimeout() time.Duration {
	if k.TimeoutMs > 0 {
		return time.Duration(k.TimeoutMs) * time.Millisecond
	}
	// Дефолтный таймаут зависит от каденции — три пропущенных пинга.
	return 3 * k.GetInterval()
}

type EventBusConfig struct {
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
}

type SyncConfig struct {
	RegionID     string `yaml:"region_id"`
	BatchSize    int    `yaml:"batch_size"`
	FlushEvery   int    `yaml:"flush_every_seconds"`
	UseGzipCompr bool   `yaml:"use_gzip_compression"`
}

type ServerConfig struct {
	TCPPort     int `yaml:"tcp_port"`
	UDPPort     int `yaml:"udp_port"`
	RESTPort    int `yaml:"rest_port"`
	MetricsPort int `yaml:"metrics_port"`
}

// GetTCPPort возвращает TCP порт с поддержкой fallback значений
func (s *ServerConfig) GetTCPPort() int {
	return getPortWithEnvFallback(s.TCPPort, "GAME_TCP_PORT", 7777)
}

// GetUDPPort возвращает UDP порт с поддержкой fallback значений
func (s *ServerConfig) GetUDPPort() int {
	return getPortWithEnvFallback(s.UDPPort, "GAME_UDP_PORT", 7778)
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "GAME_REST_PORT", 8088)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "GAME_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV GAME_CONFIG или возвращает nil, nil.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("GAME_CONFIG")
		if path == "" {
			return nil, nil // конфиг не задан — использовать дефолты
		}
	}

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
