package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/mmo-game/internal/auth"
	"github.com/annel0/mmo-game/internal/cache"
	"github.com/annel0/mmo-game/internal/config"
	"github.com/annel0/mmo-game/internal/eventbus"
	"github.com/annel0/mmo-game/internal/logging"
	"github.com/annel0/mmo-game/internal/observability"
	"github.com/annel0/mmo-game/internal/physics"
	"github.com/annel0/mmo-game/internal/world"
	"github.com/annel0/mmo-game/internal/world/block"
)

func main() {
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	logging.Info("запуск игрового ядра...")

	shutdownTel, err := observability.InitTelemetry(context.Background(), "mmo_core")
	if err != nil {
		logging.Warn("не удалось инициализировать OpenTelemetry: %v", err)
	}

	cfg, err := config.Load("")
	if err != nil {
		logging.Warn("не удалось загрузить config: %v", err)
	}
	if cfg == nil {
		cfg = &config.Config{}
	}

	// === EVENTBUS ===
	natsURL := "nats://127.0.0.1:4222"
	streamName := "EVENTS"
	retention := 24
	if cfg.EventBus.URL != "" {
		natsURL = cfg.EventBus.URL
	}
	if cfg.EventBus.Stream != "" {
		streamName = cfg.EventBus.Stream
	}
	if cfg.EventBus.Retention > 0 {
		retention = cfg.EventBus.Retention
	}

	bus, err := eventbus.NewJetStreamBus(natsURL, streamName, time.Duration(retention)*time.Hour)
	if err != nil {
		logging.Error("не удалось инициализировать JetStreamBus: %v", err)
		log.Fatalf("eventbus init failed: %v", err)
	}
	eventbus.Init(bus)
	logging.Info("JetStreamBus подключён %s", natsURL)

	if err := eventbus.StartLoggingListener(bus); err != nil {
		logging.Warn("не удалось запустить LoggingListener: %v", err)
	}

	metricsExporter := eventbus.NewMetricsExporter(bus)
	metricsExporter.StartHTTP(fmt.Sprintf(":%d", cfg.Server.GetMetricsPort()))

	// === БЛОКИ ===
	if err := block.LoadJSONBlocks("assets/blocks"); err != nil && !os.IsNotExist(err) {
		logging.Error("ошибка загрузки JSON-блоков: %v", err)
	}

	// === ХОЛОДНЫЙ/ГОРЯЧИЙ КЕШ ЧАНКОВ ===
	var chunkCache *world.ChunkCache
	if redisURL := cfg.ChunkCache.GetRedisURL(); redisURL != "" {
		repo, err := cache.NewRedisCache(&cache.CacheConfig{RedisURL: redisURL}, nil, nil)
		if err != nil {
			logging.Warn("не удалось подключить кеш чанков (%s), работаем без него: %v", redisURL, err)
		} else {
			chunkCache = world.NewChunkCache(repo)
			logging.Info("кеш чанков подключён: %s", redisURL)
		}
	}
	if chunkCache == nil {
		chunkCache = world.NewChunkCache(nil)
	}

	// === АУТЕНТИФИКАЦИЯ ===
	// Authenticator — внешний по отношению к миру коллаборатор: сетевой слой
	// join'а использует его для разрешения логина в стабильную личность
	// игрока, ядро мира никогда не хранит пароли и не выдаёт токены само.
	userRepo, err := auth.NewMemoryUserRepo()
	if err != nil {
		logging.Warn("не удалось инициализировать репозиторий пользователей: %v", err)
	}
	var authenticator auth.Authenticator
	if userRepo != nil {
		authenticator = auth.NewRepoAuthenticator(userRepo)
	}
	_ = authenticator // используется сетевым слоем join'а, не реализованным в этом ядре

	// === ПЛАНИРОВЩИК ФИЗИКИ ===
	// Один Scheduler на процесс — его метрики регистрируются в Prometheus
	// безусловно при создании, повторная регистрация запаникует.
	scheduler := physics.NewScheduler(world.GlobalBlockRegistry{})
	scheduler.SetWorkerCount(cfg.Physics.GetWorkerCount())

	// === МИР ===
	seed := time.Now().Unix()
	gameWorld := world.NewWorld("overworld", seed, 0, 0, scheduler)
	gameWorld.Map().SetHotCache(chunkCache)
	gameWorld.SetGeneratorRestIntervals(cfg.Generator.GetIdleRest(), cfg.Generator.GetDeepRest())
	gameWorld.Start()

	logging.Info("мир overworld запущен (seed=%d, воркеров планировщика=%d)", seed, cfg.Physics.GetWorkerCount())
	logging.Info("радиус стриминга чанков=%d, keepalive interval=%s timeout=%s",
		cfg.Streaming.GetRadiusChunks(), cfg.Keepalive.GetInterval(), cfg.Keepalive.GetTimeout())

	// Сетевой ввод-вывод (приём подключений, парсинг пакетов, join/leave
	// игроков через gameWorld.AddPlayer/RemovePlayer) — внешний реактор,
	// не реализованный в этом ядре.

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logging.Info("получен сигнал %v, завершение работы...", sig)

	gameWorld.Stop()
	if err := scheduler.Stop(); err != nil {
		logging.Error("ошибка остановки планировщика: %v", err)
	}
	metricsExporter.Stop()

	if shutdownTel != nil {
		_ = shutdownTel(context.Background())
	}

	logging.Info("ядро успешно остановлено")
}
