package physics

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/annel0/mmo-game/internal/logging"
)

const (
	// TickPeriod — фиксированный период тика планировщика.
	TickPeriod = 50 * time.Millisecond

	// UpdatesPerTick — предел обновлений, которые один воркер обрабатывает за
	// один проход основного цикла, прежде чем снова заснуть до конца тика.
	UpdatesPerTick = 8000

	// MaxWorkers — верхняя граница числа воркеров планировщика.
	MaxWorkers = 20

	// yieldAfterFailures — после стольких подряд неудачных TryPop воркер
	// уступает на yieldDuration, а не крутится в busy-loop.
	yieldAfterFailures = 15
	yieldDuration      = 2 * time.Millisecond

	// abandonAfterFailures — после стольких подряд неудачных TryPop воркер
	// прекращает текущий проход и ждёт следующего тика.
	abandonAfterFailures = 60
)

// Scheduler — планировщик блочных и сущностных обновлений: общая очередь,
// индекс членства для дедупликации queue_block_once и пул воркеров с фиксированным
// 50мс тиком. Грубо соответствует physics_manager/physics_worker hCraft'а, но
// без классового разделения PU_BLOCK/PU_ENTITY на уровне очереди — Update уже
// тегирован Kind.
type Scheduler struct {
	log *logging.Logger

	queue    *updateQueue
	members  *MembershipIndex
	registry Registry
	metrics  *schedulerMetrics
	health   *workerHealth

	mu       sync.Mutex
	cancel   []context.CancelFunc
	group    *errgroup.Group
	groupCtx context.Context
	desired  int
	running  bool
}

// NewScheduler создаёт планировщик с заданным реестром поведений блоков —
// реестр нужен, чтобы находить Tick для обновлений без собственного callback'а.
func NewScheduler(registry Registry) *Scheduler {
	return &Scheduler{
		log:      logging.GetComponentLogger("physics"),
		queue:    newUpdateQueue(),
		members:  NewMembershipIndex(),
		registry: registry,
		metrics:  newSchedulerMetrics(),
		health:   newWorkerHealth(),
	}
}

// SetWorkerCount выставляет желаемое число воркеров, ограниченное MaxWorkers.
// Рост добавляет свежие воркеры; сокращение останавливает ровно
// len(текущие)-n воркеров, не трогая остальные. Первый вызов также запускает
// планировщик, если он ещё не запущен.
func (s *Scheduler) SetWorkerCount(n int) {
	if n > MaxWorkers {
		n = MaxWorkers
	}
	if n < 0 {
		n = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		g, gctx := errgroup.WithContext(context.Background())
		s.group = g
		s.groupCtx = gctx
		s.running = true
	}

	current := len(s.cancel)
	switch {
	case n > current:
		for i := current; i < n; i++ {
			workerCtx, workerCancel := context.WithCancel(s.groupCtx)
			s.cancel = append(s.cancel, workerCancel)
			idx := i
			s.group.Go(func() error {
				s.runWorker(workerCtx, idx)
				return nil
			})
		}
	case n < current:
		toStop := s.cancel[n:]
		s.cancel = s.cancel[:n]
		for _, cancel := range toStop {
			cancel()
		}
	}

	s.desired = n
	s.metrics.workerCount.Set(float64(n))
	s.log.Info("physics: рабочих воркеров выставлено в %d", n)
}

// Stop останавливает все воркеры и дожидается их завершения.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	cancels := s.cancel
	s.cancel = nil
	group := s.group
	s.running = false
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	if group == nil {
		return nil
	}
	return group.Wait()
}

// initialReadyAt вычисляет первый ReadyAt для queue_block/queue_block_once/
// queue_entity: hCraft декрементирует tick_delay (приводя 0 к 1) перед
// вычислением nt, так что tickDelay=1 готов немедленно, а не через один
// полный тик. Повторная постановка в очередь (requeueCopy) использует
// неизменённый TickDelay отдельно и этой функции не касается.
func initialReadyAt(tickDelay int) time.Time {
	if tickDelay <= 0 {
		tickDelay = 1
	}
	return time.Now().Add(TickPeriod * time.Duration(tickDelay-1))
}

// QueueBlock ставит в очередь блочное обновление через tickDelay тиков.
// callback, если не nil, вызывается вместо поиска поведения в реестре.
func (s *Scheduler) QueueBlock(w World, x, y, z int, extra uint8, tickDelay int, params ActionStrip, callback BlockCallback) {
	s.members.Add(w, x, y, z)
	s.queue.Push(Update{
		Kind:      BlockUpdate,
		World:     w,
		X:         x, Y: y, Z: z,
		Extra:     extra,
		Callback:  callback,
		Params:    params,
		TickDelay: tickDelay,
		ReadyAt:   initialReadyAt(tickDelay),
	})
}

// QueueBlockOnce ставит блочное обновление в очередь, только если для этой
// ячейки ещё нет живого обновления (счётчик членства == 0) — не создаёт
// дубликатов повторных тиков одного и того же блока. Сверяется только
// счётчик: вызов пропускается и тогда, когда callback или params отличаются
// от уже ждущего обновления, — новые значения при этом теряются.
func (s *Scheduler) QueueBlockOnce(w World, x, y, z int, extra uint8, tickDelay int, params ActionStrip, callback BlockCallback) {
	if !s.members.AddIfAbsent(w, x, y, z) {
		return
	}
	s.queue.Push(Update{
		Kind:      BlockUpdate,
		World:     w,
		X:         x, Y: y, Z: z,
		Extra:     extra,
		Callback:  callback,
		Params:    params,
		TickDelay: tickDelay,
		ReadyAt:   initialReadyAt(tickDelay),
	})
}

// QueueEntity ставит сущностное обновление в очередь через tickDelay тиков.
// persistent определяет, переставляется ли обновление снова, если Tick
// вернул false (сущность ещё не в терминальном состоянии).
func (s *Scheduler) QueueEntity(w World, entity EntityHandle, persistent bool, tickDelay int) {
	s.queue.Push(Update{
		Kind:       EntityUpdate,
		World:      w,
		Entity:     entity,
		Persistent: persistent,
		TickDelay:  tickDelay,
		ReadyAt:    initialReadyAt(tickDelay),
	})
}

// QueueDepth возвращает приблизительную длину очереди — для наблюдаемости.
func (s *Scheduler) QueueDepth() int {
	return s.queue.Len()
}

// runWorker — основной цикл одного воркера: раз в TickPeriod просыпается и
// обрабатывает до UpdatesPerTick обновлений, уступая CPU при частых
// неудачных попытках снять элемент и бросая проход при затяжной пустоте.
func (s *Scheduler) runWorker(ctx context.Context, index int) {
	rng := newWorkerRNG(index)
	ticker := time.NewTicker(TickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.processBatch(ctx, rng)
			if index == 0 {
				s.health.Sample()
			}
		}
	}
}

// Health возвращает последний снятый самоотчёт планировщика — используется
// внешним наблюдателем (логирование по таймеру, будущая HTTP-ручка), сам
// планировщик по нему решений не принимает.
func (s *Scheduler) Health() (cpuPercent, heapMB float64, uptime time.Duration) {
	return s.health.Snapshot()
}

func (s *Scheduler) processBatch(ctx context.Context, rng *rand.Rand) {
	now := time.Now()
	fails := 0

	for processed := 0; processed < UpdatesPerTick; {
		select {
		case <-ctx.Done():
			return
		default:
		}

		u, ok := s.queue.TryPop()
		if !ok {
			fails++
			if fails >= abandonAfterFailures {
				s.metrics.batchesAbandoned.Inc()
				return
			}
			if fails%yieldAfterFailures == 0 {
				s.metrics.retryYields.Inc()
				time.Sleep(yieldDuration)
			}
			continue
		}
		fails = 0

		if !u.ready(now) {
			// Ещё не настало время — кладём обратно и продолжаем разбирать
			// остальную очередь; единственный риск в том, что это обновление
			// может быть снято повторно раньше срока, что безвредно (см.
			// queue.go — корректность требует лишь отсутствия потерь).
			s.queue.Push(u)
			processed++
			continue
		}

		s.handleUpdate(u, rng)
		processed++
		s.metrics.updatesProcessed.Inc()
	}

	s.metrics.queueDepth.Set(float64(s.queue.Len()))
}

func (s *Scheduler) handleUpdate(u Update, rng *rand.Rand) {
	switch u.Kind {
	case BlockUpdate:
		s.handleBlockUpdate(u, rng)
	case EntityUpdate:
		s.handleEntityUpdate(u, rng)
	}
}

func (s *Scheduler) handleBlockUpdate(u Update, rng *rand.Rand) {
	result := u.Params.eval(func() {
		u.World.SetBlockRaw(u.X, u.Y, u.Z, 0, 0)
		s.metrics.dissipations.Inc()
	}, rng)

	if result.keep {
		s.queue.Push(u.requeueCopy(time.Now()))
		s.metrics.updatesRequeued.Inc()
	}

	// Счётчик членства снимается до вызова callback'а/поведения — колбэк,
	// который сам переставит обновление в очередь (например, через
	// ScheduleTick), должен увидеть "свободную" ячейку.
	s.members.Remove(u.World, u.X, u.Y, u.Z)

	if result.consumed {
		return
	}

	if u.Callback != nil {
		u.Callback(u.World, u.X, u.Y, u.Z, u.Extra, rng)
		return
	}

	if s.registry == nil {
		return
	}
	id := u.World.BlockAt(u.X, u.Y, u.Z)
	if behavior, ok := s.registry.BehaviorFor(id); ok {
		behavior.Tick(u.World, u.X, u.Y, u.Z, u.Extra, rng)
	}
}

func (s *Scheduler) handleEntityUpdate(u Update, rng *rand.Rand) {
	if u.Entity.IsPlayer() && u.Entity.CurrentWorldName() != u.World.Name() {
		// Игрок сменил мир — устаревшее обновление отбрасывается без
		// повторной постановки в очередь.
		return
	}

	done := u.Entity.Tick(u.World)
	if !done && u.Persistent {
		s.queue.Push(u.requeueCopy(time.Now()))
		s.metrics.updatesRequeued.Inc()
	}
}
