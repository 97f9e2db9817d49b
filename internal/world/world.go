package world

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/annel0/mmo-game/internal/eventbus"
	"github.com/annel0/mmo-game/internal/physics"
	"github.com/annel0/mmo-game/internal/vec"
	"github.com/annel0/mmo-game/internal/world/block"
	"github.com/annel0/mmo-game/internal/world/entity"
)

// World — мир игры: ограничен или не ограничен по (width, depth) (0 — не
// ограничен по этой оси), владеет своей картой, генератором и разделяемым
// планировщиком тика (§3 "World"). Реализует physics.World, так что
// планировщик обращается к нему, не зная ничего о внутреннем устройстве
// карты/чанков.
type World struct {
	name  string
	Width int
	Depth int

	SpawnPos vec.Vec3Float

	mu        sync.RWMutex
	theMap    *WorldMap
	generator *WorldGenerator
	genWorker *ChunkGenerator
	scheduler *physics.Scheduler
	mobs      *entity.Manager

	players map[uint64]*Player
}

// NewWorld создаёт мир с данным именем, сидом генерации и опциональными
// границами (0 — без ограничения по этой оси). Фоновый генератор чанков
// создаётся с дефолтными интервалами простоя (4мс/20мс; их переопределяет
// SetGeneratorRestIntervals); Start должен быть вызван до того, как игроки
// начнут запрашивать стриминг чанков.
func NewWorld(name string, seed int64, width, depth int, scheduler *physics.Scheduler) *World {
	w := &World{
		name:      name,
		Width:     width,
		Depth:     depth,
		SpawnPos:  vec.Vec3Float{X: 0, Y: 64, Z: 0},
		scheduler: scheduler,
		players:   make(map[uint64]*Player),
	}
	w.generator = NewWorldGenerator(seed)
	w.theMap = newWorldMap(w)
	w.genWorker = NewChunkGenerator(0, 0)
	w.mobs = entity.NewEntityManager()
	w.mobs.RegisterDefaultBehaviors()
	return w
}

// SetGeneratorRestIntervals переопределяет интервалы простоя фонового
// воркера генерации чанков (generator.idle_rest_ms, generator.deep_rest_ms) —
// должен вызываться до Start.
func (w *World) SetGeneratorRestIntervals(idleRest, deepRest time.Duration) {
	w.genWorker = NewChunkGenerator(idleRest, deepRest)
}

// Start запускает фоновые воркеры мира (генератор чанков).
func (w *World) Start() {
	w.genWorker.Start()
}

// Stop останавливает фоновые воркеры мира.
func (w *World) Stop() {
	w.genWorker.Stop()
}

// RequestChunk ставит запрос на асинхронную загрузку/генерацию чанка в
// очередь фонового воркера (§4.3) — используется стримингом игрока вместо
// блокирующего LoadChunk на хот-пасе обработки движения.
func (w *World) RequestChunk(requester ChunkRequester, pos vec.ChunkPos, flags GenFlag, extra int) {
	w.genWorker.Request(requester, w, pos, flags, extra)
}

// Name — имя мира, используется планировщиком для кросс-мировых сверок.
func (w *World) Name() string { return w.name }

// Map возвращает пространственный индекс чанков мира.
func (w *World) Map() *WorldMap { return w.theMap }

// InBounds сообщает, лежит ли блочная координата (x, _, z) внутри границ
// мира. Неограниченная ось (ширина/глубина == 0) всегда проходит проверку.
// Ограниченная ось занимает span [0, width), а не окно вокруг начала
// координат — как в исходном move_to (src/player.cpp).
func (w *World) InBounds(x, z int) bool {
	if w.Width > 0 {
		if x < 0 || x >= w.Width {
			return false
		}
	}
	if w.Depth > 0 {
		if z < 0 || z >= w.Depth {
			return false
		}
	}
	return true
}

// ClampToBounds зажимает (x, z) в границы мира, сообщая, было ли применено
// зажатие — используется движением игрока (§4.4 "Movement path"). Порт
// move_to (src/player.cpp): span [0, width), отрицательная координата
// зажимается в 1.0, переполнение — в width-1.
func (w *World) ClampToBounds(x, z float64) (cx, cz float64, clamped bool) {
	cx, cz = x, z
	if w.Width > 0 {
		if cx < 0.0 {
			cx = 1.0
			clamped = true
		} else if cx >= float64(w.Width) {
			cx = float64(w.Width) - 1
			clamped = true
		}
	}
	if w.Depth > 0 {
		if cz < 0.0 {
			cz = 1.0
			clamped = true
		} else if cz >= float64(w.Depth) {
			cz = float64(w.Depth) - 1
			clamped = true
		}
	}
	return cx, cz, clamped
}

// BlockAt реализует physics.World — текущий id блока в ячейке, как u16.
func (w *World) BlockAt(x, y, z int) uint16 {
	id, _ := w.theMap.GetBlock(x, y, z)
	return uint16(id)
}

// SetBlockRaw реализует physics.World — запись в обход QueueUpdate,
// используется DISSIPATE для немедленной записи воздуха.
func (w *World) SetBlockRaw(x, y, z int, id uint16, meta uint8) {
	w.theMap.SetBlock(x, y, z, block.BlockID(id), meta)
}

// BehaviorFor реализует physics.Registry через глобальный реестр поведений
// блока, обёрнутый в physics.BlockTicker.
func (w *World) BehaviorFor(id uint16) (physics.BlockTicker, bool) {
	return GlobalBlockRegistry{}.BehaviorFor(id)
}

// GlobalBlockRegistry реализует physics.Registry напрямую через
// block.Get — реестр поведений блока общий для всех миров процесса, так
// что planировщику, разделяемому несколькими *World (§4.2/§5), не нужна
// ссылка ни на один конкретный мир, чтобы находить поведения.
type GlobalBlockRegistry struct{}

func (GlobalBlockRegistry) BehaviorFor(id uint16) (physics.BlockTicker, bool) {
	behavior, ok := block.Get(block.BlockID(id))
	if !ok {
		return nil, false
	}
	return behaviorTicker{behavior: behavior}, true
}

// behaviorTicker адаптирует block.BlockBehavior к physics.BlockTicker —
// единственный метод, который планировщику физики нужен из поведения блока,
// вызванный через его собственный block.BlockAPI, а не напрямую.
type behaviorTicker struct {
	behavior block.BlockBehavior
}

func (t behaviorTicker) Tick(w physics.World, x, y, z int, extra uint8, rng *rand.Rand) {
	concrete, ok := w.(*World)
	if !ok {
		return
	}
	t.behavior.Tick(concrete.theMap.blockAPI(), x, y, z, extra, rng)
}

// physicsEmptyStrip возвращает пустую полосу действий — для обновлений,
// единственная цель которых — вызвать поведение блока, без decay/dissipate.
func physicsEmptyStrip() physics.ActionStrip {
	return physics.NewActionStrip()
}

// AddPlayer регистрирует игрока в мире (используется streaming-слоем при
// входе в мир).
func (w *World) AddPlayer(p *Player) {
	w.mu.Lock()
	w.players[p.EID] = p
	w.mu.Unlock()
	w.scheduler.QueueEntity(w, p, true, 1)
	w.publishPlayerEvent("PlayerJoined", p.EID, p.Name)
}

// RemovePlayer снимает игрока с учёта мира.
func (w *World) RemovePlayer(eid uint64) {
	w.mu.Lock()
	p, ok := w.players[eid]
	delete(w.players, eid)
	w.mu.Unlock()
	if ok {
		w.publishPlayerEvent("PlayerLeft", eid, p.Name)
	}
}

// playerLifecycleEvent — полезная нагрузка PlayerJoined/PlayerLeft.
type playerLifecycleEvent struct {
	World string `json:"world"`
	EID   uint64 `json:"eid"`
	Name  string `json:"name"`
}

func (w *World) publishPlayerEvent(eventType string, eid uint64, name string) {
	payload, err := json.Marshal(playerLifecycleEvent{World: w.name, EID: eid, Name: name})
	if err != nil {
		return
	}
	_ = eventbus.Publish(context.Background(), &eventbus.Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    "world",
		EventType: eventType,
		Version:   1,
		Priority:  5,
		Payload:   payload,
	})
}

// Player возвращает игрока по EID, если он в этом мире.
func (w *World) Player(eid uint64) (*Player, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.players[eid]
	return p, ok
}
