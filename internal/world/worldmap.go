package world

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/annel0/mmo-game/internal/eventbus"
	"github.com/annel0/mmo-game/internal/logging"
	"github.com/annel0/mmo-game/internal/vec"
	"github.com/annel0/mmo-game/internal/world/block"
)

// WorldMap — пространственный индекс (cx, cz) → Chunk: лист зависимостей
// (§4.1 "World Map"). SetBlock/QueueUpdate выполняют немедленную запись id и
// meta; оповещение соседей и поведение тика выполняются планировщиком
// физики на следующем тике через зарегистрированный callback или реестр
// поведений блока, не этим файлом.
type WorldMap struct {
	mu     sync.RWMutex
	chunks map[vec.ChunkPos]*Chunk
	world  *World
	log    *logging.Logger

	// hotCache — опциональный байтовый кеш (Redis), фронтирующий LoadChunk
	// между локальным индексом в памяти и генератором; nil отключает его.
	hotCache *ChunkCache
}

func newWorldMap(w *World) *WorldMap {
	return &WorldMap{
		chunks: make(map[vec.ChunkPos]*Chunk),
		world:  w,
		log:    logging.GetComponentLogger("world"),
	}
}

// SetHotCache подключает горячий байтовый кеш чанков (internal/cache) перед
// генератором мира.
func (m *WorldMap) SetHotCache(c *ChunkCache) {
	m.hotCache = c
}

// GetChunk возвращает уже загруженный чанк без генерации.
func (m *WorldMap) GetChunk(pos vec.ChunkPos) (*Chunk, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.chunks[pos]
	return c, ok
}

// LoadChunk возвращает чанк: сперва локальный индекс в памяти, затем
// (если подключён) горячий байтовый кеш, и только потом генератор мира,
// синтезируя чанк при первом обращении где бы то ни было (блокирующий
// вызов — §4.1).
func (m *WorldMap) LoadChunk(pos vec.ChunkPos) *Chunk {
	m.mu.RLock()
	c, ok := m.chunks[pos]
	m.mu.RUnlock()
	if ok {
		return c
	}

	fromCache := false
	if cached, ok := m.hotCache.Get(context.Background(), m.world.Name(), pos); ok {
		c = cached
		fromCache = true
	} else {
		c = m.world.generator.GenerateChunk(pos)
	}

	m.mu.Lock()
	if existing, ok := m.chunks[pos]; ok {
		c = existing
	} else {
		m.chunks[pos] = c
	}
	m.mu.Unlock()

	if !fromCache {
		m.hotCache.Put(context.Background(), m.world.Name(), c)
	}
	return c
}

// Put вставляет уже готовый чанк в индекс — симметрия с §4.1's "put"
// (например, загрузка с диска внешним хранилищем, не реализованным в этом
// ядре).
func (m *WorldMap) Put(pos vec.ChunkPos, c *Chunk) {
	m.mu.Lock()
	m.chunks[pos] = c
	m.mu.Unlock()
}

// GetBlock читает блок по глобальным координатам, генерируя недостающий чанк.
func (m *WorldMap) GetBlock(x, y, z int) (block.BlockID, uint8) {
	c := m.LoadChunk(vec.ChunkPosOf(x, z))
	lx, lz := vec.LocalInChunk(x, z)
	return c.GetBlock(lx, y, lz)
}

// SetBlock записывает id и meta блока немедленно, аллоцируя суб-чанк при
// необходимости.
func (m *WorldMap) SetBlock(x, y, z int, id block.BlockID, meta uint8) {
	c := m.LoadChunk(vec.ChunkPosOf(x, z))
	lx, lz := vec.LocalInChunk(x, z)
	c.SetBlock(lx, y, lz, id, meta)
}

// QueueUpdate — точка приёма мутации блока со стороны игрового ввода
// (например, копка/установка). Координата вне границ ограниченного мира
// тихо отбрасывается — вызывающий слой уже должен был отклонить ввод (§4.1).
// Запись видна немедленно следующему чтению; уведомление поведения блока
// (OnPlace) выполняется здесь же, а его собственный тик, если он нужен,
// ставится в планировщик отдельным вызовом QueueBlock — сама запись не
// буферизуется до следующего тика, в отличие от формулировки §4.1: это
// упрощение, так как в этом ядре нет отдельного write-through прохода,
// отличного от прямой записи в чанк.
func (m *WorldMap) QueueUpdate(x, y, z int, id block.BlockID, meta uint8) {
	if !m.world.InBounds(x, z) {
		return
	}

	m.SetBlock(x, y, z, id, meta)
	m.publishBlockEvent(x, y, z, id, meta)

	behavior, ok := block.Get(id)
	if !ok {
		return
	}
	api := m.blockAPI()
	behavior.OnPlace(api, x, y, z)

	if behavior.NeedsTick() {
		m.world.scheduler.QueueBlockOnce(m.world, x, y, z, meta, 1, physicsEmptyStrip(), nil)
	}
}

// blockChangeEvent — полезная нагрузка BlockEvent, публикуемого в шину
// событий на каждое QueueUpdate (игровой ввод, не генерация).
type blockChangeEvent struct {
	World string `json:"world"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Z     int    `json:"z"`
	ID    uint16 `json:"id"`
	Meta  uint8  `json:"meta"`
}

// publishBlockEvent публикует изменение блока в шину событий — ошибка
// сериализации/публикации не прерывает мутацию, она уже применена.
func (m *WorldMap) publishBlockEvent(x, y, z int, id block.BlockID, meta uint8) {
	payload, err := json.Marshal(blockChangeEvent{World: m.world.Name(), X: x, Y: y, Z: z, ID: uint16(id), Meta: meta})
	if err != nil {
		return
	}
	_ = eventbus.Publish(context.Background(), &eventbus.Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    "world_map",
		EventType: "BlockEvent",
		Version:   1,
		Priority:  5,
		Payload:   payload,
	})
}

// blockAPI возвращает block.BlockAPI, работающий напрямую через эту карту —
// используется поведением блоков при OnPlace/OnBreak/HandleInteraction.
func (m *WorldMap) blockAPI() block.BlockAPI {
	return worldMapBlockAPI{m: m}
}

// chunkCount возвращает число загруженных чанков — для наблюдаемости/тестов.
func (m *WorldMap) chunkCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}

// worldMapBlockAPI реализует block.BlockAPI поверх WorldMap — единственная
// конкретная реализация этого интерфейса в ядре (раньше их было две,
// chunkBlockAPI/bigChunkBlockAPI, под устаревшую по-чанковую BigChunk-модель).
type worldMapBlockAPI struct {
	m *WorldMap
}

func (a worldMapBlockAPI) GetBlock(x, y, z int) block.BlockID {
	id, _ := a.m.GetBlock(x, y, z)
	return id
}

func (a worldMapBlockAPI) SetBlock(x, y, z int, id block.BlockID) {
	_, meta := a.m.GetBlock(x, y, z)
	a.m.SetBlock(x, y, z, id, meta)
}

func (a worldMapBlockAPI) GetMeta(x, y, z int) uint8 {
	_, meta := a.m.GetBlock(x, y, z)
	return meta
}

func (a worldMapBlockAPI) SetMeta(x, y, z int, meta uint8) {
	id, _ := a.m.GetBlock(x, y, z)
	a.m.SetBlock(x, y, z, id, meta)
}

func (a worldMapBlockAPI) ScheduleTick(x, y, z int) {
	_, meta := a.m.GetBlock(x, y, z)
	a.m.world.scheduler.QueueBlockOnce(a.m.world, x, y, z, meta, 1, physicsEmptyStrip(), nil)
}
