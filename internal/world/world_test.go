package world

import (
	"sync"
	"testing"

	"github.com/annel0/mmo-game/internal/physics"
	"github.com/annel0/mmo-game/internal/vec"
	"github.com/annel0/mmo-game/internal/world/block"
	_ "github.com/annel0/mmo-game/internal/world/block/implementations"
	"github.com/stretchr/testify/assert"
)

// sharedTestScheduler — один планировщик на весь пакет тестов: каждый
// physics.NewScheduler регистрирует собственный набор Prometheus-метрик под
// фиксированными именами, так что второй вызов в одном процессе паникует на
// MustRegister. Тесты здесь не запускают воркеров (SetWorkerCount не
// вызывается), так что разделение планировщика между мирами безопасно.
var (
	sharedTestSchedulerOnce sync.Once
	sharedTestScheduler     *physics.Scheduler
)

func testScheduler(t *testing.T) *physics.Scheduler {
	t.Helper()
	sharedTestSchedulerOnce.Do(func() {
		sharedTestScheduler = physics.NewScheduler(nil)
	})
	return sharedTestScheduler
}

func newTestWorld(t *testing.T) *World {
	t.Helper()
	w := NewWorld("test", 12345, 0, 0, testScheduler(t))
	w.Start()
	t.Cleanup(w.Stop)
	return w
}

func TestWorld_BlockReadWrite(t *testing.T) {
	w := newTestWorld(t)

	w.Map().SetBlock(10, 64, 15, block.StoneBlockID, 0)

	id, meta := w.Map().GetBlock(10, 64, 15)
	assert.Equal(t, block.StoneBlockID, id, "id блока должен совпадать")
	assert.Equal(t, uint8(0), meta, "meta блока по умолчанию 0")
}

func TestWorld_QueueUpdateOutOfBoundsDropped(t *testing.T) {
	w := NewWorld("bounded", 1, 32, 32, testScheduler(t))

	// За пределами ограниченного мира запись должна молча отбрасываться.
	w.Map().QueueUpdate(1000, 64, 1000, block.StoneBlockID, 0)
	id, _ := w.Map().GetBlock(1000, 64, 1000)
	assert.Equal(t, block.AirBlockID, id, "запись за границами мира должна быть отброшена")
}

func TestWorld_InBoundsUnbounded(t *testing.T) {
	w := newTestWorld(t)
	assert.True(t, w.InBounds(1_000_000, -1_000_000), "неограниченный мир пропускает любые координаты")
}

func TestWorld_ClampToBounds(t *testing.T) {
	w := NewWorld("bounded", 1, 10, 10, testScheduler(t))

	cx, cz, clamped := w.ClampToBounds(1000, 1000)
	assert.True(t, clamped, "координата за границей должна быть зажата")
	assert.True(t, w.InBounds(int(cx), int(cz)), "результат зажатия должен лежать в границах")
}

func TestWorld_ClampToBoundsNegativeClampsToOne(t *testing.T) {
	w := NewWorld("bounded", 1, 16, 16, testScheduler(t))

	cx, cz, clamped := w.ClampToBounds(-1, 5)
	assert.True(t, clamped, "отрицательная координата должна быть зажата")
	assert.Equal(t, 1.0, cx, "отрицательный x зажимается в 1.0, а не в -half")
	assert.Equal(t, 5.0, cz, "z внутри границ не должен меняться")
}

func TestWorld_PlayerRegistry(t *testing.T) {
	w := newTestWorld(t)
	p := NewPlayer(1, "tester", w, noopTransmitter{})

	w.AddPlayer(p)
	got, ok := w.Player(1)
	assert.True(t, ok, "игрок должен быть найден после AddPlayer")
	assert.Equal(t, p, got)

	w.RemovePlayer(1)
	_, ok = w.Player(1)
	assert.False(t, ok, "игрок не должен быть найден после RemovePlayer")
}

func TestWorld_ChunkGeneration(t *testing.T) {
	w := newTestWorld(t)
	pos := vec.ChunkPos{X: 0, Z: 0}

	chunk := w.Map().LoadChunk(pos)
	assert.NotNil(t, chunk, "LoadChunk должен синтезировать чанк при первом обращении")

	again := w.Map().LoadChunk(pos)
	assert.Same(t, chunk, again, "повторный LoadChunk должен вернуть тот же чанк")
}

// noopTransmitter реализует Transmitter без побочных эффектов — для тестов,
// которым не важна фактическая доставка пакетов.
type noopTransmitter struct{}

func (noopTransmitter) SendChunkPayload(vec.ChunkPos, *Chunk)                       {}
func (noopTransmitter) SendEmptyChunk(vec.ChunkPos)                                 {}
func (noopTransmitter) SendSpawnNamedEntity(uint64, vec.Vec3Float, float32, float32) {}
func (noopTransmitter) SendDestroyEntity(uint64)                                    {}
func (noopTransmitter) SendEntityTeleport(uint64, vec.Vec3Float, float32, float32)   {}
func (noopTransmitter) SendEntityHeadLook(uint64, float32)                          {}
func (noopTransmitter) SendEntityLook(uint64, float32, float32)                     {}
func (noopTransmitter) SendPositionAndLookEcho(vec.Vec3Float, float32, float32)      {}
func (noopTransmitter) SendBlockChange(int, int, int, uint16, uint8)                {}
func (noopTransmitter) SendKeepalive(uint16)                                        {}
func (noopTransmitter) SendKick(string)                                             {}
