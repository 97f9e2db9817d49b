package world

import (
	"sync"
	"testing"
	"time"

	"github.com/annel0/mmo-game/internal/vec"
	"github.com/annel0/mmo-game/internal/world/block"
	_ "github.com/annel0/mmo-game/internal/world/block/implementations"
	"github.com/stretchr/testify/assert"
)

// waitFor опрашивает cond до истинного значения или истечения таймаута —
// загрузка чанков теперь асинхронна через фоновый воркер генератора.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	if !cond() {
		t.Fatal("условие не выполнилось в отведённый срок")
	}
}

// recordingTransmitter captures sent packets for assertions instead of
// discarding them like noopTransmitter. Guarded by mu since Deliver now runs
// on the background generator worker goroutine, not the calling goroutine.
type recordingTransmitter struct {
	mu sync.Mutex

	chunkPayloads []vec.ChunkPos
	emptyChunks   []vec.ChunkPos
	spawns        []uint64
	despawns      []uint64
	echoes        []vec.Vec3Float
	keepalives    []uint16
	kicks         []string
}

func (r *recordingTransmitter) SendChunkPayload(pos vec.ChunkPos, _ *Chunk) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunkPayloads = append(r.chunkPayloads, pos)
}
func (r *recordingTransmitter) SendEmptyChunk(pos vec.ChunkPos) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emptyChunks = append(r.emptyChunks, pos)
}
func (r *recordingTransmitter) SendSpawnNamedEntity(eid uint64, _ vec.Vec3Float, _, _ float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spawns = append(r.spawns, eid)
}
func (r *recordingTransmitter) SendDestroyEntity(eid uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.despawns = append(r.despawns, eid)
}
func (r *recordingTransmitter) SendEntityTeleport(uint64, vec.Vec3Float, float32, float32) {}
func (r *recordingTransmitter) SendEntityHeadLook(uint64, float32)                         {}
func (r *recordingTransmitter) SendEntityLook(uint64, float32, float32)                    {}
func (r *recordingTransmitter) SendPositionAndLookEcho(pos vec.Vec3Float, _, _ float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.echoes = append(r.echoes, pos)
}
func (r *recordingTransmitter) SendBlockChange(int, int, int, uint16, uint8) {}
func (r *recordingTransmitter) SendKeepalive(id uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keepalives = append(r.keepalives, id)
}
func (r *recordingTransmitter) SendKick(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kicks = append(r.kicks, reason)
}

func TestPlayer_StreamChunksLoadsAndTracksRoster(t *testing.T) {
	w := newTestWorld(t)
	tx := &recordingTransmitter{}
	p := NewPlayer(1, "alice", w, tx)

	p.StreamChunks(2)

	waitFor(t, time.Second, func() bool {
		tx.mu.Lock()
		defer tx.mu.Unlock()
		return len(tx.chunkPayloads) > 0
	})

	p.mu.Lock()
	known := len(p.knownChunks)
	center := p.currentChunk
	p.mu.Unlock()
	assert.Greater(t, known, 0, "известные чанки должны быть заполнены")

	chunk, ok := w.Map().GetChunk(center)
	if assert.True(t, ok, "центральный чанк должен быть загружен") {
		found := false
		for _, eid := range chunk.Entities() {
			if eid == p.EID {
				found = true
			}
		}
		assert.True(t, found, "игрок должен быть в ростере своего текущего чанка")
	}
}

func TestPlayer_SpawnToAndDespawnFromAreIdempotent(t *testing.T) {
	w := newTestWorld(t)
	txA, txB := &recordingTransmitter{}, &recordingTransmitter{}
	a := NewPlayer(1, "a", w, txA)
	b := NewPlayer(2, "b", w, txB)

	a.spawnTo(b)
	a.spawnTo(b)
	assert.Len(t, txB.spawns, 1, "повторный spawnTo не должен дублировать пакет")

	a.despawnFrom(b)
	a.despawnFrom(b)
	assert.Len(t, txB.despawns, 1, "повторный despawnFrom не должен дублировать пакет")
}

func TestPlayer_MoveRejectsIntoSolidBlock(t *testing.T) {
	w := newTestWorld(t)
	tx := &recordingTransmitter{}
	p := NewPlayer(1, "blocked", w, tx)
	p.Pos = vec.Vec3Float{X: 0, Y: 64, Z: 0}

	solid := vec.Vec3{X: 5, Y: 64, Z: 5}
	w.Map().SetBlock(solid.X, solid.Y, solid.Z, block.StoneBlockID, 0)

	p.MoveTo(vec.Vec3Float{X: 5, Y: 64, Z: 5}, 0, 0, true)

	assert.Equal(t, vec.Vec3Float{X: 0, Y: 64, Z: 0}, p.Pos, "перемещение в твёрдый блок должно быть отклонено")
	assert.NotEmpty(t, tx.echoes, "отклонённое перемещение должно вернуть эхо позиции")
}

func TestPlayer_MoveAcceptsIntoAir(t *testing.T) {
	w := newTestWorld(t)
	tx := &recordingTransmitter{}
	p := NewPlayer(1, "free", w, tx)
	p.Pos = vec.Vec3Float{X: 0, Y: 64, Z: 0}

	// Высота поверхности зависит от шума генератора; явно расчищаем целевую
	// колонку до воздуха, чтобы тест не зависел от сгенерированного рельефа.
	w.Map().SetBlock(1, 64, 1, block.AirBlockID, 0)
	w.Map().SetBlock(1, 65, 1, block.AirBlockID, 0)

	p.MoveTo(vec.Vec3Float{X: 1, Y: 64, Z: 1}, 0, 0, true)

	assert.Equal(t, vec.Vec3Float{X: 1, Y: 64, Z: 1}, p.Pos, "перемещение в воздух должно быть принято")
}

func TestPlayer_KeepaliveOutstandingTimeoutDisconnects(t *testing.T) {
	w := newTestWorld(t)
	tx := &recordingTransmitter{}
	p := NewPlayer(1, "idle", w, tx)
	p.keepaliveInterval = time.Millisecond
	p.keepaliveTimeout = time.Millisecond

	p.SendKeepaliveIfDue(time.Now())
	assert.Len(t, tx.keepalives, 1, "должен быть отправлен первый пинг")

	time.Sleep(5 * time.Millisecond)
	p.checkKeepaliveTimeout()

	disconnected, reason := p.Disconnected()
	assert.True(t, disconnected, "просроченный пинг должен завершить сессию")
	assert.Equal(t, "timeout", reason)
	assert.Equal(t, []string{"timeout"}, tx.kicks)
}

func TestPlayer_KeepalivePongZeroTolerated(t *testing.T) {
	w := newTestWorld(t)
	p := NewPlayer(1, "tolerant", w, &recordingTransmitter{})

	p.HandlePong(0)

	disconnected, _ := p.Disconnected()
	assert.False(t, disconnected, "pong с id=0 не должен влиять на состояние keepalive")
}

func TestPlayer_KeepalivePongClearsOutstanding(t *testing.T) {
	w := newTestWorld(t)
	tx := &recordingTransmitter{}
	p := NewPlayer(1, "ponged", w, tx)

	now := time.Now()
	p.SendKeepaliveIfDue(now)

	p.keepaliveMu.Lock()
	id := p.keepaliveOutID
	p.keepaliveMu.Unlock()

	p.HandlePong(id)

	p.keepaliveMu.Lock()
	hasOut := p.keepaliveHasOut
	p.keepaliveMu.Unlock()
	assert.False(t, hasOut, "pong с правильным id должен снять флаг ожидания")
}
