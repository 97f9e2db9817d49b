package world

import (
	"sort"
	"sync"
	"time"

	"github.com/annel0/mmo-game/internal/logging"
	"github.com/annel0/mmo-game/internal/physics"
	"github.com/annel0/mmo-game/internal/vec"
	"github.com/annel0/mmo-game/internal/world/block"
)

// DefaultStreamRadius — радиус стриминга чанков вокруг игрока в чанках
// (§4.4), применяется, если конфигурация не переопределяет его.
const DefaultStreamRadius = 10

// playerCollider — хитбокс игрока для проверки проходимости при движении:
// одна колонка шириной в блок, два блока высотой.
var playerCollider = physics.NewBoxCollider3D(1, 2)

// Player — игрок как сущность мира: позиция, известные чанки, видимые
// соседние игроки, keepalive-состояние. Реализует physics.EntityHandle (тик
// планировщика) и ChunkRequester (генератор чанков), так что оба фоновых
// подсистемы видят только эти узкие срезы, не весь тип целиком.
type Player struct {
	EID  uint64
	Name string

	World *World
	tx    Transmitter

	mu           sync.Mutex
	Pos          vec.Vec3Float
	Yaw, Pitch   float32
	OnGround     bool
	currentChunk vec.ChunkPos
	hasChunk     bool
	knownChunks  map[vec.ChunkPos]struct{}
	visiblePeers map[uint64]*Player
	streamRadius int

	keepaliveMu       sync.Mutex
	keepaliveOutID    uint16
	keepaliveOutAt    time.Time
	keepaliveHasOut   bool
	keepaliveInterval time.Duration
	keepaliveTimeout  time.Duration
	lastKeepaliveSent time.Time

	disconnected     bool
	disconnectReason string

	log *logging.Logger
}

// NewPlayer создаёт игрока с позицией по умолчанию в мире w.
func NewPlayer(eid uint64, name string, w *World, tx Transmitter) *Player {
	return &Player{
		EID:               eid,
		Name:              name,
		World:             w,
		tx:                tx,
		Pos:               w.SpawnPos,
		knownChunks:       make(map[vec.ChunkPos]struct{}),
		visiblePeers:      make(map[uint64]*Player),
		streamRadius:      DefaultStreamRadius,
		keepaliveInterval: 5 * time.Second,
		keepaliveTimeout:  15 * time.Second,
		log:               logging.GetComponentLogger("world"),
	}
}

// SetStreamRadius переопределяет радиус стриминга (конфигурация
// streaming.radius_chunks).
func (p *Player) SetStreamRadius(radius int) {
	p.mu.Lock()
	p.streamRadius = radius
	p.mu.Unlock()
}

// --- physics.EntityHandle ---

// Tick реализует physics.EntityHandle: проверяет keepalive-таймаут и
// возвращает false (не терминальна), пока игрок не отключился — выход из
// игры снимает его с учёта явно через World.RemovePlayer, не через этот
// возврат.
func (p *Player) Tick(w physics.World) bool {
	p.checkKeepaliveTimeout()
	disconnected, _ := p.Disconnected()
	return disconnected
}

func (p *Player) IsPlayer() bool { return true }

func (p *Player) CurrentWorldName() string { return p.World.Name() }

// --- ChunkRequester ---

// StillInterested сообщает генератору, остаётся ли (pos) в радиусе
// стриминга игрока в данный момент — используется генератором для отмены
// устаревших запросов (§4.3 шаг 2).
func (p *Player) StillInterested(w *World, pos vec.ChunkPos) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disconnected || p.World != w {
		return false
	}
	if !p.hasChunk {
		return true
	}
	radius := p.streamRadius
	dx := pos.X - p.currentChunk.X
	dz := pos.Z - p.currentChunk.Z
	if dx < 0 {
		dx = -dx
	}
	if dz < 0 {
		dz = -dz
	}
	return dx <= radius && dz <= radius
}

// Deliver принимает асинхронно сгенерированный чанк и отправляет его
// игроку, если тот ещё заинтересован (проверено генератором до вызова), а
// затем обменивается spawn_to с соседями по ростеру доставленного чанка
// (§4.3 шаг 5 / §4.4 шаг 4).
func (p *Player) Deliver(d ChunkDelivery) {
	if d.Flags&GenAborted != 0 {
		return
	}
	p.mu.Lock()
	disconnected := p.disconnected
	p.mu.Unlock()
	if disconnected || d.Chunk == nil {
		return
	}
	p.tx.SendChunkPayload(d.Pos, d.Chunk)

	for _, otherEID := range d.Chunk.Entities() {
		if otherEID == p.EID {
			continue
		}
		other, ok := p.World.Player(otherEID)
		if !ok {
			continue
		}
		p.spawnTo(other)
		other.spawnTo(p)
	}
}

// --- Streaming (§4.4) ---

type distChunk struct {
	pos  vec.ChunkPos
	dist int
}

// StreamChunks пересчитывает набор известных чанков вокруг текущей позиции
// игрока: выгружает то, что вышло за радиус, загружает то, что вошло, в
// порядке возрастания расстояния, и обменивается spawn_to/despawn_from с
// соседями по чанкам через их ростер сущностей.
func (p *Player) StreamChunks(radius int) {
	p.mu.Lock()
	center := vec.ChunkPosOf(int(p.Pos.X), int(p.Pos.Z))
	prev := make(map[vec.ChunkPos]struct{}, len(p.knownChunks))
	for c := range p.knownChunks {
		prev[c] = struct{}{}
	}
	p.mu.Unlock()

	half := radius / 2

	var toLoad []distChunk
	for dx := -half; dx <= half; dx++ {
		for dz := -half; dz <= half; dz++ {
			pos := vec.ChunkPos{X: center.X + dx, Z: center.Z + dz}
			if _, already := prev[pos]; already {
				delete(prev, pos)
				continue
			}
			toLoad = append(toLoad, distChunk{pos: pos, dist: pos.SquaredDistanceTo(center)})
		}
	}
	sort.Slice(toLoad, func(i, j int) bool { return toLoad[i].dist < toLoad[j].dist })

	// Выгрузка: то, что осталось в prev, больше не видно игроку.
	for pos := range prev {
		p.mu.Lock()
		delete(p.knownChunks, pos)
		p.mu.Unlock()

		p.tx.SendEmptyChunk(pos)

		chunk, ok := p.World.theMap.GetChunk(pos)
		if !ok {
			continue
		}
		for _, otherEID := range chunk.Entities() {
			if otherEID == p.EID {
				continue
			}
			other, ok := p.World.Player(otherEID)
			if !ok {
				continue
			}
			p.despawnFrom(other)
			other.despawnFrom(p)
		}
	}

	// Загрузка в порядке возрастания расстояния: запросы уходят в очередь
	// фонового генератора (§4.3) и сохраняют порядок отправки, так как её
	// обслуживает единственный воркер FIFO — доставка и оповещение ростера
	// соседей происходят асинхронно в Deliver.
	for _, dc := range toLoad {
		p.mu.Lock()
		p.knownChunks[dc.pos] = struct{}{}
		p.mu.Unlock()

		p.World.RequestChunk(p, dc.pos, 0, 0)
	}

	p.mu.Lock()
	old := p.currentChunk
	hadChunk := p.hasChunk
	p.hasChunk = true
	p.currentChunk = center
	p.mu.Unlock()

	if oldChunk, ok := p.World.theMap.GetChunk(old); ok && hadChunk && old != center {
		oldChunk.RemoveEntity(p.EID)
	}
	if newChunk, ok := p.World.theMap.GetChunk(center); ok {
		newChunk.AddEntity(p.EID)
	}
}

// spawnTo делает p видимым для other, если он ещё не виден — идемпотентно
// относительно visiblePeers other'а.
func (p *Player) spawnTo(other *Player) {
	other.mu.Lock()
	if _, already := other.visiblePeers[p.EID]; already {
		other.mu.Unlock()
		return
	}
	other.visiblePeers[p.EID] = p
	pos, yaw, pitch := p.Pos, p.Yaw, p.Pitch
	other.mu.Unlock()

	other.tx.SendSpawnNamedEntity(p.EID, pos, yaw, pitch)
}

// despawnFrom скрывает p от other, если он сейчас виден.
func (p *Player) despawnFrom(other *Player) {
	other.mu.Lock()
	if _, visible := other.visiblePeers[p.EID]; !visible {
		other.mu.Unlock()
		return
	}
	delete(other.visiblePeers, p.EID)
	other.mu.Unlock()

	other.tx.SendDestroyEntity(p.EID)
}

// blockPassable сообщает, можно ли занять данную ячейку — твёрдые блоки
// (всё, кроме воздуха) непроходимы. Вода и прочие не-твёрдые материалы вне
// критического пути этого ядра, поэтому упрощены до "непроходимо".
func (p *Player) blockPassable(cell vec.Vec3) bool {
	id, _ := p.World.theMap.GetBlock(cell.X, cell.Y, cell.Z)
	return id == block.AirBlockID
}

// --- Movement (§4.4 "Movement path") ---

// MoveTo перемещает игрока к dest, зажимая координаты в границы мира (с
// корректирующей телепортацией, если зажатие применилось), запускает
// перестриминг при смене текущего чанка и рассылает движение видимым
// соседям самым дешёвым допустимым пакетом.
func (p *Player) MoveTo(dest vec.Vec3Float, yaw, pitch float32, onGround bool) {
	cx, cz, clamped := p.World.ClampToBounds(dest.X, dest.Z)
	dest.X, dest.Z = cx, cz

	destBlock := vec.Vec3{X: int(dest.X), Y: int(dest.Y), Z: int(dest.Z)}
	if !physics.CanMoveToPosition3D(destBlock, playerCollider, p.blockPassable) {
		p.mu.Lock()
		reject := p.Pos
		rejectYaw, rejectPitch := p.Yaw, p.Pitch
		p.mu.Unlock()
		p.tx.SendPositionAndLookEcho(reject, rejectYaw, rejectPitch)
		return
	}

	p.mu.Lock()
	prevPos := p.Pos
	p.Pos = dest
	p.Yaw, p.Pitch, p.OnGround = yaw, pitch, onGround
	newChunkPos := vec.ChunkPosOf(int(dest.X), int(dest.Z))
	chunkChanged := !p.hasChunk || newChunkPos != p.currentChunk
	radius := p.streamRadius
	peers := make([]*Player, 0, len(p.visiblePeers))
	for _, peer := range p.visiblePeers {
		peers = append(peers, peer)
	}
	p.mu.Unlock()

	if clamped {
		p.tx.SendPositionAndLookEcho(dest, yaw, pitch)
	}

	if chunkChanged {
		p.StreamChunks(radius)
	}

	positionMoved := prevPos != dest
	for _, peer := range peers {
		switch {
		case !positionMoved:
			peer.tx.SendEntityLook(p.EID, yaw, pitch)
		default:
			// Источник поведения всегда использует абсолютную телепортацию
			// для межчанкового движения вместо дельта-пакетов; дешёвый
			// относительный пакет применим только внутри неизменной позиции.
			peer.tx.SendEntityTeleport(p.EID, dest, yaw, pitch)
		}
	}
}

// --- Keepalive (§4.5) ---

// keepaliveIDFromClock выводит 16-битный идентификатор пинга из текущего
// времени в секундах от начала эпохи.
func keepaliveIDFromClock(now time.Time) uint16 {
	return uint16(now.Unix() & 0xFFFF)
}

// SendKeepaliveIfDue отправляет очередной пинг, если с последнего прошло
// не меньше настроенного интервала, и заранее считает предыдущий пинг, если
// он ещё не получил ответа, просроченным (терминирует сессию по таймауту).
func (p *Player) SendKeepaliveIfDue(now time.Time) {
	p.keepaliveMu.Lock()
	defer p.keepaliveMu.Unlock()

	if now.Sub(p.lastKeepaliveSent) < p.keepaliveInterval {
		return
	}

	if p.keepaliveHasOut {
		p.terminateLocked("timeout")
		return
	}

	id := keepaliveIDFromClock(now)
	p.keepaliveOutID = id
	p.keepaliveOutAt = now
	p.keepaliveHasOut = true
	p.lastKeepaliveSent = now
	p.tx.SendKeepalive(id)
}

// HandlePong обрабатывает ответный pong; id 0 — нежданный keepalive от
// клиента, допускается без сверки с исходящим пингом.
func (p *Player) HandlePong(id uint16) {
	p.keepaliveMu.Lock()
	defer p.keepaliveMu.Unlock()

	if id == 0 {
		return
	}
	if p.keepaliveHasOut && id == p.keepaliveOutID {
		p.keepaliveHasOut = false
	}
}

func (p *Player) checkKeepaliveTimeout() {
	p.keepaliveMu.Lock()
	defer p.keepaliveMu.Unlock()

	if !p.keepaliveHasOut {
		return
	}
	if time.Since(p.keepaliveOutAt) > p.keepaliveTimeout {
		p.terminateLocked("timeout")
	}
}

// terminateLocked завершает сессию игрока — вызывающий уже держит
// keepaliveMu.
func (p *Player) terminateLocked(reason string) {
	p.mu.Lock()
	already := p.disconnected
	p.disconnected = true
	p.disconnectReason = reason
	p.mu.Unlock()

	if already {
		return
	}
	p.log.Info("world: игрок %s (%d) отключён: %s", p.Name, p.EID, reason)
	p.tx.SendKick(reason)
}

// Disconnected сообщает, завершена ли сессия игрока (keepalive-таймаут или
// явный выход).
func (p *Player) Disconnected() (bool, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.disconnected, p.disconnectReason
}
