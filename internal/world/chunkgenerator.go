package world

import (
	"sync"
	"time"

	"github.com/annel0/mmo-game/internal/logging"
	"github.com/annel0/mmo-game/internal/vec"
)

// GenFlag — флаги запроса генерации чанка (§4.3).
type GenFlag uint8

const (
	// GenNoDeliver — не доставлять готовый чанк запрашивающему (предзагрузка
	// впрок); если чанк уже существует в карте мира, запрос вообще
	// пропускается.
	GenNoDeliver GenFlag = 1 << iota
	// GenNoAbort — не проверять актуальность запроса перед генерацией.
	GenNoAbort
	// GenAborted выставляется воркером в доставке, когда запрос был прерван.
	GenAborted
)

// ChunkDelivery — результат обработки запроса генерации, переданный по
// каналу доставки запрашивающего.
type ChunkDelivery struct {
	World *World
	Pos   vec.ChunkPos
	Chunk *Chunk
	Flags GenFlag
	Extra int
}

// ChunkRequester — минимальная поверхность запрашивающей стороны (игрока),
// которую видит генератор: достаточно для проверки актуальности запроса
// (шаг 2 алгоритма §4.3) без прямой зависимости от Player.
type ChunkRequester interface {
	// StillInterested сообщает, актуален ли ещё запрос чанка (cx, cz) в
	// мире w — тот же мир и чанк всё ещё в радиусе стриминга.
	StillInterested(w *World, pos vec.ChunkPos) bool
	// Deliver доставляет готовый (или абортированный) чанк запрашивающему.
	Deliver(d ChunkDelivery)
}

type genRequest struct {
	requester ChunkRequester
	world     *World
	pos       vec.ChunkPos
	flags     GenFlag
	extra     int
}

// ChunkGenerator — один фоновый воркер и FIFO-очередь запросов генерации
// (§4.3): single-producer/single-consumer по духу (множество производителей
// допустимо — очередь под мьютексом, но обслуживает её единственный
// воркер).
type ChunkGenerator struct {
	log *logging.Logger

	idleRest time.Duration
	deepRest time.Duration

	mu       sync.Mutex
	requests []genRequest

	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewChunkGenerator создаёт генератор в остановленном состоянии — Start
// запускает фоновый воркер. idleRest/deepRest настраиваются конфигурацией
// (generator.idle_rest_ms, generator.deep_rest_ms); нулевые значения
// заменяются дефолтами 4мс/20мс.
func NewChunkGenerator(idleRest, deepRest time.Duration) *ChunkGenerator {
	if idleRest <= 0 {
		idleRest = 4 * time.Millisecond
	}
	if deepRest <= 0 {
		deepRest = 20 * time.Millisecond
	}
	return &ChunkGenerator{
		log:      logging.GetComponentLogger("world"),
		idleRest: idleRest,
		deepRest: deepRest,
	}
}

// Start запускает фоновый воркер, если он ещё не запущен.
func (g *ChunkGenerator) Start() {
	g.mu.Lock()
	if g.running {
		g.mu.Unlock()
		return
	}
	g.running = true
	g.stop = make(chan struct{})
	g.done = make(chan struct{})
	g.mu.Unlock()

	go g.mainLoop()
}

// Stop останавливает воркер и дожидается его завершения.
func (g *ChunkGenerator) Stop() {
	g.mu.Lock()
	if !g.running {
		g.mu.Unlock()
		return
	}
	g.running = false
	stop := g.stop
	done := g.done
	g.mu.Unlock()

	close(stop)
	<-done
}

// Request ставит запрос на генерацию чанка в очередь.
func (g *ChunkGenerator) Request(requester ChunkRequester, w *World, pos vec.ChunkPos, flags GenFlag, extra int) {
	g.mu.Lock()
	g.requests = append(g.requests, genRequest{requester: requester, world: w, pos: pos, flags: flags, extra: extra})
	g.mu.Unlock()
}

// mainLoop — лёгкий простой (4мс) при пустой очереди, редкий долгий отдых
// (20мс) каждые 250 пустых итераций — точное значение из hCraft'овского
// chunk_generator::main_loop.
func (g *ChunkGenerator) mainLoop() {
	defer close(g.done)

	const deepRestMod = 250

	counter := 0
	shouldRest := false
	longRest := false

	for {
		select {
		case <-g.stop:
			return
		default:
		}

		if longRest {
			time.Sleep(g.deepRest)
		} else if shouldRest {
			time.Sleep(g.idleRest)
		}
		shouldRest = false
		longRest = false

		req, ok := g.pop()
		if !ok {
			counter++
			shouldRest = true
			longRest = counter%deepRestMod == 0
			continue
		}

		g.handle(req)
		shouldRest = true
	}
}

func (g *ChunkGenerator) pop() (genRequest, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.requests) == 0 {
		return genRequest{}, false
	}
	req := g.requests[0]
	g.requests = g.requests[1:]
	return req, true
}

func (g *ChunkGenerator) handle(req genRequest) {
	if req.flags&GenNoAbort == 0 && !req.requester.StillInterested(req.world, req.pos) {
		if req.flags&GenNoDeliver == 0 {
			req.requester.Deliver(ChunkDelivery{World: req.world, Pos: req.pos, Flags: GenAborted, Extra: req.extra})
		}
		return
	}

	if req.flags&GenNoDeliver != 0 {
		if _, exists := req.world.theMap.GetChunk(req.pos); exists {
			return
		}
	}

	chunk := req.world.theMap.LoadChunk(req.pos)
	if chunk == nil {
		g.log.Warn("world: генератор вернул nil для чанка %v в мире %s", req.pos, req.world.Name())
		return
	}

	if req.flags&GenNoDeliver == 0 {
		req.requester.Deliver(ChunkDelivery{World: req.world, Pos: req.pos, Chunk: chunk, Extra: req.extra})
	}
}
