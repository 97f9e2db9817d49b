package physics

import (
	"math/rand"
	"time"
)

// World — минимальная поверхность, которую планировщику физики требует от
// мира для обработки блочных и сущностных обновлений. internal/world
// реализует этот интерфейс; планировщик не импортирует internal/world, чтобы
// не создавать цикл зависимостей.
type World interface {
	// Name идентифицирует мир для кросс-мировых сверок (см. EntityHandle).
	Name() string
	// BlockAt возвращает текущий id блока в ячейке — используется, когда у
	// обновления нет собственного callback'а, чтобы найти поведение блока.
	BlockAt(x, y, z int) uint16
	// SetBlockRaw записывает id+meta напрямую, в обход queue_update —
	// используется DISSIPATE для немедленной записи воздуха.
	SetBlockRaw(x, y, z int, id uint16, meta uint8)
}

// BlockTicker — блок-поведение, вызываемое планировщиком, когда у
// обновления нет собственного callback'а. Спутник block.BlockBehavior.Tick,
// без прямой зависимости от пакета block (его предоставляет Registry).
type BlockTicker interface {
	Tick(w World, x, y, z int, extra uint8, rng *rand.Rand)
}

// Registry разрешает id блока в его поведение. internal/world/block.Get
// удовлетворяет этой сигнатуре после обёртки под BlockTicker.
type Registry interface {
	BehaviorFor(id uint16) (BlockTicker, bool)
}

// BlockCallback — альтернатива поведению из реестра: колбэк, приложенный
// прямо к обновлению в момент его постановки в очередь.
type BlockCallback func(w World, x, y, z int, extra uint8, rng *rand.Rand)

// EntityHandle — минимальная поверхность тикаемой сущности. entity.Manager
// (через тонкую обёртку) реализует этот интерфейс.
type EntityHandle interface {
	// Tick продвигает сущность на один тик и возвращает true, если она
	// достигла терминального состояния и может быть снята с учёта.
	Tick(w World) bool
	// IsPlayer сообщает, нужно ли сверять текущий мир сущности с миром
	// обновления (кросс-мировые устаревшие обновления отбрасываются только
	// для игроков, см. spec §4.2 шаг 5).
	IsPlayer() bool
	// CurrentWorldName — мир, в котором сущность фактически сейчас
	// находится; пусто/не-IsPlayer — проверка пропускается.
	CurrentWorldName() string
}

// Kind различает блочные и сущностные обновления тегированного варианта Update.
type Kind uint8

const (
	BlockUpdate Kind = iota
	EntityUpdate
)

// Update — тегированный вариант записи планировщика: блочное или сущностное
// обновление, несущее собственную полосу действий и отметку готовности.
type Update struct {
	Kind  Kind
	World World

	// Поля блочного обновления.
	X, Y, Z  int
	Extra    uint8
	Callback BlockCallback

	// Поля сущностного обновления.
	Entity     EntityHandle
	Persistent bool

	Params    ActionStrip
	TickDelay int
	ReadyAt   time.Time
}

func (u *Update) ready(now time.Time) bool {
	return !u.ReadyAt.After(now)
}

// requeueCopy возвращает копию обновления с отметкой готовности, сдвинутой
// на TickDelay тиков вперёд от now — используемую и ActionStrip.keep, и
// персистентным сущностным re-enqueue.
func (u Update) requeueCopy(now time.Time) Update {
	nu := u
	nu.ReadyAt = now.Add(TickPeriod * time.Duration(nu.TickDelay))
	return nu
}
