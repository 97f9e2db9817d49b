package physics

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// sharedScheduler — единственный Scheduler на весь пакет тестов:
// newSchedulerMetrics делает безусловный prometheus.MustRegister, так что
// второй NewScheduler в одном процессе запаникует. Тесты, которым нужно
// чистое состояние очереди/членства, сбрасывают эти поля вручную перед
// работой — метрики и их регистрация остаются общими и тестами не проверяются.
var (
	sharedSchedulerOnce sync.Once
	sharedScheduler     *Scheduler
)

func freshScheduler(t *testing.T) *Scheduler {
	t.Helper()
	sharedSchedulerOnce.Do(func() {
		sharedScheduler = NewScheduler(nil)
	})
	sharedScheduler.queue = newUpdateQueue()
	sharedScheduler.members = NewMembershipIndex()
	return sharedScheduler
}

func TestInitialReadyAt_TickDelayOneIsImmediate(t *testing.T) {
	ready := initialReadyAt(1)
	assert.False(t, ready.After(time.Now()), "tickDelay=1 должен быть готов немедленно, не через TickPeriod")
}

func TestInitialReadyAt_TickDelayZeroTreatedAsOne(t *testing.T) {
	zero := initialReadyAt(0)
	one := initialReadyAt(1)
	assert.WithinDuration(t, one, zero, 5*time.Millisecond, "tickDelay=0 должен вести себя как tickDelay=1")
}

func TestInitialReadyAt_LargerDelayIsInTheFuture(t *testing.T) {
	before := time.Now()
	ready := initialReadyAt(3)
	// tickDelay=3 -> декремент до 2 -> now + 2*TickPeriod.
	expected := before.Add(2 * TickPeriod)
	assert.WithinDuration(t, expected, ready, 10*time.Millisecond)
}

func TestUpdate_RequeueCopyUsesUndecrementedTickDelay(t *testing.T) {
	u := Update{TickDelay: 3}
	now := time.Now()
	requeued := u.requeueCopy(now)

	// В отличие от initialReadyAt, requeueCopy не декрементирует TickDelay —
	// это повторная постановка (шаг 2/5), а не первая.
	assert.Equal(t, now.Add(3*TickPeriod), requeued.ReadyAt)
}

func TestUpdate_ReadyReflectsReadyAt(t *testing.T) {
	past := Update{ReadyAt: time.Now().Add(-time.Second)}
	future := Update{ReadyAt: time.Now().Add(time.Hour)}

	assert.True(t, past.ready(time.Now()))
	assert.False(t, future.ready(time.Now()))
}

func TestScheduler_QueueBlockOnceDeduplicates(t *testing.T) {
	s := freshScheduler(t)
	w := newFakeWorld("dedup")

	s.QueueBlockOnce(w, 1, 64, 1, 0, 1, NewActionStrip(), nil)
	s.QueueBlockOnce(w, 1, 64, 1, 0, 1, NewActionStrip(), nil)

	assert.Equal(t, 1, s.QueueDepth(), "повторная постановка на живую ячейку не должна создавать вторую запись")
}

func TestScheduler_QueueBlockDoesNotDeduplicate(t *testing.T) {
	s := freshScheduler(t)
	w := newFakeWorld("plain")

	s.QueueBlock(w, 1, 64, 1, 0, 1, NewActionStrip(), nil)
	s.QueueBlock(w, 1, 64, 1, 0, 1, NewActionStrip(), nil)

	assert.Equal(t, 2, s.QueueDepth(), "QueueBlock (в отличие от QueueBlockOnce) не дедуплицирует")
}

func TestScheduler_HandleBlockUpdateDissipateConsumesAndFreesMembership(t *testing.T) {
	s := freshScheduler(t)
	w := newFakeWorld("dissipate")
	w.blocks[[3]int{5, 64, 5}] = 42
	s.members.Add(w, 5, 64, 5)

	var strip ActionStrip
	strip[0] = Action{Kind: ActionDissipate, Expire: 5, Val: 0}
	strip[1].Kind = ActionNone

	u := Update{Kind: BlockUpdate, World: w, X: 5, Y: 64, Z: 5, Params: strip}
	s.handleBlockUpdate(u, rand.New(rand.NewSource(1)))

	assert.Equal(t, uint16(0), w.BlockAt(5, 64, 5), "DISSIPATE должен записать воздух (id 0)")
	assert.False(t, s.members.Exists(w, 5, 64, 5), "членство должно быть снято после обработки")
	assert.Equal(t, 0, s.QueueDepth(), "поглощённое обновление не должно переставляться в очередь")
}

func TestScheduler_HandleBlockUpdateKeepRequeuesAndFreesMembership(t *testing.T) {
	s := freshScheduler(t)
	w := newFakeWorld("keep")
	s.members.Add(w, 6, 64, 6)

	var strip ActionStrip
	strip[0] = Action{Kind: ActionDrop, Expire: 3, Val: 0}
	strip[1].Kind = ActionNone

	u := Update{Kind: BlockUpdate, World: w, X: 6, Y: 64, Z: 6, Params: strip}
	s.handleBlockUpdate(u, rand.New(rand.NewSource(1)))

	assert.Equal(t, 1, s.QueueDepth(), "незавершённая полоса действий должна переставить обновление в очередь")
	assert.False(t, s.members.Exists(w, 6, 64, 6), "членство снимается до повторной постановки, независимо от keep")
}

func TestScheduler_HandleEntityUpdatePersistentRequeues(t *testing.T) {
	s := freshScheduler(t)
	w := newFakeWorld("entities")
	e := &fakeEntity{done: false}

	u := Update{Kind: EntityUpdate, World: w, Entity: e, Persistent: true}
	s.handleEntityUpdate(u, rand.New(rand.NewSource(1)))

	assert.Equal(t, 1, e.ticks)
	assert.Equal(t, 1, s.QueueDepth(), "персистентная незавершённая сущность должна переставляться в очередь")
}

func TestScheduler_HandleEntityUpdateDoneDoesNotRequeue(t *testing.T) {
	s := freshScheduler(t)
	w := newFakeWorld("entities-done")
	e := &fakeEntity{done: true}

	u := Update{Kind: EntityUpdate, World: w, Entity: e, Persistent: true}
	s.handleEntityUpdate(u, rand.New(rand.NewSource(1)))

	assert.Equal(t, 0, s.QueueDepth(), "завершённая сущность не должна переставляться в очередь, даже если persistent")
}

func TestScheduler_HandleEntityUpdateCrossWorldDropped(t *testing.T) {
	s := freshScheduler(t)
	w := newFakeWorld("home")
	e := &fakeEntity{done: false, isPlayer: true, currentWorld: "elsewhere"}

	u := Update{Kind: EntityUpdate, World: w, Entity: e, Persistent: true}
	s.handleEntityUpdate(u, rand.New(rand.NewSource(1)))

	assert.Equal(t, 0, e.ticks, "обновление игрока для мира, который он уже покинул, не должно тикать")
	assert.Equal(t, 0, s.QueueDepth())
}
