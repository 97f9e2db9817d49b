package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeWorld — минимальная реализация World для тестов планировщика/членства,
// которым важна лишь идентичность мира как ключа карты, а не реальное
// хранилище блоков.
type fakeWorld struct {
	name   string
	blocks map[[3]int]uint16
}

func newFakeWorld(name string) *fakeWorld {
	return &fakeWorld{name: name, blocks: make(map[[3]int]uint16)}
}

func (w *fakeWorld) Name() string { return w.name }

func (w *fakeWorld) BlockAt(x, y, z int) uint16 {
	return w.blocks[[3]int{x, y, z}]
}

func (w *fakeWorld) SetBlockRaw(x, y, z int, id uint16, meta uint8) {
	w.blocks[[3]int{x, y, z}] = id
}

// fakeEntity — минимальная реализация EntityHandle для тестов обработки
// сущностных обновлений планировщиком.
type fakeEntity struct {
	done         bool
	isPlayer     bool
	currentWorld string
	ticks        int
}

func (e *fakeEntity) Tick(w World) bool {
	e.ticks++
	return e.done
}

func (e *fakeEntity) IsPlayer() bool { return e.isPlayer }

func (e *fakeEntity) CurrentWorldName() string { return e.currentWorld }

func TestMembershipIndex_AddExistsRemove(t *testing.T) {
	m := NewMembershipIndex()
	w := newFakeWorld("a")

	assert.False(t, m.Exists(w, 1, 64, 1), "новая ячейка не должна числиться занятой")

	m.Add(w, 1, 64, 1)
	assert.True(t, m.Exists(w, 1, 64, 1))

	m.Remove(w, 1, 64, 1)
	assert.False(t, m.Exists(w, 1, 64, 1), "после Remove счётчик должен вернуться к 0")
}

func TestMembershipIndex_SaturatesAtMax(t *testing.T) {
	m := NewMembershipIndex()
	w := newFakeWorld("a")

	for i := 0; i < 0xFFFF+10; i++ {
		m.Add(w, 2, 64, 2)
	}

	m.mu.Lock()
	counter := m.worlds[w][chunkKey{0, 0}].subs[4].counts[cellIndex(2, 64, 2)]
	m.mu.Unlock()

	assert.Equal(t, uint16(0xFFFF), counter, "счётчик членства должен насыщаться на 0xFFFF, а не переполняться")
}

func TestMembershipIndex_RemoveFloorsAtZeroWithoutUnderflow(t *testing.T) {
	m := NewMembershipIndex()
	w := newFakeWorld("a")

	// Remove на никогда не добавлявшуюся ячейку не должен underflow'ить
	// uint16-счётчик в 0xFFFF.
	for i := 0; i < 5; i++ {
		m.Remove(w, 3, 64, 3)
	}
	assert.False(t, m.Exists(w, 3, 64, 3), "Remove на пустой ячейке не должен создавать ложное членство")

	m.Add(w, 3, 64, 3)
	m.mu.Lock()
	counter := m.worlds[w][chunkKey{0, 0}].subs[4].counts[cellIndex(3, 64, 3)]
	m.mu.Unlock()
	assert.Equal(t, uint16(1), counter, "счётчик после одного Add должен быть ровно 1, не насыщен предыдущими Remove")
}

func TestMembershipIndex_AddIfAbsentDeduplicates(t *testing.T) {
	m := NewMembershipIndex()
	w := newFakeWorld("a")

	first := m.AddIfAbsent(w, 4, 64, 4)
	assert.True(t, first, "первая постановка должна пройти")

	second := m.AddIfAbsent(w, 4, 64, 4)
	assert.False(t, second, "повторная постановка на живую ячейку должна быть отклонена")

	m.mu.Lock()
	counter := m.worlds[w][chunkKey{0, 0}].subs[4].counts[cellIndex(4, 64, 4)]
	m.mu.Unlock()
	assert.Equal(t, uint16(1), counter, "AddIfAbsent не должен инкрементировать счётчик при отказе")
}

func TestMembershipIndex_OutOfRangeYIgnored(t *testing.T) {
	m := NewMembershipIndex()
	w := newFakeWorld("a")

	assert.False(t, m.Exists(w, 0, -1, 0))
	assert.False(t, m.Exists(w, 0, 256, 0))

	m.Add(w, 0, -1, 0)
	assert.False(t, m.Exists(w, 0, -1, 0), "Add с y вне [0,255] должен быть no-op")

	assert.False(t, m.AddIfAbsent(w, 0, 300, 0))
}
