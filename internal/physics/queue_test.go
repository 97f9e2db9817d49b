package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateQueue_FIFOOrder(t *testing.T) {
	q := newUpdateQueue()
	q.Push(Update{X: 1})
	q.Push(Update{X: 2})
	q.Push(Update{X: 3})

	first, ok := q.TryPop()
	assert.True(t, ok)
	assert.Equal(t, 1, first.X)

	second, ok := q.TryPop()
	assert.True(t, ok)
	assert.Equal(t, 2, second.X)

	third, ok := q.TryPop()
	assert.True(t, ok)
	assert.Equal(t, 3, third.X)
}

func TestUpdateQueue_EmptyReturnsFalse(t *testing.T) {
	q := newUpdateQueue()
	_, ok := q.TryPop()
	assert.False(t, ok, "TryPop на пустой очереди должен возвращать false, а не паниковать")
}

func TestUpdateQueue_LenTracksPendingCount(t *testing.T) {
	q := newUpdateQueue()
	assert.Equal(t, 0, q.Len())

	q.Push(Update{X: 1})
	q.Push(Update{X: 2})
	assert.Equal(t, 2, q.Len())

	_, _ = q.TryPop()
	assert.Equal(t, 1, q.Len())
}

func TestUpdateQueue_DrainResetsSlice(t *testing.T) {
	q := newUpdateQueue()
	q.Push(Update{X: 1})
	_, ok := q.TryPop()
	assert.True(t, ok)

	// После того как голова догоняет хвост, TryPop должен полностью
	// сбросить слайс, а не бесконечно копить пустые записи.
	_, ok = q.TryPop()
	assert.False(t, ok)
	assert.Equal(t, 0, len(q.items))
	assert.Equal(t, 0, q.head)
}

func TestUpdateQueue_CompactsAfterThreshold(t *testing.T) {
	q := newUpdateQueue()
	const total = 2000
	for i := 0; i < total; i++ {
		q.Push(Update{X: i})
	}

	const popped = 1025 // head(1025) > 1024 и 1025*2 > 2000 — условие уплотнения
	for i := 0; i < popped; i++ {
		u, ok := q.TryPop()
		assert.True(t, ok)
		assert.Equal(t, i, u.X, "уплотнение не должно переупорядочивать оставшиеся элементы")
	}

	assert.Equal(t, 0, q.head, "после уплотнения голова должна быть сброшена в 0")
	assert.Equal(t, total-popped, q.Len())

	next, ok := q.TryPop()
	assert.True(t, ok)
	assert.Equal(t, popped, next.X, "после уплотнения порядок оставшихся элементов должен сохраниться")
}
