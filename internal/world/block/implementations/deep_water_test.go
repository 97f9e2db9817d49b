package implementations

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/annel0/mmo-game/internal/world/block"
)

// coord3 — ключ блочных координат для мока в тестах пакета.
type coord3 struct{ x, y, z int }

// mockBlockAPI реализует block.BlockAPI для тестирования.
type mockBlockAPI struct {
	blocks           map[coord3]block.BlockID
	meta             map[coord3]uint8
	scheduledUpdates map[coord3]bool
}

func newMockBlockAPI() *mockBlockAPI {
	return &mockBlockAPI{
		blocks:           make(map[coord3]block.BlockID),
		meta:             make(map[coord3]uint8),
		scheduledUpdates: make(map[coord3]bool),
	}
}

func (m *mockBlockAPI) GetBlock(x, y, z int) block.BlockID {
	if id, exists := m.blocks[coord3{x, y, z}]; exists {
		return id
	}
	return block.AirBlockID
}

func (m *mockBlockAPI) SetBlock(x, y, z int, id block.BlockID) {
	m.blocks[coord3{x, y, z}] = id
}

func (m *mockBlockAPI) GetMeta(x, y, z int) uint8 {
	return m.meta[coord3{x, y, z}]
}

func (m *mockBlockAPI) SetMeta(x, y, z int, meta uint8) {
	m.meta[coord3{x, y, z}] = meta
}

func (m *mockBlockAPI) ScheduleTick(x, y, z int) {
	m.scheduledUpdates[coord3{x, y, z}] = true
}

func TestDeepWaterBehavior_Tick(t *testing.T) {
	behavior := &DeepWaterBehavior{}
	api := newMockBlockAPI()
	rng := rand.New(rand.NewSource(1))

	// Глубинная вода окружена водой — остается глубинной водой.
	x, y, z := 5, 5, 5
	api.SetBlock(x, y, z, block.DeepWaterBlockID)
	api.SetBlock(x+1, y, z, block.WaterBlockID)
	api.SetBlock(x-1, y, z, block.WaterBlockID)
	api.SetBlock(x, y, z+1, block.WaterBlockID)
	api.SetBlock(x, y, z-1, block.WaterBlockID)
	api.SetBlock(x, y-1, z, block.DeepWaterBlockID)

	behavior.Tick(api, x, y, z, 7, rng)
	assert.Equal(t, block.DeepWaterBlockID, api.GetBlock(x, y, z))

	// Глубинная вода рядом с воздухом превращается в обычную воду.
	x2, y2, z2 := 10, 10, 10
	api.SetBlock(x2, y2, z2, block.DeepWaterBlockID)
	api.SetBlock(x2+1, y2, z2, block.AirBlockID)
	api.SetBlock(x2-1, y2, z2, block.WaterBlockID)
	api.SetBlock(x2, y2, z2+1, block.WaterBlockID)
	api.SetBlock(x2, y2, z2-1, block.WaterBlockID)
	api.SetBlock(x2, y2-1, z2, block.WaterBlockID)

	behavior.Tick(api, x2, y2, z2, 7, rng)
	assert.Equal(t, block.WaterBlockID, api.GetBlock(x2, y2, z2))
	assert.EqualValues(t, 7, api.GetMeta(x2, y2, z2))
}

func TestDeepWaterBehavior_OnBreak(t *testing.T) {
	behavior := &DeepWaterBehavior{}
	api := newMockBlockAPI()

	x, y, z := 5, 5, 5
	behavior.OnBreak(api, x, y, z, 7)

	for _, d := range waterSpreadDirections {
		assert.True(t, api.scheduledUpdates[coord3{x + d.dx, y + d.dy, z + d.dz}],
			"сосед %+v должен быть запланирован для обновления", d)
	}
}

func TestDeepWaterBehavior_Properties(t *testing.T) {
	behavior := &DeepWaterBehavior{}

	assert.Equal(t, block.DeepWaterBlockID, behavior.ID())
	assert.Equal(t, "Deep Water", behavior.Name())
	assert.False(t, behavior.NeedsTick())
	assert.True(t, behavior.IsPassable())
}
