package world

import (
	"testing"

	"github.com/annel0/mmo-game/internal/vec"
	"github.com/annel0/mmo-game/internal/world/block"
)

func TestChunkCreateAndGetBlock(t *testing.T) {
	pos := vec.ChunkPos{X: 5, Z: 10}
	chunk := NewChunk(pos)

	if chunk.Pos.X != 5 || chunk.Pos.Z != 10 {
		t.Errorf("ожидались координаты {5,10}, получено {%d,%d}", chunk.Pos.X, chunk.Pos.Z)
	}

	id, meta := chunk.GetBlock(3, 64, 4)
	if id != block.AirBlockID || meta != 0 {
		t.Errorf("ожидался пустой блок (Air, meta=0), получено (%d, %d)", id, meta)
	}

	chunk.SetBlock(3, 64, 4, block.StoneBlockID, 0)
	id, _ = chunk.GetBlock(3, 64, 4)
	if id != block.StoneBlockID {
		t.Errorf("ожидался StoneBlockID, получен %d", id)
	}
}

func TestChunkGetBlockOutOfHeightRange(t *testing.T) {
	chunk := NewChunk(vec.ChunkPos{X: 0, Z: 0})

	id, _ := chunk.GetBlock(0, -1, 0)
	if id != block.AirBlockID {
		t.Errorf("ожидался воздух ниже 0 по Y, получен %d", id)
	}

	id, _ = chunk.GetBlock(0, 300, 0)
	if id != block.AirBlockID {
		t.Errorf("ожидался воздух выше диапазона по Y, получен %d", id)
	}
}

func TestChunkSetMeta(t *testing.T) {
	chunk := NewChunk(vec.ChunkPos{X: 0, Z: 0})
	chunk.SetBlock(1, 1, 1, block.WaterBlockID, 7)

	chunk.SetMeta(1, 1, 1, 3)
	id, meta := chunk.GetBlock(1, 1, 1)
	if id != block.WaterBlockID {
		t.Errorf("SetMeta не должен менять id блока, получен %d", id)
	}
	if meta != 3 {
		t.Errorf("ожидалась meta=3, получено %d", meta)
	}
}

func TestChunkChangeCounter(t *testing.T) {
	chunk := NewChunk(vec.ChunkPos{X: 3, Z: 4})

	if chunk.ChangeCounter() != 0 {
		t.Error("новый чанк не должен иметь изменений")
	}

	chunk.SetBlock(1, 2, 1, block.StoneBlockID, 0)
	if chunk.ChangeCounter() != 1 {
		t.Errorf("ожидался счётчик изменений 1, получено %d", chunk.ChangeCounter())
	}

	chunk.SetBlock(1, 2, 1, block.DirtBlockID, 0)
	if chunk.ChangeCounter() != 2 {
		t.Errorf("ожидался счётчик изменений 2, получено %d", chunk.ChangeCounter())
	}
}

func TestChunkEntityRoster(t *testing.T) {
	chunk := NewChunk(vec.ChunkPos{X: 0, Z: 0})

	chunk.AddEntity(1)
	chunk.AddEntity(2)
	if len(chunk.Entities()) != 2 {
		t.Errorf("ожидалось 2 сущности в ростере, получено %d", len(chunk.Entities()))
	}

	chunk.RemoveEntity(1)
	entities := chunk.Entities()
	if len(entities) != 1 || entities[0] != 2 {
		t.Errorf("ожидалась только сущность 2 в ростере, получено %v", entities)
	}
}
