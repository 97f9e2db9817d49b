package world

import (
	"testing"

	"github.com/annel0/mmo-game/internal/world/block"
	// Импортируем реализации блоков для регистрации в init()
	_ "github.com/annel0/mmo-game/internal/world/block/implementations"
)

func TestBlockCreation(t *testing.T) {
	b := NewBlock(block.StoneBlockID)
	if b.ID != block.StoneBlockID {
		t.Errorf("ожидался StoneBlockID, получен %d", b.ID)
	}
	if b.Meta != 0 {
		t.Errorf("ожидался Meta=0 по умолчанию, получен %d", b.Meta)
	}

	behavior, exists := b.GetBehavior()
	if !exists {
		t.Fatal("поведение блока не найдено")
	}
	if behavior.ID() != block.StoneBlockID {
		t.Errorf("ожидался ID блока %d, получен %d", block.StoneBlockID, behavior.ID())
	}
}

func TestBlockNeedsTick(t *testing.T) {
	waterBlock := NewBlock(block.WaterBlockID)
	if !waterBlock.NeedsTick() {
		t.Error("ожидалось, что блок воды требует тиков")
	}

	grassBlock := NewBlock(block.GrassBlockID)
	if !grassBlock.NeedsTick() {
		t.Error("ожидалось, что блок травы требует тиков")
	}

	stoneBlock := NewBlock(block.StoneBlockID)
	if stoneBlock.NeedsTick() {
		t.Error("ожидалось, что блок камня не требует тиков")
	}

	airBlock := NewBlock(block.AirBlockID)
	if airBlock.NeedsTick() {
		t.Error("ожидалось, что блок воздуха не требует тиков")
	}
}
