package world

import (
	"github.com/annel0/mmo-game/internal/world/block"
)

// Block — блок в игровом мире: тип плюс meta-нибл (см. §3 "Block").
type Block struct {
	ID   block.BlockID
	Meta uint8
}

// NewBlock создаёт блок с нулевой meta.
func NewBlock(id block.BlockID) Block {
	return Block{ID: id}
}

// GetBehavior возвращает поведение для блока.
func (b Block) GetBehavior() (block.BlockBehavior, bool) {
	return block.Get(b.ID)
}

// NeedsTick возвращает true, если блок требует обновления в тиках.
func (b Block) NeedsTick() bool {
	behavior, exists := b.GetBehavior()
	if !exists {
		return false
	}
	return behavior.NeedsTick()
}
