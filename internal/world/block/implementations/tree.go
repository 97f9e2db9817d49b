package implementations

import (
	"math/rand"

	"github.com/annel0/mmo-game/internal/world/block"
)

// TreeBehavior — упрощённый блок дерева высотой в два блока: ствол на
// (x, y, z), крона на (x, y+1, z).
type TreeBehavior struct{}

func (b *TreeBehavior) ID() block.BlockID { return block.TreeBlockID }
func (b *TreeBehavior) Name() string      { return "Tree" }
func (b *TreeBehavior) NeedsTick() bool   { return false }
func (b *TreeBehavior) Tick(api block.BlockAPI, x, y, z int, extra uint8, rng *rand.Rand) {
}

func (b *TreeBehavior) OnPlace(api block.BlockAPI, x, y, z int) {
	if api.GetBlock(x, y+1, z) != block.AirBlockID {
		return
	}
	api.SetBlock(x, y+1, z, block.TreeBlockID)
}

func (b *TreeBehavior) OnBreak(api block.BlockAPI, x, y, z int, extra uint8) {
	if api.GetBlock(x, y+1, z) == block.TreeBlockID {
		api.SetBlock(x, y+1, z, block.AirBlockID)
	}
}

func (b *TreeBehavior) HandleInteraction(action string, extra uint8, params map[string]interface{}) (block.BlockID, uint8, block.InteractionResult) {
	return block.TreeBlockID, extra, block.InteractionResult{Success: false}
}

func init() { block.Register(block.TreeBlockID, &TreeBehavior{}) }
