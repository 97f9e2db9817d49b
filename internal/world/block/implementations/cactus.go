package implementations

import (
	"math/rand"

	"github.com/annel0/mmo-game/internal/world/block"
)

// CactusBehavior описывает блок кактуса высотой в два блока: ствол на
// (x, y, z) и верхушка на (x, y+1, z). Установка верхушки отклоняется,
// если место над стволом занято.
type CactusBehavior struct{}

func (b *CactusBehavior) ID() block.BlockID { return block.CactusBlockID }
func (b *CactusBehavior) Name() string      { return "Cactus" }

func (b *CactusBehavior) NeedsTick() bool { return false }
func (b *CactusBehavior) Tick(api block.BlockAPI, x, y, z int, extra uint8, rng *rand.Rand) {
}

func (b *CactusBehavior) OnPlace(api block.BlockAPI, x, y, z int) {
	if api.GetBlock(x, y+1, z) != block.AirBlockID {
		return
	}
	api.SetBlock(x, y+1, z, block.CactusBlockID)
}

func (b *CactusBehavior) OnBreak(api block.BlockAPI, x, y, z int, extra uint8) {
	if api.GetBlock(x, y+1, z) == block.CactusBlockID {
		api.SetBlock(x, y+1, z, block.AirBlockID)
	}
}

// HandleInteraction не меняет блок и возвращает неуспех: сбор кактуса не поддерживается
func (b *CactusBehavior) HandleInteraction(action string, extra uint8, params map[string]interface{}) (block.BlockID, uint8, block.InteractionResult) {
	return block.CactusBlockID, extra, block.InteractionResult{Success: false}
}

func init() {
	block.Register(block.CactusBlockID, &CactusBehavior{})
}
