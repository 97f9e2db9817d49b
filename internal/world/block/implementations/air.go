package implementations

import (
	"math/rand"

	"github.com/annel0/mmo-game/internal/world/block"
)

// AirBehavior реализует поведение пустого блока (воздуха)
type AirBehavior struct{}

// ID возвращает идентификатор блока
func (b *AirBehavior) ID() block.BlockID {
	return block.AirBlockID
}

// Name возвращает имя блока
func (b *AirBehavior) Name() string {
	return "Air"
}

// NeedsTick возвращает false, воздух статичен
func (b *AirBehavior) NeedsTick() bool {
	return false
}

// Tick ничего не делает для воздуха
func (b *AirBehavior) Tick(api block.BlockAPI, x, y, z int, extra uint8, rng *rand.Rand) {}

// OnPlace вызывается при установке блока
func (b *AirBehavior) OnPlace(api block.BlockAPI, x, y, z int) {}

// OnBreak вызывается при разрушении блока
func (b *AirBehavior) OnBreak(api block.BlockAPI, x, y, z int, extra uint8) {}

// HandleInteraction обрабатывает взаимодействие с блоком воздуха
func (b *AirBehavior) HandleInteraction(action string, extra uint8, params map[string]interface{}) (block.BlockID, uint8, block.InteractionResult) {
	if action == "place" {
		if blockID, ok := params["block_id"].(float64); ok {
			newBlockID := block.BlockID(uint16(blockID))
			if _, exists := block.Get(newBlockID); exists {
				return newBlockID, 0, block.InteractionResult{
					Success: true,
					Message: "Блок установлен",
				}
			}
		}
	}

	return block.AirBlockID, extra, block.InteractionResult{
		Success: false,
		Message: "Нельзя взаимодействовать с воздухом",
	}
}

func init() {
	block.Register(block.AirBlockID, &AirBehavior{})
}
