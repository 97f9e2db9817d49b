package implementations

import (
	"math/rand"

	"github.com/annel0/mmo-game/internal/world/block"
)

// DirtBehavior реализует поведение блока земли/грязи. Влажность (0-10)
// хранится в нибле метаданных.
type DirtBehavior struct{}

// ID возвращает идентификатор блока
func (b *DirtBehavior) ID() block.BlockID {
	return block.DirtBlockID
}

// Name возвращает имя блока
func (b *DirtBehavior) Name() string {
	return "Dirt"
}

// NeedsTick возвращает false, земля статична
func (b *DirtBehavior) NeedsTick() bool {
	return false
}

// Tick ничего не делает для земли
func (b *DirtBehavior) Tick(api block.BlockAPI, x, y, z int, extra uint8, rng *rand.Rand) {}

// OnPlace инициализирует влажность земли при установке
func (b *DirtBehavior) OnPlace(api block.BlockAPI, x, y, z int) {
	api.SetMeta(x, y, z, 0)
}

// OnBreak вызывается при разрушении блока
func (b *DirtBehavior) OnBreak(api block.BlockAPI, x, y, z int, extra uint8) {}

// HandleInteraction обрабатывает взаимодействие с блоком земли
func (b *DirtBehavior) HandleInteraction(action string, extra uint8, params map[string]interface{}) (block.BlockID, uint8, block.InteractionResult) {
	if action == "use" {
		if tool, ok := params["tool"].(string); ok {
			switch tool {
			case "seed":
				return block.GrassBlockID, 0, block.InteractionResult{
					Success: true,
					Message: "Земля засеяна травой",
				}
			case "water":
				moisture := int(extra)
				if moisture < 10 {
					moisture += 2
					if moisture > 10 {
						moisture = 10
					}
				}
				return block.DirtBlockID, uint8(moisture), block.InteractionResult{
					Success: true,
					Message: "Земля увлажнена",
				}
			}
		}
	}

	return block.DirtBlockID, extra, block.InteractionResult{
		Success: false,
		Message: "Действие не поддерживается для земли",
	}
}

func init() {
	block.Register(block.DirtBlockID, &DirtBehavior{})
}
