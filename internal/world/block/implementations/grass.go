package implementations

import (
	"math/rand"

	"github.com/annel0/mmo-game/internal/world/block"
)

// GrassBehavior реализует поведение блока травы. Уровень роста (0-5)
// хранится в нибле метаданных.
type GrassBehavior struct{}

// ID возвращает идентификатор блока
func (b *GrassBehavior) ID() block.BlockID {
	return block.GrassBlockID
}

// Name возвращает имя блока
func (b *GrassBehavior) Name() string {
	return "Grass"
}

// NeedsTick возвращает true, так как трава растет
func (b *GrassBehavior) NeedsTick() bool {
	return true
}

// Tick обновляет состояние травы — постепенный рост и распространение.
func (b *GrassBehavior) Tick(api block.BlockAPI, x, y, z int, extra uint8, rng *rand.Rand) {
	growth := int(extra)

	if growth < 5 && rng.Float32() < 0.1 {
		growth++
		api.SetMeta(x, y, z, uint8(growth))
	}

	if growth >= 3 && rng.Float32() < 0.05 {
		type offset struct{ dx, dz int }
		directions := []offset{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
		d := directions[rng.Intn(len(directions))]
		tx, tz := x+d.dx, z+d.dz

		if api.GetBlock(tx, y, tz) == block.DirtBlockID {
			if moisture := api.GetMeta(tx, y, tz); moisture >= 2 {
				api.SetBlock(tx, y, tz, block.GrassBlockID)
				api.SetMeta(tx, y, tz, 0)
			}
		}
	}
}

// OnPlace инициализирует блок при установке
func (b *GrassBehavior) OnPlace(api block.BlockAPI, x, y, z int) {
	api.SetMeta(x, y, z, 0)
}

// OnBreak вызывается при разрушении блока
func (b *GrassBehavior) OnBreak(api block.BlockAPI, x, y, z int, extra uint8) {}

// HandleInteraction обрабатывает взаимодействие с блоком травы
func (b *GrassBehavior) HandleInteraction(action string, extra uint8, params map[string]interface{}) (block.BlockID, uint8, block.InteractionResult) {
	switch action {
	case "mine", "dig":
		return block.DirtBlockID, 2, block.InteractionResult{
			Success: true,
			Message: "Трава выкопана, обнажилась земля",
			Effects: []string{"particle_grass"},
		}
	case "use":
		if tool, ok := params["tool"].(string); ok && tool == "fertilizer" {
			growth := int(extra)
			if growth < 5 {
				growth++
				return block.GrassBlockID, uint8(growth), block.InteractionResult{
					Success: true,
					Message: "Трава подкормлена и выросла",
					Effects: []string{"particle_fertilizer"},
				}
			}
		}
	}

	return block.GrassBlockID, extra, block.InteractionResult{
		Success: false,
		Message: "Действие не поддерживается для травы",
	}
}

func init() {
	block.Register(block.GrassBlockID, &GrassBehavior{})
}
