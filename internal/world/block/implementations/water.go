package implementations

import (
	"math/rand"

	"github.com/annel0/mmo-game/internal/world/block"
)

// WaterBehavior реализует поведение блока воды. Уровень (0-7) хранится в
// нибле метаданных. Блоки с уровнем 0 не растекаются.
type WaterBehavior struct{}

// ID возвращает идентификатор блока
func (b *WaterBehavior) ID() block.BlockID {
	return block.WaterBlockID
}

// Name возвращает имя блока
func (b *WaterBehavior) Name() string {
	return "Water"
}

// NeedsTick возвращает true, так как вода течет
func (b *WaterBehavior) NeedsTick() bool {
	return true
}

type offset3 struct{ dx, dy, dz int }

var waterSpreadDirections = []offset3{
	{1, 0, 0}, {-1, 0, 0}, {0, 0, 1}, {0, 0, -1}, {0, -1, 0},
}

// Tick обновляет состояние воды — растекание по соседним блокам.
func (b *WaterBehavior) Tick(api block.BlockAPI, x, y, z int, extra uint8, rng *rand.Rand) {
	level := int(extra)
	if level <= 0 {
		return
	}

	for _, d := range waterSpreadDirections {
		tx, ty, tz := x+d.dx, y+d.dy, z+d.dz
		targetID := api.GetBlock(tx, ty, tz)

		if targetID == block.AirBlockID {
			api.SetBlock(tx, ty, tz, block.WaterBlockID)
			api.SetMeta(tx, ty, tz, uint8(level-1))
			api.ScheduleTick(tx, ty, tz)
			continue
		}

		if targetID == block.WaterBlockID {
			targetLevel := int(api.GetMeta(tx, ty, tz))
			if level > targetLevel+1 {
				newLevel := (level + targetLevel) / 2
				api.SetMeta(x, y, z, uint8(newLevel))
				api.SetMeta(tx, ty, tz, uint8(newLevel))
				api.ScheduleTick(tx, ty, tz)
			}
		}
	}

	// Стоячая вода под толщей воды постепенно становится глубокой.
	if level >= 6 && api.GetBlock(x, y+1, z) == block.WaterBlockID && rng.Float32() < 0.02 {
		api.SetBlock(x, y, z, block.DeepWaterBlockID)
		api.SetMeta(x, y, z, 0)
	}
}

// OnPlace инициализирует уровень воды при установке
func (b *WaterBehavior) OnPlace(api block.BlockAPI, x, y, z int) {
	api.SetMeta(x, y, z, 7)
	api.ScheduleTick(x, y, z)
}

// OnBreak вызывается при разрушении блока
func (b *WaterBehavior) OnBreak(api block.BlockAPI, x, y, z int, extra uint8) {}

// HandleInteraction обрабатывает взаимодействие с блоком воды
func (b *WaterBehavior) HandleInteraction(action string, extra uint8, params map[string]interface{}) (block.BlockID, uint8, block.InteractionResult) {
	if action == "use" {
		if tool, ok := params["tool"].(string); ok && tool == "bucket" {
			level := int(extra)
			level -= 3

			if level <= 0 {
				return block.AirBlockID, 0, block.InteractionResult{
					Success: true,
					Message: "Вода собрана в ведро",
					Effects: []string{"particle_splash"},
				}
			}

			return block.WaterBlockID, uint8(level), block.InteractionResult{
				Success: true,
				Message: "Часть воды собрана в ведро",
				Effects: []string{"particle_splash"},
			}
		}
	} else if action == "place" {
		return block.WaterBlockID, extra, block.InteractionResult{
			Success: false,
			Message: "Нельзя поместить этот блок в воду",
		}
	}

	return block.WaterBlockID, extra, block.InteractionResult{
		Success: false,
		Message: "Действие не поддерживается для воды",
	}
}

func init() {
	block.Register(block.WaterBlockID, &WaterBehavior{})
}
