package implementations

import (
	"math/rand"

	"github.com/annel0/mmo-game/internal/world/block"
)

// StoneBehavior реализует поведение блока камня. Прочность хранится прямо
// в 4-битном нибле метаданных блока (10 из возможных 0-15).
type StoneBehavior struct{}

// ID возвращает идентификатор блока
func (b *StoneBehavior) ID() block.BlockID {
	return block.StoneBlockID
}

// Name возвращает имя блока
func (b *StoneBehavior) Name() string {
	return "Stone"
}

// NeedsTick возвращает false, камень статичен
func (b *StoneBehavior) NeedsTick() bool {
	return false
}

// Tick ничего не делает для камня
func (b *StoneBehavior) Tick(api block.BlockAPI, x, y, z int, extra uint8, rng *rand.Rand) {}

// OnPlace инициализирует прочность камня при установке
func (b *StoneBehavior) OnPlace(api block.BlockAPI, x, y, z int) {
	api.SetMeta(x, y, z, 10)
}

// OnBreak вызывается при разрушении блока
func (b *StoneBehavior) OnBreak(api block.BlockAPI, x, y, z int, extra uint8) {}

// HandleInteraction обрабатывает взаимодействие с блоком камня
func (b *StoneBehavior) HandleInteraction(action string, extra uint8, params map[string]interface{}) (block.BlockID, uint8, block.InteractionResult) {
	if action == "mine" {
		hardness := int(extra)
		if hardness == 0 {
			hardness = 10
		}

		strength := 1
		if s, ok := params["strength"].(float64); ok {
			strength = int(s)
		}

		hardness -= strength
		if hardness <= 0 {
			return block.AirBlockID, 0, block.InteractionResult{
				Success: true,
				Message: "Камень разрушен",
				Effects: []string{"particle_break"},
			}
		}

		return block.StoneBlockID, uint8(hardness), block.InteractionResult{
			Success: true,
			Message: "Камень поврежден",
			Effects: []string{"particle_hit"},
		}
	}

	return block.StoneBlockID, extra, block.InteractionResult{
		Success: false,
		Message: "Действие не поддерживается для камня",
	}
}

func init() {
	block.Register(block.StoneBlockID, &StoneBehavior{})
}
