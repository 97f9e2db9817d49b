package implementations

import (
	"math/rand"

	"github.com/annel0/mmo-game/internal/world/block"
)

// DeepWaterBehavior реализует поведение блока глубинной воды. Глубинная
// вода статична и не распространяется, но превращается в обычную воду,
// если теряет соседство с водой — проверка идет только по запросу
// (ScheduleTick), не на каждый тик планировщика.
type DeepWaterBehavior struct{}

// ID возвращает идентификатор блока
func (b *DeepWaterBehavior) ID() block.BlockID {
	return block.DeepWaterBlockID
}

// Name возвращает имя блока
func (b *DeepWaterBehavior) Name() string {
	return "Deep Water"
}

// NeedsTick возвращает false — глубинная вода тикает только по запросу
// соседних блоков через ScheduleTick, не на каждом проходе планировщика.
func (b *DeepWaterBehavior) NeedsTick() bool {
	return false
}

// Tick вызывается только через ScheduleTick при изменении соседних блоков.
func (b *DeepWaterBehavior) Tick(api block.BlockAPI, x, y, z int, extra uint8, rng *rand.Rand) {
	for _, d := range waterSpreadDirections {
		neighborID := api.GetBlock(x+d.dx, y+d.dy, z+d.dz)
		if neighborID != block.WaterBlockID && neighborID != block.DeepWaterBlockID {
			api.SetBlock(x, y, z, block.WaterBlockID)
			api.SetMeta(x, y, z, 7)
			return
		}
	}
}

// OnPlace вызывается при установке блока
func (b *DeepWaterBehavior) OnPlace(api block.BlockAPI, x, y, z int) {
	api.SetMeta(x, y, z, 7)
}

// OnBreak запускает проверку соседних блоков — без глубинной воды рядом они
// могут больше не иметь оснований оставаться глубинной водой.
func (b *DeepWaterBehavior) OnBreak(api block.BlockAPI, x, y, z int, extra uint8) {
	for _, d := range waterSpreadDirections {
		api.ScheduleTick(x+d.dx, y+d.dy, z+d.dz)
	}
}

// IsPassable возвращает true — игрок может перемещаться в глубинной воде
// (плавать). Не часть BlockBehavior: вызывающий код приводит поведение к
// этому интерфейсу через type assertion там, где проходимость важна.
func (b *DeepWaterBehavior) IsPassable() bool {
	return true
}

// HandleInteraction обрабатывает взаимодействие с блоком глубинной воды
func (b *DeepWaterBehavior) HandleInteraction(action string, extra uint8, params map[string]interface{}) (block.BlockID, uint8, block.InteractionResult) {
	return block.DeepWaterBlockID, extra, block.InteractionResult{
		Success: false,
		Message: "Глубинная вода не поддерживает взаимодействие",
	}
}

func init() {
	block.Register(block.DeepWaterBlockID, &DeepWaterBehavior{})
}
