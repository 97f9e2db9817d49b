package block

import "math/rand"

// InteractionResult представляет результат взаимодействия с блоком
type InteractionResult struct {
	Success bool     // Успешно ли выполнено взаимодействие
	Message string   // Сообщение о результате взаимодействия
	Effects []string // Эффекты взаимодействия (опционально)
}

// BlockBehavior определяет поведение блока. Tick реализует контракт
// tick(world, x, y, z, extra, rng) планировщика физики: extra — 4-битные
// метаданные блока на момент обновления, rng — генератор планировщика,
// общий на воркер, а не на блок.
type BlockBehavior interface {
	ID() BlockID
	Name() string
	NeedsTick() bool
	Tick(api BlockAPI, x, y, z int, extra uint8, rng *rand.Rand)
	OnPlace(api BlockAPI, x, y, z int)
	OnBreak(api BlockAPI, x, y, z int, extra uint8)
	// HandleInteraction обрабатывает игровое взаимодействие (копка, установка,
	// использование предмета) и возвращает итоговый блок/метаданные — вызывающий
	// код (world) сам применяет результат через SetBlock/SetMeta.
	HandleInteraction(action string, extra uint8, params map[string]interface{}) (BlockID, uint8, InteractionResult)
}
