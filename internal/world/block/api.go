package block

// BlockAPI определяет интерфейс для взаимодействия поведений блоков с миром.
// Координаты — абсолютные блочные координаты мира (x, y — высота, z).
// Metadata — 4-битный нибл (0-15), как того требует модель блока; поведения,
// которым нужно больше состояния, используют отдельный id блока
// (см. DeepWaterBlockID как отдельный от WaterBlockID идентификатор).
type BlockAPI interface {
	GetBlock(x, y, z int) BlockID
	SetBlock(x, y, z int, id BlockID)
	GetMeta(x, y, z int) uint8
	SetMeta(x, y, z int, meta uint8)

	// ScheduleTick просит планировщик физики разово протикать блок на
	// (x, y, z) скоро (эквивалент queue_block_once из планировщика).
	ScheduleTick(x, y, z int)
}
