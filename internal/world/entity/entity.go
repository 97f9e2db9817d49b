package entity

import (
	"github.com/annel0/mmo-game/internal/vec"
)

// EntityType представляет тип сущности
type EntityType uint16

const (
	EntityTypePlayer EntityType = iota
	EntityTypeNPC
	EntityTypeMonster
	EntityTypeItem
	EntityTypeProjectile
	EntityTypeAnimal
	EntityTypeVehicle
)

// AnimalType представляет подтипы животных
type AnimalType uint8

const (
	AnimalTypeCow AnimalType = iota
	AnimalTypeSheep
	AnimalTypeChicken
	AnimalTypePig
	AnimalTypeHorse
)

// MovementDirection представляет направление движения, отправляемое клиентом
type MovementDirection struct {
	Up    bool
	Right bool
	Down  bool
	Left  bool
}

// Pos описывает позицию сущности с double-точностью координат и
// 32-битными углами обзора, как того требует сетевой протокол.
type Pos struct {
	X, Y, Z  float64
	Yaw      float32
	Pitch    float32
	OnGround bool
}

// ChunkCoords возвращает координаты чанка, в котором сейчас находится позиция.
func (p Pos) ChunkCoords() vec.Vec2 {
	return vec.Vec2{X: int(p.X) >> 4, Y: int(p.Z) >> 4}
}

// Vec3 возвращает положение с округлением до целого блока.
func (p Pos) Vec3() vec.Vec3 {
	return vec.Vec3{X: int(p.X), Y: int(p.Y), Z: int(p.Z)}
}

// Vec3Float возвращает положение без округления, для радиусных запросов.
func (p Pos) Vec3Float() vec.Vec3Float {
	return vec.Vec3Float{X: p.X, Y: p.Y, Z: p.Z}
}

// SameBlock сообщает, изменилась ли позиция настолько, чтобы считаться
// другим блоком (используется для экономии сетевых пакетов).
func (p Pos) SameBlock(other Pos) bool {
	return int(p.X) == int(other.X) && int(p.Y) == int(other.Y) && int(p.Z) == int(other.Z)
}

// Entity представляет базовую сущность в мире.
type Entity struct {
	ID        uint64
	Type      EntityType
	Position  Pos
	Velocity  vec.Vec3Float
	Size      vec.Vec3Float
	Payload   map[string]interface{}
	Active    bool
	Direction MovementDirection

	// World — имя мира, к которому сейчас привязана сущность.
	// Ядро это поле не заполняет и не читает: "устаревший" тик игрока
	// планировщик распознаёт через physics.EntityHandle.CurrentWorldName.
	World string

	mgr *Manager
}

// NewEntity создаёт новую сущность
func NewEntity(id uint64, entityType EntityType, pos Pos) *Entity {
	return &Entity{
		ID:       id,
		Type:     entityType,
		Position: pos,
		Velocity: vec.Vec3Float{},
		Size:     vec.Vec3Float{X: 0.6, Y: 1.8, Z: 0.6},
		Payload:  make(map[string]interface{}),
		Active:   true,
	}
}

// EntityBehavior определяет поведение сущности по типу.
type EntityBehavior interface {
	// Update продвигает логику сущности на один тик. Возвращает true, если
	// сущность достигла терминального состояния и может быть исключена из
	// планировщика (см. physics.EntityHandle).
	Update(api EntityAPI, entity *Entity) bool

	OnSpawn(api EntityAPI, entity *Entity)
	OnDespawn(api EntityAPI, entity *Entity)
	OnDamage(api EntityAPI, entity *Entity, damage int, source interface{}) bool
	OnCollision(api EntityAPI, entity *Entity, other interface{}, collisionPoint vec.Vec3Float)
	GetMoveSpeed() float64
}

// EntityAPI предоставляет интерфейс для взаимодействия сущностей с миром.
type EntityAPI interface {
	GetBlock(pos vec.Vec3) uint16
	SetBlock(pos vec.Vec3, id uint16, meta uint8)

	GetEntitiesInRange(center vec.Vec3Float, radius float64) []*Entity
	SpawnEntity(entityType EntityType, pos Pos) uint64
	DespawnEntity(entityID uint64)

	MoveEntity(entity *Entity, direction MovementDirection) bool
	SendMessage(entityID uint64, messageType string, data interface{})
}
