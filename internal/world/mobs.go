package world

import (
	"github.com/annel0/mmo-game/internal/physics"
	"github.com/annel0/mmo-game/internal/vec"
	"github.com/annel0/mmo-game/internal/world/block"
	"github.com/annel0/mmo-game/internal/world/entity"
)

// worldEntityAPI реализует entity.EntityAPI поверх WorldMap/Scheduler — так
// NPC/животные видят ровно ту же карту блоков, что и игроки, без отдельного
// пути чтения/записи.
type worldEntityAPI struct {
	w *World
}

func (a worldEntityAPI) GetBlock(pos vec.Vec3) uint16 {
	id, _ := a.w.theMap.GetBlock(pos.X, pos.Y, pos.Z)
	return uint16(id)
}

func (a worldEntityAPI) SetBlock(pos vec.Vec3, id uint16, meta uint8) {
	a.w.theMap.QueueUpdate(pos.X, pos.Y, pos.Z, block.BlockID(id), meta)
}

func (a worldEntityAPI) GetEntitiesInRange(center vec.Vec3Float, radius float64) []*entity.Entity {
	return a.w.mobs.GetEntitiesInRange(center, radius)
}

func (a worldEntityAPI) SpawnEntity(entityType entity.EntityType, pos entity.Pos) uint64 {
	return a.w.mobs.SpawnEntity(entityType, pos, a)
}

func (a worldEntityAPI) DespawnEntity(entityID uint64) {
	a.w.mobs.DespawnEntity(entityID, a)
}

func (a worldEntityAPI) MoveEntity(e *entity.Entity, direction entity.MovementDirection) bool {
	behavior, ok := a.w.mobs.GetBehavior(e.Type)
	if !ok {
		return false
	}
	return a.w.mobs.MoveEntity(e, direction, behavior.GetMoveSpeed(), a)
}

func (a worldEntityAPI) SendMessage(entityID uint64, messageType string, data interface{}) {
	// Доставка внешним клиентам — забота Transmitter-а игрока, получающего
	// сообщение; этому ядру не нужен отдельный канал для NPC-чата.
}

// MobHandle адаптирует один NPC/животное из entity.Manager к
// physics.EntityHandle, так что планировщик тикает мобов тем же циклом, что
// и игроков, не зная об entity.Manager вовсе.
type MobHandle struct {
	world    *World
	entityID uint64
}

func (h MobHandle) Tick(w physics.World) bool {
	return h.world.mobs.Tick(h.entityID, h.world.entityAPI())
}

func (h MobHandle) IsPlayer() bool { return false }

func (h MobHandle) CurrentWorldName() string { return h.world.Name() }

// SpawnMob создаёт сущность через entity.Manager и сразу ставит её в
// планировщик физики как персистентную сущность (тикается, пока поведение
// не вернёт true).
func (w *World) SpawnMob(entityType entity.EntityType, pos entity.Pos) uint64 {
	id := w.entityAPI().SpawnEntity(entityType, pos)
	w.scheduler.QueueEntity(w, MobHandle{world: w, entityID: id}, true, 1)
	return id
}

func (w *World) entityAPI() worldEntityAPI { return worldEntityAPI{w: w} }
