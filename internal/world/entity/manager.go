package entity

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/annel0/mmo-game/internal/vec"
)

// Manager управляет всеми неплеерскими сущностями мира: хранилище, реестр
// поведений по типу, горизонтальное перемещение со скольжением вдоль стен.
type Manager struct {
	entities     map[uint64]*Entity
	behaviors    map[EntityType]EntityBehavior
	nextEntityID uint64
	mu           sync.RWMutex
}

// NewEntityManager создаёт новый менеджер сущностей
func NewEntityManager() *Manager {
	return &Manager{
		entities:     make(map[uint64]*Entity),
		behaviors:    make(map[EntityType]EntityBehavior),
		nextEntityID: 1,
	}
}

// RegisterBehavior регистрирует поведение для типа сущности
func (em *Manager) RegisterBehavior(entityType EntityType, behavior EntityBehavior) {
	em.mu.Lock()
	defer em.mu.Unlock()
	em.behaviors[entityType] = behavior
}

// RegisterDefaultBehaviors регистрирует поведения по умолчанию. Игроков
// планировщик тикает не через Manager.Tick (см. world.Player), но
// PlayerBehavior всё равно регистрируется здесь — это единственный путь,
// которым NPC/другие игроки наносят урон игроку через GetBehavior(EntityTypePlayer).
func (em *Manager) RegisterDefaultBehaviors() {
	em.RegisterBehavior(EntityTypePlayer, NewPlayerBehavior())
	em.RegisterBehavior(EntityTypeNPC, NewNPCBehavior("villager"))
	em.RegisterBehavior(EntityTypeAnimal, NewAnimalBehavior(AnimalTypeCow))
}

// SpawnEntity создаёт новую сущность в мире
func (em *Manager) SpawnEntity(entityType EntityType, pos Pos, api EntityAPI) uint64 {
	em.mu.Lock()
	entityID := atomic.AddUint64(&em.nextEntityID, 1)
	e := NewEntity(entityID, entityType, pos)
	e.mgr = em
	em.entities[entityID] = e
	behavior := em.behaviors[entityType]
	em.mu.Unlock()

	if behavior != nil {
		behavior.OnSpawn(api, e)
	}
	return entityID
}

// SpawnAnimal создаёт новое животное указанного подтипа
func (em *Manager) SpawnAnimal(animalType AnimalType, pos Pos, api EntityAPI) uint64 {
	id := em.SpawnEntity(EntityTypeAnimal, pos, api)
	if e, ok := em.GetEntity(id); ok {
		e.Payload["animalType"] = int(animalType)
	}
	return id
}

// DespawnEntity удаляет сущность из мира
func (em *Manager) DespawnEntity(entityID uint64, api EntityAPI) bool {
	em.mu.Lock()
	e, exists := em.entities[entityID]
	if !exists {
		em.mu.Unlock()
		return false
	}
	behavior := em.behaviors[e.Type]
	delete(em.entities, entityID)
	em.mu.Unlock()

	if behavior != nil {
		behavior.OnDespawn(api, e)
	}
	return true
}

// GetEntity возвращает сущность по ID
func (em *Manager) GetEntity(entityID uint64) (*Entity, bool) {
	em.mu.RLock()
	defer em.mu.RUnlock()
	e, exists := em.entities[entityID]
	return e, exists
}

// AddEntity добавляет уже созданную сущность в менеджер (ID выбран внешним кодом).
func (em *Manager) AddEntity(e *Entity) {
	em.mu.Lock()
	defer em.mu.Unlock()
	e.mgr = em
	em.entities[e.ID] = e
	if e.ID >= em.nextEntityID {
		em.nextEntityID = e.ID + 1
	}
}

// GetEntitiesInRange возвращает активные сущности в радиусе от точки
// (сравнение по горизонтали X/Z, без учёта высоты).
func (em *Manager) GetEntitiesInRange(center vec.Vec3Float, radius float64) []*Entity {
	em.mu.RLock()
	defer em.mu.RUnlock()

	r2 := radius * radius
	var result []*Entity
	for _, e := range em.entities {
		if !e.Active {
			continue
		}
		dx := e.Position.X - center.X
		dz := e.Position.Z - center.Z
		if dx*dx+dz*dz <= r2 {
			result = append(result, e)
		}
	}
	return result
}

// GetBehavior возвращает поведение для типа сущности
func (em *Manager) GetBehavior(entityType EntityType) (EntityBehavior, bool) {
	em.mu.RLock()
	defer em.mu.RUnlock()
	b, exists := em.behaviors[entityType]
	return b, exists
}

// Tick продвигает одну сущность на один тик планировщика. Сам Manager
// physics.EntityHandle не реализует: планировщик тикает мобов через
// world.MobHandle, который вызывает этот метод.
func (em *Manager) Tick(entityID uint64, api EntityAPI) (terminal bool) {
	e, exists := em.GetEntity(entityID)
	if !exists || !e.Active {
		return true
	}
	behavior, exists := em.GetBehavior(e.Type)
	if !exists {
		return true
	}
	return behavior.Update(api, e)
}

// MoveEntity сдвигает сущность по горизонтали (X/Z) на вектор direction *
// скорость поведения, со скольжением вдоль стен по отдельным осям.
func (em *Manager) MoveEntity(e *Entity, direction MovementDirection, moveSpeed float64, api EntityAPI) bool {
	moveDir := vec.Vec3Float{}
	if direction.Up {
		moveDir.Z -= 1
	}
	if direction.Down {
		moveDir.Z += 1
	}
	if direction.Left {
		moveDir.X -= 1
	}
	if direction.Right {
		moveDir.X += 1
	}
	if moveDir.X == 0 && moveDir.Z == 0 {
		return false
	}

	length := math.Hypot(moveDir.X, moveDir.Z)
	moveDir.X, moveDir.Z = moveDir.X/length*moveSpeed, moveDir.Z/length*moveSpeed

	curX, curZ := e.Position.X, e.Position.Z
	newX, newZ := curX+moveDir.X, curZ+moveDir.Z

	collideX := em.checkCollision(e, newX, curZ, api)
	collideZ := em.checkCollision(e, curX, newZ, api)

	if !collideX {
		e.Position.X = newX
	}
	if !collideZ {
		e.Position.Z = newZ
	}
	return !collideX || !collideZ
}

// checkCollision проверяет хитбокс сущности в новой позиции против блоков
// мира на той же высоте и против других активных сущностей.
func (em *Manager) checkCollision(e *Entity, x, z float64, api EntityAPI) bool {
	halfW, halfD := e.Size.X/2, e.Size.Z/2
	y := int(e.Position.Y)

	corners := [4][2]float64{
		{x - halfW, z - halfD}, {x + halfW, z - halfD},
		{x - halfW, z + halfD}, {x + halfW, z + halfD},
	}
	for _, c := range corners {
		pos := vec.Vec3{X: int(c[0]), Y: y, Z: int(c[1])}
		id := api.GetBlock(pos)
		if !isPassableBlockID(id) {
			return true
		}
	}

	em.mu.RLock()
	defer em.mu.RUnlock()
	for _, other := range em.entities {
		if other.ID == e.ID || !other.Active {
			continue
		}
		if rectsOverlap(x, z, e.Size, other.Position.X, other.Position.Z, other.Size) {
			return true
		}
	}
	return false
}

func rectsOverlap(x1, z1 float64, size1 vec.Vec3Float, x2, z2 float64, size2 vec.Vec3Float) bool {
	return x1-size1.X/2 < x2+size2.X/2 &&
		x1+size1.X/2 > x2-size2.X/2 &&
		z1-size1.Z/2 < z2+size2.Z/2 &&
		z1+size1.Z/2 > z2-size2.Z/2
}

// isPassableBlockID — проверка проходимости без обращения к реестру
// поведений блоков (тот живёт в другом пакете); проходим только id 0
// (воздух). checkCollision других проверок блоков не делает.
func isPassableBlockID(id uint16) bool {
	return id == 0
}

// GetStats возвращает статистику по сущностям
func (em *Manager) GetStats() map[string]interface{} {
	em.mu.RLock()
	defer em.mu.RUnlock()

	stats := make(map[string]interface{})
	stats["total_entities"] = len(em.entities)

	active := 0
	byType := make(map[string]int)
	for _, e := range em.entities {
		if e.Active {
			active++
			byType[fmt.Sprintf("type_%d", int(e.Type))]++
		}
	}
	stats["active_entities"] = active
	stats["entity_types"] = byType
	stats["registered_behaviors"] = len(em.behaviors)
	return stats
}
