package entity

import (
	"math"
	"math/rand"
	"time"

	"github.com/annel0/mmo-game/internal/vec"
)

// NPCBehavior определяет поведение NPC
type NPCBehavior struct {
	baseSpeed       float64
	maxHealth       int
	detectionRadius float64
	wanderRadius    float64
	idleTimeRange   [2]float64 // Мин/макс время простоя
	moveTimeRange   [2]float64 // Мин/макс время движения
	npcType         string     // Тип NPC (например, "villager", "trader", "guard")
}

// NewNPCBehavior создает новое поведение NPC
func NewNPCBehavior(npcType string) *NPCBehavior {
	behavior := &NPCBehavior{
		baseSpeed:       3.0,
		maxHealth:       50,
		detectionRadius: 8.0,
		wanderRadius:    10.0,
		idleTimeRange:   [2]float64{1.0, 5.0},
		moveTimeRange:   [2]float64{1.0, 3.0},
		npcType:         npcType,
	}

	switch npcType {
	case "villager":
		behavior.baseSpeed = 2.0
		behavior.wanderRadius = 8.0
	case "trader":
		behavior.baseSpeed = 1.5
		behavior.wanderRadius = 3.0
		behavior.idleTimeRange = [2]float64{3.0, 10.0}
	case "guard":
		behavior.baseSpeed = 4.0
		behavior.detectionRadius = 12.0
		behavior.wanderRadius = 15.0
	}

	return behavior
}

// Update продвигает состояние NPC на один тик планировщика.
func (nb *NPCBehavior) Update(api EntityAPI, entity *Entity) bool {
	dt := physicsTickSeconds

	if entity.Payload["actionTimer"] == nil {
		entity.Payload["actionTimer"] = 0.0
		entity.Payload["state"] = "idle"
		entity.Payload["homePosition"] = entity.Position
		entity.Payload["targetPosition"] = entity.Position
		entity.Payload["randomSeed"] = time.Now().UnixNano()
	}

	state := entity.Payload["state"].(string)
	actionTimer := entity.Payload["actionTimer"].(float64) - dt

	if actionTimer <= 0 {
		switch state {
		case "idle":
			entity.Payload["state"] = "moving"
			entity.Payload["actionTimer"] = nb.getRandomInRange(nb.moveTimeRange)

			homePos, ok := entity.Payload["homePosition"].(Pos)
			if !ok {
				homePos = entity.Position
				entity.Payload["homePosition"] = homePos
			}

			entity.Payload["targetPosition"] = nb.getRandomPositionInRadius(homePos, nb.wanderRadius)
		case "moving":
			entity.Payload["state"] = "idle"
			entity.Payload["actionTimer"] = nb.getRandomInRange(nb.idleTimeRange)
		case "following":
			playerFound := false
			players := api.GetEntitiesInRange(entity.Position.Vec3Float(), nb.detectionRadius)
			for _, potentialTarget := range players {
				if potentialTarget.Type == EntityTypePlayer {
					entity.Payload["targetEntityID"] = potentialTarget.ID
					entity.Payload["actionTimer"] = 0.5
					playerFound = true
					break
				}
			}

			if !playerFound {
				entity.Payload["state"] = "idle"
				entity.Payload["actionTimer"] = nb.getRandomInRange(nb.idleTimeRange)
			}
		}
	} else {
		entity.Payload["actionTimer"] = actionTimer

		switch state {
		case "idle":
			entity.Velocity = vec.Vec3Float{}
		case "moving":
			targetPos, ok := entity.Payload["targetPosition"].(Pos)
			if !ok {
				break
			}

			direction := directionTo(entity.Position, targetPos)
			if horizontalDistance(entity.Position, targetPos) < 0.5 {
				entity.Payload["state"] = "idle"
				entity.Payload["actionTimer"] = nb.getRandomInRange(nb.idleTimeRange)
				entity.Velocity = vec.Vec3Float{}
			} else {
				entity.Velocity = vec.Vec3Float{X: direction.X * nb.baseSpeed, Z: direction.Z * nb.baseSpeed}
				entity.Direction = directionToMovement(direction)
				entity.Position.X += entity.Velocity.X * dt
				entity.Position.Z += entity.Velocity.Z * dt
			}
		case "following":
			targetID, ok := entity.Payload["targetEntityID"].(uint64)
			if !ok {
				break
			}

			targetEntity, exists := getEntityByID(api, targetID)
			if !exists {
				entity.Payload["state"] = "idle"
				entity.Payload["actionTimer"] = nb.getRandomInRange(nb.idleTimeRange)
				break
			}

			direction := directionTo(entity.Position, targetEntity.Position)
			distance := horizontalDistance(entity.Position, targetEntity.Position)
			if distance < 2.0 {
				entity.Velocity = vec.Vec3Float{}
				entity.Direction = directionToMovement(direction)

				switch nb.npcType {
				case "trader":
					if rand.Float64() < 0.01 {
						api.SendMessage(targetID, "trade_offer", entity.ID)
					}
				case "guard":
					// решение об атаке пока не реализовано
				}
			} else {
				entity.Velocity = vec.Vec3Float{X: direction.X * nb.baseSpeed, Z: direction.Z * nb.baseSpeed}
				entity.Direction = directionToMovement(direction)
				entity.Position.X += entity.Velocity.X * dt
				entity.Position.Z += entity.Velocity.Z * dt
			}
		}
	}

	if nb.npcType == "guard" || nb.npcType == "trader" {
		if state != "following" {
			players := api.GetEntitiesInRange(entity.Position.Vec3Float(), nb.detectionRadius)
			for _, potentialTarget := range players {
				if potentialTarget.Type == EntityTypePlayer {
					entity.Payload["state"] = "following"
					entity.Payload["targetEntityID"] = potentialTarget.ID
					entity.Payload["actionTimer"] = 0.5
					break
				}
			}
		}
	}

	return false
}

// OnSpawn вызывается при создании NPC
func (nb *NPCBehavior) OnSpawn(api EntityAPI, entity *Entity) {
	entity.Payload["health"] = nb.maxHealth
	entity.Payload["npcType"] = nb.npcType
	entity.Payload["state"] = "idle"
	entity.Payload["actionTimer"] = nb.getRandomInRange(nb.idleTimeRange)
	entity.Payload["homePosition"] = entity.Position
	entity.Payload["randomSeed"] = time.Now().UnixNano()

	switch nb.npcType {
	case "trader":
		entity.Payload["inventory"] = makeTraderInventory()
		entity.Payload["prices"] = makeTraderPrices()
	case "guard":
		entity.Payload["weapon"] = "sword"
		entity.Payload["armor"] = 5
	}
}

// OnDespawn вызывается при удалении NPC
func (nb *NPCBehavior) OnDespawn(api EntityAPI, entity *Entity) {}

// OnDamage вызывается при получении урона
func (nb *NPCBehavior) OnDamage(api EntityAPI, entity *Entity, damage int, source interface{}) bool {
	health, ok := entity.Payload["health"].(int)
	if !ok {
		return false
	}
	newHealth := health - damage
	if newHealth <= 0 {
		entity.Payload["health"] = 0
		return true
	}
	entity.Payload["health"] = newHealth

	switch nb.npcType {
	case "villager":
		entity.Payload["state"] = "fleeing"
		entity.Payload["actionTimer"] = 5.0

		if sourceEntity, ok := source.(*Entity); ok {
			fleeDir := directionTo(sourceEntity.Position, entity.Position)
			entity.Payload["targetPosition"] = Pos{
				X: entity.Position.X + fleeDir.X*nb.wanderRadius,
				Y: entity.Position.Y,
				Z: entity.Position.Z + fleeDir.Z*nb.wanderRadius,
			}
		}
	case "guard":
		if sourceEntity, ok := source.(*Entity); ok {
			entity.Payload["state"] = "attacking"
			entity.Payload["targetEntityID"] = sourceEntity.ID
			entity.Payload["actionTimer"] = 10.0
		}
	}
	return false
}

// OnCollision вызывается при столкновении с другим объектом
func (nb *NPCBehavior) OnCollision(api EntityAPI, entity *Entity, other interface{}, collisionPoint vec.Vec3Float) {
	if entity.Payload["state"] == "moving" {
		entity.Payload["state"] = "idle"
		entity.Payload["actionTimer"] = nb.getRandomInRange(nb.idleTimeRange)
	}
}

// GetMoveSpeed возвращает скорость движения NPC
func (nb *NPCBehavior) GetMoveSpeed() float64 {
	return nb.baseSpeed
}

func (nb *NPCBehavior) getRandomInRange(r [2]float64) float64 {
	return r[0] + rand.Float64()*(r[1]-r[0])
}

// getRandomPositionInRadius возвращает случайную позицию в указанном радиусе от центра
func (nb *NPCBehavior) getRandomPositionInRadius(center Pos, radius float64) Pos {
	angle := rand.Float64() * 2 * math.Pi
	distance := radius * math.Sqrt(rand.Float64())

	return Pos{
		X: center.X + distance*math.Cos(angle),
		Y: center.Y,
		Z: center.Z + distance*math.Sin(angle),
	}
}

// getEntityByID получает сущность по ID через API
func getEntityByID(api EntityAPI, entityID uint64) (*Entity, bool) {
	entities := api.GetEntitiesInRange(vec.Vec3Float{}, 100000.0)
	for _, entity := range entities {
		if entity.ID == entityID {
			return entity, true
		}
	}
	return nil, false
}

// directionTo возвращает нормированное направление от from к to в плоскости X/Z.
func directionTo(from, to Pos) vec.Vec3Float {
	dx, dz := to.X-from.X, to.Z-from.Z
	length := math.Hypot(dx, dz)
	if length == 0 {
		return vec.Vec3Float{}
	}
	return vec.Vec3Float{X: dx / length, Z: dz / length}
}

// horizontalDistance возвращает расстояние между позициями в плоскости X/Z.
func horizontalDistance(a, b Pos) float64 {
	return math.Hypot(a.X-b.X, a.Z-b.Z)
}

// directionToMovement переводит вектор направления в одно из 4 направлений обзора.
func directionToMovement(direction vec.Vec3Float) MovementDirection {
	if math.Abs(direction.X) > math.Abs(direction.Z) {
		if direction.X > 0 {
			return MovementDirection{Right: true}
		}
		return MovementDirection{Left: true}
	}
	if direction.Z > 0 {
		return MovementDirection{Down: true}
	}
	return MovementDirection{Up: true}
}

// makeTraderInventory создает инвентарь торговца
func makeTraderInventory() map[string]int {
	return map[string]int{
		"potion":   10,
		"food":     20,
		"material": 15,
		"tool":     5,
	}
}

// makeTraderPrices создает цены торговца
func makeTraderPrices() map[string]int {
	return map[string]int{
		"potion":   10,
		"food":     5,
		"material": 8,
		"tool":     25,
	}
}
