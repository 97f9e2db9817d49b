package entity

import (
	"math"
	"math/rand"
	"time"

	"github.com/annel0/mmo-game/internal/vec"
	"github.com/annel0/mmo-game/internal/world/block"
)

// AnimalBehavior определяет поведение животного
type AnimalBehavior struct {
	baseSpeed       float64
	maxHealth       int
	detectionRadius float64
	wanderRadius    float64
	idleTimeRange   [2]float64 // Мин/макс время простоя
	moveTimeRange   [2]float64 // Мин/макс время движения
	animalType      AnimalType
	maxHunger       int     // Максимальный уровень сытости
	hungerRate      float64 // Скорость увеличения голода (единиц в секунду)
	eatDuration     float64 // Время поедания пищи в секундах
}

// NewAnimalBehavior создает новое поведение животного
func NewAnimalBehavior(animalType AnimalType) *AnimalBehavior {
	behavior := &AnimalBehavior{
		baseSpeed:       2.0,
		maxHealth:       30,
		detectionRadius: 6.0,
		wanderRadius:    10.0,
		idleTimeRange:   [2]float64{2.0, 7.0},
		moveTimeRange:   [2]float64{1.0, 4.0},
		animalType:      animalType,
		maxHunger:       100,
		hungerRate:      0.05,
		eatDuration:     3.0,
	}

	switch animalType {
	case AnimalTypeCow:
		behavior.baseSpeed = 1.5
		behavior.maxHealth = 40
		behavior.maxHunger = 150
		behavior.eatDuration = 4.0
	case AnimalTypeSheep:
		behavior.baseSpeed = 1.8
		behavior.maxHealth = 25
	case AnimalTypeChicken:
		behavior.baseSpeed = 2.2
		behavior.maxHealth = 10
		behavior.maxHunger = 50
	case AnimalTypePig:
		behavior.baseSpeed = 1.7
		behavior.maxHealth = 30
	case AnimalTypeHorse:
		behavior.baseSpeed = 4.0
		behavior.maxHealth = 60
	}

	return behavior
}

// Update продвигает состояние животного на один тик планировщика.
func (ab *AnimalBehavior) Update(api EntityAPI, entity *Entity) bool {
	dt := physicsTickSeconds
	ab.initAnimalData(entity)

	hunger := entity.Payload["hunger"].(int)
	// За тик набегает доля единицы; дробный остаток копится между тиками,
	// иначе int() отбрасывал бы прирост целиком.
	hungerAcc, _ := entity.Payload["hungerAcc"].(float64)
	hungerAcc += ab.hungerRate * dt * 100
	whole := int(hungerAcc)
	entity.Payload["hungerAcc"] = hungerAcc - float64(whole)
	hunger += whole
	if hunger > ab.maxHunger*100 {
		hunger = ab.maxHunger * 100
	}
	entity.Payload["hunger"] = hunger

	state := entity.Payload["state"].(string)
	actionTimer := entity.Payload["actionTimer"].(float64) - dt

	if ab.animalType == AnimalTypeCow {
		ab.updateCowState(api, entity, dt, state, &actionTimer)
	} else {
		if actionTimer <= 0 {
			ab.updateBaseState(entity, state, &actionTimer)
		} else {
			entity.Payload["actionTimer"] = actionTimer
			ab.processState(entity, state)
		}
	}
	return false
}

// updateCowState обновляет состояние коровы
func (ab *AnimalBehavior) updateCowState(api EntityAPI, entity *Entity, dt float64, state string, actionTimer *float64) {
	hunger := entity.Payload["hunger"].(int)

	if hunger > ab.maxHunger*40 && state != "eating" {
		if grass, found := ab.findNearbyGrass(api, entity); found {
			entity.Payload["state"] = "moving_to_grass"
			entity.Payload["targetPosition"] = grass
			entity.Payload["actionTimer"] = 10.0
			return
		}
	}

	if *actionTimer <= 0 {
		switch state {
		case "eating":
			entity.Payload["state"] = "idle"
			*actionTimer = ab.getRandomInRange(ab.idleTimeRange)

			hunger = hunger - 30*100
			if hunger < 0 {
				hunger = 0
			}
			entity.Payload["hunger"] = hunger
		case "moving_to_grass":
			entity.Payload["state"] = "idle"
			*actionTimer = ab.getRandomInRange(ab.idleTimeRange)
		default:
			ab.updateBaseState(entity, state, actionTimer)
		}
	} else {
		entity.Payload["actionTimer"] = *actionTimer

		switch state {
		case "eating":
			entity.Velocity = vec.Vec3Float{}
		case "moving_to_grass":
			targetPos, ok := entity.Payload["targetPosition"].(Pos)
			if !ok {
				return
			}

			if horizontalDistance(entity.Position, targetPos) < 0.8 {
				blockPos := targetPos.Vec3()
				blockID := api.GetBlock(blockPos)
				if blockID == uint16(block.GrassBlockID) {
					entity.Payload["state"] = "eating"
					entity.Payload["actionTimer"] = ab.eatDuration
					entity.Velocity = vec.Vec3Float{}

					api.SetBlock(blockPos, uint16(block.DirtBlockID), 0)
				} else {
					entity.Payload["state"] = "idle"
					entity.Payload["actionTimer"] = ab.getRandomInRange(ab.idleTimeRange)
				}
			} else {
				direction := directionTo(entity.Position, targetPos)
				entity.Velocity = vec.Vec3Float{X: direction.X * ab.baseSpeed, Z: direction.Z * ab.baseSpeed}
				entity.Direction = directionToMovement(direction)
				entity.Position.X += entity.Velocity.X * dt
				entity.Position.Z += entity.Velocity.Z * dt
			}
		default:
			ab.processState(entity, state)
		}
	}
}

// findNearbyGrass ищет траву в круге радиусом 8 блоков вокруг животного на
// его высоте и возвращает первую найденную при обходе по z, затем по x — не
// обязательно ближайшую.
func (ab *AnimalBehavior) findNearbyGrass(api EntityAPI, entity *Entity) (Pos, bool) {
	searchRadius := 8
	center := entity.Position.Vec3()

	for z := center.Z - searchRadius; z <= center.Z+searchRadius; z++ {
		for x := center.X - searchRadius; x <= center.X+searchRadius; x++ {
			dx, dz := x-center.X, z-center.Z
			if dx*dx+dz*dz > searchRadius*searchRadius {
				continue
			}

			pos := vec.Vec3{X: x, Y: center.Y, Z: z}
			if api.GetBlock(pos) == uint16(block.GrassBlockID) {
				return Pos{X: float64(x) + 0.5, Y: float64(center.Y), Z: float64(z) + 0.5}, true
			}
		}
	}

	return Pos{}, false
}

// updateBaseState обновляет базовое состояние животного
func (ab *AnimalBehavior) updateBaseState(entity *Entity, state string, actionTimer *float64) {
	switch state {
	case "idle":
		entity.Payload["state"] = "moving"
		*actionTimer = ab.getRandomInRange(ab.moveTimeRange)

		homePos, ok := entity.Payload["homePosition"].(Pos)
		if !ok {
			homePos = entity.Position
			entity.Payload["homePosition"] = homePos
		}

		entity.Payload["targetPosition"] = ab.getRandomPositionInRadius(homePos, ab.wanderRadius)
	case "moving":
		entity.Payload["state"] = "idle"
		*actionTimer = ab.getRandomInRange(ab.idleTimeRange)
	}
}

// processState обрабатывает текущее состояние животного (без применения dt к позиции —
// используется только как переходный шаг между сменой состояний).
func (ab *AnimalBehavior) processState(entity *Entity, state string) {
	switch state {
	case "idle":
		entity.Velocity = vec.Vec3Float{}
	case "moving":
		targetPos, ok := entity.Payload["targetPosition"].(Pos)
		if !ok {
			return
		}

		direction := directionTo(entity.Position, targetPos)
		if horizontalDistance(entity.Position, targetPos) < 0.5 {
			entity.Payload["state"] = "idle"
			entity.Payload["actionTimer"] = ab.getRandomInRange(ab.idleTimeRange)
			entity.Velocity = vec.Vec3Float{}
		} else {
			entity.Velocity = vec.Vec3Float{X: direction.X * ab.baseSpeed, Z: direction.Z * ab.baseSpeed}
			entity.Direction = directionToMovement(direction)
			entity.Position.X += entity.Velocity.X * physicsTickSeconds
			entity.Position.Z += entity.Velocity.Z * physicsTickSeconds
		}
	}
}

// OnSpawn вызывается при создании животного
func (ab *AnimalBehavior) OnSpawn(api EntityAPI, entity *Entity) {
	ab.initAnimalData(entity)
}

// initAnimalData инициализирует данные животного, если нужно
func (ab *AnimalBehavior) initAnimalData(entity *Entity) {
	if entity.Payload["animalType"] == nil {
		entity.Payload["animalType"] = int(ab.animalType)
		entity.Payload["health"] = ab.maxHealth
		entity.Payload["state"] = "idle"
		entity.Payload["actionTimer"] = ab.getRandomInRange(ab.idleTimeRange)
		entity.Payload["homePosition"] = entity.Position
		entity.Payload["hunger"] = 0
		entity.Payload["lastEatTime"] = 0.0
		entity.Payload["randomSeed"] = time.Now().UnixNano()
	}
}

// OnDespawn вызывается при удалении животного
func (ab *AnimalBehavior) OnDespawn(api EntityAPI, entity *Entity) {}

// OnDamage вызывается при получении урона
func (ab *AnimalBehavior) OnDamage(api EntityAPI, entity *Entity, damage int, source interface{}) bool {
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

	entity.Payload["state"] = "fleeing"
	entity.Payload["actionTimer"] = 5.0

	if sourceEntity, ok := source.(*Entity); ok {
		fleeDir := directionTo(sourceEntity.Position, entity.Position)
		entity.Payload["targetPosition"] = Pos{
			X: entity.Position.X + fleeDir.X*ab.wanderRadius,
			Y: entity.Position.Y,
			Z: entity.Position.Z + fleeDir.Z*ab.wanderRadius,
		}
	}
	return false
}

// OnCollision вызывается при столкновении с другим объектом
func (ab *AnimalBehavior) OnCollision(api EntityAPI, entity *Entity, other interface{}, collisionPoint vec.Vec3Float) {
	if entity.Payload["state"] == "moving" {
		entity.Payload["state"] = "idle"
		entity.Payload["actionTimer"] = ab.getRandomInRange(ab.idleTimeRange)
	}
}

// GetMoveSpeed возвращает скорость движения животного
func (ab *AnimalBehavior) GetMoveSpeed() float64 {
	return ab.baseSpeed
}

func (ab *AnimalBehavior) getRandomInRange(r [2]float64) float64 {
	return r[0] + rand.Float64()*(r[1]-r[0])
}

// getRandomPositionInRadius возвращает случайную позицию в указанном радиусе от центра
func (ab *AnimalBehavior) getRandomPositionInRadius(center Pos, radius float64) Pos {
	angle := rand.Float64() * 2 * math.Pi
	distance := radius * math.Sqrt(rand.Float64())

	return Pos{
		X: center.X + distance*math.Cos(angle),
		Y: center.Y,
		Z: center.Z + distance*math.Sin(angle),
	}
}
