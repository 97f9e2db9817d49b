package entity

import (
	"math"
	"strconv"

	"github.com/annel0/mmo-game/internal/vec"
)

// PlayerBehavior определяет игровую логику, общую для всех игроков:
// здоровье, инвентарь, атаку ближнего боя. Состояние стриминга чанков
// (known_chunks/visible_players) живёт не здесь, а в world.Player — этому
// поведению оно не нужно.
type PlayerBehavior struct {
	baseSpeed      float64
	maxHealth      int
	inventorySize  int
	attackRange    float64
	attackDamage   int
	attackCooldown float64
}

func NewPlayerBehavior() *PlayerBehavior {
	return &PlayerBehavior{
		baseSpeed:      5.0,
		maxHealth:      100,
		inventorySize:  36,
		attackRange:    1.5,
		attackDamage:   10,
		attackCooldown: 0.5,
	}
}

// Update продвигает таймеры игрока на один тик планировщика. Игроки никогда
// не становятся терминальными сами по себе — выход из игры обрабатывается
// через despawn, не через возврат true отсюда.
func (pb *PlayerBehavior) Update(api EntityAPI, e *Entity) bool {
	if cooldown, ok := e.Payload["attackCooldown"].(float64); ok && cooldown > 0 {
		e.Payload["attackCooldown"] = cooldown - physicsTickSeconds
	}
	return false
}

// physicsTickSeconds — длительность одного тика планировщика (см. physics.TickPeriod).
const physicsTickSeconds = 0.05

func (pb *PlayerBehavior) OnSpawn(api EntityAPI, e *Entity) {
	e.Payload["health"] = pb.maxHealth
	e.Payload["inventory"] = make(map[string]interface{})
	e.Payload["experience"] = 0
	e.Payload["level"] = 1
	e.Payload["username"] = "Player" + strconv.FormatUint(e.ID, 10)
	e.Payload["attackCooldown"] = 0.0
}

func (pb *PlayerBehavior) OnDespawn(api EntityAPI, e *Entity) {}

func (pb *PlayerBehavior) OnDamage(api EntityAPI, e *Entity, damage int, source interface{}) bool {
	health, _ := e.Payload["health"].(int)
	health -= damage
	if health <= 0 {
		e.Payload["health"] = 0
		return true
	}
	e.Payload["health"] = health
	return false
}

func (pb *PlayerBehavior) OnCollision(api EntityAPI, e *Entity, other interface{}, collisionPoint vec.Vec3Float) {
}

func (pb *PlayerBehavior) GetMoveSpeed() float64 { return pb.baseSpeed }

func (pb *PlayerBehavior) AddItemToInventory(e *Entity, itemID string, count int) bool {
	inv, ok := e.Payload["inventory"].(map[string]interface{})
	if !ok {
		return false
	}
	if cur, exists := inv[itemID].(int); exists {
		inv[itemID] = cur + count
	} else {
		inv[itemID] = count
	}
	return true
}

func (pb *PlayerBehavior) GetInventoryItem(e *Entity, itemID string) int {
	if inv, ok := e.Payload["inventory"].(map[string]interface{}); ok {
		if count, exists := inv[itemID].(int); exists {
			return count
		}
	}
	return 0
}

// Attack выполняет атаку ближнего боя в направлении, в котором смотрит игрок.
func (pb *PlayerBehavior) Attack(api EntityAPI, e *Entity, mgr *Manager) bool {
	if cooldown, ok := e.Payload["attackCooldown"].(float64); ok && cooldown > 0 {
		return false
	}

	yawRad := float64(e.Position.Yaw) * math.Pi / 180
	dir := vec.Vec3Float{X: -math.Sin(yawRad), Z: math.Cos(yawRad)}
	center := vec.Vec3Float{
		X: e.Position.X + dir.X*pb.attackRange/2,
		Y: e.Position.Y,
		Z: e.Position.Z + dir.Z*pb.attackRange/2,
	}

	hit := false
	for _, target := range api.GetEntitiesInRange(center, pb.attackRange) {
		if target.ID == e.ID {
			continue
		}
		if isInAttackCone(e.Position, target.Position, dir, pb.attackRange, 90) {
			if behavior, exists := mgr.GetBehavior(target.Type); exists {
				behavior.OnDamage(api, target, pb.attackDamage, e)
				hit = true
			}
		}
	}

	e.Payload["attackCooldown"] = pb.attackCooldown
	return hit
}

// isInAttackCone сообщает, лежит ли target внутри конуса заданного раствора
// (в градусах) вокруг direction, исходящего из origin, на горизонтальной
// плоскости X/Z.
func isInAttackCone(origin, target Pos, direction vec.Vec3Float, attackRange float64, angleDegrees float64) bool {
	dx, dz := target.X-origin.X, target.Z-origin.Z
	dist := math.Hypot(dx, dz)
	if dist > attackRange || dist == 0 {
		return false
	}

	toTargetX, toTargetZ := dx/dist, dz/dist
	dirLen := math.Hypot(direction.X, direction.Z)
	if dirLen == 0 {
		return false
	}
	dirX, dirZ := direction.X/dirLen, direction.Z/dirLen

	dot := dirX*toTargetX + dirZ*toTargetZ
	cosHalfAngle := math.Cos(angleDegrees / 2 * math.Pi / 180)
	return dot >= cosHalfAngle
}
