// Package storage_interface defines the boundary between the world-tick core
// and a durable persistence collaborator. The core never speaks SQL or touches
// a disk directly; it hands snapshots across this interface and forgets them.
package storage_interface

import (
	"github.com/annel0/mmo-game/internal/vec"
)

// StorageProvider persists and restores chunk-scoped entity state. A concrete
// implementation (SQL, document store, flat files) lives entirely outside the
// core and is injected at startup.
type StorageProvider interface {
	// SaveEntities persists the entities currently resident in the named chunk.
	SaveEntities(world string, chunkCoords vec.ChunkPos, entities map[uint64]EntityStorageData) error

	// LoadEntities retrieves previously persisted entities for a chunk.
	// A nil result with a nil error means nothing was ever stored there.
	LoadEntities(world string, chunkCoords vec.ChunkPos) (*EntitiesData, error)

	// Close releases any resources held by the provider.
	Close() error
}

// EntitiesData is the payload handed back by LoadEntities.
type EntitiesData struct {
	World    string
	Coords   vec.ChunkPos
	Entities map[uint64]EntityStorageData
}

// EntityStorageData is the serializable projection of an entity.
type EntityStorageData struct {
	ID       uint64
	Type     uint16
	Position vec.Vec3
	Yaw      float32
	Pitch    float32
	Payload  map[string]interface{}
}
