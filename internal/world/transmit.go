package world

import "github.com/annel0/mmo-game/internal/vec"

// Transmitter — вся поверхность, которую ядро требует от внешнего
// транспортного/протокольного коллаборатора (§6): ни один из этих методов
// не предполагает конкретный кодек или транспорт, только пакеты,
// перечисленные в §6 как "produced". Сама доставка (KCP/TCP/сериализация)
// — вне области ядра.
type Transmitter interface {
	SendChunkPayload(pos vec.ChunkPos, chunk *Chunk)
	SendEmptyChunk(pos vec.ChunkPos)
	SendSpawnNamedEntity(eid uint64, pos vec.Vec3Float, yaw, pitch float32)
	SendDestroyEntity(eid uint64)
	SendEntityTeleport(eid uint64, pos vec.Vec3Float, yaw, pitch float32)
	SendEntityHeadLook(eid uint64, yaw float32)
	SendEntityLook(eid uint64, yaw, pitch float32)
	SendPositionAndLookEcho(pos vec.Vec3Float, yaw, pitch float32)
	SendBlockChange(x, y, z int, id uint16, meta uint8)
	SendKeepalive(id uint16)
	SendKick(reason string)
}
