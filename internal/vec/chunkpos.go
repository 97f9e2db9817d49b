package vec

// ChunkPos представляет координаты чанка (cx, cz) — плоская сетка колонок,
// в отличие от Vec3, которая адресует отдельный блок.
type ChunkPos struct {
	X, Z int
}

// ChunkPosOf возвращает чанк, которому принадлежит блок (x, _, z).
func ChunkPosOf(x, z int) ChunkPos {
	return ChunkPos{X: x >> 4, Z: z >> 4}
}

// LocalInChunk возвращает локальные (0..15) координаты блока внутри чанка.
func LocalInChunk(x, z int) (lx, lz int) {
	return x & 0xF, z & 0xF
}

// SquaredDistanceTo возвращает квадрат евклидова расстояния между чанками —
// достаточен для сортировки по удалённости без извлечения корня.
func (c ChunkPos) SquaredDistanceTo(other ChunkPos) int {
	dx := c.X - other.X
	dz := c.Z - other.Z
	return dx*dx + dz*dz
}
