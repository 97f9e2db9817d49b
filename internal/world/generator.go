package world

import (
	"math/rand"

	"github.com/annel0/mmo-game/internal/util"
	"github.com/annel0/mmo-game/internal/vec"
	"github.com/annel0/mmo-game/internal/world/block"
)

// BiomeType представляет тип биома.
type BiomeType int

const (
	BiomePlains BiomeType = iota
	BiomeDesert
	BiomeForest
	BiomeMountains
	BiomeWater
	BiomeDeepWater
)

// Высотные пороги генерации, доля от MaxHeight.
const (
	DeepWaterMax    = 0.20
	ShallowWaterMax = 0.30
	ActiveStart     = 0.60
	MountainStart   = 0.80
)

// MaxHeight — верхняя граница генерируемого рельефа по Y; весь столбец выше
// остаётся воздухом.
const MaxHeight = 128

// WorldGenerator — опорный терраформирующий генератор, вызываемый как
// терраформер §6 ("fn(world, out_chunk, cx, cz)"): синтезирует полный
// вертикальный столбец блоков чанка на основе шума Перлина.
type WorldGenerator struct {
	Seed          int64
	NoiseScale    float64
	BiomeScale    float64
	ForestDensity float64
}

// NewWorldGenerator создаёт генератор ландшафта для данного сида.
func NewWorldGenerator(seed int64) *WorldGenerator {
	util.InitPerlinNoise(seed)
	return &WorldGenerator{
		Seed:          seed,
		NoiseScale:    0.05,
		BiomeScale:    0.02,
		ForestDensity: 0.05,
	}
}

// GenerateChunk синтезирует чанк по его координатам: для каждой из 256
// колонок (x, z) вычисляет высоту и биом, заполняет столбец снизу доверху и,
// на суше, стохастически ставит над поверхностью по одному блоку
// дерева/кактуса.
func (wg *WorldGenerator) GenerateChunk(pos vec.ChunkPos) *Chunk {
	chunk := NewChunk(pos)

	chunkSeed := wg.Seed + int64(pos.X*31) + int64(pos.Z*17)
	rng := rand.New(rand.NewSource(chunkSeed))

	globalStartX := pos.X << 4
	globalStartZ := pos.Z << 4

	for z := 0; z < 16; z++ {
		for x := 0; x < 16; x++ {
			globalX := globalStartX + x
			globalZ := globalStartZ + z

			noiseX := float64(globalX) * wg.NoiseScale
			noiseZ := float64(globalZ) * wg.NoiseScale
			heightNoise := util.PerlinNoise2D(noiseX, noiseZ, wg.Seed)

			biomeNoiseX := float64(globalX) * wg.BiomeScale
			biomeNoiseZ := float64(globalZ) * wg.BiomeScale
			biomeValue := util.PerlinNoise2D(biomeNoiseX, biomeNoiseZ, wg.Seed+42)

			biome := wg.getBiomeType(heightNoise, biomeValue)
			surfaceY := int(heightNoise * MaxHeight)
			if surfaceY < 1 {
				surfaceY = 1
			}
			if surfaceY > 255 {
				surfaceY = 255
			}

			chunk.Heightmap[x][z] = int8(surfaceY & 0x7F)
			chunk.Biome[x][z] = biome

			wg.fillColumn(chunk, x, z, surfaceY, heightNoise, biome, rng)
		}
	}

	return chunk
}

// fillColumn заполняет один вертикальный столбец от bedrock до surfaceY
// включительно, затем решает про водное зеркало/объекты поверх него.
func (wg *WorldGenerator) fillColumn(c *Chunk, x, z, surfaceY int, heightNoise float64, biome BiomeType, rng *rand.Rand) {
	surfaceBlock := wg.getFloorBlockForBiome(biome)

	for y := 0; y <= surfaceY; y++ {
		switch {
		case y == surfaceY:
			c.SetBlock(x, y, z, surfaceBlock, 0)
		case y >= surfaceY-3:
			c.SetBlock(x, y, z, block.DirtBlockID, 2)
		default:
			c.SetBlock(x, y, z, block.StoneBlockID, 0)
		}
	}

	switch {
	case heightNoise < DeepWaterMax:
		for y := surfaceY + 1; y <= waterLine(); y++ {
			id := block.WaterBlockID
			if y < waterLine() {
				id = block.DeepWaterBlockID
			}
			c.SetBlock(x, y, z, id, 7)
		}
		c.SetBlock(x, surfaceY, z, block.DeepWaterBlockID, 0)
	case heightNoise < ShallowWaterMax:
		for y := surfaceY + 1; y <= waterLine(); y++ {
			c.SetBlock(x, y, z, block.WaterBlockID, 7)
		}
	case heightNoise >= MountainStart:
		if rng.Float64() < 0.1 {
			c.SetBlock(x, surfaceY, z, block.StoneBlockID, 0)
		}
	default:
		wg.placeSurfaceObject(c, x, surfaceY, z, biome, rng)
	}
}

// waterLine возвращает Y уровня моря — фиксированная доля MaxHeight,
// совпадающая с ShallowWaterMax, так что мелководье всегда ровно достаёт до
// поверхности.
func waterLine() int {
	return int(ShallowWaterMax * MaxHeight)
}

// placeSurfaceObject стохастически ставит дерево/кактус на сушу одним блоком
// через Chunk.SetBlock. OnPlace блока (implementations/{tree,cactus}.go) при
// генерации не вызывается, так что второй, верхний блок не достраивается.
func (wg *WorldGenerator) placeSurfaceObject(c *Chunk, x, surfaceY, z int, biome BiomeType, rng *rand.Rand) {
	above := surfaceY + 1
	switch {
	case biome == BiomeForest && rng.Float64() < 0.15:
		c.SetBlock(x, above, z, block.TreeBlockID, 0)
	case biome == BiomePlains && rng.Float64() < wg.ForestDensity:
		c.SetBlock(x, above, z, block.TreeBlockID, 0)
	case biome == BiomeDesert && rng.Float64() < 0.02:
		c.SetBlock(x, above, z, block.CactusBlockID, 0)
	}
}

// getFloorBlockForBiome возвращает поверхностный блок для биома.
func (wg *WorldGenerator) getFloorBlockForBiome(biome BiomeType) block.BlockID {
	switch biome {
	case BiomeDesert:
		return block.SandBlockID
	case BiomeMountains:
		return block.StoneBlockID
	case BiomeForest, BiomePlains:
		return block.GrassBlockID
	default:
		return block.DirtBlockID
	}
}

// getBiomeType определяет биом по значению высотного шума и отдельного
// шума биомов.
func (wg *WorldGenerator) getBiomeType(height, biomeValue float64) BiomeType {
	if height < DeepWaterMax {
		return BiomeDeepWater
	}
	if height < ShallowWaterMax {
		return BiomeWater
	}
	if height > MountainStart {
		return BiomeMountains
	}
	if biomeValue < -0.3 {
		return BiomeDesert
	} else if biomeValue > 0.3 {
		return BiomeForest
	}
	return BiomePlains
}

// GenerateEdgeChunk синтезирует чанк-заглушку вдоль границы ограниченного
// мира — терраформер-компаньон §6 ("fn(world, out_edge_chunk)"); в этом ядре
// это просто сплошная каменная стена от уровня 0 до уровня моря,
// предотвращающая выпадение за пределы видимой генерации.
func (wg *WorldGenerator) GenerateEdgeChunk(pos vec.ChunkPos) *Chunk {
	chunk := NewChunk(pos)
	for z := 0; z < 16; z++ {
		for x := 0; x < 16; x++ {
			for y := 0; y <= waterLine(); y++ {
				chunk.SetBlock(x, y, z, block.StoneBlockID, 0)
			}
		}
	}
	return chunk
}
