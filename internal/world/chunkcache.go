package world

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/annel0/mmo-game/internal/cache"
	"github.com/annel0/mmo-game/internal/logging"
	"github.com/annel0/mmo-game/internal/vec"
)

// ChunkCache фронтирует WorldMap.LoadChunk горячим байтовым кешем
// (internal/cache.CacheRepo, обычно Redis; NATS-инвалидация к нему не
// подключена): промах на
// обоих уровнях падает на world.generator, как и раньше, но повторная
// генерация одного и того же чанка на холодном старте узла больше не нужна,
// пока кеш жив. Отсутствие cache (nil) — обычный режим работы без него.
type ChunkCache struct {
	repo    cache.CacheRepo
	log     *logging.Logger
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewChunkCache оборачивает repo. repo == nil допустим и делает кеш
// неактивным (Get всегда промах, Put — no-op) — удобно, когда деплой не
// поднимает Redis.
func NewChunkCache(repo cache.CacheRepo) *ChunkCache {
	enc, _ := zstd.NewWriter(nil)
	dec, _ := zstd.NewReader(nil)
	return &ChunkCache{
		repo:    repo,
		log:     logging.GetComponentLogger("world"),
		encoder: enc,
		decoder: dec,
	}
}

// chunkCacheKey — компактный ключ кеша: xxhash мира+координат вместо
// конкатенации строк на каждый Get/Put.
func chunkCacheKey(world string, pos vec.ChunkPos) string {
	h := xxhash.New()
	_, _ = h.Write([]byte(world))
	var coords [8]byte
	binary.LittleEndian.PutUint32(coords[0:4], uint32(pos.X))
	binary.LittleEndian.PutUint32(coords[4:8], uint32(pos.Z))
	_, _ = h.Write(coords[:])
	return fmt.Sprintf("chunk:%x", h.Sum64())
}

// Get возвращает чанк из кеша, если он там есть и декодируется без ошибок.
func (cc *ChunkCache) Get(ctx context.Context, world string, pos vec.ChunkPos) (*Chunk, bool) {
	if cc == nil || cc.repo == nil {
		return nil, false
	}
	raw, err := cc.repo.Get(ctx, chunkCacheKey(world, pos))
	if err != nil {
		return nil, false
	}
	c, err := cc.decode(pos, raw)
	if err != nil {
		cc.log.Warn("world: повреждённая запись кеша чанка %v/%v: %v", world, pos, err)
		return nil, false
	}
	return c, true
}

// Put записывает чанк в кеш без TTL (вытеснение — забота репозитория).
func (cc *ChunkCache) Put(ctx context.Context, world string, c *Chunk) {
	if cc == nil || cc.repo == nil {
		return
	}
	raw, err := cc.encode(c)
	if err != nil {
		cc.log.Warn("world: не удалось сериализовать чанк %v/%v для кеша: %v", world, c.Pos, err)
		return
	}
	if err := cc.repo.Set(ctx, chunkCacheKey(world, c.Pos), raw, 0); err != nil {
		cc.log.Warn("world: не удалось записать чанк %v/%v в кеш: %v", world, c.Pos, err)
	}
}

// encode сериализует блочные данные чанка (суб-чанки, карта высот, биомы) в
// сжатый zstd-поток. Ростер сущностей намеренно не сохраняется — он
// эфемерен и восстанавливается перепривязкой игроков/мобов при перезаходе.
func (cc *ChunkCache) encode(c *Chunk) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var buf bytes.Buffer
	var present uint16
	for i, sub := range c.subs {
		if sub != nil {
			present |= 1 << uint(i)
		}
	}
	if err := binary.Write(&buf, binary.LittleEndian, present); err != nil {
		return nil, err
	}
	for _, sub := range c.subs {
		if sub == nil {
			continue
		}
		if err := binary.Write(&buf, binary.LittleEndian, sub.ids); err != nil {
			return nil, err
		}
		if err := binary.Write(&buf, binary.LittleEndian, sub.meta); err != nil {
			return nil, err
		}
	}
	if err := binary.Write(&buf, binary.LittleEndian, c.Heightmap); err != nil {
		return nil, err
	}
	// BiomeType — это `int` (размер зависит от платформы), поэтому сериализуем
	// его явно как int32 вместо binary.Write на весь массив.
	var biome32 [16][16]int32
	for x := range c.Biome {
		for z := range c.Biome[x] {
			biome32[x][z] = int32(c.Biome[x][z])
		}
	}
	if err := binary.Write(&buf, binary.LittleEndian, biome32); err != nil {
		return nil, err
	}

	return cc.encoder.EncodeAll(buf.Bytes(), nil), nil
}

// decode реконструирует Chunk из encode's output для координат pos.
func (cc *ChunkCache) decode(pos vec.ChunkPos, raw []byte) (*Chunk, error) {
	plain, err := cc.decoder.DecodeAll(raw, nil)
	if err != nil {
		return nil, err
	}
	buf := bytes.NewReader(plain)

	var present uint16
	if err := binary.Read(buf, binary.LittleEndian, &present); err != nil {
		return nil, err
	}

	c := NewChunk(pos)
	for i := 0; i < 16; i++ {
		if present&(1<<uint(i)) == 0 {
			continue
		}
		sub := newSubChunk()
		if err := binary.Read(buf, binary.LittleEndian, &sub.ids); err != nil {
			return nil, err
		}
		if err := binary.Read(buf, binary.LittleEndian, &sub.meta); err != nil {
			return nil, err
		}
		c.subs[i] = sub
	}
	if err := binary.Read(buf, binary.LittleEndian, &c.Heightmap); err != nil {
		return nil, err
	}
	var biome32 [16][16]int32
	if err := binary.Read(buf, binary.LittleEndian, &biome32); err != nil {
		return nil, err
	}
	for x := range biome32 {
		for z := range biome32[x] {
			c.Biome[x][z] = BiomeType(biome32[x][z])
		}
	}
	return c, nil
}
