package physics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionStrip_DissipateValZeroAlwaysTriggers(t *testing.T) {
	// rng.Intn(val+1) с val=0 — это rng.Intn(1), который всегда возвращает 0:
	// вероятность строго 1, без статистической неопределённости.
	var strip ActionStrip
	strip[0] = Action{Kind: ActionDissipate, Expire: 5, Val: 0}
	strip[1].Kind = ActionNone

	var dissipated bool
	rng := rand.New(rand.NewSource(1))
	result := strip.eval(func() { dissipated = true }, rng)

	assert.True(t, dissipated, "DISSIPATE с val=0 должен сработать детерминированно")
	assert.True(t, result.consumed, "сработавший DISSIPATE поглощает обновление")
	assert.False(t, result.keep, "поглощённое обновление не требует повторной постановки")
}

func TestActionStrip_ExpireZeroSlotSkipped(t *testing.T) {
	var strip ActionStrip
	strip[0] = Action{Kind: ActionDissipate, Expire: 0, Val: 0}
	strip[1].Kind = ActionNone

	var dissipated bool
	rng := rand.New(rand.NewSource(1))
	result := strip.eval(func() { dissipated = true }, rng)

	assert.False(t, dissipated, "слот с Expire=0 должен пропускаться целиком")
	assert.False(t, result.consumed)
	assert.False(t, result.keep)
}

func TestActionStrip_ActionNoneStopsEvaluationEarly(t *testing.T) {
	var strip ActionStrip
	strip[0].Kind = ActionNone
	// Второй слот выглядит как живой DISSIPATE, но не должен быть достигнут.
	strip[1] = Action{Kind: ActionDissipate, Expire: 5, Val: 0}

	var dissipated bool
	rng := rand.New(rand.NewSource(1))
	result := strip.eval(func() { dissipated = true }, rng)

	assert.False(t, dissipated, "ActionNone в начале полосы обрывает обход")
	assert.False(t, result.consumed)
	assert.False(t, result.keep)
}

func TestActionStrip_ExpirePermanentNeverDecrements(t *testing.T) {
	var strip ActionStrip
	strip[0] = Action{Kind: ActionDrop, Expire: ExpirePermanent, Val: 0}
	strip[1].Kind = ActionNone

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 5; i++ {
		result := strip.eval(func() {}, rng)
		assert.True(t, result.keep, "перманентное действие всегда требует keep")
		assert.Equal(t, ExpirePermanent, strip[0].Expire, "ExpirePermanent не должен уменьшаться")
	}
}

func TestActionStrip_FiniteExpireDecrementsThenDrops(t *testing.T) {
	var strip ActionStrip
	strip[0] = Action{Kind: ActionDrop, Expire: 1, Val: 0}
	strip[1].Kind = ActionNone

	rng := rand.New(rand.NewSource(1))

	first := strip.eval(func() {}, rng)
	assert.True(t, first.keep, "последний тик действия ещё засчитывается как keep")
	assert.Equal(t, uint16(0), strip[0].Expire, "Expire должен уменьшиться до 0")

	second := strip.eval(func() {}, rng)
	assert.False(t, second.keep, "после истечения Expire==0 слот пропускается и keep не выставляется")
}
