package isa_test

import (
	"testing"

	"github.com/modestralts/flw0dec/lang/isa"
	"github.com/stretchr/testify/assert"
)

func TestWideAndFloat(t *testing.T) {
	for _, op := range []isa.Opcode{isa.PUSHI, isa.PUSHIX} {
		assert.True(t, op.Wide())
		assert.False(t, op.Float())
	}
	for _, op := range []isa.Opcode{isa.PUSHF, isa.PUSHIF} {
		assert.True(t, op.Wide())
		assert.True(t, op.Float())
	}
	assert.False(t, isa.ADD.Wide())
}

func TestJumperCaller(t *testing.T) {
	assert.True(t, isa.GOTO.Jumper())
	assert.True(t, isa.IF.Jumper())
	assert.True(t, isa.JUMP.Caller())
	assert.True(t, isa.CALL.Caller())
	assert.False(t, isa.ADD.Jumper())
}

func TestStackEffectKnownOpcodes(t *testing.T) {
	eff, ok := isa.StackEffect[isa.ADD]
	assert.True(t, ok)
	assert.Equal(t, [2]int{1, 2}, eff)

	_, ok = isa.StackEffect[isa.CALL]
	assert.False(t, ok, "CALL's arity is inferred, not statically known")
}

func TestBlockEnder(t *testing.T) {
	assert.True(t, isa.END.BlockEnder())
	assert.True(t, isa.JUMP.BlockEnder())
	assert.True(t, isa.GOTO.BlockEnder())
	assert.False(t, isa.IF.BlockEnder())
}

func TestOpcodeString(t *testing.T) {
	assert.Equal(t, "PUSHI", isa.PUSHI.String())
	assert.Equal(t, "COND", isa.COND.String())
}
