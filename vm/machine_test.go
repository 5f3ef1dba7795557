package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func load(m *Machine, addr uint16, words ...uint16) {
	for i, w := range words {
		m.Bus.Write(addr+uint16(i), w)
	}
}

func TestImmediateAddHalt(t *testing.T) {
	m := New()
	load(m, 0x3000, 0x1021, 0xF025) // ADD G0,G0,#1; HALT
	m.SetPC(0x3000)
	assert.NoError(t, m.Run())

	assert.Equal(t, uint16(1), m.Reg(G0))
	assert.Equal(t, CondPositive, m.ConditionCode())
	assert.Equal(t, uint16(0x3002), m.Reg(PC))
	assert.True(t, m.Halted())
}

func TestNegativeImmediate(t *testing.T) {
	m := New()
	load(m, 0x3000, 0x103F, 0xF025) // ADD G0,G0,#-1; HALT
	m.SetPC(0x3000)
	assert.NoError(t, m.Run())

	assert.Equal(t, uint16(0xFFFF), m.Reg(G0))
	assert.Equal(t, CondNegative, m.ConditionCode())
}

func TestZeroResult(t *testing.T) {
	m := New()
	load(m, 0x3000, 0x5020, 0xF025) // AND G0,G0,#0; HALT
	m.SetPC(0x3000)
	assert.NoError(t, m.Run())

	assert.Equal(t, uint16(0), m.Reg(G0))
	assert.Equal(t, CondZero, m.ConditionCode())
}

// TestSumProgram mirrors the repository's seven-word sum program: read two
// decimal integers via IN_U16, add them, print the result via OUT_U16.
func TestSumProgram(t *testing.T) {
	m := New()
	load(m, 0x3000,
		0xF026, // TRAP IN_U16      -> G0 = a
		0x1220, // ADD G1,G0,#0     -> G1 = a
		0xF026, // TRAP IN_U16      -> G0 = b
		0x1240, // ADD G1,G1,G0     -> G1 = a+b
		0x1060, // ADD G0,G1,#0     -> G0 = a+b (OUT_U16 reads G0)
		0xF027, // TRAP OUT_U16
		0xF025, // HALT
	)
	m.Stdin = strings.NewReader("3 4\n")
	var out bytes.Buffer
	m.Stdout = &out
	m.SetPC(0x3000)

	assert.NoError(t, m.Run())
	assert.Equal(t, "7\n", out.String())
	assert.Equal(t, uint16(7), m.Reg(G1))
	assert.True(t, m.Halted())
}

func TestPuts(t *testing.T) {
	m := New()
	m.Bus.Write(0x4000, uint16('H'))
	m.Bus.Write(0x4001, uint16('i'))
	m.Bus.Write(0x4002, 0)

	load(m, 0x3000, 0xF022, 0xF025) // TRAP PUTS (address in G0); HALT
	m.SetReg(G0, 0x4000)

	var out bytes.Buffer
	m.Stdout = &out
	m.SetPC(0x3000)

	assert.NoError(t, m.Run())
	assert.Equal(t, "Hi", out.String())
}

func TestBranchTaken(t *testing.T) {
	m := New()
	load(m, 0x3000,
		0x1020, // ADD G0,G0,#0  -> CC = Zero
		0x0401, // BRz #1        -> skip next word
		0x1025, // ADD G0,G0,#5  (skipped)
		0xF025, // HALT
	)
	m.SetPC(0x3000)
	assert.NoError(t, m.Run())
	assert.Equal(t, uint16(0), m.Reg(G0))
}

func TestBranchNotTaken(t *testing.T) {
	m := New()
	load(m, 0x3000,
		0x1020, // ADD G0,G0,#0  -> CC = Zero
		0x0201, // BRp #1        -> not taken, CC is Zero not Positive
		0x1025, // ADD G0,G0,#5
		0xF025, // HALT
	)
	m.SetPC(0x3000)
	assert.NoError(t, m.Run())
	assert.Equal(t, uint16(5), m.Reg(G0))
}

func TestConditionCodeTriState(t *testing.T) {
	m := New()

	m.SetReg(G1, 0)
	m.updateCC(G1)
	assert.Equal(t, CondZero, m.ConditionCode())

	m.SetReg(G1, 0x8000)
	m.updateCC(G1)
	assert.Equal(t, CondNegative, m.ConditionCode())

	m.SetReg(G1, 1)
	m.updateCC(G1)
	assert.Equal(t, CondPositive, m.ConditionCode())
}

func TestFetchPCLaw(t *testing.T) {
	m := New()
	load(m, 0x3000, 0xF025) // HALT
	m.SetPC(0x3000)
	m.Step()
	assert.Equal(t, uint16(0x3001), m.Reg(PC))
}

func TestArithmeticWrap(t *testing.T) {
	m := New()
	m.SetReg(G0, 0xFFFF)
	load(m, 0x3000, 0x1021) // ADD G0,G0,#1
	m.SetPC(0x3000)
	m.Step()

	assert.Equal(t, uint16(0), m.Reg(G0))
	assert.Equal(t, CondZero, m.ConditionCode())
}

func TestDispatchCoverage(t *testing.T) {
	table := buildOpcodeTable()
	for i, h := range table {
		assert.NotNil(t, h, "opcode %d has no handler", i)
	}
}

func TestLoadFlagCoupling(t *testing.T) {
	m := New()
	m.Bus.Write(0x3003, 0x8000) // negative word
	load(m, 0x3000, 0x2202)     // LD G1,#2 -> mem[0x3001+2] = mem[0x3003]
	m.SetPC(0x3000)
	m.Step()

	assert.Equal(t, uint16(0x8000), m.Reg(G1))
	assert.Equal(t, CondNegative, m.ConditionCode())
}

func TestStoreNonFlag(t *testing.T) {
	m := New()
	m.SetReg(G1, 0x8000)
	m.updateCC(G1)
	before := m.ConditionCode()

	load(m, 0x3000, 0x3200) // ST G1,#0 -> mem[0x3001] = G1
	m.SetPC(0x3000)
	m.Step()

	assert.Equal(t, before, m.ConditionCode())
	assert.Equal(t, uint16(0x8000), m.Bus.Read(0x3001))
}

func TestHaltTermination(t *testing.T) {
	m := New()
	load(m, 0x3000, 0xF025, 0x1021) // HALT; ADD (never reached)
	m.SetPC(0x3000)
	assert.NoError(t, m.Run())
	assert.True(t, m.Halted())
	assert.Equal(t, uint16(0), m.Reg(G0))
}

func TestRunWithoutImage(t *testing.T) {
	m := New()
	assert.ErrorIs(t, m.Run(), ErrNoImage)
}
