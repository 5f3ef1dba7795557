package asm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembleSumProgram(t *testing.T) {
	src := `
.ORIG x3000
TRAP x26
ADD R1,R0,x0
TRAP x26
ADD R1,R1,R0
ADD R0,R1,x0
TRAP x27
HALT
.END
`
	origin, words, err := Assemble(strings.NewReader(src), "sum.asm")
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x3000), origin)
	assert.Equal(t, []uint16{0xF026, 0x1220, 0xF026, 0x1240, 0x1060, 0xF027, 0xF025}, words)
}

func TestAssembleLabelsAndBranch(t *testing.T) {
	src := `
.ORIG x3000
        AND R0,R0,#0    ; CC = Zero
        BRz SKIP
        ADD R0,R0,#5
SKIP    HALT
.END
`
	_, words, err := Assemble(strings.NewReader(src), "br.asm")
	assert.NoError(t, err)
	assert.Equal(t, []uint16{0x5020, 0x0401, 0x1025, 0xF025}, words)
}

func TestAssembleLEAAndFill(t *testing.T) {
	src := `
.ORIG x3000
        LEA R0,MSG
        HALT
MSG     .FILL x48
        .FILL 0
.END
`
	_, words, err := Assemble(strings.NewReader(src), "lea.asm")
	assert.NoError(t, err)
	// LEA R0,MSG: MSG is at origin+2, next instruction address is origin+1,
	// so offset9 = 2 - 1 = 1.
	assert.Equal(t, uint16(0xE001), words[0])
	assert.Equal(t, uint16(0xF025), words[1])
	assert.Equal(t, uint16(0x0048), words[2])
	assert.Equal(t, uint16(0x0000), words[3])
}

func TestAssembleBlkw(t *testing.T) {
	src := `
.ORIG x3000
        .BLKW 3
        HALT
.END
`
	_, words, err := Assemble(strings.NewReader(src), "blkw.asm")
	assert.NoError(t, err)
	assert.Equal(t, []uint16{0, 0, 0, 0xF025}, words)
}

func TestAssembleUndefinedLabel(t *testing.T) {
	src := `
.ORIG x3000
        BRz NOWHERE
.END
`
	_, _, err := Assemble(strings.NewReader(src), "bad.asm")
	assert.Error(t, err)
	var aerr *Error
	assert.ErrorAs(t, err, &aerr)
}

func TestAssembleRequiresOrig(t *testing.T) {
	src := `
        HALT
.END
`
	_, _, err := Assemble(strings.NewReader(src), "noorig.asm")
	assert.Error(t, err)
}

func TestAssembleRegisterImmediateDisambiguation(t *testing.T) {
	src := `
.ORIG x3000
        ADD R2,R3,R4
        AND R2,R3,#7
.END
`
	_, words, err := Assemble(strings.NewReader(src), "addand.asm")
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x14C4), words[0]) // ADD DR=2,SR1=3,SR2=4
	assert.Equal(t, uint16(0x54E7), words[1]) // AND DR=2,SR1=3,imm5=7
}
