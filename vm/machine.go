// Package vm implements the LC-3: a 16-bit register machine with eight
// general-purpose registers, a program counter, a condition-code register,
// and a 64Ki-word main memory.
package vm

import (
	"errors"
	"io"
	"os"

	"github.com/Devansh3712/lc3/mem"
)

// Reg identifies one of the machine's register slots.
type Reg int

// The eight general-purpose registers, the program counter, and the
// condition-code register. G0 doubles as the data register the trap
// handlers read from and write to; G7 is where JSR stashes the return
// address. RegCount is an end marker, not a usable register.
const (
	G0 Reg = iota
	G1
	G2
	G3
	G4
	G5
	G6
	G7
	PC
	CC
	RegCount
)

// Condition-code values. CC is zero on a new machine; a flag-updating
// instruction always leaves CC as exactly one of the three, never a
// mixture and never zero.
const (
	CondPositive uint16 = 1 << 0
	CondZero     uint16 = 1 << 1
	CondNegative uint16 = 1 << 2
)

// LoadAddress is where the loader places an image by convention, absent an
// offset. Memory below this address is conventionally reserved for system
// use but is not enforced by the machine.
const LoadAddress uint16 = 0x3000

// ErrNoImage is returned by Run when the machine has not been given a
// starting program counter via the loader.
var ErrNoImage = errors.New("vm: no program counter set; load an image first")

// Machine is the LC-3: a register file, a bus, and a running flag. Guest
// execution mutates it only through Step, called directly or via Run; the
// loader and tests set state up front through Bus, SetReg and SetPC.
type Machine struct {
	Bus *mem.Bus

	registers [RegCount]uint16

	running bool

	// MaxSteps bounds the number of fetch-decode-execute cycles Run will
	// perform before giving up, zero meaning unlimited. Off by default to
	// preserve the original unbounded semantics; an embedder that needs to
	// guard against a guest program that never reaches HALT can set it.
	MaxSteps uint64
	steps    uint64

	// Stdin and Stdout back the GETC/OUT/PUTS/IN/IN_U16/OUT_U16 traps.
	// Defaulted to the process streams, but swappable so tests and the
	// debugger can redirect guest I/O without touching global state.
	Stdin  io.Reader
	Stdout io.Writer

	opcodeTable [16]opcodeHandler
	trapTable   [8]trapHandler
}

// New returns a Machine with zeroed registers and memory, wired to its own
// Bus, ready to have a program loaded into it.
func New() *Machine {
	m := &Machine{
		Bus:    &mem.Bus{},
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
	}
	m.opcodeTable = buildOpcodeTable()
	m.trapTable = buildTrapTable()
	return m
}

// Reg returns the current contents of r.
func (m *Machine) Reg(r Reg) uint16 {
	return m.registers[r]
}

// SetReg overwrites the contents of r.
func (m *Machine) SetReg(r Reg, value uint16) {
	m.registers[r] = value
}

// ConditionCode returns the current value of the condition-code register:
// always exactly one of CondPositive, CondZero, or CondNegative once any
// flag-updating instruction has executed.
func (m *Machine) ConditionCode() uint16 {
	return m.registers[CC]
}

// Halted reports whether the machine is not running: true after a HALT
// trap, and also for a new machine whose PC has not yet been set by SetPC.
func (m *Machine) Halted() bool {
	return !m.running
}

// Registers returns a snapshot of all register slots, for inspection by
// debug front ends. Mutating the returned array has no effect on m.
func (m *Machine) Registers() [RegCount]uint16 {
	return m.registers
}

// Memory returns the bus backing m, for debug front ends that want to page
// through guest memory without reaching past the machine.
func (m *Machine) Memory() *mem.Bus {
	return m.Bus
}

// SetPC sets the program counter directly and marks the machine runnable;
// used by the loader to start execution at the load address plus offset.
func (m *Machine) SetPC(addr uint16) {
	m.registers[PC] = addr
	m.running = true
}

// updateCC classifies the signed value now held in r and stores the
// matching one-bit flag in CC. Called by ADD, AND, NOT, LD, LDI, LDR, and
// LEA; never by stores, branches, jumps, subroutine-jumps, or traps -- a
// contract BR relies on to see the condition codes of the most recent
// arithmetic or load result.
func (m *Machine) updateCC(r Reg) {
	v := m.registers[r]
	switch {
	case v == 0:
		m.registers[CC] = CondZero
	case v&0x8000 != 0:
		m.registers[CC] = CondNegative
	default:
		m.registers[CC] = CondPositive
	}
}

// Step performs exactly one fetch-decode-execute cycle: it reads the word
// at PC, increments PC (wrapping modulo 2^16), decodes the opcode from the
// top 4 bits, and dispatches to the matching handler.
//
// The PC increment happens before the handler runs, so every PC-relative
// computation a handler performs uses the address of the *following*
// instruction -- the LC-3's defining timing quirk, and the reason this
// split exists as its own method rather than being inlined into Run.
func (m *Machine) Step() {
	instr := m.Bus.Read(m.registers[PC])
	m.registers[PC]++
	op := instr >> 12
	m.opcodeTable[op](m, instr)
}

// Run executes Step in a loop until a HALT trap clears the running flag,
// or, if MaxSteps is nonzero, until that many steps have elapsed. Run
// returns ErrNoImage if the machine is not running when called: it was
// never given a starting PC, or it has already halted.
func (m *Machine) Run() error {
	if !m.running {
		return ErrNoImage
	}
	for m.running {
		m.Step()
		m.steps++
		if m.MaxSteps != 0 && m.steps >= m.MaxSteps {
			return nil
		}
	}
	return nil
}

type opcodeHandler func(m *Machine, instr uint16)
type trapHandler func(m *Machine)
