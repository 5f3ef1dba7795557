package vm

import "github.com/Devansh3712/lc3/bits"

// The decode* functions pull the named field out of a 16-bit instruction
// word. They mirror the bit layout in the instruction format table: DR/SR1
// at bits 11-9/8-6, the imm-mode flag at bit 5, and so on. Every function
// is pure and total -- there is no invalid 16-bit instruction word.

func decodeOpcode(instr uint16) uint16 { return instr >> 12 }

func decodeDR(instr uint16) Reg  { return Reg(bits.Range(instr, bits.I5, bits.I7)) }
func decodeSR1(instr uint16) Reg { return Reg(bits.Range(instr, bits.I8, bits.I10)) }
func decodeSR2(instr uint16) Reg { return Reg(bits.Last(instr, bits.I3)) }
func decodeBaseR(instr uint16) Reg { return decodeSR1(instr) }

func decodeImmFlag(instr uint16) bool  { return bits.IsSet(instr, bits.I11) }
func decodeLongFlag(instr uint16) bool { return bits.IsSet(instr, bits.I5) }

func decodeImm5(instr uint16) uint16 {
	return bits.SignExtend(bits.Last(instr, bits.I5), 5)
}

func decodeOffset6(instr uint16) uint16 {
	return bits.SignExtend(bits.Last(instr, bits.I6), 6)
}

func decodeOffset9(instr uint16) uint16 {
	return bits.SignExtend(bits.Last(instr, bits.I9), 9)
}

func decodeOffset11(instr uint16) uint16 {
	return bits.SignExtend(bits.Last(instr, bits.I11), 11)
}

func decodeCondMask(instr uint16) uint16 { return bits.Range(instr, bits.I5, bits.I7) }

func decodeTrapVector(instr uint16) uint16 { return bits.Last(instr, bits.I8) }
