package debugger

// opcodeNames mirrors vm's dispatch table ordering, for display only; the
// debugger never uses these names to decide behavior.
var opcodeNames = [16]string{
	0:  "BR",
	1:  "ADD",
	2:  "LD",
	3:  "ST",
	4:  "JSR",
	5:  "AND",
	6:  "LDR",
	7:  "STR",
	8:  "RTI",
	9:  "NOT",
	10: "LDI",
	11: "STI",
	12: "JMP",
	13: "RES",
	14: "LEA",
	15: "TRAP",
}

// Instruction is the decoded-for-display view of an instruction word, shown
// by the TUI instead of dumping the raw opcode byte. The REPL does not use it.
type Instruction struct {
	Word   uint16
	Opcode string
}

// Decode returns the display form of instr. It only needs the opcode name;
// operand decoding for execution lives in vm, unexported.
func Decode(instr uint16) Instruction {
	return Instruction{Word: instr, Opcode: opcodeNames[instr>>12]}
}
