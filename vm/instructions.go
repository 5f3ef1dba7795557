package vm

// The opcode handlers below are installed into Machine.opcodeTable by
// buildOpcodeTable. Each receives the full instruction word and is
// responsible for decoding whatever fields it needs; none return a value,
// and none can fail -- every 16-bit instruction word has defined behavior.
//
// PC has already been incremented by Step before any of these run, so a
// PC-relative handler is always computing relative to the address of the
// *following* instruction.

// br - Branch
func (m *Machine) br(instr uint16) {
	mask := decodeCondMask(instr)
	if mask&m.registers[CC] != 0 {
		m.registers[PC] += decodeOffset9(instr)
	}
}

// add - Addition
func (m *Machine) add(instr uint16) {
	dr := decodeDR(instr)
	sr1 := m.registers[decodeSR1(instr)]
	var operand uint16
	if decodeImmFlag(instr) {
		operand = decodeImm5(instr)
	} else {
		operand = m.registers[decodeSR2(instr)]
	}
	m.registers[dr] = sr1 + operand
	m.updateCC(dr)
}

// ld - Load
func (m *Machine) ld(instr uint16) {
	dr := decodeDR(instr)
	addr := m.registers[PC] + decodeOffset9(instr)
	m.registers[dr] = m.Bus.Read(addr)
	m.updateCC(dr)
}

// st - Store
func (m *Machine) st(instr uint16) {
	addr := m.registers[PC] + decodeOffset9(instr)
	m.Bus.Write(addr, m.registers[decodeDR(instr)])
}

// jsr - Jump to Subroutine (and JSRR)
func (m *Machine) jsr(instr uint16) {
	m.registers[G7] = m.registers[PC]
	if decodeLongFlag(instr) {
		m.registers[PC] += decodeOffset11(instr)
	} else {
		m.registers[PC] = m.registers[decodeSR1(instr)]
	}
}

// and - Bitwise AND
func (m *Machine) and(instr uint16) {
	dr := decodeDR(instr)
	sr1 := m.registers[decodeSR1(instr)]
	var operand uint16
	if decodeImmFlag(instr) {
		operand = decodeImm5(instr)
	} else {
		operand = m.registers[decodeSR2(instr)]
	}
	m.registers[dr] = sr1 & operand
	m.updateCC(dr)
}

// ldr - Load Register (base + offset)
func (m *Machine) ldr(instr uint16) {
	dr := decodeDR(instr)
	addr := m.registers[decodeBaseR(instr)] + decodeOffset6(instr)
	m.registers[dr] = m.Bus.Read(addr)
	m.updateCC(dr)
}

// str - Store Register (base + offset)
func (m *Machine) str(instr uint16) {
	addr := m.registers[decodeBaseR(instr)] + decodeOffset6(instr)
	m.Bus.Write(addr, m.registers[decodeDR(instr)])
}

// rti - Return from Interrupt. Supervisor mode is out of scope; RTI decodes
// and does nothing else.
func (m *Machine) rti(instr uint16) {}

// not - Bitwise NOT
func (m *Machine) not(instr uint16) {
	dr := decodeDR(instr)
	m.registers[dr] = ^m.registers[decodeSR1(instr)]
	m.updateCC(dr)
}

// ldi - Load Indirect
func (m *Machine) ldi(instr uint16) {
	dr := decodeDR(instr)
	ptr := m.registers[PC] + decodeOffset9(instr)
	addr := m.Bus.Read(ptr)
	m.registers[dr] = m.Bus.Read(addr)
	m.updateCC(dr)
}

// sti - Store Indirect
func (m *Machine) sti(instr uint16) {
	ptr := m.registers[PC] + decodeOffset9(instr)
	addr := m.Bus.Read(ptr)
	m.Bus.Write(addr, m.registers[decodeDR(instr)])
}

// jmp - Jump (and RET, when baseR is G7)
func (m *Machine) jmp(instr uint16) {
	m.registers[PC] = m.registers[decodeBaseR(instr)]
}

// res - Reserved opcode. No-op, by explicit design.
func (m *Machine) res(instr uint16) {}

// lea - Load Effective Address
func (m *Machine) lea(instr uint16) {
	dr := decodeDR(instr)
	m.registers[dr] = m.registers[PC] + decodeOffset9(instr)
	m.updateCC(dr)
}

// trap - System call. Looks up the low 8 bits in the trap table, falling
// back to a no-op for any vector outside [trapBase, trapBase+8) rather than
// indexing past the array.
func (m *Machine) trap(instr uint16) {
	vector := decodeTrapVector(instr)
	idx := int(vector) - trapBase
	if idx < 0 || idx >= len(m.trapTable) {
		return
	}
	if h := m.trapTable[idx]; h != nil {
		h(m)
	}
}
