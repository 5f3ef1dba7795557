// Package asm assembles the line-oriented LC-3 mnemonic syntax used by the
// bundled example programs (the syntax the original sources only ever wrote
// by hand in comments, e.g. "ADD R1,R0,x0") into the little-endian 16-bit
// word image format the loader package reads.
package asm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Devansh3712/lc3/bits"
)

// Error reports the source line an assembly failure occurred on.
type Error struct {
	File string
	Line int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

type statement struct {
	line  int
	label string
	op    string
	args  []string
}

// Assemble reads LC-3 assembly source from r and returns the origin address
// (set by .ORIG) and the assembled image words in program order, ready to
// be written out little-endian by the caller.
func Assemble(r io.Reader, filename string) (origin uint16, words []uint16, err error) {
	stmts, err := parse(r, filename)
	if err != nil {
		return 0, nil, err
	}

	origin, labels, size, err := firstPass(stmts, filename)
	if err != nil {
		return 0, nil, err
	}

	words, err = secondPass(stmts, filename, origin, labels, size)
	if err != nil {
		return 0, nil, err
	}
	return origin, words, nil
}

func parse(r io.Reader, filename string) ([]statement, error) {
	var stmts []statement
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, ';'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		st := statement{line: lineNo}

		// A label is any leading field that is not an opcode or directive;
		// distinguished by not starting with '.' and not matching a known
		// mnemonic.
		if !strings.HasPrefix(fields[0], ".") && !isMnemonic(fields[0]) {
			st.label = fields[0]
			fields = fields[1:]
			if len(fields) == 0 {
				return nil, &Error{filename, lineNo, "label with no instruction"}
			}
		}

		st.op = strings.ToUpper(fields[0])
		if len(fields) > 1 {
			operands := strings.Join(fields[1:], " ")
			for _, a := range strings.Split(operands, ",") {
				st.args = append(st.args, strings.TrimSpace(a))
			}
		}
		stmts = append(stmts, st)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("asm: read %s: %w", filename, err)
	}
	return stmts, nil
}

// size reports how many words op emits: 1 for every instruction and .FILL,
// N for .BLKW N, 0 for directives that only set state (.ORIG, .END).
func size(st statement, filename string) (int, error) {
	switch st.op {
	case ".ORIG", ".END":
		return 0, nil
	case ".BLKW":
		if len(st.args) != 1 {
			return 0, &Error{filename, st.line, ".BLKW requires one operand"}
		}
		n, err := strconv.Atoi(st.args[0])
		if err != nil {
			return 0, &Error{filename, st.line, "bad .BLKW count: " + st.args[0]}
		}
		return n, nil
	default:
		return 1, nil
	}
}

func firstPass(stmts []statement, filename string) (origin uint16, labels map[string]uint16, words int, err error) {
	labels = map[string]uint16{}
	if len(stmts) == 0 || stmts[0].op != ".ORIG" {
		return 0, nil, 0, &Error{filename, 1, "program must begin with .ORIG"}
	}
	if len(stmts[0].args) != 1 {
		return 0, nil, 0, &Error{filename, stmts[0].line, ".ORIG requires one operand"}
	}
	o, err := parseImmediate(stmts[0].args[0])
	if err != nil {
		return 0, nil, 0, &Error{filename, stmts[0].line, "bad .ORIG operand: " + err.Error()}
	}
	origin = o

	addr := origin
	for _, st := range stmts[1:] {
		if st.op == ".END" {
			break
		}
		if st.label != "" {
			if _, dup := labels[st.label]; dup {
				return 0, nil, 0, &Error{filename, st.line, "duplicate label " + st.label}
			}
			labels[st.label] = addr
		}
		n, err := size(st, filename)
		if err != nil {
			return 0, nil, 0, err
		}
		addr += uint16(n)
	}
	return origin, labels, int(addr - origin), nil
}

func secondPass(stmts []statement, filename string, origin uint16, labels map[string]uint16, total int) ([]uint16, error) {
	words := make([]uint16, 0, total)
	addr := origin

	emit := func(w uint16) { words = append(words, w); addr++ }

	for _, st := range stmts[1:] {
		if st.op == ".END" {
			break
		}
		// addr after this instruction fetches, used for PC-relative offsets
		next := addr + 1

		switch st.op {
		case ".FILL":
			if len(st.args) != 1 {
				return nil, &Error{filename, st.line, ".FILL requires one operand"}
			}
			v, err := resolveOperand(st.args[0], labels, next, filename, st.line)
			if err != nil {
				return nil, err
			}
			emit(v)

		case ".BLKW":
			n, err := size(st, filename)
			if err != nil {
				return nil, err
			}
			for i := 0; i < n; i++ {
				emit(0)
			}

		default:
			w, err := encode(st, labels, next, filename)
			if err != nil {
				return nil, err
			}
			emit(w)
		}
	}
	return words, nil
}

func isMnemonic(tok string) bool {
	switch strings.ToUpper(tok) {
	case "ADD", "AND", "NOT", "LD", "LDI", "LDR", "LEA", "ST", "STI", "STR",
		"JMP", "JSR", "JSRR", "RET", "TRAP", "HALT", "RTI",
		"BR", "BRN", "BRZ", "BRP", "BRNZ", "BRNP", "BRZP", "BRNZP",
		".ORIG", ".FILL", ".BLKW", ".END":
		return true
	}
	return false
}

func reg(tok string) (bits.Word, error) {
	tok = strings.ToUpper(strings.TrimSpace(tok))
	if len(tok) == 2 && tok[0] == 'R' && tok[1] >= '0' && tok[1] <= '7' {
		return bits.Word(tok[1] - '0'), nil
	}
	return 0, fmt.Errorf("not a register: %s", tok)
}

// parseImmediate parses LC-3 numeric literals: #123 / #-5 (decimal), x1F /
// xFFFF (hex, case-insensitive).
func parseImmediate(tok string) (uint16, error) {
	tok = strings.TrimSpace(tok)
	switch {
	case strings.HasPrefix(tok, "#"):
		n, err := strconv.ParseInt(tok[1:], 10, 32)
		if err != nil {
			return 0, err
		}
		return uint16(n), nil
	case strings.HasPrefix(strings.ToLower(tok), "x"):
		n, err := strconv.ParseUint(tok[1:], 16, 32)
		if err != nil {
			return 0, err
		}
		return uint16(n), nil
	default:
		n, err := strconv.ParseInt(tok, 10, 32)
		if err != nil {
			return 0, err
		}
		return uint16(n), nil
	}
}

// resolveOperand accepts either a numeric literal or a label reference,
// returning the label's absolute address when it is one.
func resolveOperand(tok string, labels map[string]uint16, next uint16, filename string, line int) (uint16, error) {
	if v, err := parseImmediate(tok); err == nil {
		return v, nil
	}
	addr, ok := labels[tok]
	if !ok {
		return 0, &Error{filename, line, "undefined label " + tok}
	}
	return addr, nil
}

// pcOffset resolves tok (a label or a numeric literal) to a PC-relative
// offset of the given width, relative to next, the address of the
// instruction following this one.
func pcOffset(tok string, labels map[string]uint16, next uint16, width int, filename string, line int) (uint16, error) {
	target, err := resolveOperand(tok, labels, next, filename, line)
	if err != nil {
		return 0, err
	}
	offset := target - next
	max := int32(1) << (width - 1)
	signed := int32(int16(offset))
	if signed >= max || signed < -max {
		return 0, &Error{filename, line, fmt.Sprintf("label %s out of range for %d-bit offset", tok, width)}
	}
	return offset & ((1 << uint(width)) - 1), nil
}

// imm parses an immediate operand and checks it fits in width signed bits.
func imm(tok string, width int, filename string, line int) (uint16, error) {
	v, err := parseImmediate(tok)
	if err != nil {
		return 0, &Error{filename, line, "bad immediate: " + tok}
	}
	max := int32(1) << (width - 1)
	signed := int32(int16(v))
	if signed >= max || signed < -max {
		return 0, &Error{filename, line, fmt.Sprintf("immediate %s out of range for %d bits", tok, width)}
	}
	return v & ((1 << uint(width)) - 1), nil
}

func condMask(op string) uint16 {
	op = strings.TrimPrefix(strings.ToUpper(op), "BR")
	if op == "" {
		return 0b111
	}
	var mask uint16
	if strings.Contains(op, "N") {
		mask |= 0b100
	}
	if strings.Contains(op, "Z") {
		mask |= 0b010
	}
	if strings.Contains(op, "P") {
		mask |= 0b001
	}
	return mask
}

// encode assembles a single instruction statement into its 16-bit word,
// resolving any label operand against next, the address following this
// instruction (the value PC holds once the fetch step has run).
func encode(st statement, labels map[string]uint16, next uint16, filename string) (uint16, error) {
	args := st.args
	need := func(n int) error {
		if len(args) != n {
			return &Error{filename, st.line, fmt.Sprintf("%s expects %d operand(s), got %d", st.op, n, len(args))}
		}
		return nil
	}

	switch {
	case strings.HasPrefix(st.op, "BR"):
		if err := need(1); err != nil {
			return 0, err
		}
		off, err := pcOffset(args[0], labels, next, 9, filename, st.line)
		if err != nil {
			return 0, err
		}
		return condMask(st.op)<<9 | off, nil

	case st.op == "ADD" || st.op == "AND":
		if err := need(3); err != nil {
			return 0, err
		}
		dr, err := reg(args[0])
		if err != nil {
			return 0, &Error{filename, st.line, err.Error()}
		}
		sr1, err := reg(args[1])
		if err != nil {
			return 0, &Error{filename, st.line, err.Error()}
		}
		base := uint16(0b0001)
		if st.op == "AND" {
			base = 0b0101
		}
		if sr2, err := reg(args[2]); err == nil {
			return base<<12 | uint16(dr)<<9 | uint16(sr1)<<6 | uint16(sr2), nil
		}
		im, err := imm(args[2], 5, filename, st.line)
		if err != nil {
			return 0, err
		}
		return base<<12 | uint16(dr)<<9 | uint16(sr1)<<6 | 1<<5 | im, nil

	case st.op == "NOT":
		if err := need(2); err != nil {
			return 0, err
		}
		dr, err := reg(args[0])
		if err != nil {
			return 0, &Error{filename, st.line, err.Error()}
		}
		sr, err := reg(args[1])
		if err != nil {
			return 0, &Error{filename, st.line, err.Error()}
		}
		return 0b1001<<12 | uint16(dr)<<9 | uint16(sr)<<6 | 0x3F, nil

	case st.op == "LD" || st.op == "LDI" || st.op == "LEA" || st.op == "ST" || st.op == "STI":
		if err := need(2); err != nil {
			return 0, err
		}
		dr, err := reg(args[0])
		if err != nil {
			return 0, &Error{filename, st.line, err.Error()}
		}
		off, err := pcOffset(args[1], labels, next, 9, filename, st.line)
		if err != nil {
			return 0, err
		}
		opbits := map[string]uint16{"LD": 0b0010, "LDI": 0b1010, "LEA": 0b1110, "ST": 0b0011, "STI": 0b1011}[st.op]
		return opbits<<12 | uint16(dr)<<9 | off, nil

	case st.op == "LDR" || st.op == "STR":
		if err := need(3); err != nil {
			return 0, err
		}
		dr, err := reg(args[0])
		if err != nil {
			return 0, &Error{filename, st.line, err.Error()}
		}
		base, err := reg(args[1])
		if err != nil {
			return 0, &Error{filename, st.line, err.Error()}
		}
		off, err := imm(args[2], 6, filename, st.line)
		if err != nil {
			return 0, err
		}
		opbits := uint16(0b0110)
		if st.op == "STR" {
			opbits = 0b0111
		}
		return opbits<<12 | uint16(dr)<<9 | uint16(base)<<6 | off, nil

	case st.op == "JMP" || st.op == "RET":
		baseR := "R7"
		if st.op == "JMP" {
			if err := need(1); err != nil {
				return 0, err
			}
			baseR = args[0]
		} else if err := need(0); err != nil {
			return 0, err
		}
		base, err := reg(baseR)
		if err != nil {
			return 0, &Error{filename, st.line, err.Error()}
		}
		return 0b1100<<12 | uint16(base)<<6, nil

	case st.op == "JSR":
		if err := need(1); err != nil {
			return 0, err
		}
		off, err := pcOffset(args[0], labels, next, 11, filename, st.line)
		if err != nil {
			return 0, err
		}
		return 0b0100<<12 | 1<<11 | off, nil

	case st.op == "JSRR":
		if err := need(1); err != nil {
			return 0, err
		}
		base, err := reg(args[0])
		if err != nil {
			return 0, &Error{filename, st.line, err.Error()}
		}
		return 0b0100<<12 | uint16(base)<<6, nil

	case st.op == "TRAP":
		if err := need(1); err != nil {
			return 0, err
		}
		v, err := parseImmediate(args[0])
		if err != nil {
			return 0, &Error{filename, st.line, "bad trap vector: " + args[0]}
		}
		return 0b1111<<12 | (v & 0xFF), nil

	case st.op == "HALT":
		if err := need(0); err != nil {
			return 0, err
		}
		return 0b1111<<12 | 0x25, nil

	case st.op == "RTI":
		if err := need(0); err != nil {
			return 0, err
		}
		return 0b1000 << 12, nil

	default:
		return 0, &Error{filename, st.line, "unknown mnemonic " + st.op}
	}
}
