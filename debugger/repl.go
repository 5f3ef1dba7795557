package debugger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/Devansh3712/lc3/vm"
)

// REPL drives m from a line-mode console, for terminals that can't host the
// bubbletea TUI (piped output, CI). Commands: step, regs, mem <addr>
// [count], run, quit.
func REPL(m *vm.Machine) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		cmd, err := line.Prompt("lc3> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return nil
			}
			return err
		}
		line.AppendHistory(cmd)

		fields := strings.Fields(cmd)
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "step", "s":
			m.Step()
			printRegs(m)

		case "run", "r":
			if err := m.Run(); err != nil {
				fmt.Println("error:", err)
			}
			printRegs(m)

		case "regs":
			printRegs(m)

		case "mem":
			if len(fields) < 2 {
				fmt.Println("usage: mem <addr> [count]")
				continue
			}
			addr, err := strconv.ParseUint(strings.TrimPrefix(fields[1], "0x"), 16, 32)
			if err != nil {
				fmt.Println("bad address:", fields[1])
				continue
			}
			count := 1
			if len(fields) > 2 {
				if n, err := strconv.Atoi(fields[2]); err == nil {
					count = n
				}
			}
			for i := 0; i < count; i++ {
				a := uint16(addr) + uint16(i)
				fmt.Printf("%04x: %04x\n", a, m.Memory().Read(a))
			}

		case "quit", "q":
			return nil

		default:
			fmt.Println("unknown command:", fields[0])
		}

		if m.Halted() {
			fmt.Println("machine halted")
		}
	}
}

func printRegs(m *vm.Machine) {
	regs := m.Registers()
	fmt.Printf("PC=%04x CC=%03b G0=%04x G1=%04x G2=%04x G3=%04x G4=%04x G5=%04x G6=%04x G7=%04x\n",
		regs[vm.PC], regs[vm.CC],
		regs[vm.G0], regs[vm.G1], regs[vm.G2], regs[vm.G3],
		regs[vm.G4], regs[vm.G5], regs[vm.G6], regs[vm.G7])
}
