// Package debugger provides two read-only front ends over a *vm.Machine: a
// full-screen bubbletea TUI and a liner-driven line-mode REPL. Neither
// mutates the machine except by calling its exported Step/Run, so the
// core's invariants hold regardless of which one drives it.
package debugger

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"github.com/Devansh3712/lc3/vm"
)

type model struct {
	m      *vm.Machine
	prevPC uint16
}

// Init is the first function that will be called. There is no initial
// command: the machine is expected to already have an image loaded.
func (md model) Init() tea.Cmd {
	return nil
}

// Update is called when a message is received. Space or j single-steps the
// machine; q quits.
func (md model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return md, tea.Quit
		case " ", "j":
			md.prevPC = md.m.Reg(vm.PC)
			md.m.Step()
			if md.m.Halted() {
				return md, tea.Quit
			}
		}
	}
	return md, nil
}

// renderPage renders a single 16-word page as a line. The current PC is
// highlighted.
func (md model) renderPage(start uint16) string {
	pc := md.m.Reg(vm.PC)
	words := md.readPage(start)
	s := fmt.Sprintf("%04x | ", start)
	for i, w := range words {
		addr := start + uint16(i)
		if addr == pc {
			s += fmt.Sprintf("[%04x] ", w)
		} else {
			s += fmt.Sprintf(" %04x  ", w)
		}
	}
	return s
}

// readPage fetches the 16 words starting at start. It falls back to
// reading word by word only when the page would run past 0xFFFF, since
// Bus.ReadRange can't express a wrapped slice.
func (md model) readPage(start uint16) []uint16 {
	b := md.m.Memory()
	if start < 0xFFF0 {
		return b.ReadRange(start, start+16)
	}
	words := make([]uint16, 16)
	for i := range words {
		words[i] = b.Read(start + uint16(i))
	}
	return words
}

func (md model) status() string {
	regs := md.m.Registers()
	cc := md.m.ConditionCode()
	flags := fmt.Sprintf("N:%v Z:%v P:%v",
		cc == vm.CondNegative, cc == vm.CondZero, cc == vm.CondPositive)

	return fmt.Sprintf(`
PC: %04x (was %04x)
G0: %04x  G1: %04x  G2: %04x  G3: %04x
G4: %04x  G5: %04x  G6: %04x  G7: %04x
%s
`,
		regs[vm.PC], md.prevPC,
		regs[vm.G0], regs[vm.G1], regs[vm.G2], regs[vm.G3],
		regs[vm.G4], regs[vm.G5], regs[vm.G6], regs[vm.G7],
		flags,
	)
}

func (md model) pageTable() string {
	pc := md.m.Reg(vm.PC)
	base := pc - (pc % 16)
	var pages []string
	for i := int32(-2); i <= 2; i++ {
		pages = append(pages, md.renderPage(uint16(int32(base)+i*16)))
	}
	return strings.Join(pages, "\n")
}

// View renders the debugger's UI: a page table beside the register panel,
// and a dump of the instruction about to execute.
func (md model) View() string {
	instr := md.m.Memory().Read(md.m.Reg(vm.PC))
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			md.pageTable(),
			md.status(),
		),
		"",
		spew.Sdump(Decode(instr)),
	)
}

// Run starts the interactive TUI over m, which must already have an image
// loaded and a program counter set.
func Run(m *vm.Machine) error {
	p := tea.NewProgram(model{m: m, prevPC: m.Reg(vm.PC)})
	_, err := p.Run()
	return err
}
