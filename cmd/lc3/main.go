package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Devansh3712/lc3/debugger"
	"github.com/Devansh3712/lc3/loader"
	"github.com/Devansh3712/lc3/vm"
)

func main() {
	var offset uint16
	var useDebug bool
	var useREPL bool

	root := &cobra.Command{
		Use:   "lc3 <image>",
		Short: "Run an LC-3 image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := vm.New()
			if err := loader.Load(m, args[0], offset); err != nil {
				return err
			}

			switch {
			case useDebug:
				return debugger.Run(m)
			case useREPL:
				return debugger.REPL(m)
			default:
				return m.Run()
			}
		},
	}
	root.Flags().Uint16Var(&offset, "offset", 0, "load offset added to 0x3000")
	root.Flags().BoolVar(&useDebug, "debug", false, "launch the interactive TUI instead of running headless")
	root.Flags().BoolVar(&useREPL, "repl", false, "launch the line-mode REPL instead of running headless")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
