package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Devansh3712/lc3/asm"
	"github.com/Devansh3712/lc3/loader"
)

func main() {
	root := &cobra.Command{
		Use:   "lc3asm <source> <output>",
		Short: "Assemble LC-3 mnemonic source into a binary image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer src.Close()

			_, words, err := asm.Assemble(src, args[0])
			if err != nil {
				return err
			}

			if err := loader.WriteImage(args[1], words); err != nil {
				return err
			}
			fmt.Printf("wrote %d words to %s\n", len(words), args[1])
			return nil
		},
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
