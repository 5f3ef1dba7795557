// Package loader reads a binary image of 16-bit words into a machine's
// memory.
package loader

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/Devansh3712/lc3/vm"
)

// maxWords is the largest payload the loader will ever place in memory:
// 0xFFFF - LoadAddress words, so an image loaded at offset 0 ends at 0xFFFE
// at most. The limit does not depend on the offset; with a nonzero offset,
// words that run past 0xFFFF wrap around to 0x0000.
const maxWords = 0x10000 - 1 - int(vm.LoadAddress)

// Load reads the image file at path as a sequence of little-endian 16-bit
// words and writes them into m's memory starting at vm.LoadAddress+offset.
// It then sets m's program counter to that address. The file carries no
// header; reading stops at EOF or after maxWords words, whichever comes
// first.
func Load(m *vm.Machine, path string, offset uint16) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("loader: open %s: %w", path, err)
	}
	defer f.Close()

	addr := vm.LoadAddress + offset
	var buf [2]byte
	for i := 0; i < maxWords; i++ {
		if _, err := io.ReadFull(f, buf[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return fmt.Errorf("loader: read %s: %w", path, err)
		}
		m.Bus.Write(addr, binary.LittleEndian.Uint16(buf[:]))
		addr++
	}

	m.SetPC(vm.LoadAddress + offset)
	return nil
}

// WriteImage writes words to path as a sequence of little-endian 16-bit
// words, the format Load reads back. Used by cmd/lc3asm to emit an
// assembled image.
func WriteImage(path string, words []uint16) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("loader: create %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, 2*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint16(buf[2*i:], w)
	}
	if _, err := f.Write(buf); err != nil {
		return fmt.Errorf("loader: write %s: %w", path, err)
	}
	return nil
}
