// Package io provides the peripherals attached to a BytePusher machine:
// the ROM image (Rom), the display palette (Display), the audio output
// (Speaker), and the host keyboard layout (Keypad).
package io

import (
	"bytes"
	"io"
	"io/fs"

	"github.com/ezrec/bytepusher/machine"
)

// Rom is a raw BytePusher program image, loaded at address 0.
type Rom struct {
	Name string // Name of the image source.
	Data []byte // Image contents.
}

var _ io.ReaderFrom = &Rom{}

// ReadFrom replaces the image with the contents of the reader.
// Images larger than the machine's memory are rejected.
func (rom *Rom) ReadFrom(r io.Reader) (n int64, err error) {
	buff := &bytes.Buffer{}
	n, err = buff.ReadFrom(io.LimitReader(r, machine.MEMORY_SIZE+1))
	if err != nil {
		return
	}

	if buff.Len() > machine.MEMORY_SIZE {
		err = ErrRomSize
		return
	}

	rom.Data = buff.Bytes()

	return
}

// Unmarshal loads the image from a file in a file system.
func (rom *Rom) Unmarshal(filesys fs.FS, name string) (err error) {
	inf, err := filesys.Open(name)
	if err != nil {
		return
	}
	defer inf.Close()

	_, err = rom.ReadFrom(inf)
	if err != nil {
		return
	}

	rom.Name = name

	return
}

// Marshal writes the image.
func (rom *Rom) Marshal(w io.Writer) (err error) {
	_, err = w.Write(rom.Data)
	return
}

// Size returns the length of the image.
func (rom *Rom) Size() int {
	return len(rom.Data)
}
