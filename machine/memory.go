// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package machine

import (
	"fmt"
	"iter"

	"github.com/ezrec/bytepusher/internal"
)

const (
	MEMORY_SIZE  = 1 << 24         // Size of the address space, in bytes.
	ADDRESS_MASK = MEMORY_SIZE - 1 // Mask of a 24-bit address.
	ADDRESS_SIZE = 3               // Bytes in an encoded address.
)

// Memory-mapped register offsets.
const (
	KEYBOARD        = 0x0 // 2 bytes, keys 0-7 then keys 8-15, LSB first.
	PROGRAM_COUNTER = 0x2 // 3 bytes, big-endian start address of the frame.
	PIXEL_PAGE      = 0x5 // 1 byte, page of the framebuffer.
	AUDIO_PAGE      = 0x6 // 2 bytes, big-endian page of the audio block.
)

var _memory_defines = map[string]string{
	"MEMORY_SIZE":     fmt.Sprintf("0x%x", MEMORY_SIZE),
	"KEYBOARD":        fmt.Sprintf("0x%x", KEYBOARD),
	"PROGRAM_COUNTER": fmt.Sprintf("0x%x", PROGRAM_COUNTER),
	"PIXEL_PAGE":      fmt.Sprintf("0x%x", PIXEL_PAGE),
	"AUDIO_PAGE":      fmt.Sprintf("0x%x", AUDIO_PAGE),
}

// Memory is the flat 16MiB address space.
//
// Every accessor masks its address with ADDRESS_MASK, so no access can
// leave the array.
type Memory [MEMORY_SIZE]byte

// Peek reads a byte.
func (mem *Memory) Peek(addr uint32) uint8 {
	return mem[addr&ADDRESS_MASK]
}

// Poke writes a byte.
func (mem *Memory) Poke(addr uint32, value uint8) {
	mem[addr&ADDRESS_MASK] = value
}

// Address reads the 24-bit big-endian address stored at addr.
// An address straddling the top of memory wraps to 0.
func (mem *Memory) Address(addr uint32) uint32 {
	return uint32(mem[addr&ADDRESS_MASK])<<16 |
		uint32(mem[(addr+1)&ADDRESS_MASK])<<8 |
		uint32(mem[(addr+2)&ADDRESS_MASK])
}

// SetAddress stores a 24-bit big-endian address at addr.
func (mem *Memory) SetAddress(addr uint32, value uint32) {
	mem[addr&ADDRESS_MASK] = uint8(value >> 16)
	mem[(addr+1)&ADDRESS_MASK] = uint8(value >> 8)
	mem[(addr+2)&ADDRESS_MASK] = uint8(value)
}

// Keyboard returns the packed key state at KEYBOARD.
// Bit k is key k.
func (mem *Memory) Keyboard() uint16 {
	return uint16(mem[KEYBOARD]) | uint16(mem[KEYBOARD+1])<<8
}

// SetKeyboard packs the key bitmap into KEYBOARD.
func (mem *Memory) SetKeyboard(keys uint16) {
	mem[KEYBOARD] = uint8(keys)
	mem[KEYBOARD+1] = uint8(keys >> 8)
}

// ProgramCounter returns the frame start address.
func (mem *Memory) ProgramCounter() uint32 {
	return mem.Address(PROGRAM_COUNTER)
}

// SetProgramCounter sets the frame start address.
func (mem *Memory) SetProgramCounter(pc uint32) {
	mem.SetAddress(PROGRAM_COUNTER, pc)
}

// PixelPage returns the framebuffer page selector.
func (mem *Memory) PixelPage() uint8 {
	return mem[PIXEL_PAGE]
}

// SetPixelPage sets the framebuffer page selector.
func (mem *Memory) SetPixelPage(page uint8) {
	mem[PIXEL_PAGE] = page
}

// AudioPage returns the audio page selector.
func (mem *Memory) AudioPage() uint16 {
	return uint16(mem[AUDIO_PAGE])<<8 | uint16(mem[AUDIO_PAGE+1])
}

// SetAudioPage sets the audio page selector.
func (mem *Memory) SetAudioPage(page uint16) {
	mem[AUDIO_PAGE] = uint8(page >> 8)
	mem[AUDIO_PAGE+1] = uint8(page)
}

// Defines returns the memory map as assembler equates.
func Defines() iter.Seq2[string, string] {
	return internal.Defines(_memory_defines, _machine_defines)
}
