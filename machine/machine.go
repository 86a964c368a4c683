// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package machine

import (
	"fmt"
)

const (
	FRAME_INSTRUCTIONS = 65536 // Instruction budget of a single frame.
	KEY_COUNT          = 16    // Number of keys.
	SCREEN_WIDTH       = 256   // Pixels per row.
	SCREEN_HEIGHT      = 256   // Rows per frame.
	AUDIO_SAMPLES      = 256   // Audio samples per frame.
)

var _machine_defines = map[string]string{
	"FRAME_INSTRUCTIONS": fmt.Sprintf("%v", FRAME_INSTRUCTIONS),
	"SCREEN_WIDTH":       fmt.Sprintf("%v", SCREEN_WIDTH),
	"SCREEN_HEIGHT":      fmt.Sprintf("%v", SCREEN_HEIGHT),
	"AUDIO_SAMPLES":      fmt.Sprintf("%v", AUDIO_SAMPLES),
}

// Framebuffer is a frame of pixel values, indexed [y][x].
type Framebuffer [SCREEN_HEIGHT][SCREEN_WIDTH]uint8

// At returns the pixel at column x, row y.
func (fb *Framebuffer) At(x, y uint8) uint8 {
	return fb[y][x]
}

// AudioBlock is a frame of 8-bit unsigned PCM samples.
type AudioBlock [AUDIO_SAMPLES]uint8

// Machine is the BytePusher virtual machine.
//
// Memory holds all authoritative state, including the memory-mapped
// registers. The framebuffer and audio block are read out of Memory at the
// end of each frame.
type Machine struct {
	Memory *Memory // Address space.

	keys        [KEY_COUNT]bool
	framebuffer Framebuffer
	audio       AudioBlock
	frames      int
}

// NewMachine creates a new, zeroed, machine.
func NewMachine() (vm *Machine) {
	vm = &Machine{
		Memory: &Memory{},
	}

	return
}

// Reset restores the machine to its construction state.
func (vm *Machine) Reset() {
	clear(vm.Memory[:])
	clear(vm.keys[:])
	vm.framebuffer = Framebuffer{}
	vm.audio = AudioBlock{}
	vm.frames = 0
}

// Load copies a program image to the start of memory.
// Memory past the image is left as-is. An image larger than MEMORY_SIZE is
// rejected without modifying memory.
func (vm *Machine) Load(data []byte) (err error) {
	if len(data) > MEMORY_SIZE {
		err = ErrProgramSize(len(data))
		return
	}

	copy(vm.Memory[:], data)

	return
}

// SetKey sets the pressed state of a key.
func (vm *Machine) SetKey(index int, pressed bool) (err error) {
	if index < 0 || index >= KEY_COUNT {
		err = ErrKeyInvalid(index)
		return
	}

	vm.keys[index] = pressed

	return
}

// Keys returns the key state as a bitmap, bit k for key k.
func (vm *Machine) Keys() (keys uint16) {
	for n, pressed := range vm.keys {
		if pressed {
			keys |= 1 << n
		}
	}
	return
}

// Fetch decodes the instruction at pc.
func (vm *Machine) Fetch(pc uint32) Instruction {
	return Decode(vm.Memory, pc)
}

// AdvanceFrame runs a single frame:
//   - Packs the key state into KEYBOARD.
//   - Executes from PROGRAM_COUNTER until a halt instruction, or until
//     FRAME_INSTRUCTIONS instructions have run.
//   - Reads out the framebuffer page and the audio page.
//
// Returns the number of instructions executed.
func (vm *Machine) AdvanceFrame() (steps int) {
	mem := vm.Memory

	mem.SetKeyboard(vm.Keys())

	pc := mem.ProgramCounter()
	for steps < FRAME_INSTRUCTIONS {
		in := Decode(mem, pc)
		if in.Halts(pc) {
			break
		}
		mem[in.Dest] = mem[in.Source]
		pc = in.Jump
		steps++
	}

	vm.readOut()
	vm.frames++

	return
}

// readOut copies the selected pixel and audio pages out of memory.
func (vm *Machine) readOut() {
	mem := vm.Memory

	page := uint32(mem.PixelPage()) << 16
	for y := range SCREEN_HEIGHT {
		row := page | uint32(y)<<8
		copy(vm.framebuffer[y][:], mem[row:row+SCREEN_WIDTH])
	}

	sound := uint32(mem.AudioPage()) << 8
	copy(vm.audio[:], mem[sound:sound+AUDIO_SAMPLES])
}

// Framebuffer returns a copy of the last frame.
func (vm *Machine) Framebuffer() Framebuffer {
	return vm.framebuffer
}

// Audio returns a copy of the last frame's audio samples.
func (vm *Machine) Audio() AudioBlock {
	return vm.audio
}

// Frames returns the number of frames run since the last Reset.
func (vm *Machine) Frames() int {
	return vm.frames
}
