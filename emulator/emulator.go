// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"fmt"
	"iter"
	"log"
	"maps"
	"time"

	"github.com/ezrec/bytepusher/internal"
	"github.com/ezrec/bytepusher/io"
	"github.com/ezrec/bytepusher/machine"
)

var _emulator_defines = map[string]string{
	"FRAME_RATE":  fmt.Sprintf("%v", io.FRAME_RATE),
	"SAMPLE_RATE": fmt.Sprintf("%v", io.SAMPLE_RATE),
}

// Emulator state. Machine + peripherals.
type Emulator struct {
	Verbose          bool // If set, enables verbose logging.
	Rate             int  // Frames per second when running. Zero runs unpaced.
	*machine.Machine      // Reference to the machine.

	Rom     io.Rom     // Program image, loaded on Reset.
	Display io.Display // Last presented frame.
	Speaker io.Speaker // Audio queue.
	Keypad  io.Keypad  // Host key layout.

	// Steps holds the instructions executed by the last frame.
	Steps int

	events []keyEvent // Key changes applied at the next frame.
}

// keyEvent is a pending key change.
type keyEvent struct {
	Index   int
	Pressed bool
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Machine: machine.NewMachine(),
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.Chain(maps.All(_emulator_defines), machine.Defines())
}

// Reset the machine, and load the ROM image.
func (emu *Emulator) Reset() (err error) {
	emu.Machine.Reset()
	emu.Speaker.Reset()
	emu.Steps = 0
	emu.events = emu.events[:0]

	err = emu.Machine.Load(emu.Rom.Data)
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("emulator: reset, %v loaded (%d bytes)", emu.Rom.Name, emu.Rom.Size())
	}

	return
}

// Press queues a host key change for the next frame.
func (emu *Emulator) Press(key rune, pressed bool) (err error) {
	index, ok := emu.Keypad.Lookup(key)
	if !ok {
		err = io.ErrKeyUnknown(key)
		return
	}

	emu.events = append(emu.events, keyEvent{Index: index, Pressed: pressed})

	return
}

// Pending returns the number of queued key changes.
func (emu *Emulator) Pending() int {
	return len(emu.events)
}

// Tick applies queued key changes, runs a single frame, and presents it.
// A key change the machine rejects fails the frame before it runs.
func (emu *Emulator) Tick() (err error) {
	frame := emu.Machine.Frames()
	defer func() {
		if err != nil {
			err = &ErrFrame{Frame: frame, Err: err}
		}
	}()

	events := emu.events
	emu.events = nil
	for _, event := range events {
		err = emu.Machine.SetKey(event.Index, event.Pressed)
		if err != nil {
			return
		}
	}

	emu.Steps = emu.Machine.AdvanceFrame()

	fb := emu.Machine.Framebuffer()
	emu.Display.Update(&fb)

	audio := emu.Machine.Audio()
	emu.Speaker.Push(&audio)

	if emu.Verbose {
		mem := emu.Machine.Memory
		log.Printf("emulator: frame %d: keys %04x, pc %06x, pixel %02x, audio %04x, steps %d",
			frame, emu.Machine.Keys(), mem.ProgramCounter(), mem.PixelPage(), mem.AudioPage(), emu.Steps)
	}

	return
}

// Run ticks frames until the count is reached, or the context is done.
// A frame count of zero runs until the context is done.
func (emu *Emulator) Run(ctx context.Context, frames int) (err error) {
	var tick <-chan time.Time
	if emu.Rate > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(emu.Rate))
		defer ticker.Stop()
		tick = ticker.C
	}

	for n := 0; frames == 0 || n < frames; n++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				err = ctx.Err()
				return
			case <-tick:
			}
		} else if err = ctx.Err(); err != nil {
			return
		}

		err = emu.Tick()
		if err != nil {
			return
		}
	}

	return
}
