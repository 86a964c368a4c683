// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/ezrec/bytepusher/emulator"
	"github.com/ezrec/bytepusher/io"
	"github.com/ezrec/bytepusher/machine"
)

func main() {
	var compile string
	var rom string
	var save bool
	var frames int
	var keys string
	var output string
	var wav string
	var realtime bool
	var verbose bool

	flag.StringVar(&compile, "c", "", ".bpa file to assemble")
	flag.StringVar(&rom, "r", "", ".bp ROM image to use")
	flag.BoolVar(&save, "s", false, "Save assembled ROM image, do not execute")
	flag.IntVar(&frames, "n", 60, "Frames to run (0 runs until interrupted)")
	flag.StringVar(&keys, "k", "", "Keys held down (hex digits)")
	flag.StringVar(&output, "o", "", "Final frame image output (.png or .bmp)")
	flag.StringVar(&wav, "w", "", "Audio output (.wav)")
	flag.BoolVar(&realtime, "t", false, "Run at 60 frames per second")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if save && (len(compile) == 0 || len(rom) == 0) {
		log.Fatalf("%v: -s requires -c and -r", os.Args[0])
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	if realtime {
		emu.Rate = io.FRAME_RATE
	}

	// Assemble a new program.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &machine.Assembler{Verbose: verbose}
		for equ, value := range emu.Defines() {
			asm.Predefine(equ, value)
		}

		prog, err := asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}

		emu.Rom.Name = compile
		emu.Rom.Data = prog.Binary()

		if save {
			ouf, err := os.Create(rom)
			if err != nil {
				log.Fatalf("%v: %v", rom, err)
			}
			defer ouf.Close()

			w := bufio.NewWriter(ouf)
			err = emu.Rom.Marshal(w)
			if err == nil {
				err = w.Flush()
			}
			if err != nil {
				log.Fatalf("%v: %v", rom, err)
			}
			return
		}
	} else if len(rom) != 0 {
		err := emu.Rom.Unmarshal(os.DirFS(filepath.Dir(rom)), filepath.Base(rom))
		if err != nil {
			log.Fatalf("%v: %v", rom, err)
		}
	}

	if len(output) != 0 && io.FormatOf(output) != "png" && io.FormatOf(output) != "bmp" {
		log.Fatalf("%v: %v", output, io.ErrImageFormat)
	}

	err := emu.Reset()
	if err != nil {
		log.Fatalf("%v: %v", emu.Rom.Name, err)
	}

	held, err := emu.Keypad.Parse(keys)
	if err != nil {
		log.Fatalf("%v: %v", keys, err)
	}
	for _, index := range held {
		err = emu.Machine.SetKey(index, true)
		if err != nil {
			log.Fatalf("%v: %v", keys, err)
		}
	}

	if len(wav) != 0 {
		// Keep every frame of audio.
		emu.Speaker.Backlog = frames
		if frames == 0 {
			emu.Speaker.Backlog = -1
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = emu.Run(ctx, frames)
	if err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}

	if len(output) != 0 {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()

		err = emu.Display.Encode(ouf, io.FormatOf(output))
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
	}

	if len(wav) != 0 {
		ouf, err := os.Create(wav)
		if err != nil {
			log.Fatalf("%v: %v", wav, err)
		}
		defer ouf.Close()

		err = emu.Speaker.EncodeWav(ouf)
		if err != nil {
			log.Fatalf("%v: %v", wav, err)
		}
	}
}
