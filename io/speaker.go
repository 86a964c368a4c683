package io

import (
	"io"
	"sync"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"

	"github.com/ezrec/bytepusher/machine"
)

const (
	FRAME_RATE      = 60                                 // Frames per second.
	SAMPLE_RATE     = machine.AUDIO_SAMPLES * FRAME_RATE // Audio samples per second.
	SILENCE         = 0x80                               // Sample value of silence.
	SPEAKER_BACKLOG = 16                                 // Default number of frames queued.
)

// Sample converts an unsigned 8-bit sample to the range [-1, 1).
func Sample(value uint8) float64 {
	return (float64(value) - SILENCE) / SILENCE
}

// Speaker queues audio blocks from the machine, and plays them back as a
// beep.Streamer at SAMPLE_RATE.
type Speaker struct {
	Backlog int // Frames queued before the oldest is dropped. Negative is unbounded.
	Dropped int // Frames dropped.

	mutex sync.Mutex
	queue []machine.AudioBlock
	pos   int
}

var _ beep.Streamer = &Speaker{}

// Format returns the stream format.
func (sp *Speaker) Format() beep.Format {
	return beep.Format{
		SampleRate:  beep.SampleRate(SAMPLE_RATE),
		NumChannels: 1,
		Precision:   1,
	}
}

// Reset empties the queue.
func (sp *Speaker) Reset() {
	sp.mutex.Lock()
	defer sp.mutex.Unlock()

	sp.queue = sp.queue[:0]
	sp.pos = 0
	sp.Dropped = 0
}

// Push queues a frame of audio.
func (sp *Speaker) Push(block *machine.AudioBlock) {
	sp.mutex.Lock()
	defer sp.mutex.Unlock()

	sp.queue = append(sp.queue, *block)

	backlog := sp.Backlog
	if backlog < 0 {
		return
	}
	if backlog == 0 {
		backlog = SPEAKER_BACKLOG
	}

	for len(sp.queue) > backlog {
		sp.queue = sp.queue[1:]
		sp.pos = 0
		sp.Dropped++
	}
}

// Len returns the number of queued samples.
func (sp *Speaker) Len() int {
	sp.mutex.Lock()
	defer sp.mutex.Unlock()

	return len(sp.queue)*machine.AUDIO_SAMPLES - sp.pos
}

// fill copies queued samples into samples, returning the count copied.
func (sp *Speaker) fill(samples [][2]float64) (n int) {
	sp.mutex.Lock()
	defer sp.mutex.Unlock()

	for n < len(samples) && len(sp.queue) > 0 {
		value := Sample(sp.queue[0][sp.pos])
		samples[n][0] = value
		samples[n][1] = value
		n++
		sp.pos++
		if sp.pos == machine.AUDIO_SAMPLES {
			sp.queue = sp.queue[1:]
			sp.pos = 0
		}
	}

	return
}

// Stream plays queued audio, and silence when the queue runs dry.
// It never ends.
func (sp *Speaker) Stream(samples [][2]float64) (n int, ok bool) {
	n = sp.fill(samples)
	clear(samples[n:])
	return len(samples), true
}

// Err always returns nil.
func (sp *Speaker) Err() error {
	return nil
}

// Drain returns a streamer that ends once the queue is empty.
func (sp *Speaker) Drain() beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		n = sp.fill(samples)
		return n, n > 0
	})
}

// EncodeWav drains the queue into a WAV file.
func (sp *Speaker) EncodeWav(w io.WriteSeeker) (err error) {
	return wav.Encode(w, sp.Drain(), sp.Format())
}
