// Package beep plays short audible cues for hotkey activity.
package beep

import (
	"math"
	"sync/atomic"
)

var disabled atomic.Bool

func Disable() { disabled.Store(true) }

// Sound selects a cue.
type Sound int

const (
	Activate Sound = iota
	Release
	Error
)

const sampleRate = 44100

type tone struct {
	freq   float64
	volume float64
	decay  float64
	dur    float64 // seconds per beep
	double bool    // two beeps separated by gap
}

const gap = 0.05

var tones = map[Sound]tone{
	Activate: {freq: 1200, volume: 0.5, decay: 60, dur: 0.2},
	Release:  {freq: 900, volume: 0.5, decay: 40, dur: 0.2},
	Error:    {freq: 350, volume: 0.6, decay: 30, dur: 0.08, double: true},
}

// Play starts s in the background. It is a no-op once Disable was called or
// when the platform has no audio output.
func Play(s Sound) {
	if disabled.Load() {
		return
	}
	play(s)
}

// samples renders s as mono signed 16-bit PCM.
func samples(s Sound) []int16 {
	t, ok := tones[s]
	if !ok {
		return nil
	}
	one := tick(t)
	if !t.double {
		return one
	}
	out := make([]int16, 0, 2*len(one)+int(sampleRate*gap))
	out = append(out, one...)
	out = append(out, make([]int16, int(sampleRate*gap))...)
	return append(out, one...)
}

func tick(t tone) []int16 {
	n := int(sampleRate * t.dur)
	out := make([]int16, n)
	for i := range out {
		x := float64(i) / sampleRate
		env := math.Exp(-x * t.decay)
		out[i] = int16(math.Sin(2*math.Pi*t.freq*x) * 32767 * t.volume * env)
	}
	return out
}

func stereo(mono []int16) []int16 {
	out := make([]int16, 2*len(mono))
	for i, s := range mono {
		out[2*i], out[2*i+1] = s, s
	}
	return out
}

func littleEndian(mono []int16) []byte {
	out := make([]byte, 2*len(mono))
	for i, s := range mono {
		out[2*i] = byte(s)
		out[2*i+1] = byte(s >> 8)
	}
	return out
}
