// tone_source.go - Deterministic sine tone input

package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/intuitionamiga/IntuitionPitch/pitchdetect"
)

const toneAmplitude = 0.4

// ToneSource synthesises a mix of sine tones into the sample ring, one
// cycle's worth of samples per Pump. It stands in for a microphone.
type ToneSource struct {
	rate     int
	perCycle int

	mu     sync.Mutex
	freqs  []float64
	muted  bool
	sample uint64
	chunk  []float32
}

func NewToneSource(rate, tps int, freqs ...float64) *ToneSource {
	if tps < 1 {
		tps = 60
	}
	perCycle := rate / tps
	if perCycle < 1 {
		perCycle = 1
	}
	return &ToneSource{
		rate:     rate,
		perCycle: perCycle,
		freqs:    append([]float64(nil), freqs...),
		chunk:    make([]float32, perCycle),
	}
}

func (t *ToneSource) Pump(ring *SampleRing) {
	t.mu.Lock()
	t.fill(t.chunk)
	t.mu.Unlock()
	ring.Write(t.chunk)
}

func (t *ToneSource) Close() error {
	return nil
}

// Fill writes the next len(dst) samples of the tone mix.
func (t *ToneSource) Fill(dst []float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fill(dst)
}

func (t *ToneSource) fill(dst []float32) {
	if t.muted || len(t.freqs) == 0 {
		clear(dst)
		t.sample += uint64(len(dst))
		return
	}
	amp := toneAmplitude / float64(len(t.freqs))
	for i := range dst {
		tm := float64(t.sample) / float64(t.rate)
		var v float64
		for _, f := range t.freqs {
			v += amp * math.Sin(2*math.Pi*f*tm)
		}
		dst[i] = float32(v)
		t.sample++
	}
}

func (t *ToneSource) Frequencies() []float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]float64(nil), t.freqs...)
}

func (t *ToneSource) SetFrequencies(freqs ...float64) {
	t.mu.Lock()
	t.freqs = append(t.freqs[:0], freqs...)
	t.mu.Unlock()
}

// Transpose shifts every tone by the given number of semitones.
func (t *ToneSource) Transpose(semitones int) {
	ratio := math.Pow(2, float64(semitones)/12)
	t.mu.Lock()
	for i := range t.freqs {
		t.freqs[i] *= ratio
	}
	t.mu.Unlock()
}

func (t *ToneSource) SetMuted(muted bool) {
	t.mu.Lock()
	t.muted = muted
	t.mu.Unlock()
}

func (t *ToneSource) Muted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.muted
}

// parseToneList parses "440,660" or "A4,E5" into frequencies in Hz.
func parseToneList(s string) ([]float64, error) {
	var freqs []float64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if f, err := strconv.ParseFloat(field, 64); err == nil {
			if f <= 0 {
				return nil, fmt.Errorf("tone frequency must be positive: %q", field)
			}
			freqs = append(freqs, f)
			continue
		}
		note, err := pitchdetect.ParseNote(field)
		if err != nil {
			return nil, err
		}
		freqs = append(freqs, pitchdetect.MIDIToFreq(float64(note)))
	}
	return freqs, nil
}

func formatFreqs(freqs []float64) string {
	parts := make([]string, len(freqs))
	for i, f := range freqs {
		parts[i] = fmt.Sprintf("%.1fHz", f)
	}
	return strings.Join(parts, ",")
}
