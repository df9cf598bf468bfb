// notes.go - Frequency, MIDI note and note name conversions

// Package pitchdetect provides pitch detectors that feed pitchinput engines:
// an FFT detector for sampled audio and a held-note detector for MIDI input.
package pitchdetect

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrBadConfig = errors.New("pitchdetect: invalid configuration")
	ErrBadNote   = errors.New("pitchdetect: invalid note name")
	ErrNoPort    = errors.New("pitchdetect: midi input port not found")
)

// Units selects how detectors report pitch.
type Units int

const (
	UnitsHz Units = iota
	UnitsMIDI
)

func (u Units) String() string {
	switch u {
	case UnitsHz:
		return "hz"
	case UnitsMIDI:
		return "midi"
	}
	return "unknown"
}

func ParseUnits(s string) (Units, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hz", "":
		return UnitsHz, nil
	case "midi":
		return UnitsMIDI, nil
	}
	return UnitsHz, fmt.Errorf("%w: unknown units %q", ErrBadConfig, s)
}

// FromHz expresses a frequency in Hz in the receiver's units.
func (u Units) FromHz(freq float64) float64 {
	if u == UnitsMIDI {
		return FreqToMIDI(freq)
	}
	return freq
}

// FromMIDI expresses a MIDI note number in the receiver's units.
func (u Units) FromMIDI(note float64) float64 {
	if u == UnitsHz {
		return MIDIToFreq(note)
	}
	return note
}

const concertA = 440.0

func FreqToMIDI(freq float64) float64 {
	return 12*math.Log2(freq/concertA) + 69
}

func MIDIToFreq(note float64) float64 {
	return concertA * math.Pow(2, (note-69)/12)
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var noteOffsets = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// NoteName renders a MIDI note number as e.g. "C4" (middle C = 60).
func NoteName(note int) string {
	idx := note % 12
	if idx < 0 {
		idx += 12
	}
	octave := note/12 - 1
	if note < 0 && note%12 != 0 {
		octave--
	}
	return fmt.Sprintf("%s%d", noteNames[idx], octave)
}

// ParseNote parses names like "A4", "c#3", "Bb2" or "E-1" into MIDI note numbers.
func ParseNote(name string) (int, error) {
	s := strings.TrimSpace(name)
	if len(s) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrBadNote, name)
	}
	base, ok := noteOffsets[strings.ToUpper(s[:1])[0]]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrBadNote, name)
	}
	rest := s[1:]
	switch rest[0] {
	case '#':
		base++
		rest = rest[1:]
	case 'b':
		base--
		rest = rest[1:]
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadNote, name)
	}
	return (octave+1)*12 + base, nil
}
