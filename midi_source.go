// midi_source.go - MIDI keyboard input

package main

import (
	"fmt"
	"log/slog"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/intuitionamiga/IntuitionPitch/pitchdetect"
)

// MIDISource connects a MIDI input port to a MIDIDetector. Held notes are
// the pitch observations, so no samples flow through the ring.
type MIDISource struct {
	detector *pitchdetect.MIDIDetector
	port     string
}

func NewMIDISource(port string, units pitchdetect.Units, logger *slog.Logger) (*MIDISource, error) {
	in, err := pitchdetect.FindInPort(port)
	if err != nil {
		return nil, fmt.Errorf("%w (available: %s)", err, midiPortList())
	}
	d := pitchdetect.NewMIDIDetector(units, logger)
	if err := d.Listen(in); err != nil {
		return nil, err
	}
	return &MIDISource{detector: d, port: in.String()}, nil
}

func (s *MIDISource) Detector() *pitchdetect.MIDIDetector {
	return s.detector
}

func (s *MIDISource) Port() string {
	return s.port
}

func (s *MIDISource) Pump(*SampleRing) {}

func (s *MIDISource) Close() error {
	s.detector.Close()
	gomidi.CloseDriver()
	return nil
}

func midiPortList() string {
	ports := gomidi.GetInPorts()
	if len(ports) == 0 {
		return "none"
	}
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.String()
	}
	return strings.Join(names, ", ")
}
