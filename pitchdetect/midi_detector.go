// midi_detector.go - Held MIDI notes as pitch observations

package pitchdetect

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// MIDIDetector reports every note currently held on a MIDI input as a pitch
// observation. The sample buffer passed to Detect is ignored.
//
// Note events arrive on the driver's goroutine while Detect runs on the
// cycle goroutine, so the held set is guarded by a mutex.
type MIDIDetector struct {
	units  Units
	logger *slog.Logger

	mu   sync.Mutex
	held map[uint8]uint8 // note -> channel
	stop func()
}

func NewMIDIDetector(units Units, logger *slog.Logger) *MIDIDetector {
	if logger == nil {
		logger = slog.Default()
	}
	return &MIDIDetector{
		units:  units,
		logger: logger,
		held:   make(map[uint8]uint8),
	}
}

// FindInPort returns the first input port whose name contains name, or the
// first port of all when name is empty. A driver must be registered by the
// caller, typically with a blank import of rtmididrv.
func FindInPort(name string) (drivers.In, error) {
	if name == "" {
		ports := gomidi.GetInPorts()
		if len(ports) == 0 {
			return nil, ErrNoPort
		}
		return ports[0], nil
	}
	in, err := gomidi.FindInPort(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNoPort, name)
	}
	return in, nil
}

// Listen starts receiving note events from in. Call Close to stop.
func (d *MIDIDetector) Listen(in drivers.In) error {
	stop, err := gomidi.ListenTo(in, d.handle)
	if err != nil {
		return fmt.Errorf("midi listen %s: %w", in.String(), err)
	}
	d.mu.Lock()
	d.stop = stop
	d.mu.Unlock()
	d.logger.Info("midi input listening", "port", in.String())
	return nil
}

func (d *MIDIDetector) handle(msg gomidi.Message, _ int32) {
	var channel, note, velocity uint8
	switch {
	case msg.GetNoteOn(&channel, &note, &velocity):
		// Note on with zero velocity is a note off.
		if velocity == 0 {
			d.NoteOff(note)
			return
		}
		d.NoteOn(channel, note)
	case msg.GetNoteOff(&channel, &note, &velocity):
		d.NoteOff(note)
	}
}

func (d *MIDIDetector) NoteOn(channel, note uint8) {
	d.mu.Lock()
	d.held[note] = channel
	d.mu.Unlock()
	d.logger.Debug("midi note on", "note", NoteName(int(note)), "channel", channel)
}

func (d *MIDIDetector) NoteOff(note uint8) {
	d.mu.Lock()
	delete(d.held, note)
	d.mu.Unlock()
	d.logger.Debug("midi note off", "note", NoteName(int(note)))
}

// Reset releases every held note, e.g. after the device disappears.
func (d *MIDIDetector) Reset() {
	d.mu.Lock()
	clear(d.held)
	d.mu.Unlock()
}

// Held returns the held note numbers in ascending order.
func (d *MIDIDetector) Held() []uint8 {
	d.mu.Lock()
	notes := make([]uint8, 0, len(d.held))
	for n := range d.held {
		notes = append(notes, n)
	}
	d.mu.Unlock()
	slices.Sort(notes)
	return notes
}

func (d *MIDIDetector) Detect(_ []float32, emit func(pitch float64)) {
	for _, n := range d.Held() {
		emit(d.units.FromMIDI(float64(n)))
	}
}

func (d *MIDIDetector) Close() {
	d.mu.Lock()
	stop := d.stop
	d.stop = nil
	d.mu.Unlock()
	if stop != nil {
		stop()
	}
	d.Reset()
}
