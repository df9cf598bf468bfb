// input_engine.go - Per-cycle pitch evaluation and key queries

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionPitch
License: GPLv3 or later
*/

// Package pitchinput turns detected audio pitches into edge-triggered
// virtual key state that can be polled like a keyboard.
package pitchinput

import (
	"fmt"
	"log/slog"
	"strings"
)

// NoneKey is the unbound key name. Queries for it are always false.
const NoneKey = "none"

// Detector turns one sample buffer into zero or more pitch observations.
// Detect must not block; it is called synchronously from Update.
type Detector interface {
	Detect(samples []float32, emit func(pitch float64))
}

// DetectorFunc adapts a function to the Detector interface.
type DetectorFunc func(samples []float32, emit func(pitch float64))

func (f DetectorFunc) Detect(samples []float32, emit func(pitch float64)) {
	f(samples, emit)
}

// HostKeys is the host's physical keyboard state for a named key.
type HostKeys interface {
	KeyHeld(name string) bool
	KeyPressed(name string) bool
	KeyReleased(name string) bool
}

// NoHostKeys reports every key as up.
type NoHostKeys struct{}

func (NoHostKeys) KeyHeld(string) bool     { return false }
func (NoHostKeys) KeyPressed(string) bool  { return false }
func (NoHostKeys) KeyReleased(string) bool { return false }

// KeyName normalises a key code to the lowercase name used by queries.
func KeyName(code fmt.Stringer) string {
	if code == nil {
		return NoneKey
	}
	return strings.ToLower(code.String())
}

type Option func(*InputEngine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *InputEngine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithSampleCount records the buffer length agreed with the host.
func WithSampleCount(n int) Option {
	return func(e *InputEngine) {
		if n > 0 {
			e.sampleCount = n
		}
	}
}

// InputEngine maps detected pitches onto virtual key state.
//
// One goroutine drives Update and issues queries between updates; the
// engine does no locking of its own.
type InputEngine struct {
	table       *MappingTable
	observed    *ObservationSet
	detector    Detector
	host        HostKeys
	logger      *slog.Logger
	sampleCount int
	cycle       uint64
	emit        func(float64)

	// keys whose active mappings were dropped by ReplaceMappings; they
	// report KeyUp until the next cycle.
	released map[string]bool
}

func NewInputEngine(detector Detector, host HostKeys, opts ...Option) *InputEngine {
	if host == nil {
		host = NoHostKeys{}
	}
	e := &InputEngine{
		table:    NewMappingTable(),
		observed: NewObservationSet(),
		detector: detector,
		host:     host,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.emit = func(pitch float64) { e.Observe(pitch) }
	return e
}

// Update runs one cycle: rebuild the observation set from samples, then
// advance every mapping's edge state.
func (e *InputEngine) Update(samples []float32) {
	e.observed.Reset()
	if e.detector != nil {
		e.detector.Detect(samples, e.emit)
	}
	e.evaluate()
}

// UpdateObserved runs one cycle with pitches supplied by the host instead of
// the detector.
func (e *InputEngine) UpdateObserved(pitches ...float64) {
	e.observed.Reset()
	for _, p := range pitches {
		e.Observe(p)
	}
	e.evaluate()
}

// Observe adds one pitch to the current cycle's observation set.
func (e *InputEngine) Observe(pitch float64) {
	e.observed.Add(pitch)
}

func (e *InputEngine) evaluate() {
	e.cycle++
	clear(e.released)
	for i := range e.table.mappings {
		m := &e.table.mappings[i]
		m.advance(e.observed.AnyIn(m.MinVal, m.MaxVal))
		switch {
		case m.KeyDown:
			e.logger.Debug("pitch key down", "key", m.Key, "min", m.MinVal, "max", m.MaxVal, "cycle", e.cycle)
		case m.KeyUp:
			e.logger.Debug("pitch key up", "key", m.Key, "min", m.MinVal, "max", m.MaxVal, "cycle", e.cycle)
		}
	}
}

func (e *InputEngine) MapPitch(minVal, maxVal int, key string) error {
	if err := e.table.MapPitch(minVal, maxVal, key); err != nil {
		return err
	}
	e.logger.Debug("pitch mapped", "key", key, "min", minVal, "max", maxVal)
	return nil
}

func (e *InputEngine) RemoveMapping(minVal, maxVal int, key string) error {
	return e.table.RemoveMapping(minVal, maxVal, key)
}

// ReplaceMappings swaps the whole mapping table in one step. A mapping
// identical to a current one keeps its edge state, so a held key stays held.
// Keys that were active, or released this cycle, and are left with no
// active mapping report KeyUp until the next cycle. Nothing changes if any mapping is invalid.
func (e *InputEngine) ReplaceMappings(mappings []PitchMapping) error {
	for _, m := range mappings {
		if err := validateMapping(m.MinVal, m.MaxVal, m.Key); err != nil {
			return err
		}
	}

	old := e.table.mappings
	taken := make([]bool, len(old))
	next := make([]PitchMapping, 0, len(mappings))
	counts := make(map[string]int, len(mappings))
	for _, m := range mappings {
		pm := PitchMapping{MinVal: m.MinVal, MaxVal: m.MaxVal, Key: m.Key}
		for i := range old {
			if !taken[i] && old[i].same(m.MinVal, m.MaxVal, m.Key) {
				pm, taken[i] = old[i], true
				break
			}
		}
		next = append(next, pm)
		counts[pm.Key]++
	}

	stillActive := make(map[string]bool)
	for _, m := range next {
		if m.ConditionMet {
			stillActive[m.Key] = true
		}
	}
	for _, m := range old {
		if !(m.ConditionMet || m.KeyUp) || stillActive[m.Key] {
			continue
		}
		if e.released == nil {
			e.released = make(map[string]bool)
		}
		if !e.released[m.Key] {
			e.released[m.Key] = true
			e.logger.Debug("pitch key released by remap", "key", m.Key, "cycle", e.cycle)
		}
	}

	e.table.mappings = next
	e.table.keyCount = counts
	return nil
}

func (e *InputEngine) MapsKey(name string) bool {
	return e != nil && e.table.MapsKey(name)
}

func (e *InputEngine) GetMappings(name string) []PitchMapping {
	return e.table.GetMappings(name)
}

// Table exposes the mapping table for inspection and bulk loading.
func (e *InputEngine) Table() *MappingTable {
	return e.table
}

// Cycle returns the number of completed updates.
func (e *InputEngine) Cycle() uint64 {
	return e.cycle
}

// Observations returns the current cycle's pitches in ascending order.
func (e *InputEngine) Observations() []int {
	return e.observed.Sorted()
}

// SampleCount returns the buffer length the host should supply, or 0 if none was agreed.
func (e *InputEngine) SampleCount() int {
	return e.sampleCount
}

// GetKey reports a mapped key whose condition held before this cycle, or a
// physically held key.
func (e *InputEngine) GetKey(name string) bool {
	if e == nil || name == NoneKey {
		return false
	}
	if !e.table.MapsKey(name) {
		return e.host.KeyHeld(name)
	}
	return e.table.anyMapping(name, func(m *PitchMapping) bool { return m.Held() }) || e.host.KeyHeld(name)
}

// GetKeyDown reports a key whose condition became true this cycle, or a key
// physically pressed this frame.
func (e *InputEngine) GetKeyDown(name string) bool {
	if e == nil || name == NoneKey {
		return false
	}
	if !e.table.MapsKey(name) {
		return e.host.KeyPressed(name)
	}
	return e.table.anyMapping(name, func(m *PitchMapping) bool { return m.KeyDown }) || e.host.KeyPressed(name)
}

// GetKeyUp reports a key whose condition became false this cycle, or a key
// physically released this frame.
func (e *InputEngine) GetKeyUp(name string) bool {
	if e == nil || name == NoneKey {
		return false
	}
	if e.released[name] {
		return true
	}
	if !e.table.MapsKey(name) {
		return e.host.KeyReleased(name)
	}
	return e.table.anyMapping(name, func(m *PitchMapping) bool { return m.KeyUp }) || e.host.KeyReleased(name)
}

func (e *InputEngine) GetKeyCode(code fmt.Stringer) bool     { return e.GetKey(KeyName(code)) }
func (e *InputEngine) GetKeyCodeDown(code fmt.Stringer) bool { return e.GetKeyDown(KeyName(code)) }
func (e *InputEngine) GetKeyCodeUp(code fmt.Stringer) bool   { return e.GetKeyUp(KeyName(code)) }
