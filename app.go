// app.go - Cycle loop state shared by the window and terminal hosts

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

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/intuitionamiga/IntuitionPitch/mapscript"
	"github.com/intuitionamiga/IntuitionPitch/pitchdetect"
	"github.com/intuitionamiga/IntuitionPitch/pitchinput"
)

const (
	sourceMic  = "mic"
	sourceTone = "tone"
	sourceMIDI = "midi"
)

var errUnknownSource = errors.New("unknown input source")

type appConfig struct {
	source    string
	tones     string
	midiPort  string
	mapFile   string
	units     string
	rate      int
	buffer    int
	window    int
	threshold float64
	minFreq   float64
	maxFreq   float64
	monitor   bool
	gain      float64
	debug     bool
	tps       int
}

func defaultAppConfig() appConfig {
	d := pitchdetect.DefaultFFTConfig()
	return appConfig{
		source:    sourceMic,
		tones:     "440",
		units:     "midi",
		rate:      d.SampleRate,
		buffer:    2048,
		window:    1024,
		threshold: d.Threshold,
		minFreq:   d.MinFreq,
		maxFreq:   d.MaxFreq,
		gain:      1,
		tps:       60,
	}
}

// audioInput delivers samples into the ring. Pump runs once per cycle on
// the cycle goroutine, before the engine reads the ring.
type audioInput interface {
	Pump(ring *SampleRing)
	Close() error
}

// keyStatus is one row of the key overlay.
type keyStatus struct {
	Name     string
	Held     bool
	Down     bool
	Up       bool
	Mappings []pitchinput.PitchMapping
}

type pitchApp struct {
	cfg    appConfig
	units  pitchdetect.Units
	logger *slog.Logger

	engine *pitchinput.InputEngine
	router *pitchinput.Router
	ring   *SampleRing
	input  audioInput

	fft  *pitchdetect.FFTDetector
	tone *ToneSource
	midi *MIDISource

	samples    []float32
	scriptName string
}

func newPitchApp(cfg appConfig, host pitchinput.HostKeys, logger *slog.Logger) (*pitchApp, error) {
	units, err := pitchdetect.ParseUnits(cfg.units)
	if err != nil {
		return nil, err
	}
	if cfg.tps < 1 {
		cfg.tps = 60
	}
	a := &pitchApp{
		cfg:     cfg,
		units:   units,
		logger:  logger,
		ring:    NewSampleRing(cfg.buffer * 2),
		samples: make([]float32, cfg.buffer),
	}

	var detector pitchinput.Detector
	switch cfg.source {
	case sourceMIDI:
		a.midi, err = NewMIDISource(cfg.midiPort, units, logger)
		if err != nil {
			return nil, fmt.Errorf("open midi input: %w", err)
		}
		a.input = a.midi
		detector = a.midi.Detector()
	case sourceMic, sourceTone:
		a.fft, err = pitchdetect.NewFFTDetector(pitchdetect.FFTConfig{
			SampleRate: cfg.rate,
			WindowSize: cfg.window,
			HopSize:    cfg.window,
			MinFreq:    cfg.minFreq,
			MaxFreq:    cfg.maxFreq,
			Threshold:  cfg.threshold,
			Units:      units,
		})
		if err != nil {
			return nil, err
		}
		detector = a.fft
		if cfg.source == sourceTone {
			freqs, err := parseToneList(cfg.tones)
			if err != nil {
				return nil, fmt.Errorf("parse -tone: %w", err)
			}
			a.tone = NewToneSource(cfg.rate, cfg.tps, freqs...)
			a.input = a.tone
		} else {
			mic, err := NewMicCapture(a.ring, cfg.rate, cfg.rate/cfg.tps, logger)
			if err != nil {
				return nil, fmt.Errorf("open microphone: %w", err)
			}
			a.input = mic
		}
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownSource, cfg.source)
	}

	a.engine = pitchinput.NewInputEngine(detector, host,
		pitchinput.WithLogger(logger),
		pitchinput.WithSampleCount(cfg.buffer))
	a.router = pitchinput.NewRouter(host)

	if cfg.mapFile != "" {
		err = a.loadScriptFile(cfg.mapFile)
	} else {
		err = a.loadScript(defaultMappingName, defaultMappingScript)
	}
	if err != nil {
		a.Close()
		return nil, err
	}

	a.router.Attach(a.engine)
	setActiveRouter(a.router)
	return a, nil
}

// step runs one cycle: fill the ring, then let the engine read it.
func (a *pitchApp) step() {
	a.input.Pump(a.ring)
	a.ring.Latest(a.samples)
	a.engine.Update(a.samples)
}

func (a *pitchApp) loadScriptFile(path string) error {
	scratch := pitchinput.NewMappingTable()
	if err := mapscript.Load(path, scratch, a.units); err != nil {
		return err
	}
	return a.replaceMappings(path, scratch)
}

// loadScript evaluates src into a scratch table first, so a failing script
// leaves the current mappings untouched.
func (a *pitchApp) loadScript(name, src string) error {
	scratch := pitchinput.NewMappingTable()
	if err := mapscript.Eval(name, src, scratch, a.units); err != nil {
		return err
	}
	return a.replaceMappings(name, scratch)
}

// replaceMappings installs the scratch table. Keys held through the reload
// stay held; keys the new script drops report KeyUp on the next query.
func (a *pitchApp) replaceMappings(name string, scratch *pitchinput.MappingTable) error {
	if err := a.engine.ReplaceMappings(scratch.Mappings()); err != nil {
		a.logger.Error("mappings rejected", "script", name, "err", err)
		return err
	}
	a.scriptName = name
	a.logger.Info("mappings loaded", "script", name, "mappings", scratch.Len(), "keys", strings.Join(scratch.Keys(), ","))
	return nil
}

func (a *pitchApp) exportScript() string {
	return mapscript.Export(a.engine.Table().Mappings())
}

// keyStatuses reports every mapped key through the process-wide query API,
// so physical fallbacks show up alongside pitch state.
func (a *pitchApp) keyStatuses() []keyStatus {
	keys := a.engine.Table().Keys()
	out := make([]keyStatus, 0, len(keys))
	for _, name := range keys {
		out = append(out, keyStatus{
			Name:     name,
			Held:     GetKey(name),
			Down:     GetKeyDown(name),
			Up:       GetKeyUp(name),
			Mappings: a.engine.GetMappings(name),
		})
	}
	return out
}

// observedNames renders the current observations as note names or Hz.
func (a *pitchApp) observedNames() []string {
	obs := a.engine.Observations()
	names := make([]string, len(obs))
	for i, p := range obs {
		if a.units == pitchdetect.UnitsMIDI {
			names[i] = pitchdetect.NoteName(p)
		} else {
			names[i] = fmt.Sprintf("%dHz", p)
		}
	}
	return names
}

// sourceLabel names the input for the status lines.
func (a *pitchApp) sourceLabel() string {
	switch {
	case a.midi != nil:
		return "midi " + a.midi.Port()
	case a.tone != nil:
		return "tone " + formatFreqs(a.tone.Frequencies())
	}
	return a.cfg.source
}

func (a *pitchApp) level() float64 {
	if a.fft == nil {
		return 0
	}
	return a.fft.LastRMS()
}

// formatRange renders a mapping interval in the app's units.
func (a *pitchApp) formatRange(m pitchinput.PitchMapping) string {
	if a.units == pitchdetect.UnitsMIDI {
		return fmt.Sprintf("(%s, %s]", pitchdetect.NoteName(m.MinVal), pitchdetect.NoteName(m.MaxVal))
	}
	return fmt.Sprintf("(%d, %d] Hz", m.MinVal, m.MaxVal)
}

func (a *pitchApp) Close() {
	// The router stays installed and falls back to the host keys.
	if a.router != nil {
		a.router.Detach()
	}
	if a.input != nil {
		if err := a.input.Close(); err != nil {
			a.logger.Warn("close input", "err", err)
		}
	}
}
