// fft_detector.go - Windowed FFT pitch detector

package pitchdetect

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// FFTConfig describes the analysis performed on each sample buffer.
type FFTConfig struct {
	SampleRate int
	WindowSize int     // samples per analysis window
	HopSize    int     // samples between window starts; 0 means WindowSize
	MinFreq    float64 // lowest reported fundamental in Hz
	MaxFreq    float64 // highest reported fundamental in Hz
	Threshold  float64 // RMS below which a window is treated as silence
	Units      Units
}

func DefaultFFTConfig() FFTConfig {
	return FFTConfig{
		SampleRate: 44100,
		WindowSize: 2048,
		HopSize:    1024,
		MinFreq:    60,
		MaxFreq:    1600,
		Threshold:  0.01,
		Units:      UnitsHz,
	}
}

func (c FFTConfig) validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrBadConfig, c.SampleRate)
	case c.WindowSize < 64:
		return fmt.Errorf("%w: window size %d below 64", ErrBadConfig, c.WindowSize)
	case c.HopSize < 0:
		return fmt.Errorf("%w: hop size %d", ErrBadConfig, c.HopSize)
	case c.MinFreq <= 0 || c.MaxFreq <= c.MinFreq:
		return fmt.Errorf("%w: frequency range %.1f-%.1f Hz", ErrBadConfig, c.MinFreq, c.MaxFreq)
	case c.MaxFreq > float64(c.SampleRate)/2:
		return fmt.Errorf("%w: max frequency %.1f Hz above Nyquist", ErrBadConfig, c.MaxFreq)
	case c.Threshold < 0:
		return fmt.Errorf("%w: threshold %f", ErrBadConfig, c.Threshold)
	}
	return nil
}

// FFTDetector reports the dominant fundamental of every analysis window in a
// buffer. A buffer shorter than one window is analysed as a single
// zero-padded window.
type FFTDetector struct {
	cfg     FFTConfig
	hann    []float64
	frame   []float64
	mags    []float64
	binHz   float64
	minBin  int
	maxBin  int
	lastRMS float64
}

func NewFFTDetector(cfg FFTConfig) (*FFTDetector, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.HopSize == 0 {
		cfg.HopSize = cfg.WindowSize
	}
	binHz := float64(cfg.SampleRate) / float64(cfg.WindowSize)
	d := &FFTDetector{
		cfg:    cfg,
		hann:   window.Hann(cfg.WindowSize),
		frame:  make([]float64, cfg.WindowSize),
		mags:   make([]float64, cfg.WindowSize/2+1),
		binHz:  binHz,
		minBin: max(1, int(math.Floor(cfg.MinFreq/binHz))),
		maxBin: min(cfg.WindowSize/2-1, int(math.Ceil(cfg.MaxFreq/binHz))),
	}
	return d, nil
}

func (d *FFTDetector) Config() FFTConfig {
	return d.cfg
}

// LastRMS returns the loudest window RMS seen by the most recent Detect call.
func (d *FFTDetector) LastRMS() float64 {
	return d.lastRMS
}

func (d *FFTDetector) Detect(samples []float32, emit func(pitch float64)) {
	d.lastRMS = 0
	if len(samples) == 0 {
		return
	}
	n := d.cfg.WindowSize
	for start := 0; ; start += d.cfg.HopSize {
		if freq, ok := d.analyse(samples[start:min(start+n, len(samples))]); ok {
			emit(d.cfg.Units.FromHz(freq))
		}
		if start+n >= len(samples) {
			return
		}
	}
}

// analyse returns the fundamental of one window, or false for silence or
// when no peak falls inside the configured range.
func (d *FFTDetector) analyse(chunk []float32) (float64, bool) {
	var sum float64
	for i := range d.frame {
		var v float64
		if i < len(chunk) {
			v = float64(chunk[i])
		}
		d.frame[i] = v * d.hann[i]
		sum += v * v
	}
	rms := math.Sqrt(sum / float64(max(1, len(chunk))))
	d.lastRMS = max(d.lastRMS, rms)
	if rms < d.cfg.Threshold || rms == 0 {
		return 0, false
	}

	spectrum := fft.FFTReal(d.frame)
	for i := range d.mags {
		d.mags[i] = math.Hypot(real(spectrum[i]), imag(spectrum[i]))
	}

	peak := d.minBin
	for i := d.minBin + 1; i <= d.maxBin; i++ {
		if d.mags[i] > d.mags[peak] {
			peak = i
		}
	}
	if d.mags[peak] == 0 {
		return 0, false
	}

	// A strong component an octave down is the real fundamental.
	if sub := peak / 2; sub >= d.minBin && d.mags[sub] >= 0.5*d.mags[peak] {
		peak = sub
	}
	freq := d.refine(peak) * d.binHz
	if freq < d.cfg.MinFreq || freq > d.cfg.MaxFreq {
		return 0, false
	}
	return freq, true
}

// refine places a peak between bins with parabolic interpolation.
func (d *FFTDetector) refine(bin int) float64 {
	if bin <= 0 || bin >= len(d.mags)-1 {
		return float64(bin)
	}
	a, b, c := d.mags[bin-1], d.mags[bin], d.mags[bin+1]
	den := a - 2*b + c
	if den == 0 {
		return float64(bin)
	}
	offset := 0.5 * (a - c) / den
	if offset > 0.5 || offset < -0.5 {
		return float64(bin)
	}
	return float64(bin) + offset
}
