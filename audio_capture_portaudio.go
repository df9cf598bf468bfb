//go:build !headless

// audio_capture_portaudio.go - Microphone capture through PortAudio

package main

import (
	"fmt"
	"log/slog"

	"github.com/gordonklaus/portaudio"
)

// MicCapture streams the default input device into a SampleRing from the
// PortAudio callback goroutine.
type MicCapture struct {
	stream *portaudio.Stream
	logger *slog.Logger
}

func NewMicCapture(ring *SampleRing, sampleRate, framesPerBuffer int, logger *slog.Logger) (*MicCapture, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), framesPerBuffer, func(in []float32) {
		ring.Write(in)
	})
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("start input stream: %w", err)
	}
	logger.Info("microphone capture started", "rate", sampleRate, "frames", framesPerBuffer)
	return &MicCapture{stream: stream, logger: logger}, nil
}

// Pump is a no-op; the stream callback fills the ring.
func (m *MicCapture) Pump(*SampleRing) {}

func (m *MicCapture) Close() error {
	if m.stream == nil {
		return nil
	}
	if err := m.stream.Stop(); err != nil {
		m.logger.Warn("stop input stream", "err", err)
	}
	err := m.stream.Close()
	m.stream = nil
	portaudio.Terminate()
	return err
}
