//go:build headless

// audio_capture_headless.go - Microphone capture stub for headless builds

package main

import (
	"errors"
	"log/slog"
)

var errNoMicrophone = errors.New("microphone capture is not available in headless builds")

type MicCapture struct{}

func NewMicCapture(ring *SampleRing, sampleRate, framesPerBuffer int, logger *slog.Logger) (*MicCapture, error) {
	return nil, errNoMicrophone
}

func (m *MicCapture) Pump(*SampleRing) {}

func (m *MicCapture) Close() error {
	return nil
}
