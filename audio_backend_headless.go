//go:build headless

package main

// OtoPlayer is a silent stand-in for the monitor in headless builds.
type OtoPlayer struct {
	started bool
}

func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) {
	return &OtoPlayer{}, nil
}

func (op *OtoPlayer) SetupPlayer(*SampleRing) {}

func (op *OtoPlayer) SetGain(float32) {}

func (op *OtoPlayer) Read(p []byte) (n int, err error) {
	clear(p)
	return len(p), nil
}

func (op *OtoPlayer) Start() {
	op.started = true
}

func (op *OtoPlayer) Close() {
	op.started = false
}

func (op *OtoPlayer) IsStarted() bool {
	return op.started
}
