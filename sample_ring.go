// sample_ring.go - Shared mono sample ring between capture and the cycle loop

package main

import "sync"

// SampleRing is a fixed-size ring of mono float32 samples. Capture callbacks
// Write from their own goroutine; the cycle loop takes the newest window with
// Latest and the monitor consumes the stream in order with Drain.
type SampleRing struct {
	mu      sync.Mutex
	buf     []float32
	written uint64 // total samples ever written
	drained uint64 // total samples handed to Drain
}

func NewSampleRing(size int) *SampleRing {
	if size < 1 {
		size = 1
	}
	return &SampleRing{buf: make([]float32, size)}
}

func (r *SampleRing) Write(samples []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	size := uint64(len(r.buf))
	if uint64(len(samples)) > size {
		r.written += uint64(len(samples)) - size
		samples = samples[len(samples)-int(size):]
	}
	for _, s := range samples {
		r.buf[r.written%size] = s
		r.written++
	}
}

// Latest copies the newest samples into dst, oldest first. When fewer than
// len(dst) samples have ever been written the head of dst is zeroed.
// It returns the number of real samples copied.
func (r *SampleRing) Latest(dst []float32) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	size := uint64(len(r.buf))
	n := uint64(len(dst))
	if n > size {
		n = size
	}
	if n > r.written {
		n = r.written
	}
	pad := len(dst) - int(n)
	clear(dst[:pad])
	start := r.written - n
	for i := uint64(0); i < n; i++ {
		dst[pad+int(i)] = r.buf[(start+i)%size]
	}
	return int(n)
}

// Drain copies samples not yet drained into dst in stream order and zero
// fills the rest. Samples overwritten before being drained are skipped.
func (r *SampleRing) Drain(dst []float32) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	size := uint64(len(r.buf))
	if r.written-r.drained > size {
		r.drained = r.written - size
	}
	n := 0
	for n < len(dst) && r.drained < r.written {
		dst[n] = r.buf[r.drained%size]
		r.drained++
		n++
	}
	clear(dst[n:])
	return n
}

func (r *SampleRing) Written() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written
}
