package dkai

import (
	"sync"
	"time"

	"github.com/dineshkumar-ai/dkai-go/pkg/audio"
)

// PlaybackDevice is the audio output a PlaybackScheduler drives. Write
// submits raw PCM bytes for immediate playback; Flush discards anything
// queued but not yet played.
type PlaybackDevice interface {
	Write(pcm []byte) error
	Flush() error
}

// Clock abstracts time for the scheduler so tests can drive it
// deterministically.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable pending callback.
type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// PlaybackScheduler plays model audio chunks back-to-back without gaps.
// Each chunk is scheduled at a watermark that starts at the current time
// and advances by each chunk's duration, so chunks arriving faster than
// real time queue up seamlessly while a late chunk restarts from now.
//
// Interrupt cancels everything pending and resets the watermark, which
// is how barge-in silences the model instantly.
type PlaybackScheduler struct {
	device PlaybackDevice
	clock  Clock
	cfg    audio.Config

	mu        sync.Mutex
	watermark time.Time
	pending   map[int]Timer
	nextID    int
	closed    bool
}

// NewPlaybackScheduler creates a scheduler for 24 kHz mono model audio.
func NewPlaybackScheduler(device PlaybackDevice) *PlaybackScheduler {
	return newPlaybackScheduler(device, realClock{})
}

func newPlaybackScheduler(device PlaybackDevice, clock Clock) *PlaybackScheduler {
	return &PlaybackScheduler{
		device:  device,
		clock:   clock,
		cfg:     audio.PlaybackConfig(),
		pending: make(map[int]Timer),
	}
}

// Enqueue schedules one PCM chunk. Chunks play in enqueue order with no
// gap between consecutive chunks. Empty chunks are ignored.
func (p *PlaybackScheduler) Enqueue(pcm []byte) {
	if len(pcm) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	now := p.clock.Now()
	start := p.watermark
	if start.Before(now) {
		start = now
	}
	p.watermark = start.Add(p.cfg.Duration(len(pcm)))

	id := p.nextID
	p.nextID++
	data := pcm
	p.pending[id] = p.clock.AfterFunc(start.Sub(now), func() {
		p.fire(id, data)
	})
}

func (p *PlaybackScheduler) fire(id int, pcm []byte) {
	p.mu.Lock()
	_, live := p.pending[id]
	delete(p.pending, id)
	closed := p.closed
	p.mu.Unlock()
	if !live || closed {
		return
	}
	_ = p.device.Write(pcm)
}

// Interrupt discards all scheduled audio and flushes the device. The
// watermark resets so the next chunk starts immediately.
func (p *PlaybackScheduler) Interrupt() {
	p.mu.Lock()
	for id, t := range p.pending {
		t.Stop()
		delete(p.pending, id)
	}
	p.watermark = time.Time{}
	closed := p.closed
	p.mu.Unlock()
	if !closed {
		_ = p.device.Flush()
	}
}

// Watermark reports when the last enqueued chunk will finish playing.
// The zero time means nothing is scheduled.
func (p *PlaybackScheduler) Watermark() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.watermark
}

// Close stops the scheduler, dropping pending chunks and flushing the
// device. The scheduler does not own the device; callers close it
// separately.
func (p *PlaybackScheduler) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	for id, t := range p.pending {
		t.Stop()
		delete(p.pending, id)
	}
	p.mu.Unlock()
	_ = p.device.Flush()
}
