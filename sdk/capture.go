package dkai

import (
	"encoding/base64"
	"sync"

	"github.com/dineshkumar-ai/dkai-go/pkg/audio"
	"github.com/dineshkumar-ai/dkai-go/pkg/gemini/liveproto"
)

// CaptureFrameSamples is the number of float samples per captured frame,
// 256 ms at the 16 kHz capture rate.
const CaptureFrameSamples = 4096

// FrameSource yields blocks of float32 microphone samples in [-1, 1] at
// the capture rate. ReadSamples blocks until samples are available and
// returns an error when the source is exhausted or fails.
type FrameSource interface {
	ReadSamples(buf []float32) (int, error)
}

// FrameSink receives encoded audio frames. *LiveSession satisfies it.
type FrameSink interface {
	SendAudioFrame(frame AudioFrame) error
	State() SessionState
}

// EncodeAudioFrame converts float samples to a wire-ready audio frame:
// 16-bit signed little-endian PCM, base64-encoded, tagged with the
// 16 kHz input MIME type.
func EncodeAudioFrame(samples []float32) AudioFrame {
	pcm := audio.EncodePCM16(samples)
	return AudioFrame{
		Data:     base64.StdEncoding.EncodeToString(pcm),
		MIMEType: liveproto.InputMIMEType,
	}
}

// CapturePipeline pumps microphone samples from a FrameSource into a
// FrameSink in fixed-size frames. Frames produced while the sink is not
// connected are discarded, never buffered, so stale audio cannot arrive
// at the model after a reconnect.
type CapturePipeline struct {
	source FrameSource
	sink   FrameSink

	stopOnce sync.Once
	stopped  chan struct{}
	done     chan struct{}

	levelMu sync.Mutex
	rms     float64
	peak    float64

	err error
}

// NewCapturePipeline wires a source to a sink. Call Run to start pumping.
func NewCapturePipeline(source FrameSource, sink FrameSink) *CapturePipeline {
	return &CapturePipeline{
		source:  source,
		sink:    sink,
		stopped: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Run reads frames until the source fails or Stop is called. It blocks;
// run it on its own goroutine. The returned error is nil on a clean stop.
func (p *CapturePipeline) Run() error {
	defer close(p.done)

	buf := make([]float32, CaptureFrameSamples)
	filled := 0
	for {
		select {
		case <-p.stopped:
			return nil
		default:
		}

		n, err := p.source.ReadSamples(buf[filled:])
		filled += n
		if filled == len(buf) {
			p.deliver(buf)
			filled = 0
		}
		if err != nil {
			if p.isStopped() {
				return nil
			}
			// Flush the partial tail so the last utterance is not lost.
			if filled > 0 {
				p.deliver(buf[:filled])
			}
			p.err = err
			return err
		}
	}
}

// Stop halts the pipeline and waits for Run to return.
func (p *CapturePipeline) Stop() {
	p.stopOnce.Do(func() { close(p.stopped) })
	<-p.done
}

// Err returns the source error that terminated Run, if any.
func (p *CapturePipeline) Err() error {
	<-p.done
	return p.err
}

// InputLevel reports the RMS energy and peak amplitude of the most
// recently captured frame, both in [0, 1]. The level tracks the
// microphone even while the sink is disconnected, so meters keep
// working during reconnects.
func (p *CapturePipeline) InputLevel() (rms, peak float64) {
	p.levelMu.Lock()
	defer p.levelMu.Unlock()
	return p.rms, p.peak
}

func (p *CapturePipeline) deliver(samples []float32) {
	pcm := audio.EncodePCM16(samples)

	p.levelMu.Lock()
	p.rms = audio.RMSEnergy(pcm)
	p.peak = audio.PeakAmplitude(pcm)
	p.levelMu.Unlock()

	if p.sink.State() != StateConnected {
		return
	}
	_ = p.sink.SendAudioFrame(AudioFrame{
		Data:     base64.StdEncoding.EncodeToString(pcm),
		MIMEType: liveproto.InputMIMEType,
	})
}

func (p *CapturePipeline) isStopped() bool {
	select {
	case <-p.stopped:
		return true
	default:
		return false
	}
}
