package main

import (
	"log"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/gen2brain/malgo"

	"github.com/dineshkumar-ai/dkai-go/pkg/audio"
)

// initAudio sets up microphone input at the capture rate and speaker
// output at the playback rate. Returns a mic reader, speaker writer,
// and cleanup function.
func initAudio() (*micReader, *speakerWriter, func()) {
	captureCfg := audio.CaptureConfig()
	playbackCfg := audio.PlaybackConfig()

	malgoConfig := malgo.ContextConfig{}
	malgoConfig.ThreadPriority = malgo.ThreadPriorityRealtime

	malgoCtx, err := malgo.InitContext(nil, malgoConfig, nil)
	if err != nil {
		log.Fatalf("Failed to init audio context: %v", err)
	}

	mic := newMicReader(malgoCtx.Context, captureCfg.SampleRate, captureCfg.Channels)

	// ~100ms buffer keeps latency low at the cost of glitch headroom.
	otoOpts := &oto.NewContextOptions{
		SampleRate:   playbackCfg.SampleRate,
		ChannelCount: playbackCfg.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   playbackCfg.BytesForDurationMs(100),
	}
	otoCtx, ready, err := oto.NewContext(otoOpts)
	if err != nil {
		log.Fatalf("Failed to init speaker: %v", err)
	}
	<-ready

	speaker := newSpeakerWriter(otoCtx)

	cleanup := func() {
		mic.Close()
		speaker.Close()
		malgoCtx.Uninit()
	}

	return mic, speaker, cleanup
}

// micReader captures audio from the microphone and yields float samples.
type micReader struct {
	device *malgo.Device
	buf    []byte
	mu     sync.Mutex
	cond   *sync.Cond
	closed bool
}

func newMicReader(ctx malgo.Context, sampleRate, channels int) *micReader {
	m := &micReader{
		buf: make([]byte, 0, sampleRate*2),
	}
	m.cond = sync.NewCond(&m.mu)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = uint32(channels)
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.PeriodSizeInMilliseconds = 20

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, pInputSamples []byte, _ uint32) {
			m.mu.Lock()
			m.buf = append(m.buf, pInputSamples...)
			m.mu.Unlock()
			m.cond.Signal()
		},
	}

	device, err := malgo.InitDevice(ctx, deviceConfig, callbacks)
	if err != nil {
		log.Fatalf("Failed to init microphone: %v", err)
	}
	m.device = device

	if err := device.Start(); err != nil {
		log.Fatalf("Failed to start microphone: %v", err)
	}

	return m
}

// ReadSamples blocks until microphone samples are available and decodes
// them into float samples.
func (m *micReader) ReadSamples(p []float32) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.buf) < 2 && !m.closed {
		m.cond.Wait()
	}
	if m.closed {
		return 0, errMicClosed
	}

	avail := len(m.buf) / 2
	if avail > len(p) {
		avail = len(p)
	}
	samples := audio.DecodePCM16(m.buf[:avail*2])
	n := copy(p, samples)
	m.buf = m.buf[n*2:]
	return n, nil
}

// Close stops the device and wakes blocked readers. Safe to call more
// than once; the device is only uninitialized on the first call.
func (m *micReader) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.cond.Broadcast()
	m.mu.Unlock()

	if m.device != nil {
		m.device.Stop()
		m.device.Uninit()
	}
}

// speakerWriter plays audio through the speaker.
type speakerWriter struct {
	otoCtx  *oto.Context
	player  *oto.Player
	buf     []byte
	mu      sync.Mutex
	cond    *sync.Cond
	playing bool
	closed  bool
}

func newSpeakerWriter(ctx *oto.Context) *speakerWriter {
	s := &speakerWriter{
		otoCtx: ctx,
		buf:    make([]byte, 0, 96000),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Write queues PCM for playback, starting the player on first data.
func (s *speakerWriter) Write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf = append(s.buf, data...)

	if !s.playing && !s.closed {
		s.playing = true
		s.player = s.otoCtx.NewPlayer(s)
		s.player.Play()
	}

	s.cond.Signal()
	return nil
}

// Read implements io.Reader for oto.Player. Called by oto to pull audio
// data for playback.
func (s *speakerWriter) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.buf) == 0 && !s.closed {
		s.cond.Wait()
	}

	if s.closed && len(s.buf) == 0 {
		// Return silence on close to let oto drain gracefully.
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

// Flush discards all queued audio so playback stops immediately on an
// interruption. Clearing the Go-side buffer is not enough: bytes already
// pulled into oto's internal buffer would keep playing, so the player is
// torn down too and recreated on the next Write.
func (s *speakerWriter) Flush() error {
	s.mu.Lock()
	s.buf = s.buf[:0]

	if s.player != nil && s.playing {
		s.playing = false
		player := s.player
		s.player = nil
		s.mu.Unlock()

		// Pause stops output at once; Reset drops oto's buffered audio.
		player.Pause()
		player.Reset()
		player.Close()
		return nil
	}
	s.mu.Unlock()
	return nil
}

// Close shuts playback down. Safe to call more than once.
func (s *speakerWriter) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()

	if s.player != nil {
		s.player.Close()
	}
}
