package audio

import (
	"math"
	"testing"
)

func TestEncodeDecodeRoundTrip_WithinQuantizationError(t *testing.T) {
	t.Parallel()

	samples := []float32{-1, -0.75, -0.5, -0.25, -1.0 / 32768, 0, 1.0 / 32768, 0.25, 0.5, 0.75, 0.99997, 1}
	pcm := EncodePCM16(samples)
	if len(pcm) != len(samples)*2 {
		t.Fatalf("encoded length = %d, want %d", len(pcm), len(samples)*2)
	}

	decoded := DecodePCM16(pcm)
	if len(decoded) != len(samples) {
		t.Fatalf("decoded length = %d, want %d", len(decoded), len(samples))
	}
	const quant = 1.0 / 32768
	for i, want := range samples {
		if diff := math.Abs(float64(decoded[i]) - float64(want)); diff > quant {
			t.Fatalf("sample %d: decoded %v, want %v (diff %v > %v)", i, decoded[i], want, diff, quant)
		}
	}
}

func TestEncodePCM16_ClampsOutOfRange(t *testing.T) {
	t.Parallel()

	pcm := EncodePCM16([]float32{2.0, -2.0})
	decoded := DecodePCM16(pcm)
	if decoded[0] < 0.999 {
		t.Fatalf("positive overflow decoded to %v, want ~1", decoded[0])
	}
	if decoded[1] != -1 {
		t.Fatalf("negative overflow decoded to %v, want -1", decoded[1])
	}
}

func TestDecodePCM16_IgnoresTrailingByte(t *testing.T) {
	t.Parallel()

	if got := DecodePCM16([]byte{0x00, 0x40, 0x7f}); len(got) != 1 {
		t.Fatalf("decoded %d samples, want 1", len(got))
	}
}

func TestConfigDuration(t *testing.T) {
	t.Parallel()

	cfg := PlaybackConfig()
	// One second of 24 kHz mono 16-bit audio is 48000 bytes.
	if d := cfg.Duration(48000); d.Seconds() != 1 {
		t.Fatalf("Duration(48000) = %v, want 1s", d)
	}
	if ms := cfg.DurationMs(4800); ms != 100 {
		t.Fatalf("DurationMs(4800) = %d, want 100", ms)
	}
	if b := cfg.BytesForDurationMs(100); b != 4800 {
		t.Fatalf("BytesForDurationMs(100) = %d, want 4800", b)
	}
}

func TestRMSEnergy_SilenceAndFullScale(t *testing.T) {
	t.Parallel()

	silence := make([]byte, 64)
	if got := RMSEnergy(silence); got != 0 {
		t.Fatalf("RMSEnergy(silence) = %v, want 0", got)
	}

	full := EncodePCM16([]float32{1, -1, 1, -1})
	if got := RMSEnergy(full); got < 0.99 {
		t.Fatalf("RMSEnergy(full scale) = %v, want ~1", got)
	}
	if got := PeakAmplitude(full); got < 0.99 {
		t.Fatalf("PeakAmplitude(full scale) = %v, want ~1", got)
	}
}
