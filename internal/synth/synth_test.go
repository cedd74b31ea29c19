package synth

import (
	"math"
	"testing"

	"scoreforge/internal/sf2"
)

func TestRenderFallbackProducesBoundedSamples(t *testing.T) {
	out := RenderFallback(69, 0.5, 100)
	if len(out) != int(0.5*SampleRate) {
		t.Fatalf("expected %d samples, got %d", int(0.5*SampleRate), len(out))
	}
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("sample %d is non-finite", i)
		}
		if v < -1.5 || v > 1.5 {
			t.Fatalf("sample %d out of expected range: %f", i, v)
		}
	}
}

func TestRenderFallbackSilentAtZeroDuration(t *testing.T) {
	if out := RenderFallback(60, 0, 100); out != nil {
		t.Fatalf("expected nil for zero duration, got %d samples", len(out))
	}
}

func TestAdsrGainEnvelopeShape(t *testing.T) {
	total := SampleRate // 1 second
	g0 := adsrGain(0, total, 0.1, 0.1, 0.5, 0.1)
	if g0 != 0 {
		t.Fatalf("expected zero gain at t=0, got %f", g0)
	}
	mid := adsrGain(total/2, total, 0.1, 0.1, 0.5, 0.1)
	if mid != 0.5 {
		t.Fatalf("expected sustain level 0.5 mid-note, got %f", mid)
	}
	last := adsrGain(total-1, total, 0.1, 0.1, 0.5, 0.1)
	if last < 0 || last > 0.5 {
		t.Fatalf("expected release gain below sustain near the end, got %f", last)
	}
}

func TestRenderZoneWithLoop(t *testing.T) {
	samples := make([]int16, 200)
	for i := range samples {
		samples[i] = int16(1000)
	}
	z := sf2.Zone{
		RootKey:     60,
		SampleModes: 1,
		Start:       0, End: 200,
		StartLoop: 20, EndLoop: 180,
		SampleRate: 44100,
		SustainCb:  0,
	}
	out := RenderZone(samples, z, 60, 0.1, 100)
	if len(out) != int(0.1*SampleRate) {
		t.Fatalf("expected %d samples, got %d", int(0.1*SampleRate), len(out))
	}
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("sample %d is non-finite", i)
		}
	}
}
