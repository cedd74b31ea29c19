package synth

import (
	"math"

	"scoreforge/internal/sf2"
)

// RenderZone renders pitch-shifted, looped (or one-shot) playback of
// an SF2 zone's sample, linearly interpolated and shaped by the
// zone's ADSR envelope.
func RenderZone(samples []int16, z sf2.Zone, midiNote int, durationSec float64, velocity int) []float64 {
	totalSamples := int(durationSec * SampleRate)
	if totalSamples <= 0 {
		return nil
	}

	semitones := float64(midiNote-z.RootKey) + float64(z.FineTuneCt)/100.0 + float64(z.CoarseTune)
	pitchRatio := math.Pow(2, semitones/12.0)
	if z.SampleRate > 0 {
		pitchRatio *= float64(z.SampleRate) / SampleRate
	}

	attack := clampSeconds(z.AttackSeconds(), 0.005, 2.0)
	decay := clampSeconds(z.DecaySeconds(), 0.01, 4.0)
	release := clampSeconds(minFloat(z.ReleaseSeconds(), 0.3*durationSec), 0.02, 2.0)
	sustainLevel := z.SustainLevel()

	loop := z.Loopable()
	start := float64(z.Start)
	end := float64(z.End)
	loopStart := float64(z.StartLoop)
	loopEnd := float64(z.EndLoop)
	loopSpan := loopEnd - loopStart

	out := make([]float64, totalSamples)
	pos := start
	for i := 0; i < totalSamples; i++ {
		var s float64
		if loop && pos >= loopStart {
			rel := math.Mod(pos-loopStart, loopSpan)
			p := loopStart + rel
			s = interpolate(samples, p, loopStart, loopEnd)
		} else {
			if pos >= end-1 {
				s = 0
			} else {
				s = interpolate(samples, pos, start, end)
			}
		}

		gain := adsrGain(i, totalSamples, attack, decay, sustainLevel, release)
		v := s * gain * (float64(velocity) / 127.0) * 0.85
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		out[i] = v

		pos += pitchRatio
	}
	return out
}

// interpolate reads a linearly-interpolated sample at fractional
// position p from the 16-bit PCM pool, wrapping the "next sample" used
// for interpolation to regionStart when it reaches regionEnd.
func interpolate(samples []int16, p, regionStart, regionEnd float64) float64 {
	i0 := int(math.Floor(p))
	frac := p - float64(i0)
	i1 := i0 + 1
	if i1 >= int(regionEnd) {
		i1 = int(regionStart)
	}
	s0 := sampleAt(samples, i0)
	s1 := sampleAt(samples, i1)
	return s0 + (s1-s0)*frac
}

func sampleAt(samples []int16, i int) float64 {
	if i < 0 || i >= len(samples) {
		return 0
	}
	return float64(samples[i]) / 32768.0
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
