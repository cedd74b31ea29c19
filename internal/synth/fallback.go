package synth

import "math"

// harmonicWeights gives the fallback harmonic weights and fixed ADSR
// timings, used when no SoundFont is loaded. The phase-accumulator
// structure mirrors a multi-channel oscillator mix, generalized from
// four fixed waveform shapes to four additive harmonics of the note's
// fundamental.
var harmonicWeights = [4]float64{1, 0.35, 0.15, 0.06}

const harmonicWeightSum = 1.56

const (
	fallbackAttackSec  = 0.008
	fallbackDecaySec   = 0.150
	fallbackSustain    = 0.6
	fallbackReleaseMax = 0.200
)

// RenderFallback synthesizes durationSec seconds of a sum-of-harmonics
// tone at the MIDI note's frequency, shaped by the fixed fallback
// ADSR envelope.
func RenderFallback(midiNote int, durationSec float64, velocity int) []float64 {
	totalSamples := int(durationSec * SampleRate)
	if totalSamples <= 0 {
		return nil
	}

	freq := 440.0 * math.Pow(2, float64(midiNote-69)/12.0)
	release := clampSeconds(0.3*durationSec, 0, fallbackReleaseMax)
	if release == 0 {
		release = fallbackReleaseMax
	}

	out := make([]float64, totalSamples)
	var phase [4]float64
	for i := 0; i < totalSamples; i++ {
		sample := 0.0
		for h := 0; h < 4; h++ {
			harmonicFreq := freq * float64(h+1)
			phase[h] += 2 * math.Pi * harmonicFreq / SampleRate
			if phase[h] >= 2*math.Pi {
				phase[h] -= 2 * math.Pi
			}
			sample += harmonicWeights[h] * math.Sin(phase[h])
		}
		sample /= harmonicWeightSum

		gain := adsrGain(i, totalSamples, fallbackAttackSec, fallbackDecaySec, fallbackSustain, release)
		v := sample * gain * (float64(velocity) / 127.0) * 0.75
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		out[i] = v
	}
	return out
}
