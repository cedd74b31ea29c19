package audio

import (
	"scoreforge/internal/diag"
	"scoreforge/internal/sf2"
	"scoreforge/internal/sheet"
	"scoreforge/internal/synth"
)

// VoiceMask selects which SATB voices are audible.
type VoiceMask struct {
	Soprano, Alto, Tenor, Bass bool
}

func (m VoiceMask) allows(v sheet.Voice) bool {
	switch v {
	case sheet.VoiceSoprano:
		return m.Soprano
	case sheet.VoiceAlto:
		return m.Alto
	case sheet.VoiceTenor:
		return m.Tenor
	case sheet.VoiceBass:
		return m.Bass
	default:
		return true
	}
}

// AllVoices is the default mask with every SATB voice audible.
var AllVoices = VoiceMask{Soprano: true, Alto: true, Tenor: true, Bass: true}

// Result is RenderAudio's output: the encoded WAV, the
// cursor timing map, and the total duration in seconds.
type Result struct {
	WAV              []byte
	Timing           []CursorEntry
	TotalDurationSec float32
}

// RenderAudio lays out the score into beat columns and render tasks,
// renders each task's notes (through the SF2 zone renderer when font
// is non-nil, else the fallback harmonic synth), mixes, and encodes
// to WAV.
func RenderAudio(score *sheet.Score, tempo int, presetIndex int, mask VoiceMask, font *sf2.SoundFont, logger *diag.Logger, runID string) (Result, error) {
	if len(score.Events) == 0 {
		silence := make([]float64, int(0.1*sampleRate))
		return Result{
			WAV:              EncodeWAV(silence),
			Timing:           nil,
			TotalDurationSec: 0.1,
		}, nil
	}
	if tempo < 40 || tempo > 240 {
		tempo = 120
	}

	if font != nil {
		if err := font.SelectPreset(presetIndex, logger, runID); err != nil {
			return Result{}, sheet.Stage("audio", err, "preset selection failed")
		}
	}

	layout := Layout(score.Events, score.Metadata, tempo)

	var rendered []RenderedNote
	for _, task := range layout.Tasks {
		for _, note := range task.Notes {
			if !mask.allows(note.Voice) {
				continue
			}
			var samples []float64
			if font != nil {
				if z, ok := font.FindZone(note.MidiNote, 80); ok {
					samples = synth.RenderZone(font.Samples(), z, note.MidiNote, note.DurationS, 100)
				}
			}
			if samples == nil {
				samples = synth.RenderFallback(note.MidiNote, note.DurationS, 100)
			}
			rendered = append(rendered, RenderedNote{OffsetSamples: task.OffsetSamples, Samples: samples})
		}
	}

	master := Mix(layout.TotalSec, rendered)
	wav := EncodeWAV(master)

	return Result{
		WAV:              wav,
		Timing:           layout.Timing,
		TotalDurationSec: float32(layout.TotalSec + 0.3),
	}, nil
}
