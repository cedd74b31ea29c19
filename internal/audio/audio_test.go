package audio

import (
	"testing"

	"scoreforge/internal/sheet"
)

func TestLayoutSingleWholeNote(t *testing.T) {
	events := []sheet.Event{
		{Note: &sheet.Note{X: 10, Y: 50, StaffIndex: 0, MidiNote: 60, Duration: sheet.DurWhole, Voice: sheet.VoiceSoprano}},
	}
	meta := sheet.Metadata{}
	result := Layout(events, meta, 120)

	if len(result.Timing) != 1 {
		t.Fatalf("expected 1 timing entry, got %d", len(result.Timing))
	}
	if result.Timing[0].IsRest {
		t.Fatal("expected a non-rest timing entry")
	}
	if len(result.Tasks) != 1 || len(result.Tasks[0].Notes) != 1 {
		t.Fatalf("expected 1 render task with 1 note, got %+v", result.Tasks)
	}
	expectedSec := 4 * 60.0 / 120.0
	if result.TotalSec < expectedSec-0.01 || result.TotalSec > expectedSec+0.01 {
		t.Fatalf("expected total duration near %fs, got %f", expectedSec, result.TotalSec)
	}
}

func TestLayoutGroupsChordsIntoOneColumn(t *testing.T) {
	events := []sheet.Event{
		{Note: &sheet.Note{X: 10, StaffIndex: 0, MidiNote: 60, Duration: sheet.DurQuarter, Voice: sheet.VoiceSoprano}},
		{Note: &sheet.Note{X: 13, StaffIndex: 0, MidiNote: 64, Duration: sheet.DurQuarter, Voice: sheet.VoiceAlto}},
	}
	result := Layout(events, sheet.Metadata{}, 120)
	if len(result.Timing) != 1 {
		t.Fatalf("expected events within 8px to form one beat column, got %d entries", len(result.Timing))
	}
	if len(result.Tasks[0].Notes) != 2 {
		t.Fatalf("expected both chord notes in one render task, got %d", len(result.Tasks[0].Notes))
	}
}

func TestMixNormalizesClippingPeak(t *testing.T) {
	renders := []RenderedNote{
		{OffsetSamples: 0, Samples: []float64{0.5, 1.5, -2.0}},
	}
	master := Mix(0.1, renders)
	for _, v := range master[:3] {
		if v < -1.0001 || v > 1.0001 {
			t.Fatalf("expected normalized peak <= 1, got %f", v)
		}
	}
}

func TestEncodeWAVHeaderFields(t *testing.T) {
	wav := EncodeWAV([]float64{0, 0.5, -0.5})
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatalf("expected RIFF/WAVE header, got %q/%q", wav[0:4], wav[8:12])
	}
	if string(wav[12:16]) != "fmt " {
		t.Fatalf("expected fmt chunk, got %q", wav[12:16])
	}
	if string(wav[36:40]) != "data" {
		t.Fatalf("expected data chunk at offset 36, got %q", wav[36:40])
	}
}

func TestVoiceMaskFiltersNotes(t *testing.T) {
	events := []sheet.Event{
		{Note: &sheet.Note{X: 10, StaffIndex: 0, MidiNote: 60, Duration: sheet.DurQuarter, Voice: sheet.VoiceBass}},
	}
	mask := VoiceMask{Soprano: true, Alto: true, Tenor: true, Bass: false}
	score := &sheet.Score{Events: events}
	result, err := RenderAudio(score, 120, 0, mask, nil, nil, "test-run")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.WAV) <= 44 {
		t.Fatalf("expected a WAV with non-empty (silent) data, got %d bytes", len(result.WAV))
	}
}

func TestRenderAudioNoEventsReturnsSilentWAV(t *testing.T) {
	score := &sheet.Score{}
	result, err := RenderAudio(score, 120, 0, AllVoices, nil, nil, "test-run")
	if err != nil {
		t.Fatalf("expected no error for an empty score, got %v", err)
	}
	if len(result.Timing) != 0 {
		t.Fatalf("expected an empty timing map, got %d entries", len(result.Timing))
	}
	if len(result.WAV) <= 44 {
		t.Fatalf("expected a non-empty silent WAV, got %d bytes", len(result.WAV))
	}
	if result.TotalDurationSec != 0.1 {
		t.Fatalf("expected a 0.1s duration, got %f", result.TotalDurationSec)
	}
}
