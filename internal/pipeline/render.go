package pipeline

import (
	"context"

	"github.com/google/uuid"

	"scoreforge/internal/audio"
	"scoreforge/internal/diag"
	"scoreforge/internal/sf2"
	"scoreforge/internal/sfload"
	"scoreforge/internal/sheet"
)

// RenderAudio resolves an optional soundfont reference (local path or
// s3://bucket/key), parses it, and renders the Score to WAV bytes plus
// a timing map. soundfontRef == "" renders with the fallback harmonic
// synthesizer only.
func RenderAudio(ctx context.Context, score *sheet.Score, tempo, presetIndex int, mask audio.VoiceMask, soundfontRef string, logger *diag.Logger) (audio.Result, error) {
	runID := uuid.New().String()
	logf(logger, diag.StageAudio, runID, "renderAudio start (tempo=%d preset=%d font=%q)", tempo, presetIndex, soundfontRef)

	var font *sf2.SoundFont
	if soundfontRef != "" {
		data, err := sfload.Resolve(ctx, soundfontRef)
		if err != nil {
			return audio.Result{}, sheet.Stage("sfload", err, soundfontRef)
		}
		if err := checkCancel(ctx); err != nil {
			return audio.Result{}, err
		}
		font, err = sf2.Load(data, logger, runID)
		if err != nil {
			return audio.Result{}, sheet.Stage("sf2", err, soundfontRef)
		}
		logf(logger, diag.StageSF2, runID, "loaded soundfont with %d presets", font.PresetCount())
	}

	if err := checkCancel(ctx); err != nil {
		return audio.Result{}, err
	}

	result, err := audio.RenderAudio(score, tempo, presetIndex, mask, font, logger, runID)
	if err != nil {
		return audio.Result{}, sheet.Stage("audio", err, "")
	}

	logf(logger, diag.StageAudio, runID, "renderAudio done: %d WAV bytes, %.2fs", len(result.WAV), result.TotalDurationSec)
	return result, nil
}
