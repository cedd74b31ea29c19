// Command scoreforge is the CLI entry point: it runs a sheet-music
// image through the OMR pipeline to produce a Score, and optionally
// renders that Score to a WAV file via a SoundFont, matching the
// teacher's flag-driven single-binary CLI style (cmd/emulator).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"scoreforge/internal/audio"
	"scoreforge/internal/diag"
	"scoreforge/internal/neural"
	"scoreforge/internal/pipeline"
)

func main() {
	imagePath := flag.String("image", "", "Path to sheet-music image file (JPEG)")
	sf2Path := flag.String("sf2", "", "Path to a SoundFont (.sf2) file, or s3://bucket/key (omit for the fallback synth)")
	scoreOut := flag.String("score-out", "score.json", "Path to write the recognized Score as JSON")
	wavOut := flag.String("wav-out", "render.wav", "Path to write the rendered WAV")
	tempo := flag.Int("tempo", 120, "Playback tempo in BPM (40-240)")
	preset := flag.Int("preset", 0, "SoundFont preset index")
	timeout := flag.Duration("timeout", pipeline.DefaultOMRTimeout, "OMR stage timeout")
	verbose := flag.Bool("verbose", false, "Print diagnostic log entries after the run")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: scoreforge -image <path> [-sf2 <path|s3://bucket/key>] [-score-out score.json] [-wav-out render.wav]")
		fmt.Println("  -image <path>     Path to a sheet-music photo (required)")
		fmt.Println("  -sf2 <ref>        SoundFont to render with (optional; falls back to the harmonic synth)")
		fmt.Println("  -tempo <bpm>      Playback tempo, 40-240 (default 120)")
		fmt.Println("  -preset <n>       SoundFont preset index (default 0)")
		fmt.Println("  -score-out <path> Where to write the recognized Score JSON (default score.json)")
		fmt.Println("  -wav-out <path>   Where to write the rendered WAV (default render.wav)")
		os.Exit(1)
	}

	imageData, err := os.ReadFile(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading image file: %v\n", err)
		os.Exit(1)
	}

	logger := diag.NewLogger(4096)
	defer logger.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	score, err := pipeline.ProcessSheet(ctx, imageData, &neural.Classifiers{}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error processing sheet: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Recognized %d notes, %d rests across %d staves\n", score.Metadata.TotalNotes, score.Metadata.TotalRests, score.Staves)

	scoreJSON, err := json.MarshalIndent(score, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling score: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*scoreOut, scoreJSON, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing score JSON: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Score written to %s\n", *scoreOut)

	renderCtx, renderCancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer renderCancel()

	result, err := pipeline.RenderAudio(renderCtx, score, *tempo, *preset, audio.AllVoices, *sf2Path, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering audio: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*wavOut, result.WAV, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing WAV file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Rendered %.2fs of audio to %s (%d timing-map entries)\n", result.TotalDurationSec, *wavOut, len(result.Timing))

	if *verbose {
		fmt.Println("\nDiagnostic log:")
		for _, e := range logger.Entries() {
			fmt.Printf("  [%s] %s %s: %s\n", e.Timestamp.Format(time.RFC3339), e.Level, e.Stage, e.Message)
		}
	}
}
