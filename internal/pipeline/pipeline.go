// Package pipeline implements the top-level ProcessSheet/RenderAudio
// orchestration: it wires image decode through Score assembly into
// one sheet-to-Score call and SoundFont loading through WAV encoding
// into one Score-to-WAV call, tagging each run with a UUID (the
// magda-api convention), threading a diag.Logger, and checking context
// cancellation at every stage boundary.
package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"scoreforge/internal/diag"
	"scoreforge/internal/layout"
	"scoreforge/internal/neural"
	"scoreforge/internal/pitch"
	"scoreforge/internal/sheet"

	"scoreforge/internal/assembler"
	"scoreforge/internal/imageio"
	"scoreforge/internal/staff"
)

// DefaultOMRTimeout is the default deadline for a ProcessSheet call:
// OMR is a bounded, best-effort image analysis, not an open-ended job.
const DefaultOMRTimeout = 45 * time.Second

// ProcessSheet decodes the image, detects staves, analyzes layout,
// detects symbols, gates them through the (optional) neural
// classifiers, maps pitch/rhythm, and assembles the ordered Score. If
// ctx carries no deadline, one of DefaultOMRTimeout is applied.
func ProcessSheet(ctx context.Context, imageData []byte, classifiers *neural.Classifiers, logger *diag.Logger) (*sheet.Score, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultOMRTimeout)
		defer cancel()
	}

	runID := uuid.New().String()
	logf(logger, diag.StagePipeline, runID, "processSheet start (%d bytes)", len(imageData))

	// Stage A: decode.
	img, err := imageio.Load(imageData, logger, runID)
	if err != nil {
		return nil, sheet.Stage("imageio", err, "")
	}
	if err := checkCancel(ctx); err != nil {
		return nil, err
	}

	// Stage B: staff detection.
	staves, systems := staff.Detect(img)
	if len(staves) == 0 {
		return nil, sheet.Stage("staff", sheet.ErrNoStavesDetected, "")
	}
	logf(logger, diag.StageStaff, runID, "detected %d staves in %d systems", len(staves), len(systems))
	if err := checkCancel(ctx); err != nil {
		return nil, err
	}

	// Stage C: layout analysis (clef, key/time signature, bar lines,
	// ledger lines).
	meta := sheet.Metadata{ImageWidth: img.Width, ImageHeight: img.Height}
	clefs := make([]sheet.Clef, len(staves))
	staffGroups := make([][5]int, len(staves))
	timeSigEndX := make([]int, len(staves))
	for i, st := range staves {
		staffGroups[i] = st.Lines
		sysSize, roleIsTop := systemRole(systems, i)
		clefs[i] = layout.ClassifyClef(img, st, sysSize, roleIsTop)
		if ts, ok := layout.DetectTimeSignature(img, st); ok {
			timeSigEndX[i] = ts.EndX
			if i == 0 {
				meta.TimeSignature = ts
			}
		}
		meta.LedgerLineCount += layout.CountLedgerLines(img, st)
	}
	meta.Clefs = clefs
	meta.StaffGroups = staffGroups
	meta.Systems = systems

	if ks, err := layout.KeySignature(img, staves[0], classifiers); err == nil {
		meta.KeySignature = ks
	} else {
		logf(logger, diag.StageLayout, runID, "key signature unavailable: %v", err)
	}

	barLines := layout.DetectBarLines(img, staves, systems, timeSigEndX)
	meta.BarLines = barLines
	if err := checkCancel(ctx); err != nil {
		return nil, err
	}

	// Per-staff symbol detection, confidence gating, and pitch/rhythm
	// mapping.
	barXsByStaff := make([][]int, len(staves))
	for _, bl := range barLines {
		barXsByStaff[bl.StaffIndex] = append(barXsByStaff[bl.StaffIndex], bl.X)
	}
	for i := range barXsByStaff {
		sort.Ints(barXsByStaff[i])
	}

	var rawEvents []sheet.Event
	for staffIdx, st := range staves {
		shrink := shrinkOutermostOfPair(systems, staffIdx)
		notes, rests := detectStaffEvents(img, st, staffIdx, clefs[staffIdx], meta.KeySignature, classifiers, shrink, barXsByStaff[staffIdx])
		for _, n := range notes {
			rawEvents = append(rawEvents, sheet.Event{Note: n})
		}
		for _, r := range rests {
			rawEvents = append(rawEvents, sheet.Event{Rest: r})
		}
	}
	if err := checkCancel(ctx); err != nil {
		return nil, err
	}

	// Repeat expansion operates on the raw x-ordered event stream,
	// before measures are grouped.
	sort.SliceStable(rawEvents, func(i, j int) bool {
		if rawEvents[i].StaffIndex() != rawEvents[j].StaffIndex() {
			return rawEvents[i].StaffIndex() < rawEvents[j].StaffIndex()
		}
		return rawEvents[i].X() < rawEvents[j].X()
	})
	rawEvents = layout.ExpandRepeats(rawEvents, barLines)

	// Stage G: assemble into a Score, then quantize each measure's
	// rhythm against the time signature. The first/last-measure
	// exemption applies per staff, not globally.
	score := assembler.Assemble(rawEvents, len(staves), meta)
	lastIndexByStaff := map[int]int{}
	for _, m := range score.Measures {
		if m.MeasureIndex > lastIndexByStaff[m.StaffIndex] {
			lastIndexByStaff[m.StaffIndex] = m.MeasureIndex
		}
	}
	for mi := range score.Measures {
		m := &score.Measures[mi]
		isFirst := m.MeasureIndex == 0
		isLast := m.MeasureIndex == lastIndexByStaff[m.StaffIndex]
		pitch.QuantizeMeasure(m, score.Metadata.TimeSignature, isFirst, isLast)
	}

	logf(logger, diag.StagePipeline, runID, "processSheet done: %d notes, %d rests", score.Metadata.TotalNotes, score.Metadata.TotalRests)
	return &score, nil
}

func systemRole(systems []sheet.System, staffIdx int) (systemSize int, roleIsTop bool) {
	for _, sys := range systems {
		for i, idx := range sys.StaffIndices {
			if idx == staffIdx {
				return len(sys.StaffIndices), i == 0
			}
		}
	}
	return 1, true
}

// shrinkOutermostOfPair reports whether notehead detection shrinks its
// scan region for staffIdx: true for the second staff of every
// two-staff system. The inter-staff gap is not measured, so a pair
// shrinks whether or not the gap holds lyrics.
func shrinkOutermostOfPair(systems []sheet.System, staffIdx int) bool {
	for _, sys := range systems {
		if len(sys.StaffIndices) != 2 {
			continue
		}
		if sys.StaffIndices[1] == staffIdx {
			return true
		}
	}
	return false
}

func logf(logger *diag.Logger, stage diag.Stage, runID, format string, args ...any) {
	if logger == nil {
		return
	}
	logger.Logf(stage, diag.LevelInfo, runID, format, args...)
}

func checkCancel(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return sheet.Stage("pipeline", sheet.ErrCancellation, ctx.Err().Error())
	default:
		return nil
	}
}
