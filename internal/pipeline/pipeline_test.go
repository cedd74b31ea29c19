package pipeline

import (
	"context"
	"testing"

	"scoreforge/internal/neural"
	"scoreforge/internal/sheet"
)

func blankImage(w, h int) *sheet.Image {
	im := &sheet.Image{Width: w, Height: h, Luma: make([]uint8, w*h)}
	for i := range im.Luma {
		im.Luma[i] = 255
	}
	return im
}

func TestSystemRoleFindsTopAndSize(t *testing.T) {
	systems := []sheet.System{{StaffIndices: []int{0, 1}}, {StaffIndices: []int{2}}}

	if size, top := systemRole(systems, 0); size != 2 || !top {
		t.Fatalf("expected staff 0 to be system size 2, top=true, got size=%d top=%v", size, top)
	}
	if size, top := systemRole(systems, 1); size != 2 || top {
		t.Fatalf("expected staff 1 to be system size 2, top=false, got size=%d top=%v", size, top)
	}
	if size, _ := systemRole(systems, 2); size != 1 {
		t.Fatalf("expected staff 2 to be a solo system, got size=%d", size)
	}
}

func TestShrinkOutermostOfPair(t *testing.T) {
	systems := []sheet.System{{StaffIndices: []int{0, 1}}}
	if !shrinkOutermostOfPair(systems, 1) {
		t.Fatal("expected bottom staff of a grand-staff pair to shrink its detection region")
	}
	if shrinkOutermostOfPair(systems, 0) {
		t.Fatal("top staff of a pair should not shrink")
	}
}

func TestCheckCancelDetectsDeadline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := checkCancel(ctx); err == nil {
		t.Fatal("expected checkCancel to report cancellation once ctx is done")
	}
}

func TestDetectStaffEventsOnBlankStaffYieldsNothing(t *testing.T) {
	img := blankImage(400, 200)
	st := sheet.Staff{Lines: [5]int{50, 60, 70, 80, 90}}

	notes, rests := detectStaffEvents(img, st, 0, sheet.ClefTreble, sheet.KeySignature{}, nil, false, nil)
	if len(notes) != 0 || len(rests) != 0 {
		t.Fatalf("expected no notes/rests on a blank staff, got %d notes, %d rests", len(notes), len(rests))
	}
}

func TestAdvanceMeasureCrossesEachBarLineOnce(t *testing.T) {
	barXs := []int{40, 100}

	measureIdx, barIdx := 0, 0
	measureIdx, barIdx = advanceMeasure(5, barXs, barIdx, measureIdx)
	if measureIdx != 0 {
		t.Fatalf("expected measure 0 before the first bar line, got %d", measureIdx)
	}

	measureIdx, barIdx = advanceMeasure(41, barXs, barIdx, measureIdx)
	if measureIdx != 1 || barIdx != 1 {
		t.Fatalf("expected measure 1 after crossing x=40, got measure=%d barIdx=%d", measureIdx, barIdx)
	}

	measureIdx, barIdx = advanceMeasure(90, barXs, barIdx, measureIdx)
	if measureIdx != 1 {
		t.Fatalf("expected to stay in measure 1 before the second bar line, got %d", measureIdx)
	}

	measureIdx, barIdx = advanceMeasure(150, barXs, barIdx, measureIdx)
	if measureIdx != 2 || barIdx != 2 {
		t.Fatalf("expected measure 2 after crossing both bar lines, got measure=%d barIdx=%d", measureIdx, barIdx)
	}
}

func TestGateCandidateUnavailableClassifiersKeepsAll(t *testing.T) {
	img := blankImage(100, 100)
	gate := gateCandidate(img, 50, 50, 10, nil)
	if !gate.Keep {
		t.Fatal("expected ModelUnavailable fallback to keep every candidate")
	}
	if gate.Category != neural.CategoryNote {
		t.Fatalf("expected fallback category note, got %v", gate.Category)
	}
}

func TestExtractOCRPatchProducesNormalizedPatch(t *testing.T) {
	img := blankImage(100, 100)
	for y := 45; y < 55; y++ {
		for x := 45; x < 55; x++ {
			img.Set(x, y, 0)
		}
	}
	patch := extractOCRPatch(img, 50, 50, 10)
	if len(patch) != 24*24 {
		t.Fatalf("expected a 24x24 patch, got %d values", len(patch))
	}

	var mean float32
	for _, v := range patch {
		mean += v
	}
	mean /= float32(len(patch))
	if mean > 0.2 || mean < -0.2 {
		t.Fatalf("expected roughly zero-mean patch, got mean %f", mean)
	}
}
