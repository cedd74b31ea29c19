package layout

import (
	"testing"

	"scoreforge/internal/sheet"
)

func note(x, staffIndex int) sheet.Event {
	return sheet.Event{Note: &sheet.Note{X: x, StaffIndex: staffIndex, MidiNote: 60}}
}

func TestExpandRepeatsDuplicatesRegion(t *testing.T) {
	events := []sheet.Event{
		note(250, 0), note(350, 0), note(450, 0), note(550, 0),
		note(700, 0),
	}
	barLines := []sheet.BarLine{
		{X: 200, StaffIndex: 0, Type: sheet.BarRepeatStart},
		{X: 600, StaffIndex: 0, Type: sheet.BarRepeatEnd},
	}

	expanded := ExpandRepeats(events, barLines)

	if len(expanded) != 9 { // 5 originals + 4 duplicated (the region's 4 notes)
		t.Fatalf("expected 9 events after expansion, got %d", len(expanded))
	}

	var repeatedCount int
	for _, e := range expanded {
		if e.Note.Repeated {
			repeatedCount++
		}
	}
	if repeatedCount != 4 {
		t.Fatalf("expected 4 repeated notes, got %d", repeatedCount)
	}
}

func TestExpandRepeatsIsIdempotent(t *testing.T) {
	events := []sheet.Event{
		note(250, 0), note(350, 0), note(450, 0), note(550, 0),
	}
	barLines := []sheet.BarLine{
		{X: 200, StaffIndex: 0, Type: sheet.BarRepeatStart},
		{X: 600, StaffIndex: 0, Type: sheet.BarRepeatEnd},
	}

	once := ExpandRepeats(events, barLines)
	twice := ExpandRepeats(once, barLines)

	if len(once) != len(twice) {
		t.Fatalf("expected idempotent expansion: %d vs %d events", len(once), len(twice))
	}
	for i := range once {
		if once[i].Note.X != twice[i].Note.X || once[i].Note.MidiNote != twice[i].Note.MidiNote {
			t.Fatalf("event %d changed on second expansion pass", i)
		}
	}
}
