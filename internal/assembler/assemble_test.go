package assembler

import (
	"testing"

	"scoreforge/internal/sheet"
)

func TestAssembleOrdersByStaffThenX(t *testing.T) {
	events := []sheet.Event{
		{Note: &sheet.Note{X: 50, StaffIndex: 1}},
		{Note: &sheet.Note{X: 10, StaffIndex: 0}},
		{Note: &sheet.Note{X: 5, StaffIndex: 1}},
	}
	score := Assemble(events, 2, sheet.Metadata{})
	if len(score.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(score.Events))
	}
	if score.Events[0].StaffIndex() != 0 {
		t.Fatalf("expected staff 0 first, got %d", score.Events[0].StaffIndex())
	}
	if score.Events[1].X() != 5 || score.Events[2].X() != 50 {
		t.Fatalf("expected staff-1 events ordered by x, got %+v", score.Events[1:])
	}
}

func TestAssembleCountsNotesAndRests(t *testing.T) {
	events := []sheet.Event{
		{Note: &sheet.Note{X: 1, StaffIndex: 0}},
		{Rest: &sheet.Rest{X: 2, StaffIndex: 0}},
		{Rest: &sheet.Rest{X: 3, StaffIndex: 0}},
	}
	score := Assemble(events, 1, sheet.Metadata{})
	if score.Metadata.TotalNotes != 1 || score.Metadata.TotalRests != 2 {
		t.Fatalf("expected 1 note/2 rests, got %d/%d", score.Metadata.TotalNotes, score.Metadata.TotalRests)
	}
}
