package layout

import "testing"

func TestValidateSnapsIllegalTimeSignature(t *testing.T) {
	ts, ok := validate(7, 3, 100)
	if !ok {
		t.Fatal("validate should always resolve to a legal signature")
	}
	if ts.Beats != 4 || ts.BeatType != 4 {
		t.Fatalf("expected illegal 7/3 to snap to 4/4, got %d/%d", ts.Beats, ts.BeatType)
	}
}

func TestValidateFlagsCompoundMeter(t *testing.T) {
	ts, ok := validate(6, 8, 100)
	if !ok || !ts.Compound {
		t.Fatalf("expected 6/8 to be flagged compound, got %+v (ok=%v)", ts, ok)
	}
}

func TestValidateKeepsSimpleMeter(t *testing.T) {
	ts, ok := validate(4, 4, 100)
	if !ok || ts.Compound {
		t.Fatalf("4/4 should not be compound, got %+v", ts)
	}
}
