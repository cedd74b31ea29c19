package diag

import "testing"

func TestLoggerBuffersEntries(t *testing.T) {
	l := NewLogger(4)

	for i := 0; i < 6; i++ {
		l.Logf(StageSF2, LevelWarn, "run-1", "entry %d", i)
	}
	l.Shutdown() // flushes the channel into the circular buffer

	entries := l.Entries()
	if len(entries) > 4 {
		t.Fatalf("expected circular buffer to cap at 4 entries, got %d", len(entries))
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	l := NewLogger(16)
	l.SetMinLevel(LevelError)

	l.Log(StagePitch, LevelDebug, "", "should be filtered", nil)
	l.Log(StagePitch, LevelError, "", "should be kept", nil)
	l.Shutdown()

	entries := l.Entries()
	for _, e := range entries {
		if e.Level == LevelDebug {
			t.Fatalf("debug entry should have been filtered by min level")
		}
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly 1 entry to survive the level filter, got %d", len(entries))
	}
}
