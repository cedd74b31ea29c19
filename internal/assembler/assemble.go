// Package assembler orders the pipeline's detected events into the
// final Score document and its metadata envelope.
package assembler

import (
	"sort"

	"scoreforge/internal/pitch"
	"scoreforge/internal/sheet"
)

// Assemble orders events by (staffIndex asc, x asc), groups each
// staff's events into measures by bar line, and populates the
// metadata envelope.
func Assemble(events []sheet.Event, staffCount int, meta sheet.Metadata) sheet.Score {
	ordered := make([]sheet.Event, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].StaffIndex() != ordered[j].StaffIndex() {
			return ordered[i].StaffIndex() < ordered[j].StaffIndex()
		}
		return ordered[i].X() < ordered[j].X()
	})

	var measures []sheet.Measure
	for staffIdx := 0; staffIdx < staffCount; staffIdx++ {
		measures = append(measures, pitch.GroupMeasures(staffIdx, ordered, meta.BarLines)...)
	}

	totalNotes, totalRests := 0, 0
	for _, e := range ordered {
		if e.IsRest() {
			totalRests++
		} else {
			totalNotes++
		}
	}
	meta.TotalNotes = totalNotes
	meta.TotalRests = totalRests

	return sheet.Score{
		Events:   ordered,
		Measures: measures,
		Staves:   staffCount,
		Metadata: meta,
	}
}
