package layout

import (
	"sort"

	"scoreforge/internal/sheet"
)

type repeatRegion struct {
	staffIndex    int
	leftX, rightX int
}

// ExpandRepeats builds (leftX,rightX) regions from
// RepeatStart/RepeatEnd/RepeatBoth bar lines (implicit start = 0),
// then for each region, right-to-left, shifts every later event
// rightward by the region width and re-inserts a duplicate of the
// region's events at the shifted-open slot, marked Repeated.
//
// Running this twice on an already-expanded event list is a no-op:
// regions on any staff that already holds Repeated events are dropped
// before expansion, so a second pass leaves those staves unchanged.
func ExpandRepeats(events []sheet.Event, barLines []sheet.BarLine) []sheet.Event {
	regions := buildRegions(barLines)
	if len(regions) == 0 {
		return events
	}

	alreadyExpanded := map[int]bool{}
	for _, e := range events {
		if isRepeated(e) {
			alreadyExpanded[e.StaffIndex()] = true
		}
	}
	regions = filterRegions(regions, alreadyExpanded)
	if len(regions) == 0 {
		return events
	}

	sort.Slice(regions, func(i, j int) bool { return regions[i].leftX > regions[j].leftX })

	out := append([]sheet.Event(nil), events...)

	for _, r := range regions {
		width := r.rightX - r.leftX + 1
		if width <= 0 {
			continue
		}

		var dupes []sheet.Event
		for i := range out {
			e := out[i]
			if e.StaffIndex() != r.staffIndex {
				continue
			}
			x := e.X()
			if x > r.rightX {
				shiftEventX(&out[i], width)
			} else if x >= r.leftX && x <= r.rightX {
				dupe := cloneEvent(e)
				shiftEventX(&dupe, width)
				markRepeated(&dupe)
				dupes = append(dupes, dupe)
			}
		}
		out = append(out, dupes...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StaffIndex() != out[j].StaffIndex() {
			return out[i].StaffIndex() < out[j].StaffIndex()
		}
		return out[i].X() < out[j].X()
	})
	return out
}

func isRepeated(e sheet.Event) bool {
	if e.Note != nil {
		return e.Note.Repeated
	}
	return e.Rest.Repeated
}

// filterRegions drops regions for staves that already contain
// Repeated events, so re-running ExpandRepeats on its own output is a
// no-op instead of double-shifting.
func filterRegions(regions []repeatRegion, alreadyExpanded map[int]bool) []repeatRegion {
	var out []repeatRegion
	for _, r := range regions {
		if alreadyExpanded[r.staffIndex] {
			continue
		}
		out = append(out, r)
	}
	return out
}

func buildRegions(barLines []sheet.BarLine) []repeatRegion {
	byStaff := map[int][]sheet.BarLine{}
	for _, bl := range barLines {
		byStaff[bl.StaffIndex] = append(byStaff[bl.StaffIndex], bl)
	}

	var regions []repeatRegion
	for staffIdx, lines := range byStaff {
		sort.Slice(lines, func(i, j int) bool { return lines[i].X < lines[j].X })
		lastStart := 0
		for _, bl := range lines {
			switch bl.Type {
			case sheet.BarRepeatStart:
				lastStart = bl.X
			case sheet.BarRepeatEnd:
				regions = append(regions, repeatRegion{staffIndex: staffIdx, leftX: lastStart, rightX: bl.X})
				lastStart = bl.X
			case sheet.BarRepeatBoth:
				regions = append(regions, repeatRegion{staffIndex: staffIdx, leftX: lastStart, rightX: bl.X})
				lastStart = bl.X
			}
		}
	}
	return regions
}

func cloneEvent(e sheet.Event) sheet.Event {
	if e.Note != nil {
		n := *e.Note
		return sheet.Event{Note: &n}
	}
	r := *e.Rest
	return sheet.Event{Rest: &r}
}

func shiftEventX(e *sheet.Event, delta int) {
	if e.Note != nil {
		e.Note.X += delta
	} else {
		e.Rest.X += delta
	}
}

func markRepeated(e *sheet.Event) {
	if e.Note != nil {
		e.Note.Repeated = true
	} else {
		e.Rest.Repeated = true
	}
}
