package pitch

import (
	"sort"

	"scoreforge/internal/sheet"
)

// GroupMeasures implements measure grouping: per staff,
// bucket events into [barLine_{i-1}, barLine_i) using the detected
// bar-line x positions for that staff.
func GroupMeasures(staffIndex int, events []sheet.Event, barLines []sheet.BarLine) []sheet.Measure {
	var xs []int
	for _, bl := range barLines {
		if bl.StaffIndex == staffIndex {
			xs = append(xs, bl.X)
		}
	}
	sort.Ints(xs)

	var staffEvents []sheet.Event
	for _, e := range events {
		if e.StaffIndex() == staffIndex {
			staffEvents = append(staffEvents, e)
		}
	}
	sort.Slice(staffEvents, func(i, j int) bool { return staffEvents[i].X() < staffEvents[j].X() })

	bounds := append([]int{0}, xs...)
	measures := make([]sheet.Measure, len(bounds))
	for i := range measures {
		measures[i] = sheet.Measure{MeasureIndex: i, StaffIndex: staffIndex, Left: bounds[i]}
		if i+1 < len(bounds) {
			right := bounds[i+1]
			measures[i].Right = &right
		}
	}

	for _, e := range staffEvents {
		idx := bucketFor(e.X(), bounds)
		measures[idx].Events = append(measures[idx].Events, e)
	}
	return measures
}

func bucketFor(x int, bounds []int) int {
	idx := 0
	for i, b := range bounds {
		if x >= b {
			idx = i
		} else {
			break
		}
	}
	return idx
}
