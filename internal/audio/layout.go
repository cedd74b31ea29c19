// Package audio handles beat-column grouping and timing-map layout,
// sample mixing, and canonical WAV encoding.
package audio

import (
	"sort"

	"scoreforge/internal/sheet"
)

const sampleRate = 44100

// CursorEntry is one timing-map entry: the point in
// rendered audio time that corresponds to a beat column in the score.
type CursorEntry struct {
	TimeSec    float64 `json:"time"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	StaffIndex int     `json:"staffIndex"`
	IsRest     bool    `json:"isRest"`
}

// NoteTask is one note to render within a RenderTask.
type NoteTask struct {
	MidiNote  int
	DurationS float64
	Voice     sheet.Voice
}

// RenderTask is a beat column's worth of simultaneous notes to render,
// anchored at an absolute sample offset into the mix buffer.
type RenderTask struct {
	OffsetSamples int
	Notes         []NoteTask
}

// LayoutResult is the output of Layout: the timing map plus the list
// of render tasks, and the total duration used to size the mix buffer.
type LayoutResult struct {
	Timing   []CursorEntry
	Tasks    []RenderTask
	TotalSec float64
}

// groupSystems partitions events by system using metadata.Systems when
// present, falling back to pairing adjacent staves 2-at-a-time.
func groupSystems(events []sheet.Event, meta sheet.Metadata) [][]sheet.Event {
	if len(meta.Systems) > 0 {
		groups := make([][]sheet.Event, len(meta.Systems))
		staffToSystem := map[int]int{}
		for si, sys := range meta.Systems {
			for _, idx := range sys.StaffIndices {
				staffToSystem[idx] = si
			}
		}
		for _, e := range events {
			if si, ok := staffToSystem[e.StaffIndex()]; ok {
				groups[si] = append(groups[si], e)
			}
		}
		return groups
	}

	byStaff := map[int][]sheet.Event{}
	maxStaff := -1
	for _, e := range events {
		byStaff[e.StaffIndex()] = append(byStaff[e.StaffIndex()], e)
		if e.StaffIndex() > maxStaff {
			maxStaff = e.StaffIndex()
		}
	}
	var groups [][]sheet.Event
	for i := 0; i <= maxStaff; i += 2 {
		var g []sheet.Event
		g = append(g, byStaff[i]...)
		if i+1 <= maxStaff {
			g = append(g, byStaff[i+1]...)
		}
		if len(g) > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}

type beatColumn struct {
	events []sheet.Event
}

func groupBeatColumns(events []sheet.Event) []beatColumn {
	sort.Slice(events, func(i, j int) bool { return events[i].X() < events[j].X() })
	var cols []beatColumn
	for _, e := range events {
		if len(cols) > 0 {
			last := &cols[len(cols)-1]
			if e.X()-last.events[len(last.events)-1].X() <= 8 {
				last.events = append(last.events, e)
				continue
			}
		}
		cols = append(cols, beatColumn{events: []sheet.Event{e}})
	}
	return cols
}

// Layout groups events by system, then by beat column within each
// system, emitting a timing entry per column and a render task for
// columns with playable notes. Systems follow each other sequentially
// with no gap.
func Layout(events []sheet.Event, meta sheet.Metadata, tempo int) LayoutResult {
	secondsPerBeat := 60.0 / float64(tempo)
	systems := groupSystems(events, meta)

	var timing []CursorEntry
	var tasks []RenderTask
	globalTime := 0.0

	for _, sysEvents := range systems {
		cols := groupBeatColumns(sysEvents)
		for _, col := range cols {
			sumX, sumY := 0, 0
			allRest := true
			minBeats := -1.0
			for _, e := range col.events {
				sumX += e.X()
				y := 0
				if e.Note != nil {
					y = e.Note.Y
					allRest = false
				} else {
					y = e.Rest.Y
				}
				sumY += y
				b := e.Beats()
				if minBeats < 0 || b < minBeats {
					minBeats = b
				}
			}
			n := len(col.events)
			entry := CursorEntry{
				TimeSec:    globalTime,
				X:          sumX / n,
				Y:          sumY / n,
				StaffIndex: col.events[0].StaffIndex(),
				IsRest:     allRest,
			}
			timing = append(timing, entry)

			if !allRest {
				task := RenderTask{OffsetSamples: int(globalTime * sampleRate)}
				for _, e := range col.events {
					if e.Note == nil {
						continue
					}
					durS := e.Beats() * secondsPerBeat
					task.Notes = append(task.Notes, NoteTask{MidiNote: e.Note.MidiNote, DurationS: durS, Voice: e.Note.Voice})
				}
				tasks = append(tasks, task)
			}

			globalTime += minBeats * secondsPerBeat
		}
	}

	return LayoutResult{Timing: timing, Tasks: tasks, TotalSec: globalTime}
}
