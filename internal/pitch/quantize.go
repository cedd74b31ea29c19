package pitch

import (
	"sort"

	"scoreforge/internal/sheet"
)

// allowedDurations is the quantization snap set: plain
// and dotted whole..32nd, expressed as beat weights paired with the
// (duration, dotted) label that produces them.
var allowedDurations = []struct {
	d      sheet.Duration
	dotted bool
	beats  float64
}{
	{sheet.DurWhole, false, 4},
	{sheet.DurWhole, true, 6},
	{sheet.DurHalf, false, 2},
	{sheet.DurHalf, true, 3},
	{sheet.DurQuarter, false, 1},
	{sheet.DurQuarter, true, 1.5},
	{sheet.DurEighth, false, 0.5},
	{sheet.DurEighth, true, 0.75},
	{sheet.DurSixteenth, false, 0.25},
	{sheet.DurSixteenth, true, 0.375},
	{sheet.Dur32nd, false, 0.125},
	{sheet.Dur32nd, true, 0.1875},
}

func snapToAllowed(beats float64) (sheet.Duration, bool) {
	best := allowedDurations[0]
	bestDiff := absFloat(beats - best.beats)
	for _, c := range allowedDurations[1:] {
		d := absFloat(beats - c.beats)
		if d < bestDiff {
			bestDiff = d
			best = c
		}
	}
	return best.d, best.dotted
}

// beatColumn is a set of events within 10px of each other on the x
// axis, treated as one chord/voice-simultaneity for quantization.
type beatColumn struct {
	events []*sheet.Event
}

// groupBeatColumns implements beat-column grouping:
// events within 10px of each other belong to the same column. events
// must already be sorted by x.
func groupBeatColumns(events []*sheet.Event) []beatColumn {
	var cols []beatColumn
	for _, e := range events {
		if len(cols) > 0 {
			last := &cols[len(cols)-1]
			if e.X()-last.events[len(last.events)-1].X() <= 10 {
				last.events = append(last.events, e)
				continue
			}
		}
		cols = append(cols, beatColumn{events: []*sheet.Event{e}})
	}
	return cols
}

func (c beatColumn) advance() float64 {
	if len(c.events) == 0 {
		return 0
	}
	min := c.events[0].Beats()
	for _, e := range c.events[1:] {
		if b := e.Beats(); b < min {
			min = b
		}
	}
	return min
}

// QuantizeMeasure implements rhythm quantization: it
// computes the expected beat total from the time signature, compares
// it to the sum of beat-column advances, and — unless this is the
// pickup (first) or final measure — rescales and snaps every event's
// duration to the closest allowed value when the discrepancy exceeds
// 0.1 beats. Any residual is corrected on the last non-tied event of
// the last column.
func QuantizeMeasure(m *sheet.Measure, timeSig sheet.TimeSignature, isFirst, isLast bool) {
	if len(m.Events) == 0 {
		return
	}
	expected := float64(timeSig.Beats) * (4.0 / float64(timeSig.BeatType))

	events := make([]*sheet.Event, len(m.Events))
	for i := range m.Events {
		events[i] = &m.Events[i]
	}
	sort.Slice(events, func(i, j int) bool { return events[i].X() < events[j].X() })

	cols := groupBeatColumns(events)
	actual := 0.0
	for _, c := range cols {
		actual += c.advance()
	}
	if actual == 0 {
		return
	}

	diff := expected - actual
	if absFloat(diff) <= 0.1 || isFirst || isLast {
		return
	}

	factor := expected / actual
	for _, c := range cols {
		for _, e := range c.events {
			scaleEvent(e, factor)
		}
	}

	correctResidual(cols, expected)
}

func scaleEvent(e *sheet.Event, factor float64) {
	scaled := e.Beats() * factor
	d, dotted := snapToAllowed(scaled)
	if e.Note != nil {
		e.Note.Duration = d
		e.Note.Dotted = dotted
		e.Note.TiedBeats = nil
	} else if e.Rest != nil {
		e.Rest.RestType = d
		e.Rest.Dotted = dotted
	}
}

// correctResidual nudges the last non-tied event of the last column so
// the measure's total beat weight matches expected exactly, absorbing
// the rounding error introduced by snapping every event independently.
func correctResidual(cols []beatColumn, expected float64) {
	if len(cols) == 0 {
		return
	}
	total := 0.0
	for _, c := range cols {
		total += c.advance()
	}
	residual := expected - total
	if absFloat(residual) < 1e-9 {
		return
	}

	last := cols[len(cols)-1]
	for i := len(last.events) - 1; i >= 0; i-- {
		e := last.events[i]
		if e.Note != nil && e.Note.TiedBeats != nil {
			continue
		}
		corrected := e.Beats() + residual
		if corrected < 0 {
			continue
		}
		if e.Note != nil {
			e.Note.TiedBeats = &corrected
		}
		return
	}
}
