package analysis

import (
	"github.com/couchcryptid/athletics-records-etl/internal/domain"
)

// GapKind says how an event is measured.
type GapKind int

const (
	// Timed events: lower is better.
	Timed GapKind = iota
	// Measured events: higher is better.
	Measured
)

func (k GapKind) String() string {
	if k == Measured {
		return "Field (Measured) Events"
	}
	return "Track (Timed) Events"
}

// Events compared between the men's and women's tables.
var (
	TimedGapEvents    = []string{"100 m", "200 m", "800 m", "5000 m", "10,000 m", "Half marathon", "Marathon"}
	MeasuredGapEvents = []string{"High jump", "Long jump", "Pole vault", "Javelin throw", "Discus throw", "Hammer throw"}
)

// Gap is the percentage by which the men's record betters the women's.
type Gap struct {
	Event   string
	Kind    GapKind
	Men     float64 // seconds or metres
	Women   float64
	Percent float64
}

// GenderGap compares the first record for each gap event in both tables.
// Events missing or unparseable on either side are returned in skipped.
func GenderGap(men, women []domain.EnrichedRecord) (gaps []Gap, skipped []string) {
	type gapEvent struct {
		event string
		kind  GapKind
	}
	var events []gapEvent
	for _, e := range TimedGapEvents {
		events = append(events, gapEvent{e, Timed})
	}
	for _, e := range MeasuredGapEvents {
		events = append(events, gapEvent{e, Measured})
	}

	for _, ev := range events {
		m, okM := firstPerformance(men, ev.event, ev.kind)
		w, okW := firstPerformance(women, ev.event, ev.kind)
		if !okM || !okW || m == 0 || w == 0 {
			skipped = append(skipped, ev.event)
			continue
		}
		g := Gap{Event: ev.event, Kind: ev.kind, Men: m, Women: w}
		if ev.kind == Timed {
			g.Percent = (w - m) / m * 100
		} else {
			g.Percent = (m - w) / w * 100
		}
		gaps = append(gaps, g)
	}
	return gaps, skipped
}

func firstPerformance(records []domain.EnrichedRecord, event string, kind GapKind) (float64, bool) {
	for _, r := range records {
		if r.Event != event {
			continue
		}
		if kind == Timed {
			return domain.ParsePerformanceSeconds(r.Performance)
		}
		return domain.ParseDistanceMetres(r.Performance)
	}
	return 0, false
}
