package timekeeping

import (
	"fmt"
	"math"
	"strconv"
)

// Gauge geometry. The arc spans 180 degrees, left to right, drawn at radius
// arcRadius with the given stroke; ticks sit just outside the stroke.
type gaugeSize struct {
	center, arcRadius, stroke, tickLength, labelOffset float64
}

var (
	fullGauge    = gaugeSize{center: 100, arcRadius: 75, stroke: 20, tickLength: 5, labelOffset: 12}
	compactGauge = gaugeSize{center: 80, arcRadius: 60, stroke: 15, tickLength: 4, labelOffset: 8}
)

const tickCount = 5

// Point pairs for one tick mark plus its label position.
type TickGeometry struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
	TX float64 `json:"tx"`
	TY float64 `json:"ty"`
}

// Tick is a labelled gauge graduation in both gauge sizes.
type Tick struct {
	Label   string       `json:"label"`
	Full    TickGeometry `json:"full"`
	Compact TickGeometry `json:"compact"`
}

// Ticks places six graduations from 0 to goal.
func Ticks(goal float64) []Tick {
	ticks := make([]Tick, 0, tickCount+1)
	for i := 0; i <= tickCount; i++ {
		angle := -math.Pi + float64(i)/tickCount*math.Pi
		ticks = append(ticks, Tick{
			Label:   tickLabel(goal * float64(i) / tickCount),
			Full:    fullGauge.tick(angle),
			Compact: compactGauge.tick(angle),
		})
	}
	return ticks
}

func (g gaugeSize) tick(angle float64) TickGeometry {
	outer := g.arcRadius + g.stroke/2
	cos, sin := math.Cos(angle), math.Sin(angle)
	text := outer + g.labelOffset
	return TickGeometry{
		X1: g.center + outer*cos,
		Y1: g.center + outer*sin,
		X2: g.center + (outer+g.tickLength)*cos,
		Y2: g.center + (outer+g.tickLength)*sin,
		TX: g.center + text*cos,
		TY: g.center + text*sin,
	}
}

// tickLabel rounds to two decimals and drops trailing zeros.
func tickLabel(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// Needle is the SVG rotate transform for the gauge needle at pct percent,
// pinned at 100%.
func Needle(pct int) string { return fullGauge.needle(pct) }

// NeedleCompact is Needle for the compact gauge.
func NeedleCompact(pct int) string { return compactGauge.needle(pct) }

func (g gaugeSize) needle(pct int) string {
	if pct > 100 {
		pct = 100
	}
	rotation := -90 + float64(pct)*1.8
	c := strconv.FormatFloat(g.center, 'f', -1, 64)
	return fmt.Sprintf("rotate(%s %s %s)", strconv.FormatFloat(rotation, 'f', -1, 64), c, c)
}
