// Package chart builds Chart.js-compatible configurations for the dashboard
// widgets and tracks the charts a client has mounted. Rendering stays with
// the client; this package only decides what a chart shows.
package chart

import (
	"math"
	"unicode/utf16"
)

// Type is a Chart.js chart type.
type Type string

const (
	TypeBar      Type = "bar"
	TypeLine     Type = "line"
	TypeDoughnut Type = "doughnut"
)

// DefaultColor is used whenever a palette is missing or empty.
const DefaultColor = "#4F7DE2"

// Metric palette for the invoice dashboard bars.
const (
	ColorInvoiced    = "#4F7DE2"
	ColorPayments    = "#34CE57"
	ColorOutstanding = "#dc3545"
	ColorCollection  = "#ffc107"
	ColorCollected   = "#00C851"
	ColorRemaining   = "#f5f5f5"
)

// Dataset is one series.
type Dataset struct {
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor,omitempty"`
	BorderColor     string    `json:"borderColor,omitempty"`
	BorderWidth     int       `json:"borderWidth"`
	BorderRadius    int       `json:"borderRadius,omitempty"`
	Fill            bool      `json:"fill,omitempty"`
	Tension         float64   `json:"tension,omitempty"`
	Cutout          string    `json:"cutout,omitempty"`
	BarThickness    float64   `json:"barThickness,omitempty"`
}

// Data is the labelled series of a chart.
type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Config is a complete chart definition.
type Config struct {
	Type    Type           `json:"type"`
	Data    Data           `json:"data"`
	Options map[string]any `json:"options"`
}

// SuggestedMax pads the value axis 25% past the largest value. Percentage
// axes always top out at 100, as do axes with nothing positive on them.
func SuggestedMax(values []float64, percent bool) float64 {
	if percent {
		return 100
	}
	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	if max <= 0 {
		return 100
	}
	return max * 1.25
}

// ConsistentColors assigns each label a palette entry derived from a hash of
// the label, so a team keeps its colour as the label set changes. A palette
// of one colour paints every bar with it.
func ConsistentColors(labels []string, palette []string) []string {
	out := make([]string, len(labels))
	switch len(palette) {
	case 0:
		for i := range out {
			out[i] = DefaultColor
		}
		return out
	case 1:
		c := palette[0]
		if c == "" {
			c = DefaultColor
		}
		for i := range out {
			out[i] = c
		}
		return out
	}
	for i, l := range labels {
		c := palette[hashLabel(l)%int64(len(palette))]
		if c == "" {
			c = palette[0]
		}
		if c == "" {
			c = DefaultColor
		}
		out[i] = c
	}
	return out
}

// hashLabel is the 32-bit string hash h = h*31 + c over UTF-16 code units,
// returned as its absolute value.
func hashLabel(s string) int64 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}

// Floor truncates each value toward negative infinity. Currency bars plot
// whole dollars.
func Floor(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Floor(v)
	}
	return out
}

// HorizontalBar builds a single-series bar chart on the y index axis.
func HorizontalBar(label string, labels []string, values []float64, color string, percent bool) Config {
	return Config{
		Type: TypeBar,
		Data: Data{
			Labels: nonNil(labels),
			Datasets: []Dataset{{
				Label:           label,
				Data:            nonNilValues(values),
				BackgroundColor: ConsistentColors(labels, []string{color}),
				BorderRadius:    6,
			}},
		},
		Options: map[string]any{
			"indexAxis":           "y",
			"responsive":          true,
			"maintainAspectRatio": false,
			"plugins": map[string]any{
				"legend": map[string]any{"display": false},
			},
			"scales": map[string]any{
				"x": map[string]any{
					"beginAtZero":  true,
					"suggestedMax": SuggestedMax(values, percent),
					"percent":      percent,
				},
			},
		},
	}
}

// RankedBar is a horizontal bar whose thickness shrinks as the number of
// rows grows, clamped to [10, 22].
func RankedBar(label string, labels []string, values []float64, color string) Config {
	cfg := HorizontalBar(label, labels, values, color, false)
	thickness := 22.0
	if n := len(labels); n > 0 {
		thickness = math.Max(10, math.Min(22, 180/float64(n)))
	}
	cfg.Data.Datasets[0].BarThickness = thickness
	cfg.Data.Datasets[0].BorderColor = color
	category, bar := 0.8, 0.9
	if len(labels) > 8 {
		category, bar = 0.6, 0.7
	}
	cfg.Options["categoryPercentage"] = category
	cfg.Options["barPercentage"] = bar
	return cfg
}

// Doughnut builds a single-ring doughnut with legend and tooltips hidden.
func Doughnut(values []float64, colors []string, cutout string) Config {
	return Config{
		Type: TypeDoughnut,
		Data: Data{
			Labels: []string{},
			Datasets: []Dataset{{
				Data:            nonNilValues(values),
				BackgroundColor: colors,
				Cutout:          cutout,
			}},
		},
		Options: map[string]any{
			"responsive":          true,
			"maintainAspectRatio": false,
			"plugins": map[string]any{
				"legend":  map[string]any{"display": false},
				"tooltip": map[string]any{"enabled": false},
			},
		},
	}
}

// CollectionRate renders a percentage as a collected/remaining doughnut.
func CollectionRate(rate float64) Config {
	return Doughnut([]float64{rate, math.Max(0, 100-rate)}, []string{ColorCollected, ColorRemaining}, "70%")
}

// Line builds a filled, smoothed trend line.
func Line(label string, labels []string, values []float64, color string) Config {
	return Config{
		Type: TypeLine,
		Data: Data{
			Labels: nonNil(labels),
			Datasets: []Dataset{{
				Label:       label,
				Data:        nonNilValues(values),
				BorderColor: color,
				BorderWidth: 3,
				Fill:        true,
				Tension:     0.4,
			}},
		},
		Options: map[string]any{
			"responsive":          true,
			"maintainAspectRatio": false,
			"plugins": map[string]any{
				"legend":  map[string]any{"display": false},
				"tooltip": map[string]any{"enabled": true},
			},
			"scales": map[string]any{
				"y": map[string]any{"beginAtZero": true},
			},
		},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilValues(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}
