package chart

import (
	"bytes"
	"fmt"
	"math"
	"tournament-elo/internal/constants"
	"tournament-elo/internal/query"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	background = drawing.ColorFromHex("101418")
	lineColor  = drawing.ColorFromHex("4fa3e0")
	dotColor   = drawing.ColorFromHex("f2c14e")
	textColor  = drawing.ColorFromHex("e6e6e6")
)

const maxTicks = 12

// RatingHistory renders a PNG line chart of one player's ratings. dates[i]
// labels ratings[i]; the first entry is the initial rating.
func RatingHistory(player string, dates []string, ratings []float64) ([]byte, error) {
	if len(ratings) == 0 {
		return renderNoData(fmt.Sprintf("No rating history for %s", player))
	}
	if len(dates) != len(ratings) {
		return nil, fmt.Errorf("chart: %d labels for %d ratings", len(dates), len(ratings))
	}

	xs := make([]float64, len(ratings))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, r := range ratings {
		xs[i] = float64(i)
		lo = math.Min(lo, r)
		hi = math.Max(hi, r)
	}
	ys := ratings
	// go-chart needs two x values; a lone initial rating becomes a flat segment.
	if len(ratings) == 1 {
		xs = []float64{0, 1}
		ys = []float64{ratings[0], ratings[0]}
	}

	graph := chart.Chart{
		Title:      player,
		TitleStyle: chart.Style{FontColor: textColor},
		Width:      constants.ChartWidth,
		Height:     constants.ChartHeight,
		Background: chart.Style{FillColor: background},
		Canvas:     chart.Style{FillColor: background},
		XAxis: chart.XAxis{
			Name:  "Tournament",
			Style: chart.Style{FontColor: textColor},
			Range: &chart.ContinuousRange{Min: 0, Max: xs[len(xs)-1]},
			Ticks: ticks(dates),
		},
		YAxis: chart.YAxis{
			Name:           "Rating",
			Style:          chart.Style{FontColor: textColor},
			Range:          &chart.ContinuousRange{Min: math.Floor(lo - 10), Max: math.Ceil(hi + 10)},
			ValueFormatter: func(v interface{}) string { return fmt.Sprintf("%.0f", v) },
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Rating",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: lineColor,
					StrokeWidth: 2,
					DotWidth:    4,
					DotColor:    dotColor,
				},
			},
		},
	}

	buf := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func ticks(dates []string) []chart.Tick {
	step := 1
	if len(dates) > maxTicks {
		step = int(math.Ceil(float64(len(dates)) / maxTicks))
	}
	var out []chart.Tick
	for i := 0; i < len(dates); i += step {
		out = append(out, chart.Tick{Value: float64(i), Label: label(dates[i])})
	}
	return out
}

func label(date string) string {
	if s, err := query.FormatDate(date); err == nil {
		return s
	}
	return date
}

func renderNoData(msg string) ([]byte, error) {
	graph := chart.Chart{
		Width:      400,
		Height:     200,
		Background: chart.Style{FillColor: background},
		Canvas:     chart.Style{FillColor: background},
		XAxis:      chart.XAxis{Style: chart.Style{Hidden: true}, Range: &chart.ContinuousRange{Min: 0, Max: 1}},
		YAxis:      chart.YAxis{Style: chart.Style{Hidden: true}, Range: &chart.ContinuousRange{Min: 0, Max: 1}},
		// Render wants one visible series; this one is drawn in the background colour.
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: []float64{0, 1},
				YValues: []float64{0, 0},
				Style:   chart.Style{StrokeColor: background, StrokeWidth: 1},
			},
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, chartDefaults chart.Style) {
				r.SetFontColor(textColor)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	buf := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
