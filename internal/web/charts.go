package web

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/JonMunkholm/booksdash/internal/core"
	"github.com/JonMunkholm/booksdash/internal/web/templates"
)

const (
	chartWidth    = 1000
	chartHeight   = 420
	barWidth      = 60
	maxLabelRunes = 24

	// Ratings run from 1 to 10.
	maxRating = 10
)

// renderChart writes view as SVG. A view without rows renders a placeholder.
func renderChart(ctx context.Context, w io.Writer, view string, vs core.ViewSet, frames []templates.Frame) error {
	switch view {
	case core.ViewChoropleth:
		return renderChoropleth(ctx, w, vs, frames)
	case core.ViewYearTopBooks:
		return renderBooks(ctx, w, vs.Titles.YearTopBooks, vs.YearTopBooks)
	case core.ViewAgeTopBooks:
		return renderBooks(ctx, w, vs.Titles.AgeTopBooks, vs.AgeTopBooks)
	case core.ViewScatter:
		return renderScatter(ctx, w, vs.Titles.Scatter, vs.Scatter)
	case core.ViewTopAuthors:
		return renderAuthors(ctx, w, vs.Titles.TopAuthors, vs.TopAuthors)
	}
	return fmt.Errorf("%w: %s", core.ErrUnknownView, view)
}

// renderChoropleth draws the average rating of every country with books
// published in the selected year.
func renderChoropleth(ctx context.Context, w io.Writer, vs core.ViewSet, frames []templates.Frame) error {
	title := vs.Titles.Choropleth
	if vs.Selection.Year == nil {
		return emptyChart(ctx, w, title)
	}

	frame := templates.FrameFor(frames, *vs.Selection.Year)
	title = fmt.Sprintf("%s (%d)", title, frame.Year)

	bars := make([]chart.Value, 0, len(frame.Entries))
	for _, e := range frame.Entries {
		label := e.CountryCode
		if label == "" {
			label = e.Country
		}
		bars = append(bars, chart.Value{Label: truncateLabel(label), Value: e.AverageRating})
	}
	return renderBars(ctx, w, title, bars, maxRating)
}

func renderBooks(ctx context.Context, w io.Writer, title string, books core.Table) error {
	bars := make([]chart.Value, 0, len(books))
	for _, b := range books {
		bars = append(bars, chart.Value{Label: truncateLabel(b.BookTitle), Value: float64(b.BookRating)})
	}
	return renderBars(ctx, w, title, bars, maxRating)
}

func renderAuthors(ctx context.Context, w io.Writer, title string, authors []core.AuthorCount) error {
	bars := make([]chart.Value, 0, len(authors))
	top := 1.0
	for _, a := range authors {
		bars = append(bars, chart.Value{Label: truncateLabel(a.BookAuthor), Value: float64(a.Count)})
		top = math.Max(top, float64(a.Count))
	}
	return renderBars(ctx, w, title, bars, top)
}

// renderBars draws a bar chart on a y-axis from 0 to max.
func renderBars(ctx context.Context, w io.Writer, title string, bars []chart.Value, max float64) error {
	if len(bars) == 0 {
		return emptyChart(ctx, w, title)
	}

	bc := chart.BarChart{
		Title:    title,
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: barWidth,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Bottom: 20},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: max},
		},
		Bars: bars,
	}
	return bc.Render(chart.SVG, w)
}

// pointStyle renders points only, without a connecting line.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

// renderScatter plots rating against reader age. Rows with an unknown age
// have no position and are left out.
func renderScatter(ctx context.Context, w io.Writer, title string, points []core.ScatterPoint) error {
	xs := make([]float64, 0, len(points))
	ys := make([]float64, 0, len(points))
	minAge, maxAge := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		if math.IsNaN(p.Age) {
			continue
		}
		xs = append(xs, p.Age)
		ys = append(ys, float64(p.BookRating))
		minAge = math.Min(minAge, p.Age)
		maxAge = math.Max(maxAge, p.Age)
	}
	if len(xs) == 0 {
		return emptyChart(ctx, w, title)
	}

	// A zero-width range cannot be drawn.
	if minAge == maxAge {
		minAge--
		maxAge++
	}

	c := chart.Chart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		XAxis: chart.XAxis{
			Name:  core.ColAge,
			Range: &chart.ContinuousRange{Min: minAge, Max: maxAge},
		},
		YAxis: chart.YAxis{
			Name:  core.ColBookRating,
			Range: &chart.ContinuousRange{Min: 0, Max: maxRating},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    core.ColBookRating,
				Style:   pointStyle(chart.ColorBlue),
				XValues: xs,
				YValues: ys,
			},
		},
	}
	return c.Render(chart.SVG, w)
}

func emptyChart(ctx context.Context, w io.Writer, title string) error {
	return templates.EmptyChart(title, chartWidth, chartHeight).Render(ctx, w)
}

// truncateLabel shortens long bar labels so neighbours do not overlap.
func truncateLabel(s string) string {
	runes := []rune(s)
	if len(runes) <= maxLabelRunes {
		return s
	}
	return string(runes[:maxLabelRunes-1]) + "…"
}
