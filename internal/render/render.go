// Package render draws stored store-location queries as charts and
// summarises solve timings.
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/storefinder/internal/locator"
)

const (
	seriesHouses = "houses"
	seriesPlots  = "plots"
	seriesStores = "stores"
)

var (
	houseColor = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	plotColor  = color.RGBA{R: 0xc7, G: 0xc7, B: 0xc7, A: 0xff}
	storeColor = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
)

// Layout is a grid and the feasible store locations found on it.
type Layout struct {
	Title     string
	K         int
	Grid      [][]int
	Locations []locator.Position
}

// cell is one grid cell in chart coordinates: x is the column and y counts
// up from the bottom row so the picture matches the grid as written.
type cell struct {
	x, y float64
}

// split partitions the grid cells into houses, plain plots and stores.
func (l Layout) split() (houses, plots, stores []cell) {
	rows := len(l.Grid)
	feasible := make(map[locator.Position]bool, len(l.Locations))
	for _, p := range l.Locations {
		feasible[p] = true
	}
	for r, row := range l.Grid {
		for c, v := range row {
			pt := cell{x: float64(c), y: float64(rows - 1 - r)}
			switch {
			case v == 1:
				houses = append(houses, pt)
			case feasible[locator.Position{Row: r, Col: c}]:
				stores = append(stores, pt)
			default:
				plots = append(plots, pt)
			}
		}
	}
	return houses, plots, stores
}

func (l Layout) cols() int {
	if len(l.Grid) == 0 {
		return 0
	}
	return len(l.Grid[0])
}

func (l Layout) subtitle() string {
	return fmt.Sprintf("%dx%d grid, k=%d, %d feasible", len(l.Grid), l.cols(), l.K, len(l.Locations))
}

// symbolSize shrinks markers as the grid grows so large grids stay legible.
func symbolSize(rows, cols int) int {
	n := rows
	if cols > n {
		n = cols
	}
	switch {
	case n <= 20:
		return 18
	case n <= 100:
		return 6
	default:
		return 2
	}
}

func scatterData(cells []cell) []opts.ScatterData {
	data := make([]opts.ScatterData, 0, len(cells))
	for _, c := range cells {
		data = append(data, opts.ScatterData{Value: []interface{}{c.x, c.y}})
	}
	return data
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Heatmap writes an interactive go-echarts page for l to w.
func Heatmap(w io.Writer, l Layout) error {
	houses, plots, stores := l.split()
	rows, cols := len(l.Grid), l.cols()

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Store Locations", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: l.Title, Subtitle: l.subtitle()}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Min: -1, Max: cols, Name: "col", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -1, Max: rows, Name: "row", NameLocation: "middle", NameGap: 30}),
	)

	size := symbolSize(rows, cols)
	scatter.AddSeries(seriesHouses, scatterData(houses),
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: size}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(houseColor)}))
	scatter.AddSeries(seriesPlots, scatterData(plots),
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: size}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(plotColor)}))
	scatter.AddSeries(seriesStores, scatterData(stores),
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: size}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(storeColor)}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		return fmt.Errorf("render heatmap: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// PlotPNG writes a static PNG scatter of l to w.
func PlotPNG(w io.Writer, l Layout) error {
	houses, plots, stores := l.split()
	rows, cols := len(l.Grid), l.cols()

	p := plot.New()
	p.Title.Text = l.Title + " (" + l.subtitle() + ")"
	p.X.Label.Text = "col"
	p.Y.Label.Text = "row"
	p.X.Min, p.X.Max = -0.5, float64(cols)-0.5
	p.Y.Min, p.Y.Max = -0.5, float64(rows)-0.5
	p.Legend.Top = true

	radius := vg.Points(float64(symbolSize(rows, cols)) / 3)
	series := []struct {
		name  string
		cells []cell
		color color.Color
	}{
		{seriesPlots, plots, plotColor},
		{seriesHouses, houses, houseColor},
		{seriesStores, stores, storeColor},
	}
	for _, s := range series {
		if len(s.cells) == 0 {
			continue
		}
		xys := make(plotter.XYs, 0, len(s.cells))
		for _, c := range s.cells {
			xys = append(xys, plotter.XY{X: c.x, Y: c.y})
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("build %s series: %w", s.name, err)
		}
		sc.GlyphStyle.Color = s.color
		sc.GlyphStyle.Shape = draw.BoxGlyph{}
		sc.GlyphStyle.Radius = radius
		p.Add(sc)
		p.Legend.Add(s.name, sc)
	}

	wt, err := p.WriterTo(8*vg.Inch, 8*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("create png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// Summary describes a set of solve times in milliseconds.
type Summary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean_ms"`
	P50   float64 `json:"p50_ms"`
	P95   float64 `json:"p95_ms"`
	Max   float64 `json:"max_ms"`
}

// ElapsedSummary summarises samples. An empty input yields a zero Summary.
func ElapsedSummary(samples []float64) Summary {
	if len(samples) == 0 {
		return Summary{}
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)
	return Summary{
		Count: len(sorted),
		Mean:  stat.Mean(sorted, nil),
		P50:   stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P95:   stat.Quantile(0.95, stat.Empirical, sorted, nil),
		Max:   floats.Max(sorted),
	}
}
