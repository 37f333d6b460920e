/*
Copyright © 2023 the BGCData authors.
This file is part of BGCData.

BGCData is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

BGCData is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with BGCData.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package tracers draws figures of the data held by storers: data density
// maps, evolution profiles, temperature-salinity diagrams, box plots,
// water mass comparisons and histograms.
package tracers

import (
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spatialmodel/bgcdata"
	"github.com/spf13/cast"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Default figure sizes.
const (
	DefaultWidth  = 10 * vg.Inch
	DefaultHeight = 5 * vg.Inch
)

const (
	suptitleHeight = 0.4 * vg.Inch
	colorBarHeight = 0.7 * vg.Inch
)

// basePlot holds the constrained data to plot.
type basePlot struct {
	storer      *bgcdata.Storer
	variables   *bgcdata.VariableSet
	constraints *bgcdata.Constraints
}

func newBasePlot(s *bgcdata.Storer, c *bgcdata.Constraints) basePlot {
	if c == nil {
		c = bgcdata.NewConstraints()
	}
	return basePlot{
		storer:      c.ApplyToStorer(s),
		variables:   s.Variables,
		constraints: c,
	}
}

// label returns the column label of variable name. "all" stands for
// every row.
func (b *basePlot) label(name string) (string, error) {
	if name == "all" {
		return name, nil
	}
	v, err := b.variables.Get(name)
	if err != nil {
		return "", err
	}
	return v.Label(), nil
}

// present returns, for every row, 1 when the variable labelled label has
// a value and 0 otherwise.
func (b *basePlot) present(label string) []float64 {
	out := make([]float64, b.storer.Data.Len())
	if label == "all" {
		floats.AddConst(1, out)
		return out
	}
	col := b.storer.Data.Column(label)
	for i := range out {
		if !col.IsMissing(i) {
			out[i] = 1
		}
	}
	return out
}

// extremes returns the range of column label allowed by the constraints,
// the range of the plotted data when it is not constrained.
func (b *basePlot) extremes(label string) (min, max float64) {
	dataMin, dataMax := math.NaN(), math.NaN()
	if b.storer.Data.Has(label) {
		dataMin, dataMax = nanExtremes(b.storer.Data.Float(label))
	}
	lo, hi := b.constraints.GetExtremes(label, dataMin, dataMax)
	return toFloat(lo, dataMin), toFloat(hi, dataMax)
}

// A Figure is a plot with an optional color bar and title drawn above
// the whole figure.
type Figure struct {
	Plot *plot.Plot

	// ColorBar is drawn under Plot when not nil.
	ColorBar *plot.Plot

	Suptitle string
}

// Draw draws the figure on c.
func (f *Figure) Draw(c draw.Canvas) error {
	main := c
	if f.Suptitle != "" {
		font, err := vg.MakeFont(plot.DefaultFont, vg.Points(14))
		if err != nil {
			return err
		}
		ts := draw.TextStyle{Color: color.Black, Font: font}
		ts.XAlign = -0.5
		ts.YAlign = -1
		main.FillText(ts, vg.Point{X: main.X(0.5), Y: main.Max.Y}, f.Suptitle)
		main = draw.Crop(main, 0, 0, 0, -suptitleHeight)
	}
	if f.ColorBar != nil {
		bar := draw.Crop(main, 0, 0, 0, colorBarHeight-(main.Max.Y-main.Min.Y))
		main = draw.Crop(main, 0, 0, colorBarHeight, 0)
		f.ColorBar.Draw(bar)
	}
	f.Plot.Draw(main)
	return nil
}

// Save writes the figure to path. The image format (png, svg, pdf, eps,
// jpg or tif) is chosen from the file extension.
func (f *Figure) Save(path string, w, h vg.Length) error {
	return SaveTiles(path, []*Figure{f}, 1, w, h)
}

// SaveTiles writes figures to path side by side, cols figures per row.
func SaveTiles(path string, figures []*Figure, cols int, w, h vg.Length) error {
	bgcdata.Log.WithField("path", path).Info("saving figure")
	if cols < 1 {
		cols = 1
	}
	if len(figures) < cols {
		cols = len(figures)
	}
	c, err := draw.NewFormattedCanvas(w, h, imageFormat(path))
	if err != nil {
		return err
	}
	dc := draw.New(c)
	tiles := draw.Tiles{
		Rows:      (len(figures) + cols - 1) / cols,
		Cols:      cols,
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter,
		PadTop:    vg.Points(3),
		PadBottom: vg.Points(3),
		PadLeft:   vg.Points(3),
		PadRight:  vg.Points(3),
	}
	for i, fig := range figures {
		if err := fig.Draw(tiles.At(dc, i%cols, i/cols)); err != nil {
			return err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := c.WriteTo(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func imageFormat(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// colorBar returns a horizontal color bar plot of cm.
func colorBar(cm palette.ColorMap, label string) (*plot.Plot, error) {
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.Add(&plotter.ColorBar{ColorMap: cm})
	p.HideY()
	p.X.Padding = 0
	p.X.Label.Text = label
	return p, nil
}

// Mesh holds values on the cells of a rectilinear grid. Z[r][c] is the
// value of the cell between YEdges[r] and YEdges[r+1] and between
// XEdges[c] and XEdges[c+1]; NaN cells are empty.
type Mesh struct {
	XEdges, YEdges []float64
	Z              [][]float64
}

func newMesh(xEdges, yEdges []float64) *Mesh {
	m := &Mesh{XEdges: xEdges, YEdges: yEdges}
	m.Z = make([][]float64, len(yEdges)-1)
	for r := range m.Z {
		m.Z[r] = make([]float64, len(xEdges)-1)
		for c := range m.Z[r] {
			m.Z[r][c] = math.NaN()
		}
	}
	return m
}

// add adds v to cell (r, c), an empty cell being worth 0.
func (m *Mesh) add(r, c int, v float64) {
	if math.IsNaN(m.Z[r][c]) {
		m.Z[r][c] = 0
	}
	m.Z[r][c] += v
}

// Values returns the values of the non-empty cells.
func (m *Mesh) Values() []float64 {
	var out []float64
	for _, row := range m.Z {
		for _, v := range row {
			if !math.IsNaN(v) {
				out = append(out, v)
			}
		}
	}
	return out
}

// meshPlotter fills the cells of a mesh with the colors of a color map.
type meshPlotter struct {
	mesh *Mesh
	cm   palette.ColorMap
}

func (m meshPlotter) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	for r, row := range m.mesh.Z {
		y0, y1 := trY(m.mesh.YEdges[r]), trY(m.mesh.YEdges[r+1])
		for col, v := range row {
			if math.IsNaN(v) {
				continue
			}
			clr, err := m.cm.At(v)
			if err != nil {
				continue
			}
			x0, x1 := trX(m.mesh.XEdges[col]), trX(m.mesh.XEdges[col+1])
			pts := []vg.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
			if clipped := c.ClipPolygonXY(pts); len(clipped) > 0 {
				c.FillPolygon(clr, clipped)
			}
		}
	}
}

func (m meshPlotter) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax = floats.Min(m.mesh.XEdges), floats.Max(m.mesh.XEdges)
	ymin, ymax = floats.Min(m.mesh.YEdges), floats.Max(m.mesh.YEdges)
	return
}

// colorScatter draws points colored by a third value.
type colorScatter struct {
	xs, ys, zs []float64
	cm         palette.ColorMap
	radius     vg.Length
}

func (s colorScatter) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	for i := range s.xs {
		pt := vg.Point{X: trX(s.xs[i]), Y: trY(s.ys[i])}
		if !c.Contains(pt) {
			continue
		}
		clr, err := s.cm.At(s.zs[i])
		if err != nil {
			clr = color.Gray{Y: 128}
		}
		c.DrawGlyph(draw.GlyphStyle{Color: clr, Radius: s.radius, Shape: draw.CircleGlyph{}}, pt)
	}
}

func (s colorScatter) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax = nanExtremes(s.xs)
	ymin, ymax = nanExtremes(s.ys)
	return
}

// uniform is a palette made of a single color.
type uniform struct {
	c color.Color
	n int
}

func (u uniform) Colors() []color.Color {
	out := make([]color.Color, u.n)
	for i := range out {
		out[i] = u.c
	}
	return out
}

// negatedTicks labels the ticks of an axis holding negated values with
// the values before negation.
type negatedTicks struct{}

func (negatedTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i, t := range ticks {
		switch {
		case t.Label == "":
		case t.Value == 0 || strings.Trim(t.Label, "-0.") == "":
			// Zero, possibly printed as "0.00" or "-0.0".
			ticks[i].Label = strings.TrimPrefix(t.Label, "-")
		case strings.HasPrefix(t.Label, "-"):
			ticks[i].Label = t.Label[1:]
		default:
			ticks[i].Label = "-" + t.Label
		}
	}
	return ticks
}

// linspace returns n evenly spaced values from l to u.
func linspace(l, u float64, n int) []float64 {
	if n == 1 {
		return []float64{l}
	}
	return floats.Span(make([]float64, n), l, u)
}

// cut returns the interval of edges holding v, intervals being closed on
// the right and the first one on both sides, or -1 when v is outside.
func cut(edges []float64, v float64) int {
	if math.IsNaN(v) || len(edges) < 2 || v < edges[0] || v > edges[len(edges)-1] {
		return -1
	}
	i := sort.SearchFloat64s(edges, v)
	if i == 0 {
		return 0
	}
	return i - 1
}

// nanExtremes returns the smallest and largest non-NaN values of x.
func nanExtremes(x []float64) (min, max float64) {
	min, max = math.NaN(), math.NaN()
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(min) || v < min {
			min = v
		}
		if math.IsNaN(max) || v > max {
			max = v
		}
	}
	return
}

// withoutNaN returns the non-NaN values of x.
func withoutNaN(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// quantile returns the p quantile of the values of x.
func quantile(x []float64, p float64) float64 {
	s := append([]float64{}, x...)
	sort.Float64s(s)
	return stat.Quantile(p, stat.Empirical, s, nil)
}

// toFloat converts a constraint value, def being returned for unbounded
// or invalid values.
func toFloat(v interface{}, def float64) float64 {
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// toTime converts a date constraint value, def being returned for
// unbounded or invalid values.
func toTime(v interface{}, def time.Time) time.Time {
	t, err := cast.ToTimeE(v)
	if err != nil || t.IsZero() {
		return def
	}
	return t
}
