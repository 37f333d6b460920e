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

package tracers

import (
	"image/color"
	"math"

	"github.com/spatialmodel/bgcdata"
	"github.com/spatialmodel/bgcdata/science/eos80"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// sigmaTGridSize is the number of salinity and temperature values the
// sigma-t contours are computed from.
const sigmaTGridSize = 100

// TemperatureSalinityDiagram plots potential temperature against
// salinity, with the contours of the density anomaly.
type TemperatureSalinityDiagram struct {
	basePlot

	// Column labels.
	Salinity, Temperature, PTemperature string
}

// NewTemperatureSalinityDiagram returns the diagram of the data of s that
// satisfies c, which can be nil. The other arguments are the labels of
// the salinity, temperature and potential temperature columns.
func NewTemperatureSalinityDiagram(s *bgcdata.Storer, c *bgcdata.Constraints, salinity, temperature, ptemperature string) *TemperatureSalinityDiagram {
	return &TemperatureSalinityDiagram{
		basePlot:     newBasePlot(s, c),
		Salinity:     salinity,
		Temperature:  temperature,
		PTemperature: ptemperature,
	}
}

// sigmaTGrid holds density anomalies on a salinity-temperature grid. It
// implements plotter.GridXYZ.
type sigmaTGrid struct {
	salinity, temperature []float64
}

func (g sigmaTGrid) Dims() (c, r int)   { return len(g.salinity), len(g.temperature) }
func (g sigmaTGrid) X(c int) float64    { return g.salinity[c] }
func (g sigmaTGrid) Y(r int) float64    { return g.temperature[r] }
func (g sigmaTGrid) Z(c, r int) float64 { return eos80.SigmaT(g.salinity[c], g.temperature[r]) }

// newSigmaTGrid returns the grid covering the salinity and temperature
// ranges.
func newSigmaTGrid(salinity, temperature []float64) sigmaTGrid {
	sMin, sMax := nanExtremes(salinity)
	tMin, tMax := nanExtremes(temperature)
	return sigmaTGrid{
		salinity:    linspace(sMin, sMax, sigmaTGridSize),
		temperature: linspace(tMin, tMax, sigmaTGridSize),
	}
}

// levels returns the contour levels of the grid.
func (g sigmaTGrid) levels() []float64 {
	min, max := math.Inf(1), math.Inf(-1)
	c, r := g.Dims()
	for i := 0; i < c; i++ {
		for j := 0; j < r; j++ {
			z := g.Z(i, j)
			min, max = math.Min(min, z), math.Max(max, z)
		}
	}
	if !(min < max) {
		return nil
	}
	var out []float64
	for _, t := range (plot.DefaultTicks{}).Ticks(min, max) {
		if t.Label != "" && t.Value > min && t.Value < max {
			out = append(out, t.Value)
		}
	}
	return out
}

// Figure returns the diagram. An empty title is replaced by the default
// one.
func (d *TemperatureSalinityDiagram) Figure(title, suptitle string) (*Figure, error) {
	f := d.storer.Data
	keep := make([]bool, f.Len())
	for i, missing := range f.AnyMissing(d.PTemperature, d.Salinity) {
		keep[i] = !missing
	}
	f = f.Filter(keep)
	salinity := f.Float(d.Salinity)
	ptemperature := f.Float(d.PTemperature)
	depth := f.Float(d.variables.MustGet(d.variables.DepthName()).Label())

	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.Title.Text = title
	if title == "" {
		p.Title.Text = "Temperature-Salinity Diagram"
	}
	p.X.Label.Text = "Salinity [psu]"
	p.Y.Label.Text = "Potential Temperature [°C]"

	cm := moreland.SmoothBlueRed()
	dMin, dMax := nanExtremes(depth)
	if math.IsNaN(dMin) {
		dMin, dMax = 0, 1
	}
	if dMax <= dMin {
		dMax = dMin + 1
	}
	cm.SetMin(dMin)
	cm.SetMax(dMax)
	p.Add(colorScatter{xs: salinity, ys: ptemperature, zs: depth, cm: cm, radius: vg.Points(2)})

	if f.Len() > 0 {
		g := newSigmaTGrid(salinity, f.Float(d.Temperature))
		if levels := g.levels(); len(levels) > 0 {
			contour := plotter.NewContour(g, levels, uniform{c: color.Gray{Y: 128}, n: 2})
			p.Add(contour)
		}
	}
	bar, err := colorBar(cm, "Depth [m]")
	if err != nil {
		return nil, err
	}
	return &Figure{Plot: p, ColorBar: bar, Suptitle: suptitle}, nil
}

// Save writes the diagram to path.
func (d *TemperatureSalinityDiagram) Save(path, title, suptitle string) error {
	fig, err := d.Figure(title, suptitle)
	if err != nil {
		return err
	}
	return fig.Save(path, DefaultWidth, DefaultHeight)
}
