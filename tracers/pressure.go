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
	"github.com/spatialmodel/bgcdata"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// WaterMassVariableComparison plots a variable against pressure in
// several water masses.
type WaterMassVariableComparison struct {
	basePlot

	pressure, ptemperature, salinity, sigmaT *bgcdata.Variable
}

// NewWaterMassVariableComparison returns the comparison of the data of s
// that satisfies c, which can be nil. The other arguments name the
// variables used to locate the water masses.
func NewWaterMassVariableComparison(s *bgcdata.Storer, c *bgcdata.Constraints, pressure, ptemperature, salinity, sigmaT string) (*WaterMassVariableComparison, error) {
	w := &WaterMassVariableComparison{basePlot: newBasePlot(s, c)}
	for _, v := range []struct {
		name string
		dst  **bgcdata.Variable
	}{{pressure, &w.pressure}, {ptemperature, &w.ptemperature}, {salinity, &w.salinity}, {sigmaT, &w.sigmaT}} {
		variable, err := w.variables.Get(v.name)
		if err != nil {
			return nil, err
		}
		*v.dst = variable
	}
	return w, nil
}

// scatter returns the values of variable and the negated pressures in
// water mass wm.
func (w *WaterMassVariableComparison) scatter(variable *bgcdata.Variable, wm *bgcdata.WaterMass) (plotter.XYs, error) {
	s, err := wm.ExtractFromStorer(w.storer, w.ptemperature.Name, w.salinity.Name, w.sigmaT.Name)
	if err != nil {
		return nil, err
	}
	x := s.Data.Float(variable.Label())
	y := s.Data.Float(w.pressure.Label())
	var xys plotter.XYs
	for i := range x {
		if s.Data.Column(variable.Label()).IsMissing(i) || s.Data.Column(w.pressure.Label()).IsMissing(i) {
			continue
		}
		xys = append(xys, plotter.XYs{{X: x[i], Y: -y[i]}}...)
	}
	return xys, nil
}

// Figure returns the scatter plot of variable against pressure, one
// color per water mass. Pressure increases downwards. An empty title is
// replaced by the default one.
func (w *WaterMassVariableComparison) Figure(variable string, wmasses []*bgcdata.WaterMass, title, suptitle string) (*Figure, error) {
	v, err := w.variables.Get(variable)
	if err != nil {
		return nil, err
	}
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	for i, wm := range wmasses {
		xys, err := w.scatter(v, wm)
		if err != nil {
			return nil, err
		}
		if len(xys) == 0 {
			bgcdata.Log.WithField("water mass", wm.Name).Warn("no data in water mass")
			continue
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, err
		}
		s.Color = plotutil.Color(i)
		s.Radius = vg.Points(2)
		s.Shape = draw.CircleGlyph{}
		p.Add(s)
		p.Legend.Add(wm.Name, s)
	}
	p.Title.Text = title
	if title == "" {
		p.Title.Text = variable + " vs " + w.pressure.Name
	}
	p.X.Label.Text = v.Name + " " + v.Unit
	p.Y.Label.Text = w.pressure.Name + " " + w.pressure.Unit
	p.Y.Tick.Marker = negatedTicks{}
	p.Legend.Top = true
	return &Figure{Plot: p, Suptitle: suptitle}, nil
}

// Save writes the comparison of variable in the water masses to path.
func (w *WaterMassVariableComparison) Save(path, variable string, wmasses []*bgcdata.WaterMass, title, suptitle string) error {
	fig, err := w.Figure(variable, wmasses, title, suptitle)
	if err != nil {
		return err
	}
	return fig.Save(path, DefaultWidth, DefaultWidth)
}
