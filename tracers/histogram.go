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
	"fmt"
	"image/color"

	"github.com/spatialmodel/bgcdata"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
)

// HistogramBins is the number of bins of variable histograms.
var HistogramBins = 100

// VariableHistogram draws the distribution of a variable and the normal
// distribution fitted to it.
type VariableHistogram struct {
	basePlot
}

// NewVariableHistogram returns the histogram of the data of s that
// satisfies c, which can be nil.
func NewVariableHistogram(s *bgcdata.Storer, c *bgcdata.Constraints) *VariableHistogram {
	return &VariableHistogram{basePlot: newBasePlot(s, c)}
}

// Fit returns the values of variable and the normal distribution fitted
// to them.
func (h *VariableHistogram) Fit(variable string) ([]float64, distuv.Normal, error) {
	v, err := h.variables.Get(variable)
	if err != nil {
		return nil, distuv.Normal{}, err
	}
	values := withoutNaN(h.storer.Data.Float(v.Label()))
	if len(values) == 0 {
		return nil, distuv.Normal{}, fmt.Errorf("tracers: no %s value to plot", variable)
	}
	mean, std := stat.MeanStdDev(values, nil)
	return values, distuv.Normal{Mu: mean, Sigma: std}, nil
}

// Figure returns the histogram of variable, normalized to a probability
// density. An empty title is replaced by the default one.
func (h *VariableHistogram) Figure(variable, title, suptitle string) (*Figure, error) {
	values, normal, err := h.Fit(variable)
	if err != nil {
		return nil, err
	}
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	hist, err := plotter.NewHist(plotter.Values(values), HistogramBins)
	if err != nil {
		return nil, err
	}
	hist.Normalize(1)
	p.Add(hist)
	if normal.Sigma > 0 {
		min, max := nanExtremes(values)
		xs := linspace(min, max, 1000)
		xys := make(plotter.XYs, len(xs))
		for i, x := range xs {
			xys[i].X, xys[i].Y = x, normal.Prob(x)
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		l.Color = color.NRGBA{R: 255, A: 255}
		p.Add(l)
	}
	v := h.variables.MustGet(variable)
	p.X.Label.Text = fmt.Sprintf("%s ± %s", round2(normal.Mu), round2(normal.Sigma))
	p.Y.Label.Text = v.Name + " " + v.Unit
	p.Title.Text = title
	if title == "" {
		p.Title.Text = v.Label() + " Histogram"
	}
	return &Figure{Plot: p, Suptitle: suptitle}, nil
}

// Save writes the histogram of variable to path.
func (h *VariableHistogram) Save(path, variable, title, suptitle string) error {
	fig, err := h.Figure(variable, title, suptitle)
	if err != nil {
		return err
	}
	return fig.Save(path, DefaultWidth, DefaultHeight)
}
