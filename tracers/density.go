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
	"math"
	"strconv"
	"strings"

	"github.com/ctessum/plotextra"
	"github.com/spatialmodel/bgcdata"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
)

// DensityPlotter maps the number of data points of a variable on a
// latitude-longitude grid.
type DensityPlotter struct {
	basePlot

	latBin, lonBin float64
	depthDensity   bool

	latMapMin, latMapMax float64
	lonMapMin, lonMapMax float64

	grouping []string
}

// NewDensityPlotter returns a density plotter of the data of s that
// satisfies c, which can be nil.
func NewDensityPlotter(s *bgcdata.Storer, c *bgcdata.Constraints) *DensityPlotter {
	d := &DensityPlotter{
		basePlot:     newBasePlot(s, c),
		latBin:       1,
		lonBin:       1,
		depthDensity: true,
		latMapMin:    math.NaN(),
		latMapMax:    math.NaN(),
		lonMapMin:    math.NaN(),
		lonMapMax:    math.NaN(),
	}
	vs := d.variables
	for _, name := range []string{vs.ProviderName(), vs.ExpocodeName(), vs.YearName(), vs.MonthName(),
		vs.DayName(), vs.HourName(), vs.LatitudeName(), vs.LongitudeName()} {
		if name == "" || !vs.Has(name) {
			continue
		}
		if l := vs.MustGet(name).Label(); d.storer.Data.Has(l) {
			d.grouping = append(d.grouping, l)
		}
	}
	return d
}

// SetBinsSize sets the latitude and longitude sizes [deg] of the bins.
func (d *DensityPlotter) SetBinsSize(lat, lon float64) {
	d.latBin, d.lonBin = lat, lon
}

// SetDensityType sets whether every depth counts as a data point
// (considerDepth) or every profile counts once.
func (d *DensityPlotter) SetDensityType(considerDepth bool) {
	d.depthDensity = considerDepth
}

// SetMapBoundaries sets the extent of the map. NaN values keep the
// current boundary.
func (d *DensityPlotter) SetMapBoundaries(latMin, latMax, lonMin, lonMax float64) {
	for _, b := range []struct {
		v   float64
		dst *float64
	}{{latMin, &d.latMapMin}, {latMax, &d.latMapMax}, {lonMin, &d.lonMapMin}, {lonMax, &d.lonMapMax}} {
		if !math.IsNaN(b.v) {
			*b.dst = b.v
		}
	}
}

// binned is the count of data points at a location.
type binned struct {
	lat, lon, count float64
}

// group returns the number of data points of the variable labelled
// label per group of rows sharing their provider, expocode, date and
// location.
func (d *DensityPlotter) group(label string) []binned {
	vs := d.variables
	f := d.storer.Data
	lat := f.Float(vs.MustGet(vs.LatitudeName()).Label())
	lon := f.Float(vs.MustGet(vs.LongitudeName()).Label())
	present := d.present(label)

	cols := make([]*bgcdata.Column, len(d.grouping))
	for i, g := range d.grouping {
		cols[i] = f.Column(g)
	}
	var out []binned
	pos := make(map[string]int)
	key := make([]string, len(cols))
	for r, p := range present {
		if p == 0 || math.IsNaN(lat[r]) || math.IsNaN(lon[r]) {
			continue
		}
		for i, c := range cols {
			key[i] = c.Key(r)
		}
		k := strings.Join(key, "\x00")
		i, ok := pos[k]
		if !ok {
			pos[k] = len(out)
			out = append(out, binned{lat: lat[r], lon: lon[r], count: 1})
			continue
		}
		if d.depthDensity {
			out[i].count++
		}
	}
	return out
}

// geoEdges returns the bin edges covering the values of x, extended by
// one degree on both sides.
func geoEdges(x []float64, size float64) []float64 {
	min, max := nanExtremes(x)
	n := int((max - min + 2*size) / size)
	if n < 2 {
		n = 2
	}
	return linspace(min-1, max+1, n)
}

func (d *DensityPlotter) mesh(groups []binned) *Mesh {
	lat, lon := make([]float64, len(groups)), make([]float64, len(groups))
	for i, g := range groups {
		lat[i], lon[i] = g.lat, g.lon
	}
	m := newMesh(geoEdges(lon, d.lonBin), geoEdges(lat, d.latBin))
	for _, g := range groups {
		r, c := cut(m.YEdges, g.lat), cut(m.XEdges, g.lon)
		if r < 0 || c < 0 {
			continue
		}
		m.add(r, c, g.count)
	}
	return m
}

// Mesh returns the number of data points of a variable, or of all rows
// when variable is "all", in every bin. It returns nil when there is no
// data point.
func (d *DensityPlotter) Mesh(variable string) (*Mesh, error) {
	label, err := d.label(variable)
	if err != nil {
		return nil, err
	}
	bgcdata.Log.WithField("variable", variable).Info("meshing data")
	groups := d.group(label)
	if len(groups) == 0 {
		return nil, nil
	}
	return d.mesh(groups), nil
}

// Density returns the center of every non-empty bin and its number of
// data points.
func (d *DensityPlotter) Density(variable string) (lon, lat, count []float64, err error) {
	m, err := d.Mesh(variable)
	if err != nil || m == nil {
		return nil, nil, nil, err
	}
	for r, row := range m.Z {
		for c, v := range row {
			if math.IsNaN(v) {
				continue
			}
			lon = append(lon, (m.XEdges[c]+m.XEdges[c+1])/2)
			lat = append(lat, (m.YEdges[r]+m.YEdges[r+1])/2)
			count = append(count, v)
		}
	}
	return lon, lat, count, nil
}

// extent returns the boundaries of the map.
func (d *DensityPlotter) extent(m *Mesh) (lonMin, lonMax, latMin, latMax float64) {
	vs := d.variables
	latMin, latMax = d.extremes(vs.MustGet(vs.LatitudeName()).Label())
	lonMin, lonMax = d.extremes(vs.MustGet(vs.LongitudeName()).Label())
	if m != nil {
		// Default to the extent of the plotted bins.
		if math.IsNaN(latMin) || math.IsNaN(latMax) {
			latMin, latMax = m.YEdges[0], m.YEdges[len(m.YEdges)-1]
		}
		if math.IsNaN(lonMin) || math.IsNaN(lonMax) {
			lonMin, lonMax = m.XEdges[0], m.XEdges[len(m.XEdges)-1]
		}
	}
	pick := func(set, def float64) float64 {
		if math.IsNaN(set) {
			return def
		}
		return set
	}
	return pick(d.lonMapMin, lonMin), pick(d.lonMapMax, lonMax), pick(d.latMapMin, latMin), pick(d.latMapMax, latMax)
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// countColorMap returns the color map of counts up to max. Counts above
// the 99.9th percentile get their own colors when they stand out.
func countColorMap(values []float64) (palette.ColorMap, *plot.Plot, error) {
	min, max := nanExtremes(values)
	if max <= min {
		max = min + 1
	}
	base := moreland.ExtendedBlackBody()
	cut := quantile(values, 0.999)
	if cut <= min || cut >= max {
		base.SetMin(min)
		base.SetMax(max)
		bar, err := colorBar(base, "")
		return base, bar, err
	}
	overflow, err := moreland.NewLuminance([]color.Color{
		color.NRGBA{G: 176, A: 255},
		color.NRGBA{G: 255, A: 255},
	})
	if err != nil {
		return nil, nil, err
	}
	cm := &plotextra.BrokenColorMap{
		Base:     base,
		OverFlow: palette.Reverse(overflow),
	}
	cm.SetMin(min)
	cm.SetMax(max)
	cm.SetHighCut(cut)
	bar, err := colorBar(cm, "")
	if err != nil {
		return nil, nil, err
	}
	bar.X.Scale = plotextra.BrokenScale{
		HighCut:         cut,
		HighCutFraction: 0.9,
	}
	bar.X.Tick.Marker = plotextra.BrokenTicks{
		HighCut: cut,
	}
	return cm, bar, nil
}

// Figure returns the density map of variable. Empty titles are replaced
// by default ones.
func (d *DensityPlotter) Figure(variable, title, suptitle string) (*Figure, error) {
	m, err := d.Mesh(variable)
	if err != nil {
		return nil, err
	}
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.Add(plotter.NewGrid())
	p.X.Label.Text = "Longitude [deg_E]"
	p.Y.Label.Text = "Latitude [deg_N]"
	fig := &Figure{Plot: p, Suptitle: suptitle}
	if fig.Suptitle == "" {
		fig.Suptitle = fmt.Sprintf("%s - %s (%s)", variable, strings.Join(d.storer.Providers, ", "), d.storer.Category)
	}
	p.Title.Text = title
	if title == "" {
		p.Title.Text = fmt.Sprintf("%s° x %s° grid (lat x lon)", formatDegrees(d.latBin), formatDegrees(d.lonBin))
	}
	if m != nil {
		if len(m.Z) == 1 && len(m.Z[0]) == 1 {
			bgcdata.Log.Warn("not enough data to display, try decreasing the bin size or representing more data sources")
		}
		cm, bar, err := countColorMap(m.Values())
		if err != nil {
			return nil, err
		}
		bar.X.Label.Text = variable + " total data points count"
		fig.ColorBar = bar
		p.Add(meshPlotter{mesh: m, cm: cm})
	}
	lonMin, lonMax, latMin, latMax := d.extent(m)
	if !math.IsNaN(lonMin) && !math.IsNaN(lonMax) && lonMin < lonMax {
		p.X.Min, p.X.Max = lonMin, lonMax
	}
	if !math.IsNaN(latMin) && !math.IsNaN(latMax) && latMin < latMax {
		p.Y.Min, p.Y.Max = latMin, latMax
	}
	return fig, nil
}

// Save writes the density map of variable to path.
func (d *DensityPlotter) Save(path, variable, title, suptitle string) error {
	fig, err := d.Figure(variable, title, suptitle)
	if err != nil {
		return err
	}
	return fig.Save(path, DefaultWidth, DefaultWidth)
}
