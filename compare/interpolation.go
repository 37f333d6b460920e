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

package compare

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/bgcdata"
)

// Interpolator interpolates the profiles of a base storer, the rows of a
// profile sharing their index.
type Interpolator struct {
	base  *bgcdata.Storer
	xName string
	x     string
	ys    []string
}

// NewInterpolator returns an interpolator of the variables named ys of
// base along variable x, usually the depth. The other columns are copied
// from the profiles.
func NewInterpolator(base *bgcdata.Storer, x string, ys []string) (*Interpolator, error) {
	xv, err := base.Variables.Get(x)
	if err != nil {
		return nil, err
	}
	ip := &Interpolator{base: base, xName: x, x: xv.Label()}
	for _, name := range ys {
		v, err := base.Variables.Get(name)
		if err != nil {
			return nil, err
		}
		ip.ys = append(ip.ys, v.Label())
	}
	return ip, nil
}

// interpolated is one output row: the base row to copy, the x value and
// the interpolated values, nil when the row values are kept.
type interpolated struct {
	row    int
	x      float64
	values []float64
}

// profile holds the rows of one profile with a valid x, sorted by x.
type profile struct {
	first int
	rows  []int
	xs    []float64
}

func (ip *Interpolator) profiles() (map[int]*profile, []int) {
	xs := ip.base.Data.Float(ip.x)
	out := make(map[int]*profile)
	var order []int
	for r, i := range ip.base.Data.Index {
		p, ok := out[i]
		if !ok {
			p = &profile{first: r}
			out[i] = p
			order = append(order, i)
		}
		if !math.IsNaN(xs[r]) {
			p.rows = append(p.rows, r)
		}
	}
	for _, p := range out {
		sort.SliceStable(p.rows, func(a, b int) bool { return xs[p.rows[a]] < xs[p.rows[b]] })
		p.xs = make([]float64, len(p.rows))
		for k, r := range p.rows {
			p.xs[k] = xs[r]
		}
	}
	return out, order
}

// at returns the output row of profile p at x.
func (ip *Interpolator) at(p *profile, x float64, counts map[string]int) interpolated {
	switch {
	case math.IsNaN(x) || len(p.rows) == 0:
		counts["nan depth"]++
		values := make([]float64, len(ip.ys))
		for k := range values {
			values[k] = math.NaN()
		}
		return interpolated{row: p.first, x: x, values: values}
	case x > p.xs[len(p.xs)-1]:
		counts["outbound max"]++
		return interpolated{row: ip.firstWith(p, p.xs[len(p.xs)-1]), x: x}
	case x < p.xs[0]:
		counts["outbound min"]++
		return interpolated{row: p.rows[0], x: x}
	}
	counts["interpolated"]++
	values := make([]float64, len(ip.ys))
	hi := sort.SearchFloat64s(p.xs, x)
	for k, y := range ip.ys {
		ys := ip.base.Data.Float(y)
		if p.xs[hi] == x {
			values[k] = ys[p.rows[hi]]
			continue
		}
		x0, x1 := p.xs[hi-1], p.xs[hi]
		y0, y1 := ys[p.rows[hi-1]], ys[p.rows[hi]]
		values[k] = y0 + (y1-y0)*(x-x0)/(x1-x0)
	}
	return interpolated{row: p.first, x: x, values: values}
}

// firstWith returns the first row of p, in storer order, whose x is x.
func (ip *Interpolator) firstWith(p *profile, x float64) int {
	first := -1
	for k, r := range p.rows {
		if p.xs[k] == x && (first < 0 || r < first) {
			first = r
		}
	}
	return first
}

// InterpolateStorer returns the base profiles interpolated at the x
// values of the observations with the same index. Observation depths
// beyond a profile keep the values of its extreme row, missing ones give
// missing values.
func (ip *Interpolator) InterpolateStorer(observations *bgcdata.Storer) (*bgcdata.Storer, error) {
	bgcdata.Log.Info("interpolating data to match observations' depth values")
	xv, err := observations.Variables.Get(ip.xName)
	if err != nil {
		return nil, err
	}
	obsX := observations.Data.Float(xv.Label())
	obsRows := make(map[int][]int)
	for r, i := range observations.Data.Index {
		obsRows[i] = append(obsRows[i], r)
	}

	profiles, order := ip.profiles()
	counts := make(map[string]int)
	var out []interpolated
	var index []int
	for _, i := range order {
		rows, ok := obsRows[i]
		if !ok {
			bgcdata.Log.WithField("index", i).Warn("no observation for the simulated profile")
			continue
		}
		for _, r := range rows {
			out = append(out, ip.at(profiles[i], obsX[r], counts))
			index = append(index, i)
		}
	}
	fields := logrus.Fields{}
	for k, v := range counts {
		fields[k] = v
	}
	bgcdata.Log.WithFields(fields).Debug("interpolation")

	rows := make([]int, len(out))
	for k, o := range out {
		rows[k] = o.row
	}
	data := ip.base.Data.Take(rows)
	data.Index = index
	xs := data.Float(ip.x)
	for k, o := range out {
		xs[k] = o.x
		if o.values == nil {
			continue
		}
		for n, y := range ip.ys {
			data.Float(y)[k] = o.values[n]
		}
	}
	return bgcdata.NewStorer(data, ip.base.Category, ip.base.Providers, ip.base.Variables), nil
}
