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
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spatialmodel/bgcdata"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// periodKeys format the period a date belongs to.
var periodKeys = map[string]func(time.Time) string{
	bgcdata.Year:  func(t time.Time) string { return t.Format("2006") },
	bgcdata.Month: func(t time.Time) string { return t.Format("2006-01") },
	bgcdata.Week:  weekKey,
	bgcdata.Day:   func(t time.Time) string { return t.Format(bgcdata.DateLayout) },
}

// weekKey returns the year and the number of the week of t, weeks
// starting on Monday. Days before the first Monday of the year are in
// week 0.
func weekKey(t time.Time) string {
	weekday := (int(t.Weekday()) + 6) % 7
	return fmt.Sprintf("%d-%02d", t.Year(), (t.YearDay()-1+7-weekday)/7)
}

// VariableBoxplot draws the distribution of a variable over periods of
// time.
type VariableBoxplot struct {
	basePlot
}

// NewVariableBoxplot returns the box plots of the data of s that
// satisfies c, which can be nil.
func NewVariableBoxplot(s *bgcdata.Storer, c *bgcdata.Constraints) *VariableBoxplot {
	return &VariableBoxplot{basePlot: newBasePlot(s, c)}
}

// Groups returns the sorted periods ("year", "month", "week" or "day")
// holding values of variable, and their values.
func (b *VariableBoxplot) Groups(variable, period string) ([]string, [][]float64, error) {
	key, ok := periodKeys[period]
	if !ok {
		return nil, nil, errors.Wrapf(bgcdata.ErrInvalidParameterKey, "wrong period '%s', accepted values: %s, %s, %s, %s",
			period, bgcdata.Year, bgcdata.Month, bgcdata.Week, bgcdata.Day)
	}
	v, err := b.variables.Get(variable)
	if err != nil {
		return nil, nil, err
	}
	values := b.storer.Data.Float(v.Label())
	dates := b.storer.Data.Date(b.variables.MustGet(b.variables.DateName()).Label())
	groups := make(map[string][]float64)
	for i, d := range dates {
		if d.IsZero() || b.storer.Data.Column(v.Label()).IsMissing(i) {
			continue
		}
		k := key(d)
		groups[k] = append(groups[k], values[i])
	}
	periods := make([]string, 0, len(groups))
	for k := range groups {
		periods = append(periods, k)
	}
	sort.Strings(periods)
	out := make([][]float64, len(periods))
	for i, k := range periods {
		out[i] = groups[k]
	}
	return periods, out, nil
}

// Figure returns one box plot of variable per period. An empty title is
// replaced by the default one.
func (b *VariableBoxplot) Figure(variable, period, title, suptitle string) (*Figure, error) {
	periods, groups, err := b.Groups(variable, period)
	if err != nil {
		return nil, err
	}
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	v := b.variables.MustGet(variable)
	for i, values := range groups {
		box, err := plotter.NewBoxPlot(vg.Points(20), float64(i), plotter.Values(values))
		if err != nil {
			return nil, err
		}
		p.Add(box)
	}
	p.NominalX(periods...)
	p.X.Label.Text = strings.Title(period)
	p.Y.Label.Text = v.Name + " " + v.Unit
	p.Title.Text = title
	if title == "" {
		p.Title.Text = v.Label() + " Box Plot"
	}
	return &Figure{Plot: p, Suptitle: suptitle}, nil
}

// Save writes the box plots of variable to path.
func (b *VariableBoxplot) Save(path, variable, period, title, suptitle string) error {
	fig, err := b.Figure(variable, period, title, suptitle)
	if err != nil {
		return err
	}
	return fig.Save(path, DefaultWidth, DefaultHeight)
}
