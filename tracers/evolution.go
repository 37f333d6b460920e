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
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spatialmodel/bgcdata"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
)

// EvolutionProfile counts the data points of a variable per date and
// depth interval.
type EvolutionProfile struct {
	basePlot

	interval       string
	intervalLength int
	depthInterval  float64
	depthBounds    []float64

	depthLabel, dateLabel string
}

// Default intervals of evolution profiles.
const (
	DefaultEvolutionInterval       = bgcdata.Day
	DefaultEvolutionIntervalLength = 10
	DefaultDepthInterval           = 100.
	// defaultDepthMax is the shallowest depth of the profiles when depth
	// is not constrained.
	defaultDepthMax = 0.
)

// NewEvolutionProfile returns the evolution profile of the data of s that
// satisfies c, which can be nil.
func NewEvolutionProfile(s *bgcdata.Storer, c *bgcdata.Constraints) (*EvolutionProfile, error) {
	e := &EvolutionProfile{basePlot: newBasePlot(s, c)}
	e.ResetIntervals()
	depth, err := e.variables.Get(e.variables.DepthName())
	if err != nil {
		return nil, err
	}
	date, err := e.variables.Get(e.variables.DateName())
	if err != nil {
		return nil, err
	}
	e.depthLabel, e.dateLabel = depth.Label(), date.Label()
	return e, nil
}

// ResetIntervals sets the default intervals back.
func (e *EvolutionProfile) ResetIntervals() {
	e.interval = DefaultEvolutionInterval
	e.intervalLength = DefaultEvolutionIntervalLength
	e.depthInterval = DefaultDepthInterval
	e.depthBounds = nil
}

// SetDepthInterval sets the height [m] of the depth intervals. NaN keeps
// the current intervals.
func (e *EvolutionProfile) SetDepthInterval(width float64) {
	if math.IsNaN(width) {
		return
	}
	e.depthInterval = width
	e.depthBounds = nil
}

// SetDepthBounds sets the bounds of the depth intervals. The extreme
// depths are added to them.
func (e *EvolutionProfile) SetDepthBounds(bounds []float64) {
	e.depthBounds = append([]float64{}, bounds...)
}

// SetDateIntervals sets the date intervals: "day", "week", "month",
// "year" or "custom", custom intervals being length days long. Lengths
// below 1 keep the current length.
func (e *EvolutionProfile) SetDateIntervals(interval string, length int) {
	e.interval = interval
	if length > 0 {
		e.intervalLength = length
	}
}

// depthEdges returns the edges of the depth intervals.
func (e *EvolutionProfile) depthEdges() ([]float64, error) {
	bgcdata.Log.Debug("making depth intervals")
	min, max := math.NaN(), math.NaN()
	if e.constraints.IsConstrained(e.depthLabel) {
		lo, hi := e.constraints.GetExtremes(e.depthLabel, nil, nil)
		min, max = toFloat(lo, math.NaN()), toFloat(hi, math.NaN())
	}
	if math.IsNaN(min) {
		min, _ = nanExtremes(e.storer.Data.Float(e.depthLabel))
	}
	if math.IsNaN(max) {
		max = defaultDepthMax
	}
	if math.IsNaN(min) {
		return nil, fmt.Errorf("tracers: no depth to make intervals from")
	}
	var edges []float64
	if e.depthBounds != nil {
		edges = []float64{min, max}
		for _, b := range e.depthBounds {
			if b > min && b < max {
				edges = append(edges, b)
			}
		}
		sort.Float64s(edges)
		edges = unique(edges)
	} else {
		if e.depthInterval <= 0 {
			return nil, fmt.Errorf("tracers: invalid depth interval %g", e.depthInterval)
		}
		rem := math.Mod(min, e.depthInterval)
		if rem < 0 {
			rem += e.depthInterval
		}
		start := min - rem
		n := int(math.Floor((max-start)/e.depthInterval + 1e-9))
		for k := 0; k <= n; k++ {
			edges = append(edges, start+float64(k)*e.depthInterval)
		}
	}
	if len(edges) < 2 {
		return nil, fmt.Errorf("tracers: depths in [%g, %g] make no interval", min, max)
	}
	return edges, nil
}

func unique(sorted []float64) []float64 {
	out := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			out = append(out, v)
		}
	}
	return out
}

// dateRanges returns the date intervals.
func (e *EvolutionProfile) dateRanges() ([]bgcdata.DateRange, error) {
	bgcdata.Log.Debug("making date intervals")
	var min, max time.Time
	for _, d := range e.storer.Data.Date(e.dateLabel) {
		if d.IsZero() {
			continue
		}
		if min.IsZero() || d.Before(min) {
			min = d
		}
		if max.IsZero() || d.After(max) {
			max = d
		}
	}
	if e.constraints.IsConstrained(e.dateLabel) {
		lo, hi := e.constraints.GetExtremes(e.dateLabel, nil, nil)
		min, max = toTime(lo, min), toTime(hi, max)
	}
	if min.IsZero() || max.IsZero() {
		return nil, fmt.Errorf("tracers: no date to make intervals from")
	}
	g := bgcdata.DateRangeGenerator{
		Start:          min,
		End:            max,
		Interval:       e.interval,
		IntervalLength: e.intervalLength,
	}
	return g.Ranges()
}

// dateCut returns the range of ranges holding t, -1 when none does.
func dateCut(ranges []bgcdata.DateRange, t time.Time) int {
	if t.IsZero() {
		return -1
	}
	i := sort.Search(len(ranges), func(i int) bool { return !ranges[i].End.Before(t) })
	if i == len(ranges) || t.Before(ranges[i].Start) {
		return -1
	}
	return i
}

// Mesh returns the number of data points of variable, or of all rows
// when variable is "all", per date interval (columns, edges in Unix
// seconds) and depth interval (rows). Cells without any row are NaN.
func (e *EvolutionProfile) Mesh(variable string) (*Mesh, error) {
	label, err := e.label(variable)
	if err != nil {
		return nil, err
	}
	depthEdges, err := e.depthEdges()
	if err != nil {
		return nil, err
	}
	ranges, err := e.dateRanges()
	if err != nil {
		return nil, err
	}
	dateEdges := make([]float64, len(ranges)+1)
	for i, r := range ranges {
		dateEdges[i] = float64(r.Start.Unix())
	}
	dateEdges[len(ranges)] = float64(ranges[len(ranges)-1].End.Unix())

	bgcdata.Log.Info("pivoting data")
	m := newMesh(dateEdges, depthEdges)
	depth := e.storer.Data.Float(e.depthLabel)
	dates := e.storer.Data.Date(e.dateLabel)
	for i, v := range e.present(label) {
		r, c := cut(depthEdges, depth[i]), dateCut(ranges, dates[i])
		if r < 0 || c < 0 {
			continue
		}
		m.add(r, c, v)
	}
	return m, nil
}

func round2(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func (e *EvolutionProfile) defaultTitle() string {
	var depth string
	if e.depthBounds != nil {
		parts := make([]string, len(e.depthBounds))
		for i, b := range e.depthBounds {
			parts[i] = strconv.FormatFloat(b, 'f', -1, 64)
		}
		depth = "[" + strings.Join(parts, ", ") + "]"
	} else {
		depth = strconv.FormatFloat(e.depthInterval, 'f', -1, 64)
	}
	if e.interval == bgcdata.Custom {
		plural := ""
		if e.intervalLength > 1 {
			plural = "s"
		}
		return fmt.Sprintf("Horizontal resolution: %d day%s. Vertical resolution: %s meters.", e.intervalLength, plural, depth)
	}
	return fmt.Sprintf("Horizontal resolution: 1 %s. Vertical resolution: %s meters.", e.interval, depth)
}

func (e *EvolutionProfile) defaultSuptitle() string {
	vs := e.variables
	latMin, latMax := e.extremes(vs.MustGet(vs.LatitudeName()).Label())
	lonMin, lonMax := e.extremes(vs.MustGet(vs.LongitudeName()).Label())
	return fmt.Sprintf("Evolution of data in the area of latitude in [%s,%s] and longitude in [%s,%s]",
		round2(latMin), round2(latMax), round2(lonMin), round2(lonMax))
}

// Figure returns the evolution profile of variable. Empty titles are
// replaced by default ones.
func (e *EvolutionProfile) Figure(variable, title, suptitle string) (*Figure, error) {
	m, err := e.Mesh(variable)
	if err != nil {
		return nil, err
	}
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.Title.Text = title
	if title == "" {
		p.Title.Text = e.defaultTitle()
	}
	if suptitle == "" {
		suptitle = e.defaultSuptitle()
	}
	depth := e.variables.MustGet(e.variables.DepthName())
	p.Y.Label.Text = depth.Name + " " + depth.Unit
	p.X.Tick.Marker = plot.TimeTicks{Format: bgcdata.DateLayout}

	cm := moreland.ExtendedBlackBody()
	min, max := nanExtremes(m.Values())
	if math.IsNaN(min) {
		min, max = 0, 1
	}
	if max <= min {
		max = min + 1
	}
	cm.SetMin(min)
	cm.SetMax(max)
	p.Add(meshPlotter{mesh: m, cm: cm})
	bar, err := colorBar(cm, "Number of data points")
	if err != nil {
		return nil, err
	}
	return &Figure{Plot: p, ColorBar: bar, Suptitle: suptitle}, nil
}

// Save writes the evolution profile of variable to path.
func (e *EvolutionProfile) Save(path, variable, title, suptitle string) error {
	fig, err := e.Figure(variable, title, suptitle)
	if err != nil {
		return err
	}
	return fig.Save(path, DefaultWidth, DefaultHeight)
}
