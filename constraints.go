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

package bgcdata

import (
	"math"
	"time"

	"github.com/ctessum/geom"
	"github.com/spf13/cast"
)

// Bound is an interval on the values of a field. Min and Max are numbers
// or dates; nil or NaN means unbounded.
type Bound struct {
	Min, Max interface{}
}

func unbounded(v interface{}) bool {
	if v == nil {
		return true
	}
	if f, ok := v.(float64); ok {
		return math.IsNaN(f)
	}
	if d, ok := v.(time.Time); ok {
		return d.IsZero()
	}
	return false
}

type polygonConstraint struct {
	latitude, longitude string
	polygon             geom.Polygonal
}

// Constraints filters rows on the values of their fields.
type Constraints struct {
	boundaries map[string]Bound
	supersets  map[string][]interface{}
	polygons   []polygonConstraint
	order      []string
}

// NewConstraints returns an empty set of constraints.
func NewConstraints() *Constraints {
	return &Constraints{
		boundaries: make(map[string]Bound),
		supersets:  make(map[string][]interface{}),
	}
}

// Reset removes the boundary and superset constraints.
func (c *Constraints) Reset() {
	c.boundaries = make(map[string]Bound)
	c.supersets = make(map[string][]interface{})
	c.order = nil
}

func (c *Constraints) track(field string) {
	for _, f := range c.order {
		if f == field {
			return
		}
	}
	c.order = append(c.order, field)
}

// AddBoundary keeps the rows whose field value is within [min, max]. It is
// not added when both limits are unbounded.
func (c *Constraints) AddBoundary(field string, min, max interface{}) {
	if unbounded(min) && unbounded(max) {
		return
	}
	c.boundaries[field] = Bound{Min: min, Max: max}
	c.track(field)
}

// AddSuperset keeps the rows whose field value is one of values. It is not
// added when values is empty.
func (c *Constraints) AddSuperset(field string, values []interface{}) {
	if len(values) == 0 {
		return
	}
	c.supersets[field] = append([]interface{}{}, values...)
	c.track(field)
}

// AddPolygon keeps the rows whose position is strictly inside polygon,
// with the longitude as x and the latitude as y.
func (c *Constraints) AddPolygon(latitude, longitude string, polygon geom.Polygonal) {
	c.polygons = append(c.polygons, polygonConstraint{latitude: latitude, longitude: longitude, polygon: polygon})
}

// Polygons returns the number of polygon constraints.
func (c *Constraints) Polygons() int { return len(c.polygons) }

func (c *Constraints) boundaryMask(f *Frame, keep []bool) {
	for _, field := range c.order {
		b, ok := c.boundaries[field]
		if !ok {
			continue
		}
		col := f.Column(field)
		if col == nil {
			continue
		}
		min, max := math.Inf(-1), math.Inf(1)
		if !unbounded(b.Min) {
			min = toFloat(b.Min)
		}
		if !unbounded(b.Max) {
			max = toFloat(b.Max)
		}
		for i := range keep {
			v := col.Float(i)
			keep[i] = keep[i] && v >= min && v <= max
		}
	}
}

func (c *Constraints) supersetMask(f *Frame, keep []bool) {
	for _, field := range c.order {
		values, ok := c.supersets[field]
		if !ok {
			continue
		}
		col := f.Column(field)
		if col == nil {
			continue
		}
		allowed := make(map[string]bool, len(values))
		for _, v := range values {
			allowed[supersetKey(col.Kind, v)] = true
		}
		for i := range keep {
			keep[i] = keep[i] && !col.IsMissing(i) && allowed[col.Key(i)]
		}
	}
}

// supersetKey converts v to the kind of a column and returns its Column.Key.
func supersetKey(k Kind, v interface{}) string {
	c := FilledColumn(k, 1, v)
	if k == String {
		c.Strings[0] = cast.ToString(v)
	}
	return c.Key(0)
}

func (c *Constraints) polygonMask(f *Frame, keep []bool) {
	for _, p := range c.polygons {
		lat, lon := f.Float(p.latitude), f.Float(p.longitude)
		if lat == nil || lon == nil {
			continue
		}
		for i := range keep {
			if !keep[i] {
				continue
			}
			keep[i] = geom.Point{X: lon[i], Y: lat[i]}.Within(p.polygon) == geom.Inside
		}
	}
}

// Mask returns, for every row of f, whether it satisfies all constraints.
func (c *Constraints) Mask(f *Frame) []bool {
	keep := make([]bool, f.Len())
	for i := range keep {
		keep[i] = true
	}
	c.boundaryMask(f, keep)
	c.supersetMask(f, keep)
	c.polygonMask(f, keep)
	return keep
}

// ApplyToFrame returns the rows of f that satisfy all constraints.
func (c *Constraints) ApplyToFrame(f *Frame) *Frame {
	return f.Filter(c.Mask(f))
}

// ApplyToStorer returns a storer holding the rows of s that satisfy all
// constraints.
func (c *Constraints) ApplyToStorer(s *Storer) *Storer {
	return FromConstraints(s, c)
}

// ApplySpecific applies only the boundary and superset constraints on
// field.
func (c *Constraints) ApplySpecific(field string, f *Frame) *Frame {
	o := NewConstraints()
	if b, ok := c.boundaries[field]; ok {
		o.AddBoundary(field, b.Min, b.Max)
	}
	if s, ok := c.supersets[field]; ok {
		o.AddSuperset(field, s)
	}
	return o.ApplyToFrame(f)
}

// IsConstrained reports whether field has a boundary or superset
// constraint.
func (c *Constraints) IsConstrained(field string) bool {
	_, b := c.boundaries[field]
	_, s := c.supersets[field]
	return b || s
}

// ConstraintParameters are the constraints set on one field.
type ConstraintParameters struct {
	Boundary *Bound
	Superset []interface{}
}

// GetConstraintParameters returns the constraints set on field.
func (c *Constraints) GetConstraintParameters(field string) ConstraintParameters {
	var p ConstraintParameters
	if b, ok := c.boundaries[field]; ok {
		p.Boundary = &Bound{Min: b.Min, Max: b.Max}
	}
	if s, ok := c.supersets[field]; ok {
		p.Superset = append([]interface{}{}, s...)
	}
	return p
}

// GetExtremes returns the smallest and largest values allowed for field,
// combining its boundary and superset constraints. The defaults are
// returned when field is not constrained.
func (c *Constraints) GetExtremes(field string, defaultMin, defaultMax interface{}) (min, max interface{}) {
	if !c.IsConstrained(field) {
		return defaultMin, defaultMax
	}
	p := c.GetConstraintParameters(field)
	if len(p.Superset) > 0 {
		min, max = p.Superset[0], p.Superset[0]
		for _, v := range p.Superset[1:] {
			if toFloat(v) < toFloat(min) {
				min = v
			}
			if toFloat(v) > toFloat(max) {
				max = v
			}
		}
		if p.Boundary != nil {
			if !unbounded(p.Boundary.Min) && toFloat(p.Boundary.Min) < toFloat(min) {
				min = p.Boundary.Min
			}
			if !unbounded(p.Boundary.Max) && toFloat(p.Boundary.Max) > toFloat(max) {
				max = p.Boundary.Max
			}
		}
		return min, max
	}
	return p.Boundary.Min, p.Boundary.Max
}
