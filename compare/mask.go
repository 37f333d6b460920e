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

// Package compare matches observations with the closest points of a
// simulation grid, interpolates the simulated profiles at the observed
// depths and evaluates the simulations against the observations.
package compare

import (
	"github.com/pkg/errors"
	"github.com/spatialmodel/bgcdata"
	"github.com/spatialmodel/bgcdata/abfile"
)

// Mask selects points of a JDM x IDM grid. Fields are stored row by row,
// the value of point (i, j) being at position j*IDM+i.
type Mask struct {
	JDM, IDM int

	mask  []bool
	index []int
}

// NewMask returns the mask keeping the points of a jdm x idm grid for
// which mask is true. index holds the index value of every grid point.
func NewMask(jdm, idm int, mask []bool, index []int) (*Mask, error) {
	n := jdm * idm
	if len(mask) != n || len(index) != n {
		return nil, errors.Wrapf(bgcdata.ErrIncompatibleMaskShape, "grid is %dx%d, mask has %d values and index %d",
			jdm, idm, len(mask), len(index))
	}
	return &Mask{
		JDM:   jdm,
		IDM:   idm,
		mask:  append([]bool{}, mask...),
		index: append([]int{}, index...),
	}, nil
}

// MakeEmpty returns the mask keeping every point of grid g, indexed by
// their position.
func MakeEmpty(g *abfile.Grid) *Mask {
	n := g.JDM * g.IDM
	m := &Mask{JDM: g.JDM, IDM: g.IDM, mask: make([]bool, n), index: make([]int, n)}
	for i := range m.mask {
		m.mask[i] = true
		m.index[i] = i
	}
	return m
}

// Points returns the positions of the kept points.
func (m *Mask) Points() []int {
	var out []int
	for i, keep := range m.mask {
		if keep {
			out = append(out, i)
		}
	}
	return out
}

// Index returns the index values of the kept points.
func (m *Mask) Index() []int {
	var out []int
	for i, keep := range m.mask {
		if keep {
			out = append(out, m.index[i])
		}
	}
	return out
}

// Len returns the number of kept points.
func (m *Mask) Len() int {
	n := 0
	for _, keep := range m.mask {
		if keep {
			n++
		}
	}
	return n
}

// Apply returns the values of field at the kept points.
func (m *Mask) Apply(field []float64) ([]float64, error) {
	if len(field) != len(m.mask) {
		return nil, errors.Wrapf(bgcdata.ErrIncompatibleMaskShape, "mask has %d values, field %d",
			len(m.mask), len(field))
	}
	out := make([]float64, 0, len(field))
	for i, keep := range m.mask {
		if keep {
			out = append(out, field[i])
		}
	}
	return out, nil
}

// Intersect returns the mask keeping the points kept by m for which keep
// is also true.
func (m *Mask) Intersect(keep []bool) (*Mask, error) {
	if len(keep) != len(m.mask) {
		return nil, errors.Wrapf(bgcdata.ErrIncompatibleMaskShape, "mask has %d values, intersected array %d",
			len(m.mask), len(keep))
	}
	both := make([]bool, len(keep))
	for i, k := range keep {
		both[i] = k && m.mask[i]
	}
	return NewMask(m.JDM, m.IDM, both, m.index)
}
