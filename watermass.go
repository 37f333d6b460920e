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
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// WaterMass is a body of water identified by its ranges of potential
// temperature, salinity and density anomaly. NaN limits are unbounded.
type WaterMass struct {
	Name         string
	Acronym      string
	PTemperature [2]float64
	Salinity     [2]float64
	SigmaT       [2]float64
}

// Unbounded is a range without limits.
var Unbounded = [2]float64{math.NaN(), math.NaN()}

// NewWaterMass returns a water mass. An empty acronym is replaced by the
// capitalized initials of the words of the name.
func NewWaterMass(name, acronym string, ptemperature, salinity, sigmaT [2]float64) *WaterMass {
	if acronym == "" {
		for _, w := range strings.Split(name, " ") {
			if w != "" {
				acronym += strings.ToUpper(w[:1])
			}
		}
	}
	return &WaterMass{
		Name:         name,
		Acronym:      acronym,
		PTemperature: ptemperature,
		Salinity:     salinity,
		SigmaT:       sigmaT,
	}
}

func (w *WaterMass) String() string {
	return fmt.Sprintf("%s (%s)\nPTemperature in [%g,%g]\nSalinity in [%g,%g]\nSigma-t in [%g,%g]",
		w.Name, w.Acronym, w.PTemperature[0], w.PTemperature[1],
		w.Salinity[0], w.Salinity[1], w.SigmaT[0], w.SigmaT[1])
}

// MakeConstraints returns the constraints selecting the rows of the water
// mass given the labels of the potential temperature, salinity and sigma-t
// columns.
func (w *WaterMass) MakeConstraints(ptemperature, salinity, sigmaT string) *Constraints {
	c := NewConstraints()
	c.AddBoundary(ptemperature, w.PTemperature[0], w.PTemperature[1])
	c.AddBoundary(salinity, w.Salinity[0], w.Salinity[1])
	c.AddBoundary(sigmaT, w.SigmaT[0], w.SigmaT[1])
	return c
}

func (w *WaterMass) storerConstraints(s *Storer, ptemperature, salinity, sigmaT string) (*Constraints, error) {
	labels := make([]string, 3)
	for i, n := range []string{ptemperature, salinity, sigmaT} {
		v, err := s.Variables.Get(n)
		if err != nil {
			return nil, err
		}
		labels[i] = v.Label()
	}
	return w.MakeConstraints(labels[0], labels[1], labels[2]), nil
}

// ExtractFromStorer returns the rows of s belonging to the water mass.
// The arguments name the potential temperature, salinity and sigma-t
// variables.
func (w *WaterMass) ExtractFromStorer(s *Storer, ptemperature, salinity, sigmaT string) (*Storer, error) {
	c, err := w.storerConstraints(s, ptemperature, salinity, sigmaT)
	if err != nil {
		return nil, err
	}
	return c.ApplyToStorer(s), nil
}

// FlagInStorer writes the water mass name in column variable for the rows
// of s belonging to the water mass. If the storer has no such variable, it
// is created when create is true.
func (w *WaterMass) FlagInStorer(s *Storer, variable, ptemperature, salinity, sigmaT string, create bool) (*Storer, error) {
	c, err := w.storerConstraints(s, ptemperature, salinity, sigmaT)
	if err != nil {
		return nil, err
	}
	compliant := c.Mask(s.Data)
	out := NewStorer(s.Data.Copy(), s.Category, s.Providers, s.Variables)
	if v, err := out.Variables.Get(variable); err == nil {
		col := out.Data.Column(v.Label()).Convert(String)
		for i, ok := range compliant {
			if ok {
				col.Strings[i] = w.Name
			}
		}
		out.Data.Set(v.Label(), col)
		return out, nil
	}
	if !create {
		return nil, errors.Wrapf(ErrIncorrectVariableName, "%s invalid for the given storer", variable)
	}
	names := make([]string, len(compliant))
	for i, ok := range compliant {
		if ok {
			names[i] = w.Name
		}
	}
	v := &Variable{
		Name:        variable,
		Unit:        "[]",
		Type:        "str",
		NameFormat:  DefaultNameFormat,
		ValueFormat: DefaultValueFormat,
		Origin:      NotExisting,
	}
	if err := out.Variables.Add(v); err != nil {
		return nil, err
	}
	if err := out.Data.SetString(variable, names); err != nil {
		return nil, err
	}
	return out, nil
}
