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

	"github.com/ctessum/unit"
)

// MoleDim is the amount of substance dimension. "mol" is reserved by the
// unit package.
var MoleDim = unit.NewDimension("mole")

// Dimensions of the converted quantities.
var (
	molPerKg = unit.Dimensions{MoleDim: 1, unit.MassDim: -1}
	molPerM3 = unit.Dimensions{MoleDim: 1, unit.LengthDim: -3}
	kgPerM3  = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: -3}
	kgPerMol = unit.Dimensions{unit.MassDim: 1, MoleDim: -1}
)

const (
	seawaterDensity = 1025    // kg/m3
	carbonMolarMass = 12.01   // g/mol
	redfieldCN      = 6.625   // mol C / mol N
	redfieldCP      = 107.    // mol C / mol P
	no3MolarMass    = 62.009  // g/mol
	sio2MolarMass   = 76.083  // g/mol
	h3po4MolarMass  = 94.9714 // g/mol
	oxygenMLPerMmol = 1 / 44.6608009
)

func gPerMol(v float64) *unit.Unit { return unit.New(v*1.e-3, kgPerMol) }

// factor returns the value of u after checking its dimensions.
func factor(u *unit.Unit, d unit.Dimensions) float64 {
	if err := u.Check(d); err != nil {
		panic(err)
	}
	return u.Value()
}

var (
	// µmol/kg -> mmol/m3
	umolPerKgToMmolPerM3 = factor(unit.Mul(unit.New(1.e-6, molPerKg), unit.New(seawaterDensity, kgPerM3)), molPerM3) * 1.e3

	// mgC/m3 -> µmol/L, through the Redfield ratio of each nutrient.
	nitrateFactor   = redfieldFactor(redfieldCN, no3MolarMass)
	silicateFactor  = redfieldFactor(redfieldCN, sio2MolarMass)
	phosphateFactor = redfieldFactor(redfieldCP, h3po4MolarMass)
)

// redfieldFactor returns the factor converting a carbon concentration
// [mgC/m3] into the concentration [mmol/L] of a nutrient of the given molar
// mass, with ratio the molar C:nutrient ratio.
func redfieldFactor(ratio, molarMass float64) float64 {
	nutrientMass := unit.New(1.e-6/(ratio*carbonMolarMass), kgPerM3) // kg of nutrient per m3 for 1 mgC/m3
	c := unit.Div(nutrientMass, gPerMol(molarMass))
	return factor(c, molPerM3) // mol/m3 == mmol/L
}

// UmolPerKgToMmolPerM3 converts concentrations from µmol/kg to mmol/m3
// using a seawater density of 1025 kg/m3.
func UmolPerKgToMmolPerM3(v float64) float64 { return v * umolPerKgToMmolPerM3 }

// DoxyMLPerLToMmolPerM3 converts dissolved oxygen from mL/L to mmol/m3.
func DoxyMLPerLToMmolPerM3(v float64) float64 { return v / oxygenMLPerMmol }

// NitrateMgCPerM3ToUmolPerL converts nitrate from mgC/m3 to µmol/L.
func NitrateMgCPerM3ToUmolPerL(v float64) float64 { return v * nitrateFactor * 1.e3 }

// SilicateMgCPerM3ToUmolPerL converts silicate from mgC/m3 to µmol/L.
func SilicateMgCPerM3ToUmolPerL(v float64) float64 { return v * silicateFactor * 1.e3 }

// PhosphateMgCPerM3ToUmolPerL converts phosphate from mgC/m3 to µmol/L.
func PhosphateMgCPerM3ToUmolPerL(v float64) float64 { return v * phosphateFactor * 1.e3 }

// ConvertAll applies a conversion to all values; NaN values stay NaN.
func ConvertAll(values []float64, f func(float64) float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			out[i] = v
		} else {
			out[i] = f(v)
		}
	}
	return out
}
