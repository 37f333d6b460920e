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
	"testing"

	"github.com/ctessum/unit"
	"github.com/stretchr/testify/assert"
)

func TestMoleDimension(t *testing.T) {
	assert.Equal(t, "mole", MoleDim.String())
	u := unit.Div(unit.New(2, molPerM3), unit.New(1025, kgPerM3))
	assert.NoError(t, u.Check(molPerKg))
	assert.InDelta(t, 2./1025, u.Value(), 1e-15)
}

func TestUnitConversions(t *testing.T) {
	assert.InDelta(t, 1.025, UmolPerKgToMmolPerM3(1), 1e-12)
	assert.InDelta(t, 446.608009, DoxyMLPerLToMmolPerM3(10), 1e-9)
	assert.InDelta(t, 10/(6.625*12.01*62.009), NitrateMgCPerM3ToUmolPerL(10), 1e-12)
	assert.InDelta(t, 10/(6.625*12.01*76.083), SilicateMgCPerM3ToUmolPerL(10), 1e-12)
	assert.InDelta(t, 10/(107*12.01*94.9714), PhosphateMgCPerM3ToUmolPerL(10), 1e-12)
}

func TestConvertAll(t *testing.T) {
	in := []float64{1, math.NaN(), 2}
	out := ConvertAll(in, UmolPerKgToMmolPerM3)
	assert.InDelta(t, 1.025, out[0], 1e-12)
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 2.05, out[2], 1e-12)
	assert.Equal(t, 1., in[0], "input was modified")
}
