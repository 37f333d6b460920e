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
	"path/filepath"
	"testing"

	"github.com/spatialmodel/bgcdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaterMassScatter(t *testing.T) {
	w, err := NewWaterMassVariableComparison(testStorer(t), nil, "PRES", "PTEMP", "PSAL", "SIGT")
	require.NoError(t, err)
	warm := bgcdata.NewWaterMass("Warm Water", "", [2]float64{3, 6}, bgcdata.Unbounded, bgcdata.Unbounded)
	xys, err := w.scatter(w.variables.MustGet("PSAL"), warm)
	require.NoError(t, err)
	require.Len(t, xys, 2)
	assert.Equal(t, 35., xys[0].X)
	assert.Equal(t, -10., xys[0].Y)
	assert.Equal(t, 35.1, xys[1].X)
	assert.Equal(t, -20., xys[1].Y)
}

func TestWaterMassComparisonFigure(t *testing.T) {
	w, err := NewWaterMassVariableComparison(testStorer(t), nil, "PRES", "PTEMP", "PSAL", "SIGT")
	require.NoError(t, err)
	wmasses := []*bgcdata.WaterMass{
		bgcdata.NewWaterMass("Warm Water", "", [2]float64{3, 6}, bgcdata.Unbounded, bgcdata.Unbounded),
		bgcdata.NewWaterMass("Cold Water", "", [2]float64{-2, 3}, bgcdata.Unbounded, bgcdata.Unbounded),
		bgcdata.NewWaterMass("Empty Water", "", [2]float64{20, 30}, bgcdata.Unbounded, bgcdata.Unbounded),
	}
	fig, err := w.Figure("PSAL", wmasses, "", "")
	require.NoError(t, err)
	assert.Equal(t, "PSAL vs PRES", fig.Plot.Title.Text)
	assert.Equal(t, "PRES [dbars]", fig.Plot.Y.Label.Text)

	path := filepath.Join(tempDir(t), "pressure.pdf")
	require.NoError(t, w.Save(path, "PSAL", wmasses, "", ""))
	checkImage(t, path)
}

func TestWaterMassComparisonUnknownVariable(t *testing.T) {
	_, err := NewWaterMassVariableComparison(testStorer(t), nil, "PRES", "PTEMP", "PSAL", "SIGMA")
	assert.Error(t, err)
}
