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
)

func TestEvolutionMesh(t *testing.T) {
	e, err := NewEvolutionProfile(testStorer(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	e.SetDateIntervals(bgcdata.Month, 0)
	m, err := e.Mesh("TEMP")
	if err != nil {
		t.Fatal(err)
	}
	if !equalWithNaN(m.YEdges, []float64{-100, 0}, 0) {
		t.Errorf("depth edges: %v", m.YEdges)
	}
	wantX := []float64{
		float64(day(2020, 1, 15).Unix()),
		float64(day(2020, 2, 1).Unix()),
		float64(day(2020, 3, 1).Unix()),
		float64(day(2020, 3, 10).Unix() + 86399),
	}
	if !equalWithNaN(m.XEdges, wantX, 0) {
		t.Errorf("date edges: %v, want %v", m.XEdges, wantX)
	}
	// The March row has no temperature.
	if !equalWithNaN(m.Z[0], []float64{2, 1, 0}, 0) {
		t.Errorf("counts: %v", m.Z)
	}

	m, err = e.Mesh("all")
	if err != nil {
		t.Fatal(err)
	}
	if !equalWithNaN(m.Z[0], []float64{2, 1, 1}, 0) {
		t.Errorf("all counts: %v", m.Z)
	}
}

func TestEvolutionDepthBounds(t *testing.T) {
	e, err := NewEvolutionProfile(testStorer(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	e.SetDateIntervals(bgcdata.Month, 0)
	e.SetDepthBounds([]float64{-15, -30, -200})
	m, err := e.Mesh("TEMP")
	if err != nil {
		t.Fatal(err)
	}
	if !equalWithNaN(m.YEdges, []float64{-50, -30, -15, 0}, 0) {
		t.Errorf("depth edges: %v", m.YEdges)
	}
	want := [][]float64{
		{nan, nan, 0},
		{1, nan, nan},
		{1, 1, nan},
	}
	for r := range want {
		if !equalWithNaN(m.Z[r], want[r], 0) {
			t.Errorf("row %d: have %v, want %v", r, m.Z[r], want[r])
		}
	}
}

func TestEvolutionConstrainedDepth(t *testing.T) {
	c := bgcdata.NewConstraints()
	c.AddBoundary("DEPH", -25., -5.)
	e, err := NewEvolutionProfile(testStorer(t), c)
	if err != nil {
		t.Fatal(err)
	}
	e.SetDepthInterval(10)
	edges, err := e.depthEdges()
	if err != nil {
		t.Fatal(err)
	}
	if !equalWithNaN(edges, []float64{-30, -20, -10}, 0) {
		t.Errorf("depth edges: %v", edges)
	}
}

func TestEvolutionTitles(t *testing.T) {
	e, err := NewEvolutionProfile(testStorer(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	e.SetDateIntervals(bgcdata.Month, 0)
	fig, err := e.Figure("TEMP", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if want := "Horizontal resolution: 1 month. Vertical resolution: 100 meters."; fig.Plot.Title.Text != want {
		t.Errorf("title: %s", fig.Plot.Title.Text)
	}
	if want := "Evolution of data in the area of latitude in [60.2,65] and longitude in [-2,5.4]"; fig.Suptitle != want {
		t.Errorf("suptitle: %s", fig.Suptitle)
	}
	e.SetDateIntervals(bgcdata.Custom, 7)
	if want := "Horizontal resolution: 7 days. Vertical resolution: 100 meters."; e.defaultTitle() != want {
		t.Errorf("custom title: %s", e.defaultTitle())
	}

	path := filepath.Join(tempDir(t), "profile.png")
	if err := e.Save(path, "TEMP", "", ""); err != nil {
		t.Fatal(err)
	}
	checkImage(t, path)
}
