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

package abfile

import (
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func equalWithNaN(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.IsNaN(a[i]) != math.IsNaN(b[i]) {
			return false
		}
		if !math.IsNaN(a[i]) && math.Abs(a[i]-b[i]) > 1e-4*math.Max(1, math.Abs(b[i])) {
			return false
		}
	}
	return true
}

func TestGrid(t *testing.T) {
	dir, err := ioutil.TempDir("", "abfile")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	basename := filepath.Join(dir, "regional.grid")

	plon := []float64{1, 2, 3, 1, 2, 3}
	plat := []float64{60, 60, 60, 61, 61, math.NaN()}
	if err := WriteGrid(basename, 3, 2, 2, []string{"plon", "plat"}, [][]float64{plon, plat}); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(basename + ".a")
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 2*4096*4 {
		t.Errorf("file size: have %d, want %d", info.Size(), 2*4096*4)
	}

	g, err := OpenGrid(basename)
	if err != nil {
		t.Fatal(err)
	}
	if g.IDM != 3 || g.JDM != 2 || g.MapFlag != 2 {
		t.Errorf("dimensions: have %d %d %d", g.IDM, g.JDM, g.MapFlag)
	}
	if !reflect.DeepEqual(g.FieldNames(), []string{"plon", "plat"}) {
		t.Errorf("fields: have %v", g.FieldNames())
	}
	f, err := g.ReadField("plat")
	if err != nil {
		t.Fatal(err)
	}
	if !equalWithNaN(f.Data, plat) {
		t.Errorf("plat: have %v, want %v", f.Data, plat)
	}
	if f.At(1, 1) != 61 {
		t.Errorf("At(1, 1): have %v", f.At(1, 1))
	}
	if min, max := f.MinMax(); min != 60 || max != 61 {
		t.Errorf("extremes: have %v %v", min, max)
	}

	// Cached fields are not shared.
	f.Data[0] = -1
	if f, _ = g.ReadField("plat"); f.Data[0] != 60 {
		t.Errorf("cached value was modified: %v", f.Data[0])
	}
	if _, err := g.ReadField("qlon"); err == nil {
		t.Error("expected an error for a missing field")
	}
	if !g.HasField("plon") || g.HasField("qlon") {
		t.Error("HasField is wrong")
	}
}

func TestArchive(t *testing.T) {
	dir, err := ioutil.TempDir("", "abfile")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	basename := filepath.Join(dir, "archm.2020_031_12")

	h := &Archive{
		Title:      [4]string{"HYCOM test", "", "", ""},
		Version:    22,
		Experiment: 10,
		YearFlag:   3,
		IDM:        2,
		JDM:        2,
	}
	infos := []FieldInfo{
		{Name: "montg1", Step: 100, Day: 43860.5, Level: 0},
		{Name: "thknss", Step: 100, Day: 43860.5, Level: 1, Density: 25},
		{Name: "temp", Step: 100, Day: 43860.5, Level: 1, Density: 25},
		{Name: "thknss", Step: 100, Day: 43860.5, Level: 2, Density: 26},
		{Name: "temp", Step: 100, Day: 43860.5, Level: 2, Density: 26},
	}
	fields := [][]float64{
		{0, 0, 0, 0},
		{9806, 9806, 9806, math.NaN()},
		{5, 6, 7, math.NaN()},
		{19612, 19612, 19612, math.NaN()},
		{4, 5, 6, math.NaN()},
	}
	if err := WriteArchive(basename, h, infos, fields); err != nil {
		t.Fatal(err)
	}
	a, err := OpenArchive(basename)
	if err != nil {
		t.Fatal(err)
	}
	if a.Title[0] != "HYCOM test" || a.Version != 22 || a.Experiment != 10 || a.YearFlag != 3 {
		t.Errorf("header: have %+v", a)
	}
	if !reflect.DeepEqual(a.FieldNames(), []string{"montg1", "thknss", "temp"}) {
		t.Errorf("fields: have %v", a.FieldNames())
	}
	if !reflect.DeepEqual(a.FieldLevels(), []int{0, 1, 2}) {
		t.Errorf("levels: have %v", a.FieldLevels())
	}
	if !reflect.DeepEqual(a.FieldsAtLevel(2), []string{"thknss", "temp"}) {
		t.Errorf("fields at level 2: have %v", a.FieldsAtLevel(2))
	}
	if d := a.Fields[3].Density; d != 26 {
		t.Errorf("density: have %v", d)
	}
	if min, max := a.Fields[2].Min, a.Fields[2].Max; min != 5 || max != 7 {
		t.Errorf("extremes: have %v %v", min, max)
	}
	f, err := a.ReadField("temp", 2)
	if err != nil {
		t.Fatal(err)
	}
	if !equalWithNaN(f.Data, fields[4]) {
		t.Errorf("temp: have %v, want %v", f.Data, fields[4])
	}
	if _, err := a.ReadField("temp", 0); err == nil {
		t.Error("expected an error for a missing level")
	}
}

func TestWriteErrors(t *testing.T) {
	dir, err := ioutil.TempDir("", "abfile")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	if err := WriteGrid(filepath.Join(dir, "g"), 2, 2, 0, []string{"plon"}, [][]float64{{1, 2, 3}}); err == nil {
		t.Error("expected an error for a field of the wrong size")
	}
	if err := WriteGrid(filepath.Join(dir, "g"), 2, 2, 0, []string{"plon", "plat"}, [][]float64{{1, 2, 3, 4}}); err == nil {
		t.Error("expected an error for missing fields")
	}
	if _, err := OpenGrid(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
