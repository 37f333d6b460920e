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

package compare

import (
	"io/ioutil"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/spatialmodel/bgcdata"
	"github.com/spatialmodel/bgcdata/abfile"
)

var nan = math.NaN()

func aliases(names ...string) []bgcdata.Alias {
	out := make([]bgcdata.Alias, len(names))
	for i, n := range names {
		out[i] = bgcdata.Alias{Name: n}
	}
	return out
}

// testVariables returns the variables of the simulations and observations
// of the tests.
func testVariables(t *testing.T) *bgcdata.VariableSet {
	vs, err := bgcdata.NewVariableSet(bgcdata.Roles{
		Provider:  bgcdata.NewTemplate("PROVIDER", "[]", "str", "HYCOM").NotInFile(),
		Expocode:  bgcdata.NewTemplate("EXPOCODE", "[]", "str", "").NotInFile(),
		Date:      bgcdata.NewTemplate("DATE", "[]", "datetime64[ns]", nil).NotInFile(),
		Year:      bgcdata.NewTemplate("YEAR", "[]", "int", nan).NotInFile(),
		Month:     bgcdata.NewTemplate("MONTH", "[]", "int", nan).NotInFile(),
		Day:       bgcdata.NewTemplate("DAY", "[]", "int", nan).NotInFile(),
		Latitude:  bgcdata.NewTemplate("LATITUDE", "[deg_N]", "float", nan).InFileAs(aliases("plat")...),
		Longitude: bgcdata.NewTemplate("LONGITUDE", "[deg_E]", "float", nan).InFileAs(aliases("plon")...),
		Depth:     bgcdata.NewTemplate("DEPH", "[meters]", "float", nan).InFileAs(aliases("thknss")...),
	},
		bgcdata.NewTemplate("TEMP", "[deg_C]", "float", nan).InFileAs(aliases("temp")...).RemoveWhenAllNaN(),
		bgcdata.NewTemplate("PSAL", "[psu]", "float", nan).InFileAs(aliases("salin")...),
	)
	if err != nil {
		t.Fatal(err)
	}
	return vs
}

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "compare")
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func equalWithNaN(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.IsNaN(a[i]) && math.IsNaN(b[i]) {
			continue
		}
		if math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}

// frame returns a frame holding the given float columns, indexed by index.
func frame(t *testing.T, index []int, cols map[string][]float64) *bgcdata.Frame {
	f := bgcdata.NewFrame(len(index))
	copy(f.Index, index)
	for _, name := range []string{"LATITUDE", "LONGITUDE", "DEPH", "TEMP", "PSAL"} {
		if v, ok := cols[name]; ok {
			if err := f.SetFloat(name, v); err != nil {
				t.Fatal(err)
			}
		}
	}
	return f
}

// writeHYCOM writes a 3x2 grid with two layers archive in dir and returns
// the grid basename and the archive basename.
func writeHYCOM(t *testing.T, dir string) (grid, archive string) {
	grid = filepath.Join(dir, "regional.grid")
	err := abfile.WriteGrid(grid, 3, 2, 2, []string{"plon", "plat"}, [][]float64{
		{1, 2, 3, 1, 2, 3},
		{60, 60, 60, 61, 61, 61},
	})
	if err != nil {
		t.Fatal(err)
	}
	archive = filepath.Join(dir, "archm.2020_031_12")
	h := &abfile.Archive{
		Title:   [4]string{"test archive", "", "", ""},
		Version: 22, Experiment: 10, YearFlag: 3,
		IDM: 3, JDM: 2,
	}
	infos := []abfile.FieldInfo{
		{Name: "montg1", Level: 0},
		{Name: "thknss", Level: 1, Density: 25},
		{Name: "temp", Level: 1, Density: 25},
		{Name: "thknss", Level: 2, Density: 26},
		{Name: "temp", Level: 2, Density: 26},
	}
	fields := [][]float64{
		{0, 0, 0, 0, 0, 0},
		{19612, 19612, 19612, 19612, 19612, 19612},
		{1, 2, 3, 4, 5, 6},
		{39224, 39224, 39224, 39224, 39224, nan},
		{7, 8, 9, 10, 11, nan},
	}
	if err := abfile.WriteArchive(archive, h, infos, fields); err != nil {
		t.Fatal(err)
	}
	return grid, archive
}
