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

package source

import (
	"io/ioutil"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/spatialmodel/bgcdata"
)

func aliases(names ...string) []bgcdata.Alias {
	out := make([]bgcdata.Alias, len(names))
	for i, n := range names {
		out[i] = bgcdata.Alias{Name: n}
	}
	return out
}

func negative(x float64) float64 { return -math.Abs(x) }

// testRoles returns the role variables shared by the tests of all
// loaders.
func testRoles() bgcdata.Roles {
	return bgcdata.Roles{
		Provider:  bgcdata.NewTemplate("PROVIDER", "[]", "str", "").NotInFile(),
		Expocode:  bgcdata.NewTemplate("EXPOCODE", "[]", "str", "NONE").InFileAs(aliases("EXPOCODE", "expo")...),
		Date:      bgcdata.NewTemplate("DATE", "[]", "datetime64[ns]", nil).InFileAs(aliases("DATE", "JULD", "time")...),
		Year:      bgcdata.NewTemplate("YEAR", "[]", "int", math.NaN()).InFileAs(aliases("YEAR", "year")...),
		Month:     bgcdata.NewTemplate("MONTH", "[]", "int", math.NaN()).InFileAs(aliases("MONTH", "month")...),
		Day:       bgcdata.NewTemplate("DAY", "[]", "int", math.NaN()).InFileAs(aliases("DAY", "day")...),
		Latitude:  bgcdata.NewTemplate("LATITUDE", "[deg_N]", "float", math.NaN()).InFileAs(aliases("LATITUDE", "lat", "plat")...),
		Longitude: bgcdata.NewTemplate("LONGITUDE", "[deg_E]", "float", math.NaN()).InFileAs(aliases("LONGITUDE", "lon", "plon")...),
		Depth: bgcdata.NewTemplate("DEPH", "[meters]", "float", math.NaN()).
			InFileAs(aliases("DEPH", "depth", "PRES", "thknss")...).CorrectWith(negative),
	}
}

func testTemperature() *bgcdata.Variable {
	return bgcdata.NewTemplate("TEMP", "[deg_C]", "float", math.NaN()).
		InFileAs(bgcdata.FlaggedAlias("TEMP", "TEMP_QC", 1, 2), bgcdata.Alias{Name: "temp"}).
		RemoveWhenAllNaN()
}

func testSalinity() *bgcdata.Variable {
	return bgcdata.NewTemplate("PSAL", "[psu]", "float", math.NaN()).
		InFileAs(aliases("PSAL", "sal", "salin")...).RemoveWhenAllNaN()
}

func testVariables(t *testing.T) *bgcdata.VariableSet {
	vs, err := bgcdata.NewVariableSet(testRoles(), testTemperature(), testSalinity())
	if err != nil {
		t.Fatal(err)
	}
	return vs
}

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "source")
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func equalWithNaN(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.IsNaN(a[i]) != math.IsNaN(b[i]) {
			return false
		}
		if !math.IsNaN(a[i]) && math.Abs(a[i]-b[i]) > 1e-6*math.Max(1, math.Abs(b[i])) {
			return false
		}
	}
	return true
}
