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
	"io/ioutil"
	"math"
	"os"
	"testing"
	"time"

	"github.com/spatialmodel/bgcdata"
)

var nan = math.NaN()

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testVariables(t *testing.T) *bgcdata.VariableSet {
	vs, err := bgcdata.NewVariableSet(bgcdata.Roles{
		Provider:  bgcdata.NewTemplate("PROVIDER", "[]", "str", "").NotInFile(),
		Expocode:  bgcdata.NewTemplate("EXPOCODE", "[]", "str", "").NotInFile(),
		Date:      bgcdata.NewTemplate("DATE", "[]", "datetime64[ns]", nil).NotInFile(),
		Year:      bgcdata.NewTemplate("YEAR", "[]", "int", nan).NotInFile(),
		Month:     bgcdata.NewTemplate("MONTH", "[]", "int", nan).NotInFile(),
		Day:       bgcdata.NewTemplate("DAY", "[]", "int", nan).NotInFile(),
		Latitude:  bgcdata.NewTemplate("LATITUDE", "[deg_N]", "float", nan).NotInFile(),
		Longitude: bgcdata.NewTemplate("LONGITUDE", "[deg_E]", "float", nan).NotInFile(),
		Depth:     bgcdata.NewTemplate("DEPH", "[meters]", "float", nan).NotInFile(),
	},
		bgcdata.NewTemplate("TEMP", "[deg_C]", "float", nan).NotInFile(),
		bgcdata.NewTemplate("PSAL", "[psu]", "float", nan).NotInFile(),
		bgcdata.NewTemplate("PTEMP", "[deg_C]", "float", nan).NotInFile(),
		bgcdata.NewTemplate("SIGT", "[kg/m3]", "float", nan).NotInFile(),
		bgcdata.NewTemplate("PRES", "[dbars]", "float", nan).NotInFile(),
	)
	if err != nil {
		t.Fatal(err)
	}
	return vs
}

type row struct {
	provider, expocode string
	date               time.Time
	lat, lon, depth    float64
	temp, psal         float64
}

var rows = []row{
	{"ARGO", "A1", day(2020, 1, 15), 60.2, 5.2, -10, 5, 35},
	{"ARGO", "A1", day(2020, 1, 15), 60.2, 5.2, -20, 4, 35.1},
	{"ARGO", "A2", day(2020, 2, 3), 60.7, 5.4, -5, 2, 34.8},
	{"ICES", "I1", day(2020, 3, 10), 65, -2, -50, nan, 34.9},
}

// testStorer returns the storer of rows. Potential temperature equals
// temperature and pressure is the opposite of depth.
func testStorer(t *testing.T) *bgcdata.Storer {
	n := len(rows)
	f := bgcdata.NewFrame(n)
	prov, expo := make([]string, n), make([]string, n)
	dates := make([]time.Time, n)
	year, month, dd := make([]float64, n), make([]float64, n), make([]float64, n)
	lat, lon, depth := make([]float64, n), make([]float64, n), make([]float64, n)
	temp, psal, sigt, pres := make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
	for i, r := range rows {
		prov[i], expo[i], dates[i] = r.provider, r.expocode, r.date
		year[i], month[i], dd[i] = float64(r.date.Year()), float64(r.date.Month()), float64(r.date.Day())
		lat[i], lon[i], depth[i], temp[i], psal[i] = r.lat, r.lon, r.depth, r.temp, r.psal
		sigt[i] = 27
		pres[i] = -r.depth
	}
	for _, err := range []error{
		f.SetString("PROVIDER", prov),
		f.SetString("EXPOCODE", expo),
		f.SetDate("DATE", dates),
		f.SetInt("YEAR", year),
		f.SetInt("MONTH", month),
		f.SetInt("DAY", dd),
		f.SetFloat("LATITUDE", lat),
		f.SetFloat("LONGITUDE", lon),
		f.SetFloat("DEPH", depth),
		f.SetFloat("TEMP", temp),
		f.SetFloat("PSAL", psal),
		f.SetFloat("PTEMP", append([]float64{}, temp...)),
		f.SetFloat("SIGT", sigt),
		f.SetFloat("PRES", pres),
	} {
		if err != nil {
			t.Fatal(err)
		}
	}
	return bgcdata.NewStorer(f, "in_situ", []string{"ARGO", "ICES"}, testVariables(t))
}

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "tracers")
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

// checkImage fails if path is not a non-empty file.
func checkImage(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Errorf("%s is empty", path)
	}
}

func equalWithNaN(a, b []float64, tolerance float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.IsNaN(a[i]) && math.IsNaN(b[i]) {
			continue
		}
		if math.Abs(a[i]-b[i]) > tolerance {
			return false
		}
	}
	return true
}
