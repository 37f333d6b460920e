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
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testVariables(t *testing.T) *VariableSet {
	vs, err := NewVariableSet(Roles{
		Provider:  NewTemplate("PROVIDER", "[]", "str", "").NotInFile(),
		Expocode:  NewTemplate("EXPOCODE", "[]", "str", "").InFileAs(Alias{Name: "expo"}),
		Date:      NewTemplate("DATE", "[]", "datetime64[ns]", nil).NotInFile(),
		Year:      NewTemplate("YEAR", "[]", "int", math.NaN()).InFileAs(Alias{Name: "year"}),
		Month:     NewTemplate("MONTH", "[]", "int", math.NaN()).InFileAs(Alias{Name: "month"}),
		Day:       NewTemplate("DAY", "[]", "int", math.NaN()).InFileAs(Alias{Name: "day"}),
		Latitude:  NewTemplate("LATITUDE", "[deg_N]", "float", math.NaN()).InFileAs(Alias{Name: "lat"}),
		Longitude: NewTemplate("LONGITUDE", "[deg_E]", "float", math.NaN()).InFileAs(Alias{Name: "lon"}),
		Depth:     NewTemplate("DEPH", "[meters]", "float", math.NaN()).InFileAs(Alias{Name: "depth"}),
	},
		NewTemplate("TEMP", "[deg_C]", "float", math.NaN()).InFileAs(Alias{Name: "temp"}),
		NewTemplate("PSAL", "[psu]", "float", math.NaN()).InFileAs(Alias{Name: "psal"}),
	)
	if err != nil {
		t.Fatal(err)
	}
	return vs
}

type testRow struct {
	provider, expocode string
	date               time.Time
	lat, lon, depth    float64
	temp, psal         float64
}

func testFrame(t *testing.T, rows []testRow) *Frame {
	f := NewFrame(len(rows))
	n := len(rows)
	prov, expo := make([]string, n), make([]string, n)
	dates := make([]time.Time, n)
	year, month, dd := make([]float64, n), make([]float64, n), make([]float64, n)
	lat, lon, depth := make([]float64, n), make([]float64, n), make([]float64, n)
	temp, psal := make([]float64, n), make([]float64, n)
	for i, r := range rows {
		prov[i], expo[i], dates[i] = r.provider, r.expocode, r.date
		year[i], month[i], dd[i] = float64(r.date.Year()), float64(r.date.Month()), float64(r.date.Day())
		lat[i], lon[i], depth[i], temp[i], psal[i] = r.lat, r.lon, r.depth, r.temp, r.psal
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
	} {
		if err != nil {
			t.Fatal(err)
		}
	}
	return f
}

func testStorer(t *testing.T, rows []testRow) *Storer {
	provs := make([]string, 0)
	for _, r := range rows {
		provs = unionStrings(provs, []string{r.provider})
	}
	return NewStorer(testFrame(t, rows), "in_situ", provs, testVariables(t))
}

var testRows = []testRow{
	{"ARGO", "A1", day(2020, 1, 15), 60, 5, -10, 5, 35},
	{"ARGO", "A1", day(2020, 1, 15), 60, 5, -20, 4, 35.1},
	{"ARGO", "A2", day(2020, 2, 3), 70, 10, -5, 2, 34.8},
	{"ICES", "I1", day(2020, 3, 10), 65, -2, -50, 3, 34.9},
}

func floatsEqual(a, b []float64, tolerance float64) bool {
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
