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

package bgcutil

import (
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"testing"
)

const testData = `PROVIDER EXPOCODE DATE YEAR MONTH DAY HOUR LATITUDE LONGITUDE DEPH TEMP PSAL PHOS
[] [] [] [] [] [] [] [deg_N] [deg_E] [meters] [deg_C] [psu] [mmol/m3]
ICES 58AA 2020-01-05 2020 1 5 12 60.50 2.50 -10 6.0 35.20 0.60
ICES 58AA 2020-01-05 2020 1 5 12 60.50 2.50 -50 5.5 35.10 0.70
ICES 58AA 2020-01-05 2020 1 5 12 60.50 2.50 -10 6.0 35.20 0.60
IMR 58BB 2020-02-10 2020 2 10 6 70.00 10.00 -5 1.0 34.50 0.40
IMR 58BB 2020-02-10 2020 2 10 6 70.00 10.00 -800 -0.8 34.91 0.90
ARGO 58CC 2020-03-01 2020 3 1 0 62.00 -5.00 -20 7.0 35.30 0.50
`

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "bgcutil")
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

// writeData writes the test data file in a new directory and returns the
// directory.
func writeData(t *testing.T) string {
	dir := tempDir(t)
	if err := ioutil.WriteFile(filepath.Join(dir, "bgc_in_situ_20200101-20200331.txt"), []byte(testData), 0644); err != nil {
		os.RemoveAll(dir)
		t.Fatal(err)
	}
	return dir
}

func testDefaults(t *testing.T) *Defaults {
	d, err := LoadDefaults("", "", "")
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func unboundedDomain() Domain {
	nan := math.NaN()
	return Domain{
		LatitudeMin: nan, LatitudeMax: nan,
		LongitudeMin: nan, LongitudeMax: nan,
		DepthMin: nan, DepthMax: nan,
	}
}

func testInputs(t *testing.T, dir string) Inputs {
	return Inputs{
		Dir:      dir,
		Defaults: testDefaults(t),
		Category: "in_situ",
		Priority: []string{"ICES", "IMR", "ARGO"},
		Domain:   unboundedDomain(),
	}
}
