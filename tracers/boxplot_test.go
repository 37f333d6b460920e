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
	"reflect"
	"testing"

	"github.com/pkg/errors"
	"github.com/spatialmodel/bgcdata"
)

func TestWeekKey(t *testing.T) {
	for d, want := range map[int]string{
		1:  "2020-00", // Wednesday
		5:  "2020-00", // Sunday
		6:  "2020-01", // Monday
		13: "2020-02",
	} {
		if got := weekKey(day(2020, 1, d)); got != want {
			t.Errorf("2020-01-%02d: have %s, want %s", d, got, want)
		}
	}
}

func TestBoxplotGroups(t *testing.T) {
	b := NewVariableBoxplot(testStorer(t), nil)
	periods, values, err := b.Groups("TEMP", bgcdata.Month)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"2020-01", "2020-02"}; !reflect.DeepEqual(periods, want) {
		t.Errorf("periods: have %v, want %v", periods, want)
	}
	if want := [][]float64{{5, 4}, {2}}; !reflect.DeepEqual(values, want) {
		t.Errorf("values: have %v, want %v", values, want)
	}

	periods, _, err = b.Groups("PSAL", bgcdata.Year)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"2020"}; !reflect.DeepEqual(periods, want) {
		t.Errorf("periods: have %v, want %v", periods, want)
	}
}

func TestBoxplotWrongPeriod(t *testing.T) {
	b := NewVariableBoxplot(testStorer(t), nil)
	_, _, err := b.Groups("TEMP", "decade")
	if errors.Cause(err) != bgcdata.ErrInvalidParameterKey {
		t.Errorf("have %v", err)
	}
}

func TestBoxplotSave(t *testing.T) {
	b := NewVariableBoxplot(testStorer(t), nil)
	fig, err := b.Figure("PSAL", bgcdata.Day, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if fig.Plot.Title.Text != "PSAL Box Plot" || fig.Plot.X.Label.Text != "Day" || fig.Plot.Y.Label.Text != "PSAL [psu]" {
		t.Errorf("labels: %s, %s, %s", fig.Plot.Title.Text, fig.Plot.X.Label.Text, fig.Plot.Y.Label.Text)
	}
	path := filepath.Join(tempDir(t), "boxplot.png")
	if err := b.Save(path, "PSAL", bgcdata.Day, "", ""); err != nil {
		t.Fatal(err)
	}
	checkImage(t, path)
}
