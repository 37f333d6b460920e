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
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func TestDateRangeGenerator(t *testing.T) {
	tests := []struct {
		g    DateRangeGenerator
		want []string
	}{
		{
			g:    DateRangeGenerator{Start: day(2020, 1, 15), End: day(2020, 3, 10), Interval: Month},
			want: []string{"20200115-20200131", "20200201-20200229", "20200301-20200310"},
		},
		{
			// 2023-01-04 is a Wednesday.
			g:    DateRangeGenerator{Start: day(2023, 1, 4), End: day(2023, 1, 16), Interval: Week},
			want: []string{"20230104-20230108", "20230109-20230115", "20230116-20230116"},
		},
		{
			g:    DateRangeGenerator{Start: day(2019, 6, 1), End: day(2021, 2, 1), Interval: Year},
			want: []string{"20190601-20191231", "20200101-20201231", "20210101-20210201"},
		},
		{
			g:    DateRangeGenerator{Start: day(2020, 1, 30), End: day(2020, 2, 1), Interval: Day},
			want: []string{"20200130-20200130", "20200131-20200131", "20200201-20200201"},
		},
		{
			g:    DateRangeGenerator{Start: day(2020, 1, 1), End: day(2020, 1, 25), Interval: Custom, IntervalLength: 10},
			want: []string{"20200101-20200110", "20200111-20200120", "20200121-20200125"},
		},
		{
			g:    DateRangeGenerator{Start: day(2020, 5, 31), End: day(2020, 5, 31), Interval: Month},
			want: []string{"20200531-20200531"},
		},
	}
	for _, test := range tests {
		ranges, err := test.g.Ranges()
		if err != nil {
			t.Fatal(err)
		}
		if have := DateRangeStrings(ranges); !reflect.DeepEqual(have, test.want) {
			t.Errorf("%s: have %v, want %v", test.g.Interval, have, test.want)
		}
		last := ranges[len(ranges)-1].End
		if last.Hour() != 23 || last.Minute() != 59 || last.Second() != 59 {
			t.Errorf("%s: range does not end at the last second of the day: %v", test.g.Interval, last)
		}
	}
}

func TestDateRangeGeneratorErrors(t *testing.T) {
	g := DateRangeGenerator{Start: day(2020, 2, 1), End: day(2020, 1, 1), Interval: Day}
	if _, err := g.Ranges(); errors.Cause(err) != ErrInvalidDateInputs {
		t.Errorf("have %v, want invalid date inputs", err)
	}
	g = DateRangeGenerator{Start: day(2020, 1, 1), End: day(2020, 2, 1), Interval: "decade"}
	if _, err := g.Ranges(); err == nil {
		t.Error("expected an error for an unknown interval")
	}
}

func TestDateIntervalPattern(t *testing.T) {
	min, max := day(2020, 3, 1), day(2020, 5, 31)
	p, err := NewDateIntervalPattern(&min, &max, MonthPrecision)
	if err != nil {
		t.Fatal(err)
	}
	if p.Years() != "2020" || p.Months() != "(03|04|05)" || p.Days() != "[0-3][0-9]" {
		t.Errorf("have %s %s %s", p.Years(), p.Months(), p.Days())
	}
	if _, err := NewDateIntervalPattern(&min, &max, DayPrecision); errors.Cause(err) != ErrInvalidPrecision {
		t.Errorf("have %v, want invalid precision", err)
	}
	if _, err := NewDateIntervalPattern(&max, &min, YearPrecision); errors.Cause(err) != ErrInvalidDateInputs {
		t.Errorf("have %v, want invalid date inputs", err)
	}
	if _, err := NewDateIntervalPattern(&min, nil, YearPrecision); errors.Cause(err) != ErrInvalidDateInputs {
		t.Errorf("have %v, want invalid date inputs", err)
	}
}

func TestFileNamePattern(t *testing.T) {
	f := FileNamePattern("nutrients_{years}{months}{days}.csv")
	min, max := day(2020, 1, 30), day(2020, 2, 2)
	m, err := f.Build(&min, &max)
	if err != nil {
		t.Fatal(err)
	}
	want := "(nutrients_202001(30|31).csv)|(nutrients_202002(01|02).csv)"
	if m.Pattern != want {
		t.Errorf("have %s, want %s", m.Pattern, want)
	}

	// Adjacent years skip the empty month and year chunks.
	min, max = day(2019, 12, 30), day(2020, 1, 2)
	m, err = f.Build(&min, &max)
	if err != nil {
		t.Fatal(err)
	}
	want = "(nutrients_201912(30|31).csv)|(nutrients_202001(01|02).csv)"
	if m.Pattern != want {
		t.Errorf("have %s, want %s", m.Pattern, want)
	}

	m, err = f.Build(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := "(nutrients_[0-9][0-9][0-9][0-9][0-1][0-9][0-3][0-9].csv)"; m.Pattern != want {
		t.Errorf("have %s, want %s", m.Pattern, want)
	}
}

func TestSelectMatchingFiles(t *testing.T) {
	dir, err := ioutil.TempDir("", "bgcdata")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	for _, name := range []string{
		"nutrients_20200130.csv", "nutrients_20200201.csv", "nutrients_20200203.csv",
		"2020/nutrients_20200131.csv", "2021/nutrients_20200131.csv", "old_nutrients_20200130.csv",
	} {
		path := filepath.Join(dir, name)
		os.MkdirAll(filepath.Dir(path), os.ModePerm)
		if err := ioutil.WriteFile(path, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	c := NewConstraints()
	c.AddBoundary("DATE", day(2020, 1, 30), day(2020, 2, 2))
	m, err := FileNamePattern("nutrients_{years}{months}{days}.csv").BuildFromConstraint(c.GetConstraintParameters("DATE"))
	if err != nil {
		t.Fatal(err)
	}
	files, err := m.SelectMatchingFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "nutrients_20200130.csv"), filepath.Join(dir, "nutrients_20200201.csv")}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("have %v, want %v", files, want)
	}

	m = NewPatternMatcher("2020/nutrients_2020013[01].csv")
	files, err = m.SelectMatchingFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{filepath.Join(dir, "2020", "nutrients_20200131.csv")}; !reflect.DeepEqual(files, want) {
		t.Errorf("folders: have %v, want %v", files, want)
	}

	m.Validate = func(string) bool { return false }
	if files, _ = m.SelectMatchingFiles(dir); len(files) != 0 {
		t.Errorf("validation: have %v", files)
	}
}
