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
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func TestStorerAdd(t *testing.T) {
	a := testStorer(t, testRows[:3])
	b := testStorer(t, testRows[3:])
	s, err := a.Add(b)
	if err != nil {
		t.Fatal(err)
	}
	if s.Data.Len() != 4 {
		t.Errorf("rows: have %d, want 4", s.Data.Len())
	}
	if !reflect.DeepEqual(s.Providers, []string{"ARGO", "ICES"}) {
		t.Errorf("providers: have %v", s.Providers)
	}
	if !reflect.DeepEqual(s.Data.Index, []int{0, 1, 2, 3}) {
		t.Errorf("index: have %v", s.Data.Index)
	}

	b.Category = "float"
	if _, err := a.Add(b); errors.Cause(err) != ErrIncompatibleCategories {
		t.Errorf("have %v, want incompatible categories", err)
	}
	b.Category = a.Category
	b.Variables.Pop("PSAL")
	if _, err := Sum(a, b); errors.Cause(err) != ErrIncompatibleVariableSets {
		t.Errorf("have %v, want incompatible variable sets", err)
	}
}

func TestRemoveDuplicatesAmongProvider(t *testing.T) {
	rows := []testRow{
		{"ARGO", "A1", day(2020, 1, 15), 60, 5, -10, 4, 35},
		{"ARGO", "A1", day(2020, 1, 15), 60, 5, -10, 6, 35.2},
		{"ARGO", "A1", day(2020, 1, 15), 60, 5, -20, 1, 35},
	}
	s := testStorer(t, rows)
	s.RemoveDuplicates(nil)
	if s.Data.Len() != 2 {
		t.Fatalf("rows: have %d, want 2", s.Data.Len())
	}
	// Single rows come first, followed by the averaged rows.
	if !floatsEqual(s.Data.Float("DEPH"), []float64{-20, -10}, 0) {
		t.Errorf("depth: have %v", s.Data.Float("DEPH"))
	}
	if !floatsEqual(s.Data.Float("TEMP"), []float64{1, 5}, 1e-9) {
		t.Errorf("temperature: have %v", s.Data.Float("TEMP"))
	}
	if !floatsEqual(s.Data.Float("PSAL"), []float64{35, 35.1}, 1e-9) {
		t.Errorf("salinity: have %v", s.Data.Float("PSAL"))
	}
}

func TestRemoveDuplicatesBetweenProviders(t *testing.T) {
	rows := []testRow{
		{"ARGO", "X", day(2020, 1, 15), 60, 5, -10, 4, 35},
		{"ICES", "X", day(2020, 1, 15), 60, 5, -10, 6, 35},
		{"IMR", "X", day(2020, 1, 15), 60, 5, -10, 8, 35},
		{"IMR", "Y", day(2020, 1, 16), 60, 5, -10, 8, 35},
	}
	s := testStorer(t, rows)
	s.RemoveDuplicates([]string{"ICES", "ARGO"})
	if !reflect.DeepEqual(s.Data.String("PROVIDER"), []string{"ICES", "IMR"}) {
		t.Errorf("providers: have %v", s.Data.String("PROVIDER"))
	}
	if !floatsEqual(s.Data.Float("TEMP"), []float64{6, 8}, 0) {
		t.Errorf("temperature: have %v", s.Data.Float("TEMP"))
	}

	// Providers missing from the priority list come last.
	s = testStorer(t, rows)
	s.RemoveDuplicates(nil)
	if !reflect.DeepEqual(s.Data.String("PROVIDER"), []string{"ARGO", "IMR"}) {
		t.Errorf("providers: have %v", s.Data.String("PROVIDER"))
	}
}

func TestSliceOnDates(t *testing.T) {
	s := testStorer(t, testRows)
	sl := s.SliceOnDates(day(2020, 1, 1), day(2020, 2, 3))
	if !reflect.DeepEqual(sl.Rows, []int{0, 1, 2}) {
		t.Errorf("rows: have %v", sl.Rows)
	}
	if sl.Storer().Data.Len() != 3 {
		t.Errorf("storer rows: have %d", sl.Storer().Data.Len())
	}
	other := s.SliceOnDates(day(2020, 2, 1), day(2020, 12, 31))
	sum, err := sl.Add(other)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(sum.Rows, []int{0, 1, 2, 3}) {
		t.Errorf("sum rows: have %v", sum.Rows)
	}
	foreign := testStorer(t, testRows).SliceOnDates(day(2020, 1, 1), day(2020, 2, 3))
	if _, err := sl.Add(foreign); errors.Cause(err) != ErrDifferentSliceOrigin {
		t.Errorf("have %v, want different slice origin", err)
	}
}

func TestStorerFeatures(t *testing.T) {
	s := testStorer(t, testRows)
	sigt := NewSigmaT(s.Variables.MustGet("PSAL"), s.Variables.MustGet("TEMP"))
	if err := s.InsertFeature(sigt); err != nil {
		t.Fatal(err)
	}
	if !s.Variables.Has("SIGT") || !s.Data.Has("SIGT") {
		t.Fatal("SIGT was not inserted")
	}
	c, err := s.Pop("SIGT")
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 4 || s.Data.Has("SIGT") {
		t.Error("SIGT was not removed")
	}
	if err := s.AddFeature(sigt.Variable(), []float64{1}); err == nil {
		t.Error("expected an error for values of the wrong length")
	}
	if s.Variables.Has("SIGT") {
		t.Error("failed feature is still in the variables")
	}
}

func TestSliceUsingIndex(t *testing.T) {
	s := testStorer(t, testRows)
	sub := s.SliceUsingIndex([]int{3, 1, 3})
	if !reflect.DeepEqual(sub.Data.Index, []int{3, 1, 3}) {
		t.Errorf("index: have %v", sub.Data.Index)
	}
	if !reflect.DeepEqual(sub.Data.String("EXPOCODE"), []string{"I1", "A1", "I1"}) {
		t.Errorf("expocodes: have %v", sub.Data.String("EXPOCODE"))
	}
}
