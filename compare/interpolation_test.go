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
	"reflect"
	"testing"

	"github.com/spatialmodel/bgcdata"
)

func TestInterpolateStorer(t *testing.T) {
	vs := testVariables(t)
	base := bgcdata.NewStorer(frame(t, []int{0, 0, 0, 1, 1, 2, 3, 3}, map[string][]float64{
		"LATITUDE": {60, 60, 60, 61, 61, 62, 63, 63},
		"DEPH":     {-1, -10, -5, -2, -4, -3, -1, -2},
		"TEMP":     {10, 1, 5, 20, 18, 7, 1, 2},
		"PSAL":     {30, 32, 31, 35, 34, 33, nan, 36},
	}), "model", []string{"HYCOM"}, vs)
	obs := bgcdata.NewStorer(frame(t, []int{3, 2, 1, 0, 4}, map[string][]float64{
		"LATITUDE": {63.1, 62.1, 61.1, 60.1, 64.1},
		"DEPH":     {-50, nan, 0, -7, -1},
		"TEMP":     {0, 0, 0, 0, 0},
	}), "in_situ", []string{"TEST"}, vs)

	ip, err := NewInterpolator(base, "DEPH", []string{"TEMP", "PSAL"})
	if err != nil {
		t.Fatal(err)
	}
	s, err := ip.InterpolateStorer(obs)
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{0, 1, 2, 3}; !reflect.DeepEqual(s.Data.Index, want) {
		t.Errorf("index: have %v, want %v", s.Data.Index, want)
	}
	tests := []struct {
		name string
		want []float64
	}{
		{"DEPH", []float64{-7, 0, nan, -50}},
		{"TEMP", []float64{3.4, 20, nan, 2}},
		{"PSAL", []float64{31.4, 35, nan, 36}},
		{"LATITUDE", []float64{60, 61, 62, 63}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if have := s.Data.Float(test.name); !equalWithNaN(have, test.want) {
				t.Errorf("have %v, want %v", have, test.want)
			}
		})
	}
	if want := []float64{10, 1, 5, 20, 18, 7, 1, 2}; !reflect.DeepEqual(base.Data.Float("TEMP"), want) {
		t.Errorf("base changed: %v", base.Data.Float("TEMP"))
	}
	if s.Category != "model" {
		t.Errorf("category: %s", s.Category)
	}
}

func TestInterpolateNode(t *testing.T) {
	vs := testVariables(t)
	base := bgcdata.NewStorer(frame(t, []int{0, 0}, map[string][]float64{
		"DEPH": {-1, -2},
		"TEMP": {1, nan},
	}), "model", nil, vs)
	obs := bgcdata.NewStorer(frame(t, []int{0}, map[string][]float64{"DEPH": {-1}}), "in_situ", nil, vs)
	ip, err := NewInterpolator(base, "DEPH", []string{"TEMP"})
	if err != nil {
		t.Fatal(err)
	}
	s, err := ip.InterpolateStorer(obs)
	if err != nil {
		t.Fatal(err)
	}
	if have := s.Data.Float("TEMP"); !equalWithNaN(have, []float64{1}) {
		t.Errorf("have %v, want [1]", have)
	}
}

func TestNewInterpolatorUnknownVariable(t *testing.T) {
	base := bgcdata.NewStorer(bgcdata.NewFrame(0), "model", nil, testVariables(t))
	if _, err := NewInterpolator(base, "DEPH", []string{"CPHL"}); err == nil {
		t.Error("CPHL is not a variable")
	}
}
