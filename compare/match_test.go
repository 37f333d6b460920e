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
)

func TestMatch(t *testing.T) {
	m, err := NewMatch([]int{10, 11, 12}, []int{1, 4, 1})
	if err != nil {
		t.Fatal(err)
	}
	loaded := frame(t, []int{4, 1, 2}, map[string][]float64{"TEMP": {4, 1, 2}})
	have := m.Apply(loaded)
	if want := []int{11, 10, 12}; !reflect.DeepEqual(have.Index, want) {
		t.Errorf("index: have %v, want %v", have.Index, want)
	}
	if want := []float64{4, 1, 1}; !reflect.DeepEqual(have.Float("TEMP"), want) {
		t.Errorf("values: have %v, want %v", have.Float("TEMP"), want)
	}
	if want := []int{4, 1, 2}; !reflect.DeepEqual(loaded.Index, want) {
		t.Errorf("loaded frame changed: %v", loaded.Index)
	}

	if _, err := NewMatch([]int{1}, nil); err == nil {
		t.Error("lengths should match")
	}
}
