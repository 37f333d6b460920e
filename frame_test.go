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
	"reflect"
	"testing"
	"time"
)

func TestConcat(t *testing.T) {
	a := NewFrame(2)
	a.SetFloat("x", []float64{1, 2})
	a.SetString("s", []string{"a", "b"})
	b := NewFrame(1)
	b.SetFloat("y", []float64{3})
	b.SetFloat("x", []float64{4})

	c := Concat(a, b)
	if !reflect.DeepEqual(c.Names(), []string{"x", "s", "y"}) {
		t.Errorf("names: have %v", c.Names())
	}
	if !floatsEqual(c.Float("x"), []float64{1, 2, 4}, 0) {
		t.Errorf("x: have %v", c.Float("x"))
	}
	if !floatsEqual(c.Float("y"), []float64{math.NaN(), math.NaN(), 3}, 0) {
		t.Errorf("y: have %v", c.Float("y"))
	}
	if !reflect.DeepEqual(c.String("s"), []string{"a", "b", ""}) {
		t.Errorf("s: have %#v", c.String("s"))
	}
	if !reflect.DeepEqual(c.Index, []int{0, 1, 0}) {
		t.Errorf("index: have %v", c.Index)
	}
}

func TestFrameFilterKeepsIndex(t *testing.T) {
	f := NewFrame(4)
	f.SetFloat("x", []float64{10, 11, 12, 13})
	g := f.Filter([]bool{false, true, false, true})
	if !reflect.DeepEqual(g.Index, []int{1, 3}) {
		t.Errorf("index: have %v", g.Index)
	}
	h := g.Take([]int{1, 1, 0})
	if !reflect.DeepEqual(h.Index, []int{3, 3, 1}) {
		t.Errorf("index: have %v", h.Index)
	}
	if !floatsEqual(h.Float("x"), []float64{13, 13, 11}, 0) {
		t.Errorf("x: have %v", h.Float("x"))
	}
	// The source frame is not modified.
	h.Column("x").Floats[0] = -1
	if f.Float("x")[3] != 13 {
		t.Error("Take shares values with its source")
	}
}

func TestFrameSetLength(t *testing.T) {
	f := NewFrame(2)
	if err := f.SetFloat("x", []float64{1}); err == nil {
		t.Error("expected an error for a column of the wrong length")
	}
}

func TestFrameInsertRenameDrop(t *testing.T) {
	f := NewFrame(1)
	f.SetFloat("a", []float64{1})
	f.SetFloat("b", []float64{2})
	if err := f.InsertAt(0, "c", &Column{Kind: Float, Floats: []float64{3}}); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(f.Names(), []string{"c", "a", "b"}) {
		t.Errorf("names: have %v", f.Names())
	}
	f.Rename("a", "A")
	f.Drop("b")
	if !reflect.DeepEqual(f.Names(), []string{"c", "A"}) {
		t.Errorf("names: have %v", f.Names())
	}
	if f.Float("A")[0] != 1 {
		t.Errorf("A: have %v", f.Float("A"))
	}
}

func TestColumnConvert(t *testing.T) {
	c := &Column{Kind: String, Strings: []string{"1.5", "<0.2", "abc", "", "NaN"}}
	f := c.Convert(Float)
	if !floatsEqual(f.Floats, []float64{1.5, 0.2, math.NaN(), math.NaN(), math.NaN()}, 1e-12) {
		t.Errorf("floats: have %v", f.Floats)
	}
	i := (&Column{Kind: Float, Floats: []float64{1.7, math.NaN()}}).Convert(Int)
	if !floatsEqual(i.Floats, []float64{1, math.NaN()}, 0) {
		t.Errorf("ints: have %v", i.Floats)
	}
	d := (&Column{Kind: String, Strings: []string{"2020-01-02", "20200103", ""}}).Convert(Date)
	want := []time.Time{day(2020, 1, 2), day(2020, 1, 3), {}}
	if !reflect.DeepEqual(d.Dates, want) {
		t.Errorf("dates: have %v", d.Dates)
	}
}

func TestMissingMasks(t *testing.T) {
	f := NewFrame(3)
	f.SetFloat("a", []float64{1, math.NaN(), math.NaN()})
	f.SetFloat("b", []float64{1, 2, math.NaN()})
	if have, want := f.AnyMissing("a", "b"), []bool{false, true, true}; !reflect.DeepEqual(have, want) {
		t.Errorf("any: have %v, want %v", have, want)
	}
	if have, want := f.AllMissing("a", "b"), []bool{false, false, true}; !reflect.DeepEqual(have, want) {
		t.Errorf("all: have %v, want %v", have, want)
	}
	if have, want := f.AllMissing(), []bool{false, false, false}; !reflect.DeepEqual(have, want) {
		t.Errorf("none: have %v, want %v", have, want)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		format string
		v      interface{}
		want   string
	}{
		{"%10.3f", 1.5, "     1.500"},
		{"%10.3f", math.NaN(), "       NaN"},
		{"%-8s", "abc", "abc     "},
		{"%5d", 3., "    3"},
		{"%5d", math.NaN(), "  NaN"},
		{"%12s", day(2020, 1, 2), "  2020-01-02"},
		{"%6s", "", "   NaN"},
		{"%8.2f", "12.5", "   12.50"},
	}
	for _, test := range tests {
		if have := FormatValue(test.format, test.v); have != test.want {
			t.Errorf("FormatValue(%q, %v): have %q, want %q", test.format, test.v, have, test.want)
		}
	}
	row := FormatRow([]string{"%-4s", "%5.1f"}, []interface{}{"a", 2.})
	if row != "a      2.0" {
		t.Errorf("row: have %q", row)
	}
}
