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

	"github.com/pkg/errors"
)

// waterMassStorer returns the test storer with a SIGT column computed
// from temperature and salinity, temperature standing in for potential
// temperature.
func waterMassStorer(t *testing.T) *Storer {
	s := testStorer(t, testRows)
	sigt := NewSigmaT(s.Variables.MustGet("PSAL"), s.Variables.MustGet("TEMP"))
	if err := s.InsertFeature(sigt); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestWaterMassAcronym(t *testing.T) {
	w := NewWaterMass("atlantic  water", "", [2]float64{3, math.NaN()}, [2]float64{34.9, math.NaN()}, Unbounded)
	if w.Acronym != "AW" {
		t.Errorf("acronym: have %s, want AW", w.Acronym)
	}
	if w = NewWaterMass("Arctic Water", "ArW", Unbounded, Unbounded, Unbounded); w.Acronym != "ArW" {
		t.Errorf("acronym: have %s, want ArW", w.Acronym)
	}
}

func TestWaterMassExtract(t *testing.T) {
	s := waterMassStorer(t)
	w := NewWaterMass("Warm Water", "", [2]float64{3.5, math.NaN()}, [2]float64{34.95, math.NaN()}, Unbounded)
	out, err := w.ExtractFromStorer(s, "TEMP", "PSAL", "SIGT")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out.Data.Index, []int{0, 1}) {
		t.Errorf("index: have %v", out.Data.Index)
	}
	if _, err := w.ExtractFromStorer(s, "PTEMP", "PSAL", "SIGT"); errors.Cause(err) != ErrIncorrectVariableName {
		t.Errorf("have %v, want incorrect variable name", err)
	}
}

func TestWaterMassFlag(t *testing.T) {
	s := waterMassStorer(t)
	warm := NewWaterMass("Warm Water", "", [2]float64{3.5, math.NaN()}, Unbounded, Unbounded)
	cold := NewWaterMass("Cold Water", "", [2]float64{math.NaN(), 3.5}, Unbounded, Unbounded)

	if _, err := warm.FlagInStorer(s, "WMASS", "TEMP", "PSAL", "SIGT", false); errors.Cause(err) != ErrIncorrectVariableName {
		t.Errorf("have %v, want incorrect variable name", err)
	}
	flagged, err := warm.FlagInStorer(s, "WMASS", "TEMP", "PSAL", "SIGT", true)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(flagged.Data.String("WMASS"), []string{"Warm Water", "Warm Water", "", ""}) {
		t.Errorf("flags: have %q", flagged.Data.String("WMASS"))
	}
	flagged, err = cold.FlagInStorer(flagged, "WMASS", "TEMP", "PSAL", "SIGT", false)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(flagged.Data.String("WMASS"), []string{"Warm Water", "Warm Water", "Cold Water", "Cold Water"}) {
		t.Errorf("flags: have %q", flagged.Data.String("WMASS"))
	}
	if s.Data.Has("WMASS") || s.Variables.Has("WMASS") {
		t.Error("the source storer was modified")
	}
}
