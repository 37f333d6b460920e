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

package eos80

import (
	"math"
	"testing"
)

func different(a, b, tolerance float64) bool {
	return math.Abs(a-b) > tolerance
}

// Check values from UNESCO (1983) technical paper 44.
func TestPres(t *testing.T) {
	if p := Pres(7321.45, 30); different(p, 7500.0065, 1.e-3) {
		t.Errorf("pressure: have %g, want 7500.0065", p)
	}
	if p := Pres(0, 45); p != 0 {
		t.Errorf("surface pressure: have %g, want 0", p)
	}
}

func TestPtmp(t *testing.T) {
	if pt := Ptmp(40, T90(40), 10000, 0); different(T68(pt), 36.89073, 1.e-5) {
		t.Errorf("potential temperature: have %g, want 36.89073", T68(pt))
	}
	if pt := Ptmp(35, 10, 0, 0); different(pt, 10, 1.e-12) {
		t.Errorf("potential temperature at reference pressure: have %g, want 10", pt)
	}
	if pt := Ptmp(35, 10, 1000, 0); pt >= 10 {
		t.Errorf("potential temperature should be lower than in situ temperature: %g", pt)
	}
}

func TestDens0(t *testing.T) {
	tests := []struct {
		s, t, want float64
	}{
		{s: 0, t: 0, want: 999.842594},
		{s: 35, t: T90(5), want: 1027.67547},
		{s: 35, t: T90(25), want: 1023.34306},
	}
	for _, test := range tests {
		if d := Dens0(test.s, test.t); different(d, test.want, 1.e-5) {
			t.Errorf("dens0(%g, %g): have %g, want %g", test.s, test.t, d, test.want)
		}
	}
	if st := SigmaT(35, T90(5)); different(st, 27.67547, 1.e-5) {
		t.Errorf("sigma-t: have %g, want 27.67547", st)
	}
}
