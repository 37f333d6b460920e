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
	"math"
	"math/rand"
	"reflect"
	"testing"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		lat1, lon1, lat2, lon2 float64
		want                   float64
	}{
		{0, 0, 0, 0, 0},
		{0, 0, 1, 0, 111195.08},
		{60, 179.5, 60, -179.5, 55597.54 * math.Cos(60*math.Pi/180) * 2},
		{90, 0, -90, 0, math.Pi * EarthRadius},
	}
	for _, test := range tests {
		have := Haversine(test.lat1, test.lon1, test.lat2, test.lon2)
		if math.Abs(have-test.want) > 5 {
			t.Errorf("(%g, %g) to (%g, %g): have %g, want %g", test.lat1, test.lon1, test.lat2, test.lon2, have, test.want)
		}
	}
}

func TestNormalizeLongitude(t *testing.T) {
	for lon, want := range map[float64]float64{0: 0, 180: -180, 190: -170, -190: 170, 359: -1, -180: -180} {
		if have := normalizeLongitude(lon); math.Abs(have-want) > 1e-9 {
			t.Errorf("%g: have %g, want %g", lon, have, want)
		}
	}
}

func TestClosestIndexes(t *testing.T) {
	simLat := []float64{60, 60, 60, 61, 61, 61, nan}
	simLon := []float64{1, 2, 3, 1, 2, 3, 2}
	obsLat := []float64{60.1, 61, 75, 60.4}
	obsLon := []float64{2.1, 3.4, 2, 363}
	s := NewNearestNeighborStrategy()
	have, err := s.ClosestIndexes(simLat, simLon, obsLat, obsLon)
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{1, 5, 4, 2}; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
	if s.Name() != "Nearest Neighbor" {
		t.Errorf("name: %s", s.Name())
	}
}

func TestClosestAntimeridian(t *testing.T) {
	nb, err := NewNearestNeighborStrategy().Fit([]float64{10, 10}, []float64{-179.9, 178})
	if err != nil {
		t.Fatal(err)
	}
	p, err := nb.Closest(10, 179.95)
	if err != nil {
		t.Fatal(err)
	}
	if p != 0 {
		t.Errorf("have %d, want 0", p)
	}
	if _, err := nb.Closest(nan, 0); err == nil {
		t.Error("missing coordinates should not be searched")
	}
}

// Near the pole the closest point along great circles is not the closest
// one in the latitude and longitude plane.
func TestClosestHighLatitude(t *testing.T) {
	nb, err := NewNearestNeighborStrategy().Fit([]float64{85, 80}, []float64{40, 0})
	if err != nil {
		t.Fatal(err)
	}
	p, err := nb.Closest(85, 0)
	if err != nil {
		t.Fatal(err)
	}
	if p != 0 {
		t.Errorf("have %d, want 0", p)
	}
}

func TestClosestBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	const n = 500
	lat, lon := make([]float64, n), make([]float64, n)
	for i := range lat {
		lat[i] = 50 + r.Float64()*35
		lon[i] = -40 + r.Float64()*80
	}
	nb, err := NewNearestNeighborStrategy().Fit(lat, lon)
	if err != nil {
		t.Fatal(err)
	}
	for k := 0; k < 200; k++ {
		oLat, oLon := 45+r.Float64()*45, -50+r.Float64()*100
		want, dist := -1, math.Inf(1)
		for i := range lat {
			if d := Haversine(oLat, oLon, lat[i], lon[i]); d < dist {
				want, dist = i, d
			}
		}
		have, err := nb.Closest(oLat, oLon)
		if err != nil {
			t.Fatal(err)
		}
		if have != want {
			t.Errorf("(%g, %g): have %d, want %d", oLat, oLon, have, want)
		}
	}
}

func TestFitErrors(t *testing.T) {
	s := NewNearestNeighborStrategy()
	if _, err := s.Fit([]float64{1}, []float64{1, 2}); err == nil {
		t.Error("lengths should match")
	}
	if _, err := s.Fit([]float64{nan}, []float64{nan}); err == nil {
		t.Error("no point to search from")
	}
}
