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
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/bgcdata"
)

// EarthRadius is the mean radius of the Earth [m].
const EarthRadius = 6371.0088e3

const (
	degToRad = math.Pi / 180
	// margin [deg] added to the search boxes so that points on their edges
	// are not missed.
	margin = 1e-7
)

// Haversine returns the great circle distance [m] between two points given
// by their latitude and longitude in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	return EarthRadius * angularDistance(lat1, lon1, lat2, lon2)
}

// angularDistance returns the central angle [rad] between two points.
func angularDistance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := lat1*degToRad, lat2*degToRad
	dPhi := phi2 - phi1
	dLambda := (lon2 - lon1) * degToRad
	h := math.Pow(math.Sin(dPhi/2), 2) + math.Cos(phi1)*math.Cos(phi2)*math.Pow(math.Sin(dLambda/2), 2)
	return 2 * math.Asin(math.Sqrt(math.Min(1, h)))
}

// normalizeLongitude returns lon in [-180, 180).
func normalizeLongitude(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

// NearestNeighborStrategy finds the closest simulation point of every
// observation, distances being measured along great circles.
type NearestNeighborStrategy struct {
	// MinChildren and MaxChildren are the node sizes of the R-tree
	// holding the simulation points.
	MinChildren, MaxChildren int
}

// NewNearestNeighborStrategy returns a strategy with the default R-tree
// node sizes.
func NewNearestNeighborStrategy() *NearestNeighborStrategy {
	return &NearestNeighborStrategy{MinChildren: 25, MaxChildren: 50}
}

// Name returns the name of the strategy.
func (s *NearestNeighborStrategy) Name() string { return "Nearest Neighbor" }

type gridPoint struct {
	geom.Point
	position int
}

// Neighbors holds simulation points to search the closest ones from.
type Neighbors struct {
	tree *rtree.Rtree
	lat  []float64
	lon  []float64
	n    int
}

// Fit returns the searchable set of simulation points. Point i is at
// latitude lat[i] and longitude lon[i]; points with missing coordinates
// are left out.
func (s *NearestNeighborStrategy) Fit(lat, lon []float64) (*Neighbors, error) {
	if len(lat) != len(lon) {
		return nil, fmt.Errorf("compare: %d latitudes for %d longitudes", len(lat), len(lon))
	}
	nb := &Neighbors{
		tree: rtree.NewTree(s.MinChildren, s.MaxChildren),
		lat:  lat,
		lon:  make([]float64, len(lon)),
	}
	for i := range lat {
		nb.lon[i] = normalizeLongitude(lon[i])
		if math.IsNaN(lat[i]) || math.IsNaN(lon[i]) {
			continue
		}
		nb.tree.Insert(&gridPoint{Point: geom.Point{X: nb.lon[i], Y: lat[i]}, position: i})
		nb.n++
	}
	if nb.n == 0 {
		return nil, fmt.Errorf("compare: no simulation point to search from")
	}
	return nb, nil
}

// ClosestIndexes returns, for every observation, the position of the
// closest simulation point.
func (s *NearestNeighborStrategy) ClosestIndexes(simLat, simLon, obsLat, obsLon []float64) ([]int, error) {
	nb, err := s.Fit(simLat, simLon)
	if err != nil {
		return nil, err
	}
	return nb.ClosestIndexes(obsLat, obsLon)
}

// ClosestIndexes returns, for every point, the position of the closest
// simulation point.
func (nb *Neighbors) ClosestIndexes(lat, lon []float64) ([]int, error) {
	if len(lat) != len(lon) {
		return nil, fmt.Errorf("compare: %d latitudes for %d longitudes", len(lat), len(lon))
	}
	bgcdata.Log.WithFields(logrus.Fields{"points": len(lat), "candidates": nb.n}).
		Debug("closest index selection using Nearest Neighbor strategy")
	out := make([]int, len(lat))
	for i := range lat {
		p, err := nb.Closest(lat[i], lon[i])
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// Closest returns the position of the simulation point closest to
// (lat, lon). Ties go to the lowest position.
func (nb *Neighbors) Closest(lat, lon float64) (int, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return -1, fmt.Errorf("compare: can not search the neighbor of a point with missing coordinates")
	}
	lon = normalizeLongitude(lon)
	// Any candidate gives an upper bound of the distance to the closest
	// point.
	var candidates []geom.Geom
	for w := 0.5; len(candidates) == 0; w *= 2 {
		candidates = nb.search(lat, lon, w, w)
		if w > 360 {
			break
		}
	}
	best, d := nb.best(lat, lon, candidates)
	// Every point closer than d is within this box.
	dLat := d/degToRad + margin
	dLon := 360.
	if math.Abs(lat)+dLat < 90 && d < math.Pi/2 {
		dLon = math.Asin(math.Min(1, math.Sin(d)/math.Cos(lat*degToRad)))/degToRad + margin
	}
	if b, _ := nb.best(lat, lon, nb.search(lat, lon, dLat, dLon)); b >= 0 {
		best = b
	}
	return best, nil
}

// search returns the points within the box centered on (lat, lon) with
// the given half sizes. Boxes crossing the antimeridian cover all the
// longitudes.
func (nb *Neighbors) search(lat, lon, halfLat, halfLon float64) []geom.Geom {
	minLon, maxLon := lon-halfLon, lon+halfLon
	if minLon < -180 || maxLon >= 180 {
		minLon, maxLon = -180, 180
	}
	return nb.tree.SearchIntersect(&geom.Bounds{
		Min: geom.Point{X: minLon, Y: lat - halfLat},
		Max: geom.Point{X: maxLon, Y: lat + halfLat},
	})
}

// best returns the closest candidate to (lat, lon) and its angular
// distance, or -1 when there is no candidate.
func (nb *Neighbors) best(lat, lon float64, candidates []geom.Geom) (int, float64) {
	best, dist := -1, math.Inf(1)
	for _, c := range candidates {
		p := c.(*gridPoint)
		d := angularDistance(lat, lon, nb.lat[p.position], nb.lon[p.position])
		if d < dist || (d == dist && p.position < best) {
			best, dist = p.position, d
		}
	}
	return best, dist
}
