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
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/ctessum/requestcache"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/bgcdata"
	"github.com/spatialmodel/bgcdata/internal/hash"
	"github.com/spatialmodel/bgcdata/source"
)

// SelectionCacheSize is the number of selections kept in memory. Archives
// of the same day share their selection.
var SelectionCacheSize = 16

// SelectiveDataSource loads, from the archives of an "abfiles" data
// source, the simulated profiles at the grid points closest to reference
// observations of the same day. The index of the loaded rows is the index
// of the observation they are matched with.
type SelectiveDataSource struct {
	*source.DataSource

	Reference *bgcdata.Storer
	Strategy  *NearestNeighborStrategy

	loader *source.ABFileLoader

	neighborsOnce sync.Once
	neighbors     *Neighbors
	neighborsErr  error

	selectionsOnce sync.Once
	selections     *requestcache.Cache
}

// NewSelectiveDataSource returns a selective data source described by p,
// matching the observations of reference.
func NewSelectiveDataSource(reference *bgcdata.Storer, strategy *NearestNeighborStrategy, p source.Parameters) (*SelectiveDataSource, error) {
	if p.Format != source.ABFiles {
		return nil, errors.Wrapf(bgcdata.ErrUnsupportedLoadingFormat, "selective loading is only possible for %s, not %s",
			source.ABFiles, p.Format)
	}
	ds := source.New(p)
	l, err := ds.Loader()
	if err != nil {
		return nil, err
	}
	return &SelectiveDataSource{
		DataSource: ds,
		Reference:  reference,
		Strategy:   strategy,
		loader:     l.(*source.ABFileLoader),
	}, nil
}

// FromDataSource returns the selective data source similar to ds.
func FromDataSource(reference *bgcdata.Storer, strategy *NearestNeighborStrategy, ds *source.DataSource) (*SelectiveDataSource, error) {
	return NewSelectiveDataSource(reference, strategy, ds.AsTemplate())
}

// ParseDateFromFilepath returns the day of an archive given the path of
// one of its files or its basename.
func ParseDateFromFilepath(path string) (time.Time, error) {
	d, err := source.ArchiveDate(source.Basename(path))
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
}

// gridNeighbors returns the searchable points of the simulation grid.
func (s *SelectiveDataSource) gridNeighbors() (*Neighbors, error) {
	s.neighborsOnce.Do(func() {
		vs := s.loader.Variables()
		var lat, lon []float64
		if lat, s.neighborsErr = s.loader.GridField(vs.LatitudeName()); s.neighborsErr != nil {
			return
		}
		if lon, s.neighborsErr = s.loader.GridField(vs.LongitudeName()); s.neighborsErr != nil {
			return
		}
		bgcdata.Log.WithField("points", len(lat)).Debug("collecting grid file's indexes")
		s.neighbors, s.neighborsErr = s.Strategy.Fit(lat, lon)
	})
	return s.neighbors, s.neighborsErr
}

// selectionRequest holds the observations to select the closest points
// of.
type selectionRequest struct {
	Index    []int
	Lat, Lon []float64
}

type selection struct {
	mask  *Mask
	match *Match
}

func (s *SelectiveDataSource) selectionCache() *requestcache.Cache {
	s.selectionsOnce.Do(func() {
		s.selections = requestcache.NewCache(func(ctx context.Context, request interface{}) (interface{}, error) {
			r := request.(selectionRequest)
			return s.sel(r)
		}, runtime.GOMAXPROCS(-1), requestcache.Deduplicate(), requestcache.Memory(SelectionCacheSize))
	})
	return s.selections
}

func (s *SelectiveDataSource) sel(r selectionRequest) (*selection, error) {
	bgcdata.Log.WithField("observations", len(r.Index)).Info("selecting data")
	nb, err := s.gridNeighbors()
	if err != nil {
		return nil, err
	}
	closest, err := nb.ClosestIndexes(r.Lat, r.Lon)
	if err != nil {
		return nil, err
	}
	g := s.loader.Grid()
	keep := make([]bool, g.JDM*g.IDM)
	for _, p := range closest {
		keep[p] = true
	}
	mask, err := MakeEmpty(g).Intersect(keep)
	if err != nil {
		return nil, err
	}
	match, err := NewMatch(r.Index, closest)
	if err != nil {
		return nil, err
	}
	return &selection{mask: mask, match: match}, nil
}

// Select returns the mask of the grid points closest to the observations
// in slice, a frame of reference rows, and the match of these points with
// the observations.
func (s *SelectiveDataSource) Select(slice *bgcdata.Frame) (*Mask, *Match, error) {
	vs := s.Reference.Variables
	r := selectionRequest{
		Index: slice.Index,
		Lat:   slice.Float(vs.MustGet(vs.LatitudeName()).Label()),
		Lon:   slice.Float(vs.MustGet(vs.LongitudeName()).Label()),
	}
	res, err := s.selectionCache().NewRequest(context.Background(), r, hash.Hash(r)).Result()
	if err != nil {
		return nil, nil, err
	}
	sl := res.(*selection)
	return sl.mask, sl.match, nil
}

// referenceOn returns the reference rows of day d.
func (s *SelectiveDataSource) referenceOn(d time.Time) *bgcdata.Frame {
	vs := s.Reference.Variables
	dates := s.Reference.Data.Date(vs.MustGet(vs.DateName()).Label())
	var rows []int
	for i, date := range dates {
		if date.IsZero() {
			continue
		}
		y, m, dd := date.Date()
		if y == d.Year() && m == d.Month() && dd == d.Day() {
			rows = append(rows, i)
		}
	}
	return s.Reference.Data.Take(rows)
}

// LoadAll loads, from every archive matching the date constraint of c,
// the profiles closest to the reference observations of the archive day.
// Rows are indexed by the observation they are matched with.
func (s *SelectiveDataSource) LoadAll(c *bgcdata.Constraints) (*bgcdata.Storer, error) {
	if c == nil {
		c = bgcdata.NewConstraints()
	}
	files, err := s.MatchingFiles(c)
	if err != nil {
		return nil, err
	}
	var frames []*bgcdata.Frame
	for _, path := range files {
		d, err := ParseDateFromFilepath(path)
		if err != nil {
			return nil, err
		}
		ref := s.referenceOn(d)
		if ref.Len() == 0 {
			continue
		}
		bgcdata.Log.WithFields(logrus.Fields{"provider": s.Provider, "file": path}).Info("loading data")
		mask, match, err := s.Select(ref)
		if err != nil {
			return nil, err
		}
		loaded, err := s.loader.LoadPoints(path, c, mask.Points(), mask.Index())
		if err != nil {
			return nil, err
		}
		frames = append(frames, match.Apply(loaded))
	}
	if len(frames) == 0 {
		bgcdata.Log.WithField("provider", s.Provider).Warn("no simulation data matches the reference")
		return s.EmptyStorer()
	}
	return s.StorerFromFrame(bgcdata.Concat(frames...))
}

// LoadAndSave loads all the matched data and saves it in dir, in one file
// per date range of g.
func (s *SelectiveDataSource) LoadAndSave(dir string, g bgcdata.DateRangeGenerator, c *bgcdata.Constraints) error {
	st, err := s.LoadAll(c)
	if err != nil {
		return err
	}
	return bgcdata.NewStorerSaver(st, false).SaveFromDateRange(g, dir)
}
