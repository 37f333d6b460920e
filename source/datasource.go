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

package source

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/bgcdata"
)

// Loading formats.
const (
	CSV     = "csv"
	NetCDF  = "netcdf"
	ABFiles = "abfiles"
)

// SatelliteCategory is the category of the NetCDF sources loaded with
// SatelliteNetCDFLoader.
const SatelliteCategory = "satellite"

// ReadOptions holds the format specific loading options.
type ReadOptions struct {
	// CSV describes the layout of "csv" files.
	CSV CSVOptions

	// GridBasename is the basename of the grid files of "abfiles"
	// sources.
	GridBasename string
}

// Parameters describe a data source.
type Parameters struct {
	Provider  string
	Format    string
	Dir       string
	Category  string
	Exclude   []string
	Pattern   bgcdata.FileNamePattern
	Variables *bgcdata.VariableSet
	Options   ReadOptions
}

// DataSource loads the files of a provider.
type DataSource struct {
	Parameters

	savingOrder []string
	loader      Loader
}

// New returns a data source. The loader is only created when files are
// loaded.
func New(p Parameters) *DataSource {
	return &DataSource{Parameters: p}
}

// AsTemplate returns the parameters of the data source, with copied
// variables, to create a similar data source.
func (ds *DataSource) AsTemplate() Parameters {
	p := ds.Parameters
	p.Exclude = append([]string{}, ds.Exclude...)
	p.Variables = ds.Variables.Copy()
	return p
}

// Loader returns the loader of the files of the data source.
func (ds *DataSource) Loader() (Loader, error) {
	if ds.loader != nil {
		return ds.loader, nil
	}
	vars := ds.Variables.LoadingVariables()
	switch {
	case ds.Format == CSV:
		ds.loader = NewCSVLoader(ds.Provider, ds.Category, ds.Exclude, vars, ds.Options.CSV)
	case ds.Format == NetCDF && ds.Category == SatelliteCategory:
		ds.loader = NewSatelliteNetCDFLoader(ds.Provider, ds.Category, ds.Exclude, vars)
	case ds.Format == NetCDF:
		ds.loader = NewNetCDFLoader(ds.Provider, ds.Category, ds.Exclude, vars)
	case ds.Format == ABFiles:
		l, err := NewABFileLoader(ds.Provider, ds.Category, ds.Exclude, vars, ds.Options.GridBasename)
		if err != nil {
			return nil, err
		}
		ds.loader = l
	default:
		return nil, errors.Wrapf(bgcdata.ErrUnsupportedLoadingFormat, "%s", ds.Format)
	}
	return ds.loader, nil
}

// SavingOrder returns the labels of the variables to save, in order.
func (ds *DataSource) SavingOrder() []string {
	if len(ds.savingOrder) == 0 {
		return ds.Variables.SaveLabels()
	}
	out := make([]string, len(ds.savingOrder))
	for i, n := range ds.savingOrder {
		out[i] = ds.Variables.MustGet(n).Label()
	}
	return out
}

// SetSavingOrder sets the variables to save, in order. An empty list saves
// all the variables.
func (ds *DataSource) SetSavingOrder(names []string) error {
	for _, n := range names {
		if !ds.Variables.Has(n) {
			return errors.Wrapf(bgcdata.ErrIncorrectVariableName, "%s can not be saved since it is not a variable", n)
		}
	}
	ds.savingOrder = append([]string{}, names...)
	return nil
}

// StorerFromFrame returns the storer of data loaded by the loader of the
// data source. The features of the data source are computed and the
// variables only needed to compute them are removed.
func (ds *DataSource) StorerFromFrame(data *bgcdata.Frame) (*bgcdata.Storer, error) {
	s := bgcdata.NewStorer(data, ds.Category, []string{ds.Provider}, ds.Variables.StoringVariables())
	features, err := ds.Variables.IterConstructableFeatures(s.Variables.Names())
	if err != nil {
		return nil, err
	}
	for _, f := range features {
		if err := s.InsertFeature(f.Feature()); err != nil {
			return nil, err
		}
	}
	for _, name := range s.Variables.Names() {
		if !ds.Variables.Has(name) {
			if _, err := s.Pop(name); err != nil {
				return nil, err
			}
		}
	}
	if err := s.Variables.SetSavingOrder(ds.savingOrder); err != nil {
		return nil, err
	}
	return s, nil
}

// matchingFiles returns the files of the data source matching the date
// constraint of c.
func (ds *DataSource) matchingFiles(l Loader, c *bgcdata.Constraints) ([]string, error) {
	date := ds.Variables.MustGet(ds.Variables.DateName()).Label()
	m, err := ds.Pattern.BuildFromConstraint(c.GetConstraintParameters(date))
	if err != nil {
		return nil, err
	}
	m.Validate = l.IsFileValid
	files, err := m.SelectMatchingFiles(ds.Dir)
	if err != nil || ds.Format != ABFiles {
		return files, err
	}
	// ".a" and ".b" files of an archive are loaded once.
	var archives []string
	seen := make(map[string]bool)
	for _, f := range files {
		if base := Basename(f); !seen[base] {
			seen[base] = true
			archives = append(archives, base)
		}
	}
	return archives, nil
}

func (ds *DataSource) createStorer(l Loader, path string, c *bgcdata.Constraints) (*bgcdata.Storer, error) {
	bgcdata.Log.WithFields(logrus.Fields{"provider": ds.Provider, "file": path}).Info("loading data")
	data, err := l.Load(path, c)
	if err != nil {
		return nil, err
	}
	return ds.StorerFromFrame(data)
}

// EmptyStorer returns a storer with the columns of the data source and no
// row.
func (ds *DataSource) EmptyStorer() (*bgcdata.Storer, error) {
	l, err := ds.Loader()
	if err != nil {
		return nil, err
	}
	empty := &BaseLoader{variables: l.Variables()}
	return ds.StorerFromFrame(empty.assemble(bgcdata.NewFrame(0)))
}

// MatchingFiles returns the files of the data source matching the date
// constraint of c. Archives of AB files are given by their basename.
func (ds *DataSource) MatchingFiles(c *bgcdata.Constraints) ([]string, error) {
	if c == nil {
		c = bgcdata.NewConstraints()
	}
	l, err := ds.Loader()
	if err != nil {
		return nil, err
	}
	return ds.matchingFiles(l, c)
}

// LoadAll loads all the files matching the date constraint of c and
// returns the rows satisfying c. c may be nil.
func (ds *DataSource) LoadAll(c *bgcdata.Constraints) (*bgcdata.Storer, error) {
	if c == nil {
		c = bgcdata.NewConstraints()
	}
	l, err := ds.Loader()
	if err != nil {
		return nil, err
	}
	files, err := ds.matchingFiles(l, c)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		bgcdata.Log.WithFields(logrus.Fields{"provider": ds.Provider, "dir": ds.Dir}).Warn("no file to load")
		return ds.EmptyStorer()
	}
	storers := make([]*bgcdata.Storer, len(files))
	for i, path := range files {
		if storers[i], err = ds.createStorer(l, path, c); err != nil {
			return nil, err
		}
	}
	return bgcdata.Sum(storers...)
}

// LoadAndSave loads the files matching the date constraint of c one by one
// and saves their data in dir, in one file per date range of g.
func (ds *DataSource) LoadAndSave(dir string, g bgcdata.DateRangeGenerator, c *bgcdata.Constraints) error {
	if c == nil {
		c = bgcdata.NewConstraints()
	}
	l, err := ds.Loader()
	if err != nil {
		return err
	}
	files, err := ds.matchingFiles(l, c)
	if err != nil {
		return err
	}
	for _, path := range files {
		s, err := ds.createStorer(l, path, c)
		if err != nil {
			return err
		}
		if err := bgcdata.NewStorerSaver(s, false).SaveFromDateRange(g, dir); err != nil {
			return err
		}
	}
	return nil
}
