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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// File name templates of saved files.
const (
	SingleFilenameFormat     = "nutrients_{provider}_{dates}.txt"
	AggregatedFilenameFormat = "bgc_{category}_{dates}.txt"
)

// StorerSaver writes the content of a storer to text files.
type StorerSaver struct {
	storer    *Storer
	variables *VariableSet

	// SaveAggregatedOnly disables the per provider files when saving
	// date ranges.
	SaveAggregatedOnly bool
}

// NewStorerSaver returns a saver of s.
func NewStorerSaver(s *Storer, aggregatedOnly bool) *StorerSaver {
	return &StorerSaver{
		storer:             s,
		variables:          s.Variables.SavingVariables(),
		SaveAggregatedOnly: aggregatedOnly,
	}
}

// SavingOrder returns the labels of the saved variables, in order.
func (sv *StorerSaver) SavingOrder() []string { return sv.variables.SaveLabels() }

// SetSavingOrder sets the names of the saved variables, in order.
func (sv *StorerSaver) SetSavingOrder(names []string) error {
	return sv.variables.SetSavingOrder(names)
}

func (sv *StorerSaver) singleFilepath(dates, dir string) (string, error) {
	if len(sv.storer.Providers) != 1 {
		return "", errors.Wrap(ErrImpossibleSave, "multiple providers in the storer")
	}
	provider := sv.storer.Providers[0]
	name := strings.NewReplacer("{provider}", provider, "{dates}", dates).Replace(SingleFilenameFormat)
	return createFilepath(filepath.Join(dir, provider), name)
}

func (sv *StorerSaver) aggregatedFilepath(dates, dir string) (string, error) {
	name := strings.NewReplacer("{category}", sv.storer.Category, "{dates}", dates).Replace(AggregatedFilenameFormat)
	return createFilepath(dir, name)
}

// createFilepath creates dir and an empty file name in it if they do not
// exist.
func createFilepath(dir, name string) (string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("bgcdata: creating directory %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("bgcdata: creating file %s: %v", path, err)
	}
	return path, f.Close()
}

// save appends data to the file at path, writing the header first if
// the file is empty.
func (sv *StorerSaver) save(path string, data *Frame) error {
	Log.WithFields(logrus.Fields{"file": path}).Debug("saving data")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("bgcdata: opening %s: %v", path, err)
	}
	w := bufio.NewWriter(f)
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	vars := sv.variables.SaveVariables()
	if info.Size() == 0 {
		Log.Debug("writing file header")
		nameFormats := sv.variables.NameFormats()
		labels := make([]interface{}, len(vars))
		units := make([]interface{}, len(vars))
		for i, v := range vars {
			labels[i] = v.Label()
			units[i] = v.Unit
		}
		fmt.Fprintln(w, FormatRow(nameFormats, labels))
		fmt.Fprintln(w, FormatRow(nameFormats, units))
	}
	if data.Len() > 0 {
		Log.Debug("appending values to file")
		valueFormats := sv.variables.ValueFormats()
		cols := make([]*Column, len(vars))
		for i, v := range vars {
			if cols[i] = data.Column(v.Label()); cols[i] == nil {
				f.Close()
				return errors.Wrapf(ErrImpossibleSave, "no column %s in data", v.Label())
			}
		}
		row := make([]interface{}, len(cols))
		for r := 0; r < data.Len(); r++ {
			for i, c := range cols {
				row[i] = c.Value(r)
			}
			fmt.Fprintln(w, FormatRow(valueFormats, row))
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SaveFromDateRange slices the storer on each date range of g and saves
// every slice in dir: in the aggregated file of the range and, unless
// SaveAggregatedOnly is set, in the file of the provider.
func (sv *StorerSaver) SaveFromDateRange(g DateRangeGenerator, dir string) error {
	ranges, err := g.Ranges()
	if err != nil {
		return err
	}
	for _, r := range ranges {
		dates := r.String()
		data := sv.storer.SliceOnDates(r.Start, r.End).Data()
		if !sv.SaveAggregatedOnly {
			path, err := sv.singleFilepath(dates, dir)
			if err != nil {
				return err
			}
			if err := sv.save(path, data); err != nil {
				return err
			}
		}
		path, err := sv.aggregatedFilepath(dates[:len(dates)-9], dir)
		if err != nil {
			return err
		}
		if err := sv.save(path, data); err != nil {
			return err
		}
	}
	return nil
}

// SaveAll saves the whole storer at path. The file must not exist. The
// format follows the extension of path: ".xlsx", ".shp" and ".nc" are
// exported with their own writers, anything else is a text file.
func (sv *StorerSaver) SaveAll(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("bgcdata: a file already exists at %s and can not be erased", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return sv.saveXLSX(path)
	case ".shp":
		return sv.saveShapefile(path)
	case ".nc":
		return sv.saveNetCDF(path)
	}
	return sv.save(path, sv.storer.Data)
}

// SaveStorer saves s at path with the given saving order. A nil order
// saves all the variables.
func SaveStorer(s *Storer, path string, order []string, aggregatedOnly bool) error {
	sv := NewStorerSaver(s, aggregatedOnly)
	if order != nil {
		if err := sv.SetSavingOrder(order); err != nil {
			return err
		}
	}
	return sv.SaveAll(path)
}
