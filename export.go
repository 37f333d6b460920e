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
	"fmt"
	"math"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tealeg/xlsx"
)

// savedColumns returns the saved variables and their columns.
func (sv *StorerSaver) savedColumns() ([]*Variable, []*Column, error) {
	vars := sv.variables.SaveVariables()
	cols := make([]*Column, len(vars))
	for i, v := range vars {
		if cols[i] = sv.storer.Data.Column(v.Label()); cols[i] == nil {
			return nil, nil, errors.Wrapf(ErrImpossibleSave, "no column %s in data", v.Label())
		}
	}
	return vars, cols, nil
}

// saveXLSX writes the storer to a spreadsheet with a row of labels, a row
// of units and one row per observation.
func (sv *StorerSaver) saveXLSX(path string) error {
	Log.WithFields(logrus.Fields{"file": path}).Debug("saving data")
	vars, cols, err := sv.savedColumns()
	if err != nil {
		return err
	}
	file := xlsx.NewFile()
	name := sv.storer.Category
	if name == "" {
		name = "data"
	}
	sheet, err := file.AddSheet(name)
	if err != nil {
		return fmt.Errorf("bgcdata: creating sheet: %v", err)
	}
	labels, units := sheet.AddRow(), sheet.AddRow()
	for _, v := range vars {
		labels.AddCell().SetString(v.Label())
		units.AddCell().SetString(v.Unit)
	}
	for r := 0; r < sv.storer.Data.Len(); r++ {
		row := sheet.AddRow()
		for _, c := range cols {
			cell := row.AddCell()
			if c.IsMissing(r) {
				continue
			}
			switch c.Kind {
			case Float:
				cell.SetFloat(c.Floats[r])
			case Int:
				cell.SetInt(int(c.Floats[r]))
			default:
				cell.SetString(toString(c.Value(r)))
			}
		}
	}
	return file.Save(path)
}

// saveShapefile writes the storer as points located at the latitude and
// longitude of the observations, with the saved variables as attributes.
func (sv *StorerSaver) saveShapefile(path string) error {
	Log.WithFields(logrus.Fields{"file": path}).Debug("saving data")
	vars, cols, err := sv.savedColumns()
	if err != nil {
		return err
	}
	vs := sv.storer.Variables
	lat := sv.storer.Data.Float(vs.MustGet(vs.LatitudeName()).Label())
	lon := sv.storer.Data.Float(vs.MustGet(vs.LongitudeName()).Label())

	fields := make([]goshp.Field, len(vars))
	for i, v := range vars {
		switch cols[i].Kind {
		case Float:
			fields[i] = goshp.FloatField(v.Label(), 14, 8)
		case Int:
			fields[i] = goshp.NumberField(v.Label(), 10)
		default:
			fields[i] = goshp.StringField(v.Label(), 50)
		}
	}
	e, err := shp.NewEncoderFromFields(path, goshp.POINT, fields...)
	if err != nil {
		return fmt.Errorf("bgcdata: creating shapefile %s: %v", path, err)
	}
	defer e.Close()
	for r := 0; r < sv.storer.Data.Len(); r++ {
		vals := make([]interface{}, len(cols))
		for i, c := range cols {
			switch c.Kind {
			case Float:
				vals[i] = c.Floats[r]
			case Int:
				if c.IsMissing(r) {
					vals[i] = 0
				} else {
					vals[i] = int(c.Floats[r])
				}
			default:
				vals[i] = toString(c.Value(r))
			}
		}
		if err := e.EncodeFields(geom.Point{X: lon[r], Y: lat[r]}, vals...); err != nil {
			return err
		}
	}
	return nil
}

// ncTimeUnits are the units of the date variables of NetCDF exports.
const ncTimeUnits = "days since 1970-01-01 00:00:00"

// saveNetCDF writes the storer to a NetCDF file with one dimension
// holding the observations. Strings are stored as character arrays and
// dates as days since 1970-01-01.
func (sv *StorerSaver) saveNetCDF(path string) error {
	Log.WithFields(logrus.Fields{"file": path}).Debug("saving data")
	vars, cols, err := sv.savedColumns()
	if err != nil {
		return err
	}
	n := sv.storer.Data.Len()
	if n == 0 {
		return errors.Wrap(ErrImpossibleSave, "no data to write in NetCDF file")
	}
	dims := []string{"obs"}
	lengths := []int{n}
	strlen := make(map[string]int)
	for i, v := range vars {
		if cols[i].Kind != String {
			continue
		}
		l := 1
		for _, s := range cols[i].Strings {
			if len(s) > l {
				l = len(s)
			}
		}
		strlen[v.Label()] = l
		dims = append(dims, v.Label()+"_strlen")
		lengths = append(lengths, l)
	}
	h := cdf.NewHeader(dims, lengths)
	h.AddAttribute("", "comment", fmt.Sprintf("%s data from %v", sv.storer.Category, sv.storer.Providers))
	for i, v := range vars {
		switch cols[i].Kind {
		case String:
			h.AddVariable(v.Label(), []string{"obs", v.Label() + "_strlen"}, "")
			h.AddAttribute(v.Label(), "units", v.Unit)
		case Date:
			h.AddVariable(v.Label(), []string{"obs"}, []float64{0})
			h.AddAttribute(v.Label(), "units", ncTimeUnits)
		default:
			h.AddVariable(v.Label(), []string{"obs"}, []float64{0})
			h.AddAttribute(v.Label(), "units", v.Unit)
			h.AddAttribute(v.Label(), "_FillValue", []float64{math.NaN()})
		}
	}
	h.Define()
	ff, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("bgcdata: creating %s: %v", path, err)
	}
	f, err := cdf.Create(ff, h)
	if err != nil {
		ff.Close()
		return err
	}
	for i, v := range vars {
		var data interface{}
		c := cols[i]
		switch c.Kind {
		case String:
			l := strlen[v.Label()]
			b := make([]byte, n*l)
			for r, s := range c.Strings {
				copy(b[r*l:(r+1)*l], s)
			}
			data = b
		case Date:
			d := make([]float64, n)
			for r, t := range c.Dates {
				if t.IsZero() {
					d[r] = math.NaN()
				} else {
					d[r] = float64(t.Unix()) / 86400
				}
			}
			data = d
		default:
			data = c.Floats
		}
		if err := writeNCF(f, v.Label(), data); err != nil {
			ff.Close()
			return err
		}
	}
	return ff.Close()
}

func writeNCF(f *cdf.File, name string, data interface{}) error {
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	w := f.Writer(name, start, end)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("bgcdata: writing %s: %v", name, err)
	}
	return nil
}
