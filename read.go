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
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// UnknownProvider is the provider of files without provider column.
const UnknownProvider = "????"

// ReadOptions describes the layout of the files read by ReadFiles.
type ReadOptions struct {
	// Labels of the columns holding the mandatory variables.
	ProviderLabel, ExpocodeLabel, DateLabel, YearLabel, MonthLabel, DayLabel,
	HourLabel, LatitudeLabel, LongitudeLabel, DepthLabel string

	// Reference holds the variables to use for the columns of the same
	// label. Other columns are described by parsed variables.
	Reference []*Variable

	Category string

	// UnitRowIndex is the index of the row holding the units, the header
	// being row 0. A negative value means there is no unit row.
	UnitRowIndex int

	// Delimiter separates the values. Empty means any whitespace.
	Delimiter string
}

// DefaultReadOptions returns the options to read files written by
// StorerSaver.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		ProviderLabel:  "PROVIDER",
		ExpocodeLabel:  "EXPOCODE",
		DateLabel:      "DATE",
		YearLabel:      "YEAR",
		MonthLabel:     "MONTH",
		DayLabel:       "DAY",
		HourLabel:      "HOUR",
		LatitudeLabel:  "LATITUDE",
		LongitudeLabel: "LONGITUDE",
		DepthLabel:     "DEPH",
		Category:       "in_situ",
		UnitRowIndex:   1,
	}
}

// ReadFiles reads all the files at paths and returns the sum of their
// storers.
func ReadFiles(paths []string, opts ReadOptions) (*Storer, error) {
	storers := make([]*Storer, len(paths))
	for i, p := range paths {
		s, err := ReadFile(p, opts)
		if err != nil {
			return nil, err
		}
		storers[i] = s
	}
	return Sum(storers...)
}

// ReadFile reads the file at path.
func ReadFile(path string, opts ReadOptions) (*Storer, error) {
	Log.WithFields(logrus.Fields{"file": path}).Info("reading data")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bgcdata: opening %s: %v", path, err)
	}
	defer f.Close()
	records, err := readRecords(f, opts.Delimiter)
	if err != nil {
		return nil, fmt.Errorf("bgcdata: reading %s: %v", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("bgcdata: %s has no header", path)
	}
	header := records[0]
	units := make(map[string]string)
	var rows [][]string
	for i, r := range records[1:] {
		if i+1 == opts.UnitRowIndex {
			for j, u := range r {
				if j < len(header) {
					units[header[j]] = u
				}
			}
			continue
		}
		if len(r) != len(header) {
			return nil, fmt.Errorf("bgcdata: %s line %d has %d values instead of %d", path, i+2, len(r), len(header))
		}
		rows = append(rows, r)
	}
	return parseRecords(header, units, rows, opts)
}

// readRecords splits the lines of r into values.
func readRecords(r io.Reader, delimiter string) ([][]string, error) {
	if delimiter != "" {
		cr := csv.NewReader(r)
		cr.Comma = []rune(delimiter)[0]
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true
		return cr.ReadAll()
	}
	var out [][]string
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 1024*1024), 16*1024*1024)
	for s.Scan() {
		if fields := strings.Fields(s.Text()); len(fields) > 0 {
			out = append(out, fields)
		}
	}
	return out, s.Err()
}

// inferColumn returns the values as a column of the narrowest type holding
// all of them, together with its type name.
func inferColumn(values []string) (*Column, string) {
	isInt, isFloat := true, true
	for _, v := range values {
		if toString(v) == "" {
			continue
		}
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			isInt = false
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			isFloat = false
			break
		}
	}
	c := &Column{Kind: String, Strings: values}
	switch {
	case isInt:
		return c.Convert(Int), "int64"
	case isFloat:
		return c.Convert(Float), "float64"
	}
	return c.Convert(String), "object"
}

func parseRecords(header []string, units map[string]string, rows [][]string, opts ReadOptions) (*Storer, error) {
	reference := make(map[string]*Variable)
	for _, v := range opts.Reference {
		reference[v.Label()] = v
	}
	data := NewFrame(len(rows))
	vars := make(map[string]*Variable)
	for j, name := range header {
		values := make([]string, len(rows))
		for i, r := range rows {
			values[i] = r[j]
		}
		col, typ := inferColumn(values)
		unit, ok := units[name]
		if !ok {
			unit = "[]"
		}
		v := NewParsedVariable(strings.ToUpper(name), unit, typ)
		switch name {
		case opts.DateLabel:
			v.Type = Date.String()
		case opts.ProviderLabel, opts.ExpocodeLabel:
			v.Type = String.String()
		}
		if ref, ok := reference[name]; ok {
			v = ref.Copy()
		}
		if err := data.Set(v.Label(), col.Convert(v.Kind())); err != nil {
			return nil, err
		}
		vars[name] = v
	}

	if _, ok := vars[opts.DateLabel]; !ok {
		Log.Debug("parsing date values")
		dates, err := datesFromParts(data, vars, opts)
		if err != nil {
			return nil, err
		}
		v := NewParsedVariable(strings.ToUpper(opts.DateLabel), "[]", Date.String())
		if ref, ok := reference[opts.DateLabel]; ok {
			v = ref.Copy()
		}
		if err := data.InsertAt(0, v.Label(), &Column{Kind: Date, Dates: dates}); err != nil {
			return nil, err
		}
		header = append([]string{opts.DateLabel}, header...)
		vars[opts.DateLabel] = v
	}

	Log.Debug("parsing file columns")
	roles := Roles{
		Provider:  vars[opts.ProviderLabel],
		Expocode:  vars[opts.ExpocodeLabel],
		Date:      vars[opts.DateLabel],
		Year:      vars[opts.YearLabel],
		Month:     vars[opts.MonthLabel],
		Day:       vars[opts.DayLabel],
		Hour:      vars[opts.HourLabel],
		Latitude:  vars[opts.LatitudeLabel],
		Longitude: vars[opts.LongitudeLabel],
		Depth:     vars[opts.DepthLabel],
	}
	isRole := make(map[string]bool)
	for _, l := range []string{opts.ProviderLabel, opts.ExpocodeLabel, opts.DateLabel, opts.YearLabel,
		opts.MonthLabel, opts.DayLabel, opts.HourLabel, opts.LatitudeLabel, opts.LongitudeLabel, opts.DepthLabel} {
		isRole[l] = true
	}
	var others []*Variable
	for _, name := range header {
		if !isRole[name] {
			others = append(others, vars[name])
		}
	}
	variables, err := NewVariableSet(roles, others...)
	if err != nil {
		return nil, err
	}

	providers := []string{UnknownProvider}
	if p, ok := vars[opts.ProviderLabel]; ok {
		providers = unionStrings(nil, nonEmpty(data.String(p.Label())))
	}
	return NewStorer(data, opts.Category, providers, variables.StoringVariables()), nil
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// datesFromParts builds dates from the year, month and day columns.
func datesFromParts(data *Frame, vars map[string]*Variable, opts ReadOptions) ([]time.Time, error) {
	parts := make([][]float64, 3)
	for i, l := range []string{opts.YearLabel, opts.MonthLabel, opts.DayLabel} {
		v, ok := vars[l]
		if !ok {
			return nil, errors.Wrapf(ErrImpossibleTypeParsing, "no %s column to build dates from", l)
		}
		parts[i] = data.Float(v.Label())
	}
	dates := make([]time.Time, data.Len())
	for r := range dates {
		y, m, d := parts[0][r], parts[1][r], parts[2][r]
		if math.IsNaN(y) || math.IsNaN(m) || math.IsNaN(d) {
			continue
		}
		dates[r] = time.Date(int(y), time.Month(int(m)), int(d), 0, 0, 0, 0, time.UTC)
	}
	return dates, nil
}
