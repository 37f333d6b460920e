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

// Package source loads the files of the data providers into storers.
// Loaders turn one file into a frame holding one column per variable;
// a DataSource selects the files of a provider and builds the storers.
package source

import (
	"math"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/bgcdata"
	"github.com/spf13/cast"
)

// A Loader loads single files of a provider.
type Loader interface {
	// Provider returns the name of the data provider.
	Provider() string

	// Category returns the category of the data, such as "in_situ".
	Category() string

	// Variables returns the variables to load.
	Variables() *bgcdata.VariableSet

	// ExcludedFiles returns the names of the files not to load.
	ExcludedFiles() []string

	// IsFileValid reports whether the file at path can be loaded.
	IsFileValid(path string) bool

	// Load loads the file at path. c may be nil.
	Load(path string, c *bgcdata.Constraints) (*bgcdata.Frame, error)
}

func logFor(l Loader) *logrus.Entry {
	return bgcdata.Log.WithField("provider", l.Provider())
}

// BaseLoader holds what is common to all loaders.
type BaseLoader struct {
	provider  string
	category  string
	exclude   []string
	variables *bgcdata.VariableSet
}

func newBaseLoader(provider, category string, exclude []string, variables *bgcdata.VariableSet) BaseLoader {
	return BaseLoader{
		provider:  provider,
		category:  category,
		exclude:   append([]string{}, exclude...),
		variables: variables,
	}
}

// Provider implements Loader.
func (l *BaseLoader) Provider() string { return l.provider }

// Category implements Loader.
func (l *BaseLoader) Category() string { return l.category }

// Variables implements Loader.
func (l *BaseLoader) Variables() *bgcdata.VariableSet { return l.variables }

// ExcludedFiles implements Loader.
func (l *BaseLoader) ExcludedFiles() []string { return append([]string{}, l.exclude...) }

func (l *BaseLoader) isExcluded(path string) bool {
	name := filepath.Base(path)
	for _, e := range l.exclude {
		if e == path || e == name {
			return true
		}
	}
	return false
}

// IsFileValid reports whether neither the path nor the name of the file
// are excluded.
func (l *BaseLoader) IsFileValid(path string) bool { return !l.isExcluded(path) }

// RemoveNaNRows removes the rows where any of the variables marked with
// RemoveWhenNaN is missing and the rows where all the variables marked
// with RemoveWhenAllNaN are missing.
func (l *BaseLoader) RemoveNaNRows(f *bgcdata.Frame) *bgcdata.Frame {
	anyNaN := f.AnyMissing(l.variables.ToRemoveIfAnyNaN()...)
	allNaN := f.AllMissing(l.variables.ToRemoveIfAllNaN()...)
	keep := make([]bool, f.Len())
	for i := range keep {
		keep[i] = !anyNaN[i] && !allNaN[i]
	}
	return f.Filter(keep)
}

// correct applies the corrections of the variables to their columns.
func (l *BaseLoader) correct(f *bgcdata.Frame) {
	for label, fn := range l.variables.Corrections() {
		c := f.Column(label)
		if c == nil || (c.Kind != bgcdata.Float && c.Kind != bgcdata.Int) {
			continue
		}
		for i, v := range c.Floats {
			c.Floats[i] = fn(v)
		}
	}
}

// finish applies corrections and constraints and removes the rows with
// missing values.
func (l *BaseLoader) finish(f *bgcdata.Frame, c *bgcdata.Constraints) *bgcdata.Frame {
	l.correct(f)
	f = c.ApplyToFrame(f)
	return l.RemoveNaNRows(f)
}

// label returns the column label of the variable called name, or an empty
// string when the set does not hold it.
func (l *BaseLoader) label(name string) string {
	if name == "" {
		return ""
	}
	v := l.variables.MustGet(name)
	if v == nil {
		return ""
	}
	return v.Label()
}

// assemble returns a frame holding one column per variable, in set order.
// Columns missing from data are filled with the variable default, missing
// values of the other columns are replaced by the default and all columns
// are converted to the kind of their variable.
func (l *BaseLoader) assemble(data *bgcdata.Frame) *bgcdata.Frame {
	out := bgcdata.NewFrame(data.Len())
	out.Index = append([]int{}, data.Index...)
	for _, v := range l.variables.Elements() {
		c := data.Column(v.Label())
		if c == nil {
			c = bgcdata.FilledColumn(v.Kind(), data.Len(), defaultOf(v))
		} else {
			c = c.Convert(v.Kind())
			fillMissing(c, defaultOf(v))
		}
		out.Set(v.Label(), c)
	}
	return out
}

// setProvider fills the provider column.
func (l *BaseLoader) setProvider(f *bgcdata.Frame) {
	if !l.variables.HasProvider() {
		return
	}
	f.Set(l.label(l.variables.ProviderName()), bgcdata.FilledColumn(bgcdata.String, f.Len(), l.provider))
}

// setDateParts fills the year, month, day and hour columns from dates.
func (l *BaseLoader) setDateParts(f *bgcdata.Frame, dates []time.Time) {
	year := make([]float64, len(dates))
	month := make([]float64, len(dates))
	day := make([]float64, len(dates))
	hour := make([]float64, len(dates))
	for i, d := range dates {
		if d.IsZero() {
			year[i], month[i], day[i], hour[i] = math.NaN(), math.NaN(), math.NaN(), math.NaN()
			continue
		}
		year[i], month[i], day[i], hour[i] = float64(d.Year()), float64(d.Month()), float64(d.Day()), float64(d.Hour())
	}
	vs := l.variables
	f.SetInt(l.label(vs.YearName()), year)
	f.SetInt(l.label(vs.MonthName()), month)
	f.SetInt(l.label(vs.DayName()), day)
	if vs.HasHour() {
		f.SetInt(l.label(vs.HourName()), hour)
	}
}

// datesFromParts builds dates from the year, month, day and optional hour
// columns. Rows with a missing part have no date.
func (l *BaseLoader) datesFromParts(f *bgcdata.Frame) []time.Time {
	vs := l.variables
	year := f.Float(l.label(vs.YearName()))
	month := f.Float(l.label(vs.MonthName()))
	day := f.Float(l.label(vs.DayName()))
	var hour []float64
	if vs.HasHour() {
		hour = f.Float(l.label(vs.HourName()))
	}
	dates := make([]time.Time, f.Len())
	for i := range dates {
		if math.IsNaN(year[i]) || math.IsNaN(month[i]) || math.IsNaN(day[i]) {
			continue
		}
		h := 0
		if hour != nil && !math.IsNaN(hour[i]) {
			h = int(hour[i])
		}
		dates[i] = time.Date(int(year[i]), time.Month(int(month[i])), int(day[i]), h, 0, 0, 0, time.UTC)
	}
	return dates
}

// defaultOf returns the default value of v, nil meaning missing.
func defaultOf(v *bgcdata.Variable) interface{} {
	if f, ok := v.Default.(float64); ok && math.IsNaN(f) {
		return nil
	}
	return v.Default
}

// fillMissing replaces the missing values of c by def.
func fillMissing(c *bgcdata.Column, def interface{}) {
	if def == nil {
		return
	}
	filled := bgcdata.FilledColumn(c.Kind, 1, def)
	if filled.IsMissing(0) {
		return
	}
	for i := 0; i < c.Len(); i++ {
		if !c.IsMissing(i) {
			continue
		}
		switch c.Kind {
		case bgcdata.String:
			c.Strings[i] = filled.Strings[0]
		case bgcdata.Date:
			c.Dates[i] = filled.Dates[0]
		default:
			c.Floats[i] = filled.Floats[0]
		}
	}
}

// flagAccepted reports whether a flag value is one of the accepted values.
// Text values are compared as text, others as numbers.
func flagAccepted(flag string, accepted []interface{}) bool {
	flag = strings.TrimSpace(flag)
	for _, a := range accepted {
		if s, ok := a.(string); ok {
			if strings.TrimSpace(s) == flag {
				return true
			}
			continue
		}
		want, err := cast.ToFloat64E(a)
		if err != nil {
			continue
		}
		have, err := cast.ToFloat64E(flag)
		if err == nil && have == want {
			return true
		}
	}
	return false
}

// numericFlagAccepted is flagAccepted for numeric flags.
func numericFlagAccepted(flag float64, accepted []interface{}) bool {
	for _, a := range accepted {
		want, err := cast.ToFloat64E(a)
		if err == nil && want == flag {
			return true
		}
	}
	return false
}

// isAlpha reports whether s is made of letters only.
func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
