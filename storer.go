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
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/btree"
)

// Storer holds loaded data together with its category, its providers and
// the variables describing its columns.
type Storer struct {
	Data      *Frame
	Category  string
	Providers []string
	Variables *VariableSet
}

// NewStorer returns a storer holding data. The variable set is copied.
func NewStorer(data *Frame, category string, providers []string, variables *VariableSet) *Storer {
	return &Storer{
		Data:      data,
		Category:  category,
		Providers: append([]string{}, providers...),
		Variables: variables.Copy(),
	}
}

func (s *Storer) String() string {
	return fmt.Sprintf("Storer{category: %s, providers: %v, rows: %d, columns: %v}",
		s.Category, s.Providers, s.Data.Len(), s.Data.Names())
}

// Add returns the concatenation of s and o. Both storers must have the
// same variables and category. Rows are renumbered.
func (s *Storer) Add(o *Storer) (*Storer, error) {
	if !s.Variables.Equal(o.Variables) {
		return nil, errors.Wrap(ErrIncompatibleVariableSets, "variables are not compatible")
	}
	if s.Category != o.Category {
		return nil, errors.Wrapf(ErrIncompatibleCategories, "categories %s and %s are not compatible",
			s.Category, o.Category)
	}
	data := Concat(s.Data, o.Data)
	data.ResetIndex()
	return NewStorer(data, s.Category, unionStrings(s.Providers, o.Providers), s.Variables), nil
}

// Sum adds all the storers together.
func Sum(storers ...*Storer) (*Storer, error) {
	if len(storers) == 0 {
		return nil, fmt.Errorf("bgcdata: no storer to sum")
	}
	out := storers[0]
	for _, o := range storers[1:] {
		var err error
		if out, err = out.Add(o); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range [][]string{a, b} {
		for _, v := range l {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// labelsOf returns the labels of the named variables present in the set.
func (s *Storer) labelsOf(names ...string) []string {
	var out []string
	for _, n := range names {
		if v, err := s.Variables.Get(n); err == nil && s.Data.Has(v.Label()) {
			out = append(out, v.Label())
		}
	}
	return out
}

// group is a set of rows sharing the same values in the grouping columns.
type group struct {
	key  []interface{}
	rows []int
}

func lessValue(a, b interface{}) bool {
	switch av := a.(type) {
	case float64:
		bv := b.(float64)
		if math.IsNaN(av) {
			return false
		}
		return math.IsNaN(bv) || av < bv
	case string:
		return av < b.(string)
	case time.Time:
		return av.Before(b.(time.Time))
	}
	return false
}

func groupLess(a, b interface{}) bool {
	ka, kb := a.(*group).key, b.(*group).key
	for i := range ka {
		if lessValue(ka[i], kb[i]) {
			return true
		}
		if lessValue(kb[i], ka[i]) {
			return false
		}
	}
	return false
}

// groupRows groups the rows of f by the values of the given columns. The
// groups are returned sorted by key. Missing values form their own group.
func groupRows(f *Frame, labels []string) []*group {
	tr := btree.NewNonConcurrent(groupLess)
	cols := make([]*Column, len(labels))
	for i, l := range labels {
		cols[i] = f.Column(l)
	}
	for r := 0; r < f.Len(); r++ {
		key := make([]interface{}, len(cols))
		for i, c := range cols {
			key[i] = c.Value(r)
		}
		probe := &group{key: key}
		if g := tr.Get(probe); g != nil {
			g.(*group).rows = append(g.(*group).rows, r)
			continue
		}
		probe.rows = []int{r}
		tr.Set(probe)
	}
	out := make([]*group, 0, tr.Len())
	tr.Ascend(nil, func(i interface{}) bool {
		out = append(out, i.(*group))
		return true
	})
	return out
}

// RemoveDuplicates removes duplicated rows. Within a provider, rows with
// the same provider, expocode, date, time and position are replaced by a
// single row holding the mean of their values. Between providers, rows
// with the same expocode, date, time and position are reduced to the row
// of the provider coming first in priority. Providers missing from
// priority come after the others, in alphabetical order.
func (s *Storer) RemoveDuplicates(priority []string) {
	s.Data = s.removeDuplicatesAmongProviders(s.Data)
	s.Data = s.removeDuplicatesBetweenProviders(s.Data, priority)
}

func (s *Storer) removeDuplicatesAmongProviders(f *Frame) *Frame {
	vs := s.Variables
	keys := s.labelsOf(vs.ProviderName(), vs.ExpocodeName(), vs.DateName(), vs.YearName(),
		vs.MonthName(), vs.DayName(), vs.HourName(), vs.LatitudeName(), vs.LongitudeName(), vs.DepthName())
	if len(keys) == 0 {
		return f
	}
	isKey := make(map[string]bool)
	for _, k := range keys {
		isKey[k] = true
	}
	var single []int
	var merged []*Frame
	for _, g := range groupRows(f, keys) {
		if len(g.rows) == 1 {
			single = append(single, g.rows[0])
			continue
		}
		merged = append(merged, meanRow(f.Take(g.rows), isKey))
	}
	if len(merged) == 0 {
		return f
	}
	Log.WithFields(logrus.Fields{"rows": f.Len() - len(single)}).Debug("averaging duplicated rows")
	sort.Ints(single)
	out := Concat(append([]*Frame{f.Take(single)}, merged...)...)
	out.ResetIndex()
	return out
}

// meanRow reduces f to a single row: numbers are averaged ignoring missing
// values, other values are the first present value.
func meanRow(f *Frame, isKey map[string]bool) *Frame {
	out := NewFrame(1)
	for _, n := range f.Names() {
		c := f.Column(n)
		switch {
		case isKey[n] || c.Kind == String || c.Kind == Date:
			row := 0
			for i := 0; i < c.Len(); i++ {
				if !c.IsMissing(i) {
					row = i
					break
				}
			}
			out.Set(n, c.take([]int{row}))
		default:
			sum, count := 0., 0.
			for _, v := range c.Floats {
				if !math.IsNaN(v) {
					sum += v
					count++
				}
			}
			m := math.NaN()
			if count > 0 {
				m = sum / count
			}
			out.Set(n, &Column{Kind: c.Kind, Floats: []float64{m}})
		}
	}
	return out
}

func (s *Storer) removeDuplicatesBetweenProviders(f *Frame, priority []string) *Frame {
	vs := s.Variables
	if !vs.HasProvider() {
		return f
	}
	provLabel := vs.MustGet(vs.ProviderName()).Label()
	provs := f.String(provLabel)
	if len(unionStrings(provs, nil)) <= 1 {
		return f
	}
	keys := s.labelsOf(vs.ExpocodeName(), vs.YearName(), vs.MonthName(), vs.DayName(),
		vs.HourName(), vs.LatitudeName(), vs.LongitudeName(), vs.DepthName())
	rank := func(p string) (int, string) {
		for i, q := range priority {
			if q == p {
				return i, ""
			}
		}
		return len(priority), p
	}
	drop := make([]bool, f.Len())
	dropped := 0
	for _, g := range groupRows(f, keys) {
		if len(g.rows) == 1 {
			continue
		}
		rows := append([]int{}, g.rows...)
		sort.SliceStable(rows, func(i, j int) bool {
			ri, ni := rank(provs[rows[i]])
			rj, nj := rank(provs[rows[j]])
			if ri != rj {
				return ri < rj
			}
			return ni < nj
		})
		for _, r := range rows[1:] {
			drop[r] = true
			dropped++
		}
	}
	if dropped == 0 {
		return f
	}
	Log.WithFields(logrus.Fields{"rows": dropped}).Debug("removing rows duplicated between providers")
	keep := make([]bool, len(drop))
	for i, d := range drop {
		keep[i] = !d
	}
	return f.Filter(keep)
}

// SliceOnDates returns the rows whose date is within [start, end].
func (s *Storer) SliceOnDates(start, end time.Time) *Slice {
	Log.WithFields(logrus.Fields{
		"start": start.Format(DateLayout),
		"end":   end.Format(DateLayout),
	}).Debug("slicing data for date range")
	dates := s.Data.Date(s.Variables.MustGet(s.Variables.DateName()).Label())
	var rows []int
	for i, d := range dates {
		if d.IsZero() {
			continue
		}
		if !d.Before(start) && !d.After(end) {
			rows = append(rows, i)
		}
	}
	return &Slice{storer: s, Rows: rows}
}

// AddFeature adds the values of a computed variable to the storer.
func (s *Storer) AddFeature(v *Variable, values []float64) error {
	if err := s.Variables.Add(v); err != nil {
		return err
	}
	if err := s.Data.Set(v.Label(), &Column{Kind: v.Kind(), Floats: values}); err != nil {
		s.Variables.Pop(v.Name)
		return err
	}
	return nil
}

// InsertFeature computes feature f from the storer data and adds it to
// the storer.
func (s *Storer) InsertFeature(f Feature) error {
	req := f.RequiredVariables()
	inputs := make([][]float64, len(req))
	for i, r := range req {
		if !s.Data.Has(r.Label()) {
			return errors.Wrapf(ErrFeatureConstruction, "%s needs %s", f.Variable().Name, r.Name)
		}
		inputs[i] = s.Data.Float(r.Label())
	}
	values, err := f.Transform(inputs...)
	if err != nil {
		return err
	}
	return s.AddFeature(f.Variable(), values)
}

// Pop removes variable name and returns its values.
func (s *Storer) Pop(name string) (*Column, error) {
	v, err := s.Variables.Pop(name)
	if err != nil {
		return nil, err
	}
	c := s.Data.Column(v.Label())
	s.Data.Drop(v.Label())
	return c, nil
}

// FromConstraints returns a storer holding the rows of s that satisfy c.
func FromConstraints(s *Storer, c *Constraints) *Storer {
	return NewStorer(c.ApplyToFrame(s.Data), s.Category, s.Providers, s.Variables)
}

// SliceUsingIndex returns a storer holding the rows whose index value is
// in index, in the order of index.
func (s *Storer) SliceUsingIndex(index []int) *Storer {
	pos := make(map[int][]int)
	for r, i := range s.Data.Index {
		pos[i] = append(pos[i], r)
	}
	var rows []int
	for _, i := range index {
		rows = append(rows, pos[i]...)
	}
	return NewStorer(s.Data.Take(rows), s.Category, s.Providers, s.Variables)
}

// Slice is a view on some rows of a storer.
type Slice struct {
	storer *Storer
	Rows   []int
}

// Storer returns a storer holding the rows of the slice.
func (sl *Slice) Storer() *Storer {
	p := sl.storer
	return &Storer{Data: p.Data.Take(sl.Rows), Category: p.Category, Providers: p.Providers, Variables: p.Variables}
}

// Data returns the rows of the slice.
func (sl *Slice) Data() *Frame { return sl.storer.Data.Take(sl.Rows) }

// Len returns the number of rows of the slice.
func (sl *Slice) Len() int { return len(sl.Rows) }

func (sl *Slice) String() string {
	parts := make([]string, len(sl.Rows))
	for i, r := range sl.Rows {
		parts[i] = fmt.Sprint(r)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Add returns the union of two slices of the same storer.
func (sl *Slice) Add(o *Slice) (*Slice, error) {
	if sl.storer != o.storer {
		return nil, errors.Wrap(ErrDifferentSliceOrigin, "addition can only be performed with slices from the same storer")
	}
	seen := make(map[int]bool)
	var rows []int
	for _, r := range append(append([]int{}, sl.Rows...), o.Rows...) {
		if !seen[r] {
			seen[r] = true
			rows = append(rows, r)
		}
	}
	sort.Ints(rows)
	return &Slice{storer: sl.storer, Rows: rows}, nil
}
