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
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Kind is the type of the values held by a Column.
type Kind int

// Column kinds. Int columns are stored as float64 so that they can hold
// missing values (NaN).
const (
	Float Kind = iota
	Int
	String
	Date
)

// KindFromType returns the column kind matching a variable type name
// ("float", "int", "str", "datetime64[ns]").
func KindFromType(typ string) Kind {
	switch {
	case strings.HasPrefix(typ, "int"):
		return Int
	case typ == "str" || typ == "object" || typ == "string":
		return String
	case strings.HasPrefix(typ, "datetime"):
		return Date
	default:
		return Float
	}
}

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case String:
		return "str"
	case Date:
		return "datetime64[ns]"
	default:
		return "float"
	}
}

// DateLayout is the layout used to write and parse dates in text files.
const DateLayout = "2006-01-02"

// Column holds the values of one field of a Frame.
type Column struct {
	Kind    Kind
	Floats  []float64
	Strings []string
	Dates   []time.Time
}

// Len returns the number of values in the column.
func (c *Column) Len() int {
	switch c.Kind {
	case String:
		return len(c.Strings)
	case Date:
		return len(c.Dates)
	default:
		return len(c.Floats)
	}
}

// IsMissing reports whether value i is missing.
func (c *Column) IsMissing(i int) bool {
	switch c.Kind {
	case String:
		return c.Strings[i] == ""
	case Date:
		return c.Dates[i].IsZero()
	default:
		return math.IsNaN(c.Floats[i])
	}
}

// Value returns value i as an interface.
func (c *Column) Value(i int) interface{} {
	switch c.Kind {
	case String:
		return c.Strings[i]
	case Date:
		return c.Dates[i]
	default:
		return c.Floats[i]
	}
}

// Float returns value i as a float. Dates are converted to Unix
// seconds and strings are parsed.
func (c *Column) Float(i int) float64 {
	switch c.Kind {
	case String:
		return parseFloat(c.Strings[i])
	case Date:
		if c.Dates[i].IsZero() {
			return math.NaN()
		}
		return float64(c.Dates[i].Unix())
	default:
		return c.Floats[i]
	}
}

// Key returns value i formatted so that equal values give equal keys.
func (c *Column) Key(i int) string {
	switch c.Kind {
	case String:
		return c.Strings[i]
	case Date:
		return c.Dates[i].Format(time.RFC3339)
	default:
		return fmt.Sprint(c.Floats[i])
	}
}

// Copy returns a deep copy of c.
func (c *Column) Copy() *Column {
	o := &Column{Kind: c.Kind}
	if c.Floats != nil {
		o.Floats = append([]float64{}, c.Floats...)
	}
	if c.Strings != nil {
		o.Strings = append([]string{}, c.Strings...)
	}
	if c.Dates != nil {
		o.Dates = append([]time.Time{}, c.Dates...)
	}
	return o
}

func (c *Column) take(rows []int) *Column {
	o := &Column{Kind: c.Kind}
	switch c.Kind {
	case String:
		o.Strings = make([]string, len(rows))
		for i, r := range rows {
			o.Strings[i] = c.Strings[r]
		}
	case Date:
		o.Dates = make([]time.Time, len(rows))
		for i, r := range rows {
			o.Dates[i] = c.Dates[r]
		}
	default:
		o.Floats = make([]float64, len(rows))
		for i, r := range rows {
			o.Floats[i] = c.Floats[r]
		}
	}
	return o
}

// MissingColumn returns a column of n missing values.
func MissingColumn(k Kind, n int) *Column {
	return FilledColumn(k, n, nil)
}

// FilledColumn returns a column of n copies of v. A nil v or a value
// that can not be converted to the kind gives missing values.
func FilledColumn(k Kind, n int, v interface{}) *Column {
	c := &Column{Kind: k}
	switch k {
	case String:
		s := ""
		if v != nil {
			s = toString(v)
		}
		c.Strings = make([]string, n)
		for i := range c.Strings {
			c.Strings[i] = s
		}
	case Date:
		var d time.Time
		if v != nil {
			d = toDate(v)
		}
		c.Dates = make([]time.Time, n)
		for i := range c.Dates {
			c.Dates[i] = d
		}
	default:
		f := math.NaN()
		if v != nil {
			f = toFloat(v)
		}
		c.Floats = make([]float64, n)
		for i := range c.Floats {
			c.Floats[i] = f
		}
	}
	return c
}

// Convert returns a copy of c holding values of kind k.
func (c *Column) Convert(k Kind) *Column {
	if k == c.Kind || (k == Int && c.Kind == Float) || (k == Float && c.Kind == Int) {
		o := c.Copy()
		o.Kind = k
		if k == Int {
			for i, v := range o.Floats {
				if !math.IsNaN(v) {
					o.Floats[i] = math.Trunc(v)
				}
			}
		}
		return o
	}
	n := c.Len()
	o := MissingColumn(k, n)
	for i := 0; i < n; i++ {
		if c.IsMissing(i) {
			continue
		}
		switch k {
		case String:
			o.Strings[i] = toString(c.Value(i))
		case Date:
			o.Dates[i] = toDate(c.Value(i))
		case Int:
			o.Floats[i] = math.Trunc(c.Float(i))
		default:
			o.Floats[i] = c.Float(i)
		}
	}
	return o
}

// parseFloat parses a text value. Leading "<" (detection limits) are
// stripped and values that are not numbers give NaN.
func parseFloat(s string) float64 {
	s = strings.TrimPrefix(strings.TrimSpace(s), "<")
	if s == "" {
		return math.NaN()
	}
	f, err := cast.ToFloat64E(s)
	if err != nil {
		return math.NaN()
	}
	return f
}

func toFloat(v interface{}) float64 {
	switch t := v.(type) {
	case string:
		return parseFloat(t)
	case time.Time:
		return float64(t.Unix())
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return math.NaN()
	}
	return f
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) {
			return ""
		}
	case time.Time:
		return t.Format(DateLayout)
	case string:
		s := strings.TrimSpace(t)
		if s == "NaN" || s == "nan" {
			return ""
		}
		return s
	}
	return strings.TrimSpace(cast.ToString(v))
}

var dateLayouts = []string{
	DateLayout, "2006-01-02 15:04:05", "2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05", "2006-01-02T15:04Z07:00", "2006-01-02T15:04",
	"2006-01-02 15:04", "20060102", "2006/01/02",
}

func toDate(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		s := strings.TrimSpace(t)
		for _, l := range dateLayouts {
			if d, err := time.Parse(l, s); err == nil {
				return d
			}
		}
		return time.Time{}
	}
	return time.Time{}
}

// Frame is a column oriented table. The columns keep their insertion
// order. Index holds one identifier per row; it is carried along by the
// operations selecting rows so that rows can be linked back to the rows
// they were selected from.
type Frame struct {
	names []string
	cols  map[string]*Column
	Index []int
}

// NewFrame returns an empty frame with n rows.
func NewFrame(n int) *Frame {
	f := &Frame{cols: make(map[string]*Column), Index: make([]int, n)}
	for i := range f.Index {
		f.Index[i] = i
	}
	return f
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.Index) }

// Names returns the column names in order.
func (f *Frame) Names() []string { return append([]string{}, f.names...) }

// Has reports whether the frame has column name.
func (f *Frame) Has(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Column returns the named column or nil.
func (f *Frame) Column(name string) *Column { return f.cols[name] }

// Set adds or replaces column name.
func (f *Frame) Set(name string, c *Column) error {
	if c.Len() != f.Len() {
		return fmt.Errorf("bgcdata: column %s has %d values, frame has %d rows", name, c.Len(), f.Len())
	}
	if _, ok := f.cols[name]; !ok {
		f.names = append(f.names, name)
	}
	f.cols[name] = c
	return nil
}

// InsertAt adds column name at position pos.
func (f *Frame) InsertAt(pos int, name string, c *Column) error {
	if f.Has(name) {
		f.Drop(name)
	}
	if err := f.Set(name, c); err != nil {
		return err
	}
	if pos < 0 || pos >= len(f.names) {
		return nil
	}
	copy(f.names[pos+1:], f.names[pos:len(f.names)-1])
	f.names[pos] = name
	return nil
}

// SetFloat adds or replaces a float column.
func (f *Frame) SetFloat(name string, v []float64) error {
	return f.Set(name, &Column{Kind: Float, Floats: v})
}

// SetInt adds or replaces an integer column.
func (f *Frame) SetInt(name string, v []float64) error {
	return f.Set(name, &Column{Kind: Int, Floats: v})
}

// SetString adds or replaces a string column.
func (f *Frame) SetString(name string, v []string) error {
	return f.Set(name, &Column{Kind: String, Strings: v})
}

// SetDate adds or replaces a date column.
func (f *Frame) SetDate(name string, v []time.Time) error {
	return f.Set(name, &Column{Kind: Date, Dates: v})
}

// Float returns the values of column name as floats.
func (f *Frame) Float(name string) []float64 {
	c, ok := f.cols[name]
	if !ok {
		return nil
	}
	if c.Kind == Float || c.Kind == Int {
		return c.Floats
	}
	return c.Convert(Float).Floats
}

// String returns the values of a string column.
func (f *Frame) String(name string) []string {
	c, ok := f.cols[name]
	if !ok {
		return nil
	}
	if c.Kind == String {
		return c.Strings
	}
	return c.Convert(String).Strings
}

// Date returns the values of a date column.
func (f *Frame) Date(name string) []time.Time {
	c, ok := f.cols[name]
	if !ok {
		return nil
	}
	if c.Kind == Date {
		return c.Dates
	}
	return c.Convert(Date).Dates
}

// Drop removes column name if it exists.
func (f *Frame) Drop(name string) {
	if _, ok := f.cols[name]; !ok {
		return
	}
	delete(f.cols, name)
	for i, n := range f.names {
		if n == name {
			f.names = append(f.names[:i], f.names[i+1:]...)
			break
		}
	}
}

// Rename renames column from to to, keeping its position.
func (f *Frame) Rename(from, to string) {
	c, ok := f.cols[from]
	if !ok || from == to {
		return
	}
	f.Drop(to)
	delete(f.cols, from)
	f.cols[to] = c
	for i, n := range f.names {
		if n == from {
			f.names[i] = to
		}
	}
}

// Copy returns a deep copy of f.
func (f *Frame) Copy() *Frame {
	o := &Frame{
		names: append([]string{}, f.names...),
		cols:  make(map[string]*Column, len(f.cols)),
		Index: append([]int{}, f.Index...),
	}
	for n, c := range f.cols {
		o.cols[n] = c.Copy()
	}
	return o
}

// Select returns a frame holding the given columns in the given order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	o := &Frame{cols: make(map[string]*Column), Index: append([]int{}, f.Index...)}
	for _, n := range names {
		c, ok := f.cols[n]
		if !ok {
			return nil, fmt.Errorf("bgcdata: missing column %s", n)
		}
		o.names = append(o.names, n)
		o.cols[n] = c
	}
	return o, nil
}

// Take returns the frame made of the given rows, in the given order.
func (f *Frame) Take(rows []int) *Frame {
	o := &Frame{
		names: append([]string{}, f.names...),
		cols:  make(map[string]*Column, len(f.cols)),
		Index: make([]int, len(rows)),
	}
	for i, r := range rows {
		o.Index[i] = f.Index[r]
	}
	for n, c := range f.cols {
		o.cols[n] = c.take(rows)
	}
	return o
}

// Filter returns the rows for which keep is true.
func (f *Frame) Filter(keep []bool) *Frame {
	var rows []int
	for i, k := range keep {
		if k {
			rows = append(rows, i)
		}
	}
	return f.Take(rows)
}

// Row returns the values of row i keyed by column name.
func (f *Frame) Row(i int) map[string]interface{} {
	r := make(map[string]interface{}, len(f.names))
	for _, n := range f.names {
		r[n] = f.cols[n].Value(i)
	}
	return r
}

// ResetIndex numbers the rows from 0.
func (f *Frame) ResetIndex() {
	for i := range f.Index {
		f.Index[i] = i
	}
}

// Concat stacks frames vertically. Columns are aligned by name, in order
// of first appearance, and filled with missing values where a frame lacks
// them. Row indexes are kept.
func Concat(frames ...*Frame) *Frame {
	o := NewFrame(0)
	kinds := make(map[string]Kind)
	for _, f := range frames {
		if f == nil {
			continue
		}
		for _, n := range f.names {
			if _, ok := kinds[n]; !ok {
				kinds[n] = f.cols[n].Kind
				o.names = append(o.names, n)
			}
		}
	}
	for _, n := range o.names {
		o.cols[n] = &Column{Kind: kinds[n]}
	}
	for _, f := range frames {
		if f == nil {
			continue
		}
		o.Index = append(o.Index, f.Index...)
		for _, n := range o.names {
			c, ok := f.cols[n]
			if !ok {
				c = MissingColumn(kinds[n], f.Len())
			} else if c.Kind != kinds[n] {
				c = c.Convert(kinds[n])
			}
			dst := o.cols[n]
			dst.Floats = append(dst.Floats, c.Floats...)
			dst.Strings = append(dst.Strings, c.Strings...)
			dst.Dates = append(dst.Dates, c.Dates...)
		}
	}
	return o
}

// AnyMissing returns, for every row, whether any of the given columns is
// missing.
func (f *Frame) AnyMissing(names ...string) []bool {
	out := make([]bool, f.Len())
	for _, n := range names {
		c, ok := f.cols[n]
		if !ok {
			continue
		}
		for i := range out {
			out[i] = out[i] || c.IsMissing(i)
		}
	}
	return out
}

// AllMissing returns, for every row, whether all of the given columns are
// missing. Rows are not flagged when names is empty.
func (f *Frame) AllMissing(names ...string) []bool {
	out := make([]bool, f.Len())
	var present []*Column
	for _, n := range names {
		if c, ok := f.cols[n]; ok {
			present = append(present, c)
		}
	}
	if len(present) == 0 {
		return out
	}
	for i := range out {
		out[i] = true
		for _, c := range present {
			if !c.IsMissing(i) {
				out[i] = false
				break
			}
		}
	}
	return out
}
