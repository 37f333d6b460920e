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
	"strings"

	"github.com/pkg/errors"
)

// Roles binds the variables playing a mandatory part in every data set.
// Provider and Hour are optional.
type Roles struct {
	Provider  *Variable
	Expocode  *Variable
	Date      *Variable
	Year      *Variable
	Month     *Variable
	Day       *Variable
	Hour      *Variable
	Latitude  *Variable
	Longitude *Variable
	Depth     *Variable
}

// list returns the bound variables in saving order.
func (r Roles) list() []*Variable {
	all := []*Variable{r.Provider, r.Expocode, r.Date, r.Year, r.Month,
		r.Day, r.Hour, r.Latitude, r.Longitude, r.Depth}
	var out []*Variable
	for _, v := range all {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

func (r Roles) names() roleNames {
	name := func(v *Variable) string {
		if v == nil {
			return ""
		}
		return v.Name
	}
	return roleNames{
		Provider: name(r.Provider), Expocode: name(r.Expocode), Date: name(r.Date),
		Year: name(r.Year), Month: name(r.Month), Day: name(r.Day), Hour: name(r.Hour),
		Latitude: name(r.Latitude), Longitude: name(r.Longitude), Depth: name(r.Depth),
	}
}

type roleNames struct {
	Provider, Expocode, Date, Year, Month, Day, Hour, Latitude, Longitude, Depth string
}

func (r roleNames) all() []string {
	return []string{r.Provider, r.Expocode, r.Date, r.Year, r.Month, r.Day,
		r.Hour, r.Latitude, r.Longitude, r.Depth}
}

// VariableSet is an ordered collection of variables with unique names. The
// mandatory variables come first, in the order of Roles, followed by the
// other variables in insertion order.
type VariableSet struct {
	roles    roleNames
	elements []*Variable
	save     []string
}

// NewVariableSet returns a set holding the role variables and the given
// other variables. All roles but Provider and Hour are required.
func NewVariableSet(r Roles, others ...*Variable) (*VariableSet, error) {
	required := map[string]*Variable{
		"expocode": r.Expocode, "date": r.Date, "year": r.Year, "month": r.Month,
		"day": r.Day, "latitude": r.Latitude, "longitude": r.Longitude, "depth": r.Depth,
	}
	for role, v := range required {
		if v == nil {
			return nil, errors.Wrapf(ErrVariableInstantiation, "missing %s variable", role)
		}
	}
	s := &VariableSet{roles: r.names()}
	for _, v := range append(r.list(), others...) {
		if err := s.Add(v); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Role variable names. Names of unset optional roles are empty.
func (s *VariableSet) ProviderName() string  { return s.roles.Provider }
func (s *VariableSet) ExpocodeName() string  { return s.roles.Expocode }
func (s *VariableSet) DateName() string      { return s.roles.Date }
func (s *VariableSet) YearName() string      { return s.roles.Year }
func (s *VariableSet) MonthName() string     { return s.roles.Month }
func (s *VariableSet) DayName() string       { return s.roles.Day }
func (s *VariableSet) HourName() string      { return s.roles.Hour }
func (s *VariableSet) LatitudeName() string  { return s.roles.Latitude }
func (s *VariableSet) LongitudeName() string { return s.roles.Longitude }
func (s *VariableSet) DepthName() string     { return s.roles.Depth }

// HasProvider reports whether the set has a provider variable.
func (s *VariableSet) HasProvider() bool { return s.roles.Provider != "" }

// HasHour reports whether the set has an hour variable.
func (s *VariableSet) HasHour() bool { return s.roles.Hour != "" }

// Len returns the number of variables.
func (s *VariableSet) Len() int { return len(s.elements) }

// Elements returns the variables in order.
func (s *VariableSet) Elements() []*Variable { return append([]*Variable{}, s.elements...) }

// Names returns the variable names in order.
func (s *VariableSet) Names() []string {
	out := make([]string, len(s.elements))
	for i, v := range s.elements {
		out[i] = v.Name
	}
	return out
}

// Labels maps variable names to column labels.
func (s *VariableSet) Labels() map[string]string {
	out := make(map[string]string, len(s.elements))
	for _, v := range s.elements {
		out[v.Name] = v.Label()
	}
	return out
}

// Has reports whether the set holds a variable called name.
func (s *VariableSet) Has(name string) bool {
	_, err := s.Get(name)
	return err == nil
}

// Get returns the variable called name.
func (s *VariableSet) Get(name string) (*Variable, error) {
	for _, v := range s.elements {
		if v.Name == name {
			return v, nil
		}
	}
	return nil, errors.Wrapf(ErrIncorrectVariableName, "%s is not a valid variable name, valid names are %s",
		name, strings.Join(s.Names(), ", "))
}

// MustGet is like Get but returns nil for unknown names.
func (s *VariableSet) MustGet(name string) *Variable {
	v, _ := s.Get(name)
	return v
}

// Add appends v to the set.
func (s *VariableSet) Add(v *Variable) error {
	if s.Has(v.Name) {
		return errors.Wrapf(ErrDuplicatedVariableName, "%s is already in the set", v.Name)
	}
	s.elements = append(s.elements, v)
	s.save = append(s.save, v.Name)
	return nil
}

// Pop removes and returns the variable called name. Mandatory variables
// can not be removed.
func (s *VariableSet) Pop(name string) (*Variable, error) {
	for _, m := range s.roles.all() {
		if m != "" && m == name {
			return nil, errors.Wrapf(ErrIncorrectVariableName,
				"variable %s can not be removed since it is a mandatory variable", name)
		}
	}
	v, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	for i, e := range s.elements {
		if e == v {
			s.elements = append(s.elements[:i], s.elements[i+1:]...)
			break
		}
	}
	for i, n := range s.save {
		if n == name {
			s.save = append(s.save[:i], s.save[i+1:]...)
			break
		}
	}
	return v, nil
}

// Equal reports whether both sets hold variables with the same names and
// units, regardless of their order.
func (s *VariableSet) Equal(o *VariableSet) bool {
	if o == nil || len(s.elements) != len(o.elements) {
		return false
	}
	for _, v := range s.elements {
		ov, err := o.Get(v.Name)
		if err != nil || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Copy returns a copy of the set with copied variables.
func (s *VariableSet) Copy() *VariableSet {
	o := &VariableSet{roles: s.roles, save: append([]string{}, s.save...)}
	for _, v := range s.elements {
		o.elements = append(o.elements, v.Copy())
	}
	return o
}

// InDataset returns the variables read from the source files.
func (s *VariableSet) InDataset() []*Variable {
	var out []*Variable
	for _, v := range s.elements {
		if v.Exists() {
			out = append(out, v)
		}
	}
	return out
}

// NotInDataset returns the variables not read from the source files.
func (s *VariableSet) NotInDataset() []*Variable {
	var out []*Variable
	for _, v := range s.elements {
		if !v.Exists() {
			out = append(out, v)
		}
	}
	return out
}

// Corrections maps the labels of the variables read from the source files
// to their correction functions.
func (s *VariableSet) Corrections() map[string]func(float64) float64 {
	out := make(map[string]func(float64) float64)
	for _, v := range s.InDataset() {
		if c := v.Correction(); c != nil {
			out[v.Label()] = c
		}
	}
	return out
}

// ToRemoveIfAllNaN returns the labels of the variables with the
// RemoveIfAllNaN property.
func (s *VariableSet) ToRemoveIfAllNaN() []string {
	var out []string
	for _, v := range s.elements {
		if v.RemoveIfAllNaN() {
			out = append(out, v.Label())
		}
	}
	return out
}

// ToRemoveIfAnyNaN returns the labels of the variables with the
// RemoveIfNaN property.
func (s *VariableSet) ToRemoveIfAnyNaN() []string {
	var out []string
	for _, v := range s.elements {
		if v.RemoveIfNaN() {
			out = append(out, v.Label())
		}
	}
	return out
}

// unwrap returns the non feature variables needed to build v.
func unwrap(v *Variable) []*Variable {
	if !v.IsFeature() {
		return []*Variable{v}
	}
	var out []*Variable
	for _, r := range v.RequiredVariables() {
		out = append(out, unwrap(r)...)
	}
	return out
}

// featuresOf returns v if it is a feature, followed by the features it
// requires.
func featuresOf(v *Variable) []*Variable {
	if !v.IsFeature() {
		return nil
	}
	out := []*Variable{v}
	for _, r := range v.RequiredVariables() {
		out = append(out, featuresOf(r)...)
	}
	return out
}

// Features returns the feature variables of the set, including the
// features required by other features.
func (s *VariableSet) Features() []*Variable {
	var out []*Variable
	seen := make(map[string]bool)
	for _, v := range s.elements {
		for _, f := range featuresOf(v) {
			if !seen[f.Name] {
				seen[f.Name] = true
				out = append(out, f)
			}
		}
	}
	return out
}

// LoadingVariables returns the set of variables to load to build all
// the variables of s: features are replaced by the variables they need.
func (s *VariableSet) LoadingVariables() *VariableSet {
	o := &VariableSet{roles: s.roles}
	for _, v := range s.elements {
		for _, u := range unwrap(v) {
			if !o.Has(u.Name) {
				o.elements = append(o.elements, u)
				o.save = append(o.save, u.Name)
			}
		}
	}
	return o
}

// StoringVariables returns the set of variables stored after loading.
// Features are added to it once they are computed.
func (s *VariableSet) StoringVariables() *VariableSet {
	return s.LoadingVariables()
}

// IterConstructableFeatures returns the features of s in an order in which
// they can be computed, starting from the available variable names. Every
// feature whose required variables can not be made available gives an
// ErrFeatureConstruction error.
func (s *VariableSet) IterConstructableFeatures(available []string) ([]*Variable, error) {
	have := make(map[string]bool)
	for _, n := range available {
		have[n] = true
	}
	todo := s.Features()
	var out []*Variable
	for {
		var next []*Variable
		built := false
		for _, f := range todo {
			ok := true
			for _, r := range f.RequiredVariables() {
				if !have[r.Name] {
					ok = false
					break
				}
			}
			if ok {
				out = append(out, f)
				have[f.Name] = true
				built = true
			} else {
				next = append(next, f)
			}
		}
		todo = next
		if !built || len(todo) == 0 {
			break
		}
	}
	if len(todo) > 0 {
		names := make([]string, len(todo))
		for i, f := range todo {
			names[i] = f.Name
		}
		return out, errors.Wrapf(ErrFeatureConstruction,
			"the following features can not be loaded: %s; they probably depend on non loaded variables",
			strings.Join(names, ", "))
	}
	return out, nil
}

// SetSavingOrder sets the variables to save and their order. An empty
// list selects all the variables in set order.
func (s *VariableSet) SetSavingOrder(names []string) error {
	if len(names) == 0 {
		s.save = s.Names()
		return nil
	}
	for _, n := range names {
		if !s.Has(n) {
			return errors.Wrapf(ErrIncorrectVariableName, "%s can not be saved since it is not a variable", n)
		}
	}
	s.save = append([]string{}, names...)
	return nil
}

// SavingVariables returns a copy of s whose saving order can be changed
// without modifying s.
func (s *VariableSet) SavingVariables() *VariableSet {
	o := *s
	o.elements = append([]*Variable{}, s.elements...)
	o.save = append([]string{}, s.save...)
	return &o
}

// SaveNames returns the names of the variables to save, in order.
func (s *VariableSet) SaveNames() []string { return append([]string{}, s.save...) }

// SaveLabels returns the labels of the variables to save, in order.
func (s *VariableSet) SaveLabels() []string {
	out := make([]string, len(s.save))
	for i, n := range s.save {
		out[i] = s.MustGet(n).Label()
	}
	return out
}

// SaveVariables returns the variables to save, in order.
func (s *VariableSet) SaveVariables() []*Variable {
	out := make([]*Variable, len(s.save))
	for i, n := range s.save {
		out[i] = s.MustGet(n)
	}
	return out
}

// NameFormats returns the name formats of the variables to save.
func (s *VariableSet) NameFormats() []string {
	var out []string
	for _, v := range s.SaveVariables() {
		out = append(out, v.NameFormat)
	}
	return out
}

// ValueFormats returns the value formats of the variables to save.
func (s *VariableSet) ValueFormats() []string {
	var out []string
	for _, v := range s.SaveVariables() {
		out = append(out, v.ValueFormat)
	}
	return out
}

// NameSaveFormat returns the name formats joined with a space.
func (s *VariableSet) NameSaveFormat() string { return strings.Join(s.NameFormats(), " ") }

// ValueSaveFormat returns the value formats joined with a space.
func (s *VariableSet) ValueSaveFormat() string { return strings.Join(s.ValueFormats(), " ") }
