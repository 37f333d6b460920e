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

	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// Default formats used to write variable names and values.
const (
	DefaultNameFormat  = "%-15s"
	DefaultValueFormat = "%15s"
)

// Template holds the description of a variable that is shared by all the
// providers: its name, unit, type, default value and the formats used to
// save it. Templates are turned into variables with InFileAs or NotInFile.
type Template struct {
	Name        string
	Unit        string
	Type        string
	Default     interface{}
	NameFormat  string
	ValueFormat string
}

// NewTemplate returns a template with the default formats.
func NewTemplate(name, unit, typ string, def interface{}) *Template {
	return &Template{
		Name:        name,
		Unit:        unit,
		Type:        typ,
		Default:     def,
		NameFormat:  DefaultNameFormat,
		ValueFormat: DefaultValueFormat,
	}
}

func (t *Template) variable(o Origin) *Variable {
	v := new(Variable)
	if err := copier.Copy(v, t); err != nil {
		panic(err)
	}
	if v.NameFormat == "" {
		v.NameFormat = DefaultNameFormat
	}
	if v.ValueFormat == "" {
		v.ValueFormat = DefaultValueFormat
	}
	v.Origin = o
	return v
}

// InFileAs returns a variable which is read from the source files under
// the given aliases. Aliases are ranked: the first one present in a file
// is used.
func (t *Template) InFileAs(aliases ...Alias) *Variable {
	v := t.variable(Existing)
	v.Aliases = append([]Alias{}, aliases...)
	return v
}

// NotInFile returns a variable which does not exist in the source files
// and is filled with its default value.
func (t *Template) NotInFile() *Variable {
	return t.variable(NotExisting)
}

// Alias is the name of a variable in a source file, with the optional
// column holding its quality flag and the flag values to keep.
type Alias struct {
	Name       string
	FlagName   string
	FlagValues []interface{}
}

// FlaggedAlias returns an alias with a flag column.
func FlaggedAlias(name, flag string, values ...interface{}) Alias {
	return Alias{Name: name, FlagName: flag, FlagValues: values}
}

// HasFlag reports whether the alias refers to a flag column.
func (a Alias) HasFlag() bool { return a.FlagName != "" && len(a.FlagValues) > 0 }

// ParseAlias builds an alias from a configuration value: either a column
// name, a one element list holding the column name or a three elements
// list holding the column name, the flag column name and the flag values.
func ParseAlias(v interface{}) (Alias, error) {
	switch t := v.(type) {
	case string:
		return Alias{Name: t}, nil
	case Alias:
		return t, nil
	}
	l, err := cast.ToSliceE(v)
	if err != nil {
		return Alias{}, errors.Wrapf(ErrVariableInstantiation, "alias %v", v)
	}
	switch len(l) {
	case 1:
		return Alias{Name: cast.ToString(l[0])}, nil
	case 3:
		a := Alias{Name: cast.ToString(l[0])}
		if l[1] != nil {
			a.FlagName = cast.ToString(l[1])
		}
		if l[2] != nil {
			vals, err := cast.ToSliceE(l[2])
			if err != nil {
				return Alias{}, errors.Wrapf(ErrVariableInstantiation, "flag values %v", l[2])
			}
			a.FlagValues = vals
		}
		return a, nil
	}
	return Alias{}, errors.Wrapf(ErrVariableInstantiation,
		"alias %v must hold either 1 or 3 elements, not %d", v, len(l))
}

// Origin tells where the values of a variable come from.
type Origin int

// Origins of variables.
const (
	// NotExisting variables are filled with their default value.
	NotExisting Origin = iota
	// Existing variables are read from source files.
	Existing
	// Parsed variables are read back from saved files.
	Parsed
	// Computed variables are built by a Feature.
	Computed
)

// Variable describes a column of the data.
type Variable struct {
	Name        string
	Unit        string
	Type        string
	Default     interface{}
	NameFormat  string
	ValueFormat string
	Origin      Origin
	Aliases     []Alias

	removeIfNaN    bool
	removeIfAllNaN bool
	correction     func(float64) float64
	feature        Feature
}

// NewParsedVariable returns a variable read from a saved file.
func NewParsedVariable(name, unit, typ string) *Variable {
	return &Variable{
		Name:        name,
		Unit:        unit,
		Type:        typ,
		NameFormat:  DefaultNameFormat,
		ValueFormat: DefaultValueFormat,
		Origin:      Parsed,
	}
}

// Label is the name of the column holding the variable values.
func (v *Variable) Label() string { return v.Name }

// Kind returns the kind of the column holding the variable values.
func (v *Variable) Kind() Kind { return KindFromType(v.Type) }

// Exists reports whether the variable is read from the source files.
func (v *Variable) Exists() bool { return v.Origin == Existing }

// IsFeature reports whether the variable is computed from other variables.
func (v *Variable) IsFeature() bool { return v.feature != nil }

// Feature returns the feature computing the variable, or nil.
func (v *Variable) Feature() Feature { return v.feature }

// RequiredVariables returns the variables needed to compute a feature
// variable.
func (v *Variable) RequiredVariables() []*Variable {
	if v.feature == nil {
		return nil
	}
	return v.feature.RequiredVariables()
}

// RemoveIfNaN reports whether rows must be removed when the variable is
// missing.
func (v *Variable) RemoveIfNaN() bool { return v.removeIfNaN }

// RemoveIfAllNaN reports whether rows must be removed when this variable
// and all the other variables with this property are missing.
func (v *Variable) RemoveIfAllNaN() bool { return v.removeIfAllNaN }

// Correction returns the correction function of the variable, or nil.
func (v *Variable) Correction() func(float64) float64 { return v.correction }

// RemoveWhenNaN marks the rows where the variable is missing for removal.
func (v *Variable) RemoveWhenNaN() *Variable {
	v.removeIfNaN = true
	return v
}

// RemoveWhenAllNaN marks the rows where this variable and the other
// variables with this property are all missing for removal.
func (v *Variable) RemoveWhenAllNaN() *Variable {
	v.removeIfAllNaN = true
	return v
}

// SetDefault sets the value used to fill missing values.
func (v *Variable) SetDefault(d interface{}) *Variable {
	v.Default = d
	return v
}

// CorrectWith sets a function applied to all values after loading.
func (v *Variable) CorrectWith(f func(float64) float64) *Variable {
	v.correction = f
	return v
}

// Copy returns a copy of v. Aliases are copied, the feature is shared.
func (v *Variable) Copy() *Variable {
	o := *v
	o.Aliases = append([]Alias(nil), v.Aliases...)
	return &o
}

// Equal reports whether v and o have the same name and unit.
func (v *Variable) Equal(o *Variable) bool {
	if v == nil || o == nil {
		return v == o
	}
	return v.key() == o.key()
}

func (v *Variable) key() string { return v.Name + "_" + v.Unit }

func (v *Variable) String() string {
	return fmt.Sprintf("%s - %s (%s)", v.Name, v.Unit, v.Type)
}

// Template returns the template matching the description of v.
func (v *Variable) Template() *Template {
	return &Template{
		Name:        v.Name,
		Unit:        v.Unit,
		Type:        v.Type,
		Default:     v.Default,
		NameFormat:  v.NameFormat,
		ValueFormat: v.ValueFormat,
	}
}
