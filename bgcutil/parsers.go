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

package bgcutil

import (
	"bufio"
	"bytes"
	"fmt"
	"io/ioutil"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/spatialmodel/bgcdata"
	"github.com/spatialmodel/bgcdata/providers"
	"github.com/spf13/cast"
)

// hintPrefix starts the comment lines holding type hints.
const hintPrefix = "#? "

// typeHint is one of the types a value can have. Elem is set for
// iterables, such as "list[str]".
type typeHint struct {
	Name, Elem string
}

var knownTypes = map[string]bool{
	"str":            true,
	"int":            true,
	"float":          true,
	"bool":           true,
	"list":           true,
	"tuple":          true,
	"datetime64[ns]": true,
}

func (h typeHint) String() string {
	if h.Elem == "" {
		return h.Name
	}
	return h.Name + "[" + h.Elem + "]"
}

func scalarMatches(name string, v interface{}) bool {
	switch name {
	case "str":
		_, ok := v.(string)
		return ok
	case "int":
		_, ok := v.(int64)
		return ok
	case "float":
		_, ok := v.(float64)
		return ok
	case "bool":
		_, ok := v.(bool)
		return ok
	case "list", "tuple":
		_, ok := v.([]interface{})
		return ok
	case "datetime64[ns]":
		_, ok := v.(time.Time)
		return ok
	}
	return false
}

func (h typeHint) matches(v interface{}) bool {
	if h.Elem == "" {
		return scalarMatches(h.Name, v)
	}
	items, ok := v.([]interface{})
	if !ok {
		return false
	}
	for _, x := range items {
		if !scalarMatches(h.Elem, x) {
			return false
		}
	}
	return true
}

// parseHint parses the types of a hint line, without its prefix, such as
// "SAVING_DIR: str" or "BIN_SIZE: list[float] | int | float".
func parseHint(line string) ([]string, []typeHint, error) {
	parts := strings.SplitN(line, ": ", 2)
	if len(parts) != 2 {
		return nil, nil, errors.Wrapf(bgcdata.ErrImpossibleTypeParsing, "malformed type hint %q", line)
	}
	keys := strings.Split(strings.TrimSpace(parts[0]), ".")
	var hints []typeHint
	for _, s := range strings.Split(strings.Replace(parts[1], ":", "", -1), " | ") {
		s = strings.TrimSpace(s)
		h := typeHint{Name: s}
		if i := strings.Index(s, "["); i > 0 && strings.HasSuffix(s, "]") && !knownTypes[s] {
			h = typeHint{Name: s[:i], Elem: s[i+1 : len(s)-1]}
		}
		if !knownTypes[h.Name] || (h.Elem != "" && !knownTypes[h.Elem]) {
			return nil, nil, errors.Wrapf(bgcdata.ErrImpossibleTypeParsing, "unknown type %q in hint of %s",
				s, strings.Join(keys, "."))
		}
		hints = append(hints, h)
	}
	return keys, hints, nil
}

// TomlParser holds the content of a TOML file. Lines of the file starting
// with "#? " give the types its values can have, as in
//  #? SAVING_DIR: str
//  #? BIN_SIZE: list[float] | int | float
// and are used to check the values.
type TomlParser struct {
	// Name identifies the file in error messages.
	Name string

	check    bool
	elements map[string]interface{}
	types    map[string][]typeHint
}

// NewTomlParser reads the TOML file at path. Types are only checked when
// check is true.
func NewTomlParser(path string, check bool) (*TomlParser, error) {
	b, err := ioutil.ReadFile(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("bgcutil: reading %s: %v", path, err)
	}
	return ParseToml(path, b, check)
}

// ParseToml parses the TOML content b of the file called name.
func ParseToml(name string, b []byte, check bool) (*TomlParser, error) {
	p := &TomlParser{
		Name:     name,
		check:    check,
		elements: make(map[string]interface{}),
		types:    make(map[string][]typeHint),
	}
	if _, err := toml.Decode(string(b), &p.elements); err != nil {
		return nil, fmt.Errorf("bgcutil: decoding %s: %v", name, err)
	}
	if !check {
		return p, nil
	}
	s := bufio.NewScanner(bytes.NewReader(b))
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if !strings.HasPrefix(line, hintPrefix) {
			continue
		}
		keys, hints, err := parseHint(line[len(hintPrefix):])
		if err != nil {
			return nil, errors.Wrapf(err, "in %s", name)
		}
		p.types[strings.Join(keys, ".")] = hints
	}
	return p, s.Err()
}

// Keys returns the sorted top level keys.
func (p *TomlParser) Keys() []string {
	out := make([]string, 0, len(p.elements))
	for k := range p.elements {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func copyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, x := range t {
			out[k] = copyValue(x)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, x := range t {
			out[i] = copyValue(x)
		}
		return out
	}
	return v
}

func (p *TomlParser) get(keys []string) (interface{}, error) {
	if len(keys) == 0 {
		return p.elements, nil
	}
	var v interface{} = p.elements
	for i, k := range keys {
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, errors.Wrapf(bgcdata.ErrInvalidParameterKey, "%s in %s", strings.Join(keys[:i+1], "."), p.Name)
		}
		if v, ok = m[k]; !ok {
			return nil, errors.Wrapf(bgcdata.ErrInvalidParameterKey, "%s in %s", strings.Join(keys[:i+1], "."), p.Name)
		}
	}
	return v, nil
}

// Get returns a copy of the value at the path given by keys: Get("A", "B")
// returns the value of A.B.
func (p *TomlParser) Get(keys ...string) (interface{}, error) {
	v, err := p.get(keys)
	if err != nil {
		return nil, err
	}
	return copyValue(v), nil
}

// Set sets the value at the path given by keys. The tables above the
// value must exist.
func (p *TomlParser) Set(keys []string, value interface{}) error {
	if len(keys) == 0 {
		return errors.Wrapf(bgcdata.ErrInvalidParameterKey, "no key to set in %s", p.Name)
	}
	parent, err := p.get(keys[:len(keys)-1])
	if err != nil {
		return err
	}
	m, ok := parent.(map[string]interface{})
	if !ok {
		return errors.Wrapf(bgcdata.ErrInvalidParameterKey, "%s in %s is not a table",
			strings.Join(keys[:len(keys)-1], "."), p.Name)
	}
	m[keys[len(keys)-1]] = value
	return nil
}

// CheckType returns an error when the value at keys matches none of its
// hinted types.
func (p *TomlParser) CheckType(keys ...string) error {
	v, err := p.get(keys)
	if err != nil {
		return err
	}
	path := strings.Join(keys, ".")
	hints, ok := p.types[path]
	if !ok {
		return errors.Wrapf(bgcdata.ErrImpossibleTypeParsing, "no type hint for %s in %s", path, p.Name)
	}
	names := make([]string, len(hints))
	for i, h := range hints {
		if h.matches(v) {
			return nil
		}
		names[i] = h.String()
	}
	return errors.Wrapf(bgcdata.ErrWrongType, "type of %s from %s is incorrect, must be one of these types: %s",
		path, p.Name, strings.Join(names, ", "))
}

// CheckTypes checks the types of all the values below keys. It does
// nothing when the parser does not check types.
func (p *TomlParser) CheckTypes(keys ...string) error {
	if !p.check {
		return nil
	}
	v, err := p.get(keys)
	if err != nil {
		return err
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return p.CheckType(keys...)
	}
	sub := make([]string, 0, len(m))
	for k := range m {
		sub = append(sub, k)
	}
	sort.Strings(sub)
	for _, k := range sub {
		if err := p.CheckTypes(append(append([]string{}, keys...), k)...); err != nil {
			return err
		}
	}
	return nil
}

// CheckHinted checks the type of every value having a type hint. Values
// without hint are not checked.
func (p *TomlParser) CheckHinted() error {
	paths := make([]string, 0, len(p.types))
	for path := range p.types {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		keys := strings.Split(path, ".")
		if _, err := p.get(keys); err != nil {
			continue
		}
		if err := p.CheckType(keys...); err != nil {
			return err
		}
	}
	return nil
}

// table returns the table at key.
func (p *TomlParser) table(key string) (map[string]interface{}, error) {
	v, err := p.get([]string{key})
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, errors.Wrapf(bgcdata.ErrWrongType, "%s in %s is not a table", key, p.Name)
	}
	return m, nil
}

// DefaultTemplatesParser builds variable templates from a TOML file
// holding one table per variable, with the fields NAME, UNIT, TYPE,
// DEFAULT, NAME_FORMAT and VALUE_FORMAT.
type DefaultTemplatesParser struct {
	*TomlParser
}

// Get returns the template of variable key.
func (p *DefaultTemplatesParser) Get(key string) (*bgcdata.Template, error) {
	m, err := p.table(key)
	if err != nil {
		return nil, err
	}
	name, err := cast.ToStringE(m["NAME"])
	if err != nil {
		return nil, errors.Wrapf(bgcdata.ErrWrongType, "%s.NAME in %s: %v", key, p.Name, err)
	}
	t := bgcdata.NewTemplate(name, cast.ToString(m["UNIT"]), cast.ToString(m["TYPE"]), templateDefault(m["TYPE"], m["DEFAULT"]))
	if f := cast.ToString(m["NAME_FORMAT"]); f != "" {
		t.NameFormat = f
	}
	if f := cast.ToString(m["VALUE_FORMAT"]); f != "" {
		t.ValueFormat = f
	}
	return t, nil
}

// templateDefault converts the DEFAULT value to the type of the variable.
func templateDefault(typ, def interface{}) interface{} {
	switch cast.ToString(typ) {
	case "int", "float":
		f, err := cast.ToFloat64E(def)
		if err != nil {
			return math.NaN()
		}
		return f
	case "datetime64[ns]":
		d, err := cast.ToTimeE(def)
		if err != nil {
			return nil
		}
		return d
	}
	return cast.ToString(def)
}

// Templates returns all the templates, keyed by their table name.
func (p *DefaultTemplatesParser) Templates() (providers.Templates, error) {
	out := make(providers.Templates)
	for _, k := range p.Keys() {
		t, err := p.Get(k)
		if err != nil {
			return nil, err
		}
		out[k] = t
	}
	return out, nil
}

// WaterMassesParser builds water masses from a TOML file holding one table
// per water mass, with the fields NAME, ACRONYM and the optional limits
// POTENTIAL_TEMPERATURE_MIN, POTENTIAL_TEMPERATURE_MAX, SALINITY_MIN,
// SALINITY_MAX, SIGMAT_MIN and SIGMAT_MAX.
type WaterMassesParser struct {
	*TomlParser
}

func limits(m map[string]interface{}, prefix string) [2]float64 {
	out := bgcdata.Unbounded
	for i, suffix := range []string{"_MIN", "_MAX"} {
		if v, ok := m[prefix+suffix]; ok {
			if f, err := cast.ToFloat64E(v); err == nil {
				out[i] = f
			}
		}
	}
	return out
}

// Get returns the water mass of table key.
func (p *WaterMassesParser) Get(key string) (*bgcdata.WaterMass, error) {
	m, err := p.table(key)
	if err != nil {
		return nil, err
	}
	return bgcdata.NewWaterMass(
		cast.ToString(m["NAME"]),
		cast.ToString(m["ACRONYM"]),
		limits(m, "POTENTIAL_TEMPERATURE"),
		limits(m, "SALINITY"),
		limits(m, "SIGMAT"),
	), nil
}

// WaterMasses returns all the water masses, keyed by their table name.
func (p *WaterMassesParser) WaterMasses() (map[string]*bgcdata.WaterMass, error) {
	out := make(map[string]*bgcdata.WaterMass)
	for _, k := range p.Keys() {
		wm, err := p.Get(k)
		if err != nil {
			return nil, err
		}
		out[k] = wm
	}
	return out, nil
}

// ProvidersParser reads the configuration of the providers from a TOML
// file holding one table per provider, with the fields PATH, CATEGORY,
// EXCLUDE and REGIONAL_GRID_BASENAME.
type ProvidersParser struct {
	*TomlParser
}

// Get returns the configuration of provider name, with an expanded path.
func (p *ProvidersParser) Get(name string) (providers.Config, error) {
	m, err := p.table(name)
	if err != nil {
		return providers.Config{}, err
	}
	exclude, err := stringList(m["EXCLUDE"])
	if err != nil {
		return providers.Config{}, errors.Wrapf(err, "%s.EXCLUDE in %s", name, p.Name)
	}
	return providers.Config{
		Path:                 os.ExpandEnv(cast.ToString(m["PATH"])),
		Category:             cast.ToString(m["CATEGORY"]),
		Exclude:              exclude,
		RegionalGridBasename: cast.ToString(m["REGIONAL_GRID_BASENAME"]),
	}, nil
}

// stringList converts a TOML array of strings. Scalars are not lists.
func stringList(v interface{}) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return t, nil
	case []interface{}:
		out := make([]string, len(t))
		for i, x := range t {
			s, ok := x.(string)
			if !ok {
				return nil, errors.Wrapf(bgcdata.ErrWrongType, "%#v is not a string", x)
			}
			out[i] = s
		}
		return out, nil
	}
	return nil, errors.Wrapf(bgcdata.ErrWrongType, "%#v is not a list of strings", v)
}

// Configs returns the configurations of all the providers.
func (p *ProvidersParser) Configs() (map[string]providers.Config, error) {
	out := make(map[string]providers.Config)
	for _, k := range p.Keys() {
		cfg, err := p.Get(k)
		if err != nil {
			return nil, err
		}
		out[k] = cfg
	}
	return out, nil
}
