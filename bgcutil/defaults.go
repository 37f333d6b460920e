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
	_ "embed"
	"io/ioutil"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spatialmodel/bgcdata"
	"github.com/spatialmodel/bgcdata/providers"
	"github.com/spatialmodel/bgcdata/source"
)

var (
	//go:embed defaults/variables.toml
	defaultVariables []byte

	//go:embed defaults/water_masses.toml
	defaultWaterMasses []byte

	//go:embed defaults/providers.toml
	defaultProviders []byte
)

// Defaults holds the variable templates, the water masses and the
// configurations of the providers.
type Defaults struct {
	Templates   providers.Templates
	WaterMasses map[string]*bgcdata.WaterMass
	Providers   map[string]providers.Config
}

// readDefault returns the content of the file at path, or the embedded
// content if path is empty.
func readDefault(path, name string, embedded []byte) (string, []byte, error) {
	if path == "" {
		return "default " + name, embedded, nil
	}
	b, err := ioutil.ReadFile(os.ExpandEnv(path))
	if err != nil {
		return "", nil, errors.Wrapf(err, "bgcutil: reading %s", path)
	}
	return path, b, nil
}

// LoadDefaults reads and type checks the variables, water masses and
// providers TOML files. Empty paths use the embedded defaults.
func LoadDefaults(variables, waterMasses, providersFile string) (*Defaults, error) {
	d := new(Defaults)

	name, b, err := readDefault(variables, "variables.toml", defaultVariables)
	if err != nil {
		return nil, err
	}
	tp, err := ParseToml(name, b, true)
	if err != nil {
		return nil, err
	}
	if err = tp.CheckTypes(); err != nil {
		return nil, err
	}
	if d.Templates, err = (&DefaultTemplatesParser{TomlParser: tp}).Templates(); err != nil {
		return nil, err
	}

	name, b, err = readDefault(waterMasses, "water_masses.toml", defaultWaterMasses)
	if err != nil {
		return nil, err
	}
	if tp, err = ParseToml(name, b, true); err != nil {
		return nil, err
	}
	if err = tp.CheckTypes(); err != nil {
		return nil, err
	}
	if d.WaterMasses, err = (&WaterMassesParser{TomlParser: tp}).WaterMasses(); err != nil {
		return nil, err
	}

	name, b, err = readDefault(providersFile, "providers.toml", defaultProviders)
	if err != nil {
		return nil, err
	}
	if tp, err = ParseToml(name, b, true); err != nil {
		return nil, err
	}
	if err = tp.CheckTypes(); err != nil {
		return nil, err
	}
	if d.Providers, err = (&ProvidersParser{TomlParser: tp}).Configs(); err != nil {
		return nil, err
	}
	return d, nil
}

// Template returns the template of quantity key, such as "salinity".
func (d *Defaults) Template(key string) (*bgcdata.Template, error) {
	t, ok := d.Templates[key]
	if !ok {
		return nil, errors.Wrapf(bgcdata.ErrInvalidParameterKey, "no default variable %s", key)
	}
	return t, nil
}

// ReferenceVariables returns the variables to use when reading back saved
// files.
func (d *Defaults) ReferenceVariables() []*bgcdata.Variable {
	keys := make([]string, 0, len(d.Templates))
	for k := range d.Templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*bgcdata.Variable, len(keys))
	for i, k := range keys {
		v := d.Templates[k].NotInFile()
		v.Origin = bgcdata.Parsed
		out[i] = v
	}
	return out
}

// label returns the name of the template key, or def without template.
func (d *Defaults) label(key, def string) string {
	if t, ok := d.Templates[key]; ok {
		return t.Name
	}
	return def
}

// ReadOptions returns the options to read the files saved with the
// default templates.
func (d *Defaults) ReadOptions(category string) bgcdata.ReadOptions {
	opts := bgcdata.DefaultReadOptions()
	opts.ProviderLabel = d.label(providers.ProviderKey, opts.ProviderLabel)
	opts.ExpocodeLabel = d.label(providers.ExpocodeKey, opts.ExpocodeLabel)
	opts.DateLabel = d.label(providers.DateKey, opts.DateLabel)
	opts.YearLabel = d.label(providers.YearKey, opts.YearLabel)
	opts.MonthLabel = d.label(providers.MonthKey, opts.MonthLabel)
	opts.DayLabel = d.label(providers.DayKey, opts.DayLabel)
	opts.HourLabel = d.label(providers.HourKey, opts.HourLabel)
	opts.LatitudeLabel = d.label(providers.LatitudeKey, opts.LatitudeLabel)
	opts.LongitudeLabel = d.label(providers.LongitudeKey, opts.LongitudeLabel)
	opts.DepthLabel = d.label(providers.DepthKey, opts.DepthLabel)
	opts.Reference = d.ReferenceVariables()
	opts.Category = category
	return opts
}

// WaterMass returns the water mass of the given acronym.
func (d *Defaults) WaterMass(acronym string) (*bgcdata.WaterMass, error) {
	wm, ok := d.WaterMasses[acronym]
	if !ok {
		names := make([]string, 0, len(d.WaterMasses))
		for k := range d.WaterMasses {
			names = append(names, k)
		}
		sort.Strings(names)
		return nil, errors.Wrapf(bgcdata.ErrInvalidParameterKey, "%s is not a water mass, valid acronyms are %s",
			acronym, strings.Join(names, ", "))
	}
	return wm, nil
}

// Source returns the data source of provider name.
func (d *Defaults) Source(name string) (*source.DataSource, error) {
	cfg, ok := d.Providers[name]
	if !ok {
		return nil, errors.Wrapf(bgcdata.ErrInvalidParameterKey, "no configuration for provider %s", name)
	}
	return providers.Build(name, cfg, d.Templates)
}
