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

// Package providers holds the data sources of the known data providers.
// A data source is built from the default variable templates and the
// configuration of the provider: where its files are, their category and
// which files to leave out.
package providers

import (
	"math"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spatialmodel/bgcdata"
	"github.com/spatialmodel/bgcdata/source"
)

// Config is the configuration of one provider.
type Config struct {
	Path     string   `toml:"PATH"`
	Category string   `toml:"CATEGORY"`
	Exclude  []string `toml:"EXCLUDE"`

	// RegionalGridBasename is the basename of the grid files of providers
	// of AB files.
	RegionalGridBasename string `toml:"REGIONAL_GRID_BASENAME"`
}

// Templates are the default variable templates, keyed by the name of the
// quantity they describe ("temperature", "salinity", ...).
type Templates map[string]*bgcdata.Template

// Keys of the templates used by the providers.
const (
	ProviderKey    = "provider"
	ExpocodeKey    = "expocode"
	DateKey        = "date"
	YearKey        = "year"
	MonthKey       = "month"
	DayKey         = "day"
	HourKey        = "hour"
	LongitudeKey   = "longitude"
	LatitudeKey    = "latitude"
	DepthKey       = "depth"
	TemperatureKey = "temperature"
	SalinityKey    = "salinity"
	OxygenKey      = "oxygen"
	PhosphateKey   = "phosphate"
	NitrateKey     = "nitrate"
	SilicateKey    = "silicate"
	ChlorophyllKey = "chlorophyll"
	DiatomKey      = "diatom"
	FlagellateKey  = "flagellate"
)

// A Constructor builds the data source of a provider.
type Constructor func(cfg Config, t Templates) (*source.DataSource, error)

// Registry maps the provider names to the constructors of their data
// sources.
var Registry = map[string]Constructor{
	"ARGO":        Argo,
	"CLIVAR":      Clivar,
	"CMEMS":       CMEMS,
	"ESACCI-OC":   ESACCIOC,
	"GLODAPv2":    GLODAPv2,
	"GLODAP_2022": GLODAP2022,
	"HYCOM":       HYCOM,
	"ICES":        ICES,
	"IMR":         IMR,
	"NMDC":        NMDC,
}

// Names returns the sorted names of the registered providers.
func Names() []string {
	out := make([]string, 0, len(Registry))
	for name := range Registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Build returns the data source of the provider called name.
func Build(name string, cfg Config, t Templates) (*source.DataSource, error) {
	c, ok := Registry[name]
	if !ok {
		return nil, errors.Wrapf(bgcdata.ErrInvalidParameterKey, "%s is not a provider, valid providers are %s",
			name, strings.Join(Names(), ", "))
	}
	return c(cfg, t)
}

// setBuilder hands out templates and keeps the first missing one.
type setBuilder struct {
	t   Templates
	err error
}

func (b *setBuilder) tpl(key string) *bgcdata.Template {
	t, ok := b.t[key]
	if !ok || t == nil {
		if b.err == nil {
			b.err = errors.Wrapf(bgcdata.ErrVariableInstantiation, "no default template for %s", key)
		}
		return bgcdata.NewTemplate(key, "[]", "float", math.NaN())
	}
	return t
}

// set returns the variable set made of the roles and the other variables,
// or the first missing template error.
func (b *setBuilder) set(r bgcdata.Roles, others ...*bgcdata.Variable) (*bgcdata.VariableSet, error) {
	if b.err != nil {
		return nil, b.err
	}
	return bgcdata.NewVariableSet(r, others...)
}

func as(names ...string) []bgcdata.Alias {
	out := make([]bgcdata.Alias, len(names))
	for i, n := range names {
		out[i] = bgcdata.Alias{Name: n}
	}
	return out
}

func negate(x float64) float64 { return -x }

func negativeAbs(x float64) float64 { return -math.Abs(x) }

// belowDetection drops chlorophyll values under 0.01 mg/m3.
func belowDetection(x float64) float64 {
	if x < 0.01 {
		return math.NaN()
	}
	return x
}

func newSource(name, format string, cfg Config, pattern bgcdata.FileNamePattern, vs *bgcdata.VariableSet, opts source.ReadOptions) *source.DataSource {
	return source.New(source.Parameters{
		Provider:  name,
		Format:    format,
		Dir:       cfg.Path,
		Category:  cfg.Category,
		Exclude:   cfg.Exclude,
		Pattern:   pattern,
		Variables: vs,
		Options:   opts,
	})
}
