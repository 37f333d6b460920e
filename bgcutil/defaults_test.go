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
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/spatialmodel/bgcdata"
	"github.com/spatialmodel/bgcdata/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	os.Setenv("BGCDATA_INPUT", "/data/input")
	defer os.Unsetenv("BGCDATA_INPUT")
	d, err := LoadDefaults("", "", "")
	require.NoError(t, err)

	t.Run("templates", func(t *testing.T) {
		sal, err := d.Template(providers.SalinityKey)
		require.NoError(t, err)
		assert.Equal(t, "PSAL", sal.Name)
		assert.Equal(t, "[psu]", sal.Unit)
		assert.True(t, math.IsNaN(sal.Default.(float64)))
		provider, err := d.Template(providers.ProviderKey)
		require.NoError(t, err)
		assert.Equal(t, "", provider.Default)
		_, err = d.Template("unknown")
		assert.Equal(t, bgcdata.ErrInvalidParameterKey, errors.Cause(err))
	})
	t.Run("water masses", func(t *testing.T) {
		aw, err := d.WaterMass("AW")
		require.NoError(t, err)
		assert.Equal(t, "Atlantic Water", aw.Name)
		assert.Equal(t, 3.0, aw.PTemperature[0])
		assert.True(t, math.IsNaN(aw.PTemperature[1]))
		assert.True(t, math.IsNaN(aw.SigmaT[0]))
		aaw, err := d.WaterMass("AAW")
		require.NoError(t, err)
		assert.Equal(t, [2]float64{27.97, 28.02}, aaw.SigmaT)
		_, err = d.WaterMass("XX")
		assert.Equal(t, bgcdata.ErrInvalidParameterKey, errors.Cause(err))
	})
	t.Run("providers", func(t *testing.T) {
		hycom := d.Providers["HYCOM"]
		assert.Equal(t, "/data/input/HYCOM", hycom.Path)
		assert.Equal(t, "model", hycom.Category)
		assert.Equal(t, "regional.grid", hycom.RegionalGridBasename)
		assert.Equal(t, "in_situ", d.Providers["ICES"].Category)
		assert.Len(t, d.Providers, len(providers.Names()))

		ds, err := d.Source("ICES")
		require.NoError(t, err)
		assert.Equal(t, "ICES", ds.Provider)
		_, err = d.Source("NOPE")
		assert.Equal(t, bgcdata.ErrInvalidParameterKey, errors.Cause(err))
	})
	t.Run("read options", func(t *testing.T) {
		opts := d.ReadOptions("satellite")
		assert.Equal(t, "DEPH", opts.DepthLabel)
		assert.Equal(t, "satellite", opts.Category)
		assert.Len(t, opts.Reference, len(d.Templates))
		for _, v := range opts.Reference {
			assert.Equal(t, bgcdata.Parsed, v.Origin)
		}
	})
}

func TestLoadDefaultsWrongType(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "water_masses.toml")
	content := `#? X.NAME: str
#? X.ACRONYM: str
#? X.SALINITY_MIN: int | float
[X]
NAME = "X water"
ACRONYM = "X"
SALINITY_MIN = "high"
`
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
	_, err := LoadDefaults("", path, "")
	assert.Equal(t, bgcdata.ErrWrongType, errors.Cause(err))

	_, err = LoadDefaults("", filepath.Join(dir, "missing.toml"), "")
	assert.Error(t, err)
}
