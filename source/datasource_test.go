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

package source

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/spatialmodel/bgcdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const csvJanuary = `EXPOCODE,DATE,LATITUDE,LONGITUDE,DEPH,TEMP,TEMP_QC,PSAL
E1,2020-01-15,60.5,5.1,10,5.5,1,35.0
E1,2020-01-15,60.5,5.1,20,4.5,1,35.1
`

const csvMarch = `EXPOCODE,DATE,LATITUDE,LONGITUDE,DEPH,TEMP,TEMP_QC,PSAL
E3,2020-03-02,62,7,5,3.5,1,34
`

func csvSource(t *testing.T, dir string, vs *bgcdata.VariableSet) *DataSource {
	writeFile(t, dir, "data_20200115.csv", csvJanuary)
	writeFile(t, dir, "data_20200302.csv", csvMarch)
	writeFile(t, dir, "notes.txt", "not data")
	return New(Parameters{
		Provider:  "TEST",
		Format:    CSV,
		Dir:       dir,
		Category:  "in_situ",
		Pattern:   "data_{years}{months}{days}.csv",
		Variables: vs,
	})
}

func TestDataSourceLoadAll(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	ds := csvSource(t, dir, testVariables(t))

	s, err := ds.LoadAll(nil)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Data.Len())
	assert.Equal(t, []string{"TEST"}, s.Providers)
	assert.Equal(t, "in_situ", s.Category)

	c := bgcdata.NewConstraints()
	c.AddBoundary("DATE", day(2020, 1, 1), day(2020, 1, 31))
	s, err = ds.LoadAll(c)
	require.NoError(t, err)
	assert.Equal(t, []string{"E1", "E1"}, s.Data.String("EXPOCODE"))
}

func TestDataSourceNoFile(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	ds := New(Parameters{
		Provider:  "TEST",
		Format:    CSV,
		Dir:       dir,
		Category:  "in_situ",
		Pattern:   "data_{years}{months}{days}.csv",
		Variables: testVariables(t),
	})
	s, err := ds.LoadAll(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Data.Len())
	assert.True(t, s.Data.Has("TEMP"))
}

func TestDataSourceFeatures(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	temp, psal := testTemperature(), testSalinity()
	sigt := bgcdata.NewSigmaT(psal, temp)
	vs, err := bgcdata.NewVariableSet(testRoles(), temp, sigt.Variable())
	require.NoError(t, err)
	ds := csvSource(t, dir, vs)

	s, err := ds.LoadAll(nil)
	require.NoError(t, err)
	assert.True(t, s.Variables.Has("SIGT"))
	assert.True(t, s.Data.Has("SIGT"))
	assert.False(t, s.Variables.Has("PSAL"), "salinity is only loaded to compute SIGT")
	assert.False(t, s.Data.Has("PSAL"))
	for _, v := range s.Data.Float("SIGT") {
		assert.InDelta(t, 27.5, v, 1)
	}
}

func TestDataSourceSavingOrder(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	ds := csvSource(t, dir, testVariables(t))
	assert.Equal(t, ds.Variables.SaveLabels(), ds.SavingOrder())

	require.NoError(t, ds.SetSavingOrder([]string{"DATE", "TEMP"}))
	assert.Equal(t, []string{"DATE", "TEMP"}, ds.SavingOrder())
	err := ds.SetSavingOrder([]string{"CPHL"})
	assert.Equal(t, bgcdata.ErrIncorrectVariableName, errors.Cause(err))

	s, err := ds.LoadAll(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"DATE", "TEMP"}, s.Variables.SaveLabels())
}

func TestDataSourceAsTemplate(t *testing.T) {
	ds := New(Parameters{
		Provider:  "TEST",
		Format:    CSV,
		Exclude:   []string{"a.csv"},
		Variables: testVariables(t),
	})
	p := ds.AsTemplate()
	p.Exclude[0] = "b.csv"
	_, err := p.Variables.Pop("PSAL")
	require.NoError(t, err)
	assert.Equal(t, "a.csv", ds.Exclude[0])
	assert.True(t, ds.Variables.Has("PSAL"))
	assert.Equal(t, "TEST", New(p).Provider)
}

func TestDataSourceUnsupportedFormat(t *testing.T) {
	ds := New(Parameters{Provider: "TEST", Format: "xlsx", Variables: testVariables(t)})
	_, err := ds.LoadAll(nil)
	assert.Equal(t, bgcdata.ErrUnsupportedLoadingFormat, errors.Cause(err))
}

func TestDataSourceLoadAndSave(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	in := filepath.Join(dir, "in")
	require.NoError(t, os.Mkdir(in, 0755))
	ds := csvSource(t, in, testVariables(t))
	out := filepath.Join(dir, "out")

	g := bgcdata.DateRangeGenerator{Start: day(2020, 1, 1), End: day(2020, 3, 31), Interval: bgcdata.Month}
	require.NoError(t, ds.LoadAndSave(out, g, nil))

	files, err := ioutil.ReadDir(filepath.Join(out, "TEST"))
	require.NoError(t, err)
	assert.Len(t, files, 3)
	b, err := ioutil.ReadFile(filepath.Join(out, "TEST", "nutrients_TEST_20200101-20200131.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "E1")
	_, err = os.Stat(filepath.Join(out, "bgc_in_situ_20200301.txt"))
	assert.NoError(t, err)
}

func TestDataSourceABFiles(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	grid, _ := writeHYCOM(t, dir)
	ds := New(Parameters{
		Provider:  "HYCOM",
		Format:    ABFiles,
		Dir:       dir,
		Category:  "model",
		Pattern:   `archm\.{years}_[0-9]{3}_12\.[ab]`,
		Variables: testVariables(t),
		Options:   ReadOptions{GridBasename: grid},
	})
	s, err := ds.LoadAll(nil)
	require.NoError(t, err)
	assert.Equal(t, 11, s.Data.Len(), "the .a and .b files of an archive are loaded once")
}
