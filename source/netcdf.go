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
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ctessum/cdf"
	"github.com/pkg/errors"
	"github.com/spatialmodel/bgcdata"
	"github.com/spf13/cast"
)

var (
	timeUnitDate  = regexp.MustCompile(`[0-9]{4}-[01][0-9]-[0-3][0-9]`)
	timeUnitClock = regexp.MustCompile(`[0-2][0-9]:[0-5][0-9]:[0-5][0-9]`)
)

// timeUnitStep returns the duration of one unit of a CF time unit such
// as "days since 1950-01-01 00:00:00". Units not starting with a known
// word are in days.
func timeUnitStep(units string) time.Duration {
	switch strings.ToLower(strings.SplitN(strings.TrimSpace(units), " ", 2)[0]) {
	case "seconds", "second", "s":
		return time.Second
	case "minutes", "minute":
		return time.Minute
	case "hours", "hour", "h":
		return time.Hour
	}
	return 24 * time.Hour
}

// timeReference returns the reference date of a CF time unit.
func timeReference(units string) (time.Time, error) {
	d := timeUnitDate.FindString(units)
	if d == "" {
		return time.Time{}, errors.Wrapf(bgcdata.ErrNetCDFLoading, "impossible to find date from time unit: %s", units)
	}
	clock := timeUnitClock.FindString(units)
	if clock == "" {
		clock = "00:00:00"
	}
	ref, err := time.Parse("2006-01-02 15:04:05", d+" "+clock)
	if err != nil {
		return time.Time{}, errors.Wrapf(bgcdata.ErrNetCDFLoading, "time unit %s: %v", units, err)
	}
	return ref, nil
}

// array is a variable of a NetCDF file.
type array struct {
	data  []float64
	shape []int
}

// ncFile is an open NetCDF file.
type ncFile struct {
	f    *cdf.File
	size int64
	path string
}

func openNetCDF(path string) (*ncFile, *os.File, error) {
	ff, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(bgcdata.ErrNetCDFLoading, "opening %s: %v", path, err)
	}
	info, err := ff.Stat()
	if err != nil {
		ff.Close()
		return nil, nil, errors.Wrapf(bgcdata.ErrNetCDFLoading, "opening %s: %v", path, err)
	}
	f, err := cdf.Open(ff)
	if err != nil {
		ff.Close()
		return nil, nil, errors.Wrapf(bgcdata.ErrNetCDFLoading, "reading header of %s: %v", path, err)
	}
	return &ncFile{f: f, size: info.Size(), path: path}, ff, nil
}

func (nc *ncFile) has(name string) bool {
	for _, v := range nc.f.Header.Variables() {
		if v == name {
			return true
		}
	}
	return false
}

// shape returns the lengths of the dimensions of a variable, the length of
// the record dimension being the number of records.
func (nc *ncFile) shape(name string) []int {
	shape := append([]int{}, nc.f.Header.Lengths(name)...)
	if nc.f.Header.IsRecordVariable(name) {
		shape[0] = int(nc.f.Header.NumRecs(nc.size))
	}
	return shape
}

// read returns the values of a variable as floats. Fill values are
// missing and packed values are unpacked. Characters are read as digits,
// blanks being missing.
func (nc *ncFile) read(name string) (*array, error) {
	h := nc.f.Header
	shape := nc.shape(name)
	n := 1
	for _, l := range shape {
		n *= l
	}
	raw, err := nc.readRaw(name, shape, n)
	if err != nil {
		return nil, errors.Wrapf(bgcdata.ErrNetCDFLoading, "reading %s from %s: %v", name, nc.path, err)
	}
	_, isChar := h.ZeroValue(name, 0).(string)
	fill := math.NaN()
	for _, a := range []string{"_FillValue", "missing_value"} {
		if v := firstAttribute(h.GetAttribute(name, a)); !math.IsNaN(v) {
			fill = v
			break
		}
	}
	if math.IsNaN(fill) && !isChar {
		fill = cast.ToFloat64(h.FillValue(name))
	}
	scale, offset := 1., 0.
	if v := firstAttribute(h.GetAttribute(name, "scale_factor")); !math.IsNaN(v) {
		scale = v
	}
	if v := firstAttribute(h.GetAttribute(name, "add_offset")); !math.IsNaN(v) {
		offset = v
	}

	data := make([]float64, n)
	switch t := raw.(type) {
	case []uint8:
		for i, b := range t {
			switch {
			case isChar && b >= '0' && b <= '9':
				data[i] = float64(b - '0')
			case isChar:
				data[i] = math.NaN()
			default:
				data[i] = float64(int8(b))
			}
		}
	case []int16:
		for i, v := range t {
			data[i] = float64(v)
		}
	case []int32:
		for i, v := range t {
			data[i] = float64(v)
		}
	case []float32:
		for i, v := range t {
			data[i] = float64(v)
		}
	case []float64:
		copy(data, t)
	}
	for i, v := range data {
		if v == fill || (!isChar && math.Abs(v) >= 9.9692099683868690e+36) {
			data[i] = math.NaN()
			continue
		}
		data[i] = v*scale + offset
	}
	return &array{data: data, shape: shape}, nil
}

// readRaw reads the n values of a variable. Record variables are read one
// record at a time.
func (nc *ncFile) readRaw(name string, shape []int, n int) (interface{}, error) {
	h := nc.f.Header
	if !h.IsRecordVariable(name) {
		r := nc.f.Reader(name, nil, nil)
		buf := r.Zero(n)
		if n == 0 {
			return buf, nil
		}
		_, err := r.Read(buf)
		return buf, err
	}
	perRecord := 1
	for _, l := range shape[1:] {
		perRecord *= l
	}
	out := h.ZeroValue(name, n)
	if _, ok := out.(string); ok {
		out = make([]uint8, n)
	}
	for rec := 0; rec < shape[0]; rec++ {
		begin := make([]int, len(shape))
		end := make([]int, len(shape))
		begin[0], end[0] = rec, rec
		for i := 1; i < len(shape); i++ {
			end[i] = shape[i] - 1
		}
		r := nc.f.Reader(name, begin, end)
		buf := r.Zero(perRecord)
		if _, err := r.Read(buf); err != nil {
			return nil, err
		}
		lo, hi := rec*perRecord, (rec+1)*perRecord
		switch t := out.(type) {
		case []uint8:
			copy(t[lo:hi], buf.([]uint8))
		case []int16:
			copy(t[lo:hi], buf.([]int16))
		case []int32:
			copy(t[lo:hi], buf.([]int32))
		case []float32:
			copy(t[lo:hi], buf.([]float32))
		case []float64:
			copy(t[lo:hi], buf.([]float64))
		}
	}
	return out, nil
}

// firstAttribute returns the first value of a numeric attribute, NaN if
// the attribute does not exist or is text.
func firstAttribute(v interface{}) float64 {
	switch t := v.(type) {
	case []uint8:
		if len(t) > 0 {
			return float64(int8(t[0]))
		}
	case []int16:
		if len(t) > 0 {
			return float64(t[0])
		}
	case []int32:
		if len(t) > 0 {
			return float64(t[0])
		}
	case []float32:
		if len(t) > 0 {
			return float64(t[0])
		}
	case []float64:
		if len(t) > 0 {
			return t[0]
		}
	}
	return math.NaN()
}

// NetCDFLoader loads NetCDF files of profiles, such as Argo files.
type NetCDFLoader struct {
	BaseLoader
}

// NewNetCDFLoader returns a loader of the NetCDF files of a provider.
func NewNetCDFLoader(provider, category string, exclude []string, variables *bgcdata.VariableSet) *NetCDFLoader {
	return &NetCDFLoader{BaseLoader: newBaseLoader(provider, category, exclude, variables)}
}

// FileID returns the station identifier held by a file name such as
// "GL_PR_PF_6902548.nc". Names with less than four parts give the name
// without extension.
func FileID(name string) string {
	parts := strings.Split(name, "_")
	id := strings.TrimSuffix(name, filepath.Ext(name))
	if len(parts) >= 4 {
		id = strings.Split(parts[3], ".")[0]
	}
	return id
}

// readVariable reads the values of the first alias of v present in the
// file. Values whose flag is not accepted are missing; missing flags are
// -1. The values of the date variable are converted to days since the
// Unix epoch. It returns nil when no alias is in the file.
func (l *NetCDFLoader) readVariable(nc *ncFile, v *bgcdata.Variable) (*array, error) {
	for _, a := range v.Aliases {
		if !nc.has(a.Name) {
			continue
		}
		values, err := nc.read(a.Name)
		if err != nil {
			return nil, err
		}
		if v.Name == l.variables.DateName() {
			if err := l.toUnixDays(nc, a.Name, values.data); err != nil {
				return nil, err
			}
		}
		if a.HasFlag() && nc.has(a.FlagName) {
			flags, err := nc.read(a.FlagName)
			if err != nil {
				return nil, err
			}
			if len(flags.data) != len(values.data) {
				return nil, errors.Wrapf(bgcdata.ErrNetCDFLoading, "%s and its flag %s have different sizes in %s",
					a.Name, a.FlagName, nc.path)
			}
			for i, f := range flags.data {
				if math.IsNaN(f) {
					f = -1
				}
				if !numericFlagAccepted(f, a.FlagValues) {
					values.data[i] = math.NaN()
				}
			}
		}
		return values, nil
	}
	return nil, nil
}

func (l *NetCDFLoader) toUnixDays(nc *ncFile, name string, values []float64) error {
	units, _ := nc.f.Header.GetAttribute(name, "units").(string)
	ref, err := timeReference(units)
	if err != nil {
		return err
	}
	step := timeUnitStep(units)
	offset := float64(ref.Unix()) / 86400
	scale := step.Hours() / 24
	for i, v := range values {
		if !math.IsNaN(v) {
			values[i] = v*scale + offset
		}
	}
	return nil
}

// fromUnixDays converts days since the Unix epoch to dates, rounded to the
// second.
func fromUnixDays(days []float64) []time.Time {
	out := make([]time.Time, len(days))
	for i, d := range days {
		if math.IsNaN(d) {
			continue
		}
		out[i] = time.Unix(int64(math.Round(d*86400)), 0).UTC()
	}
	return out
}

// replaceNaN replaces the missing values of a by the numeric default of v.
func replaceNaN(a *array, v *bgcdata.Variable) {
	def, err := cast.ToFloat64E(defaultOf(v))
	if err != nil || defaultOf(v) == nil {
		return
	}
	for i, x := range a.data {
		if math.IsNaN(x) {
			a.data[i] = def
		}
	}
}

// shapes returns the first dimension shared by all the variables with
// more than one value along it and the second dimension of the 2D
// variables.
func shapes(arrays map[string]*array) (int, int, error) {
	shape0, shape1 := 1, 1
	set0, set1 := false, false
	for name, a := range arrays {
		if len(a.shape) > 0 && a.shape[0] > 1 {
			if set0 && a.shape[0] != shape0 {
				return 0, 0, errors.Wrapf(bgcdata.ErrNetCDFLoading,
					"some variables have different sizes along the first dimension (%s)", name)
			}
			shape0, set0 = a.shape[0], true
		}
		if len(a.shape) == 2 {
			if set1 && a.shape[1] != shape1 {
				return 0, 0, errors.Wrapf(bgcdata.ErrNetCDFLoading,
					"some variables have different sizes along the second dimension (%s)", name)
			}
			shape1, set1 = a.shape[1], true
		}
	}
	return shape0, shape1, nil
}

// flatten returns the values of a as one value per (first, second)
// dimension pair. Single values are repeated along the first dimension
// and 1D values along the second one.
func flatten(a *array, shape0, shape1 int) ([]float64, error) {
	data := a.data
	if len(data) == 1 {
		data = repeat(data[0], shape0)
	}
	switch {
	case len(a.shape) <= 1:
		if len(data) != shape0 {
			return nil, errors.Wrapf(bgcdata.ErrNetCDFLoading, "%d values instead of %d", len(data), shape0)
		}
		out := make([]float64, 0, shape0*shape1)
		for _, v := range data {
			out = append(out, repeat(v, shape1)...)
		}
		return out, nil
	case len(data) != shape0*shape1:
		return nil, errors.Wrapf(bgcdata.ErrNetCDFLoading, "%d values instead of %d", len(data), shape0*shape1)
	}
	return data, nil
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// format reads the in dataset variables of the file and returns them as
// columns of equal lengths.
func (l *NetCDFLoader) format(nc *ncFile) (*bgcdata.Frame, error) {
	arrays := make(map[string]*array)
	var missing []*bgcdata.Variable
	var reference *array
	for _, v := range l.variables.InDataset() {
		a, err := l.readVariable(nc, v)
		if err != nil {
			return nil, err
		}
		if a == nil {
			missing = append(missing, v)
			continue
		}
		if v.Name != l.variables.DateName() {
			replaceNaN(a, v)
		}
		arrays[v.Label()] = a
		if reference == nil {
			reference = a
		}
	}
	if reference == nil {
		return nil, errors.Wrapf(bgcdata.ErrNetCDFLoading, "empty data for all variables to consider in %s", nc.path)
	}
	for _, v := range missing {
		logFor(l).WithField("variable", v.Name).Debug("variable not found in file")
		def := math.NaN()
		if d, err := cast.ToFloat64E(defaultOf(v)); err == nil && defaultOf(v) != nil {
			def = d
		}
		arrays[v.Label()] = &array{data: repeat(def, len(reference.data)), shape: reference.shape}
	}
	return l.frame(arrays)
}

// frame flattens the arrays into a frame.
func (l *NetCDFLoader) frame(arrays map[string]*array) (*bgcdata.Frame, error) {
	shape0, shape1, err := shapes(arrays)
	if err != nil {
		return nil, err
	}
	f := bgcdata.NewFrame(shape0 * shape1)
	for _, v := range l.variables.InDataset() {
		a, ok := arrays[v.Label()]
		if !ok {
			continue
		}
		data, err := flatten(a, shape0, shape1)
		if err != nil {
			return nil, errors.Wrapf(err, "variable %s", v.Name)
		}
		if v.Name == l.variables.DateName() {
			f.SetDate(v.Label(), fromUnixDays(data))
			continue
		}
		f.SetFloat(v.Label(), data)
	}
	return f, nil
}

// Load implements Loader.
func (l *NetCDFLoader) Load(path string, c *bgcdata.Constraints) (*bgcdata.Frame, error) {
	return l.load(path, c, l.format, FileID(filepath.Base(path)))
}

func (l *NetCDFLoader) load(path string, c *bgcdata.Constraints, format func(*ncFile) (*bgcdata.Frame, error), expocode string) (*bgcdata.Frame, error) {
	if c == nil {
		c = bgcdata.NewConstraints()
	}
	nc, ff, err := openNetCDF(path)
	if err != nil {
		return nil, err
	}
	raw, err := format(nc)
	ff.Close()
	if err != nil {
		return nil, err
	}
	vs := l.variables
	dateLabel := l.label(vs.DateName())
	if !raw.Has(dateLabel) {
		raw.SetDate(dateLabel, make([]time.Time, raw.Len()))
	}
	raw = c.ApplySpecific(dateLabel, raw)
	f := l.assemble(raw)
	l.setDateParts(f, f.Date(dateLabel))
	l.setProvider(f)
	f.Set(l.label(vs.ExpocodeName()), bgcdata.FilledColumn(bgcdata.String, f.Len(), expocode))
	return l.finish(f, c), nil
}

// SatelliteNetCDFLoader loads gridded satellite products whose variables
// have (time, latitude, longitude) dimensions.
type SatelliteNetCDFLoader struct {
	NetCDFLoader
}

// NewSatelliteNetCDFLoader returns a loader of satellite NetCDF files.
func NewSatelliteNetCDFLoader(provider, category string, exclude []string, variables *bgcdata.VariableSet) *SatelliteNetCDFLoader {
	return &SatelliteNetCDFLoader{NetCDFLoader{BaseLoader: newBaseLoader(provider, category, exclude, variables)}}
}

// Load implements Loader. The expocode is the default of the expocode
// variable.
func (l *SatelliteNetCDFLoader) Load(path string, c *bgcdata.Constraints) (*bgcdata.Frame, error) {
	expocode := cast.ToString(l.variables.MustGet(l.variables.ExpocodeName()).Default)
	return l.load(path, c, l.format, expocode)
}

func (l *SatelliteNetCDFLoader) format(nc *ncFile) (*bgcdata.Frame, error) {
	vs := l.variables
	dims := map[string]bool{vs.DateName(): true, vs.LatitudeName(): true, vs.LongitudeName(): true}
	arrays := make(map[string]*array)
	var missing []*bgcdata.Variable
	var reference *array
	for _, v := range vs.InDataset() {
		if dims[v.Name] {
			continue
		}
		a, err := l.readVariable(nc, v)
		if err != nil {
			return nil, err
		}
		if a == nil {
			missing = append(missing, v)
			continue
		}
		if reference == nil {
			if err := l.broadcastDimensions(nc, a, arrays); err != nil {
				return nil, err
			}
			reference = a
		} else if len(a.data) != len(reference.data) {
			return nil, errors.Wrapf(bgcdata.ErrNetCDFLoading, "%s has %d values instead of %d in %s",
				v.Name, len(a.data), len(reference.data), nc.path)
		}
		replaceNaN(a, v)
		arrays[v.Label()] = &array{data: a.data, shape: []int{len(a.data)}}
	}
	if reference == nil {
		return nil, errors.Wrapf(bgcdata.ErrNetCDFLoading, "empty data for all variables to consider in %s", nc.path)
	}
	for _, v := range missing {
		def := math.NaN()
		if d, err := cast.ToFloat64E(defaultOf(v)); err == nil && defaultOf(v) != nil {
			def = d
		}
		arrays[v.Label()] = &array{data: repeat(def, len(reference.data)), shape: []int{len(reference.data)}}
	}
	return l.frame(arrays)
}

// broadcastDimensions adds the date, latitude and longitude of every value
// of the 3D array a to arrays.
func (l *SatelliteNetCDFLoader) broadcastDimensions(nc *ncFile, a *array, arrays map[string]*array) error {
	vs := l.variables
	read := func(name string) (*bgcdata.Variable, []float64, error) {
		v := vs.MustGet(name)
		values, err := l.readVariable(nc, v)
		if err != nil {
			return nil, nil, err
		}
		if values == nil {
			return nil, nil, errors.Wrapf(bgcdata.ErrNetCDFLoading, "missing dimension %s in %s", name, nc.path)
		}
		return v, values.data, nil
	}
	date, dates, err := read(vs.DateName())
	if err != nil {
		return err
	}
	lat, lats, err := read(vs.LatitudeName())
	if err != nil {
		return err
	}
	lon, lons, err := read(vs.LongitudeName())
	if err != nil {
		return err
	}
	nt, ny, nx := len(dates), len(lats), len(lons)
	if len(a.data) != nt*ny*nx {
		return errors.Wrapf(bgcdata.ErrNetCDFLoading, "%d values can not be broadcast to (%d, %d, %d) in %s",
			len(a.data), nt, ny, nx, nc.path)
	}
	n := len(a.data)
	d, y, x := make([]float64, n), make([]float64, n), make([]float64, n)
	for i := range d {
		d[i] = dates[i/(ny*nx)]
		y[i] = lats[(i/nx)%ny]
		x[i] = lons[i%nx]
	}
	arrays[date.Label()] = &array{data: d, shape: []int{n}}
	arrays[lat.Label()] = &array{data: y, shape: []int{n}}
	arrays[lon.Label()] = &array{data: x, shape: []int{n}}
	return nil
}
