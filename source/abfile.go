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
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spatialmodel/bgcdata"
	"github.com/spatialmodel/bgcdata/abfile"
)

// PascalPerSeawaterMeter converts layer thicknesses to meters.
const PascalPerSeawaterMeter = 9806

// ABFileLoader loads HYCOM archive files. All the archives are on the grid
// of the grid files.
type ABFileLoader struct {
	BaseLoader
	GridBasename string
	grid         *abfile.Grid
}

// NewABFileLoader returns a loader of the archives of a provider on the
// grid described by gridBasename, such as "regional.grid".
func NewABFileLoader(provider, category string, exclude []string, variables *bgcdata.VariableSet, gridBasename string) (*ABFileLoader, error) {
	g, err := abfile.OpenGrid(gridBasename)
	if err != nil {
		return nil, errors.Wrapf(bgcdata.ErrABFileLoading, "%v", err)
	}
	return &ABFileLoader{
		BaseLoader:   newBaseLoader(provider, category, exclude, variables),
		GridBasename: gridBasename,
		grid:         g,
	}, nil
}

// Grid returns the grid of the archives.
func (l *ABFileLoader) Grid() *abfile.Grid { return l.grid }

// Basename returns the path of an archive without its ".a" or ".b"
// extension.
func Basename(path string) string {
	if ext := filepath.Ext(path); ext == ".a" || ext == ".b" {
		return strings.TrimSuffix(path, ext)
	}
	return path
}

// IsFileValid reports whether neither the file nor its basename are
// excluded and both the ".a" and ".b" files exist.
func (l *ABFileLoader) IsFileValid(path string) bool {
	base := Basename(path)
	if l.isExcluded(path) || l.isExcluded(base) {
		return false
	}
	for _, p := range []string{base + ".a", base + ".b"} {
		if info, err := os.Stat(p); err != nil || info.IsDir() {
			logFor(l).WithField("file", p).Warn("archive file does not exist")
			return false
		}
	}
	return true
}

// GridField returns the values of the grid field of a variable, read from
// the first alias present in the grid files. Values whose flag is not
// accepted are replaced by the variable default.
func (l *ABFileLoader) GridField(name string) ([]float64, error) {
	v, err := l.variables.Get(name)
	if err != nil {
		return nil, err
	}
	for _, a := range v.Aliases {
		if !l.grid.HasField(a.Name) {
			continue
		}
		f, err := l.grid.ReadField(a.Name)
		if err != nil {
			return nil, errors.Wrapf(bgcdata.ErrABFileLoading, "%v", err)
		}
		if a.HasFlag() && l.grid.HasField(a.FlagName) {
			flags, err := l.grid.ReadField(a.FlagName)
			if err != nil {
				return nil, errors.Wrapf(bgcdata.ErrABFileLoading, "%v", err)
			}
			applyFlags(f.Data, flags.Data, a.FlagValues, floatDefault(v))
		}
		return f.Data, nil
	}
	return nil, errors.Wrapf(bgcdata.ErrABFileLoading, "grid file has no data for the variable %s, possible fields are %s",
		name, strings.Join(l.grid.FieldNames(), ", "))
}

func applyFlags(data, flags []float64, accepted []interface{}, def float64) {
	for i, f := range flags {
		if !numericFlagAccepted(f, accepted) {
			data[i] = def
		}
	}
}

func floatDefault(v *bgcdata.Variable) float64 {
	if d := defaultOf(v); d != nil {
		return bgcdata.FilledColumn(bgcdata.Float, 1, d).Floats[0]
	}
	return math.NaN()
}

func take(values []float64, points []int) []float64 {
	if points == nil {
		return values
	}
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = values[p]
	}
	return out
}

// ArchiveDate returns the date of an archive from its basename, such as
// "archm.2020_031_12" for the 31st day of 2020 at 12:00.
func ArchiveDate(basename string) (time.Time, error) {
	name := filepath.Base(basename)
	parts := strings.Split(name[strings.LastIndex(name, ".")+1:], "_")
	if len(parts) != 3 {
		return time.Time{}, errors.Wrapf(bgcdata.ErrABFileLoading, "no date in archive name %s", name)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, errors.Wrapf(bgcdata.ErrABFileLoading, "no date in archive name %s", name)
		}
		v[i] = n
	}
	if v[1] < 1 || v[1] > 366 || v[2] < 0 || v[2] > 23 {
		return time.Time{}, errors.Wrapf(bgcdata.ErrABFileLoading, "invalid date in archive name %s", name)
	}
	return time.Date(v[0], 1, v[1], v[2], 0, 0, 0, time.UTC), nil
}

// Load implements Loader. path is either the ".a" or the ".b" file.
func (l *ABFileLoader) Load(path string, c *bgcdata.Constraints) (*bgcdata.Frame, error) {
	return l.LoadPoints(path, c, nil, nil)
}

// LoadPoints loads the values of the given grid points only, points being
// the positions j*idm+i of the points in the grid fields. A nil points
// loads the whole grid. The index of the rows is the position of their
// point in index, or the grid position when index is nil.
func (l *ABFileLoader) LoadPoints(path string, c *bgcdata.Constraints, points, index []int) (*bgcdata.Frame, error) {
	if c == nil {
		c = bgcdata.NewConstraints()
	}
	if index != nil && len(index) != len(points) {
		return nil, errors.Wrapf(bgcdata.ErrABFileLoading, "%d index values for %d points", len(index), len(points))
	}
	base := Basename(path)
	date, err := ArchiveDate(base)
	if err != nil {
		return nil, err
	}
	archive, err := abfile.OpenArchive(base)
	if err != nil {
		return nil, errors.Wrapf(bgcdata.ErrABFileLoading, "%v", err)
	}
	if archive.IDM != l.grid.IDM || archive.JDM != l.grid.JDM {
		return nil, errors.Wrapf(bgcdata.ErrABFileLoading, "archive %s is %dx%d, grid is %dx%d",
			base, archive.IDM, archive.JDM, l.grid.IDM, l.grid.JDM)
	}
	vs := l.variables
	lonLabel, latLabel := l.label(vs.LongitudeName()), l.label(vs.LatitudeName())
	lon, err := l.GridField(vs.LongitudeName())
	if err != nil {
		return nil, err
	}
	lat, err := l.GridField(vs.LatitudeName())
	if err != nil {
		return nil, err
	}
	lon, lat = take(lon, points), take(lat, points)
	if index == nil {
		if points == nil {
			index = make([]int, len(lon))
			for i := range index {
				index[i] = i
			}
		} else {
			index = points
		}
	}

	depthLabel := l.label(vs.DepthName())
	var pressure []float64
	var levels []*bgcdata.Frame
	for _, k := range archive.FieldLevels() {
		level, err := l.loadLevel(archive, k, points, len(lon))
		if err != nil {
			return nil, err
		}
		level.Index = append([]int{}, index...)
		level.SetFloat(lonLabel, lon)
		level.SetFloat(latLabel, lat)
		if level.Has(depthLabel) {
			pressure = depthFromThickness(level.Float(depthLabel), pressure)
		}
		levels = append(levels, level)
	}
	raw := bgcdata.Concat(levels...)
	f := l.assemble(raw)
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	days, dates := make([]time.Time, f.Len()), make([]time.Time, f.Len())
	for i := range dates {
		days[i], dates[i] = midnight, date
	}
	f.SetDate(l.label(vs.DateName()), days)
	l.setDateParts(f, dates)
	l.setProvider(f)
	return l.finish(f, c), nil
}

// loadLevel reads the in dataset variables at level k. Variables with no
// field at this level are left out.
func (l *ABFileLoader) loadLevel(a *abfile.Archive, k int, points []int, n int) (*bgcdata.Frame, error) {
	vs := l.variables
	present := make(map[string]bool)
	for _, name := range a.FieldsAtLevel(k) {
		present[name] = true
	}
	f := bgcdata.NewFrame(n)
	for _, v := range vs.InDataset() {
		if v.Name == vs.LongitudeName() || v.Name == vs.LatitudeName() {
			continue
		}
		for _, alias := range v.Aliases {
			if !present[alias.Name] {
				continue
			}
			field, err := a.ReadField(alias.Name, k)
			if err != nil {
				return nil, errors.Wrapf(bgcdata.ErrABFileLoading, "%v", err)
			}
			data := take(field.Data, points)
			if alias.HasFlag() && present[alias.FlagName] {
				flags, err := a.ReadField(alias.FlagName, k)
				if err != nil {
					return nil, errors.Wrapf(bgcdata.ErrABFileLoading, "%v", err)
				}
				applyFlags(data, take(flags.Data, points), alias.FlagValues, floatDefault(v))
			}
			f.SetFloat(v.Label(), data)
			break
		}
	}
	return f, nil
}

// depthFromThickness replaces the layer thicknesses [Pa] of one level by
// the depth [m] of the middle of the layer, given the pressure at the
// bottom of the level above. It returns the pressure at the bottom of this
// level. Missing thicknesses do not change the pressure.
func depthFromThickness(thickness, above []float64) []float64 {
	bottom := make([]float64, len(thickness))
	for i, t := range thickness {
		p := 0.
		if above != nil && !math.IsNaN(above[i]) {
			p = above[i]
		}
		if math.IsNaN(t) {
			bottom[i] = p
			continue
		}
		bottom[i] = p + t
		thickness[i] = -math.Abs((bottom[i] - t/2) / PascalPerSeawaterMeter)
	}
	return bottom
}
