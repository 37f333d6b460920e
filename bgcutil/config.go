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
	"fmt"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/pkg/errors"
	"github.com/spatialmodel/bgcdata"
	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
)

// DateLayout is the layout of the dates of the configuration.
const DateLayout = "20060102"

// Behaviors when the saving directory already exists.
const (
	RaiseExisting = "raise"
	MergeExisting = "merge"
	CleanExisting = "clean"
)

// Domain holds the temporal and spatial limits of the processed data.
// Zero dates and NaN bounds are unbounded.
type Domain struct {
	DateMin, DateMax           time.Time
	LatitudeMin, LatitudeMax   float64
	LongitudeMin, LongitudeMax float64
	DepthMin, DepthMax         float64

	// Expocodes restricts the data to these cruises when not empty.
	Expocodes []string
}

func boundOrNil(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func dateOrNil(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

// Constraints returns the constraints of the domain on the variables of
// vs.
func (d Domain) Constraints(vs *bgcdata.VariableSet) (*bgcdata.Constraints, error) {
	c := bgcdata.NewConstraints()
	label := func(name string) (string, error) {
		v, err := vs.Get(name)
		if err != nil {
			return "", err
		}
		return v.Label(), nil
	}
	date, err := label(vs.DateName())
	if err != nil {
		return nil, err
	}
	c.AddBoundary(date, dateOrNil(d.DateMin), dateOrNil(d.DateMax))
	bounds := []struct {
		name     string
		min, max float64
	}{
		{vs.LatitudeName(), d.LatitudeMin, d.LatitudeMax},
		{vs.LongitudeName(), d.LongitudeMin, d.LongitudeMax},
		{vs.DepthName(), d.DepthMin, d.DepthMax},
	}
	for _, b := range bounds {
		l, err := label(b.name)
		if err != nil {
			return nil, err
		}
		c.AddBoundary(l, boundOrNil(b.min), boundOrNil(b.max))
	}
	if len(d.Expocodes) > 0 {
		l, err := label(vs.ExpocodeName())
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(d.Expocodes))
		for i, e := range d.Expocodes {
			values[i] = e
		}
		c.AddSuperset(l, values)
	}
	return c, nil
}

// Header returns the description of the domain written at the top of
// result files.
func (d Domain) Header() string {
	date := func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format(bgcdata.DateLayout)
	}
	return fmt.Sprintf("Date: [%s, %s]\nLatitude: [%g, %g]\nLongitude: [%g, %g]\nDepth: [%g, %g]\n",
		date(d.DateMin), date(d.DateMax), d.LatitudeMin, d.LatitudeMax,
		d.LongitudeMin, d.LongitudeMax, d.DepthMin, d.DepthMax)
}

// parseDate parses a YYYYMMDD date. An empty string gives the zero time.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(os.ExpandEnv(s))
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(bgcdata.ErrWrongType, "date %q must be formatted as YYYYMMDD", s)
	}
	return t, nil
}

// toFloat converts v to a float. Empty strings give NaN.
func toFloat(v interface{}) (float64, error) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" || strings.EqualFold(s, "nan") {
			return math.NaN(), nil
		}
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return math.NaN(), errors.Wrapf(bgcdata.ErrWrongType, "%v is not a number", v)
	}
	return f, nil
}

// toFloatSlice converts a value read by viper to floats. It accepts TOML
// arrays, single numbers and JSON arrays given on the command line.
func toFloatSlice(v interface{}) ([]float64, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []float64:
		return t, nil
	case []interface{}:
		out := make([]float64, len(t))
		for i, x := range t {
			f, err := toFloat(x)
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
		return out, nil
	case []string:
		if len(t) == 1 {
			return toFloatSlice(t[0])
		}
		out := make([]float64, len(t))
		for i, x := range t {
			f, err := toFloat(x)
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
		return out, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		if !gjson.Valid(s) {
			return nil, errors.Wrapf(bgcdata.ErrWrongType, "%q is neither a number nor a list of numbers", s)
		}
		r := gjson.Parse(s)
		if !r.IsArray() {
			if r.Type != gjson.Number {
				return nil, errors.Wrapf(bgcdata.ErrWrongType, "%q is neither a number nor a list of numbers", s)
			}
			return []float64{r.Float()}, nil
		}
		var out []float64
		for _, x := range r.Array() {
			if x.Type != gjson.Number {
				return nil, errors.Wrapf(bgcdata.ErrWrongType, "%s in %q is not a number", x.Raw, s)
			}
			out = append(out, x.Float())
		}
		return out, nil
	}
	f, err := toFloat(v)
	if err != nil {
		return nil, err
	}
	return []float64{f}, nil
}

// binsSize returns the latitude and longitude sizes of the density bins
// from a single size or a [latitude, longitude] pair.
func binsSize(v interface{}) (lat, lon float64, err error) {
	sizes, err := toFloatSlice(v)
	if err != nil {
		return 0, 0, err
	}
	switch len(sizes) {
	case 1:
		return sizes[0], sizes[0], nil
	case 2:
		return sizes[0], sizes[1], nil
	}
	return 0, 0, errors.Wrapf(bgcdata.ErrWrongType, "bins size %v must be a number or a pair of numbers", v)
}

// parseMask returns the polygon of a GeoJSON geometry, given either as
// the path of a file or inline.
func parseMask(mask string) (geom.Polygon, error) {
	mask = strings.TrimSpace(mask)
	if mask == "" {
		return nil, nil
	}
	var b []byte
	if strings.HasPrefix(mask, "{") {
		b = []byte(mask)
	} else {
		var err error
		b, err = ioutil.ReadFile(os.ExpandEnv(mask))
		if err != nil {
			return nil, fmt.Errorf("bgcutil: reading polygon file: %w", err)
		}
	}
	if !gjson.ValidBytes(b) {
		return nil, errors.Wrapf(bgcdata.ErrWrongType, "polygon %s is not valid JSON", mask)
	}
	if t := gjson.GetBytes(b, "type").String(); t == "Feature" {
		b = []byte(gjson.GetBytes(b, "geometry").Raw)
	}
	if gjson.GetBytes(b, "type").String() == "MultiPolygon" {
		return multiPolygon(b)
	}
	j, err := geojson.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("bgcutil: decoding polygon: %w", err)
	}
	p, ok := j.(geom.Polygon)
	if !ok {
		return nil, errors.Wrapf(bgcdata.ErrWrongType, "invalid polygon geometry type %T", j)
	}
	return p, nil
}

// multiPolygon returns the rings of all the polygons of a GeoJSON
// MultiPolygon geometry as a single polygon.
func multiPolygon(b []byte) (geom.Polygon, error) {
	var out geom.Polygon
	for _, poly := range gjson.GetBytes(b, "coordinates").Array() {
		for _, r := range poly.Array() {
			var ring geom.Path
			for _, p := range r.Array() {
				xy := p.Array()
				if len(xy) < 2 || xy[0].Type != gjson.Number || xy[1].Type != gjson.Number {
					return nil, errors.Wrapf(bgcdata.ErrWrongType, "invalid MultiPolygon position %s", p.Raw)
				}
				ring = append(ring, geom.Point{X: xy[0].Float(), Y: xy[1].Float()})
			}
			out = append(out, ring)
		}
	}
	if len(out) == 0 {
		return nil, errors.Wrap(bgcdata.ErrWrongType, "MultiPolygon without coordinates")
	}
	return out, nil
}

// hasData reports whether dir holds files other than .gitignore.
func hasData(dir string) (bool, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.*"))
	if err != nil {
		return false, err
	}
	for _, f := range files {
		if filepath.Base(f) != ".gitignore" {
			return true, nil
		}
	}
	return false, nil
}

// savingDir prepares the saving directory path. If it already holds data,
// behavior tells whether to return ErrExistingDirectory ("raise"), to
// keep its files ("merge") or to empty it ("clean"). A new directory gets
// a .gitignore ignoring everything.
func savingDir(path, behavior string) (string, error) {
	path = os.ExpandEnv(path)
	switch behavior {
	case RaiseExisting, MergeExisting, CleanExisting:
	default:
		return "", errors.Wrapf(bgcdata.ErrInvalidParameterKey, "existing directory behavior %q must be one of %s, %s or %s",
			behavior, RaiseExisting, MergeExisting, CleanExisting)
	}
	if info, err := os.Stat(path); err == nil {
		if !info.IsDir() {
			return "", errors.Wrapf(bgcdata.ErrExistingDirectory, "%s is a file", path)
		}
		full, err := hasData(path)
		if err != nil {
			return "", err
		}
		switch {
		case !full || behavior == MergeExisting:
			return path, nil
		case behavior == RaiseExisting:
			return "", errors.Wrapf(bgcdata.ErrExistingDirectory, "%s already holds data", path)
		}
		bgcdata.Log.WithField("dir", path).Info("cleaning saving directory")
		if err := os.RemoveAll(path); err != nil {
			return "", fmt.Errorf("bgcutil: cleaning %s: %v", path, err)
		}
	}
	if err := os.MkdirAll(path, os.ModePerm); err != nil {
		return "", fmt.Errorf("bgcutil: creating %s: %v", path, err)
	}
	if err := ioutil.WriteFile(filepath.Join(path, ".gitignore"), []byte("*"), 0644); err != nil {
		return "", fmt.Errorf("bgcutil: creating .gitignore in %s: %v", path, err)
	}
	return path, nil
}
