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

package abfile

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// keyValue matches the header lines of ".b" files, such as
// "  800    'idm   ' = longitudinal array size".
var keyValue = regexp.MustCompile(`^\s*(\S+)\s+'\s*(\w+)\s*'\s*=`)

// gridField matches the field lines of grid ".b" files, such as
// "plon:  min,max =     -180.00000      180.00000".
var gridField = regexp.MustCompile(`^\s*(\w+)\s*:\s*min,max\s*=\s*(\S+)\s+(\S+)`)

// FieldInfo describes a record of a ".a" file.
type FieldInfo struct {
	Name string
	// Step is the model time step and Day the model day of archive
	// fields.
	Step     int
	Day      float64
	Level    int
	Density  float64
	Min, Max float64

	record int
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abfile: opening %s: %v", path, err)
	}
	defer f.Close()
	var lines []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("abfile: reading %s: %v", path, err)
	}
	return lines, nil
}

// parseKeyValue returns the integer value of a header line.
func parseKeyValue(line, path string) (key string, value int, err error) {
	m := keyValue.FindStringSubmatch(line)
	if m == nil {
		return "", 0, fmt.Errorf("abfile: %s: invalid header line '%s'", path, line)
	}
	value, err = strconv.Atoi(m[1])
	if err != nil {
		return "", 0, fmt.Errorf("abfile: %s: invalid value of %s: %v", path, m[2], err)
	}
	return m[2], value, nil
}

// Grid is a HYCOM grid file pair, such as "regional.grid.a" and
// "regional.grid.b".
type Grid struct {
	Basename string
	IDM, JDM int
	MapFlag  int

	fields []FieldInfo
	a      *afile
}

// OpenGrid reads the description of the grid files of basename.
func OpenGrid(basename string) (*Grid, error) {
	path := basename + ".b"
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	g := &Grid{Basename: basename, MapFlag: -1}
	for _, line := range lines {
		if m := gridField.FindStringSubmatch(line); m != nil {
			min, err1 := strconv.ParseFloat(m[2], 64)
			max, err2 := strconv.ParseFloat(m[3], 64)
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("abfile: %s: invalid extremes for field %s", path, m[1])
			}
			g.fields = append(g.fields, FieldInfo{Name: m[1], Min: min, Max: max, record: len(g.fields)})
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, v, err := parseKeyValue(line, path)
		if err != nil {
			return nil, err
		}
		switch key {
		case "idm":
			g.IDM = v
		case "jdm":
			g.JDM = v
		case "mapflg":
			g.MapFlag = v
		}
	}
	if g.IDM <= 0 || g.JDM <= 0 {
		return nil, fmt.Errorf("abfile: %s: missing grid dimensions", path)
	}
	g.a = newAFile(basename+".a", g.IDM, g.JDM)
	return g, nil
}

// FieldNames returns the names of the fields of the grid, in file order.
func (g *Grid) FieldNames() []string {
	out := make([]string, len(g.fields))
	for i, f := range g.fields {
		out[i] = f.Name
	}
	return out
}

// HasField reports whether the grid holds a field.
func (g *Grid) HasField(name string) bool {
	for _, f := range g.fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// ReadField reads a grid field.
func (g *Grid) ReadField(name string) (*Field, error) {
	for _, f := range g.fields {
		if f.Name == name {
			return g.a.record(f.record)
		}
	}
	return nil, fmt.Errorf("abfile: no field %s in %s.b", name, g.Basename)
}

// Archive is a HYCOM archive file pair, such as "archm.2020_031_12.a" and
// "archm.2020_031_12.b".
type Archive struct {
	Basename   string
	Title      [4]string
	Version    int
	Experiment int
	YearFlag   int
	IDM, JDM   int
	Fields     []FieldInfo

	a *afile
}

// archiveHeaders are the keys of the header lines following the title.
var archiveHeaders = []string{"iversn", "iexpt", "yrflag", "idm", "jdm"}

// OpenArchive reads the description of the archive files of basename.
func OpenArchive(basename string) (*Archive, error) {
	path := basename + ".b"
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	if len(lines) < len(archiveHeaders)+5 {
		return nil, fmt.Errorf("abfile: %s: truncated archive header", path)
	}
	a := &Archive{Basename: basename}
	copy(a.Title[:], lines[:4])
	values := make(map[string]int)
	for i, key := range archiveHeaders {
		k, v, err := parseKeyValue(lines[4+i], path)
		if err != nil {
			return nil, err
		}
		if k != key {
			return nil, fmt.Errorf("abfile: %s: expected '%s' header, found '%s'", path, key, k)
		}
		values[k] = v
	}
	a.Version, a.Experiment, a.YearFlag = values["iversn"], values["iexpt"], values["yrflag"]
	a.IDM, a.JDM = values["idm"], values["jdm"]

	// The line after the headers names the columns of the field table.
	for n, line := range lines[len(archiveHeaders)+5:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		f, err := parseArchiveField(line)
		if err != nil {
			return nil, fmt.Errorf("abfile: %s line %d: %v", path, n+len(archiveHeaders)+6, err)
		}
		f.record = len(a.Fields)
		a.Fields = append(a.Fields, f)
	}
	a.a = newAFile(basename+".a", a.IDM, a.JDM)
	return a, nil
}

// parseArchiveField parses "name = step day k dens min max".
func parseArchiveField(line string) (FieldInfo, error) {
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return FieldInfo{}, fmt.Errorf("invalid field line '%s'", line)
	}
	values := strings.Fields(parts[1])
	if len(values) != 6 {
		return FieldInfo{}, fmt.Errorf("field line '%s' has %d values instead of 6", line, len(values))
	}
	f := FieldInfo{Name: strings.TrimSpace(parts[0])}
	var err error
	if f.Step, err = strconv.Atoi(values[0]); err != nil {
		return f, err
	}
	if f.Level, err = strconv.Atoi(values[2]); err != nil {
		return f, err
	}
	floats := []*float64{&f.Day, nil, nil, &f.Density, &f.Min, &f.Max}
	for i, p := range floats {
		if p == nil {
			continue
		}
		if *p, err = strconv.ParseFloat(values[i], 64); err != nil {
			return f, err
		}
	}
	return f, nil
}

// FieldNames returns the unique names of the archive fields, in file
// order.
func (a *Archive) FieldNames() []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range a.Fields {
		if !seen[f.Name] {
			seen[f.Name] = true
			out = append(out, f.Name)
		}
	}
	return out
}

// FieldLevels returns the sorted levels of the archive fields.
func (a *Archive) FieldLevels() []int {
	seen := make(map[int]bool)
	var out []int
	for _, f := range a.Fields {
		if !seen[f.Level] {
			seen[f.Level] = true
			out = append(out, f.Level)
		}
	}
	sort.Ints(out)
	return out
}

// FieldsAtLevel returns the names of the fields at level k.
func (a *Archive) FieldsAtLevel(k int) []string {
	var out []string
	for _, f := range a.Fields {
		if f.Level == k {
			out = append(out, f.Name)
		}
	}
	return out
}

// ReadField reads field name at level k.
func (a *Archive) ReadField(name string, k int) (*Field, error) {
	for _, f := range a.Fields {
		if f.Name == name && f.Level == k {
			return a.a.record(f.record)
		}
	}
	return nil, fmt.Errorf("abfile: no field %s at level %d in %s.b", name, k, a.Basename)
}

// WriteGrid writes the grid files of basename holding the given fields,
// in order. All fields must have idm*jdm values.
func WriteGrid(basename string, idm, jdm, mapflg int, names []string, fields [][]float64) error {
	if len(names) != len(fields) {
		return fmt.Errorf("abfile: %d field names for %d fields", len(names), len(fields))
	}
	af, bf, err := createAB(basename)
	if err != nil {
		return err
	}
	aw := &aWriter{w: bufio.NewWriter(af), idm: idm, jdm: jdm}
	bw := bufio.NewWriter(bf)
	fmt.Fprintf(bw, "%5d    'idm   ' = longitudinal array size\n", idm)
	fmt.Fprintf(bw, "%5d    'jdm   ' = latitudinal  array size\n", jdm)
	fmt.Fprintf(bw, "%5d    'mapflg' = map flag (-1=unknown,0=mercator,2=uniform,4=f-plane)\n", mapflg)
	for i, data := range fields {
		min, max, err := aw.writeRecord(data)
		if err != nil {
			closeAll(aw.w, af)
			closeAll(bw, bf)
			return err
		}
		fmt.Fprintf(bw, "%-4s:  min,max = %16.5f %16.5f\n", names[i], min, max)
	}
	if err := closeAll(aw.w, af); err != nil {
		closeAll(bw, bf)
		return err
	}
	return closeAll(bw, bf)
}

// WriteArchive writes the archive files of basename. The dimensions,
// version, experiment and title come from h; the fields are written in
// the order of infos. Min and Max of the infos are computed from data.
func WriteArchive(basename string, h *Archive, infos []FieldInfo, fields [][]float64) error {
	if len(infos) != len(fields) {
		return fmt.Errorf("abfile: %d field descriptions for %d fields", len(infos), len(fields))
	}
	af, bf, err := createAB(basename)
	if err != nil {
		return err
	}
	aw := &aWriter{w: bufio.NewWriter(af), idm: h.IDM, jdm: h.JDM}
	bw := bufio.NewWriter(bf)
	for _, t := range h.Title {
		fmt.Fprintln(bw, t)
	}
	fmt.Fprintf(bw, "%5d    'iversn' = hycom version number x10\n", h.Version)
	fmt.Fprintf(bw, "%5d    'iexpt ' = experiment number x10\n", h.Experiment)
	fmt.Fprintf(bw, "%5d    'yrflag' = days in year flag\n", h.YearFlag)
	fmt.Fprintf(bw, "%5d    'idm   ' = longitudinal array size\n", h.IDM)
	fmt.Fprintf(bw, "%5d    'jdm   ' = latitudinal  array size\n", h.JDM)
	fmt.Fprintln(bw, "field       time step  model day  k  dens        min              max")
	for i, data := range fields {
		min, max, err := aw.writeRecord(data)
		if err != nil {
			closeAll(aw.w, af)
			closeAll(bw, bf)
			return err
		}
		f := infos[i]
		fmt.Fprintf(bw, "%-8s = %10d %10.3f %2d %6.3f %16.7E %16.7E\n",
			f.Name, f.Step, f.Day, f.Level, f.Density, min, max)
	}
	if err := closeAll(aw.w, af); err != nil {
		closeAll(bw, bf)
		return err
	}
	return closeAll(bw, bf)
}
