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
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spatialmodel/bgcdata"
)

// CSVOptions describes the layout of the text files of a provider.
type CSVOptions struct {
	// SkipRows holds the indexes of the lines to ignore, the first line
	// of the file being 0.
	SkipRows []int

	// Whitespace splits the values on any whitespace. Delimiter is used
	// otherwise, "," when empty.
	Whitespace bool
	Delimiter  string

	// NAValues are the values meaning that the value is missing.
	NAValues []string
}

// CSVLoader loads comma separated (or whitespace separated) files.
type CSVLoader struct {
	BaseLoader
	Options CSVOptions
}

// NewCSVLoader returns a loader of the text files of a provider.
func NewCSVLoader(provider, category string, exclude []string, variables *bgcdata.VariableSet, opts CSVOptions) *CSVLoader {
	return &CSVLoader{
		BaseLoader: newBaseLoader(provider, category, exclude, variables),
		Options:    opts,
	}
}

func (l *CSVLoader) read(path string) (header []string, rows [][]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(bgcdata.ErrCSVLoading, "opening %s: %v", path, err)
	}
	defer f.Close()
	records, err := l.records(f)
	if err != nil {
		return nil, nil, errors.Wrapf(bgcdata.ErrCSVLoading, "reading %s: %v", path, err)
	}
	skip := make(map[int]bool)
	for _, r := range l.Options.SkipRows {
		skip[r] = true
	}
	na := make(map[string]bool)
	for _, v := range l.Options.NAValues {
		na[v] = true
	}
	for i, r := range records {
		if skip[i] {
			continue
		}
		if header == nil {
			header = trimAll(r)
			continue
		}
		row := make([]string, len(header))
		for j := range row {
			if j < len(r) {
				row[j] = strings.TrimSpace(r[j])
			}
			if na[row[j]] {
				row[j] = ""
			}
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

func (l *CSVLoader) records(r io.Reader) ([][]string, error) {
	if l.Options.Whitespace {
		var out [][]string
		s := bufio.NewScanner(r)
		s.Buffer(make([]byte, 1024*1024), 16*1024*1024)
		for s.Scan() {
			if fields := strings.Fields(s.Text()); len(fields) > 0 {
				out = append(out, fields)
			}
		}
		return out, s.Err()
	}
	cr := csv.NewReader(r)
	cr.Comma = ','
	if l.Options.Delimiter != "" {
		cr.Comma = []rune(l.Options.Delimiter)[0]
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr.ReadAll()
}

func trimAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

// Load implements Loader.
func (l *CSVLoader) Load(path string, c *bgcdata.Constraints) (*bgcdata.Frame, error) {
	if c == nil {
		c = bgcdata.NewConstraints()
	}
	header, rows, err := l.read(path)
	if err != nil {
		return nil, err
	}
	position := make(map[string]int, len(header))
	for i, h := range header {
		if _, ok := position[h]; !ok {
			position[h] = i
		}
	}
	column := func(name string) []string {
		j := position[name]
		out := make([]string, len(rows))
		for i, r := range rows {
			out[i] = r[j]
		}
		return out
	}

	raw := bgcdata.NewFrame(len(rows))
	found := make(map[string]bool)
	for _, v := range l.variables.InDataset() {
		for _, a := range v.Aliases {
			if _, ok := position[a.Name]; !ok {
				continue
			}
			values := column(a.Name)
			if _, ok := position[a.FlagName]; ok && a.HasFlag() {
				for i, flag := range column(a.FlagName) {
					if !flagAccepted(flag, a.FlagValues) {
						values[i] = ""
					}
				}
			}
			raw.SetString(v.Label(), values)
			found[v.Name] = true
			break
		}
		if !found[v.Name] {
			logFor(l).WithField("variable", v.Name).Debug("variable not found in file")
		}
	}
	raw = l.dropAlphabetic(raw)

	f := l.assemble(raw)
	vs := l.variables
	dateLabel := l.label(vs.DateName())
	if found[vs.DateName()] {
		l.setDateParts(f, f.Date(dateLabel))
	} else {
		f.SetDate(dateLabel, l.datesFromParts(f))
	}
	l.setProvider(f)
	return l.finish(f, c), nil
}

// dropAlphabetic removes the rows holding words in numeric columns.
func (l *CSVLoader) dropAlphabetic(f *bgcdata.Frame) *bgcdata.Frame {
	keep := make([]bool, f.Len())
	for i := range keep {
		keep[i] = true
	}
	for _, v := range l.variables.Elements() {
		k := v.Kind()
		if k == bgcdata.String || k == bgcdata.Date || !f.Has(v.Label()) {
			continue
		}
		for i, s := range f.String(v.Label()) {
			if isAlpha(s) && !strings.EqualFold(s, "nan") {
				keep[i] = false
			}
		}
	}
	return f.Filter(keep)
}
