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

package bgcdata

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// FileNamePattern is a file name template holding {years}, {months} and
// {days} placeholders, for example "nutrients_{years}{months}{days}.csv".
type FileNamePattern string

// Date precisions of DateIntervalPattern.
const (
	YearPrecision  = "year"
	MonthPrecision = "month"
	DayPrecision   = "day"
)

// DateIntervalPattern renders the regular expressions matching the years,
// months and days of an interval of dates.
type DateIntervalPattern struct {
	min, max  *time.Time
	precision string
}

// NewDateIntervalPattern returns the pattern of the interval [min, max].
// min and max must be both nil or both set with min <= max. Month
// precision requires dates of the same year and day precision dates of
// the same month.
func NewDateIntervalPattern(min, max *time.Time, precision string) (*DateIntervalPattern, error) {
	p := &DateIntervalPattern{min: min, max: max, precision: precision}
	if min == nil && max == nil {
		return p, nil
	}
	switch {
	case min == nil:
		return nil, errors.Wrap(ErrInvalidDateInputs, "min can not be nil if max is not")
	case max == nil:
		return nil, errors.Wrap(ErrInvalidDateInputs, "max can not be nil if min is not")
	case min.After(*max):
		return nil, errors.Wrap(ErrInvalidDateInputs, "min must be lower than max")
	}
	sameYear := min.Year() == max.Year()
	sameMonth := sameYear && min.Month() == max.Month()
	switch precision {
	case YearPrecision:
	case MonthPrecision:
		if !sameYear {
			return nil, errors.Wrapf(ErrInvalidPrecision, "'%s' only concerns dates in the same year", precision)
		}
	case DayPrecision:
		if !sameMonth {
			return nil, errors.Wrapf(ErrInvalidPrecision, "'%s' only concerns dates in the same month", precision)
		}
	default:
		return nil, errors.Wrapf(ErrInvalidPrecision, "%s must be one of year, month, day", precision)
	}
	return p, nil
}

func alternatives(from, to, width int) string {
	vals := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		vals = append(vals, fmt.Sprintf("%0*d", width, i))
	}
	return "(" + strings.Join(vals, "|") + ")"
}

// Years returns the expression matching the years of the interval.
func (p *DateIntervalPattern) Years() string {
	if p.min == nil {
		return "[0-9][0-9][0-9][0-9]"
	}
	if p.precision == YearPrecision {
		return alternatives(p.min.Year(), p.max.Year(), 1)
	}
	return strconv.Itoa(p.min.Year())
}

// Months returns the expression matching the months of the interval.
func (p *DateIntervalPattern) Months() string {
	if p.min == nil || p.precision == YearPrecision {
		return "[0-1][0-9]"
	}
	if p.precision == MonthPrecision {
		return alternatives(int(p.min.Month()), int(p.max.Month()), 2)
	}
	return fmt.Sprintf("%02d", int(p.min.Month()))
}

// Days returns the expression matching the days of the interval.
func (p *DateIntervalPattern) Days() string {
	if p.min == nil || p.precision != DayPrecision {
		return "[0-3][0-9]"
	}
	return alternatives(p.min.Day(), p.max.Day(), 2)
}

func (p *DateIntervalPattern) String() string {
	f := func(t *time.Time) string {
		if t == nil {
			return "None"
		}
		return t.Format(DateLayout)
	}
	return fmt.Sprintf("%s - %s ; precision: %s", f(p.min), f(p.max), p.precision)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// slicePatterns splits [min, max] into intervals that can each be expressed with
// a single precision. Empty intervals are skipped.
func slicePatterns(min, max *time.Time) ([]*DateIntervalPattern, error) {
	if min == nil && max == nil {
		p, err := NewDateIntervalPattern(nil, nil, DayPrecision)
		return []*DateIntervalPattern{p}, err
	}
	if min == nil || max == nil {
		return nil, errors.Wrap(ErrInvalidDateInputs, "both date limits must be set")
	}
	start := date(min.Year(), min.Month(), min.Day())
	end := date(max.Year(), max.Month(), max.Day())
	type chunk struct {
		from, to  time.Time
		precision string
	}
	var chunks []chunk
	switch {
	case start.Year() == end.Year() && start.Month() == end.Month():
		chunks = []chunk{{start, end, DayPrecision}}
	case start.Year() == end.Year():
		chunks = []chunk{
			{start, date(start.Year(), start.Month()+1, 0), DayPrecision},
			{date(start.Year(), start.Month()+1, 1), date(end.Year(), end.Month(), 0), MonthPrecision},
			{date(end.Year(), end.Month(), 1), end, DayPrecision},
		}
	default:
		chunks = []chunk{
			{start, date(start.Year(), start.Month()+1, 0), DayPrecision},
			{date(start.Year(), start.Month()+1, 1), date(start.Year(), time.December, 31), MonthPrecision},
			{date(start.Year()+1, time.January, 1), date(end.Year()-1, time.December, 31), YearPrecision},
			{date(end.Year(), time.January, 1), date(end.Year(), end.Month(), 0), MonthPrecision},
			{date(end.Year(), end.Month(), 1), end, DayPrecision},
		}
	}
	var out []*DateIntervalPattern
	for _, c := range chunks {
		if c.from.After(c.to) {
			continue
		}
		from, to := c.from, c.to
		p, err := NewDateIntervalPattern(&from, &to, c.precision)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Build returns the matcher of the file names of the dates in [min, max].
// Both nil matches any date.
func (f FileNamePattern) Build(min, max *time.Time) (*PatternMatcher, error) {
	chunks, err := slicePatterns(min, max)
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		r := strings.NewReplacer("{years}", c.Years(), "{months}", c.Months(), "{days}", c.Days())
		parts[i] = "(" + r.Replace(string(f)) + ")"
	}
	return NewPatternMatcher(strings.Join(parts, "|")), nil
}

// BuildFromConstraint returns the matcher of the file names of the dates
// allowed by the constraint parameters of the date field.
func (f FileNamePattern) BuildFromConstraint(p ConstraintParameters) (*PatternMatcher, error) {
	if p.Boundary == nil && len(p.Superset) == 0 {
		return f.Build(nil, nil)
	}
	c := NewConstraints()
	if p.Boundary != nil {
		c.AddBoundary("date", p.Boundary.Min, p.Boundary.Max)
	}
	c.AddSuperset("date", p.Superset)
	min, max := c.GetExtremes("date", nil, nil)
	if unbounded(min) || unbounded(max) {
		return nil, errors.Wrap(ErrInvalidDateInputs, "date constraint must have both limits")
	}
	dmin, dmax := toDate(min), toDate(max)
	return f.Build(&dmin, &dmax)
}

// PatternMatcher selects files whose path relative to a directory matches
// a regular expression. The expression is matched from the start of each
// name. Folder levels are separated by "/" in the expression.
type PatternMatcher struct {
	Pattern string
	// Validate filters the matching files. It accepts all files by default.
	Validate func(path string) bool
}

// NewPatternMatcher returns a matcher of pattern accepting all files.
func NewPatternMatcher(pattern string) *PatternMatcher {
	return &PatternMatcher{Pattern: pattern, Validate: func(string) bool { return true }}
}

// SelectMatchingFiles returns the sorted paths of the matching files in
// dir.
func (m *PatternMatcher) SelectMatchingFiles(dir string) ([]string, error) {
	return m.match(dir, m.Pattern)
}

func (m *PatternMatcher) match(dir, pattern string) ([]string, error) {
	if !strings.Contains(pattern, "/") {
		return m.matchFiles(dir, pattern)
	}
	return m.matchFolders(dir, pattern)
}

func compileFromStart(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return nil, fmt.Errorf("bgcdata: invalid file name pattern %s: %v", pattern, err)
	}
	return re, nil
}

func (m *PatternMatcher) matchFiles(dir, pattern string) ([]string, error) {
	re, err := compileFromStart(pattern)
	if err != nil {
		return nil, err
	}
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("bgcdata: listing %s: %v", dir, err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if !strings.Contains(name, ".") || !re.MatchString(name) {
			continue
		}
		path := filepath.Join(dir, name)
		if m.Validate == nil || m.Validate(path) {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *PatternMatcher) matchFolders(dir, pattern string) ([]string, error) {
	all := strings.Split(strings.TrimSuffix(strings.TrimPrefix(pattern, "("), ")"), ")|(")
	folders := make([]string, len(all))
	rest := make([]string, len(all))
	for i, p := range all {
		parts := strings.SplitN(p, "/", 2)
		folders[i] = parts[0]
		if len(parts) > 1 {
			rest[i] = parts[1]
		}
	}
	re, err := compileFromStart("(" + strings.Join(folders, ")|(") + ")")
	if err != nil {
		return nil, err
	}
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("bgcdata: listing %s: %v", dir, err)
	}
	filesPattern := "(" + strings.Join(rest, ")|(") + ")"
	var out []string
	for _, e := range entries {
		if !re.MatchString(e.Name()) {
			continue
		}
		files, err := m.match(filepath.Join(dir, e.Name()), filesPattern)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}
