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
	"time"

	"github.com/pkg/errors"
)

// Date range intervals.
const (
	Day    = "day"
	Week   = "week"
	Month  = "month"
	Year   = "year"
	Custom = "custom"
)

// DateRange is a period of time, from the first second of Start to the
// last second of End.
type DateRange struct {
	Start, End time.Time
}

// String returns the range as YYYYMMDD-YYYYMMDD.
func (d DateRange) String() string {
	return d.Start.Format("20060102") + "-" + d.End.Format("20060102")
}

// DateRangeGenerator splits the period from Start to End into intervals.
type DateRangeGenerator struct {
	Start, End time.Time
	// Interval is one of "day", "week", "month", "year" or "custom".
	Interval string
	// IntervalLength is the number of days of custom intervals.
	IntervalLength int
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

const lastSecond = 86399 * time.Second

// Ranges returns the date ranges. Day, week, month and year intervals end
// at the end of calendar periods (weeks end on Sunday); the first range
// starts at Start and the last one ends at End. Custom intervals are
// IntervalLength days long, starting at Start.
func (g DateRangeGenerator) Ranges() ([]DateRange, error) {
	start, end := truncateDay(g.Start), truncateDay(g.End)
	if end.Before(start) {
		return nil, errors.Wrapf(ErrInvalidDateInputs, "start %s is after end %s",
			start.Format(DateLayout), end.Format(DateLayout))
	}
	if g.Interval == Custom {
		if g.IntervalLength <= 0 {
			return nil, fmt.Errorf("bgcdata: invalid custom interval length %d", g.IntervalLength)
		}
		var out []DateRange
		for s := start; !s.After(end); s = s.AddDate(0, 0, g.IntervalLength) {
			e := s.AddDate(0, 0, g.IntervalLength-1)
			if e.After(end) {
				e = end
			}
			out = append(out, DateRange{Start: s, End: e.Add(lastSecond)})
		}
		return out, nil
	}
	next, err := periodEnd(g.Interval)
	if err != nil {
		return nil, err
	}
	var ends []time.Time
	for e := next(start); !e.After(end); e = next(e.AddDate(0, 0, 1)) {
		ends = append(ends, e)
	}
	if len(ends) == 0 || !ends[len(ends)-1].Equal(end) {
		ends = append(ends, end)
	}
	out := make([]DateRange, len(ends))
	s := start
	for i, e := range ends {
		out[i] = DateRange{Start: s, End: e.Add(lastSecond)}
		s = e.AddDate(0, 0, 1)
	}
	return out, nil
}

// periodEnd returns a function giving the end of the period containing a
// day.
func periodEnd(interval string) (func(time.Time) time.Time, error) {
	switch interval {
	case Day:
		return func(t time.Time) time.Time { return t }, nil
	case Week:
		return func(t time.Time) time.Time {
			return t.AddDate(0, 0, (7-int(t.Weekday()))%7)
		}, nil
	case Month:
		return func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location()).AddDate(0, 0, -1)
		}, nil
	case Year:
		return func(t time.Time) time.Time {
			return time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, t.Location())
		}, nil
	}
	return nil, fmt.Errorf("bgcdata: invalid date range interval '%s'", interval)
}

// DateRangeStrings returns the ranges formatted as YYYYMMDD-YYYYMMDD.
func DateRangeStrings(ranges []DateRange) []string {
	out := make([]string, len(ranges))
	for i, r := range ranges {
		out[i] = r.String()
	}
	return out
}
