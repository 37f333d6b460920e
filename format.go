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
	"math"
	"strings"
	"time"
)

// MissingText is written in text files in place of missing values.
const MissingText = "NaN"

// FormatValue renders v with a printf style format holding a single verb,
// such as "%-10s" or "%10.3f". Values are converted to the type the verb
// expects; missing values are rendered as MissingText with the width of
// the format.
func FormatValue(format string, v interface{}) string {
	verb := formatVerb(format)
	missing := false
	switch t := v.(type) {
	case float64:
		missing = math.IsNaN(t)
	case string:
		missing = t == ""
	case time.Time:
		missing = t.IsZero()
	case nil:
		missing = true
	}
	if missing {
		return fmt.Sprintf(withVerb(format, 's'), MissingText)
	}
	switch verb {
	case 'd':
		return fmt.Sprintf(format, int64(toFloat(v)))
	case 'f', 'F', 'e', 'E', 'g', 'G':
		f := toFloat(v)
		if math.IsNaN(f) {
			return fmt.Sprintf(withVerb(format, 's'), MissingText)
		}
		return fmt.Sprintf(format, f)
	default:
		return fmt.Sprintf(withVerb(format, 's'), toString(v))
	}
}

// FormatRow renders one value per format and joins them with a space.
func FormatRow(formats []string, values []interface{}) string {
	parts := make([]string, len(formats))
	for i, f := range formats {
		parts[i] = FormatValue(f, values[i])
	}
	return strings.Join(parts, " ")
}

func formatVerb(format string) byte {
	if format == "" {
		return 's'
	}
	return format[len(format)-1]
}

// withVerb replaces the verb of format, dropping any precision.
func withVerb(format string, verb byte) string {
	if format == "" {
		return "%" + string(verb)
	}
	body := format[:len(format)-1]
	if i := strings.IndexByte(body, '.'); i >= 0 {
		body = body[:i]
	}
	return body + string(verb)
}
