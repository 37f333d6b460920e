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

// Package hash computes cache keys for arbitrary values.
package hash

import (
	"encoding/gob"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/davecgh/go-spew/spew"
)

// Hash returns a hash key for the specified object.
func Hash(object interface{}) string {
	if s, ok := object.(fmt.Stringer); ok {
		return s.String()
	}
	h := xxhash.New()

	e := gob.NewEncoder(h)
	if err := e.Encode(object); err == nil {
		return fmt.Sprintf("%016x", h.Sum64())
	}
	// gob fails on some values (e.g., NaN map keys or nil pointers),
	// use spew instead.
	h.Reset()
	printer := spew.ConfigState{
		Indent:                  " ",
		SortKeys:                true,
		DisableMethods:          true,
		SpewKeys:                true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	printer.Fprintf(h, "%#v", object)
	return fmt.Sprintf("%016x", h.Sum64())
}

// Strings returns a hash key for a list of strings, such as file paths.
func Strings(s ...string) string {
	h := xxhash.New()
	for _, v := range s {
		h.WriteString(v)
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
