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

// Command bgcdata is a command-line interface for the BGCData ocean
// biogeochemical data tools.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/bgcdata/bgcutil"
)

func main() {
	if err := bgcutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
