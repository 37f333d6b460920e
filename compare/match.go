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

package compare

import (
	"fmt"

	"github.com/spatialmodel/bgcdata"
)

// Match links observations to their closest simulation points.
type Match struct {
	observed  []int
	simulated []int
}

// NewMatch returns the match of the observations whose indexes are in
// observed with the simulation points in simulated: observation
// observed[i] is closest to point simulated[i].
func NewMatch(observed, simulated []int) (*Match, error) {
	if len(observed) != len(simulated) {
		return nil, fmt.Errorf("compare: %d observations for %d simulation points", len(observed), len(simulated))
	}
	return &Match{
		observed:  append([]int{}, observed...),
		simulated: append([]int{}, simulated...),
	}, nil
}

// Apply returns the rows of loaded, whose indexes are simulation points,
// indexed by the observations they are the closest point of. Rows are
// repeated when several observations share their point and dropped when
// no observation does.
func (m *Match) Apply(loaded *bgcdata.Frame) *bgcdata.Frame {
	bgcdata.Log.Info("matching indexes")
	obs := make(map[int][]int)
	for i, s := range m.simulated {
		obs[s] = append(obs[s], m.observed[i])
	}
	var rows, index []int
	for r, s := range loaded.Index {
		for _, o := range obs[s] {
			rows = append(rows, r)
			index = append(index, o)
		}
	}
	out := loaded.Take(rows)
	out.Index = index
	return out
}
