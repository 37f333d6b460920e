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
	"math"
	"strings"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/pkg/errors"
	"github.com/spatialmodel/bgcdata"
	"gonum.org/v1/gonum/stat"
)

// A Metric evaluates simulated values against observed ones.
type Metric struct {
	Name string

	// Variables are the names of the evaluated variables.
	Variables []string

	eval func(obs, sim []float64) float64
}

// NewRMSE returns the root mean square error of the variables.
func NewRMSE(variables ...string) *Metric {
	return &Metric{Name: "RMSE", Variables: variables, eval: rmse}
}

// NewBias returns the mean difference between simulations and
// observations of the variables.
func NewBias(variables ...string) *Metric {
	return &Metric{Name: "Bias", Variables: variables, eval: bias}
}

// differences returns the simulated minus observed values where both are
// present.
func differences(obs, sim []float64) []float64 {
	var out []float64
	for i, o := range obs {
		if d := sim[i] - o; !math.IsNaN(d) {
			out = append(out, d)
		}
	}
	return out
}

func rmse(obs, sim []float64) float64 {
	d := differences(obs, sim)
	if len(d) == 0 {
		return math.NaN()
	}
	for i, v := range d {
		d[i] = v * v
	}
	return math.Sqrt(stat.Mean(d, nil))
}

func bias(obs, sim []float64) float64 {
	d := differences(obs, sim)
	if len(d) == 0 {
		return math.NaN()
	}
	return stat.Mean(d, nil)
}

// Result holds the value of a metric for every variable.
type Result struct {
	Metric    string
	Variables []string
	Values    []float64
}

// Evaluate returns the metric of every pair of observed and simulated
// columns.
func (m *Metric) Evaluate(obs, sim [][]float64) *Result {
	r := &Result{Metric: m.Name, Variables: m.Variables, Values: make([]float64, len(obs))}
	for i := range obs {
		r.Values[i] = m.eval(obs[i], sim[i])
	}
	return r
}

// EvaluateStorers returns the metric of the variables of two storers whose
// rows match.
func (m *Metric) EvaluateStorers(observations, simulations *bgcdata.Storer) (*Result, error) {
	obs, sim, err := comparedColumns(observations, simulations, m.Variables)
	if err != nil {
		return nil, err
	}
	return m.Evaluate(obs, sim), nil
}

func storerColumns(s *bgcdata.Storer, variables []string) ([][]float64, error) {
	out := make([][]float64, len(variables))
	for i, name := range variables {
		v, err := s.Variables.Get(name)
		if err != nil || !s.Data.Has(v.Label()) {
			return nil, errors.Wrapf(bgcdata.ErrIncomparableStorers, "no %s values, make sure both storers have the variables to evaluate on (%s)",
				name, strings.Join(variables, ", "))
		}
		out[i] = s.Data.Float(v.Label())
	}
	return out, nil
}

// comparedColumns returns the values of the variables in both storers.
// Rows whose values are all missing in either storer are dropped.
func comparedColumns(observations, simulations *bgcdata.Storer, variables []string) (obs, sim [][]float64, err error) {
	o, err := storerColumns(observations, variables)
	if err != nil {
		return nil, nil, err
	}
	s, err := storerColumns(simulations, variables)
	if err != nil {
		return nil, nil, err
	}
	n := observations.Data.Len()
	if n != simulations.Data.Len() {
		return nil, nil, errors.Wrapf(bgcdata.ErrIncomparableStorers, "%d observations for %d simulations",
			n, simulations.Data.Len())
	}
	keep := make([]bool, n)
	for r := range keep {
		keep[r] = !allNaN(o, r) && !allNaN(s, r)
	}
	return keepRows(o, keep), keepRows(s, keep), nil
}

func allNaN(cols [][]float64, r int) bool {
	for _, c := range cols {
		if !math.IsNaN(c[r]) {
			return false
		}
	}
	return true
}

func keepRows(cols [][]float64, keep []bool) [][]float64 {
	out := make([][]float64, len(cols))
	for i, c := range cols {
		for r, k := range keep {
			if k {
				out[i] = append(out[i], c[r])
			}
		}
	}
	return out
}

// RegressionResult holds the linear regression of the simulated values of
// a variable on the observed ones.
type RegressionResult struct {
	Variable  string
	Slope     float64
	Intercept float64
	RSquared  float64
	N         int
}

// Regression returns the linear regression of the simulated values on the
// observed values of every variable, using the rows where both are
// present.
func Regression(observations, simulations *bgcdata.Storer, variables ...string) ([]RegressionResult, error) {
	obs, sim, err := comparedColumns(observations, simulations, variables)
	if err != nil {
		return nil, err
	}
	out := make([]RegressionResult, len(variables))
	for i, name := range variables {
		var x, y []float64
		for r, o := range obs[i] {
			if !math.IsNaN(o) && !math.IsNaN(sim[i][r]) {
				x = append(x, o)
				y = append(y, sim[i][r])
			}
		}
		out[i] = RegressionResult{Variable: name, N: len(x)}
		if len(x) < 2 {
			out[i].Slope, out[i].Intercept, out[i].RSquared = math.NaN(), math.NaN(), math.NaN()
			continue
		}
		out[i].Slope, out[i].Intercept, out[i].RSquared, _, _, _ = stats.LinearRegression(x, y)
	}
	return out, nil
}

// RegressionColumns returns the slopes, intercepts and coefficients of
// determination of rs as results that can be passed to Table.
func RegressionColumns(rs []RegressionResult) []*Result {
	names := make([]string, len(rs))
	slope := &Result{Metric: "Slope", Variables: names, Values: make([]float64, len(rs))}
	intercept := &Result{Metric: "Intercept", Variables: names, Values: make([]float64, len(rs))}
	r2 := &Result{Metric: "R2", Variables: names, Values: make([]float64, len(rs))}
	for i, r := range rs {
		names[i] = r.Variable
		slope.Values[i] = r.Slope
		intercept.Values[i] = r.Intercept
		r2.Values[i] = r.RSquared
	}
	return []*Result{slope, intercept, r2}
}

// Table renders results as a text table with one row per variable and one
// column per metric. All results must be about the same variables.
func Table(results ...*Result) string {
	if len(results) == 0 {
		return ""
	}
	formats := []string{"%-10s"}
	header := []interface{}{"Variable"}
	for _, r := range results {
		formats = append(formats, "%10.3f")
		header = append(header, r.Metric)
	}
	nameFormats := make([]string, len(formats))
	nameFormats[0] = "%-10s"
	for i := 1; i < len(formats); i++ {
		nameFormats[i] = "%10s"
	}
	lines := []string{bgcdata.FormatRow(nameFormats, header)}
	for i, name := range results[0].Variables {
		row := []interface{}{name}
		for _, r := range results {
			row = append(row, r.Values[i])
		}
		lines = append(lines, bgcdata.FormatRow(formats, row))
	}
	return strings.Join(lines, "\n") + "\n"
}
