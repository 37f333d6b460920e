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

	"github.com/Knetic/govaluate"
	"github.com/pkg/errors"
	"github.com/spatialmodel/bgcdata/science/eos80"
)

// A Feature is a variable computed from other variables once they are
// loaded.
type Feature interface {
	// Variable returns the variable holding the computed values.
	Variable() *Variable

	// RequiredVariables returns the variables the feature is computed from.
	RequiredVariables() []*Variable

	// Transform computes the feature values from the values of the
	// required variables, given in the order of RequiredVariables.
	Transform(inputs ...[]float64) ([]float64, error)
}

// featureBase holds what is common to all features.
type featureBase struct {
	v        *Variable
	required []*Variable
}

func (b *featureBase) init(f Feature, name, unit string, required ...*Variable) {
	b.v = &Variable{
		Name:        name,
		Unit:        unit,
		Type:        "float",
		Default:     math.NaN(),
		NameFormat:  "%-10s",
		ValueFormat: "%10.3f",
		Origin:      Computed,
		feature:     f,
	}
	b.required = required
}

func (b *featureBase) Variable() *Variable            { return b.v }
func (b *featureBase) RequiredVariables() []*Variable { return b.required }

// CopyVarInfosFrom sets the name, unit, type, default and formats of the
// feature variable from a template.
func (b *featureBase) CopyVarInfosFrom(t *Template) {
	f := b.v.feature
	b.v.Name, b.v.Unit, b.v.Type = t.Name, t.Unit, t.Type
	b.v.Default, b.v.NameFormat, b.v.ValueFormat = t.Default, t.NameFormat, t.ValueFormat
	b.v.feature = f
}

func (b *featureBase) check(inputs [][]float64) error {
	if len(inputs) != len(b.required) {
		return fmt.Errorf("bgcdata: feature %s needs %d inputs, got %d", b.v.Name, len(b.required), len(inputs))
	}
	if len(inputs) == 0 {
		return fmt.Errorf("bgcdata: feature %s has no inputs", b.v.Name)
	}
	for _, in := range inputs[1:] {
		if len(in) != len(inputs[0]) {
			return fmt.Errorf("bgcdata: feature %s inputs have different lengths", b.v.Name)
		}
	}
	return nil
}

// Pressure computes the pressure [dbars] from depth and latitude.
type Pressure struct{ featureBase }

// NewPressure returns the PRES feature.
func NewPressure(depth, latitude *Variable) *Pressure {
	f := new(Pressure)
	f.init(f, "PRES", "[dbars]", depth, latitude)
	return f
}

// Transform implements Feature.
func (f *Pressure) Transform(in ...[]float64) ([]float64, error) {
	if err := f.check(in); err != nil {
		return nil, err
	}
	out := make([]float64, len(in[0]))
	for i, depth := range in[0] {
		out[i] = eos80.Pres(math.Abs(depth), in[1][i])
	}
	return out, nil
}

// PotentialTemperature computes the potential temperature [deg_C] from
// salinity, temperature and pressure, relative to the surface.
type PotentialTemperature struct{ featureBase }

// NewPotentialTemperature returns the PTEMP feature.
func NewPotentialTemperature(salinity, temperature, pressure *Variable) *PotentialTemperature {
	f := new(PotentialTemperature)
	f.init(f, "PTEMP", "[deg_C]", salinity, temperature, pressure)
	return f
}

// Transform implements Feature.
func (f *PotentialTemperature) Transform(in ...[]float64) ([]float64, error) {
	if err := f.check(in); err != nil {
		return nil, err
	}
	out := make([]float64, len(in[0]))
	for i, s := range in[0] {
		out[i] = eos80.Ptmp(s, in[1][i], in[2][i], 0)
	}
	return out, nil
}

// SigmaT computes the density anomaly [kg/m3] from salinity and
// temperature.
type SigmaT struct{ featureBase }

// NewSigmaT returns the SIGT feature.
func NewSigmaT(salinity, temperature *Variable) *SigmaT {
	f := new(SigmaT)
	f.init(f, "SIGT", "[kg/m3]", salinity, temperature)
	return f
}

// Transform implements Feature.
func (f *SigmaT) Transform(in ...[]float64) ([]float64, error) {
	if err := f.check(in); err != nil {
		return nil, err
	}
	out := make([]float64, len(in[0]))
	for i, s := range in[0] {
		out[i] = eos80.SigmaT(s, in[1][i])
	}
	return out, nil
}

// ChlorophyllFromDiatomFlagellate computes chlorophyll [mg/m3] as the sum
// of diatom and flagellate concentrations.
type ChlorophyllFromDiatomFlagellate struct{ featureBase }

// NewChlorophyllFromDiatomFlagellate returns the CPHL feature.
func NewChlorophyllFromDiatomFlagellate(diatom, flagellate *Variable) *ChlorophyllFromDiatomFlagellate {
	f := new(ChlorophyllFromDiatomFlagellate)
	f.init(f, "CPHL", "[mg/m3]", diatom, flagellate)
	return f
}

// Transform implements Feature.
func (f *ChlorophyllFromDiatomFlagellate) Transform(in ...[]float64) ([]float64, error) {
	if err := f.check(in); err != nil {
		return nil, err
	}
	out := make([]float64, len(in[0]))
	for i, d := range in[0] {
		out[i] = d + in[1][i]
	}
	return out, nil
}

// ExpressionFunctions are the functions available in the expressions of
// ExpressionFeature.
var ExpressionFunctions = map[string]govaluate.ExpressionFunction{
	"abs":  unaryFunc("abs", math.Abs),
	"exp":  unaryFunc("exp", math.Exp),
	"log":  unaryFunc("log", math.Log),
	"sqrt": unaryFunc("sqrt", math.Sqrt),
}

func unaryFunc(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("bgcdata: got %d arguments for function '%s', but needs 1", len(arg), name)
		}
		x, ok := arg[0].(float64)
		if !ok {
			return nil, fmt.Errorf("bgcdata: argument of function '%s' is not a number", name)
		}
		return f(x), nil
	}
}

// ExpressionFeature computes a variable from an arithmetic expression
// over other variables, for example "NTRA + PHOS". Variable names in the
// expression are the labels of the required variables.
type ExpressionFeature struct {
	featureBase
	expression *govaluate.EvaluableExpression
	params     []string
}

// NewExpressionFeature returns a feature called name computing expression.
// available holds the variables the expression may refer to.
func NewExpressionFeature(name, unit, expression string, available ...*Variable) (*ExpressionFeature, error) {
	e, err := govaluate.NewEvaluableExpressionWithFunctions(expression, ExpressionFunctions)
	if err != nil {
		return nil, errors.Wrapf(ErrVariableInstantiation, "expression %s: %v", expression, err)
	}
	byLabel := make(map[string]*Variable)
	for _, v := range available {
		byLabel[v.Label()] = v
	}
	f := &ExpressionFeature{expression: e}
	var required []*Variable
	seen := make(map[string]bool)
	for _, p := range e.Vars() {
		if seen[p] {
			continue
		}
		seen[p] = true
		v, ok := byLabel[p]
		if !ok {
			return nil, errors.Wrapf(ErrIncorrectVariableName, "expression %s uses unknown variable %s", expression, p)
		}
		required = append(required, v)
		f.params = append(f.params, p)
	}
	f.init(f, name, unit, required...)
	return f, nil
}

// Transform implements Feature. Rows where an input is NaN give NaN.
func (f *ExpressionFeature) Transform(in ...[]float64) ([]float64, error) {
	if err := f.check(in); err != nil {
		return nil, err
	}
	n := 0
	if len(in) > 0 {
		n = len(in[0])
	}
	out := make([]float64, n)
	params := make(map[string]interface{}, len(f.params))
	for i := range out {
		missing := false
		for j, p := range f.params {
			params[p] = in[j][i]
			missing = missing || math.IsNaN(in[j][i])
		}
		if missing {
			out[i] = math.NaN()
			continue
		}
		r, err := f.expression.Evaluate(params)
		if err != nil {
			return nil, fmt.Errorf("bgcdata: evaluating %s: %v", f.v.Name, err)
		}
		v, ok := r.(float64)
		if !ok {
			return nil, fmt.Errorf("bgcdata: expression of %s does not evaluate to a number", f.v.Name)
		}
		out[i] = v
	}
	return out, nil
}

// NewFeatureVariable returns the variable of f.
func NewFeatureVariable(f Feature) *Variable { return f.Variable() }
