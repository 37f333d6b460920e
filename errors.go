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

import "github.com/pkg/errors"

// Kinds of errors returned by this module. Errors are wrapped with
// additional context, so they should be compared to these values using
// errors.Cause from package github.com/pkg/errors.
var (
	// Variables
	ErrVariableInstantiation    = errors.New("invalid variable definition")
	ErrIncorrectVariableName    = errors.New("incorrect variable name")
	ErrDuplicatedVariableName   = errors.New("duplicated variable name")
	ErrIncompatibleVariableSets = errors.New("incompatible variable sets")
	ErrFeatureConstruction      = errors.New("feature can not be constructed")

	// Loading
	ErrCSVLoading               = errors.New("csv loading")
	ErrNetCDFLoading            = errors.New("netcdf loading")
	ErrABFileLoading            = errors.New("abfile loading")
	ErrUnsupportedLoadingFormat = errors.New("unsupported loading format")

	// Storers
	ErrIncompatibleCategories = errors.New("incompatible categories")
	ErrDifferentSliceOrigin   = errors.New("slices have different origins")
	ErrIncomparableStorers    = errors.New("storers can not be compared")
	ErrImpossibleSave         = errors.New("impossible save")

	// Parsing
	ErrImpossibleTypeParsing = errors.New("type can not be parsed")
	ErrInvalidParameterKey   = errors.New("invalid parameter key")
	ErrWrongType             = errors.New("wrong type")
	ErrExistingDirectory     = errors.New("existing directory")

	// Comparison
	ErrIncompatibleMaskShape = errors.New("incompatible mask shape")

	// Patterns
	ErrInvalidDateInputs = errors.New("invalid date inputs")
	ErrInvalidPrecision  = errors.New("invalid precision")
)
