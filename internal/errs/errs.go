// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package errs holds the error taxonomy shared by the noise engine packages.
// Call sites wrap these sentinels with fmt.Errorf and %w, so callers test
// with errors.Is.
package errs

import (
	"errors"
	"fmt"
)

var (
	// Region of interest lies outside the frame, or has non-positive size
	ErrInvalidRegion = errors.New("invalid region")

	// Channel count or buffer shape incompatible with the requested operation
	ErrShapeMismatch = errors.New("shape mismatch")

	// Condition enumerator without an entry in the factor tables
	ErrUnmappedCondition = errors.New("unmapped condition")

	// Noise level, window size, speed, light or similar value outside its documented range
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Returns an ErrInvalidParameter wrapped with a formatted message
func Invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidParameter)
}

// Returns an ErrShapeMismatch wrapped with a formatted message
func Shapef(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrShapeMismatch)
}

// Returns an ErrInvalidRegion wrapped with a formatted message
func Regionf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidRegion)
}

// Returns an ErrUnmappedCondition wrapped with a formatted message
func Unmappedf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrUnmappedCondition)
}

// Reports whether err belongs to the caller-correctable part of the taxonomy,
// i.e. retrying with corrected inputs may succeed
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidRegion) || errors.Is(err, ErrShapeMismatch) ||
		errors.Is(err, ErrUnmappedCondition) || errors.Is(err, ErrInvalidParameter)
}
