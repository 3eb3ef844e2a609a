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

package level

import (
	"fmt"
	"math"

	"github.com/mlnoga/resonance/internal/errs"
	"github.com/mlnoga/resonance/internal/frame"
	"gonum.org/v1/gonum/floats"
)

// A per-pixel noise intensity source, backed by a constant or by a map
type Intensity interface {
	// Returns the intensity for the pixel with the given row-major index
	At(i int) float64

	// Reports whether the source can drive a plane of the given dimensions
	Fits(width, height int) bool

	// Returns the intensity source restricted to the given region
	Crop(r frame.Region) (Intensity, error)

	// Checks that all intensities are finite and non-negative
	Validate() error

	// Returns minimum, mean and maximum intensity
	Summary() Summary
}

// Minimum, mean and maximum of an intensity source
type Summary struct {
	Min  float64 `json:"min"`
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
}

func (s Summary) String() string {
	if s.Min == s.Max {
		return fmt.Sprintf("%.4g", s.Mean)
	}
	return fmt.Sprintf("min %.4g mean %.4g max %.4g", s.Min, s.Mean, s.Max)
}

// A constant intensity for all pixels
type Constant float64

func (c Constant) At(i int) float64                       { return float64(c) }
func (c Constant) Fits(width, height int) bool            { return width > 0 && height > 0 }
func (c Constant) Crop(r frame.Region) (Intensity, error) { return c, nil }
func (c Constant) Summary() Summary                       { return Summary{float64(c), float64(c), float64(c)} }

func (c Constant) Validate() error {
	if !isValidIntensity(float64(c)) {
		return errs.Invalidf("noise level %g", float64(c))
	}
	return nil
}

// A spatially varying intensity, one value per pixel in row-major order
type Map struct {
	Width  int
	Height int
	Values []float64
}

func (m *Map) At(i int) float64 { return m.Values[i] }

func (m *Map) Fits(width, height int) bool {
	return m.Width == width && m.Height == height && len(m.Values) == width*height
}

// Returns a new map holding the given region of this one
func (m *Map) Crop(r frame.Region) (Intensity, error) {
	if err := r.Within(m.Width, m.Height); err != nil {
		return nil, err
	}
	values := make([]float64, r.Width*r.Height)
	for y := 0; y < r.Height; y++ {
		src := m.Values[(r.Y+y)*m.Width+r.X:]
		copy(values[y*r.Width:(y+1)*r.Width], src[:r.Width])
	}
	return &Map{Width: r.Width, Height: r.Height, Values: values}, nil
}

func (m *Map) Validate() error {
	if len(m.Values) != m.Width*m.Height {
		return errs.Shapef("%d noise map values for %dx%d", len(m.Values), m.Width, m.Height)
	}
	for i, v := range m.Values {
		if !isValidIntensity(v) {
			return errs.Invalidf("noise level %g at index %d", v, i)
		}
	}
	return nil
}

func (m *Map) Summary() Summary {
	if len(m.Values) == 0 {
		return Summary{}
	}
	return Summary{
		Min:  floats.Min(m.Values),
		Mean: floats.Sum(m.Values) / float64(len(m.Values)),
		Max:  floats.Max(m.Values),
	}
}

func isValidIntensity(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}
