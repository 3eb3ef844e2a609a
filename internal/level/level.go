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

// Package level fuses driving conditions and image statistics into noise
// intensities, either one scalar per frame or one value per pixel.
package level

import (
	"fmt"
	"math"

	"github.com/mlnoga/resonance/internal/condition"
	"github.com/mlnoga/resonance/internal/errs"
)

// Default calibration constants
const (
	DefaultBaseNoise = 0.1
	DefaultMaxNoise  = 0.3
)

// Model constants
const (
	speedReference = 130.0   // km/h at which the speed factor reaches 1+speedWeight
	speedWeight    = 0.2
	luxReference   = 50000.0 // lux above which ambient light no longer lowers the level
	lightWeight    = 0.5
	brightWeight   = 0.3
	contrastWeight = 0.4
)

// Calibration of the noise level model. Immutable once constructed, the factor table is shared
type Calibration struct {
	BaseNoise float64                `json:"baseNoise"` // Lower clamp, and base of the multiplicative model
	MaxNoise  float64                `json:"maxNoise"`  // Upper clamp
	Factors   *condition.FactorTable `json:"-"`         // Weather and time of day multipliers
}

// Returns the default calibration: base 0.1, max 0.3, default factor table
func DefaultCalibration() Calibration {
	return Calibration{
		BaseNoise: DefaultBaseNoise,
		MaxNoise:  DefaultMaxNoise,
		Factors:   condition.DefaultFactorTable(),
	}
}

// Checks 0 < BaseNoise <= MaxNoise <= 1 and the presence of a factor table
func (c Calibration) Validate() error {
	if !(c.BaseNoise > 0) || c.BaseNoise > c.MaxNoise || !(c.MaxNoise <= 1) {
		return errs.Invalidf("noise range [%g,%g]", c.BaseNoise, c.MaxNoise)
	}
	if c.Factors == nil {
		return errs.Invalidf("calibration without factor table")
	}
	return nil
}

func (c Calibration) String() string {
	return fmt.Sprintf("base %.3g max %.3g", c.BaseNoise, c.MaxNoise)
}

// Computes the scalar noise level for the given conditions and normalized brightness and contrast.
// The result always lies in [BaseNoise, MaxNoise]. Pure function.
func (c Calibration) Level(dc condition.DrivingConditions, brightness, contrast float64) (float64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if err := dc.Validate(); err != nil {
		return 0, err
	}
	if !inUnitRange(brightness) {
		return 0, errs.Invalidf("brightness %g", brightness)
	}
	if !inUnitRange(contrast) {
		return 0, errs.Invalidf("contrast %g", contrast)
	}
	weather, err := c.Factors.WeatherFactor(dc.Weather)
	if err != nil {
		return 0, err
	}
	time, err := c.Factors.TimeFactor(dc.TimeOfDay)
	if err != nil {
		return 0, err
	}

	speedFactor := 1 + (dc.SpeedKMH/speedReference)*speedWeight
	lightFactor := 1 + (1-clamp(dc.AmbientLux/luxReference, 0, 1))*lightWeight
	brightnessAdj := 1 + (1-brightness)*brightWeight
	contrastAdj := 1 + (1-contrast)*contrastWeight

	level := c.BaseNoise * weather * time * speedFactor * lightFactor * brightnessAdj * contrastAdj
	return clamp(level, c.BaseNoise, c.MaxNoise), nil
}

// Computes a per-pixel noise map from a local contrast map with values in [0,255]:
// baseNoise*(1-local/255), each entry clamped to [0, MaxNoise]
func (c Calibration) LevelMap(baseNoise float64, local []float64, width, height int) (*Map, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if !(baseNoise > 0) || math.IsInf(baseNoise, 1) {
		return nil, errs.Invalidf("base noise %g", baseNoise)
	}
	if width <= 0 || height <= 0 || len(local) != width*height {
		return nil, errs.Shapef("%d local contrast values for %dx%d map", len(local), width, height)
	}
	values := make([]float64, len(local))
	for i, l := range local {
		if l != l {
			return nil, errs.Invalidf("local contrast NaN at %d", i)
		}
		values[i] = clamp(baseNoise*(1-l/255), 0, c.MaxNoise)
	}
	return &Map{Width: width, Height: height, Values: values}, nil
}

func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
