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

// Package config loads calibration files for the noise engine. Files are JSON;
// every field is optional, and absent fields keep the built-in defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mlnoga/resonance/internal/condition"
	"github.com/mlnoga/resonance/internal/errs"
	"github.com/mlnoga/resonance/internal/frame"
	"github.com/mlnoga/resonance/internal/level"
	"github.com/mlnoga/resonance/internal/noise"
)

// Maximum size of a calibration file
const maxFileSize = 1 * 1024 * 1024

// A calibration file. Pointer fields distinguish absent from zero
type CalibrationFile struct {
	BaseNoise      *float64                        `json:"baseNoise,omitempty"`
	MaxNoise       *float64                        `json:"maxNoise,omitempty"`
	WeatherFactors map[condition.Weather]float64   `json:"weatherFactors,omitempty"`
	TimeFactors    map[condition.TimeOfDay]float64 `json:"timeFactors,omitempty"`
	Smoothing      *noise.Bilateral                `json:"smoothing,omitempty"`
	Window         *int                            `json:"window,omitempty"`
	Luminance      *frame.LumaMode                 `json:"luminance,omitempty"`
}

// Loads and validates a calibration file. The file must have a .json extension
func Load(path string) (*CalibrationFile, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("calibration file must have .json extension, got %q", ext)
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat calibration file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("calibration file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read calibration file: %w", err)
	}
	return Parse(data)
}

// Parses and validates a calibration from JSON
func Parse(data []byte) (*CalibrationFile, error) {
	cf := &CalibrationFile{}
	if err := json.Unmarshal(data, cf); err != nil {
		return nil, fmt.Errorf("failed to parse calibration JSON: %w", err)
	}
	if err := cf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid calibration: %w", err)
	}
	return cf, nil
}

// Checks the fields which are present
func (cf *CalibrationFile) Validate() error {
	if _, err := cf.Calibration(level.DefaultCalibration()); err != nil {
		return err
	}
	if cf.Smoothing != nil {
		if err := cf.Smoothing.Validate(); err != nil {
			return err
		}
	}
	if cf.Window != nil && *cf.Window <= 0 {
		return errs.Invalidf("window %d", *cf.Window)
	}
	return nil
}

// Returns the given calibration with the fields present in this file applied on top
func (cf *CalibrationFile) Calibration(base level.Calibration) (level.Calibration, error) {
	c := base
	if cf.BaseNoise != nil {
		c.BaseNoise = *cf.BaseNoise
	}
	if cf.MaxNoise != nil {
		c.MaxNoise = *cf.MaxNoise
	}
	if len(cf.WeatherFactors) > 0 || len(cf.TimeFactors) > 0 {
		if c.Factors == nil {
			c.Factors = condition.DefaultFactorTable()
		}
		table, err := c.Factors.With(cf.WeatherFactors, cf.TimeFactors)
		if err != nil {
			return c, err
		}
		c.Factors = table
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Returns the smoothing parameters, or the given default if absent
func (cf *CalibrationFile) SmoothingOr(def *noise.Bilateral) *noise.Bilateral {
	if cf.Smoothing == nil {
		return def
	}
	s := *cf.Smoothing
	return &s
}

// Returns the box filter window, or the given default if absent
func (cf *CalibrationFile) WindowOr(def int) int {
	if cf.Window == nil {
		return def
	}
	return *cf.Window
}

// Returns the luminance mode, or the given default if absent
func (cf *CalibrationFile) LuminanceOr(def frame.LumaMode) frame.LumaMode {
	if cf.Luminance == nil {
		return def
	}
	return *cf.Luminance
}
