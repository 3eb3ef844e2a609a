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

// Package resonance wraps the noise engine into pipeline operators.
package resonance

import (
	"encoding/json"

	"github.com/mlnoga/resonance/internal/condition"
	"github.com/mlnoga/resonance/internal/frame"
	"github.com/mlnoga/resonance/internal/noise"
	"github.com/mlnoga/resonance/internal/ops"
)

// Seed value requesting fresh noise on every application
const RandomSeed int64 = -1

// Resolves a configured seed. Negative values draw a fresh random seed
func seedFor(seed int64) uint64 {
	if seed < 0 {
		return noise.RandomSeed()
	}
	return uint64(seed)
}

// Adds gaussian noise at a level derived from the driving conditions and global
// frame statistics, followed by edge-preserving smoothing. Takes one input, produces one output
type OpAdaptive struct {
	ops.OpUnaryBase
	Conditions condition.DrivingConditions `json:"conditions"`
	ROI        *frame.Region               `json:"roi,omitempty"`
	Seed       int64                       `json:"seed"` // Negative for fresh noise on every frame
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpAdaptiveDefault() }) } // register the operator for JSON decoding

func NewOpAdaptiveDefault() *OpAdaptive {
	return NewOpAdaptive(condition.DrivingConditions{
		Weather:    condition.Clear,
		TimeOfDay:  condition.Day,
		SpeedKMH:   0,
		AmbientLux: 50000,
	}, nil, RandomSeed)
}

func NewOpAdaptive(dc condition.DrivingConditions, roi *frame.Region, seed int64) *OpAdaptive {
	op := OpAdaptive{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "adaptive", Active: true}},
		Conditions:  dc,
		ROI:         roi,
		Seed:        seed,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpAdaptive) UnmarshalJSON(data []byte) error {
	type defaults OpAdaptive
	def := defaults(*NewOpAdaptiveDefault())
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*op = OpAdaptive(def)
	op.OpUnaryBase.Apply = op.Apply
	return nil
}

func (op *OpAdaptive) Apply(f *frame.Frame, c *ops.Context) (result *frame.Frame, err error) {
	if !op.Active {
		return f, nil
	}
	res, err := c.Engine.Adaptive(f, op.Conditions, op.ROI, seedFor(op.Seed))
	if err != nil {
		return nil, err
	}
	c.Log.Info().Msgf("%d: Adaptive noise under %v%s, %v", f.ID, op.Conditions, roiSuffix(op.ROI), res)
	return res.Frame, nil
}

// Adds gaussian noise at a per-pixel level derived from the local contrast of the
// frame luminance. Takes one input, produces one output
type OpSpatial struct {
	ops.OpUnaryBase
	BaseNoise float64       `json:"baseNoise"` // Zero selects the calibrated base noise
	Window    int           `json:"window"`    // Box filter window. Zero selects the context default
	ROI       *frame.Region `json:"roi,omitempty"`
	Seed      int64         `json:"seed"`
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpSpatialDefault() }) } // register the operator for JSON decoding

func NewOpSpatialDefault() *OpSpatial { return NewOpSpatial(0, 0, nil, RandomSeed) }

func NewOpSpatial(baseNoise float64, window int, roi *frame.Region, seed int64) *OpSpatial {
	op := OpSpatial{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "spatial", Active: true}},
		BaseNoise:   baseNoise,
		Window:      window,
		ROI:         roi,
		Seed:        seed,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpSpatial) UnmarshalJSON(data []byte) error {
	type defaults OpSpatial
	def := defaults(*NewOpSpatialDefault())
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*op = OpSpatial(def)
	op.OpUnaryBase.Apply = op.Apply
	return nil
}

func (op *OpSpatial) Apply(f *frame.Frame, c *ops.Context) (result *frame.Frame, err error) {
	if !op.Active {
		return f, nil
	}
	window := op.Window
	if window == 0 {
		window = c.Window
	}
	res, err := c.Engine.Spatial(f, op.BaseNoise, window, op.ROI, seedFor(op.Seed))
	if err != nil {
		return nil, err
	}
	c.Log.Info().Msgf("%d: Spatial noise%s, %v", f.ID, roiSuffix(op.ROI), res)
	return res.Frame, nil
}

// Adds noise of a chosen distribution at a fixed level. Takes one input, produces one output
type OpNoise struct {
	ops.OpUnaryBase
	Level        float64            `json:"level"`
	Distribution noise.Distribution `json:"distribution"`
	ROI          *frame.Region      `json:"roi,omitempty"`
	Seed         int64              `json:"seed"`
	Smooth       bool               `json:"smooth"`
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpNoiseDefault() }) } // register the operator for JSON decoding

func NewOpNoiseDefault() *OpNoise {
	return NewOpNoise(0.1, noise.Gaussian, nil, RandomSeed, false)
}

func NewOpNoise(level float64, dist noise.Distribution, roi *frame.Region, seed int64, smooth bool) *OpNoise {
	op := OpNoise{
		OpUnaryBase:  ops.OpUnaryBase{OpBase: ops.OpBase{Type: "noise", Active: true}},
		Level:        level,
		Distribution: dist,
		ROI:          roi,
		Seed:         seed,
		Smooth:       smooth,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpNoise) UnmarshalJSON(data []byte) error {
	type defaults OpNoise
	def := defaults(*NewOpNoiseDefault())
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*op = OpNoise(def)
	op.OpUnaryBase.Apply = op.Apply
	return nil
}

func (op *OpNoise) Apply(f *frame.Frame, c *ops.Context) (result *frame.Frame, err error) {
	if !op.Active {
		return f, nil
	}
	res, err := c.Engine.Fixed(f, op.Level, op.Distribution, op.ROI, seedFor(op.Seed), op.Smooth)
	if err != nil {
		return nil, err
	}
	if mean, stdDev, err := noise.Moments(op.Distribution, op.Level); err == nil {
		c.Log.Info().Msgf("%d: %s noise%s, %v, expected deviation mean %.2f stdDev %.2f",
			f.ID, op.Distribution.Label(), roiSuffix(op.ROI), res, mean, stdDev)
	}
	return res.Frame, nil
}

func roiSuffix(roi *frame.Region) string {
	if roi == nil {
		return ""
	}
	return " in " + roi.String()
}
