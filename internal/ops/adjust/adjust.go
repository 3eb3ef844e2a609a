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

// Package adjust holds operators that degrade or prepare frames before noise is
// injected: brightness and contrast enhancement, linear levels, and preview resizing.
package adjust

import (
	"encoding/json"
	"math"

	"github.com/mlnoga/resonance/internal/errs"
	"github.com/mlnoga/resonance/internal/frame"
	"github.com/mlnoga/resonance/internal/ops"
	"github.com/mlnoga/resonance/internal/stats"
)

// Scales all samples toward black by the given factor. 1 is a no op, 0 gives a black frame.
// Takes one input, produces one output
type OpBrightness struct {
	ops.OpUnaryBase
	Factor float64 `json:"factor"`
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpBrightnessDefault() }) } // register the operator for JSON decoding

func NewOpBrightnessDefault() *OpBrightness { return NewOpBrightness(1) }

func NewOpBrightness(factor float64) *OpBrightness {
	op := OpBrightness{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "brightness", Active: true}},
		Factor:      factor,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpBrightness) UnmarshalJSON(data []byte) error {
	type defaults OpBrightness
	def := defaults(*NewOpBrightnessDefault())
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*op = OpBrightness(def)
	op.OpUnaryBase.Apply = op.Apply
	return nil
}

// Operates in-place
func (op *OpBrightness) Apply(f *frame.Frame, c *ops.Context) (result *frame.Frame, err error) {
	if !op.Active {
		return f, nil
	}
	if !isValidFactor(op.Factor) {
		return nil, errs.Invalidf("brightness factor %g", op.Factor)
	}
	c.Log.Info().Msgf("%d: Scaling brightness by %.3g", f.ID, op.Factor)
	f.ApplyScaleOffset(op.Factor, 0)
	return f, nil
}

// Blends all samples with the mean gray level of the frame by the given factor.
// 1 is a no op, 0 gives a uniform gray frame. Takes one input, produces one output
type OpContrast struct {
	ops.OpUnaryBase
	Factor float64 `json:"factor"`
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpContrastDefault() }) } // register the operator for JSON decoding

func NewOpContrastDefault() *OpContrast { return NewOpContrast(1) }

func NewOpContrast(factor float64) *OpContrast {
	op := OpContrast{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "contrast", Active: true}},
		Factor:      factor,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpContrast) UnmarshalJSON(data []byte) error {
	type defaults OpContrast
	def := defaults(*NewOpContrastDefault())
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*op = OpContrast(def)
	op.OpUnaryBase.Apply = op.Apply
	return nil
}

// Operates in-place
func (op *OpContrast) Apply(f *frame.Frame, c *ops.Context) (result *frame.Frame, err error) {
	if !op.Active {
		return f, nil
	}
	if !isValidFactor(op.Factor) {
		return nil, errs.Invalidf("contrast factor %g", op.Factor)
	}
	s, err := stats.GlobalStats(f, frame.LumaRec601, c.MaxThreads)
	if err != nil {
		return nil, err
	}
	mean := math.Floor(s.Brightness*255 + 0.5)
	c.Log.Info().Msgf("%d: Scaling contrast by %.3g around gray level %.0f", f.ID, op.Factor, mean)
	f.ApplyScaleOffset(op.Factor, mean*(1-op.Factor))
	return f, nil
}

// Applies the linear transform alpha*x+beta to all samples, clipping to [0,255].
// Takes one input, produces one output
type OpLevels struct {
	ops.OpUnaryBase
	Alpha float64 `json:"alpha"` // Gain
	Beta  float64 `json:"beta"`  // Offset in sample units
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpLevelsDefault() }) } // register the operator for JSON decoding

func NewOpLevelsDefault() *OpLevels { return NewOpLevels(1, 0) }

func NewOpLevels(alpha, beta float64) *OpLevels {
	op := OpLevels{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "levels", Active: true}},
		Alpha:       alpha,
		Beta:        beta,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpLevels) UnmarshalJSON(data []byte) error {
	type defaults OpLevels
	def := defaults(*NewOpLevelsDefault())
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*op = OpLevels(def)
	op.OpUnaryBase.Apply = op.Apply
	return nil
}

// Operates in-place
func (op *OpLevels) Apply(f *frame.Frame, c *ops.Context) (result *frame.Frame, err error) {
	if !op.Active {
		return f, nil
	}
	if math.IsNaN(op.Alpha) || math.IsInf(op.Alpha, 0) || math.IsNaN(op.Beta) || math.IsInf(op.Beta, 0) {
		return nil, errs.Invalidf("levels alpha %g beta %g", op.Alpha, op.Beta)
	}
	c.Log.Info().Msgf("%d: Applying levels %.3g*x%+.3g", f.ID, op.Alpha, op.Beta)
	f.ApplyScaleOffset(op.Alpha, op.Beta)
	return f, nil
}

func isValidFactor(f float64) bool {
	return f >= 0 && !math.IsInf(f, 1)
}
