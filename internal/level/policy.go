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
	"github.com/mlnoga/resonance/internal/condition"
	"github.com/mlnoga/resonance/internal/frame"
	"github.com/mlnoga/resonance/internal/stats"
)

// A noise policy derives the intensity source for a frame
type Policy interface {
	Intensity(f *frame.Frame) (Intensity, error)
}

// Condition-driven policy: global luminance statistics fused with driving conditions into one scalar
type ConditionPolicy struct {
	Calibration Calibration
	Conditions  condition.DrivingConditions
	Luminance   frame.LumaMode
	MaxThreads  int
}

func (p *ConditionPolicy) Intensity(f *frame.Frame) (Intensity, error) {
	// fail on bad conditions before touching pixels
	if err := p.Calibration.Validate(); err != nil {
		return nil, err
	}
	if err := p.Conditions.Validate(); err != nil {
		return nil, err
	}
	s, err := stats.GlobalStats(f, p.Luminance, p.MaxThreads)
	if err != nil {
		return nil, err
	}
	l, err := p.Calibration.Level(p.Conditions, s.Brightness, s.Contrast)
	if err != nil {
		return nil, err
	}
	return Constant(l), nil
}

// Image-driven policy: a per-pixel map from the box-filtered luminance, no metadata needed
type ImagePolicy struct {
	Calibration Calibration
	BaseNoise   float64 // Map base, defaults to Calibration.BaseNoise if zero
	Window      int     // Box filter window, defaults to stats.DefaultWindow if zero
	Luminance   frame.LumaMode
	MaxThreads  int
}

func (p *ImagePolicy) Intensity(f *frame.Frame) (Intensity, error) {
	base := p.BaseNoise
	if base == 0 {
		base = p.Calibration.BaseNoise
	}
	window := p.Window
	if window == 0 {
		window = stats.DefaultWindow
	}
	if err := p.Calibration.Validate(); err != nil {
		return nil, err
	}
	local, err := stats.LocalContrastMapOfFrame(f, p.Luminance, window, p.MaxThreads)
	if err != nil {
		return nil, err
	}
	return p.Calibration.LevelMap(base, local, f.Width, f.Height)
}

// Fixed policy: a user-chosen constant level, as set by a slider
type FixedPolicy struct {
	Level float64
}

func (p *FixedPolicy) Intensity(f *frame.Frame) (Intensity, error) {
	c := Constant(p.Level)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
