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

// Package sr orchestrates the stochastic resonance pipeline: a noise policy derives
// the intensity from the frame, noise is applied and optionally smoothed, and the
// whole is restricted to a region of interest when one is given.
package sr

import (
	"fmt"

	"github.com/mlnoga/resonance/internal/condition"
	"github.com/mlnoga/resonance/internal/frame"
	"github.com/mlnoga/resonance/internal/level"
	"github.com/mlnoga/resonance/internal/noise"
	"github.com/mlnoga/resonance/internal/region"
)

// The noise engine. Stateless and safe for concurrent use on distinct frames
type Engine struct {
	Calibration level.Calibration
	Smoothing   *noise.Bilateral // Smoothing for edge-preserving requests
	Luminance   frame.LumaMode
	MaxThreads  int
}

// Creates an engine with the default calibration and smoothing
func NewEngine() *Engine {
	return &Engine{
		Calibration: level.DefaultCalibration(),
		Smoothing:   noise.DefaultBilateral(),
		Luminance:   frame.LumaRec601,
	}
}

// Parameters of one processing call
type Request struct {
	ROI          *frame.Region      // Region of interest, or nil for the whole frame
	Distribution noise.Distribution
	Seed         uint64             // Caller-owned seed, never advanced by the engine
	Smooth       bool               // Apply edge-preserving smoothing after the noise
}

// Result of one processing call
type Result struct {
	Frame     *frame.Frame  // The processed frame, a new buffer
	Intensity level.Summary // Noise intensity applied within the region
	Seed      uint64
}

func (r *Result) String() string {
	return fmt.Sprintf("level %v seed %d", r.Intensity, r.Seed)
}

// Processes the frame with the given policy. Statistics are taken from the region of
// interest only. Returns a new frame; the input is not modified
func (e *Engine) Process(f *frame.Frame, policy level.Policy, req Request) (*Result, error) {
	opts := noise.Options{MaxThreads: e.MaxThreads}
	if req.Smooth {
		opts.Smooth = e.Smoothing
		if opts.Smooth == nil {
			opts.Smooth = noise.DefaultBilateral()
		}
	}
	var summary level.Summary
	out, err := region.Apply(f, req.ROI, func(sub *frame.Frame) (*frame.Frame, error) {
		in, err := policy.Intensity(sub)
		if err != nil {
			return nil, err
		}
		summary = in.Summary()
		return noise.Apply(sub, in, req.Distribution, noise.NewStreams(req.Seed), opts)
	})
	if err != nil {
		return nil, err
	}
	return &Result{Frame: out, Intensity: summary, Seed: req.Seed}, nil
}

// Condition-driven processing: scalar level from driving conditions and global
// statistics, gaussian noise, edge-preserving smoothing
func (e *Engine) Adaptive(f *frame.Frame, dc condition.DrivingConditions, roi *frame.Region, seed uint64) (*Result, error) {
	p := &level.ConditionPolicy{
		Calibration: e.Calibration,
		Conditions:  dc,
		Luminance:   e.Luminance,
		MaxThreads:  e.MaxThreads,
	}
	return e.Process(f, p, Request{ROI: roi, Distribution: noise.Gaussian, Seed: seed, Smooth: true})
}

// Image-driven processing: per-pixel level from the box-filtered luminance with the
// given base noise and window, gaussian noise, no smoothing. Zero values select defaults
func (e *Engine) Spatial(f *frame.Frame, baseNoise float64, window int, roi *frame.Region, seed uint64) (*Result, error) {
	p := &level.ImagePolicy{
		Calibration: e.Calibration,
		BaseNoise:   baseNoise,
		Window:      window,
		Luminance:   e.Luminance,
		MaxThreads:  e.MaxThreads,
	}
	return e.Process(f, p, Request{ROI: roi, Distribution: noise.Gaussian, Seed: seed})
}

// Fixed-level processing with a chosen distribution
func (e *Engine) Fixed(f *frame.Frame, l float64, dist noise.Distribution, roi *frame.Region, seed uint64, smooth bool) (*Result, error) {
	return e.Process(f, &level.FixedPolicy{Level: l}, Request{ROI: roi, Distribution: dist, Seed: seed, Smooth: smooth})
}
