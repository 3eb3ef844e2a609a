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

// Package region restricts frame operations to a rectangular region of interest,
// compositing the processed region into an otherwise unchanged copy of the frame.
package region

import (
	"github.com/mlnoga/resonance/internal/errs"
	"github.com/mlnoga/resonance/internal/frame"
)

// A frame operation. Must return a frame of the same shape as its input
type Op func(f *frame.Frame) (*frame.Frame, error)

// Runs op on the given region of interest of f, or on the whole frame if roi is nil.
// Pixels outside the region are copied unchanged. The caller's frame is never modified,
// as long as op does not modify its input.
func Apply(f *frame.Frame, roi *frame.Region, op Op) (*frame.Frame, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if roi == nil {
		res, err := op(f)
		if err != nil {
			return nil, err
		}
		if !res.SameShape(f) {
			return nil, errs.Shapef("operation turned %s frame into %s", f.DimensionsToString(), res.DimensionsToString())
		}
		return res, nil
	}
	if err := roi.Within(f.Width, f.Height); err != nil {
		return nil, err
	}

	sub, err := f.Crop(*roi)
	if err != nil {
		return nil, err
	}
	processed, err := op(sub)
	if err != nil {
		return nil, err
	}
	if !processed.SameShape(sub) {
		return nil, errs.Shapef("operation turned %s region into %s", sub.DimensionsToString(), processed.DimensionsToString())
	}
	res := f.Clone()
	if err := res.Paste(processed, *roi); err != nil {
		return nil, err
	}
	return res, nil
}
