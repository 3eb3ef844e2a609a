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

package frame

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mlnoga/resonance/internal/errs"
)

// An axis-aligned rectangle in frame coordinates
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Returns the region covering the full frame
func (f *Frame) Bounds() Region {
	return Region{X: 0, Y: 0, Width: f.Width, Height: f.Height}
}

// Checks that the region has positive size and lies fully within a frame of the given size
func (r Region) Within(width, height int) error {
	if r.Width <= 0 || r.Height <= 0 {
		return errs.Regionf("region %v has non-positive size", r)
	}
	if r.X < 0 || r.Y < 0 || r.X+r.Width > width || r.Y+r.Height > height {
		return errs.Regionf("region %v outside %dx%d frame", r, width, height)
	}
	return nil
}

func (r Region) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// Parses a region from "x,y,w,h"
func ParseRegion(s string) (Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Region{}, errs.Regionf("region %q, want x,y,w,h", s)
	}
	var vals [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Region{}, errs.Regionf("region %q: %s", s, err.Error())
		}
		vals[i] = v
	}
	return Region{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

// Copies the given region into a new frame
func (f *Frame) Crop(r Region) (*Frame, error) {
	if err := r.Within(f.Width, f.Height); err != nil {
		return nil, err
	}
	sub := &Frame{
		ID:       f.ID,
		FileName: f.FileName,
		Width:    r.Width,
		Height:   r.Height,
		Channels: f.Channels,
		Data:     make([]uint8, r.Width*r.Height*f.Channels),
	}
	for c := 0; c < f.Channels; c++ {
		src, dst := f.Plane(c), sub.Plane(c)
		for y := 0; y < r.Height; y++ {
			srcOff := (r.Y+y)*f.Width + r.X
			copy(dst[y*r.Width:(y+1)*r.Width], src[srcOff:srcOff+r.Width])
		}
	}
	return sub, nil
}

// Writes the given source frame into region r of this frame. Operates in-place
func (f *Frame) Paste(src *Frame, r Region) error {
	if err := r.Within(f.Width, f.Height); err != nil {
		return err
	}
	if src.Width != r.Width || src.Height != r.Height || src.Channels != f.Channels {
		return errs.Shapef("cannot paste %s frame into region %v of %s frame",
			src.DimensionsToString(), r, f.DimensionsToString())
	}
	for c := 0; c < f.Channels; c++ {
		s, d := src.Plane(c), f.Plane(c)
		for y := 0; y < r.Height; y++ {
			dstOff := (r.Y+y)*f.Width + r.X
			copy(d[dstOff:dstOff+r.Width], s[y*r.Width:(y+1)*r.Width])
		}
	}
	return nil
}
