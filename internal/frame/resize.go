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
	"github.com/mlnoga/resonance/internal/errs"
	"github.com/nfnt/resize"
)

// Returns a resampled copy of the frame with Lanczos-3 interpolation.
// A zero width or height preserves the aspect ratio.
func (f *Frame) Resize(width, height int) (*Frame, error) {
	if width < 0 || height < 0 || (width == 0 && height == 0) {
		return nil, errs.Invalidf("resize to %dx%d", width, height)
	}
	img := resize.Resize(uint(width), uint(height), f.ToImage(), resize.Lanczos3)
	res, err := NewFromImage(img)
	if err != nil {
		return nil, err
	}
	if f.Channels == 1 && res.Channels == 3 {
		// some resampling paths widen gray images; keep the channel count
		res.Channels, res.Data = 1, append([]uint8(nil), res.Plane(0)...)
	}
	res.ID, res.FileName = f.ID, f.FileName
	return res, nil
}
