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
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/mlnoga/resonance/internal/errs"
)

// Enumerated type for grayscale reduction modes
type LumaMode int

const (
	LumaRec601 LumaMode = iota // Y = 0.299R + 0.587G + 0.114B, the standard video grayscale reduction
	LumaLab                    // CIE L* of the sRGB color, scaled to [0,255]
)

var lumaModeNames = map[LumaMode]string{
	LumaRec601: "rec601",
	LumaLab:    "lab",
}

func (m LumaMode) String() string {
	if s, ok := lumaModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("LumaMode(%d)", int(m))
}

func (m LumaMode) MarshalText() ([]byte, error) {
	s, ok := lumaModeNames[m]
	if !ok {
		return nil, errs.Invalidf("luma mode %d", int(m))
	}
	return []byte(s), nil
}

func (m *LumaMode) UnmarshalText(b []byte) error {
	parsed, err := ParseLumaMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Parses a luma mode name, case insensitive
func ParseLumaMode(s string) (LumaMode, error) {
	for m, name := range lumaModeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, errs.Invalidf("luma mode %q", s)
}

// Reduces a frame to a single luminance plane.
// Single-channel frames are returned as a copy of their only plane.
func Luminance(f *Frame, mode LumaMode, maxThreads int) ([]uint8, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if f.Channels == 1 {
		return append([]uint8(nil), f.Data...), nil
	}
	if f.Channels != 3 {
		return nil, errs.Shapef("luminance of %d channel frame", f.Channels)
	}

	lum := make([]uint8, f.Pixels())
	rs, gs, bs := f.Plane(0), f.Plane(1), f.Plane(2)
	switch mode {
	case LumaRec601:
		ForEachRowBatch(f.Height, maxThreads, func(lower, upper int) {
			for i := lower * f.Width; i < upper*f.Width; i++ {
				y := 0.299*float64(rs[i]) + 0.587*float64(gs[i]) + 0.114*float64(bs[i])
				lum[i] = ClampToUint8(y)
			}
		})
	case LumaLab:
		ForEachRowBatch(f.Height, maxThreads, func(lower, upper int) {
			for i := lower * f.Width; i < upper*f.Width; i++ {
				col := colorful.Color{R: float64(rs[i]) / 255, G: float64(gs[i]) / 255, B: float64(bs[i]) / 255}
				l, _, _ := col.Lab()
				lum[i] = ClampToUint8(l * 255)
			}
		})
	default:
		return nil, errs.Invalidf("luma mode %d", int(mode))
	}
	return lum, nil
}
