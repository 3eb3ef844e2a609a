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

package stats

import (
	"fmt"

	"github.com/mlnoga/resonance/internal/errs"
	"github.com/mlnoga/resonance/internal/frame"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Basic statistics on the luminance of a frame or region
type Stats struct {
	Min        float64 `json:"min"`        // Minimum luminance, in [0,255]
	Max        float64 `json:"max"`        // Maximum luminance, in [0,255]
	Brightness float64 `json:"brightness"` // Mean luminance normalized to [0,1]
	Contrast   float64 `json:"contrast"`   // Standard deviation of luminance normalized to [0,1]
	Noise      float64 `json:"noise"`      // Estimated gaussian noise sigma, in [0,255]
}

// Pretty print basic stats to string
func (s Stats) String() string {
	return fmt.Sprintf("Min %.4g Max %.4g Brightness %.4g Contrast %.4g Noise %.4g",
		s.Min, s.Max, s.Brightness, s.Contrast, s.Noise)
}

// Calculates global brightness and contrast of the frame from its luminance
func GlobalStats(f *frame.Frame, mode frame.LumaMode, maxThreads int) (s Stats, err error) {
	lum, err := frame.Luminance(f, mode, maxThreads)
	if err != nil {
		return s, err
	}
	return CalcStats(lum, f.Width)
}

// Calculates statistics for a luminance plane of the given width
func CalcStats(lum []uint8, width int) (s Stats, err error) {
	if len(lum) == 0 || width <= 0 || len(lum)%width != 0 {
		return s, errs.Shapef("%d luminance samples with width %d", len(lum), width)
	}
	xs := frame.PoolFloat64.Get(len(lum))
	defer frame.PoolFloat64.Put(xs)
	for i, l := range lum {
		xs[i] = float64(l)
	}

	mean, stdDev := stat.PopMeanStdDev(xs, nil)
	s.Min, s.Max = floats.Min(xs), floats.Max(xs)
	s.Brightness = mean / 255
	s.Contrast = stdDev / 255
	s.Noise = EstimateNoise(lum, width)
	return s, nil
}
