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
	"github.com/mlnoga/resonance/internal/errs"
	"github.com/mlnoga/resonance/internal/frame"
)

// Reference window size for local contrast maps
const DefaultWindow = 21

// Computes a per-pixel local intensity map of the luminance plane with a normalized box filter
// (moving average) over a square window. Pixels beyond the border replicate the nearest edge pixel.
// Even window sizes anchor at window/2. Output values lie in [0,255].
func LocalContrastMap(lum []uint8, width, height, window, maxThreads int) ([]float64, error) {
	if window <= 0 {
		return nil, errs.Invalidf("window size %d", window)
	}
	if width <= 0 || height <= 0 || len(lum) != width*height {
		return nil, errs.Shapef("%d luminance samples for %dx%d map", len(lum), width, height)
	}
	lo := window / 2
	hi := window - 1 - lo

	// horizontal pass: running sums along each row
	rowSums := frame.PoolFloat64.Get(width * height)
	defer frame.PoolFloat64.Put(rowSums)
	frame.ForEachRowBatch(height, maxThreads, func(lower, upper int) {
		for y := lower; y < upper; y++ {
			row := lum[y*width : (y+1)*width]
			out := rowSums[y*width : (y+1)*width]
			sum := 0.0
			for k := -lo; k <= hi; k++ {
				sum += float64(row[clampIndex(k, width)])
			}
			out[0] = sum
			for x := 1; x < width; x++ {
				sum += float64(row[clampIndex(x+hi, width)]) - float64(row[clampIndex(x-1-lo, width)])
				out[x] = sum
			}
		}
	})

	// vertical pass: running sums along each column, per batch of rows
	res := make([]float64, width*height)
	norm := 1.0 / float64(window*window)
	frame.ForEachRowBatch(height, maxThreads, func(lower, upper int) {
		sums := make([]float64, width)
		for k := -lo; k <= hi; k++ {
			src := rowSums[clampIndex(lower+k, height)*width:]
			for x := 0; x < width; x++ {
				sums[x] += src[x]
			}
		}
		for y := lower; y < upper; y++ {
			if y > lower {
				add := rowSums[clampIndex(y+hi, height)*width:]
				sub := rowSums[clampIndex(y-1-lo, height)*width:]
				for x := 0; x < width; x++ {
					sums[x] += add[x] - sub[x]
				}
			}
			out := res[y*width : (y+1)*width]
			for x := 0; x < width; x++ {
				out[x] = sums[x] * norm
			}
		}
	})
	return res, nil
}

// Replicate border handling
func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Computes the local contrast map of a frame's luminance
func LocalContrastMapOfFrame(f *frame.Frame, mode frame.LumaMode, window, maxThreads int) ([]float64, error) {
	if window <= 0 {
		return nil, errs.Invalidf("window size %d", window)
	}
	lum, err := frame.Luminance(f, mode, maxThreads)
	if err != nil {
		return nil, err
	}
	return LocalContrastMap(lum, f.Width, f.Height, window, maxThreads)
}
