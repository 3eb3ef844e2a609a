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

package noise

import (
	"fmt"
	"math"

	"github.com/mlnoga/resonance/internal/errs"
	"github.com/mlnoga/resonance/internal/frame"
)

// Edge-preserving smoothing. Averages pixels within a circular window,
// weighted by spatial distance and by intensity difference to the center pixel
type Bilateral struct {
	Diameter   int     `json:"diameter"`   // Window diameter. If <= 0, derived from SigmaSpace
	SigmaColor float64 `json:"sigmaColor"` // Range sigma in 8-bit sample units
	SigmaSpace float64 `json:"sigmaSpace"` // Spatial sigma in pixels
}

// Returns the reference smoothing parameters: diameter 9, both sigmas 75
func DefaultBilateral() *Bilateral {
	return &Bilateral{Diameter: 9, SigmaColor: 75, SigmaSpace: 75}
}

func (b *Bilateral) String() string {
	return fmt.Sprintf("bilateral d=%d sigmaColor=%g sigmaSpace=%g", b.Diameter, b.SigmaColor, b.SigmaSpace)
}

// Checks that both sigmas are positive and finite
func (b *Bilateral) Validate() error {
	if !(b.SigmaColor > 0) || math.IsInf(b.SigmaColor, 1) {
		return errs.Invalidf("bilateral sigmaColor %g", b.SigmaColor)
	}
	if !(b.SigmaSpace > 0) || math.IsInf(b.SigmaSpace, 1) {
		return errs.Invalidf("bilateral sigmaSpace %g", b.SigmaSpace)
	}
	return nil
}

// Window radius in pixels
func (b *Bilateral) radius() int {
	if b.Diameter > 0 {
		return b.Diameter / 2
	}
	return int(math.Round(b.SigmaSpace * 1.5))
}

// Offset and spatial weight of one window tap
type tap struct {
	dx, dy int
	weight float64
}

// Precomputes the circular window
func (b *Bilateral) taps() []tap {
	r := b.radius()
	gaussSpace := -0.5 / (b.SigmaSpace * b.SigmaSpace)
	taps := make([]tap, 0, (2*r+1)*(2*r+1))
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			d := math.Sqrt(float64(dx*dx + dy*dy))
			if d > float64(r) {
				continue
			}
			taps = append(taps, tap{dx: dx, dy: dy, weight: math.Exp(d * d * gaussSpace)})
		}
	}
	return taps
}

// Precomputes the range weights for all absolute sample differences
func (b *Bilateral) colorWeights() (lut [256]float64) {
	gaussColor := -0.5 / (b.SigmaColor * b.SigmaColor)
	for i := range lut {
		lut[i] = math.Exp(float64(i*i) * gaussColor)
	}
	return lut
}

// Filters one plane from src into dst, which must not overlap. Borders reflect
// without repeating the edge pixel. Rows are tiled across at most maxThreads goroutines
func (b *Bilateral) FilterPlane(dst, src []uint8, width, height, maxThreads int) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if width <= 0 || height <= 0 || len(src) != width*height || len(dst) != len(src) {
		return errs.Shapef("bilateral filter of %d samples into %d for %dx%d plane", len(src), len(dst), width, height)
	}
	r := b.radius()
	taps := b.taps()
	lut := b.colorWeights()
	offsets := make([]int, len(taps))
	for i, t := range taps {
		offsets[i] = t.dy*width + t.dx
	}

	frame.ForEachRowBatch(height, maxThreads, func(lower, upper int) {
		for y := lower; y < upper; y++ {
			interiorRow := y >= r && y < height-r
			for x := 0; x < width; x++ {
				i := y*width + x
				center := int(src[i])
				sum, norm := 0.0, 0.0
				if interiorRow && x >= r && x < width-r {
					for k, o := range offsets {
						v := int(src[i+o])
						w := taps[k].weight * lut[absInt(v-center)]
						sum += w * float64(v)
						norm += w
					}
				} else {
					for _, t := range taps {
						v := int(src[reflect101(y+t.dy, height)*width+reflect101(x+t.dx, width)])
						w := t.weight * lut[absInt(v-center)]
						sum += w * float64(v)
						norm += w
					}
				}
				dst[i] = clip(sum / norm)
			}
		}
	})
	return nil
}

// Filters all planes of the frame into a new frame
func (b *Bilateral) Filter(f *frame.Frame, maxThreads int) (*frame.Frame, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	res := frame.NewFromFrame(f)
	err := frame.ForEachChannel(f.Channels, maxThreads, func(c int) error {
		return b.FilterPlane(res.Plane(c), f.Plane(c), f.Width, f.Height, maxThreads)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Border index mapping gfedcb|abcdefgh|gfedcba
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}

func absInt(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
