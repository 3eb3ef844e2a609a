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
	"math/rand/v2"

	"github.com/mlnoga/resonance/internal/errs"
	"github.com/mlnoga/resonance/internal/frame"
	"github.com/mlnoga/resonance/internal/level"
)

// Options for applying noise
type Options struct {
	Smooth     *Bilateral // Edge-preserving smoothing after noise injection, or nil for none
	MaxThreads int        // Parallelism limit, or 0 for the number of CPUs
}

// Applies noise of the given distribution and per-pixel intensity to the source frame.
// Returns a new frame of identical shape; the source is not modified.
// Output is reproducible for identical shape, intensity, distribution and seed.
func Apply(src *frame.Frame, in level.Intensity, dist Distribution, streams Streams, opts Options) (*frame.Frame, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if in == nil || !in.Fits(src.Width, src.Height) {
		return nil, errs.Shapef("noise intensity does not fit %s frame", src.DimensionsToString())
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if opts.Smooth != nil {
		if err := opts.Smooth.Validate(); err != nil {
			return nil, err
		}
	}
	gen, err := NewGenerator(dist)
	if err != nil {
		return nil, err
	}

	dst := frame.NewFromFrame(src)
	switch g := gen.(type) {
	case ChannelGenerator:
		err = frame.ForEachChannel(src.Channels, opts.MaxThreads, func(c int) error {
			applyChannel(dst.Plane(c), src.Plane(c), in, g, streams.Channel(c))
			return smoothChannel(dst, c, opts)
		})
	case PixelGenerator:
		copy(dst.Data, src.Data)
		applyPixels(dst, in, g, streams.Mask())
		err = frame.ForEachChannel(src.Channels, opts.MaxThreads, func(c int) error {
			return smoothChannel(dst, c, opts)
		})
	default:
		return nil, errs.Invalidf("noise generator for %v", dist)
	}
	if err != nil {
		return nil, err
	}
	return dst, nil
}

// Writes the noisy version of one plane
func applyChannel(dst, src []uint8, in level.Intensity, g ChannelGenerator, r *rand.Rand) {
	for i, v := range src {
		dst[i] = g.Sample(v, in.At(i), r)
	}
}

// Sets salt and pepper specks across all channels of each affected pixel. Operates in-place
func applyPixels(f *frame.Frame, in level.Intensity, g PixelGenerator, r *rand.Rand) {
	size := f.Pixels()
	for i := 0; i < size; i++ {
		var value uint8
		switch g.Speck(in.At(i), r) {
		case Salt:
			value = 255
		case Pepper:
			value = 0
		default:
			continue
		}
		for c := 0; c < f.Channels; c++ {
			f.Data[c*size+i] = value
		}
	}
}

// Runs the optional smoothing pass on one plane of the frame. Operates in-place
func smoothChannel(f *frame.Frame, c int, opts Options) error {
	if opts.Smooth == nil {
		return nil
	}
	plane := f.Plane(c)
	tmp := frame.PoolUint8.Get(len(plane))
	defer frame.PoolUint8.Put(tmp)
	copy(tmp, plane)
	return opts.Smooth.FilterPlane(plane, tmp, f.Width, f.Height, opts.MaxThreads)
}
