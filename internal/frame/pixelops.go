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
	"errors"
	"fmt"
	"runtime"
)

//////////////////////////////////////////////////////////////////
// CPU-limited pixel operations. Parallelized across CPUs
//////////////////////////////////////////////////////////////////

// A pixel function. Operates in-place on a batch of samples. For parallelization across CPUs.
type PixelFunction func(data []uint8, params interface{})

// A channel function. Processes channel plane c. For parallelization across CPUs.
type ChannelFunction func(c int) error

// A row function. Processes rows [lower, upper). For parallelization across CPUs.
type RowFunction func(lower, upper int)

// Returns the given thread limit, or the number of CPUs if zero or negative
func threadLimit(maxThreads int) int {
	if maxThreads <= 0 {
		return runtime.NumCPU()
	}
	return maxThreads
}

// Apply given pixel function to all samples of the frame. Uses thread parallelism across all available CPUs. Operates in-place.
func (f *Frame) ApplyPixelFunction(pf PixelFunction, args interface{}) {
	applyBatched(f.Data, pf, args)
}

// Apply given pixel function to the given channel of the frame. Operates in-place.
func (f *Frame) ApplyPixelFunction1Chan(c int, pf PixelFunction, args interface{}) {
	applyBatched(f.Plane(c), pf, args)
}

func applyBatched(data []uint8, pf PixelFunction, args interface{}) {
	// split into 8*NumCPU() work packages, limit parallelism to NumCPUS()
	numBatches := 8 * runtime.NumCPU()
	batchSize := (len(data) + numBatches - 1) / (numBatches)
	sem := make(chan bool, runtime.NumCPU())
	for lower := 0; lower < len(data); lower += batchSize {
		upper := lower + batchSize
		if upper > len(data) {
			upper = len(data)
		}

		sem <- true
		go func(data []uint8) {
			pf(data, args)
			<-sem
		}(data[lower:upper])
	}

	for i := 0; i < cap(sem); i++ { // wait for goroutines to finish
		sem <- true
	}
}

// Runs the channel function once per channel, at most maxThreads at a time.
// Collects all errors; the output for one channel never depends on another.
func ForEachChannel(channels, maxThreads int, cf ChannelFunction) (err error) {
	limiter := make(chan bool, threadLimit(maxThreads))
	errs := make(chan error, channels)
	for c := 0; c < channels; c++ {
		limiter <- true
		go func(c int) {
			defer func() { <-limiter }()
			errs <- cf(c)
		}(c)
	}
	for i := 0; i < cap(limiter); i++ { // wait for goroutines to finish
		limiter <- true
	}
	for i := 0; i < channels; i++ { // collect errors
		if e := <-errs; e != nil {
			if err == nil {
				err = e
			} else {
				err = errors.New(fmt.Sprintf("%s; %s", err.Error(), e.Error()))
			}
		}
	}
	return err
}

// Splits the rows [0, height) into batches and runs the row function on each,
// at most maxThreads at a time
func ForEachRowBatch(height, maxThreads int, rf RowFunction) {
	threads := threadLimit(maxThreads)
	numBatches := 4 * threads
	if numBatches > height {
		numBatches = height
	}
	batchSize := (height + numBatches - 1) / numBatches
	sem := make(chan bool, threads)
	for lower := 0; lower < height; lower += batchSize {
		upper := lower + batchSize
		if upper > height {
			upper = height
		}

		sem <- true
		go func(lower, upper int) {
			rf(lower, upper)
			<-sem
		}(lower, upper)
	}

	for i := 0; i < cap(sem); i++ { // wait for goroutines to finish
		sem <- true
	}
}

// Clamps a float to the valid sample range, rounding to nearest
func ClampToUint8(v float64) uint8 {
	if v != v || v <= 0 { // NaN or negative
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

type pfScaleOffsetArgs struct {
	Scale  float64
	Offset float64
}

// Pixel function to apply a linear transform scale*x+offset, clipping to [0,255]
func pfScaleOffset(data []uint8, params interface{}) {
	p := params.(pfScaleOffsetArgs)
	for i, d := range data {
		data[i] = ClampToUint8(p.Scale*float64(d) + p.Offset)
	}
}

// Applies scale*x+offset to all samples, clipping to [0,255]. Operates in-place
func (f *Frame) ApplyScaleOffset(scale, offset float64) {
	f.ApplyPixelFunction(pfScaleOffset, pfScaleOffsetArgs{scale, offset})
}
