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

package resonance

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mlnoga/resonance/internal/condition"
	"github.com/mlnoga/resonance/internal/frame"
	"github.com/mlnoga/resonance/internal/logging"
	"github.com/mlnoga/resonance/internal/noise"
	"github.com/mlnoga/resonance/internal/ops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame(t *testing.T, id int) *frame.Frame {
	t.Helper()
	f, err := frame.New(16, 12, 3)
	require.NoError(t, err)
	f.ID = id
	for i := range f.Data {
		f.Data[i] = uint8(40 + i%150)
	}
	return f
}

func promiseOf(f *frame.Frame) ops.Promise {
	return func() (*frame.Frame, error) { return f, nil }
}

func TestSeedFor(t *testing.T) {
	assert.Equal(t, uint64(42), seedFor(42))
	assert.Equal(t, uint64(0), seedFor(0))
	assert.NotEqual(t, seedFor(RandomSeed), seedFor(RandomSeed))
}

func TestAdaptiveMatchesEngine(t *testing.T) {
	c := ops.NewContext(logging.Nop())
	dc := condition.DrivingConditions{Weather: condition.Rain, TimeOfDay: condition.Night, SpeedKMH: 80, AmbientLux: 5}
	in := testFrame(t, 3)

	out, err := NewOpAdaptive(dc, nil, 9).Apply(in, c)
	require.NoError(t, err)
	want, err := c.Engine.Adaptive(in, dc, nil, 9)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(want.Frame.Data, out.Data))
	assert.Equal(t, 3, out.ID)
	assert.NotEqual(t, in.Data, out.Data)
}

func TestSpatialRespectsROI(t *testing.T) {
	c := ops.NewContext(logging.Nop())
	in := testFrame(t, 0)
	roi := &frame.Region{X: 4, Y: 2, Width: 6, Height: 5}
	out, err := NewOpSpatial(0.2, 3, roi, 1).Apply(in, c)
	require.NoError(t, err)
	for ch := 0; ch < 3; ch++ {
		for y := 0; y < in.Height; y++ {
			for x := 0; x < in.Width; x++ {
				inside := x >= 4 && x < 10 && y >= 2 && y < 7
				i := ch*in.Pixels() + y*in.Width + x
				if !inside {
					require.Equal(t, in.Data[i], out.Data[i], "pixel %d,%d channel %d", x, y, ch)
				}
			}
		}
	}
}

func TestNoiseFixedSeedReproducible(t *testing.T) {
	c := ops.NewContext(logging.Nop())
	op := NewOpNoise(0.15, noise.Uniform, nil, 5, true)
	a, err := op.Apply(testFrame(t, 0), c)
	require.NoError(t, err)
	b, err := op.Apply(testFrame(t, 0), c)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(a.Data, b.Data))
}

func TestNoiseRejectsBadLevel(t *testing.T) {
	_, err := NewOpNoise(-0.1, noise.Gaussian, nil, 5, false).Apply(testFrame(t, 0), ops.NewContext(logging.Nop()))
	assert.Error(t, err)
}

func TestStatsPassesThrough(t *testing.T) {
	in := testFrame(t, 0)
	before := append([]uint8(nil), in.Data...)
	out, err := NewOpStats(nil).Apply(in, ops.NewContext(logging.Nop()))
	require.NoError(t, err)
	assert.Same(t, in, out)
	assert.Equal(t, before, out.Data)
}

func TestMeasureUniformFrame(t *testing.T) {
	f, err := frame.New(10, 10, 1)
	require.NoError(t, err)
	for i := range f.Data {
		f.Data[i] = 51
	}
	m, err := Measure(f, nil, ops.NewContext(logging.Nop()))
	require.NoError(t, err)
	assert.InDelta(t, 0.2, m.Brightness, 1e-9)
	assert.Equal(t, 0.0, m.Contrast)
	assert.InDelta(t, 51, m.Mode, 1)
}

func TestMeasureRejectsOutsideROI(t *testing.T) {
	_, err := Measure(testFrame(t, 0), &frame.Region{X: 10, Y: 0, Width: 10, Height: 1}, ops.NewContext(logging.Nop()))
	assert.Error(t, err)
}

func TestAnimateFansOut(t *testing.T) {
	c := ops.NewContext(logging.Nop())
	in0, in1 := testFrame(t, 0), testFrame(t, 1)
	anim := NewOpAnimate(3, NewOpNoise(0.2, noise.Gaussian, nil, RandomSeed, false))
	outs, err := anim.MakePromises([]ops.Promise{promiseOf(in0), promiseOf(in1)}, c)
	require.NoError(t, err)
	frames, err := ops.MaterializeAll(outs, 2, false)
	require.NoError(t, err)
	require.Len(t, frames, 6)
	for i, f := range frames {
		assert.Equal(t, i, f.ID)
	}
	assert.NotEqual(t, frames[0].Data, frames[1].Data)
	assert.Equal(t, testFrame(t, 0).Data, in0.Data, "source frame unchanged")
}

func TestAnimateFixedSeedRepeats(t *testing.T) {
	c := ops.NewContext(logging.Nop())
	anim := NewOpAnimate(2, NewOpNoise(0.2, noise.Gaussian, nil, 11, false))
	outs, err := anim.MakePromises([]ops.Promise{promiseOf(testFrame(t, 0))}, c)
	require.NoError(t, err)
	frames, err := ops.MaterializeAll(outs, 1, false)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Empty(t, cmp.Diff(frames[0].Data, frames[1].Data))
}

func TestAnimateRejectsZeroFrames(t *testing.T) {
	_, err := NewOpAnimate(0, NewOpNoiseDefault()).MakePromises(nil, ops.NewContext(logging.Nop()))
	assert.Error(t, err)
}

func TestPipelineJSON(t *testing.T) {
	op, err := ops.LoadPipeline([]byte(`{"type":"animate","frames":4,"operation":
		{"type":"adaptive","conditions":{"weather":"fog","timeOfDay":"night","speedKmh":30,"ambientLux":2},"seed":3,
		 "roi":{"x":1,"y":1,"width":4,"height":4}}}`))
	require.NoError(t, err)
	anim, ok := op.(*OpAnimate)
	require.True(t, ok)
	assert.Equal(t, 4, anim.Frames)
	assert.True(t, anim.Active)
	ad, ok := anim.Operation.(*OpAdaptive)
	require.True(t, ok)
	assert.Equal(t, condition.Fog, ad.Conditions.Weather)
	assert.Equal(t, condition.Night, ad.Conditions.TimeOfDay)
	assert.Equal(t, int64(3), ad.Seed)
	require.NotNil(t, ad.ROI)
	assert.Equal(t, frame.Region{X: 1, Y: 1, Width: 4, Height: 4}, *ad.ROI)

	op, err = ops.LoadPipeline([]byte(`{"type":"noise","distribution":"saltAndPepper","level":0.05}`))
	require.NoError(t, err)
	n := op.(*OpNoise)
	assert.Equal(t, noise.SaltAndPepper, n.Distribution)
	assert.Equal(t, RandomSeed, n.Seed)
	out, err := n.Apply(testFrame(t, 0), ops.NewContext(logging.Nop()))
	require.NoError(t, err)
	assert.Equal(t, 16, out.Width)
}
