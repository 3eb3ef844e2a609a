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

package sr

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mlnoga/resonance/internal/condition"
	"github.com/mlnoga/resonance/internal/errs"
	"github.com/mlnoga/resonance/internal/frame"
	"github.com/mlnoga/resonance/internal/level"
	"github.com/mlnoga/resonance/internal/noise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clearDay = condition.DrivingConditions{
	Weather:    condition.Clear,
	TimeOfDay:  condition.Day,
	SpeedKMH:   60,
	AmbientLux: 50000,
}

var foggyNight = condition.DrivingConditions{Weather: condition.Fog, TimeOfDay: condition.Night}

func filledFrame(t *testing.T, width, height, channels int, value uint8) *frame.Frame {
	t.Helper()
	f, err := frame.New(width, height, channels)
	require.NoError(t, err)
	for i := range f.Data {
		f.Data[i] = value
	}
	return f
}

func TestAdaptiveGrayExample(t *testing.T) {
	f := filledFrame(t, 4, 4, 3, 128)
	res, err := NewEngine().Adaptive(f, clearDay, nil, 1)
	require.NoError(t, err)
	assert.True(t, res.Frame.SameShape(f))
	assert.InDelta(t, 0.1406, res.Intensity.Mean, 1e-4)
	assert.Equal(t, res.Intensity.Min, res.Intensity.Max)
	assert.Equal(t, uint64(1), res.Seed)
}

func TestAdaptiveBlackFrameHitsMax(t *testing.T) {
	f := filledFrame(t, 16, 16, 3, 0)
	res, err := NewEngine().Adaptive(f, foggyNight, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.3, res.Intensity.Mean)
}

func TestAdaptiveIsDeterministic(t *testing.T) {
	f := filledFrame(t, 24, 16, 3, 90)
	e := NewEngine()
	a, err := e.Adaptive(f, clearDay, nil, 77)
	require.NoError(t, err)
	b, err := e.Adaptive(f, clearDay, nil, 77)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(a.Frame.Data, b.Frame.Data))
}

func TestStatisticsComeFromRegion(t *testing.T) {
	// left half black, right half white
	width, height := 20, 10
	f := filledFrame(t, width, height, 1, 0)
	for y := 0; y < height; y++ {
		for x := width / 2; x < width; x++ {
			f.Data[y*width+x] = 255
		}
	}
	e := NewEngine()
	dc := clearDay
	dc.SpeedKMH = 0

	dark := frame.Region{X: 0, Y: 0, Width: width / 2, Height: height}
	bright := frame.Region{X: width / 2, Y: 0, Width: width / 2, Height: height}
	resDark, err := e.Adaptive(f, dc, &dark, 3)
	require.NoError(t, err)
	resBright, err := e.Adaptive(f, dc, &bright, 3)
	require.NoError(t, err)

	wantDark, err := e.Calibration.Level(dc, 0, 0)
	require.NoError(t, err)
	wantBright, err := e.Calibration.Level(dc, 1, 0)
	require.NoError(t, err)
	assert.InDelta(t, wantDark, resDark.Intensity.Mean, 1e-12)
	assert.InDelta(t, wantBright, resBright.Intensity.Mean, 1e-12)
	assert.Greater(t, resDark.Intensity.Mean, resBright.Intensity.Mean)

	// the bright half is untouched when processing the dark half
	for y := 0; y < height; y++ {
		for x := width / 2; x < width; x++ {
			require.Equal(t, uint8(255), resDark.Frame.Data[y*width+x])
		}
	}
}

func TestSpatialMap(t *testing.T) {
	f := filledFrame(t, 30, 20, 3, 51)
	res, err := NewEngine().Spatial(f, 0, 5, nil, 12)
	require.NoError(t, err)
	assert.InDelta(t, 0.08, res.Intensity.Min, 1e-9)
	assert.InDelta(t, 0.08, res.Intensity.Max, 1e-9)
	assert.True(t, res.Frame.SameShape(f))
}

func TestFixedWithRegion(t *testing.T) {
	f := filledFrame(t, 12, 12, 3, 128)
	roi := frame.Region{X: 4, Y: 4, Width: 4, Height: 4}
	res, err := NewEngine().Fixed(f, 0.5, noise.SaltAndPepper, &roi, 5, false)
	require.NoError(t, err)
	assert.Equal(t, level.Summary{Min: 0.5, Mean: 0.5, Max: 0.5}, res.Intensity)
	size := f.Pixels()
	for i := 0; i < size; i++ {
		x, y := i%f.Width, i/f.Width
		if x < 4 || x >= 8 || y < 4 || y >= 8 {
			require.Equal(t, uint8(128), res.Frame.Data[i])
		}
	}
}

func TestEngineErrors(t *testing.T) {
	f := filledFrame(t, 8, 8, 3, 128)
	e := NewEngine()

	roi := frame.Region{X: 5, Y: 5, Width: 5, Height: 5}
	_, err := e.Adaptive(f, clearDay, &roi, 1)
	assert.ErrorIs(t, err, errs.ErrInvalidRegion)

	bad := clearDay
	bad.SpeedKMH = -10
	_, err = e.Adaptive(f, bad, nil, 1)
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)

	_, err = e.Adaptive(f, condition.DrivingConditions{Weather: condition.Rain}, nil, 1)
	assert.ErrorIs(t, err, errs.ErrUnmappedCondition)

	_, err = e.Spatial(f, 0.1, -1, nil, 1)
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)

	_, err = e.Fixed(f, -0.1, noise.Uniform, nil, 1, false)
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
}

func TestNilSmoothingFallsBackToDefault(t *testing.T) {
	f := filledFrame(t, 10, 10, 1, 128)
	e := NewEngine()
	e.Smoothing = nil
	_, err := e.Fixed(f, 0.1, noise.Gaussian, nil, 1, true)
	require.NoError(t, err)
}
