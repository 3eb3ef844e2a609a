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

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mlnoga/resonance/internal/condition"
	"github.com/mlnoga/resonance/internal/errs"
	"github.com/mlnoga/resonance/internal/frame"
	"github.com/mlnoga/resonance/internal/level"
	"github.com/mlnoga/resonance/internal/noise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeFile(t, "calib.json", `{"maxNoise": 0.5, "weatherFactors": {"fog": 2.0}}`)
	cf, err := Load(path)
	require.NoError(t, err)

	c, err := cf.Calibration(level.DefaultCalibration())
	require.NoError(t, err)
	assert.Equal(t, level.DefaultBaseNoise, c.BaseNoise)
	assert.Equal(t, 0.5, c.MaxNoise)

	fog, err := c.Factors.WeatherFactor(condition.Fog)
	require.NoError(t, err)
	assert.Equal(t, 2.0, fog)
	rain, err := c.Factors.WeatherFactor(condition.Rain)
	require.NoError(t, err)
	assert.Equal(t, 1.2, rain)
	night, err := c.Factors.TimeFactor(condition.Night)
	require.NoError(t, err)
	assert.Equal(t, 1.5, night)

	assert.Equal(t, noise.DefaultBilateral(), cf.SmoothingOr(noise.DefaultBilateral()))
	assert.Equal(t, 21, cf.WindowOr(21))
	assert.Equal(t, frame.LumaRec601, cf.LuminanceOr(frame.LumaRec601))
}

func TestLoadFullFile(t *testing.T) {
	path := writeFile(t, "full.json", `{
		"baseNoise": 0.05,
		"maxNoise": 0.2,
		"timeFactors": {"dawnDusk": 1.1},
		"smoothing": {"diameter": 5, "sigmaColor": 30, "sigmaSpace": 10},
		"window": 15,
		"luminance": "lab"
	}`)
	cf, err := Load(path)
	require.NoError(t, err)
	c, err := cf.Calibration(level.DefaultCalibration())
	require.NoError(t, err)
	assert.Equal(t, 0.05, c.BaseNoise)
	dd, err := c.Factors.TimeFactor(condition.DawnDusk)
	require.NoError(t, err)
	assert.Equal(t, 1.1, dd)
	assert.Equal(t, &noise.Bilateral{Diameter: 5, SigmaColor: 30, SigmaSpace: 10}, cf.SmoothingOr(nil))
	assert.Equal(t, 15, cf.WindowOr(21))
	assert.Equal(t, frame.LumaLab, cf.LuminanceOr(frame.LumaRec601))
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    error
	}{
		{"base above max", "a.json", `{"baseNoise": 0.5}`, errs.ErrInvalidParameter},
		{"negative factor", "b.json", `{"weatherFactors": {"rain": -1}}`, errs.ErrInvalidParameter},
		{"unknown weather", "c.json", `{"weatherFactors": {"hail": 1.4}}`, errs.ErrUnmappedCondition},
		{"bad window", "d.json", `{"window": 0}`, errs.ErrInvalidParameter},
		{"bad smoothing", "e.json", `{"smoothing": {"diameter": 9}}`, errs.ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	_, err := Load(writeFile(t, "calib.yaml", `{}`))
	assert.ErrorContains(t, err, ".json extension")

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to stat")

	_, err = Load(writeFile(t, "broken.json", `{"baseNoise": `))
	assert.ErrorContains(t, err, "failed to parse")

	big := `{"baseNoise": 0.1` + strings.Repeat(" ", maxFileSize) + `}`
	_, err = Load(writeFile(t, "big.json", big))
	assert.ErrorContains(t, err, "too large")
}
