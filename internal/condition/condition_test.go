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

package condition

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/mlnoga/resonance/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFactors(t *testing.T) {
	table := DefaultFactorTable()
	weather := map[Weather]float64{Clear: 1.0, Rain: 1.2, Fog: 1.5, Snow: 1.3}
	for w, want := range weather {
		got, err := table.WeatherFactor(w)
		require.NoError(t, err)
		assert.Equal(t, want, got, w.String())
	}
	times := map[TimeOfDay]float64{Day: 0.8, DawnDusk: 1.2, Night: 1.5}
	for d, want := range times {
		got, err := table.TimeFactor(d)
		require.NoError(t, err)
		assert.Equal(t, want, got, d.String())
	}
}

func TestUnmappedConditionFailsLoudly(t *testing.T) {
	table, err := NewFactorTable(map[Weather]float64{Clear: 1}, map[TimeOfDay]float64{Day: 1})
	require.NoError(t, err)

	_, err = table.WeatherFactor(Fog)
	assert.ErrorIs(t, err, errs.ErrUnmappedCondition)
	_, err = table.TimeFactor(Night)
	assert.ErrorIs(t, err, errs.ErrUnmappedCondition)
	_, err = DefaultFactorTable().WeatherFactor(Weather(42))
	assert.ErrorIs(t, err, errs.ErrUnmappedCondition)
}

func TestNewFactorTableRejectsBadFactors(t *testing.T) {
	for _, f := range []float64{0, -1, math.Inf(1), math.NaN()} {
		_, err := NewFactorTable(map[Weather]float64{Rain: f}, nil)
		if !errors.Is(err, errs.ErrInvalidParameter) {
			t.Errorf("factor %g: err=%v; want ErrInvalidParameter", f, err)
		}
	}
}

func TestFactorTableIsImmutable(t *testing.T) {
	src := map[Weather]float64{Clear: 1}
	table, err := NewFactorTable(src, nil)
	require.NoError(t, err)
	src[Clear] = 5
	w, _ := table.Mappings()
	w[Clear] = 7
	got, err := table.WeatherFactor(Clear)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestFactorTableWith(t *testing.T) {
	base := DefaultFactorTable()
	custom, err := base.With(map[Weather]float64{Fog: 2.0}, nil)
	require.NoError(t, err)
	got, _ := custom.WeatherFactor(Fog)
	assert.Equal(t, 2.0, got)
	got, _ = base.WeatherFactor(Fog)
	assert.Equal(t, 1.5, got)
}

func TestValidateConditions(t *testing.T) {
	tcs := []struct {
		c    DrivingConditions
		want error
	}{
		{DrivingConditions{Clear, Day, 60, 50000}, nil},
		{DrivingConditions{Snow, Night, 0, 0}, nil},
		{DrivingConditions{Clear, Day, -1, 50000}, errs.ErrInvalidParameter},
		{DrivingConditions{Clear, Day, 60, -0.5}, errs.ErrInvalidParameter},
		{DrivingConditions{Clear, Day, math.NaN(), 0}, errs.ErrInvalidParameter},
		{DrivingConditions{Clear, Day, 0, math.Inf(1)}, errs.ErrInvalidParameter},
		{DrivingConditions{Weather(0), Day, 0, 0}, errs.ErrUnmappedCondition},
		{DrivingConditions{Clear, TimeOfDay(9), 0, 0}, errs.ErrUnmappedCondition},
	}
	for _, tc := range tcs {
		err := tc.c.Validate()
		if tc.want == nil {
			assert.NoError(t, err, tc.c.String())
		} else {
			assert.ErrorIs(t, err, tc.want, tc.c.String())
		}
	}
}

func TestConditionsJSON(t *testing.T) {
	c := DrivingConditions{Weather: Fog, TimeOfDay: DawnDusk, SpeedKMH: 80, AmbientLux: 1200}
	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"weather":"fog","timeOfDay":"dawnDusk","speedKmh":80,"ambientLux":1200}`, string(b))

	var back DrivingConditions
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, c, back)

	err = json.Unmarshal([]byte(`{"weather":"hail"}`), &back)
	assert.ErrorIs(t, err, errs.ErrUnmappedCondition)
}

func TestParseAliases(t *testing.T) {
	for _, s := range []string{"dawn", "Dusk", "dawn_dusk", "DAWNDUSK"} {
		d, err := ParseTimeOfDay(s)
		require.NoError(t, err, s)
		assert.Equal(t, DawnDusk, d, s)
	}
	w, err := ParseWeather("SNOW")
	require.NoError(t, err)
	assert.Equal(t, Snow, w)
}
