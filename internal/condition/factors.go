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
	"math"

	"github.com/mlnoga/resonance/internal/errs"
)

// Calibrated multipliers for weather and time of day. Read-only after construction,
// so one table may be shared by concurrent callers, and several calibrations may coexist
type FactorTable struct {
	weather map[Weather]float64
	time    map[TimeOfDay]float64
}

// Default calibration constants
var (
	defaultWeatherFactors = map[Weather]float64{Clear: 1.0, Rain: 1.2, Fog: 1.5, Snow: 1.3}
	defaultTimeFactors    = map[TimeOfDay]float64{Day: 0.8, DawnDusk: 1.2, Night: 1.5}
)

// Returns a new table with the default calibration
func DefaultFactorTable() *FactorTable {
	t, err := NewFactorTable(defaultWeatherFactors, defaultTimeFactors)
	if err != nil {
		panic(err) // constants are valid
	}
	return t
}

// Creates a factor table from the given mappings, which are copied.
// Factors must be positive and finite. Missing enumerators are permitted here,
// but looking them up later fails with ErrUnmappedCondition.
func NewFactorTable(weather map[Weather]float64, time map[TimeOfDay]float64) (*FactorTable, error) {
	t := &FactorTable{
		weather: make(map[Weather]float64, len(weather)),
		time:    make(map[TimeOfDay]float64, len(time)),
	}
	for w, f := range weather {
		if !isPositiveFinite(f) {
			return nil, errs.Invalidf("weather factor %g for %v", f, w)
		}
		t.weather[w] = f
	}
	for d, f := range time {
		if !isPositiveFinite(f) {
			return nil, errs.Invalidf("time factor %g for %v", f, d)
		}
		t.time[d] = f
	}
	return t, nil
}

func isPositiveFinite(f float64) bool {
	return f > 0 && !math.IsInf(f, 1)
}

// Returns the multiplier for the given weather
func (t *FactorTable) WeatherFactor(w Weather) (float64, error) {
	f, ok := t.weather[w]
	if !ok {
		return 0, errs.Unmappedf("no factor for weather %v", w)
	}
	return f, nil
}

// Returns the multiplier for the given time of day
func (t *FactorTable) TimeFactor(d TimeOfDay) (float64, error) {
	f, ok := t.time[d]
	if !ok {
		return 0, errs.Unmappedf("no factor for time of day %v", d)
	}
	return f, nil
}

// Returns copies of the underlying mappings
func (t *FactorTable) Mappings() (map[Weather]float64, map[TimeOfDay]float64) {
	w := make(map[Weather]float64, len(t.weather))
	for k, v := range t.weather {
		w[k] = v
	}
	d := make(map[TimeOfDay]float64, len(t.time))
	for k, v := range t.time {
		d[k] = v
	}
	return w, d
}

// Returns a new table with the given overrides applied on top of this one
func (t *FactorTable) With(weather map[Weather]float64, time map[TimeOfDay]float64) (*FactorTable, error) {
	w, d := t.Mappings()
	for k, v := range weather {
		w[k] = v
	}
	for k, v := range time {
		d[k] = v
	}
	return NewFactorTable(w, d)
}
