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

// Package condition models the driving conditions that scale the injected
// noise, and the calibrated factor tables mapping them to multipliers.
package condition

import (
	"fmt"
	"math"
	"strings"

	"github.com/mlnoga/resonance/internal/errs"
)

// Enumerated type for weather conditions
type Weather int

const (
	Clear Weather = iota + 1
	Rain
	Fog
	Snow
)

// Enumerated type for the time of day
type TimeOfDay int

const (
	Day TimeOfDay = iota + 1
	DawnDusk
	Night
)

var weatherNames = map[Weather]string{Clear: "clear", Rain: "rain", Fog: "fog", Snow: "snow"}
var timeNames = map[TimeOfDay]string{Day: "day", DawnDusk: "dawnDusk", Night: "night"}

// All weather enumerators, in declaration order
func Weathers() []Weather { return []Weather{Clear, Rain, Fog, Snow} }

// All time of day enumerators, in declaration order
func TimesOfDay() []TimeOfDay { return []TimeOfDay{Day, DawnDusk, Night} }

func (w Weather) String() string {
	if s, ok := weatherNames[w]; ok {
		return s
	}
	return fmt.Sprintf("Weather(%d)", int(w))
}

func (t TimeOfDay) String() string {
	if s, ok := timeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TimeOfDay(%d)", int(t))
}

func (w Weather) MarshalText() ([]byte, error) {
	s, ok := weatherNames[w]
	if !ok {
		return nil, errs.Unmappedf("weather %d", int(w))
	}
	return []byte(s), nil
}

func (w *Weather) UnmarshalText(b []byte) error {
	parsed, err := ParseWeather(string(b))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	s, ok := timeNames[t]
	if !ok {
		return nil, errs.Unmappedf("time of day %d", int(t))
	}
	return []byte(s), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Parses a weather name, case insensitive
func ParseWeather(s string) (Weather, error) {
	for w, name := range weatherNames {
		if strings.EqualFold(s, name) {
			return w, nil
		}
	}
	return 0, errs.Unmappedf("weather %q", s)
}

// Parses a time of day name, case insensitive. Accepts "dawn", "dusk" and "dawn_dusk" as aliases
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	switch strings.ToLower(s) {
	case "dawn", "dusk", "dawn_dusk", "dawn-dusk":
		return DawnDusk, nil
	}
	for t, name := range timeNames {
		if strings.EqualFold(s, name) {
			return t, nil
		}
	}
	return 0, errs.Unmappedf("time of day %q", s)
}

// Environmental conditions for one processing call. Immutable value
type DrivingConditions struct {
	Weather    Weather   `json:"weather"`
	TimeOfDay  TimeOfDay `json:"timeOfDay"`
	SpeedKMH   float64   `json:"speedKmh"`   // vehicle speed in km/h
	AmbientLux float64   `json:"ambientLux"` // ambient light in lux, typical range 0-100000
}

// Checks enumerators and value ranges
func (c DrivingConditions) Validate() error {
	if _, ok := weatherNames[c.Weather]; !ok {
		return errs.Unmappedf("weather %d", int(c.Weather))
	}
	if _, ok := timeNames[c.TimeOfDay]; !ok {
		return errs.Unmappedf("time of day %d", int(c.TimeOfDay))
	}
	if !isFiniteNonNegative(c.SpeedKMH) {
		return errs.Invalidf("vehicle speed %g km/h", c.SpeedKMH)
	}
	if !isFiniteNonNegative(c.AmbientLux) {
		return errs.Invalidf("ambient light %g lux", c.AmbientLux)
	}
	return nil
}

func (c DrivingConditions) String() string {
	return fmt.Sprintf("%v/%v/%.0fkmh/%.0flux", c.Weather, c.TimeOfDay, c.SpeedKMH, c.AmbientLux)
}

func isFiniteNonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}
