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
	"encoding/json"
	"fmt"

	"github.com/mlnoga/resonance/internal/frame"
	"github.com/mlnoga/resonance/internal/ops"
	"github.com/mlnoga/resonance/internal/stats"
)

// Logs luminance statistics of each frame. Takes one input, produces one output (the unchanged input)
type OpStats struct {
	ops.OpUnaryBase
	ROI *frame.Region `json:"roi,omitempty"`
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpStatsDefault() }) } // register the operator for JSON decoding

func NewOpStatsDefault() *OpStats { return NewOpStats(nil) }

func NewOpStats(roi *frame.Region) *OpStats {
	op := OpStats{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "stats", Active: true}},
		ROI:         roi,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpStats) UnmarshalJSON(data []byte) error {
	type defaults OpStats
	def := defaults(*NewOpStatsDefault())
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*op = OpStats(def)
	op.OpUnaryBase.Apply = op.Apply
	return nil
}

func (op *OpStats) Apply(f *frame.Frame, c *ops.Context) (result *frame.Frame, err error) {
	if !op.Active {
		return f, nil
	}
	s, err := Measure(f, op.ROI, c)
	if err != nil {
		return nil, err
	}
	c.Log.Info().Msgf("%d: %s%s", f.ID, s, roiSuffix(op.ROI))
	return f, nil
}

// Luminance statistics with the histogram mode, as reported by the stats operator
type Measurement struct {
	stats.Stats
	Mode       float64 `json:"mode"`       // Histogram peak location in [0,255]
	ModeStdDev float64 `json:"modeStdDev"` // Width of the gaussian fitted around the peak
}

func (m Measurement) String() string {
	return fmt.Sprintf("%s, histogram mode %.4g stdDev %.4g", m.Stats, m.Mode, m.ModeStdDev)
}

// Measures the frame, or the given region of it
func Measure(f *frame.Frame, roi *frame.Region, c *ops.Context) (m Measurement, err error) {
	if roi != nil {
		if f, err = f.Crop(*roi); err != nil {
			return m, err
		}
	}
	lum, err := frame.Luminance(f, c.Engine.Luminance, c.MaxThreads)
	if err != nil {
		return m, err
	}
	if m.Stats, err = stats.CalcStats(lum, f.Width); err != nil {
		return m, err
	}
	hist := stats.Histogram(lum)
	if m.Mode, m.ModeStdDev, err = stats.GetModeStdDevFromHistogram(hist[:]); err != nil {
		m.ModeStdDev = 0 // degenerate histogram, keep the raw peak
	}
	return m, nil
}

