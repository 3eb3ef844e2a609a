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

package stats

import (
	"math"

	"gonum.org/v1/gonum/optimize"
)

// Calculate the 256-bin histogram of 8-bit data
func Histogram(data []uint8) (bins [256]int32) {
	for _, d := range data {
		bins[d]++
	}
	return bins
}

// Returns the location and the value of the histogram peak
func GetPeak(bins []int32) (x, y float64) {
	maxIndex, maxValue := -1, int32(math.MinInt32)
	for i, v := range bins {
		if v > maxValue {
			maxIndex, maxValue = i, v
		}
	}
	return float64(maxIndex), float64(maxValue)
}

// Calculates the mode and the standard deviation of the given histogram,
// by fitting a normal distribution starting from the histogram peak
func GetModeStdDevFromHistogram(bins []int32) (mode, stdDev float64, err error) {
	// Take an educated initial guess: the maximum value of the histogram
	peak, peakVal := GetPeak(bins)

	// Now minimize the distance between the histogram and a normal distribution
	x0 := []float64{peakVal, peak, 5.0}
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			alpha, mu, sigma := x[0], x[1], math.Abs(x[2])+1e-6
			scaler := alpha / (sigma * math.Sqrt(2*math.Pi))
			sumSqDiff := 0.0

			for i, y := range bins {
				xmusig := (float64(i) - mu) / sigma
				yPredict := scaler * math.Exp(-0.5*xmusig*xmusig)

				diff := float64(y) - yPredict
				sumSqDiff += diff * diff
			}
			return math.Sqrt(sumSqDiff / float64(len(bins)))
		},
	}

	result, err := optimize.Minimize(problem, x0, nil, &optimize.NelderMead{})
	if err != nil {
		return peak, 0, err
	}
	return result.X[1], math.Abs(result.X[2]), nil
}
