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

// Package noise synthesizes noise per channel, adds it to frames with clipping,
// and optionally smooths the result with an edge-preserving bilateral filter.
package noise

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/mlnoga/resonance/internal/errs"
	"gonum.org/v1/gonum/stat/distuv"
)

// Enumerated type for noise distributions
type Distribution int

const (
	Gaussian Distribution = iota
	SaltAndPepper
	Speckle
	Uniform
	Exponential
)

var distributionNames = map[Distribution]string{
	Gaussian:      "gaussian",
	SaltAndPepper: "saltAndPepper",
	Speckle:       "speckle",
	Uniform:       "uniform",
	Exponential:   "exponential",
}

// Labels as shown in the preview tools' drop-down
var distributionLabels = map[Distribution]string{
	Gaussian:      "Gaussian",
	SaltAndPepper: "Salt and Pepper",
	Speckle:       "Speckle",
	Uniform:       "Uniform",
	Exponential:   "Exponential",
}

// All distributions, in declaration order
func Distributions() []Distribution {
	return []Distribution{Gaussian, SaltAndPepper, Speckle, Uniform, Exponential}
}

func (d Distribution) String() string {
	if s, ok := distributionNames[d]; ok {
		return s
	}
	return fmt.Sprintf("Distribution(%d)", int(d))
}

// Returns the human-readable label
func (d Distribution) Label() string {
	if s, ok := distributionLabels[d]; ok {
		return s
	}
	return d.String()
}

func (d Distribution) MarshalText() ([]byte, error) {
	s, ok := distributionNames[d]
	if !ok {
		return nil, errs.Invalidf("noise distribution %d", int(d))
	}
	return []byte(s), nil
}

func (d *Distribution) UnmarshalText(b []byte) error {
	parsed, err := ParseDistribution(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Parses a distribution from its name or label, case insensitive.
// Also accepts "salt", "pepper", "s&p", "salt-and-pepper" and "salt_and_pepper"
func ParseDistribution(s string) (Distribution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "salt", "pepper", "s&p", "salt-and-pepper", "salt_and_pepper":
		return SaltAndPepper, nil
	case "normal":
		return Gaussian, nil
	}
	for d, name := range distributionNames {
		if strings.EqualFold(s, name) || strings.EqualFold(s, distributionLabels[d]) {
			return d, nil
		}
	}
	return 0, errs.Invalidf("noise distribution %q", s)
}

// A generator of noise for one distribution
type Generator interface {
	Distribution() Distribution
}

// A generator perturbing each sample of a channel independently
type ChannelGenerator interface {
	Generator

	// Returns sample v with noise of intensity l applied, clipped to [0,255]
	Sample(v uint8, l float64, rng *rand.Rand) uint8
}

// Outcome of pixel-level replacement noise. Exactly one per pixel
type Speck int8

const (
	Unchanged Speck = iota
	Salt
	Pepper
)

// A generator deciding one outcome per pixel, applied to all channels together
type PixelGenerator interface {
	Generator

	// Draws the outcome for one pixel at intensity l
	Speck(l float64, rng *rand.Rand) Speck
}

// Returns the generator for the given distribution
func NewGenerator(d Distribution) (Generator, error) {
	switch d {
	case Gaussian:
		return gaussian{}, nil
	case SaltAndPepper:
		return saltAndPepper{}, nil
	case Speckle:
		return speckle{}, nil
	case Uniform:
		return uniform{}, nil
	case Exponential:
		return exponential{}, nil
	}
	return nil, errs.Invalidf("noise distribution %d", int(d))
}

// Additive normal noise with standard deviation l*255
type gaussian struct{}

func (gaussian) Distribution() Distribution { return Gaussian }

func (gaussian) Sample(v uint8, l float64, rng *rand.Rand) uint8 {
	return clip(float64(v) + rng.NormFloat64()*l*255)
}

// Multiplicative noise v*(1+N(0,l))
type speckle struct{}

func (speckle) Distribution() Distribution { return Speckle }

func (speckle) Sample(v uint8, l float64, rng *rand.Rand) uint8 {
	return clip(float64(v) * (1 + rng.NormFloat64()*l))
}

// Additive noise drawn uniformly from [-l*255, l*255]
type uniform struct{}

func (uniform) Distribution() Distribution { return Uniform }

func (uniform) Sample(v uint8, l float64, rng *rand.Rand) uint8 {
	s := l * 255
	return clip(float64(v) - s + 2*s*rng.Float64())
}

// Additive exponential noise with scale l*255. Never darkens
type exponential struct{}

func (exponential) Distribution() Distribution { return Exponential }

func (exponential) Sample(v uint8, l float64, rng *rand.Rand) uint8 {
	return clip(float64(v) + rng.ExpFloat64()*l*255)
}

// Replacement noise: salt with probability l/2, pepper with probability l/2
type saltAndPepper struct{}

func (saltAndPepper) Distribution() Distribution { return SaltAndPepper }

func (saltAndPepper) Speck(l float64, rng *rand.Rand) Speck {
	u := rng.Float64()
	if u < l/2 {
		return Salt
	}
	if u > 1-l/2 {
		return Pepper
	}
	return Unchanged
}

// Clips to [0,255] and rounds to nearest
func clip(v float64) uint8 {
	if v != v || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// Returns mean and standard deviation of the unclipped perturbation at intensity l,
// in 8-bit sample units. Speckle is given for a full-scale sample. For salt and pepper,
// the values describe the fraction of replaced pixels.
func Moments(d Distribution, l float64) (mean, stdDev float64, err error) {
	if !(l >= 0) || math.IsInf(l, 1) {
		return 0, 0, errs.Invalidf("noise level %g", l)
	}
	if l == 0 {
		return 0, 0, nil
	}
	s := l * 255
	switch d {
	case Gaussian, Speckle:
		n := distuv.Normal{Mu: 0, Sigma: s}
		return n.Mean(), n.StdDev(), nil
	case Uniform:
		u := distuv.Uniform{Min: -s, Max: s}
		return u.Mean(), u.StdDev(), nil
	case Exponential:
		e := distuv.Exponential{Rate: 1 / s}
		return e.Mean(), e.StdDev(), nil
	case SaltAndPepper:
		b := distuv.Bernoulli{P: math.Min(l, 1)}
		return b.Mean(), b.StdDev(), nil
	}
	return 0, 0, errs.Invalidf("noise distribution %d", int(d))
}
