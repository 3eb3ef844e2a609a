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

package noise

import (
	"math/rand/v2"

	"github.com/valyala/fastrand"
)

// Stream keys. Distinct per channel and for the pixel mask
const (
	channelKey = 0x9e3779b97f4a7c15
	maskKey    = 0xd1b54a32d192ed03
)

// Independent, reproducible random streams derived from one caller-owned seed.
// The seed itself is never advanced, so identical seeds give identical noise
type Streams struct {
	seed uint64
}

// Creates streams from the given seed
func NewStreams(seed uint64) Streams {
	return Streams{seed: seed}
}

// Creates streams from a fresh random seed
func NewRandomStreams() Streams {
	return Streams{seed: RandomSeed()}
}

// Returns a fresh random seed, for callers who want new noise on every call
func RandomSeed() uint64 {
	return uint64(fastrand.Uint32())<<32 | uint64(fastrand.Uint32())
}

// Returns the seed the streams derive from
func (s Streams) Seed() uint64 { return s.seed }

// Returns a new generator for the given channel. Each call restarts the stream
func (s Streams) Channel(c int) *rand.Rand {
	return rand.New(rand.NewPCG(s.seed, channelKey*uint64(c+1)))
}

// Returns a new generator for pixel-level masks. Each call restarts the stream
func (s Streams) Mask() *rand.Rand {
	return rand.New(rand.NewPCG(s.seed, maskKey))
}
