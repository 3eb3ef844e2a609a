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

package frame

import (
	"sync"
)

// Pool of constant sized arrays of given type, to reduce memory allocation overhead
// for scratch buffers of per-frame filters
type SizedPool[T any] struct {
	sync.RWMutex
	m map[int]*sync.Pool
}

// Creates an empty sized pool
func NewSizedPool[T any]() *SizedPool[T] {
	return &SizedPool[T]{m: make(map[int]*sync.Pool)}
}

// Returns the pool for arrays of the given size
func (p *SizedPool[T]) sized(size int) *sync.Pool {
	p.RLock()
	pool := p.m[size]
	p.RUnlock()
	if pool == nil {
		p.Lock()
		if pool = p.m[size]; pool == nil {
			pool = &sync.Pool{
				New: func() interface{} {
					arr := make([]T, size)
					return &arr
				},
			}
			p.m[size] = pool
		}
		p.Unlock()
	}
	return pool
}

// Retrieves an array of given size from the pool. Contents are undefined
func (p *SizedPool[T]) Get(size int) []T {
	return *(p.sized(size).Get().(*[]T))
}

// Returns an array to the pool
func (p *SizedPool[T]) Put(arr []T) {
	arr = arr[:cap(arr)]
	p.sized(len(arr)).Put(&arr)
}

// Clears the pool
func (p *SizedPool[T]) Clear() {
	p.Lock()
	p.m = make(map[int]*sync.Pool)
	p.Unlock()
}

// Shared scratch pools
var (
	PoolUint8   = NewSizedPool[uint8]()
	PoolFloat64 = NewSizedPool[float64]()
)
