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

package ops

import (
	"fmt"
	"runtime"

	"github.com/klauspost/cpuid"
	"github.com/mlnoga/resonance/internal/logging"
	"github.com/mlnoga/resonance/internal/sr"
	"github.com/pbnjay/memory"
)

// An execution context for operators
type Context struct {
	Log          *logging.Log
	Engine       *sr.Engine // Noise engine settings shared by all operators
	Window       int        // Box filter window for spatial maps
	MemoryMB     int        // memory.TotalMemory()/1024/1024
	WorkMemoryMB int        // MemoryMB*7/10
	MaxThreads   int        `json:"maxThreads"`
}

// Creates a context with the default engine. Threads are limited to the logical cores
func NewContext(log *logging.Log) *Context {
	memoryMB := int(memory.TotalMemory() / 1024 / 1024)
	maxThreads := cpuid.CPU.LogicalCores
	if maxThreads <= 0 || maxThreads > runtime.GOMAXPROCS(0) {
		maxThreads = runtime.GOMAXPROCS(0)
	}
	engine := sr.NewEngine()
	engine.MaxThreads = maxThreads
	return &Context{
		Log:          log,
		Engine:       engine,
		MemoryMB:     memoryMB,
		WorkMemoryMB: memoryMB * 7 / 10,
		MaxThreads:   maxThreads,
	}
}

// Returns how many frames of the given size may be processed concurrently within the
// working memory, counting input, output and scratch buffers. At least one, at most MaxThreads
func (c *Context) FramesInFlight(width, height, channels int) int {
	frameMB := float64(width*height*channels) * 3 / 1024 / 1024
	n := c.MaxThreads
	if frameMB > 0 && c.WorkMemoryMB > 0 {
		if byMemory := int(float64(c.WorkMemoryMB) / frameMB); byMemory < n {
			n = byMemory
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Describes the host, for version output
func HostInfo() string {
	return fmt.Sprintf("%s, %d physical cores, %d logical cores, %d MiB memory",
		cpuid.CPU.BrandName, cpuid.CPU.PhysicalCores, cpuid.CPU.LogicalCores,
		memory.TotalMemory()/1024/1024)
}
