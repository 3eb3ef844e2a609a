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
	"fmt"

	"github.com/mlnoga/resonance/internal/errs"
)

// An 8-bit image frame with planar channel layout.
// Plane c occupies Data[c*Width*Height:(c+1)*Width*Height], rows top to bottom.
// For color frames the channel order is R, G, B.
type Frame struct {
	ID       int    // Sequential ID number, for log output
	FileName string // Original file name, if any, for log output

	Width    int
	Height   int
	Channels int

	Data []uint8 // The pixel data, planar
}

// Creates a zero-filled frame of the given shape
func New(width, height, channels int) (*Frame, error) {
	if err := checkShape(width, height, channels); err != nil {
		return nil, err
	}
	return &Frame{
		Width:    width,
		Height:   height,
		Channels: channels,
		Data:     make([]uint8, width*height*channels),
	}, nil
}

// Creates a frame from planar data. Data is not copied
func NewFromData(width, height, channels int, data []uint8) (*Frame, error) {
	if err := checkShape(width, height, channels); err != nil {
		return nil, err
	}
	if len(data) != width*height*channels {
		return nil, errs.Shapef("%d bytes of data for %dx%dx%d frame", len(data), width, height, channels)
	}
	return &Frame{Width: width, Height: height, Channels: channels, Data: data}, nil
}

// Creates a frame from interleaved data, as produced by most decoders and capture loops.
// Data is copied into planar layout
func NewFromInterleaved(width, height, channels int, pix []uint8) (*Frame, error) {
	if err := checkShape(width, height, channels); err != nil {
		return nil, err
	}
	if len(pix) != width*height*channels {
		return nil, errs.Shapef("%d bytes of interleaved data for %dx%dx%d frame", len(pix), width, height, channels)
	}
	f := &Frame{Width: width, Height: height, Channels: channels, Data: make([]uint8, len(pix))}
	size := width * height
	for i := 0; i < size; i++ {
		for c := 0; c < channels; c++ {
			f.Data[c*size+i] = pix[i*channels+c]
		}
	}
	return f, nil
}

func checkShape(width, height, channels int) error {
	if width <= 0 || height <= 0 {
		return errs.Shapef("frame dimensions %dx%d", width, height)
	}
	if channels != 1 && channels != 3 {
		return errs.Shapef("%d channels, want 1 or 3", channels)
	}
	return nil
}

// Returns the frame data in interleaved layout
func (f *Frame) Interleaved() []uint8 {
	size := f.Pixels()
	pix := make([]uint8, len(f.Data))
	for c := 0; c < f.Channels; c++ {
		plane := f.Data[c*size : (c+1)*size]
		for i, v := range plane {
			pix[i*f.Channels+c] = v
		}
	}
	return pix
}

// Number of pixels per channel
func (f *Frame) Pixels() int { return f.Width * f.Height }

// Returns the given channel plane. Shares the underlying data
func (f *Frame) Plane(c int) []uint8 {
	size := f.Pixels()
	return f.Data[c*size : (c+1)*size]
}

// Returns a deep copy of the frame
func (f *Frame) Clone() *Frame {
	return &Frame{
		ID:       f.ID,
		FileName: f.FileName,
		Width:    f.Width,
		Height:   f.Height,
		Channels: f.Channels,
		Data:     append([]uint8(nil), f.Data...),
	}
}

// Creates an empty frame with the same shape and ID as the given one
func NewFromFrame(f *Frame) *Frame {
	return &Frame{
		ID:       f.ID,
		FileName: f.FileName,
		Width:    f.Width,
		Height:   f.Height,
		Channels: f.Channels,
		Data:     make([]uint8, len(f.Data)),
	}
}

// True if both frames have identical width, height and channel count
func (f *Frame) SameShape(o *Frame) bool {
	return f.Width == o.Width && f.Height == o.Height && f.Channels == o.Channels
}

// Checks the internal consistency of the frame
func (f *Frame) Validate() error {
	if err := checkShape(f.Width, f.Height, f.Channels); err != nil {
		return err
	}
	if len(f.Data) != f.Width*f.Height*f.Channels {
		return errs.Shapef("%d bytes of data for %s frame", len(f.Data), f.DimensionsToString())
	}
	return nil
}

// Pretty print frame dimensions, e.g. 640x480x3
func (f *Frame) DimensionsToString() string {
	return fmt.Sprintf("%dx%dx%d", f.Width, f.Height, f.Channels)
}
