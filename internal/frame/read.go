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
	"bufio"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"os"

	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/tiff" // register decoder
)

// Creates a frame by reading and decoding the given image file.
// Grayscale images yield single-channel frames, everything else RGB frames.
func NewFromFile(fileName string, id int) (*Frame, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	f, err := Read(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("%d: decoding %s: %w", id, fileName, err)
	}
	f.ID, f.FileName = id, fileName
	return f, nil
}

// Decodes a frame from the given reader. Supports PNG, JPEG, TIFF and BMP
func Read(r io.Reader) (*Frame, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return NewFromImage(img)
}

// Creates a frame from a Go image. Alpha is discarded
func NewFromImage(img image.Image) (*Frame, error) {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()

	switch src := img.(type) {
	case *image.Gray:
		f, err := New(width, height, 1)
		if err != nil {
			return nil, err
		}
		for y := 0; y < height; y++ {
			off := (b.Min.Y+y-src.Rect.Min.Y)*src.Stride + (b.Min.X - src.Rect.Min.X)
			copy(f.Data[y*width:(y+1)*width], src.Pix[off:off+width])
		}
		return f, nil

	case *image.Gray16:
		f, err := New(width, height, 1)
		if err != nil {
			return nil, err
		}
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				f.Data[y*width+x] = uint8(src.Gray16At(b.Min.X+x, b.Min.Y+y).Y >> 8)
			}
		}
		return f, nil

	case *image.RGBA:
		f, err := New(width, height, 3)
		if err != nil {
			return nil, err
		}
		size := width * height
		for y := 0; y < height; y++ {
			off := (b.Min.Y+y-src.Rect.Min.Y)*src.Stride + (b.Min.X-src.Rect.Min.X)*4
			for x := 0; x < width; x++ {
				i := y*width + x
				f.Data[i] = src.Pix[off+x*4]
				f.Data[i+size] = src.Pix[off+x*4+1]
				f.Data[i+size*2] = src.Pix[off+x*4+2]
			}
		}
		return f, nil
	}

	// generic path via the color model
	f, err := New(width, height, 3)
	if err != nil {
		return nil, err
	}
	size := width * height
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			i := y*width + x
			f.Data[i] = c.R
			f.Data[i+size] = c.G
			f.Data[i+size*2] = c.B
		}
	}
	return f, nil
}

// Reads the dimensions of an image file without decoding the pixels.
// The channel count is the one NewFromFile would produce
func DimensionsOfFile(fileName string) (width, height, channels int, err error) {
	file, err := os.Open(fileName)
	if err != nil {
		return 0, 0, 0, err
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(bufio.NewReader(file))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("decoding %s: %w", fileName, err)
	}
	channels = 3
	if cfg.ColorModel == color.GrayModel || cfg.ColorModel == color.Gray16Model {
		channels = 1
	}
	return cfg.Width, cfg.Height, channels, nil
}
