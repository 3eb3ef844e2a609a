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
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Converts the frame into a Go image. Single-channel frames become *image.Gray, others *image.RGBA
func (f *Frame) ToImage() image.Image {
	rect := image.Rect(0, 0, f.Width, f.Height)
	if f.Channels == 1 {
		img := image.NewGray(rect)
		for y := 0; y < f.Height; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+f.Width], f.Data[y*f.Width:(y+1)*f.Width])
		}
		return img
	}

	img := image.NewRGBA(rect)
	size := f.Pixels()
	for y := 0; y < f.Height; y++ {
		yoffset := y * f.Width
		for x := 0; x < f.Width; x++ {
			i := yoffset + x
			o := y*img.Stride + x*4
			img.Pix[o] = f.Data[i]
			img.Pix[o+1] = f.Data[i+size]
			img.Pix[o+2] = f.Data[i+size*2]
			img.Pix[o+3] = 255
		}
	}
	return img
}

// Output formats, selected by file suffix
type Format int

const (
	FormatPNG Format = iota
	FormatJPEG
	FormatTIFF
	FormatBMP
)

// Selects the output format from the suffix of a file name
func FormatFromFileName(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".png":
		return FormatPNG, nil
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".tif", ".tiff":
		return FormatTIFF, nil
	case ".bmp":
		return FormatBMP, nil
	}
	return 0, errors.New(fmt.Sprintf("Unknown suffix for output file %s", fileName))
}

// Writes the frame to the given file, choosing the format by suffix
func (f *Frame) WriteFile(fileName string) error {
	format, err := FormatFromFileName(fileName)
	if err != nil {
		return err
	}
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := f.Write(writer, format); err != nil {
		return err
	}
	return writer.Flush()
}

// Encodes the frame in the given format
func (f *Frame) Write(writer io.Writer, format Format) error {
	img := f.ToImage()
	switch format {
	case FormatPNG:
		return png.Encode(writer, img)
	case FormatJPEG:
		return jpeg.Encode(writer, img, &jpeg.Options{Quality: 95})
	case FormatTIFF:
		return tiff.Encode(writer, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case FormatBMP:
		return bmp.Encode(writer, img)
	}
	return errors.New(fmt.Sprintf("Unknown output format %d", format))
}
