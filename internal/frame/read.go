// Copyright (C) 2021 Krishna Karra
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
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/tiff"
)

// Reads a single already-rendered raster file (PNG, JPEG or TIFF) into a
// float frame. Grayscale sources become single-channel frames, everything
// else three channels. Fully transparent pixels are recorded as invalid in
// the frame mask; a fully opaque image carries no mask.
func NewFrameFromFile(fileName string, id int) (*Frame, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("%s: %s", fileName, err.Error())
	}
	return NewFrameFromGoImage(img, id), nil
}

// Converts a Golang image into a planar float frame with values in [0,255].
func NewFrameFromGoImage(img image.Image, id int) *Frame {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	size := w * h

	channels := 3
	if _, gray := img.(*image.Gray); gray {
		channels = 1
	} else if _, gray16 := img.(*image.Gray16); gray16 {
		channels = 1
	}

	f := NewFrame(id, w, h, channels, nil)
	var mask []bool
	anyInvalid := false

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			c := color.NRGBA64Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA64)
			if channels == 1 {
				f.Data[i] = float32(c.R) * (255.0 / 65535.0)
			} else {
				f.Data[i] = float32(c.R) * (255.0 / 65535.0)
				f.Data[size+i] = float32(c.G) * (255.0 / 65535.0)
				f.Data[2*size+i] = float32(c.B) * (255.0 / 65535.0)
			}
			if c.A == 0 {
				if mask == nil {
					mask = make([]bool, size)
					for j := range mask {
						mask[j] = true
					}
				}
				mask[i] = false
				anyInvalid = true
			}
		}
	}
	if anyInvalid {
		f.Mask = mask
	}
	return f
}

// Reads an ordered list of raster files into a stack with uniform shape.
func NewStackFromFiles(fileNames []string) (*Stack, error) {
	if len(fileNames) == 0 {
		return nil, fmt.Errorf("no input files")
	}
	frames := make([]*Frame, len(fileNames))
	for i, fileName := range fileNames {
		f, err := NewFrameFromFile(fileName, i)
		if err != nil {
			return nil, err
		}
		frames[i] = f
	}
	return NewStack(frames)
}

// Drops frames whose mask validity fraction is below the given minimum.
// This runs upstream of the transform pipeline, which never filters frames
// itself. A threshold of 0 keeps everything.
func (s *Stack) FilterValidFraction(min float32) *Stack {
	if min <= 0 {
		return s
	}
	kept := make([]*Frame, 0, len(s.Frames))
	for _, f := range s.Frames {
		if f.ValidFraction() >= min {
			kept = append(kept, f)
		}
	}
	return &Stack{Frames: kept}
}
