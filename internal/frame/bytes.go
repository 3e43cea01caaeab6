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
	"fmt"
	"image"
	"image/color"
)

// An 8-bit frame at the encoder boundary. Pixel data is interleaved
// row-major, unlike the planar float frames used inside the pipeline.
type ByteFrame struct {
	ID       int
	Width    int
	Height   int
	Channels int     // 1 or 3
	Pix      []uint8 // Width*Height*Channels values, interleaved
}

// Converts a byte-quantized frame (Bitpix 8) into an interleaved byte frame.
func (f *Frame) ToBytes() (*ByteFrame, error) {
	if f.Bitpix != 8 {
		return nil, fmt.Errorf("%d: cannot convert frame with bitpix %d to bytes, quantize first", f.ID, f.Bitpix)
	}
	if f.Channels != 1 && f.Channels != 3 {
		return nil, fmt.Errorf("%d: cannot convert %d-channel frame to bytes", f.ID, f.Channels)
	}
	size := f.Width * f.Height
	b := &ByteFrame{
		ID:       f.ID,
		Width:    f.Width,
		Height:   f.Height,
		Channels: f.Channels,
		Pix:      make([]uint8, size*f.Channels),
	}
	for i := 0; i < size; i++ {
		for c := 0; c < f.Channels; c++ {
			b.Pix[i*f.Channels+c] = clampByte(f.Data[c*size+i])
		}
	}
	return b, nil
}

// Converts an interleaved byte frame back into a planar float frame
// with Bitpix 8. Used after geometry operations that go through image.Image.
func (b *ByteFrame) ToFrame() *Frame {
	f := NewFrame(b.ID, b.Width, b.Height, b.Channels, nil)
	f.Bitpix = 8
	size := b.Width * b.Height
	for i := 0; i < size; i++ {
		for c := 0; c < b.Channels; c++ {
			f.Data[c*size+i] = float32(b.Pix[i*b.Channels+c])
		}
	}
	return f
}

// Converts the byte frame into a Golang image for resampling and encoding.
// Mono frames become image.Gray, color frames image.NRGBA with opaque alpha.
func (b *ByteFrame) ToImage() image.Image {
	rect := image.Rect(0, 0, b.Width, b.Height)
	if b.Channels == 1 {
		img := image.NewGray(rect)
		copy(img.Pix, b.Pix)
		return img
	}
	img := image.NewNRGBA(rect)
	for i := 0; i < b.Width*b.Height; i++ {
		img.Pix[i*4+0] = b.Pix[i*3+0]
		img.Pix[i*4+1] = b.Pix[i*3+1]
		img.Pix[i*4+2] = b.Pix[i*3+2]
		img.Pix[i*4+3] = 255
	}
	return img
}

// Creates a byte frame from a Golang image, preserving the requested
// channel count. A singleton channel dimension is restored when converting
// from a grayscale source, as resampling operates on the 2-D plane only.
func NewByteFrameFromImage(img image.Image, id, channels int) *ByteFrame {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	b := &ByteFrame{
		ID:       id,
		Width:    w,
		Height:   h,
		Channels: channels,
		Pix:      make([]uint8, w*h*channels),
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			i := y*w + x
			if channels == 1 {
				b.Pix[i] = uint8((299*uint32(c.R) + 587*uint32(c.G) + 114*uint32(c.B)) / 1000)
			} else {
				b.Pix[i*3+0] = c.R
				b.Pix[i*3+1] = c.G
				b.Pix[i*3+2] = c.B
			}
		}
	}
	return b
}

func clampByte(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
