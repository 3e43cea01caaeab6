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
	"math"
)

// A single scene of a time series. Pixel data is stored as float32 in
// channel-planar layout: channel c occupies Data[c*Width*Height : (c+1)*Width*Height],
// row-major within the plane. After quantization Bitpix is 8 and Data holds
// integral values in [0,255]; otherwise Bitpix is -32 and the range depends
// on the processing stage.
type Frame struct {
	ID       int    // Sequential ID number, for log output. Counted upwards from 0 in acquisition order
	Width    int    // Columns per channel plane
	Height   int    // Rows per channel plane
	Channels int    // 1 for grayscale, 3 or more for color
	Bitpix   int    // Bits per pixel value. Negative values are floating point. -32 or 8

	Data []float32 // The pixel data, Width*Height*Channels values

	// Optional per-pixel validity mask of Width*Height entries, shared
	// across channels. Nil if the scene carries no mask
	Mask []bool
}

// Frame variant for dispatching on channel count and mask presence,
// so stages can switch on the variant instead of re-deriving shape facts.
type Kind int

const (
	Mono        Kind = iota // single channel, no mask
	MonoMasked              // single channel with validity mask
	Color                   // three or more channels, no mask
	ColorMasked             // three or more channels with validity mask
)

func (k Kind) String() string {
	switch k {
	case Mono:
		return "mono"
	case MonoMasked:
		return "mono+mask"
	case Color:
		return "color"
	case ColorMasked:
		return "color+mask"
	}
	return "unknown"
}

// Creates a frame of the given shape. Data is not copied, allocated if nil.
func NewFrame(id, width, height, channels int, data []float32) *Frame {
	if data == nil {
		data = make([]float32, width*height*channels)
	}
	return &Frame{
		ID:       id,
		Width:    width,
		Height:   height,
		Channels: channels,
		Bitpix:   -32,
		Data:     data,
	}
}

// Creates a frame with the same shape and metadata as the given frame,
// with a freshly allocated data array. The mask reference is carried over.
func NewFrameFromFrame(f *Frame) *Frame {
	return &Frame{
		ID:       f.ID,
		Width:    f.Width,
		Height:   f.Height,
		Channels: f.Channels,
		Bitpix:   f.Bitpix,
		Data:     make([]float32, len(f.Data)),
		Mask:     f.Mask,
	}
}

func (f *Frame) Kind() Kind {
	if f.Channels == 1 {
		if f.Mask != nil {
			return MonoMasked
		}
		return Mono
	}
	if f.Mask != nil {
		return ColorMasked
	}
	return Color
}

// Number of pixels per channel plane
func (f *Frame) PlanePixels() int { return f.Width * f.Height }

// Returns the data slice for the given channel plane
func (f *Frame) Plane(chanID int) []float32 {
	size := f.Width * f.Height
	return f.Data[chanID*size : (chanID+1)*size]
}

func (f *Frame) SameShape(g *Frame) bool {
	return f.Width == g.Width && f.Height == g.Height && f.Channels == g.Channels
}

func (f *Frame) DimensionsToString() string {
	return fmt.Sprintf("%dx%dx%d", f.Width, f.Height, f.Channels)
}

// Fraction of pixels marked valid by the mask. A frame without a mask
// is fully valid.
func (f *Frame) ValidFraction() float32 {
	if f.Mask == nil {
		return 1
	}
	valid := 0
	for _, m := range f.Mask {
		if m {
			valid++
		}
	}
	return float32(valid) / float32(len(f.Mask))
}

// Returns true if all pixel values are finite
func (f *Frame) IsFinite() bool {
	for _, d := range f.Data {
		if math.IsNaN(float64(d)) || math.IsInf(float64(d), 0) {
			return false
		}
	}
	return true
}

// An ordered sequence of frames sharing an identical shape.
// Stages never mutate a stack in place; each stage returns a new one.
type Stack struct {
	Frames []*Frame
}

// Creates a stack from the given frames, enforcing the uniform shape invariant.
func NewStack(frames []*Frame) (*Stack, error) {
	for i, f := range frames {
		if f == nil {
			return nil, fmt.Errorf("frame %d: nil frame in stack", i)
		}
		if !frames[0].SameShape(f) {
			return nil, fmt.Errorf("frame %d: shape %s differs from frame 0 shape %s",
				i, f.DimensionsToString(), frames[0].DimensionsToString())
		}
	}
	return &Stack{Frames: frames}, nil
}

func (s *Stack) NumFrames() int { return len(s.Frames) }

func (s *Stack) Width() int {
	if len(s.Frames) == 0 {
		return 0
	}
	return s.Frames[0].Width
}

func (s *Stack) Height() int {
	if len(s.Frames) == 0 {
		return 0
	}
	return s.Frames[0].Height
}

func (s *Stack) Channels() int {
	if len(s.Frames) == 0 {
		return 0
	}
	return s.Frames[0].Channels
}
