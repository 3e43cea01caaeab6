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

package render

import (
	"encoding/json"
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/kkarra/animate/internal/frame"
	"github.com/kkarra/animate/internal/ops"
)

// Resamples a byte-quantized frame to the requested output size with a
// Catmull-Rom kernel. Mono frames keep their singleton channel after the
// round trip through image.Image. Takes one input, produces one output
type OpResize struct {
	ops.OpUnaryBase
	Width  int `json:"width"`
	Height int `json:"height"`
}

var _ ops.Operator = (*OpResize)(nil) // this type is an Operator

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpResizeDefault() }) } // register the operator for JSON decoding

func NewOpResizeDefault() *OpResize { return NewOpResize(0, 0) }

func NewOpResize(width, height int) *OpResize {
	op := OpResize{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "resize", Active: width > 0 && height > 0}},
		Width:       width,
		Height:      height,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpResize) UnmarshalJSON(data []byte) error {
	type defaults OpResize
	def := defaults(*NewOpResizeDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpResize(def)
	op.OpUnaryBase.Apply = op.Apply
	return nil
}

func (op *OpResize) Apply(f *frame.Frame, c *ops.Context) (result *frame.Frame, err error) {
	if !op.Active {
		return f, nil
	}
	if op.Width <= 0 || op.Height <= 0 {
		return nil, &GeometryError{Frame: f.ID, Width: op.Width, Height: op.Height,
			Reason: "non-positive output dimensions"}
	}
	if f.Width == op.Width && f.Height == op.Height {
		return f, nil
	}

	b, err := f.ToBytes()
	if err != nil {
		return nil, &GeometryError{Frame: f.ID, Width: op.Width, Height: op.Height,
			Reason: err.Error()}
	}
	fmt.Fprintf(c.Log, "%d: Resizing %s frame to %dx%d\n",
		f.ID, f.DimensionsToString(), op.Width, op.Height)

	src := b.ToImage()
	dst := image.NewNRGBA(image.Rect(0, 0, op.Width, op.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	return frame.NewByteFrameFromImage(dst, f.ID, f.Channels).ToFrame(), nil
}
