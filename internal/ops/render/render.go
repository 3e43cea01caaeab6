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
	"math"

	"github.com/kkarra/animate/internal/frame"
	"github.com/kkarra/animate/internal/ops"
	"github.com/kkarra/animate/internal/stats"
)

// Terminal failure of the percentile rescale stage.
type NormalizationError struct {
	Frame  int
	Reason string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize: frame %d: %s", e.Frame, e.Reason)
}

// Terminal failure of the geometry stage.
type GeometryError struct {
	Frame  int
	Width  int
	Height int
	Reason string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("geometry: frame %d: target %dx%d: %s", e.Frame, e.Width, e.Height, e.Reason)
}

// Assembles the per-frame transform chain: percentile rescale to [0,1],
// colorize single-channel frames, quantize to bytes, crop to aspect ratio,
// resize to the output size, and optionally save numbered frames.
func NewOpTransform(opRescale *OpRescale, opColorize *OpColorize, opQuantize *OpQuantize,
	opCrop *OpCrop, opResize *OpResize, opSave *ops.OpSave) *ops.OpSequence {
	return ops.NewOpSequence(opRescale, opColorize, opQuantize, opCrop, opResize, opSave)
}

// Rescales pixel intensities from the frame's [pmin,pmax] percentile range
// into [min,max] with clipping, ignoring non-finite values when computing
// the percentiles. Takes one input, produces one output
type OpRescale struct {
	ops.OpUnaryBase
	Pmin float32 `json:"pmin"`
	Pmax float32 `json:"pmax"`
	Min  float32 `json:"min"`
	Max  float32 `json:"max"`
}

var _ ops.Operator = (*OpRescale)(nil) // this type is an Operator

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpRescaleDefault() }) } // register the operator for JSON decoding

func NewOpRescaleDefault() *OpRescale { return NewOpRescale(0, 100, 0, 1) }

func NewOpRescale(pmin, pmax, min, max float32) *OpRescale {
	op := OpRescale{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "rescale", Active: true}},
		Pmin:        pmin,
		Pmax:        pmax,
		Min:         min,
		Max:         max,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpRescale) UnmarshalJSON(data []byte) error {
	type defaults OpRescale
	def := defaults(*NewOpRescaleDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpRescale(def)
	op.OpUnaryBase.Apply = op.Apply
	return nil
}

func (op *OpRescale) Apply(f *frame.Frame, c *ops.Context) (result *frame.Frame, err error) {
	if !op.Active {
		return f, nil
	}
	if op.Pmin >= op.Pmax {
		return nil, &NormalizationError{Frame: f.ID,
			Reason: fmt.Sprintf("invalid percentile bounds [%g,%g]", op.Pmin, op.Pmax)}
	}
	vmin, vmax, err := stats.PercentileRange(f.Data, op.Pmin, op.Pmax)
	if err != nil {
		return nil, &NormalizationError{Frame: f.ID, Reason: "no finite pixel values"}
	}

	result = frame.NewFrameFromFrame(f)
	if vmax == vmin {
		// degenerate dynamic range, e.g. a fully cloud-masked scene; defined
		// as all min rather than an error
		fmt.Fprintf(c.Log, "%d: Uniform intensity %.4g, rescaling to all %.4g\n", f.ID, vmin, op.Min)
		for i := range result.Data {
			result.Data[i] = op.Min
		}
		return result, nil
	}

	fmt.Fprintf(c.Log, "%d: Rescaling p%g..p%g range [%.4g,%.4g] to [%g,%g]\n",
		f.ID, op.Pmin, op.Pmax, vmin, vmax, op.Min, op.Max)
	scale := (op.Max - op.Min) / (vmax - vmin)
	for i, d := range f.Data {
		v := (d-vmin)*scale + op.Min
		if v < op.Min {
			v = op.Min
		} else if v > op.Max {
			v = op.Max
		}
		result.Data[i] = v
	}
	return result, nil
}

// Maps normalized single-channel frames through a named color transfer
// function, producing three channels; any alpha component of the palette is
// dropped. Multi-channel frames pass through unchanged. Takes one input,
// produces one output
type OpColorize struct {
	ops.OpUnaryBase
	Map string `json:"map"`
}

var _ ops.Operator = (*OpColorize)(nil) // this type is an Operator

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpColorizeDefault() }) } // register the operator for JSON decoding

func NewOpColorizeDefault() *OpColorize { return NewOpColorize("viridis") }

func NewOpColorize(mapName string) *OpColorize {
	op := OpColorize{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "colorize", Active: mapName != ""}},
		Map:         mapName,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpColorize) UnmarshalJSON(data []byte) error {
	type defaults OpColorize
	def := defaults(*NewOpColorizeDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpColorize(def)
	op.OpUnaryBase.Apply = op.Apply
	return nil
}

func (op *OpColorize) Apply(f *frame.Frame, c *ops.Context) (result *frame.Frame, err error) {
	if !op.Active {
		return f, nil
	}
	switch f.Kind() {
	case frame.Color, frame.ColorMasked:
		return f, nil // already color, identity
	}
	p, err := c.Palettes.Get(op.Map)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(c.Log, "%d: Colorizing with map %s\n", f.ID, p.Name)
	size := f.Width * f.Height
	result = frame.NewFrame(f.ID, f.Width, f.Height, 3, nil)
	result.Bitpix = f.Bitpix
	result.Mask = f.Mask
	for i := 0; i < size; i++ {
		r, g, b := p.At(float64(f.Data[i]))
		result.Data[i] = float32(r)
		result.Data[size+i] = float32(g)
		result.Data[2*size+i] = float32(b)
	}
	return result, nil
}

// Quantizes a frame to 8 bit, stretching its full value range to [0,255].
// The perceptual contrast stretch has already happened upstream, so this is
// a pure type conversion. Takes one input, produces one output
type OpQuantize struct {
	ops.OpUnaryBase
}

var _ ops.Operator = (*OpQuantize)(nil) // this type is an Operator

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpQuantizeDefault() }) } // register the operator for JSON decoding

func NewOpQuantizeDefault() *OpQuantize { return NewOpQuantize() }

func NewOpQuantize() *OpQuantize {
	op := OpQuantize{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "quantize", Active: true}},
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpQuantize) UnmarshalJSON(data []byte) error {
	type defaults OpQuantize
	def := defaults(*NewOpQuantizeDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpQuantize(def)
	op.OpUnaryBase.Apply = op.Apply
	return nil
}

func (op *OpQuantize) Apply(f *frame.Frame, c *ops.Context) (result *frame.Frame, err error) {
	if !op.Active {
		return f, nil
	}
	vmin, vmax, err := stats.PercentileRange(f.Data, 0, 100)
	if err != nil {
		return nil, &NormalizationError{Frame: f.ID, Reason: "no finite pixel values"}
	}

	result = frame.NewFrameFromFrame(f)
	result.Bitpix = 8
	if vmax == vmin {
		for i := range result.Data {
			result.Data[i] = 0
		}
		return result, nil
	}
	scale := 255 / (vmax - vmin)
	for i, d := range f.Data {
		v := (d - vmin) * scale
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		result.Data[i] = float32(math.Round(float64(v)))
	}
	return result, nil
}

// Center-crops a frame along the row axis to match a target aspect ratio.
// Columns are never cropped. A frame already at the target ratio passes
// through unchanged. Takes one input, produces one output
type OpCrop struct {
	ops.OpUnaryBase
	AspectWidth  int `json:"aspectWidth"`
	AspectHeight int `json:"aspectHeight"`
}

var _ ops.Operator = (*OpCrop)(nil) // this type is an Operator

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpCropDefault() }) } // register the operator for JSON decoding

func NewOpCropDefault() *OpCrop { return NewOpCrop(0, 0) }

func NewOpCrop(aspectWidth, aspectHeight int) *OpCrop {
	op := OpCrop{
		OpUnaryBase:  ops.OpUnaryBase{OpBase: ops.OpBase{Type: "crop", Active: aspectWidth > 0 && aspectHeight > 0}},
		AspectWidth:  aspectWidth,
		AspectHeight: aspectHeight,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpCrop) UnmarshalJSON(data []byte) error {
	type defaults OpCrop
	def := defaults(*NewOpCropDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpCrop(def)
	op.OpUnaryBase.Apply = op.Apply
	return nil
}

func (op *OpCrop) Apply(f *frame.Frame, c *ops.Context) (result *frame.Frame, err error) {
	if !op.Active {
		return f, nil
	}
	if op.AspectWidth <= 0 || op.AspectHeight <= 0 {
		return nil, &GeometryError{Frame: f.ID, Width: op.AspectWidth, Height: op.AspectHeight,
			Reason: "non-positive aspect ratio"}
	}
	ratio := float64(op.AspectHeight) / float64(op.AspectWidth)
	oldRatio := float64(f.Height) / float64(f.Width)
	if ratio == oldRatio {
		return f, nil
	}

	newHeight := float64(f.Height) * ratio
	start := int(math.Round((float64(f.Height) - newHeight) / 2))
	end := int(math.Round(float64(start) + newHeight))
	if start < 0 || end > f.Height || end <= start {
		return nil, &GeometryError{Frame: f.ID, Width: op.AspectWidth, Height: op.AspectHeight,
			Reason: fmt.Sprintf("crop rows [%d,%d) outside frame of %d rows", start, end, f.Height)}
	}

	rows := end - start
	fmt.Fprintf(c.Log, "%d: Cropping rows [%d,%d) for aspect ratio %d:%d\n",
		f.ID, start, end, op.AspectWidth, op.AspectHeight)
	result = frame.NewFrame(f.ID, f.Width, rows, f.Channels, nil)
	result.Bitpix = f.Bitpix
	for ch := 0; ch < f.Channels; ch++ {
		src := f.Plane(ch)
		dst := result.Plane(ch)
		copy(dst, src[start*f.Width:end*f.Width])
	}
	if f.Mask != nil {
		result.Mask = append([]bool(nil), f.Mask[start*f.Width:end*f.Width]...)
	}
	return result, nil
}
