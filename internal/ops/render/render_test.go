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
	"io"
	"math"
	"testing"

	"github.com/kkarra/animate/internal/frame"
	"github.com/kkarra/animate/internal/ops"
	"github.com/kkarra/animate/internal/palette"
)

func testContext() *ops.Context {
	return ops.NewContext(io.Discard, palette.NewCatalog())
}

func TestRescaleClipsToTargetRange(t *testing.T) {
	c := testContext()
	f := frame.NewFrame(0, 4, 1, 1, []float32{10, 12, 18, 20})
	out, err := NewOpRescale(25, 75, 0, 1).Apply(f, c)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range out.Data {
		if v < 0 || v > 1 {
			t.Errorf("pixel %d got %f, outside [0,1]", i, v)
		}
	}
	// values at or below p25 clip to 0, at or above p75 to 1
	if out.Data[0] != 0 || out.Data[3] != 1 {
		t.Errorf("endpoints got %f and %f expect 0 and 1", out.Data[0], out.Data[3])
	}
}

func TestRescaleFullRangeIsAffine(t *testing.T) {
	c := testContext()
	f := frame.NewFrame(0, 3, 1, 1, []float32{10, 15, 20})
	out, err := NewOpRescale(0, 100, 0, 1).Apply(f, c)
	if err != nil {
		t.Fatal(err)
	}
	expect := []float32{0, 0.5, 1}
	for i, v := range expect {
		if math.Abs(float64(out.Data[i]-v)) > 1e-6 {
			t.Errorf("pixel %d got %f expect %f", i, out.Data[i], v)
		}
	}
}

func TestRescaleIdempotent(t *testing.T) {
	c := testContext()
	f := frame.NewFrame(0, 3, 1, 1, []float32{0, 0.5, 1})
	op := NewOpRescale(0, 100, 0, 1)
	once, err := op.Apply(f, c)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := op.Apply(once, c)
	if err != nil {
		t.Fatal(err)
	}
	for i := range once.Data {
		if once.Data[i] != twice.Data[i] {
			t.Errorf("pixel %d changed from %f to %f", i, once.Data[i], twice.Data[i])
		}
	}
}

func TestRescaleConstantFrame(t *testing.T) {
	c := testContext()
	f := frame.NewFrame(0, 2, 2, 1, []float32{7, 7, 7, 7})
	out, err := NewOpRescale(2, 98, 0, 1).Apply(f, c)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range out.Data {
		if v != 0 {
			t.Errorf("pixel %d got %f expect 0", i, v)
		}
	}
}

func TestRescaleAllNaN(t *testing.T) {
	c := testContext()
	nan := float32(math.NaN())
	f := frame.NewFrame(0, 2, 2, 1, []float32{nan, nan, nan, nan})
	_, err := NewOpRescale(2, 98, 0, 1).Apply(f, c)
	if err == nil {
		t.Fatal("expected error for fully non-finite frame")
	}
	if _, ok := err.(*NormalizationError); !ok {
		t.Errorf("expected *NormalizationError, got %T", err)
	}
}

func TestQuantizeRoundsToBytes(t *testing.T) {
	c := testContext()
	f := frame.NewFrame(0, 3, 1, 1, []float32{0, 0.5, 1})
	out, err := NewOpQuantize().Apply(f, c)
	if err != nil {
		t.Fatal(err)
	}
	if out.Bitpix != 8 {
		t.Errorf("bitpix got %d expect 8", out.Bitpix)
	}
	expect := []float32{0, 128, 255}
	for i, v := range expect {
		if out.Data[i] != v {
			t.Errorf("pixel %d got %f expect %f", i, out.Data[i], v)
		}
	}
}

func TestColorizeMonoToColor(t *testing.T) {
	c := testContext()
	f := frame.NewFrame(0, 2, 1, 1, []float32{0, 1})
	out, err := NewOpColorize("gray").Apply(f, c)
	if err != nil {
		t.Fatal(err)
	}
	if out.Channels != 3 {
		t.Fatalf("channels got %d expect 3", out.Channels)
	}
	// gray maps 0 to black and 1 to white on every channel
	for ch := 0; ch < 3; ch++ {
		p := out.Plane(ch)
		if p[0] != 0 || p[1] != 1 {
			t.Errorf("channel %d got (%f,%f) expect (0,1)", ch, p[0], p[1])
		}
	}
}

func TestColorizePassesColorThrough(t *testing.T) {
	c := testContext()
	f := frame.NewFrame(0, 2, 1, 3, nil)
	out, err := NewOpColorize("viridis").Apply(f, c)
	if err != nil {
		t.Fatal(err)
	}
	if out != f {
		t.Error("color frame should pass through unchanged")
	}
}

func TestColorizeUnknownMap(t *testing.T) {
	c := testContext()
	f := frame.NewFrame(0, 2, 1, 1, nil)
	_, err := NewOpColorize("jet").Apply(f, c)
	if err == nil {
		t.Fatal("expected error for unknown colormap")
	}
	if _, ok := err.(*palette.ColorMapError); !ok {
		t.Errorf("expected *palette.ColorMapError, got %T", err)
	}
}

func TestCropRowsToAspect(t *testing.T) {
	c := testContext()
	w, h := 300, 200
	f := frame.NewFrame(0, w, h, 1, nil)
	for i := range f.Data {
		f.Data[i] = float32(i / w) // row index as pixel value
	}

	out, err := NewOpCrop(2, 1).Apply(f, c)
	if err != nil {
		t.Fatal(err)
	}
	if out.Width != w || out.Height != 100 {
		t.Fatalf("shape got %dx%d expect %dx100", out.Width, out.Height, w)
	}
	// centered crop keeps rows 50..149
	if out.Data[0] != 50 || out.Data[len(out.Data)-1] != 149 {
		t.Errorf("rows got %f..%f expect 50..149", out.Data[0], out.Data[len(out.Data)-1])
	}
}

func TestCropMatchingAspectIsNoop(t *testing.T) {
	c := testContext()
	f := frame.NewFrame(0, 300, 150, 1, nil)
	out, err := NewOpCrop(2, 1).Apply(f, c)
	if err != nil {
		t.Fatal(err)
	}
	if out != f {
		t.Error("matching aspect ratio should pass the frame through unchanged")
	}
}

func TestCropRejectsInvalidAspect(t *testing.T) {
	c := testContext()
	f := frame.NewFrame(0, 4, 4, 1, nil)
	op := NewOpCrop(0, 1)
	op.Active = true
	_, err := op.Apply(f, c)
	if err == nil {
		t.Fatal("expected error for non-positive aspect ratio")
	}
	if _, ok := err.(*GeometryError); !ok {
		t.Errorf("expected *GeometryError, got %T", err)
	}
}

func TestResizeKeepsMonoChannel(t *testing.T) {
	c := testContext()
	f := frame.NewFrame(0, 8, 8, 1, nil)
	f.Bitpix = 8
	for i := range f.Data {
		f.Data[i] = 100
	}

	out, err := NewOpResize(4, 4).Apply(f, c)
	if err != nil {
		t.Fatal(err)
	}
	if out.Width != 4 || out.Height != 4 || out.Channels != 1 {
		t.Fatalf("shape got %s expect 4x4x1", out.DimensionsToString())
	}
	if out.Bitpix != 8 {
		t.Errorf("bitpix got %d expect 8", out.Bitpix)
	}
	// resampling a constant plane must reproduce the constant
	for i, v := range out.Data {
		if v != 100 {
			t.Errorf("pixel %d got %f expect 100", i, v)
		}
	}
}

func TestResizeRejectsInvalidSize(t *testing.T) {
	c := testContext()
	f := frame.NewFrame(0, 8, 8, 1, nil)
	f.Bitpix = 8
	op := NewOpResize(-1, 4)
	op.Active = true
	_, err := op.Apply(f, c)
	if err == nil {
		t.Fatal("expected error for non-positive output size")
	}
	if _, ok := err.(*GeometryError); !ok {
		t.Errorf("expected *GeometryError, got %T", err)
	}
}
