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

package coreg

import (
	"io"
	"math"
	"testing"

	"github.com/kkarra/animate/internal/frame"
	"github.com/kkarra/animate/internal/ops"
	"github.com/kkarra/animate/internal/palette"
	"github.com/kkarra/animate/internal/register"
)

func gaussianFrame(id, w, h int, cy, cx, sigma float64) *frame.Frame {
	f := frame.NewFrame(id, w, h, 1, nil)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d2 := (float64(y)-cy)*(float64(y)-cy) + (float64(x)-cx)*(float64(x)-cx)
			f.Data[y*w+x] = float32(math.Exp(-d2 / (2 * sigma * sigma)))
		}
	}
	return f
}

func TestOperatorAlignsPromises(t *testing.T) {
	c := ops.NewContext(io.Discard, palette.NewCatalog())
	w, h := 32, 32
	ref := gaussianFrame(0, w, h, 16, 16, 4)
	mov := gaussianFrame(1, w, h, 18, 15, 4)
	ins := ops.PromisesFromFrames([]*frame.Frame{ref, mov})

	outs, err := NewOpCoregister(0, 10).MakePromises(ins, c)
	if err != nil {
		t.Fatal(err)
	}
	if len(outs) != len(ins) {
		t.Fatalf("promises got %d expect %d", len(outs), len(ins))
	}
	fs, err := ops.MaterializeAll(outs, c.MaxThreads)
	if err != nil {
		t.Fatal(err)
	}
	if fs[0] != ref {
		t.Error("base frame should pass through unchanged")
	}
	for j := range ref.Data {
		if diff := math.Abs(float64(fs[1].Data[j] - ref.Data[j])); diff > 0.02 {
			t.Fatalf("pixel %d got %f expect %f", j, fs[1].Data[j], ref.Data[j])
		}
	}
}

func TestOperatorChecksArguments(t *testing.T) {
	c := ops.NewContext(io.Discard, palette.NewCatalog())
	ins := ops.PromisesFromFrames([]*frame.Frame{
		gaussianFrame(0, 8, 8, 4, 4, 2),
		gaussianFrame(1, 8, 8, 4, 4, 2),
	})

	if _, err := NewOpCoregister(0, 10).MakePromises(nil, c); err == nil {
		t.Error("expected error for zero inputs")
	}
	if _, err := NewOpCoregister(2, 10).MakePromises(ins, c); err == nil {
		t.Error("expected error for base frame out of range")
	} else if _, ok := err.(*register.RegistrationError); !ok {
		t.Errorf("expected *register.RegistrationError, got %T", err)
	}
	if _, err := NewOpCoregister(0, 0).MakePromises(ins, c); err == nil {
		t.Error("expected error for invalid upsampling factor")
	} else if _, ok := err.(*register.RegistrationError); !ok {
		t.Errorf("expected *register.RegistrationError, got %T", err)
	}
}

func TestOperatorInactivePassesThrough(t *testing.T) {
	c := ops.NewContext(io.Discard, palette.NewCatalog())
	ins := ops.PromisesFromFrames([]*frame.Frame{gaussianFrame(0, 8, 8, 4, 4, 2)})

	op := NewOpCoregister(0, 10)
	op.Active = false
	outs, err := op.MakePromises(ins, c)
	if err != nil {
		t.Fatal(err)
	}
	if len(outs) != 1 {
		t.Fatalf("promises got %d expect 1", len(outs))
	}
	f, err := outs[0]()
	if err != nil {
		t.Fatal(err)
	}
	if f.ID != 0 {
		t.Errorf("frame id got %d expect 0", f.ID)
	}
}
