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

package register

import (
	"io"
	"math"
	"testing"

	"github.com/kkarra/animate/internal/frame"
)

// a smooth blob centered at (cy,cx), near zero at the borders so the
// periodicity assumption of the Fourier domain holds well enough
func gaussianPlane(w, h int, cy, cx, sigma float64) []float32 {
	data := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d2 := (float64(y)-cy)*(float64(y)-cy) + (float64(x)-cx)*(float64(x)-cx)
			data[y*w+x] = float32(math.Exp(-d2 / (2 * sigma * sigma)))
		}
	}
	return data
}

func circularShift(data []float32, w, h, dy, dx int) []float32 {
	out := make([]float32, len(data))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sy := ((y+dy)%h + h) % h
			sx := ((x+dx)%w + w) % w
			out[sy*w+sx] = data[y*w+x]
		}
	}
	return out
}

func stackOf(t *testing.T, w, h int, planes ...[]float32) *frame.Stack {
	t.Helper()
	fs := make([]*frame.Frame, len(planes))
	for i, p := range planes {
		fs[i] = frame.NewFrame(i, w, h, 1, p)
	}
	s, err := frame.NewStack(fs)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestMeasureIntegerShift(t *testing.T) {
	w, h := 64, 64
	ref := gaussianPlane(w, h, 32, 32, 5)
	mov := circularShift(ref, w, h, 3, -5)
	s := stackOf(t, w, h, ref, mov)

	sp, err := NewSpectra(s)
	if err != nil {
		t.Fatal(err)
	}
	shifts := NewRegistrar(0, 1).MeasureShifts(sp, 4)

	// content moved by (3,-5), so the measured realignment shift is (-3,5)
	if shifts[0][0] != (Shift{0, 0}) {
		t.Errorf("base frame shift got %v expect zero", shifts[0][0])
	}
	got := shifts[1][0]
	if got[0] != -3 || got[1] != 5 {
		t.Errorf("shift got (%f,%f) expect (-3,5)", got[0], got[1])
	}
}

func TestMeasureSubPixelShift(t *testing.T) {
	w, h := 64, 64
	sy, sx := 1.3, -2.6
	ref := gaussianPlane(w, h, 32, 32, 5)
	mov := gaussianPlane(w, h, 32+sy, 32+sx, 5)
	s := stackOf(t, w, h, ref, mov)

	sp, err := NewSpectra(s)
	if err != nil {
		t.Fatal(err)
	}
	shifts := NewRegistrar(0, 10).MeasureShifts(sp, 4)

	got := shifts[1][0]
	if math.Abs(float64(got[0])+sy) > 0.15 || math.Abs(float64(got[1])+sx) > 0.15 {
		t.Errorf("shift got (%f,%f) expect about (%f,%f)", got[0], got[1], -sy, -sx)
	}
}

func TestMeasureRejectsDegenerateStacks(t *testing.T) {
	s := stackOf(t, 1, 1, []float32{1})
	if _, err := NewSpectra(s); err == nil {
		t.Error("expected error for 1x1 frames")
	}

	nan := []float32{1, 2, float32(math.NaN()), 4}
	s = stackOf(t, 2, 2, nan)
	if _, err := NewSpectra(s); err == nil {
		t.Error("expected error for non-finite pixels")
	}
}

func TestAggregateShiftsMedian(t *testing.T) {
	// the median suppresses the outlier channel
	perChannel := [][]Shift{
		{{0, 0}, {0, 0}, {0, 0}},
		{{1, 1}, {1, 1}, {5, 5}},
	}
	shifts := AggregateShifts(perChannel)
	if shifts[1] != (Shift{1, 1}) {
		t.Errorf("aggregated shift got %v expect (1,1)", shifts[1])
	}
}

func TestApplyShiftsChecksArguments(t *testing.T) {
	w, h := 8, 8
	ref := gaussianPlane(w, h, 4, 4, 2)
	s := stackOf(t, w, h, ref, ref)
	sp, err := NewSpectra(s)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ApplyShifts(sp, s, []Shift{{0, 0}}, 2); err == nil {
		t.Error("expected error for mismatched shift count")
	}
}

func TestCoregisterRealignsStack(t *testing.T) {
	w, h := 64, 64
	ref := gaussianPlane(w, h, 32, 32, 5)
	mov1 := circularShift(ref, w, h, 2, 1)
	mov2 := circularShift(ref, w, h, -1, 3)
	s := stackOf(t, w, h, ref, mov1, mov2)

	aligned, shifts, err := Coregister(s, 0, 10, 4, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if len(shifts) != 3 || shifts[0] != (Shift{0, 0}) {
		t.Fatalf("shifts got %v", shifts)
	}
	if aligned.Frames[0] != s.Frames[0] {
		t.Error("base frame should pass through unchanged")
	}
	for i := 1; i < 3; i++ {
		for j := range ref {
			if diff := math.Abs(float64(aligned.Frames[i].Data[j] - ref[j])); diff > 1e-3 {
				t.Fatalf("frame %d pixel %d got %f expect %f", i, j, aligned.Frames[i].Data[j], ref[j])
			}
		}
	}
}

func TestCoregisterSmallStackOnePixelRight(t *testing.T) {
	w, h := 16, 16
	ref := gaussianPlane(w, h, 8, 8, 2)
	mov := circularShift(ref, w, h, 0, 1)
	s := stackOf(t, w, h, ref, mov, ref)

	aligned, shifts, err := Coregister(s, 0, 10, 2, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	// content moved one pixel right, so the realignment shift is (0,-1)
	if math.Abs(float64(shifts[1][0])) > 0.11 || math.Abs(float64(shifts[1][1])+1) > 0.11 {
		t.Errorf("shift got (%f,%f) expect about (0,-1)", shifts[1][0], shifts[1][1])
	}
	for j := range ref {
		if diff := math.Abs(float64(aligned.Frames[1].Data[j] - ref[j])); diff > 1e-3 {
			t.Fatalf("pixel %d got %f expect %f", j, aligned.Frames[1].Data[j], ref[j])
		}
	}
}

func TestShiftedFramesDropMask(t *testing.T) {
	w, h := 32, 32
	ref := gaussianPlane(w, h, 16, 16, 4)
	mov := circularShift(ref, w, h, 2, 2)
	s := stackOf(t, w, h, ref, mov)
	for _, f := range s.Frames {
		f.Mask = make([]bool, w*h)
	}

	aligned, _, err := Coregister(s, 0, 10, 2, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if aligned.Frames[0].Mask == nil {
		t.Error("base frame should keep its mask")
	}
	if aligned.Frames[1].Mask != nil {
		t.Error("shifted frame should drop its mask")
	}
}
