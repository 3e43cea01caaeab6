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

package fourier

import (
	"math"
	"testing"

	"github.com/valyala/fastrand"
)

func randomPlane(w, h int) []float32 {
	rng := fastrand.RNG{}
	data := make([]float32, w*h)
	for i := range data {
		data[i] = float32(rng.Uint32n(1000)) / 1000
	}
	return data
}

func TestTransformRoundtrip(t *testing.T) {
	for _, shape := range []struct{ w, h int }{{16, 16}, {15, 17}, {32, 8}} {
		ft := NewFFT2(shape.w, shape.h)
		data := randomPlane(shape.w, shape.h)
		back := ft.InverseReal(ft.Transform(data))
		for i := range data {
			if diff := math.Abs(float64(back[i] - data[i])); diff > 1e-5 {
				t.Fatalf("%dx%d roundtrip: pixel %d got %f expect %f", shape.w, shape.h, i, back[i], data[i])
			}
		}
	}
}

func TestZeroShiftIsIdentity(t *testing.T) {
	ft := NewFFT2(16, 12)
	data := randomPlane(16, 12)
	spec := ft.Transform(data)
	back := ft.InverseReal(ft.Shift(spec, 0, 0))
	for i := range data {
		if diff := math.Abs(float64(back[i] - data[i])); diff > 1e-5 {
			t.Fatalf("zero shift: pixel %d got %f expect %f", i, back[i], data[i])
		}
	}
}

func TestIntegerShiftRotatesPlane(t *testing.T) {
	w, h := 16, 12
	dy, dx := 3, -2
	ft := NewFFT2(w, h)
	data := randomPlane(w, h)
	spec := ft.Transform(data)
	back := ft.InverseReal(ft.Shift(spec, float64(dy), float64(dx)))

	// an integer Fourier shift is an exact circular shift of the plane
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sy := ((y+dy)%h + h) % h
			sx := ((x+dx)%w + w) % w
			if diff := math.Abs(float64(back[sy*w+sx] - data[y*w+x])); diff > 1e-5 {
				t.Fatalf("shift (%d,%d): pixel (%d,%d) got %f expect %f",
					dy, dx, y, x, back[sy*w+sx], data[y*w+x])
			}
		}
	}
}

func TestShiftRoundtrip(t *testing.T) {
	ft := NewFFT2(16, 16)
	data := randomPlane(16, 16)
	spec := ft.Transform(data)
	back := ft.InverseReal(ft.Shift(ft.Shift(spec, 0.7, -1.3), -0.7, 1.3))
	for i := range data {
		if diff := math.Abs(float64(back[i] - data[i])); diff > 1e-5 {
			t.Fatalf("shift roundtrip: pixel %d got %f expect %f", i, back[i], data[i])
		}
	}
}
