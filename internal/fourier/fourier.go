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
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// A reusable 2-D DFT plan for one plane shape. The row transform runs as a
// real FFT expanded to the full spectrum via conjugate symmetry, the column
// transform as a complex FFT. One plan serves every frame and channel of a
// stack, since all planes share the same shape.
type FFT2 struct {
	Width  int
	Height int
	row    *fourier.FFT
	rowC   *fourier.CmplxFFT
	col    *fourier.CmplxFFT
}

func NewFFT2(width, height int) *FFT2 {
	return &FFT2{
		Width:  width,
		Height: height,
		row:    fourier.NewFFT(width),
		rowC:   fourier.NewCmplxFFT(width),
		col:    fourier.NewCmplxFFT(height),
	}
}

// Computes the full 2-D DFT of a real-valued plane in row-major order.
func (t *FFT2) Transform(data []float32) []complex128 {
	w, h := t.Width, t.Height
	spec := make([]complex128, w*h)

	// row-wise real FFT, expanded to the full spectrum
	rowIn := make([]float64, w)
	rowOut := make([]complex128, w/2+1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			rowIn[x] = float64(data[y*w+x])
		}
		t.row.Coefficients(rowOut, rowIn)
		for x := 0; x < len(rowOut); x++ {
			spec[y*w+x] = rowOut[x]
		}
		for x := len(rowOut); x < w; x++ {
			// conjugate symmetry F(n-k) = F*(k) for real input
			spec[y*w+x] = cmplx.Conj(rowOut[w-x])
		}
	}

	// column-wise complex FFT
	colIn := make([]complex128, h)
	colOut := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			colIn[y] = spec[y*w+x]
		}
		t.col.Coefficients(colOut, colIn)
		for y := 0; y < h; y++ {
			spec[y*w+x] = colOut[y]
		}
	}
	return spec
}

// Computes the normalized 2-D inverse DFT of a full spectrum.
func (t *FFT2) Inverse(spec []complex128) []complex128 {
	w, h := t.Width, t.Height
	out := make([]complex128, w*h)
	copy(out, spec)

	colIn := make([]complex128, h)
	colOut := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			colIn[y] = out[y*w+x]
		}
		t.col.Sequence(colOut, colIn)
		for y := 0; y < h; y++ {
			out[y*w+x] = colOut[y]
		}
	}

	rowIn := make([]complex128, w)
	rowOut := make([]complex128, w)
	norm := complex(1/float64(w*h), 0)
	for y := 0; y < h; y++ {
		copy(rowIn, out[y*w:(y+1)*w])
		t.rowC.Sequence(rowOut, rowIn)
		for x := 0; x < w; x++ {
			out[y*w+x] = rowOut[x] * norm
		}
	}
	return out
}

// Computes the real part of the normalized 2-D inverse DFT as float32.
func (t *FFT2) InverseReal(spec []complex128) []float32 {
	inv := t.Inverse(spec)
	out := make([]float32, len(inv))
	for i, v := range inv {
		out[i] = float32(real(v))
	}
	return out
}

// Multiplies a spectrum by the linear phase ramp that translates the plane
// by (dy, dx) fractional pixels, per the Fourier shift theorem. Returns a
// new spectrum; the input is left untouched.
func (t *FFT2) Shift(spec []complex128, dy, dx float64) []complex128 {
	w, h := t.Width, t.Height
	out := make([]complex128, w*h)
	for ky := 0; ky < h; ky++ {
		fy := freq(ky, h)
		py := -2 * math.Pi * dy * fy
		for kx := 0; kx < w; kx++ {
			fx := freq(kx, w)
			p := py - 2*math.Pi*dx*fx
			out[ky*w+kx] = spec[ky*w+kx] * cmplx.Exp(complex(0, p))
		}
	}
	return out
}

// Signed sample frequency of DFT bin k out of n, in cycles per sample
func freq(k, n int) float64 {
	if k <= (n-1)/2 {
		return float64(k) / float64(n)
	}
	return float64(k-n) / float64(n)
}
