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
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/mat"
)

// A translational offset in fractional pixels, row offset first.
type Shift [2]float32

// Measures sub-pixel translational offsets of every frame and channel
// against the base frame via cross correlation in the Fourier domain.
type Registrar struct {
	BaseFrame int // reference frame index, 0 by default
	Upsample  int // images register to within 1/Upsample of a pixel
}

func NewRegistrar(baseFrame, upsample int) *Registrar {
	if upsample < 1 {
		upsample = 1
	}
	return &Registrar{BaseFrame: baseFrame, Upsample: upsample}
}

// Computes the offset of every (frame, channel) plane relative to the same
// channel of the base frame, as a dense frames x channels array of
// 2-vectors. The base frame entries are identically zero and never
// computed, as are all entries of a stack with fewer than two frames.
// Correlations are mutually independent given the cached spectra, and run
// in parallel limited by maxThreads.
func (r *Registrar) MeasureShifts(sp *Spectra, maxThreads int) [][]Shift {
	shifts := make([][]Shift, sp.NumFrames())
	for i := range shifts {
		shifts[i] = make([]Shift, sp.Channels)
	}
	if sp.NumFrames() < 2 {
		return shifts
	}
	if maxThreads < 1 {
		maxThreads = 1
	}

	limiter := make(chan bool, maxThreads)
	for i := 0; i < sp.NumFrames(); i++ {
		if i == r.BaseFrame {
			continue
		}
		for c := 0; c < sp.Channels; c++ {
			limiter <- true
			go func(i, c int) {
				defer func() { <-limiter }()
				dy, dx := r.correlate(sp, sp.Planes[r.BaseFrame][c], sp.Planes[i][c])
				shifts[i][c] = Shift{float32(dy), float32(dx)}
			}(i, c)
		}
	}
	for i := 0; i < cap(limiter); i++ { // wait for goroutines to finish
		limiter <- true
	}
	return shifts
}

// Locates the peak of the cross correlation between a reference spectrum
// and a moving spectrum, then refines it to 1/Upsample pixel with an
// upsampled discrete Fourier transform around the peak.
func (r *Registrar) correlate(sp *Spectra, ref, mov []complex128) (dy, dx float64) {
	w, h := sp.Width, sp.Height

	// cross power spectrum, peak of its inverse transform is the shift
	product := make([]complex128, len(ref))
	for i := range product {
		product[i] = ref[i] * cmplx.Conj(mov[i])
	}
	corr := sp.FFT.Inverse(product)

	// whole-pixel estimate from the correlation maximum
	maxIdx, maxAbs := 0, 0.0
	for i, v := range corr {
		if a := cmplx.Abs(v); a > maxAbs {
			maxIdx, maxAbs = i, a
		}
	}
	iy, ix := maxIdx/w, maxIdx%w
	if iy > h/2 {
		iy -= h
	}
	if ix > w/2 {
		ix -= w
	}
	dy, dx = float64(iy), float64(ix)
	if r.Upsample <= 1 {
		return dy, dx
	}

	// refine by evaluating the cross correlation on an upsampled grid of
	// 1.5x1.5 pixels around the estimate, as a pair of matrix products
	u := float64(r.Upsample)
	region := int(math.Ceil(u * 1.5))
	center := math.Trunc(float64(region) / 2)
	offY := center - dy*u
	offX := center - dx*u

	for i := range product {
		product[i] = cmplx.Conj(product[i])
	}
	data := mat.NewCDense(h, w, product)
	kCol := upsampleKernel(w, region, u, offX, true)  // w x region
	kRow := upsampleKernel(h, region, u, offY, false) // region x h

	tmp := mat.NewCDense(h, region, nil)
	cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1, data.RawCMatrix(), kCol.RawCMatrix(), 0, tmp.RawCMatrix())
	cc := mat.NewCDense(region, region, nil)
	cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1, kRow.RawCMatrix(), tmp.RawCMatrix(), 0, cc.RawCMatrix())

	maxR, maxC, best := 0, 0, 0.0
	for y := 0; y < region; y++ {
		for x := 0; x < region; x++ {
			if a := cmplx.Abs(cc.At(y, x)); a > best {
				maxR, maxC, best = y, x, a
			}
		}
	}
	dy += (float64(maxR) - center) / u
	dx += (float64(maxC) - center) / u
	return dy, dx
}

// DFT kernel matrix for upsampling one axis of n samples by factor u,
// evaluated at region points starting at -offset. Shape is n x region when
// transposed, region x n otherwise.
func upsampleKernel(n, region int, u, offset float64, transposed bool) *mat.CDense {
	var k *mat.CDense
	if transposed {
		k = mat.NewCDense(n, region, nil)
	} else {
		k = mat.NewCDense(region, n, nil)
	}
	for m := 0; m < region; m++ {
		for j := 0; j < n; j++ {
			f := signedFreq(j, n) / (float64(n) * u)
			e := cmplx.Exp(complex(0, -2*math.Pi*(float64(m)-offset)*f))
			if transposed {
				k.Set(j, m, e)
			} else {
				k.Set(m, j, e)
			}
		}
	}
	return k
}

// Signed DFT bin index of bin k out of n
func signedFreq(k, n int) float64 {
	if k <= (n-1)/2 {
		return float64(k)
	}
	return float64(k - n)
}
