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

package stats

import (
	"fmt"
	"math"
)

// Collects the finite values of data into a freshly allocated slice,
// dropping NaNs and infinities.
func FiniteValues(data []float32) []float32 {
	finite := make([]float32, 0, len(data))
	for _, d := range data {
		d64 := float64(d)
		if math.IsNaN(d64) || math.IsInf(d64, 0) {
			continue
		}
		finite = append(finite, d)
	}
	return finite
}

// Percentile of the finite values of data, with linear interpolation
// between adjacent ranks. p is in [0,100]. Errors if no finite value exists.
func Percentile(data []float32, p float32) (float32, error) {
	finite := FiniteValues(data)
	return percentileInPlace(finite, p)
}

// Lower and upper percentiles of the finite values of data in a single
// filtering pass. pmin and pmax are in [0,100] with pmin<pmax.
func PercentileRange(data []float32, pmin, pmax float32) (vmin, vmax float32, err error) {
	finite := FiniteValues(data)
	if vmin, err = percentileInPlace(finite, pmin); err != nil {
		return 0, 0, err
	}
	if vmax, err = percentileInPlace(finite, pmax); err != nil {
		return 0, 0, err
	}
	return vmin, vmax, nil
}

// Percentile of an array known to be free of non-finite values.
// Partially reorders the array.
func percentileInPlace(finite []float32, p float32) (float32, error) {
	if len(finite) == 0 {
		return 0, fmt.Errorf("percentile of empty or fully non-finite data")
	}
	if len(finite) == 1 {
		return finite[0], nil
	}
	rank := float64(p) / 100 * float64(len(finite)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo < 0 {
		lo, hi = 0, 0
	}
	if hi > len(finite)-1 {
		lo, hi = len(finite)-1, len(finite)-1
	}
	vlo := QSelectFloat32(finite, lo+1)
	if hi == lo {
		return vlo, nil
	}
	// QSelect leaves everything right of rank lo greater or equal, so the
	// next rank is the minimum of the right partition
	vhi := finite[lo+1]
	for _, v := range finite[lo+1:] {
		if v < vhi {
			vhi = v
		}
	}
	frac := float32(rank - float64(lo))
	return vlo + (vhi-vlo)*frac, nil
}
