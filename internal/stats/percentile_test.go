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
	"math"
	"testing"

	"github.com/valyala/fastrand"
)

func TestPercentileEndpoints(t *testing.T) {
	rng := fastrand.RNG{}
	arr := make([]float32, 101)
	for j := 0; j < len(arr); j++ {
		arr[j] = float32(j)
	}
	for j := 0; j < len(arr); j++ {
		k := rng.Uint32n(uint32(len(arr)))
		arr[j], arr[k] = arr[k], arr[j]
	}

	for _, tc := range []struct{ p, expect float32 }{
		{0, 0}, {100, 100}, {50, 50}, {25, 25}, {98, 98},
	} {
		res, err := Percentile(arr, tc.p)
		if err != nil {
			t.Fatalf("p%g: unexpected error %s", tc.p, err.Error())
		}
		if res != tc.expect {
			t.Errorf("p%g of 0..100 got %f expect %f", tc.p, res, tc.expect)
		}
	}
}

func TestPercentileInterpolation(t *testing.T) {
	// rank of p50 in a 4 element array is 1.5, interpolating 2 and 3
	arr := []float32{1, 2, 3, 4}
	res, err := Percentile(arr, 50)
	if err != nil {
		t.Fatal(err)
	}
	if res != 2.5 {
		t.Errorf("p50 of 1..4 got %f expect 2.5", res)
	}
}

func TestPercentileIgnoresNaN(t *testing.T) {
	nan := float32(math.NaN())
	arr := []float32{nan, 3, nan, 1, 2, nan}
	vmin, vmax, err := PercentileRange(arr, 0, 100)
	if err != nil {
		t.Fatal(err)
	}
	if vmin != 1 || vmax != 3 {
		t.Errorf("range got [%f,%f] expect [1,3]", vmin, vmax)
	}
}

func TestPercentileAllNaN(t *testing.T) {
	nan := float32(math.NaN())
	arr := []float32{nan, nan, nan}
	if _, err := Percentile(arr, 50); err == nil {
		t.Error("expected error for fully non-finite data")
	}
	if _, err := Percentile(nil, 50); err == nil {
		t.Error("expected error for empty data")
	}
}
