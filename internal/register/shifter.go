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
	"github.com/kkarra/animate/internal/frame"
)

// Applies one aggregated shift per frame to every channel of that frame by
// multiplying its cached spectrum with a linear phase ramp, inverse
// transforming and keeping the real part. The frame with shift (0,0) is
// returned unchanged; a shift of zero is the identity operation and
// recomputing it through the transform would only add rounding noise.
//
// Masks are informational to this pipeline: a shifted frame's mask no
// longer describes its pixels, so it is invalidated (dropped). Frames
// passed through unchanged keep theirs.
func ApplyShifts(sp *Spectra, s *frame.Stack, shifts []Shift, maxThreads int) (*frame.Stack, error) {
	if len(shifts) != len(s.Frames) {
		return nil, &ShiftError{Frame: -1, Reason: "shift count does not match frame count"}
	}
	for i, f := range s.Frames {
		if !f.SameShape(s.Frames[0]) {
			return nil, &ShiftError{Frame: i, Reason: "inconsistent frame shapes in stack"}
		}
	}
	if maxThreads < 1 {
		maxThreads = 1
	}

	out := make([]*frame.Frame, len(s.Frames))
	limiter := make(chan bool, maxThreads)
	for i, f := range s.Frames {
		limiter <- true
		go func(i int, f *frame.Frame) {
			defer func() { <-limiter }()
			out[i] = shiftFrame(sp, f, shifts[i], i)
		}(i, f)
	}
	for i := 0; i < cap(limiter); i++ { // wait for goroutines to finish
		limiter <- true
	}
	return &frame.Stack{Frames: out}, nil
}

func shiftFrame(sp *Spectra, f *frame.Frame, s Shift, idx int) *frame.Frame {
	if s[0] == 0 && s[1] == 0 {
		return f
	}
	g := frame.NewFrame(f.ID, f.Width, f.Height, f.Channels, nil)
	for c := 0; c < f.Channels; c++ {
		shifted := sp.FFT.Shift(sp.Planes[idx][c], float64(s[0]), float64(s[1]))
		copy(g.Plane(c), sp.FFT.InverseReal(shifted))
	}
	return g
}
