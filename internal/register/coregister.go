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
	"fmt"
	"io"

	"github.com/kkarra/animate/internal/frame"
)

// Aligns a stack to its base frame: transform every plane once, measure
// per-channel offsets, reduce them to one offset per frame, and reuse the
// cached transforms to apply the shifts. The per-frame and per-channel
// correlations run in parallel; the median reduction is the barrier before
// any shift is applied. Returns the aligned stack and the applied shifts.
func Coregister(s *frame.Stack, baseFrame, upsample, maxThreads int, log io.Writer) (*frame.Stack, []Shift, error) {
	sp, err := NewSpectra(s)
	if err != nil {
		return nil, nil, err
	}

	r := NewRegistrar(baseFrame, upsample)
	perChannel := r.MeasureShifts(sp, maxThreads)
	shifts := AggregateShifts(perChannel)

	for i, f := range s.Frames {
		if i == baseFrame {
			continue
		}
		fmt.Fprintf(log, "%d: Measured shift (%.2f,%.2f) px from channels %v\n",
			f.ID, shifts[i][0], shifts[i][1], perChannel[i])
	}

	aligned, err := ApplyShifts(sp, s, shifts, maxThreads)
	if err != nil {
		return nil, nil, err
	}
	return aligned, shifts, nil
}
