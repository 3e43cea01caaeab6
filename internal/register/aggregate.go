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

import "github.com/kkarra/animate/internal/stats"

// Reduces the per-channel offsets of each frame to a single offset by
// taking the element-wise median across channels. A channel whose
// registration was thrown off by clouds or sensor artifacts is outvoted as
// long as a majority of channels agree; no channel quality signal is
// needed. The base frame entry stays (0,0).
func AggregateShifts(perChannel [][]Shift) []Shift {
	out := make([]Shift, len(perChannel))
	rows := make([]float32, 0, 8)
	cols := make([]float32, 0, 8)
	for i, channels := range perChannel {
		if len(channels) == 0 {
			continue
		}
		rows, cols = rows[:0], cols[:0]
		for _, s := range channels {
			rows = append(rows, s[0])
			cols = append(cols, s[1])
		}
		out[i] = Shift{
			stats.QSelectMedianFloat32(rows),
			stats.QSelectMedianFloat32(cols),
		}
	}
	return out
}
