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

import "fmt"

// Terminal failure of the shift measurement stage. Registration errors are
// deterministic; the caller should disable coregistration for such inputs
// rather than retry.
type RegistrationError struct {
	Frame   int    // frame index, -1 if the whole stack is affected
	Channel int    // channel index, -1 if the whole frame is affected
	Width   int
	Height  int
	Reason  string
}

func (e *RegistrationError) Error() string {
	if e.Frame < 0 {
		return fmt.Sprintf("registration: %dx%d stack: %s", e.Width, e.Height, e.Reason)
	}
	return fmt.Sprintf("registration: frame %d channel %d (%dx%d): %s",
		e.Frame, e.Channel, e.Width, e.Height, e.Reason)
}

// Terminal failure of the Fourier shift stage.
type ShiftError struct {
	Frame  int
	Reason string
}

func (e *ShiftError) Error() string {
	if e.Frame < 0 {
		return fmt.Sprintf("shift: %s", e.Reason)
	}
	return fmt.Sprintf("shift: frame %d: %s", e.Frame, e.Reason)
}
