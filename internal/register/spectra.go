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
	"github.com/kkarra/animate/internal/fourier"
	"github.com/kkarra/animate/internal/frame"
)

// The cached 2-D Fourier transforms of a stack, one spectrum per frame and
// channel. Computing them once here lets the correlation and the shift
// stages reuse the same transforms.
type Spectra struct {
	Width    int
	Height   int
	Channels int
	FFT      *fourier.FFT2
	Planes   [][][]complex128 // [frame][channel] full spectrum
}

// Transforms every frame and channel of the stack. Fails with
// RegistrationError if the spatial dimensions are below the minimal working
// size or the data contains non-finite values that would poison the
// transforms.
func NewSpectra(s *frame.Stack) (*Spectra, error) {
	if s.Width() < 2 || s.Height() < 2 {
		return nil, &RegistrationError{Frame: -1, Channel: -1, Width: s.Width(), Height: s.Height(),
			Reason: "spatial dimensions below minimal working size 2x2"}
	}
	for _, f := range s.Frames {
		if !f.IsFinite() {
			return nil, &RegistrationError{Frame: f.ID, Channel: -1, Width: f.Width, Height: f.Height,
				Reason: "non-finite pixel values"}
		}
	}

	sp := &Spectra{
		Width:    s.Width(),
		Height:   s.Height(),
		Channels: s.Channels(),
		FFT:      fourier.NewFFT2(s.Width(), s.Height()),
		Planes:   make([][][]complex128, len(s.Frames)),
	}
	for i, f := range s.Frames {
		sp.Planes[i] = make([][]complex128, f.Channels)
		for c := 0; c < f.Channels; c++ {
			sp.Planes[i][c] = sp.FFT.Transform(f.Plane(c))
		}
	}
	return sp, nil
}

func (sp *Spectra) NumFrames() int { return len(sp.Planes) }
