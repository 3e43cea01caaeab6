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

// Package pipeline assembles the end to end animation run: load a stack of
// scenes, optionally align them, transform each frame for display and
// encode the result. Shared between the command line and the REST API.
package pipeline

import (
	"fmt"

	"github.com/kkarra/animate/internal/encode"
	"github.com/kkarra/animate/internal/frame"
	"github.com/kkarra/animate/internal/ops"
	"github.com/kkarra/animate/internal/ops/coreg"
	"github.com/kkarra/animate/internal/ops/render"
)

// Parameters for one animation run.
type Params struct {
	FilePatterns []string `json:"filePatterns"`
	Out          string   `json:"out"`

	Pmin float32 `json:"pmin"`
	Pmax float32 `json:"pmax"`
	Cmap string  `json:"cmap"`

	AspectWidth  int `json:"aspectWidth"`
	AspectHeight int `json:"aspectHeight"`
	OutWidth     int `json:"outWidth"`
	OutHeight    int `json:"outHeight"`

	Coregister bool `json:"coregister"`
	Upsample   int  `json:"upsample"`
	BaseFrame  int  `json:"baseFrame"`

	FPS           int     `json:"fps"`
	Websafe       bool    `json:"websafe"`
	ValidFraction float32 `json:"validFraction"`
	FramePattern  string  `json:"framePattern"`
}

func NewParamsDefault() *Params {
	return &Params{
		Pmin:     2,
		Pmax:     98,
		Cmap:     "viridis",
		Upsample: 10,
		FPS:      10,
	}
}

// Runs the full pipeline for the given parameters and context.
func Render(p *Params, c *ops.Context) error {
	if p.Out == "" {
		return fmt.Errorf("no output file given")
	}
	if !ops.IsPathAllowed(p.Out) {
		return fmt.Errorf("output file outside current directory tree, aborting")
	}

	// load all scenes, dropping mostly invalid ones before alignment
	loadMany := ops.NewOpLoadMany(p.FilePatterns)
	promises, err := loadMany.MakePromises(nil, c)
	if err != nil {
		return err
	}
	fs, err := ops.MaterializeAll(promises, c.MaxThreads)
	if err != nil {
		return err
	}
	s, err := frame.NewStack(fs)
	if err != nil {
		return err
	}
	if p.ValidFraction > 0 {
		before := s.NumFrames()
		s = s.FilterValidFraction(p.ValidFraction)
		if dropped := before - s.NumFrames(); dropped > 0 {
			fmt.Fprintf(c.Log, "Dropped %d of %d frames below %.0f%% valid pixels\n",
				dropped, before, p.ValidFraction*100)
		}
	}
	promises = ops.PromisesFromFrames(s.Frames)

	if p.Coregister {
		opCoreg := coreg.NewOpCoregister(p.BaseFrame, p.Upsample)
		promises, err = opCoreg.MakePromises(promises, c)
		if err != nil {
			return err
		}
	}

	transform := render.NewOpTransform(
		render.NewOpRescale(p.Pmin, p.Pmax, 0, 1),
		render.NewOpColorize(p.Cmap),
		render.NewOpQuantize(),
		render.NewOpCrop(p.AspectWidth, p.AspectHeight),
		render.NewOpResize(p.OutWidth, p.OutHeight),
		ops.NewOpSave(p.FramePattern),
	)
	promises, err = transform.MakePromises(promises, c)
	if err != nil {
		return err
	}
	// keep in-flight frames within the stack memory budget
	threads := c.BoundedThreads(4 * s.Width() * s.Height() * s.Channels())
	fs, err = ops.MaterializeAll(promises, threads)
	if err != nil {
		return err
	}
	s, err = frame.NewStack(fs)
	if err != nil {
		return err
	}

	seq, err := encode.NewSequence(s, p.FPS)
	if err != nil {
		return err
	}
	if err := seq.WriteFile(p.Out, c.Log); err != nil {
		return err
	}
	if p.Websafe {
		if _, err := encode.MakeWebsafe(p.Out, c.Log); err != nil {
			return err
		}
	}
	fmt.Fprintf(c.Log, "Done.\n")
	return nil
}
