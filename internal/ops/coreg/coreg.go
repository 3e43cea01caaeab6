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

package coreg

import (
	"encoding/json"
	"fmt"

	"github.com/kkarra/animate/internal/frame"
	"github.com/kkarra/animate/internal/ops"
	"github.com/kkarra/animate/internal/register"
)

// Aligns all frames in a stack to a base frame via Fourier phase
// correlation. This is an n-to-n operator: it must materialize all inputs
// before any shift can be measured, because the per-channel offsets are
// reduced across the whole stack. Takes n inputs, produces n outputs
type OpCoregister struct {
	ops.OpBase
	BaseFrame int `json:"baseFrame"`
	Upsample  int `json:"upsample"`
}

var _ ops.Operator = (*OpCoregister)(nil) // this type is an Operator

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpCoregisterDefault() }) } // register the operator for JSON decoding

func NewOpCoregisterDefault() *OpCoregister { return NewOpCoregister(0, 10) }

func NewOpCoregister(baseFrame, upsample int) *OpCoregister {
	return &OpCoregister{
		OpBase:    ops.OpBase{Type: "coregister", Active: true},
		BaseFrame: baseFrame,
		Upsample:  upsample,
	}
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpCoregister) UnmarshalJSON(data []byte) error {
	type defaults OpCoregister
	def := defaults(*NewOpCoregisterDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpCoregister(def)
	return nil
}

func (op *OpCoregister) MakePromises(ins []ops.Promise, c *ops.Context) (outs []ops.Promise, err error) {
	if !op.Active {
		return ins, nil
	}
	if len(ins) == 0 {
		return nil, fmt.Errorf("%s operator with zero inputs", op.Type)
	}
	if op.BaseFrame < 0 || op.BaseFrame >= len(ins) {
		return nil, &register.RegistrationError{Frame: op.BaseFrame, Channel: -1,
			Reason: fmt.Sprintf("base frame out of range for %d frames", len(ins))}
	}
	if op.Upsample < 1 {
		return nil, &register.RegistrationError{Frame: -1, Channel: -1,
			Reason: fmt.Sprintf("invalid upsampling factor %d", op.Upsample)}
	}

	fs, err := ops.MaterializeAll(ins, c.MaxThreads)
	if err != nil {
		return nil, err
	}
	s, err := frame.NewStack(fs)
	if err != nil {
		return nil, err
	}

	aligned, _, err := register.Coregister(s, op.BaseFrame, op.Upsample, c.MaxThreads, c.Log)
	if err != nil {
		return nil, err
	}
	return ops.PromisesFromFrames(aligned.Frames), nil
}
