// Copyright (C) 2020 Markus L. Noga
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

package resonance

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mlnoga/resonance/internal/frame"
	"github.com/mlnoga/resonance/internal/ops"
)

// Renders an animation from each input by applying the operation to several copies of it.
// Operations with a negative seed draw fresh noise for every copy, which shows the
// stochastic flicker of a live stream. Frame IDs are input ID times frames plus the copy index.
// Takes n inputs, produces n*frames outputs
type OpAnimate struct {
	ops.OpBase
	Frames    int          `json:"frames"`
	Operation ops.Operator `json:"operation"`
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpAnimateDefault() }) } // register the operator for JSON decoding

func NewOpAnimateDefault() *OpAnimate { return NewOpAnimate(10, nil) }

func NewOpAnimate(frames int, operation ops.Operator) *OpAnimate {
	return &OpAnimate{
		OpBase:    ops.OpBase{Type: "animate", Active: true},
		Frames:    frames,
		Operation: operation,
	}
}

// Unmarshals the operator with its polymorphic embedded operation
func (op *OpAnimate) UnmarshalJSON(b []byte) error {
	def := NewOpAnimateDefault()
	raw := struct {
		ops.OpBase
		Frames    int             `json:"frames"`
		Operation json.RawMessage `json:"operation"`
	}{OpBase: def.OpBase, Frames: def.Frames}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	op.OpBase, op.Frames, op.Operation = raw.OpBase, raw.Frames, nil
	if len(raw.Operation) == 0 || string(raw.Operation) == "null" {
		return nil
	}
	operation, err := ops.UnmarshalOperator(raw.Operation)
	if err != nil {
		return err
	}
	op.Operation = operation
	return nil
}

func (op *OpAnimate) MakePromises(ins []ops.Promise, c *ops.Context) (outs []ops.Promise, err error) {
	if !op.Active {
		return ins, nil
	}
	if op.Frames < 1 {
		return nil, fmt.Errorf("%s operator with %d frames", op.Type, op.Frames)
	}
	if op.Operation == nil {
		return nil, fmt.Errorf("%s operator has no operation to apply", op.Type)
	}
	for _, in := range ins {
		source := sync.OnceValues((func() (*frame.Frame, error))(in)) // materialize each input once
		for i := 0; i < op.Frames; i++ {
			copyIn := op.copyPromise(source, i)
			out, err := op.Operation.MakePromises([]ops.Promise{copyIn}, c)
			if err != nil {
				return nil, err
			}
			if len(out) != 1 {
				return nil, fmt.Errorf("%s operator needs exactly one promise from embedded operation", op.Type)
			}
			outs = append(outs, out[0])
		}
	}
	return outs, nil
}

// Returns a promise for a private copy of the source frame with the ID of copy i
func (op *OpAnimate) copyPromise(source func() (*frame.Frame, error), i int) ops.Promise {
	return func() (*frame.Frame, error) {
		f, err := source()
		if err != nil {
			return nil, err
		}
		cp := f.Clone()
		cp.ID = f.ID*op.Frames + i
		return cp, nil
	}
}
