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

package adjust

import (
	"encoding/json"

	"github.com/mlnoga/resonance/internal/frame"
	"github.com/mlnoga/resonance/internal/ops"
)

// Resizes frames for previewing. A zero width or height keeps the aspect ratio.
// Takes one input, produces one output
type OpResize struct {
	ops.OpUnaryBase
	Width  int `json:"width"`
	Height int `json:"height"`
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpResizeDefault() }) } // register the operator for JSON decoding

func NewOpResizeDefault() *OpResize { return NewOpResize(0, 0) }

func NewOpResize(width, height int) *OpResize {
	op := OpResize{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "resize", Active: true}},
		Width:       width,
		Height:      height,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpResize) UnmarshalJSON(data []byte) error {
	type defaults OpResize
	def := defaults(*NewOpResizeDefault())
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*op = OpResize(def)
	op.OpUnaryBase.Apply = op.Apply
	return nil
}

func (op *OpResize) Apply(f *frame.Frame, c *ops.Context) (result *frame.Frame, err error) {
	if !op.Active || (op.Width == 0 && op.Height == 0) || (op.Width == f.Width && op.Height == f.Height) {
		return f, nil
	}
	result, err = f.Resize(op.Width, op.Height)
	if err != nil {
		return nil, err
	}
	c.Log.Info().Msgf("%d: Resized from %s to %s", f.ID, f.DimensionsToString(), result.DimensionsToString())
	return result, nil
}
