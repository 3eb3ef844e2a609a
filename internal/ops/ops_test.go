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

package ops

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/mlnoga/resonance/internal/frame"
	"github.com/mlnoga/resonance/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Inverts all samples. Registered for the tests of this package only
type opInvert struct {
	OpUnaryBase
}

func init() { SetOperatorFactory(func() Operator { return newOpInvert() }) }

func newOpInvert() *opInvert {
	op := opInvert{OpUnaryBase: OpUnaryBase{OpBase: OpBase{Type: "testInvert", Active: true}}}
	op.OpUnaryBase.Apply = op.Apply
	return &op
}

func (op *opInvert) UnmarshalJSON(b []byte) error {
	type alias opInvert
	if err := json.Unmarshal(b, (*alias)(op)); err != nil {
		return err
	}
	op.OpUnaryBase.Apply = op.Apply
	return nil
}

func (op *opInvert) Apply(f *frame.Frame, c *Context) (*frame.Frame, error) {
	f.ApplyScaleOffset(-1, 255)
	return f, nil
}

func testContext() *Context {
	return NewContext(logging.Nop())
}

func framePromise(id int, value uint8) Promise {
	return func() (*frame.Frame, error) {
		f, err := frame.New(2, 2, 1)
		if err != nil {
			return nil, err
		}
		f.ID = id
		for i := range f.Data {
			f.Data[i] = value
		}
		return f, nil
	}
}

func TestMaterializeAllKeepsOrder(t *testing.T) {
	ins := []Promise{framePromise(0, 1), framePromise(1, 2), framePromise(2, 3)}
	outs, err := MaterializeAll(ins, 2, false)
	require.NoError(t, err)
	require.Len(t, outs, 3)
	for i, f := range outs {
		assert.Equal(t, i, f.ID)
		assert.Equal(t, uint8(i+1), f.Data[0])
	}
}

func TestMaterializeAllJoinsErrors(t *testing.T) {
	errA, errB := errors.New("a"), errors.New("b")
	ins := []Promise{
		func() (*frame.Frame, error) { return nil, errA },
		framePromise(1, 0),
		func() (*frame.Frame, error) { return nil, errB },
	}
	outs, err := MaterializeAll(ins, 1, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a")
	assert.Contains(t, err.Error(), "b")
	require.Len(t, outs, 1)
	assert.Equal(t, 1, outs[0].ID)
}

func TestMaterializeAllForget(t *testing.T) {
	outs, err := MaterializeAll([]Promise{framePromise(0, 0)}, 4, true)
	require.NoError(t, err)
	assert.Empty(t, outs)
}

func TestRemoveNils(t *testing.T) {
	a, b := &frame.Frame{ID: 1}, &frame.Frame{ID: 2}
	assert.Equal(t, []*frame.Frame{a, b}, RemoveNils([]*frame.Frame{nil, a, nil, b}))
}

func TestIsPathAllowed(t *testing.T) {
	for p, want := range map[string]bool{
		"in.png":        true,
		"frames/%d.png": true,
		"/etc/passwd":   false,
		"../secret.png": false,
		"a/../../b.png": false,
	} {
		assert.Equal(t, want, isPathAllowed(p), p)
	}
}

func TestSaveFileName(t *testing.T) {
	assert.Equal(t, "out7.png", NewOpSave("out%d.png").FileName(7))
	assert.Equal(t, "out.png", NewOpSave("out.png").FileName(7))
}

func TestSequenceAndForEachRoundTrip(t *testing.T) {
	seq := NewOpSequence(
		NewOpLoadMany([]string{"*.png"}),
		NewOpForEach(newOpInvert()),
		NewOpSave("out%d.png"),
	)
	data, err := json.Marshal(seq)
	require.NoError(t, err)

	op, err := LoadPipeline(data)
	require.NoError(t, err)
	decoded, ok := op.(*OpSequence)
	require.True(t, ok)
	require.Len(t, decoded.Steps, 3)
	assert.Equal(t, "loadMany", decoded.Steps[0].GetType())
	forEach, ok := decoded.Steps[1].(*OpForEach)
	require.True(t, ok)
	assert.Equal(t, "testInvert", forEach.Operation.GetType())
	save, ok := decoded.Steps[2].(*OpSave)
	require.True(t, ok)
	assert.Equal(t, "out%d.png", save.FilePattern)
	assert.NotNil(t, save.OpUnaryBase.Apply)
}

func TestUnknownOperatorType(t *testing.T) {
	_, err := LoadPipeline([]byte(`{"type":"nope"}`))
	assert.ErrorContains(t, err, "unknown operator type")
}

func TestSequenceAppliesSteps(t *testing.T) {
	seq := NewOpSequence(NewOpForEach(newOpInvert()), NewOpForEach(newOpInvert()), newOpInvert())
	outs, err := seq.MakePromises([]Promise{framePromise(0, 10), framePromise(1, 20)}, testContext())
	require.NoError(t, err)
	frames, err := MaterializeAll(outs, 2, false)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, uint8(245), frames[0].Data[0])
	assert.Equal(t, uint8(235), frames[1].Data[0])
}

func TestInactiveUnaryPassesThrough(t *testing.T) {
	op := newOpInvert()
	op.Active = false
	f, err := op.MakePromise(framePromise(0, 10), testContext())()
	require.NoError(t, err)
	assert.Equal(t, uint8(10), f.Data[0])
}

func TestLoadAndSave(t *testing.T) {
	t.Chdir(t.TempDir())
	c := testContext()
	in, err := framePromise(3, 99)()
	require.NoError(t, err)
	require.NoError(t, in.WriteFile("in.png"))

	seq := NewOpSequence(NewOpLoadMany([]string{"*.png"}), NewOpSave("out%d.png"))
	outs, err := seq.MakePromises(nil, c)
	require.NoError(t, err)
	_, err = MaterializeAll(outs, 1, true)
	require.NoError(t, err)

	back, err := frame.NewFromFile("out0.png", 0)
	require.NoError(t, err)
	assert.Equal(t, in.Data, back.Data)
}

func TestLoadRejectsAbsolutePath(t *testing.T) {
	_, err := NewOpLoad(0, "/tmp/x.png").MakePromises(nil, testContext())
	assert.Error(t, err)
}

func TestFramesInFlight(t *testing.T) {
	c := &Context{MaxThreads: 8, WorkMemoryMB: 30}
	assert.Equal(t, 8, c.FramesInFlight(64, 64, 3))
	assert.Equal(t, 2, c.FramesInFlight(2048, 2048, 1), "12 MiB per frame in 30 MiB")
	assert.Equal(t, 1, c.FramesInFlight(8192, 8192, 3))
	c.WorkMemoryMB = 0
	assert.Equal(t, 8, c.FramesInFlight(8192, 8192, 3))
}
