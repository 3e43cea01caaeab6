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

package encode

import (
	"image/gif"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/kkarra/animate/internal/frame"
)

func testStack(t *testing.T, n int) *frame.Stack {
	t.Helper()
	fs := make([]*frame.Frame, n)
	for i := range fs {
		f := frame.NewFrame(i, 8, 8, 1, nil)
		f.Bitpix = 8
		for j := range f.Data {
			f.Data[j] = float32(i * 50)
		}
		fs[i] = f
	}
	s, err := frame.NewStack(fs)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSequencePreservesOrder(t *testing.T) {
	s := testStack(t, 4)
	seq, err := NewSequence(s, 10)
	if err != nil {
		t.Fatal(err)
	}
	for i, b := range seq.Frames {
		if b.ID != i {
			t.Errorf("frame at index %d has id %d", i, b.ID)
		}
		if b.Pix[0] != uint8(i*50) {
			t.Errorf("frame %d pixel got %d expect %d", i, b.Pix[0], i*50)
		}
	}
}

func TestSequenceRejectsUnquantizedFrames(t *testing.T) {
	f := frame.NewFrame(0, 4, 4, 1, nil) // bitpix -32
	s, err := frame.NewStack([]*frame.Frame{f})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewSequence(s, 10); err == nil {
		t.Error("expected error for unquantized frame")
	}
}

func TestWriteGIF(t *testing.T) {
	s := testStack(t, 3)
	seq, err := NewSequence(s, 10)
	if err != nil {
		t.Fatal(err)
	}

	fileName := filepath.Join(t.TempDir(), "out.gif")
	if err := seq.WriteGIF(fileName, io.Discard); err != nil {
		t.Fatal(err)
	}

	r, err := os.Open(fileName)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	anim, err := gif.DecodeAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(anim.Image) != 3 {
		t.Errorf("decoded %d frames expect 3", len(anim.Image))
	}
	if anim.Delay[0] != 10 { // 100/10 fps in centiseconds
		t.Errorf("delay got %d expect 10", anim.Delay[0])
	}
}
