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

// Package encode turns an ordered sequence of byte frames into an animation.
// Video encoding shells out to ffmpeg; when ffmpeg is unavailable an animated
// GIF is written with the standard library encoder instead.
package encode

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/kkarra/animate/internal/frame"
)

// An ordered sequence of encoder-ready frames. Order follows the input
// frame order, not the completion order of the parallel transform stages.
type Sequence struct {
	Frames []*frame.ByteFrame
	FPS    int
}

// Converts a stack of byte-quantized frames into an encoder sequence,
// preserving stack order. Fails on the first frame that is not quantized.
func NewSequence(s *frame.Stack, fps int) (*Sequence, error) {
	if fps < 1 {
		fps = 1
	}
	seq := &Sequence{Frames: make([]*frame.ByteFrame, len(s.Frames)), FPS: fps}
	for i, f := range s.Frames {
		b, err := f.ToBytes()
		if err != nil {
			return nil, err
		}
		seq.Frames[i] = b
	}
	return seq, nil
}

// Encodes the sequence into the named output file. Files ending in .gif are
// written directly; everything else goes through ffmpeg, falling back to a
// GIF next to the requested output when ffmpeg is not installed.
func (seq *Sequence) WriteFile(fileName string, log io.Writer) error {
	if len(seq.Frames) == 0 {
		return fmt.Errorf("no frames to encode")
	}
	if filepath.Ext(fileName) == ".gif" {
		return seq.WriteGIF(fileName, log)
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		fallback := fileName[:len(fileName)-len(filepath.Ext(fileName))] + ".gif"
		fmt.Fprintf(log, "ffmpeg not found, writing %s instead\n", fallback)
		return seq.WriteGIF(fallback, log)
	}
	return seq.WriteVideo(fileName, log)
}

// Encodes the sequence with ffmpeg via numbered PNG frames in a temporary
// directory. yuv420p is required for broad player support and needs even
// dimensions, hence the pad filter.
func (seq *Sequence) WriteVideo(fileName string, log io.Writer) error {
	dir, err := os.MkdirTemp("", "animate")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	for i, b := range seq.Frames {
		if err := b.WriteFile(filepath.Join(dir, fmt.Sprintf("frame%06d.png", i))); err != nil {
			return err
		}
	}

	fmt.Fprintf(log, "Encoding %d frames at %d fps to %s\n", len(seq.Frames), seq.FPS, fileName)
	cmd := exec.Command("ffmpeg", "-y",
		"-framerate", fmt.Sprintf("%d", seq.FPS),
		"-i", filepath.Join(dir, "frame%06d.png"),
		"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
		"-pix_fmt", "yuv420p",
		fileName)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg failed: %s: %s", err.Error(), string(out))
	}
	return nil
}

// Encodes the sequence as an animated GIF with an infinite loop count.
// Each frame is palettized independently by the standard library encoder.
func (seq *Sequence) WriteGIF(fileName string, log io.Writer) error {
	delay := 100 / seq.FPS // GIF delays are in centiseconds
	if delay < 1 {
		delay = 1
	}
	anim := &gif.GIF{LoopCount: 0}
	for _, b := range seq.Frames {
		img := b.ToImage()
		pal := image.NewPaletted(img.Bounds(), palette.Plan9)
		draw.FloydSteinberg.Draw(pal, img.Bounds(), img, image.Point{})
		anim.Image = append(anim.Image, pal)
		anim.Delay = append(anim.Delay, delay)
	}

	fmt.Fprintf(log, "Encoding %d frames at %d fps to %s\n", len(seq.Frames), seq.FPS, fileName)
	w, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer w.Close()
	return gif.EncodeAll(w, anim)
}

// Re-encodes an existing video for web playback: H.264 with even dimensions
// and yuv420p pixel format, written alongside the input with a _websafe
// suffix. Requires ffmpeg.
func MakeWebsafe(fileName string, log io.Writer) (string, error) {
	ext := filepath.Ext(fileName)
	outName := fileName[:len(fileName)-len(ext)] + "_websafe" + ext

	fmt.Fprintf(log, "Re-encoding %s to websafe %s\n", fileName, outName)
	cmd := exec.Command("ffmpeg", "-y",
		"-i", fileName,
		"-vcodec", "libx264",
		"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
		"-pix_fmt", "yuv420p",
		outName)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg failed: %s: %s", err.Error(), string(out))
	}
	return outName, nil
}
