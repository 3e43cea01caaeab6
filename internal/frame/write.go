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

package frame

import (
	"bufio"
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"strings"
)

// Write a byte frame to PNG
func (b *ByteFrame) WritePNG(writer io.Writer) error {
	return png.Encode(writer, b.ToImage())
}

// Write a byte frame to JPEG with the given quality
func (b *ByteFrame) WriteJPG(writer io.Writer, quality int) error {
	return jpeg.Encode(writer, b.ToImage(), &jpeg.Options{Quality: quality})
}

// Write a byte frame to a PNG or JPEG file, chosen by the file suffix.
func (b *ByteFrame) WriteFile(fileName string) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	fnLower := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(fnLower, ".png"):
		return b.WritePNG(writer)
	case strings.HasSuffix(fnLower, ".jpg"), strings.HasSuffix(fnLower, ".jpeg"):
		return b.WriteJPG(writer, 95)
	}
	return fmt.Errorf("%s: unknown image suffix", fileName)
}
