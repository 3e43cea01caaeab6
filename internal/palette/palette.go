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

package palette

import (
	"fmt"
	"sort"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Failure to resolve a named color transfer function.
type ColorMapError struct {
	Name string
}

func (e *ColorMapError) Error() string {
	return fmt.Sprintf("colormap: unknown map %q", e.Name)
}

// A color transfer function built from keypoints, blended in Lab space for
// perceptually even gradients.
type Palette struct {
	Name string
	keys []colorful.Color
	pos  []float64
}

// Returns the palette color for a scalar in [0,1]. Out-of-range inputs clamp
// to the endpoints.
func (p *Palette) At(t float64) (r, g, b float64) {
	if t <= p.pos[0] {
		c := p.keys[0]
		return c.R, c.G, c.B
	}
	if t >= p.pos[len(p.pos)-1] {
		c := p.keys[len(p.keys)-1]
		return c.R, c.G, c.B
	}
	for i := 0; i < len(p.pos)-1; i++ {
		if t <= p.pos[i+1] {
			f := (t - p.pos[i]) / (p.pos[i+1] - p.pos[i])
			c := p.keys[i].BlendLab(p.keys[i+1], f).Clamped()
			return c.R, c.G, c.B
		}
	}
	c := p.keys[len(p.keys)-1]
	return c.R, c.G, c.B
}

// The catalog of named palettes. Passed explicitly to the colorize stage
// rather than accessed as shared global state.
type Catalog struct {
	maps map[string]*Palette
}

// Resolves a map name, case insensitively.
func (c *Catalog) Get(name string) (*Palette, error) {
	if p, ok := c.maps[strings.ToLower(name)]; ok {
		return p, nil
	}
	return nil, &ColorMapError{Name: name}
}

// Names of all registered palettes in sorted order, for usage messages.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.maps))
	for n := range c.maps {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) add(name string, hexKeys ...string) {
	p := &Palette{Name: name}
	for i, h := range hexKeys {
		col, err := colorful.Hex(h)
		if err != nil {
			panic(fmt.Sprintf("error: invalid palette key %s in map %s", h, name))
		}
		p.keys = append(p.keys, col)
		p.pos = append(p.pos, float64(i)/float64(len(hexKeys)-1))
	}
	c.maps[name] = p
}

// Builds the default catalog. Keypoints for the perceptually uniform maps
// follow the matplotlib reference palettes.
func NewCatalog() *Catalog {
	c := &Catalog{maps: map[string]*Palette{}}
	c.add("gray", "#000000", "#ffffff")
	c.add("viridis", "#440154", "#46327e", "#365c8d", "#277f8e", "#1fa187", "#4ac16d", "#a0da39", "#fde725")
	c.add("magma", "#000004", "#221150", "#5f187f", "#982d80", "#d3436e", "#f8765c", "#febb81", "#fcfdbf")
	c.add("inferno", "#000004", "#1f0c48", "#550f6d", "#88226a", "#ba3655", "#e35933", "#f98c0a", "#fcffa4")
	c.add("plasma", "#0d0887", "#5302a3", "#8b0aa5", "#b83289", "#db5c68", "#f48849", "#febd2a", "#f0f921")
	return c
}
