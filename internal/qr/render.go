// Copyright (c) 2026 WSO2 LLC. (https://www.wso2.com).
//
// WSO2 LLC. licenses this file to you under the Apache License,
// Version 2.0 (the "License"); you may not use this file except
// in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package qr

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// rasterize paints a borderless module bitmap as boxSize blocks, surrounded
// by Border modules of background. Index 0 of the palette is the background.
func rasterize(bitmap [][]bool, cfg EncodingConfig) *image.Paletted {
	palette := color.Palette{cfg.Background, cfg.Fill}

	// One pixel per module first, then scaled up by BoxSize.
	n := len(bitmap) + 2*cfg.Border
	modules := image.NewPaletted(image.Rect(0, 0, n, n), palette)
	for y, row := range bitmap {
		for x, dark := range row {
			if dark {
				modules.SetColorIndex(x+cfg.Border, y+cfg.Border, 1)
			}
		}
	}

	side := cfg.imageSide(len(bitmap))
	img := image.NewPaletted(image.Rect(0, 0, side, side), palette)
	draw.NearestNeighbor.Scale(img, img.Bounds(), modules, modules.Bounds(), draw.Src, nil)
	return img
}

// flatten composites the palette over opaque white for formats that drop alpha.
func flatten(img *image.Paletted, format Format) (*image.Paletted, error) {
	flat := make(color.Palette, len(img.Palette))
	for i, c := range img.Palette {
		r, g, b, a := c.RGBA()
		flat[i] = color.RGBA64{
			R: uint16(r + 0xffff - a),
			G: uint16(g + 0xffff - a),
			B: uint16(b + 0xffff - a),
			A: 0xffff,
		}
	}
	if sameColor(flat[0], flat[1]) {
		return nil, fmt.Errorf("%w: fill and background are indistinguishable in %s, which has no transparency", ErrInvalidConfig, format)
	}
	return &image.Paletted{Pix: img.Pix, Stride: img.Stride, Rect: img.Rect, Palette: flat}, nil
}
