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
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseColor accepts an SVG color keyword ("black", "white", "navy", ...),
// "transparent", or a hex value in #rgb, #rrggbb or #rrggbbaa form.
func ParseColor(s string) (color.Color, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return nil, fmt.Errorf("%w: empty color", ErrInvalidConfig)
	}

	if v == "transparent" || v == "none" {
		return color.NRGBA{}, nil
	}

	if strings.HasPrefix(v, "#") {
		c, err := parseHex(v[1:])
		if err != nil {
			return nil, fmt.Errorf("%w: color %q: %w", ErrInvalidConfig, s, err)
		}
		return c, nil
	}

	if c, ok := colornames.Map[v]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: unknown color %q", ErrInvalidConfig, s)
}

func parseHex(hex string) (color.NRGBA, error) {
	switch len(hex) {
	case 3:
		// #abc is shorthand for #aabbcc
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		fallthrough
	case 6:
		hex += "ff"
	case 8:
	default:
		return color.NRGBA{}, fmt.Errorf("hex color must have 3, 6 or 8 digits, got %d", len(hex))
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, err
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

func sameColor(a, b color.Color) bool {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return ar == br && ag == bg && ab == bb && aa == ba
}
