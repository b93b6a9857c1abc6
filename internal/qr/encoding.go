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
)

const (
	// MinVersion and MaxVersion bound the QR symbol version.
	MinVersion = 1
	MaxVersion = 40

	// MaxImageSide caps the rendered image edge in pixels.
	MaxImageSide = 16384
)

// EncodingConfig holds the parameters for one QR image.
type EncodingConfig struct {
	// Version is the symbol version. With AutoFit it is the smallest version
	// that may be chosen; without it the symbol always uses exactly this version.
	Version int
	AutoFit bool

	Level Level

	// BoxSize is the edge of one module in pixels.
	BoxSize int
	// Border is the quiet zone width in modules.
	Border int

	Fill       color.Color
	Background color.Color
}

// DefaultConfig returns version 1 with auto-fit, level L, 10px modules, a
// 4 module quiet zone, black on white.
func DefaultConfig() EncodingConfig {
	return EncodingConfig{
		Version:    1,
		AutoFit:    true,
		Level:      LevelL,
		BoxSize:    10,
		Border:     4,
		Fill:       color.Black,
		Background: color.White,
	}
}

// Validate reports the first out-of-range parameter as ErrInvalidConfig.
func (c EncodingConfig) Validate() error {
	if c.Version < MinVersion || c.Version > MaxVersion {
		return fmt.Errorf("%w: version must be between %d and %d, got %d", ErrInvalidConfig, MinVersion, MaxVersion, c.Version)
	}
	if _, ok := c.Level.recoveryLevel(); !ok {
		return fmt.Errorf("%w: unknown error correction level %v", ErrInvalidConfig, c.Level)
	}
	if c.BoxSize <= 0 {
		return fmt.Errorf("%w: box size must be > 0, got %d", ErrInvalidConfig, c.BoxSize)
	}
	if c.Border < 0 {
		return fmt.Errorf("%w: border must be >= 0, got %d", ErrInvalidConfig, c.Border)
	}
	// Bounded here so imageSide cannot overflow.
	if c.BoxSize > MaxImageSide {
		return fmt.Errorf("%w: box size must be <= %d, got %d", ErrInvalidConfig, MaxImageSide, c.BoxSize)
	}
	if c.Border > MaxImageSide {
		return fmt.Errorf("%w: border must be <= %d, got %d", ErrInvalidConfig, MaxImageSide, c.Border)
	}
	if c.Fill == nil || c.Background == nil {
		return fmt.Errorf("%w: fill and background colors are required", ErrInvalidConfig)
	}
	if sameColor(c.Fill, c.Background) {
		return fmt.Errorf("%w: fill and background colors must differ", ErrInvalidConfig)
	}
	return nil
}

// imageSide is the rendered edge length for a symbol of the given module count.
func (c EncodingConfig) imageSide(modules int) int {
	return (modules + 2*c.Border) * c.BoxSize
}
