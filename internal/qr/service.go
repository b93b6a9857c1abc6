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

// Package qr encodes text into QR code images and writes them to files.
package qr

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const logPayloadLen = 64

// Emitter renders QR codes and writes them out as raster images.
type Emitter struct {
	logger *zap.Logger
}

// NewEmitter creates an emitter. A nil logger disables logging.
func NewEmitter(logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{logger: logger}
}

// Emit encodes payload and writes the image to target, replacing any existing
// file. The format follows the target's extension. On failure nothing is left
// at target.
func (e *Emitter) Emit(payload, target string, cfg EncodingConfig) error {
	format, err := FormatFromPath(target)
	if err != nil {
		return err
	}

	img, err := e.renderFor(format, payload, cfg)
	if err != nil {
		return err
	}

	if err := writeImage(target, format, img); err != nil {
		e.logger.Error("Failed to write QR image",
			zap.String("target", target),
			zap.Error(err),
		)
		return err
	}

	e.logger.Info("QR image written",
		zap.String("target", target),
		zap.String("format", string(format)),
		zap.Int("width", img.Bounds().Dx()),
	)
	return nil
}

// Encode renders payload and writes it to w in the given format.
func (e *Emitter) Encode(w io.Writer, format Format, payload string, cfg EncodingConfig) error {
	enc, err := format.encoder()
	if err != nil {
		return err
	}

	img, err := e.renderFor(format, payload, cfg)
	if err != nil {
		return err
	}

	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrIO, format, err)
	}
	return nil
}

// Render encodes payload and rasterizes the symbol without touching the filesystem.
func (e *Emitter) Render(payload string, cfg EncodingConfig) (image.Image, error) {
	img, err := e.render(payload, cfg)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// renderFor renders for a specific output format, flattening transparency
// onto white when the format cannot store it.
func (e *Emitter) renderFor(format Format, payload string, cfg EncodingConfig) (*image.Paletted, error) {
	img, err := e.render(payload, cfg)
	if err != nil {
		return nil, err
	}
	if format.hasAlpha() {
		return img, nil
	}
	return flatten(img, format)
}

func (e *Emitter) render(payload string, cfg EncodingConfig) (*image.Paletted, error) {
	code, err := e.encode(payload, cfg)
	if err != nil {
		return nil, err
	}

	code.DisableBorder = true
	bitmap := code.Bitmap()

	if side := cfg.imageSide(len(bitmap)); side > MaxImageSide {
		return nil, fmt.Errorf("%w: image would be %dpx wide, maximum is %dpx", ErrInvalidConfig, side, MaxImageSide)
	}

	e.logger.Debug("Rasterizing QR symbol",
		zap.Int("version", code.VersionNumber),
		zap.Int("modules", len(bitmap)),
		zap.Int("box_size", cfg.BoxSize),
		zap.Int("border", cfg.Border),
	)
	return rasterize(bitmap, cfg), nil
}

// Preview renders the symbol as half-block text for a terminal. A zero
// border drops the quiet zone; any other border shows the standard four
// module quiet zone.
func (e *Emitter) Preview(payload string, cfg EncodingConfig) (string, error) {
	code, err := e.encode(payload, cfg)
	if err != nil {
		return "", err
	}
	code.DisableBorder = cfg.Border == 0
	return code.ToSmallString(false), nil
}

func (e *Emitter) encode(payload string, cfg EncodingConfig) (*qrcode.QRCode, error) {
	if payload == "" {
		return nil, fmt.Errorf("%w: payload cannot be empty", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, _ := cfg.Level.recoveryLevel()

	e.logger.Debug("Encoding QR code",
		zap.String("payload", truncateString(payload, logPayloadLen)),
		zap.Int("payload_length", len(payload)),
		zap.Stringer("level", cfg.Level),
		zap.Int("version", cfg.Version),
		zap.Bool("auto_fit", cfg.AutoFit),
	)

	if !cfg.AutoFit {
		return e.forcedVersion(payload, cfg.Version, level)
	}

	code, err := qrcode.New(payload, level)
	if err != nil {
		return nil, fmt.Errorf("%w: %d bytes at level %v: %w", ErrCapacityExceeded, len(payload), cfg.Level, err)
	}
	if code.VersionNumber < cfg.Version {
		// Smallest fitting version is below the requested floor.
		return e.forcedVersion(payload, cfg.Version, level)
	}
	return code, nil
}

func (e *Emitter) forcedVersion(payload string, version int, level qrcode.RecoveryLevel) (*qrcode.QRCode, error) {
	code, err := qrcode.NewWithForcedVersion(payload, version, level)
	if err != nil {
		e.logger.Warn("Payload does not fit fixed QR version",
			zap.Int("version", version),
			zap.Int("payload_length", len(payload)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %d bytes in version %d: %w", ErrCapacityExceeded, len(payload), version, err)
	}
	return code, nil
}

// writeImage encodes into a temporary file next to target and renames it into
// place, so a failed write never leaves a partial image at target. An
// existing target keeps its permissions.
func writeImage(target string, format Format, img image.Image) (err error) {
	enc, err := format.encoder()
	if err != nil {
		return err
	}

	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(target); statErr == nil && info.Mode().IsRegular() {
		mode = info.Mode().Perm()
	}

	dir, base := filepath.Split(target)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temporary file in %s: %w", ErrIO, dir, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = enc.Encode(tmp, img); err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrIO, format, err)
	}
	if err = tmp.Chmod(mode); err != nil {
		return fmt.Errorf("%w: chmod %s: %w", ErrIO, tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrIO, tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// truncateString truncates a string to maxLen runes for logging.
func truncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + "..."
}
