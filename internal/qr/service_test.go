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
	"bytes"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/makiuchi-d/gozxing"
	zxingqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

const pastaURL = "https://story-link-silk.vercel.app/pasta"

func decodeImage(t *testing.T, img image.Image) string {
	t.Helper()

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	require.NoError(t, err)

	result, err := zxingqr.NewQRCodeReader().Decode(bmp, nil)
	require.NoError(t, err)
	return result.GetText()
}

func decodeFile(t *testing.T, path string) string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, _, err := image.Decode(f)
	require.NoError(t, err)
	return decodeImage(t, img)
}

func TestEmitRoundTrip(t *testing.T) {
	payloads := []string{
		pastaURL,
		"https://reply-link.vercel.app/",
		"hello",
		"https://story-link-silk.vercel.app/ryusenso?source=story&link=a7b1c2",
		strings.Repeat("0123456789", 30),
	}

	em := NewEmitter(nil)
	for _, payload := range payloads {
		target := filepath.Join(t.TempDir(), "code.png")
		require.NoError(t, em.Emit(payload, target, DefaultConfig()))
		assert.Equal(t, payload, decodeFile(t, target))
	}
}

func TestEmitFormats(t *testing.T) {
	em := NewEmitter(nil)
	for _, name := range []string{"code.png", "code.gif", "code.bmp", "code.tiff", "CODE.JPG"} {
		t.Run(name, func(t *testing.T) {
			target := filepath.Join(t.TempDir(), name)
			require.NoError(t, em.Emit(pastaURL, target, DefaultConfig()))
			assert.Equal(t, pastaURL, decodeFile(t, target))
		})
	}
}

func TestEmitFormatsTransparentBackground(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Background = color.NRGBA{}

	em := NewEmitter(nil)
	for _, name := range []string{"code.png", "code.gif", "code.bmp", "code.tiff", "code.jpg"} {
		t.Run(name, func(t *testing.T) {
			target := filepath.Join(t.TempDir(), name)
			require.NoError(t, em.Emit(pastaURL, target, cfg))
			assert.Equal(t, pastaURL, decodeFile(t, target))
		})
	}
}

func TestEmitFlattensTransparencyOntoWhite(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Background = color.NRGBA{}

	for _, name := range []string{"code.bmp", "code.tiff"} {
		t.Run(name, func(t *testing.T) {
			target := filepath.Join(t.TempDir(), name)
			require.NoError(t, NewEmitter(nil).Emit(pastaURL, target, cfg))

			f, err := os.Open(target)
			require.NoError(t, err)
			defer f.Close()
			img, _, err := image.Decode(f)
			require.NoError(t, err)

			r, g, b, a := img.At(0, 0).RGBA()
			assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff, 0xffff}, []uint32{r, g, b, a})
		})
	}
}

func TestEmitKeepsTargetPermissions(t *testing.T) {
	target := filepath.Join(t.TempDir(), "code.png")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o600))
	require.NoError(t, os.Chmod(target, 0o600))

	require.NoError(t, NewEmitter(nil).Emit(pastaURL, target, DefaultConfig()))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	assert.Equal(t, pastaURL, decodeFile(t, target))
}

func TestEmitNewTargetPermissions(t *testing.T) {
	target := filepath.Join(t.TempDir(), "code.png")
	require.NoError(t, NewEmitter(nil).Emit(pastaURL, target, DefaultConfig()))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestEmitIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.png")
	second := filepath.Join(dir, "second.png")

	em := NewEmitter(nil)
	require.NoError(t, em.Emit(pastaURL, first, DefaultConfig()))
	require.NoError(t, em.Emit(pastaURL, second, DefaultConfig()))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(a, b), "identical inputs produced different files")
}

func TestEmitOverwritesTarget(t *testing.T) {
	target := filepath.Join(t.TempDir(), "code.png")

	em := NewEmitter(nil)
	require.NoError(t, em.Emit("first payload", target, DefaultConfig()))
	require.NoError(t, em.Emit("second payload", target, DefaultConfig()))

	assert.Equal(t, "second payload", decodeFile(t, target))

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files left behind")
}

func TestEmitCapacityExceeded(t *testing.T) {
	target := filepath.Join(t.TempDir(), "code.png")

	cfg := DefaultConfig()
	cfg.AutoFit = false
	cfg.Version = 1
	cfg.Level = LevelH

	err := NewEmitter(nil).Emit(pastaURL, target, cfg)
	require.ErrorIs(t, err, ErrCapacityExceeded)
	assert.NotErrorIs(t, err, ErrIO)

	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr), "file written despite capacity error")
}

func TestEmitCapacityExceededAutoFit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "code.png")

	err := NewEmitter(nil).Emit(strings.Repeat("x", 4000), target, DefaultConfig())
	require.ErrorIs(t, err, ErrCapacityExceeded)

	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr))
}

func TestEmitKeepsExistingFileOnFailure(t *testing.T) {
	target := filepath.Join(t.TempDir(), "code.png")

	em := NewEmitter(nil)
	require.NoError(t, em.Emit(pastaURL, target, DefaultConfig()))

	cfg := DefaultConfig()
	cfg.AutoFit = false
	cfg.Level = LevelH
	require.ErrorIs(t, em.Emit(strings.Repeat("y", 100), target, cfg), ErrCapacityExceeded)

	assert.Equal(t, pastaURL, decodeFile(t, target))
}

func TestEmitIOError(t *testing.T) {
	target := filepath.Join(t.TempDir(), "missing", "code.png")

	err := NewEmitter(nil).Emit(pastaURL, target, DefaultConfig())
	require.ErrorIs(t, err, ErrIO)

	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr))
}

func TestEmitTargetIsDirectory(t *testing.T) {
	target := filepath.Join(t.TempDir(), "taken.png")
	require.NoError(t, os.Mkdir(target, 0o755))

	err := NewEmitter(nil).Emit(pastaURL, target, DefaultConfig())
	require.ErrorIs(t, err, ErrIO)

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestEmitInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		target  string
		mutate  func(*EncodingConfig)
	}{
		{name: "empty payload", payload: "", target: "code.png", mutate: func(*EncodingConfig) {}},
		{name: "zero box size", payload: pastaURL, target: "code.png", mutate: func(c *EncodingConfig) { c.BoxSize = 0 }},
		{name: "negative border", payload: pastaURL, target: "code.png", mutate: func(c *EncodingConfig) { c.Border = -1 }},
		{name: "version zero", payload: pastaURL, target: "code.png", mutate: func(c *EncodingConfig) { c.Version = 0 }},
		{name: "version 41", payload: pastaURL, target: "code.png", mutate: func(c *EncodingConfig) { c.Version = 41 }},
		{name: "unknown level", payload: pastaURL, target: "code.png", mutate: func(c *EncodingConfig) { c.Level = Level(9) }},
		{name: "nil fill", payload: pastaURL, target: "code.png", mutate: func(c *EncodingConfig) { c.Fill = nil }},
		{name: "same colors", payload: pastaURL, target: "code.png", mutate: func(c *EncodingConfig) { c.Fill = color.White }},
		{name: "huge image", payload: pastaURL, target: "code.png", mutate: func(c *EncodingConfig) { c.BoxSize = 1000 }},
		{name: "box size over limit", payload: pastaURL, target: "code.png", mutate: func(c *EncodingConfig) { c.BoxSize = MaxImageSide + 1 }},
		{name: "overflowing box size", payload: pastaURL, target: "code.png", mutate: func(c *EncodingConfig) { c.BoxSize = math.MaxInt }},
		{name: "overflowing border", payload: pastaURL, target: "code.png", mutate: func(c *EncodingConfig) { c.Border = math.MaxInt / 4 }},
		{name: "invisible fill in jpeg", payload: pastaURL, target: "code.jpg", mutate: func(c *EncodingConfig) { c.Fill = color.NRGBA{} }},
		{name: "unknown extension", payload: pastaURL, target: "code.webp", mutate: func(*EncodingConfig) {}},
		{name: "no extension", payload: pastaURL, target: "code", mutate: func(*EncodingConfig) {}},
	}

	em := NewEmitter(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			target := filepath.Join(t.TempDir(), tt.target)

			err := em.Emit(tt.payload, target, cfg)
			require.ErrorIs(t, err, ErrInvalidConfig)

			_, statErr := os.Stat(target)
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestRenderDimensions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BoxSize = 3
	cfg.Border = 2

	img, err := NewEmitter(nil).Render(pastaURL, cfg)
	require.NoError(t, err)

	// 40 bytes at level L lands on version 3, 29 modules per side.
	assert.Equal(t, (29+2*2)*3, img.Bounds().Dx())
	assert.Equal(t, img.Bounds().Dx(), img.Bounds().Dy())

	// The quiet zone is background and the top-left finder corner is fill.
	assert.Equal(t, color.Gray16{Y: 0xffff}, color.Gray16Model.Convert(img.At(0, 0)))
	assert.Equal(t, color.Gray16{Y: 0}, color.Gray16Model.Convert(img.At(2*3, 2*3)))
	assert.Equal(t, pastaURL, decodeImage(t, img))
}

func TestRenderVersionFloor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Version = 5
	cfg.BoxSize = 1
	cfg.Border = 0

	img, err := NewEmitter(nil).Render("hi", cfg)
	require.NoError(t, err)
	// Version 5 is 17 + 4*5 modules.
	assert.Equal(t, 37, img.Bounds().Dx())
}

func TestRenderFixedVersion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoFit = false
	cfg.Version = 10
	cfg.BoxSize = 1
	cfg.Border = 0

	img, err := NewEmitter(nil).Render(pastaURL, cfg)
	require.NoError(t, err)
	assert.Equal(t, 17+4*10, img.Bounds().Dx())
}

func TestRenderColors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fill = color.NRGBA{R: 0x1a, G: 0x23, B: 0x7e, A: 0xff}
	cfg.Background = color.NRGBA{}

	img, err := NewEmitter(nil).Render(pastaURL, cfg)
	require.NoError(t, err)

	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a, "quiet zone should be transparent")

	r, g, b, _ := img.At(cfg.Border*cfg.BoxSize, cfg.Border*cfg.BoxSize).RGBA()
	assert.Equal(t, []uint32{0x1a1a, 0x2323, 0x7e7e}, []uint32{r, g, b})
}

func TestEncodeToWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewEmitter(nil).Encode(&buf, FormatPNG, pastaURL, DefaultConfig()))

	img, format, err := image.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, pastaURL, decodeImage(t, img))

	err = NewEmitter(nil).Encode(&buf, Format("webp"), pastaURL, DefaultConfig())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestPreview(t *testing.T) {
	out, err := NewEmitter(nil).Preview(pastaURL, DefaultConfig())
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Greater(t, strings.Count(out, "\n"), 10)

	_, err = NewEmitter(nil).Preview("", DefaultConfig())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestPreviewFollowsBorder(t *testing.T) {
	em := NewEmitter(nil)

	framed, err := em.Preview(pastaURL, DefaultConfig())
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Border = 0
	bare, err := em.Preview(pastaURL, cfg)
	require.NoError(t, err)

	// Version 3 is 29 modules: 15 half-block rows bare, 19 with 4 modules each side.
	assert.Equal(t, 15, strings.Count(bare, "\n"))
	assert.Equal(t, 19, strings.Count(framed, "\n"))
}

func TestFlatten(t *testing.T) {
	img := image.NewPaletted(image.Rect(0, 0, 1, 1), color.Palette{
		color.NRGBA{},
		color.NRGBA{R: 0xff, A: 0x80},
	})

	flat, err := flatten(img, FormatJPEG)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA64{R: 0xffff, G: 0xffff, B: 0xffff, A: 0xffff}, flat.Palette[0])

	r, g, b, a := flat.Palette[1].RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), a)
	assert.Equal(t, g, b)
	assert.Less(t, g, uint32(0xffff))

	img.Palette[1] = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x00}
	_, err = flatten(img, FormatBMP)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abc...", truncateString("abcdef", 3))
	assert.Equal(t, "파스...", truncateString("파스타집", 2))
}
