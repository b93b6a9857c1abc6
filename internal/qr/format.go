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
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is a raster output format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatGIF  Format = "gif"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// ImageEncoder writes an image in one format.
type ImageEncoder interface {
	Encode(w io.Writer, img image.Image) error
}

type pngEncoder struct{}

func (pngEncoder) Encode(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	return enc.Encode(w, img)
}

type jpegEncoder struct{}

func (jpegEncoder) Encode(w io.Writer, img image.Image) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
}

type gifEncoder struct{}

func (gifEncoder) Encode(w io.Writer, img image.Image) error {
	return gif.Encode(w, img, nil)
}

type bmpEncoder struct{}

func (bmpEncoder) Encode(w io.Writer, img image.Image) error {
	return bmp.Encode(w, img)
}

type tiffEncoder struct{}

func (tiffEncoder) Encode(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
}

var encoders = map[Format]ImageEncoder{
	FormatPNG:  pngEncoder{},
	FormatJPEG: jpegEncoder{},
	FormatGIF:  gifEncoder{},
	FormatBMP:  bmpEncoder{},
	FormatTIFF: tiffEncoder{},
}

// hasAlpha reports whether the format keeps transparency for paletted images.
func (f Format) hasAlpha() bool {
	return f == FormatPNG || f == FormatGIF
}

var extensions = map[string]Format{
	".png":  FormatPNG,
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".gif":  FormatGIF,
	".bmp":  FormatBMP,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
}

// FormatFromPath picks the output format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	if ext == "" {
		return "", fmt.Errorf("%w: output %q has no file extension", ErrInvalidConfig, path)
	}
	return "", fmt.Errorf("%w: unsupported image extension %q", ErrInvalidConfig, ext)
}

func (f Format) encoder() (ImageEncoder, error) {
	if enc, ok := encoders[f]; ok {
		return enc, nil
	}
	return nil, fmt.Errorf("%w: unsupported image format %q", ErrInvalidConfig, string(f))
}
