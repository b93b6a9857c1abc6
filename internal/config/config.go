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

// Package config provides configuration management for the QR emitter.
// It loads configuration from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/wso2-open-operations/common-tools/operations/qr-emitter/internal/qr"
)

const (
	PresetKey  = "QR_PRESET"
	URLKey     = "QR_URL"
	OutputKey  = "QR_OUTPUT"
	VersionKey = "QR_VERSION"
	FitKey     = "QR_FIT"
	LevelKey   = "QR_ERROR_CORRECTION"
	BoxSizeKey = "QR_BOX_SIZE"
	BorderKey  = "QR_BORDER"
	FillKey    = "QR_FILL_COLOR"
	BackKey    = "QR_BACK_COLOR"

	CatalogKey     = "QR_CATALOG"
	OutDirKey      = "QR_OUT_DIR"
	ConcurrencyKey = "QR_CONCURRENCY"
	TimeoutKey     = "QR_TIMEOUT"

	DefaultPreset = "pasta"
)

// Preset is a named payload with its default output file.
type Preset struct {
	Name   string
	URL    string
	Output string
}

var presets = map[string]Preset{
	"pasta": {Name: "pasta", URL: "https://story-link-silk.vercel.app/pasta", Output: "pasta_qr.png"},
	"reply": {Name: "reply", URL: "https://reply-link.vercel.app/", Output: "reply_site_qr.png"},
}

// LookupPreset returns the preset registered under name.
func LookupPreset(name string) (Preset, error) {
	p, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q (available: pasta, reply)", name)
	}
	return p, nil
}

// Config holds application configuration loaded from environment variables.
type Config struct {
	Preset   Preset
	URL      string
	Output   string
	Encoding qr.EncodingConfig

	CatalogPath string
	OutDir      string
	Concurrency int
	Timeout     time.Duration
}

// LoadDotEnv loads variables from the given .env files (".env" when none are
// given) without overriding variables already set. A missing file is not an error.
func LoadDotEnv(logger *zap.Logger, files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			logger.Debug("No .env file found, using environment variables", zap.String("file", f))
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
		logger.Debug(".env file loaded successfully", zap.String("file", f))
	}
	return nil
}

// LoadConfig reads configuration from environment variables and returns a Config instance.
// Malformed numbers fall back to defaults with a warning; malformed levels,
// colors and presets are errors.
func LoadConfig(logger *zap.Logger) (*Config, error) {
	preset, err := LookupPreset(getEnv(PresetKey, DefaultPreset))
	if err != nil {
		return nil, err
	}

	enc := qr.DefaultConfig()
	enc.Version = parseInt(logger, VersionKey, enc.Version)
	enc.AutoFit = parseBool(getEnv(FitKey, "true"))
	enc.BoxSize = parseInt(logger, BoxSizeKey, enc.BoxSize)
	enc.Border = parseInt(logger, BorderKey, enc.Border)

	if enc.Level, err = qr.ParseLevel(getEnv(LevelKey, "L")); err != nil {
		return nil, fmt.Errorf("%s: %w", LevelKey, err)
	}
	if enc.Fill, err = qr.ParseColor(getEnv(FillKey, "black")); err != nil {
		return nil, fmt.Errorf("%s: %w", FillKey, err)
	}
	if enc.Background, err = qr.ParseColor(getEnv(BackKey, "white")); err != nil {
		return nil, fmt.Errorf("%s: %w", BackKey, err)
	}

	cfg := &Config{
		Preset:      preset,
		URL:         getEnv(URLKey, preset.URL),
		Output:      getEnv(OutputKey, preset.Output),
		Encoding:    enc,
		CatalogPath: getEnv(CatalogKey, "stores.yaml"),
		OutDir:      getEnv(OutDirKey, "."),
		Concurrency: parseInt(logger, ConcurrencyKey, 4),
		Timeout:     parseDuration(logger, TimeoutKey, time.Minute),
	}

	logger.Debug("Configuration loaded",
		zap.String("preset", cfg.Preset.Name),
		zap.String("output", cfg.Output),
		zap.Int("version", enc.Version),
		zap.Bool("auto_fit", enc.AutoFit),
		zap.Stringer("level", enc.Level),
		zap.Int("box_size", enc.BoxSize),
		zap.Int("border", enc.Border),
	)
	return cfg, nil
}

// ApplyPreset switches to another preset, replacing URL and Output.
func (c *Config) ApplyPreset(name string) error {
	p, err := LookupPreset(name)
	if err != nil {
		return err
	}
	c.Preset = p
	c.URL = p.URL
	c.Output = p.Output
	return nil
}

// getEnv retrieves a string environment variable or returns fallback if not set.
func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

// parseInt reads an integer environment variable. If it is not a number it
// logs a warning and returns fallback.
func parseInt(logger *zap.Logger, key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn(fmt.Sprintf("Invalid %s, using default", key),
			zap.String("value", v),
			zap.Int("default", fallback),
			zap.Error(err))
		return fallback
	}
	return i
}

// parseDuration reads a positive duration environment variable, falling back
// with a warning when it cannot be parsed.
func parseDuration(logger *zap.Logger, key string, fallback time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warn(fmt.Sprintf("Invalid %s, using default", key),
			zap.String("value", v),
			zap.Duration("default", fallback),
			zap.Error(err))
		return fallback
	}
	if d <= 0 {
		return fallback
	}
	return d
}

// parseBool converts a string into a boolean.
func parseBool(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return v == "true" || v == "1" || v == "yes"
}
