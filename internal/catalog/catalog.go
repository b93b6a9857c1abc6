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

// Package catalog loads the list of stores whose QR codes are generated in
// batch. Each store page lives at <base_url>/<slug>; a store may also point
// at story links, <base_url>/<slug>?source=story&link=<id>.
package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wso2-open-operations/common-tools/operations/qr-emitter/internal/qr"
)

// ErrInvalidCatalog is wrapped by every validation failure.
var ErrInvalidCatalog = errors.New("invalid store catalog")

// Store is one entry of the catalog.
type Store struct {
	Slug string `yaml:"slug"`
	Name string `yaml:"name"`
	// File overrides the output file name, default <slug>_qr.png.
	File string `yaml:"file"`
	// Links are story link ids. Each one gets its own image,
	// <slug>_<link>_qr.png, next to the store page image.
	Links []string `yaml:"links"`
}

// Defaults overrides encoding parameters for every store in the catalog.
// Unset fields keep the caller's values.
type Defaults struct {
	Version    *int   `yaml:"version"`
	Fit        *bool  `yaml:"fit"`
	Level      string `yaml:"error_correction"`
	BoxSize    *int   `yaml:"box_size"`
	Border     *int   `yaml:"border"`
	Fill       string `yaml:"fill_color"`
	Background string `yaml:"back_color"`
}

// Catalog is the parsed catalog file.
type Catalog struct {
	BaseURL  string   `yaml:"base_url"`
	Defaults Defaults `yaml:"defaults"`
	Stores   []Store  `yaml:"stores"`
}

// Target is one image to produce.
type Target struct {
	Slug    string
	Payload string
	File    string
}

// Load reads and validates the catalog at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the base URL, slug uniqueness and file names.
func (c *Catalog) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: base_url %q must be an absolute URL", ErrInvalidCatalog, c.BaseURL)
	}
	if len(c.Stores) == 0 {
		return fmt.Errorf("%w: no stores listed", ErrInvalidCatalog)
	}

	slugs := make(map[string]bool, len(c.Stores))
	files := make(map[string]string, len(c.Stores))
	for i, s := range c.Stores {
		if strings.TrimSpace(s.Slug) == "" {
			return fmt.Errorf("%w: store #%d has no slug", ErrInvalidCatalog, i+1)
		}
		if slugs[s.Slug] {
			return fmt.Errorf("%w: duplicate slug %q", ErrInvalidCatalog, s.Slug)
		}
		slugs[s.Slug] = true

		names := []string{s.fileName()}
		for _, link := range s.Links {
			if strings.TrimSpace(link) == "" {
				return fmt.Errorf("%w: store %q has an empty story link id", ErrInvalidCatalog, s.Slug)
			}
			names = append(names, linkFileName(s.Slug, link))
		}
		for _, file := range names {
			if file != filepath.Base(file) || file == "." || file == ".." {
				return fmt.Errorf("%w: store %q: file %q must be a plain file name", ErrInvalidCatalog, s.Slug, file)
			}
			if other, ok := files[file]; ok {
				return fmt.Errorf("%w: stores %q and %q both write %q", ErrInvalidCatalog, other, s.Slug, file)
			}
			files[file] = s.Slug
		}
	}
	return nil
}

// StoreURL is the store page URL for slug.
func (c *Catalog) StoreURL(slug string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + url.PathEscape(slug)
}

// StoryLinkURL is the story link URL for slug and link id.
func (c *Catalog) StoryLinkURL(slug, linkID string) string {
	return c.StoreURL(slug) + "?source=story&link=" + url.QueryEscape(linkID)
}

// Targets lists the images to produce, in catalog order.
func (c *Catalog) Targets() []Target {
	var targets []Target
	for _, s := range c.Stores {
		targets = append(targets, Target{
			Slug:    s.Slug,
			Payload: c.StoreURL(s.Slug),
			File:    s.fileName(),
		})
		for _, link := range s.Links {
			targets = append(targets, Target{
				Slug:    s.Slug,
				Payload: c.StoryLinkURL(s.Slug, link),
				File:    linkFileName(s.Slug, link),
			})
		}
	}
	return targets
}

// Apply layers the catalog defaults over cfg.
func (d Defaults) Apply(cfg qr.EncodingConfig) (qr.EncodingConfig, error) {
	if d.Version != nil {
		cfg.Version = *d.Version
	}
	if d.Fit != nil {
		cfg.AutoFit = *d.Fit
	}
	if d.BoxSize != nil {
		cfg.BoxSize = *d.BoxSize
	}
	if d.Border != nil {
		cfg.Border = *d.Border
	}

	var err error
	if d.Level != "" {
		if cfg.Level, err = qr.ParseLevel(d.Level); err != nil {
			return cfg, fmt.Errorf("catalog defaults: %w", err)
		}
	}
	if d.Fill != "" {
		if cfg.Fill, err = qr.ParseColor(d.Fill); err != nil {
			return cfg, fmt.Errorf("catalog defaults: %w", err)
		}
	}
	if d.Background != "" {
		if cfg.Background, err = qr.ParseColor(d.Background); err != nil {
			return cfg, fmt.Errorf("catalog defaults: %w", err)
		}
	}
	return cfg, cfg.Validate()
}

func (s Store) fileName() string {
	if s.File != "" {
		return s.File
	}
	return s.Slug + "_qr.png"
}

func linkFileName(slug, link string) string {
	return slug + "_" + link + "_qr.png"
}
