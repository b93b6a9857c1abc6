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

// Package pipeline emits the QR codes of a whole store catalog concurrently
// using errgroup, with logging and error handling per target.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wso2-open-operations/common-tools/operations/qr-emitter/internal/catalog"
	"github.com/wso2-open-operations/common-tools/operations/qr-emitter/internal/qr"
)

// Emitter writes one QR image.
type Emitter interface {
	Emit(payload, target string, cfg qr.EncodingConfig) error
}

// Result is the outcome of one target.
type Result struct {
	Slug     string
	Path     string
	Duration time.Duration
	Err      error
}

// Summary aggregates a run.
type Summary struct {
	Total   int
	Written int
	Failed  int
	Skipped int
	Results []*Result
}

// Options tunes a run.
type Options struct {
	OutDir      string
	Concurrency int
	Encoding    qr.EncodingConfig
}

// Start writes every target into opts.OutDir with at most opts.Concurrency
// emits in flight. The first failure cancels targets not yet started and is
// returned; the summary is always returned and lists every target.
func Start(ctx context.Context, em Emitter, targets []catalog.Target, opts Options, logger *zap.Logger) (*Summary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	outDir := opts.OutDir
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create output directory %s: %w", qr.ErrIO, outDir, err)
	}

	logger.Info("Starting QR batch",
		zap.Int("targets", len(targets)),
		zap.Int("concurrency", concurrency),
		zap.String("out_dir", outDir),
	)

	summary := &Summary{
		Total:   len(targets),
		Results: make([]*Result, len(targets)),
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, target := range targets {
		res := &Result{Slug: target.Slug, Path: filepath.Join(outDir, target.File)}
		summary.Results[i] = res

		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				res.Err = err
				return err
			}

			jobLogger := logger.With(
				zap.String("slug", res.Slug),
				zap.String("path", res.Path),
			)

			start := time.Now()
			err := em.Emit(target.Payload, res.Path, opts.Encoding)
			res.Duration = time.Since(start)
			if err != nil {
				res.Err = fmt.Errorf("store %s: %w", res.Slug, err)
				jobLogger.Error("QR emit failed", zap.Error(err))
				return res.Err
			}

			jobLogger.Debug("QR emitted", zap.Duration("duration", res.Duration))
			return nil
		})
	}

	err := g.Wait()
	for _, res := range summary.Results {
		switch {
		case res.Err == nil:
			summary.Written++
		case errors.Is(res.Err, context.Canceled), errors.Is(res.Err, context.DeadlineExceeded):
			summary.Skipped++
		default:
			summary.Failed++
		}
	}

	logger.Info("QR batch finished",
		zap.Int("written", summary.Written),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
	)
	return summary, err
}
