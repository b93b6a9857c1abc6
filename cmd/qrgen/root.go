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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/wso2-open-operations/common-tools/operations/qr-emitter/internal/catalog"
	"github.com/wso2-open-operations/common-tools/operations/qr-emitter/internal/config"
	"github.com/wso2-open-operations/common-tools/operations/qr-emitter/internal/logger"
	"github.com/wso2-open-operations/common-tools/operations/qr-emitter/internal/pipeline"
	"github.com/wso2-open-operations/common-tools/operations/qr-emitter/internal/qr"
)

// app carries state shared by the commands of one invocation.
type app struct {
	log *zap.Logger
	cfg *config.Config

	preset  string
	url     string
	preview bool

	encoding encodingFlags
}

// encodingFlags mirror qr.EncodingConfig. They are applied only when set on
// the command line so environment values stay in effect otherwise.
type encodingFlags struct {
	version    int
	fit        bool
	level      string
	boxSize    int
	border     int
	fill       string
	background string
}

func (f *encodingFlags) register(fs *pflag.FlagSet) {
	def := qr.DefaultConfig()
	fs.IntVar(&f.version, "version", def.Version, "QR version 1-40 (minimum version when --fit is on)")
	fs.BoolVar(&f.fit, "fit", def.AutoFit, "grow the version until the payload fits")
	fs.StringVar(&f.level, "level", def.Level.String(), "error correction level: L, M, Q or H")
	fs.IntVar(&f.boxSize, "box-size", def.BoxSize, "pixels per module")
	fs.IntVar(&f.border, "border", def.Border, "quiet zone width in modules")
	fs.StringVar(&f.fill, "fill", "black", "module color (name, #rgb, #rrggbb or #rrggbbaa)")
	fs.StringVar(&f.background, "background", "white", "background color (name, hex or transparent)")
}

// apply overrides cfg with the flags the user set.
func (f *encodingFlags) apply(fs *pflag.FlagSet, cfg qr.EncodingConfig) (qr.EncodingConfig, error) {
	var err error
	if fs.Changed("version") {
		cfg.Version = f.version
	}
	if fs.Changed("fit") {
		cfg.AutoFit = f.fit
	}
	if fs.Changed("level") {
		if cfg.Level, err = qr.ParseLevel(f.level); err != nil {
			return cfg, fmt.Errorf("--level: %w", err)
		}
	}
	if fs.Changed("box-size") {
		cfg.BoxSize = f.boxSize
	}
	if fs.Changed("border") {
		cfg.Border = f.border
	}
	if fs.Changed("fill") {
		if cfg.Fill, err = qr.ParseColor(f.fill); err != nil {
			return cfg, fmt.Errorf("--fill: %w", err)
		}
	}
	if fs.Changed("background") {
		if cfg.Background, err = qr.ParseColor(f.background); err != nil {
			return cfg, fmt.Errorf("--background: %w", err)
		}
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "qrgen [output_filename]",
		Short: "Encode a store URL into a QR code image",
		Long: `qrgen encodes a story link URL into a QR code and saves it as an image file.

With no arguments the pasta store page is written to pasta_qr.png. The first
argument replaces the output file; its extension selects the image format
(.png, .jpg, .gif, .bmp, .tif).`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEmit(cmd, args)
		},
	}

	cmd.Flags().StringVar(&a.preset, "preset", config.DefaultPreset, "named payload: pasta or reply")
	cmd.Flags().StringVar(&a.url, "url", "", "payload to encode instead of the preset URL")
	cmd.Flags().BoolVar(&a.preview, "preview", false, "also print the symbol to the terminal")
	a.encoding.register(cmd.PersistentFlags())

	cmd.AddCommand(newStoresCmd(a), newVersionCmd())
	return cmd
}

func (a *app) setup() error {
	if err := config.LoadDotEnv(logger.Logger); err != nil {
		return err
	}
	a.log = logger.InitLogger()

	cfg, err := config.LoadConfig(a.log)
	if err != nil {
		return fmt.Errorf("%w: %w", qr.ErrInvalidConfig, err)
	}
	a.cfg = cfg
	return nil
}

func (a *app) runEmit(cmd *cobra.Command, args []string) error {
	fs := cmd.Flags()
	if fs.Changed("preset") {
		if err := a.cfg.ApplyPreset(a.preset); err != nil {
			return fmt.Errorf("%w: %w", qr.ErrInvalidConfig, err)
		}
	}
	if fs.Changed("url") {
		a.cfg.URL = a.url
	}

	enc, err := a.encoding.apply(fs, a.cfg.Encoding)
	if err != nil {
		return err
	}

	output := a.cfg.Output
	if len(args) == 1 {
		output = args[0]
	}

	em := qr.NewEmitter(a.log)
	if a.preview {
		art, err := em.Preview(a.cfg.URL, enc)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), art)
	}

	if err := em.Emit(a.cfg.URL, output, enc); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "QR code saved to %s\n", output)
	return nil
}

func newStoresCmd(a *app) *cobra.Command {
	var (
		catalogPath string
		outDir      string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "stores",
		Short: "Write a QR code for every store and story link in a catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fs := cmd.Flags()
			if fs.Changed("catalog") {
				a.cfg.CatalogPath = catalogPath
			}
			if fs.Changed("out-dir") {
				a.cfg.OutDir = outDir
			}
			if fs.Changed("concurrency") {
				a.cfg.Concurrency = concurrency
			}

			cat, err := catalog.Load(a.cfg.CatalogPath)
			if err != nil {
				return fmt.Errorf("%w: %w", qr.ErrInvalidConfig, err)
			}
			enc, err := cat.Defaults.Apply(a.cfg.Encoding)
			if err != nil {
				return err
			}
			if enc, err = a.encoding.apply(fs, enc); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
			defer cancel()

			summary, err := pipeline.Start(ctx, qr.NewEmitter(a.log), cat.Targets(), pipeline.Options{
				OutDir:      a.cfg.OutDir,
				Concurrency: a.cfg.Concurrency,
				Encoding:    enc,
			}, a.log)
			if summary != nil {
				for _, res := range summary.Results {
					if res.Err == nil {
						fmt.Fprintf(cmd.OutOrStdout(), "QR code saved to %s\n", res.Path)
					}
				}
				a.log.Info("QR batch finished",
					zap.Int("total", summary.Total),
					zap.Int("written", summary.Written),
					zap.Int("failed", summary.Failed),
					zap.Int("skipped", summary.Skipped),
				)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "stores.yaml", "store catalog file")
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "directory for the generated images")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "images written in parallel")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		// Skip configuration loading; a bad environment must not hide the version.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "qrgen %s (commit %s, built %s)\n", Version, GitCommit, BuildTime)
		},
	}
}
