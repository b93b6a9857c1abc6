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

// Package main is the entry point for the QR code emitter.
// This CLI encodes a store URL into a QR code and saves it as an image file.
// Without arguments it writes the pasta store code to pasta_qr.png; the first
// argument overrides the output file.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/wso2-open-operations/common-tools/operations/qr-emitter/internal/logger"
	"github.com/wso2-open-operations/common-tools/operations/qr-emitter/internal/qr"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	err := newRootCmd().Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "qrgen: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps the emitter's failure classes onto distinct exit statuses.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, qr.ErrInvalidConfig):
		return 2
	case errors.Is(err, qr.ErrCapacityExceeded):
		return 3
	case errors.Is(err, qr.ErrIO):
		return 4
	default:
		return 1
	}
}
