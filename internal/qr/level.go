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
	"strings"

	"github.com/skip2/go-qrcode"
)

// Level is the QR error correction level.
type Level int

const (
	// LevelL recovers about 7% of damaged data.
	LevelL Level = iota
	// LevelM recovers about 15%.
	LevelM
	// LevelQ recovers about 25%.
	LevelQ
	// LevelH recovers about 30%.
	LevelH
)

var levelNames = map[string]Level{
	"l":        LevelL,
	"low":      LevelL,
	"m":        LevelM,
	"medium":   LevelM,
	"q":        LevelQ,
	"quartile": LevelQ,
	"h":        LevelH,
	"high":     LevelH,
}

// ParseLevel parses a level given as its letter (L, M, Q, H) or its long name.
func ParseLevel(s string) (Level, error) {
	if level, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return level, nil
	}
	return 0, fmt.Errorf("%w: unknown error correction level %q (expected L, M, Q or H)", ErrInvalidConfig, s)
}

func (l Level) String() string {
	switch l {
	case LevelL:
		return "L"
	case LevelM:
		return "M"
	case LevelQ:
		return "Q"
	case LevelH:
		return "H"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// recoveryLevel maps the level onto the encoder's naming. The library calls
// Q "High" and H "Highest".
func (l Level) recoveryLevel() (qrcode.RecoveryLevel, bool) {
	switch l {
	case LevelL:
		return qrcode.Low, true
	case LevelM:
		return qrcode.Medium, true
	case LevelQ:
		return qrcode.High, true
	case LevelH:
		return qrcode.Highest, true
	default:
		return 0, false
	}
}
