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
// KIND, either express or implied. See the License for the
// specific language governing permissions and limitations
// under the License.

package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestGetLogLevelFromEnv(t *testing.T) {
	tests := map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
	}
	for value, want := range tests {
		t.Setenv("LOG_LEVEL", value)
		assert.Equal(t, want, getLogLevelFromEnv(), value)
	}
}

func TestNew(t *testing.T) {
	for _, env := range []string{"prod", "dev", ""} {
		l, err := New(env, zapcore.WarnLevel)
		require.NoError(t, err, env)
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel), env)
		assert.True(t, l.Core().Enabled(zapcore.ErrorLevel), env)
	}
}

func TestInitLoggerReturnsSameLogger(t *testing.T) {
	first := InitLogger()
	second := InitLogger()
	assert.Same(t, first, second)
	Sync()
}
