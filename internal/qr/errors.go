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

import "errors"

// Failure classes reported by the emitter. Returned errors wrap exactly one of
// these, so callers can branch with errors.Is.
var (
	// ErrCapacityExceeded means the payload does not fit the requested version
	// at the requested error correction level.
	ErrCapacityExceeded = errors.New("payload exceeds QR code capacity")

	// ErrInvalidConfig means an encoding parameter is out of range or malformed.
	ErrInvalidConfig = errors.New("invalid QR encoding configuration")

	// ErrIO means the image could not be written to the output target.
	ErrIO = errors.New("failed to write QR image")
)
