/*
 *
 * Copyright 2025 gRPC authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package shmchan

import (
	"errors"

	"github.com/markrussinovich/shmchan/internal/transport/shm"
)

// Errors returned by endpoints. Test them with errors.Is.
var (
	ErrCreate            = shm.ErrCreate
	ErrWait              = shm.ErrWait
	ErrTimeout           = shm.ErrTimeout
	ErrInvalidText       = shm.ErrInvalidText
	ErrUnknownState      = shm.ErrUnknownState
	ErrChannelClosed     = shm.ErrChannelClosed
	ErrInvalidBufferSize = shm.ErrInvalidBufferSize
	ErrUnsupported       = shm.ErrUnsupported

	// ErrClosed is returned by operations on an endpoint after Close.
	ErrClosed = errors.New("shmchan: endpoint closed")
)

// UnknownStateError carries a flag value outside the defined states.
type UnknownStateError = shm.UnknownStateError
