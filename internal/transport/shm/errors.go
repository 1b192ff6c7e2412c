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

package shm

import (
	"errors"
	"fmt"
)

var (
	// ErrCreate wraps failures to create or open a segment, view or event.
	ErrCreate = errors.New("shm: create failed")

	// ErrWait wraps failures of the underlying wait call other than timeout.
	ErrWait = errors.New("shm: event wait failed")

	// ErrTimeout is returned when no new message is available: the wait
	// timed out, or the flag shows nothing new since the last read.
	ErrTimeout = errors.New("shm: timeout")

	// ErrInvalidText is returned by ReceiveString for payloads that are not
	// valid UTF-8. The message has already been consumed.
	ErrInvalidText = errors.New("shm: message is not valid UTF-8")

	// ErrUnknownState matches every *UnknownStateError.
	ErrUnknownState = errors.New("shm: unknown state")

	// ErrChannelClosed is returned by Send after the direction was closed.
	ErrChannelClosed = errors.New("shm: channel closed")

	// ErrInvalidBufferSize reports a buffer size outside the supported range.
	ErrInvalidBufferSize = errors.New("shm: invalid buffer size")

	// ErrUnsupported is returned by the system provider on platforms without
	// named shared memory support.
	ErrUnsupported = errors.New("shm: not supported on this platform")
)

// UnknownStateError reports a flag value outside the defined states, which
// indicates memory corruption or a version mismatch between peers.
type UnknownStateError struct {
	Value uint32
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("shm: unknown state %d", e.Value)
}

// Is makes errors.Is(err, ErrUnknownState) succeed.
func (e *UnknownStateError) Is(target error) bool {
	return target == ErrUnknownState
}
