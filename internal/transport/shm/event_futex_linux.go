//go:build linux

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
	"sync/atomic"
	"time"
	"unsafe"
)

// eventSize is the size of the shared object backing a futex event.
const eventSize = 64

// futexEvent is an auto-reset event whose state word lives in a shared
// mapping: 0 is unset, 1 is set.
type futexEvent struct {
	m    Mapping
	word *uint32
}

func newFutexEvent(m Mapping) (*futexEvent, error) {
	b := m.Bytes()
	if len(b) < 4 {
		return nil, fmt.Errorf("event mapping too small: %d bytes", len(b))
	}
	word := (*uint32)(unsafe.Pointer(&b[0]))
	if uintptr(unsafe.Pointer(word))%4 != 0 {
		return nil, fmt.Errorf("event word at %p is not aligned", word)
	}
	return &futexEvent{m: m, word: word}, nil
}

// reset puts the event in the unset state.
func (e *futexEvent) reset() {
	atomic.StoreUint32(e.word, 0)
}

// Signal sets the event and wakes one waiter.
func (e *futexEvent) Signal() error {
	atomic.StoreUint32(e.word, 1)
	if _, err := futexWake(e.word, 1); err != nil {
		return fmt.Errorf("signal event: %w", err)
	}
	return nil
}

// Wait consumes the event, waiting for at most timeout for it to be set.
func (e *futexEvent) Wait(timeout time.Duration) error {
	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		if atomic.CompareAndSwapUint32(e.word, 1, 0) {
			return nil
		}

		remaining := Infinite
		if timeout >= 0 {
			if remaining = time.Until(deadline); remaining <= 0 {
				return ErrTimeout
			}
		}

		// Spurious wakeups and timeouts both loop back to the CAS above.
		if err := futexWait(e.word, 0, remaining); err != nil && !errors.Is(err, errFutexTimeout) {
			return err
		}
	}
}

// Close releases the event mapping.
func (e *futexEvent) Close() error {
	return e.m.Close()
}
