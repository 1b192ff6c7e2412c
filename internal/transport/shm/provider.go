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

//go:generate mockgen -destination=../../mock/shm/shm.go -package=mock_shm . Event,Mapping,Provider

import "time"

// Infinite makes Event.Wait and the receive operations block without bound.
const Infinite time.Duration = -1

// Event is a named auto-reset wake-up signal. Signal sets the event; a
// successful Wait consumes it. Events carry no payload.
type Event interface {
	// Signal sets the event, releasing at most one waiter.
	Signal() error

	// Wait blocks until the event is set or timeout elapses. It returns nil
	// when signaled and ErrTimeout on expiry. A timeout of zero polls;
	// Infinite waits forever.
	Wait(timeout time.Duration) error

	// Close releases the handle.
	Close() error
}

// Mapping is a mapped view of a named segment.
type Mapping interface {
	// Bytes returns the mapped region.
	Bytes() []byte

	// Close unmaps the region and releases the handle.
	Close() error
}

// Provider creates and opens the named OS objects behind a channel. The
// protocol never depends on how names map to OS resources.
type Provider interface {
	// CreateSegment creates the named segment with size bytes and maps it.
	// It fails with an error matching os.ErrExist if the name is taken.
	CreateSegment(name string, size int) (Mapping, error)

	// OpenSegment maps the first size bytes of an existing segment.
	OpenSegment(name string, size int) (Mapping, error)

	// CreateEvent creates a named event in the unset state. It fails with an
	// error matching os.ErrExist if the name is taken.
	CreateEvent(name string) (Event, error)

	// OpenEvent opens an existing named event.
	OpenEvent(name string) (Event, error)
}

// EventNames returns the conventional event names derived from a segment name.
func EventNames(base string) (s2c, c2s string) {
	return base + "EventS2C", base + "EventC2S"
}
