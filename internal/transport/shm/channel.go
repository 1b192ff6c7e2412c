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
	"io"
	"time"
	"unicode/utf8"
)

// Channel is one direction of a segment together with the event that
// announces changes to it. A process holds a Channel per direction: the one
// it writes and the one it reads.
//
// Channel is not safe for concurrent writers or concurrent readers; there is
// one of each per direction.
type Channel struct {
	view *View
	dir  Direction
	ev   Event
}

// NewChannel binds direction d of v to ev.
func NewChannel(v *View, d Direction, ev Event) *Channel {
	return &Channel{view: v, dir: d, ev: ev}
}

// Direction returns the direction this channel carries.
func (c *Channel) Direction() Direction {
	return c.dir
}

// BufferSize returns the largest message the channel can carry.
func (c *Channel) BufferSize() int {
	return c.view.BufferSize()
}

// Send publishes p as the pending message and signals the reader. Payloads
// longer than the buffer are truncated; the returned count is the number of
// bytes the reader will see. A pending unread message is overwritten.
//
// Send returns ErrChannelClosed once the direction has been closed.
func (c *Channel) Send(p []byte) (int, error) {
	if c.view.LoadState(c.dir) == StateClosed {
		return 0, ErrChannelClosed
	}

	buf := c.view.Buffer(c.dir)
	clear(buf)
	n := copy(buf, p)
	c.view.setDataLen(c.dir, n)

	// Publish: the buffer and length above become visible with the flag.
	c.view.StoreState(c.dir, StateDataReady)

	if err := c.ev.Signal(); err != nil {
		return n, fmt.Errorf("signal %s: %w", c.dir, err)
	}
	return n, nil
}

// SendClose marks the direction as closed and signals the reader. The data
// buffer is left as is.
func (c *Channel) SendClose() error {
	c.view.StoreState(c.dir, StateClosed)
	if err := c.ev.Signal(); err != nil {
		return fmt.Errorf("signal %s close: %w", c.dir, err)
	}
	return nil
}

// Receive waits up to timeout for the writer's signal and returns a copy of
// the pending message. It returns io.EOF once the direction is closed and
// ErrTimeout when the wait expires or nothing new was published.
func (c *Channel) Receive(timeout time.Duration) ([]byte, error) {
	// A consumed close signal must still report the close.
	if c.view.LoadState(c.dir) == StateClosed {
		return nil, io.EOF
	}

	if err := c.ev.Wait(timeout); err != nil {
		if errors.Is(err, ErrTimeout) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrWait, c.dir, err)
	}

	switch s := c.view.LoadState(c.dir); s {
	case StateDataReady:
		n := min(c.view.DataLen(c.dir), c.view.BufferSize())
		msg := make([]byte, n)
		copy(msg, c.view.Buffer(c.dir)[:n])

		// A close that raced in keeps its flag.
		c.view.transitionState(c.dir, StateDataReady, StateConsumed)
		return msg, nil

	case StateClosed:
		return nil, io.EOF

	case StateIdle, StateConsumed:
		return nil, ErrTimeout

	default:
		return nil, &UnknownStateError{Value: uint32(s)}
	}
}

// ReceiveString is Receive for text payloads. A message that is not valid
// UTF-8 is consumed and reported as ErrInvalidText.
func (c *Channel) ReceiveString(timeout time.Duration) (string, error) {
	b, err := c.Receive(timeout)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidText
	}
	return string(b), nil
}

// DebugState returns a snapshot of the direction.
func (c *Channel) DebugState() ChannelState {
	return c.view.Snapshot(c.dir)
}
