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
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/lthibault/log"
	"go.uber.org/multierr"

	"github.com/markrussinovich/shmchan/internal/transport/shm"
)

// Role identifies which side of a channel an Endpoint plays.
type Role uint8

const (
	Server Role = iota // creates the segment, writes server->client
	Client             // opens the segment, writes client->server
)

func (r Role) String() string {
	switch r {
	case Server:
		return "server"
	case Client:
		return "client"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// ChannelState is a snapshot of one direction, as returned by DebugState.
type ChannelState = shm.ChannelState

// Endpoint is one side of a duplex shared memory channel. It owns a mapped
// view of the segment and handles to both events.
//
// Send and Receive may be called from different goroutines, since they use
// different directions. Concurrent calls to Send, or to Receive, must be
// serialized by the caller. Close must not race with either; after Close
// they return ErrClosed.
type Endpoint struct {
	role    Role
	name    string
	log     log.Logger
	metrics Metrics

	seg        shm.Mapping
	view       *shm.View
	bufferSize int
	s2c, c2s   shm.Event
	tx, rx     *shm.Channel

	once sync.Once
}

// NewServer creates the named segment and both events, and initializes the
// header. The server writes the server->client direction.
func NewServer(opts ...Option) (*Endpoint, error) {
	cfg := newConfig(opts)
	if err := shm.ValidateBufferSize(cfg.bufferSize); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreate, err)
	}

	e := newEndpoint(Server, cfg)
	if err := e.create(cfg.provider, cfg.bufferSize); err != nil {
		e.release()
		return nil, fmt.Errorf("%w: server %q: %w", ErrCreate, cfg.name, err)
	}

	e.log.Debug("server created")
	return e, nil
}

// NewClient opens an existing segment and its events. The buffer size is read
// from the segment header. The client writes the client->server direction.
func NewClient(opts ...Option) (*Endpoint, error) {
	cfg := newConfig(opts)

	e := newEndpoint(Client, cfg)
	if err := e.open(cfg.provider); err != nil {
		e.release()
		return nil, fmt.Errorf("%w: client %q: %w", ErrCreate, cfg.name, err)
	}

	e.log.Debug("client opened")
	return e, nil
}

// OpenOrCreate creates a Server or opens a Client, depending on role.
func OpenOrCreate(role Role, opts ...Option) (*Endpoint, error) {
	switch role {
	case Server:
		return NewServer(opts...)
	case Client:
		return NewClient(opts...)
	default:
		return nil, fmt.Errorf("%w: invalid role %s", ErrCreate, role)
	}
}

// WaitForServer polls until a server has initialized the named segment, then
// opens a Client. It returns ctx.Err() if ctx expires first.
func WaitForServer(ctx context.Context, opts ...Option) (*Endpoint, error) {
	cfg := newConfig(opts)
	if _, err := shm.WaitForSegment(ctx, cfg.provider, cfg.name); err != nil {
		return nil, fmt.Errorf("wait for server %q: %w", cfg.name, err)
	}

	return NewClient(opts...)
}

func newEndpoint(role Role, cfg *config) *Endpoint {
	return &Endpoint{
		role:    role,
		name:    cfg.name,
		metrics: cfg.metrics,
		log: cfg.log.With(log.F{
			"role": role,
			"name": cfg.name,
		}),
	}
}

func (e *Endpoint) create(p Provider, bufferSize int) (err error) {
	if e.seg, err = p.CreateSegment(e.name, shm.TotalSize(bufferSize)); err != nil {
		return err
	}
	if e.view, err = shm.NewView(e.seg.Bytes(), bufferSize); err != nil {
		return err
	}

	// Events exist before the header is published, so a client that sees an
	// initialized header can open them.
	s2c, c2s := shm.EventNames(e.name)
	if e.s2c, err = p.CreateEvent(s2c); err != nil {
		return err
	}
	if e.c2s, err = p.CreateEvent(c2s); err != nil {
		return err
	}

	e.view.Init()
	e.bind(shm.ServerToClient, shm.ClientToServer)
	return nil
}

func (e *Endpoint) open(p Provider) (err error) {
	bufferSize, err := shm.ProbeSegment(p, e.name)
	if err != nil {
		return err
	}
	if e.seg, err = p.OpenSegment(e.name, shm.TotalSize(bufferSize)); err != nil {
		return err
	}
	if e.view, err = shm.NewView(e.seg.Bytes(), bufferSize); err != nil {
		return err
	}

	s2c, c2s := shm.EventNames(e.name)
	if e.s2c, err = p.OpenEvent(s2c); err != nil {
		return err
	}
	if e.c2s, err = p.OpenEvent(c2s); err != nil {
		return err
	}

	e.bind(shm.ClientToServer, shm.ServerToClient)
	return nil
}

func (e *Endpoint) bind(tx, rx shm.Direction) {
	e.tx = shm.NewChannel(e.view, tx, e.event(tx))
	e.rx = shm.NewChannel(e.view, rx, e.event(rx))
	e.bufferSize = e.view.BufferSize()
	e.log = e.log.WithField("buffer_size", e.bufferSize)
}

func (e *Endpoint) event(d shm.Direction) shm.Event {
	if d == shm.ServerToClient {
		return e.s2c
	}
	return e.c2s
}

// Role returns the side this endpoint plays.
func (e *Endpoint) Role() Role {
	return e.role
}

// Name returns the segment name.
func (e *Endpoint) Name() string {
	return e.name
}

// BufferSize returns the per-direction buffer capacity, which is also the
// largest message that is delivered without truncation.
func (e *Endpoint) BufferSize() int {
	return e.bufferSize
}

// Send delivers p to the peer, truncating it to BufferSize bytes. A message
// the peer has not read yet is replaced. After SendClose, Send returns
// ErrChannelClosed.
func (e *Endpoint) Send(p []byte) error {
	if e.tx == nil {
		return ErrClosed
	}

	n, err := e.tx.Send(p)
	if err != nil {
		e.metrics.Incr(MetricError)
		return err
	}

	e.metrics.Incr(MetricSent)
	if n < len(p) {
		e.metrics.Incr(MetricSentTruncated)
		e.log.With(log.F{
			"direction": e.tx.Direction(),
			"size":      len(p),
			"sent":      n,
		}).Debug("message truncated")
	}
	return nil
}

// SendString is Send for text.
func (e *Endpoint) SendString(s string) error {
	return e.Send([]byte(s))
}

// Receive waits up to timeout for a text message from the peer. Pass Infinite
// to wait without bound or zero to poll. It returns io.EOF once the peer has
// closed its direction, ErrTimeout if nothing new arrived, and ErrInvalidText
// for a message that is not valid UTF-8 (the message is discarded).
func (e *Endpoint) Receive(timeout time.Duration) (string, error) {
	if e.rx == nil {
		return "", ErrClosed
	}

	start := time.Now()
	s, err := e.rx.ReceiveString(timeout)
	e.observe(len(s), err, time.Since(start))
	return s, err
}

// ReceiveBytes is Receive for binary payloads.
func (e *Endpoint) ReceiveBytes(timeout time.Duration) ([]byte, error) {
	if e.rx == nil {
		return nil, ErrClosed
	}

	start := time.Now()
	b, err := e.rx.Receive(timeout)
	e.observe(len(b), err, time.Since(start))
	return b, err
}

func (e *Endpoint) observe(n int, err error, d time.Duration) {
	e.metrics.Duration(MetricReceiveWait, d)

	switch {
	case err == nil:
		e.metrics.Incr(MetricReceived)
		e.metrics.Count(MetricReceivedBytes, n)

	case errors.Is(err, io.EOF):
		e.metrics.Incr(MetricExit)
		e.log.WithField("direction", e.rx.Direction()).Debug("peer closed")

	case errors.Is(err, ErrTimeout):
		e.metrics.Incr(MetricTimeout)

	default:
		e.metrics.Incr(MetricError)
		e.log.WithError(err).
			WithField("direction", e.rx.Direction()).
			Debug("receive failed")
	}
}

// SendClose tells the peer that no more messages follow. The peer's Receive
// returns io.EOF from then on.
func (e *Endpoint) SendClose() error {
	if e.tx == nil {
		return ErrClosed
	}

	if err := e.tx.SendClose(); err != nil {
		e.metrics.Incr(MetricError)
		return err
	}

	e.metrics.Incr(MetricClosed)
	e.log.WithField("direction", e.tx.Direction()).Debug("sent close")
	return nil
}

// DebugState returns snapshots of the direction this endpoint writes and the
// one it reads. After Close both snapshots are zero.
func (e *Endpoint) DebugState() (tx, rx ChannelState) {
	if e.tx == nil || e.rx == nil {
		return ChannelState{}, ChannelState{}
	}
	return e.tx.DebugState(), e.rx.DebugState()
}

// Diagnose reports whether both directions hold unread messages, along with
// a readable dump of the segment state.
func (e *Endpoint) Diagnose() (bool, string) {
	if e.view == nil {
		return false, "endpoint closed"
	}
	return shm.Diagnose(e.view)
}

// Close unmaps the segment and closes both event handles. A server also
// removes the names it created where the platform requires it. Failures are
// logged rather than returned, so Close always returns nil. Calling Close
// more than once is safe; other operations return ErrClosed afterwards.
func (e *Endpoint) Close() error {
	e.once.Do(e.release)
	return nil
}

func (e *Endpoint) release() {
	// Nothing may touch the mapping once it is gone.
	e.tx, e.rx, e.view = nil, nil, nil

	var err error
	for _, c := range []io.Closer{e.s2c, e.c2s, e.seg} {
		if c != nil {
			err = multierr.Append(err, c.Close())
		}
	}

	if err != nil {
		e.log.WithError(err).Warn("failed to release shared memory resources")
	}
}
