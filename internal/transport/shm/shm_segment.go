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
	"fmt"
	"math"
	"sync/atomic"
	"unsafe"
)

// Memory layout constants
const (
	// Segment header size. The header is a fixed record of six u32 words so
	// that 32-bit and 64-bit processes agree on every offset.
	HeaderSize = 24

	// Required alignment of the mapped region base.
	HeaderAlign = 8

	// Default per-direction buffer capacity (16KB)
	DefaultBufferSize = 16 * 1024

	// Largest buffer size whose total segment size still fits the u32 header
	// field and a 32-bit address space.
	MaxBufferSize = (math.MaxInt32 - HeaderSize) / 2
)

// Direction identifies one of the two unidirectional channels in a segment.
type Direction uint8

const (
	ServerToClient Direction = iota // written by the server, read by the client
	ClientToServer                  // written by the client, read by the server
)

func (d Direction) String() string {
	switch d {
	case ServerToClient:
		return "s2c"
	case ClientToServer:
		return "c2s"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// Header is the segment header placed at offset 0 of the shared region.
type Header struct {
	bufferSize uint32 // 0x00: capacity of each data buffer
	flagServer uint32 // 0x04: state of the server->client direction
	flagClient uint32 // 0x08: state of the client->server direction
	dataLenS2C uint32 // 0x0C: length of the last server->client message
	dataLenC2S uint32 // 0x10: length of the last client->server message
	pad        uint32 // 0x14: padding to 8-byte alignment
}

// NewHeader returns a header for the given buffer size with both flags Idle
// and both lengths zero.
func NewHeader(bufferSize uint32) Header {
	return Header{bufferSize: bufferSize}
}

// BufferSize returns the per-direction buffer capacity.
func (h *Header) BufferSize() uint32 {
	return atomic.LoadUint32(&h.bufferSize)
}

// flag returns the address of the state word for d.
func (h *Header) flag(d Direction) *uint32 {
	if d == ServerToClient {
		return &h.flagServer
	}
	return &h.flagClient
}

// dataLen returns the address of the length word for d.
func (h *Header) dataLen(d Direction) *uint32 {
	if d == ServerToClient {
		return &h.dataLenS2C
	}
	return &h.dataLenC2S
}

// Layout calculation helpers

// TotalSize returns the size of a segment holding two buffers of bufferSize bytes.
func TotalSize(bufferSize int) int {
	return HeaderSize + 2*bufferSize
}

// OffsetServerToClient returns the offset of the server->client data buffer.
func OffsetServerToClient() int {
	return HeaderSize
}

// OffsetClientToServer returns the offset of the client->server data buffer.
func OffsetClientToServer(bufferSize int) int {
	return HeaderSize + bufferSize
}

// bufferOffset returns the offset of the data buffer for d.
func bufferOffset(d Direction, bufferSize int) int {
	if d == ServerToClient {
		return OffsetServerToClient()
	}
	return OffsetClientToServer(bufferSize)
}

// ValidateBufferSize reports whether n can be used as a segment buffer size.
func ValidateBufferSize(n int) error {
	if n <= 0 || n > MaxBufferSize {
		return fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidBufferSize, n, MaxBufferSize)
	}
	return nil
}

// ValidateHeader validates a header read from an existing segment.
func ValidateHeader(h *Header) error {
	if err := ValidateBufferSize(int(h.BufferSize())); err != nil {
		return fmt.Errorf("segment header not initialized: %w", err)
	}
	for _, d := range []Direction{ServerToClient, ClientToServer} {
		if s := State(atomic.LoadUint32(h.flag(d))); !s.Valid() {
			return fmt.Errorf("%s flag: %w", d, &UnknownStateError{Value: uint32(s)})
		}
	}
	return nil
}

// View is a bounds-checked typed view over a mapped segment. The header
// pointer and both data slices are computed once from the layout.
type View struct {
	mem        []byte
	hdr        *Header
	bufferSize int
	s2c        []byte
	c2s        []byte
}

// NewView returns a view over mem for a segment of the given buffer size.
// mem must hold at least TotalSize(bufferSize) bytes and start on an 8-byte
// boundary.
func NewView(mem []byte, bufferSize int) (*View, error) {
	if err := ValidateBufferSize(bufferSize); err != nil {
		return nil, err
	}
	if want := TotalSize(bufferSize); len(mem) < want {
		return nil, fmt.Errorf("mapped region too small: %d bytes, want %d", len(mem), want)
	}
	if uintptr(unsafe.Pointer(&mem[0]))%HeaderAlign != 0 {
		return nil, fmt.Errorf("mapped region at %p is not %d-byte aligned", &mem[0], HeaderAlign)
	}

	s2c := OffsetServerToClient()
	c2s := OffsetClientToServer(bufferSize)
	return &View{
		mem:        mem,
		hdr:        (*Header)(unsafe.Pointer(&mem[0])),
		bufferSize: bufferSize,
		s2c:        mem[s2c : s2c+bufferSize : s2c+bufferSize],
		c2s:        mem[c2s : c2s+bufferSize : c2s+bufferSize],
	}, nil
}

// HeaderOf returns the header at the start of mem without checking the data
// regions. It is used to discover the buffer size of an existing segment.
func HeaderOf(mem []byte) (*Header, error) {
	if len(mem) < HeaderSize {
		return nil, fmt.Errorf("mapped region too small for header: %d bytes", len(mem))
	}
	if uintptr(unsafe.Pointer(&mem[0]))%HeaderAlign != 0 {
		return nil, fmt.Errorf("mapped region at %p is not %d-byte aligned", &mem[0], HeaderAlign)
	}
	return (*Header)(unsafe.Pointer(&mem[0])), nil
}

// Init zeroes both data buffers and writes a fresh header. Only the peer that
// creates the segment calls Init. The buffer size is stored last: a peer that
// reads a non-zero size sees an initialized segment.
func (v *View) Init() {
	clear(v.s2c)
	clear(v.c2s)

	h := NewHeader(uint32(v.bufferSize))
	atomic.StoreUint32(&v.hdr.bufferSize, 0)
	atomic.StoreUint32(&v.hdr.flagServer, h.flagServer)
	atomic.StoreUint32(&v.hdr.flagClient, h.flagClient)
	atomic.StoreUint32(&v.hdr.dataLenS2C, h.dataLenS2C)
	atomic.StoreUint32(&v.hdr.dataLenC2S, h.dataLenC2S)
	v.hdr.pad = 0
	atomic.StoreUint32(&v.hdr.bufferSize, h.bufferSize)
}

// Header returns the segment header.
func (v *View) Header() *Header {
	return v.hdr
}

// BufferSize returns the per-direction buffer capacity.
func (v *View) BufferSize() int {
	return v.bufferSize
}

// Buffer returns the data region for d.
func (v *View) Buffer(d Direction) []byte {
	if d == ServerToClient {
		return v.s2c
	}
	return v.c2s
}

// LoadState loads the flag for d with acquire ordering.
func (v *View) LoadState(d Direction) State {
	return State(atomic.LoadUint32(v.hdr.flag(d)))
}

// StoreState stores the flag for d with release ordering. Every write to the
// buffer and length for d must precede the call.
func (v *View) StoreState(d Direction, s State) {
	atomic.StoreUint32(v.hdr.flag(d), uint32(s))
}

// transitionState moves the flag for d from old to next, failing if another
// party changed it first.
func (v *View) transitionState(d Direction, old, next State) bool {
	return atomic.CompareAndSwapUint32(v.hdr.flag(d), uint32(old), uint32(next))
}

// DataLen returns the recorded message length for d.
func (v *View) DataLen(d Direction) int {
	return int(atomic.LoadUint32(v.hdr.dataLen(d)))
}

// setDataLen records the message length for d.
func (v *View) setDataLen(d Direction, n int) {
	atomic.StoreUint32(v.hdr.dataLen(d), uint32(n))
}
