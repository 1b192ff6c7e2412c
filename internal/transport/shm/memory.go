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
	"os"
	"sync"
	"time"
	"unsafe"
)

// MemoryProvider keeps named segments and events in process memory. Both
// endpoints must share the same provider. Names disappear when the creator
// closes its handle.
type MemoryProvider struct {
	mu       sync.Mutex
	segments map[string][]byte
	events   map[string]*memEvent
}

// NewMemoryProvider returns an empty in-process provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		segments: make(map[string][]byte),
		events:   make(map[string]*memEvent),
	}
}

// CreateSegment allocates an 8-byte aligned region.
func (p *MemoryProvider) CreateSegment(name string, size int) (Mapping, error) {
	if size <= 0 {
		return nil, fmt.Errorf("segment %q: invalid size %d", name, size)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.segments[name]; ok {
		return nil, fmt.Errorf("segment %q: %w", name, os.ErrExist)
	}

	words := make([]uint64, (size+7)/8)
	mem := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), size)
	p.segments[name] = mem
	return &memMapping{mem: mem, release: func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.segments, name)
	}}, nil
}

// OpenSegment returns the first size bytes of an existing segment.
func (p *MemoryProvider) OpenSegment(name string, size int) (Mapping, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	mem, ok := p.segments[name]
	if !ok {
		return nil, fmt.Errorf("segment %q: %w", name, os.ErrNotExist)
	}
	if len(mem) < size {
		return nil, fmt.Errorf("segment %q too small: %d bytes, want %d", name, len(mem), size)
	}
	return &memMapping{mem: mem[:size:size]}, nil
}

// CreateEvent creates a named event in the unset state.
func (p *MemoryProvider) CreateEvent(name string) (Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.events[name]; ok {
		return nil, fmt.Errorf("event %q: %w", name, os.ErrExist)
	}

	ev := &memEvent{ch: make(chan struct{}, 1)}
	p.events[name] = ev
	return &memEventHandle{memEvent: ev, release: func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.events, name)
	}}, nil
}

// OpenEvent opens an existing named event.
func (p *MemoryProvider) OpenEvent(name string) (Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ev, ok := p.events[name]
	if !ok {
		return nil, fmt.Errorf("event %q: %w", name, os.ErrNotExist)
	}
	return &memEventHandle{memEvent: ev}, nil
}

type memMapping struct {
	mem     []byte
	release func()
	once    sync.Once
}

func (m *memMapping) Bytes() []byte { return m.mem }

func (m *memMapping) Close() error {
	m.once.Do(func() {
		if m.release != nil {
			m.release()
		}
	})
	return nil
}

// memEvent is an auto-reset event: a full channel is the set state.
type memEvent struct {
	ch chan struct{}
}

type memEventHandle struct {
	*memEvent
	release func()
	once    sync.Once
}

func (e *memEventHandle) Signal() error {
	select {
	case e.ch <- struct{}{}:
	default: // already set
	}
	return nil
}

func (e *memEventHandle) Wait(timeout time.Duration) error {
	if timeout < 0 {
		<-e.ch
		return nil
	}

	select {
	case <-e.ch:
		return nil
	default:
	}
	if timeout == 0 {
		return ErrTimeout
	}

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-e.ch:
		return nil
	case <-t.C:
		return ErrTimeout
	}
}

func (e *memEventHandle) Close() error {
	e.once.Do(func() {
		if e.release != nil {
			e.release()
		}
	})
	return nil
}
