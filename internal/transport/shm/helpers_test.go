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
	"testing"

	"github.com/google/uuid"
)

// uniqueName returns a segment name no other test uses.
func uniqueName(t *testing.T) string {
	t.Helper()
	return "shmtest-" + uuid.NewString()
}

// createTestView creates a segment of the given buffer size in p, initializes
// it and registers cleanup with t.Cleanup().
func createTestView(t *testing.T, p Provider, name string, bufferSize int) *View {
	t.Helper()

	m, err := p.CreateSegment(name, TotalSize(bufferSize))
	if err != nil {
		t.Fatalf("Failed to create test segment %s: %v", name, err)
	}
	t.Cleanup(func() { m.Close() })

	v, err := NewView(m.Bytes(), bufferSize)
	if err != nil {
		t.Fatalf("NewView(%d) failed: %v", bufferSize, err)
	}
	v.Init()
	return v
}

// createTestEvent creates a named event in p with cleanup.
func createTestEvent(t *testing.T, p Provider, name string) Event {
	t.Helper()

	ev, err := p.CreateEvent(name)
	if err != nil {
		t.Fatalf("Failed to create event %s: %v", name, err)
	}
	t.Cleanup(func() { ev.Close() })
	return ev
}

// newTestPair returns a writer and a reader for direction d of a fresh
// in-memory segment.
func newTestPair(t *testing.T, bufferSize int, d Direction) (w, r *Channel) {
	t.Helper()

	p := NewMemoryProvider()
	name := uniqueName(t)
	v := createTestView(t, p, name, bufferSize)
	ev := createTestEvent(t, p, name+"Event")

	return NewChannel(v, d, ev), NewChannel(v, d, ev)
}
