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
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitForSegmentTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := WaitForSegment(ctx, NewMemoryProvider(), uniqueName(t))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForSegment = %v, want context.DeadlineExceeded", err)
	}
}

func TestWaitForSegmentUninitialized(t *testing.T) {
	p := NewMemoryProvider()
	name := uniqueName(t)

	// The segment exists but its header has not been published
	m, err := p.CreateSegment(name, TotalSize(64))
	if err != nil {
		t.Fatalf("CreateSegment failed: %v", err)
	}
	defer m.Close()

	if _, err := ProbeSegment(p, name); err == nil {
		t.Fatal("ProbeSegment accepted an uninitialized header")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if _, err := WaitForSegment(ctx, p, name); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForSegment = %v, want context.DeadlineExceeded", err)
	}
}

func TestWaitForSegmentServerArrivesLater(t *testing.T) {
	p := NewMemoryProvider()
	name := uniqueName(t)

	created := make(chan Mapping, 1)
	go func() {
		defer close(created)
		time.Sleep(30 * time.Millisecond)

		m, err := p.CreateSegment(name, TotalSize(512))
		if err != nil {
			return
		}
		created <- m
		if v, err := NewView(m.Bytes(), 512); err == nil {
			v.Init()
		}
	}()
	defer func() {
		if m, ok := <-created; ok {
			m.Close()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := WaitForSegment(ctx, p, name)
	if err != nil {
		t.Fatalf("WaitForSegment failed: %v", err)
	}
	if n != 512 {
		t.Errorf("buffer size = %d, want 512", n)
	}
}
