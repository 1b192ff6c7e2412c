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
	"os"
	"testing"
	"time"
	"unsafe"
)

func TestMemorySegmentShared(t *testing.T) {
	p := NewMemoryProvider()

	created, err := p.CreateSegment("seg", 100)
	if err != nil {
		t.Fatalf("CreateSegment failed: %v", err)
	}
	defer created.Close()

	if len(created.Bytes()) != 100 {
		t.Errorf("created length = %d, want 100", len(created.Bytes()))
	}
	if uintptr(unsafe.Pointer(&created.Bytes()[0]))%HeaderAlign != 0 {
		t.Error("segment is not 8-byte aligned")
	}

	opened, err := p.OpenSegment("seg", HeaderSize)
	if err != nil {
		t.Fatalf("OpenSegment failed: %v", err)
	}
	defer opened.Close()

	created.Bytes()[0] = 0xAB
	if opened.Bytes()[0] != 0xAB {
		t.Error("opened mapping does not share memory with the created one")
	}
	if len(opened.Bytes()) != HeaderSize {
		t.Errorf("opened length = %d, want %d", len(opened.Bytes()), HeaderSize)
	}

	if _, err := p.OpenSegment("seg", 101); err == nil {
		t.Error("OpenSegment accepted a size larger than the segment")
	}
}

func TestMemorySegmentRemovedByCreator(t *testing.T) {
	p := NewMemoryProvider()

	created, err := p.CreateSegment("seg", 64)
	if err != nil {
		t.Fatalf("CreateSegment failed: %v", err)
	}
	opened, err := p.OpenSegment("seg", 64)
	if err != nil {
		t.Fatalf("OpenSegment failed: %v", err)
	}

	// Closing an opened handle leaves the name in place
	opened.Close()
	if _, err := p.OpenSegment("seg", 64); err != nil {
		t.Errorf("OpenSegment after client close = %v, want nil", err)
	}

	created.Close()
	created.Close()
	if _, err := p.OpenSegment("seg", 64); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("OpenSegment after creator close = %v, want os.ErrNotExist", err)
	}
}

func TestMemoryEventMissing(t *testing.T) {
	p := NewMemoryProvider()
	if _, err := p.OpenEvent("nope"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("OpenEvent = %v, want os.ErrNotExist", err)
	}
	if _, err := p.CreateSegment("bad", 0); err == nil {
		t.Error("CreateSegment accepted size 0")
	}
}

func TestMemoryEventAutoReset(t *testing.T) {
	p := NewMemoryProvider()

	ev, err := p.CreateEvent("ev")
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	defer ev.Close()

	peer, err := p.OpenEvent("ev")
	if err != nil {
		t.Fatalf("OpenEvent failed: %v", err)
	}
	defer peer.Close()

	// Unset after creation
	if err := peer.Wait(0); !errors.Is(err, ErrTimeout) {
		t.Errorf("Wait(0) on new event = %v, want ErrTimeout", err)
	}

	// Two signals before a wait release exactly one wait
	ev.Signal()
	ev.Signal()
	if err := peer.Wait(0); err != nil {
		t.Errorf("Wait(0) after Signal = %v, want nil", err)
	}
	if err := peer.Wait(10 * time.Millisecond); !errors.Is(err, ErrTimeout) {
		t.Errorf("second Wait = %v, want ErrTimeout", err)
	}
}

func TestMemoryCreateExclusive(t *testing.T) {
	p := NewMemoryProvider()

	seg, err := p.CreateSegment("seg", 64)
	if err != nil {
		t.Fatalf("CreateSegment failed: %v", err)
	}
	ev, err := p.CreateEvent("ev")
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	if _, err := p.CreateSegment("seg", 32); !errors.Is(err, os.ErrExist) {
		t.Errorf("CreateSegment on live name = %v, want os.ErrExist", err)
	}
	if _, err := p.CreateEvent("ev"); !errors.Is(err, os.ErrExist) {
		t.Errorf("CreateEvent on live name = %v, want os.ErrExist", err)
	}
	if len(seg.Bytes()) != 64 {
		t.Errorf("live segment length = %d, want 64", len(seg.Bytes()))
	}

	// The names are free again once the creator closes
	seg.Close()
	ev.Close()
	seg, err = p.CreateSegment("seg", 32)
	if err != nil {
		t.Fatalf("CreateSegment after close failed: %v", err)
	}
	defer seg.Close()
	ev, err = p.CreateEvent("ev")
	if err != nil {
		t.Fatalf("CreateEvent after close failed: %v", err)
	}
	defer ev.Close()
	if err := ev.Wait(0); !errors.Is(err, ErrTimeout) {
		t.Errorf("Wait(0) on re-created event = %v, want ErrTimeout", err)
	}
}

func TestMemoryEventWakesWaiter(t *testing.T) {
	p := NewMemoryProvider()
	ev, err := p.CreateEvent("ev")
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	defer ev.Close()

	go func() {
		time.Sleep(20 * time.Millisecond)
		ev.Signal()
	}()

	start := time.Now()
	if err := ev.Wait(Infinite); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("Wait returned after %v, before the signal", elapsed)
	}
}
