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
	"sync/atomic"
	"testing"
	"time"
)

func TestFutexSimpleTimeout(t *testing.T) {
	// Create a fresh memory location
	data := make([]uint32, 1)
	addr := &data[0]

	atomic.StoreUint32(addr, 42)

	// Nobody wakes us, so this must time out
	start := time.Now()
	err := futexWait(addr, 42, 100*time.Millisecond)
	elapsed := time.Since(start)

	t.Logf("futexWait took %v, error: %v", elapsed, err)

	if !errors.Is(err, errFutexTimeout) {
		t.Fatalf("futexWait = %v, want errFutexTimeout", err)
	}
	if elapsed < 80*time.Millisecond || elapsed > time.Second {
		t.Errorf("Timeout took %v, expected ~100ms", elapsed)
	}
}

func TestFutexValueMismatch(t *testing.T) {
	data := make([]uint32, 1)
	addr := &data[0]
	atomic.StoreUint32(addr, 1)

	start := time.Now()
	if err := futexWait(addr, 0, time.Second); err != nil {
		t.Errorf("futexWait = %v, want nil", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Non-timeout return took %v, expected immediate", elapsed)
	}
}

func TestFutexWakeFromAnotherGoroutine(t *testing.T) {
	data := make([]uint32, 1)
	addr := &data[0]

	atomic.StoreUint32(addr, 100)

	done := make(chan struct{})

	// Start a goroutine that will wake us after a short delay
	go func() {
		defer close(done)
		time.Sleep(50 * time.Millisecond)
		atomic.StoreUint32(addr, 101) // Change the value
		futexWake(addr, 1)            // Wake the waiter
	}()

	// Loop on spurious wakeups until the value changes
	start := time.Now()
	for atomic.LoadUint32(addr) == 100 {
		if err := futexWait(addr, 100, time.Second); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	elapsed := time.Since(start)

	<-done

	if elapsed < 40*time.Millisecond || elapsed > 900*time.Millisecond {
		t.Errorf("Wake took %v, expected ~50ms", elapsed)
	}

	t.Logf("futexWait woke up after %v (expected ~50ms)", elapsed)
}

func TestFutexEvent(t *testing.T) {
	p := SystemProvider()
	name := uniqueName(t)
	t.Cleanup(func() { RemoveSegment(name) })

	ev := createTestEvent(t, p, name)

	peer, err := p.OpenEvent(name)
	if err != nil {
		t.Fatalf("OpenEvent failed: %v", err)
	}
	defer peer.Close()

	if err := peer.Wait(0); !errors.Is(err, ErrTimeout) {
		t.Errorf("Wait(0) on new event = %v, want ErrTimeout", err)
	}

	// Two signals release one wait
	if err := ev.Signal(); err != nil {
		t.Fatalf("Signal failed: %v", err)
	}
	if err := ev.Signal(); err != nil {
		t.Fatalf("Signal failed: %v", err)
	}
	if err := peer.Wait(100 * time.Millisecond); err != nil {
		t.Errorf("Wait after Signal = %v, want nil", err)
	}

	start := time.Now()
	if err := peer.Wait(50 * time.Millisecond); !errors.Is(err, ErrTimeout) {
		t.Errorf("second Wait = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Wait returned after %v, before its timeout", elapsed)
	}
}

func TestFutexEventWakesBlockedWaiter(t *testing.T) {
	p := SystemProvider()
	name := uniqueName(t)
	t.Cleanup(func() { RemoveSegment(name) })

	ev := createTestEvent(t, p, name)
	peer, err := p.OpenEvent(name)
	if err != nil {
		t.Fatalf("OpenEvent failed: %v", err)
	}
	defer peer.Close()

	go func() {
		time.Sleep(30 * time.Millisecond)
		ev.Signal()
	}()

	start := time.Now()
	if err := peer.Wait(Infinite); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Wait returned after %v, before the signal", elapsed)
	}
}
