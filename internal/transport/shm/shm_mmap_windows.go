//go:build windows

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
	"os"
	"strings"
	"time"
	"unsafe"

	"go.uber.org/multierr"
	"golang.org/x/sys/windows"
)

// Win32 access rights and wait results not exported by x/sys/windows.
const (
	fileMapAllAccess = 0x000F001F
	eventAllAccess   = 0x001F0003
	waitObject0      = 0x00000000
	waitTimeout      = 0x00000102
)

var (
	modkernel32          = windows.NewLazySystemDLL("kernel32.dll")
	procOpenFileMappingW = modkernel32.NewProc("OpenFileMappingW")
)

// SystemProvider returns the provider backed by named file mappings and
// auto-reset events in the session namespace.
func SystemProvider() Provider {
	return systemProvider{}
}

type systemProvider struct{}

// kernelName qualifies bare names with the session-local namespace.
func kernelName(name string) (*uint16, error) {
	if !strings.Contains(name, `\`) {
		name = `Local\` + name
	}
	return windows.UTF16PtrFromString(name)
}

func (systemProvider) CreateSegment(name string, size int) (Mapping, error) {
	n, err := kernelName(name)
	if err != nil {
		return nil, err
	}
	h, err := windows.CreateFileMapping(windows.InvalidHandle, nil, windows.PAGE_READWRITE, 0, uint32(size), n)
	if h == 0 {
		return nil, fmt.Errorf("failed to create file mapping %s: %w", name, err)
	}
	if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
		windows.CloseHandle(h)
		return nil, fmt.Errorf("file mapping %s: %w", name, os.ErrExist)
	}
	return mapView(h, size)
}

func (systemProvider) OpenSegment(name string, size int) (Mapping, error) {
	n, err := kernelName(name)
	if err != nil {
		return nil, err
	}
	r1, _, e1 := procOpenFileMappingW.Call(fileMapAllAccess, 0, uintptr(unsafe.Pointer(n)))
	if r1 == 0 {
		return nil, fmt.Errorf("failed to open file mapping %s: %w", name, e1)
	}
	return mapView(windows.Handle(r1), size)
}

func (systemProvider) CreateEvent(name string) (Event, error) {
	n, err := kernelName(name)
	if err != nil {
		return nil, err
	}
	// auto-reset, initially unset
	h, err := windows.CreateEvent(nil, 0, 0, n)
	if h == 0 {
		return nil, fmt.Errorf("failed to create event %s: %w", name, err)
	}
	if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
		windows.CloseHandle(h)
		return nil, fmt.Errorf("event %s: %w", name, os.ErrExist)
	}
	return winEvent(h), nil
}

func (systemProvider) OpenEvent(name string) (Event, error) {
	n, err := kernelName(name)
	if err != nil {
		return nil, err
	}
	h, err := windows.OpenEvent(eventAllAccess, false, n)
	if err != nil {
		return nil, fmt.Errorf("failed to open event %s: %w", name, err)
	}
	return winEvent(h), nil
}

// viewMapping is a mapped view of a named file mapping.
type viewMapping struct {
	h    windows.Handle
	addr uintptr
	mem  []byte
}

func mapView(h windows.Handle, size int) (Mapping, error) {
	addr, err := windows.MapViewOfFile(h, fileMapAllAccess, 0, 0, uintptr(size))
	if addr == 0 {
		windows.CloseHandle(h)
		return nil, fmt.Errorf("failed to map view: %w", err)
	}
	mem := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	return &viewMapping{h: h, addr: addr, mem: mem}, nil
}

func (m *viewMapping) Bytes() []byte {
	return m.mem
}

func (m *viewMapping) Close() error {
	var err error
	if m.addr != 0 {
		err = multierr.Append(err, windows.UnmapViewOfFile(m.addr))
		m.addr, m.mem = 0, nil
	}
	if m.h != 0 {
		err = multierr.Append(err, windows.CloseHandle(m.h))
		m.h = 0
	}
	return err
}

type winEvent windows.Handle

func (e winEvent) Signal() error {
	return windows.SetEvent(windows.Handle(e))
}

func (e winEvent) Wait(timeout time.Duration) error {
	r, err := windows.WaitForSingleObject(windows.Handle(e), waitMillis(timeout))
	switch r {
	case waitObject0:
		return nil
	case waitTimeout:
		return ErrTimeout
	default:
		return fmt.Errorf("WaitForSingleObject returned %#x: %w", r, err)
	}
}

// waitMillis converts timeout to a WaitForSingleObject argument. Partial
// milliseconds round up so the wait never ends early, and finite timeouts
// stay below INFINITE.
func waitMillis(timeout time.Duration) uint32 {
	const limit = time.Duration(windows.INFINITE-1) * time.Millisecond
	switch {
	case timeout < 0:
		return windows.INFINITE
	case timeout >= limit:
		return windows.INFINITE - 1
	default:
		return uint32((timeout + time.Millisecond - 1) / time.Millisecond)
	}
}

func (e winEvent) Close() error {
	return windows.CloseHandle(windows.Handle(e))
}

// RemoveSegment is a no-op: the kernel destroys named objects when the last
// handle closes.
func RemoveSegment(name string) error {
	return nil
}

// SegmentExists checks if a named file mapping exists.
func SegmentExists(name string) bool {
	m, err := SystemProvider().OpenSegment(name, HeaderSize)
	if err != nil {
		return false
	}
	m.Close()
	return true
}
