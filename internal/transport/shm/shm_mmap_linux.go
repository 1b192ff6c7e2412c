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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/edsrzf/mmap-go"
	"go.uber.org/multierr"
)

// objectPrefix is prepended to every name placed in /dev/shm.
const objectPrefix = "shmchan_"

// SystemProvider returns the provider backed by files in /dev/shm, with
// futex-based events.
func SystemProvider() Provider {
	return systemProvider{}
}

type systemProvider struct{}

func (systemProvider) CreateSegment(name string, size int) (Mapping, error) {
	m, err := createMapping(objectPath(name), size)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (systemProvider) OpenSegment(name string, size int) (Mapping, error) {
	m, err := openMapping(objectPath(name), size)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (systemProvider) CreateEvent(name string) (Event, error) {
	m, err := createMapping(objectPath(name), eventSize)
	if err != nil {
		return nil, err
	}
	ev, err := newFutexEvent(m)
	if err != nil {
		m.Close()
		return nil, err
	}
	ev.reset()
	return ev, nil
}

func (systemProvider) OpenEvent(name string) (Event, error) {
	m, err := openMapping(objectPath(name), eventSize)
	if err != nil {
		return nil, err
	}
	ev, err := newFutexEvent(m)
	if err != nil {
		m.Close()
		return nil, err
	}
	return ev, nil
}

// fileMapping is a MAP_SHARED view of a file. The creating side removes the
// file when it closes.
type fileMapping struct {
	path  string
	file  *os.File
	mem   mmap.MMap
	owner bool
}

func (m *fileMapping) Bytes() []byte {
	return m.mem
}

// Close unmaps the memory, closes the file and, for the creator, removes it.
func (m *fileMapping) Close() error {
	var err error
	if m.mem != nil {
		err = multierr.Append(err, m.mem.Unmap())
		m.mem = nil
	}
	if m.file != nil {
		err = multierr.Append(err, m.file.Close())
		m.file = nil
		if m.owner {
			if rerr := os.Remove(m.path); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
				err = multierr.Append(err, rerr)
			}
		}
	}
	return err
}

// createMapping creates the file at path with size bytes and maps it. It
// fails with an error matching os.ErrExist if the file is already present;
// leftovers of a crashed server are cleared with RemoveSegment.
func createMapping(path string, size int) (*fileMapping, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	// Ensure cleanup on error
	cleanup := func() {
		file.Close()
		os.Remove(path)
	}

	if err := file.Truncate(int64(size)); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to resize %s: %w", path, err)
	}

	mem, err := mmap.MapRegion(file, size, mmap.RDWR, 0, 0)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to mmap %s: %w", path, err)
	}

	return &fileMapping{path: path, file: file, mem: mem, owner: true}, nil
}

// openMapping maps the first size bytes of the existing file at path.
func openMapping(path string, size int) (*fileMapping, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() < int64(size) {
		file.Close()
		return nil, fmt.Errorf("%s too small: %d bytes, want %d", path, info.Size(), size)
	}

	mem, err := mmap.MapRegion(file, size, mmap.RDWR, 0, 0)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to mmap %s: %w", path, err)
	}

	return &fileMapping{path: path, file: file, mem: mem}, nil
}

// objectPath returns the file path for a named object.
func objectPath(name string) string {
	name = strings.NewReplacer("/", "_", `\`, "_").Replace(name)

	// Try /dev/shm first (preferred for shared memory on Linux)
	if isDevShmAvailable() {
		return filepath.Join("/dev/shm", objectPrefix+name)
	}

	// Fallback to temporary directory
	return filepath.Join(os.TempDir(), objectPrefix+name)
}

// isDevShmAvailable checks if /dev/shm is available
func isDevShmAvailable() bool {
	info, err := os.Stat("/dev/shm")
	if err != nil {
		return false
	}
	return info.IsDir()
}

// RemoveSegment removes the objects left behind by a segment name and its
// events. It is used to clear state left by a crashed server.
func RemoveSegment(name string) error {
	s2c, c2s := EventNames(name)

	var err error
	for _, n := range []string{name, s2c, c2s} {
		if rerr := os.Remove(objectPath(n)); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			err = multierr.Append(err, rerr)
		}
	}
	return err
}

// SegmentExists checks if a shared memory segment exists
func SegmentExists(name string) bool {
	_, err := os.Stat(objectPath(name))
	return err == nil
}
