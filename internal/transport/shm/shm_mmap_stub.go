//go:build !linux && !windows

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

// SystemProvider returns a provider whose operations all fail with
// ErrUnsupported. Use NewMemoryProvider on these platforms.
func SystemProvider() Provider {
	return systemProvider{}
}

type systemProvider struct{}

func (systemProvider) CreateSegment(string, int) (Mapping, error) { return nil, ErrUnsupported }
func (systemProvider) OpenSegment(string, int) (Mapping, error)   { return nil, ErrUnsupported }
func (systemProvider) CreateEvent(string) (Event, error)          { return nil, ErrUnsupported }
func (systemProvider) OpenEvent(string) (Event, error)            { return nil, ErrUnsupported }

// RemoveSegment is not supported on this platform
func RemoveSegment(name string) error {
	return ErrUnsupported
}

// SegmentExists is not supported on this platform
func SegmentExists(name string) bool {
	return false
}
