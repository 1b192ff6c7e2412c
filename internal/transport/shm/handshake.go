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
	"time"
)

// pollInterval is how often WaitForSegment retries the open.
const pollInterval = 10 * time.Millisecond

// WaitForSegment waits until the named segment exists and carries an
// initialized header, then returns its buffer size. The client uses this to
// start before the server; it is not a retry of the message protocol.
func WaitForSegment(ctx context.Context, p Provider, name string) (int, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		// Check if the server has published the header
		if n, err := ProbeSegment(p, name); err == nil {
			return n, nil
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ticker.C:
			// Continue to next iteration
		}
	}
}

// ProbeSegment maps only the header of the named segment, validates it and
// returns the buffer size it records.
func ProbeSegment(p Provider, name string) (int, error) {
	m, err := p.OpenSegment(name, HeaderSize)
	if err != nil {
		return 0, err
	}
	defer m.Close()

	h, err := HeaderOf(m.Bytes())
	if err != nil {
		return 0, err
	}
	if err := ValidateHeader(h); err != nil {
		return 0, err
	}
	return int(h.BufferSize()), nil
}
