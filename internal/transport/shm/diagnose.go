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
	"strings"
)

// ChannelState is a snapshot of one direction for debugging and diagnostics.
type ChannelState struct {
	Direction  Direction // Which half of the segment
	State      State     // Current flag value (may be outside the enumeration)
	DataLen    int       // Recorded length of the last message
	BufferSize int       // Capacity of the data buffer
}

// Pending reports whether a published message has not been consumed yet.
func (s ChannelState) Pending() bool {
	return s.State == StateDataReady
}

// Snapshot returns the state of direction d. Each field is read atomically,
// but not together with the others.
func (v *View) Snapshot(d Direction) ChannelState {
	return ChannelState{
		Direction:  d,
		State:      v.LoadState(d),
		DataLen:    v.DataLen(d),
		BufferSize: v.bufferSize,
	}
}

// Diagnose reports whether both directions hold unread messages, which means
// each peer is sending without reading and further sends overwrite data. It
// also returns a human-readable dump of both directions.
func Diagnose(v *View) (bool, string) {
	s2c := v.Snapshot(ServerToClient)
	c2s := v.Snapshot(ClientToServer)

	stalled := s2c.Pending() && c2s.Pending()

	var b strings.Builder
	if stalled {
		b.WriteString("BOTH DIRECTIONS PENDING:\n")
	} else {
		b.WriteString("Channel State:\n")
	}
	for _, s := range []ChannelState{s2c, c2s} {
		fmt.Fprintf(&b, "%s: State=%s DataLen=%d/%d\n", s.Direction, s.State, s.DataLen, s.BufferSize)
	}
	if !s2c.State.Valid() || !c2s.State.Valid() {
		b.WriteString("A flag holds an unknown value: the segment is corrupt or the peers disagree on the layout.\n")
	}
	if stalled {
		b.WriteString("Neither peer has read the other's last message; the next send in either direction replaces it.\n")
	}
	return stalled, b.String()
}
