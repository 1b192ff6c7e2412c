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

import "fmt"

// State is the handshake flag of one direction.
type State uint32

const (
	StateIdle      State = 0 // nothing written yet
	StateDataReady State = 1 // writer published a message
	StateConsumed  State = 2 // reader took the message
	StateClosed    State = 3 // writer ended the direction
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateDataReady:
		return "DataReady"
	case StateConsumed:
		return "Consumed"
	case StateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("State(%d)", uint32(s))
	}
}

// Valid reports whether s is one of the four defined states.
func (s State) Valid() bool {
	return s <= StateClosed
}

// CanTransition reports whether the protocol moves a flag from s to next.
//
//	Idle      -> DataReady | Closed
//	DataReady -> DataReady | Consumed | Closed   (writer overwrites, reader consumes)
//	Consumed  -> DataReady | Closed
//	Closed    -> Closed
func (s State) CanTransition(next State) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if next == StateClosed {
		return true
	}
	switch s {
	case StateIdle, StateConsumed:
		return next == StateDataReady
	case StateDataReady:
		return next == StateDataReady || next == StateConsumed
	default:
		return false
	}
}
