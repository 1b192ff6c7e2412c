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
	"strings"
	"testing"
)

func TestDiagnose(t *testing.T) {
	v := createTestView(t, NewMemoryProvider(), uniqueName(t), 64)

	stalled, report := Diagnose(v)
	if stalled {
		t.Error("fresh segment reported as stalled")
	}
	if !strings.Contains(report, "s2c: State=Idle DataLen=0/64") {
		t.Errorf("report missing server->client line:\n%s", report)
	}

	v.setDataLen(ServerToClient, 3)
	v.StoreState(ServerToClient, StateDataReady)
	if stalled, _ := Diagnose(v); stalled {
		t.Error("one pending direction reported as stalled")
	}

	v.setDataLen(ClientToServer, 5)
	v.StoreState(ClientToServer, StateDataReady)
	stalled, report = Diagnose(v)
	if !stalled {
		t.Error("both directions pending, want stalled")
	}
	if !strings.HasPrefix(report, "BOTH DIRECTIONS PENDING") {
		t.Errorf("report header:\n%s", report)
	}
	if !strings.Contains(report, "c2s: State=DataReady DataLen=5/64") {
		t.Errorf("report missing client->server line:\n%s", report)
	}
}

func TestDiagnoseUnknownState(t *testing.T) {
	v := createTestView(t, NewMemoryProvider(), uniqueName(t), 8)
	v.StoreState(ClientToServer, State(99))

	_, report := Diagnose(v)
	if !strings.Contains(report, "State(99)") || !strings.Contains(report, "unknown value") {
		t.Errorf("report does not flag the unknown state:\n%s", report)
	}
}
