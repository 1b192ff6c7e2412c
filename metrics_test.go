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

package shmchan_test

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markrussinovich/shmchan"
)

type recorder struct {
	mu     sync.Mutex
	counts map[string]int
	waits  int
}

func newRecorder() *recorder {
	return &recorder{counts: make(map[string]int)}
}

func (r *recorder) Incr(bucket string) {
	r.Count(bucket, 1)
}

func (r *recorder) Count(bucket string, n any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[bucket] += n.(int)
}

func (r *recorder) Duration(bucket string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if bucket == shmchan.MetricReceiveWait {
		r.waits++
	}
}

func (r *recorder) get(bucket string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[bucket]
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	srvMetrics, clMetrics := newRecorder(), newRecorder()
	p := shmchan.NewMemoryProvider()
	name := uuid.NewString()

	srv, err := shmchan.NewServer(
		shmchan.WithName(name),
		shmchan.WithProvider(p),
		shmchan.WithBufferSize(8),
		shmchan.WithMetrics(srvMetrics))
	require.NoError(t, err)
	defer srv.Close()

	cl, err := shmchan.NewClient(
		shmchan.WithName(name),
		shmchan.WithProvider(p),
		shmchan.WithMetrics(clMetrics))
	require.NoError(t, err)
	defer cl.Close()

	require.NoError(t, srv.Send([]byte("short")))
	require.NoError(t, srv.Send(bytes.Repeat([]byte("z"), 20)))
	_, err = cl.ReceiveBytes(0)
	require.NoError(t, err)
	_, err = cl.ReceiveBytes(0)
	require.ErrorIs(t, err, shmchan.ErrTimeout)
	require.NoError(t, srv.SendClose())
	_, err = cl.Receive(0)
	require.Error(t, err)
	require.ErrorIs(t, srv.Send(nil), shmchan.ErrChannelClosed)

	assert.Equal(t, 2, srvMetrics.get(shmchan.MetricSent))
	assert.Equal(t, 1, srvMetrics.get(shmchan.MetricSentTruncated))
	assert.Equal(t, 1, srvMetrics.get(shmchan.MetricClosed))
	assert.Equal(t, 1, srvMetrics.get(shmchan.MetricError))

	assert.Equal(t, 1, clMetrics.get(shmchan.MetricReceived))
	assert.Equal(t, 8, clMetrics.get(shmchan.MetricReceivedBytes))
	assert.Equal(t, 1, clMetrics.get(shmchan.MetricTimeout))
	assert.Equal(t, 1, clMetrics.get(shmchan.MetricExit))
	assert.Equal(t, 3, clMetrics.waits)
}
