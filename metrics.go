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

package shmchan

import "time"

// Metrics receives endpoint counters. The statsd client used by the
// command-line tool satisfies it.
type Metrics interface {
	Incr(bucket string)
	Count(bucket string, n any)
	Duration(bucket string, d time.Duration)
}

// Buckets reported by an endpoint.
const (
	MetricSent          = "sent"
	MetricSentTruncated = "sent.truncated"
	MetricReceived      = "received"
	MetricReceivedBytes = "received.bytes"
	MetricReceiveWait   = "receive.wait"
	MetricTimeout       = "timeout"
	MetricExit          = "exit"
	MetricError         = "error"
	MetricClosed        = "closed"
)

type nopMetrics struct{}

func (nopMetrics) Incr(string)                    {}
func (nopMetrics) Count(string, any)              {}
func (nopMetrics) Duration(string, time.Duration) {}
