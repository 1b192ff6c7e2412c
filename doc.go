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

// Package shmchan provides a duplex message channel between two processes on
// the same machine, carried by a named shared memory segment.
//
// A Server creates the segment and its two wake-up events; a Client opens
// them by name. Each side sends into its own direction and receives from the
// other:
//
//	srv, err := shmchan.NewServer(shmchan.WithName("demo"))
//	...
//	cli, err := shmchan.NewClient(shmchan.WithName("demo"))
//	...
//	cli.Send([]byte("hello"))
//	msg, err := srv.Receive(100 * time.Millisecond)
//
// Each direction holds one message at a time. A newer Send replaces a message
// the peer has not read, and payloads larger than the buffer are truncated.
//
// Receive reports outcomes through its error: nil for a message, io.EOF once
// the peer called SendClose, ErrTimeout when nothing new arrived in time.
package shmchan
