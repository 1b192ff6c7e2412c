/*
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
 */

// Package shm implements a duplex message channel over a named shared memory
// segment.
//
// A segment holds a fixed 24-byte header followed by two data buffers of equal
// size, one per direction. Each direction carries at most one message at a
// time: the writer copies the payload, publishes it by storing DataReady in the
// direction's flag and sets a named auto-reset event; the reader waits on the
// event, copies the payload out and stores Consumed. Storing Closed ends the
// direction.
//
// Named objects are created through a Provider. SystemProvider uses files in
// /dev/shm with futex events on Linux and named file mappings with kernel
// events on Windows. NewMemoryProvider keeps everything in process memory.
package shm
