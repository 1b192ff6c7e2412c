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

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/markrussinovich/shmchan/internal/transport/shm"
)

// Address is a parsed shm:// address.
type Address struct {
	Name       string
	BufferSize int
}

// ParseAddress parses shm URLs of the form: shm://name?size=16384
func ParseAddress(raw string) (Address, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Address{}, fmt.Errorf("parse shm address: %w", err)
	}
	if u.Scheme != "shm" {
		return Address{}, fmt.Errorf("unsupported scheme: %q", u.Scheme)
	}
	name := u.Host
	if name == "" {
		// Allow shm:///name via path
		name = u.Path
		if len(name) > 0 && name[0] == '/' {
			name = name[1:]
		}
	}
	if name == "" {
		return Address{}, fmt.Errorf("missing shm name")
	}
	size := DefaultBufferSize
	if s := u.Query().Get("size"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return Address{}, fmt.Errorf("invalid size: %w", err)
		}
		if err := shm.ValidateBufferSize(v); err != nil {
			return Address{}, err
		}
		size = v
	}
	return Address{Name: name, BufferSize: size}, nil
}

// String formats the address so that ParseAddress returns it unchanged.
func (a Address) String() string {
	u := url.URL{
		Scheme:   "shm",
		Host:     a.Name,
		RawQuery: url.Values{"size": {strconv.Itoa(a.BufferSize)}}.Encode(),
	}
	return u.String()
}
