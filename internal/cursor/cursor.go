// Copyright 2015 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cursor provides a forward-only, allocation-free view over a byte
// buffer, used by the kernel request decoder to carve fixed-size argument
// records and NUL-terminated names out of a single kernel packet.
package cursor

// Cursor walks forward through a byte buffer without copying it. Every
// primitive either returns a slice that aliases the original buffer and
// advances past it, or fails and leaves the cursor untouched.
type Cursor struct {
	b []byte
}

// New wraps b for forward-only consumption. The returned Cursor's fetched
// slices alias b; the caller must keep b alive for as long as any slice
// returned by the cursor is in use.
func New(b []byte) Cursor {
	return Cursor{b: b}
}

// Remaining reports how many bytes have not yet been consumed.
func (c *Cursor) Remaining() int {
	return len(c.b)
}

// Fetch returns the next n bytes and advances the cursor past them. If
// fewer than n bytes remain, it returns ok == false and does not advance.
func (c *Cursor) Fetch(n int) (p []byte, ok bool) {
	if n < 0 || len(c.b) < n {
		return nil, false
	}

	p, c.b = c.b[:n:n], c.b[n:]
	return p, true
}

// FetchCString returns the bytes up to (not including) the next NUL byte
// and advances the cursor past the NUL. If no NUL byte is found, it returns
// ok == false and does not advance.
func (c *Cursor) FetchCString() (s []byte, ok bool) {
	for i, x := range c.b {
		if x == 0 {
			s, c.b = c.b[:i:i], c.b[i+1:]
			return s, true
		}
	}

	return nil, false
}

// FetchRest returns everything left in the buffer and consumes the cursor.
func (c *Cursor) FetchRest() []byte {
	p := c.b
	c.b = nil
	return p
}
