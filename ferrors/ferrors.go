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

// Package ferrors defines the error taxonomy shared by the kernel request
// decoder and the peer sync server. Every error here is a plain value,
// never a panic: callers above this layer decide how to map a decode
// failure onto a FUSE errno or a peer diagnostic.
package ferrors

import "fmt"

// ShortReadHeaderError reports that fewer bytes than a fixed kernel header
// were available.
type ShortReadHeaderError struct {
	// Len is the number of bytes actually available.
	Len int
}

func (e *ShortReadHeaderError) Error() string {
	return fmt.Sprintf("fuse: short read of request header (%d bytes available)", e.Len)
}

// UnknownOperationError reports an opcode outside the closed set this
// decoder understands.
type UnknownOperationError struct {
	Opcode uint32
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("fuse: unknown opcode (%d)", e.Opcode)
}

// ShortReadError reports that the supplied buffer was shorter than the
// length the header itself declares.
type ShortReadError struct {
	Have, Expected int
}

func (e *ShortReadError) Error() string {
	return fmt.Sprintf("fuse: short read of request (%d < %d)", e.Have, e.Expected)
}

// InsufficientDataError reports that the fixed header and declared length
// checked out, but the variant's own argument parser ran out of bytes, or
// a size field embedded in the payload disagreed with the bytes actually
// present.
type InsufficientDataError struct {
	Opcode uint32
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("fuse: insufficient argument data for opcode %d", e.Opcode)
}

// PeerErrorKind classifies a peer-sync-server failure.
type PeerErrorKind int

const (
	// TransportClosed means the underlying connection was closed or reset
	// before a complete message could be read or written.
	TransportClosed PeerErrorKind = iota
	// FramingError means a length prefix was invalid or its payload could
	// not be read in full.
	FramingError
	// DecodeError means a frame was read in full but its payload failed to
	// unmarshal into a known request or response variant.
	DecodeError
	// DispatchError means a decoded request could not be serviced: a
	// metadata-store or content-cache operation failed.
	DispatchError
)

func (k PeerErrorKind) String() string {
	switch k {
	case TransportClosed:
		return "transport closed"
	case FramingError:
		return "framing error"
	case DecodeError:
		return "decode error"
	case DispatchError:
		return "dispatch error"
	default:
		return "unknown peer error"
	}
}

// PeerError wraps a failure encountered while servicing one peer
// connection, tagged with the stage at which it occurred. None of these
// are retryable at this layer; the connection is simply closed.
type PeerError struct {
	Kind PeerErrorKind
	Op   string
	Err  error
}

func (e *PeerError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("peersync: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("peersync: %s during %s: %v", e.Kind, e.Op, e.Err)
}

func (e *PeerError) Unwrap() error {
	return e.Err
}

// NewPeerError wraps err with the given kind and the name of the operation
// in progress when it occurred.
func NewPeerError(kind PeerErrorKind, op string, err error) *PeerError {
	return &PeerError{Kind: kind, Op: op, Err: err}
}
