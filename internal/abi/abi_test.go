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

package abi_test

import (
	"encoding/binary"
	"testing"

	"github.com/cloudfuse/clusternode/internal/abi"
	"github.com/stretchr/testify/assert"
)

// initRequestBE is a big-endian FUSE_INIT packet: 40-byte header followed by
// a 16-byte fuse_init_in.
var initRequestBE = []byte{
	0x00, 0x00, 0x00, 0x38, 0x00, 0x00, 0x00, 0x1a, // len, opcode
	0xde, 0xad, 0xbe, 0xef, 0xba, 0xad, 0xd0, 0x0d, // unique
	0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, // nodeid
	0xc0, 0x01, 0xd0, 0x0d, 0xc0, 0x01, 0xca, 0xfe, // uid, gid
	0xc0, 0xde, 0xba, 0x5e, 0x00, 0x00, 0x00, 0x00, // pid, padding
	0x00, 0x00, 0x00, 0x07, 0x00, 0x00, 0x00, 0x08, // major, minor
	0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00, // max_readahead, flags
}

// mknodRequestBE is a big-endian FUSE_MKNOD packet: 40-byte header, 8-byte
// compat fuse_mknod_in, then the NUL-terminated child name "foo.txt".
var mknodRequestBE = []byte{
	0x00, 0x00, 0x00, 0x38, 0x00, 0x00, 0x00, 0x08, // len, opcode
	0xde, 0xad, 0xbe, 0xef, 0xba, 0xad, 0xd0, 0x0d, // unique
	0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, // nodeid
	0xc0, 0x01, 0xd0, 0x0d, 0xc0, 0x01, 0xca, 0xfe, // uid, gid
	0xc0, 0xde, 0xba, 0x5e, 0x00, 0x00, 0x00, 0x00, // pid, padding
	0x00, 0x00, 0x01, 0xa4, 0x00, 0x00, 0x00, 0x00, // mode, rdev
	0x66, 0x6f, 0x6f, 0x2e, 0x74, 0x78, 0x74, 0x00, // name "foo.txt\0"
}

// initRequestLE is initRequestBE's same field values, packed little-endian.
// Decode must not assume the host's native order; a kernel on a
// little-endian architecture sends packets in this layout.
var initRequestLE = []byte{
	0x38, 0x00, 0x00, 0x00, 0x1a, 0x00, 0x00, 0x00, // len, opcode
	0x0d, 0xd0, 0xad, 0xba, 0xef, 0xbe, 0xad, 0xde, // unique
	0x88, 0x77, 0x66, 0x55, 0x44, 0x33, 0x22, 0x11, // nodeid
	0x0d, 0xd0, 0x01, 0xc0, 0xfe, 0xca, 0x01, 0xc0, // uid, gid
	0x5e, 0xba, 0xde, 0xc0, 0x00, 0x00, 0x00, 0x00, // pid, padding
	0x07, 0x00, 0x00, 0x00, 0x08, 0x00, 0x00, 0x00, // major, minor
	0x00, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // max_readahead, flags
}

// mknodRequestLE is mknodRequestBE's same field values, packed
// little-endian. The trailing name is a byte string and is identical in
// both vectors.
var mknodRequestLE = []byte{
	0x38, 0x00, 0x00, 0x00, 0x08, 0x00, 0x00, 0x00, // len, opcode
	0x0d, 0xd0, 0xad, 0xba, 0xef, 0xbe, 0xad, 0xde, // unique
	0x88, 0x77, 0x66, 0x55, 0x44, 0x33, 0x22, 0x11, // nodeid
	0x0d, 0xd0, 0x01, 0xc0, 0xfe, 0xca, 0x01, 0xc0, // uid, gid
	0x5e, 0xba, 0xde, 0xc0, 0x00, 0x00, 0x00, 0x00, // pid, padding
	0xa4, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // mode, rdev
	0x66, 0x6f, 0x6f, 0x2e, 0x74, 0x78, 0x74, 0x00, // name "foo.txt\0"
}

func TestDecodeInHeader(t *testing.T) {
	for _, tc := range []struct {
		name  string
		order binary.ByteOrder
		buf   []byte
	}{
		{"BigEndian", binary.BigEndian, initRequestBE},
		{"LittleEndian", binary.LittleEndian, initRequestLE},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := abi.DecodeInHeader(tc.buf[:abi.InHeaderSize], tc.order)
			assert.EqualValues(t, 56, h.Len)
			assert.EqualValues(t, 26, h.Opcode)
			assert.EqualValues(t, 0xdeadbeefbaadd00d, h.Unique)
			assert.EqualValues(t, 0x1122334455667788, h.NodeID)
			assert.EqualValues(t, 0xc001d00d, h.UID)
			assert.EqualValues(t, 0xc001cafe, h.GID)
			assert.EqualValues(t, 0xc0deba5e, h.PID)
		})
	}
}

func TestDecodeInitIn(t *testing.T) {
	for _, tc := range []struct {
		name  string
		order binary.ByteOrder
		buf   []byte
	}{
		{"BigEndian", binary.BigEndian, initRequestBE},
		{"LittleEndian", binary.LittleEndian, initRequestLE},
	} {
		t.Run(tc.name, func(t *testing.T) {
			body := tc.buf[abi.InHeaderSize:]
			a := abi.DecodeInitIn(body[:abi.InitInSize], tc.order)
			assert.EqualValues(t, 7, a.Major)
			assert.EqualValues(t, 8, a.Minor)
			assert.EqualValues(t, 4096, a.MaxReadahead)
			assert.EqualValues(t, 0, a.Flags)
		})
	}
}

func TestDecodeMknodIn(t *testing.T) {
	for _, tc := range []struct {
		name  string
		order binary.ByteOrder
		buf   []byte
	}{
		{"BigEndian", binary.BigEndian, mknodRequestBE},
		{"LittleEndian", binary.LittleEndian, mknodRequestLE},
	} {
		t.Run(tc.name, func(t *testing.T) {
			body := tc.buf[abi.InHeaderSize:]
			a := abi.DecodeMknodIn(body[:abi.MknodInSize], tc.order)
			assert.EqualValues(t, 0o644, a.Mode)
			assert.EqualValues(t, 0, a.Rdev)
		})
	}
}

func TestParseOpcode(t *testing.T) {
	op, ok := abi.ParseOpcode(26)
	assert.True(t, ok)
	assert.Equal(t, abi.OpInit, op)

	op, ok = abi.ParseOpcode(8)
	assert.True(t, ok)
	assert.Equal(t, abi.OpMkNod, op)

	_, ok = abi.ParseOpcode(9999)
	assert.False(t, ok)

	// Opcode 19 (the slot just before FUSE_FSYNC) is reserved/unused in the
	// upstream numbering and must not be mistaken for a known operation.
	_, ok = abi.ParseOpcode(19)
	assert.False(t, ok)
}
