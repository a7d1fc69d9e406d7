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

package kreq_test

import (
	"encoding/binary"
	"testing"

	"github.com/cloudfuse/clusternode/ferrors"
	"github.com/cloudfuse/clusternode/kreq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initRequest is the literal 56-byte big-endian FUSE_INIT packet used
// throughout the lower-level fuse_ll test suite this decoder is grounded on.
var initRequest = []byte{
	0x00, 0x00, 0x00, 0x38, 0x00, 0x00, 0x00, 0x1a, // len, opcode
	0xde, 0xad, 0xbe, 0xef, 0xba, 0xad, 0xf0, 0x0d, // unique
	0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, // nodeid
	0xc0, 0x01, 0xd0, 0x0d, 0xc0, 0x01, 0xca, 0xfe, // uid, gid
	0xc0, 0xde, 0xba, 0x5e, 0x00, 0x00, 0x00, 0x00, // pid, padding
	0x00, 0x00, 0x00, 0x07, 0x00, 0x00, 0x00, 0x08, // major, minor
	0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00, // max_readahead, flags
}

// mknodRequest is the literal 56-byte big-endian FUSE_MKNOD packet.
var mknodRequest = []byte{
	0x00, 0x00, 0x00, 0x38, 0x00, 0x00, 0x00, 0x08, // len, opcode
	0xde, 0xad, 0xbe, 0xef, 0xba, 0xad, 0xf0, 0x0d, // unique
	0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, // nodeid
	0xc0, 0x01, 0xd0, 0x0d, 0xc0, 0x01, 0xca, 0xfe, // uid, gid
	0xc0, 0xde, 0xba, 0x5e, 0x00, 0x00, 0x00, 0x00, // pid, padding
	0x00, 0x00, 0x01, 0xa4, 0x00, 0x00, 0x00, 0x00, // mode, rdev
	0x66, 0x6f, 0x6f, 0x2e, 0x74, 0x78, 0x74, 0x00, // name "foo.txt\0"
}

func TestDecodeShortReadHeader(t *testing.T) {
	_, err := kreq.Decode(initRequest[:20], binary.BigEndian)
	require.Error(t, err)
	var shortHeader *ferrors.ShortReadHeaderError
	require.ErrorAs(t, err, &shortHeader)
	assert.Equal(t, 20, shortHeader.Len)
}

func TestDecodeShortRead(t *testing.T) {
	_, err := kreq.Decode(initRequest[:48], binary.BigEndian)
	require.Error(t, err)
	var shortRead *ferrors.ShortReadError
	require.ErrorAs(t, err, &shortRead)
	assert.Equal(t, 48, shortRead.Have)
	assert.Equal(t, 56, shortRead.Expected)
}

func TestDecodeUnknownOperation(t *testing.T) {
	b := make([]byte, len(initRequest))
	copy(b, initRequest)
	binary.BigEndian.PutUint32(b[4:8], 0xFFFFFFFF)

	_, err := kreq.Decode(b, binary.BigEndian)
	require.Error(t, err)
	var unknown *ferrors.UnknownOperationError
	require.ErrorAs(t, err, &unknown)
	assert.EqualValues(t, 0xFFFFFFFF, unknown.Opcode)
}

func TestDecodeInit(t *testing.T) {
	req, err := kreq.Decode(initRequest, binary.BigEndian)
	require.NoError(t, err)

	assert.EqualValues(t, 0xdeadbeefbaadf00d, req.Unique())
	assert.EqualValues(t, 0x1122334455667788, req.NodeID())
	assert.EqualValues(t, 0xc001d00d, req.UID())
	assert.EqualValues(t, 0xc001cafe, req.GID())
	assert.EqualValues(t, 0xc0deba5e, req.PID())

	op, ok := req.Operation().(kreq.OpInit)
	require.True(t, ok)
	assert.EqualValues(t, 7, op.Arg.Major)
	assert.EqualValues(t, 8, op.Arg.Minor)
	assert.EqualValues(t, 4096, op.Arg.MaxReadahead)
}

func TestDecodeMkNod(t *testing.T) {
	req, err := kreq.Decode(mknodRequest, binary.BigEndian)
	require.NoError(t, err)

	assert.EqualValues(t, 0xdeadbeefbaadf00d, req.Unique())
	assert.EqualValues(t, 0x1122334455667788, req.NodeID())

	op, ok := req.Operation().(kreq.OpMkNod)
	require.True(t, ok)
	assert.EqualValues(t, 0o644, op.Arg.Mode)
	assert.Equal(t, "foo.txt", string(op.Name))
}

func TestDecodeWriteSizeMismatchIsInsufficientData(t *testing.T) {
	// A WRITE packet whose write_in.size disagrees with the actual tail
	// length must fail rather than silently truncate or overrun.
	header := make([]byte, 40)
	binary.BigEndian.PutUint32(header[0:4], 40+40+4) // len: header+write_in+4 bytes data
	binary.BigEndian.PutUint32(header[4:8], 16)       // FUSE_WRITE opcode

	writeIn := make([]byte, 40)
	binary.BigEndian.PutUint32(writeIn[16:20], 100) // size claims 100 bytes of data

	data := []byte{1, 2, 3, 4}

	buf := append(append(header, writeIn...), data...)

	_, err := kreq.Decode(buf, binary.BigEndian)
	require.Error(t, err)
	var insufficient *ferrors.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
}

func TestDecodeWriteOk(t *testing.T) {
	header := make([]byte, 40)
	binary.BigEndian.PutUint32(header[0:4], 40+40+4)
	binary.BigEndian.PutUint32(header[4:8], 16)

	writeIn := make([]byte, 40)
	binary.BigEndian.PutUint32(writeIn[16:20], 4)

	data := []byte{9, 8, 7, 6}

	buf := append(append(header, writeIn...), data...)

	req, err := kreq.Decode(buf, binary.BigEndian)
	require.NoError(t, err)

	op, ok := req.Operation().(kreq.OpWrite)
	require.True(t, ok)
	assert.Equal(t, data, op.Data)
}

func TestDecodeGetAttrHasNoPayload(t *testing.T) {
	header := make([]byte, 40)
	binary.BigEndian.PutUint32(header[0:4], 40)
	binary.BigEndian.PutUint32(header[4:8], 3) // FUSE_GETATTR

	req, err := kreq.Decode(header, binary.BigEndian)
	require.NoError(t, err)

	_, ok := req.Operation().(kreq.OpGetAttr)
	assert.True(t, ok)
}
