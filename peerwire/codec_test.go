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

package peerwire_test

import (
	"bytes"
	"testing"

	"github.com/cloudfuse/clusternode/peerwire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageFraming(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, peerwire.WriteMessage(&buf, []byte("hello")))

	got, err := peerwire.ReadMessage(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}

func TestMessageFramingEmptyPayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, peerwire.WriteMessage(&buf, nil))

	got, err := peerwire.ReadMessage(&buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWriteMessageVectorPreservesOrder(t *testing.T) {
	var buf bytes.Buffer
	parts := [][]byte{[]byte("ab"), []byte("cde"), []byte("f")}
	require.NoError(t, peerwire.WriteMessageVector(&buf, parts))

	got, err := peerwire.ReadMessage(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcdef"), got)
}

func TestRequestRoundTrip(t *testing.T) {
	cases := []peerwire.Request{
		peerwire.TurnOff{},
		peerwire.Invalidate{FileName: []byte("a.txt"), Index: 3},
		peerwire.Invalidate{FileName: []byte{}, Index: 0},
		peerwire.CheckAvailable{FileName: []byte("a.txt"), Index: 7},
		peerwire.Read{FileName: []byte("a.txt"), Index: 1},
		peerwire.LoadDir{Path: "/a/b"},
		peerwire.LoadDir{Path: ""},
		peerwire.UpdateDir{
			ParentPath: "/a",
			ChildName:  "b",
			ChildAttr:  peerwire.FileAttr{Inode: 5, Kind: 1, Mode: 0o755},
			TargetPath: "/a/b",
		},
		peerwire.RemoveDirEntry{ParentPath: "/a", ChildName: "b"},
		peerwire.GetFileAttr{Path: "/a/b"},
		peerwire.PushFileAttr{Path: "/a/b", Attr: peerwire.FileAttr{Inode: 5, Size: 1024}},
		peerwire.Rename{OldParentInode: 1, OldName: "b", NewParentInode: 2, NewName: "c", Flags: 0},
		peerwire.Remove{ParentInode: 1, ChildName: "b", ChildKind: 0},
		peerwire.GetInodeNum{},
	}

	for _, want := range cases {
		payload, err := peerwire.MarshalRequest(want)
		require.NoError(t, err)

		got, err := peerwire.UnmarshalRequest(payload)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestResponseRoundTrip(t *testing.T) {
	cases := []peerwire.Response{
		peerwire.Ack{},
		peerwire.CheckAvailableResp{Present: true, Block: []byte{1, 2, 3}},
		peerwire.CheckAvailableResp{Present: false},
		peerwire.LoadDirResp{Present: true, Entries: []peerwire.DirEntry{
			{Inode: 2, Name: "b", Kind: 1},
			{Inode: 3, Name: "c", Kind: 0},
		}},
		peerwire.LoadDirResp{Present: false},
		peerwire.GetFileAttrResp{Present: true, Attr: peerwire.FileAttr{Inode: 4, Size: 99}},
		peerwire.GetFileAttrResp{Present: false},
	}

	for _, want := range cases {
		payload, err := peerwire.MarshalResponse(want)
		require.NoError(t, err)

		got, err := peerwire.UnmarshalResponse(payload)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestInodeNumRawRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, peerwire.WriteInodeNum(&buf, 0xdeadbeef))

	got, err := peerwire.ReadInodeNum(&buf)
	require.NoError(t, err)
	assert.EqualValues(t, 0xdeadbeef, got)
}

func TestUnmarshalRequestEmptyPayload(t *testing.T) {
	_, err := peerwire.UnmarshalRequest(nil)
	assert.Error(t, err)
}

func TestUnmarshalRequestUnknownKind(t *testing.T) {
	_, err := peerwire.UnmarshalRequest([]byte{0xff})
	assert.Error(t, err)
}
