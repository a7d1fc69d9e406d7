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

// Package peerwire implements the length-prefixed, tagged-union wire
// protocol peer nodes use to talk to a peersync.Server: request/response
// framing, and the request/response variant set of §3 of the sync
// protocol. The payload encoding is opaque above this layer; only the
// bytes on the wire need to match between peers.
package peerwire

// RequestKind tags a Request's wire encoding.
type RequestKind uint8

const (
	KindTurnOff RequestKind = iota
	KindInvalidate
	KindCheckAvailable
	KindRead
	KindLoadDir
	KindUpdateDir
	KindRemoveDirEntry
	KindGetFileAttr
	KindPushFileAttr
	KindRename
	KindRemove
	KindGetInodeNum
)

// Request is the closed set of peer request variants. TurnOff and
// GetInodeNum carry no payload: UnmarshalRequest rebuilds them from the kind
// byte alone.
type Request interface {
	requestKind() RequestKind
}

// TurnOff is the in-band shutdown signal, only honored from the loopback peer.
type TurnOff struct{}

// Invalidate drops a cached content block.
type Invalidate struct {
	FileName []byte
	Index    uint64
}

// CheckAvailable asks whether a content block is cached locally.
type CheckAvailable struct {
	FileName []byte
	Index    uint64
}

// Read asks for the bytes of a cached content block.
type Read struct {
	FileName []byte
	Index    uint64
}

// LoadDir asks for the directory-entry list at path.
type LoadDir struct {
	Path string
}

// FileAttr is the wire shape of a node's attributes. The field set mirrors
// metastore.FileAttr; peersync converts between the two at the dispatch
// boundary so this package stays independent of the metadata store.
type FileAttr struct {
	Inode uint64
	Kind  uint8
	Mode  uint32
	Size  uint64
	UID   uint32
	GID   uint32
	Atime int64
	Mtime int64
	Ctime int64
}

// DirEntry is the wire shape of one directory child slot.
type DirEntry struct {
	Inode uint64
	Name  string
	Kind  uint8
}

// UpdateDir creates/attaches a child node under a known parent.
type UpdateDir struct {
	ParentPath string
	ChildName  string
	ChildAttr  FileAttr
	TargetPath string
}

// RemoveDirEntry detaches a child entry from its parent's directory map.
type RemoveDirEntry struct {
	ParentPath string
	ChildName  string
}

// GetFileAttr asks for the attributes at path.
type GetFileAttr struct {
	Path string
}

// PushFileAttr replaces the attributes of the node at path, preserving its
// inode number.
type PushFileAttr struct {
	Path string
	Attr FileAttr
}

// Rename applies a local rename; parents are identified by inode, matching
// metastore.RenameParam (the peer is assumed to already hold both parent
// inode numbers, as the kernel-side Rename operation does).
type Rename struct {
	OldParentInode uint64
	OldName        string
	NewParentInode uint64
	NewName        string
	Flags          uint32
}

// Remove removes a named child of known kind under parentInode.
type Remove struct {
	ParentInode uint64
	ChildName   string
	ChildKind   uint8
}

// GetInodeNum asks for the store's current monotonic inode counter. Its
// reply bypasses the tagged-union Response wrapper entirely; see
// WriteInodeNum/ReadInodeNum.
type GetInodeNum struct{}

func (TurnOff) requestKind() RequestKind        { return KindTurnOff }
func (Invalidate) requestKind() RequestKind     { return KindInvalidate }
func (CheckAvailable) requestKind() RequestKind { return KindCheckAvailable }
func (Read) requestKind() RequestKind           { return KindRead }
func (LoadDir) requestKind() RequestKind        { return KindLoadDir }
func (UpdateDir) requestKind() RequestKind      { return KindUpdateDir }
func (RemoveDirEntry) requestKind() RequestKind { return KindRemoveDirEntry }
func (GetFileAttr) requestKind() RequestKind    { return KindGetFileAttr }
func (PushFileAttr) requestKind() RequestKind   { return KindPushFileAttr }
func (Rename) requestKind() RequestKind         { return KindRename }
func (Remove) requestKind() RequestKind         { return KindRemove }
func (GetInodeNum) requestKind() RequestKind    { return KindGetInodeNum }

// ResponseKind tags a Response's wire encoding. Read's reply bypasses this
// entirely (it is written as a raw vector of byte ranges, per the dispatch
// table), and GetInodeNum's reply is a raw uint32 (see WriteInodeNum).
type ResponseKind uint8

const (
	KindAck ResponseKind = iota
	KindCheckAvailableResp
	KindLoadDirResp
	KindGetFileAttrResp
)

// Response is the closed set of framed (non-raw) peer response variants.
type Response interface {
	responseKind() ResponseKind
}

// Ack is the generic acknowledgement reply for requests with no data to
// return: Invalidate, UpdateDir, RemoveDirEntry, PushFileAttr, Rename,
// Remove, and the loopback TurnOff handshake.
type Ack struct{}

// CheckAvailableResp reports whether a block is cached and, if so, its
// metadata bytes.
type CheckAvailableResp struct {
	Present bool
	Block   []byte
}

// LoadDirResp carries a directory's entries, or Present == false if the
// path did not resolve to a known node. A path that resolves to a
// non-directory node is reported Present with no entries.
type LoadDirResp struct {
	Present bool
	Entries []DirEntry
}

// GetFileAttrResp carries a node's attributes, or Present == false if the
// path did not resolve.
type GetFileAttrResp struct {
	Present bool
	Attr    FileAttr
}

func (Ack) responseKind() ResponseKind                 { return KindAck }
func (CheckAvailableResp) responseKind() ResponseKind  { return KindCheckAvailableResp }
func (LoadDirResp) responseKind() ResponseKind         { return KindLoadDirResp }
func (GetFileAttrResp) responseKind() ResponseKind     { return KindGetFileAttrResp }
