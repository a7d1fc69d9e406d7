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

// Package metastore defines the metadata-graph contract that peersync
// dispatches against: a path→inode map and an inode→node map, each
// reachable only through a scoped reader or writer closure so that no
// lock handle can escape the call that acquired it.
package metastore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// NodeKind distinguishes the three kinds of filesystem node the metadata
// graph tracks.
type NodeKind int

const (
	FileKind NodeKind = iota
	DirKind
	SymlinkKind
)

func (k NodeKind) String() string {
	switch k {
	case FileKind:
		return "file"
	case DirKind:
		return "dir"
	case SymlinkKind:
		return "symlink"
	default:
		return "unknown"
	}
}

// FileAttr holds the attributes a peer request reads or replaces. Inode is
// the node's stable identity; PushFileAttr is the one operation that must
// preserve it across an otherwise full overwrite.
type FileAttr struct {
	Inode uint64
	Kind  NodeKind
	Mode  uint32
	Size  uint64
	UID   uint32
	GID   uint32
	Atime int64 // unix nanoseconds
	Mtime int64
	Ctime int64
}

// DirEntry is one child slot in a directory node's entry map.
type DirEntry struct {
	Inode uint64
	Name  string
	Kind  NodeKind
}

// Node is the in-memory record for one inode: its attributes, its full
// path, and, for directories, its children.
type Node struct {
	Attr    FileAttr
	Path    string
	Entries map[string]DirEntry // non-nil only when Attr.Kind == DirKind
}

// RenameParam is the argument to RenameLocal.
type RenameParam struct {
	OldParentInode uint64
	OldName        string
	NewParentInode uint64
	NewName        string
	Flags          uint32
}

// Store is the contract peersync dispatches against. Every accessor is
// scoped: the map passed to fn is only valid for the duration of the call,
// and the corresponding lock is released as soon as fn returns on every
// path, including panics propagating out of fn.
type Store interface {
	ReadPaths(fn func(paths map[string]uint64))
	WritePaths(fn func(paths map[string]uint64))
	ReadInodes(fn func(inodes map[uint64]*Node))
	WriteInodes(fn func(inodes map[uint64]*Node))

	// CurInodeNumber returns the most recently assigned inode number.
	CurInodeNumber() uint32

	// NewChildNodeOfParent allocates a fresh inode number and builds (but
	// does not insert into either map) a child Node of parent, reachable
	// at targetPath.
	NewChildNodeOfParent(parent *Node, childName string, childAttr FileAttr, targetPath string) *Node

	// RenameLocal atomically rewrites both maps per rename semantics. ctx
	// governs the call even though InMemoryStore never suspends; a backend
	// consulting durable storage would.
	RenameLocal(ctx context.Context, p RenameParam) error

	// RemoveNodeLocal detaches childName from parentInode's directory and
	// removes the child's own path→inode and inode→node entries.
	RemoveNodeLocal(ctx context.Context, parentInode uint64, childName string, childKind NodeKind) error
}

// RootInode is the inode number of the filesystem root. The root node is
// never removed; RemoveNodeLocal refuses to detach it.
const RootInode = 1

// InMemoryStore is a Store backed by two maps, each guarded by its own
// RWMutex. Lock ordering when both are needed exclusively: paths then
// inodes, never reverse.
type InMemoryStore struct {
	pathsMu sync.RWMutex
	paths   map[string]uint64

	inodesMu sync.RWMutex
	inodes   map[uint64]*Node

	nextInode uint64 // atomic
}

// NewInMemoryStore returns a store containing only the root directory node.
func NewInMemoryStore(rootAttr FileAttr) *InMemoryStore {
	rootAttr.Inode = RootInode
	rootAttr.Kind = DirKind

	root := &Node{
		Attr:    rootAttr,
		Path:    "/",
		Entries: map[string]DirEntry{},
	}

	return &InMemoryStore{
		paths:     map[string]uint64{"/": RootInode},
		inodes:    map[uint64]*Node{RootInode: root},
		nextInode: RootInode,
	}
}

func (s *InMemoryStore) ReadPaths(fn func(paths map[string]uint64)) {
	s.pathsMu.RLock()
	defer s.pathsMu.RUnlock()
	fn(s.paths)
}

func (s *InMemoryStore) WritePaths(fn func(paths map[string]uint64)) {
	s.pathsMu.Lock()
	defer s.pathsMu.Unlock()
	fn(s.paths)
}

func (s *InMemoryStore) ReadInodes(fn func(inodes map[uint64]*Node)) {
	s.inodesMu.RLock()
	defer s.inodesMu.RUnlock()
	fn(s.inodes)
}

func (s *InMemoryStore) WriteInodes(fn func(inodes map[uint64]*Node)) {
	s.inodesMu.Lock()
	defer s.inodesMu.Unlock()
	fn(s.inodes)
}

func (s *InMemoryStore) CurInodeNumber() uint32 {
	return uint32(atomic.LoadUint64(&s.nextInode))
}

func (s *InMemoryStore) NewChildNodeOfParent(parent *Node, childName string, childAttr FileAttr, targetPath string) *Node {
	childAttr.Inode = atomic.AddUint64(&s.nextInode, 1)

	var entries map[string]DirEntry
	if childAttr.Kind == DirKind {
		entries = map[string]DirEntry{}
	}

	return &Node{
		Attr:    childAttr,
		Path:    targetPath,
		Entries: entries,
	}
}

func childFullPath(parentPath, childName string) string {
	if parentPath == "/" {
		return "/" + childName
	}
	return parentPath + "/" + childName
}

// RenameLocal requires both maps exclusively; it always acquires paths
// first, per the store's lock-ordering rule.
func (s *InMemoryStore) RenameLocal(ctx context.Context, p RenameParam) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var outerErr error

	s.WritePaths(func(paths map[string]uint64) {
		s.WriteInodes(func(inodes map[uint64]*Node) {
			oldParent, ok := inodes[p.OldParentInode]
			if !ok {
				outerErr = fmt.Errorf("metastore: rename: old parent inode %d not found", p.OldParentInode)
				return
			}
			newParent, ok := inodes[p.NewParentInode]
			if !ok {
				outerErr = fmt.Errorf("metastore: rename: new parent inode %d not found", p.NewParentInode)
				return
			}

			entry, ok := oldParent.Entries[p.OldName]
			if !ok {
				outerErr = fmt.Errorf("metastore: rename: %q not found under inode %d", p.OldName, p.OldParentInode)
				return
			}

			child, ok := inodes[entry.Inode]
			if !ok {
				outerErr = fmt.Errorf("metastore: rename: dangling dir entry for inode %d", entry.Inode)
				return
			}

			delete(oldParent.Entries, p.OldName)
			delete(paths, child.Path)

			entry.Name = p.NewName
			newParent.Entries[p.NewName] = entry

			child.Path = childFullPath(newParent.Path, p.NewName)
			paths[child.Path] = child.Attr.Inode
		})
	})

	return outerErr
}

// RemoveNodeLocal detaches childName from parentInode's directory and
// destroys the child: its path→inode entry and its inode→node entry are
// both removed. A missing parent or an already-absent child is a no-op,
// not an error, matching the additive/idempotent-safe dispatch contract.
// RootInode can never be removed as anyone's child of itself.
func (s *InMemoryStore) RemoveNodeLocal(ctx context.Context, parentInode uint64, childName string, childKind NodeKind) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var outerErr error

	s.WritePaths(func(paths map[string]uint64) {
		s.WriteInodes(func(inodes map[uint64]*Node) {
			parent, ok := inodes[parentInode]
			if !ok {
				return
			}

			entry, ok := parent.Entries[childName]
			if !ok {
				return
			}
			if entry.Inode == RootInode {
				outerErr = fmt.Errorf("metastore: refusing to remove the root node")
				return
			}
			if entry.Kind != childKind {
				outerErr = fmt.Errorf("metastore: remove: %q is a %s, not a %s", childName, entry.Kind, childKind)
				return
			}

			delete(parent.Entries, childName)

			if child, ok := inodes[entry.Inode]; ok {
				delete(paths, child.Path)
			}
			delete(inodes, entry.Inode)
		})
	})

	return outerErr
}
