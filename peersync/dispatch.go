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

package peersync

import (
	"fmt"
	"io"

	"github.com/cloudfuse/clusternode/ferrors"
	"github.com/cloudfuse/clusternode/metastore"
	"github.com/cloudfuse/clusternode/peerwire"
)

// dispatch reads one request from conn, services it against s.cache/s.store,
// and writes exactly one reply. Every handler below builds its reply value
// inside the store closure that computed it, then writes that value only
// after the closure (and the lock it held) has returned. conn is an
// io.ReadWriter rather than a concrete net type so dispatch logic can be
// exercised directly over a net.Pipe in tests, without routing through the
// acceptor's loopback/remote classification.
func (s *Server) dispatch(conn io.ReadWriter) error {
	payload, err := peerwire.ReadMessage(conn)
	if err != nil {
		return ferrors.NewPeerError(ferrors.FramingError, "read", err)
	}

	req, err := peerwire.UnmarshalRequest(payload)
	if err != nil {
		return ferrors.NewPeerError(ferrors.DecodeError, "decode", err)
	}

	switch r := req.(type) {
	case peerwire.TurnOff:
		return ferrors.NewPeerError(ferrors.DispatchError, "dispatch", fmt.Errorf("TurnOff received on non-loopback connection"))

	case peerwire.Invalidate:
		s.cache.Invalidate(r.FileName, r.Index)
		return s.writeAck(conn)

	case peerwire.CheckAvailable:
		block, present := s.cache.CheckAvailable(r.FileName, r.Index)
		resp := peerwire.CheckAvailableResp{Present: present}
		if present {
			resp.Block = block
		}
		return s.writeResponse(conn, resp)

	case peerwire.Read:
		ranges := s.cache.Read(r.FileName, r.Index)
		if err := peerwire.WriteMessageVector(conn, ranges); err != nil {
			return ferrors.NewPeerError(ferrors.TransportClosed, "write-read-vector", err)
		}
		return nil

	case peerwire.LoadDir:
		return s.dispatchLoadDir(conn, r)

	case peerwire.UpdateDir:
		return s.dispatchUpdateDir(conn, r)

	case peerwire.RemoveDirEntry:
		return s.dispatchRemoveDirEntry(conn, r)

	case peerwire.GetFileAttr:
		return s.dispatchGetFileAttr(conn, r)

	case peerwire.PushFileAttr:
		return s.dispatchPushFileAttr(conn, r)

	case peerwire.Rename:
		return s.dispatchRename(conn, r)

	case peerwire.Remove:
		return s.dispatchRemove(conn, r)

	case peerwire.GetInodeNum:
		return s.dispatchGetInodeNum(conn)

	default:
		return ferrors.NewPeerError(ferrors.DispatchError, "dispatch", fmt.Errorf("unhandled request type %T", req))
	}
}

func (s *Server) dispatchLoadDir(conn io.ReadWriter, r peerwire.LoadDir) error {
	var resp peerwire.LoadDirResp

	s.store.ReadPaths(func(paths map[string]uint64) {
		inode, ok := paths[r.Path]
		if !ok {
			return
		}
		s.store.ReadInodes(func(inodes map[uint64]*metastore.Node) {
			node, ok := inodes[inode]
			if !ok {
				return
			}
			resp.Present = true
			resp.Entries = dirEntriesToWire(node.Entries)
		})
	})

	return s.writeResponse(conn, resp)
}

// dispatchUpdateDir creates the child node and wires it into both maps
// under a single exclusive section, paths before inodes, matching the
// store's lock-ordering rule.
func (s *Server) dispatchUpdateDir(conn io.ReadWriter, r peerwire.UpdateDir) error {
	s.store.WritePaths(func(paths map[string]uint64) {
		parentInode, ok := paths[r.ParentPath]
		if !ok {
			s.logger.Debugf("peersync: update_dir: unknown parent path %q", r.ParentPath)
			return
		}
		s.store.WriteInodes(func(inodes map[uint64]*metastore.Node) {
			parent, ok := inodes[parentInode]
			if !ok {
				return
			}

			child := s.store.NewChildNodeOfParent(parent, r.ChildName, fileAttrFromWire(r.ChildAttr), r.TargetPath)
			parent.Entries[r.ChildName] = metastore.DirEntry{
				Inode: child.Attr.Inode,
				Name:  r.ChildName,
				Kind:  child.Attr.Kind,
			}
			paths[child.Path] = child.Attr.Inode
			inodes[child.Attr.Inode] = child
		})
	})

	return s.writeAck(conn)
}

// dispatchRemoveDirEntry only detaches the name from the parent's
// directory map; it is the narrower counterpart to Remove, which also
// destroys the child's own path/inode entries. It only needs the path
// table for a read (resolving the parent) and the inode table for a
// write (mutating the parent's Entries), so paths is acquired for
// reading only.
func (s *Server) dispatchRemoveDirEntry(conn io.ReadWriter, r peerwire.RemoveDirEntry) error {
	s.store.ReadPaths(func(paths map[string]uint64) {
		parentInode, ok := paths[r.ParentPath]
		if !ok {
			return
		}
		s.store.WriteInodes(func(inodes map[uint64]*metastore.Node) {
			parent, ok := inodes[parentInode]
			if !ok {
				return
			}
			delete(parent.Entries, r.ChildName)
		})
	})

	return s.writeAck(conn)
}

func (s *Server) dispatchGetFileAttr(conn io.ReadWriter, r peerwire.GetFileAttr) error {
	var resp peerwire.GetFileAttrResp

	s.store.ReadPaths(func(paths map[string]uint64) {
		inode, ok := paths[r.Path]
		if !ok {
			s.logger.Debugf("peersync: get_attr: path %q not found", r.Path)
			return
		}
		s.store.ReadInodes(func(inodes map[uint64]*metastore.Node) {
			node, ok := inodes[inode]
			if !ok {
				s.logger.Debugf("peersync: get_attr: dangling inode %d for path %q", inode, r.Path)
				return
			}
			resp.Present = true
			resp.Attr = fileAttrToWire(node.Attr)
		})
	})

	return s.writeResponse(conn, resp)
}

// dispatchPushFileAttr overwrites every attribute field except Inode,
// which a node keeps for life once assigned.
func (s *Server) dispatchPushFileAttr(conn io.ReadWriter, r peerwire.PushFileAttr) error {
	s.store.ReadPaths(func(paths map[string]uint64) {
		inode, ok := paths[r.Path]
		if !ok {
			return
		}
		s.store.WriteInodes(func(inodes map[uint64]*metastore.Node) {
			node, ok := inodes[inode]
			if !ok {
				return
			}
			newAttr := fileAttrFromWire(r.Attr)
			newAttr.Inode = node.Attr.Inode
			node.Attr = newAttr
		})
	})

	return s.writeAck(conn)
}

func (s *Server) dispatchRename(conn io.ReadWriter, r peerwire.Rename) error {
	err := s.store.RenameLocal(s.groupCtx, metastore.RenameParam{
		OldParentInode: r.OldParentInode,
		OldName:        r.OldName,
		NewParentInode: r.NewParentInode,
		NewName:        r.NewName,
		Flags:          r.Flags,
	})
	if err != nil {
		s.logger.WithError(err).Warn("peersync: rename_local failed")
	}
	return s.writeAck(conn)
}

func (s *Server) dispatchRemove(conn io.ReadWriter, r peerwire.Remove) error {
	err := s.store.RemoveNodeLocal(s.groupCtx, r.ParentInode, r.ChildName, metastore.NodeKind(r.ChildKind))
	if err != nil {
		s.logger.WithError(err).Debug("peersync: remove_node_local failed")
	}
	return s.writeAck(conn)
}

func (s *Server) dispatchGetInodeNum(conn io.ReadWriter) error {
	n := s.store.CurInodeNumber()
	if err := peerwire.WriteInodeNum(conn, n); err != nil {
		return ferrors.NewPeerError(ferrors.TransportClosed, "write-inode-num", err)
	}
	return nil
}

func (s *Server) writeAck(conn io.Writer) error {
	return s.writeResponse(conn, peerwire.Ack{})
}

func (s *Server) writeResponse(conn io.Writer, resp peerwire.Response) error {
	payload, err := peerwire.MarshalResponse(resp)
	if err != nil {
		return fmt.Errorf("peersync: marshal response: %w", err)
	}
	if err := peerwire.WriteMessage(conn, payload); err != nil {
		return ferrors.NewPeerError(ferrors.TransportClosed, "write-response", err)
	}
	return nil
}

func fileAttrFromWire(a peerwire.FileAttr) metastore.FileAttr {
	return metastore.FileAttr{
		Inode: a.Inode,
		Kind:  metastore.NodeKind(a.Kind),
		Mode:  a.Mode,
		Size:  a.Size,
		UID:   a.UID,
		GID:   a.GID,
		Atime: a.Atime,
		Mtime: a.Mtime,
		Ctime: a.Ctime,
	}
}

func fileAttrToWire(a metastore.FileAttr) peerwire.FileAttr {
	return peerwire.FileAttr{
		Inode: a.Inode,
		Kind:  uint8(a.Kind),
		Mode:  a.Mode,
		Size:  a.Size,
		UID:   a.UID,
		GID:   a.GID,
		Atime: a.Atime,
		Mtime: a.Mtime,
		Ctime: a.Ctime,
	}
}

func dirEntriesToWire(entries map[string]metastore.DirEntry) []peerwire.DirEntry {
	out := make([]peerwire.DirEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, peerwire.DirEntry{Inode: e.Inode, Name: e.Name, Kind: uint8(e.Kind)})
	}
	return out
}
