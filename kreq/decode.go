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

package kreq

import (
	"encoding/binary"

	"github.com/cloudfuse/clusternode/ferrors"
	"github.com/cloudfuse/clusternode/internal/abi"
	"github.com/cloudfuse/clusternode/internal/cursor"
)

// Request is a borrowed view over one kernel packet: a fixed header plus
// the operation variant selected by its opcode. Every slice reachable from
// Op aliases the buffer passed to Decode; none of it is copied, and none
// of it is valid once that buffer is reused or released.
type Request struct {
	Header abi.InHeader
	Op     Op
}

// Unique returns the kernel-assigned id of this request.
func (r *Request) Unique() uint64 { return r.Header.Unique }

// NodeID returns the inode this request targets.
func (r *Request) NodeID() uint64 { return r.Header.NodeID }

// UID returns the user id of the process that issued this request.
func (r *Request) UID() uint32 { return r.Header.UID }

// GID returns the group id of the process that issued this request.
func (r *Request) GID() uint32 { return r.Header.GID }

// PID returns the process id that issued this request.
func (r *Request) PID() uint32 { return r.Header.PID }

// Operation returns the decoded operation variant.
func (r *Request) Operation() Op { return r.Op }

// Decode parses buf as exactly one kernel request packet in the given byte
// order. On success every field reachable from the returned Request's Op
// lies within buf[0:header.Len]; bytes beyond header.Len, even if present
// in buf, are never visible to the variant parser.
func Decode(buf []byte, order binary.ByteOrder) (*Request, error) {
	hc := cursor.New(buf)
	hb, ok := hc.Fetch(abi.InHeaderSize)
	if !ok {
		return nil, &ferrors.ShortReadHeaderError{Len: len(buf)}
	}
	header := abi.DecodeInHeader(hb, order)

	opcode, ok := abi.ParseOpcode(header.Opcode)
	if !ok {
		return nil, &ferrors.UnknownOperationError{Opcode: header.Opcode}
	}

	if header.Len < abi.InHeaderSize {
		return nil, &ferrors.ShortReadError{Have: int(header.Len), Expected: abi.InHeaderSize}
	}

	if len(buf) < int(header.Len) {
		return nil, &ferrors.ShortReadError{Have: len(buf), Expected: int(header.Len)}
	}

	body := cursor.New(buf[abi.InHeaderSize:header.Len])
	op, ok := parseOp(opcode, &body, order)
	if !ok {
		return nil, &ferrors.InsufficientDataError{Opcode: header.Opcode}
	}

	return &Request{Header: header, Op: op}, nil
}

func parseOp(opcode abi.Opcode, c *cursor.Cursor, order binary.ByteOrder) (Op, bool) {
	switch opcode {
	case abi.OpLookup:
		name, ok := c.FetchCString()
		if !ok {
			return nil, false
		}
		return OpLookup{Name: name}, true

	case abi.OpForget:
		b, ok := c.Fetch(abi.ForgetInSize)
		if !ok {
			return nil, false
		}
		return OpForget{Arg: abi.DecodeForgetIn(b, order)}, true

	case abi.OpGetAttr:
		return OpGetAttr{}, true

	case abi.OpSetAttr:
		b, ok := c.Fetch(abi.SetAttrInSize)
		if !ok {
			return nil, false
		}
		return OpSetAttr{Arg: abi.DecodeSetAttrIn(b, order)}, true

	case abi.OpReadLink:
		return OpReadLink{}, true

	case abi.OpSymLink:
		name, ok := c.FetchCString()
		if !ok {
			return nil, false
		}
		link, ok := c.FetchCString()
		if !ok {
			return nil, false
		}
		return OpSymLink{Name: name, Link: link}, true

	case abi.OpMkNod:
		b, ok := c.Fetch(abi.MknodInSize)
		if !ok {
			return nil, false
		}
		arg := abi.DecodeMknodIn(b, order)
		name, ok := c.FetchCString()
		if !ok {
			return nil, false
		}
		return OpMkNod{Arg: arg, Name: name}, true

	case abi.OpMkDir:
		b, ok := c.Fetch(abi.MkdirInSize)
		if !ok {
			return nil, false
		}
		arg := abi.DecodeMkdirIn(b, order)
		name, ok := c.FetchCString()
		if !ok {
			return nil, false
		}
		return OpMkDir{Arg: arg, Name: name}, true

	case abi.OpUnlink:
		name, ok := c.FetchCString()
		if !ok {
			return nil, false
		}
		return OpUnlink{Name: name}, true

	case abi.OpRmDir:
		name, ok := c.FetchCString()
		if !ok {
			return nil, false
		}
		return OpRmDir{Name: name}, true

	case abi.OpRename:
		b, ok := c.Fetch(abi.RenameInSize)
		if !ok {
			return nil, false
		}
		arg := abi.DecodeRenameIn(b, order)
		name, ok := c.FetchCString()
		if !ok {
			return nil, false
		}
		newname, ok := c.FetchCString()
		if !ok {
			return nil, false
		}
		return OpRename{Arg: arg, Name: name, NewName: newname}, true

	case abi.OpLink:
		b, ok := c.Fetch(abi.LinkInSize)
		if !ok {
			return nil, false
		}
		arg := abi.DecodeLinkIn(b, order)
		name, ok := c.FetchCString()
		if !ok {
			return nil, false
		}
		return OpLink{Arg: arg, Name: name}, true

	case abi.OpOpen:
		b, ok := c.Fetch(abi.OpenInSize)
		if !ok {
			return nil, false
		}
		return OpOpen{Arg: abi.DecodeOpenIn(b, order)}, true

	case abi.OpRead:
		b, ok := c.Fetch(abi.ReadInSize)
		if !ok {
			return nil, false
		}
		return OpRead{Arg: abi.DecodeReadIn(b, order)}, true

	case abi.OpWrite:
		b, ok := c.Fetch(abi.WriteInSize)
		if !ok {
			return nil, false
		}
		arg := abi.DecodeWriteIn(b, order)
		data := c.FetchRest()
		// write_in.size is the kernel's own account of how much data
		// follows; trust it over the raw tail length rather than silently
		// truncating or ignoring a mismatch, per the decoder's insufficient-
		// data convention.
		if int(arg.Size) != len(data) {
			return nil, false
		}
		return OpWrite{Arg: arg, Data: data}, true

	case abi.OpStatFs:
		return OpStatFs{}, true

	case abi.OpRelease:
		b, ok := c.Fetch(abi.ReleaseInSize)
		if !ok {
			return nil, false
		}
		return OpRelease{Arg: abi.DecodeReleaseIn(b, order)}, true

	case abi.OpFSync:
		b, ok := c.Fetch(abi.FsyncInSize)
		if !ok {
			return nil, false
		}
		return OpFSync{Arg: abi.DecodeFsyncIn(b, order)}, true

	case abi.OpSetXAttr:
		b, ok := c.Fetch(abi.SetxattrInSize)
		if !ok {
			return nil, false
		}
		arg := abi.DecodeSetxattrIn(b, order)
		name, ok := c.FetchCString()
		if !ok {
			return nil, false
		}
		value := c.FetchRest()
		return OpSetXAttr{Arg: arg, Name: name, Value: value}, true

	case abi.OpGetXAttr:
		b, ok := c.Fetch(abi.GetxattrInSize)
		if !ok {
			return nil, false
		}
		arg := abi.DecodeGetxattrIn(b, order)
		name, ok := c.FetchCString()
		if !ok {
			return nil, false
		}
		return OpGetXAttr{Arg: arg, Name: name}, true

	case abi.OpListXAttr:
		b, ok := c.Fetch(abi.GetxattrInSize)
		if !ok {
			return nil, false
		}
		return OpListXAttr{Arg: abi.DecodeGetxattrIn(b, order)}, true

	case abi.OpRemoveXAttr:
		name, ok := c.FetchCString()
		if !ok {
			return nil, false
		}
		return OpRemoveXAttr{Name: name}, true

	case abi.OpFlush:
		b, ok := c.Fetch(abi.FlushInSize)
		if !ok {
			return nil, false
		}
		return OpFlush{Arg: abi.DecodeFlushIn(b, order)}, true

	case abi.OpInit:
		b, ok := c.Fetch(abi.InitInSize)
		if !ok {
			return nil, false
		}
		return OpInit{Arg: abi.DecodeInitIn(b, order)}, true

	case abi.OpOpenDir:
		b, ok := c.Fetch(abi.OpenInSize)
		if !ok {
			return nil, false
		}
		return OpOpenDir{Arg: abi.DecodeOpenIn(b, order)}, true

	case abi.OpReadDir:
		b, ok := c.Fetch(abi.ReadInSize)
		if !ok {
			return nil, false
		}
		return OpReadDir{Arg: abi.DecodeReadIn(b, order)}, true

	case abi.OpReleaseDir:
		b, ok := c.Fetch(abi.ReleaseInSize)
		if !ok {
			return nil, false
		}
		return OpReleaseDir{Arg: abi.DecodeReleaseIn(b, order)}, true

	case abi.OpFSyncDir:
		b, ok := c.Fetch(abi.FsyncInSize)
		if !ok {
			return nil, false
		}
		return OpFSyncDir{Arg: abi.DecodeFsyncIn(b, order)}, true

	case abi.OpGetLk:
		b, ok := c.Fetch(abi.LkInSize)
		if !ok {
			return nil, false
		}
		return OpGetLk{Arg: abi.DecodeLkIn(b, order)}, true

	case abi.OpSetLk:
		b, ok := c.Fetch(abi.LkInSize)
		if !ok {
			return nil, false
		}
		return OpSetLk{Arg: abi.DecodeLkIn(b, order)}, true

	case abi.OpSetLkW:
		b, ok := c.Fetch(abi.LkInSize)
		if !ok {
			return nil, false
		}
		return OpSetLkW{Arg: abi.DecodeLkIn(b, order)}, true

	case abi.OpAccess:
		b, ok := c.Fetch(abi.AccessInSize)
		if !ok {
			return nil, false
		}
		return OpAccess{Arg: abi.DecodeAccessIn(b, order)}, true

	case abi.OpCreate:
		b, ok := c.Fetch(abi.CreateInSize)
		if !ok {
			return nil, false
		}
		arg := abi.DecodeCreateIn(b, order)
		name, ok := c.FetchCString()
		if !ok {
			return nil, false
		}
		return OpCreate{Arg: arg, Name: name}, true

	case abi.OpInterrupt:
		b, ok := c.Fetch(abi.InterruptInSize)
		if !ok {
			return nil, false
		}
		return OpInterrupt{Arg: abi.DecodeInterruptIn(b, order)}, true

	case abi.OpBMap:
		b, ok := c.Fetch(abi.BmapInSize)
		if !ok {
			return nil, false
		}
		return OpBMap{Arg: abi.DecodeBmapIn(b, order)}, true

	case abi.OpDestroy:
		return OpDestroy{}, true

	case abi.OpSetVolName:
		name, ok := c.FetchCString()
		if !ok {
			return nil, false
		}
		return OpSetVolName{Name: name}, true

	case abi.OpGetXTimes:
		return OpGetXTimes{}, true

	case abi.OpExchange:
		b, ok := c.Fetch(abi.ExchangeInSize)
		if !ok {
			return nil, false
		}
		arg := abi.DecodeExchangeIn(b, order)
		oldname, ok := c.FetchCString()
		if !ok {
			return nil, false
		}
		newname, ok := c.FetchCString()
		if !ok {
			return nil, false
		}
		return OpExchange{Arg: arg, OldName: oldname, NewName: newname}, true

	default:
		return nil, false
	}
}
