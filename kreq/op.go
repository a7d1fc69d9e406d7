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

// Package kreq decodes raw FUSE kernel request packets into a closed set of
// typed operation variants, without allocating or copying the payload.
package kreq

import "github.com/cloudfuse/clusternode/internal/abi"

// Op is the closed set of kernel operation variants. Every concrete type
// below implements it; the set is sealed by the unexported method.
type Op interface {
	isOp()
}

type OpLookup struct{ Name []byte }

type OpForget struct{ Arg abi.ForgetIn }

type OpGetAttr struct{}

type OpSetAttr struct{ Arg abi.SetAttrIn }

type OpReadLink struct{}

type OpSymLink struct{ Name, Link []byte }

type OpMkNod struct {
	Arg  abi.MknodIn
	Name []byte
}

type OpMkDir struct {
	Arg  abi.MkdirIn
	Name []byte
}

type OpUnlink struct{ Name []byte }

type OpRmDir struct{ Name []byte }

type OpRename struct {
	Arg     abi.RenameIn
	Name    []byte
	NewName []byte
}

type OpLink struct {
	Arg  abi.LinkIn
	Name []byte
}

type OpOpen struct{ Arg abi.OpenIn }

type OpRead struct{ Arg abi.ReadIn }

type OpWrite struct {
	Arg  abi.WriteIn
	Data []byte
}

type OpStatFs struct{}

type OpRelease struct{ Arg abi.ReleaseIn }

type OpFSync struct{ Arg abi.FsyncIn }

type OpSetXAttr struct {
	Arg   abi.SetxattrIn
	Name  []byte
	Value []byte
}

type OpGetXAttr struct {
	Arg  abi.GetxattrIn
	Name []byte
}

type OpListXAttr struct{ Arg abi.GetxattrIn }

type OpRemoveXAttr struct{ Name []byte }

type OpFlush struct{ Arg abi.FlushIn }

type OpInit struct{ Arg abi.InitIn }

type OpOpenDir struct{ Arg abi.OpenIn }

type OpReadDir struct{ Arg abi.ReadIn }

type OpReleaseDir struct{ Arg abi.ReleaseIn }

type OpFSyncDir struct{ Arg abi.FsyncIn }

type OpGetLk struct{ Arg abi.LkIn }

type OpSetLk struct{ Arg abi.LkIn }

type OpSetLkW struct{ Arg abi.LkIn }

type OpAccess struct{ Arg abi.AccessIn }

type OpCreate struct {
	Arg  abi.CreateIn
	Name []byte
}

type OpInterrupt struct{ Arg abi.InterruptIn }

type OpBMap struct{ Arg abi.BmapIn }

type OpDestroy struct{}

// OpSetVolName, OpGetXTimes and OpExchange are only ever sent by a macOS
// kernel (osxfuse/macFUSE), but the decoder accepts their opcodes on every
// platform: what the local kernel driver actually sends is a runtime
// property, not something this package should gate at compile time.
type OpSetVolName struct{ Name []byte }

type OpGetXTimes struct{}

type OpExchange struct {
	Arg            abi.ExchangeIn
	OldName, NewName []byte
}

func (OpLookup) isOp()      {}
func (OpForget) isOp()      {}
func (OpGetAttr) isOp()     {}
func (OpSetAttr) isOp()     {}
func (OpReadLink) isOp()    {}
func (OpSymLink) isOp()     {}
func (OpMkNod) isOp()       {}
func (OpMkDir) isOp()       {}
func (OpUnlink) isOp()      {}
func (OpRmDir) isOp()       {}
func (OpRename) isOp()      {}
func (OpLink) isOp()        {}
func (OpOpen) isOp()        {}
func (OpRead) isOp()        {}
func (OpWrite) isOp()       {}
func (OpStatFs) isOp()      {}
func (OpRelease) isOp()     {}
func (OpFSync) isOp()       {}
func (OpSetXAttr) isOp()    {}
func (OpGetXAttr) isOp()    {}
func (OpListXAttr) isOp()   {}
func (OpRemoveXAttr) isOp() {}
func (OpFlush) isOp()       {}
func (OpInit) isOp()        {}
func (OpOpenDir) isOp()     {}
func (OpReadDir) isOp()     {}
func (OpReleaseDir) isOp()  {}
func (OpFSyncDir) isOp()    {}
func (OpGetLk) isOp()       {}
func (OpSetLk) isOp()       {}
func (OpSetLkW) isOp()      {}
func (OpAccess) isOp()      {}
func (OpCreate) isOp()      {}
func (OpInterrupt) isOp()   {}
func (OpBMap) isOp()        {}
func (OpDestroy) isOp()     {}
func (OpSetVolName) isOp()  {}
func (OpGetXTimes) isOp()   {}
func (OpExchange) isOp()    {}
