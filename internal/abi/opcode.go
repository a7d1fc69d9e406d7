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

// Package abi defines the fixed-layout structs and opcode numbers of the
// FUSE kernel wire protocol. Every type here has an exactly fixed size and
// field order matching the host kernel ABI; nothing in this package
// allocates or blocks.
package abi

// Opcode identifies the kind of a kernel request. It is decoded from the
// raw uint32 on the wire via ParseOpcode, which is a total function: every
// unrecognized value reports ok == false, never a guessed variant.
type Opcode uint32

// Kernel opcodes, matching the numbering the Linux FUSE ABI has used since
// protocol 7.1. The macOS-only trio (SetVolName/GetXTimes/Exchange) use the
// osxfuse/macFUSE extension range and are only ever sent by a macOS kernel.
const (
	OpLookup      Opcode = 1
	OpForget      Opcode = 2
	OpGetAttr     Opcode = 3
	OpSetAttr     Opcode = 4
	OpReadLink    Opcode = 5
	OpSymLink     Opcode = 6
	OpMkNod       Opcode = 8
	OpMkDir       Opcode = 9
	OpUnlink      Opcode = 10
	OpRmDir       Opcode = 11
	OpRename      Opcode = 12
	OpLink        Opcode = 13
	OpOpen        Opcode = 14
	OpRead        Opcode = 15
	OpWrite       Opcode = 16
	OpStatFs      Opcode = 17
	OpRelease     Opcode = 18
	OpFSync       Opcode = 20
	OpSetXAttr    Opcode = 21
	OpGetXAttr    Opcode = 22
	OpListXAttr   Opcode = 23
	OpRemoveXAttr Opcode = 24
	OpFlush       Opcode = 25
	OpInit        Opcode = 26
	OpOpenDir     Opcode = 27
	OpReadDir     Opcode = 28
	OpReleaseDir  Opcode = 29
	OpFSyncDir    Opcode = 30
	OpGetLk       Opcode = 31
	OpSetLk       Opcode = 32
	OpSetLkW      Opcode = 33
	OpAccess      Opcode = 34
	OpCreate      Opcode = 35
	OpInterrupt   Opcode = 36
	OpBMap        Opcode = 37
	OpDestroy     Opcode = 38

	OpSetVolName Opcode = 61
	OpGetXTimes  Opcode = 62
	OpExchange   Opcode = 63
)

var knownOpcodes = map[Opcode]bool{
	OpLookup: true, OpForget: true, OpGetAttr: true, OpSetAttr: true,
	OpReadLink: true, OpSymLink: true, OpMkNod: true, OpMkDir: true,
	OpUnlink: true, OpRmDir: true, OpRename: true, OpLink: true,
	OpOpen: true, OpRead: true, OpWrite: true, OpStatFs: true,
	OpRelease: true, OpFSync: true, OpSetXAttr: true, OpGetXAttr: true,
	OpListXAttr: true, OpRemoveXAttr: true, OpFlush: true, OpInit: true,
	OpOpenDir: true, OpReadDir: true, OpReleaseDir: true, OpFSyncDir: true,
	OpGetLk: true, OpSetLk: true, OpSetLkW: true, OpAccess: true,
	OpCreate: true, OpInterrupt: true, OpBMap: true, OpDestroy: true,
	OpSetVolName: true, OpGetXTimes: true, OpExchange: true,
}

// ParseOpcode decodes a raw wire opcode value. Unknown values never map
// silently to a variant: ok is false for anything not in the closed set
// above.
func ParseOpcode(raw uint32) (op Opcode, ok bool) {
	op = Opcode(raw)
	ok = knownOpcodes[op]
	return
}
