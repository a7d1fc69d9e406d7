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

package peerwire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/hashicorp/go-msgpack/codec"
)

var mpHandle codec.MsgpackHandle

// ReadMessage reads one length-prefixed frame from r: a 4-byte big-endian
// length followed by exactly that many payload bytes.
func ReadMessage(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}

	n := binary.BigEndian.Uint32(lenBuf[:])
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// WriteMessage writes payload as one length-prefixed frame.
func WriteMessage(w io.Writer, payload []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))

	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// WriteMessageVector writes a single length-prefixed frame whose payload is
// the concatenation of bufs, without copying them into one buffer first.
// Against a *net.TCPConn this lowers to a single writev(2).
func WriteMessageVector(w io.Writer, bufs [][]byte) error {
	total := 0
	for _, b := range bufs {
		total += len(b)
	}

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(total))

	vec := make(net.Buffers, 0, len(bufs)+1)
	vec = append(vec, lenBuf[:])
	vec = append(vec, bufs...)

	_, err := vec.WriteTo(w)
	return err
}

// MarshalRequest encodes req as a tagged-union frame payload: one kind byte
// followed by the msgpack encoding of its fields.
func MarshalRequest(req Request) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(byte(req.requestKind()))

	enc := codec.NewEncoder(&buf, &mpHandle)
	if err := enc.Encode(req); err != nil {
		return nil, fmt.Errorf("peerwire: marshal request: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalRequest decodes a tagged-union frame payload produced by
// MarshalRequest.
func UnmarshalRequest(payload []byte) (Request, error) {
	if len(payload) < 1 {
		return nil, fmt.Errorf("peerwire: empty request payload")
	}
	kind := RequestKind(payload[0])
	body := payload[1:]
	dec := codec.NewDecoder(bytes.NewReader(body), &mpHandle)

	switch kind {
	case KindTurnOff:
		return TurnOff{}, nil
	case KindInvalidate:
		var r Invalidate
		if err := dec.Decode(&r); err != nil {
			return nil, err
		}
		return r, nil
	case KindCheckAvailable:
		var r CheckAvailable
		if err := dec.Decode(&r); err != nil {
			return nil, err
		}
		return r, nil
	case KindRead:
		var r Read
		if err := dec.Decode(&r); err != nil {
			return nil, err
		}
		return r, nil
	case KindLoadDir:
		var r LoadDir
		if err := dec.Decode(&r); err != nil {
			return nil, err
		}
		return r, nil
	case KindUpdateDir:
		var r UpdateDir
		if err := dec.Decode(&r); err != nil {
			return nil, err
		}
		return r, nil
	case KindRemoveDirEntry:
		var r RemoveDirEntry
		if err := dec.Decode(&r); err != nil {
			return nil, err
		}
		return r, nil
	case KindGetFileAttr:
		var r GetFileAttr
		if err := dec.Decode(&r); err != nil {
			return nil, err
		}
		return r, nil
	case KindPushFileAttr:
		var r PushFileAttr
		if err := dec.Decode(&r); err != nil {
			return nil, err
		}
		return r, nil
	case KindRename:
		var r Rename
		if err := dec.Decode(&r); err != nil {
			return nil, err
		}
		return r, nil
	case KindRemove:
		var r Remove
		if err := dec.Decode(&r); err != nil {
			return nil, err
		}
		return r, nil
	case KindGetInodeNum:
		return GetInodeNum{}, nil
	default:
		return nil, fmt.Errorf("peerwire: unknown request kind %d", kind)
	}
}

// MarshalResponse encodes resp the same way MarshalRequest encodes a
// request: one kind byte, then msgpack-encoded fields.
func MarshalResponse(resp Response) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(byte(resp.responseKind()))

	enc := codec.NewEncoder(&buf, &mpHandle)
	if err := enc.Encode(resp); err != nil {
		return nil, fmt.Errorf("peerwire: marshal response: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalResponse decodes a tagged-union frame payload produced by
// MarshalResponse.
func UnmarshalResponse(payload []byte) (Response, error) {
	if len(payload) < 1 {
		return nil, fmt.Errorf("peerwire: empty response payload")
	}
	kind := ResponseKind(payload[0])
	body := payload[1:]
	dec := codec.NewDecoder(bytes.NewReader(body), &mpHandle)

	switch kind {
	case KindAck:
		return Ack{}, nil
	case KindCheckAvailableResp:
		var r CheckAvailableResp
		if err := dec.Decode(&r); err != nil {
			return nil, err
		}
		return r, nil
	case KindLoadDirResp:
		var r LoadDirResp
		if err := dec.Decode(&r); err != nil {
			return nil, err
		}
		return r, nil
	case KindGetFileAttrResp:
		var r GetFileAttrResp
		if err := dec.Decode(&r); err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("peerwire: unknown response kind %d", kind)
	}
}

// WriteInodeNum writes v as a raw 4-byte big-endian integer, bypassing the
// tagged-union wrapper, per the GetInodeNum reply's fixed-size exception.
func WriteInodeNum(w io.Writer, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

// ReadInodeNum reads a raw 4-byte big-endian integer written by WriteInodeNum.
func ReadInodeNum(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}
