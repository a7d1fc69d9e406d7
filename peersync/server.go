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

// Package peersync is the inter-node metadata/cache synchronization
// server: one listener, one pinned acceptor goroutine, and one goroutine
// per remote peer connection dispatching against a metastore.Store and a
// ContentCache.
package peersync

import (
	"context"
	"fmt"
	"net"
	"runtime"
	"strconv"

	"github.com/jacobsa/syncutil"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/cloudfuse/clusternode/ferrors"
	"github.com/cloudfuse/clusternode/metastore"
	"github.com/cloudfuse/clusternode/peerwire"
)

// ContentCache is the out-of-scope collaborator a Server dispatches
// Invalidate/CheckAvailable/Read requests against. The blob-backed cache
// implementation lives outside this module; this interface is only the
// shape peersync needs.
type ContentCache interface {
	Invalidate(name []byte, index uint64)
	CheckAvailable(name []byte, index uint64) (block []byte, present bool)
	Read(name []byte, index uint64) [][]byte
}

// Server accepts peer connections on a bound TCP address and services the
// request variants of the peer wire protocol against a ContentCache and a
// metastore.Store.
type Server struct {
	ln     *net.TCPListener
	bindIP net.IP
	// selfDialIP is the address Close uses to dial itself, and the address
	// isLoopback compares an incoming connection's source against. It
	// equals bindIP, except when bindIP is unspecified (0.0.0.0), in which
	// case self-dialing has to target the loopback interface instead.
	selfDialIP net.IP
	cache      ContentCache
	store      metastore.Store
	logger     *logrus.Logger

	group    *errgroup.Group
	groupCtx context.Context

	// guard protects the small bit of server-local lifecycle state below;
	// everything else a dispatch handler touches lives in the store or the
	// cache and is guarded there.
	guard  syncutil.InvariantMutex
	closed bool // GUARDED_BY(guard)
}

// NewServer binds bindIP:bindPort and starts an acceptor goroutine pinned
// to its own OS thread, matching the dedicated-acceptor-thread shape of
// the protocol this implements. Remote peer connections are dispatched
// onto their own goroutine; the loopback shutdown connection is handled
// synchronously on the acceptor itself.
func NewServer(ctx context.Context, bindIP, bindPort string, cache ContentCache, store metastore.Store, logger *logrus.Logger) (*Server, error) {
	ip := net.ParseIP(bindIP)
	if ip == nil {
		return nil, fmt.Errorf("peersync: invalid bind address %q", bindIP)
	}

	port, err := strconv.Atoi(bindPort)
	if err != nil || port < 0 || port > 65535 {
		return nil, fmt.Errorf("peersync: invalid bind port %q", bindPort)
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	ln, err := net.ListenTCP("tcp", &net.TCPAddr{IP: ip, Port: port})
	if err != nil {
		return nil, fmt.Errorf("peersync: listen on %s:%s: %w", bindIP, bindPort, err)
	}

	selfDialIP := ip
	if ip.IsUnspecified() {
		selfDialIP = net.IPv4(127, 0, 0, 1)
	}

	group, groupCtx := errgroup.WithContext(ctx)

	s := &Server{
		ln:         ln,
		bindIP:     ip,
		selfDialIP: selfDialIP,
		cache:      cache,
		store:      store,
		logger:     logger,
		group:      group,
		groupCtx:   groupCtx,
	}
	s.guard = syncutil.NewInvariantMutex(s.checkInvariants)

	group.Go(s.accept)

	return s, nil
}

func (s *Server) checkInvariants() {
	// closed only ever transitions false -> true; nothing to cross-check
	// against other fields at this point.
}

// accept is the body of the pinned acceptor goroutine.
func (s *Server) accept() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer s.ln.Close()

	for {
		conn, err := s.ln.AcceptTCP()
		if err != nil {
			return err
		}

		if s.isLoopback(conn) {
			shutdown, err := s.handleLoopback(conn)
			if err != nil {
				s.logger.WithError(err).Error("peersync: loopback connection violated shutdown protocol")
				return err
			}
			if shutdown {
				return nil
			}
			continue
		}

		s.group.Go(func() error {
			s.handleConn(conn)
			return nil
		})
	}
}

// isLoopback reports whether conn arrived from the owner dialing its own
// bind address, the only peer allowed to send TurnOff. A genuine remote
// peer's source address never equals the bind address; Close's self-dial
// always routes over the loopback interface and arrives with exactly that
// address as its source.
func (s *Server) isLoopback(conn *net.TCPConn) bool {
	remote, ok := conn.RemoteAddr().(*net.TCPAddr)
	if !ok {
		return false
	}
	return remote.IP.Equal(s.selfDialIP)
}

// handleLoopback reads exactly one request from the owner's shutdown
// connection. Anything other than TurnOff is a programming error in the
// owner and is fatal to the server instance.
func (s *Server) handleLoopback(conn *net.TCPConn) (shutdown bool, err error) {
	defer conn.Close()

	payload, err := peerwire.ReadMessage(conn)
	if err != nil {
		return false, ferrors.NewPeerError(ferrors.FramingError, "loopback-read", err)
	}

	req, err := peerwire.UnmarshalRequest(payload)
	if err != nil {
		return false, ferrors.NewPeerError(ferrors.DecodeError, "loopback-decode", err)
	}

	if _, ok := req.(peerwire.TurnOff); !ok {
		return false, ferrors.NewPeerError(ferrors.DispatchError, "loopback-dispatch",
			fmt.Errorf("unexpected request %T on loopback connection", req))
	}

	if err := s.writeAck(conn); err != nil {
		return false, err
	}

	s.guard.Lock()
	s.closed = true
	s.guard.Unlock()

	return true, nil
}

// handleConn services exactly one request from a remote peer connection
// and then closes it; the protocol is one request/reply per connection.
func (s *Server) handleConn(conn *net.TCPConn) {
	defer conn.Close()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("peersync: recovered from panic dispatching connection from %s: %v", conn.RemoteAddr(), r)
		}
	}()

	if err := s.dispatch(conn); err != nil {
		s.logger.WithError(err).WithField("remote", conn.RemoteAddr()).Warn("peersync: connection error")
	}
}

// Close sends TurnOff to the server's own bind address and waits for the
// acceptor goroutine, and every dispatched connection goroutine, to
// return. It is the explicit-Close idiom standing in for a destructor.
func (s *Server) Close(ctx context.Context) error {
	addr := s.ln.Addr().(*net.TCPAddr)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(s.selfDialIP.String(), strconv.Itoa(addr.Port)))
	if err != nil {
		return fmt.Errorf("peersync: close: dial self: %w", err)
	}
	defer conn.Close()

	payload, err := peerwire.MarshalRequest(peerwire.TurnOff{})
	if err != nil {
		return fmt.Errorf("peersync: close: marshal turnoff: %w", err)
	}
	if err := peerwire.WriteMessage(conn, payload); err != nil {
		return fmt.Errorf("peersync: close: send turnoff: %w", err)
	}

	ackPayload, err := peerwire.ReadMessage(conn)
	if err != nil {
		return fmt.Errorf("peersync: close: read turnoff ack: %w", err)
	}
	if _, err := peerwire.UnmarshalResponse(ackPayload); err != nil {
		return fmt.Errorf("peersync: close: decode turnoff ack: %w", err)
	}

	return s.group.Wait()
}

// Addr returns the server's bound listen address, mainly so Close/tests
// can dial it without the caller tracking the port separately.
func (s *Server) Addr() *net.TCPAddr {
	return s.ln.Addr().(*net.TCPAddr)
}
