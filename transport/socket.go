/*
vidcat - UDP video catalog and transfer utility.
Copyright (C) 2021,2022  Kasyanov Nikolay Alexeyevich (Unbewohnte)

This file is a part of vidcat

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// UDP endpoint used by both sides of a session
package transport

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/net/ipv4"

	"github.com/Unbewohnte/vidcat/addr"
)

// How Receive waits for a datagram
type Mode int

const (
	// wait until a datagram arrives or the socket is closed
	Blocking Mode = iota
	// return ErrorWouldBlock right away if nothing is queued
	NonBlocking
)

var (
	ErrorTimeout    error = fmt.Errorf("no datagram within the timeout")
	ErrorWouldBlock error = fmt.Errorf("no datagram queued")
	ErrorNoPeer     error = fmt.Errorf("no peer address to send to")
)

// Any failure of the socket itself. Fatal to the session that owns the socket
type TransportError struct {
	Op  string
	Err error
}

func (err *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %s", err.Op, err.Err)
}

func (err *TransportError) Unwrap() error {
	return err.Err
}

// Socket-level settings applied right after creation. Zero values leave the system defaults
type Options struct {
	ReadBufferSize  int
	WriteBufferSize int
	TOS             int // IP type-of-service (DSCP << 2)
	TTL             int // unicast hop limit
}

// One UDP endpoint. The peer is only a logical one: the socket is never connected
// at the system level, so datagrams from any source can be read
type Socket struct {
	conn       *net.UDPConn
	packetConn *ipv4.PacketConn
	peer       *net.UDPAddr
	batch      []ipv4.Message
}

// Binds a socket on every local interface on the given port (0 for any free one)
func Listen(port uint, options *Options) (*Socket, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: int(port)})
	if err != nil {
		return nil, &TransportError{Op: "bind", Err: err}
	}

	return newSocket(conn, nil, options)
}

// Binds an ephemeral socket and remembers host:port as its peer
func Dial(host string, port uint, options *Options) (*Socket, error) {
	peer, err := addr.Resolve(host, port)
	if err != nil {
		return nil, &TransportError{Op: "resolve", Err: err}
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero})
	if err != nil {
		return nil, &TransportError{Op: "bind", Err: err}
	}

	return newSocket(conn, peer, options)
}

func newSocket(conn *net.UDPConn, peer *net.UDPAddr, options *Options) (*Socket, error) {
	socket := Socket{
		conn:       conn,
		packetConn: ipv4.NewPacketConn(conn),
		peer:       peer,
		batch:      make([]ipv4.Message, 1),
	}

	err := socket.apply(options)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &socket, nil
}

func (socket *Socket) apply(options *Options) error {
	if options == nil {
		return nil
	}

	if options.ReadBufferSize > 0 {
		err := socket.conn.SetReadBuffer(options.ReadBufferSize)
		if err != nil {
			return &TransportError{Op: "set read buffer", Err: err}
		}
	}

	if options.WriteBufferSize > 0 {
		err := socket.conn.SetWriteBuffer(options.WriteBufferSize)
		if err != nil {
			return &TransportError{Op: "set write buffer", Err: err}
		}
	}

	if options.TOS > 0 {
		err := socket.packetConn.SetTOS(options.TOS)
		if err != nil {
			return &TransportError{Op: "set tos", Err: err}
		}
	}

	if options.TTL > 0 {
		err := socket.packetConn.SetTTL(options.TTL)
		if err != nil {
			return &TransportError{Op: "set ttl", Err: err}
		}
	}

	return nil
}

// The peer given to Dial, nil for listening sockets
func (socket *Socket) Peer() *net.UDPAddr {
	return socket.peer
}

func (socket *Socket) LocalAddr() *net.UDPAddr {
	return socket.conn.LocalAddr().(*net.UDPAddr)
}

// Sends b as exactly one datagram
func (socket *Socket) Send(peer *net.UDPAddr, b []byte) (int, error) {
	if peer == nil {
		return 0, &TransportError{Op: "send", Err: ErrorNoPeer}
	}

	sent, err := socket.conn.WriteToUDP(b, peer)
	if err != nil {
		return sent, &TransportError{Op: "send", Err: err}
	}

	return sent, nil
}

// Reads exactly one datagram into buf. A datagram bigger than buf is truncated by the system
func (socket *Socket) Receive(buf []byte, mode Mode) (int, *net.UDPAddr, error) {
	err := socket.conn.SetReadDeadline(time.Time{})
	if err != nil {
		return 0, nil, &TransportError{Op: "receive", Err: err}
	}

	if mode == NonBlocking {
		return socket.receiveNow(buf)
	}

	read, from, err := socket.conn.ReadFromUDP(buf)
	if err != nil {
		return 0, nil, &TransportError{Op: "receive", Err: err}
	}

	return read, from, nil
}

// Same as a blocking Receive, but gives up with ErrorTimeout after timeout
func (socket *Socket) ReceiveTimeout(buf []byte, timeout time.Duration) (int, *net.UDPAddr, error) {
	err := socket.conn.SetReadDeadline(time.Now().Add(timeout))
	if err != nil {
		return 0, nil, &TransportError{Op: "receive", Err: err}
	}

	read, from, err := socket.conn.ReadFromUDP(buf)
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return 0, nil, ErrorTimeout
	}
	if err != nil {
		return 0, nil, &TransportError{Op: "receive", Err: err}
	}

	return read, from, nil
}

func (socket *Socket) Close() error {
	return socket.conn.Close()
}
