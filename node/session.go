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

package node

import (
	"encoding/binary"
	"net"
	"time"

	"github.com/google/uuid"
)

// What the current datagrams are: control packets or file content.
// Both sides switch on their own bookkeeping, never on the contents of a datagram
type phase int

const (
	phaseHandshake phase = iota
	phaseStreaming
)

// Everything one transfer needs between the first greeting and the end of the stream
type session struct {
	id       uuid.UUID
	peer     *net.UDPAddr // whoever appeared on the socket last
	phase    phase
	exchange uint // handshake packets sent and received so far
	started  time.Time
}

func newSession(peer *net.UDPAddr) *session {
	return &session{
		id:      uuid.New(),
		peer:    peer,
		phase:   phaseHandshake,
		started: time.Now(),
	}
}

// Short id to tell sessions apart in the output
func (sess *session) tag() string {
	return sess.id.String()[:8]
}

// SSRC for RTP framing, taken from the session id
func (sess *session) ssrc() uint32 {
	return binary.BigEndian.Uint32(sess.id[:4])
}

// Initial RTP sequence number, also taken from the session id
func (sess *session) initialSequence() uint16 {
	return binary.BigEndian.Uint16(sess.id[4:6])
}

// Counters of one stream, for both sides
type TransferStats struct {
	Bytes     uint64
	Datagrams uint64
	Lost      uint64 // RTP framing only
	Reordered uint64 // RTP framing only
	Duration  time.Duration
	Checksum  string
}

// Bytes as megabytes for the output
func (stats TransferStats) MB() float32 {
	return float32(stats.Bytes) / 1024 / 1024
}
