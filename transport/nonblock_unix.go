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

//go:build unix

package transport

import (
	"errors"
	"net"

	"golang.org/x/sys/unix"
)

// Reads one datagram with MSG_DONTWAIT, so an empty queue is reported instead of waited on
func (socket *Socket) receiveNow(buf []byte) (int, *net.UDPAddr, error) {
	message := &socket.batch[0]
	message.Buffers = [][]byte{buf}
	message.Addr = nil
	message.N = 0

	_, err := socket.packetConn.ReadBatch(socket.batch, unix.MSG_DONTWAIT)
	if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
		return 0, nil, ErrorWouldBlock
	}
	if err != nil {
		return 0, nil, &TransportError{Op: "receive", Err: err}
	}

	from, _ := message.Addr.(*net.UDPAddr)

	return message.N, from, nil
}
