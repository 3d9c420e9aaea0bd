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

//go:build !unix

package transport

import (
	"errors"
	"net"
	"time"
)

// No MSG_DONTWAIT here; the shortest practical wait stands in for it
const nonBlockingWait time.Duration = time.Millisecond

func (socket *Socket) receiveNow(buf []byte) (int, *net.UDPAddr, error) {
	read, from, err := socket.ReceiveTimeout(buf, nonBlockingWait)
	if errors.Is(err, ErrorTimeout) {
		return 0, nil, ErrorWouldBlock
	}

	return read, from, err
}
