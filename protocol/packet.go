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

// This file describes the general packet structure and provides methods to work with them before|after the transportation

// General tagged packet structure:
// (packet header, 1 byte)(size of the body, 4 bytes big-endian)(packet body)

package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Internal representation of a control packet before|after the transportation
type Packet struct {
	Header Header
	Body   []byte
}

// Size of the tagged header part: 1 byte of header and 4 bytes of body size
const TAGGEDHEADERSIZE uint = 5

var (
	ErrorNotPacketBytes        error = fmt.Errorf("not packet bytes")
	ErrorExceededMaxPacketsize error = fmt.Errorf("the packet is too big")
	ErrorUnexpectedPacket      error = fmt.Errorf("unexpected packet")
)

// Returns a size of the given packet as if it would be sent in a tagged form
func (packet *Packet) Size() uint {
	return TAGGEDHEADERSIZE + uint(len(packet.Body))
}

// Converts given packet struct into ready-to-transfer tagged bytes
func (packet *Packet) ToBytes(maxSize uint) ([]byte, error) {
	if packet.Size() > maxSize {
		return nil, ErrorExceededMaxPacketsize
	}

	packetBuffer := new(bytes.Buffer)
	packetBuffer.WriteByte(byte(packet.Header))

	bodySize := uint32(len(packet.Body))
	err := binary.Write(packetBuffer, binary.BigEndian, &bodySize)
	if err != nil {
		return nil, err
	}

	packetBuffer.Write(packet.Body)

	return packetBuffer.Bytes(), nil
}

// Converts tagged packet bytes into Packet struct. One datagram is exactly one
// packet, so the declared body size has to cover the rest of packetBytes
func BytesToPacket(packetBytes []byte) (*Packet, error) {
	if uint(len(packetBytes)) < TAGGEDHEADERSIZE {
		return nil, ErrorNotPacketBytes
	}

	header := Header(packetBytes[0])
	if header < HeaderHello || header > HeaderNotAvailable {
		return nil, ErrorNotPacketBytes
	}

	bodySize := binary.BigEndian.Uint32(packetBytes[1:TAGGEDHEADERSIZE])
	if uint64(bodySize) != uint64(len(packetBytes))-uint64(TAGGEDHEADERSIZE) {
		return nil, ErrorNotPacketBytes
	}

	body := make([]byte, bodySize)
	copy(body, packetBytes[TAGGEDHEADERSIZE:TAGGEDHEADERSIZE+uint(bodySize)])

	return &Packet{
		Header: header,
		Body:   body,
	}, nil
}
