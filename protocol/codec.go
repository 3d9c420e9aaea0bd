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

// Codecs turning control packets into datagrams and back
package protocol

import (
	"bytes"
	"fmt"
	"strings"
)

// Codec converts handshake packets to datagram bytes and back.
// Decode is told what header is expected at the current step of the handshake,
// because the legacy wire format carries no tag at all
type Codec interface {
	Encode(packet Packet) ([]byte, error)
	Decode(datagram []byte, expected Header) (*Packet, error)
}

// LegacyCodec speaks the plain text form: every packet is a NUL-terminated literal
type LegacyCodec struct {
	MaxSize uint
}

func NewLegacyCodec(maxSize uint) *LegacyCodec {
	return &LegacyCodec{MaxSize: maxSize}
}

func (codec *LegacyCodec) Encode(packet Packet) ([]byte, error) {
	var text string
	switch packet.Header {
	case HeaderHello:
		text = GREETING
		if len(packet.Body) != 0 {
			text = string(packet.Body)
		}
	case HeaderHelloReply:
		text = GREETINGREPLY
		if len(packet.Body) != 0 {
			text = string(packet.Body)
		}
	case HeaderCatalogRequest:
		text = CATALOGREQUEST
	case HeaderCatalog:
		text = string(packet.Body)
	case HeaderEmpty:
		text = EMPTYSENTINEL
	case HeaderSelection:
		text = SELECTIONPREFIX + string(packet.Body)
	case HeaderNotAvailable:
		text = NOTAVAILABLESENTINEL
	default:
		return nil, fmt.Errorf("%w: %s", ErrorNotPacketBytes, packet.Header)
	}

	// NUL-terminated, the way C peers expect it
	if uint(len(text))+1 > codec.MaxSize {
		return nil, ErrorExceededMaxPacketsize
	}

	datagram := make([]byte, len(text)+1)
	copy(datagram, text)

	return datagram, nil
}

func (codec *LegacyCodec) Decode(datagram []byte, expected Header) (*Packet, error) {
	text := datagram
	if nul := bytes.IndexByte(datagram, 0); nul != -1 {
		text = datagram[:nul]
	}

	switch expected {
	case HeaderHello, HeaderHelloReply:
		// greetings are not validated
		return &Packet{Header: expected, Body: copyBytes(text)}, nil

	case HeaderCatalog:
		if string(text) == EMPTYSENTINEL {
			return &Packet{Header: HeaderEmpty}, nil
		}
		return &Packet{Header: HeaderCatalog, Body: copyBytes(text)}, nil

	case HeaderSelection:
		if !bytes.HasPrefix(text, []byte(SELECTIONPREFIX)) {
			return nil, unexpected(expected, text)
		}
		return &Packet{Header: HeaderSelection, Body: copyBytes(text[len(SELECTIONPREFIX):])}, nil

	case HeaderCatalogRequest:
		if string(text) != CATALOGREQUEST {
			return nil, unexpected(expected, text)
		}
	case HeaderEmpty:
		if string(text) != EMPTYSENTINEL {
			return nil, unexpected(expected, text)
		}
	case HeaderNotAvailable:
		if string(text) != NOTAVAILABLESENTINEL {
			return nil, unexpected(expected, text)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrorNotPacketBytes, expected)
	}

	return &Packet{Header: expected}, nil
}

// TaggedCodec wraps every packet into a (header)(body size)(body) envelope.
// The sequence of the handshake is the same as with the legacy codec
type TaggedCodec struct {
	MaxSize uint
}

func NewTaggedCodec(maxSize uint) *TaggedCodec {
	return &TaggedCodec{MaxSize: maxSize}
}

func (codec *TaggedCodec) Encode(packet Packet) ([]byte, error) {
	return packet.ToBytes(codec.MaxSize)
}

func (codec *TaggedCodec) Decode(datagram []byte, expected Header) (*Packet, error) {
	packet, err := BytesToPacket(datagram)
	if err != nil {
		return nil, err
	}

	if !expected.accepts(packet.Header) {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrorUnexpectedPacket, expected, packet.Header)
	}

	// sentinels carry no body or their own literal
	switch packet.Header {
	case HeaderEmpty:
		if len(packet.Body) != 0 && string(packet.Body) != EMPTYSENTINEL {
			return nil, unexpected(expected, packet.Body)
		}
	case HeaderNotAvailable:
		if len(packet.Body) != 0 && string(packet.Body) != NOTAVAILABLESENTINEL {
			return nil, unexpected(expected, packet.Body)
		}
	}

	return packet, nil
}

func unexpected(expected Header, text []byte) error {
	const maxShown = 32

	shown := string(text)
	if len(shown) > maxShown {
		shown = shown[:maxShown] + "..."
	}

	return fmt.Errorf("%w: expected %s, got %q", ErrorUnexpectedPacket, expected, strings.ToValidUTF8(shown, "?"))
}

func copyBytes(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
