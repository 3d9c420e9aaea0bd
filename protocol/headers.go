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

// This file describes various headers of the protocol and how to use them
package protocol

import "fmt"

// Header tells what kind of a control message the packet is.
// On the wire it is used only by the tagged codec; the legacy codec
// infers it from the literal and the step of the handshake
type Header uint8

// Headers

//// In the following examples (len) is 4 bytes long big-endian binary encoded uint32,
//// only the tagged representation is shown

// HELLO.
// Sent by client as the first message of a session.
// The body is a free-form greeting that is not validated by server.
// ie: (HELLO)(len)Hello server.
const HeaderHello Header = 1

// HELLOREPLY.
// Server`s answer to HELLO. From now on the client knows that server is alive.
// ie: (HELLOREPLY)(len)Hello client.
const HeaderHelloReply Header = 2

// CATALOGREQUEST.
// Sent by client after HELLOREPLY to ask for the list of available items.
// The body is empty.
// ie: (CATALOGREQUEST)(len)
const HeaderCatalogRequest Header = 3

// CATALOG.
// Server`s answer to CATALOGREQUEST. The body contains newline-terminated names.
// ie: (CATALOG)(len)clip.mkv\nmovie.mkv\n
const HeaderCatalog Header = 4

// EMPTY.
// Sent by server instead of CATALOG when there is nothing to offer or the directory
// is not accessible. The session ends right after.
// ie: (EMPTY)(len)
const HeaderEmpty Header = 5

// SELECTION.
// Sent by client. The body contains the exact name of the chosen item.
// After sending it the client treats every incoming datagram as file content
// (except for the possible NOTAVAILABLE).
// ie: (SELECTION)(len)clip.mkv
const HeaderSelection Header = 6

// NOTAVAILABLE.
// Sent by server when the selected item could not be opened. The session ends right after.
// ie: (NOTAVAILABLE)(len)
const HeaderNotAvailable Header = 7

func (header Header) String() string {
	switch header {
	case HeaderHello:
		return "HELLO"
	case HeaderHelloReply:
		return "HELLOREPLY"
	case HeaderCatalogRequest:
		return "CATALOGREQUEST"
	case HeaderCatalog:
		return "CATALOG"
	case HeaderEmpty:
		return "EMPTY"
	case HeaderSelection:
		return "SELECTION"
	case HeaderNotAvailable:
		return "NOTAVAILABLE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(header))
	}
}

// Whether a packet with the given header can be received when the other one was expected.
// The only branching step is the catalog one: server answers with either CATALOG or EMPTY
func (expected Header) accepts(got Header) bool {
	if expected == got {
		return true
	}

	return expected == HeaderCatalog && got == HeaderEmpty
}
