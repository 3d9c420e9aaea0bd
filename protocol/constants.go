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

// This file contains global constants of the protocol
package protocol

// MAXDATAGRAMSIZE.
// Default size of one datagram (control message or a chunk of a file) in bytes.
// 512 is also in use by older peers; both sides must agree on the value
// or the receiving side will get truncated datagrams
const MAXDATAGRAMSIZE uint = 1024

// MINDATAGRAMSIZE.
// The smallest datagram size the node agrees to work with. Anything smaller
// cannot carry a tagged envelope with the longest literal of the handshake
const MINDATAGRAMSIZE uint = 64

// Literals of the handshake. Those are sent as-is (followed by a NUL byte) by the legacy codec
const (
	// Sent by client as the very first message
	GREETING string = "Hello server."

	// Server`s answer to the GREETING
	GREETINGREPLY string = "Hello client."

	// Sent by client to ask for the catalog. Must match exactly
	CATALOGREQUEST string = "Request video list"

	// Prepended to the name of the chosen item, ie: "Request clip.mkv"
	SELECTIONPREFIX string = "Request "

	// Sent by server instead of a catalog when there is nothing to offer
	EMPTYSENTINEL string = "Empty"

	// Sent by server when the requested item cannot be opened
	NOTAVAILABLESENTINEL string = "File Not Available"
)

// CATALOGDELIMITER.
// Separates (and terminates) names in a serialized catalog.
// ie: clip.mkv\nmovie.mkv\n
const CATALOGDELIMITER string = "\n"
