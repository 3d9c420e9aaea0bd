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

// The three steps of the handshake, one request and one reply each:
// HELLO -> HELLOREPLY; CATALOGREQUEST -> CATALOG|EMPTY; SELECTION -> (NOTAVAILABLE)
package node

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/Unbewohnte/vidcat/fsys"
	"github.com/Unbewohnte/vidcat/protocol"
	"github.com/Unbewohnte/vidcat/transport"
)

// Encodes and sends one packet to the session`s peer
func (node *Node) sendPacket(sess *session, packet protocol.Packet) error {
	datagram, err := node.codec.Encode(packet)
	if err != nil {
		return fmt.Errorf("could not encode %s: %w", packet.Header, err)
	}

	_, err = node.socket.Send(sess.peer, datagram)
	if err != nil {
		return err
	}

	sess.exchange++

	return nil
}

// Waits for one packet. A zero timeout waits forever. The sender of the
// datagram becomes the session`s peer
func (node *Node) receivePacket(sess *session, expected protocol.Header, timeout time.Duration) (*protocol.Packet, error) {
	buffer := make([]byte, node.options.MaxDatagramSize)

	var read int
	var from *net.UDPAddr
	var err error
	if timeout > 0 {
		read, from, err = node.socket.ReceiveTimeout(buffer, timeout)
	} else {
		read, from, err = node.socket.Receive(buffer, transport.Blocking)
	}
	if err != nil {
		return nil, fmt.Errorf("waiting for %s: %w", expected, err)
	}

	sess.peer = from
	sess.exchange++

	packet, err := node.codec.Decode(buffer[:read], expected)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrorProtocolViolation, err)
	}

	return packet, nil
}

// Server`s side of the handshake. Returns the opened file that was asked for
func (node *Node) serverHandshake(sess *session) (*fsys.File, error) {
	serverSide := node.options.ServerSide
	timeout := node.options.HandshakeTimeout

	// 1: greetings. Whoever greets first is served
	greeting, err := node.receivePacket(sess, protocol.HeaderHello, 0)
	if err != nil {
		return nil, err
	}
	node.logf(sess, "Client %s: %s\n", sess.peer, greeting.Body)

	err = node.sendPacket(sess, protocol.Packet{Header: protocol.HeaderHelloReply})
	if err != nil {
		return nil, err
	}

	// 2: catalog
	_, err = node.receivePacket(sess, protocol.HeaderCatalogRequest, timeout)
	if err != nil {
		return nil, err
	}

	names, err := fsys.ListFiles(serverSide.ServingPath, serverSide.Extension, serverSide.FollowSymlinks)
	if err == nil && len(names) == 0 {
		err = fmt.Errorf("nothing matches \"*%s\" in %s", serverSide.Extension, serverSide.ServingPath)
	}
	if err != nil {
		sendErr := node.sendPacket(sess, protocol.Packet{Header: protocol.HeaderEmpty})
		if sendErr != nil {
			return nil, sendErr
		}
		return nil, fmt.Errorf("%w: %s", ErrorCatalogEmpty, err)
	}

	serialized, err := protocol.Catalog(names).Serialize()
	if err != nil {
		return nil, err
	}

	node.logf(sess, "Sending video list (%d videos)...\n", len(names))

	err = node.sendPacket(sess, protocol.Packet{Header: protocol.HeaderCatalog, Body: []byte(serialized)})
	if errors.Is(err, protocol.ErrorExceededMaxPacketsize) {
		return nil, fmt.Errorf("the list of %d videos does not fit into one datagram: %w", len(names), err)
	}
	if err != nil {
		return nil, err
	}

	// 3: selection
	node.logf(sess, "Waiting for client to select video...\n")

	selection, err := node.receivePacket(sess, protocol.HeaderSelection, serverSide.SelectionTimeout)
	if err != nil {
		return nil, err
	}
	name := string(selection.Body)
	sess.phase = phaseStreaming

	file, err := node.openSelection(name)
	if err != nil {
		sendErr := node.sendPacket(sess, protocol.Packet{Header: protocol.HeaderNotAvailable})
		if sendErr != nil {
			return nil, sendErr
		}
		return nil, fmt.Errorf("%w: %q: %s", ErrorSelectionNotFound, name, err)
	}

	return file, nil
}

func (node *Node) openSelection(name string) (*fsys.File, error) {
	path, err := fsys.JoinName(node.options.ServerSide.ServingPath, name)
	if err != nil {
		return nil, err
	}

	file, err := fsys.GetFile(path)
	if err != nil {
		return nil, err
	}

	err = file.Open()
	if err != nil {
		return nil, err
	}

	return file, nil
}

// Client`s side of the first two steps
func (node *Node) requestCatalog(sess *session) (protocol.Catalog, error) {
	timeout := node.options.HandshakeTimeout

	// 1: greetings
	err := node.sendPacket(sess, protocol.Packet{Header: protocol.HeaderHello})
	if err != nil {
		return nil, err
	}

	reply, err := node.receivePacket(sess, protocol.HeaderHelloReply, timeout)
	if err != nil {
		return nil, err
	}
	node.logf(sess, "Server: %s\n", reply.Body)

	// 2: catalog
	node.logf(sess, "Requesting video list...\n")

	err = node.sendPacket(sess, protocol.Packet{Header: protocol.HeaderCatalogRequest})
	if err != nil {
		return nil, err
	}

	packet, err := node.receivePacket(sess, protocol.HeaderCatalog, timeout)
	if err != nil {
		return nil, err
	}

	if packet.Header == protocol.HeaderEmpty {
		return nil, fmt.Errorf("%w on the server", ErrorCatalogEmpty)
	}

	catalog, err := protocol.ParseCatalog(string(packet.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrorProtocolViolation, err)
	}

	return catalog, nil
}

// Client`s side of the last step. From now on every datagram is treated as
// file content; a refusal can only show up as the first of them
func (node *Node) requestSelection(sess *session, name string) error {
	err := node.sendPacket(sess, protocol.Packet{Header: protocol.HeaderSelection, Body: []byte(name)})
	if err != nil {
		return err
	}

	sess.phase = phaseStreaming

	return nil
}
