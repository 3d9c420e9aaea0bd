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
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/Unbewohnte/vidcat/addr"
	"github.com/Unbewohnte/vidcat/checksum"
	"github.com/Unbewohnte/vidcat/fsys"
	"github.com/Unbewohnte/vidcat/protocol"
	"github.com/Unbewohnte/vidcat/transport"
)

// Server and client in one type !
// One node runs exactly one session and then has to be thrown away
type Node struct {
	options *NodeOptions
	socket  *transport.Socket
	codec   protocol.Codec
	output  io.Writer
	stats   TransferStats
}

// Creates a new either a serving or receiving node with specified options.
// The socket is bound right away, so LocalAddr is known before Start
func NewNode(options *NodeOptions) (*Node, error) {
	nodeOptions := *options

	if nodeOptions.MaxDatagramSize == 0 {
		nodeOptions.MaxDatagramSize = protocol.MAXDATAGRAMSIZE
	}
	if nodeOptions.MaxDatagramSize < protocol.MINDATAGRAMSIZE {
		return nil, fmt.Errorf("datagram size must be at least %d bytes", protocol.MINDATAGRAMSIZE)
	}
	if nodeOptions.HandshakeTimeout <= 0 {
		nodeOptions.HandshakeTimeout = DEFAULTHANDSHAKETIMEOUT
	}
	if nodeOptions.Output == nil {
		nodeOptions.Output = os.Stdout
	}

	node := Node{
		options: &nodeOptions,
		output:  nodeOptions.Output,
	}

	switch nodeOptions.TaggedPackets {
	case true:
		node.codec = protocol.NewTaggedCodec(nodeOptions.MaxDatagramSize)
	case false:
		node.codec = protocol.NewLegacyCodec(nodeOptions.MaxDatagramSize)
	}

	var err error
	if nodeOptions.IsSending {
		// serving node preparation
		if nodeOptions.ServerSide == nil {
			return nil, fmt.Errorf("no server side options")
		}

		serverSide := *nodeOptions.ServerSide
		if serverSide.ServingPath == "" {
			serverSide.ServingPath = DEFAULTSERVINGPATH
		}
		if serverSide.Pacing < 0 {
			serverSide.Pacing = 0
		}
		if serverSide.SelectionTimeout < 0 {
			serverSide.SelectionTimeout = 0
		}
		nodeOptions.ServerSide = &serverSide

		node.socket, err = transport.Listen(nodeOptions.WorkingPort, nodeOptions.Socket)
		if err != nil {
			return nil, err
		}
	} else {
		// receiving node preparation
		if nodeOptions.ClientSide == nil {
			return nil, fmt.Errorf("no client side options")
		}

		clientSide := *nodeOptions.ClientSide
		if clientSide.DownloadsFolderPath == "" {
			clientSide.DownloadsFolderPath = "."
		}
		if clientSide.InactivityThreshold <= 0 {
			switch clientSide.Discipline {
			case DisciplinePolling:
				clientSide.InactivityThreshold = DEFAULTPOLLINGINACTIVITY
			default:
				clientSide.InactivityThreshold = DEFAULTBLOCKINGINACTIVITY
			}
		}
		if clientSide.PollInterval <= 0 {
			clientSide.PollInterval = DEFAULTPOLLINTERVAL
		}
		if clientSide.Chooser == nil {
			clientSide.Chooser = &ConsoleChooser{Input: os.Stdin, Output: nodeOptions.Output}
		}
		nodeOptions.ClientSide = &clientSide

		err = os.MkdirAll(clientSide.DownloadsFolderPath, os.ModePerm)
		if err != nil {
			return nil, &IOError{Op: "create", Path: clientSide.DownloadsFolderPath, Err: err}
		}

		if nodeOptions.WorkingPort == 0 {
			nodeOptions.WorkingPort = DEFAULTPORT
		}

		node.socket, err = transport.Dial(clientSide.ConnectionAddr, nodeOptions.WorkingPort, nodeOptions.Socket)
		if err != nil {
			return nil, err
		}
	}

	return &node, nil
}

// Local address of the node`s socket
func (node *Node) LocalAddr() *net.UDPAddr {
	return node.socket.LocalAddr()
}

// Counters of the last transfer
func (node *Node) Stats() TransferStats {
	return node.stats
}

// Closes the socket. Any blocked Start returns with a transport error
func (node *Node) Close() error {
	return node.socket.Close()
}

// Starts the node in either serving or receiving state and performs the whole session.
// The socket is closed afterwards regardless of the result
func (node *Node) Start() error {
	defer node.socket.Close()

	switch node.options.IsSending {
	case true:
		return node.serve()
	default:
		return node.receive()
	}
}

func (node *Node) printf(format string, a ...interface{}) {
	fmt.Fprintf(node.output, format, a...)
}

func (node *Node) logf(sess *session, format string, a ...interface{}) {
	fmt.Fprintf(node.output, "[%s] "+format, append([]interface{}{sess.tag()}, a...)...)
}

func (node *Node) verbosef(sess *session, format string, a ...interface{}) {
	if node.options.VerboseOutput {
		node.logf(sess, format, a...)
	}
}

// SERVER
func (node *Node) serve() error {
	localIP, err := addr.GetLocal()
	if err != nil {
		localIP = "0.0.0.0"
	}
	node.printf("Waiting on %s:%d...\n", localIP, node.LocalAddr().Port)

	sess := newSession(nil)

	file, err := node.serverHandshake(sess)
	if err != nil {
		return err
	}
	defer file.Close()

	node.logf(sess, "Sending \"%s\" (%.2f MB) to %s\n", file.Name, float32(file.Size)/1024/1024, sess.peer)

	stats, err := newSender(node, sess).run(file.Handler, file.Path)
	stats.Checksum = file.Checksum
	node.stats = stats
	if err != nil {
		return err
	}

	node.logf(sess, "Sent %.2f MB in %d datagrams (%s)\n| Checksum: %s\n", stats.MB(), stats.Datagrams, stats.Duration, stats.Checksum)

	return nil
}

// CLIENT
func (node *Node) receive() error {
	clientSide := node.options.ClientSide

	sess := newSession(node.socket.Peer())
	node.logf(sess, "Hello to server %s...\n", sess.peer)

	catalog, err := node.requestCatalog(sess)
	if err != nil {
		return err
	}

	choice, err := clientSide.Chooser.Choose(catalog)
	if err != nil {
		return err
	}
	if choice < 0 || choice >= len(catalog) {
		return fmt.Errorf("%w: %d is not in 1..%d", ErrorInvalidChoice, choice+1, len(catalog))
	}
	name := catalog[choice]

	outputPath, err := fsys.JoinName(clientSide.DownloadsFolderPath, name)
	if err != nil {
		return fmt.Errorf("%w: server offered %s", ErrorProtocolViolation, err)
	}

	output, err := fsys.CreateFile(outputPath)
	if err != nil {
		return &IOError{Op: "create", Path: outputPath, Err: err}
	}
	defer output.Close()

	node.logf(sess, "Requesting video %s...\n", name)

	err = node.requestSelection(sess, name)
	if err != nil {
		output.Close()
		os.Remove(output.Path)
		return err
	}

	stats, err := newReceiver(node, sess, output.Handler, output.Path).run()

	closeErr := output.Close()
	if errors.Is(err, ErrorSelectionNotFound) {
		os.Remove(output.Path)
	}
	if err == nil && closeErr != nil {
		err = &IOError{Op: "close", Path: output.Path, Err: closeErr}
	}

	node.stats = stats
	if err != nil {
		return err
	}

	stats.Checksum, err = checksum.GetFileCheckSum(output.Path)
	if err != nil {
		return &IOError{Op: "checksum", Path: output.Path, Err: err}
	}
	node.stats = stats

	node.logf(sess, "Video streaming complete. Received %.2f MB in %d datagrams (%s)\n| Checksum: %s\n", stats.MB(), stats.Datagrams, stats.Duration, stats.Checksum)
	if stats.Lost != 0 || stats.Reordered != 0 {
		node.logf(sess, "| %d datagrams lost, %d out of order\n", stats.Lost, stats.Reordered)
	}

	return nil
}
