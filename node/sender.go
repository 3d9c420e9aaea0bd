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
	"io"
	"time"

	"github.com/Unbewohnte/vidcat/protocol"
)

// Pushes the file to the peer chunk by chunk. There is no begin or end marker
// and nothing is ever acknowledged
type sender struct {
	node      *Node
	sess      *session
	framer    *protocol.RTPFramer // nil unless RTP framing is on
	chunkSize uint
	pacing    time.Duration
}

func newSender(node *Node, sess *session) *sender {
	sender := sender{
		node:      node,
		sess:      sess,
		chunkSize: node.options.MaxDatagramSize,
		pacing:    node.options.ServerSide.Pacing,
	}

	if node.options.RTPFraming {
		sender.framer = protocol.NewRTPFramer(sess.ssrc(), sess.initialSequence())
		// the whole RTP packet has to fit into one datagram
		sender.chunkSize -= protocol.RTPHEADERSIZE
	}

	return &sender
}

// Sends everything content has, in order, one datagram per chunk, sleeping
// for the pacing delay after each one. Returns after the last chunk; a failed
// send leaves the peer with whatever it has got so far
func (sender *sender) run(content io.Reader, path string) (TransferStats, error) {
	var stats TransferStats
	started := time.Now()

	chunk := make([]byte, sender.chunkSize)
	var reportedMB uint64 = 0
	for {
		read, err := io.ReadFull(content, chunk)
		if read > 0 {
			sendErr := sender.send(chunk[:read])
			if sendErr != nil {
				stats.Duration = time.Since(started)
				return stats, sendErr
			}

			stats.Bytes += uint64(read)
			stats.Datagrams++

			if stats.Bytes/(1024*1024) > reportedMB {
				reportedMB = stats.Bytes / (1024 * 1024)
				sender.node.verbosef(sender.sess, "%d MB sent...\n", reportedMB)
			}

			if sender.pacing > 0 {
				time.Sleep(sender.pacing)
			}
		}

		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			stats.Duration = time.Since(started)
			return stats, &IOError{Op: "read", Path: path, Err: err}
		}
	}

	stats.Duration = time.Since(started)

	return stats, nil
}

func (sender *sender) send(chunk []byte) error {
	datagram := chunk
	if sender.framer != nil {
		var err error
		datagram, err = sender.framer.Wrap(chunk)
		if err != nil {
			return err
		}
	}

	_, err := sender.node.socket.Send(sender.sess.peer, datagram)

	return err
}
