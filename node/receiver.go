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

// Receiving side of the stream. The stream has no end marker, so the only way
// to tell it is over is silence: once nothing has arrived for the inactivity
// threshold, the transfer is considered done. A sender that is finished and a
// sender that is stalled or unreachable look exactly the same from here
package node

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Unbewohnte/vidcat/protocol"
	"github.com/Unbewohnte/vidcat/transport"
)

type receiver struct {
	node         *Node
	sess         *session
	output       io.Writer
	outputPath   string
	discipline   Discipline
	threshold    time.Duration
	pollInterval time.Duration
	unframer     *protocol.RTPUnframer // nil unless RTP framing is on
	lastReceipt  time.Time
}

func newReceiver(node *Node, sess *session, output io.Writer, outputPath string) *receiver {
	clientSide := node.options.ClientSide

	receiver := receiver{
		node:         node,
		sess:         sess,
		output:       output,
		outputPath:   outputPath,
		discipline:   clientSide.Discipline,
		threshold:    clientSide.InactivityThreshold,
		pollInterval: clientSide.PollInterval,
	}

	if node.options.RTPFraming {
		receiver.unframer = &protocol.RTPUnframer{}
	}

	return &receiver
}

// Drains the socket into the output until the stream goes silent.
// Payloads are written in arrival order. On a transport or write error
// everything written so far stays in the output
func (receiver *receiver) run() (TransferStats, error) {
	var stats TransferStats

	if receiver.sess.phase != phaseStreaming {
		return stats, fmt.Errorf("%w: stream started before the selection was made", ErrorProtocolViolation)
	}
	receiver.node.verbosef(receiver.sess, "Handshake done in %d packets, receiving...\n", receiver.sess.exchange)

	buffer := make([]byte, receiver.node.options.MaxDatagramSize)
	started := time.Now()
	receiver.lastReceipt = started
	first := true
	for {
		// draining
		read, err := receiver.next(buffer)
		if errors.Is(err, errorInactive) {
			// done
			break
		}
		if err != nil {
			receiver.finish(&stats, started)
			return stats, err
		}
		receiver.lastReceipt = time.Now()

		datagram := buffer[:read]

		// the server answers a selection it cannot serve with a sentinel instead of data
		if first {
			first = false
			if receiver.isRefusal(datagram) {
				receiver.finish(&stats, started)
				return stats, fmt.Errorf("%w: server answered %q", ErrorSelectionNotFound, protocol.NOTAVAILABLESENTINEL)
			}
		}

		payload := datagram
		if receiver.unframer != nil {
			payload, err = receiver.unframer.Unwrap(datagram)
			if err != nil {
				receiver.node.verbosef(receiver.sess, "Skipping a datagram that is not RTP: %s\n", err)
				continue
			}
		}

		_, err = receiver.output.Write(payload)
		if err != nil {
			receiver.finish(&stats, started)
			return stats, &IOError{Op: "write", Path: receiver.outputPath, Err: err}
		}

		stats.Bytes += uint64(len(payload))
		stats.Datagrams++

		receiver.node.verbosef(receiver.sess, "%d KB...\n", stats.Bytes/1024+1)
	}

	receiver.finish(&stats, started)

	return stats, nil
}

// Waits for the next datagram the way the discipline says.
// Returns errorInactive once the threshold of silence has been exceeded
func (receiver *receiver) next(buffer []byte) (int, error) {
	socket := receiver.node.socket

	switch receiver.discipline {
	case DisciplinePolling:
		for {
			read, _, err := socket.Receive(buffer, transport.NonBlocking)
			if err == nil {
				return read, nil
			}
			if !errors.Is(err, transport.ErrorWouldBlock) {
				return 0, err
			}

			if time.Since(receiver.lastReceipt) > receiver.threshold {
				return 0, errorInactive
			}

			time.Sleep(receiver.pollInterval)
		}

	default:
		// every receipt restarts the full timeout
		read, _, err := socket.ReceiveTimeout(buffer, receiver.threshold)
		if errors.Is(err, transport.ErrorTimeout) {
			return 0, errorInactive
		}

		return read, err
	}
}

func (receiver *receiver) isRefusal(datagram []byte) bool {
	packet, err := receiver.node.codec.Decode(datagram, protocol.HeaderNotAvailable)
	return err == nil && packet.Header == protocol.HeaderNotAvailable
}

func (receiver *receiver) finish(stats *TransferStats, started time.Time) {
	stats.Duration = receiver.lastReceipt.Sub(started)

	if receiver.unframer != nil {
		stats.Lost = receiver.unframer.Lost
		stats.Reordered = receiver.unframer.Reordered
	}
}
