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

// Optional RTP framing of the streamed chunks. The stream still has no
// end marker; sequence numbers only let the receiving side count gaps
package protocol

import (
	"github.com/pion/rtp"
)

// Size of a fixed RTP header without CSRCs and extensions
const RTPHEADERSIZE uint = 12

// Dynamic payload type used for raw file content
const RTPPAYLOADTYPE uint8 = 96

// Wraps chunks into RTP packets with increasing sequence numbers
type RTPFramer struct {
	ssrc      uint32
	sequence  uint16
	timestamp uint32
}

func NewRTPFramer(ssrc uint32, initialSequence uint16) *RTPFramer {
	return &RTPFramer{
		ssrc:     ssrc,
		sequence: initialSequence,
	}
}

// Returns a ready-to-send datagram with the chunk as its payload
func (framer *RTPFramer) Wrap(chunk []byte) ([]byte, error) {
	packet := rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			PayloadType:    RTPPAYLOADTYPE,
			SequenceNumber: framer.sequence,
			Timestamp:      framer.timestamp,
			SSRC:           framer.ssrc,
		},
		Payload: chunk,
	}

	datagram, err := packet.Marshal()
	if err != nil {
		return nil, err
	}

	framer.sequence++
	framer.timestamp += uint32(len(chunk))

	return datagram, nil
}

// Unwraps RTP datagrams and keeps track of sequence gaps.
// Payloads are always returned in arrival order, nothing is reordered
type RTPUnframer struct {
	started  bool
	expected uint16

	Lost      uint64 // sequence numbers skipped over
	Reordered uint64 // late or duplicate packets
}

func (unframer *RTPUnframer) Unwrap(datagram []byte) ([]byte, error) {
	var packet rtp.Packet
	err := packet.Unmarshal(datagram)
	if err != nil {
		return nil, err
	}

	sequence := packet.SequenceNumber
	if !unframer.started {
		unframer.started = true
		unframer.expected = sequence + 1
		return packet.Payload, nil
	}

	// serial number arithmetic: a distance within half of the space is "ahead"
	distance := sequence - unframer.expected
	if distance < 0x8000 {
		unframer.Lost += uint64(distance)
		unframer.expected = sequence + 1
	} else {
		unframer.Reordered++
	}

	return packet.Payload, nil
}
