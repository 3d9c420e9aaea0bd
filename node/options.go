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

	"github.com/Unbewohnte/vidcat/transport"
)

// How the receiving side waits for the next datagram
type Discipline int

const (
	// timed blocking receive; expiry of the whole threshold ends the transfer
	DisciplineBlocking Discipline = iota
	// non-blocking receive with short sleeps; elapsed silence is measured against the threshold
	DisciplinePolling
)

// Defaults
const (
	DEFAULTPORT               uint          = 8000
	DEFAULTSERVINGPATH        string        = "./video/"
	DEFAULTEXTENSION          string        = ".mkv"
	DEFAULTPACING             time.Duration = time.Millisecond
	DEFAULTHANDSHAKETIMEOUT   time.Duration = 5 * time.Second
	DEFAULTBLOCKINGINACTIVITY time.Duration = 30 * time.Second
	DEFAULTPOLLINGINACTIVITY  time.Duration = 3 * time.Second
	DEFAULTPOLLINTERVAL       time.Duration = 10 * time.Millisecond
)

type ServerSideNodeOptions struct {
	ServingPath    string        // directory with the files to offer
	Extension      string        // only files with this extension are offered
	FollowSymlinks bool          // offer symlinks pointing to regular files
	Pacing         time.Duration // delay after every sent chunk

	// How long to wait for the selection once the catalog is sent. Covers the time
	// the user spends choosing, so zero (the default) waits without a limit
	SelectionTimeout time.Duration
}

type ClientSideNodeOptions struct {
	ConnectionAddr      string
	DownloadsFolderPath string
	Discipline          Discipline
	// Silence longer than this ends the transfer. Too small relative to the server`s
	// pacing cuts the file short, too big delays the exit after a finished transfer.
	// A finished sender and a stalled one look exactly the same
	InactivityThreshold time.Duration
	PollInterval        time.Duration // sleep between polls with DisciplinePolling
	Chooser             Chooser       // picks an item from the catalog
}

// Options to configure the node
type NodeOptions struct {
	VerboseOutput    bool
	IsSending        bool
	WorkingPort      uint
	MaxDatagramSize  uint
	HandshakeTimeout time.Duration
	TaggedPackets    bool // use tagged envelopes instead of plain literals during the handshake
	RTPFraming       bool // wrap streamed chunks into RTP packets
	Socket           *transport.Options
	Output           io.Writer // where to print; os.Stdout if nil
	ServerSide       *ServerSideNodeOptions
	ClientSide       *ClientSideNodeOptions
}
