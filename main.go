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

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Unbewohnte/vidcat/node"
	"github.com/Unbewohnte/vidcat/protocol"
	"github.com/Unbewohnte/vidcat/transport"
)

var (
	VERSION string = "v1.0.0"

	versionInformation string = fmt.Sprintf("vidcat %s\n\nCopyright (C) 2021,2022  Kasyanov Nikolay Alexeyevich (Unbewohnte)\nThis program comes with ABSOLUTELY NO WARRANTY.\nThis is free software, and you are welcome to redistribute it under certain conditions; type \"vidcat -l\" for details.\n", VERSION)

	licenseInformation string = "vidcat is free software: you can redistribute it and/or modify\nit under the terms of the GNU General Public License as published by\nthe Free Software Foundation, either version 3 of the License, or\n(at your option) any later version.\n\nThis program is distributed in the hope that it will be useful,\nbut WITHOUT ANY WARRANTY; without even the implied warranty of\nMERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the\nGNU General Public License for more details.\n\nFull text: <https://www.gnu.org/licenses/gpl-3.0.txt>"

	// flags
	PORT          *uint          = flag.Uint("p", node.DEFAULTPORT, "Specifies a port to work with")
	SERVING_DIR   *string        = flag.String("s", node.DEFAULTSERVINGPATH, "Directory with videos to serve")
	ADDRESS       *string        = flag.String("a", "", "Specifies an address to connect to")
	DOWNLOADS_DIR *string        = flag.String("d", ".", "Downloads folder")
	EXTENSION     *string        = flag.String("ext", node.DEFAULTEXTENSION, "Only files with this extension are offered")
	SYMLINKS      *bool          = flag.Bool("follow", false, "Offer symlinks pointing to regular files")
	DATAGRAM_SIZE *uint          = flag.Uint("size", protocol.MAXDATAGRAMSIZE, "Maximum datagram size in bytes")
	PACING        *time.Duration = flag.Duration("pace", node.DEFAULTPACING, "Delay after every sent chunk")
	CHOICE_WAIT   *time.Duration = flag.Duration("choice", 0, "How long the server waits for the client`s choice (0 for no limit)")
	INACTIVITY    *time.Duration = flag.Duration("idle", 0, "Silence that ends a transfer (30s blocking, 3s polling if not set)")
	POLLING       *bool          = flag.Bool("poll", false, "Poll the socket instead of blocking on it")
	TAGGED        *bool          = flag.Bool("tagged", false, "Use tagged handshake packets")
	RTP           *bool          = flag.Bool("rtp", false, "Wrap streamed chunks into RTP packets")
	TOS           *int           = flag.Int("tos", 0, "IP type-of-service of sent datagrams")
	VERBOSE       *bool          = flag.Bool("?", false, "Turn on/off verbose output")
	PRINT_VERSION *bool          = flag.Bool("v", false, "Print version information")
	PRINT_LICENSE *bool          = flag.Bool("l", false, "Print license information")

	isSending bool
)

func init() {
	flag.Usage = func() {
		fmt.Printf("vidcat -[FLAG]...\n\n")

		fmt.Printf("[FLAGs]\n\n")
		fmt.Printf("| -p [Uinteger_here] for port (default %d)\n", node.DEFAULTPORT)
		fmt.Printf("| -s [path_to_directory] directory with videos to serve (cannot be used with -a)\n")
		fmt.Printf("| -a [ip_address|domain_name] address to connect to (cannot be used with -s)\n")
		fmt.Printf("| -d [path_to_directory] where the video will be downloaded to (cannot be used with -s)\n")
		fmt.Printf("| -ext [.extension] which files are offered (default %s)\n", node.DEFAULTEXTENSION)
		fmt.Printf("| -follow [true|false] offer symlinks to regular files too\n")
		fmt.Printf("| -size [Uinteger_here] maximum datagram size (default %d)\n", protocol.MAXDATAGRAMSIZE)
		fmt.Printf("| -pace [duration] delay after every sent chunk (default %s)\n", node.DEFAULTPACING)
		fmt.Printf("| -choice [duration] how long the server waits for the client`s choice (no limit by default)\n")
		fmt.Printf("| -idle [duration] silence that ends a transfer\n")
		fmt.Printf("| -poll [true|false] poll the socket instead of blocking on it\n")
		fmt.Printf("| -tagged [true|false] tagged handshake packets (both sides must agree)\n")
		fmt.Printf("| -rtp [true|false] RTP framing of the stream (both sides must agree)\n")
		fmt.Printf("| -tos [integer] IP type-of-service of sent datagrams\n")
		fmt.Printf("| -? [true|false] to turn on|off verbose output\n")
		fmt.Printf("| -l print license information\n")
		fmt.Printf("| -v print version information\n\n\n")

		fmt.Printf("[Examples]\n\n")

		fmt.Printf("| vidcat\n")
		fmt.Printf("| serves every .mkv file in \"./video/\" on port %d to the first client that greets\n\n", node.DEFAULTPORT)

		fmt.Printf("| vidcat -p 9000 -s /home/user/Videos/ -ext .mp4 -pace 2ms\n")
		fmt.Printf("| serves every .mp4 file in \"/home/user/Videos/\" on port 9000, 2 milliseconds between chunks\n\n")

		fmt.Printf("| vidcat -a 192.168.1.104 -d /home/user/Downloads/\n")
		fmt.Printf("| asks 192.168.1.104:%d for its videos and downloads the chosen one to \"/home/user/Downloads/\"\n\n", node.DEFAULTPORT)

		fmt.Printf("| vidcat -a 192.168.1.104 -poll -idle 5s\n")
		fmt.Printf("| same, but polls the socket and gives up after 5 seconds of silence\n\n\n")
	}
	flag.Parse()

	if *PRINT_VERSION {
		fmt.Println(versionInformation)
		os.Exit(0)
	}

	if *PRINT_LICENSE {
		fmt.Println(licenseInformation)
		os.Exit(0)
	}

	// receiving if there is someone to connect to
	isSending = *ADDRESS == ""
}

func main() {
	discipline := node.DisciplineBlocking
	if *POLLING {
		discipline = node.DisciplinePolling
	}

	nodeOptions := node.NodeOptions{
		VerboseOutput:   *VERBOSE,
		IsSending:       isSending,
		WorkingPort:     *PORT,
		MaxDatagramSize: *DATAGRAM_SIZE,
		TaggedPackets:   *TAGGED,
		RTPFraming:      *RTP,
		Socket: &transport.Options{
			TOS: *TOS,
		},
		ServerSide: &node.ServerSideNodeOptions{
			ServingPath:      *SERVING_DIR,
			Extension:        *EXTENSION,
			FollowSymlinks:   *SYMLINKS,
			Pacing:           *PACING,
			SelectionTimeout: *CHOICE_WAIT,
		},
		ClientSide: &node.ClientSideNodeOptions{
			ConnectionAddr:      *ADDRESS,
			DownloadsFolderPath: *DOWNLOADS_DIR,
			Discipline:          discipline,
			InactivityThreshold: *INACTIVITY,
		},
	}

	node, err := node.NewNode(&nodeOptions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error constructing a new node: %s\n", err)
		os.Exit(1)
	}

	err = node.Start()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
