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
	"bytes"
	"errors"
	"io"
	"math/rand"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Unbewohnte/vidcat/protocol"
	"github.com/Unbewohnte/vidcat/transport"
)

// writes a file of size random bytes into dir and returns its contents
func makeVideo(t *testing.T, dir string, name string, size int) []byte {
	contents := make([]byte, size)
	rand.New(rand.NewSource(int64(size))).Read(contents)

	err := os.WriteFile(filepath.Join(dir, name), contents, os.ModePerm)
	if err != nil {
		t.Fatalf("%s", err)
	}

	return contents
}

func startServer(t *testing.T, options *NodeOptions) (*Node, chan error) {
	options.IsSending = true
	options.Output = io.Discard

	server, err := NewNode(options)
	if err != nil {
		t.Fatalf("Error constructing a new node: %s", err)
	}
	t.Cleanup(func() { server.Close() })

	done := make(chan error, 1)
	go func() {
		done <- server.Start()
	}()

	return server, done
}

func newClient(t *testing.T, server *Node, options *NodeOptions) *Node {
	options.IsSending = false
	options.Output = io.Discard
	options.WorkingPort = uint(server.LocalAddr().Port)
	options.ClientSide.ConnectionAddr = "127.0.0.1"

	client, err := NewNode(options)
	if err != nil {
		t.Fatalf("Error constructing a new node: %s", err)
	}
	t.Cleanup(func() { client.Close() })

	return client
}

func waitFor(t *testing.T, done chan error) error {
	select {
	case err := <-done:
		return err
	case <-time.After(10 * time.Second):
		t.Fatalf("the server did not finish in time")
		return nil
	}
}

// chooses the first item and remembers what has been offered
type recordingChooser struct {
	offered protocol.Catalog
	calls   int
}

func (chooser *recordingChooser) Choose(catalog protocol.Catalog) (int, error) {
	chooser.offered = catalog
	chooser.calls++
	return 0, nil
}

func clientOptions(downloads string, chooser Chooser) *NodeOptions {
	return &NodeOptions{
		ClientSide: &ClientSideNodeOptions{
			DownloadsFolderPath: downloads,
			InactivityThreshold: 500 * time.Millisecond,
			Chooser:             chooser,
		},
	}
}

func serverOptions(servingPath string) *NodeOptions {
	return &NodeOptions{
		HandshakeTimeout: 2 * time.Second,
		ServerSide: &ServerSideNodeOptions{
			ServingPath: servingPath,
			Extension:   ".mkv",
			Pacing:      time.Millisecond,
		},
	}
}

func Test_Sendfile(t *testing.T) {
	videoDir := t.TempDir()
	downloads := t.TempDir()
	contents := makeVideo(t, videoDir, "clip.mkv", 8000)
	makeVideo(t, videoDir, "notes.txt", 10)

	server, done := startServer(t, serverOptions(videoDir))

	chooser := &recordingChooser{}
	client := newClient(t, server, clientOptions(downloads, chooser))

	err := client.Start()
	if err != nil {
		t.Fatalf("client: %s", err)
	}
	err = waitFor(t, done)
	if err != nil {
		t.Fatalf("server: %s", err)
	}

	if len(chooser.offered) != 1 || chooser.offered[0] != "clip.mkv" {
		t.Fatalf("expected only clip.mkv to be offered; got %v", chooser.offered)
	}

	received, err := os.ReadFile(filepath.Join(downloads, "clip.mkv"))
	if err != nil {
		t.Fatalf("%s", err)
	}
	if !bytes.Equal(received, contents) {
		t.Fatalf("received %d bytes that do not match the original %d bytes", len(received), len(contents))
	}

	// ceil(8000 / 1024)
	if server.Stats().Datagrams != 8 {
		t.Errorf("expected the server to send 8 datagrams; sent %d", server.Stats().Datagrams)
	}
	if client.Stats().Bytes != 8000 || client.Stats().Datagrams != 8 {
		t.Errorf("unexpected client stats: %+v", client.Stats())
	}
	if client.Stats().Checksum != server.Stats().Checksum {
		t.Errorf("checksums differ: %s --- %s", client.Stats().Checksum, server.Stats().Checksum)
	}
}

func Test_EmptyDirectory(t *testing.T) {
	videoDir := t.TempDir()
	makeVideo(t, videoDir, "notes.txt", 10)

	server, done := startServer(t, serverOptions(videoDir))

	chooser := &recordingChooser{}
	client := newClient(t, server, clientOptions(t.TempDir(), chooser))

	err := client.Start()
	if !errors.Is(err, ErrorCatalogEmpty) {
		t.Fatalf("client: expected ErrorCatalogEmpty; got %v", err)
	}

	err = waitFor(t, done)
	if !errors.Is(err, ErrorCatalogEmpty) {
		t.Fatalf("server: expected ErrorCatalogEmpty; got %v", err)
	}

	if chooser.calls != 0 {
		t.Fatalf("the user must not be asked to choose from nothing")
	}
}

func Test_UnreadableDirectory(t *testing.T) {
	server, done := startServer(t, serverOptions(filepath.Join(t.TempDir(), "missing")))

	client := newClient(t, server, clientOptions(t.TempDir(), &recordingChooser{}))

	err := client.Start()
	if !errors.Is(err, ErrorCatalogEmpty) {
		t.Fatalf("client: expected ErrorCatalogEmpty; got %v", err)
	}

	err = waitFor(t, done)
	if !errors.Is(err, ErrorCatalogEmpty) {
		t.Fatalf("server: expected ErrorCatalogEmpty; got %v", err)
	}
}

func Test_SelectionNotFound(t *testing.T) {
	videoDir := t.TempDir()
	downloads := t.TempDir()
	makeVideo(t, videoDir, "clip.mkv", 8000)

	server, done := startServer(t, serverOptions(videoDir))

	// the file disappears between listing and selection
	chooser := ChooserFunc(func(catalog protocol.Catalog) (int, error) {
		os.Remove(filepath.Join(videoDir, catalog[0]))
		return 0, nil
	})
	client := newClient(t, server, clientOptions(downloads, chooser))

	err := client.Start()
	if !errors.Is(err, ErrorSelectionNotFound) {
		t.Fatalf("client: expected ErrorSelectionNotFound; got %v", err)
	}

	err = waitFor(t, done)
	if !errors.Is(err, ErrorSelectionNotFound) {
		t.Fatalf("server: expected ErrorSelectionNotFound; got %v", err)
	}

	if server.Stats().Datagrams != 0 || client.Stats().Bytes != 0 {
		t.Fatalf("no file content must be sent; server stats %+v; client stats %+v", server.Stats(), client.Stats())
	}

	_, err = os.Stat(filepath.Join(downloads, "clip.mkv"))
	if !os.IsNotExist(err) {
		t.Fatalf("expected the empty output to be removed; got %v", err)
	}
}

func Test_ZeroLengthFile(t *testing.T) {
	videoDir := t.TempDir()
	downloads := t.TempDir()
	makeVideo(t, videoDir, "empty.mkv", 0)

	server, done := startServer(t, serverOptions(videoDir))

	options := clientOptions(downloads, &recordingChooser{})
	options.ClientSide.InactivityThreshold = 200 * time.Millisecond
	client := newClient(t, server, options)

	err := client.Start()
	if err != nil {
		t.Fatalf("client: %s", err)
	}
	err = waitFor(t, done)
	if err != nil {
		t.Fatalf("server: %s", err)
	}

	if server.Stats().Datagrams != 0 {
		t.Fatalf("expected no datagrams for an empty file; got %d", server.Stats().Datagrams)
	}

	stats, err := os.Stat(filepath.Join(downloads, "empty.mkv"))
	if err != nil {
		t.Fatalf("%s", err)
	}
	if stats.Size() != 0 {
		t.Fatalf("expected an empty output; got %d bytes", stats.Size())
	}
}

func Test_PacingLongerThanThreshold(t *testing.T) {
	videoDir := t.TempDir()
	downloads := t.TempDir()
	makeVideo(t, videoDir, "clip.mkv", 3000)

	options := serverOptions(videoDir)
	options.ServerSide.Pacing = 400 * time.Millisecond
	server, done := startServer(t, options)

	clientOpts := clientOptions(downloads, &recordingChooser{})
	clientOpts.ClientSide.InactivityThreshold = 100 * time.Millisecond
	client := newClient(t, server, clientOpts)

	err := client.Start()
	if err != nil {
		t.Fatalf("client: %s", err)
	}
	// nobody listens anymore, the result of the server does not matter
	waitFor(t, done)

	received, err := os.ReadFile(filepath.Join(downloads, "clip.mkv"))
	if err != nil {
		t.Fatalf("%s", err)
	}
	if len(received) != 1024 {
		t.Fatalf("expected the transfer to be cut after the first chunk (1024 bytes); got %d bytes", len(received))
	}
}

func Test_PollingDiscipline(t *testing.T) {
	videoDir := t.TempDir()
	downloads := t.TempDir()
	contents := makeVideo(t, videoDir, "clip.mkv", 20000)

	server, done := startServer(t, serverOptions(videoDir))

	options := clientOptions(downloads, &recordingChooser{})
	options.ClientSide.Discipline = DisciplinePolling
	options.ClientSide.InactivityThreshold = 300 * time.Millisecond
	options.ClientSide.PollInterval = 2 * time.Millisecond
	client := newClient(t, server, options)

	start := time.Now()
	err := client.Start()
	if err != nil {
		t.Fatalf("client: %s", err)
	}
	if time.Since(start) < 300*time.Millisecond {
		t.Fatalf("the client must wait out the inactivity threshold")
	}
	err = waitFor(t, done)
	if err != nil {
		t.Fatalf("server: %s", err)
	}

	received, err := os.ReadFile(filepath.Join(downloads, "clip.mkv"))
	if err != nil {
		t.Fatalf("%s", err)
	}
	if !bytes.Equal(received, contents) {
		t.Fatalf("received %d bytes that do not match the original %d bytes", len(received), len(contents))
	}
}

func Test_TaggedPackets(t *testing.T) {
	videoDir := t.TempDir()
	downloads := t.TempDir()
	contents := makeVideo(t, videoDir, "clip.mkv", 5000)

	options := serverOptions(videoDir)
	options.TaggedPackets = true
	server, done := startServer(t, options)

	clientOpts := clientOptions(downloads, &recordingChooser{})
	clientOpts.TaggedPackets = true
	client := newClient(t, server, clientOpts)

	err := client.Start()
	if err != nil {
		t.Fatalf("client: %s", err)
	}
	err = waitFor(t, done)
	if err != nil {
		t.Fatalf("server: %s", err)
	}

	received, err := os.ReadFile(filepath.Join(downloads, "clip.mkv"))
	if err != nil {
		t.Fatalf("%s", err)
	}
	if !bytes.Equal(received, contents) {
		t.Fatalf("received %d bytes that do not match the original %d bytes", len(received), len(contents))
	}
}

func Test_RTPFraming(t *testing.T) {
	videoDir := t.TempDir()
	downloads := t.TempDir()
	contents := makeVideo(t, videoDir, "clip.mkv", 8000)

	options := serverOptions(videoDir)
	options.RTPFraming = true
	server, done := startServer(t, options)

	clientOpts := clientOptions(downloads, &recordingChooser{})
	clientOpts.RTPFraming = true
	client := newClient(t, server, clientOpts)

	err := client.Start()
	if err != nil {
		t.Fatalf("client: %s", err)
	}
	err = waitFor(t, done)
	if err != nil {
		t.Fatalf("server: %s", err)
	}

	received, err := os.ReadFile(filepath.Join(downloads, "clip.mkv"))
	if err != nil {
		t.Fatalf("%s", err)
	}
	if !bytes.Equal(received, contents) {
		t.Fatalf("received %d bytes that do not match the original %d bytes", len(received), len(contents))
	}

	// ceil(8000 / (1024 - 12))
	if server.Stats().Datagrams != 8 {
		t.Errorf("expected 8 datagrams; got %d", server.Stats().Datagrams)
	}
	if client.Stats().Lost != 0 {
		t.Errorf("expected no losses on loopback; got %d", client.Stats().Lost)
	}
}

func Test_ProtocolViolation(t *testing.T) {
	server, done := startServer(t, serverOptions(t.TempDir()))

	conn, err := net.DialUDP("udp4", nil, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: server.LocalAddr().Port})
	if err != nil {
		t.Fatalf("%s", err)
	}
	defer conn.Close()

	conn.Write([]byte("Hello server.\x00"))

	buffer := make([]byte, 64)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	read, err := conn.Read(buffer)
	if err != nil {
		t.Fatalf("%s", err)
	}
	if !strings.HasPrefix(string(buffer[:read]), protocol.GREETINGREPLY) {
		t.Fatalf("unexpected greeting reply %q", buffer[:read])
	}

	conn.Write([]byte("Give me the list\x00"))

	err = waitFor(t, done)
	if !errors.Is(err, ErrorProtocolViolation) {
		t.Fatalf("expected ErrorProtocolViolation; got %v", err)
	}
}

func Test_InvalidChoice(t *testing.T) {
	videoDir := t.TempDir()
	makeVideo(t, videoDir, "clip.mkv", 100)

	options := serverOptions(videoDir)
	options.ServerSide.SelectionTimeout = 200 * time.Millisecond
	server, done := startServer(t, options)

	chooser := ChooserFunc(func(catalog protocol.Catalog) (int, error) {
		return len(catalog), nil
	})
	client := newClient(t, server, clientOptions(t.TempDir(), chooser))

	err := client.Start()
	if !errors.Is(err, ErrorInvalidChoice) {
		t.Fatalf("expected ErrorInvalidChoice; got %v", err)
	}

	// the server never gets a selection
	err = waitFor(t, done)
	if err == nil {
		t.Fatalf("expected the server to give up waiting for a selection")
	}
}

func Test_SlowChoice(t *testing.T) {
	videoDir := t.TempDir()
	downloads := t.TempDir()
	contents := makeVideo(t, videoDir, "clip.mkv", 3000)

	// choosing takes longer than any other step of the handshake may
	options := serverOptions(videoDir)
	options.HandshakeTimeout = 200 * time.Millisecond
	server, done := startServer(t, options)

	chooser := ChooserFunc(func(catalog protocol.Catalog) (int, error) {
		time.Sleep(600 * time.Millisecond)
		return 0, nil
	})
	client := newClient(t, server, clientOptions(downloads, chooser))

	err := client.Start()
	if err != nil {
		t.Fatalf("client: %s", err)
	}
	err = waitFor(t, done)
	if err != nil {
		t.Fatalf("server: %s", err)
	}

	received, err := os.ReadFile(filepath.Join(downloads, "clip.mkv"))
	if err != nil {
		t.Fatalf("%s", err)
	}
	if !bytes.Equal(received, contents) {
		t.Fatalf("received %d bytes that do not match the original %d bytes", len(received), len(contents))
	}
}

func Test_SelectionTimeout(t *testing.T) {
	videoDir := t.TempDir()
	makeVideo(t, videoDir, "clip.mkv", 100)

	options := serverOptions(videoDir)
	options.ServerSide.SelectionTimeout = 100 * time.Millisecond
	server, done := startServer(t, options)

	chooser := ChooserFunc(func(catalog protocol.Catalog) (int, error) {
		time.Sleep(400 * time.Millisecond)
		return 0, nil
	})
	clientOpts := clientOptions(t.TempDir(), chooser)
	clientOpts.ClientSide.InactivityThreshold = 100 * time.Millisecond
	client := newClient(t, server, clientOpts)
	client.Start()

	err := waitFor(t, done)
	if !errors.Is(err, transport.ErrorTimeout) {
		t.Fatalf("expected the server to stop waiting for the choice; got %v", err)
	}
}

func Test_SelectionNotSent(t *testing.T) {
	videoDir := t.TempDir()
	downloads := t.TempDir()
	makeVideo(t, videoDir, "clip.mkv", 100)

	options := serverOptions(videoDir)
	options.ServerSide.SelectionTimeout = 200 * time.Millisecond
	server, done := startServer(t, options)

	var client *Node
	// the socket is gone by the time the selection is sent
	chooser := ChooserFunc(func(catalog protocol.Catalog) (int, error) {
		client.Close()
		return 0, nil
	})
	client = newClient(t, server, clientOptions(downloads, chooser))

	err := client.Start()
	var transportErr *transport.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected a transport error; got %v", err)
	}
	waitFor(t, done)

	_, err = os.Stat(filepath.Join(downloads, "clip.mkv"))
	if !os.IsNotExist(err) {
		t.Fatalf("expected no output file to be left behind; got %v", err)
	}
}

func Test_TaggedSentinelLookalike(t *testing.T) {
	videoDir := t.TempDir()
	downloads := t.TempDir()

	// starts with the NOTAVAILABLE header byte followed by zeroes
	contents := make([]byte, 3000)
	contents[0] = byte(protocol.HeaderNotAvailable)
	err := os.WriteFile(filepath.Join(videoDir, "clip.mkv"), contents, os.ModePerm)
	if err != nil {
		t.Fatalf("%s", err)
	}

	options := serverOptions(videoDir)
	options.TaggedPackets = true
	server, done := startServer(t, options)

	clientOpts := clientOptions(downloads, &recordingChooser{})
	clientOpts.TaggedPackets = true
	client := newClient(t, server, clientOpts)

	err = client.Start()
	if err != nil {
		t.Fatalf("client: %s", err)
	}
	err = waitFor(t, done)
	if err != nil {
		t.Fatalf("server: %s", err)
	}

	received, err := os.ReadFile(filepath.Join(downloads, "clip.mkv"))
	if err != nil {
		t.Fatalf("%s", err)
	}
	if !bytes.Equal(received, contents) {
		t.Fatalf("received %d bytes that do not match the original %d bytes", len(received), len(contents))
	}
}

func Test_ConsoleChooser(t *testing.T) {
	catalog := protocol.Catalog{"a.mkv", "b.mkv", "c.mkv"}
	output := new(bytes.Buffer)

	chooser := ConsoleChooser{
		Input:  strings.NewReader("abc\n7\n0\n 2 \n"),
		Output: output,
	}

	choice, err := chooser.Choose(catalog)
	if err != nil {
		t.Fatalf("%s", err)
	}
	if choice != 1 {
		t.Fatalf("expected index 1; got %d", choice)
	}

	if !strings.Contains(output.String(), " 3) c.mkv") {
		t.Fatalf("expected a numbered list; got %q", output.String())
	}
	if strings.Count(output.String(), "Choose number") != 4 {
		t.Fatalf("expected to be asked 4 times; got %q", output.String())
	}

	chooser.Input = strings.NewReader("9\n")
	_, err = chooser.Choose(catalog)
	if !errors.Is(err, ErrorInvalidChoice) {
		t.Fatalf("expected ErrorInvalidChoice on EOF; got %v", err)
	}
}
