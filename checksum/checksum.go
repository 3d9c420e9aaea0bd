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

package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// "capturing" CHUNKSIZE bytes and then skipping STEP bytes before the next chunk until the last one
const (
	CHUNKS    int64 = 100
	CHUNKSIZE int64 = 100
	STEP      int64 = 250
)

// returns a checksum of size bytes of given content. NOTE, that it creates checksum
// not of the full content, but from separate byte blocks.
// This is done as an optimisation because video files are usually large in size.
// The general idea:
// BOF... CHUNK -> STEP -> CHUNK... EOF
// checksum := sha256.Sum256(ALLCHUNKS)
// Both sides print it so the operator can spot a broken transfer. The stream itself
// never carries it
func GetPartialCheckSum(content io.ReaderAt, size int64) (string, error) {
	if size < CHUNKS*CHUNKSIZE+STEP*(CHUNKS-1) {
		// too small to chop it in chunks, so just doing full checksum
		return getFullCheckSum(io.NewSectionReader(content, 0, size))
	}

	hash := sha256.New()
	buffer := make([]byte, CHUNKSIZE)
	var offset int64 = 0
	for i := int64(0); i < CHUNKS; i++ {
		read, err := content.ReadAt(buffer, offset)
		if err != nil && err != io.EOF {
			return "", err
		}

		hash.Write(buffer[:read])

		offset += CHUNKSIZE + STEP
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// Opens the file at path and returns its partial checksum
func GetFileCheckSum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	stats, err := file.Stat()
	if err != nil {
		return "", err
	}

	return GetPartialCheckSum(file, stats.Size())
}

// Returns a sha256 checksum of everything in content
func getFullCheckSum(content io.Reader) (string, error) {
	hash := sha256.New()

	_, err := io.Copy(hash, content)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
