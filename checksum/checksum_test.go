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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func Test_GetPartialCheckSum(t *testing.T) {
	// sha256 of "abc"
	checksum, err := GetPartialCheckSum(strings.NewReader("abc"), 3)
	if err != nil {
		t.Fatalf("GetPartialCheckSum error: %s", err)
	}

	if !strings.EqualFold("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", checksum) {
		t.Fatalf("GetPartialCheckSum error: hashes of \"abc\" do not match")
	}
}

func Test_PartialChecksumOfBigContent(t *testing.T) {
	content := bytes.Repeat([]byte("0123456789"), 10000)

	original, err := GetPartialCheckSum(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("%s", err)
	}

	// a byte inside a skipped step does not change the checksum...
	skipped := append([]byte(nil), content...)
	skipped[CHUNKSIZE+1]++
	sameChecksum, err := GetPartialCheckSum(bytes.NewReader(skipped), int64(len(skipped)))
	if err != nil {
		t.Fatalf("%s", err)
	}
	if sameChecksum != original {
		t.Fatalf("a change between captured chunks must not affect the checksum")
	}

	// ...while a byte inside a captured chunk does
	captured := append([]byte(nil), content...)
	captured[0]++
	otherChecksum, err := GetPartialCheckSum(bytes.NewReader(captured), int64(len(captured)))
	if err != nil {
		t.Fatalf("%s", err)
	}
	if otherChecksum == original {
		t.Fatalf("a change in a captured chunk must affect the checksum")
	}
}

func Test_GetFileCheckSum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mkv")
	err := os.WriteFile(path, []byte("abc"), os.ModePerm)
	if err != nil {
		t.Fatalf("%s", err)
	}

	checksum, err := GetFileCheckSum(path)
	if err != nil {
		t.Fatalf("%s", err)
	}

	if checksum != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Fatalf("unexpected checksum %s", checksum)
	}
}
