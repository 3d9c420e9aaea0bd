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

package fsys

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Unbewohnte/vidcat/checksum"
)

// A struct that represents the necessary file information for transportation through node
type File struct {
	Name       string
	Path       string
	ParentPath string
	Size       uint64
	Checksum   string
	Handler    *os.File // Set when .Open() is called or by CreateFile
	writable   bool
}

var ErrorNotFile error = fmt.Errorf("not a file")

// Get general information about a file with the
// future ability to open it.
// NOTE that Handler field is nil BY DEFAULT until you
// manually call a (file *File) Open() function to open it !
func GetFile(path string) (*File, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	stats, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}

	// check if it is a directory
	if !stats.Mode().IsRegular() {
		return nil, ErrorNotFile
	}

	file := File{
		Name:       stats.Name(),
		Path:       absPath,
		ParentPath: filepath.Dir(absPath),
		Size:       uint64(stats.Size()),
		Handler:    nil,
	}

	checksum, err := checksum.GetFileCheckSum(absPath)
	if err != nil {
		return nil, err
	}

	file.Checksum = checksum

	return &file, nil
}

// Opens file for reading
func (file *File) Open() error {
	handler, err := os.Open(file.Path)
	if err != nil {
		return err
	}
	file.Handler = handler

	return nil
}

// Creates (or truncates) a file at path, ready for writing
func CreateFile(path string) (*File, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	handler, err := os.OpenFile(absPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	return &File{
		Name:       filepath.Base(absPath),
		Path:       absPath,
		ParentPath: filepath.Dir(absPath),
		Handler:    handler,
		writable:   true,
	}, nil
}

// Flushes and closes the handler. Calling it on a closed file does nothing
func (file *File) Close() error {
	if file.Handler == nil {
		return nil
	}

	handler := file.Handler
	file.Handler = nil

	if file.writable {
		err := handler.Sync()
		if err != nil {
			handler.Close()
			return err
		}
	}

	return handler.Close()
}
