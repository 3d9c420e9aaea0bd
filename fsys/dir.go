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
	"strings"
)

var ErrorNotDirectory error = fmt.Errorf("not a directory")

// Returns names of regular files in the directory at path which end with extension
// (every regular file if extension is empty), sorted by name.
// Subdirectories are not looked into; names with a newline are skipped because they
// cannot be put into a catalog. Symlinks are skipped unless followSymlinks is set and
// the link points to a regular file
func ListFiles(path string, extension string, followSymlinks bool) ([]string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	stats, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}

	// check if it is a directory for real
	if !stats.IsDir() {
		return nil, ErrorNotDirectory
	}

	// os.ReadDir returns entries sorted by filename
	entries, err := os.ReadDir(absPath)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()

		if !strings.HasSuffix(name, extension) || strings.ContainsAny(name, "\n\x00") {
			continue
		}

		switch {
		case entry.Type()&os.ModeSymlink != 0:
			// os.Stat goes through the whole chain of links
			if !followSymlinks {
				continue
			}
			target, err := os.Stat(filepath.Join(absPath, name))
			if err != nil || !target.Mode().IsRegular() {
				continue
			}
		case !entry.Type().IsRegular():
			continue
		}

		names = append(names, name)
	}

	return names, nil
}

// Joins a name received from the other side with the directory, refusing
// anything that is not a plain name of an entry right inside the directory
func JoinName(dir string, name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%q is not a plain file name", name)
	}

	return filepath.Join(dir, name), nil
}
