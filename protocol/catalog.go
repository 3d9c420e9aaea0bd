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

package protocol

import (
	"fmt"
	"strings"
)

// Catalog is an ordered list of names of transferable items offered by server
type Catalog []string

var (
	ErrorEmptyCatalog    error = fmt.Errorf("catalog is empty")
	ErrorInvalidItemName error = fmt.Errorf("invalid item name")
)

// Serializes the catalog into newline-terminated names.
// ie: clip.mkv\nmovie.mkv\n
func (catalog Catalog) Serialize() (string, error) {
	if len(catalog) == 0 {
		return "", ErrorEmptyCatalog
	}

	seen := make(map[string]struct{}, len(catalog))

	var builder strings.Builder
	for _, name := range catalog {
		if name == "" || strings.Contains(name, CATALOGDELIMITER) || strings.ContainsRune(name, 0) {
			return "", fmt.Errorf("%w: %q", ErrorInvalidItemName, name)
		}
		if _, ok := seen[name]; ok {
			return "", fmt.Errorf("%w: %q is listed twice", ErrorInvalidItemName, name)
		}
		seen[name] = struct{}{}

		builder.WriteString(name)
		builder.WriteString(CATALOGDELIMITER)
	}

	return builder.String(), nil
}

// Parses a serialized catalog. The last name does not have to be terminated
func ParseCatalog(serialized string) (Catalog, error) {
	var catalog Catalog
	for _, name := range strings.Split(serialized, CATALOGDELIMITER) {
		if name == "" {
			continue
		}
		catalog = append(catalog, name)
	}

	if len(catalog) == 0 {
		return nil, ErrorEmptyCatalog
	}

	return catalog, nil
}

// Tells whether the name is present in the catalog
func (catalog Catalog) Contains(name string) bool {
	for _, item := range catalog {
		if item == name {
			return true
		}
	}
	return false
}
