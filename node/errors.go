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

import "fmt"

var (
	ErrorProtocolViolation error = fmt.Errorf("protocol violation")
	ErrorCatalogEmpty      error = fmt.Errorf("no video files available")
	ErrorSelectionNotFound error = fmt.Errorf("selected file is not available")
	ErrorInvalidChoice     error = fmt.Errorf("invalid choice")

	// the stream has been silent for longer than the inactivity threshold
	errorInactive error = fmt.Errorf("inactivity threshold exceeded")
)

// Failure of a local file operation
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (err *IOError) Error() string {
	return fmt.Sprintf("%s %s: %s", err.Op, err.Path, err.Err)
}

func (err *IOError) Unwrap() error {
	return err.Err
}
