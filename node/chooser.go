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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Unbewohnte/vidcat/protocol"
)

// Picks one item of the catalog. Returns its index
type Chooser interface {
	Choose(catalog protocol.Catalog) (int, error)
}

// Lets an ordinary function be a Chooser
type ChooserFunc func(catalog protocol.Catalog) (int, error)

func (f ChooserFunc) Choose(catalog protocol.Catalog) (int, error) {
	return f(catalog)
}

// Prints a numbered list and asks for a number until a valid one is given
type ConsoleChooser struct {
	Input  io.Reader
	Output io.Writer
}

func (chooser *ConsoleChooser) Choose(catalog protocol.Catalog) (int, error) {
	fmt.Fprintf(chooser.Output, "\n=============== Video List ===============\n")
	for index, name := range catalog {
		fmt.Fprintf(chooser.Output, " %d) %s\n", index+1, name)
	}

	scanner := bufio.NewScanner(chooser.Input)
	for {
		fmt.Fprintf(chooser.Output, " - Choose number: ")

		if !scanner.Scan() {
			err := scanner.Err()
			if err == nil {
				err = io.EOF
			}
			return -1, fmt.Errorf("%w: %s", ErrorInvalidChoice, err)
		}

		number, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil || number < 1 || number > len(catalog) {
			continue
		}

		fmt.Fprintf(chooser.Output, "==========================================\n\n")

		return number - 1, nil
	}
}
