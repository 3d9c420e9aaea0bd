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

package addr

import (
	"fmt"
	"net"
)

// Get local IP address; from https://stackoverflow.com/a/37382208
func GetLocal() (string, error) {
	conn, err := net.Dial("udp4", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)

	return localAddr.IP.String(), nil
}

// Resolves ip address|domain name and a port into an IPv4 UDP address
func Resolve(host string, port uint) (*net.UDPAddr, error) {
	if host == "" {
		return nil, fmt.Errorf("no address to resolve")
	}
	if port == 0 || port > 65535 {
		return nil, fmt.Errorf("invalid port %d", port)
	}

	return net.ResolveUDPAddr("udp4", net.JoinHostPort(host, fmt.Sprint(port)))
}
