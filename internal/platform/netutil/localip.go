// Package netutil finds the address this instance advertises to clients.
package netutil

import (
	"errors"
	"fmt"
	"net"
)

var ErrNoAddress = errors.New("no non-loopback IPv4 address found")

// probeAddr is only used to select the outbound interface; UDP dial sends nothing.
const probeAddr = "8.8.8.8:80"

// LocalIP returns the advertise override when set, otherwise the IPv4
// address of the interface used for outbound traffic, falling back to the
// first non-loopback interface address.
func LocalIP(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if conn, err := net.Dial("udp", probeAddr); err == nil {
		defer conn.Close()
		if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok && !addr.IP.IsUnspecified() && !addr.IP.IsLoopback() {
			return addr.IP.String(), nil
		}
	}

	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", fmt.Errorf("failed to list interface addresses: %w", err)
	}
	return firstIPv4(addrs)
}

func firstIPv4(addrs []net.Addr) (string, error) {
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil {
			return ip4.String(), nil
		}
	}
	return "", ErrNoAddress
}
