package main

import (
	"fmt"
	"net"
	"strconv"
)

// endpoint is an address clients can dial, together with the network it
// belongs to.
type endpoint struct {
	addr   string
	subnet net.IPNet
}

// clientEndpoints lists the addresses under which a node bound to bound can
// be reached, given the addresses of the local interfaces. A wildcard bind
// yields one endpoint per usable interface address. Link-local addresses
// are skipped.
func clientEndpoints(bound *net.TCPAddr, ifaceAddrs []net.Addr) []endpoint {
	port := strconv.Itoa(bound.Port)
	wildcard := len(bound.IP) == 0 || bound.IP.IsUnspecified()
	var endpoints []endpoint
	for _, a := range ifaceAddrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipnet.IP
		if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
			continue
		}
		if !wildcard && !bound.IP.Equal(ip) && !ipnet.Contains(bound.IP) {
			continue
		}
		host := ip.String()
		if !wildcard {
			host = bound.IP.String()
		}
		subnet := net.IPNet{IP: ip.Mask(ipnet.Mask), Mask: ipnet.Mask}
		endpoints = append(endpoints, endpoint{addr: net.JoinHostPort(host, port), subnet: subnet})
		if !wildcard {
			break
		}
	}
	return endpoints
}

// splitHostPort splits an address into host and port, using defaultPort if no port is specified.
func splitHostPort(addr string, defaultPort int) (string, uint16, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		addr = net.JoinHostPort(addr, strconv.Itoa(defaultPort))
		host, port, err = net.SplitHostPort(addr)
		if err != nil {
			return "", 0, err
		}
	}
	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q: %w", port, err)
	}
	return host, uint16(p), nil
}
