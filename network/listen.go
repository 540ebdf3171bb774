package network

import (
	"fmt"
	"net"
)

// Listen binds the first free TCP port in [startPort, endPort] on host.
func Listen(host string, startPort, endPort uint16) (net.Listener, error) {
	if endPort < startPort {
		return nil, fmt.Errorf("invalid port range %d-%d", startPort, endPort)
	}
	var err error
	for port := int(startPort); port <= int(endPort); port++ {
		var l net.Listener
		l, err = net.Listen("tcp", net.JoinHostPort(host, fmt.Sprint(port)))
		if err == nil {
			return l, nil
		}
	}
	return nil, fmt.Errorf("no free port in %d-%d on %s: %w", startPort, endPort, host, err)
}
