package mdns

import "net"

// Port is the mDNS port number.
const Port = 5353

var (
	// IPv4Group is the multicast group used for mDNS over IPv4.
	//
	// See https://tools.ietf.org/html/rfc6762#section-3.
	IPv4Group = net.IPv4(224, 0, 0, 251)

	// IPv4GroupAddress is the address to which mDNS packets are sent when
	// using IPv4.
	//
	// See https://tools.ietf.org/html/rfc6762#section-3.
	IPv4GroupAddress = &net.UDPAddr{IP: IPv4Group, Port: Port}
)
