package transport

import (
	"net"

	"github.com/jmalloc/beacon/src/beacon/mdns"
)

// Transport is an interface for communicating via UDP.
//
// It carries raw datagrams; the engine owns the codec.
type Transport interface {
	// Listen starts listening for UDP packets on the given interface.
	Listen(iface *net.Interface) error

	// Read reads the next packet from the transport.
	Read() (*InboundPacket, error)

	// Write sends a packet via the transport.
	Write(*OutboundPacket) error

	// Group returns the multicast group address for this transport.
	Group() *net.UDPAddr

	// Close closes the transport, preventing further reads and writes.
	Close() error
}

// Send transmits data to the destination the engine chose: the multicast
// group, or a unicast address.
func Send(t Transport, data []byte, cast mdns.Cast) error {
	addr := cast.Addr()
	if addr == nil {
		addr = t.Group()
	}

	out := NewOutboundPacket(Endpoint{Address: addr}, data)
	defer out.Close()

	return t.Write(out)
}
