package mdns

import "net"

// Input is one unit of input to a Server: a received packet or the passage
// of time.
type Input interface {
	isInput()
}

// PacketInput carries a datagram received from the network.
type PacketInput struct {
	// Data is the raw packet. The server does not retain it after Handle
	// returns.
	Data []byte

	// Source is the address the packet was received from.
	Source *net.UDPAddr
}

// TimeoutInput advances the server's clock.
//
// It is fine to deliver timeouts before the deadline the server asked for;
// the scheduled action simply fires on a later call.
type TimeoutInput struct {
	Time Time
}

func (PacketInput) isInput()  {}
func (TimeoutInput) isInput() {}

// Output is one unit of output from a Server.
type Output interface {
	isOutput()
}

// PacketOutput instructs the driver to transmit the first Len bytes of the
// buffer it passed to Handle.
type PacketOutput struct {
	Len  int
	Cast Cast
}

// TimeoutOutput reports the next time the server expects a TimeoutInput.
//
// The driver wakes at that deadline or upon receipt of a packet, whichever
// comes first.
type TimeoutOutput struct {
	Time Time
}

// RemoteOutput surfaces a newly discovered remote service instance.
type RemoteOutput struct {
	Service RemoteService
}

func (PacketOutput) isOutput()  {}
func (TimeoutOutput) isOutput() {}
func (RemoteOutput) isOutput()  {}

// Cast describes how an outgoing packet is to be addressed.
type Cast struct {
	addr *net.UDPAddr
}

// Multi is the multicast cast: the packet is sent to the mDNS group.
var Multi = Cast{}

// Uni returns a cast that addresses the packet to a single destination.
func Uni(addr *net.UDPAddr) Cast {
	return Cast{addr: addr}
}

// IsMulticast returns true if the packet is to be sent to the mDNS group.
func (c Cast) IsMulticast() bool {
	return c.addr == nil
}

// Addr returns the unicast destination, or nil for multicast.
func (c Cast) Addr() *net.UDPAddr {
	return c.addr
}
