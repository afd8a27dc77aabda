package transport

// InboundPacket is a UDP packet received from a transport.
type InboundPacket struct {
	Transport Transport
	Source    Endpoint
	Data      []byte
}

// Close returns the packet's data buffer to the pool.
func (p *InboundPacket) Close() {
	putBuffer(p.Data)
	p.Data = nil
}

// OutboundPacket is a UDP packet to be sent by a transport.
type OutboundPacket struct {
	Destination Endpoint
	Data        []byte
}

// NewOutboundPacket copies data into a pooled buffer addressed to dest.
func NewOutboundPacket(dest Endpoint, data []byte) *OutboundPacket {
	buf := getBuffer()
	n := copy(buf, data)

	return &OutboundPacket{dest, buf[:n]}
}

// Close returns the packet's data buffer to the pool.
func (p *OutboundPacket) Close() {
	putBuffer(p.Data)
	p.Data = nil
}
