package transport

import (
	"net"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/jmalloc/beacon/src/beacon/mdns"

	ipvx "golang.org/x/net/ipv4"
)

// IPv4ListenAddress is the address to which the transport binds. Note that
// the multicast group address is NOT used in order to control more precisely
// which network interfaces join the multicast group.
var IPv4ListenAddress = &net.UDPAddr{IP: net.ParseIP("224.0.0.0"), Port: mdns.Port}

// IPv4Transport is an IPv4-based UDP transport.
type IPv4Transport struct {
	Logger logging.Logger
	pc     *ipvx.PacketConn
}

// Listen starts listening for UDP packets on the given interface.
func (t *IPv4Transport) Listen(iface *net.Interface) error {
	addr := IPv4ListenAddress
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		logListenError(t.Logger, addr, err)
		return err
	}

	logListening(t.Logger, addr, iface)

	t.pc = ipvx.NewPacketConn(conn)
	t.pc.SetControlMessage(ipvx.FlagInterface, true)

	if err := joinGroup(
		t.pc,
		mdns.IPv4Group,
		iface,
		t.Logger,
	); err != nil {
		t.pc.Close()
		return err
	}

	return nil
}

// Read reads the next packet from the transport.
func (t *IPv4Transport) Read() (*InboundPacket, error) {
	buf := getBuffer()

	n, cm, src, err := t.pc.ReadFrom(buf)
	if err != nil {
		putBuffer(buf)
		logReadError(t.Logger, t.Group(), err)
		return nil, err
	}

	buf = buf[:n]

	ifIndex := 0
	if cm != nil {
		ifIndex = cm.IfIndex
	}

	return &InboundPacket{
		t,
		Endpoint{
			ifIndex,
			src.(*net.UDPAddr),
		},
		buf,
	}, nil
}

// Write sends a packet via the transport.
func (t *IPv4Transport) Write(p *OutboundPacket) error {
	if _, err := t.pc.WriteTo(
		p.Data,
		&ipvx.ControlMessage{
			IfIndex: p.Destination.InterfaceIndex,
		},
		p.Destination.Address,
	); err != nil {
		logWriteError(t.Logger, p.Destination.Address, t.Group(), err)
		return err
	}

	return nil
}

// Group returns the multicast group address for this transport.
func (t *IPv4Transport) Group() *net.UDPAddr {
	return mdns.IPv4GroupAddress
}

// Close closes the transport, preventing further reads and writes.
func (t *IPv4Transport) Close() error {
	return t.pc.Close()
}
