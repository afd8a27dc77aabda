package transport

import (
	"fmt"
	"net"

	"github.com/dogmatiq/dodeca/logging"
)

// packetConn contains the group-membership methods of *ipv4.PacketConn.
type packetConn interface {
	JoinGroup(*net.Interface, net.Addr) error
}

// joinGroup joins the mDNS multicast group on the given interface.
func joinGroup(
	pc packetConn,
	group net.IP,
	iface *net.Interface,
	logger logging.Logger,
) error {
	addr := &net.UDPAddr{
		IP: group,
	}

	if err := pc.JoinGroup(iface, addr); err != nil {
		logging.Debug(
			logger,
			"unable to join the '%s' multicast group on the '%s' interface: %s",
			addr.IP,
			iface.Name,
			err,
		)

		return fmt.Errorf(
			"unable to join the '%s' multicast group: %w",
			addr.IP,
			err,
		)
	}

	return nil
}
