package driver

import (
	"net"

	"github.com/benbjohnson/clock"
	"github.com/dogmatiq/dodeca/logging"
	"github.com/jmalloc/beacon/src/beacon/mdns/transport"
)

// Option is a function that applies an option to a driver created by New().
type Option func(*Driver) error

// UseLogger returns an option that sets the logger used by the driver.
func UseLogger(l logging.Logger) Option {
	return func(d *Driver) error {
		d.logger = l
		return nil
	}
}

// UseTransport returns an option that sets the transport the driver reads
// from and writes to.
//
// If this option is not provided, the driver uses an IPv4 multicast
// transport.
func UseTransport(t transport.Transport) Option {
	return func(d *Driver) error {
		d.transport = t
		return nil
	}
}

// UseInterface sets the network interface that is used by the driver.
//
// If this option is not provided, the driver chooses the interface used to
// access the internet.
func UseInterface(iface net.Interface) Option {
	return func(d *Driver) error {
		d.iface = &iface
		return nil
	}
}

// UseClock returns an option that sets the driver's time source.
//
// If this option is not provided, the system clock is used. Tests use a
// mock clock to step through the engine's schedule deterministically.
func UseClock(c clock.Clock) Option {
	return func(d *Driver) error {
		d.clock = c
		return nil
	}
}
