package driver

import (
	"context"
	"net"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dogmatiq/dodeca/logging"
	"github.com/jmalloc/beacon/src/beacon/mdns"
	"github.com/jmalloc/beacon/src/beacon/mdns/transport"
	"github.com/jmalloc/beacon/src/beacon/names"
	"golang.org/x/sync/errgroup"
)

// Driver runs a sans-IO mDNS engine against a real transport and clock.
//
// It owns everything the engine deliberately does not: the socket, the
// timer source, and the goroutines. The engine itself is only ever touched
// from the driver's single run loop.
type Driver struct {
	engine    *mdns.Server
	transport transport.Transport
	iface     *net.Interface
	clock     clock.Clock
	logger    logging.Logger

	epoch   time.Time
	buf     []byte
	packets chan *transport.InboundPacket
	queries chan []names.Name
	remotes chan mdns.RemoteService
}

// New returns a driver for the given engine.
func New(engine *mdns.Server, options ...Option) (*Driver, error) {
	d := &Driver{
		engine:  engine,
		buf:     make([]byte, outputBufferSize),
		packets: make(chan *transport.InboundPacket),
		queries: make(chan []names.Name),
		remotes: make(chan mdns.RemoteService, remoteBacklog),
	}

	for _, opt := range options {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	if d.logger == nil {
		d.logger = logging.DefaultLogger
	}

	if d.clock == nil {
		d.clock = clock.New()
	}

	if d.transport == nil {
		d.transport = &transport.IPv4Transport{
			Logger: d.logger,
		}
	}

	if d.iface == nil {
		iface, err := internetInterface()
		if err != nil {
			return nil, err
		}
		d.iface = &iface
	}

	return d, nil
}

const (
	// outputBufferSize is the size of the buffer the engine serializes
	// outbound packets into. mDNS packets must fit in a single datagram.
	outputBufferSize = 9000

	// remoteBacklog is the number of discoveries buffered for a slow
	// consumer before further discoveries are dropped.
	remoteBacklog = 16
)

// Remotes returns the channel on which discovered services are delivered.
func (d *Driver) Remotes() <-chan mdns.RemoteService {
	return d.remotes
}

// Query asks the engine to emit a PTR query for the given service types.
//
// It blocks until the run loop accepts the request, or ctx is canceled.
func (d *Driver) Query(ctx context.Context, targets []names.Name) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case d.queries <- targets:
		return nil
	}
}

// Run drives the engine until ctx is canceled or an error occurs.
func (d *Driver) Run(ctx context.Context) error {
	if err := d.transport.Listen(d.iface); err != nil {
		return err
	}
	defer d.transport.Close()

	d.epoch = d.clock.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return d.receive(ctx)
	})

	g.Go(func() error {
		return d.run(ctx)
	})

	go func() {
		<-ctx.Done()
		_ = d.transport.Close() // break out of Read() when the context is canceled
	}()

	err := g.Wait()

	if err == context.Canceled {
		return nil
	}

	return err
}

// now returns the engine's view of the current time.
func (d *Driver) now() mdns.Time {
	return mdns.Millis(uint64(d.clock.Since(d.epoch) / time.Millisecond))
}

// run is the driver's main loop: it exchanges inputs and outputs with the
// engine, transmitting packets and surfacing discoveries, and sleeps until
// the engine's deadline when there is nothing else to do.
func (d *Driver) run(ctx context.Context) error {
	var input mdns.Input = mdns.TimeoutInput{Time: d.now()}

	for {
		output := d.engine.Handle(input, d.buf)
		input = mdns.TimeoutInput{Time: d.now()}

		switch out := output.(type) {
		case mdns.PacketOutput:
			if err := transport.Send(d.transport, d.buf[:out.Len], out.Cast); err != nil {
				return err
			}

		case mdns.RemoteOutput:
			select {
			case d.remotes <- out.Service:
			default:
				logging.Debug(d.logger, "discarding discovery of %s: consumer is not keeping up", out.Service.Instance)
			}

		case mdns.TimeoutOutput:
			in, err := d.wait(ctx, out.Time)
			if err != nil {
				return err
			}
			input = in
		}
	}
}

// wait blocks until the engine's deadline passes, a packet arrives, or a
// query is requested, and returns the resulting input.
func (d *Driver) wait(ctx context.Context, deadline mdns.Time) (mdns.Input, error) {
	timer := d.clock.Timer(
		time.Duration(d.now().MillisUntil(deadline)) * time.Millisecond,
	)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()

	case <-timer.C:
		return mdns.TimeoutInput{Time: d.now()}, nil

	case targets := <-d.queries:
		d.engine.Query(targets)
		return mdns.TimeoutInput{Time: d.now()}, nil

	case p := <-d.packets:
		in := mdns.PacketInput{
			Data:   append([]byte(nil), p.Data...),
			Source: p.Source.Address,
		}
		p.Close()
		return in, nil
	}
}

// receive pipes packets received from the transport to the run loop.
func (d *Driver) receive(ctx context.Context) error {
	for {
		p, err := d.transport.Read()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		select {
		case <-ctx.Done():
			p.Close()
			return ctx.Err()
		case d.packets <- p:
		}
	}
}
