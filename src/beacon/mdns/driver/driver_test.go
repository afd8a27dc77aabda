package driver_test

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dogmatiq/dodeca/logging"

	"github.com/jmalloc/beacon/src/beacon/mdns"
	. "github.com/jmalloc/beacon/src/beacon/mdns/driver"
	"github.com/jmalloc/beacon/src/beacon/mdns/transport"
	"github.com/jmalloc/beacon/src/beacon/names"
	"github.com/jmalloc/beacon/src/beacon/wire"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// memoryTransport is an in-memory Transport for exercising the driver
// without a socket.
type memoryTransport struct {
	in   chan *transport.InboundPacket
	out  chan []byte
	done chan struct{}
	once sync.Once
}

func newMemoryTransport() *memoryTransport {
	return &memoryTransport{
		in:   make(chan *transport.InboundPacket),
		out:  make(chan []byte, 16),
		done: make(chan struct{}),
	}
}

func (t *memoryTransport) Listen(*net.Interface) error {
	return nil
}

func (t *memoryTransport) Read() (*transport.InboundPacket, error) {
	select {
	case p := <-t.in:
		return p, nil
	case <-t.done:
		return nil, errors.New("transport closed")
	}
}

func (t *memoryTransport) Write(p *transport.OutboundPacket) error {
	data := append([]byte(nil), p.Data...)

	select {
	case t.out <- data:
	default:
	}

	return nil
}

func (t *memoryTransport) Group() *net.UDPAddr {
	return mdns.IPv4GroupAddress
}

func (t *memoryTransport) Close() error {
	t.once.Do(func() {
		close(t.done)
	})
	return nil
}

// deliver queues an inbound packet for the driver to read.
func (t *memoryTransport) deliver(data []byte, src *net.UDPAddr) {
	t.in <- &transport.InboundPacket{
		Transport: t,
		Source:    transport.Endpoint{Address: src},
		Data:      data,
	}
}

var _ = Describe("Driver", func() {
	var (
		tr     *memoryTransport
		mock   *clock.Mock
		engine *mdns.Server
		d      *Driver
		ctx    context.Context
		cancel context.CancelFunc
		src    *net.UDPAddr
	)

	service := names.MustParse("_svc._udp.local")

	parse := func(data []byte) *wire.Message {
		m, err := wire.ParseMessage(data, wire.Limits{})
		Expect(err).ShouldNot(HaveOccurred())
		return m
	}

	BeforeEach(func() {
		tr = newMemoryTransport()
		mock = clock.NewMock()
		src = &net.UDPAddr{IP: net.IPv4(10, 0, 0, 9), Port: mdns.Port}

		engine = mdns.NewServer(
			[]mdns.ServiceInfo{
				mdns.MustNewServiceInfo(
					"_svc._udp.local",
					"node1",
					"node1.local",
					[4]byte{10, 0, 0, 1},
					7000,
				),
			},
			mdns.WithLogger(logging.SilentLogger),
		)

		var err error
		d, err = New(
			engine,
			UseTransport(tr),
			UseInterface(net.Interface{Index: 1, Name: "mem0"}),
			UseClock(mock),
			UseLogger(logging.SilentLogger),
		)
		Expect(err).ShouldNot(HaveOccurred())

		ctx, cancel = context.WithCancel(context.Background())

		go func() {
			defer GinkgoRecover()
			_ = d.Run(ctx)
		}()
	})

	AfterEach(func() {
		cancel()
	})

	It("transmits the first announcement without any clock movement", func() {
		var data []byte
		Eventually(tr.out, "5s").Should(Receive(&data))

		m := parse(data)
		Expect(m.Flags.IsResponse()).To(BeTrue())
		Expect(len(m.Answers)).To(BeNumerically(">=", 4))
	})

	It("transmits the second announcement when the clock advances", func() {
		var data []byte
		Eventually(tr.out, "5s").Should(Receive(&data))

		Eventually(func() bool {
			mock.Add(100 * time.Millisecond)

			select {
			case data = <-tr.out:
				return true
			default:
				return false
			}
		}, "5s").Should(BeTrue())

		m := parse(data)
		Expect(m.Flags.IsResponse()).To(BeTrue())
	})

	It("surfaces discoveries on the remotes channel", func() {
		// Wait for the first announcement so the engine is running.
		Eventually(tr.out, "5s").Should(Receive())

		instance := service.Prepend("node2")
		host := names.MustParse("node2.local")

		m := wire.NewMessage(0, wire.StandardResponse(), wire.Limits{})
		m.AddAnswer(wire.Record{
			Name: service,
			Type: wire.TypePTR,
			TTL:  120,
			Data: wire.PTRData{Target: instance},
		})
		m.AddAnswer(wire.Record{
			Name: instance,
			Type: wire.TypeSRV,
			TTL:  120,
			Data: wire.SRVData{Port: 8000, Target: host},
		})
		m.AddAnswer(wire.Record{
			Name: host,
			Type: wire.TypeA,
			TTL:  120,
			Data: wire.AData{Addr: [4]byte{10, 0, 0, 2}},
		})

		buf := make([]byte, 1500)
		w := wire.NewWriter(buf)

		complete, err := m.Append(w)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(complete).To(BeTrue())

		n, err := w.Finish()
		Expect(err).ShouldNot(HaveOccurred())

		go tr.deliver(buf[:n], src)

		var svc mdns.RemoteService
		Eventually(d.Remotes(), "5s").Should(Receive(&svc))
		Expect(svc.Instance.Equal(instance)).To(BeTrue())
		Expect(svc.Port).To(Equal(uint16(8000)))
		Expect(svc.Addr).To(Equal([4]byte{10, 0, 0, 2}))
	})

	It("emits queries requested via Query", func() {
		// Drain the first announcement.
		Eventually(tr.out, "5s").Should(Receive())

		Expect(d.Query(ctx, []names.Name{service})).To(Succeed())

		var data []byte
		Eventually(tr.out, "5s").Should(Receive(&data))

		m := parse(data)
		Expect(m.Flags.IsResponse()).To(BeFalse())
		Expect(m.Questions).To(HaveLen(1))
		Expect(m.Questions[0].Name.Equal(service)).To(BeTrue())
	})
})
