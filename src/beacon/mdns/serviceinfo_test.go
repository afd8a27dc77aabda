package mdns_test

import (
	. "github.com/jmalloc/beacon/src/beacon/mdns"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("NewServiceInfo", func() {
	It("derives the instance name from the service type", func() {
		i, err := NewServiceInfo(
			"_svc._udp.local",
			"node1",
			"node1.local",
			[4]byte{10, 0, 0, 1},
			7000,
		)

		Expect(err).ShouldNot(HaveOccurred())
		Expect(i.ServiceName().String()).To(Equal("_svc._udp.local"))
		Expect(i.InstanceName().String()).To(Equal("node1._svc._udp.local"))
		Expect(i.HostName().String()).To(Equal("node1.local"))
		Expect(i.Addr()).To(Equal([4]byte{10, 0, 0, 1}))
		Expect(i.Port()).To(Equal(uint16(7000)))
	})

	It("rejects an invalid service type", func() {
		_, err := NewServiceInfo(
			"",
			"node1",
			"node1.local",
			[4]byte{10, 0, 0, 1},
			7000,
		)
		Expect(err).Should(HaveOccurred())
	})

	It("rejects an invalid instance segment", func() {
		_, err := NewServiceInfo(
			"_svc._udp.local",
			"",
			"node1.local",
			[4]byte{10, 0, 0, 1},
			7000,
		)
		Expect(err).Should(HaveOccurred())
	})

	It("rejects a zero port", func() {
		_, err := NewServiceInfo(
			"_svc._udp.local",
			"node1",
			"node1.local",
			[4]byte{10, 0, 0, 1},
			0,
		)
		Expect(err).Should(HaveOccurred())
	})

	It("rejects an oversized text entry", func() {
		_, err := NewServiceInfo(
			"_svc._udp.local",
			"node1",
			"node1.local",
			[4]byte{10, 0, 0, 1},
			7000,
			WithText(string(make([]byte, 256))),
		)
		Expect(err).Should(HaveOccurred())
	})

	It("rejects a zero TTL override", func() {
		_, err := NewServiceInfo(
			"_svc._udp.local",
			"node1",
			"node1.local",
			[4]byte{10, 0, 0, 1},
			7000,
			WithTTL(0),
		)
		Expect(err).Should(HaveOccurred())
	})
})
