package mdns

import (
	"fmt"

	"github.com/jmalloc/beacon/src/beacon/names"
	"github.com/jmalloc/beacon/src/beacon/wire"
)

// DefaultCacheCapacity is the default number of remote instances a server
// retains.
const DefaultCacheCapacity = 16

// RemoteService is a remote instance of a service, reconstructed from the
// PTR, SRV, A and TXT records a peer advertised.
type RemoteService struct {
	// Instance is the full instance name, such as
	// "node2._service._udp.local".
	Instance names.Name

	// Service is the service type the instance was discovered under.
	Service names.Name

	// Host is the host name the instance's SRV record targets.
	Host names.Name

	// Addr is the IPv4 address of the host.
	Addr [4]byte

	// Port is the port the instance listens on.
	Port uint16

	// Text contains the entries of the instance's TXT record, if any.
	Text [][]byte
}

// IsComplete returns true once the instance's essential facts are known:
// its name, its target host, the host's address, and the port.
func (s *RemoteService) IsComplete() bool {
	return !s.Instance.IsEmpty() &&
		!s.Host.IsEmpty() &&
		s.Port != 0 &&
		s.Addr != [4]byte{}
}

// String returns a human-readable description of the instance.
func (s *RemoteService) String() string {
	return fmt.Sprintf(
		"%s -> %s:%d (%d.%d.%d.%d)",
		s.Instance,
		s.Host,
		s.Port,
		s.Addr[0], s.Addr[1], s.Addr[2], s.Addr[3],
	)
}

// remoteEntry is one cache slot.
type remoteEntry struct {
	service RemoteService

	// reported is true once the entry's completion has been surfaced as a
	// RemoteOutput (or suppressed as our own echo). Duplicate packets
	// refresh the entry but never re-report it.
	reported bool
}

// remoteCache is a bounded, insertion-ordered set of discovered remote
// services, keyed by instance name.
type remoteCache struct {
	capacity int
	entries  []remoteEntry
}

func newRemoteCache(capacity int) *remoteCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}

	return &remoteCache{
		capacity: capacity,
		entries:  make([]remoteEntry, 0, capacity),
	}
}

// observe fuses a received record into the cache.
//
// PTR records introduce instances; SRV, A and TXT records fill in the facts
// of instances already present. Records for unknown instances are ignored.
func (c *remoteCache) observe(rec wire.Record) {
	switch data := rec.Data.(type) {
	case wire.PTRData:
		c.observePTR(rec.Name, data.Target)

	case wire.SRVData:
		for i := range c.entries {
			e := &c.entries[i]
			if e.service.Instance.Equal(rec.Name) {
				e.service.Host = data.Target
				e.service.Port = data.Port
			}
		}

	case wire.AData:
		for i := range c.entries {
			e := &c.entries[i]
			if e.service.Host.Equal(rec.Name) {
				e.service.Addr = data.Addr
			}
		}

	case wire.TXTData:
		for i := range c.entries {
			e := &c.entries[i]
			if e.service.Instance.Equal(rec.Name) {
				e.service.Text = data.Entries
			}
		}
	}
}

// observePTR introduces an instance, evicting the oldest entry if the cache
// is full. An instance already present is refreshed, not reintroduced.
func (c *remoteCache) observePTR(service, instance names.Name) {
	for i := range c.entries {
		if c.entries[i].service.Instance.Equal(instance) {
			return
		}
	}

	if len(c.entries) == c.capacity {
		copy(c.entries, c.entries[1:])
		c.entries = c.entries[:c.capacity-1]
	}

	c.entries = append(c.entries, remoteEntry{
		service: RemoteService{
			Instance: instance,
			Service:  service,
		},
	})
}

// takeCompleted returns the next entry that has become complete but has not
// been reported, marking it reported. It returns false when there is none.
func (c *remoteCache) takeCompleted() (RemoteService, bool) {
	for i := range c.entries {
		e := &c.entries[i]
		if !e.reported && e.service.IsComplete() {
			e.reported = true
			return e.service, true
		}
	}

	return RemoteService{}, false
}
