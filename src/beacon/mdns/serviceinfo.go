package mdns

import (
	"errors"
	"fmt"

	"github.com/jmalloc/beacon/src/beacon/names"
	"github.com/jmalloc/beacon/src/beacon/wire"
)

// DefaultTTL is the default TTL, in seconds, for all advertised records.
const DefaultTTL = 120

// ServiceInfo describes one locally-advertised service instance.
//
// It is immutable after construction.
type ServiceInfo struct {
	serviceName  names.Name
	instanceName names.Name
	hostName     names.Name
	addr         [4]byte
	port         uint16
	text         [][]byte
	ttl          uint32
}

// ServiceInfoOption is a function that applies an option to a ServiceInfo
// created by NewServiceInfo().
type ServiceInfoOption func(*ServiceInfo) error

// WithText returns an option that sets the entries of the instance's TXT
// record, typically "key=value" pairs as per
// https://tools.ietf.org/html/rfc6763#section-6.3.
func WithText(entries ...string) ServiceInfoOption {
	return func(i *ServiceInfo) error {
		for _, e := range entries {
			if len(e) > 255 {
				return fmt.Errorf("text entry '%s' exceeds 255 bytes", e)
			}
			i.text = append(i.text, []byte(e))
		}
		return nil
	}
}

// WithTTL returns an option that overrides the TTL, in seconds, of the
// instance's records.
func WithTTL(seconds uint32) ServiceInfoOption {
	return func(i *ServiceInfo) error {
		if seconds == 0 {
			return errors.New("TTL must not be zero")
		}
		i.ttl = seconds
		return nil
	}
}

// NewServiceInfo describes a service instance to advertise.
//
// service is the service type, such as "_service._udp.local"; instance is
// the single segment identifying this instance under it, such as "node1";
// host is the name the SRV record targets, such as "node1.local"; addr and
// port locate the service on the network.
func NewServiceInfo(
	service string,
	instance string,
	host string,
	addr [4]byte,
	port uint16,
	options ...ServiceInfoOption,
) (ServiceInfo, error) {
	sn, err := names.Parse(service)
	if err != nil {
		return ServiceInfo{}, err
	}

	hn, err := names.Parse(host)
	if err != nil {
		return ServiceInfo{}, err
	}

	in := sn.Prepend(instance)
	if err := in.Validate(); err != nil {
		return ServiceInfo{}, err
	}

	if port == 0 {
		return ServiceInfo{}, errors.New("port must not be zero")
	}

	i := ServiceInfo{
		serviceName:  sn,
		instanceName: in,
		hostName:     hn,
		addr:         addr,
		port:         port,
		ttl:          DefaultTTL,
	}

	for _, opt := range options {
		if err := opt(&i); err != nil {
			return ServiceInfo{}, err
		}
	}

	return i, nil
}

// MustNewServiceInfo describes a service instance to advertise.
// It panics if the description is invalid.
func MustNewServiceInfo(
	service string,
	instance string,
	host string,
	addr [4]byte,
	port uint16,
	options ...ServiceInfoOption,
) ServiceInfo {
	i, err := NewServiceInfo(service, instance, host, addr, port, options...)
	if err != nil {
		panic(err)
	}
	return i
}

// ServiceName returns the service type, such as "_service._udp.local".
func (i *ServiceInfo) ServiceName() names.Name {
	return i.serviceName
}

// InstanceName returns the full instance name, such as
// "node1._service._udp.local".
func (i *ServiceInfo) InstanceName() names.Name {
	return i.instanceName
}

// HostName returns the host name the instance's SRV record targets.
func (i *ServiceInfo) HostName() names.Name {
	return i.hostName
}

// Addr returns the IPv4 address of the host.
func (i *ServiceInfo) Addr() [4]byte {
	return i.addr
}

// Port returns the port the service listens on.
func (i *ServiceInfo) Port() uint16 {
	return i.port
}

// ptr returns the instance's PTR record.
func (i *ServiceInfo) ptr() wire.Record {
	return wire.Record{
		Name: i.serviceName,
		Type: wire.TypePTR,
		TTL:  i.ttl,
		Data: wire.PTRData{Target: i.instanceName},
	}
}

// srv returns the instance's SRV record.
func (i *ServiceInfo) srv() wire.Record {
	return wire.Record{
		Name: i.instanceName,
		Type: wire.TypeSRV,
		TTL:  i.ttl,
		Data: wire.SRVData{
			Port:   i.port,
			Target: i.hostName,
		},
	}
}

// txt returns the instance's TXT record.
func (i *ServiceInfo) txt() wire.Record {
	return wire.Record{
		Name: i.instanceName,
		Type: wire.TypeTXT,
		TTL:  i.ttl,
		Data: wire.TXTData{Entries: i.text},
	}
}

// a returns the A record for the instance's host.
func (i *ServiceInfo) a() wire.Record {
	return wire.Record{
		Name: i.hostName,
		Type: wire.TypeA,
		TTL:  i.ttl,
		Data: wire.AData{Addr: i.addr},
	}
}

// announce adds the instance's full record tuple to the answer section of m.
//
// Announcements carry everything as answers, not additionals; see
// https://tools.ietf.org/html/rfc6762#section-8.3.
func (i *ServiceInfo) announce(m *wire.Message) {
	m.AddAnswer(i.ptr())
	m.AddAnswer(i.srv())
	m.AddAnswer(i.txt())
	m.AddAnswer(i.a())
}

// answerQuestion adds the records answering q to m.
//
// It returns true if the question asked for one of the instance's records,
// that is, if both its name and its type matched.
func (i *ServiceInfo) answerQuestion(q wire.Question, m *wire.Message) bool {
	matched := false

	if q.Matches(i.serviceName, wire.TypePTR) {
		m.AddAnswer(i.ptr())
		m.AddAdditional(i.srv())
		m.AddAdditional(i.txt())
		m.AddAdditional(i.a())
		matched = true
	}

	if q.Matches(i.instanceName, wire.TypeSRV) {
		m.AddAnswer(i.srv())
		m.AddAdditional(i.a())
		matched = true
	}

	if q.Matches(i.instanceName, wire.TypeTXT) {
		m.AddAnswer(i.txt())
		matched = true
	}

	if q.Matches(i.hostName, wire.TypeA) {
		m.AddAnswer(i.a())
		matched = true
	}

	return matched
}
