package mdns

import (
	"net"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/jmalloc/beacon/src/beacon/names"
	"github.com/jmalloc/beacon/src/beacon/wire"
)

// secondAnnounceDelay is the gap between the first and second announcement
// of each service, in milliseconds.
//
// Per https://tools.ietf.org/html/rfc6762#section-8.3, a responder must
// send at least two announcements, one second apart.
const secondAnnounceDelay = 1000

// DefaultReannounceInterval is the default steady-state re-announce
// interval, in milliseconds.
const DefaultReannounceInterval = 60_000

// phase identifies where the server is in its announcement lifecycle.
type phase int

const (
	// phaseFirstAnnounce emits the initial announcement of each service.
	phaseFirstAnnounce phase = iota

	// phaseSecondAnnounce repeats each announcement one second later.
	phaseSecondAnnounce

	// phaseSteady re-announces all services periodically.
	phaseSteady

	// phaseQueryOnly never announces; the server only emits queries.
	phaseQueryOnly
)

// Server is a sans-IO engine for mDNS service advertisement and discovery.
//
// The server owns no sockets and no timers. A driver feeds it packets and
// timeouts via Handle() and acts on the outputs: transmit a packet, surface
// a discovery, or sleep until a deadline.
//
// A Server must be driven by a single goroutine. The output sequence is a
// deterministic function of the input sequence.
//
// The server does not detect instance-name conflicts; two nodes claiming
// the same instance name will silently interfere.
type Server struct {
	services []ServiceInfo
	cache    *remoteCache
	limits   wire.Limits
	logger   logging.Logger

	phase         phase
	announceIndex int
	clock         Time
	nextDeadline  Time
	reannounce    uint64
	jitter        *jitterSource

	pendingQuery []names.Name
	queried      []names.Name
}

// ServerOption is a function that applies an option to a server created by
// NewServer().
type ServerOption func(*Server)

// WithLogger returns an option that sets the logger used for diagnostics.
func WithLogger(l logging.Logger) ServerOption {
	return func(s *Server) {
		s.logger = l
	}
}

// WithCacheCapacity returns an option that bounds the number of remote
// instances the server retains.
func WithCacheCapacity(n int) ServerOption {
	return func(s *Server) {
		s.cache = newRemoteCache(n)
	}
}

// WithLimits returns an option that applies static-mode collection bounds
// to parsing and serialization.
func WithLimits(l wire.Limits) ServerOption {
	return func(s *Server) {
		s.limits = l
	}
}

// WithReannounceInterval returns an option that overrides the steady-state
// re-announce interval, in milliseconds.
func WithReannounceInterval(millis uint64) ServerOption {
	return func(s *Server) {
		if millis > 0 {
			s.reannounce = millis
		}
	}
}

// NewServer returns a server advertising the given services.
//
// The first announcement is due immediately: the server's initial deadline
// is time zero. A server created with no services never announces; it can
// still discover peers via Query().
func NewServer(services []ServiceInfo, options ...ServerOption) *Server {
	s := &Server{
		services:   services,
		reannounce: DefaultReannounceInterval,
	}

	seed := ""
	if len(services) > 0 {
		seed = services[0].InstanceName().String()
	}
	s.jitter = newJitterSource(seed)

	for _, opt := range options {
		opt(s)
	}

	if len(services) == 0 {
		s.phase = phaseQueryOnly
		s.nextDeadline = s.clock.Add(s.reannounce)
	}

	if s.cache == nil {
		s.cache = newRemoteCache(DefaultCacheCapacity)
	}

	if s.logger == nil {
		s.logger = logging.DefaultLogger
	}

	return s
}

// Query requests that the server emit a PTR query for the given service
// types on its next Handle() call.
//
// Duplicate targets are collapsed, so the emitted packet asks each question
// at most once. Instances discovered under the queried types are cached and
// surfaced as RemoteOutput values.
func (s *Server) Query(targets []names.Name) {
	var deduped []names.Name

	for _, t := range targets {
		dup := false
		for _, x := range deduped {
			if x.Equal(t) {
				dup = true
				break
			}
		}

		if !dup {
			deduped = append(deduped, t)
			s.addQueried(t)
		}
	}

	s.pendingQuery = deduped
}

// Handle consumes one input and produces exactly one output.
//
// Upon a PacketOutput, buf holds the bytes to transmit. The driver calls
// Handle repeatedly until it returns a TimeoutOutput, then sleeps until the
// reported deadline or the next inbound packet.
func (s *Server) Handle(in Input, buf []byte) Output {
	switch v := in.(type) {
	case PacketInput:
		return s.handlePacket(v.Data, v.Source, buf)
	case TimeoutInput:
		return s.handleTimeout(v.Time, buf)
	default:
		return TimeoutOutput{Time: s.nextDeadline}
	}
}

// handleTimeout advances the clock and fires whatever is due, in output
// priority order: a queued packet first, then a pending discovery, then the
// next deadline.
func (s *Server) handleTimeout(now Time, buf []byte) Output {
	if s.clock.Before(now) {
		s.clock = now
	}

	if s.pendingQuery != nil {
		return s.sendQuery(buf)
	}

	if !s.clock.Before(s.nextDeadline) && s.phase != phaseQueryOnly {
		return s.sendAnnouncement(buf)
	}

	if svc, ok := s.takeDiscovery(); ok {
		return RemoteOutput{Service: svc}
	}

	if s.phase == phaseQueryOnly && !s.clock.Before(s.nextDeadline) {
		// Nothing is scheduled in query-only mode; just push the idle
		// deadline forward.
		s.nextDeadline = s.clock.Add(s.reannounce)
	}

	return TimeoutOutput{Time: s.nextDeadline}
}

// sendQuery emits the pending query packet.
func (s *Server) sendQuery(buf []byte) Output {
	// Multicast queries carry a zero ID; see
	// https://tools.ietf.org/html/rfc6762#section-18.1.
	m := wire.NewMessage(0, wire.StandardQuery(), s.limits)

	for _, t := range s.pendingQuery {
		m.AddQuestion(wire.Question{
			Name:  t,
			Type:  wire.TypePTR,
			Class: wire.ClassIN,
		})
	}

	n, err := s.send(m, buf)
	if err != nil {
		// State is left untouched so the driver can retry with a larger
		// buffer.
		return TimeoutOutput{Time: s.nextDeadline}
	}

	s.pendingQuery = nil
	return PacketOutput{Len: n, Cast: Multi}
}

// sendAnnouncement emits the announcement the current phase calls for, and
// advances the phase machine.
func (s *Server) sendAnnouncement(buf []byte) Output {
	m := wire.NewMessage(0, wire.StandardResponse(), s.limits)

	if s.phase == phaseSteady {
		for i := range s.services {
			s.services[i].announce(m)
		}
	} else {
		s.services[s.announceIndex].announce(m)
	}

	n, err := s.send(m, buf)
	if err != nil {
		return TimeoutOutput{Time: s.nextDeadline}
	}

	switch s.phase {
	case phaseFirstAnnounce:
		s.announceIndex++
		if s.announceIndex == len(s.services) {
			s.announceIndex = 0
			s.phase = phaseSecondAnnounce
			s.nextDeadline = s.clock.Add(secondAnnounceDelay)
		}

	case phaseSecondAnnounce:
		s.announceIndex++
		if s.announceIndex == len(s.services) {
			s.announceIndex = 0
			s.phase = phaseSteady
			s.nextDeadline = s.clock.Add(s.jitter.jitter(s.reannounce))
		}

	case phaseSteady:
		s.nextDeadline = s.clock.Add(s.jitter.jitter(s.reannounce))
	}

	return PacketOutput{Len: n, Cast: Multi}
}

// handlePacket parses an inbound datagram and reacts to it.
//
// Malformed packets are dropped; mDNS is lossy by design and a parse
// failure never wedges the server.
func (s *Server) handlePacket(data []byte, src *net.UDPAddr, buf []byte) Output {
	m, err := wire.ParseMessage(data, s.limits)
	if err != nil {
		logging.Debug(s.logger, "dropping unparseable packet from %s: %s", src, err)
		return TimeoutOutput{Time: s.nextDeadline}
	}

	if m.Flags.IsResponse() {
		return s.handleResponse(m)
	}

	return s.handleQuestions(m, buf)
}

// handleQuestions answers the questions of an inbound query that match our
// services.
func (s *Server) handleQuestions(m *wire.Message, buf []byte) Output {
	// See https://tools.ietf.org/html/rfc6762#section-18.3: messages with
	// a non-zero OPCODE are silently ignored.
	if m.Flags.Opcode() != 0 {
		return TimeoutOutput{Time: s.nextDeadline}
	}

	res := wire.NewMessage(0, wire.StandardResponse(), s.limits)

	for _, q := range m.Questions {
		for i := range s.services {
			s.services[i].answerQuestion(q, res)
		}
	}

	if res.IsEmpty() {
		return TimeoutOutput{Time: s.nextDeadline}
	}

	n, err := s.send(res, buf)
	if err != nil {
		return TimeoutOutput{Time: s.nextDeadline}
	}

	return PacketOutput{Len: n, Cast: Multi}
}

// handleResponse feeds an inbound response's records to the discovery
// cache, surfacing an instance that just became complete.
func (s *Server) handleResponse(m *wire.Message) Output {
	for _, rec := range m.Answers {
		s.observe(rec)
	}
	for _, rec := range m.Additionals {
		s.observe(rec)
	}

	if svc, ok := s.takeDiscovery(); ok {
		return RemoteOutput{Service: svc}
	}

	return TimeoutOutput{Time: s.nextDeadline}
}

// observe feeds one received record to the cache.
//
// Only PTR records for service types we advertise or have queried introduce
// new instances; everything else merely completes instances already known.
func (s *Server) observe(rec wire.Record) {
	if _, ok := rec.Data.(wire.PTRData); ok && !s.isInterested(rec.Name) {
		return
	}

	s.cache.observe(rec)
}

// takeDiscovery returns the next completed remote instance, suppressing
// echoes of our own advertisements.
func (s *Server) takeDiscovery() (RemoteService, bool) {
	for {
		svc, ok := s.cache.takeCompleted()
		if !ok {
			return RemoteService{}, false
		}

		if s.isSelf(svc) {
			logging.Debug(s.logger, "ignoring echo of own instance %s", svc.Instance)
			continue
		}

		logging.Debug(s.logger, "discovered %s", &svc)
		return svc, true
	}
}

// isInterested returns true if the given service type is one we advertise
// or have queried for.
func (s *Server) isInterested(service names.Name) bool {
	for i := range s.services {
		if s.services[i].ServiceName().Equal(service) {
			return true
		}
	}

	for _, t := range s.queried {
		if t.Equal(service) {
			return true
		}
	}

	return false
}

// isSelf returns true if the discovered instance is one of our own,
// echoed back to us.
func (s *Server) isSelf(svc RemoteService) bool {
	for i := range s.services {
		local := &s.services[i]
		if svc.Instance.Equal(local.InstanceName()) &&
			svc.Addr == local.Addr() &&
			svc.Port == local.Port() {
			return true
		}
	}

	return false
}

// addQueried remembers a query target so that responses to it pass the
// interest filter.
func (s *Server) addQueried(t names.Name) {
	for _, x := range s.queried {
		if x.Equal(t) {
			return
		}
	}

	s.queried = append(s.queried, t)
}

// send serializes m into buf.
//
// A message that could not be serialized in full is abandoned rather than
// sent partially; the caller reports a timeout and retries later.
func (s *Server) send(m *wire.Message, buf []byte) (int, error) {
	w := wire.NewWriter(buf)

	complete, err := m.Append(w)
	if err != nil {
		logging.Debug(s.logger, "abandoning outbound packet: %s", err)
		return 0, err
	}

	if !complete {
		logging.Debug(s.logger, "abandoning outbound packet: %s", wire.ErrBufferFull)
		return 0, wire.ErrBufferFull
	}

	n, err := w.Finish()
	if err != nil {
		return 0, err
	}

	return n, nil
}
