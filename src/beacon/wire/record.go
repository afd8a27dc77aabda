package wire

import (
	"bytes"

	"github.com/jmalloc/beacon/src/beacon/names"
)

// Record is a single resource record in the answer, authority or additional
// section of a DNS message.
type Record struct {
	Name names.Name
	Type Type
	TTL  uint32

	// CacheFlush is true if the sender set the top bit of the class field,
	// marking the record as part of a "unique" record set.
	//
	// See https://tools.ietf.org/html/rfc6762#section-18.13. The bit is
	// decoded for the caller's benefit but always emitted clear.
	CacheFlush bool

	Data RecordData
}

// RecordData is the typed rdata of a resource record.
type RecordData interface {
	// append serializes the rdata, including its length prefix.
	append(w *Writer, c *NameCoder)

	// equal returns true if the rdata is identical to o.
	equal(o RecordData) bool
}

// PTRData maps a service type to an instance name.
type PTRData struct {
	Target names.Name
}

// SRVData maps an instance name to a host and port.
type SRVData struct {
	Priority uint16
	Weight   uint16
	Port     uint16
	Target   names.Name
}

// TXTData carries free-form metadata as a sequence of byte strings.
type TXTData struct {
	Entries [][]byte
}

// AData is the IPv4 address of a host.
type AData struct {
	Addr [4]byte
}

// equal returns true if two records carry the same (name, type, class,
// rdata) tuple. TTL and the cache-flush bit do not participate.
func (rec Record) equal(o Record) bool {
	return rec.Type == o.Type &&
		rec.Name.Equal(o.Name) &&
		rec.Data.equal(o.Data)
}

// append serializes the record to w, back-patching the rdata length.
func (rec Record) append(w *Writer, c *NameCoder) {
	c.AppendName(w, rec.Name)
	w.WriteU16(uint16(rec.Type))
	w.WriteU16(uint16(ClassIN))
	w.WriteU32(rec.TTL)
	rec.Data.append(w, c)
}

// readRecord decodes a single resource record.
func readRecord(r *Reader, maxSegments int) (Record, error) {
	n, err := ReadName(r, maxSegments)
	if err != nil {
		return Record{}, err
	}

	t, err := r.ReadU16()
	if err != nil {
		return Record{}, err
	}

	cls, err := r.ReadU16()
	if err != nil {
		return Record{}, err
	}

	ttl, err := r.ReadU32()
	if err != nil {
		return Record{}, err
	}

	rdlen, err := r.ReadU16()
	if err != nil {
		return Record{}, err
	}

	end := r.Position() + int(rdlen)
	if end > len(r.buf) {
		return Record{}, ErrTruncated
	}

	data, err := readRecordData(r, Type(t), int(rdlen), maxSegments)
	if err != nil {
		return Record{}, err
	}

	// Compressed names inside the rdata may legitimately resolve outside
	// it; the next record nonetheless begins exactly rdlen bytes after the
	// rdata started.
	if err := r.Seek(end); err != nil {
		return Record{}, err
	}

	return Record{
		Name:       n,
		Type:       Type(t),
		TTL:        ttl,
		CacheFlush: cls&classTopBit != 0,
		Data:       data,
	}, nil
}

// readRecordData decodes rdlen bytes of rdata of the given type.
func readRecordData(r *Reader, t Type, rdlen, maxSegments int) (RecordData, error) {
	switch t {
	case TypePTR:
		target, err := ReadName(r, maxSegments)
		if err != nil {
			return nil, err
		}
		return PTRData{Target: target}, nil

	case TypeSRV:
		priority, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		weight, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		port, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		target, err := ReadName(r, maxSegments)
		if err != nil {
			return nil, err
		}
		return SRVData{
			Priority: priority,
			Weight:   weight,
			Port:     port,
			Target:   target,
		}, nil

	case TypeTXT:
		return readTXTData(r, rdlen)

	case TypeA:
		if rdlen != 4 {
			return nil, ErrTruncated
		}
		octets, err := r.ReadBytes(4)
		if err != nil {
			return nil, err
		}
		var d AData
		copy(d.Addr[:], octets)
		return d, nil

	default:
		return nil, ErrInvalidEnum
	}
}

// readTXTData decodes rdlen bytes of length-prefixed byte strings.
//
// Zero-length strings are dropped, so that an empty TXT record (which is
// encoded on the wire as a single zero byte) round-trips to no entries.
func readTXTData(r *Reader, rdlen int) (TXTData, error) {
	var d TXTData

	end := r.Position() + rdlen
	for r.Position() < end {
		l, err := r.ReadU8()
		if err != nil {
			return TXTData{}, err
		}

		if r.Position()+int(l) > end {
			return TXTData{}, ErrTruncated
		}

		entry, err := r.ReadBytes(int(l))
		if err != nil {
			return TXTData{}, err
		}

		if len(entry) == 0 {
			continue
		}

		e := make([]byte, len(entry))
		copy(e, entry)
		d.Entries = append(d.Entries, e)
	}

	return d, nil
}

func (d PTRData) append(w *Writer, c *NameCoder) {
	patch := reserveRDLength(w)
	c.AppendName(w, d.Target)
	patchRDLength(w, patch)
}

func (d PTRData) equal(o RecordData) bool {
	v, ok := o.(PTRData)
	return ok && d.Target.Equal(v.Target)
}

func (d SRVData) append(w *Writer, c *NameCoder) {
	patch := reserveRDLength(w)
	w.WriteU16(d.Priority)
	w.WriteU16(d.Weight)
	w.WriteU16(d.Port)

	// SRV targets are compressed; RFC 6762 section 18.14 explicitly
	// permits this for mDNS.
	c.AppendName(w, d.Target)

	patchRDLength(w, patch)
}

func (d SRVData) equal(o RecordData) bool {
	v, ok := o.(SRVData)
	return ok &&
		d.Priority == v.Priority &&
		d.Weight == v.Weight &&
		d.Port == v.Port &&
		d.Target.Equal(v.Target)
}

func (d TXTData) append(w *Writer, c *NameCoder) {
	patch := reserveRDLength(w)

	if len(d.Entries) == 0 {
		// An empty TXT record is a single zero-length string.
		w.WriteU8(0)
	}

	for _, e := range d.Entries {
		w.WriteU8(byte(len(e)))
		w.WriteBytes(e)
	}

	patchRDLength(w, patch)
}

func (d TXTData) equal(o RecordData) bool {
	v, ok := o.(TXTData)
	if !ok || len(d.Entries) != len(v.Entries) {
		return false
	}

	for i, e := range d.Entries {
		if !bytes.Equal(e, v.Entries[i]) {
			return false
		}
	}

	return true
}

func (d AData) append(w *Writer, c *NameCoder) {
	w.WriteU16(4)
	w.WriteBytes(d.Addr[:])
}

func (d AData) equal(o RecordData) bool {
	v, ok := o.(AData)
	return ok && d.Addr == v.Addr
}

// reserveRDLength writes a placeholder rdata length and returns its offset.
func reserveRDLength(w *Writer) int {
	patch := w.Position()
	w.WriteU16(0)
	return patch
}

// patchRDLength back-patches the rdata length reserved at patch.
func patchRDLength(w *Writer, patch int) {
	w.SetU16At(patch, uint16(w.Position()-patch-2))
}
