package wire_test

import (
	. "github.com/jmalloc/beacon/src/beacon/wire"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Writer", func() {
	It("writes primitives in big-endian byte order", func() {
		buf := make([]byte, 16)
		w := NewWriter(buf)

		w.WriteU8(0xAB)
		w.WriteU16(0x0102)
		w.WriteU32(0x03040506)
		w.WriteBytes([]byte{0x07, 0x08})

		n, err := w.Finish()
		Expect(err).ShouldNot(HaveOccurred())
		Expect(buf[:n]).To(Equal([]byte{
			0xAB,
			0x01, 0x02,
			0x03, 0x04, 0x05, 0x06,
			0x07, 0x08,
		}))
	})

	It("back-patches previously written bytes", func() {
		buf := make([]byte, 16)
		w := NewWriter(buf)

		w.WriteU16(0)
		w.WriteU16(0xBEEF)
		w.SetU16At(0, 0xCAFE)

		n, err := w.Finish()
		Expect(err).ShouldNot(HaveOccurred())
		Expect(buf[:n]).To(Equal([]byte{0xCA, 0xFE, 0xBE, 0xEF}))
	})

	It("enters the overflow state instead of panicking", func() {
		w := NewWriter(make([]byte, 3))

		w.WriteU16(0x0102)
		w.WriteU32(0x03040506)

		Expect(w.Overflowed()).To(BeTrue())

		_, err := w.Finish()
		Expect(err).To(Equal(ErrBufferFull))
	})

	It("preserves the prefix that fit", func() {
		buf := make([]byte, 3)
		w := NewWriter(buf)

		w.WriteU16(0x0102)
		w.WriteU32(0x03040506)

		Expect(buf[:2]).To(Equal([]byte{0x01, 0x02}))
		Expect(w.Position()).To(Equal(2))
	})

	It("ignores all writes after an overflow", func() {
		buf := make([]byte, 4)
		w := NewWriter(buf)

		w.WriteU16(0x0102)
		w.WriteU32(0x03040506) // does not fit
		w.WriteU16(0x0708)     // would fit, but the writer is poisoned

		Expect(w.Position()).To(Equal(2))
		Expect(w.Overflowed()).To(BeTrue())
	})

	It("ignores back-patches outside the written region", func() {
		buf := make([]byte, 8)
		w := NewWriter(buf)

		w.WriteU16(0x0102)
		w.SetU16At(1, 0xFFFF) // straddles the write position
		w.SetU16At(4, 0xFFFF) // past the write position

		Expect(buf[:2]).To(Equal([]byte{0x01, 0x02}))
		Expect(buf[4:6]).To(Equal([]byte{0x00, 0x00}))
	})

	It("handles a zero-length buffer", func() {
		w := NewWriter(nil)

		w.WriteU8(1)

		_, err := w.Finish()
		Expect(err).To(Equal(ErrBufferFull))
	})
})
