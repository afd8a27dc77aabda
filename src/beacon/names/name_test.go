package names_test

import (
	"strings"

	. "github.com/jmalloc/beacon/src/beacon/names"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Parse", func() {
	It("splits the name into its segments", func() {
		n, err := Parse("_service._udp.local")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(n).To(Equal(Name{"_service", "_udp", "local"}))
	})

	It("accepts a single-segment name", func() {
		n, err := Parse("local")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(n).To(Equal(Name{"local"}))
	})

	It("rejects an empty name", func() {
		_, err := Parse("")
		Expect(err).Should(HaveOccurred())
	})

	It("rejects empty segments", func() {
		_, err := Parse("foo..local")
		Expect(err).Should(HaveOccurred())
	})

	It("rejects a trailing dot", func() {
		_, err := Parse("foo.local.")
		Expect(err).Should(HaveOccurred())
	})

	It("rejects a segment longer than 63 bytes", func() {
		_, err := Parse(strings.Repeat("x", 64) + ".local")
		Expect(err).Should(HaveOccurred())
	})

	It("rejects a name whose serialized form exceeds 255 bytes", func() {
		seg := strings.Repeat("x", 63)
		_, err := Parse(strings.Join([]string{seg, seg, seg, seg, "local"}, "."))
		Expect(err).Should(HaveOccurred())
	})
})

var _ = Describe("Name", func() {
	Describe("Equal", func() {
		It("ignores the case of ASCII letters", func() {
			a := MustParse("Node1._Service._udp.LOCAL")
			b := MustParse("node1._service._udp.local")
			Expect(a.Equal(b)).To(BeTrue())
		})

		It("requires the same segment count", func() {
			a := MustParse("node1._service._udp.local")
			b := MustParse("_service._udp.local")
			Expect(a.Equal(b)).To(BeFalse())
		})

		It("does not treat dots inside a segment as boundaries", func() {
			a := Name{"a.b", "c"}
			b := Name{"a", "b.c"}
			Expect(a.Equal(b)).To(BeFalse())
		})
	})

	Describe("Prepend", func() {
		It("builds an instance name from a service type", func() {
			n := MustParse("_service._udp.local").Prepend("node1")
			Expect(n.String()).To(Equal("node1._service._udp.local"))
		})

		It("does not modify the receiver", func() {
			s := MustParse("_service._udp.local")
			s.Prepend("node1")
			Expect(s.String()).To(Equal("_service._udp.local"))
		})
	})

	Describe("WireLength", func() {
		It("counts each segment's length prefix and the root byte", func() {
			n := MustParse("node1.local")
			// 1+5 + 1+5 + 1
			Expect(n.WireLength()).To(Equal(13))
		})
	})

	Describe("IsEmpty", func() {
		It("is true for the zero value", func() {
			Expect(Name(nil).IsEmpty()).To(BeTrue())
		})

		It("is false for a parsed name", func() {
			Expect(MustParse("local").IsEmpty()).To(BeFalse())
		})
	})
})
