package fifo

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Builder", func() {
	It("should build with default parameters", func() {
		c, err := MakeBuilder().Build("Queue")

		Expect(err).NotTo(HaveOccurred())
		Expect(c.Name()).To(Equal("Queue"))
		Expect(c.Capacity()).To(Equal(16))
		Expect(c.DataWidth()).To(Equal(32))
		Expect(c.Occupancy()).To(Equal(0))
		Expect(c.IsEmpty()).To(BeTrue())
		Expect(c.IsFull()).To(BeFalse())
		Expect(c.Cycle()).To(Equal(uint64(0)))
	})

	DescribeTable("should refuse invalid parameters",
		func(b Builder, name string, expected error) {
			c, err := b.Build(name)

			Expect(c).To(BeNil())
			Expect(err).To(MatchError(expected))
		},
		Entry("zero capacity",
			MakeBuilder().WithCapacity(0), "Queue", ErrInvalidCapacity),
		Entry("negative capacity",
			MakeBuilder().WithCapacity(-3), "Queue", ErrInvalidCapacity),
		Entry("zero data width",
			MakeBuilder().WithDataWidth(0), "Queue", ErrInvalidDataWidth),
		Entry("data width over 64",
			MakeBuilder().WithDataWidth(65), "Queue", ErrInvalidDataWidth),
		Entry("lower case name",
			MakeBuilder(), "queue", ErrInvalidName),
		Entry("empty name",
			MakeBuilder(), "", ErrInvalidName),
	)

	It("should mask words to the data width", func() {
		c, err := MakeBuilder().WithCapacity(2).WithDataWidth(8).Build("Queue")
		Expect(err).NotTo(HaveOccurred())

		pulsePush(c, 0x1FF)

		Expect(c.HeadWord()).To(Equal(uint64(0xFF)))
	})

	It("should keep all bits with a 64-bit data width", func() {
		c, err := MakeBuilder().WithCapacity(2).WithDataWidth(64).Build("Queue")
		Expect(err).NotTo(HaveOccurred())

		pulsePush(c, 0xFFFF_FFFF_FFFF_FFFF)

		Expect(c.HeadWord()).To(Equal(uint64(0xFFFF_FFFF_FFFF_FFFF)))
	})
})
