package sim

import (
	"strconv"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("IDGenerator", func() {
	It("should generate increasing IDs", func() {
		g := GetIDGenerator()

		first, err := strconv.ParseUint(g.Generate(), 10, 64)
		Expect(err).NotTo(HaveOccurred())

		second, err := strconv.ParseUint(g.Generate(), 10, 64)
		Expect(err).NotTo(HaveOccurred())

		Expect(second).To(BeNumerically(">", first))
		Expect(GetIDGenerator()).To(BeIdenticalTo(g))
	})
})
