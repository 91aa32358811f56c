package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vm64/emu"
	"github.com/sarchlab/vm64/insts"
)

var _ = Describe("Execution table", func() {
	It("should have exactly one handler for every decodable opcode", func() {
		ops := insts.Ops()
		for _, op := range ops {
			Expect(emu.HasHandler(op)).To(BeTrue(), "missing handler for %s", op)
		}
		Expect(emu.HandledOps()).To(Equal(len(ops)))
	})
})
