package gpioirq

import "sync/atomic"

// Reg names one 32-bit register of a port's edge-interrupt block.
// Bit n of each register refers to pin n.
type Reg uint8

const (
	// RegEnableRising enables rising-edge detection per pin.
	RegEnableRising Reg = iota
	// RegEnableFalling enables falling-edge detection per pin.
	RegEnableFalling
	// RegStatusRising holds pending rising edges. Read-only.
	RegStatusRising
	// RegStatusFalling holds pending falling edges. Read-only.
	RegStatusFalling
	// RegClearRising clears RegStatusRising bits written as 1.
	RegClearRising
	// RegClearFalling clears RegStatusFalling bits written as 1.
	RegClearFalling

	numRegs
)

func (r Reg) String() string {
	switch r {
	case RegEnableRising:
		return "IntEnR"
	case RegEnableFalling:
		return "IntEnF"
	case RegStatusRising:
		return "IntStatR"
	case RegStatusFalling:
		return "IntStatF"
	case RegClearRising:
		return "IntClrR"
	case RegClearFalling:
		return "IntClrF"
	default:
		return "unknown"
	}
}

// Bank is the register block for one port's edge interrupts.
// Implementations must be safe to call from interrupt context: no
// blocking and no allocation.
type Bank interface {
	Read(r Reg) uint32
	Write(r Reg, v uint32)
}

// MemBank is an in-memory register block with hardware semantics.
// Status registers ignore writes, and the clear registers are write-1-to-clear
// and read as zero. Every access is atomic, so edges may be latched from any
// goroutine while the port dispatches.
type MemBank struct {
	regs [numRegs]atomic.Uint32
}

// NewMemBank returns a bank with every register zero.
func NewMemBank() *MemBank {
	return &MemBank{}
}

func (b *MemBank) Read(r Reg) uint32 {
	switch r {
	case RegEnableRising, RegEnableFalling, RegStatusRising, RegStatusFalling:
		return b.regs[r].Load()
	}
	return 0
}

func (b *MemBank) Write(r Reg, v uint32) {
	switch r {
	case RegEnableRising, RegEnableFalling:
		b.regs[r].Store(v)
	case RegClearRising:
		b.regs[RegStatusRising].And(^v)
	case RegClearFalling:
		b.regs[RegStatusFalling].And(^v)
	}
}

// Latch records an edge on pin p the way the port hardware does: the status
// bit is set only if detection for that edge is enabled. It reports whether
// the edge was latched.
func (b *MemBank) Latch(p Pin, e Edge) bool {
	if !p.Valid() {
		return false
	}
	var en, st Reg
	switch e {
	case RisingEdge:
		en, st = RegEnableRising, RegStatusRising
	case FallingEdge:
		en, st = RegEnableFalling, RegStatusFalling
	default:
		return false
	}
	if b.regs[en].Load()&p.mask() == 0 {
		return false
	}
	b.regs[st].Or(p.mask())
	return true
}

// Force ORs mask into a status register regardless of the enable bits.
// It simulates glitches such as a bounce latching the opposite edge.
func (b *MemBank) Force(r Reg, mask uint32) {
	if r == RegStatusRising || r == RegStatusFalling {
		b.regs[r].Or(mask)
	}
}

// edgeRegs returns the enable, status and clear registers for e.
func edgeRegs(e Edge) (en, st, clr Reg) {
	if e == RisingEdge {
		return RegEnableRising, RegStatusRising, RegClearRising
	}
	return RegEnableFalling, RegStatusFalling, RegClearFalling
}
