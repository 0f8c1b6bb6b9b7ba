package gpioirq

import "math/bits"

// pinChange is the set of edges a pin callback is installed for.
type pinChange uint8

const (
	changeNone pinChange = iota
	changeRising
	changeFalling
	changeToggle
)

// irqPin is a pin that takes one interrupt callback at a time. Installing
// a callback while one is configured fails; the old one must first be
// removed with the change it was installed for and a nil callback.
type irqPin interface {
	setInterrupt(c pinChange, cb func()) error
	get() bool
}

// irqBank is a register bank over pins with per-pin interrupt callbacks.
// The registers are held in a MemBank; writing an enable register swaps the
// callback on every mapped pin whose bit changed.
type irqBank struct {
	mem   MemBank
	line  Raiser
	pins  [NumPins]irqPin
	armed [NumPins]pinChange
}

func (b *irqBank) Read(r Reg) uint32 {
	return b.mem.Read(r)
}

func (b *irqBank) Write(r Reg, v uint32) {
	switch r {
	case RegEnableRising, RegEnableFalling:
		old := b.mem.Read(r)
		b.mem.Write(r, v)
		for changed := old ^ v; changed != 0; changed &= changed - 1 {
			p := Pin(bits.TrailingZeros32(changed))
			if err := b.rewatch(p); err != nil {
				globalLogger.Error("failed to set pin interrupt on " + p.String() + ": " + err.Error())
			}
		}
	default:
		b.mem.Write(r, v)
	}
}

// rewatch replaces pin's callback to match the enable registers.
func (b *irqBank) rewatch(p Pin) error {
	ip := b.pins[p]
	if ip == nil {
		return nil
	}
	rise := b.mem.Read(RegEnableRising)&p.mask() != 0
	fall := b.mem.Read(RegEnableFalling)&p.mask() != 0

	change := changeNone
	switch {
	case rise && fall:
		change = changeToggle
	case rise:
		change = changeRising
	case fall:
		change = changeFalling
	}
	if change == b.armed[p] {
		return nil
	}

	if prev := b.armed[p]; prev != changeNone {
		if err := ip.setInterrupt(prev, nil); err != nil {
			return err
		}
		b.armed[p] = changeNone
	}
	if change == changeNone {
		return nil
	}

	err := ip.setInterrupt(change, func() {
		e := RisingEdge
		if !rise || (fall && !ip.get()) {
			e = FallingEdge
		}
		if b.mem.Latch(p, e) {
			b.line.Raise()
		}
	})
	if err != nil {
		return err
	}
	b.armed[p] = change
	return nil
}
