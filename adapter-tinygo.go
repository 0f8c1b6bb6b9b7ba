//go:build tinygo

package gpioirq

import (
	"machine"
	"runtime/interrupt"
)

// TinyGoLine is a Line for TinyGo targets, where pin callbacks already run
// in interrupt context. Raise calls the vector directly; masking is a flag
// updated with interrupts disabled, and a request raised while masked is
// delivered on Enable.
type TinyGoLine struct {
	vector  func()
	enabled bool
	pending bool
}

// NewTinyGoLine returns a masked line.
func NewTinyGoLine() *TinyGoLine {
	return &TinyGoLine{}
}

func (l *TinyGoLine) SetVector(fn func()) {
	state := interrupt.Disable()
	l.vector = fn
	interrupt.Restore(state)
}

// Raise is called from a pin interrupt.
func (l *TinyGoLine) Raise() {
	if !l.enabled || l.vector == nil {
		l.pending = true
		return
	}
	l.vector()
}

func (l *TinyGoLine) Enable() {
	state := interrupt.Disable()
	l.enabled = true
	deliver := l.pending && l.vector != nil
	l.pending = false
	if deliver {
		l.vector()
	}
	interrupt.Restore(state)
}

func (l *TinyGoLine) Disable() {
	state := interrupt.Disable()
	l.enabled = false
	interrupt.Restore(state)
}

func (l *TinyGoLine) Enabled() bool {
	state := interrupt.Disable()
	defer interrupt.Restore(state)
	return l.enabled
}

// TinyGoBank is a register bank over machine pins. Writing an enable
// register installs or removes the pin interrupt on every mapped pin whose
// bit changed.
type TinyGoBank struct {
	irqBank
}

// machinePin adapts a machine.Pin to irqPin.
type machinePin struct {
	pin machine.Pin
}

func (m machinePin) setInterrupt(c pinChange, cb func()) error {
	var change machine.PinChange
	switch c {
	case changeRising:
		change = machine.PinRising
	case changeFalling:
		change = machine.PinFalling
	case changeToggle:
		change = machine.PinToggle
	}
	if cb == nil {
		return m.pin.SetInterrupt(change, nil)
	}
	return m.pin.SetInterrupt(change, func(machine.Pin) { cb() })
}

func (m machinePin) get() bool {
	return m.pin.Get()
}

// NewTinyGoBank returns a bank mapping port pins to machine pins. Entries
// set to machine.NoPin are skipped.
func NewTinyGoBank(pins map[Pin]machine.Pin, pull Pull, line Raiser) *TinyGoBank {
	b := &TinyGoBank{irqBank{line: line}}
	mode := machine.PinInput
	switch pull {
	case PullUp, PullNoChange:
		mode = machine.PinInputPullup
	case PullDown:
		mode = machine.PinInputPulldown
	}
	for p, mp := range pins {
		if !p.Valid() || mp == machine.NoPin {
			continue
		}
		mp.Configure(machine.PinConfig{Mode: mode})
		b.pins[p] = machinePin{pin: mp}
	}
	return b
}

// tinygoOutput wraps a machine.Pin to satisfy the Output interface.
type tinygoOutput struct {
	pin machine.Pin
}

func (o *tinygoOutput) Out(l Level) error {
	o.pin.Set(bool(l))
	return nil
}

// NewTinyGoOutput configures pin as an output and returns it.
func NewTinyGoOutput(pin machine.Pin) Output {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &tinygoOutput{pin: pin}
}
