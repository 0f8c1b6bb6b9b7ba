package gpioirq

import "fmt"

// Attach registers h to run when edge e is detected on pin, replacing any
// handler already attached to that pin. The pin's enable bit is set for e
// and cleared for the opposite edge, so exactly one edge is live per pin.
//
// If the port is armed, the line is masked for the duration of the update
// and an edge arriving meanwhile is delivered when it is unmasked.
// Attach must not be called from a Handler.
func (p *Port) Attach(pin Pin, e Edge, h Handler) error {
	if !pin.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidPin, pin)
	}
	if e != RisingEdge && e != FallingEdge {
		return fmt.Errorf("%w: %s", ErrInvalidEdge, e)
	}
	if h == nil {
		return ErrNilHandler
	}
	if f, ok := h.(HandlerFunc); ok && f == nil {
		return ErrNilHandler
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	on, _, _ := edgeRegs(e)
	off, _, _ := edgeRegs(opposite(e))
	p.masked(func() {
		p.handlers[pin] = h
		p.edges[pin].Store(uint32(e))
		p.bank.Write(on, p.bank.Read(on)|pin.mask())
		p.bank.Write(off, p.bank.Read(off)&^pin.mask())
	})

	globalLogger.Info(p.name + ": attached " + pin.String() + " on " + e.String() + " edge")
	return nil
}

// Detach removes the handler for pin and disables both of its edges.
// Any edge already pending on the pin is discarded.
func (p *Port) Detach(pin Pin) error {
	if !pin.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidPin, pin)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.masked(func() {
		p.handlers[pin] = nil
		p.edges[pin].Store(uint32(NoEdge))
		p.bank.Write(RegEnableRising, p.bank.Read(RegEnableRising)&^pin.mask())
		p.bank.Write(RegEnableFalling, p.bank.Read(RegEnableFalling)&^pin.mask())
		p.bank.Write(RegClearRising, pin.mask())
		p.bank.Write(RegClearFalling, pin.mask())
	})

	globalLogger.Info(p.name + ": detached " + pin.String())
	return nil
}

// masked runs fn with the port's line disabled, restoring it afterwards.
// p.mu must be held.
func (p *Port) masked(fn func()) {
	if p.line.Enabled() {
		p.line.Disable()
		defer p.line.Enable()
	}
	fn()
}

func opposite(e Edge) Edge {
	if e == RisingEdge {
		return FallingEdge
	}
	return RisingEdge
}
