package gpioirq

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Config holds the configuration for a port.
type Config struct {
	// Name identifies the port in logs.
	// Defaults to "GPIO0" if not provided.
	Name string
	// Bank is the port's edge-interrupt register block. Required.
	Bank Bank
	// Line is the port's aggregate interrupt line at the controller.
	// Defaults to a new SoftLine if not provided. When the line has a
	// SetVector method, NewPort installs Dispatch as its vector; otherwise
	// the caller must route the line's vector to Dispatch.
	Line Line
}

// Stats counts what Dispatch has done since the port was created.
type Stats struct {
	// Dispatches is the number of Dispatch calls.
	Dispatches uint64
	// Serviced is the number of handlers fired.
	Serviced uint64
	// Unhandled is the number of pending bits cleared on pins with no handler.
	Unhandled uint64
	// Spurious is the number of pending bits cleared because they did not
	// match the pin's configured edge.
	Spurious uint64
}

// Port owns the callback table of one GPIO port and the edge configuration
// written to its registers.
//
// Attach, Detach, Arm and Disarm are task-context operations. Dispatch is
// the interrupt vector and is the only method meant for interrupt context.
type Port struct {
	name string
	bank Bank
	line Line

	// mu serializes reconfiguration. Dispatch never takes it; it is kept
	// away from table updates by masking the line instead. Arm and an
	// armed Attach may run Dispatch while mu is held, so nothing a handler
	// may call takes it.
	mu       sync.Mutex
	handlers [NumPins]Handler
	edges    [NumPins]atomic.Uint32

	dispatches atomic.Uint64
	serviced   atomic.Uint64
	unhandled  atomic.Uint64
	spurious   atomic.Uint64
}

type vectorSetter interface {
	SetVector(fn func())
}

// NewPort creates a port over the given register bank. It clears both
// enable registers and any pending status so no stale configuration fires
// once the line is armed. The line is left masked; call Arm when every
// handler it needs has been attached.
func NewPort(c Config) (*Port, error) {
	if c.Bank == nil {
		return nil, fmt.Errorf("%w: %w", ErrPkg, ErrNoBank)
	}
	if c.Name == "" {
		c.Name = "GPIO0"
	}
	if c.Line == nil {
		c.Line = NewSoftLine()
	}

	p := &Port{
		name: c.Name,
		bank: c.Bank,
		line: c.Line,
	}

	p.bank.Write(RegEnableRising, 0)
	p.bank.Write(RegEnableFalling, 0)
	p.bank.Write(RegClearRising, ^uint32(0))
	p.bank.Write(RegClearFalling, ^uint32(0))

	if vs, ok := c.Line.(vectorSetter); ok {
		vs.SetVector(p.Dispatch)
	}

	globalLogger.Info(p.name + ": port initialized")
	return p, nil
}

// Arm enables the port's interrupt line at the controller.
func (p *Port) Arm() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.line.Enable()
	globalLogger.Info(p.name + ": interrupt armed")
}

// Disarm masks the port's interrupt line. It returns once any running
// Dispatch has finished.
func (p *Port) Disarm() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.line.Disable()
	globalLogger.Info(p.name + ": interrupt disarmed")
}

// Armed reports whether the port's interrupt line is enabled.
func (p *Port) Armed() bool {
	return p.line.Enabled()
}

// Edge returns the edge pin is configured for, or NoEdge when nothing is
// attached. It is safe to call from a Handler.
func (p *Port) Edge(pin Pin) Edge {
	if !pin.Valid() {
		return NoEdge
	}
	return Edge(p.edges[pin].Load())
}

// Stats returns a snapshot of the dispatch counters.
func (p *Port) Stats() Stats {
	return Stats{
		Dispatches: p.dispatches.Load(),
		Serviced:   p.serviced.Load(),
		Unhandled:  p.unhandled.Load(),
		Spurious:   p.spurious.Load(),
	}
}

func (p *Port) String() string {
	return fmt.Sprintf("GPIOPort(Name=%s, EnableRising=%#08x, EnableFalling=%#08x, Armed=%v)",
		p.name,
		p.bank.Read(RegEnableRising),
		p.bank.Read(RegEnableFalling),
		p.line.Enabled(),
	)
}
