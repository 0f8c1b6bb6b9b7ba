//go:build !tinygo

package gpioirq

import (
	"fmt"
	"math/bits"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// watchPoll bounds each WaitForEdge so a watcher notices when it is stopped.
const watchPoll = 100 * time.Millisecond

// PeriphConfig holds the configuration for a Linux/periph.io port.
type PeriphConfig struct {
	// Pins maps port pin indices to periph.io pin names (e.g. "GPIO17").
	// Port pins without an entry never latch an edge.
	Pins map[Pin]string
	// Pull is applied to every watched input.
	// Defaults to PullUp if not provided.
	Pull Pull
	// Line is raised each time an edge is latched. Required.
	Line Raiser
}

// PeriphBank is a register bank for hosts where edges arrive through
// periph.io instead of a memory-mapped interrupt block. The registers are
// held in a MemBank; writing an enable register reconfigures the mapped
// pins for edge detection, and each detected edge is latched into the
// status registers and raised on the line.
type PeriphBank struct {
	mem  MemBank
	line Raiser
	pull gpio.Pull
	pins [NumPins]gpio.PinIO

	mu       sync.Mutex
	watchers [NumPins]*watcher
}

type watcher struct {
	stop chan struct{}
	done chan struct{}
}

// OpenPeriph initializes the periph.io host drivers, looks up every pin in
// c.Pins and returns a bank over them.
func OpenPeriph(c PeriphConfig) (*PeriphBank, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph.io host: %w", err)
	}

	pins := make(map[Pin]gpio.PinIO, len(c.Pins))
	for p, name := range c.Pins {
		io := gpioreg.ByName(name)
		if io == nil {
			return nil, fmt.Errorf("failed to open pin %s for %s", name, p)
		}
		pins[p] = io
	}
	return NewPeriphBank(pins, c.Pull, c.Line)
}

// NewPeriphBank returns a bank over already opened pins.
func NewPeriphBank(pins map[Pin]gpio.PinIO, pull Pull, line Raiser) (*PeriphBank, error) {
	if line == nil {
		return nil, fmt.Errorf("%w: periph bank needs a line to raise", ErrPkg)
	}
	if pull == PullNoChange {
		pull = PullUp
	}

	b := &PeriphBank{
		line: line,
		pull: periphPull(pull),
	}
	for p, io := range pins {
		if !p.Valid() {
			return nil, fmt.Errorf("%w: %d", ErrInvalidPin, p)
		}
		b.pins[p] = io
	}
	return b, nil
}

func (b *PeriphBank) Read(r Reg) uint32 {
	return b.mem.Read(r)
}

// Write stores v in register r. Writing an enable register starts or stops
// edge detection on every mapped pin whose bit changed; this may block for
// up to watchPoll and must only happen in task context.
func (b *PeriphBank) Write(r Reg, v uint32) {
	switch r {
	case RegEnableRising, RegEnableFalling:
		b.mu.Lock()
		defer b.mu.Unlock()
		old := b.mem.Read(r)
		b.mem.Write(r, v)
		for changed := old ^ v; changed != 0; changed &= changed - 1 {
			b.rewatch(Pin(bits.TrailingZeros32(changed)))
		}
	default:
		b.mem.Write(r, v)
	}
}

// Close stops every edge watcher and disables edge detection.
func (b *PeriphBank) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var firstErr error
	for p, io := range b.pins {
		if io == nil {
			continue
		}
		b.stopWatcher(Pin(p))
		if err := io.In(b.pull, gpio.NoEdge); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// rewatch restarts pin's watcher to match the enable registers. b.mu must
// be held.
func (b *PeriphBank) rewatch(p Pin) {
	io := b.pins[p]
	if io == nil {
		return
	}
	b.stopWatcher(p)

	rise := b.mem.Read(RegEnableRising)&p.mask() != 0
	fall := b.mem.Read(RegEnableFalling)&p.mask() != 0
	edge := gpio.NoEdge
	switch {
	case rise && fall:
		edge = gpio.BothEdges
	case rise:
		edge = gpio.RisingEdge
	case fall:
		edge = gpio.FallingEdge
	}

	if err := io.In(b.pull, edge); err != nil {
		globalLogger.Error("failed to configure edge detection on " + io.Name() + ": " + err.Error())
		return
	}
	if edge == gpio.NoEdge {
		return
	}

	w := &watcher{stop: make(chan struct{}), done: make(chan struct{})}
	b.watchers[p] = w
	go b.watch(p, io, edge, w)
}

func (b *PeriphBank) stopWatcher(p Pin) {
	if w := b.watchers[p]; w != nil {
		close(w.stop)
		<-w.done
		b.watchers[p] = nil
	}
}

// watch latches edges seen on io until w is stopped.
func (b *PeriphBank) watch(p Pin, io gpio.PinIO, edge gpio.Edge, w *watcher) {
	defer close(w.done)
	for {
		select {
		case <-w.stop:
			return
		default:
		}

		if !io.WaitForEdge(watchPoll) {
			continue
		}

		e := RisingEdge
		switch edge {
		case gpio.FallingEdge:
			e = FallingEdge
		case gpio.BothEdges:
			if io.Read() == gpio.Low {
				e = FallingEdge
			}
		}
		if b.mem.Latch(p, e) {
			b.line.Raise()
		}
	}
}

func periphPull(p Pull) gpio.Pull {
	switch p {
	case PullFloat:
		return gpio.Float
	case PullDown:
		return gpio.PullDown
	case PullUp:
		return gpio.PullUp
	default:
		return gpio.PullNoChange
	}
}

// periphOutput wraps a gpio.PinOut to satisfy the Output interface.
type periphOutput struct {
	gpio.PinOut
}

func (o *periphOutput) Out(l Level) error {
	if l == High {
		return o.PinOut.Out(gpio.High)
	}
	return o.PinOut.Out(gpio.Low)
}

// NewPeriphOutput adapts an opened periph.io pin to an Output.
func NewPeriphOutput(pin gpio.PinOut) Output {
	return &periphOutput{PinOut: pin}
}

// OpenPeriphOutput looks up a pin by name and returns it as an Output.
// host.Init must already have run, for example through OpenPeriph.
func OpenPeriphOutput(name string) (Output, error) {
	io := gpioreg.ByName(name)
	if io == nil {
		return nil, fmt.Errorf("failed to open output pin %s", name)
	}
	return NewPeriphOutput(io), nil
}
