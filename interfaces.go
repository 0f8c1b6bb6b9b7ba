package gpioirq

import "strconv"

// NumPins is the number of pins on one GPIO port.
const NumPins = 32

// Pin is a pin index on a GPIO port, in the range [0, NumPins).
type Pin uint8

// Valid reports whether p addresses a pin on the port.
func (p Pin) Valid() bool { return p < NumPins }

func (p Pin) mask() uint32 { return 1 << p }

func (p Pin) String() string {
	return "P" + strconv.Itoa(int(p))
}

// Level represents the logical level of a pin (Low or High).
type Level bool

const (
	Low  Level = false
	High Level = true
)

// Pull represents the internal pull-up/down resistor state of an input.
type Pull uint8

const (
	PullNoChange Pull = iota
	PullFloat
	PullDown
	PullUp
)

// Edge represents the signal edge that triggers an interrupt.
// A pin is configured for exactly one edge at a time.
type Edge uint8

const (
	NoEdge Edge = iota
	RisingEdge
	FallingEdge
)

func (e Edge) String() string {
	switch e {
	case NoEdge:
		return "none"
	case RisingEdge:
		return "rising"
	case FallingEdge:
		return "falling"
	default:
		return "unknown"
	}
}

// Handler is an interrupt-context callback.
//
// Fire runs with the port's interrupt line active. It must not block,
// sleep, or wait on anything a task may hold; the usual body is a single
// Giver.GiveFromISR.
type Handler interface {
	Fire()
}

// HandlerFunc adapts an ordinary function to a Handler.
type HandlerFunc func()

// Fire calls f().
func (f HandlerFunc) Fire() { f() }

// Output is a digital output such as an LED.
type Output interface {
	// Out drives the pin to the given level.
	Out(l Level) error
}
