package gpioirq

import "math/bits"

// Log messages are built once so Dispatch never formats in interrupt context.
var (
	unhandledMsg [NumPins]string
	spuriousMsg  [NumPins][2]string
)

func init() {
	for i := range unhandledMsg {
		unhandledMsg[i] = "unhandled interrupt on " + Pin(i).String()
		spuriousMsg[i][0] = "spurious " + RisingEdge.String() + " edge on " + Pin(i).String()
		spuriousMsg[i][1] = "spurious " + FallingEdge.String() + " edge on " + Pin(i).String()
	}
}

// Dispatch is the port's interrupt vector. It services every pending edge
// latched in the status registers, in increasing pin order, and returns with
// each serviced status bit cleared.
//
// For a pin whose configured edge is pending, the handler fires before its
// status bit is cleared, so the handler still sees the event as pending.
// A pending bit on a pin with no handler is cleared and counted as
// unhandled. A pending bit for the edge a pin is not configured for
// (a bounce latching both) is cleared and counted as spurious. Neither
// stops the remaining pins from being serviced.
//
// Dispatch does not block or allocate.
func (p *Port) Dispatch() {
	p.dispatches.Add(1)

	rise := p.bank.Read(RegStatusRising)
	fall := p.bank.Read(RegStatusFalling)

	for pending := rise | fall; pending != 0; pending &= pending - 1 {
		pin := Pin(bits.TrailingZeros32(pending))
		if rise&pin.mask() != 0 {
			p.service(pin, RisingEdge)
		}
		if fall&pin.mask() != 0 {
			p.service(pin, FallingEdge)
		}
	}
}

// service handles one pending edge on pin and clears it.
func (p *Port) service(pin Pin, e Edge) {
	_, _, clr := edgeRegs(e)

	switch h := p.handlers[pin]; {
	case h == nil:
		p.unhandled.Add(1)
		globalLogger.Warn(unhandledMsg[pin])
	case Edge(p.edges[pin].Load()) != e:
		p.spurious.Add(1)
		if e == RisingEdge {
			globalLogger.Debug(spuriousMsg[pin][0])
		} else {
			globalLogger.Debug(spuriousMsg[pin][1])
		}
	default:
		h.Fire()
		p.serviced.Add(1)
	}

	p.bank.Write(clr, pin.mask())
}
