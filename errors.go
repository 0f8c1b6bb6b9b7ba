package gpioirq

import "errors"

var (
	ErrPkg         = errors.New("gpioirq")
	ErrInvalidPin  = errors.New("pin out of range")
	ErrInvalidEdge = errors.New("edge must be rising or falling")
	ErrNilHandler  = errors.New("nil handler")
	ErrNoBank      = errors.New("register bank not configured")
)
