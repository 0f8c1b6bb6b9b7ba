package gpioirq

import "sync"

// Line is the port's aggregate interrupt line at the interrupt controller.
type Line interface {
	// Enable unmasks the line. A request latched while masked is delivered.
	Enable()
	// Disable masks the line. It returns once no vector is running.
	Disable()
	Enabled() bool
}

// Raiser is implemented by lines that accept interrupt requests from
// software, such as edge watchers on a host.
type Raiser interface {
	Raise()
}

// SoftLine is an interrupt controller line for hosts without one.
//
// Raise runs the vector on the calling goroutine, which acts as interrupt
// context for the duration. The vector never runs twice at once: a Raise
// that arrives while it runs, or while the line is masked, is latched and
// delivered once the vector returns or the line is enabled. Like a real
// controller, several latched requests collapse into one.
type SoftLine struct {
	mu      sync.Mutex
	idle    *sync.Cond
	vector  func()
	enabled bool
	running bool
	pending bool
}

// NewSoftLine returns a masked line with no vector installed.
func NewSoftLine() *SoftLine {
	l := &SoftLine{}
	l.idle = sync.NewCond(&l.mu)
	return l
}

// SetVector installs the function run for each delivered request.
func (l *SoftLine) SetVector(fn func()) {
	l.mu.Lock()
	l.vector = fn
	l.mu.Unlock()
}

// Raise requests the interrupt.
func (l *SoftLine) Raise() {
	l.mu.Lock()
	if !l.enabled || l.running || l.vector == nil {
		l.pending = true
		l.mu.Unlock()
		return
	}
	l.running = true
	l.mu.Unlock()
	l.run()
}

// run executes the vector until no request is pending. It must be entered
// with running set.
func (l *SoftLine) run() {
	for {
		l.mu.Lock()
		fn := l.vector
		l.mu.Unlock()
		fn()

		l.mu.Lock()
		if l.pending && l.enabled {
			l.pending = false
			l.mu.Unlock()
			continue
		}
		l.running = false
		l.idle.Broadcast()
		l.mu.Unlock()
		return
	}
}

func (l *SoftLine) Enable() {
	l.mu.Lock()
	l.enabled = true
	deliver := l.pending && !l.running && l.vector != nil
	if deliver {
		l.pending = false
		l.running = true
	}
	l.mu.Unlock()
	if deliver {
		l.run()
	}
}

// Disable masks the line and waits for a running vector to return. It must
// not be called from the vector itself.
func (l *SoftLine) Disable() {
	l.mu.Lock()
	l.enabled = false
	for l.running {
		l.idle.Wait()
	}
	l.mu.Unlock()
}

func (l *SoftLine) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

// Pending reports whether a request is latched and not yet delivered.
func (l *SoftLine) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}
