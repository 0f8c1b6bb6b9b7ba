package gpioirq

import (
	"errors"
	"testing"
)

var errCallbackConfigured = errors.New("callback already configured")

// mockIRQPin takes one callback at a time, like an RP2 pin. Removing a
// callback only clears the events it names.
type mockIRQPin struct {
	level  bool
	change pinChange
	cb     func()
	calls  []pinChange
}

func (m *mockIRQPin) setInterrupt(c pinChange, cb func()) error {
	m.calls = append(m.calls, c)
	if cb == nil {
		if c == m.change {
			m.change, m.cb = changeNone, nil
		}
		return nil
	}
	if m.cb != nil {
		return errCallbackConfigured
	}
	m.change, m.cb = c, cb
	return nil
}

func (m *mockIRQPin) get() bool { return m.level }

// edge drives the pin to level and runs the callback if it is installed
// for that transition.
func (m *mockIRQPin) edge(level bool) {
	m.level = level
	want := changeFalling
	if level {
		want = changeRising
	}
	if m.cb != nil && (m.change == want || m.change == changeToggle) {
		m.cb()
	}
}

func newIRQTestPort(t *testing.T, pins map[Pin]*mockIRQPin) (*Port, *irqBank) {
	t.Helper()
	line := NewSoftLine()
	bank := &irqBank{line: line}
	for p, ip := range pins {
		bank.pins[p] = ip
	}
	port, err := NewPort(Config{Bank: bank, Line: line})
	if err != nil {
		t.Fatalf("NewPort failed: %v", err)
	}
	return port, bank
}

func TestIRQBankReattachReplacesCallback(t *testing.T) {
	pin := &mockIRQPin{level: true}
	port, _ := newIRQTestPort(t, map[Pin]*mockIRQPin{29: pin})

	var got []Edge
	port.Attach(29, FallingEdge, HandlerFunc(func() { got = append(got, FallingEdge) }))
	port.Arm()
	port.Attach(29, RisingEdge, HandlerFunc(func() { got = append(got, RisingEdge) }))

	if pin.change != changeRising {
		t.Fatalf("Installed change = %d, want rising", pin.change)
	}

	pin.edge(false)
	pin.edge(true)
	if len(got) != 1 || got[0] != RisingEdge {
		t.Errorf("Handlers fired = %v, want [rising]", got)
	}
}

func TestIRQBankRemovesWithInstalledChange(t *testing.T) {
	pin := &mockIRQPin{}
	port, _ := newIRQTestPort(t, map[Pin]*mockIRQPin{4: pin})

	port.Attach(4, FallingEdge, HandlerFunc(func() {}))
	port.Detach(4)

	if pin.cb != nil || pin.change != changeNone {
		t.Errorf("Expected callback removed, still installed for %d", pin.change)
	}
	// Install on attach, then remove with the same change on detach.
	want := []pinChange{changeFalling, changeFalling}
	if len(pin.calls) != len(want) {
		t.Fatalf("setInterrupt calls = %v, want %v", pin.calls, want)
	}
	for i := range want {
		if pin.calls[i] != want[i] {
			t.Errorf("setInterrupt calls = %v, want %v", pin.calls, want)
			break
		}
	}
}

func TestIRQBankClassifiesToggle(t *testing.T) {
	pin := &mockIRQPin{}
	_, bank := newIRQTestPort(t, map[Pin]*mockIRQPin{6: pin})
	bank.Write(RegEnableRising, 1<<6)
	bank.Write(RegEnableFalling, 1<<6)
	if pin.change != changeToggle {
		t.Fatalf("Installed change = %d, want toggle", pin.change)
	}

	// Latched with the line masked, so nothing is dispatched yet.
	pin.edge(true)
	if bank.Read(RegStatusRising) != 1<<6 {
		t.Errorf("Expected rising status latched")
	}
	pin.edge(false)
	if bank.Read(RegStatusFalling) != 1<<6 {
		t.Errorf("Expected falling status latched")
	}
}

func TestIRQBankSkipsUnmappedPins(t *testing.T) {
	port, bank := newIRQTestPort(t, nil)
	if err := port.Attach(12, RisingEdge, HandlerFunc(func() {})); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if bank.Read(RegEnableRising) != 1<<12 {
		t.Errorf("Expected enable bit stored for an unmapped pin")
	}
}
