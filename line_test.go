package gpioirq

import (
	"testing"
	"time"
)

func TestSoftLineMaskedRequestIsLatched(t *testing.T) {
	l := NewSoftLine()
	var n int
	l.SetVector(func() { n++ })

	l.Raise()
	l.Raise()
	if n != 0 {
		t.Fatalf("Vector ran while masked")
	}
	if !l.Pending() {
		t.Fatalf("Expected request latched")
	}

	l.Enable()
	if n != 1 {
		t.Errorf("Expected one delivery on enable, got %d", n)
	}
	if l.Pending() {
		t.Errorf("Expected pending cleared after delivery")
	}

	l.Raise()
	if n != 2 {
		t.Errorf("Expected enabled raise to run vector, got %d", n)
	}
}

func TestSoftLineIsNotReentrant(t *testing.T) {
	l := NewSoftLine()
	var depth, maxDepth, runs int
	l.SetVector(func() {
		depth++
		if depth > maxDepth {
			maxDepth = depth
		}
		runs++
		if runs == 1 {
			// A new request while the vector runs is tail-chained.
			l.Raise()
		}
		depth--
	})
	l.Enable()

	l.Raise()
	if runs != 2 {
		t.Errorf("Expected vector to run twice, ran %d", runs)
	}
	if maxDepth != 1 {
		t.Errorf("Vector nested to depth %d", maxDepth)
	}
}

func TestSoftLineDisableWaitsForVector(t *testing.T) {
	l := NewSoftLine()
	entered := make(chan struct{})
	release := make(chan struct{})
	l.SetVector(func() {
		close(entered)
		<-release
	})
	l.Enable()

	go l.Raise()
	<-entered

	disabled := make(chan struct{})
	go func() {
		l.Disable()
		close(disabled)
	}()

	select {
	case <-disabled:
		t.Fatalf("Disable returned while the vector was running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-disabled:
	case <-time.After(time.Second):
		t.Fatalf("Disable did not return after the vector finished")
	}
	if l.Enabled() {
		t.Errorf("Expected line masked")
	}
}
